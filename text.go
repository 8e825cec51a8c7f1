package main

var (
	rootLong = `portfolio-admin manages the content of a personal portfolio: projects,
	certificates, tech stack entries, SEO metadata and the traffic dashboard.
	Every command talks to the portfolio REST API configured by PORTFOLIO_API_URL;
	settings can also live in a .env file next to the binary.`

	serveLong = `Runs the admin console: a JSON API under /admin that keeps one cached
	store per logged-in session, writes an audit row for every change and exposes
	Prometheus metrics on /metrics. Sessions and the audit log live in the SQLite
	file named by ADMIN_DB_PATH.`

	loginLong = `Logs in against the portfolio API and keeps the session in the local
	database so later commands run as that admin. Only accounts with the ADMIN role
	are accepted. Without --password the password is read from the terminal.`

	projectsCreateLong = `Creates a project. The slug is derived from the title when omitted.
	--thumbnail uploads a file to projects/thumbnails; each --gallery file goes to
	projects/gallery and becomes an IMAGE or VIDEO entry depending on its content.`

	seoSetLong = `Creates or updates the SEO metadata of one page. Flags that are not
	given keep the value currently stored for the page.`

	uploadLong = `Uploads a file to the asset host through the portfolio API and prints
	its secure URL. Folders: certificates, techstacks, projects/thumbnails,
	projects/gallery.`
)
