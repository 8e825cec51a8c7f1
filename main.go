package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/Zachkp/portfolio-admin/internal/api"
	"github.com/Zachkp/portfolio-admin/internal/config"
	"github.com/Zachkp/portfolio-admin/internal/metrics"
	"github.com/Zachkp/portfolio-admin/internal/session"
)

// app is the state shared by every command.
type app struct {
	cfg      config.Config
	metrics  *metrics.Metrics
	client   *api.Client
	sessions *session.Store

	output string
	in     io.Reader
	out    io.Writer

	ownsSessions bool
}

func main() {
	a := &app{in: os.Stdin, out: os.Stdout}
	if err := run(context.Background(), a, os.Args[1:]); err != nil {
		os.Exit(1)
	}
}

// run executes one command line and releases what setup opened, whether or
// not the command succeeded.
func run(ctx context.Context, a *app, args []string) error {
	root := newRootCmd(a)
	root.SetArgs(args)
	err := root.ExecuteContext(ctx)
	if a.ownsSessions {
		if cerr := a.sessions.Close(); cerr != nil {
			log.Error().Err(cerr).Msg("Error closing session store")
		}
		a.ownsSessions = false
	}
	return err
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:          "portfolio-admin",
		Short:        "Manage portfolio content through the portfolio API",
		Long:         rootLong,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup()
		},
	}
	root.PersistentFlags().StringVarP(&a.output, "output", "o", "table", "output format: table, json or yaml")

	root.AddCommand(
		a.serveCmd(),
		a.registerCmd(),
		a.loginCmd(),
		a.logoutCmd(),
		a.whoamiCmd(),
		a.projectsCmd(),
		a.techStacksCmd(),
		a.certificatesCmd(),
		a.seoCmd(),
		a.dashboardCmd(),
		a.uploadCmd(),
		a.auditCmd(),
	)
	return root
}

// setup loads configuration and opens shared resources. Dependencies that
// are already set are kept, which is how tests inject fakes.
func (a *app) setup() error {
	if a.client != nil && a.sessions != nil {
		return nil
	}
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	a.cfg = cfg
	setupLogging(cfg.LogLevel)

	delays, err := cfg.Delays()
	if err != nil {
		return err
	}
	a.metrics = metrics.New()
	a.client = api.New(api.Options{
		BaseURL:     cfg.BaseURL(),
		Timeout:     cfg.APITimeout,
		RateLimit:   cfg.RateLimit,
		RetryDelays: delays,
		Metrics:     a.metrics,
	})
	a.sessions, err = session.Open(cfg.DBPath, cfg.SessionTTL)
	if err != nil {
		return fmt.Errorf("open session store: %w", err)
	}
	a.ownsSessions = true
	return nil
}

func setupLogging(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
	if term.IsTerminal(int(os.Stderr.Fd())) {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the admin console HTTP server",
		Long:  serveLong,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			con := newConsole(a.cfg, a.client, a.sessions, a.metrics)
			router, err := newRouter(con)
			if err != nil {
				return err
			}
			go con.cleanupLoop(ctx, time.Hour)

			srv := &http.Server{
				Addr:              ":" + a.cfg.Port,
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}
			errc := make(chan error, 1)
			go func() {
				log.Info().Msgf("Admin console listening on :%s (portfolio API %s)", a.cfg.Port, a.cfg.BaseURL())
				errc <- srv.ListenAndServe()
			}()

			select {
			case err := <-errc:
				if !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			case <-ctx.Done():
			}

			log.Info().Msg("Shutting down admin console")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
