// Package store keeps the console's client-side cache of backend resources.
//
// Each slice owns its data plus an isLoading/error pair and exposes actions.
// An action runs one backend request through a fixed lifecycle: pending
// (loading, error cleared), then fulfilled (data applied) or rejected (error
// set to the backend's message or the action's fallback text). Every
// transition is published to subscribers.
package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Zachkp/portfolio-admin/internal/api"
)

type Phase string

const (
	Pending   Phase = "pending"
	Fulfilled Phase = "fulfilled"
	Rejected  Phase = "rejected"
)

// Action describes one lifecycle transition, e.g. "project/update/fulfilled".
type Action struct {
	Type   string `json:"type"`
	Slice  string `json:"slice"`
	Name   string `json:"name"`
	Phase  Phase  `json:"phase"`
	Target string `json:"target,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Services is every backend dependency of the store.
type Services struct {
	Auth         AuthAPI
	Projects     ProjectAPI
	TechStacks   TechStackAPI
	Certificates CertificateAPI
	SEO          SeoAPI
	Media        MediaAPI
	Dashboard    DashboardAPI
}

// ServicesFor wires the store to a real API client.
func ServicesFor(c *api.Client) Services {
	return Services{
		Auth:         c.Auth(),
		Projects:     c.Projects(),
		TechStacks:   c.TechStacks(),
		Certificates: c.Certificates(),
		SEO:          c.SEO(),
		Media:        c.Media(),
		Dashboard:    c.Dashboard(),
	}
}

type Store struct {
	User         *UserSlice
	Projects     *ProjectSlice
	TechStacks   *TechStackSlice
	Certificates *CertificateSlice
	SEO          *SeoSlice
	Media        *MediaSlice
	Dashboard    *DashboardSlice

	bus *bus
}

func New(svc Services) *Store {
	b := &bus{subs: map[int]func(Action){}}
	return &Store{
		User:         &UserSlice{base: base{name: "user", bus: b}, svc: svc.Auth},
		Projects:     &ProjectSlice{base: base{name: "project", bus: b}, svc: svc.Projects},
		TechStacks:   &TechStackSlice{base: base{name: "techStack", bus: b}, svc: svc.TechStacks},
		Certificates: &CertificateSlice{base: base{name: "certificate", bus: b}, svc: svc.Certificates},
		SEO:          &SeoSlice{base: base{name: "seo", bus: b}, svc: svc.SEO},
		Media:        &MediaSlice{base: base{name: "media", bus: b}, svc: svc.Media},
		Dashboard:    &DashboardSlice{base: base{name: "dashboard", bus: b}, svc: svc.Dashboard, now: time.Now},
		bus:          b,
	}
}

// Subscribe registers fn for every action transition. Calls happen
// synchronously on the goroutine running the action.
func (s *Store) Subscribe(fn func(Action)) (unsubscribe func()) {
	return s.bus.subscribe(fn)
}

// State is a point-in-time copy of every slice.
type State struct {
	User        UserState        `json:"user"`
	TechStack   TechStackState   `json:"techStack"`
	Media       MediaState       `json:"media"`
	Project     ProjectState     `json:"project"`
	Certificate CertificateState `json:"certificate"`
	Dashboard   DashboardState   `json:"dashboard"`
	SEO         SeoState         `json:"seo"`
}

func (s *Store) Snapshot() State {
	return State{
		User:        s.User.State(),
		TechStack:   s.TechStacks.State(),
		Media:       s.Media.State(),
		Project:     s.Projects.State(),
		Certificate: s.Certificates.State(),
		Dashboard:   s.Dashboard.State(),
		SEO:         s.SEO.State(),
	}
}

type bus struct {
	mu   sync.Mutex
	next int
	subs map[int]func(Action)
}

func (b *bus) subscribe(fn func(Action)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = fn
	b.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, id)
			b.mu.Unlock()
		})
	}
}

func (b *bus) emit(a Action) {
	b.mu.Lock()
	fns := make([]func(Action), 0, len(b.subs))
	for _, fn := range b.subs {
		fns = append(fns, fn)
	}
	b.mu.Unlock()
	for _, fn := range fns {
		fn(a)
	}
}

// base is the lifecycle bookkeeping every slice embeds. inflight counts
// concurrent actions so one finishing does not clear another's loading flag.
type base struct {
	name     string
	bus      *bus
	mu       sync.RWMutex
	inflight int
	err      string
}

func (b *base) emit(name string, phase Phase, target, errMsg string) {
	b.bus.emit(Action{
		Type:   fmt.Sprintf("%s/%s/%s", b.name, name, phase),
		Slice:  b.name,
		Name:   name,
		Phase:  phase,
		Target: target,
		Error:  errMsg,
	})
}

func (b *base) loading() bool { return b.inflight > 0 }

// run drives call through the action lifecycle. apply and onReject run with
// the slice lock held.
func run[T any](ctx context.Context, b *base, name, target, fallback string, call func(context.Context) (T, error), apply func(T), onReject func()) (T, error) {
	b.mu.Lock()
	b.inflight++
	b.err = ""
	b.mu.Unlock()
	b.emit(name, Pending, target, "")

	v, err := call(ctx)

	b.mu.Lock()
	b.inflight--
	if err != nil {
		b.err = api.Message(err, fallback)
		if onReject != nil {
			onReject()
		}
		msg := b.err
		b.mu.Unlock()
		b.emit(name, Rejected, target, msg)
		return v, err
	}
	if apply != nil {
		apply(v)
	}
	b.mu.Unlock()
	b.emit(name, Fulfilled, target, "")
	return v, nil
}

// reject fails an action before any request is made.
func reject(b *base, name, target string, err error) error {
	b.mu.Lock()
	b.err = err.Error()
	b.mu.Unlock()
	b.emit(name, Rejected, target, err.Error())
	return err
}

type keyed interface{ Key() int64 }

func replaceByKey[T keyed](items []T, v T) []T {
	for i := range items {
		if items[i].Key() == v.Key() {
			items[i] = v
			break
		}
	}
	return items
}

func removeByKey[T keyed](items []T, key int64) []T {
	out := items[:0]
	for _, it := range items {
		if it.Key() != key {
			out = append(out, it)
		}
	}
	return out
}

func prepend[T any](items []T, v T) []T {
	return append([]T{v}, items...)
}

func clone[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return append([]T(nil), items...)
}

func ptrClone[T any](v *T) *T {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
