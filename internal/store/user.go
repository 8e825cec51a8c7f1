package store

import (
	"context"
	"errors"

	"github.com/Zachkp/portfolio-admin/internal/model"
)

// ErrNotAdmin rejects logins by accounts without the ADMIN role.
var ErrNotAdmin = errors.New("admin role required")

type AuthAPI interface {
	Register(ctx context.Context, req model.RegisterRequest) (model.User, error)
	Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error)
	Me(ctx context.Context) (model.User, error)
	Logout(ctx context.Context) error
}

type UserState struct {
	CurrentUser     *model.User `json:"currentUser"`
	IsLoading       bool        `json:"isLoading"`
	Error           string      `json:"error,omitempty"`
	IsAuthenticated bool        `json:"isAuthenticated"`
}

type UserSlice struct {
	base
	svc             AuthAPI
	currentUser     *model.User
	isAuthenticated bool
}

func (s *UserSlice) State() UserState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return UserState{
		CurrentUser:     ptrClone(s.currentUser),
		IsLoading:       s.loading(),
		Error:           s.err,
		IsAuthenticated: s.isAuthenticated,
	}
}

// Restore seeds the slice from a persisted session without a backend call.
func (s *UserSlice) Restore(u model.User) {
	s.mu.Lock()
	s.currentUser = &u
	s.isAuthenticated = true
	s.mu.Unlock()
}

// Login authenticates and returns the full auth response so the caller can
// persist the token. Only the user is kept in the slice.
func (s *UserSlice) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	return run(ctx, &s.base, "login", req.Username, "Login failed",
		func(ctx context.Context) (model.AuthResponse, error) {
			res, err := s.svc.Login(ctx, req)
			if err != nil {
				return res, err
			}
			if !res.User.IsAdmin() {
				return model.AuthResponse{}, ErrNotAdmin
			}
			return res, nil
		},
		func(res model.AuthResponse) {
			u := res.User
			s.currentUser = &u
			s.isAuthenticated = true
		},
		nil,
	)
}

func (s *UserSlice) Register(ctx context.Context, req model.RegisterRequest) (model.User, error) {
	return run(ctx, &s.base, "register", req.Username, "Registration failed", func(ctx context.Context) (model.User, error) {
		return s.svc.Register(ctx, req)
	}, nil, nil)
}

// GetMe revalidates the session. A rejection logs the user out locally.
func (s *UserSlice) GetMe(ctx context.Context) (model.User, error) {
	u, err := run(ctx, &s.base, "getMe", "", "Session expired", s.svc.Me,
		func(u model.User) {
			s.currentUser = &u
			s.isAuthenticated = true
		},
		func() {
			s.err = "Session expired"
			s.currentUser = nil
			s.isAuthenticated = false
		},
	)
	return u, err
}

// Logout clears local state first; a failing backend call is still returned.
func (s *UserSlice) Logout(ctx context.Context) error {
	s.mu.Lock()
	s.currentUser = nil
	s.isAuthenticated = false
	s.err = ""
	s.mu.Unlock()

	_, err := run(ctx, &s.base, "logout", "", "Logout failed", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, s.svc.Logout(ctx)
	}, nil, nil)
	return err
}
