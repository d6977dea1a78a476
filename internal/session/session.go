// Package session owns the current user identity and bearer token. Every
// mutating storefront operation is gated on it. Authentication is token
// presence: a persisted token with no resolved user object still counts as
// an authenticated session.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"storefront-client/internal/api"
	"storefront-client/internal/dto"
	"storefront-client/internal/model"
	"storefront-client/internal/normalize"
	"storefront-client/internal/store"
)

const (
	msgLoginFailed     = "login failed, please try again"
	msgRequestFailed   = "request failed, please try again"
	msgPasswordsDiffer = "passwords do not match"
)

// AuthAPI is the slice of the backend client the session needs.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*api.Response, error)
	Register(ctx context.Context, req dto.RegisterRequest) (*api.Response, error)
	VerifyAccount(ctx context.Context, email, code string) (*api.Response, error)
	Logout(ctx context.Context) (*api.Response, error)
	Profile(ctx context.Context) (*api.Response, error)
	EditProfile(ctx context.Context, update dto.ProfileUpdate) (*api.Response, error)
	ChangePassword(ctx context.Context, current, next string) (*api.Response, error)
	DeleteAccount(ctx context.Context) (*api.Response, error)
	SendResetOTP(ctx context.Context, email string) (*api.Response, error)
	VerifyResetOTP(ctx context.Context, email, code string) (*api.Response, error)
	SetNewPassword(ctx context.Context, resetToken, password string) (*api.Response, error)
}

type Service struct {
	api AuthAPI
	db  *store.Store
	log *slog.Logger

	mu    sync.Mutex
	token string
	user  *model.User
}

// New restores any persisted token and user. A corrupt or missing blob just
// means an unauthenticated session.
func New(authAPI AuthAPI, db *store.Store, log *slog.Logger) *Service {
	s := &Service{api: authAPI, db: db, log: log}

	if _, err := db.Get(store.KeyToken, &s.token); err != nil {
		log.Warn("restore token", "err", err)
	}
	var user model.User
	if ok, err := db.Get(store.KeyUser, &user); err != nil {
		log.Warn("restore user", "err", err)
	} else if ok {
		s.user = &user
	}

	return s
}

// Token implements api.TokenSource.
func (s *Service) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

func (s *Service) IsAuthenticated() bool {
	return s.Token() != ""
}

func (s *Service) CurrentUser() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

// TokenExpiry inspects the bearer token as a JWT, best effort and without
// signature verification. Tokens that do not parse stay opaque.
func (s *Service) TokenExpiry() (time.Time, bool) {
	token := s.Token()
	if token == "" {
		return time.Time{}, false
	}

	parsed, _, err := jwt.NewParser().ParseUnverified(token, jwt.MapClaims{})
	if err != nil {
		return time.Time{}, false
	}
	exp, err := parsed.Claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// Login authenticates against the backend. Success is decided by token
// presence: a success flag with no token is still a failed login, and a
// token with no user body is a successful one (the profile is then resolved
// best effort).
func (s *Service) Login(ctx context.Context, email, password string) dto.LoginResult {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.log.Warn("login request", "err", err)
		return dto.LoginResult{Result: dto.Fail(msgLoginFailed)}
	}

	token, _ := normalize.FirstString(resp.Doc(), normalize.TokenProbes)
	if token == "" {
		msg := resp.Message
		if msg == "" {
			msg = msgLoginFailed
		}
		return dto.LoginResult{Result: dto.Fail(msg)}
	}

	user := decodeUser(resp.DataDoc())

	s.mu.Lock()
	s.token = token
	s.user = user
	s.mu.Unlock()

	if err := s.db.Put(store.KeyToken, token); err != nil {
		s.log.Warn("persist token", "err", err)
	}

	// A present token implies an attempt to resolve the user.
	if user == nil {
		user = s.resolveProfile(ctx)
	}
	if user != nil {
		s.mu.Lock()
		s.user = user
		s.mu.Unlock()
		if err := s.db.Put(store.KeyUser, user); err != nil {
			s.log.Warn("persist user", "err", err)
		}
	}

	return dto.LoginResult{Result: dto.OK(resp.Message), User: user}
}

// Logout clears local session state unconditionally. The remote call is
// best effort; its failure never leaves the client authenticated.
func (s *Service) Logout(ctx context.Context) {
	if _, err := s.api.Logout(ctx); err != nil {
		s.log.Warn("remote logout", "err", err)
	}

	s.mu.Lock()
	s.token = ""
	s.user = nil
	s.mu.Unlock()

	if err := s.db.Delete(store.KeyToken); err != nil {
		s.log.Warn("clear token", "err", err)
	}
	if err := s.db.Delete(store.KeyUser); err != nil {
		s.log.Warn("clear user", "err", err)
	}
}

func (s *Service) Register(ctx context.Context, req dto.RegisterRequest) dto.Result {
	return s.simple(ctx, func() (*api.Response, error) {
		return s.api.Register(ctx, req)
	})
}

// VerifyAccount confirms a registration OTP. Some backend versions hand out
// a session token on verification; when present it is adopted like a login.
func (s *Service) VerifyAccount(ctx context.Context, email, code string) dto.Result {
	resp, err := s.api.VerifyAccount(ctx, email, code)
	if err != nil {
		s.log.Warn("verify account", "err", err)
		return dto.Fail(msgRequestFailed)
	}
	if !resp.Success {
		return dto.Fail(failMessage(resp))
	}

	if token, ok := normalize.FirstString(resp.Doc(), normalize.TokenProbes); ok {
		s.mu.Lock()
		s.token = token
		s.mu.Unlock()
		if err := s.db.Put(store.KeyToken, token); err != nil {
			s.log.Warn("persist token", "err", err)
		}
		if user := s.resolveProfile(ctx); user != nil {
			s.mu.Lock()
			s.user = user
			s.mu.Unlock()
			if err := s.db.Put(store.KeyUser, user); err != nil {
				s.log.Warn("persist user", "err", err)
			}
		}
	}

	return dto.OK(resp.Message)
}

// RequestReset starts the three-step password reset flow.
func (s *Service) RequestReset(ctx context.Context, email string) dto.Result {
	return s.simple(ctx, func() (*api.Response, error) {
		return s.api.SendResetOTP(ctx, email)
	})
}

// VerifyResetCode exchanges the emailed OTP for a reset token.
func (s *Service) VerifyResetCode(ctx context.Context, email, code string) (string, dto.Result) {
	resp, err := s.api.VerifyResetOTP(ctx, email, code)
	if err != nil {
		s.log.Warn("verify reset code", "err", err)
		return "", dto.Fail(msgRequestFailed)
	}
	if !resp.Success {
		return "", dto.Fail(failMessage(resp))
	}

	token, ok := normalize.FirstString(resp.Doc(), normalize.TokenProbes)
	if !ok {
		return "", dto.Fail(failMessage(resp))
	}
	return token, dto.OK(resp.Message)
}

// SetNewPassword finishes the reset flow. The confirmation mismatch is a
// validation error and never reaches the network.
func (s *Service) SetNewPassword(ctx context.Context, resetToken, password, confirm string) dto.Result {
	if password != confirm {
		return dto.Fail(msgPasswordsDiffer)
	}
	return s.simple(ctx, func() (*api.Response, error) {
		return s.api.SetNewPassword(ctx, resetToken, password)
	})
}

func (s *Service) EditProfile(ctx context.Context, update dto.ProfileUpdate) dto.Result {
	res := s.simple(ctx, func() (*api.Response, error) {
		return s.api.EditProfile(ctx, update)
	})
	if res.Success {
		if user := s.resolveProfile(ctx); user != nil {
			s.mu.Lock()
			s.user = user
			s.mu.Unlock()
			if err := s.db.Put(store.KeyUser, user); err != nil {
				s.log.Warn("persist user", "err", err)
			}
		}
	}
	return res
}

func (s *Service) ChangePassword(ctx context.Context, current, next string) dto.Result {
	return s.simple(ctx, func() (*api.Response, error) {
		return s.api.ChangePassword(ctx, current, next)
	})
}

// DeleteAccount removes the remote account and, on success, drops the local
// session the same way logout does.
func (s *Service) DeleteAccount(ctx context.Context) dto.Result {
	res := s.simple(ctx, func() (*api.Response, error) {
		return s.api.DeleteAccount(ctx)
	})
	if res.Success {
		s.Logout(ctx)
	}
	return res
}

func (s *Service) simple(ctx context.Context, call func() (*api.Response, error)) dto.Result {
	resp, err := call()
	if err != nil {
		s.log.Warn("auth request", "err", err)
		return dto.Fail(msgRequestFailed)
	}
	if !resp.Success {
		return dto.Fail(failMessage(resp))
	}
	return dto.OK(resp.Message)
}

func (s *Service) resolveProfile(ctx context.Context) *model.User {
	resp, err := s.api.Profile(ctx)
	if err != nil || !resp.Success {
		s.log.Warn("resolve profile", "err", err)
		return nil
	}
	return decodeUser(resp.DataDoc())
}

func failMessage(resp *api.Response) string {
	if resp.Message != "" {
		return resp.Message
	}
	return msgRequestFailed
}

// decodeUser accepts the user either directly under data or nested at
// data.user.
func decodeUser(data any) *model.User {
	m, ok := normalize.AsMap(data)
	if !ok {
		return nil
	}
	if nested, ok := normalize.AsMap(m["user"]); ok {
		m = nested
	}

	id, hasID := normalize.ID(m["id"])
	email := normalize.Str(m["email"])
	if !hasID && email == "" {
		return nil
	}

	return &model.User{
		ID:    id,
		Name:  normalize.Str(m["name"]),
		Email: email,
		Phone: normalize.Str(m["phone"]),
	}
}
