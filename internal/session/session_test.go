package session

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"storefront-client/internal/api"
	"storefront-client/internal/dto"
	"storefront-client/internal/store"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testStore(t *testing.T) *store.Store {
	t.Helper()
	db, err := store.Open(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return db
}

func resp(raw string) *api.Response {
	r := &api.Response{StatusCode: 200, Body: []byte(raw)}
	_ = json.Unmarshal([]byte(raw), &r.Envelope)
	return r
}

// fakeAuthAPI answers success for everything unless a field overrides it.
type fakeAuthAPI struct {
	loginResp   *api.Response
	loginErr    error
	logoutErr   error
	profileResp *api.Response
	verifyResp  *api.Response
	otpResp     *api.Response
}

func (f *fakeAuthAPI) Login(ctx context.Context, email, password string) (*api.Response, error) {
	return f.loginResp, f.loginErr
}

func (f *fakeAuthAPI) Logout(ctx context.Context) (*api.Response, error) {
	if f.logoutErr != nil {
		return nil, f.logoutErr
	}
	return resp(`{"success":true}`), nil
}

func (f *fakeAuthAPI) Profile(ctx context.Context) (*api.Response, error) {
	if f.profileResp != nil {
		return f.profileResp, nil
	}
	return resp(`{"success":false,"message":"unavailable"}`), nil
}

func (f *fakeAuthAPI) Register(ctx context.Context, req dto.RegisterRequest) (*api.Response, error) {
	return resp(`{"success":true,"message":"verification code sent"}`), nil
}

func (f *fakeAuthAPI) VerifyAccount(ctx context.Context, email, code string) (*api.Response, error) {
	if f.verifyResp != nil {
		return f.verifyResp, nil
	}
	return resp(`{"success":true}`), nil
}

func (f *fakeAuthAPI) EditProfile(ctx context.Context, update dto.ProfileUpdate) (*api.Response, error) {
	return resp(`{"success":true,"message":"profile updated"}`), nil
}

func (f *fakeAuthAPI) ChangePassword(ctx context.Context, current, next string) (*api.Response, error) {
	return resp(`{"success":true,"message":"password changed"}`), nil
}

func (f *fakeAuthAPI) DeleteAccount(ctx context.Context) (*api.Response, error) {
	return resp(`{"success":true,"message":"account deleted"}`), nil
}

func (f *fakeAuthAPI) SendResetOTP(ctx context.Context, email string) (*api.Response, error) {
	return resp(`{"success":true,"message":"reset code sent"}`), nil
}

func (f *fakeAuthAPI) VerifyResetOTP(ctx context.Context, email, code string) (*api.Response, error) {
	if f.otpResp != nil {
		return f.otpResp, nil
	}
	return resp(`{"success":true,"data":{"token":"reset-token"}}`), nil
}

func (f *fakeAuthAPI) SetNewPassword(ctx context.Context, resetToken, password string) (*api.Response, error) {
	return resp(`{"success":true,"message":"password updated"}`), nil
}

func TestLoginPersistsTokenAndUser(t *testing.T) {
	db := testStore(t)
	fake := &fakeAuthAPI{
		loginResp: resp(`{"success":true,"data":{"token":"tok-1","user":{"id":4,"name":"Lina","email":"lina@example.com"}}}`),
	}
	s := New(fake, db, testLogger())

	res := s.Login(context.Background(), "lina@example.com", "pw")
	if !res.Success {
		t.Fatalf("login failed: %s", res.Message)
	}
	if !s.IsAuthenticated() {
		t.Fatal("session should be authenticated")
	}
	if res.User == nil || res.User.Email != "lina@example.com" {
		t.Fatalf("user not resolved: %+v", res.User)
	}

	// A new session instance restores everything from the store.
	restored := New(fake, db, testLogger())
	if !restored.IsAuthenticated() {
		t.Fatal("token should have been persisted")
	}
	if u := restored.CurrentUser(); u == nil || u.ID != 4 {
		t.Fatalf("user should have been persisted, got %+v", u)
	}
}

func TestLoginAuthenticatedWithoutUserBody(t *testing.T) {
	fake := &fakeAuthAPI{
		loginResp: resp(`{"success":true,"data":{"token":"tok-2"}}`),
	}
	s := New(fake, testStore(t), testLogger())

	res := s.Login(context.Background(), "a@b.c", "pw")
	if !res.Success {
		t.Fatal("token presence alone must authenticate the session")
	}
	if !s.IsAuthenticated() {
		t.Fatal("session should be authenticated")
	}
}

func TestLoginSuccessFlagWithoutTokenFails(t *testing.T) {
	fake := &fakeAuthAPI{
		loginResp: resp(`{"success":true,"message":"welcome"}`),
	}
	s := New(fake, testStore(t), testLogger())

	if res := s.Login(context.Background(), "a@b.c", "pw"); res.Success {
		t.Fatal("no token means no session, whatever the flag says")
	}
	if s.IsAuthenticated() {
		t.Fatal("session must stay unauthenticated")
	}
}

func TestLoginFailureNormalized(t *testing.T) {
	fake := &fakeAuthAPI{loginErr: errors.New("connection refused")}
	s := New(fake, testStore(t), testLogger())

	res := s.Login(context.Background(), "a@b.c", "pw")
	if res.Success || res.Message == "" {
		t.Fatalf("transport failure must yield a failed result with message, got %+v", res)
	}
}

func TestLogoutClearsStateEvenWhenRemoteFails(t *testing.T) {
	db := testStore(t)
	fake := &fakeAuthAPI{
		loginResp: resp(`{"success":true,"data":{"token":"tok-3","user":{"id":1,"email":"a@b.c"}}}`),
		logoutErr: errors.New("network down"),
	}
	s := New(fake, db, testLogger())
	s.Login(context.Background(), "a@b.c", "pw")

	s.Logout(context.Background())

	if s.IsAuthenticated() {
		t.Fatal("session must be unauthenticated after logout")
	}
	if s.CurrentUser() != nil {
		t.Fatal("user must be cleared after logout")
	}

	var tok string
	if ok, _ := db.Get(store.KeyToken, &tok); ok {
		t.Fatal("persisted token must be gone")
	}
	var anything map[string]any
	if ok, _ := db.Get(store.KeyUser, &anything); ok {
		t.Fatal("persisted user must be gone")
	}
}

func TestResetFlow(t *testing.T) {
	s := New(&fakeAuthAPI{}, testStore(t), testLogger())

	if res := s.RequestReset(context.Background(), "a@b.c"); !res.Success {
		t.Fatalf("request reset: %s", res.Message)
	}

	token, res := s.VerifyResetCode(context.Background(), "a@b.c", "0000")
	if !res.Success || token != "reset-token" {
		t.Fatalf("verify reset code: token=%q res=%+v", token, res)
	}

	if res := s.SetNewPassword(context.Background(), token, "new", "new"); !res.Success {
		t.Fatalf("set new password: %s", res.Message)
	}
}

func TestSetNewPasswordMismatchIsLocal(t *testing.T) {
	s := New(&fakeAuthAPI{}, testStore(t), testLogger())

	res := s.SetNewPassword(context.Background(), "tok", "one", "two")
	if res.Success {
		t.Fatal("mismatched confirmation must fail")
	}
}

func TestVerifyAccountAdoptsToken(t *testing.T) {
	fake := &fakeAuthAPI{
		verifyResp: resp(`{"success":true,"data":{"token":"tok-4"}}`),
	}
	s := New(fake, testStore(t), testLogger())

	if res := s.VerifyAccount(context.Background(), "a@b.c", "1234"); !res.Success {
		t.Fatalf("verify: %s", res.Message)
	}
	if !s.IsAuthenticated() {
		t.Fatal("verification token should start a session")
	}
}
