package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dmitrijs2005/accountkeeper/internal/common"
	"github.com/dmitrijs2005/accountkeeper/internal/logging"
	"github.com/dmitrijs2005/accountkeeper/internal/server/models"
	"github.com/dmitrijs2005/accountkeeper/internal/server/services"
)

type fakeUserService struct {
	signupErr error

	loginOut *services.LoginResult
	loginErr error

	forgotErr    error
	forgotCalled []string

	resetErr error

	updateOut *services.Profile
	updateErr error
}

func (f *fakeUserService) Signup(ctx context.Context, username, email, password, confirmPassword string) error {
	return f.signupErr
}

func (f *fakeUserService) Login(ctx context.Context, email, password string) (*services.LoginResult, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return f.loginOut, nil
}

func (f *fakeUserService) ForgotPassword(ctx context.Context, email string) error {
	f.forgotCalled = append(f.forgotCalled, email)
	return f.forgotErr
}

func (f *fakeUserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	return f.resetErr
}

func (f *fakeUserService) UpdateProfile(ctx context.Context, email string, upd models.ProfileUpdate) (*services.Profile, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	return f.updateOut, nil
}

func newTestServer(t *testing.T, svc UserService) http.Handler {
	t.Helper()
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewHTTPServer(":0", logger, svc, "http://localhost:5173").Router()
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSignup_Created(t *testing.T) {
	h := newTestServer(t, &fakeUserService{})

	rec := doJSON(t, h, http.MethodPost, "/auth/signup", map[string]string{
		"username": "alice", "email": "a@x.com",
		"password": "secret1", "confirm_password": "secret1",
	})

	if rec.Code != http.StatusCreated {
		t.Fatalf("want 201, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSignup_InvalidUsernameRejectedBeforeService(t *testing.T) {
	h := newTestServer(t, &fakeUserService{signupErr: common.ErrorInternal})

	// digits in the username fail schema validation, the service is not reached
	rec := doJSON(t, h, http.MethodPost, "/auth/signup", map[string]string{
		"username": "alice99", "email": "a@x.com",
		"password": "secret1", "confirm_password": "secret1",
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestSignup_EmailTaken(t *testing.T) {
	h := newTestServer(t, &fakeUserService{signupErr: common.ErrEmailTaken})

	rec := doJSON(t, h, http.MethodPost, "/auth/signup", map[string]string{
		"username": "alice", "email": "a@x.com",
		"password": "secret1", "confirm_password": "secret1",
	})

	if rec.Code != http.StatusConflict {
		t.Fatalf("want 409, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestLogin_Success_ProfileWithNullAddress(t *testing.T) {
	h := newTestServer(t, &fakeUserService{
		loginOut: &services.LoginResult{
			AccessToken: "tok-123",
			User:        services.Profile{Username: "alice", Email: "a@x.com"},
		},
	})

	rec := doJSON(t, h, http.MethodPost, "/auth/login", map[string]string{
		"email": "a@x.com", "password": "secret1",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			AccessToken string          `json:"access_token"`
			User        json.RawMessage `json:"user"`
		} `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if resp.Data.AccessToken != "tok-123" {
		t.Fatalf("unexpected token: %q", resp.Data.AccessToken)
	}

	var user map[string]json.RawMessage
	if err := json.Unmarshal(resp.Data.User, &user); err != nil {
		t.Fatalf("unmarshal user: %v", err)
	}
	if string(user["address"]) != "null" {
		t.Fatalf("address must serialize as null, got %s", user["address"])
	}
}

func TestLogin_InvalidCredentials(t *testing.T) {
	h := newTestServer(t, &fakeUserService{loginErr: common.ErrInvalidCredentials})

	rec := doJSON(t, h, http.MethodPost, "/auth/login", map[string]string{
		"email": "a@x.com", "password": "wrong1",
	})

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("want 401, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestForgotPassword_SameBodyForKnownAndUnknownEmail(t *testing.T) {
	h := newTestServer(t, &fakeUserService{})

	known := doJSON(t, h, http.MethodPost, "/auth/forgot-password", map[string]string{"email": "a@x.com"})
	unknown := doJSON(t, h, http.MethodPost, "/auth/forgot-password", map[string]string{"email": "nobody@x.com"})

	if known.Code != http.StatusOK || unknown.Code != http.StatusOK {
		t.Fatalf("want 200/200, got %d/%d", known.Code, unknown.Code)
	}
	if known.Body.String() != unknown.Body.String() {
		t.Fatalf("acknowledgements must be identical:\n%s\n%s", known.Body.String(), unknown.Body.String())
	}
}

func TestResetPassword_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"garbage token", common.ErrInvalidToken, http.StatusBadRequest},
		{"expired", common.ErrTokenExpired, http.StatusBadRequest},
		{"already used", common.ErrTokenAlreadyUsed, http.StatusBadRequest},
		{"same password", common.ErrSamePassword, http.StatusBadRequest},
		{"account missing", common.ErrAccountNotFound, http.StatusNotFound},
		{"store fault", common.ErrorInternal, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestServer(t, &fakeUserService{resetErr: tt.err})

			rec := doJSON(t, h, http.MethodPost, "/auth/reset-password", map[string]string{
				"token": "some-token", "new_password": "newpass1",
			})

			if rec.Code != tt.want {
				t.Fatalf("want %d, got %d: %s", tt.want, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestResetPassword_InternalDetailNotLeaked(t *testing.T) {
	h := newTestServer(t, &fakeUserService{resetErr: common.ErrorInternal})

	rec := doJSON(t, h, http.MethodPost, "/auth/reset-password", map[string]string{
		"token": "some-token", "new_password": "newpass1",
	})

	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if resp.Message != "Internal server error" {
		t.Fatalf("internal detail leaked: %q", resp.Message)
	}
}

func TestUpdateProfile_InvalidAge(t *testing.T) {
	h := newTestServer(t, &fakeUserService{updateErr: common.ErrInvalidAge})

	rec := doJSON(t, h, http.MethodPut, "/auth/profile", map[string]any{
		"email": "a@x.com", "age": 200,
	})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestUpdateProfile_Success(t *testing.T) {
	addr := "12 Main Street"
	h := newTestServer(t, &fakeUserService{
		updateOut: &services.Profile{Username: "alice", Email: "a@x.com", Address: &addr},
	})

	rec := doJSON(t, h, http.MethodPut, "/auth/profile", map[string]any{
		"email": "a@x.com", "address": addr,
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("want 200, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestMalformedJSONBody(t *testing.T) {
	h := newTestServer(t, &fakeUserService{})

	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader([]byte("{not json")))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("want 400, got %d", rec.Code)
	}
}
