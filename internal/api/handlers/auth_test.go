// Tests for the token issuance handler using a fake auth service.
package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/matiasleandrokruk/beacon/internal/api/handlers"
	domainauth "github.com/matiasleandrokruk/beacon/internal/domain/auth"
)

// fakeAuthService implements domainauth.Service with canned responses.
type fakeAuthService struct {
	issueResult *domainauth.TokenResult
	issueErr    error
}

func (f *fakeAuthService) CreateClient(_ context.Context, name, _ string) (*domainauth.Client, error) {
	return &domainauth.Client{ID: "client-1", Name: name}, nil
}

func (f *fakeAuthService) IssueToken(context.Context, string, string) (*domainauth.TokenResult, error) {
	return f.issueResult, f.issueErr
}

func postToken(h *handlers.AuthHandler, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.IssueToken(w, req)
	return w
}

func TestIssueToken_Success(t *testing.T) {
	t.Parallel()

	h := handlers.NewAuthHandler(&fakeAuthService{
		issueResult: &domainauth.TokenResult{Token: "jwt-token", ClientID: "client-1"},
	})

	w := postToken(h, `{"name":"cli","secret":"s3cret"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", w.Code)
	}

	var resp handlers.TokenResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "jwt-token" || resp.ClientID != "client-1" {
		t.Fatalf("response = %+v; want token + clientId", resp)
	}
}

func TestIssueToken_InvalidBody(t *testing.T) {
	t.Parallel()

	h := handlers.NewAuthHandler(&fakeAuthService{})

	w := postToken(h, `{not json`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d; want 400", w.Code)
	}
}

func TestIssueToken_MissingFields(t *testing.T) {
	t.Parallel()

	h := handlers.NewAuthHandler(&fakeAuthService{})

	for _, body := range []string{`{}`, `{"name":"cli"}`, `{"secret":"s3cret"}`} {
		w := postToken(h, body)
		if w.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d; want 400", body, w.Code)
		}
	}
}

func TestIssueToken_InvalidCredentials(t *testing.T) {
	t.Parallel()

	h := handlers.NewAuthHandler(&fakeAuthService{issueErr: domainauth.ErrInvalidCredentials})

	w := postToken(h, `{"name":"cli","secret":"wrong"}`)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d; want 401", w.Code)
	}
}

func TestIssueToken_ServiceFailure(t *testing.T) {
	t.Parallel()

	h := handlers.NewAuthHandler(&fakeAuthService{issueErr: errors.New("db down")})

	w := postToken(h, `{"name":"cli","secret":"s3cret"}`)

	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d; want 500", w.Code)
	}
}
