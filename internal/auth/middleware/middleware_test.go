package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mind-engage/mindengage-quiz/internal/rbac"
)

func operator(t *testing.T) Operator {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	return Operator{User: "admin", PassHash: string(h), Role: "admin"}
}

func TestLoginIssuesToken(t *testing.T) {
	a := NewAuthService("k")
	h := LoginHandler(a, operator(t))

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"s3cret"}`)))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), "access_token") {
		t.Fatalf("login = %d %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"admin","password":"nope"}`)))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad password = %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad json = %d", rec.Code)
	}
}

func TestJWTMiddlewareSetsContext(t *testing.T) {
	a := NewAuthService("k")
	tok, err := a.IssueJWT("ops", "proctor")
	if err != nil {
		t.Fatal(err)
	}
	var sub, role string
	h := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sub, role = Actor(r.Context()), rbac.RoleFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || sub != "ops" || role != "proctor" {
		t.Fatalf("code=%d sub=%q role=%q", rec.Code, sub, role)
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing bearer = %d", rec.Code)
	}
}

func TestParseRejectsExpiredAndForeignTokens(t *testing.T) {
	a := NewAuthService("k")
	a.now = func() time.Time { return time.Now().Add(-9 * time.Hour) }
	old, _ := a.IssueJWT("ops", "admin")
	a.now = time.Now
	if _, err := a.Parse(old); err == nil {
		t.Fatal("expired token accepted")
	}

	other, _ := NewAuthService("other").IssueJWT("ops", "admin")
	if _, err := a.Parse(other); err == nil {
		t.Fatal("token signed with another key accepted")
	}
}

func TestPrincipalAndActor(t *testing.T) {
	ctx := context.Background()
	if got := Actor(ctx); got != "anonymous" {
		t.Fatalf("actor without principal = %q", got)
	}
	ctx = WithPrincipal(ctx, Principal{Subject: "ops", Role: "proctor"})
	p, ok := PrincipalFromContext(ctx)
	if !ok || p.Subject != "ops" || Actor(ctx) != "ops" || rbac.RoleFromContext(ctx) != "proctor" {
		t.Fatalf("principal = %+v ok=%v role=%q", p, ok, rbac.RoleFromContext(ctx))
	}
}

func TestLoginReportsPermissions(t *testing.T) {
	h, _ := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	login := LoginHandler(NewAuthService("k"), Operator{User: "ops", PassHash: string(h), Role: "proctor"})
	rec := httptest.NewRecorder()
	login(rec, httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"username":"ops","password":"pw"}`)))

	var got loginResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Role != "proctor" || !slices.Contains(got.Permissions, rbac.PermLocksRelease) || slices.Contains(got.Permissions, rbac.PermBankReload) {
		t.Fatalf("login = %+v", got)
	}
}
