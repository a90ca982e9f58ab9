package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	_ "modernc.org/sqlite"

	"github.com/tigertix/ticket-assistant/internal/config"
	"github.com/tigertix/ticket-assistant/internal/database"
	"github.com/tigertix/ticket-assistant/internal/repository"
)

func newAuthHandler(t *testing.T) *AuthHandler {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc", filepath.Join(t.TempDir(), "auth.db"))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := database.InitSchema(context.Background(), db, "sqlite"); err != nil {
		t.Fatalf("init schema: %v", err)
	}

	cfg := config.Config{
		JWTSecret:    "test-secret",
		AccessTTLMin: 15,
		BcryptCost:   4, // minimum cost keeps the test fast
	}
	return NewAuthHandler(cfg, repository.NewUserRepo(db))
}

func TestRegisterAndLogin(t *testing.T) {
	h := newAuthHandler(t)

	rec, out := postJSON(t, h.Register, "/v1/auth/register", `{"email":"Tiger@Clemson.edu","password":"gotigers"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %v", rec.Code, out)
	}
	user := out["user"].(map[string]any)
	if user["email"] != "tiger@clemson.edu" {
		t.Errorf("email = %v, want lower-cased", user["email"])
	}
	if user["role"] != "CUSTOMER" {
		t.Errorf("role = %v, registration must never grant anything else", user["role"])
	}
	token, _ := out["token"].(string)
	if token == "" {
		t.Fatal("register must return a token")
	}

	// The issued token carries the user id and role.
	parsed, err := jwt.Parse(token, func(tk *jwt.Token) (any, error) { return []byte("test-secret"), nil })
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	claims := parsed.Claims.(jwt.MapClaims)
	if claims["role"] != "CUSTOMER" {
		t.Errorf("token role = %v", claims["role"])
	}

	// Same email again conflicts regardless of case.
	rec, _ = postJSON(t, h.Register, "/v1/auth/register", `{"email":"tiger@clemson.edu","password":"other"}`)
	if rec.Code != http.StatusConflict {
		t.Errorf("duplicate register status = %d, want 409", rec.Code)
	}

	rec, out = postJSON(t, h.Login, "/v1/auth/login", `{"email":"tiger@clemson.edu","password":"gotigers"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("login status = %d, body %v", rec.Code, out)
	}
	if tok, _ := out["token"].(string); tok == "" {
		t.Error("login must return a token")
	}

	rec, out = postJSON(t, h.Login, "/v1/auth/login", `{"email":"tiger@clemson.edu","password":"wrong"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("bad password status = %d, want 401", rec.Code)
	}
	if out["error"] != "invalid credentials" {
		t.Errorf("error = %v, want the uniform message", out["error"])
	}

	rec, out = postJSON(t, h.Login, "/v1/auth/login", `{"email":"nobody@clemson.edu","password":"gotigers"}`)
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("unknown email status = %d, want 401", rec.Code)
	}
	if out["error"] != "invalid credentials" {
		t.Errorf("error = %v, unknown email must not be distinguishable", out["error"])
	}
}

func TestMe(t *testing.T) {
	h := newAuthHandler(t)

	rec, out := postJSON(t, h.Register, "/v1/auth/register", `{"email":"me@clemson.edu","password":"secret"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("register status = %d, body %v", rec.Code, out)
	}
	uid := int64(out["user"].(map[string]any)["id"].(float64))

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", strings.NewReader(""))
	mrec := httptest.NewRecorder()
	c := e.NewContext(req, mrec)
	c.Set("user_id", uid)
	if err := h.Me(c); err != nil {
		t.Fatalf("me: %v", err)
	}
	if mrec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", mrec.Code, mrec.Body.String())
	}
	var profile map[string]any
	if err := json.Unmarshal(mrec.Body.Bytes(), &profile); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if profile["email"] != "me@clemson.edu" {
		t.Errorf("email = %v", profile["email"])
	}
}
