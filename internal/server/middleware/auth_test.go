package middleware

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mamadbah2/shiftdesk/internal/service/shifts"
)

func TestJWTManagerRoundTrip(t *testing.T) {
	m := NewJWTManager("secret")

	tests := []struct {
		name     string
		role     shifts.Role
		wantRole shifts.Role
	}{
		{name: "cashier", role: shifts.RoleCashier, wantRole: shifts.RoleCashier},
		{name: "manager", role: shifts.RoleManager, wantRole: shifts.RoleManager},
		{name: "unknown role falls back to cashier", role: "auditor", wantRole: shifts.RoleCashier},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signed, err := m.Generate("op-1", tt.role, time.Hour)
			if err != nil {
				t.Fatalf("Generate returned error: %v", err)
			}
			actor, err := m.Validate(signed)
			if err != nil {
				t.Fatalf("Validate returned error: %v", err)
			}
			if actor.ID != "op-1" || actor.Role != tt.wantRole {
				t.Fatalf("unexpected actor %+v", actor)
			}
		})
	}
}

func TestJWTManagerRejects(t *testing.T) {
	m := NewJWTManager("secret")

	expired, err := m.Generate("op-1", shifts.RoleCashier, -time.Minute)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	foreign, err := NewJWTManager("other").Generate("op-1", shifts.RoleOwner, time.Hour)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}
	anonymous, err := m.Generate("", shifts.RoleCashier, time.Hour)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	for name, raw := range map[string]string{
		"expired":      expired,
		"wrong secret": foreign,
		"no subject":   anonymous,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := m.Validate(raw); !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	m := NewJWTManager("secret")
	valid, err := m.Generate("op-7", shifts.RoleManager, time.Hour)
	if err != nil {
		t.Fatalf("Generate returned error: %v", err)
	}

	tests := []struct {
		name       string
		header     string
		wantStatus int
	}{
		{name: "valid bearer", header: "Bearer " + valid, wantStatus: http.StatusOK},
		{name: "lowercase scheme", header: "bearer " + valid, wantStatus: http.StatusOK},
		{name: "missing header", header: "", wantStatus: http.StatusUnauthorized},
		{name: "basic auth", header: "Basic b3A6cGFzcw==", wantStatus: http.StatusUnauthorized},
		{name: "bad token", header: "Bearer nope", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen shifts.Actor
			r := gin.New()
			r.Use(RequireAuth(m, nil))
			r.GET("/whoami", func(c *gin.Context) {
				seen = ActorFrom(c)
				c.Status(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus == http.StatusOK && (seen.ID != "op-7" || seen.Role != shifts.RoleManager) {
				t.Fatalf("unexpected actor %+v", seen)
			}
		})
	}
}
