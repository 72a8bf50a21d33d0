package web

import (
	"io"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/keypad-calculator/pkg/config"
	"github.com/lemonberrylabs/keypad-calculator/pkg/store"
)

func setupTestApp(t *testing.T, maxSessions int) (*fiber.App, *store.Store) {
	t.Helper()
	s := store.New(maxSessions)
	h := New(s, config.DefaultKeypad)
	app := fiber.New()
	h.Register(app)
	return app, s
}

func get(t *testing.T, app *fiber.App, path string) (int, string, string) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, resp.Header.Get("Location"), string(body)
}

func press(t *testing.T, app *fiber.App, id, label string) (int, string) {
	t.Helper()
	form := url.Values{"label": {label}}.Encode()
	req := httptest.NewRequest("POST", "/ui/sessions/"+id+"/press", strings.NewReader(form))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	return resp.StatusCode, resp.Header.Get("Location")
}

func TestRootRedirect(t *testing.T) {
	app, _ := setupTestApp(t, 0)

	code, loc, _ := get(t, app, "/")
	if code != 302 {
		t.Fatalf("expected 302, got %d", code)
	}
	if loc != "/ui" {
		t.Fatalf("expected redirect to /ui, got %q", loc)
	}
}

func TestNewSessionRedirect(t *testing.T) {
	app, s := setupTestApp(t, 0)

	code, loc, _ := get(t, app, "/ui")
	if code != 302 {
		t.Fatalf("expected 302, got %d", code)
	}
	if loc != "/ui/sessions/session-1" {
		t.Fatalf("unexpected redirect: %q", loc)
	}
	if len(s.ListSessions()) != 1 {
		t.Fatal("expected a session to be created")
	}
}

func TestCalculatorPage(t *testing.T) {
	app, s := setupTestApp(t, 0)
	if _, err := s.CreateSession("12×3"); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	code, _, html := get(t, app, "/ui/sessions/session-1")
	if code != 200 {
		t.Fatalf("expected 200, got %d: %s", code, html)
	}
	if !strings.Contains(html, "keycalc") {
		t.Error("expected brand in response")
	}
	if !strings.Contains(html, "12×3") {
		t.Error("expected expression in response")
	}
	if !strings.Contains(html, ">36<") {
		t.Error("expected answer in response")
	}
	if !strings.Contains(html, `action="/ui/sessions/session-1/press"`) {
		t.Error("expected keypad forms targeting the session")
	}
	if !strings.Contains(html, "key-equals") {
		t.Error("expected styled equals key")
	}
}

func TestCalculatorPageNotFound(t *testing.T) {
	app, _ := setupTestApp(t, 0)

	code, _, html := get(t, app, "/ui/sessions/nope")
	if code != 404 {
		t.Fatalf("expected 404, got %d", code)
	}
	if !strings.Contains(html, "Session 'nope' not found") {
		t.Error("expected not found message")
	}
}

func TestPressForm(t *testing.T) {
	app, s := setupTestApp(t, 0)
	if _, err := s.CreateSession(""); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	for _, label := range []string{"9", "÷", "3"} {
		code, loc := press(t, app, "session-1", label)
		if code != 303 {
			t.Fatalf("press %s: expected 303, got %d", label, code)
		}
		if loc != "/ui/sessions/session-1" {
			t.Fatalf("press %s: unexpected redirect %q", label, loc)
		}
	}

	sess, err := s.GetSession("sessions/session-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if sess.State.Expression != "9÷3" || sess.State.Answer != "3" {
		t.Fatalf("unexpected state: %+v", sess.State)
	}
}

func TestPressFormErrors(t *testing.T) {
	app, s := setupTestApp(t, 0)
	if _, err := s.CreateSession(""); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if code, _ := press(t, app, "session-1", "sqrt"); code != 400 {
		t.Fatalf("expected 400 for unknown key, got %d", code)
	}
	if code, _ := press(t, app, "missing", "1"); code != 404 {
		t.Fatalf("expected 404 for unknown session, got %d", code)
	}
}

func TestSessionList(t *testing.T) {
	app, s := setupTestApp(t, 0)

	_, _, html := get(t, app, "/ui/sessions")
	if !strings.Contains(html, "No active sessions") {
		t.Error("expected empty state message")
	}

	s.CreateSession("1+1")
	s.CreateSession("")

	code, _, html := get(t, app, "/ui/sessions")
	if code != 200 {
		t.Fatalf("expected 200, got %d", code)
	}
	if !strings.Contains(html, "session-1") || !strings.Contains(html, "session-2") {
		t.Error("expected both sessions listed")
	}
}

func TestNewSessionLimit(t *testing.T) {
	app, _ := setupTestApp(t, 1)

	get(t, app, "/ui")
	code, _, html := get(t, app, "/ui")
	if code != 429 {
		t.Fatalf("expected 429, got %d", code)
	}
	if !strings.Contains(html, "Too many sessions") {
		t.Error("expected limit message")
	}
}

func TestKeyClass(t *testing.T) {
	tests := []struct {
		label string
		want  string
	}{
		{"7", "key-digit"},
		{".", "key-digit"},
		{"÷", "key-op"},
		{"+/-", "key-op"},
		{"%", "key-op"},
		{"C", "key-clear"},
		{"DEL", "key-clear"},
		{"=", "key-equals"},
	}
	for _, tt := range tests {
		if got := keyClass(tt.label); got != tt.want {
			t.Errorf("keyClass(%q) = %q, want %q", tt.label, got, tt.want)
		}
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("12×34", 3); got != "12×..." {
		t.Errorf("unexpected truncate result %q", got)
	}
	if got := truncate("12", 3); got != "12" {
		t.Errorf("unexpected truncate result %q", got)
	}
}

func TestNewParsesEveryPage(t *testing.T) {
	h := New(store.New(0), config.DefaultKeypad)
	for _, page := range pages {
		if h.pages[page] == nil {
			t.Errorf("page %s not parsed", page)
		}
		if h.pages[page].Lookup("layout") == nil {
			t.Errorf("page %s is missing the layout", page)
		}
	}
}
