// Package web provides the embedded web UI for the keypad calculator.
package web

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/lemonberrylabs/keypad-calculator/pkg/editor"
	"github.com/lemonberrylabs/keypad-calculator/pkg/expr"
	"github.com/lemonberrylabs/keypad-calculator/pkg/store"
)

//go:embed templates/*.html
var templateFS embed.FS

// pages lists every page template; each is parsed together with the layout.
var pages = []string{"calculator.html", "sessions.html", "message.html"}

// Handler serves the web UI pages.
type Handler struct {
	store  *store.Store
	keypad [][]string
	pages  map[string]*template.Template
}

// pageData wraps all page-specific data with common fields.
type pageData struct {
	NavActive string
	Data      interface{}
}

// New creates a new web UI handler rendering the given keypad rows. It
// panics if the embedded templates fail to parse.
func New(s *store.Store, keypad [][]string) *Handler {
	funcMap := template.FuncMap{
		"shortName":  shortName,
		"timeAgo":    timeAgo,
		"formatTime": formatTime,
		"keyClass":   keyClass,
		"truncate":   truncate,
	}

	// Each page is parsed with the layout on its own so "content" blocks
	// don't collide across pages.
	parsed := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		parsed[page] = template.Must(
			template.New("").Funcs(funcMap).ParseFS(templateFS, "templates/layout.html", "templates/"+page),
		)
	}

	return &Handler{
		store:  s,
		keypad: keypad,
		pages:  parsed,
	}
}

func (h *Handler) render(c *fiber.Ctx, status int, page string, navActive string, data interface{}) error {
	tmpl, ok := h.pages[page]
	if !ok {
		return c.Status(500).SendString(fmt.Sprintf("unknown page %q", page))
	}

	pd := pageData{
		NavActive: navActive,
		Data:      data,
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, page, pd); err != nil {
		return c.Status(500).SendString(fmt.Sprintf("template error: %v", err))
	}

	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Status(status).Send(buf.Bytes())
}

// Register adds web UI routes to the Fiber app.
func (h *Handler) Register(app *fiber.App) {
	app.Get("/ui", h.newSession)
	app.Get("/ui/sessions", h.sessionList)
	app.Get("/ui/sessions/:id", h.calculator)
	app.Post("/ui/sessions/:id/press", h.press)

	// Redirect root to UI
	app.Get("/", func(c *fiber.Ctx) error {
		return c.Redirect("/ui")
	})
}

// --- Page Data Types ---

type calculatorContent struct {
	Session *store.Session
	ID      string
	Keypad  [][]string
}

type sessionListContent struct {
	Sessions []*store.Session
}

type messageContent struct {
	Title   string
	Message string
}

// --- Page Handlers ---

func (h *Handler) newSession(c *fiber.Ctx) error {
	sess, err := h.store.CreateSession("")
	if err != nil {
		return h.render(c, 429, "message.html", "", messageContent{
			Title:   "Too many sessions",
			Message: err.Error(),
		})
	}
	return c.Redirect("/ui/sessions/" + shortName(sess.Name))
}

func (h *Handler) sessionList(c *fiber.Ctx) error {
	return h.render(c, 200, "sessions.html", "sessions", sessionListContent{
		Sessions: h.store.ListSessions(),
	})
}

func (h *Handler) calculator(c *fiber.Ctx) error {
	id := c.Params("id")
	sess, err := h.store.GetSession("sessions/" + id)
	if err != nil {
		return h.render(c, 404, "message.html", "", messageContent{
			Title:   "Not found",
			Message: fmt.Sprintf("Session '%s' not found", id),
		})
	}

	return h.render(c, 200, "calculator.html", "calculator", calculatorContent{
		Session: sess,
		ID:      id,
		Keypad:  h.keypad,
	})
}

func (h *Handler) press(c *fiber.Ctx) error {
	id := c.Params("id")
	label := c.FormValue("label")
	if !editor.ValidLabel(label) {
		return h.render(c, 400, "message.html", "", messageContent{
			Title:   "Unknown key",
			Message: fmt.Sprintf("Key %q is not on the keypad", label),
		})
	}

	if _, err := h.store.PressKeys("sessions/"+id, label); err != nil {
		return h.render(c, 404, "message.html", "", messageContent{
			Title:   "Not found",
			Message: fmt.Sprintf("Session '%s' not found", id),
		})
	}
	return c.Redirect("/ui/sessions/"+id, fiber.StatusSeeOther)
}

// --- Template Helpers ---

func shortName(fullName string) string {
	parts := strings.Split(fullName, "/")
	if len(parts) > 0 {
		return parts[len(parts)-1]
	}
	return fullName
}

func keyClass(label string) string {
	switch {
	case label == editor.KeyEquals:
		return "key-equals"
	case label == editor.KeyClear || label == editor.KeyDelete:
		return "key-clear"
	case expr.IsOperator(label) || label == editor.KeyPercent || label == editor.KeyToggleSign:
		return "key-op"
	default:
		return "key-digit"
	}
}

func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		m := int(d.Minutes())
		if m == 1 {
			return "1 minute ago"
		}
		return fmt.Sprintf("%d minutes ago", m)
	case d < 24*time.Hour:
		h := int(d.Hours())
		if h == 1 {
			return "1 hour ago"
		}
		return fmt.Sprintf("%d hours ago", h)
	default:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1 day ago"
		}
		return fmt.Sprintf("%d days ago", days)
	}
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04:05")
}

func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}
