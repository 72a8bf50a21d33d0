// Package api implements the REST API for driving calculator sessions and
// evaluating one-off expressions.
package api

import (
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/lemonberrylabs/keypad-calculator/pkg/calculator"
	"github.com/lemonberrylabs/keypad-calculator/pkg/editor"
	"github.com/lemonberrylabs/keypad-calculator/pkg/store"
	"github.com/lemonberrylabs/keypad-calculator/pkg/types"
)

// MaxExpressionLength bounds expressions accepted from clients, in bytes.
const MaxExpressionLength = calculator.MaxExpressionLength

// Options tunes the HTTP server.
type Options struct {
	// RequestLog enables one access-log line per request.
	RequestLog bool
}

// Server is the HTTP API server.
type Server struct {
	app   *fiber.App
	store *store.Store
}

// New creates a new API server.
func New(s *store.Store, opts Options) *Server {
	srv := &Server{store: s}

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})
	app.Use(recover.New())
	if opts.RequestLog {
		app.Use(logger.New())
	}

	// Sessions API
	app.Post("/v1/sessions", srv.createSession)
	app.Get("/v1/sessions", srv.listSessions)
	app.Get("/v1/sessions/:session", srv.getSession)
	app.Delete("/v1/sessions/:session", srv.deleteSession)
	app.Post("/v1/sessions/:session\\:press", srv.pressKeys)
	app.Post("/v1/sessions/:session\\:backspace", srv.backspace)

	// Stateless evaluation
	app.Post("/v1/evaluate", srv.evaluate)

	srv.app = app
	return srv
}

// Listen starts the HTTP server on the given address.
func (s *Server) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

// App returns the underlying Fiber app (useful for testing).
func (s *Server) App() *fiber.App {
	return s.app
}

// --- Session Handlers ---

type createSessionRequest struct {
	Expression string `json:"expression"`
}

func (s *Server) createSession(c *fiber.Ctx) error {
	var req createSessionRequest
	if err := c.BodyParser(&req); err != nil && len(c.Body()) > 0 {
		return apiError(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err))
	}
	if len(req.Expression) > MaxExpressionLength {
		return apiError(c, 400, "INVALID_ARGUMENT",
			fmt.Sprintf("expression exceeds %d bytes", MaxExpressionLength))
	}

	sess, err := s.store.CreateSession(req.Expression)
	if err != nil {
		if strings.Contains(err.Error(), "limit") {
			return apiError(c, 429, "RESOURCE_EXHAUSTED", err.Error())
		}
		return apiError(c, 400, "INVALID_ARGUMENT", err.Error())
	}

	return c.Status(200).JSON(sessionToJSON(sess))
}

func (s *Server) getSession(c *fiber.Ctx) error {
	sess, err := s.store.GetSession(buildSessionName(c))
	if err != nil {
		return apiError(c, 404, "NOT_FOUND", err.Error())
	}
	return c.JSON(sessionToJSON(sess))
}

func (s *Server) listSessions(c *fiber.Ctx) error {
	sessions := s.store.ListSessions()

	items := make([]fiber.Map, len(sessions))
	for i, sess := range sessions {
		items[i] = sessionToJSON(sess)
	}

	return c.JSON(fiber.Map{
		"sessions": items,
	})
}

func (s *Server) deleteSession(c *fiber.Ctx) error {
	name := buildSessionName(c)
	if err := s.store.DeleteSession(name); err != nil {
		return apiError(c, 404, "NOT_FOUND", err.Error())
	}
	return c.JSON(fiber.Map{
		"name": name,
		"done": true,
	})
}

type pressRequest struct {
	Label  string   `json:"label"`
	Labels []string `json:"labels"`
}

func (s *Server) pressKeys(c *fiber.Ctx) error {
	var req pressRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err))
	}

	labels := req.Labels
	if req.Label != "" {
		labels = append([]string{req.Label}, labels...)
	}
	if len(labels) == 0 {
		return apiError(c, 400, "INVALID_ARGUMENT", "label or labels is required")
	}
	for _, l := range labels {
		if !editor.ValidLabel(l) {
			return apiError(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("unknown key %q", l))
		}
	}

	sess, err := s.store.PressKeys(buildSessionName(c), labels...)
	if err != nil {
		return apiError(c, 404, "NOT_FOUND", err.Error())
	}
	return c.JSON(sessionToJSON(sess))
}

func (s *Server) backspace(c *fiber.Ctx) error {
	sess, err := s.store.Backspace(buildSessionName(c))
	if err != nil {
		return apiError(c, 404, "NOT_FOUND", err.Error())
	}
	return c.JSON(sessionToJSON(sess))
}

// --- Evaluation Handler ---

type evaluateRequest struct {
	Expression string `json:"expression"`
}

func (s *Server) evaluate(c *fiber.Ctx) error {
	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return apiError(c, 400, "INVALID_ARGUMENT", fmt.Sprintf("invalid request body: %v", err))
	}
	if len(req.Expression) > MaxExpressionLength {
		return apiError(c, 400, "INVALID_ARGUMENT",
			fmt.Sprintf("expression exceeds %d bytes", MaxExpressionLength))
	}

	answer, err := calculator.Answer(req.Expression)
	result := fiber.Map{
		"expression": req.Expression,
		"ready":      calculator.Ready(req.Expression),
		"answer":     answer,
	}
	if ce := types.AsCalcError(err); ce != nil {
		result["error"] = ce.ToMap()
	}
	return c.JSON(result)
}

// --- Helpers ---

func apiError(c *fiber.Ctx, code int, status, message string) error {
	return c.Status(code).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    code,
			"message": message,
			"status":  status,
		},
	})
}

func buildSessionName(c *fiber.Ctx) string {
	return "sessions/" + c.Params("session")
}

func sessionToJSON(sess *store.Session) fiber.Map {
	result := fiber.Map{
		"name":       sess.Name,
		"expression": sess.State.Expression,
		"answer":     sess.State.Answer,
		"keyCount":   sess.KeyCount,
		"createTime": sess.CreateTime.Format(time.RFC3339),
		"updateTime": sess.UpdateTime.Format(time.RFC3339),
	}
	if sess.Error != "" {
		result["error"] = sess.Error
	}
	return result
}
