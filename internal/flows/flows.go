// Package flows implements the multi-step chat conversations: time off
// requests, overtime requests, document templates, expense reports, the
// leave balance view and the manager approval flows. Each handler consumes
// one user message, advances the state kept on the session and returns the
// bot's reply.
package flows

import (
	"time"

	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/docgen"
)

// Handler runs the conversation flows against a session's ERP connection.
type Handler struct {
	gen    *docgen.Generator
	logger *zap.Logger
	now    func() time.Time
}

// NewHandler creates a flow handler. gen renders the document templates.
func NewHandler(gen *docgen.Generator, logger *zap.Logger) *Handler {
	return &Handler{
		gen:    gen,
		logger: logger,
		now:    time.Now,
	}
}
