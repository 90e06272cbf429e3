package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/auth"
	"github.com/prezlab/prezbot/internal/odoo"
	"github.com/prezlab/prezbot/internal/session"
)

// sessionHeader carries the opaque token returned by login.
const sessionHeader = "X-Session-Token"

const docxContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// Authenticator opens and closes chat sessions.
type Authenticator interface {
	Login(ctx context.Context, username, password string) (*session.Session, error)
	Logout(sessionID string)
}

// ChatRouter turns one user message into one reply.
type ChatRouter interface {
	Route(ctx context.Context, s *session.Session, query string) string
}

// Handlers contains all HTTP request handlers
type Handlers struct {
	auth     Authenticator
	sessions *session.Manager
	chat     ChatRouter
	logger   *zap.Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(authenticator Authenticator, sessions *session.Manager, chat ChatRouter, logger *zap.Logger) *Handlers {
	return &Handlers{
		auth:     authenticator,
		sessions: sessions,
		chat:     chat,
		logger:   logger,
	}
}

// Response represents a standard JSON response
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// LoginRequest represents the login request body
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password"`
}

// LoginResponse represents a successful login in API responses
type LoginResponse struct {
	Token        string `json:"token"`
	Username     string `json:"username"`
	EmployeeName string `json:"employee_name,omitempty"`
	IsManager    bool   `json:"is_manager"`
}

// ChatRequest represents the chat request body
type ChatRequest struct {
	Message string `json:"message" binding:"required"`
}

// ChatResponse represents the bot reply in API responses
type ChatResponse struct {
	Reply string `json:"reply"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    response,
	})
}

// Login handles POST /api/login
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "username is required",
		})
		return
	}

	s, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, odoo.ErrAuthFailed):
			c.JSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "invalid username or password",
			})
		case errors.Is(err, auth.ErrNoCredential), errors.Is(err, auth.ErrCredentialExpired):
			c.JSON(http.StatusUnauthorized, Response{
				Success: false,
				Error:   "password required",
			})
		default:
			h.logger.Error("login failed", zap.String("username", req.Username), zap.Error(err))
			c.JSON(http.StatusBadGateway, Response{
				Success: false,
				Error:   "could not reach the HR system",
			})
		}
		return
	}

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data: LoginResponse{
			Token:        s.ID,
			Username:     s.Username,
			EmployeeName: s.Employee.Str("name"),
			IsManager:    s.IsManager,
		},
	})
}

// Logout handles POST /api/logout
func (h *Handlers) Logout(c *gin.Context) {
	token := c.GetHeader(sessionHeader)
	if token == "" {
		c.JSON(http.StatusUnauthorized, Response{
			Success: false,
			Error:   "missing session token",
		})
		return
	}

	h.auth.Logout(token)

	c.JSON(http.StatusOK, Response{Success: true})
}

// Chat handles POST /api/chat
func (h *Handlers) Chat(c *gin.Context) {
	s, ok := h.sessionFrom(c)
	if !ok {
		return
	}

	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, Response{
			Success: false,
			Error:   "message is required",
		})
		return
	}

	// One message at a time per session keeps workflow state consistent.
	s.Mu.Lock()
	reply := h.chat.Route(c.Request.Context(), s, req.Message)
	s.Mu.Unlock()

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    ChatResponse{Reply: reply},
	})
}

// Activities handles GET /api/activities
func (h *Handlers) Activities(c *gin.Context) {
	s, ok := h.sessionFrom(c)
	if !ok {
		return
	}

	s.Mu.Lock()
	entries := s.Activity.Recent()
	s.Mu.Unlock()

	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    entries,
	})
}

// Document handles GET /api/document, serving the last generated letter
func (h *Handlers) Document(c *gin.Context) {
	s, ok := h.sessionFrom(c)
	if !ok {
		return
	}

	s.Mu.Lock()
	doc := s.Document
	name := s.DocumentName
	s.Mu.Unlock()

	if len(doc) == 0 {
		c.JSON(http.StatusNotFound, Response{
			Success: false,
			Error:   "no document available",
		})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	c.Data(http.StatusOK, docxContentType, doc)
}

// sessionFrom resolves the session token header, replying 401 on failure.
func (h *Handlers) sessionFrom(c *gin.Context) (*session.Session, bool) {
	token := c.GetHeader(sessionHeader)
	if token == "" {
		c.JSON(http.StatusUnauthorized, Response{
			Success: false,
			Error:   "missing session token",
		})
		return nil, false
	}

	s, ok := h.sessions.Get(token)
	if !ok {
		c.JSON(http.StatusUnauthorized, Response{
			Success: false,
			Error:   "invalid or expired session",
		})
		return nil, false
	}

	return s, true
}
