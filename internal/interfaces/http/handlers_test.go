package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/activity"
	"github.com/prezlab/prezbot/internal/auth"
	"github.com/prezlab/prezbot/internal/odoo"
	"github.com/prezlab/prezbot/internal/session"
)

type fakeAuth struct {
	sessions  *session.Manager
	err       error
	loggedOut []string
}

func (f *fakeAuth) Login(_ context.Context, username, _ string) (*session.Session, error) {
	if f.err != nil {
		return nil, f.err
	}
	employee := odoo.Record{"id": 5, "name": "Amal Haddad"}
	return f.sessions.Create(username, nil, employee, false), nil
}

func (f *fakeAuth) Logout(sessionID string) {
	f.loggedOut = append(f.loggedOut, sessionID)
	f.sessions.Delete(sessionID)
}

type fakeChat struct {
	reply     string
	lastQuery string
}

func (f *fakeChat) Route(_ context.Context, _ *session.Session, query string) string {
	f.lastQuery = query
	return f.reply
}

func newTestServer(t *testing.T) (*Server, *fakeAuth, *fakeChat, *session.Manager) {
	t.Helper()
	sessions := session.NewManager(zap.NewNop())
	authn := &fakeAuth{sessions: sessions}
	chat := &fakeChat{reply: "Hello! How can I help you today?"}
	srv := NewServer(DefaultServerConfig(), authn, sessions, chat, zap.NewNop())
	return srv, authn, chat, sessions
}

func doJSON(t *testing.T, srv *Server, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(sessionHeader, token)
	}
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestHealthCheck(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodGet, "/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	resp := decodeResponse(t, w)
	if !resp.Success {
		t.Fatal("expected success")
	}
}

func TestLoginReturnsSessionToken(t *testing.T) {
	srv, _, _, sessions := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/login", "", map[string]string{
		"username": "amal@prezlab.com",
		"password": "secret",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}

	var resp struct {
		Success bool          `json:"success"`
		Data    LoginResponse `json:"data"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Data.Token == "" {
		t.Fatal("expected a session token")
	}
	if resp.Data.EmployeeName != "Amal Haddad" {
		t.Errorf("employee name = %q", resp.Data.EmployeeName)
	}
	if _, ok := sessions.Get(resp.Data.Token); !ok {
		t.Error("token does not resolve to a live session")
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	srv, authn, _, _ := newTestServer(t)
	authn.err = fmt.Errorf("authenticate: %w", odoo.ErrAuthFailed)

	w := doJSON(t, srv, http.MethodPost, "/api/login", "", map[string]string{
		"username": "amal@prezlab.com",
		"password": "wrong",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Error != "invalid username or password" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestLoginWithoutStoredPassword(t *testing.T) {
	srv, authn, _, _ := newTestServer(t)
	authn.err = fmt.Errorf("password required: %w", auth.ErrNoCredential)

	w := doJSON(t, srv, http.MethodPost, "/api/login", "", map[string]string{
		"username": "amal@prezlab.com",
	})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	resp := decodeResponse(t, w)
	if resp.Error != "password required" {
		t.Errorf("error = %q", resp.Error)
	}
}

func TestLoginRequiresUsername(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/login", "", map[string]string{"password": "x"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestChatRequiresSession(t *testing.T) {
	srv, _, _, _ := newTestServer(t)

	w := doJSON(t, srv, http.MethodPost, "/api/chat", "", map[string]string{"message": "hi"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", w.Code)
	}

	w = doJSON(t, srv, http.MethodPost, "/api/chat", "not-a-token", map[string]string{"message": "hi"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d, want 401", w.Code)
	}
}

func TestChatRoundTrip(t *testing.T) {
	srv, _, chat, sessions := newTestServer(t)
	s := sessions.Create("amal@prezlab.com", nil, odoo.Record{"id": 5}, false)

	w := doJSON(t, srv, http.MethodPost, "/api/chat", s.ID, map[string]string{
		"message": "I want to request time off",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if chat.lastQuery != "I want to request time off" {
		t.Errorf("router saw query %q", chat.lastQuery)
	}
	if !strings.Contains(w.Body.String(), chat.reply) {
		t.Errorf("body %q missing reply", w.Body.String())
	}
}

func TestActivitiesFeed(t *testing.T) {
	srv, _, _, sessions := newTestServer(t)
	s := sessions.Create("amal@prezlab.com", nil, odoo.Record{"id": 5}, false)
	s.Activity.Log(activity.TypeTimeOff, "Annual Leave from 2025-07-01 to 2025-07-03", nil)

	w := doJSON(t, srv, http.MethodGet, "/api/activities", s.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Annual Leave from 2025-07-01 to 2025-07-03") {
		t.Errorf("body %q missing activity summary", w.Body.String())
	}
}

func TestDocumentDownload(t *testing.T) {
	srv, _, _, sessions := newTestServer(t)
	s := sessions.Create("amal@prezlab.com", nil, odoo.Record{"id": 5}, false)

	w := doJSON(t, srv, http.MethodGet, "/api/document", s.ID, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("empty document: status = %d, want 404", w.Code)
	}

	s.Document = []byte("PK\x03\x04letter")
	s.DocumentName = "employment_letter.docx"

	w = doJSON(t, srv, http.MethodGet, "/api/document", s.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "employment_letter.docx") {
		t.Errorf("Content-Disposition = %q", got)
	}
	if w.Header().Get("Content-Type") != docxContentType {
		t.Errorf("Content-Type = %q", w.Header().Get("Content-Type"))
	}
	if !bytes.Equal(w.Body.Bytes(), s.Document) {
		t.Error("body does not match stored document")
	}
}

func TestLogoutEndsSession(t *testing.T) {
	srv, authn, _, sessions := newTestServer(t)
	s := sessions.Create("amal@prezlab.com", nil, odoo.Record{"id": 5}, false)

	w := doJSON(t, srv, http.MethodPost, "/api/logout", s.ID, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(authn.loggedOut) != 1 || authn.loggedOut[0] != s.ID {
		t.Fatalf("loggedOut = %v", authn.loggedOut)
	}

	w = doJSON(t, srv, http.MethodPost, "/api/chat", s.ID, map[string]string{"message": "hi"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("after logout: status = %d, want 401", w.Code)
	}
}
