package session

import (
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/activity"
	"github.com/prezlab/prezbot/internal/odoo"
)

// Workflow names the multi-step conversation a session is currently in.
type Workflow string

const (
	WorkflowNone     Workflow = ""
	WorkflowTimeOff  Workflow = "employee_request"
	WorkflowOvertime Workflow = "overtime_request"
	WorkflowExpense  Workflow = "expense_report"
	WorkflowTemplate Workflow = "template_request"
)

// Session is the per-login conversation state. One goroutine handles one
// chat message at a time, guarded by Mu in the transport layer.
type Session struct {
	ID       string
	Username string

	Mu sync.Mutex

	ERP       *odoo.Client
	Employee  odoo.Record
	IsManager bool

	Active   Workflow
	TimeOff  *TimeOffState
	Overtime *OvertimeState
	Template *TemplateState
	Expense  *ExpenseState

	// PendingApprovals snapshots the manager's pending list at view time
	// so an approve/deny by id can be checked before hitting the server.
	PendingApprovals []odoo.Record

	// ApprovalFlow marks that the manager is reviewing pending requests,
	// which keeps bare follow-up messages routed to the approval view.
	ApprovalFlow bool

	Activity *activity.Tracker

	// Trace keeps the routing outcome of recent messages, oldest first,
	// for debugging misrouted queries.
	Trace []RouteTrace

	// Document holds the last generated letter for download.
	Document     []byte
	DocumentName string
}

// maxTrace bounds the per-session routing trace.
const maxTrace = 20

// RouteTrace records how one message was routed.
type RouteTrace struct {
	Query      string
	Label      string
	Confidence float64
	Handler    string
	Source     string
}

// RecordRoute appends a routing outcome, dropping the oldest past the cap.
func (s *Session) RecordRoute(t RouteTrace) {
	s.Trace = append(s.Trace, t)
	if len(s.Trace) > maxTrace {
		s.Trace = s.Trace[len(s.Trace)-maxTrace:]
	}
}

// TimeOffState carries a time off request under construction.
type TimeOffState struct {
	LeaveTypeID   int
	LeaveTypeName string

	// ParsedType holds the leave type keyword extracted from free text
	// before it is resolved against the server's leave type list.
	ParsedType string

	DateFrom string
	DateTo   string
	Arabic   bool
}

// OvertimeState carries an overtime request under construction.
type OvertimeState struct {
	Step         string
	DateStart    string
	DateEnd      string
	CategoryID   int
	CategoryName string
	Categories   []odoo.OvertimeCategory
	Projects     []odoo.Project
	ProjectID    int
	ProjectName  string
}

// TemplateState carries a document request under construction.
type TemplateState struct {
	TemplateType     string
	LanguageSelected bool
	Country          string
	StartDate        string
	EndDate          string
}

// ExpenseState carries an expense report under construction.
type ExpenseState struct {
	Step          string
	Category      odoo.ExpenseCategory
	Description   string
	Purpose       string
	AttachedLink  string
	Total         float64
	Date          string
	FromDate      string
	ToDate        string
	DestinationID int
	Destinations  []odoo.Destination

	UserID      int
	CompanyID   int
	CompanyName string
}

// ClearWorkflows resets every in-progress conversation flow.
func (s *Session) ClearWorkflows() {
	s.Active = WorkflowNone
	s.TimeOff = nil
	s.Overtime = nil
	s.Template = nil
	s.Expense = nil
	s.PendingApprovals = nil
	s.ApprovalFlow = false
}

// Manager owns the live sessions keyed by opaque token.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	logger   *zap.Logger
}

// NewManager creates an empty session store.
func NewManager(logger *zap.Logger) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Create registers a new session for a logged-in user and returns it.
func (m *Manager) Create(username string, erp *odoo.Client, employee odoo.Record, isManager bool) *Session {
	s := &Session{
		ID:        uuid.NewString(),
		Username:  username,
		ERP:       erp,
		Employee:  employee,
		IsManager: isManager,
		Activity:  activity.NewTracker(),
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	m.logger.Info("session created",
		zap.String("session_id", s.ID),
		zap.String("username", username),
		zap.Bool("is_manager", isManager))
	return s
}

// Get looks up a session by token.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Delete drops a session on logout.
func (m *Manager) Delete(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
}
