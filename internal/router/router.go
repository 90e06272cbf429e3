// Package router turns each chat message into a handler call. Routing is
// layered: in-progress workflows bind their follow-up messages first, then
// deterministic intent detection and the language model classifier share
// the rest.
package router

import (
	"context"

	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/flows"
	"github.com/prezlab/prezbot/internal/intent"
	"github.com/prezlab/prezbot/internal/llm"
	"github.com/prezlab/prezbot/internal/session"
)

// confidenceThreshold is the classifier confidence below which the keyword
// detectors override the model's label.
const confidenceThreshold = 0.7

const cancelledMessage = "✅ The process has been cancelled. How else can I help you?"

const noProfileMessage = "I couldn't load your employee profile. Please log out and log in again, or contact HR."

// IntentClassifier labels a free-form query with an intent and confidence.
type IntentClassifier interface {
	Classify(ctx context.Context, query string, isManager bool) (string, float64)
}

// Answerer produces grounded answers for the questions no workflow claims.
type Answerer interface {
	AnswerPolicy(ctx context.Context, query string) (string, error)
	AnswerPersonal(ctx context.Context, query string, profile map[string]any, isPartner, isManager bool) (string, error)
}

// Router dispatches chat messages to conversation flows and the assistant.
type Router struct {
	flows      *flows.Handler
	classifier IntentClassifier
	assistant  Answerer
	logger     *zap.Logger
}

// New creates a message router.
func New(h *flows.Handler, classifier IntentClassifier, assistant Answerer, logger *zap.Logger) *Router {
	return &Router{
		flows:      h,
		classifier: classifier,
		assistant:  assistant,
		logger:     logger,
	}
}

// Route produces the bot's reply for one message in the given session.
// Every outcome is recorded on the session trace so misrouted queries can
// be inspected later.
func (r *Router) Route(ctx context.Context, s *session.Session, query string) string {
	trace := &session.RouteTrace{Query: query}
	defer func() {
		s.RecordRoute(*trace)
		r.logger.Debug("query routed",
			zap.String("handler", trace.Handler),
			zap.String("source", trace.Source),
			zap.String("label", trace.Label),
			zap.Float64("confidence", trace.Confidence))
	}()

	// A template conversation keeps collecting details until it generates
	// or is cancelled.
	if s.Active == session.WorkflowTemplate && s.Template != nil {
		trace.Handler, trace.Source = "template", "workflow"
		return r.flows.Template(ctx, s, query)
	}

	idle := s.Active == session.WorkflowNone && !s.ApprovalFlow

	// Knowledge questions must not start a workflow. Balance questions are
	// the exception: they have a dedicated data-backed answer.
	if idle && intent.IsInformationalQuestion(query) {
		trace.Source = "question"
		if intent.DetectLeaveBalance(query) {
			trace.Handler = "leave_balance"
			return r.flows.LeaveBalanceSummary(ctx, s)
		}
		trace.Handler = "assistant"
		return r.answer(ctx, s, query)
	}

	if idle && intent.DetectLeaveBalance(query) {
		trace.Handler, trace.Source = "leave_balance", "detector"
		return r.flows.LeaveBalanceSummary(ctx, s)
	}

	trace.Source = "workflow"
	switch s.Active {
	case session.WorkflowOvertime:
		trace.Handler = "overtime"
		return r.flows.Overtime(ctx, s, query)
	case session.WorkflowTimeOff:
		trace.Handler = "time_off"
		return r.flows.TimeOff(ctx, s, query)
	case session.WorkflowExpense:
		trace.Handler = "expense"
		return r.flows.Expense(ctx, s, query)
	}
	if s.ApprovalFlow {
		trace.Handler = "approval"
		return r.flows.Approval(ctx, s, query)
	}

	if len(s.Employee) == 0 {
		trace.Handler, trace.Source = "none", "guard"
		return noProfileMessage
	}

	if intent.DetectExit(query) {
		trace.Handler, trace.Source = "cancel", "detector"
		s.ClearWorkflows()
		return cancelledMessage
	}

	label, confidence := r.classifier.Classify(ctx, query, s.IsManager)
	trace.Label, trace.Confidence, trace.Source = label, confidence, "classifier"

	// Expense keywords outrank a mid-confidence classification either way.
	if label == llm.IntentExpenseReport || intent.DetectExpense(query) {
		if label != llm.IntentExpenseReport {
			trace.Label, trace.Source = llm.IntentExpenseReport, "detector"
		}
		trace.Handler = "expense"
		return r.flows.Expense(ctx, s, query)
	}

	if confidence < confidenceThreshold {
		label = detectLabel(query, s.IsManager)
		trace.Label, trace.Source = label, "detector"
	}

	switch label {
	case llm.IntentTimeOff:
		trace.Handler = "time_off"
		return r.flows.TimeOff(ctx, s, query)
	case llm.IntentOvertime:
		trace.Handler = "overtime"
		return r.flows.Overtime(ctx, s, query)
	case llm.IntentTemplate:
		trace.Handler = "template"
		return r.flows.Template(ctx, s, query)
	case llm.IntentEmployeeSearch:
		trace.Handler = "employee_search"
		return r.flows.EmployeeSearch(ctx, s, query)
	case llm.IntentApproval:
		trace.Handler = "approval"
		return r.flows.Approval(ctx, s, query)
	case llm.IntentOvertimeApproval:
		trace.Handler = "overtime_approval"
		return r.flows.OvertimeApproval(ctx, s, query)
	case llm.IntentPolicyQuestion:
		trace.Handler = "assistant"
		reply, err := r.assistant.AnswerPolicy(ctx, query)
		if err != nil {
			return llm.ErrorFallbackMessage
		}
		return reply
	}
	trace.Handler = "assistant"
	return r.answer(ctx, s, query)
}

// detectLabel runs the keyword detectors in priority order when the
// classifier is unsure.
func detectLabel(query string, isManager bool) string {
	if intent.DetectOvertime(query) {
		return llm.IntentOvertime
	}
	if ok, _ := intent.DetectTimeOff(query); ok {
		return llm.IntentTimeOff
	}
	if intent.DetectTemplate(query) != intent.TemplateNone {
		return llm.IntentTemplate
	}
	if intent.DetectEmployeeSearch(query) {
		return llm.IntentEmployeeSearch
	}
	if isManager {
		if intent.DetectApproval(query) != intent.ApprovalNone {
			return llm.IntentApproval
		}
		if intent.DetectOvertimeApproval(query) != intent.OvertimeApprovalNone {
			return llm.IntentOvertimeApproval
		}
	}
	return llm.IntentGeneral
}

func (r *Router) answer(ctx context.Context, s *session.Session, query string) string {
	if intent.IsPolicyQuestion(query) {
		reply, err := r.assistant.AnswerPolicy(ctx, query)
		if err != nil {
			return llm.ErrorFallbackMessage
		}
		return reply
	}

	reply, err := r.assistant.AnswerPersonal(ctx, query,
		map[string]any(s.Employee), s.Employee.Bool("is_partner"), s.IsManager)
	if err != nil {
		return llm.ErrorFallbackMessage
	}
	return reply
}
