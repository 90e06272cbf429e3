package router

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/docgen"
	"github.com/prezlab/prezbot/internal/flows"
	"github.com/prezlab/prezbot/internal/llm"
	"github.com/prezlab/prezbot/internal/odoo"
	"github.com/prezlab/prezbot/internal/session"
)

type fakeClassifier struct {
	label      string
	confidence float64
	called     bool
}

func (f *fakeClassifier) Classify(ctx context.Context, query string, isManager bool) (string, float64) {
	f.called = true
	return f.label, f.confidence
}

type fakeAssistant struct {
	policyReply   string
	personalReply string
	err           error
}

func (f *fakeAssistant) AnswerPolicy(ctx context.Context, query string) (string, error) {
	return f.policyReply, f.err
}

func (f *fakeAssistant) AnswerPersonal(ctx context.Context, query string, profile map[string]any, isPartner, isManager bool) (string, error) {
	return f.personalReply, f.err
}

// downTransport refuses every call, standing in for an unreachable server.
type downTransport struct{}

func (downTransport) ExecuteKw(ctx context.Context, model, method string, args []any, kw map[string]any) (any, error) {
	return nil, errors.New("server unavailable")
}

func newTestRouter(cls *fakeClassifier, asst *fakeAssistant) *Router {
	h := flows.NewHandler(docgen.NewGenerator("testdata", zap.NewNop()), zap.NewNop())
	return New(h, cls, asst, zap.NewNop())
}

func newRouterSession() *session.Session {
	return &session.Session{
		ID:       "test",
		Username: "amal",
		ERP:      odoo.NewClient(downTransport{}, 7, zap.NewNop()),
		Employee: odoo.Record{
			"id":   int64(5),
			"name": "Amal Haddad",
		},
	}
}

func TestRoutePolicyQuestionSkipsClassifier(t *testing.T) {
	cls := &fakeClassifier{label: llm.IntentGeneral, confidence: 0.9}
	asst := &fakeAssistant{policyReply: "Overtime is compensated per the handbook."}
	r := newTestRouter(cls, asst)
	s := newRouterSession()

	reply := r.Route(context.Background(), s, "What is the overtime policy?")
	if reply != "Overtime is compensated per the handbook." {
		t.Fatalf("unexpected reply %q", reply)
	}
	if cls.called {
		t.Error("informational questions should bypass the classifier")
	}
}

func TestRouteBalanceQuestionUsesLeaveData(t *testing.T) {
	cls := &fakeClassifier{label: llm.IntentGeneral, confidence: 0.9}
	r := newTestRouter(cls, &fakeAssistant{})
	s := newRouterSession()

	reply := r.Route(context.Background(), s, "How many days do I have left?")
	if !strings.Contains(reply, "I couldn't find any leave data for you.") {
		t.Fatalf("expected the balance handler, got %q", reply)
	}
	if cls.called {
		t.Error("balance questions should bypass the classifier")
	}
}

func TestRouteActiveWorkflowGetsFollowUps(t *testing.T) {
	cls := &fakeClassifier{label: llm.IntentGeneral, confidence: 0.9}
	r := newTestRouter(cls, &fakeAssistant{})
	s := newRouterSession()
	s.Active = session.WorkflowExpense
	s.Expense = &session.ExpenseState{Step: "description", Category: odoo.ExpenseMiscellaneous}

	reply := r.Route(context.Background(), s, "Taxi to the client office")
	if !strings.Contains(reply, "purpose of this expense") {
		t.Fatalf("expected the expense flow to continue, got %q", reply)
	}
	if cls.called {
		t.Error("follow-ups in an active workflow should not be classified")
	}
}

func TestRouteApprovalFlowFollowUp(t *testing.T) {
	cls := &fakeClassifier{label: llm.IntentGeneral, confidence: 0.9}
	r := newTestRouter(cls, &fakeAssistant{})
	s := newRouterSession()
	s.IsManager = true
	s.ApprovalFlow = true

	reply := r.Route(context.Background(), s, "what about the other ones")
	if !strings.Contains(reply, "pending time off requests") {
		t.Fatalf("expected the pending view, got %q", reply)
	}
	if cls.called {
		t.Error("approval follow-ups should not be classified")
	}
}

func TestRouteExitClearsWorkflows(t *testing.T) {
	cls := &fakeClassifier{label: llm.IntentGeneral, confidence: 0.9}
	r := newTestRouter(cls, &fakeAssistant{})
	s := newRouterSession()

	reply := r.Route(context.Background(), s, "cancel")
	if reply != cancelledMessage {
		t.Fatalf("unexpected reply %q", reply)
	}
	if cls.called {
		t.Error("exit should be handled before classification")
	}
}

func TestRouteMissingProfile(t *testing.T) {
	r := newTestRouter(&fakeClassifier{}, &fakeAssistant{})
	s := newRouterSession()
	s.Employee = odoo.Record{}

	reply := r.Route(context.Background(), s, "hello")
	if reply != noProfileMessage {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestRouteHighConfidenceLabelWins(t *testing.T) {
	cls := &fakeClassifier{label: llm.IntentTemplate, confidence: 0.95}
	r := newTestRouter(cls, &fakeAssistant{})
	s := newRouterSession()

	reply := r.Route(context.Background(), s, "set me up with one of those")
	if !strings.Contains(reply, "available templates") {
		t.Fatalf("expected the template flow, got %q", reply)
	}
	if !cls.called {
		t.Error("classifier should run for idle free-form messages")
	}
}

func TestRouteLowConfidenceFallsBackToDetectors(t *testing.T) {
	cls := &fakeClassifier{label: llm.IntentGeneral, confidence: 0.2}
	r := newTestRouter(cls, &fakeAssistant{})
	s := newRouterSession()

	reply := r.Route(context.Background(), s, "I need to log overtime for yesterday evening")
	if !strings.Contains(reply, "overtime period") {
		t.Fatalf("expected the overtime flow, got %q", reply)
	}
}

func TestRouteExpenseKeywordOverridesLabel(t *testing.T) {
	cls := &fakeClassifier{label: llm.IntentGeneral, confidence: 0.1}
	r := newTestRouter(cls, &fakeAssistant{})
	s := newRouterSession()

	reply := r.Route(context.Background(), s, "I want to submit an expense report")
	if !strings.Contains(reply, "Please choose a category") {
		t.Fatalf("expected the expense flow, got %q", reply)
	}
}

func TestRouteGeneralGoesToAssistant(t *testing.T) {
	cls := &fakeClassifier{label: llm.IntentGeneral, confidence: 0.9}
	asst := &fakeAssistant{personalReply: "You joined Prezlab in 2023."}
	r := newTestRouter(cls, asst)
	s := newRouterSession()

	reply := r.Route(context.Background(), s, "I'd like a quick summary of my employment details")
	if reply != "You joined Prezlab in 2023." {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestRouteAssistantFailure(t *testing.T) {
	cls := &fakeClassifier{label: llm.IntentGeneral, confidence: 0.9}
	asst := &fakeAssistant{err: errors.New("boom")}
	r := newTestRouter(cls, asst)
	s := newRouterSession()

	reply := r.Route(context.Background(), s, "I'd like a quick summary of my employment details")
	if reply != llm.ErrorFallbackMessage {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestRouteTracesEveryOutcome(t *testing.T) {
	t.Run("classifier label", func(t *testing.T) {
		cls := &fakeClassifier{label: llm.IntentTemplate, confidence: 0.95}
		r := newTestRouter(cls, &fakeAssistant{})
		s := newRouterSession()

		r.Route(context.Background(), s, "set me up with one of those")
		if len(s.Trace) != 1 {
			t.Fatalf("len(Trace) = %d, want 1", len(s.Trace))
		}
		tr := s.Trace[0]
		if tr.Label != llm.IntentTemplate || tr.Confidence != 0.95 {
			t.Errorf("trace = %+v, want classifier label and confidence", tr)
		}
		if tr.Handler != "template" || tr.Source != "classifier" {
			t.Errorf("trace = %+v, want template via classifier", tr)
		}
	})

	t.Run("detector fallback", func(t *testing.T) {
		cls := &fakeClassifier{label: llm.IntentGeneral, confidence: 0.2}
		r := newTestRouter(cls, &fakeAssistant{})
		s := newRouterSession()

		r.Route(context.Background(), s, "I need to log overtime for yesterday evening")
		if len(s.Trace) != 1 {
			t.Fatalf("len(Trace) = %d, want 1", len(s.Trace))
		}
		tr := s.Trace[0]
		if tr.Label != llm.IntentOvertime || tr.Source != "detector" || tr.Handler != "overtime" {
			t.Errorf("trace = %+v, want overtime via detector", tr)
		}
	})

	t.Run("workflow takeover", func(t *testing.T) {
		cls := &fakeClassifier{label: llm.IntentGeneral, confidence: 0.9}
		r := newTestRouter(cls, &fakeAssistant{})
		s := newRouterSession()
		s.Active = session.WorkflowExpense
		s.Expense = &session.ExpenseState{Step: "description", Category: odoo.ExpenseMiscellaneous}

		r.Route(context.Background(), s, "Taxi to the client office")
		if len(s.Trace) != 1 {
			t.Fatalf("len(Trace) = %d, want 1", len(s.Trace))
		}
		tr := s.Trace[0]
		if tr.Handler != "expense" || tr.Source != "workflow" {
			t.Errorf("trace = %+v, want expense via workflow", tr)
		}
		if tr.Label != "" {
			t.Errorf("trace label = %q, workflow follow-ups are never classified", tr.Label)
		}
	})

	t.Run("informational question", func(t *testing.T) {
		cls := &fakeClassifier{label: llm.IntentGeneral, confidence: 0.9}
		r := newTestRouter(cls, &fakeAssistant{policyReply: "Per the handbook."})
		s := newRouterSession()

		r.Route(context.Background(), s, "What is the overtime policy?")
		if len(s.Trace) != 1 {
			t.Fatalf("len(Trace) = %d, want 1", len(s.Trace))
		}
		tr := s.Trace[0]
		if tr.Handler != "assistant" || tr.Source != "question" {
			t.Errorf("trace = %+v, want assistant via question guard", tr)
		}
	})

	t.Run("trace accumulates per message", func(t *testing.T) {
		cls := &fakeClassifier{label: llm.IntentGeneral, confidence: 0.9}
		r := newTestRouter(cls, &fakeAssistant{policyReply: "Per the handbook.", personalReply: "ok"})
		s := newRouterSession()

		r.Route(context.Background(), s, "What is the overtime policy?")
		r.Route(context.Background(), s, "I'd like a quick summary of my employment details")
		if len(s.Trace) != 2 {
			t.Fatalf("len(Trace) = %d, want 2", len(s.Trace))
		}
		if s.Trace[1].Query != "I'd like a quick summary of my employment details" {
			t.Errorf("second trace query = %q", s.Trace[1].Query)
		}
	})
}

func TestDetectLabelCascade(t *testing.T) {
	tests := []struct {
		query     string
		isManager bool
		want      string
	}{
		{"I want to work overtime tomorrow", false, llm.IntentOvertime},
		{"I need vacation next week", false, llm.IntentTimeOff},
		{"employment letter please", false, llm.IntentTemplate},
		{"look up Omar Nasser", false, llm.IntentEmployeeSearch},
		{"show pending requests", true, llm.IntentApproval},
		{"show pending requests", false, llm.IntentGeneral},
		{"good morning", false, llm.IntentGeneral},
	}
	for _, tt := range tests {
		if got := detectLabel(tt.query, tt.isManager); got != tt.want {
			t.Errorf("detectLabel(%q, %v) = %q, want %q", tt.query, tt.isManager, got, tt.want)
		}
	}
}
