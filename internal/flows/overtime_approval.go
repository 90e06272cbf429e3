package flows

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/intent"
	"github.com/prezlab/prezbot/internal/odoo"
	"github.com/prezlab/prezbot/internal/session"
)

// OvertimeApproval handles the manager view/approve/refuse/cancel flow for
// team overtime requests.
func (h *Handler) OvertimeApproval(ctx context.Context, s *session.Session, query string) string {
	if !s.IsManager {
		return "This feature is available for managers only."
	}

	action := intent.DetectOvertimeApproval(query)
	requestID := ExtractRequestID(query)

	if action == intent.OvertimeApprovalView {
		return h.viewPendingOvertime(ctx, s)
	}

	if action != intent.OvertimeApprovalNone && requestID == 0 {
		return "Please specify the ID of the overtime request you want to manage."
	}

	switch action {
	case intent.OvertimeApprovalApprove:
		decision, err := s.ERP.ApproveOvertime(ctx, requestID)
		if err != nil {
			return fmt.Sprintf("An error occurred: %v", err)
		}
		s.Activity.OvertimeApproval(decision.EmployeeName, map[string]any{"request_id": requestID})
		return overtimeDecisionMessage(decision, "Approved!", "The employee has been notified of the approval.")
	case intent.OvertimeApprovalRefuse:
		decision, err := s.ERP.RefuseOvertime(ctx, requestID)
		if err != nil {
			return fmt.Sprintf("An error occurred: %v", err)
		}
		return overtimeDecisionMessage(decision, "Refused", "The employee has been notified of the refusal.")
	case intent.OvertimeApprovalCancel:
		decision, err := s.ERP.CancelOvertime(ctx, requestID)
		if err != nil {
			return fmt.Sprintf("An error occurred: %v", err)
		}
		return overtimeDecisionMessage(decision, "Cancelled", "The request has been cancelled.")
	}

	return "I'm not sure how to handle that. You can view pending overtime requests or approve/refuse/cancel them by ID."
}

func (h *Handler) viewPendingOvertime(ctx context.Context, s *session.Session) string {
	pending, err := s.ERP.PendingOvertime(ctx, s.Employee.Int("id"))
	if err != nil {
		h.logger.Warn("pending overtime fetch failed", zap.Error(err))
	}
	if len(pending) == 0 {
		return "There are no pending overtime requests for your team."
	}

	var b strings.Builder
	b.WriteString("Here are the pending overtime requests for your team:\n\n")
	for _, req := range pending {
		_, owner := req.Pair("request_owner_id")
		_, category := req.Pair("category_id")
		fmt.Fprintf(&b, "- **ID:** %d\n", req.Int("id"))
		fmt.Fprintf(&b, "  - **Subject:** %s\n", req.Str("name"))
		fmt.Fprintf(&b, "  - **Employee:** %s\n", owner)
		fmt.Fprintf(&b, "  - **Category:** %s\n", category)
		fmt.Fprintf(&b, "  - **Status:** %s\n", req.Str("request_status"))
		fmt.Fprintf(&b, "  - **Created on:** %s\n\n", req.Str("create_date"))
	}
	b.WriteString("You can approve, refuse, or cancel a request by its ID (e.g., 'approve overtime 123').")
	return b.String()
}

func overtimeDecisionMessage(d odoo.OvertimeDecision, verdict, footer string) string {
	employee := orDefault(d.EmployeeName, "Unknown")
	category := orDefault(d.CategoryName, "Unknown")
	reason := orDefault(d.Reason, "No reason provided")
	return fmt.Sprintf(` **Overtime Request #%d %s**

**Employee:** %s
**Category:** %s
**Period:** %s to %s
**Reason:** %s

%s`, d.RequestID, verdict, employee, category,
		orDefault(d.DateStart, "N/A"), orDefault(d.DateEnd, "N/A"), reason, footer)
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}
