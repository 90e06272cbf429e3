package flows

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/prezlab/prezbot/internal/odoo"
)

func TestExtractRequestID(t *testing.T) {
	tests := []struct {
		query string
		want  int
	}{
		{"approve 123", 123},
		{"deny #456 - coverage", 456},
		{"please accept request 7", 7},
		{"ID 88", 88},
		{"the one with 55 in it", 55},
		{"no numbers here", 0},
		{"", 0},
	}
	for _, tt := range tests {
		if got := ExtractRequestID(tt.query); got != tt.want {
			t.Errorf("ExtractRequestID(%q) = %d, want %d", tt.query, got, tt.want)
		}
	}
}

func TestExtractDenialReason(t *testing.T) {
	tests := []struct {
		query string
		want  string
	}{
		{"deny 123 because team coverage needed.", "team coverage needed"},
		{"deny 123 - Team coverage needed", "team coverage needed"},
		{"deny 123, reason: client launch week", "client launch week"},
		{"reject 9 due to staffing shortage!", "staffing shortage"},
		{"deny 123", ""},
	}
	for _, tt := range tests {
		if got := ExtractDenialReason(tt.query); got != tt.want {
			t.Errorf("ExtractDenialReason(%q) = %q, want %q", tt.query, got, tt.want)
		}
	}
}

func TestFormatDateDMY(t *testing.T) {
	got := formatDateDMY(time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC))
	if got != "26 - 6 - 2025" {
		t.Errorf("formatDateDMY = %q", got)
	}
}

func TestLeaveStatusEmoji(t *testing.T) {
	tests := []struct {
		from, to string
		want     string
	}{
		{"2025-06-11 06:00:00", "2025-06-12 15:00:00", "🔜"},
		{"2025-06-09", "2025-06-11", "📍"},
		{"2025-06-10", "2025-06-10", "📍"},
		{"2025-06-01", "2025-06-05", "📅"},
		{"", "2025-06-05", "📅"},
	}
	for _, tt := range tests {
		if got := leaveStatusEmoji(tt.from, tt.to, testNow); got != tt.want {
			t.Errorf("leaveStatusEmoji(%q, %q) = %q, want %q", tt.from, tt.to, got, tt.want)
		}
	}
}

func approvedLeave(empID int64, empName, from, to string) odoo.Record {
	return odoo.Record{
		"employee_id": []any{empID, empName},
		"date_from":   from,
		"date_to":     to,
	}
}

func TestRecommendAction(t *testing.T) {
	pending := odoo.Record{
		"employee_id": []any{int64(11), "Lina Saleh"},
		"date_from":   "2025-06-26 06:00:00",
		"date_to":     "2025-06-27 15:00:00",
	}

	t.Run("no overlap", func(t *testing.T) {
		approved := []odoo.Record{approvedLeave(12, "Omar", "2025-07-01", "2025-07-03")}
		action, ratio := recommendAction(pending, approved, 5, testNow)
		if action != "Approve" || ratio != 0 {
			t.Errorf("got %s %.2f, want Approve 0", action, ratio)
		}
	})

	t.Run("at threshold still approves", func(t *testing.T) {
		approved := []odoo.Record{approvedLeave(12, "Omar", "2025-06-27", "2025-06-28")}
		action, ratio := recommendAction(pending, approved, 5, testNow)
		if action != "Approve" || ratio != 0.2 {
			t.Errorf("got %s %.2f, want Approve 0.20", action, ratio)
		}
	})

	t.Run("above threshold denies", func(t *testing.T) {
		approved := []odoo.Record{
			approvedLeave(12, "Omar", "2025-06-26", "2025-06-26"),
			approvedLeave(13, "Sara", "2025-06-25", "2025-06-30"),
		}
		action, ratio := recommendAction(pending, approved, 5, testNow)
		if action != "Deny" || ratio != 0.4 {
			t.Errorf("got %s %.2f, want Deny 0.40", action, ratio)
		}
	})

	t.Run("requester's own leave does not count", func(t *testing.T) {
		approved := []odoo.Record{
			approvedLeave(11, "Lina Saleh", "2025-06-26", "2025-06-27"),
			approvedLeave(11, "Lina Saleh", "2025-06-27", "2025-06-27"),
		}
		action, ratio := recommendAction(pending, approved, 5, testNow)
		if action != "Approve" || ratio != 0 {
			t.Errorf("got %s %.2f, want Approve 0", action, ratio)
		}
	})

	t.Run("zero team size counts as one", func(t *testing.T) {
		approved := []odoo.Record{approvedLeave(12, "Omar", "2025-06-26", "2025-06-26")}
		action, ratio := recommendAction(pending, approved, 0, testNow)
		if action != "Deny" || ratio != 1 {
			t.Errorf("got %s %.2f, want Deny 1.00", action, ratio)
		}
	})
}

func teamReadRows() []any {
	return []any{
		map[string]any{"id": int64(11), "name": "Lina Saleh"},
		map[string]any{"id": int64(12), "name": "Omar Nasser"},
		map[string]any{"id": int64(13), "name": "Sara Khoury"},
		map[string]any{"id": int64(14), "name": "Tariq Aziz"},
		map[string]any{"id": int64(15), "name": "Dina Farah"},
	}
}

func TestApprovalRequiresManager(t *testing.T) {
	h := newTestHandler()
	s := newTestSession(newFakeTransport(), false)

	reply := h.Approval(context.Background(), s, "show pending requests")
	if !strings.Contains(reply, "only available for managers") {
		t.Fatalf("expected manager gate, got %q", reply)
	}
}

func TestApprovalViewPendingRecommendsDeny(t *testing.T) {
	ft := newFakeTransport()
	ft.on("hr.employee", "search", []any{int64(11), int64(12), int64(13), int64(14), int64(15)}, nil)
	ft.on("hr.employee", "read", teamReadRows(), nil)
	ft.on("hr.leave", "search_read", []any{
		map[string]any{
			"id":                int64(201),
			"employee_id":       []any{int64(11), "Lina Saleh"},
			"holiday_status_id": []any{int64(1), "Annual Leave"},
			"date_from":         "2025-06-26 06:00:00",
			"date_to":           "2025-06-27 15:00:00",
			"number_of_days":    float64(2),
			"name":              "Family trip",
		},
	}, nil)
	ft.on("hr.leave", "search_read", []any{
		map[string]any{
			"id":          int64(190),
			"employee_id": []any{int64(12), "Omar Nasser"},
			"date_from":   "2025-06-26", "date_to": "2025-06-26",
		},
		map[string]any{
			"id":          int64(191),
			"employee_id": []any{int64(13), "Sara Khoury"},
			"date_from":   "2025-06-25", "date_to": "2025-06-30",
		},
	}, nil)

	h := newTestHandler()
	s := newTestSession(ft, true)

	reply := h.Approval(context.Background(), s, "show pending requests")
	if !strings.Contains(reply, "📋 **Pending Time Off Requests (1 total)**") {
		t.Fatalf("missing header: %q", reply)
	}
	if !strings.Contains(reply, "👤 **Employee:** Lina Saleh") {
		t.Errorf("missing employee line: %q", reply)
	}
	if !strings.Contains(reply, "📆 **Dates:** 26 - 6 - 2025 to 27 - 6 - 2025 (2 days)") {
		t.Errorf("missing dates line: %q", reply)
	}
	if !strings.Contains(reply, "❌ **Recommendation:** Deny (_40% of team already off_)") {
		t.Errorf("missing recommendation: %q", reply)
	}
	if !s.ApprovalFlow {
		t.Error("approval flow should stay active after the pending view")
	}
	if len(s.PendingApprovals) != 1 {
		t.Errorf("snapshot = %d records, want 1", len(s.PendingApprovals))
	}
}

func TestApprovalApproveFromSnapshot(t *testing.T) {
	ft := newFakeTransport()
	ft.on("hr.employee", "search", []any{int64(11)}, nil)
	ft.on("hr.employee", "read", teamReadRows()[:1], nil)
	ft.on("hr.leave", "action_approve", true, nil)
	ft.on("hr.leave", "read", []any{
		map[string]any{"id": int64(201), "employee_id": []any{int64(11), "Lina Saleh"}},
	}, nil)

	h := newTestHandler()
	s := newTestSession(ft, true)
	s.ApprovalFlow = true
	s.PendingApprovals = []odoo.Record{{"id": int64(201)}}

	reply := h.Approval(context.Background(), s, "approve 201")
	if !strings.Contains(reply, "✅ Time off request (ID: 201) has been approved successfully.") {
		t.Fatalf("unexpected reply %q", reply)
	}
	if !strings.Contains(reply, "The time off request for **Lina Saleh** has been approved") {
		t.Errorf("missing employee confirmation: %q", reply)
	}
	if s.ApprovalFlow {
		t.Error("approval flow should end after a decision")
	}
	if entries := s.Activity.Recent(); len(entries) != 1 {
		t.Errorf("expected one tracked approval, got %d", len(entries))
	}
}

func TestApprovalUnknownIDRefreshesThenFails(t *testing.T) {
	ft := newFakeTransport()
	ft.on("hr.employee", "search", []any{int64(11)}, nil)
	ft.on("hr.employee", "read", teamReadRows()[:1], nil)
	ft.on("hr.leave", "search_read", []any{}, nil)

	h := newTestHandler()
	s := newTestSession(ft, true)

	reply := h.Approval(context.Background(), s, "approve 999")
	if !strings.Contains(reply, "❌ Request #999 not found in your pending approvals.") {
		t.Fatalf("unexpected reply %q", reply)
	}

	refreshed := false
	for _, call := range ft.calls {
		if call.model == "hr.leave" && call.method == "search_read" {
			refreshed = true
		}
		if call.method == "action_approve" {
			t.Error("no approval call should happen for an unknown id")
		}
	}
	if !refreshed {
		t.Error("expected a snapshot refresh before rejecting the id")
	}
}

func TestApprovalDenyWithReason(t *testing.T) {
	ft := newFakeTransport()
	ft.on("hr.employee", "search", []any{int64(11)}, nil)
	ft.on("hr.employee", "read", teamReadRows()[:1], nil)
	ft.on("hr.leave", "write", true, nil)
	ft.on("hr.leave", "action_refuse", true, nil)
	ft.on("hr.leave", "read", []any{
		map[string]any{"id": int64(201), "employee_id": []any{int64(11), "Lina Saleh"}},
	}, nil)

	h := newTestHandler()
	s := newTestSession(ft, true)
	s.ApprovalFlow = true
	s.PendingApprovals = []odoo.Record{{"id": int64(201)}}

	reply := h.Approval(context.Background(), s, "deny 201 because client launch week")
	if !strings.Contains(reply, "✅ Time off request (ID: 201) has been denied.") {
		t.Fatalf("unexpected reply %q", reply)
	}
	if !strings.Contains(reply, "**Reason:** client launch week") {
		t.Errorf("missing denial reason: %q", reply)
	}
}

func TestApprovalViewApprovedGroupsByEmployee(t *testing.T) {
	ft := newFakeTransport()
	ft.on("hr.employee", "search", []any{int64(11), int64(12)}, nil)
	ft.on("hr.employee", "read", teamReadRows()[:2], nil)
	ft.on("hr.leave", "search_read", []any{
		map[string]any{
			"id":                int64(190),
			"employee_id":       []any{int64(11), "Lina Saleh"},
			"holiday_status_id": []any{int64(2), "Sick Leave"},
			"date_from":         "2025-06-26 06:00:00",
			"date_to":           "2025-06-27 15:00:00",
			"number_of_days":    float64(2),
			"name":              "Dentist follow-up",
		},
	}, nil)

	h := newTestHandler()
	s := newTestSession(ft, true)

	reply := h.Approval(context.Background(), s, "show approved time off")
	if !strings.Contains(reply, "📅 **Approved Time Off for Your Team**") {
		t.Fatalf("missing header: %q", reply)
	}
	if !strings.Contains(reply, "**Lina Saleh:**") {
		t.Errorf("missing employee group: %q", reply)
	}
	if !strings.Contains(reply, "🔜 **Sick Leave**: 26 - 6 - 2025 → 27 - 6 - 2025 (2 days)") {
		t.Errorf("missing leave line: %q", reply)
	}
	if !strings.Contains(reply, "💬 Dentist follow-up") {
		t.Errorf("missing description: %q", reply)
	}
}

func TestApprovalCancelExitsFlow(t *testing.T) {
	ft := newFakeTransport()
	ft.on("hr.employee", "search", []any{int64(11)}, nil)
	ft.on("hr.employee", "read", teamReadRows()[:1], nil)

	h := newTestHandler()
	s := newTestSession(ft, true)
	s.ApprovalFlow = true

	reply := h.Approval(context.Background(), s, "cancel")
	if reply != "✅ The process has been cancelled. How else can I help you?" {
		t.Fatalf("unexpected reply %q", reply)
	}
	if s.ApprovalFlow {
		t.Error("cancel should clear the approval flow")
	}
}
