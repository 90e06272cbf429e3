package flows

import (
	"context"
	"strings"
	"testing"
)

func TestOvertimeApprovalRequiresManager(t *testing.T) {
	h := newTestHandler()
	s := newTestSession(newFakeTransport(), false)

	reply := h.OvertimeApproval(context.Background(), s, "show overtime requests")
	if reply != "This feature is available for managers only." {
		t.Fatalf("unexpected reply %q", reply)
	}
}

func TestOvertimeApprovalViewPending(t *testing.T) {
	ft := newFakeTransport()
	ft.on("hr.employee", "search", []any{int64(11)}, nil)
	ft.on("hr.employee", "read", []any{
		map[string]any{"id": int64(11), "user_id": []any{int64(41), "Lina Saleh"}},
	}, nil)
	ft.on("approval.request", "search", []any{int64(88)}, nil)
	ft.on("approval.request", "read", []any{
		map[string]any{
			"id":               int64(88),
			"name":             "Overtime Request - Lina Saleh",
			"request_owner_id": []any{int64(41), "Lina Saleh"},
			"category_id":      []any{int64(9), "Overtime Request"},
			"request_status":   "pending",
			"create_date":      "2025-06-09 18:30:00",
		},
	}, nil)

	h := newTestHandler()
	s := newTestSession(ft, true)

	reply := h.OvertimeApproval(context.Background(), s, "show overtime requests")
	if !strings.Contains(reply, "Here are the pending overtime requests for your team:") {
		t.Fatalf("missing header: %q", reply)
	}
	if !strings.Contains(reply, "- **ID:** 88") {
		t.Errorf("missing id line: %q", reply)
	}
	if !strings.Contains(reply, "  - **Employee:** Lina Saleh") {
		t.Errorf("missing employee line: %q", reply)
	}
	if !strings.Contains(reply, "  - **Created on:** 2025-06-09 18:30:00") {
		t.Errorf("missing created line: %q", reply)
	}
}

func TestOvertimeApprovalApprove(t *testing.T) {
	ft := newFakeTransport()
	ft.on("approval.request", "read", []any{
		map[string]any{
			"id":               int64(88),
			"name":             "Overtime Request - Lina Saleh",
			"request_owner_id": []any{int64(41), "Lina Saleh"},
			"category_id":      []any{int64(9), "Overtime Request"},
			"date_start":       "2025-06-12 17:00:00",
			"date_end":         "2025-06-12 20:00:00",
			"reason":           "Overtime for project: Website Revamp",
		},
	}, nil)
	ft.on("approval.request", "action_approve", true, nil)

	h := newTestHandler()
	s := newTestSession(ft, true)

	reply := h.OvertimeApproval(context.Background(), s, "approve overtime 88")
	if !strings.Contains(reply, "**Overtime Request #88 Approved!**") {
		t.Fatalf("unexpected reply %q", reply)
	}
	if !strings.Contains(reply, "**Period:** 2025-06-12 17:00:00 to 2025-06-12 20:00:00") {
		t.Errorf("missing period: %q", reply)
	}
	if !strings.Contains(reply, "The employee has been notified of the approval.") {
		t.Errorf("missing footer: %q", reply)
	}
	if entries := s.Activity.Recent(); len(entries) != 1 {
		t.Errorf("expected one tracked approval, got %d", len(entries))
	}
}

func TestOvertimeApprovalRefuseWithoutID(t *testing.T) {
	h := newTestHandler()
	s := newTestSession(newFakeTransport(), true)

	reply := h.OvertimeApproval(context.Background(), s, "refuse overtime")
	if reply != "Please specify the ID of the overtime request you want to manage." {
		t.Fatalf("unexpected reply %q", reply)
	}
	if entries := s.Activity.Recent(); len(entries) != 0 {
		t.Errorf("no activity expected, got %d", len(entries))
	}
}

func TestOvertimeApprovalFallback(t *testing.T) {
	h := newTestHandler()
	s := newTestSession(newFakeTransport(), true)

	reply := h.OvertimeApproval(context.Background(), s, "what do I do with these")
	if !strings.Contains(reply, "I'm not sure how to handle that.") {
		t.Fatalf("unexpected reply %q", reply)
	}
}
