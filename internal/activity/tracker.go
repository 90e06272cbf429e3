// Package activity keeps a short per-session feed of completed actions for
// the UI sidebar. It is purely presentational and never persisted.
package activity

import (
	"fmt"
	"time"
)

// maxEntries is how many completed actions the feed retains.
const maxEntries = 10

// Type identifies what kind of action completed.
type Type string

const (
	TypeTemplate         Type = "template_request"
	TypeOvertime         Type = "overtime_request"
	TypeTimeOff          Type = "employee_request"
	TypeExpense          Type = "expense_report"
	TypeApproval         Type = "manager_approval"
	TypeOvertimeApproval Type = "manager_overtime_approval"
	TypeReimbursement    Type = "reimbursement_request"
)

var titles = map[Type]string{
	TypeTemplate:         "Document Generated",
	TypeOvertime:         "Overtime Request",
	TypeTimeOff:          "Time Off Request",
	TypeExpense:          "Expense Report",
	TypeApproval:         "Approval Given",
	TypeOvertimeApproval: "Overtime Approval",
	TypeReimbursement:    "Reimbursement Request",
}

var icons = map[Type]string{
	TypeTemplate:         "📄",
	TypeOvertime:         "⏰",
	TypeTimeOff:          "🏖️",
	TypeExpense:          "💰",
	TypeApproval:         "✅",
	TypeOvertimeApproval: "⏰✅",
	TypeReimbursement:    "💳",
}

// Entry is one completed action.
type Entry struct {
	Type    Type           `json:"type"`
	Title   string         `json:"title"`
	Icon    string         `json:"icon"`
	Summary string         `json:"summary"`
	Time    time.Time      `json:"timestamp"`
	Details map[string]any `json:"details"`
}

// Tracker keeps the most recent entries, newest first. It is owned by one
// session and is not safe for concurrent use on its own.
type Tracker struct {
	entries []Entry
	now     func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{now: time.Now}
}

// Log records a completed action at the head of the feed, dropping the
// oldest entry past the cap.
func (t *Tracker) Log(typ Type, summary string, details map[string]any) {
	title, ok := titles[typ]
	if !ok {
		title = "Unknown Activity"
	}
	icon, ok := icons[typ]
	if !ok {
		icon = "📋"
	}
	if summary == "" {
		summary = title + " completed successfully"
	}
	if details == nil {
		details = map[string]any{}
	}

	entry := Entry{
		Type:    typ,
		Title:   title,
		Icon:    icon,
		Summary: summary,
		Time:    t.now(),
		Details: details,
	}

	t.entries = append([]Entry{entry}, t.entries...)
	if len(t.entries) > maxEntries {
		t.entries = t.entries[:maxEntries]
	}
}

// Recent returns the feed, most recent first.
func (t *Tracker) Recent() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Clear drops all entries.
func (t *Tracker) Clear() {
	t.entries = nil
}

func (t *Tracker) TimeOff(leaveType, from, to string, details map[string]any) {
	t.Log(TypeTimeOff, fmt.Sprintf("Requested %s from %s to %s", leaveType, from, to), details)
}

func (t *Tracker) Overtime(hours float64, period string, details map[string]any) {
	t.Log(TypeOvertime, fmt.Sprintf("Requested %v hours overtime for %s", hours, period), details)
}

func (t *Tracker) Template(templateName string, details map[string]any) {
	t.Log(TypeTemplate, fmt.Sprintf("Generated %s document", templateName), details)
}

func (t *Tracker) Expense(amount float64, details map[string]any) {
	t.Log(TypeExpense, fmt.Sprintf("Submitted expense report for $%.2f", amount), details)
}

func (t *Tracker) Approval(requestType, employeeName string, details map[string]any) {
	t.Log(TypeApproval, fmt.Sprintf("Approved %s for %s", requestType, employeeName), details)
}

func (t *Tracker) OvertimeApproval(employeeName string, details map[string]any) {
	t.Log(TypeOvertimeApproval, fmt.Sprintf("Approved overtime for %s", employeeName), details)
}

// FormatTime renders an entry timestamp as a rough age for display.
func FormatTime(entryTime, now time.Time) string {
	diff := now.Sub(entryTime)
	switch {
	case diff >= 24*time.Hour:
		days := int(diff.Hours() / 24)
		return fmt.Sprintf("%d day%s ago", days, plural(days))
	case diff >= time.Hour:
		hours := int(diff.Hours())
		return fmt.Sprintf("%d hour%s ago", hours, plural(hours))
	case diff >= time.Minute:
		minutes := int(diff.Minutes())
		return fmt.Sprintf("%d minute%s ago", minutes, plural(minutes))
	default:
		return "Just now"
	}
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
