package flows

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/intent"
	"github.com/prezlab/prezbot/internal/odoo"
	"github.com/prezlab/prezbot/internal/session"
)

const approvalCancelHint = "\n\n💡 *Type \"cancel\" to exit the approval process.*"

// overlapDenyThreshold is the share of the team already on approved leave
// above which a pending request gets a deny recommendation.
const overlapDenyThreshold = 0.20

var requestIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`\b(?:approve|deny|reject|accept|request|id|#)\s*(\d+)\b`),
	regexp.MustCompile(`\b(\d+)\b`),
}

// ExtractRequestID pulls a request id out of a manager command like
// "approve 123" or "deny #456". Zero means no id was found.
func ExtractRequestID(query string) int {
	lower := strings.ToLower(query)
	for _, p := range requestIDPatterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			if id, err := strconv.Atoi(m[1]); err == nil {
				return id
			}
		}
	}
	return 0
}

var denialReasonPatterns = []*regexp.Regexp{
	regexp.MustCompile(`because\s+(.+)`),
	regexp.MustCompile(`reason[:\s]+(.+)`),
	regexp.MustCompile(`due to\s+(.+)`),
	regexp.MustCompile(`since\s+(.+)`),
	regexp.MustCompile(`-\s*(.+)`),
	regexp.MustCompile(`:\s*(.+)`),
}

// ExtractDenialReason pulls the free-text reason out of a deny command.
func ExtractDenialReason(query string) string {
	lower := strings.ToLower(query)
	for _, p := range denialReasonPatterns {
		if m := p.FindStringSubmatch(lower); m != nil {
			return strings.TrimRight(strings.TrimSpace(m[1]), ".!?,;")
		}
	}
	return ""
}

// parseOdooDate converts an ERP date or datetime string to a day value.
// Both "2025-06-26T00:00:00" and "2025-06-26 06:00:00" shapes occur.
func parseOdooDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse("2006-01-02", isoDatePart(s))
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// formatDateDMY renders day-month-year as "26 - 6 - 2025".
func formatDateDMY(t time.Time) string {
	return fmt.Sprintf("%d - %d - %d", t.Day(), int(t.Month()), t.Year())
}

// leaveStatusEmoji marks a leave as future, ongoing or past.
func leaveStatusEmoji(dateFrom, dateTo string, now time.Time) string {
	start, okStart := parseOdooDate(dateFrom)
	end, okEnd := parseOdooDate(dateTo)
	if !okStart || !okEnd {
		return "📅"
	}
	today := now.Truncate(24 * time.Hour)
	switch {
	case start.After(today):
		return "🔜"
	case !start.After(today) && !end.Before(today):
		return "📍"
	default:
		return "📅"
	}
}

// requestDate reads the primary date field with its request_ fallback.
func requestDate(req odoo.Record, field string) string {
	if v := req.Str(field); v != "" {
		return v
	}
	return req.Str("request_" + field)
}

// recommendAction suggests Approve or Deny for a pending request based on
// how much of the team is already on approved leave over the same days.
func recommendAction(pending odoo.Record, approved []odoo.Record, teamSize int, now time.Time) (string, float64) {
	if teamSize <= 0 {
		teamSize = 1
	}

	pStart, okStart := parseOdooDate(requestDate(pending, "date_from"))
	pEnd, okEnd := parseOdooDate(requestDate(pending, "date_to"))
	if !okStart || !okEnd {
		return "Approve", 0
	}
	pendingEmpID, _ := pending.Pair("employee_id")

	overlapping := make(map[int]struct{})
	for _, appr := range approved {
		aStart, ok1 := parseOdooDate(requestDate(appr, "date_from"))
		aEnd, ok2 := parseOdooDate(requestDate(appr, "date_to"))
		if !ok1 || !ok2 {
			continue
		}
		if !aStart.After(pEnd) && !aEnd.Before(pStart) {
			empID, _ := appr.Pair("employee_id")
			if empID != pendingEmpID {
				overlapping[empID] = struct{}{}
			}
		}
	}

	ratio := float64(len(overlapping)) / float64(teamSize)
	if ratio > overlapDenyThreshold {
		return "Deny", ratio
	}
	return "Approve", ratio
}

// Approval handles the manager view/approve/deny flow for team time off.
func (h *Handler) Approval(ctx context.Context, s *session.Session, query string) string {
	if !s.IsManager {
		return "You don't appear to have any direct reports. This feature is only available for managers."
	}
	employeeID := s.Employee.Int("id")

	team, err := s.ERP.Team(ctx, employeeID)
	if err != nil {
		h.logger.Warn("team fetch failed", zap.Error(err))
	}

	if intent.DetectExit(query) {
		s.ClearWorkflows()
		return "✅ The process has been cancelled. How else can I help you?"
	}

	switch action := intent.DetectApproval(query); action {
	case intent.ApprovalViewApproved:
		return h.viewApprovedTimeOff(ctx, s, team)
	case intent.ApprovalApprove:
		return h.approveTimeOff(ctx, s, query)
	case intent.ApprovalDeny:
		return h.denyTimeOff(ctx, s, query)
	case intent.ApprovalViewPending:
		return h.viewPendingTimeOff(ctx, s, team)
	default:
		if s.ApprovalFlow {
			return h.viewPendingTimeOff(ctx, s, team)
		}
	}
	return ""
}

// teamContext names up to five direct reports for the empty-list replies.
func teamContext(team odoo.TeamData, withHint bool) string {
	if len(team.Subordinates) == 0 {
		return ""
	}
	var names []string
	for _, sub := range team.Subordinates[:min(5, len(team.Subordinates))] {
		names = append(names, sub.Str("name"))
	}
	joined := strings.Join(names, ", ")
	if len(team.Subordinates) > 5 {
		joined += fmt.Sprintf(", and %d others", len(team.Subordinates)-5)
	}
	out := fmt.Sprintf("\n\n📋 **Your team (%d members):** %s", len(team.Subordinates), joined)
	if withHint {
		out += "\n\nIf you expected to see requests, they may have already been processed or your team members haven't submitted any yet."
	}
	return out
}

func (h *Handler) viewApprovedTimeOff(ctx context.Context, s *session.Session, team odoo.TeamData) string {
	approved, err := s.ERP.ApprovedTimeOff(ctx, s.Employee.Int("id"), 30)
	if err != nil {
		h.logger.Warn("approved time off fetch failed", zap.Error(err))
	}
	if len(approved) == 0 {
		return fmt.Sprintf("✅ Your team has no approved time off scheduled for the next 30 days.%s\n\n💡 *Type \"cancel\" to return to normal chat.*",
			teamContext(team, false))
	}

	grouped := make(map[string][]odoo.Record)
	for _, req := range approved {
		_, name := req.Pair("employee_id")
		if name == "" {
			name = "Unknown"
		}
		grouped[name] = append(grouped[name], req)
	}
	empNames := make([]string, 0, len(grouped))
	for name := range grouped {
		empNames = append(empNames, name)
	}
	sort.Strings(empNames)

	now := h.now()
	lines := []string{"📅 **Approved Time Off for Your Team**\n"}
	for _, name := range empNames {
		lines = append(lines, fmt.Sprintf("**%s:**", name))
		reqs := grouped[name]
		sort.Slice(reqs, func(i, j int) bool {
			return requestDate(reqs[i], "date_from") < requestDate(reqs[j], "date_from")
		})
		for _, req := range reqs {
			days := req.Float("number_of_days")
			if days == 0 {
				continue
			}
			_, leaveType := req.Pair("holiday_status_id")
			if leaveType == "" {
				leaveType = "Unknown"
			}
			rawFrom := requestDate(req, "date_from")
			rawTo := requestDate(req, "date_to")
			emoji := leaveStatusEmoji(rawFrom, rawTo, now)
			from, to := rawFrom, rawTo
			if t, ok := parseOdooDate(rawFrom); ok {
				from = formatDateDMY(t)
			}
			if t, ok := parseOdooDate(rawTo); ok {
				to = formatDateDMY(t)
			}
			line := fmt.Sprintf("- %s **%s**: %s → %s (%g days)", emoji, leaveType, from, to, days)
			if desc := req.Str("name"); desc != "" && desc != "Time Off Request" {
				line += "\n     💬 " + desc
			}
			lines = append(lines, line)
		}
		lines = append(lines, "")
	}

	lines = append(lines,
		"---",
		"**Legend:**",
		"🔜 = Future leave   •   📍 = Currently on leave   •   📅 = Past leave",
		"",
		"Would you like to:",
		"- View pending requests",
		"- See time off for a specific date range",
		"- Return to regular chat",
		"",
		"💡 *Type \"cancel\" to exit this view.*",
	)
	return strings.Join(lines, "\n")
}

func (h *Handler) viewPendingTimeOff(ctx context.Context, s *session.Session, team odoo.TeamData) string {
	employeeID := s.Employee.Int("id")
	pending, err := s.ERP.PendingTimeOff(ctx, employeeID)
	if err != nil {
		h.logger.Warn("pending time off fetch failed", zap.Error(err))
	}
	s.PendingApprovals = pending
	s.ApprovalFlow = true

	if len(pending) == 0 {
		return fmt.Sprintf("✅ You have no pending time off requests from your team members.%s\n\n💡 *Type \"cancel\" to return to normal chat.*",
			teamContext(team, true))
	}

	// One-year horizon so overlap checks see leave beyond the next month.
	approved, err := s.ERP.ApprovedTimeOff(ctx, employeeID, 365)
	if err != nil {
		h.logger.Warn("approved time off fetch failed", zap.Error(err))
	}

	now := h.now()
	teamSize := len(team.Subordinates)
	var b strings.Builder
	fmt.Fprintf(&b, "📋 **Pending Time Off Requests (%d total)**\n\n", len(pending))

	for _, req := range pending {
		_, empName := req.Pair("employee_id")
		if empName == "" {
			empName = "Unknown"
		}
		_, leaveType := req.Pair("holiday_status_id")
		if leaveType == "" {
			leaveType = "Unknown"
		}
		rawFrom := requestDate(req, "date_from")
		rawTo := requestDate(req, "date_to")
		from, to := rawFrom, rawTo
		if t, ok := parseOdooDate(rawFrom); ok {
			from = formatDateDMY(t)
		}
		if t, ok := parseOdooDate(rawTo); ok {
			to = formatDateDMY(t)
		}
		desc := req.Str("name")
		if desc == "" {
			desc = "No description"
		}

		rec, ratio := recommendAction(req, approved, teamSize, now)
		recIcon := "✅"
		if rec == "Deny" {
			recIcon = "❌"
		}
		pctTxt := "N/A"
		if teamSize > 0 {
			pctTxt = fmt.Sprintf("%.0f%%", ratio*100)
		}

		fmt.Fprintf(&b, "**Request #%d**\n👤 **Employee:** %s\n📅 **Type:** %s\n📆 **Dates:** %s to %s (%g days)\n💬 **Description:** %s\n%s **Recommendation:** %s (_%s of team already off_)\n\n",
			req.Int("id"), empName, leaveType, from, to, req.Float("number_of_days"), desc, recIcon, rec, pctTxt)
	}

	b.WriteString("---\n**Actions:**\n" +
		"- To approve a request: Type \"approve [request ID]\" (e.g., \"approve 123\")\n" +
		"- To deny a request:   Type \"deny [request ID] - [reason]\" (e.g., \"deny 123 - Team coverage needed\")\n" +
		"- To view approved time off: Type \"show approved time off\"\n" +
		"- To view more details: Ask about a specific request ID\n\n" +
		"💡 *Type \"cancel\" to exit the approval process.*")
	return b.String()
}

// validatePendingRequest checks the id against the snapshot, refreshing it
// once from the server before giving up.
func (h *Handler) validatePendingRequest(ctx context.Context, s *session.Session, requestID int) bool {
	inSnapshot := func(reqs []odoo.Record) bool {
		for _, req := range reqs {
			if req.Int("id") == requestID {
				return true
			}
		}
		return false
	}
	if inSnapshot(s.PendingApprovals) {
		return true
	}
	pending, err := s.ERP.PendingTimeOff(ctx, s.Employee.Int("id"))
	if err != nil {
		h.logger.Warn("pending time off refresh failed", zap.Error(err))
		return false
	}
	s.PendingApprovals = pending
	return inSnapshot(pending)
}

func (h *Handler) approveTimeOff(ctx context.Context, s *session.Session, query string) string {
	requestID := ExtractRequestID(query)
	if requestID == 0 {
		return "Please specify the request ID you want to approve. For example: 'approve 123'" + approvalCancelHint
	}
	if !h.validatePendingRequest(ctx, s, requestID) {
		return fmt.Sprintf("❌ Request #%d not found in your pending approvals. Please check the request ID.%s", requestID, approvalCancelHint)
	}

	if err := s.ERP.ApproveTimeOff(ctx, requestID); err != nil {
		return fmt.Sprintf("❌ Error approving request: %v%s", err, approvalCancelHint)
	}

	employeeName := "Unknown"
	if _, name, err := s.ERP.EmployeeByLeave(ctx, requestID); err == nil && name != "" {
		employeeName = name
	}
	s.ApprovalFlow = false

	s.Activity.Approval("Time Off Request", employeeName, map[string]any{"request_id": requestID})

	return fmt.Sprintf(`✅ Time off request (ID: %d) has been approved successfully.

The time off request for **%s** has been approved and they will be notified.

Would you like to:
- View remaining pending requests
- View approved time off
- Return to regular chat`, requestID, employeeName)
}

func (h *Handler) denyTimeOff(ctx context.Context, s *session.Session, query string) string {
	requestID := ExtractRequestID(query)
	reason := ExtractDenialReason(query)

	if requestID == 0 {
		return "Please specify the request ID you want to deny. For example: 'deny 123 - reason for denial'" + approvalCancelHint
	}
	if !h.validatePendingRequest(ctx, s, requestID) {
		return fmt.Sprintf("❌ Request #%d not found in your pending approvals. Please check the request ID.%s", requestID, approvalCancelHint)
	}

	if err := s.ERP.DenyTimeOff(ctx, requestID, reason); err != nil {
		return fmt.Sprintf("❌ Error denying request: %v%s", err, approvalCancelHint)
	}

	employeeName := "Unknown"
	if _, name, err := s.ERP.EmployeeByLeave(ctx, requestID); err == nil && name != "" {
		employeeName = name
	}
	s.ApprovalFlow = false

	reasonText := ""
	if reason != "" {
		reasonText = fmt.Sprintf("\n**Reason:** %s", reason)
	}
	return fmt.Sprintf(`✅ Time off request (ID: %d) has been denied.

The time off request for **%s** has been denied and they will be notified.%s

Would you like to:
- View remaining pending requests
- View approved time off
- Return to regular chat`, requestID, employeeName, reasonText)
}
