package flows

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/odoo"
	"github.com/prezlab/prezbot/internal/session"
)

// LeaveBalanceSummary renders the employee's scheduled days off and the
// per-type leave balances.
func (h *Handler) LeaveBalanceSummary(ctx context.Context, s *session.Session) string {
	data, err := s.ERP.EmployeeLeaveData(ctx, s.Employee.Int("id"))
	if err != nil {
		h.logger.Warn("leave data fetch failed", zap.Error(err))
		return "I couldn't find any leave data for you. Please contact HR."
	}

	var lines []string

	var scheduled []string
	for _, req := range data.Requests {
		state := req.Str("state")
		if state != "validate" && state != "confirm" && state != "draft" {
			continue
		}
		_, typeName := req.Pair("holiday_status_id")
		if typeName == "" {
			typeName = "Unknown"
		}
		status := "Pending"
		if state == "validate" {
			status = "Approved"
		}

		dateRange := "Date not specified"
		from := isoDatePart(req.Str("date_from"))
		to := isoDatePart(req.Str("date_to"))
		if from != "" && to != "" {
			if from == to {
				dateRange = from
			} else {
				dateRange = from + " to " + to
			}
		}

		days := req.Float("number_of_days")
		plural := "s"
		if days == 1 {
			plural = ""
		}
		scheduled = append(scheduled, fmt.Sprintf("- **%s** - %s (%s) - %g day%s",
			dateRange, typeName, status, days, plural))
	}
	if len(scheduled) > 0 {
		lines = append(lines, "**📅 Scheduled Days Off:**\n")
		lines = append(lines, scheduled...)
		lines = append(lines, "")
	}

	lines = append(lines, "**📊 Leave Balances:**\n")
	if len(data.Summary) == 0 {
		lines = append(lines, "I couldn't find detailed leave balance data for you. Please contact HR.")
		return strings.Join(lines, "\n")
	}

	for _, entry := range orderedSummary(data.Summary) {
		info := entry.info
		lines = append(lines, fmt.Sprintf("- **%s**: %g days available", entry.display, info.Balance))
		lines = append(lines, fmt.Sprintf("  - Allocated: %g days", info.Allocated))
		lines = append(lines, fmt.Sprintf("  - Taken: %g days", info.Taken))
		if info.Requested > 0 {
			lines = append(lines, fmt.Sprintf("  - Pending requests: %g days", info.Requested))
		}
	}
	return strings.Join(lines, "\n")
}

type summaryEntry struct {
	display string
	info    odoo.LeaveSummary
}

// orderedSummary puts annual leave first, sick leave second and the rest
// alphabetically so the listing is stable.
func orderedSummary(summary map[string]odoo.LeaveSummary) []summaryEntry {
	var annual, sick, others []summaryEntry
	for name, info := range summary {
		lower := strings.ToLower(name)
		switch {
		case strings.Contains(lower, "annual") || strings.Contains(lower, "vacation"):
			annual = append(annual, summaryEntry{"Annual Leave", info})
		case strings.Contains(lower, "sick"):
			sick = append(sick, summaryEntry{"Sick Leave", info})
		default:
			others = append(others, summaryEntry{name, info})
		}
	}
	sort.Slice(others, func(i, j int) bool { return others[i].display < others[j].display })

	out := append(annual, sick...)
	return append(out, others...)
}

// isoDatePart strips the time component off an ERP datetime string.
func isoDatePart(s string) string {
	if s == "" {
		return ""
	}
	if i := strings.IndexAny(s, "T "); i > 0 {
		return s[:i]
	}
	return s
}
