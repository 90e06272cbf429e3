package flows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/dateparse"
	"github.com/prezlab/prezbot/internal/intent"
	"github.com/prezlab/prezbot/internal/odoo"
	"github.com/prezlab/prezbot/internal/session"
)

// leaveTypeEntry is one alias-to-type binding. Aliases are matched in
// order so catalogue names win over the generic shortcuts.
type leaveTypeEntry struct {
	key string
	lt  odoo.LeaveType
}

// buildLeaveTypeAliases maps the server's leave types to the words users
// actually write: the full catalogue name plus shortcuts per kind.
func buildLeaveTypeAliases(types []odoo.LeaveType) []leaveTypeEntry {
	var entries []leaveTypeEntry
	for _, lt := range types {
		name := strings.ToLower(lt.Name)
		entries = append(entries, leaveTypeEntry{name, lt})
		switch {
		case strings.Contains(name, "annual"):
			entries = append(entries,
				leaveTypeEntry{"annual", lt},
				leaveTypeEntry{"vacation", lt},
				leaveTypeEntry{"pto", lt})
		case strings.Contains(name, "sick"):
			entries = append(entries,
				leaveTypeEntry{"sick", lt},
				leaveTypeEntry{"sick leave", lt},
				leaveTypeEntry{"sick time", lt})
		case strings.Contains(name, "unpaid"):
			entries = append(entries,
				leaveTypeEntry{"unpaid", lt},
				leaveTypeEntry{"unpaid leave", lt},
				leaveTypeEntry{"lwop", lt})
		}
	}
	return entries
}

// TimeOff advances the time off request conversation by one message.
func (h *Handler) TimeOff(ctx context.Context, s *session.Session, query string) string {
	s.Active = session.WorkflowTimeOff

	if intent.DetectExit(query) {
		s.ClearWorkflows()
		if intent.ContainsArabic(query) {
			return "تم إلغاء عملية طلب الإجازة. يمكنك البدء من جديد أو طلب مساعدة أخرى."
		}
		return "Request cancelled. How else can I help?"
	}

	st := s.TimeOff
	if st == nil {
		st = &session.TimeOffState{}
		s.TimeOff = st
		details := dateparse.Extract(query, h.now())
		st.ParsedType = details.LeaveType
		st.DateFrom = details.DateFrom
		st.DateTo = details.DateTo
	} else if st.DateFrom == "" || st.DateTo == "" {
		details := dateparse.Extract(query, h.now())
		if st.DateFrom == "" {
			st.DateFrom = details.DateFrom
		}
		if st.DateTo == "" {
			st.DateTo = details.DateTo
		}
		if st.ParsedType == "" {
			st.ParsedType = details.LeaveType
		}
	}
	st.Arabic = st.Arabic || intent.ContainsArabic(query)

	leaveTypes, err := s.ERP.LeaveTypes(ctx)
	if err != nil {
		h.logger.Warn("leave types fetch failed", zap.Error(err))
	}
	aliases := buildLeaveTypeAliases(leaveTypes)

	if st.LeaveTypeID == 0 {
		h.matchLeaveType(st, aliases, query)
	}

	var missing []string
	if st.LeaveTypeID == 0 {
		missing = append(missing, "leave_type")
	}
	if st.DateFrom == "" {
		missing = append(missing, "date_from")
	}
	if st.DateTo == "" {
		missing = append(missing, "date_to")
	}

	if len(missing) == 0 {
		return h.submitTimeOff(ctx, s, st)
	}
	return h.askMissingTimeOff(missing, st, leaveTypes, intent.ContainsArabic(query))
}

// matchLeaveType resolves the leave type from the current message first,
// then from whatever keyword the first message carried.
func (h *Handler) matchLeaveType(st *session.TimeOffState, aliases []leaveTypeEntry, query string) {
	queryLower := strings.ToLower(strings.TrimSpace(query))

	for _, e := range aliases {
		if e.key == queryLower {
			st.LeaveTypeID = e.lt.ID
			st.LeaveTypeName = e.lt.Name
			return
		}
	}
	for _, e := range aliases {
		if strings.Contains(queryLower, e.key) || strings.Contains(e.key, queryLower) {
			st.LeaveTypeID = e.lt.ID
			st.LeaveTypeName = e.lt.Name
			return
		}
	}
	if st.ParsedType != "" {
		for _, e := range aliases {
			if strings.Contains(e.key, st.ParsedType) {
				st.LeaveTypeID = e.lt.ID
				st.LeaveTypeName = e.lt.Name
				return
			}
		}
	}
}

func (h *Handler) submitTimeOff(ctx context.Context, s *session.Session, st *session.TimeOffState) string {
	employeeID := s.Employee.Int("id")
	unpaid := strings.Contains(strings.ToLower(st.LeaveTypeName), "unpaid")

	var balance odoo.LeaveBalance
	if !unpaid {
		var err error
		balance, err = s.ERP.LeaveBalance(ctx, st.LeaveTypeID, employeeID)
		if err != nil {
			h.logger.Warn("leave balance fetch failed", zap.Error(err))
		}
	}

	days := inclusiveDays(st.DateFrom, st.DateTo)

	if !unpaid && balance.Remaining < float64(days) {
		typeName := st.LeaveTypeName
		s.ClearWorkflows()
		return fmt.Sprintf(`I see you want to request %d days of %s, but you only have %g days available.

Your current balance:
- Available: %g days
- Already used: %g days
- Total allocated: %g days

Would you like to request a different number of days or check another leave type?

💡 *Type "cancel" to exit this process.*`,
			days, typeName, balance.Remaining, balance.Remaining, balance.Taken, balance.Allocated)
	}

	req := odoo.TimeOffRequest{
		EmployeeID:  employeeID,
		LeaveTypeID: st.LeaveTypeID,
		DateFrom:    st.DateFrom,
		DateTo:      st.DateTo,
		Description: "Time off request via chatbot",
		Days:        float64(days),
	}
	leaveID, err := s.ERP.CreateTimeOff(ctx, req)

	typeName := st.LeaveTypeName
	dateFrom, dateTo := st.DateFrom, st.DateTo
	s.ClearWorkflows()

	if err != nil {
		return fmt.Sprintf(`❌ %s

Please check the dates and try again, or contact HR for assistance.

💡 *Type "cancel" to exit this process.*`, timeOffErrorMessage(err))
	}

	balanceInfo := ""
	if !unpaid {
		balanceInfo = fmt.Sprintf("\n- Remaining balance: %g days", balance.Remaining-float64(days))
	}

	s.Activity.TimeOff(typeName, dateFrom, dateTo, map[string]any{
		"days":              days,
		"balance_remaining": balance.Remaining - float64(days),
	})

	return fmt.Sprintf(`✅ Time off request created successfully and submitted for approval. Request ID: %d

Details of your request:
- Type: %s
- From: %s
- To: %s
- Days: %d%s

Your request has been submitted and is pending approval from your manager.`,
		leaveID, typeName, dateFrom, dateTo, days, balanceInfo)
}

func (h *Handler) askMissingTimeOff(missing []string, st *session.TimeOffState, leaveTypes []odoo.LeaveType, arabic bool) string {
	if missing[0] == "leave_type" {
		var names []string
		for _, lt := range leaveTypes {
			names = append(names, "- "+lt.Name)
		}
		list := strings.Join(names, "\n")
		if list == "" {
			list = "- Annual Leave\n- Sick Leave\n- Unpaid Leave"
		}
		if arabic {
			return fmt.Sprintf("يرجى تحديد نوع الإجازة التي ترغب بها (على سبيل المثال: إجازة سنوية، إجازة مرضية، إجازة بدون راتب):\n\n%s\n\nاكتب نوع الإجازة أدناه.\n\n💡 اكتب 'إلغاء' في أي وقت للخروج من هذه العملية.", list)
		}
		return fmt.Sprintf("I'd be happy to help you request time off! What type of leave would you like to request?\n\nAvailable leave types:\n%s\n\nJust type the leave type (e.g., \"annual\", \"sick\", or \"unpaid\").\n\n💡 *Type \"cancel\" at any time to exit this process.*", list)
	}

	if arabic {
		return "يرجى تحديد تاريخ بدء الإجازة وتاريخ الانتهاء (مثال: ١٥ يونيو أو غداً أو من ١٥ يونيو إلى ٢٠ يونيو).\n💡 اكتب 'إلغاء' في أي وقت للخروج من هذه العملية."
	}
	typeName := st.LeaveTypeName
	if typeName == "" {
		typeName = "time off"
	}
	return fmt.Sprintf("Great! You want to request %s. \n\nNow, please provide the dates:\n- What date would you like to start your time off?\n- What date would you like to return?\n\nYou can say something like:\n- \"from 3/15 to 3/17\"\n- \"3/15 to 3/17\"  \n- \"from March 15 to March 17\"\n- \"tomorrow\" (for a single day)\n- \"from June 1st till the 2nd\"\n- \"13 of june till 14th\"\n- \"next Monday to Friday\"\n\nPlease provide your dates.\n\n💡 *Type \"cancel\" at any time to exit this process.*", typeName)
}

// inclusiveDays counts calendar days in a closed ISO date range.
func inclusiveDays(fromISO, toISO string) int {
	from, err1 := time.Parse("2006-01-02", fromISO)
	to, err2 := time.Parse("2006-01-02", toISO)
	if err1 != nil || err2 != nil {
		return 0
	}
	return int(to.Sub(from).Hours()/24) + 1
}

// timeOffErrorMessage maps the creation errors to the wording shown in
// chat.
func timeOffErrorMessage(err error) string {
	switch {
	case errors.Is(err, odoo.ErrInsufficientBalance):
		return "You don't have enough leave balance for this request. Please check your available days."
	case errors.Is(err, odoo.ErrOverlappingLeave):
		return "This request overlaps with an existing time off request. Please choose different dates."
	case errors.Is(err, odoo.ErrMissingLeaveField):
		return fmt.Sprintf("Missing required field. Error: %v", err)
	default:
		return fmt.Sprintf("Error creating time off request: %v", err)
	}
}
