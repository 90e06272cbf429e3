package flows

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/odoo"
	"github.com/prezlab/prezbot/internal/session"
	"github.com/prezlab/prezbot/internal/workflow"
)

// Expense report steps. Progression is driven by a state machine so the
// per diem detour (trip dates and destination) stays declarative.
const (
	expenseStepCategory    workflow.State = "category"
	expenseStepDescription workflow.State = "description"
	expenseStepPurpose     workflow.State = "purpose"
	expenseStepLink        workflow.State = "attached_link"
	expenseStepTotal       workflow.State = "total"
	expenseStepDate        workflow.State = "date"
	expenseStepFromDate    workflow.State = "from_date"
	expenseStepToDate      workflow.State = "to_date"
	expenseStepDestination workflow.State = "destination"
	expenseStepConfirm     workflow.State = "confirm"
	expenseStepDone        workflow.State = "done"
)

const expenseAdvance workflow.Trigger = "advance"

// expenseMachine wires the step graph for the current expense. Guards read
// the chosen category, so the machine must be rebuilt per message.
func expenseMachine(st *session.ExpenseState) (workflow.StateMachine, error) {
	perDiem := func(context.Context) bool { return st.Category == odoo.ExpensePerDiem }
	other := func(ctx context.Context) bool { return st.Category != odoo.ExpensePerDiem }

	b := workflow.NewBuilder()
	b.Configure(expenseStepCategory).Permit(expenseAdvance, expenseStepDescription)
	b.Configure(expenseStepDescription).Permit(expenseAdvance, expenseStepPurpose)
	b.Configure(expenseStepPurpose).Permit(expenseAdvance, expenseStepLink)
	b.Configure(expenseStepLink).
		PermitIf(expenseAdvance, expenseStepDate, perDiem).
		PermitIf(expenseAdvance, expenseStepTotal, other)
	b.Configure(expenseStepTotal).Permit(expenseAdvance, expenseStepDate)
	b.Configure(expenseStepDate).
		PermitIf(expenseAdvance, expenseStepFromDate, perDiem).
		PermitIf(expenseAdvance, expenseStepConfirm, other)
	b.Configure(expenseStepFromDate).Permit(expenseAdvance, expenseStepToDate)
	b.Configure(expenseStepToDate).Permit(expenseAdvance, expenseStepDestination)
	b.Configure(expenseStepDestination).Permit(expenseAdvance, expenseStepConfirm)
	b.Configure(expenseStepConfirm).Permit(expenseAdvance, expenseStepDone)

	return b.Build(workflow.State(st.Step))
}

func (h *Handler) advanceExpense(ctx context.Context, st *session.ExpenseState) {
	m, err := expenseMachine(st)
	if err != nil {
		h.logger.Error("expense step machine build failed", zap.Error(err))
		return
	}
	if err := m.Fire(ctx, expenseAdvance); err != nil {
		h.logger.Error("expense step transition failed",
			zap.String("step", st.Step), zap.Error(err))
		return
	}
	st.Step = string(m.State())
}

const expenseCategoryMenu = "1. [EXP_GEN] Miscellaneous\n" +
	"2. [TRANS & ACC] Travel & Accommodation\n" +
	"3. [PER_DIEM] Per Diem\n" +
	"\nType the number or the category name.\n(Type 'cancel' at any time to abort.)"

// Expense advances the expense report conversation by one message. The
// first call sets up the state and shows the category menu.
func (h *Handler) Expense(ctx context.Context, s *session.Session, query string) string {
	s.Active = session.WorkflowExpense

	if s.Expense == nil {
		companyID, companyName := s.Employee.Pair("company_id")
		s.Expense = &session.ExpenseState{
			Step:        string(expenseStepCategory),
			UserID:      s.Employee.Int("id"),
			CompanyID:   companyID,
			CompanyName: companyName,
		}
		return "Let's create a new expense report! Please choose a category:\n" + expenseCategoryMenu
	}
	st := s.Expense

	input := strings.TrimSpace(query)
	if strings.ToLower(input) == "cancel" {
		s.ClearWorkflows()
		return "Expense report creation cancelled. Returning to normal bot activity."
	}

	switch workflow.State(st.Step) {
	case expenseStepCategory:
		return h.expenseCategory(ctx, st, input)
	case expenseStepDescription:
		st.Description = input
		h.advanceExpense(ctx, st)
		return "Optionally, please enter the purpose of this expense (or type 'skip' to leave blank)."
	case expenseStepPurpose:
		if strings.ToLower(input) != "skip" {
			st.Purpose = input
		}
		h.advanceExpense(ctx, st)
		return "Optionally, please enter an attached link (or type 'skip' to leave blank)."
	case expenseStepLink:
		if strings.ToLower(input) != "skip" {
			st.AttachedLink = input
		}
		h.advanceExpense(ctx, st)
		if workflow.State(st.Step) == expenseStepDate {
			return "What is the expense date? (please use DD/MM/YYYY)"
		}
		return "What is the total amount paid? (in JOD)"
	case expenseStepTotal:
		total, err := strconv.ParseFloat(input, 64)
		if err != nil || total <= 0 {
			return "Please enter a valid positive number for the total amount (in JOD)."
		}
		st.Total = total
		h.advanceExpense(ctx, st)
		return "What is the expense date? (please use DD/MM/YYYY)"
	case expenseStepDate:
		return h.expenseDate(ctx, st, input)
	case expenseStepFromDate:
		iso, ok := parseDMY(input)
		if !ok {
			return "Please enter a valid date in DD/MM/YYYY format."
		}
		st.FromDate = iso
		h.advanceExpense(ctx, st)
		return "What is the end date for your per diem? (please use DD/MM/YYYY)"
	case expenseStepToDate:
		return h.expenseToDate(ctx, s, st, input)
	case expenseStepDestination:
		return h.expenseDestination(ctx, st, input)
	case expenseStepConfirm:
		return h.expenseConfirm(ctx, s, st, input)
	}

	s.ClearWorkflows()
	return ""
}

func (h *Handler) expenseCategory(ctx context.Context, st *session.ExpenseState, input string) string {
	switch strings.ToLower(input) {
	case "1", "[exp_gen] miscellaneous", "miscellaneous", "exp_gen":
		st.Category = odoo.ExpenseMiscellaneous
		h.advanceExpense(ctx, st)
		return "Please enter a description for your expense (e.g., 'Lunch with Customer')."
	case "2", "[trans & acc] travel & accommodation", "travel & accommodation", "trans & acc", "travel", "accommodation":
		st.Category = odoo.ExpenseTravel
		h.advanceExpense(ctx, st)
		return "Please enter a description for your Travel & Accommodation expense (e.g., 'Hotel for business trip')."
	case "3", "[per_diem] per diem", "per diem", "perdiem", "per-diem":
		st.Category = odoo.ExpensePerDiem
		h.advanceExpense(ctx, st)
		return "Please enter a description for your Per Diem expense (e.g., 'Business trip per diem')."
	}
	return "Invalid category. Please choose one of the following:\n" + expenseCategoryMenu
}

func (h *Handler) expenseDate(ctx context.Context, st *session.ExpenseState, input string) string {
	iso, ok := parseDMY(input)
	if !ok {
		return "Please enter a valid date in DD/MM/YYYY format."
	}
	st.Date = iso
	h.advanceExpense(ctx, st)

	if workflow.State(st.Step) == expenseStepFromDate {
		return "What is the start date for your per diem? (please use DD/MM/YYYY)"
	}
	return fmt.Sprintf(`Expense Summary:
Description: %s
Purpose: %s
Attached Link: %s
Category: %s
Total: %g JOD
Date: %s
Company: %s

Type 'confirm' to submit this expense, or 'cancel' to abort.`,
		st.Description, orDash(st.Purpose), orDash(st.AttachedLink),
		st.Category.Label(), st.Total, input, st.CompanyName)
}

func (h *Handler) expenseToDate(ctx context.Context, s *session.Session, st *session.ExpenseState, input string) string {
	iso, ok := parseDMY(input)
	if !ok {
		return "Please enter a valid date in DD/MM/YYYY format."
	}
	st.ToDate = iso
	h.advanceExpense(ctx, st)

	destinations, err := s.ERP.PerDiemDestinations(ctx)
	if err != nil || len(destinations) == 0 {
		if err != nil {
			h.logger.Warn("per diem destinations fetch failed", zap.Error(err))
		}
		return "❌ Could not fetch destinations from Odoo. Please contact HR."
	}
	st.Destinations = destinations

	return fmt.Sprintf("Please select the destination for your per diem. Here are some options:\n\n%s\n\nType the destination name or ID. (Type 'show all' to see the full list.)",
		destinationList(destinations, 10, false))
}

func (h *Handler) expenseDestination(ctx context.Context, st *session.ExpenseState, input string) string {
	if strings.ToLower(input) == "show all" {
		return fmt.Sprintf("All available destinations:\n\n%s\n\nType the destination name or ID.",
			destinationList(st.Destinations, len(st.Destinations), true))
	}

	var match *odoo.Destination
	for i := range st.Destinations {
		d := &st.Destinations[i]
		if strings.EqualFold(input, d.Name) || input == strconv.Itoa(d.ID) {
			match = d
			break
		}
	}
	if match == nil {
		return fmt.Sprintf("I couldn't find a matching destination. Here are some options:\n\n%s\n\nType the destination name or ID. (Type 'show all' to see the full list.)",
			destinationList(st.Destinations, 10, true))
	}

	st.DestinationID = match.ID
	h.advanceExpense(ctx, st)

	return fmt.Sprintf(`Expense Summary:
Description: %s
Purpose: %s
Attached Link: %s
Category: %s
Date: %s
From: %s
To: %s
Destination: %s
Company: %s

Type 'confirm' to submit this expense, or 'cancel' to abort.`,
		st.Description, orDash(st.Purpose), orDash(st.AttachedLink),
		odoo.ExpensePerDiem.Label(), st.Date, st.FromDate, st.ToDate,
		match.Name, st.CompanyName)
}

func (h *Handler) expenseConfirm(ctx context.Context, s *session.Session, st *session.ExpenseState, input string) string {
	if strings.ToLower(input) != "confirm" {
		return "Please type 'confirm' to submit or 'cancel' to abort."
	}

	in := odoo.ExpenseInput{
		Category:     st.Category,
		EmployeeID:   st.UserID,
		CompanyID:    st.CompanyID,
		Description:  st.Description,
		Total:        st.Total,
		Date:         st.Date,
		Purpose:      st.Purpose,
		AttachedLink: st.AttachedLink,
	}
	if st.Category == odoo.ExpensePerDiem {
		in.Total = 0
		in.FromDate = st.FromDate
		in.ToDate = st.ToDate
		in.DestinationID = st.DestinationID
	}

	result, err := s.ERP.CreateExpense(ctx, in)

	category := st.Category
	description := st.Description
	amount := st.Total
	s.ClearWorkflows()

	if err != nil {
		return fmt.Sprintf("❌ Failed to submit expense: %v", err)
	}

	s.Activity.Expense(amount, map[string]any{
		"category":    string(category),
		"description": description,
		"expense_id":  result.ID,
	})
	return fmt.Sprintf("✅ Your expense report has been submitted for approval! (ID: %d)", result.ID)
}

func destinationList(destinations []odoo.Destination, limit int, withID bool) string {
	if limit > len(destinations) {
		limit = len(destinations)
	}
	var lines []string
	for _, d := range destinations[:limit] {
		if withID {
			lines = append(lines, fmt.Sprintf("- %s (ID: %d)", d.Name, d.ID))
		} else {
			lines = append(lines, "- "+d.Name)
		}
	}
	return strings.Join(lines, "\n")
}

// parseDMY parses a strict DD/MM/YYYY date and returns it in ISO form.
func parseDMY(input string) (string, bool) {
	t, err := time.Parse("02/01/2006", input)
	if err != nil {
		return "", false
	}
	return t.Format("2006-01-02"), true
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
