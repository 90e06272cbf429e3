package flows

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/dateparse"
	"github.com/prezlab/prezbot/internal/intent"
	"github.com/prezlab/prezbot/internal/odoo"
	"github.com/prezlab/prezbot/internal/session"
	"github.com/prezlab/prezbot/internal/workflow"
)

// Overtime request steps. The table is linear; the machine still owns the
// progression so an unconfigured step is a hard error, not a silent reset.
const (
	overtimeStepPeriod   workflow.State = "get_period"
	overtimeStepCategory workflow.State = "get_category"
	overtimeStepProject  workflow.State = "get_project"
	overtimeStepDone     workflow.State = "done"
)

const overtimeAdvance workflow.Trigger = "advance"

func overtimeMachine(st *session.OvertimeState) (workflow.StateMachine, error) {
	b := workflow.NewBuilder()
	b.Configure(overtimeStepPeriod).Permit(overtimeAdvance, overtimeStepCategory)
	b.Configure(overtimeStepCategory).Permit(overtimeAdvance, overtimeStepProject)
	b.Configure(overtimeStepProject).Permit(overtimeAdvance, overtimeStepDone)
	return b.Build(workflow.State(st.Step))
}

func (h *Handler) advanceOvertime(ctx context.Context, st *session.OvertimeState) {
	m, err := overtimeMachine(st)
	if err != nil {
		h.logger.Error("overtime step machine build failed", zap.Error(err))
		return
	}
	if err := m.Fire(ctx, overtimeAdvance); err != nil {
		h.logger.Error("overtime step transition failed",
			zap.String("step", st.Step), zap.Error(err))
		return
	}
	st.Step = string(m.State())
}

// Overtime advances the overtime request conversation by one message.
func (h *Handler) Overtime(ctx context.Context, s *session.Session, query string) string {
	s.Active = session.WorkflowOvertime
	started := s.Overtime != nil
	if !started {
		s.Overtime = &session.OvertimeState{Step: string(overtimeStepPeriod)}
	}
	st := s.Overtime

	// The opening message names the intent, so only follow-ups can cancel.
	if started && intent.DetectExit(query) {
		s.ClearWorkflows()
		return "Overtime request cancelled. How else can I help you?"
	}

	switch workflow.State(st.Step) {
	case overtimeStepPeriod:
		return h.overtimePeriod(ctx, s, st, query)
	case overtimeStepCategory:
		return h.overtimeCategory(ctx, s, st, query)
	case overtimeStepProject:
		return h.overtimeProject(ctx, s, st, query)
	}
	s.ClearWorkflows()
	return ""
}

func (h *Handler) overtimePeriod(ctx context.Context, s *session.Session, st *session.OvertimeState, query string) string {
	start, end := dateparse.Period(query)
	if start == "" || end == "" {
		return `I'll help you submit an overtime request.

Please provide the overtime period in this format:
**from DD/MM/YYYY HH:MM:SS to DD/MM/YYYY HH:MM:SS**`
	}

	st.DateStart = start
	st.DateEnd = end
	h.advanceOvertime(ctx, st)

	categories, err := s.ERP.OvertimeCategories(ctx)
	if err != nil || len(categories) == 0 {
		if err != nil {
			h.logger.Warn("overtime categories fetch failed", zap.Error(err))
		}
		s.ClearWorkflows()
		return "❌ Could not find any overtime categories. Please contact HR."
	}
	st.Categories = categories

	return fmt.Sprintf("Great, I have the dates. Now, which overtime category does this fall under?\n\nAvailable categories:\n%s",
		categoryList(categories))
}

func (h *Handler) overtimeCategory(ctx context.Context, s *session.Session, st *session.OvertimeState, query string) string {
	queryLower := strings.ToLower(strings.TrimSpace(query))

	var matched *odoo.OvertimeCategory
	for i := range st.Categories {
		if strings.Contains(strings.ToLower(st.Categories[i].Name), queryLower) {
			matched = &st.Categories[i]
			break
		}
	}
	if matched == nil {
		return fmt.Sprintf("I couldn't find a matching category for %q. Please choose from the list below:\n\n%s",
			query, categoryList(st.Categories))
	}

	st.CategoryID = matched.ID
	st.CategoryName = matched.Name
	h.advanceOvertime(ctx, st)

	projects, err := s.ERP.Projects(ctx)
	if err != nil || len(projects) == 0 {
		reason := "No projects found."
		if err != nil {
			reason = err.Error()
		}
		s.ClearWorkflows()
		return fmt.Sprintf("❌ Error fetching projects: %s", reason)
	}
	st.Projects = projects

	return fmt.Sprintf(`Excellent. The category is set to %q.

Now, please select or type the project name. Available projects:

%s

Or type 'show all' to see the full list.`, matched.Name, projectList(projects, 10))
}

func (h *Handler) overtimeProject(ctx context.Context, s *session.Session, st *session.OvertimeState, query string) string {
	if strings.ToLower(strings.TrimSpace(query)) == "show all" {
		return fmt.Sprintf("📋 Here are all the available projects:\n\n%s\n\nPlease type the name of the project you want to select.",
			projectList(st.Projects, len(st.Projects)))
	}

	project := findProject(query, st.Projects)
	if project == nil {
		return fmt.Sprintf("❌ No matching project found for %q. Please type the exact project name or type 'show all' to see the full list.", query)
	}

	employeeID := s.Employee.Int("id")
	if employeeID == 0 {
		s.ClearWorkflows()
		return "Error: Could not identify the current employee. Please start over."
	}

	startDisplay := displayDatetime(st.DateStart)
	endDisplay := displayDatetime(st.DateEnd)
	categoryName := st.CategoryName
	hours := overtimeHours(st.DateStart, st.DateEnd)

	requestID, err := s.ERP.CreateOvertime(ctx, odoo.OvertimeRequest{
		OwnerUserID:  s.ERP.UID(),
		CategoryID:   st.CategoryID,
		DateStart:    st.DateStart,
		DateEnd:      st.DateEnd,
		Reason:       "Overtime for project: " + project.Name,
		EmployeeName: s.Employee.Str("name"),
		ProjectID:    project.ID,
	})
	s.ClearWorkflows()

	if err != nil {
		return fmt.Sprintf("Error creating overtime request: %v", err)
	}

	s.Activity.Overtime(hours, startDisplay+" to "+endDisplay, map[string]any{
		"category":   categoryName,
		"project":    project.Name,
		"request_id": requestID,
	})

	return fmt.Sprintf(`✅ Overtime request created (ID %d) and submitted for approval

**Overtime Request Details:**
- 📅 Period: %s to %s
- 🏢 Category: %s
- 👷 Project: %s
- 🆔 Request ID: %d

Your overtime request has been successfully created and is now pending approval.`,
		requestID, startDisplay, endDisplay, categoryName, project.Name, requestID)
}

// findProject matches user input against the project list: exact name
// first, then substring either way.
func findProject(input string, projects []odoo.Project) *odoo.Project {
	needle := strings.ToLower(strings.TrimSpace(input))
	for i := range projects {
		if strings.ToLower(projects[i].Name) == needle {
			return &projects[i]
		}
	}
	for i := range projects {
		if strings.Contains(strings.ToLower(projects[i].Name), needle) {
			return &projects[i]
		}
	}
	for i := range projects {
		if strings.Contains(needle, strings.ToLower(projects[i].Name)) {
			return &projects[i]
		}
	}
	return nil
}

func categoryList(categories []odoo.OvertimeCategory) string {
	var lines []string
	for _, c := range categories {
		lines = append(lines, "- "+c.Name)
	}
	return strings.Join(lines, "\n")
}

func projectList(projects []odoo.Project, limit int) string {
	if limit > len(projects) {
		limit = len(projects)
	}
	var lines []string
	for _, p := range projects[:limit] {
		lines = append(lines, "- "+p.Name)
	}
	return strings.Join(lines, "\n")
}

// displayDatetime turns "2006-01-02 15:04:05" into "2006/01/02 at 15:04:05".
func displayDatetime(dt string) string {
	return strings.ReplaceAll(strings.ReplaceAll(dt, "-", "/"), " ", " at ")
}

func overtimeHours(start, end string) float64 {
	const layout = "2006-01-02 15:04:05"
	s, err1 := time.Parse(layout, start)
	e, err2 := time.Parse(layout, end)
	if err1 != nil || err2 != nil {
		return 0
	}
	return math.Round(e.Sub(s).Hours()*100) / 100
}
