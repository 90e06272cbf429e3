package odoo

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// relationModels resolves Many2one fields to the model holding the target
// record, for detail lookups.
var relationModels = map[string]string{
	"department_id":        "hr.department",
	"parent_id":            "hr.employee",
	"coach_id":             "hr.employee",
	"address_id":           "res.partner",
	"company_id":           "res.company",
	"job_id":               "hr.job",
	"resource_calendar_id": "resource.calendar",
	"work_location_id":     "hr.work.location",
	"holiday_status_id":    "hr.leave.type",
}

var employeeBasicFields = []string{"name", "job_title", "work_email", "work_phone", "department_id"}

var employeeAdditionalFields = []string{
	"mobile_phone", "identification_id", "gender", "birthday", "address_id",
	"work_location_id", "parent_id", "coach_id", "department_id", "job_id",
	"resource_calendar_id", "tz", "marital", "company_id",
	"x_studio_employee_arabic_name",
}

var partnerFields = []string{
	"name", "email", "phone", "mobile",
	"street", "city", "zip", "country_id",
	"function", "title", "company_id", "user_id",
}

// TeamData describes the employee's reporting line.
type TeamData struct {
	IsManager    bool
	Subordinates []Record
}

// CurrentUserEmployee resolves the HR record of the authenticated user.
// The user-to-employee link varies across installations, so resolution
// walks the known link fields before falling back to an email and name
// search.
func (c *Client) CurrentUserEmployee(ctx context.Context) (Record, error) {
	res, err := c.transport.ExecuteKw(ctx, "res.users", "read",
		[]any{[]any{c.uid}},
		map[string]any{"fields": []string{"name", "email", "partner_id", "employee_id", "employee_ids"}})
	if err != nil {
		return nil, fmt.Errorf("failed to read user record: %w", err)
	}
	users := asRecords(res)
	if len(users) == 0 {
		return nil, ErrNotFound
	}
	user := users[0]

	if id, _ := user.Pair("employee_id"); id != 0 {
		return c.employeeByID(ctx, id)
	}
	if ids := asInts(user["employee_ids"]); len(ids) > 0 {
		return c.employeeByID(ctx, ids[0])
	}

	if email := user.Str("email"); email != "" {
		if emp, err := c.searchEmployee(ctx, []any{[]any{"work_email", "=", email}}); err == nil {
			return emp, nil
		}
	}
	if name := user.Str("name"); name != "" {
		if emp, err := c.searchEmployee(ctx, []any{[]any{"name", "ilike", name}}); err == nil {
			return emp, nil
		}
	}

	// Last resort: build a minimal profile from the linked partner.
	if partnerID, _ := user.Pair("partner_id"); partnerID != 0 {
		partner, err := c.partnerByID(ctx, partnerID)
		if err == nil {
			partner["is_partner"] = true
			return partner, nil
		}
	}
	return nil, ErrNotFound
}

func (c *Client) employeeByID(ctx context.Context, employeeID int) (Record, error) {
	res, err := c.transport.ExecuteKw(ctx, "hr.employee", "read",
		[]any{[]any{employeeID}},
		map[string]any{"fields": employeeBasicFields})
	if err != nil {
		return nil, fmt.Errorf("failed to read employee %d: %w", employeeID, err)
	}
	rows := asRecords(res)
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	emp := rows[0]
	emp["id"] = employeeID
	c.attachAdditionalFields(ctx, emp, employeeID)
	return emp, nil
}

func (c *Client) searchEmployee(ctx context.Context, domain []any) (Record, error) {
	res, err := c.transport.ExecuteKw(ctx, "hr.employee", "search", []any{domain},
		map[string]any{"limit": 1})
	if err != nil {
		return nil, err
	}
	ids := asInts(res)
	if len(ids) == 0 {
		return nil, ErrNotFound
	}
	return c.employeeByID(ctx, ids[0])
}

// attachAdditionalFields reads entitlement-guarded fields one by one so a
// single restricted field does not void the whole profile.
func (c *Client) attachAdditionalFields(ctx context.Context, emp Record, employeeID int) {
	for _, field := range employeeAdditionalFields {
		res, err := c.transport.ExecuteKw(ctx, "hr.employee", "read",
			[]any{[]any{employeeID}},
			map[string]any{"fields": []string{field}})
		if err != nil {
			continue
		}
		rows := asRecords(res)
		if len(rows) == 0 {
			continue
		}
		if v, ok := rows[0][field]; ok {
			emp[field] = v
		}
	}
}

func (c *Client) partnerByID(ctx context.Context, partnerID int) (Record, error) {
	res, err := c.transport.ExecuteKw(ctx, "res.partner", "read",
		[]any{[]any{partnerID}},
		map[string]any{"fields": partnerFields})
	if err != nil {
		return nil, fmt.Errorf("failed to read partner %d: %w", partnerID, err)
	}
	rows := asRecords(res)
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	partner := rows[0]
	partner["id"] = partnerID
	return partner, nil
}

// EmployeeByName finds an employee for the directory lookup feature.
func (c *Client) EmployeeByName(ctx context.Context, name string) (Record, error) {
	emp, err := c.searchEmployee(ctx, []any{[]any{"name", "ilike", name}})
	if err == nil {
		return emp, nil
	}

	res, err := c.transport.ExecuteKw(ctx, "res.partner", "search",
		[]any{[]any{[]any{"name", "ilike", name}}},
		map[string]any{"limit": 1})
	if err != nil {
		return nil, fmt.Errorf("failed to search partners: %w", err)
	}
	ids := asInts(res)
	if len(ids) == 0 {
		return nil, ErrNotFound
	}
	partner, err := c.partnerByID(ctx, ids[0])
	if err != nil {
		return nil, err
	}
	partner["is_partner"] = true
	return partner, nil
}

// IsManager reports whether anyone reports to the given employee.
func (c *Client) IsManager(ctx context.Context, employeeID int) (bool, error) {
	res, err := c.transport.ExecuteKw(ctx, "hr.employee", "search_count",
		[]any{[]any{[]any{"parent_id", "=", employeeID}}}, nil)
	if err != nil {
		return false, fmt.Errorf("failed to count subordinates: %w", err)
	}
	n, _ := asInt(res)
	return n > 0, nil
}

// Team returns the reporting line of the given employee.
func (c *Client) Team(ctx context.Context, employeeID int) (TeamData, error) {
	subs, err := c.Subordinates(ctx, employeeID)
	if err != nil {
		return TeamData{}, err
	}
	team := TeamData{IsManager: len(subs) > 0}
	if len(subs) == 0 {
		return team, nil
	}

	res, err := c.transport.ExecuteKw(ctx, "hr.employee", "read",
		[]any{intsToAny(subs)},
		map[string]any{"fields": []string{"name", "job_title", "work_email", "user_id"}})
	if err != nil {
		return team, fmt.Errorf("failed to read team members: %w", err)
	}
	for i, row := range asRecords(res) {
		if row.Int("id") == 0 && i < len(subs) {
			row["id"] = subs[i]
		}
		team.Subordinates = append(team.Subordinates, row)
	}
	return team, nil
}

// RelationName resolves a Many2one field value to the display name of the
// target record.
func (c *Client) RelationName(ctx context.Context, field string, id int) (string, error) {
	model, ok := relationModels[field]
	if !ok {
		return "", fmt.Errorf("no relation model for field %s", field)
	}
	res, err := c.transport.ExecuteKw(ctx, model, "read",
		[]any{[]any{id}},
		map[string]any{"fields": []string{"name"}})
	if err != nil {
		return "", fmt.Errorf("failed to resolve %s: %w", field, err)
	}
	rows := asRecords(res)
	if len(rows) == 0 {
		return "", ErrNotFound
	}
	return rows[0].Str("name"), nil
}

// Project is one assignable project for overtime requests.
type Project struct {
	ID   int
	Name string
}

// Projects lists projects for overtime booking. The project module goes by
// different model names depending on what is installed, so each known name
// is probed in turn.
func (c *Client) Projects(ctx context.Context) ([]Project, error) {
	var lastErr error
	for _, model := range []string{"project.project", "project", "x_project"} {
		res, err := c.transport.ExecuteKw(ctx, model, "search_read",
			[]any{[]any{}},
			map[string]any{"fields": []string{"name", "display_name"}, "limit": 200})
		if err != nil {
			lastErr = err
			continue
		}
		var projects []Project
		for _, row := range asRecords(res) {
			name := row.Str("name")
			if name == "" {
				name = row.Str("display_name")
			}
			projects = append(projects, Project{ID: row.Int("id"), Name: name})
		}
		return projects, nil
	}
	c.logger.Warn("no project model reachable", zap.Error(lastErr))
	return nil, fmt.Errorf("failed to list projects: %w", lastErr)
}
