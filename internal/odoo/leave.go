package odoo

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
)

// approvedLeaveStates covers the state names different HR module versions
// use for an approved leave.
var approvedLeaveStates = []any{"validate", "validate1", "approved", "approve", "validated"}

// LeaveType is one entry from the leave type catalogue.
type LeaveType struct {
	ID   int
	Name string
}

// TimeOffRequest is the input for creating a leave record. Dates are
// ISO "2006-01-02".
type TimeOffRequest struct {
	EmployeeID  int
	LeaveTypeID int
	DateFrom    string
	DateTo      string
	Description string
	Days        float64
}

// LeaveBalance is the allocation standing for one employee and leave type.
type LeaveBalance struct {
	Remaining float64
	Allocated float64
	Taken     float64
}

// LeaveSummary aggregates one leave type across allocations and requests.
type LeaveSummary struct {
	Allocated float64
	Taken     float64
	Requested float64
	Balance   float64
}

// LeaveData is the full leave standing of one employee.
type LeaveData struct {
	Summary     map[string]LeaveSummary
	Requests    []Record
	Allocations []Record
}

// LeaveTypes returns the leave types employees may request through chat.
// Only annual, sick and unpaid kinds are offered; when the catalogue names
// match none of those the full list comes back so the flow stays usable.
func (c *Client) LeaveTypes(ctx context.Context) ([]LeaveType, error) {
	res, err := c.transport.ExecuteKw(ctx, "hr.leave.type", "search_read",
		[]any{[]any{}},
		map[string]any{"fields": []string{"id", "name"}})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch leave types: %w", err)
	}

	all := make([]LeaveType, 0)
	filtered := make([]LeaveType, 0)
	for _, row := range asRecords(res) {
		lt := LeaveType{ID: row.Int("id"), Name: row.Str("name")}
		all = append(all, lt)
		name := strings.ToLower(lt.Name)
		if strings.Contains(name, "annual") || strings.Contains(name, "sick") || strings.Contains(name, "unpaid") {
			filtered = append(filtered, lt)
		}
	}
	if len(filtered) > 0 {
		return filtered, nil
	}
	return all, nil
}

// CreateTimeOff creates a leave record and submits it for approval.
// A failed submit is not fatal: the record stays in draft and HR can
// confirm it manually.
func (c *Client) CreateTimeOff(ctx context.Context, req TimeOffRequest) (int, error) {
	payload := map[string]any{
		"employee_id":       req.EmployeeID,
		"holiday_status_id": req.LeaveTypeID,
		"request_date_from": req.DateFrom,
		"request_date_to":   req.DateTo,
		"name":              req.Description,
		"number_of_days":    req.Days,
		"date_from":         req.DateFrom + " 00:00:00",
		"date_to":           req.DateTo + " 23:59:59",
	}

	res, err := c.transport.ExecuteKw(ctx, "hr.leave", "create", []any{payload}, nil)
	if err != nil {
		return 0, classifyLeaveError(err)
	}
	leaveID, ok := asInt(res)
	if !ok {
		return 0, fmt.Errorf("unexpected create result %v", res)
	}

	if _, err := c.transport.ExecuteKw(ctx, "hr.leave", "action_confirm", []any{[]any{leaveID}}, nil); err != nil {
		c.logger.Warn("leave created but submit failed, left in draft",
			zap.Int("leave_id", leaveID),
			zap.Error(err))
	}
	return leaveID, nil
}

// classifyLeaveError maps server fault text onto sentinel errors the
// conversation layer can phrase for the user.
func classifyLeaveError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "not enough days left") || strings.Contains(msg, "exceeds the number of remaining days"):
		return fmt.Errorf("%w: %s", ErrInsufficientBalance, err)
	case strings.Contains(msg, "overlapping"):
		return fmt.Errorf("%w: %s", ErrOverlappingLeave, err)
	case strings.Contains(msg, "required"):
		return fmt.Errorf("%w: %s", ErrMissingLeaveField, err)
	}
	return err
}

// LeaveBalance returns the allocation standing for one leave type. The
// primary path asks the leave type model itself; when that is unavailable
// the balance is rebuilt from validated allocations minus consumed leaves.
func (c *Client) LeaveBalance(ctx context.Context, leaveTypeID, employeeID int) (LeaveBalance, error) {
	res, err := c.transport.ExecuteKw(ctx, "hr.leave.type", "get_employees_days",
		[]any{[]any{leaveTypeID}, []any{employeeID}}, nil)
	if err == nil {
		if bal, ok := extractEmployeeDays(res, employeeID, leaveTypeID); ok {
			return bal, nil
		}
	} else {
		c.logger.Debug("get_employees_days unavailable, using allocation fallback", zap.Error(err))
	}
	return c.leaveBalanceFromAllocations(ctx, leaveTypeID, employeeID)
}

func extractEmployeeDays(res any, employeeID, leaveTypeID int) (LeaveBalance, bool) {
	byEmployee, ok := res.(map[string]any)
	if !ok {
		return LeaveBalance{}, false
	}
	byType, ok := byEmployee[strconv.Itoa(employeeID)].(map[string]any)
	if !ok {
		return LeaveBalance{}, false
	}
	days, ok := byType[strconv.Itoa(leaveTypeID)].(map[string]any)
	if !ok {
		return LeaveBalance{}, false
	}
	rec := Record(days)
	return LeaveBalance{
		Remaining: rec.Float("remaining_leaves"),
		Allocated: rec.Float("max_leaves"),
		Taken:     rec.Float("leaves_taken"),
	}, true
}

func (c *Client) leaveBalanceFromAllocations(ctx context.Context, leaveTypeID, employeeID int) (LeaveBalance, error) {
	res, err := c.transport.ExecuteKw(ctx, "hr.leave.allocation", "search_read",
		[]any{[]any{
			[]any{"employee_id", "=", employeeID},
			[]any{"holiday_status_id", "=", leaveTypeID},
			[]any{"state", "=", "validate"},
		}},
		map[string]any{"fields": []string{"number_of_days"}})
	if err != nil {
		return LeaveBalance{}, fmt.Errorf("failed to read leave allocations: %w", err)
	}
	var allocated float64
	for _, row := range asRecords(res) {
		allocated += row.Float("number_of_days")
	}

	res, err = c.transport.ExecuteKw(ctx, "hr.leave", "search_read",
		[]any{[]any{
			[]any{"employee_id", "=", employeeID},
			[]any{"holiday_status_id", "=", leaveTypeID},
			[]any{"state", "in", []any{"validate", "confirm"}},
		}},
		map[string]any{"fields": []string{"number_of_days"}})
	if err != nil {
		return LeaveBalance{}, fmt.Errorf("failed to read consumed leaves: %w", err)
	}
	var taken float64
	for _, row := range asRecords(res) {
		taken += row.Float("number_of_days")
	}

	return LeaveBalance{Remaining: allocated - taken, Allocated: allocated, Taken: taken}, nil
}

// Subordinates returns the employee ids reporting to the given manager.
func (c *Client) Subordinates(ctx context.Context, managerEmployeeID int) ([]int, error) {
	res, err := c.transport.ExecuteKw(ctx, "hr.employee", "search",
		[]any{[]any{[]any{"parent_id", "=", managerEmployeeID}}}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list subordinates: %w", err)
	}
	return asInts(res), nil
}

var pendingLeaveFields = []string{
	"name", "employee_id", "holiday_status_id", "date_from", "date_to",
	"number_of_days", "request_date_from", "request_date_to", "state", "create_date",
}

// PendingTimeOff lists leave requests from the manager's team that await a
// decision.
func (c *Client) PendingTimeOff(ctx context.Context, managerEmployeeID int) ([]Record, error) {
	subs, err := c.Subordinates(ctx, managerEmployeeID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, nil
	}

	res, err := c.transport.ExecuteKw(ctx, "hr.leave", "search_read",
		[]any{[]any{
			[]any{"employee_id", "in", intsToAny(subs)},
			[]any{"state", "=", "confirm"},
		}},
		map[string]any{"fields": pendingLeaveFields})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch pending leaves: %w", err)
	}
	return asRecords(res), nil
}

// ApprovedTimeOff lists approved leaves of the manager's team that touch
// the window from today until horizonDays ahead.
func (c *Client) ApprovedTimeOff(ctx context.Context, managerEmployeeID, horizonDays int) ([]Record, error) {
	subs, err := c.Subordinates(ctx, managerEmployeeID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, nil
	}

	today := time.Now().Format("2006-01-02")
	horizon := time.Now().AddDate(0, 0, horizonDays).Format("2006-01-02")

	res, err := c.transport.ExecuteKw(ctx, "hr.leave", "search_read",
		[]any{[]any{
			[]any{"employee_id", "in", intsToAny(subs)},
			[]any{"state", "in", approvedLeaveStates},
			[]any{"date_to", ">=", today},
			[]any{"date_from", "<=", horizon},
		}},
		map[string]any{"fields": pendingLeaveFields})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch approved leaves: %w", err)
	}
	return asRecords(res), nil
}

// ApproveTimeOff validates a pending leave request.
func (c *Client) ApproveTimeOff(ctx context.Context, leaveID int) error {
	err := c.callFirst(ctx, "hr.leave", "approve",
		[]string{"action_approve", "action_validate"},
		[]any{[]any{leaveID}})
	if err != nil {
		return fmt.Errorf("failed to approve leave %d: %w", leaveID, err)
	}
	return nil
}

// DenyTimeOff refuses a pending leave request, recording the reason on the
// record when a note field is writable.
func (c *Client) DenyTimeOff(ctx context.Context, leaveID int, reason string) error {
	if reason != "" {
		noted := false
		for _, field := range []string{"report_note", "notes"} {
			_, err := c.transport.ExecuteKw(ctx, "hr.leave", "write",
				[]any{[]any{leaveID}, map[string]any{field: reason}}, nil)
			if err == nil {
				noted = true
				break
			}
		}
		if !noted {
			c.logger.Debug("denial reason could not be stored", zap.Int("leave_id", leaveID))
		}
	}

	if _, err := c.transport.ExecuteKw(ctx, "hr.leave", "action_refuse", []any{[]any{leaveID}}, nil); err == nil {
		return nil
	}

	// Older modules lack action_refuse. Reset to draft and force the state.
	if _, err := c.transport.ExecuteKw(ctx, "hr.leave", "action_draft", []any{[]any{leaveID}}, nil); err != nil {
		return fmt.Errorf("failed to refuse leave %d: %w", leaveID, err)
	}
	if _, err := c.transport.ExecuteKw(ctx, "hr.leave", "write",
		[]any{[]any{leaveID}, map[string]any{"state": "refuse"}}, nil); err != nil {
		return fmt.Errorf("failed to refuse leave %d: %w", leaveID, err)
	}
	return nil
}

// EmployeeByLeave resolves which employee a leave record belongs to.
func (c *Client) EmployeeByLeave(ctx context.Context, leaveID int) (int, string, error) {
	res, err := c.transport.ExecuteKw(ctx, "hr.leave", "read",
		[]any{[]any{leaveID}},
		map[string]any{"fields": []string{"employee_id"}})
	if err != nil {
		return 0, "", fmt.Errorf("failed to read leave %d: %w", leaveID, err)
	}
	rows := asRecords(res)
	if len(rows) == 0 {
		return 0, "", ErrNotFound
	}
	id, name := rows[0].Pair("employee_id")
	return id, name, nil
}

// EmployeeLeaveData gathers allocations, the per-type summary and the raw
// request list for one employee.
func (c *Client) EmployeeLeaveData(ctx context.Context, employeeID int) (LeaveData, error) {
	data := LeaveData{Summary: make(map[string]LeaveSummary)}

	res, err := c.transport.ExecuteKw(ctx, "hr.leave.allocation", "search_read",
		[]any{[]any{
			[]any{"employee_id", "=", employeeID},
			[]any{"state", "=", "validate"},
		}},
		map[string]any{
			"fields": []string{"holiday_status_id", "number_of_days", "state"},
			"limit":  10,
		})
	if err != nil {
		return data, fmt.Errorf("failed to read allocations: %w", err)
	}
	data.Allocations = asRecords(res)

	res, err = c.transport.ExecuteKw(ctx, "hr.leave.report", "search_read",
		[]any{[]any{[]any{"employee_id", "=", employeeID}}},
		map[string]any{
			"fields": []string{"holiday_status_id", "number_of_days", "state", "leave_type"},
			"limit":  50,
		})
	if err != nil {
		c.logger.Debug("leave report unavailable", zap.Error(err))
	} else {
		for _, row := range asRecords(res) {
			_, typeName := row.Pair("holiday_status_id")
			days := row.Float("number_of_days")
			state := row.Str("state")
			s := data.Summary[typeName]
			switch row.Str("leave_type") {
			case "allocation":
				if state == "validate" {
					s.Allocated += days
				}
			case "request":
				if state == "validate" {
					s.Taken += days
				} else if state == "confirm" || state == "draft" {
					s.Requested += days
				}
			}
			s.Balance = s.Allocated - s.Taken
			data.Summary[typeName] = s
		}
	}

	res, err = c.transport.ExecuteKw(ctx, "hr.leave", "search_read",
		[]any{[]any{[]any{"employee_id", "=", employeeID}}},
		map[string]any{
			"fields": []string{"holiday_status_id", "date_from", "date_to", "number_of_days", "state", "name"},
			"limit":  20,
		})
	if err != nil {
		return data, fmt.Errorf("failed to read leave requests: %w", err)
	}
	data.Requests = asRecords(res)

	return data, nil
}

func intsToAny(vals []int) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}
