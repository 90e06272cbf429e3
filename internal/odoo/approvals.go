package odoo

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// OvertimeCategory is one approval category matching the overtime process.
type OvertimeCategory struct {
	ID   int
	Name string
}

// OvertimeRequest is the input for filing an overtime approval request.
// DateStart and DateEnd use the server datetime format "2006-01-02 15:04:05".
type OvertimeRequest struct {
	OwnerUserID  int
	CategoryID   int
	DateStart    string
	DateEnd      string
	Reason       string
	EmployeeName string
	ProjectID    int
}

// OvertimeDecision is the outcome of an approve, refuse or cancel action.
type OvertimeDecision struct {
	RequestID    int
	EmployeeName string
	CategoryName string
	DateStart    string
	DateEnd      string
	Reason       string
}

// OvertimeCategories lists approval categories whose name mentions
// overtime.
func (c *Client) OvertimeCategories(ctx context.Context) ([]OvertimeCategory, error) {
	res, err := c.transport.ExecuteKw(ctx, "approval.category", "search",
		[]any{[]any{[]any{"name", "ilike", "overtime"}}},
		map[string]any{"limit": 20})
	if err != nil {
		return nil, fmt.Errorf("failed to search approval categories: %w", err)
	}
	ids := asInts(res)
	if len(ids) == 0 {
		return nil, nil
	}

	res, err = c.transport.ExecuteKw(ctx, "approval.category", "read",
		[]any{intsToAny(ids)},
		map[string]any{"fields": []string{"id", "name"}})
	if err != nil {
		return nil, fmt.Errorf("failed to read approval categories: %w", err)
	}
	var cats []OvertimeCategory
	for _, row := range asRecords(res) {
		cats = append(cats, OvertimeCategory{ID: row.Int("id"), Name: row.Str("name")})
	}
	return cats, nil
}

// CreateOvertime files an approval request and submits it. The project
// link field is a studio customization whose name differs per database, so
// the real field is discovered through fields_get before the create.
func (c *Client) CreateOvertime(ctx context.Context, req OvertimeRequest) (int, error) {
	payload := map[string]any{
		"name":             "Overtime Request - " + req.EmployeeName,
		"request_owner_id": req.OwnerUserID,
		"category_id":      req.CategoryID,
		"date_start":       req.DateStart,
		"date_end":         req.DateEnd,
		"reason":           req.Reason,
	}

	if req.ProjectID != 0 {
		if field := c.overtimeProjectField(ctx); field != "" {
			payload[field] = req.ProjectID
		} else {
			c.logger.Warn("no project field on approval requests, filing without project link")
		}
	}

	res, err := c.transport.ExecuteKw(ctx, "approval.request", "create", []any{payload}, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create overtime request: %w", err)
	}
	requestID, ok := asInt(res)
	if !ok {
		return 0, fmt.Errorf("unexpected create result %v", res)
	}

	err = c.callFirst(ctx, "approval.request", "submit",
		[]string{"action_confirm", "action_submit", "request_confirm", "button_confirm"},
		[]any{[]any{requestID}})
	if err != nil {
		c.logger.Warn("overtime request created but submit failed",
			zap.Int("request_id", requestID),
			zap.Error(err))
	}
	return requestID, nil
}

func (c *Client) overtimeProjectField(ctx context.Context) string {
	res, err := c.transport.ExecuteKw(ctx, "approval.request", "fields_get",
		[]any{},
		map[string]any{"attributes": []string{"string", "type"}})
	if err != nil {
		c.logger.Debug("fields_get on approval requests failed", zap.Error(err))
		return ""
	}
	fields, ok := res.(map[string]any)
	if !ok {
		return ""
	}
	for _, candidate := range []string{"x_studio_project", "project_id", "x_project_id", "project"} {
		if _, found := fields[candidate]; found {
			return candidate
		}
	}
	return ""
}

// PendingOvertime lists overtime approval requests from the manager's team
// still awaiting a decision.
func (c *Client) PendingOvertime(ctx context.Context, managerEmployeeID int) ([]Record, error) {
	subs, err := c.Subordinates(ctx, managerEmployeeID)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, nil
	}

	res, err := c.transport.ExecuteKw(ctx, "hr.employee", "read",
		[]any{intsToAny(subs)},
		map[string]any{"fields": []string{"user_id"}})
	if err != nil {
		return nil, fmt.Errorf("failed to read team user links: %w", err)
	}
	var userIDs []any
	for _, row := range asRecords(res) {
		if id, _ := row.Pair("user_id"); id != 0 {
			userIDs = append(userIDs, id)
		}
	}
	if len(userIDs) == 0 {
		return nil, nil
	}

	res, err = c.transport.ExecuteKw(ctx, "approval.request", "search",
		[]any{[]any{
			[]any{"request_owner_id", "in", userIDs},
			[]any{"request_status", "in", []any{"new", "pending"}},
		}}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to search pending overtime: %w", err)
	}
	ids := asInts(res)
	if len(ids) == 0 {
		return nil, nil
	}

	res, err = c.transport.ExecuteKw(ctx, "approval.request", "read",
		[]any{intsToAny(ids)},
		map[string]any{"fields": []string{"id", "name", "request_owner_id", "category_id", "request_status", "create_date"}})
	if err != nil {
		return nil, fmt.Errorf("failed to read pending overtime: %w", err)
	}
	return asRecords(res), nil
}

// ApproveOvertime approves an overtime request and returns its details for
// the confirmation message.
func (c *Client) ApproveOvertime(ctx context.Context, requestID int) (OvertimeDecision, error) {
	return c.decideOvertime(ctx, requestID, "action_approve")
}

// RefuseOvertime refuses an overtime request.
func (c *Client) RefuseOvertime(ctx context.Context, requestID int) (OvertimeDecision, error) {
	return c.decideOvertime(ctx, requestID, "action_refuse")
}

// CancelOvertime withdraws an overtime request.
func (c *Client) CancelOvertime(ctx context.Context, requestID int) (OvertimeDecision, error) {
	return c.decideOvertime(ctx, requestID, "action_cancel")
}

func (c *Client) decideOvertime(ctx context.Context, requestID int, action string) (OvertimeDecision, error) {
	decision := OvertimeDecision{RequestID: requestID}

	res, err := c.transport.ExecuteKw(ctx, "approval.request", "read",
		[]any{[]any{requestID}},
		map[string]any{"fields": []string{"name", "request_owner_id", "category_id", "date_start", "date_end", "reason"}})
	if err == nil {
		if rows := asRecords(res); len(rows) > 0 {
			row := rows[0]
			_, decision.EmployeeName = row.Pair("request_owner_id")
			_, decision.CategoryName = row.Pair("category_id")
			decision.DateStart = row.Str("date_start")
			decision.DateEnd = row.Str("date_end")
			decision.Reason = row.Str("reason")
		}
	}

	if _, err := c.transport.ExecuteKw(ctx, "approval.request", action, []any{[]any{requestID}}, nil); err != nil {
		return decision, fmt.Errorf("failed to %s request %d: %w", action, requestID, err)
	}
	return decision, nil
}
