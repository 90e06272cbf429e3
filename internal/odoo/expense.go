package odoo

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// ExpenseCategory selects the product the expense is booked against.
type ExpenseCategory string

const (
	ExpenseMiscellaneous ExpenseCategory = "misc"
	ExpenseTravel        ExpenseCategory = "travel"
	ExpensePerDiem       ExpenseCategory = "per_diem"
)

// expenseProducts maps each category to the product search terms used in
// the expense catalogue.
var expenseProducts = map[ExpenseCategory]struct {
	nameTerm string
	code     string
	label    string
}{
	ExpenseMiscellaneous: {"Miscellaneous", "EXP_GEN", "[EXP_GEN] Miscellaneous"},
	ExpenseTravel:        {"Travel & Accommodation", "TRANS & ACC", "[TRANS & ACC] Travel & Accommodation"},
	ExpensePerDiem:       {"Per Diem", "PER_DIEM", "[PER_DIEM] Per Diem"},
}

// Label returns the display name of the category.
func (c ExpenseCategory) Label() string {
	return expenseProducts[c].label
}

// ExpenseInput is the input for filing an expense. Date fields use ISO
// "2006-01-02". FromDate, ToDate and DestinationID apply to per diem only.
type ExpenseInput struct {
	Category      ExpenseCategory
	EmployeeID    int
	CompanyID     int
	Description   string
	Total         float64
	Date          string
	Purpose       string
	AttachedLink  string
	FromDate      string
	ToDate        string
	DestinationID int
}

// ExpenseResult reports the created record and whether the submit step
// went through. A failed submit leaves the record for manual submission.
type ExpenseResult struct {
	ID        int
	Submitted bool
}

// Destination is one per diem destination choice.
type Destination struct {
	ID   int
	Name string
}

// CreateExpense creates an expense record in the chosen category and
// submits it for approval.
func (c *Client) CreateExpense(ctx context.Context, in ExpenseInput) (ExpenseResult, error) {
	product, ok := expenseProducts[in.Category]
	if !ok {
		return ExpenseResult{}, fmt.Errorf("unknown expense category %q", in.Category)
	}

	productID, err := c.expenseProductID(ctx, product.nameTerm, product.code)
	if err != nil {
		return ExpenseResult{}, err
	}
	if productID == 0 {
		return ExpenseResult{}, fmt.Errorf("expense category %s is not configured: %w", product.label, ErrNotFound)
	}

	payload := map[string]any{
		"name":                  in.Description,
		"product_id":            productID,
		"total_amount_currency": in.Total,
		"date":                  in.Date,
		"company_id":            in.CompanyID,
		"employee_id":           in.EmployeeID,
	}
	if in.Purpose != "" {
		payload["x_studio_purpose"] = in.Purpose
	}
	if in.AttachedLink != "" {
		payload["x_studio_attached_link"] = in.AttachedLink
	}
	if in.Category == ExpensePerDiem {
		payload["x_studio_from"] = in.FromDate
		payload["x_studio_to"] = in.ToDate
		payload["x_studio_destination"] = in.DestinationID
	}

	res, err := c.transport.ExecuteKw(ctx, "hr.expense", "create", []any{payload}, nil)
	if err != nil {
		return ExpenseResult{}, fmt.Errorf("failed to create expense: %w", err)
	}
	expenseID, ok := asInt(res)
	if !ok {
		return ExpenseResult{}, fmt.Errorf("unexpected create result %v", res)
	}

	result := ExpenseResult{ID: expenseID}
	err = c.callFirst(ctx, "hr.expense", "submit",
		[]string{"action_submit_expenses", "action_submit", "submit_expenses", "action_confirm"},
		[]any{[]any{expenseID}})
	if err != nil {
		c.logger.Warn("expense created but submit failed, needs manual submission",
			zap.Int("expense_id", expenseID),
			zap.Error(err))
	} else {
		result.Submitted = true
	}
	return result, nil
}

func (c *Client) expenseProductID(ctx context.Context, nameTerm, code string) (int, error) {
	res, err := c.transport.ExecuteKw(ctx, "product.product", "search",
		[]any{[]any{
			"|",
			[]any{"name", "ilike", nameTerm},
			[]any{"default_code", "=", code},
		}},
		map[string]any{"limit": 1})
	if err != nil {
		return 0, fmt.Errorf("failed to look up expense product: %w", err)
	}
	ids := asInts(res)
	if len(ids) == 0 {
		return 0, nil
	}
	return ids[0], nil
}

// PerDiemDestinations lists the destinations a per diem expense can be
// booked for.
func (c *Client) PerDiemDestinations(ctx context.Context) ([]Destination, error) {
	res, err := c.transport.ExecuteKw(ctx, "res.country.state", "search_read",
		[]any{[]any{}},
		map[string]any{"fields": []string{"id", "name"}, "limit": 100})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch destinations: %w", err)
	}
	var out []Destination
	for _, row := range asRecords(res) {
		out = append(out, Destination{ID: row.Int("id"), Name: row.Str("name")})
	}
	return out, nil
}
