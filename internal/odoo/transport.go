package odoo

import (
	"context"
	"errors"
)

// Transport executes a single RPC call against an ERP model. The production
// implementation speaks XML-RPC; tests substitute a fake.
type Transport interface {
	ExecuteKw(ctx context.Context, model, method string, args []any, kw map[string]any) (any, error)
}

var (
	// ErrAuthFailed means the server rejected the login credentials.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrNotFound means a lookup matched no record.
	ErrNotFound = errors.New("record not found")

	// ErrInsufficientBalance means the leave request exceeds the days the
	// employee has left in the allocation.
	ErrInsufficientBalance = errors.New("not enough allocation days remaining")

	// ErrOverlappingLeave means the requested dates collide with an
	// existing time off record.
	ErrOverlappingLeave = errors.New("request overlaps an existing time off")

	// ErrMissingLeaveField means the server refused the create because a
	// required field was absent.
	ErrMissingLeaveField = errors.New("required leave field missing")
)
