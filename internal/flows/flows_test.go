package flows

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/activity"
	"github.com/prezlab/prezbot/internal/docgen"
	"github.com/prezlab/prezbot/internal/odoo"
	"github.com/prezlab/prezbot/internal/session"
)

// fakeTransport scripts ERP responses per model and method. The last
// queued response for a key sticks so repeated probes stay cheap.
type fakeTransport struct {
	responses map[string][]fakeResponse
	calls     []fakeCall
}

type fakeResponse struct {
	result any
	err    error
}

type fakeCall struct {
	model, method string
	args          []any
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{responses: make(map[string][]fakeResponse)}
}

func (f *fakeTransport) on(model, method string, result any, err error) {
	key := model + "." + method
	f.responses[key] = append(f.responses[key], fakeResponse{result: result, err: err})
}

func (f *fakeTransport) ExecuteKw(ctx context.Context, model, method string, args []any, kw map[string]any) (any, error) {
	f.calls = append(f.calls, fakeCall{model: model, method: method, args: args})

	key := model + "." + method
	queue := f.responses[key]
	if len(queue) == 0 {
		return nil, fmt.Errorf("unexpected call %s", key)
	}
	resp := queue[0]
	if len(queue) > 1 {
		f.responses[key] = queue[1:]
	}
	return resp.result, resp.err
}

var testNow = time.Date(2025, 6, 10, 12, 0, 0, 0, time.UTC)

func newTestHandler() *Handler {
	h := NewHandler(docgen.NewGenerator("testdata", zap.NewNop()), zap.NewNop())
	h.now = func() time.Time { return testNow }
	return h
}

func newTestSession(ft *fakeTransport, isManager bool) *session.Session {
	return &session.Session{
		ID:       "test",
		Username: "amal",
		ERP:      odoo.NewClient(ft, 7, zap.NewNop()),
		Employee: odoo.Record{
			"id":         int64(5),
			"name":       "Amal Haddad",
			"company_id": []any{int64(3), "Prezlab FZ LLC"},
		},
		IsManager: isManager,
		Activity:  activity.NewTracker(),
	}
}
