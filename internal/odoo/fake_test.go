package odoo

import (
	"context"
	"fmt"
	"sync"
)

// fakeTransport scripts responses per model and method and records every
// call for assertions.
type fakeTransport struct {
	mu        sync.Mutex
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
	kw            map[string]any
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{responses: make(map[string][]fakeResponse)}
}

func (f *fakeTransport) on(model, method string, result any, err error) {
	key := model + "." + method
	f.responses[key] = append(f.responses[key], fakeResponse{result: result, err: err})
}

func (f *fakeTransport) ExecuteKw(ctx context.Context, model, method string, args []any, kw map[string]any) (any, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls = append(f.calls, fakeCall{model: model, method: method, args: args, kw: kw})

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

func (f *fakeTransport) callCount(model, method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c.model == model && c.method == method {
			n++
		}
	}
	return n
}
