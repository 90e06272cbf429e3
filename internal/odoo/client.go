package odoo

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/kolo/xmlrpc"
	"go.uber.org/zap"
)

// Client wraps an authenticated ERP session. All operations go through the
// Transport so tests can substitute a fake.
type Client struct {
	transport Transport
	uid       int
	logger    *zap.Logger

	mu      sync.Mutex
	methods map[string]string // model:purpose -> resolved workflow method
}

// NewClient builds a client on an existing transport. uid is the
// authenticated user id the session belongs to.
func NewClient(t Transport, uid int, logger *zap.Logger) *Client {
	return &Client{
		transport: t,
		uid:       uid,
		logger:    logger,
		methods:   make(map[string]string),
	}
}

// UID returns the authenticated user id.
func (c *Client) UID() int {
	return c.uid
}

// Dial authenticates against the server and returns a ready client.
func Dial(ctx context.Context, url, db, username, password string, logger *zap.Logger) (*Client, error) {
	common, err := xmlrpc.NewClient(url+"/xmlrpc/2/common", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create common endpoint client: %w", err)
	}
	defer common.Close()

	var version any
	if err := common.Call("version", nil, &version); err != nil {
		return nil, fmt.Errorf("server unreachable: %w", err)
	}

	var rawUID any
	if err := common.Call("authenticate", []any{db, username, password, map[string]any{}}, &rawUID); err != nil {
		return nil, fmt.Errorf("authenticate call failed: %w", err)
	}
	uid, ok := asInt(rawUID)
	if !ok || uid == 0 {
		// The server answers false instead of a fault for bad credentials.
		return nil, ErrAuthFailed
	}

	object, err := xmlrpc.NewClient(url+"/xmlrpc/2/object", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create object endpoint client: %w", err)
	}

	logger.Info("ERP session established",
		zap.String("url", url),
		zap.String("db", db),
		zap.Int("uid", uid))

	t := &xmlrpcTransport{object: object, db: db, uid: uid, password: password}
	return NewClient(t, uid, logger), nil
}

// DialCached rebuilds a client from a previously authenticated uid without
// the authenticate round trip. Callers must verify the session afterwards
// with ValidateSession.
func DialCached(url, db string, uid int, password string, logger *zap.Logger) (*Client, error) {
	object, err := xmlrpc.NewClient(url+"/xmlrpc/2/object", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create object endpoint client: %w", err)
	}
	t := &xmlrpcTransport{object: object, db: db, uid: uid, password: password}
	return NewClient(t, uid, logger), nil
}

// ValidateSession checks that the uid and password still authorize reads.
// Stale cached sessions fail here instead of on the first real operation.
func (c *Client) ValidateSession(ctx context.Context) error {
	res, err := c.transport.ExecuteKw(ctx, "res.users", "check_access_rights",
		[]any{"read"},
		map[string]any{"raise_exception": false})
	if err != nil {
		return fmt.Errorf("session validation failed: %w", err)
	}
	if allowed, ok := res.(bool); ok && !allowed {
		return ErrAuthFailed
	}
	return nil
}

// xmlrpcTransport is the production transport over /xmlrpc/2/object.
type xmlrpcTransport struct {
	object   *xmlrpc.Client
	db       string
	uid      int
	password string
}

func (t *xmlrpcTransport) ExecuteKw(ctx context.Context, model, method string, args []any, kw map[string]any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	params := []any{t.db, t.uid, t.password, model, method, args}
	if kw != nil {
		params = append(params, kw)
	}

	var result any
	if err := t.object.Call("execute_kw", params, &result); err != nil {
		// Workflow button methods return None, which the server cannot
		// marshal. The action itself has already run at that point.
		if strings.Contains(err.Error(), "cannot marshal None") {
			return nil, nil
		}
		return nil, err
	}
	return result, nil
}

// callFirst fires the first method out of candidates that the server
// accepts and remembers the winner per model and purpose. Installations
// differ in which workflow transition methods their modules expose, so the
// probe happens once per client rather than on every call.
func (c *Client) callFirst(ctx context.Context, model, purpose string, candidates []string, args []any) error {
	key := model + ":" + purpose

	c.mu.Lock()
	resolved, ok := c.methods[key]
	c.mu.Unlock()
	if ok {
		_, err := c.transport.ExecuteKw(ctx, model, resolved, args, nil)
		return err
	}

	var lastErr error
	for _, method := range candidates {
		_, err := c.transport.ExecuteKw(ctx, model, method, args, nil)
		if err == nil {
			c.mu.Lock()
			c.methods[key] = method
			c.mu.Unlock()
			return nil
		}
		lastErr = err
		c.logger.Debug("workflow method rejected",
			zap.String("model", model),
			zap.String("method", method),
			zap.Error(err))
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no candidate method for %s", key)
	}
	return lastErr
}
