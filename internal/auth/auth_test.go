package auth

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/prezlab/prezbot/internal/odoo"
	"github.com/prezlab/prezbot/internal/session"
	"github.com/prezlab/prezbot/pkg/database"
)

type scriptedTransport struct {
	responses map[string]any
	calls     []string
}

func (f *scriptedTransport) ExecuteKw(ctx context.Context, model, method string, args []any, kw map[string]any) (any, error) {
	key := model + "." + method
	f.calls = append(f.calls, key)
	res, ok := f.responses[key]
	if !ok {
		return nil, fmt.Errorf("unexpected call %s", key)
	}
	return res, nil
}

func profileResponses() map[string]any {
	return map[string]any{
		"res.users.check_access_rights": true,
		"res.users.read": []any{
			map[string]any{"id": int64(7), "name": "Amal Haddad", "employee_id": []any{int64(5), "Amal Haddad"}},
		},
		"hr.employee.read": []any{
			map[string]any{"id": int64(5), "name": "Amal Haddad", "job_title": "Designer"},
		},
		"hr.employee.search_count": int64(2),
	}
}

func newTestManager(t *testing.T) (*Manager, *UIDCache, *CredentialStore) {
	t.Helper()
	dir := t.TempDir()

	store, err := NewCredentialStore(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("credential store: %v", err)
	}
	db, err := database.New(database.Config{
		Path:         filepath.Join(dir, "cache.db"),
		MaxOpenConns: 1,
		MaxIdleConns: 1,
	}, zap.NewNop())
	if err != nil {
		t.Fatalf("database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	cache, err := NewUIDCache(db, zap.NewNop())
	if err != nil {
		t.Fatalf("uid cache: %v", err)
	}

	sessions := session.NewManager(zap.NewNop())
	m := NewManager("https://erp.example.com", "prezlab", store, cache, sessions, zap.NewNop())
	return m, cache, store
}

func TestCredentialStoreRoundTrip(t *testing.T) {
	store, err := NewCredentialStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("credential store: %v", err)
	}

	if err := store.Save("amal", "s3cret"); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := store.Load("amal")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if got != "s3cret" {
		t.Errorf("load = %q, want s3cret", got)
	}

	if _, err := store.Load("nobody"); !errors.Is(err, ErrNoCredential) {
		t.Errorf("missing user error = %v, want ErrNoCredential", err)
	}

	if err := store.Delete("amal"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Load("amal"); !errors.Is(err, ErrNoCredential) {
		t.Errorf("post-delete error = %v, want ErrNoCredential", err)
	}
}

func TestCredentialStoreExpiry(t *testing.T) {
	store, err := NewCredentialStore(t.TempDir(), zap.NewNop())
	if err != nil {
		t.Fatalf("credential store: %v", err)
	}
	if err := store.Save("amal", "s3cret"); err != nil {
		t.Fatalf("save: %v", err)
	}

	file, err := store.readFile()
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	cred := file.Credentials["amal"]
	cred.SavedAt = time.Now().Add(-(credentialTTL + time.Hour))
	file.Credentials["amal"] = cred
	if err := store.writeFile(file); err != nil {
		t.Fatalf("write file: %v", err)
	}

	if _, err := store.Load("amal"); !errors.Is(err, ErrCredentialExpired) {
		t.Fatalf("error = %v, want ErrCredentialExpired", err)
	}
	// The expired entry is dropped on read.
	if _, err := store.Load("amal"); !errors.Is(err, ErrNoCredential) {
		t.Errorf("second load error = %v, want ErrNoCredential", err)
	}
}

func TestCredentialStoreSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	store, err := NewCredentialStore(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("credential store: %v", err)
	}
	if err := store.Save("amal", "s3cret"); err != nil {
		t.Fatalf("save: %v", err)
	}

	reopened, err := NewCredentialStore(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	got, err := reopened.Load("amal")
	if err != nil {
		t.Fatalf("load after reopen: %v", err)
	}
	if got != "s3cret" {
		t.Errorf("load = %q, want s3cret", got)
	}
}

func TestUIDCacheExpiry(t *testing.T) {
	_, cache, _ := newTestManager(t)

	if err := cache.Put("amal", "prezlab", 7); err != nil {
		t.Fatalf("put: %v", err)
	}
	uid, err := cache.Get("amal", "prezlab")
	if err != nil || uid != 7 {
		t.Fatalf("get = %d, %v", uid, err)
	}

	stale := time.Now().UTC().Add(-(uidTTL + time.Minute))
	if _, err := cache.db.Exec(
		"UPDATE uid_cache SET created_at = ? WHERE cache_key = ?",
		stale, cacheKey("amal", "prezlab")); err != nil {
		t.Fatalf("backdate: %v", err)
	}

	if _, err := cache.Get("amal", "prezlab"); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("error = %v, want ErrCacheMiss", err)
	}
}

func TestLoginFullPath(t *testing.T) {
	m, cache, store := newTestManager(t)

	dialed := false
	m.dial = func(ctx context.Context, url, db, username, password string, logger *zap.Logger) (*odoo.Client, error) {
		dialed = true
		if username != "amal" || password != "s3cret" {
			t.Errorf("dial got %s/%s", username, password)
		}
		return odoo.NewClient(&scriptedTransport{responses: profileResponses()}, 7, zap.NewNop()), nil
	}

	s, err := m.Login(context.Background(), "amal", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if !dialed {
		t.Error("expected a full dial on cache miss")
	}
	if !s.IsManager {
		t.Error("manager flag should come from the subordinate count")
	}
	if s.Employee.Str("name") != "Amal Haddad" {
		t.Errorf("employee = %v", s.Employee)
	}

	if uid, err := cache.Get("amal", "prezlab"); err != nil || uid != 7 {
		t.Errorf("cached uid = %d, %v", uid, err)
	}
	if pw, err := store.Load("amal"); err != nil || pw != "s3cret" {
		t.Errorf("stored password = %q, %v", pw, err)
	}
}

func TestLoginUsesCachedUID(t *testing.T) {
	m, cache, _ := newTestManager(t)
	if err := cache.Put("amal", "prezlab", 7); err != nil {
		t.Fatalf("put: %v", err)
	}

	m.dial = func(ctx context.Context, url, db, username, password string, logger *zap.Logger) (*odoo.Client, error) {
		t.Error("full dial should not run when the cached session validates")
		return nil, errors.New("unexpected")
	}
	m.dialCached = func(url, db string, uid int, password string, logger *zap.Logger) (*odoo.Client, error) {
		if uid != 7 {
			t.Errorf("cached dial uid = %d", uid)
		}
		return odoo.NewClient(&scriptedTransport{responses: profileResponses()}, uid, zap.NewNop()), nil
	}

	if _, err := m.Login(context.Background(), "amal", "s3cret"); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestLoginEmptyPasswordUsesRemembered(t *testing.T) {
	m, _, store := newTestManager(t)
	if err := store.Save("amal", "remembered"); err != nil {
		t.Fatalf("save: %v", err)
	}

	m.dial = func(ctx context.Context, url, db, username, password string, logger *zap.Logger) (*odoo.Client, error) {
		if password != "remembered" {
			t.Errorf("dial password = %q", password)
		}
		return odoo.NewClient(&scriptedTransport{responses: profileResponses()}, 7, zap.NewNop()), nil
	}

	if _, err := m.Login(context.Background(), "amal", ""); err != nil {
		t.Fatalf("login: %v", err)
	}
}

func TestLoginEmptyPasswordWithoutCredential(t *testing.T) {
	m, _, _ := newTestManager(t)

	if _, err := m.Login(context.Background(), "amal", ""); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("error = %v, want ErrNoCredential", err)
	}
}

func TestLogoutDropsSessionAndCache(t *testing.T) {
	m, cache, _ := newTestManager(t)
	m.dial = func(ctx context.Context, url, db, username, password string, logger *zap.Logger) (*odoo.Client, error) {
		return odoo.NewClient(&scriptedTransport{responses: profileResponses()}, 7, zap.NewNop()), nil
	}

	s, err := m.Login(context.Background(), "amal", "s3cret")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	m.Logout(s.ID)
	if _, ok := m.sessions.Get(s.ID); ok {
		t.Error("session should be gone after logout")
	}
	if _, err := cache.Get("amal", "prezlab"); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("cache after logout = %v, want ErrCacheMiss", err)
	}
}
