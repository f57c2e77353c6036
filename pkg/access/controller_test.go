package access_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sitegear/go-sitegear/pkg/access"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStatelessControllers(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	for _, tc := range []struct {
		subject   string
		privilege string
	}{
		{"alice", "forms.edit"},
		{"", ""},
		{"bob", "anything at all"},
	} {
		if !(access.AllowAll{}).CheckPrivilege(ctx, tc.subject, tc.privilege) {
			t.Fatalf("AllowAll denied %q/%q", tc.subject, tc.privilege)
		}
		if (access.AllowNone{}).CheckPrivilege(ctx, tc.subject, tc.privilege) {
			t.Fatalf("AllowNone granted %q/%q", tc.subject, tc.privilege)
		}
	}

	var nilFunc access.ControllerFunc
	if nilFunc.CheckPrivilege(ctx, "alice", "x") {
		t.Fatalf("nil ControllerFunc must deny")
	}
	fn := access.ControllerFunc(func(_ context.Context, subject, _ string) bool { return subject == "root" })
	if !fn.CheckPrivilege(ctx, "root", "x") || fn.CheckPrivilege(ctx, "alice", "x") {
		t.Fatalf("ControllerFunc did not delegate")
	}
}

func TestACL(t *testing.T) {
	t.Parallel()

	builder := access.NewACLBuilder().
		Grant("editor", "forms.edit", "forms.view").
		Grant("admin", access.Wildcard).
		Grant(" ", "ignored").
		Assign("alice", "editor").
		Assign("root", "admin")
	acl := builder.Build()

	// Later builder changes do not leak into a built ACL.
	builder.Assign("mallory", "admin")

	ctx := context.Background()
	cases := []struct {
		subject   string
		privilege string
		want      bool
	}{
		{"alice", "forms.edit", true},
		{"alice", "forms.delete", false},
		{"root", "forms.delete", true},
		{"mallory", "forms.view", false},
		{"nobody", "forms.view", false},
		{"", "forms.view", false},
		{"alice", "", false},
	}
	for _, tc := range cases {
		if got := acl.CheckPrivilege(ctx, tc.subject, tc.privilege); got != tc.want {
			t.Fatalf("CheckPrivilege(%q, %q) = %t, want %t", tc.subject, tc.privilege, got, tc.want)
		}
	}

	if _, err := acl.HasPrivilege(ctx, " ", "x"); !errors.Is(err, access.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if got := acl.Roles("alice"); len(got) != 1 || got[0] != "editor" {
		t.Fatalf("roles = %v", got)
	}
}

type stubStore struct {
	allowed bool
	err     error
	panic   any
	delay   time.Duration
	calls   int
	mu      sync.Mutex
}

func (s *stubStore) HasPrivilege(ctx context.Context, _, _ string) (bool, error) {
	s.mu.Lock()
	s.calls++
	s.mu.Unlock()
	if s.panic != nil {
		panic(s.panic)
	}
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}
	return s.allowed, s.err
}

func TestStoreController_DefaultDeny(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	cases := []struct {
		name    string
		store   access.PolicyStore
		subject string
		want    bool
	}{
		{name: "allowed", store: &stubStore{allowed: true}, subject: "alice", want: true},
		{name: "denied", store: &stubStore{}, subject: "alice"},
		{name: "store error", store: &stubStore{allowed: true, err: errors.New("boom")}, subject: "alice"},
		{name: "store panic", store: &stubStore{panic: "kaboom"}, subject: "alice"},
		{name: "timeout", store: &stubStore{allowed: true, delay: time.Second}, subject: "alice"},
		{name: "blank subject", store: &stubStore{allowed: true}, subject: "  "},
		{name: "nil store", store: nil, subject: "alice"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			controller := access.NewStoreController(tc.store,
				access.WithTimeout(20*time.Millisecond),
				access.WithLogger(quietLogger()),
			)
			if got := controller.CheckPrivilege(ctx, tc.subject, "forms.edit"); got != tc.want {
				t.Fatalf("CheckPrivilege = %t, want %t", got, tc.want)
			}
		})
	}
}

// stuckStore never returns on its own and ignores ctx.
type stuckStore struct {
	release chan struct{}
}

func (s stuckStore) HasPrivilege(context.Context, string, string) (bool, error) {
	<-s.release
	return true, nil
}

func TestStoreController_DeniesStoreIgnoringContext(t *testing.T) {
	t.Parallel()

	store := stuckStore{release: make(chan struct{})}
	t.Cleanup(func() { close(store.release) })

	controller := access.NewStoreController(store,
		access.WithTimeout(20*time.Millisecond),
		access.WithLogger(quietLogger()),
	)
	start := time.Now()
	if controller.CheckPrivilege(context.Background(), "alice", "forms.edit") {
		t.Fatalf("expected denial")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("check blocked for %s", elapsed)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	unbounded := access.NewStoreController(store, access.WithTimeout(0), access.WithLogger(quietLogger()))
	if unbounded.CheckPrivilege(ctx, "alice", "forms.edit") {
		t.Fatalf("expected denial for a cancelled context")
	}
}

func TestStoreController_SkipsStoreForMalformedInput(t *testing.T) {
	t.Parallel()

	store := &stubStore{allowed: true}
	controller := access.NewStoreController(store, access.WithLogger(quietLogger()))
	controller.CheckPrivilege(context.Background(), "", "forms.edit")
	controller.CheckPrivilege(context.Background(), "alice", " ")
	if store.calls != 0 {
		t.Fatalf("store should not be consulted, got %d calls", store.calls)
	}
}

func TestStoreController_LogsFailures(t *testing.T) {
	t.Parallel()

	var logs bytes.Buffer
	controller := access.NewStoreController(&stubStore{err: errors.New("backend down")},
		access.WithLogger(slog.New(slog.NewTextHandler(&logs, nil))),
	)
	if controller.CheckPrivilege(context.Background(), "alice", "forms.edit") {
		t.Fatalf("expected denial")
	}
	for _, fragment := range []string{"policy store error", "subject=alice", "backend down"} {
		if !strings.Contains(logs.String(), fragment) {
			t.Fatalf("log missing %q: %s", fragment, logs.String())
		}
	}
}

func TestRedisStore_UnreachableDenies(t *testing.T) {
	t.Parallel()

	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	store := access.NewRedisStore(client)
	if _, err := store.HasPrivilege(context.Background(), "alice", "forms.edit"); !errors.Is(err, access.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}

	controller := access.NewStoreController(store, access.WithLogger(quietLogger()))
	if controller.CheckPrivilege(context.Background(), "alice", "forms.edit") {
		t.Fatalf("unreachable store must deny")
	}
}

func TestRedisStore_RejectsBlankInput(t *testing.T) {
	t.Parallel()

	store := access.NewRedisStore(nil)
	if _, err := store.HasPrivilege(context.Background(), "", "x"); !errors.Is(err, access.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := store.HasPrivilege(context.Background(), "alice", "x"); !errors.Is(err, access.ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable for nil client, got %v", err)
	}
	if err := store.Grant(context.Background(), "editor"); !errors.Is(err, access.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty grant, got %v", err)
	}
}
