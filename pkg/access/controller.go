package access

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
)

var (
	// ErrInvalidInput is returned by stores for blank subjects or privileges.
	ErrInvalidInput = errors.New("access: subject and privilege are required")
	// ErrStoreUnavailable wraps backend failures.
	ErrStoreUnavailable = errors.New("access: policy store unavailable")
)

// Controller answers whether a subject holds a privilege. Implementations
// never return an error: anything that prevents a positive answer is a
// denial.
type Controller interface {
	CheckPrivilege(ctx context.Context, subjectID, privilege string) bool
}

// AllowAll grants every privilege to every subject.
type AllowAll struct{}

func (AllowAll) CheckPrivilege(context.Context, string, string) bool { return true }

// AllowNone denies every privilege to every subject.
type AllowNone struct{}

func (AllowNone) CheckPrivilege(context.Context, string, string) bool { return false }

// ControllerFunc adapts a function into a Controller.
type ControllerFunc func(ctx context.Context, subjectID, privilege string) bool

func (fn ControllerFunc) CheckPrivilege(ctx context.Context, subjectID, privilege string) bool {
	if fn == nil {
		return false
	}
	return fn(ctx, subjectID, privilege)
}

// PolicyStore is a backend that can fail. StoreController turns it into a
// Controller.
type PolicyStore interface {
	HasPrivilege(ctx context.Context, subjectID, privilege string) (bool, error)
}

// Option configures a StoreController.
type Option func(*StoreController)

// WithTimeout bounds each check. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *StoreController) {
		if d >= 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger used for denied-by-failure checks.
func WithLogger(logger *slog.Logger) Option {
	return func(c *StoreController) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// StoreController is a default-deny Controller over a PolicyStore. Store
// errors, timeouts, panics and malformed input all yield false.
type StoreController struct {
	store   PolicyStore
	timeout time.Duration
	logger  *slog.Logger
}

var _ Controller = (*StoreController)(nil)

// DefaultTimeout bounds a single privilege check.
const DefaultTimeout = 2 * time.Second

// NewStoreController wraps store.
func NewStoreController(store PolicyStore, opts ...Option) *StoreController {
	c := &StoreController{
		store:   store,
		timeout: DefaultTimeout,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

func (c *StoreController) CheckPrivilege(ctx context.Context, subjectID, privilege string) bool {
	subjectID = strings.TrimSpace(subjectID)
	privilege = strings.TrimSpace(privilege)
	if subjectID == "" || privilege == "" {
		c.logger.Debug("access: denied malformed check",
			slog.String("subject", subjectID),
			slog.String("privilege", privilege),
		)
		return false
	}
	if c.store == nil {
		c.logger.Warn("access: denied, no policy store configured",
			slog.String("subject", subjectID),
			slog.String("privilege", privilege),
		)
		return false
	}
	if ctx == nil {
		ctx = context.Background()
	}
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	// The store runs on its own goroutine so one that ignores ctx still
	// cannot hold the check past the deadline.
	type result struct {
		ok  bool
		err error
	}
	done := make(chan result, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- result{err: fmt.Errorf("%w: policy store panicked: %v", ErrStoreUnavailable, r)}
			}
		}()
		ok, err := c.store.HasPrivilege(ctx, subjectID, privilege)
		done <- result{ok: ok, err: err}
	}()

	var res result
	select {
	case res = <-done:
	case <-ctx.Done():
		res = result{err: ctx.Err()}
	}
	if res.err != nil {
		c.logger.Warn("access: denied, policy store error",
			slog.String("subject", subjectID),
			slog.String("privilege", privilege),
			slog.Any("error", res.err),
		)
		return false
	}
	return res.ok
}
