package access

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// DefaultKeyPrefix namespaces every key the Redis store touches.
const DefaultKeyPrefix = "sitegear:acl:"

// RedisOption configures a RedisStore.
type RedisOption func(*RedisStore)

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStore) {
		if prefix = strings.TrimSpace(prefix); prefix != "" {
			s.prefix = prefix
		}
	}
}

// RedisStore keeps role-based policy in Redis sets:
//
//	<prefix>subject:<id>  roles assigned to a subject
//	<prefix>role:<role>   privileges granted to a role ("*" for all)
//
// Identical concurrent lookups share one round trip.
type RedisStore struct {
	client redis.UniversalClient
	prefix string
	group  singleflight.Group
}

var _ PolicyStore = (*RedisStore)(nil)

// NewRedisStore wraps an existing client.
func NewRedisStore(client redis.UniversalClient, opts ...RedisOption) *RedisStore {
	s := &RedisStore{client: client, prefix: DefaultKeyPrefix}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// OpenRedis parses a redis:// or rediss:// URL and verifies the connection.
func OpenRedis(ctx context.Context, url string, dialTimeout time.Duration) (redis.UniversalClient, error) {
	if !strings.HasPrefix(url, "redis://") && !strings.HasPrefix(url, "rediss://") {
		return nil, fmt.Errorf("access: invalid redis url %q", url)
	}
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("access: parse redis url: %w", err)
	}
	if dialTimeout > 0 {
		opts.DialTimeout = dialTimeout
		opts.ReadTimeout = dialTimeout
		opts.WriteTimeout = dialTimeout
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Join(ErrStoreUnavailable, err)
	}
	return client, nil
}

func (s *RedisStore) subjectKey(subjectID string) string { return s.prefix + "subject:" + subjectID }

func (s *RedisStore) roleKey(role string) string { return s.prefix + "role:" + role }

// HasPrivilege reports whether any role of subjectID grants privilege.
// The context of the first of several identical concurrent calls governs the
// shared lookup.
func (s *RedisStore) HasPrivilege(ctx context.Context, subjectID, privilege string) (bool, error) {
	subjectID = strings.TrimSpace(subjectID)
	privilege = strings.TrimSpace(privilege)
	if subjectID == "" || privilege == "" {
		return false, ErrInvalidInput
	}
	if s.client == nil {
		return false, fmt.Errorf("%w: redis client is nil", ErrStoreUnavailable)
	}

	v, err, _ := s.group.Do(subjectID+"\x00"+privilege, func() (any, error) {
		return s.lookup(ctx, subjectID, privilege)
	})
	if err != nil {
		return false, err
	}
	return v.(bool), nil
}

func (s *RedisStore) lookup(ctx context.Context, subjectID, privilege string) (bool, error) {
	roles, err := s.client.SMembers(ctx, s.subjectKey(subjectID)).Result()
	if err != nil {
		return false, fmt.Errorf("%w: roles of %q: %w", ErrStoreUnavailable, subjectID, err)
	}
	if len(roles) == 0 {
		return false, nil
	}

	cmds := make([]*redis.BoolCmd, 0, len(roles)*2)
	_, err = s.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, role := range roles {
			key := s.roleKey(role)
			cmds = append(cmds, pipe.SIsMember(ctx, key, privilege), pipe.SIsMember(ctx, key, Wildcard))
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("%w: privileges of %q: %w", ErrStoreUnavailable, subjectID, err)
	}
	for _, cmd := range cmds {
		if cmd.Val() {
			return true, nil
		}
	}
	return false, nil
}

// Grant adds privileges to role.
func (s *RedisStore) Grant(ctx context.Context, role string, privileges ...string) error {
	return s.add(ctx, s.roleKey, role, privileges)
}

// Revoke removes privileges from role.
func (s *RedisStore) Revoke(ctx context.Context, role string, privileges ...string) error {
	return s.remove(ctx, s.roleKey, role, privileges)
}

// Assign adds roles to subjectID.
func (s *RedisStore) Assign(ctx context.Context, subjectID string, roles ...string) error {
	return s.add(ctx, s.subjectKey, subjectID, roles)
}

// Unassign removes roles from subjectID.
func (s *RedisStore) Unassign(ctx context.Context, subjectID string, roles ...string) error {
	return s.remove(ctx, s.subjectKey, subjectID, roles)
}

// Roles lists the roles assigned to subjectID.
func (s *RedisStore) Roles(ctx context.Context, subjectID string) ([]string, error) {
	roles, err := s.client.SMembers(ctx, s.subjectKey(strings.TrimSpace(subjectID))).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return roles, nil
}

func (s *RedisStore) add(ctx context.Context, key func(string) string, owner string, members []string) error {
	owner, values, err := setArgs(owner, members)
	if err != nil {
		return err
	}
	if err := s.client.SAdd(ctx, key(owner), values...).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func (s *RedisStore) remove(ctx context.Context, key func(string) string, owner string, members []string) error {
	owner, values, err := setArgs(owner, members)
	if err != nil {
		return err
	}
	if err := s.client.SRem(ctx, key(owner), values...).Err(); err != nil {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return nil
}

func setArgs(owner string, members []string) (string, []any, error) {
	owner = strings.TrimSpace(owner)
	values := make([]any, 0, len(members))
	for _, m := range members {
		if m = strings.TrimSpace(m); m != "" {
			values = append(values, m)
		}
	}
	if owner == "" || len(values) == 0 {
		return "", nil, ErrInvalidInput
	}
	return owner, values, nil
}
