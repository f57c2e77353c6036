// Package access decides whether a subject holds a privilege.
//
// Every Controller is default-deny: a check that cannot be answered, because
// the backing store failed, timed out, panicked or was given a blank subject
// or privilege, reports false. Stateless AllowAll and AllowNone cover tests
// and single-user tools; ACL is an in-memory role policy and RedisStore keeps
// the same model in Redis sets.
package access
