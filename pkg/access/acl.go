package access

import (
	"context"
	"strings"
)

// Wildcard granted to a role gives it every privilege.
const Wildcard = "*"

// ACL is an immutable in-memory role-based policy. It implements both
// PolicyStore and Controller.
type ACL struct {
	subjects map[string][]string
	roles    map[string]map[string]bool
}

var (
	_ PolicyStore = (*ACL)(nil)
	_ Controller  = (*ACL)(nil)
)

// ACLBuilder collects grants and assignments. Build copies the state, so the
// builder can keep being used afterwards.
type ACLBuilder struct {
	subjects map[string][]string
	roles    map[string]map[string]bool
}

// NewACLBuilder returns an empty builder.
func NewACLBuilder() *ACLBuilder {
	return &ACLBuilder{
		subjects: make(map[string][]string),
		roles:    make(map[string]map[string]bool),
	}
}

// Grant gives role each privilege. Blank names are ignored.
func (b *ACLBuilder) Grant(role string, privileges ...string) *ACLBuilder {
	role = strings.TrimSpace(role)
	if role == "" {
		return b
	}
	if _, ok := b.roles[role]; !ok {
		b.roles[role] = make(map[string]bool)
	}
	for _, p := range privileges {
		if p = strings.TrimSpace(p); p != "" {
			b.roles[role][p] = true
		}
	}
	return b
}

// Assign gives subject each role.
func (b *ACLBuilder) Assign(subjectID string, roles ...string) *ACLBuilder {
	subjectID = strings.TrimSpace(subjectID)
	if subjectID == "" {
		return b
	}
	for _, r := range roles {
		if r = strings.TrimSpace(r); r != "" {
			b.subjects[subjectID] = append(b.subjects[subjectID], r)
		}
	}
	return b
}

// Build snapshots the builder into an ACL.
func (b *ACLBuilder) Build() *ACL {
	acl := &ACL{
		subjects: make(map[string][]string, len(b.subjects)),
		roles:    make(map[string]map[string]bool, len(b.roles)),
	}
	for subject, roles := range b.subjects {
		acl.subjects[subject] = append([]string(nil), roles...)
	}
	for role, privileges := range b.roles {
		copied := make(map[string]bool, len(privileges))
		for p := range privileges {
			copied[p] = true
		}
		acl.roles[role] = copied
	}
	return acl
}

// Roles returns the roles assigned to subjectID.
func (a *ACL) Roles(subjectID string) []string {
	return append([]string(nil), a.subjects[subjectID]...)
}

func (a *ACL) HasPrivilege(_ context.Context, subjectID, privilege string) (bool, error) {
	subjectID = strings.TrimSpace(subjectID)
	privilege = strings.TrimSpace(privilege)
	if subjectID == "" || privilege == "" {
		return false, ErrInvalidInput
	}
	for _, role := range a.subjects[subjectID] {
		privileges := a.roles[role]
		if privileges[privilege] || privileges[Wildcard] {
			return true, nil
		}
	}
	return false, nil
}

func (a *ACL) CheckPrivilege(ctx context.Context, subjectID, privilege string) bool {
	ok, err := a.HasPrivilege(ctx, subjectID, privilege)
	return err == nil && ok
}
