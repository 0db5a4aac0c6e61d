package main

type Action string

const (
	ActionList   Action = "list"
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionNotify Action = "notify"
)

// Policy decides whether an authenticated actor may perform action on a resource type.
type Policy interface {
	Allows(actor Identity, action Action, resource string) bool
}

// RolePolicy grants every action to any authenticated user unless a minimum
// role is registered for (resource, action).
type RolePolicy struct {
	required map[string]map[Action]Role
}

func NewRolePolicy() *RolePolicy {
	return &RolePolicy{required: map[string]map[Action]Role{}}
}

// Require restricts the given actions on resource to role.
func (p *RolePolicy) Require(role Role, resource string, actions ...Action) *RolePolicy {
	if p.required[resource] == nil {
		p.required[resource] = map[Action]Role{}
	}
	for _, a := range actions {
		p.required[resource][a] = role
	}
	return p
}

func (p *RolePolicy) Allows(actor Identity, action Action, resource string) bool {
	if actor.UserID == 0 {
		return false
	}
	role, ok := p.required[resource][action]
	if !ok {
		return true
	}
	return actor.Role == role
}

// DefaultPolicy: catalog mutations (products, categories) are admin only.
func DefaultPolicy() *RolePolicy {
	writes := []Action{ActionCreate, ActionUpdate, ActionDelete}
	return NewRolePolicy().
		Require(RoleAdmin, "products", writes...).
		Require(RoleAdmin, "categories", writes...)
}
