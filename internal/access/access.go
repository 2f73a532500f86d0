// Package access resolves what a role may do to a resource and which
// attributes it may write while doing it. All rules are fixed at startup;
// resolution is a map lookup with no side effects.
package access

import "github.com/colibie/events-app-api/internal/model"

type Action string

const (
	ActionCreate Action = "create"
	ActionRead   Action = "read"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

type Scope string

const (
	ScopeOwn Scope = "own"
	ScopeAny Scope = "any"
)

// Grant is the outcome of resolving one (role, resource, action, scope)
// permission. The zero value is an ungranted permission, which is what
// unknown roles and unconfigured combinations resolve to.
type Grant struct {
	Granted bool

	// fields is the attribute allow-list applied on write paths.
	// nil means the grant is unrestricted.
	fields []string
}

// Filter projects doc down to the attributes this grant allows.
// The input is never mutated and filtering twice yields the same result.
func (g Grant) Filter(doc map[string]any) map[string]any {
	if doc == nil {
		return map[string]any{}
	}
	out := make(map[string]any, len(doc))
	if g.fields == nil {
		for k, v := range doc {
			out[k] = v
		}
		return out
	}
	for _, field := range g.fields {
		if v, ok := doc[field]; ok {
			out[field] = v
		}
	}
	return out
}

type ruleKey struct {
	role     string
	resource string
	action   Action
	scope    Scope
}

// Control is the static permission table.
type Control struct {
	rules map[ruleKey]Grant
}

// Rule declares one granted permission for the table.
type Rule struct {
	Role     string
	Resource string
	Action   Action
	Scope    Scope

	// Fields restricts the attributes the grant may write; nil = unrestricted.
	Fields []string
}

func NewControl(rules []Rule) *Control {
	table := make(map[ruleKey]Grant, len(rules))
	for _, r := range rules {
		key := ruleKey{role: r.Role, resource: r.Resource, action: r.Action, scope: r.Scope}
		table[key] = Grant{Granted: true, fields: r.Fields}
	}
	return &Control{rules: table}
}

// Can starts a permission query for a role. Unknown roles are fine: every
// resolution simply comes back ungranted.
func (c *Control) Can(role string) RoleQuery {
	return RoleQuery{control: c, role: role}
}

func (c *Control) resolve(role, resource string, action Action, scope Scope) Grant {
	return c.rules[ruleKey{role: role, resource: resource, action: action, scope: scope}]
}

type RoleQuery struct {
	control *Control
	role    string
}

func (q RoleQuery) ReadAny(resource string) Grant {
	return q.control.resolve(q.role, resource, ActionRead, ScopeAny)
}

func (q RoleQuery) ReadOwn(resource string) Grant {
	return q.control.resolve(q.role, resource, ActionRead, ScopeOwn)
}

func (q RoleQuery) CreateAny(resource string) Grant {
	return q.control.resolve(q.role, resource, ActionCreate, ScopeAny)
}

func (q RoleQuery) CreateOwn(resource string) Grant {
	return q.control.resolve(q.role, resource, ActionCreate, ScopeOwn)
}

func (q RoleQuery) UpdateAny(resource string) Grant {
	return q.control.resolve(q.role, resource, ActionUpdate, ScopeAny)
}

func (q RoleQuery) UpdateOwn(resource string) Grant {
	return q.control.resolve(q.role, resource, ActionUpdate, ScopeOwn)
}

func (q RoleQuery) DeleteAny(resource string) Grant {
	return q.control.resolve(q.role, resource, ActionDelete, ScopeAny)
}

func (q RoleQuery) DeleteOwn(resource string) Grant {
	return q.control.resolve(q.role, resource, ActionDelete, ScopeOwn)
}

// userSelfFields is what a user may write on their own User record.
// Notably absent: role.
var userSelfFields = []string{"email", "name"}

// DefaultRules is the rule set the app boots with: admins act on anything,
// users act on their own records.
func DefaultRules() []Rule {
	rules := []Rule{
		{Role: "user", Resource: model.ResourceUser, Action: ActionRead, Scope: ScopeOwn},
		{Role: "user", Resource: model.ResourceUser, Action: ActionUpdate, Scope: ScopeOwn, Fields: userSelfFields},
		{Role: "user", Resource: model.ResourceEvent, Action: ActionCreate, Scope: ScopeOwn, Fields: model.EventWritableFields},
		{Role: "user", Resource: model.ResourceEvent, Action: ActionRead, Scope: ScopeOwn},
		{Role: "user", Resource: model.ResourceEvent, Action: ActionUpdate, Scope: ScopeOwn, Fields: model.EventWritableFields},
		{Role: "user", Resource: model.ResourceEvent, Action: ActionDelete, Scope: ScopeOwn},
	}

	for _, resource := range []string{model.ResourceUser, model.ResourceEvent} {
		for _, action := range []Action{ActionCreate, ActionRead, ActionUpdate, ActionDelete} {
			rules = append(rules, Rule{Role: "admin", Resource: resource, Action: action, Scope: ScopeAny})
		}
	}

	return rules
}
