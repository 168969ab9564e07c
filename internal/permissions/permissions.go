package permissions

import (
	"storefront/api/internal/models"
)

type Action string

const (
	ActionRead    Action = "read"
	ActionReadAll Action = "readAll"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionPay     Action = "pay"
)

type Resource string

const (
	ResourceUser     Resource = "user"
	ResourceProduct  Resource = "product"
	ResourceCategory Resource = "category"
	ResourceOrder    Resource = "order"
)

// Context carries the identities a conditional rule compares. Ownership is
// always an email comparison: ids are allocated per entity, the email claim
// in the access token is the stable cross-entity identity.
type Context struct {
	RequesterEmail string
	OwnerEmail     string
}

type Decision struct {
	Granted bool
}

type condition int

const (
	condAlways condition = iota
	condOwner
	condNotOwner
)

type rule struct {
	role     models.UserRole
	action   Action
	resource Resource
	cond     condition
}

// Engine evaluates the fixed role/ownership rule table. Build it once at
// startup with New and inject it; the table is not configurable at runtime.
type Engine struct {
	rules []rule
}

func New() *Engine {
	return &Engine{rules: []rule{
		// catalog
		{models.UserRoleUser, ActionRead, ResourceProduct, condAlways},
		{models.UserRoleUser, ActionRead, ResourceCategory, condAlways},
		{models.UserRoleAdmin, ActionCreate, ResourceProduct, condAlways},
		{models.UserRoleAdmin, ActionUpdate, ResourceProduct, condAlways},
		{models.UserRoleAdmin, ActionDelete, ResourceProduct, condAlways},
		{models.UserRoleAdmin, ActionCreate, ResourceCategory, condAlways},
		{models.UserRoleAdmin, ActionUpdate, ResourceCategory, condAlways},
		{models.UserRoleAdmin, ActionDelete, ResourceCategory, condAlways},

		// accounts
		{models.UserRoleUser, ActionRead, ResourceUser, condOwner},
		{models.UserRoleUser, ActionDelete, ResourceUser, condOwner},
		{models.UserRoleAdmin, ActionRead, ResourceUser, condAlways},
		{models.UserRoleAdmin, ActionReadAll, ResourceUser, condAlways},
		{models.UserRoleAdmin, ActionDelete, ResourceUser, condNotOwner},

		// orders
		{models.UserRoleUser, ActionRead, ResourceOrder, condOwner},
		{models.UserRoleUser, ActionPay, ResourceOrder, condOwner},
		{models.UserRoleUser, ActionCreate, ResourceOrder, condOwner},
		{models.UserRoleAdmin, ActionRead, ResourceOrder, condAlways},
		{models.UserRoleAdmin, ActionReadAll, ResourceOrder, condAlways},
		{models.UserRoleAdmin, ActionCreate, ResourceOrder, condAlways},
	}}
}

func (e *Engine) Can(role models.UserRole, action Action, resource Resource, ctx Context) Decision {
	for _, r := range e.rules {
		if r.role != role || r.action != action || r.resource != resource {
			continue
		}
		switch r.cond {
		case condAlways:
			return Decision{Granted: true}
		case condOwner:
			if ctx.RequesterEmail != "" && ctx.RequesterEmail == ctx.OwnerEmail {
				return Decision{Granted: true}
			}
		case condNotOwner:
			if ctx.RequesterEmail != ctx.OwnerEmail {
				return Decision{Granted: true}
			}
		}
	}
	return Decision{}
}

// UserView is the password-free projection of a user record. The sensitive
// field is absent at the type level, not stripped after the fact.
type UserView struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func ViewUser(u models.User) UserView {
	return UserView{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

// ReadUser evaluates the single-user read rule and, when granted, returns
// the filtered projection with the grant so callers cannot separate the two.
func (e *Engine) ReadUser(requester models.User, owner models.User) (UserView, bool) {
	d := e.Can(requester.Role, ActionRead, ResourceUser, Context{
		RequesterEmail: requester.Email,
		OwnerEmail:     owner.Email,
	})
	if !d.Granted {
		return UserView{}, false
	}
	return ViewUser(owner), true
}
