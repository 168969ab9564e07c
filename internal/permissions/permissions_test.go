package permissions

import (
	"testing"

	"storefront/api/internal/models"
)

var (
	alice = models.User{ID: 1, Name: "alice", Email: "alice@e.com", Role: models.UserRoleUser}
	bob   = models.User{ID: 2, Name: "bob", Email: "bob@e.com", Role: models.UserRoleUser}
	admin = models.User{ID: 3, Name: "root", Email: "admin@e.com", Role: models.UserRoleAdmin}
)

func ownership(requester, owner models.User) Context {
	return Context{RequesterEmail: requester.Email, OwnerEmail: owner.Email}
}

func TestRuleTable(t *testing.T) {
	e := New()

	tests := []struct {
		name     string
		role     models.UserRole
		action   Action
		resource Resource
		ctx      Context
		want     bool
	}{
		{"user reads product", alice.Role, ActionRead, ResourceProduct, Context{}, true},
		{"user reads category", alice.Role, ActionRead, ResourceCategory, Context{}, true},
		{"user cannot create product", alice.Role, ActionCreate, ResourceProduct, Context{}, false},
		{"user cannot delete category", alice.Role, ActionDelete, ResourceCategory, Context{}, false},
		{"admin creates product", admin.Role, ActionCreate, ResourceProduct, Context{}, true},
		{"admin updates product", admin.Role, ActionUpdate, ResourceProduct, Context{}, true},
		{"admin deletes category", admin.Role, ActionDelete, ResourceCategory, Context{}, true},

		{"user reads own account", alice.Role, ActionRead, ResourceUser, ownership(alice, alice), true},
		{"user cannot read other account", alice.Role, ActionRead, ResourceUser, ownership(alice, bob), false},
		{"user deletes own account", alice.Role, ActionDelete, ResourceUser, ownership(alice, alice), true},
		{"user cannot delete other account", alice.Role, ActionDelete, ResourceUser, ownership(alice, bob), false},
		{"admin reads any account", admin.Role, ActionRead, ResourceUser, ownership(admin, alice), true},
		{"admin lists accounts", admin.Role, ActionReadAll, ResourceUser, Context{RequesterEmail: admin.Email}, true},
		{"user cannot list accounts", alice.Role, ActionReadAll, ResourceUser, Context{RequesterEmail: alice.Email}, false},
		{"admin deletes other account", admin.Role, ActionDelete, ResourceUser, ownership(admin, alice), true},
		{"admin cannot delete own account", admin.Role, ActionDelete, ResourceUser, ownership(admin, admin), false},

		{"user reads own order", alice.Role, ActionRead, ResourceOrder, ownership(alice, alice), true},
		{"user cannot read other order", alice.Role, ActionRead, ResourceOrder, ownership(alice, bob), false},
		{"user pays own order", alice.Role, ActionPay, ResourceOrder, ownership(alice, alice), true},
		{"user cannot pay other order", alice.Role, ActionPay, ResourceOrder, ownership(alice, bob), false},
		{"admin cannot pay other order", admin.Role, ActionPay, ResourceOrder, ownership(admin, alice), false},
		{"admin reads any order", admin.Role, ActionRead, ResourceOrder, ownership(admin, alice), true},
		{"admin lists orders", admin.Role, ActionReadAll, ResourceOrder, Context{RequesterEmail: admin.Email}, true},
		{"user cannot list orders", alice.Role, ActionReadAll, ResourceOrder, Context{RequesterEmail: alice.Email}, false},

		{"user creates own order", alice.Role, ActionCreate, ResourceOrder, ownership(alice, alice), true},
		{"user cannot create order for other", alice.Role, ActionCreate, ResourceOrder, ownership(alice, bob), false},
		{"admin creates order for anyone", admin.Role, ActionCreate, ResourceOrder, ownership(admin, alice), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Can(tt.role, tt.action, tt.resource, tt.ctx).Granted; got != tt.want {
				t.Errorf("Can(%s, %s, %s) = %v, want %v", tt.role, tt.action, tt.resource, got, tt.want)
			}
		})
	}
}

func TestOwnershipRequiresRequesterEmail(t *testing.T) {
	e := New()
	// an empty requester email must never satisfy an owner condition, even
	// against a (broken) record with an empty email
	d := e.Can(models.UserRoleUser, ActionRead, ResourceOrder, Context{})
	if d.Granted {
		t.Error("empty requester email granted ownership access")
	}
}

func TestReadUserProjection(t *testing.T) {
	e := New()

	view, ok := e.ReadUser(alice, alice)
	if !ok {
		t.Fatal("self read not granted")
	}
	if view.Email != alice.Email || view.ID != alice.ID || view.Role != "user" {
		t.Errorf("unexpected view: %+v", view)
	}

	if _, ok := e.ReadUser(alice, bob); ok {
		t.Error("cross-account read granted for plain user")
	}

	if _, ok := e.ReadUser(admin, bob); !ok {
		t.Error("admin read not granted")
	}
}
