package auth

import (
	"fmt"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/ridloal/apparel-store/internal/platform/logger"
)

const (
	ResourceOrders   = "orders"
	ResourceProducts = "products"

	ActionReadAny           = "read_any"
	ActionUpdateFulfillment = "update_fulfillment"
	ActionWrite             = "write"
)

const rbacModel = `
[request_definition]
r = sub, obj, act

[policy_definition]
p = sub, obj, act

[role_definition]
g = _, _

[policy_effect]
e = some(where (p.eft == allow))

[matchers]
m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
`

// Authorizer memeriksa kapabilitas sebuah role.
type Authorizer interface {
	Can(role, resource, action string) bool
}

type casbinAuthorizer struct {
	enforcer *casbin.Enforcer
}

// NewAuthorizer membuat enforcer RBAC in-memory dengan kebijakan bawaan toko.
func NewAuthorizer() (Authorizer, error) {
	m, err := model.NewModelFromString(rbacModel)
	if err != nil {
		return nil, fmt.Errorf("failed to parse rbac model: %w", err)
	}
	e, err := casbin.NewEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize rbac enforcer: %w", err)
	}

	policies := [][]string{
		{RoleAdmin, ResourceOrders, ActionReadAny},
		{RoleAdmin, ResourceOrders, ActionUpdateFulfillment},
		{RoleAdmin, ResourceProducts, ActionWrite},
	}
	if _, err := e.AddPolicies(policies); err != nil {
		return nil, fmt.Errorf("failed to load rbac policies: %w", err)
	}
	return &casbinAuthorizer{enforcer: e}, nil
}

func (a *casbinAuthorizer) Can(role, resource, action string) bool {
	ok, err := a.enforcer.Enforce(role, resource, action)
	if err != nil {
		logger.Error("Authorizer: enforce failed", err, logger.Fields{"role": role, "resource": resource, "action": action})
		return false
	}
	return ok
}
