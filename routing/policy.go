package routing

import (
	"errors"
	"sort"
)

// Destination is a fixed navigation target emitted by the policy. Values are
// path strings so consumers can hand them straight to their router.
type Destination string

// Default destination set. Every value the default policy can emit is
// enumerated here; custom deployments may override paths per role but the
// shape of the mapping is fixed.
const (
	DestLogin            Destination = "/login"
	DestSignup           Destination = "/signup"
	DestVerifyEmail      Destination = "/verify-email"
	DestInactivePlan     Destination = "/inactive-plan"
	DestBasicDashboard   Destination = "/dashboard/basic"
	DestMainDashboard    Destination = "/dashboard"
	DestAdminDashboard   Destination = "/admin"
	DestShopDashboard    Destination = "/shop"
	DestCompanyDashboard Destination = "/company"
)

// Role names the policy knows out of the box.
const (
	RoleFree      = "free"
	RolePro       = "pro"
	RolePremium   = "premium"
	RoleVIP       = "vip"
	RoleAdmin     = "admin"
	RoleShopOwner = "shop_owner"
	RoleCompany   = "company"
)

// ErrPolicyFrozen is returned when a destination is registered after Freeze.
var ErrPolicyFrozen = errors.New("routing policy frozen")

// ErrInvalidDestination is returned when an empty destination is registered.
var ErrInvalidDestination = errors.New("invalid destination")

// Policy maps (role, planActive) to a [Destination]. Build it with
// [NewPolicy], register role destinations, then Freeze before first use.
// A frozen Policy is safe for concurrent use without synchronization.
type Policy struct {
	table    map[string]Destination
	inactive Destination
	fallback Destination
	authFlow map[string]struct{}
	frozen   bool
}

// NewPolicy returns a Policy pre-loaded with the default role table and
// auth-flow path set. Call [Policy.SetDestination] and friends to override,
// then [Policy.Freeze].
func NewPolicy() *Policy {
	return &Policy{
		table: map[string]Destination{
			RoleFree:      DestBasicDashboard,
			RolePro:       DestMainDashboard,
			RolePremium:   DestMainDashboard,
			RoleVIP:       DestMainDashboard,
			RoleAdmin:     DestAdminDashboard,
			RoleShopOwner: DestShopDashboard,
			RoleCompany:   DestCompanyDashboard,
		},
		inactive: DestInactivePlan,
		fallback: DestLogin,
		authFlow: map[string]struct{}{
			string(DestLogin):       {},
			string(DestSignup):      {},
			string(DestVerifyEmail): {},
		},
	}
}

// DefaultPolicy returns the frozen default policy.
func DefaultPolicy() *Policy {
	p := NewPolicy()
	p.Freeze()
	return p
}

// SetDestination overrides the destination for a role. Registering an
// unknown role extends the table.
func (p *Policy) SetDestination(role string, dest Destination) error {
	if p.frozen {
		return ErrPolicyFrozen
	}
	if role == "" || dest == "" {
		return ErrInvalidDestination
	}
	p.table[role] = dest
	return nil
}

// SetInactiveDestination overrides the inactive-plan destination.
func (p *Policy) SetInactiveDestination(dest Destination) error {
	if p.frozen {
		return ErrPolicyFrozen
	}
	if dest == "" {
		return ErrInvalidDestination
	}
	p.inactive = dest
	return nil
}

// SetFallbackDestination overrides the destination for unknown roles.
func (p *Policy) SetFallbackDestination(dest Destination) error {
	if p.frozen {
		return ErrPolicyFrozen
	}
	if dest == "" {
		return ErrInvalidDestination
	}
	p.fallback = dest
	return nil
}

// SetAuthFlowPaths replaces the set of auth-flow paths. An authenticated
// user observed on one of these paths is moved to their resolved
// destination.
func (p *Policy) SetAuthFlowPaths(paths []string) error {
	if p.frozen {
		return ErrPolicyFrozen
	}
	flow := make(map[string]struct{}, len(paths))
	for _, path := range paths {
		if path == "" {
			return ErrInvalidDestination
		}
		flow[path] = struct{}{}
	}
	p.authFlow = flow
	return nil
}

// Freeze seals the policy. Further registration attempts fail with
// [ErrPolicyFrozen].
func (p *Policy) Freeze() {
	p.frozen = true
}

// Frozen reports whether the policy has been sealed.
func (p *Policy) Frozen() bool {
	return p.frozen
}

// Resolve maps a role and plan-active flag to a destination.
//
// An inactive plan always wins: Resolve returns the inactive-plan
// destination for every role, known or not. Otherwise known roles map
// through the table and anything else (including the empty role of an
// anonymous visitor) resolves to the fallback. Resolve never fails.
func (p *Policy) Resolve(role string, planActive bool) Destination {
	if !planActive {
		return p.inactive
	}
	if dest, ok := p.table[role]; ok {
		return dest
	}
	return p.fallback
}

// IsAuthFlowPath reports whether path belongs to the auth-flow set
// (login, signup, verify-email by default).
func (p *Policy) IsAuthFlowPath(path string) bool {
	_, ok := p.authFlow[path]
	return ok
}

// InactiveDestination returns the destination emitted for inactive plans.
func (p *Policy) InactiveDestination() Destination {
	return p.inactive
}

// FallbackDestination returns the destination emitted for unknown roles.
func (p *Policy) FallbackDestination() Destination {
	return p.fallback
}

// Roles returns the registered role names in sorted order.
func (p *Policy) Roles() []string {
	roles := make([]string, 0, len(p.table))
	for role := range p.table {
		roles = append(roles, role)
	}
	sort.Strings(roles)
	return roles
}
