// utils/roles.go
package utils

// Platform roles, most to least privileged.
const (
	RoleSuperAdmin       = "super_admin"
	RoleAssociationAdmin = "association_admin"
	RoleDistrictLeader   = "district_leader"
	RoleSalonOwner       = "salon_owner"
	RoleSalonEmployee    = "salon_employee"
	RoleCustomer         = "customer"
)

// roleEdges is the direct dominance relation: each role dominates the roles
// it points to. The full relation is the precomputed transitive closure below,
// so checks never walk the graph at request time.
var roleEdges = map[string][]string{
	RoleSuperAdmin:       {RoleAssociationAdmin},
	RoleAssociationAdmin: {RoleDistrictLeader},
	RoleDistrictLeader:   {RoleSalonOwner},
	RoleSalonOwner:       {RoleSalonEmployee},
	RoleSalonEmployee:    {RoleCustomer},
	RoleCustomer:         {},
}

var roleClosure = buildRoleClosure()

func buildRoleClosure() map[string]map[string]bool {
	closure := make(map[string]map[string]bool, len(roleEdges))
	for role := range roleEdges {
		reach := map[string]bool{role: true}
		stack := []string{role}
		for len(stack) > 0 {
			current := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			for _, next := range roleEdges[current] {
				if !reach[next] {
					reach[next] = true
					stack = append(stack, next)
				}
			}
		}
		closure[role] = reach
	}
	return closure
}

// RoleDominates reports whether role `actor` may act on behalf of role
// `target`. Every role dominates itself. Unknown roles dominate nothing.
func RoleDominates(actor, target string) bool {
	reach, ok := roleClosure[actor]
	if !ok {
		return false
	}
	return reach[target]
}

// IsValidRole reports whether the role name is one the platform knows.
func IsValidRole(role string) bool {
	_, ok := roleEdges[role]
	return ok
}
