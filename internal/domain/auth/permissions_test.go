package auth

import "testing"

func TestRolePermissionsSubset(t *testing.T) {
	allowed := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		allowed[perm] = struct{}{}
	}

	for role, perms := range RolePermissions {
		if len(perms) == 0 {
			t.Fatalf("role %s has no permissions", role)
		}
		for _, perm := range perms {
			if _, ok := allowed[perm]; !ok {
				t.Fatalf("role %s has unknown permission %s", role, perm)
			}
		}
	}
}

func TestDefaultPermissionsUnique(t *testing.T) {
	seen := map[string]struct{}{}
	for _, perm := range DefaultPermissions {
		if _, ok := seen[perm]; ok {
			t.Fatalf("duplicate permission %s", perm)
		}
		seen[perm] = struct{}{}
	}
}

func TestStaticPermissionsRoleGating(t *testing.T) {
	perms := StaticPermissions{}
	if !perms.HasPermission(RoleBoss, PermEvaluateBoss) {
		t.Fatal("boss should evaluate as boss")
	}
	if perms.HasPermission(RoleEmployee, PermEvaluateLead) {
		t.Fatal("employee must not evaluate as leader")
	}
	if perms.HasPermission(RoleLeader, PermTemplatesWrite) {
		t.Fatal("leader must not edit templates")
	}
	if perms.HasPermission("unknown", PermTemplatesRead) {
		t.Fatal("unknown role must have no permissions")
	}
}
