package auth

const (
	RoleEmployee = "employee"
	RoleLeader   = "leader"
	RoleBoss     = "boss"
	RoleAdmin    = "admin"
)

const (
	PermTemplatesRead    = "templates.read"
	PermTemplatesWrite   = "templates.write"
	PermAssessmentsRead  = "assessments.read"
	PermAssessmentsWrite = "assessments.write"
	PermEvaluateSelf     = "evaluations.self"
	PermEvaluateLead     = "evaluations.lead"
	PermEvaluateBoss     = "evaluations.boss"
	PermReportsRead      = "reports.read"
	PermDirectoryRead    = "directory.read"
	PermDirectoryWrite   = "directory.write"
	PermAuditRead        = "audit.read"
)

var DefaultPermissions = []string{
	PermTemplatesRead,
	PermTemplatesWrite,
	PermAssessmentsRead,
	PermAssessmentsWrite,
	PermEvaluateSelf,
	PermEvaluateLead,
	PermEvaluateBoss,
	PermReportsRead,
	PermDirectoryRead,
	PermDirectoryWrite,
	PermAuditRead,
}

var Roles = []string{RoleEmployee, RoleLeader, RoleBoss, RoleAdmin}

var RolePermissions = map[string][]string{
	RoleEmployee: {
		PermTemplatesRead,
		PermAssessmentsRead,
		PermEvaluateSelf,
		PermDirectoryRead,
	},
	RoleLeader: {
		PermTemplatesRead,
		PermAssessmentsRead,
		PermEvaluateSelf,
		PermEvaluateLead,
		PermDirectoryRead,
	},
	RoleBoss: {
		PermTemplatesRead,
		PermAssessmentsRead,
		PermEvaluateBoss,
		PermReportsRead,
		PermDirectoryRead,
	},
	RoleAdmin: {
		PermTemplatesRead,
		PermTemplatesWrite,
		PermAssessmentsRead,
		PermAssessmentsWrite,
		PermReportsRead,
		PermDirectoryRead,
		PermDirectoryWrite,
		PermAuditRead,
	},
}

func ValidRole(role string) bool {
	_, ok := RolePermissions[role]
	return ok
}

// StaticPermissions resolves permissions from RolePermissions.
type StaticPermissions struct{}

func (StaticPermissions) HasPermission(role, permission string) bool {
	for _, perm := range RolePermissions[role] {
		if perm == permission {
			return true
		}
	}
	return false
}
