package enum

// Role is the access level of a user
type Role string

const (
	RoleAdmin  Role = "admin"
	RoleBiller Role = "biller"
)

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleBiller
}

func (r Role) String() string {
	return string(r)
}
