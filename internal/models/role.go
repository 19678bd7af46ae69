package models

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

type Role struct {
	ID   int64
	Name string
}

// SeededRoles lists the roles every deployment must have.
var SeededRoles = []string{RoleAdmin, RoleUser}
