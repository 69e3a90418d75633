package auth

// Role es el rol del principal autenticado.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleTutor Role = "tutor"
)

// Claims representa la información extraída del token.
type Claims struct {
	UserID string
	Email  string
	Role   Role
}
