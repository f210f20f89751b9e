package domain

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleEmployee Role = "employee"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// Session identifies the acting user of an operation.
type Session struct {
	Username string
	Role     Role
}

func (s Session) Validate() error {
	if s.Username == "" || !s.Role.Valid() {
		return ErrUnauthorized
	}
	return nil
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// User is a stored credential record.
type User struct {
	Username     string
	PasswordHash string
	Role         Role
}
