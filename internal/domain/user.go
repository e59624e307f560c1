package domain

// Roles returned by the identity provider.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the authenticated caller. It is resolved per request and passed
// explicitly to services.
type User struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	FullName string `json:"full_name"`
	Role     string `json:"role"`
}

// DisplayName falls back to the email when no full name is set.
func (u User) DisplayName() string {
	if u.FullName != "" {
		return u.FullName
	}
	return u.Email
}

func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
