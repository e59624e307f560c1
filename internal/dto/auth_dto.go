package dto

// UserResponse is the signed-in user
type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email" example:"artist@example.com"`
	FullName string `json:"fullName" example:"Alex Artist"`
	Role     string `json:"role" example:"user"`
	IsAdmin  bool   `json:"isAdmin"`
}
