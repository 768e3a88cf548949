package users

// CreateUserPayload represents the create user request body.
type CreateUserPayload struct {
	Username string `json:"username" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=8"`
}
