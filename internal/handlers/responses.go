package handlers

// AuthResponse is returned by register and login: the account plus a fresh
// bearer token.
type AuthResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Token    string `json:"token"`
}

// MeResponse describes the authenticated account.
type MeResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// ErrorResponse is the generic error body for the auth API.
type ErrorResponse struct {
	Message string `json:"message"`
}
