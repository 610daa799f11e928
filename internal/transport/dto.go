package transport

// LoginRequest is the OAuth2 password-form body of POST /login.
type LoginRequest struct {
	Username string `form:"username"`
	Password string `form:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
}

type StatusResponse struct {
	Status string `json:"status"`
}

// IdentityResponse is the body of GET /me.
type IdentityResponse struct {
	ID       uint   `json:"id"`
	Email    string `json:"email"`
	Role     string `json:"role"`
	IsActive bool   `json:"is_active"`
}
