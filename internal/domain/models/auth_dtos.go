package models

// LoginRequest is the payload for POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// CreateUserRequest is the payload for POST /auth/create.
type CreateUserRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"firstName" binding:"required"`
	LastName  string `json:"lastName" binding:"required"`
}

// RefreshRequest carries a refresh token for clients that cannot use
// the refresh-token cookie.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// LogoutRequest mirrors RefreshRequest for POST /auth/logout.
type LogoutRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// AuthResult is returned from login, registration and refresh. The
// refresh token is stripped from browser responses; browsers get it via
// an HttpOnly cookie instead.
type AuthResult struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
	UserID       int64  `json:"userId"`
	Username     string `json:"username"`
	CSRFToken    string `json:"csrfToken,omitempty"`
}
