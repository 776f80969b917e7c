package dto

// LoginRequest is the JSON body for POST /auth/login and /auth/token.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SignupRequest is the JSON body for POST /auth/signup.
// PasswordConfirm must match Password; the eqfield rule mirrors the
// two-field confirmation of the signup form.
type SignupRequest struct {
	Username        string `json:"username" binding:"required,min=1,max=150"`
	Password        string `json:"password" binding:"required,min=1"`
	PasswordConfirm string `json:"password_confirm" binding:"required,eqfield=Password"`
}

// UserResponse is returned after signup and login.
type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// TokenResponse is returned by POST /auth/token.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int64  `json:"expires_in"`
}
