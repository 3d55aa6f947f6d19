package dto

// RegisterRequest represents registration request. Role and password policy
// are checked by the service so their failures carry dedicated codes.
type RegisterRequest struct {
	FullName string `json:"fullname"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role"`
}

// LoginRequest represents login request
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse is returned by register and login
type AuthResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	Email       string `json:"email"`
	FullName    string `json:"fullname"`
	Role        string `json:"role"`
}

// MeResponse describes the caller as stored
type MeResponse struct {
	ID         int64  `json:"id"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
	IsActive   bool   `json:"is_active"`
}

// UserStatusResponse is returned by the admin activation routes
type UserStatusResponse struct {
	UserID   int64 `json:"user_id"`
	IsActive bool  `json:"is_active"`
}
