package dto

import "time"

// LoginRequest carries demo account credentials.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// IdentityResponse mirrors the resolved caller identity.
type IdentityResponse struct {
	ID          string `json:"id"`
	Role        string `json:"role"`
	DisplayName string `json:"displayName"`
}

// LoginResponse returns the issued token and who it belongs to.
type LoginResponse struct {
	Token     string           `json:"token"`
	ExpiresAt time.Time        `json:"expiresAt"`
	Identity  IdentityResponse `json:"identity"`
}
