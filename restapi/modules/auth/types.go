package auth

// TokenResponse is printed by the token command
type TokenResponse struct {
	Principal int64  `json:"principal"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}
