package model

// AuthBeginResponse starts the external-provider login round trip.
type AuthBeginResponse struct {
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

// UserResponse describes the session's identity and admin standing.
type UserResponse struct {
	Username string `json:"username"`
	ID       string `json:"id"`
	Admin    bool   `json:"admin"`
}

// AdminTokenResponse carries a freshly issued admin token.
type AdminTokenResponse struct {
	AdminToken string `json:"admin_token"`
}

// PublicKeyResponse publishes the server's encryption key.
type PublicKeyResponse struct {
	PublicKeyB58 string `json:"public_key_b58"`
}
