package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
)

// OAuth2Provider implements Provider over a standard OAuth2 code flow plus a
// JSON userinfo endpoint. The id and username field names are configurable
// because providers disagree on them ("id" vs "sub", "username" vs
// "screen_name").
type OAuth2Provider struct {
	name          string
	cfg           *oauth2.Config
	userInfoURL   string
	idField       string
	usernameField string
}

// NewOAuth2Provider builds a provider named name around cfg and the given
// userinfo endpoint. Empty field names default to "id" and "username".
func NewOAuth2Provider(name string, cfg *oauth2.Config, userInfoURL, idField, usernameField string) *OAuth2Provider {
	if idField == "" {
		idField = "id"
	}
	if usernameField == "" {
		usernameField = "username"
	}
	return &OAuth2Provider{
		name:          name,
		cfg:           cfg,
		userInfoURL:   userInfoURL,
		idField:       idField,
		usernameField: usernameField,
	}
}

func (p *OAuth2Provider) Name() string {
	return p.name
}

func (p *OAuth2Provider) AuthCodeURL(state string) string {
	return p.cfg.AuthCodeURL(state)
}

func (p *OAuth2Provider) Exchange(ctx context.Context, code string) (Identity, error) {
	token, err := p.cfg.Exchange(ctx, code)
	if err != nil {
		return Identity{}, fmt.Errorf("exchanging code: %w", err)
	}

	resp, err := p.cfg.Client(ctx, token).Get(p.userInfoURL)
	if err != nil {
		return Identity{}, fmt.Errorf("fetching userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Identity{}, fmt.Errorf("userinfo endpoint returned %d", resp.StatusCode)
	}

	var claims map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&claims); err != nil {
		return Identity{}, fmt.Errorf("decoding userinfo: %w", err)
	}

	id := stringClaim(claims, p.idField)
	if id == "" {
		return Identity{}, fmt.Errorf("userinfo missing %q field", p.idField)
	}

	return Identity{
		Provider: p.name,
		UserID:   id,
		Username: stringClaim(claims, p.usernameField),
	}, nil
}

// stringClaim reads a claim as a string, tolerating numeric user ids.
func stringClaim(claims map[string]any, field string) string {
	switch v := claims[field].(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return ""
	}
}
