package auth

import "context"

// Provider is the external identity provider contract. Implementations
// verify identities and return facts; session management and authorization
// decisions happen elsewhere.
type Provider interface {
	// Name returns the provider tag stored with admin identities.
	Name() string

	// AuthCodeURL returns the URL to send the user to. state ties the
	// redirect round trip back to the pending handshake entry.
	AuthCodeURL(state string) string

	// Exchange trades the provider's authorization code for a verified
	// identity.
	Exchange(ctx context.Context, code string) (Identity, error)
}
