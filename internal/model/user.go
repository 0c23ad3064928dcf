// Package model defines domain entities for the application.
package model

import (
	"strings"
	"time"
)

// ProviderGoogle identifies users who signed in with Google.
const ProviderGoogle = "google"

// User is an account created on first successful login.
type User struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Provider  string    `json:"provider"`
	AvatarURL string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Identity is the assertion an identity provider returns after login.
type Identity struct {
	Email     string
	Name      string
	AvatarURL string
	Provider  string
	Subject   string
	// EmailVerified reports whether the provider has confirmed the caller
	// controls Email. Unverified identities never resolve to a user.
	EmailVerified bool
}

// DisplayName returns the asserted name, or the email local part when the
// provider sent none.
func (i Identity) DisplayName() string {
	if name := strings.TrimSpace(i.Name); name != "" {
		return name
	}
	local, _, _ := strings.Cut(i.Email, "@")
	return local
}
