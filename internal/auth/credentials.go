// Package auth manages Google credentials per profile, preferring the
// system keyring with a file fallback, and builds authenticated Drive
// services.
package auth

import (
	"time"

	"github.com/drivestow/drivestow/internal/config"
)

// Credentials is the in-memory token set for a profile.
type Credentials struct {
	AccessToken        string
	RefreshToken       string
	ExpiryDate         time.Time
	Scopes             []string
	Type               config.AuthType
	ServiceAccountPath string
}

// StoredCredentials is the JSON shape persisted by a storage backend.
type StoredCredentials struct {
	Profile            string          `json:"profile"`
	AccessToken        string          `json:"accessToken"`
	RefreshToken       string          `json:"refreshToken"`
	ExpiryDate         string          `json:"expiryDate"`
	Scopes             []string        `json:"scopes"`
	Type               config.AuthType `json:"type"`
	ServiceAccountPath string          `json:"serviceAccountPath,omitempty"`
}
