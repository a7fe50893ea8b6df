package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/zalando/go-keyring"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/drivestow/drivestow/internal/config"
	"github.com/drivestow/drivestow/internal/utils"
)

const (
	serviceName        = "drivestow"
	tokenRefreshBuffer = 5 * time.Minute
)

// Manager handles credential storage and Drive service construction.
type Manager struct {
	configDir      string
	useKeyring     bool
	storage        StorageBackend
	oauthConfig    *oauth2.Config
	storageWarning string
}

// ManagerOptions configures the auth manager.
type ManagerOptions struct {
	// ForcePlainFile bypasses the keyring even when available.
	ForcePlainFile bool
}

// NewManager creates an auth manager using the preferred storage backend.
func NewManager(configDir string) *Manager {
	return NewManagerWithOptions(configDir, ManagerOptions{})
}

// NewManagerWithOptions creates an auth manager with explicit storage
// selection.
func NewManagerWithOptions(configDir string, opts ManagerOptions) *Manager {
	mgr := &Manager{configDir: configDir}

	if opts.ForcePlainFile || !checkKeyringAvailable() {
		mgr.storage = NewPlainFileStorage(configDir)
		mgr.useKeyring = false
		if !opts.ForcePlainFile {
			mgr.storageWarning = "system keyring not available, storing credentials in files"
		}
	} else {
		mgr.storage = NewKeyringStorage(serviceName)
		mgr.useKeyring = true
	}

	return mgr
}

// checkKeyringAvailable probes the system keyring with a throwaway entry.
func checkKeyringAvailable() bool {
	testKey := serviceName + "-probe"
	if err := keyring.Set(serviceName, testKey, "probe"); err != nil {
		return false
	}
	_ = keyring.Delete(serviceName, testKey)
	return true
}

// SetOAuthConfig sets the OAuth2 client configuration.
func (m *Manager) SetOAuthConfig(clientID, clientSecret string, scopes []string) {
	m.oauthConfig = &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Scopes:       scopes,
		Endpoint:     google.Endpoint,
	}
}

// SaveCredentials persists credentials for a profile.
func (m *Manager) SaveCredentials(profile string, creds *Credentials) error {
	stored := StoredCredentials{
		Profile:            profile,
		AccessToken:        creds.AccessToken,
		RefreshToken:       creds.RefreshToken,
		ExpiryDate:         creds.ExpiryDate.Format(time.RFC3339),
		Scopes:             creds.Scopes,
		Type:               creds.Type,
		ServiceAccountPath: creds.ServiceAccountPath,
	}

	data, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("failed to marshal credentials: %w", err)
	}
	if err := m.storage.Save(profile, data); err != nil {
		return err
	}
	return m.addProfileToList(profile)
}

// LoadCredentials loads stored credentials for a profile.
func (m *Manager) LoadCredentials(profile string) (*Credentials, error) {
	data, err := m.storage.Load(profile)
	if err != nil {
		return nil, err
	}

	var stored StoredCredentials
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, fmt.Errorf("failed to parse credentials: %w", err)
	}

	expiry, err := time.Parse(time.RFC3339, stored.ExpiryDate)
	if err != nil && stored.ExpiryDate != "" {
		return nil, fmt.Errorf("invalid expiry date: %w", err)
	}

	return &Credentials{
		AccessToken:        stored.AccessToken,
		RefreshToken:       stored.RefreshToken,
		ExpiryDate:         expiry,
		Scopes:             stored.Scopes,
		Type:               stored.Type,
		ServiceAccountPath: stored.ServiceAccountPath,
	}, nil
}

// DeleteCredentials removes credentials for a profile.
func (m *Manager) DeleteCredentials(profile string) error {
	if err := m.storage.Delete(profile); err != nil {
		return err
	}
	return m.removeProfileFromList(profile)
}

// NeedsRefresh reports whether the access token is expired or about to be.
func (m *Manager) NeedsRefresh(creds *Credentials) bool {
	return time.Now().Add(tokenRefreshBuffer).After(creds.ExpiryDate)
}

// RefreshCredentials refreshes an OAuth token using the refresh token.
func (m *Manager) RefreshCredentials(ctx context.Context, creds *Credentials) (*Credentials, error) {
	if creds.Type != config.AuthTypeOAuth {
		return nil, fmt.Errorf("refresh only supported for OAuth credentials")
	}
	if m.oauthConfig == nil {
		return nil, fmt.Errorf("OAuth config not set")
	}

	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.ExpiryDate,
	}
	newToken, err := m.oauthConfig.TokenSource(ctx, token).Token()
	if err != nil {
		return nil, fmt.Errorf("failed to refresh token: %w", err)
	}

	refreshToken := newToken.RefreshToken
	if refreshToken == "" {
		refreshToken = creds.RefreshToken
	}

	return &Credentials{
		AccessToken:  newToken.AccessToken,
		RefreshToken: refreshToken,
		ExpiryDate:   newToken.Expiry,
		Scopes:       creds.Scopes,
		Type:         config.AuthTypeOAuth,
	}, nil
}

// GetValidCredentials returns usable credentials for a profile, refreshing
// and re-saving them when stale.
func (m *Manager) GetValidCredentials(ctx context.Context, profile string) (*Credentials, error) {
	creds, err := m.LoadCredentials(profile)
	if err != nil {
		return nil, utils.NewCLIError(utils.ErrCodeAuthRequired,
			"no credentials found, run 'drivestow login' first")
	}

	if creds.Type == config.AuthTypeServiceAccount {
		return creds, nil
	}

	if m.NeedsRefresh(creds) {
		newCreds, err := m.RefreshCredentials(ctx, creds)
		if err != nil {
			return nil, utils.NewCLIError(utils.ErrCodeAuthExpired,
				"token refresh failed, run 'drivestow login' to re-authenticate")
		}
		if err := m.SaveCredentials(profile, newCreds); err != nil {
			return nil, fmt.Errorf("failed to save refreshed credentials: %w", err)
		}
		return newCreds, nil
	}

	return creds, nil
}

// Service builds an authenticated Drive service for a profile. Service
// account profiles authenticate via their key file; OAuth profiles via
// the stored token with automatic refresh.
func (m *Manager) Service(ctx context.Context, profile string) (*drive.Service, error) {
	creds, err := m.GetValidCredentials(ctx, profile)
	if err != nil {
		return nil, err
	}

	if creds.Type == config.AuthTypeServiceAccount {
		return drive.NewService(ctx,
			option.WithCredentialsFile(creds.ServiceAccountPath),
			option.WithScopes(creds.Scopes...))
	}

	token := &oauth2.Token{
		AccessToken:  creds.AccessToken,
		RefreshToken: creds.RefreshToken,
		Expiry:       creds.ExpiryDate,
	}

	var source oauth2.TokenSource
	if m.oauthConfig != nil {
		source = m.oauthConfig.TokenSource(ctx, token)
	} else {
		source = oauth2.StaticTokenSource(token)
	}

	return drive.NewService(ctx, option.WithTokenSource(source))
}

// UseKeyring reports whether the system keyring backs credential storage.
func (m *Manager) UseKeyring() bool {
	return m.useKeyring
}

// StorageBackendName returns the active backend's name.
func (m *Manager) StorageBackendName() string {
	return m.storage.Name()
}

// StorageWarning returns a warning about degraded storage, if any.
func (m *Manager) StorageWarning() string {
	return m.storageWarning
}
