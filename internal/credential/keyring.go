// Package credential stores the Jira API token in the system keyring,
// falling back to an encrypted file backend where no keychain exists.
package credential

import (
	"fmt"
	"os"

	"github.com/99designs/keyring"
)

const serviceName = "jiratui"

// tokenKey is the keyring entry holding the Jira API token.
const tokenKey = "jira-api-token"

// tokenEnvVar overrides the keyring when set, for CI and scripted use.
const tokenEnvVar = "JIRA_API_TOKEN"

// openKeyring returns a configured keyring instance.
func openKeyring() (keyring.Keyring, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  "~/.config/jiratui/credentials",
		FilePasswordFunc:         keyring.FixedStringPrompt("jiratui-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// APIToken resolves the Jira API token: the JIRA_API_TOKEN environment
// variable wins, then the system keyring.
func APIToken() (string, error) {
	if token := os.Getenv(tokenEnvVar); token != "" {
		return token, nil
	}
	return Get(tokenKey)
}

// SetAPIToken stores the Jira API token in the system keyring.
func SetAPIToken(token string) error {
	return Set(tokenKey, token)
}

// DeleteAPIToken removes the stored Jira API token.
func DeleteAPIToken() error {
	return Delete(tokenKey)
}

// Get retrieves a credential value by key from the system keyring.
func Get(key string) (string, error) {
	ring, err := openKeyring()
	if err != nil {
		return "", err
	}

	item, err := ring.Get(key)
	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

// Set stores a credential value by key in the system keyring.
func Set(key string, value string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}

// Delete removes a credential by key from the system keyring.
func Delete(key string) error {
	ring, err := openKeyring()
	if err != nil {
		return err
	}

	err = ring.Remove(key)
	if err != nil {
		return fmt.Errorf("deleting credential %q: %w", key, err)
	}

	return nil
}
