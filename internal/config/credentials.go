package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

const (
	EnvProjectID   = "FIREBASE_ADMIN_PROJECT_ID"
	EnvPrivateKey  = "FIREBASE_ADMIN_PRIVATE_KEY"
	EnvClientEmail = "FIREBASE_ADMIN_CLIENT_EMAIL"
)

var ErrMissingCredentials = errors.New("missing firebase admin credentials")

// Credentials is the service-account identity used for the Admin SDK.
type Credentials struct {
	ProjectID   string
	PrivateKey  string
	ClientEmail string
}

// LoadEnvFile loads KEY=VALUE pairs from path into the process environment.
// Variables already set in the environment win. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

// CredentialsFromEnv reads the three service-account variables through lookup
// (os.LookupEnv in production) and fails before any network call when one is missing.
func CredentialsFromEnv(lookup func(string) (string, bool)) (Credentials, error) {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	var missing []string
	get := func(key string) string {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			missing = append(missing, key)
		}
		return v
	}

	c := Credentials{
		ProjectID:   get(EnvProjectID),
		PrivateKey:  get(EnvPrivateKey),
		ClientEmail: get(EnvClientEmail),
	}
	if len(missing) > 0 {
		return Credentials{}, fmt.Errorf("%w: %s", ErrMissingCredentials, strings.Join(missing, ", "))
	}
	c.PrivateKey = NormalizePrivateKey(c.PrivateKey)
	return c, nil
}

// NormalizePrivateKey undoes the usual copy/paste damage done to PEM keys in
// env files: outer whitespace, surrounding quotes and escaped newlines.
func NormalizePrivateKey(key string) string {
	key = strings.TrimSpace(key)
	if len(key) >= 2 {
		first, last := key[0], key[len(key)-1]
		if (first == '"' && last == '"') || (first == '\'' && last == '\'') {
			key = strings.TrimSpace(key[1 : len(key)-1])
		}
	}
	return strings.ReplaceAll(key, `\n`, "\n")
}

// JSON renders the credentials as a service-account key file.
func (c Credentials) JSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		"type":         "service_account",
		"project_id":   c.ProjectID,
		"private_key":  c.PrivateKey,
		"client_email": c.ClientEmail,
		"token_uri":    "https://oauth2.googleapis.com/token",
	})
}
