package api

import (
	"fmt"
	"os"
)

// CredentialProvider supplies the bearer token for backend calls. Company
// and user identity are derived server-side from the token; they are never
// sent explicitly.
type CredentialProvider interface {
	Token() (string, error)
}

// StaticToken is a fixed bearer token, mainly for tests.
type StaticToken string

func (t StaticToken) Token() (string, error) {
	if t == "" {
		return "", fmt.Errorf("empty API token")
	}
	return string(t), nil
}

// EnvToken reads the bearer token from an environment variable on every
// request, so a refreshed token is picked up without restarting.
type EnvToken string

func (e EnvToken) Token() (string, error) {
	v := os.Getenv(string(e))
	if v == "" {
		return "", fmt.Errorf("environment variable %s is not set", string(e))
	}
	return v, nil
}
