package config

import "os"

// Environment variable names for the two upstream credentials.
const (
	EnvPerspectiveAPIKey = "PERSPECTIVE_API_KEY"
	EnvHuggingFaceToken  = "HUGGINGFACE_TOKEN"
)

// CredentialSource records where a resolved credential came from.
type CredentialSource string

const (
	SourceEnvironment CredentialSource = "environment"
	SourceSecrets     CredentialSource = "secrets"
	SourceRequest     CredentialSource = "request"
)

// CredentialResolver resolves a credential by precedence: environment
// variable, then the secrets file, then a per-request override. The first
// non-empty value wins.
type CredentialResolver struct {
	secrets map[string]string
}

func NewCredentialResolver(secrets map[string]string) *CredentialResolver {
	if secrets == nil {
		secrets = map[string]string{}
	}
	return &CredentialResolver{secrets: secrets}
}

func (r *CredentialResolver) Resolve(name, override string) (string, CredentialSource, bool) {
	if v := os.Getenv(name); v != "" {
		return v, SourceEnvironment, true
	}
	if v := r.secrets[name]; v != "" {
		return v, SourceSecrets, true
	}
	if override != "" {
		return override, SourceRequest, true
	}
	return "", "", false
}
