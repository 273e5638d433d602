// Package buildcfg generates the public widget configuration artifact at
// build time.
//
// The generated configuration exposes only non-secret flags: boolean
// indicators for which credentials the deployment holds, the host API base
// URL, optional organization and team identifiers, and behavior toggles.
// The secrets themselves stay server-side and are represented as explicit
// null placeholders so the widget knows to use the proxy transport.
package buildcfg

import (
	"encoding/json"
	"fmt"
	"os"
)

// Environment variable names read by Generate.
const (
	EnvHostToken     = "MISSIVE_API_TOKEN"
	EnvCompletionKey = "OPEN_AI_API"
	EnvHostBaseURL   = "MISSIVE_API_BASE_URL"
	EnvDebugMode     = "MISSIVE_DEBUG_MODE"
	EnvAutoAssign    = "MISSIVE_AUTO_ASSIGN"
	EnvOrgID         = "MISSIVE_ORG_ID"
	EnvTeamID        = "MISSIVE_TEAM_ID"

	defaultHostBaseURL = "https://public.missiveapp.com"
)

// PublicConfig is the non-secret configuration shipped to the widget.
// Secret fields are always null in the generated artifact.
type PublicConfig struct {
	// APIToken is always null; the real token lives server-side.
	APIToken *string `json:"apiToken"`

	// APIBaseURL is the host API endpoint prefix.
	APIBaseURL string `json:"apiBaseUrl"`

	// DebugMode enables verbose widget logging.
	DebugMode bool `json:"debugMode"`

	// AutoAssignToCurrentUser controls whether created tasks default to the
	// current user.
	AutoAssignToCurrentUser bool `json:"autoAssignToCurrentUser"`

	// OrganizationID is the host organization, when configured.
	OrganizationID *string `json:"organizationId"`

	// TeamID is the host team, when configured.
	TeamID *string `json:"teamId"`

	// OpenAIAPIKey is always null; the real key lives server-side.
	OpenAIAPIKey *string `json:"openaiApiKey"`

	// HasAPIToken indicates the deployment holds a host API token.
	HasAPIToken bool `json:"hasApiToken"`

	// HasOpenAIKey indicates the deployment holds a completion API key.
	HasOpenAIKey bool `json:"hasOpenaiKey"`
}

// MissingTokenError is returned when the required host API token is absent
// from the environment. The CLI maps it to exit code 1.
type MissingTokenError struct {
	Variable string
}

func (e *MissingTokenError) Error() string {
	return fmt.Sprintf("required environment variable %s is not set", e.Variable)
}

// FromEnv builds a PublicConfig from the process environment. The host API
// token is required; the completion key is optional (the widget falls back
// to its URL-parameter override when absent).
func FromEnv() (*PublicConfig, error) {
	hostToken := os.Getenv(EnvHostToken)
	if hostToken == "" {
		return nil, &MissingTokenError{Variable: EnvHostToken}
	}

	cfg := &PublicConfig{
		APIBaseURL:              defaultHostBaseURL,
		DebugMode:               os.Getenv(EnvDebugMode) == "true",
		AutoAssignToCurrentUser: os.Getenv(EnvAutoAssign) != "false",
		HasAPIToken:             true,
		HasOpenAIKey:            os.Getenv(EnvCompletionKey) != "",
	}

	if baseURL := os.Getenv(EnvHostBaseURL); baseURL != "" {
		cfg.APIBaseURL = baseURL
	}
	if orgID := os.Getenv(EnvOrgID); orgID != "" {
		cfg.OrganizationID = &orgID
	}
	if teamID := os.Getenv(EnvTeamID); teamID != "" {
		cfg.TeamID = &teamID
	}

	return cfg, nil
}

// Render serializes the configuration as indented JSON with a trailing
// newline, suitable for writing to the published artifact.
func (c *PublicConfig) Render() ([]byte, error) {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding public config: %w", err)
	}
	return append(data, '\n'), nil
}

// Generate builds the configuration from the environment and writes it to
// path.
func Generate(path string) (*PublicConfig, error) {
	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	data, err := cfg.Render()
	if err != nil {
		return nil, err
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("writing public config %s: %w", path, err)
	}
	return cfg, nil
}
