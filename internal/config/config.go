// Package config builds the handler configuration from injected settings.
package config

import (
	"fmt"
	"strings"
)

const (
	DefaultBranch        = "main"
	DefaultDir           = "data"
	DefaultAllowedOrigin = "*"
)

// Config is the per-request view of the environment. It is built fresh for
// every invocation and never mutated.
type Config struct {
	Token         string // GH_TOKEN
	Owner         string // GH_OWNER
	Repo          string // GH_REPO
	Branch        string // GH_BRANCH
	Dir           string // GH_DIR
	AllowedOrigin string // ALLOWED_ORIGIN
	APIToken      string // API_TOKEN, optional bearer secret for callers
	BaseURL       string // GH_API_URL, optional GitHub API base
}

// MissingError reports required settings that were empty or unset.
type MissingError struct {
	Keys []string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("Missing GH_* env vars: %s", strings.Join(e.Keys, ", "))
}

// Load reads every setting through getenv. os.Getenv is the usual source;
// tests pass a map lookup instead.
func Load(getenv func(string) string) Config {
	return Config{
		Token:         get(getenv, "GH_TOKEN", ""),
		Owner:         get(getenv, "GH_OWNER", ""),
		Repo:          get(getenv, "GH_REPO", ""),
		Branch:        get(getenv, "GH_BRANCH", DefaultBranch),
		Dir:           get(getenv, "GH_DIR", DefaultDir),
		AllowedOrigin: get(getenv, "ALLOWED_ORIGIN", DefaultAllowedOrigin),
		APIToken:      get(getenv, "API_TOKEN", ""),
		BaseURL:       get(getenv, "GH_API_URL", ""),
	}
}

// Validate checks the settings needed before any GitHub call is made.
func (c Config) Validate() error {
	var missing []string
	if c.Token == "" {
		missing = append(missing, "GH_TOKEN")
	}
	if c.Owner == "" {
		missing = append(missing, "GH_OWNER")
	}
	if c.Repo == "" {
		missing = append(missing, "GH_REPO")
	}
	if len(missing) > 0 {
		return &MissingError{Keys: missing}
	}
	return nil
}

// MapEnv adapts a map to the getenv signature Load expects.
func MapEnv(m map[string]string) func(string) string {
	return func(key string) string { return m[key] }
}

func get(getenv func(string) string, key, def string) string {
	if getenv == nil {
		return def
	}
	v := strings.TrimSpace(getenv(key))
	if v == "" {
		return def
	}
	return v
}
