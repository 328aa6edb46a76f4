// Package config loads eccnsync configuration from config files, .env files
// and the environment. Credentials come back as an explicit value that
// callers hand to each adapter constructor.
package config

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/eccnsync/internal/jobs"
	"github.com/agentstation/eccnsync/internal/zoho"
	"github.com/agentstation/eccnsync/pkg/constants"
	"github.com/agentstation/eccnsync/pkg/errors"
)

// Credentials are the secrets each adapter needs.
type Credentials struct {
	Zoho zoho.Credentials
	// GoogleCredentialsFile is a service account key file for Sheets and Drive.
	GoogleCredentialsFile string
}

// Config holds the loaded configuration.
type Config struct {
	// ConfigFile is the config file used, empty when none was found.
	ConfigFile string
	// CredentialsFile is the JSON file holding zoho_params, when present.
	CredentialsFile string

	Credentials Credentials
	Jobs        []jobs.Job
	DryRun      bool
}

// Options controls where configuration is looked up.
type Options struct {
	// ConfigFile overrides the config file search.
	ConfigFile string
	// EnvFiles are loaded into the process environment before anything else.
	// Defaults to .env and .env.local.
	EnvFiles []string
	// SearchPaths are searched for eccnsync.yaml when ConfigFile is empty.
	// Defaults to the working directory and the home directory.
	SearchPaths []string
}

// envBindings maps config keys to the environment variables that override them.
var envBindings = map[string]string{
	"zoho.client_id":     "ZOHO_CLIENT_ID",
	"zoho.client_secret": "ZOHO_CLIENT_SECRET",
	"zoho.refresh_token": "ZOHO_REFRESH_TOKEN",
	"zoho.grant_type":    "ZOHO_GRANT_TYPE",
	"zoho.scope":         "ZOHO_SCOPE",
	"zoho.soid":          "ZOHO_SOID",
	"zoho.token_url":     "ZOHO_TOKEN_URL",
	"google_credentials": "GOOGLE_APPLICATION_CREDENTIALS",
}

// Load reads configuration in order of precedence:
// 1. Environment variables (ECCNSYNC_* and the provider variables)
// 2. .env files
// 3. Config file (eccnsync.yaml)
// 4. The credentials file (credentials.json, zoho_params)
// 5. Defaults
func Load(opts Options) (*Config, error) {
	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env", ".env.local"}
	}
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	v := viper.New()
	v.SetEnvPrefix(constants.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, errors.WrapConfig("config", err)
		}
	}
	v.SetDefault("credentials_file", "credentials.json")
	v.SetDefault("dry_run", false)

	if err := readConfigFile(v, opts); err != nil {
		return nil, err
	}

	cfg := &Config{
		ConfigFile:      v.ConfigFileUsed(),
		CredentialsFile: v.GetString("credentials_file"),
		DryRun:          v.GetBool("dry_run"),
	}

	zc, err := loadCredentialsFile(cfg.CredentialsFile)
	if err != nil {
		return nil, err
	}
	if cfg.CredentialsFile != "" && zc == (zoho.Credentials{}) {
		cfg.CredentialsFile = ""
	}
	overlayZoho(&zc, v)
	cfg.Credentials = Credentials{
		Zoho:                  zc,
		GoogleCredentialsFile: v.GetString("google_credentials"),
	}

	if v.IsSet("jobs") {
		if err := v.UnmarshalKey("jobs", &cfg.Jobs); err != nil {
			return nil, errors.NewConfigError("config", "decoding jobs", err)
		}
	}
	return cfg, nil
}

// Catalog returns the built-in jobs overlaid with the configured ones.
func (c *Config) Catalog() (*jobs.Catalog, error) {
	catalog, err := jobs.Builtin()
	if err != nil {
		return nil, err
	}
	if err := catalog.Merge(c.Jobs...); err != nil {
		return nil, err
	}
	return catalog, nil
}

// Validate checks the credentials needed for a live sync are present.
func (c Credentials) Validate() error {
	if err := c.Zoho.Validate(); err != nil {
		return err
	}
	if c.GoogleCredentialsFile == "" {
		return errors.NewConfigError("config",
			"google service account file not configured (set google_credentials or GOOGLE_APPLICATION_CREDENTIALS)", nil)
	}
	if _, err := os.Stat(c.GoogleCredentialsFile); err != nil {
		return errors.NewConfigError("config", "google service account file unreadable", err)
	}
	return nil
}

func readConfigFile(v *viper.Viper, opts Options) error {
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			return errors.NewConfigError("config", "reading "+opts.ConfigFile, err)
		}
		return nil
	}

	paths := opts.SearchPaths
	if paths == nil {
		paths = []string{"."}
		if home, err := os.UserHomeDir(); err == nil {
			paths = append(paths, home)
		}
	}
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetConfigType("yaml")
	v.SetConfigName(constants.DefaultConfigName)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return errors.NewConfigError("config", "reading config file", err)
	}
	return nil
}

// loadCredentialsFile reads the zoho_params block of a credentials JSON file.
// A missing file is not an error; the environment may supply everything.
func loadCredentialsFile(path string) (zoho.Credentials, error) {
	var zc zoho.Credentials
	if path == "" {
		return zc, nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return zc, nil
	}

	cv := viper.New()
	cv.SetConfigFile(path)
	cv.SetConfigType("json")
	if err := cv.ReadInConfig(); err != nil {
		return zc, errors.NewConfigError("config", "reading credentials file "+path, err)
	}
	if err := cv.UnmarshalKey("zoho_params", &zc); err != nil {
		return zc, errors.NewConfigError("config", "decoding zoho_params in "+path, err)
	}
	return zc, nil
}

// overlayZoho applies zoho.* config keys and their environment variables.
func overlayZoho(zc *zoho.Credentials, v *viper.Viper) {
	set := func(dst *string, key string) {
		if s := v.GetString(key); s != "" {
			*dst = s
		}
	}
	set(&zc.ClientID, "zoho.client_id")
	set(&zc.ClientSecret, "zoho.client_secret")
	set(&zc.RefreshToken, "zoho.refresh_token")
	set(&zc.GrantType, "zoho.grant_type")
	set(&zc.Scope, "zoho.scope")
	set(&zc.SOID, "zoho.soid")
	set(&zc.TokenURL, "zoho.token_url")
}
