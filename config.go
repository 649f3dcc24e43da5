package querylens

import (
	"fmt"
	"os"
	"regexp"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config holds named connection profiles loaded from querylens.yaml.
// Passwords are plain strings; sourcing them securely (usually via ${VAR}
// expansion from the environment) is the caller's responsibility.
type Config struct {
	DefaultProfile string             `yaml:"default_profile"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// Profile is one named connection target.
type Profile struct {
	Dialect  string `yaml:"dialect"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Path     string `yaml:"path"`    // file path for SQLite
	Timeout  int    `yaml:"timeout"` // connect timeout in seconds
}

// LoadConfig reads a configuration file, loading .env first and expanding
// ${VAR} / $VAR references in every profile field.
func LoadConfig(configPath string) (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("failed to load environment files: %w", err)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{Profiles: map[string]Profile{}}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config

	err = yaml.UnmarshalWithOptions(data, &config, yaml.Strict())
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	expandConfigEnvVars(&config)

	return &config, nil
}

// Profile looks up a named profile. An empty name resolves to the default
// profile. A missing profile is a NotFound error; this is the calling layer
// the driver contract delegates that error kind to.
func (c *Config) Profile(name string) (Profile, error) {
	if name == "" {
		name = c.DefaultProfile
	}
	if name == "" {
		return Profile{}, NewError(ErrorKindNotFound, "", "no profile name given and no default_profile configured")
	}

	profile, ok := c.Profiles[name]
	if !ok {
		return Profile{}, NewErrorf(ErrorKindNotFound, "connection profile %q not found", name)
	}

	return profile, nil
}

func validateConfig(config *Config) error {
	for name, profile := range config.Profiles {
		if profile.Dialect == "" {
			return NewErrorf(ErrorKindInvalidInput, "profile %q: dialect is required", name)
		}
		if _, err := ParseDialect(profile.Dialect); err != nil {
			return NewErrorf(ErrorKindInvalidInput, "profile %q: %s", name, err.Error())
		}
	}

	if config.DefaultProfile != "" {
		if _, ok := config.Profiles[config.DefaultProfile]; !ok {
			return NewErrorf(ErrorKindInvalidInput, "default_profile %q does not exist", config.DefaultProfile)
		}
	}

	return nil
}

func loadEnvFiles() error {
	if fileExists(".env") {
		err := godotenv.Load(".env")
		if err != nil {
			return fmt.Errorf("failed to load .env file: %w", err)
		}
	}

	return nil
}

// LoadEnvFile loads one explicit env file into the process environment before
// configuration expansion. Unlike the implicit .env, a missing file is an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}

var (
	bracedVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)
	bareVarPattern   = regexp.MustCompile(`\$([A-Za-z_][A-Za-z0-9_]*)`)
)

// expandEnvVars expands environment variables in the format ${VAR} or $VAR
func expandEnvVars(s string) string {
	s = bracedVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[2 : len(match)-1])
	})
	s = bareVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		return os.Getenv(match[1:])
	})

	return s
}

func expandConfigEnvVars(config *Config) {
	for name, profile := range config.Profiles {
		profile.Host = expandEnvVars(profile.Host)
		profile.Username = expandEnvVars(profile.Username)
		profile.Password = expandEnvVars(profile.Password)
		profile.Database = expandEnvVars(profile.Database)
		profile.Path = expandEnvVars(profile.Path)
		config.Profiles[name] = profile
	}
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}
