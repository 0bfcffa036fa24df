package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/yukikurage/kanban-board-api/internal/constants"
	"gopkg.in/yaml.v3"
)

type Config struct {
	DBDriver   string `yaml:"db_driver"`
	DBHost     string `yaml:"db_host"`
	DBPort     string `yaml:"db_port"`
	DBUser     string `yaml:"db_user"`
	DBPassword string `yaml:"db_password"`
	DBName     string `yaml:"db_name"`
	SQLitePath string `yaml:"sqlite_path"`

	RedisHost     string `yaml:"redis_host"`
	RedisPort     string `yaml:"redis_port"`
	SessionSecret string `yaml:"session_secret"`
	GinMode       string `yaml:"gin_mode"`
	ServerAddr    string `yaml:"server_addr"`
	OpenAIAPIKey  string `yaml:"openai_api_key"`

	// PasswordHashScheme is "bcrypt" or "sha256" (legacy, unsalted).
	PasswordHashScheme          string `yaml:"password_hash_scheme"`
	DefaultCollaboratorPassword string `yaml:"default_collaborator_password"`
	BootstrapAdminUsername      string `yaml:"bootstrap_admin_username"`
	BootstrapAdminPassword      string `yaml:"bootstrap_admin_password"`

	DueSoonDays      int   `yaml:"due_soon_days"`
	CardWarningDays  int   `yaml:"card_warning_days"`
	MaxEvidenceBytes int64 `yaml:"max_evidence_bytes"`
}

// Load builds the configuration from defaults, an optional YAML file named by
// CONFIG_FILE, and environment variables, in that order of precedence.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.MergeFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DBDriver:                    "mysql",
		DBHost:                      "localhost",
		DBPort:                      "3306",
		DBUser:                      "kanbanuser",
		DBPassword:                  "kanbanpassword",
		DBName:                      "kanban",
		SQLitePath:                  "kanban_db/kanban.db",
		RedisHost:                   "localhost",
		RedisPort:                   "6379",
		SessionSecret:               "default-secret-key-change-me",
		GinMode:                     "debug",
		ServerAddr:                  ":8080",
		PasswordHashScheme:          "bcrypt",
		DefaultCollaboratorPassword: "colab_nueva_tarea",
		DueSoonDays:                 constants.DefaultDueSoonDays,
		CardWarningDays:             constants.DefaultCardWarningDays,
		MaxEvidenceBytes:            constants.DefaultMaxEvidenceBytes,
	}
}

// MergeFile overlays the values present in a YAML file onto cfg.
func (c *Config) MergeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate rejects settings the server cannot run with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "mysql", "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.PasswordHashScheme {
	case "bcrypt", "sha256":
	default:
		return fmt.Errorf("unsupported PASSWORD_HASH_SCHEME %q", c.PasswordHashScheme)
	}
	if c.DueSoonDays < 0 || c.CardWarningDays < 0 {
		return fmt.Errorf("due thresholds must not be negative")
	}
	if c.MaxEvidenceBytes <= 0 {
		return fmt.Errorf("MAX_EVIDENCE_BYTES must be positive")
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.DBDriver = getEnv("DB_DRIVER", c.DBDriver)
	c.DBHost = getEnv("DB_HOST", c.DBHost)
	c.DBPort = getEnv("DB_PORT", c.DBPort)
	c.DBUser = getEnv("DB_USER", c.DBUser)
	c.DBPassword = getEnv("DB_PASSWORD", c.DBPassword)
	c.DBName = getEnv("DB_NAME", c.DBName)
	c.SQLitePath = getEnv("SQLITE_PATH", c.SQLitePath)
	c.RedisHost = getEnv("REDIS_HOST", c.RedisHost)
	c.RedisPort = getEnv("REDIS_PORT", c.RedisPort)
	c.SessionSecret = getEnv("SESSION_SECRET", c.SessionSecret)
	c.GinMode = getEnv("GIN_MODE", c.GinMode)
	c.ServerAddr = getEnv("SERVER_ADDR", c.ServerAddr)
	c.OpenAIAPIKey = getEnv("OPENAI_API_KEY", c.OpenAIAPIKey)
	c.PasswordHashScheme = getEnv("PASSWORD_HASH_SCHEME", c.PasswordHashScheme)
	c.DefaultCollaboratorPassword = getEnv("DEFAULT_COLLABORATOR_PASSWORD", c.DefaultCollaboratorPassword)
	c.BootstrapAdminUsername = getEnv("BOOTSTRAP_ADMIN_USERNAME", c.BootstrapAdminUsername)
	c.BootstrapAdminPassword = getEnv("BOOTSTRAP_ADMIN_PASSWORD", c.BootstrapAdminPassword)

	var err error
	if c.DueSoonDays, err = getEnvInt("DUE_SOON_DAYS", c.DueSoonDays); err != nil {
		return err
	}
	if c.CardWarningDays, err = getEnvInt("CARD_WARNING_DAYS", c.CardWarningDays); err != nil {
		return err
	}
	maxEvidence, err := getEnvInt("MAX_EVIDENCE_BYTES", int(c.MaxEvidenceBytes))
	if err != nil {
		return err
	}
	c.MaxEvidenceBytes = int64(maxEvidence)
	return nil
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: must be an integer", key, value)
	}
	return n, nil
}
