// Package config loads and validates the settings every recruiter command
// needs before it may touch a candidate application.
package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"

	"github.com/spigell/recruiter/internal/roles"
	"github.com/spigell/recruiter/internal/secrets"
)

const (
	EnvPrefix = "RECRUITER"

	ProviderFireworks = "fireworks"
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"

	EmailSMTP  = "smtp"
	EmailGmail = "gmail"
)

type Config struct {
	Company string       `mapstructure:"company" validate:"required" label:"Company Name"`
	Role    string       `mapstructure:"role" validate:"required" label:"Role"`
	AI      AIConfig     `mapstructure:"ai"`
	Zoom    ZoomConfig   `mapstructure:"zoom"`
	Email   EmailConfig  `mapstructure:"email"`
	Server  ServerConfig `mapstructure:"server"`
}

type AIConfig struct {
	Provider   string        `mapstructure:"provider" validate:"oneof=fireworks openai gemini" label:"AI Provider"`
	Model      string        `mapstructure:"model"`
	BaseURL    string        `mapstructure:"base-url"`
	APIKey     string        `mapstructure:"api-key" validate:"required" label:"AI API Key"`
	APIKeyFile string        `mapstructure:"api-key-file"`
	Timeout    time.Duration `mapstructure:"timeout"`
	// MaxLogLength bounds prompt and response previews in debug logs.
	MaxLogLength int `mapstructure:"max-log-length"`
}

type ZoomConfig struct {
	AccountID        string        `mapstructure:"account-id" validate:"required" label:"Zoom Account ID"`
	ClientID         string        `mapstructure:"client-id" validate:"required" label:"Zoom Client ID"`
	ClientSecret     string        `mapstructure:"client-secret" validate:"required" label:"Zoom Client Secret"`
	ClientSecretFile string        `mapstructure:"client-secret-file"`
	APIURL           string        `mapstructure:"api-url"`
	TokenURL         string        `mapstructure:"token-url"`
	Timeout          time.Duration `mapstructure:"timeout"`
}

type EmailConfig struct {
	Provider        string        `mapstructure:"provider" validate:"oneof=smtp gmail" label:"Email Provider"`
	Sender          string        `mapstructure:"sender" validate:"required,email" label:"Email Sender"`
	Password        string        `mapstructure:"password" validate:"required_if=Provider smtp" label:"Email Password"`
	PasswordFile    string        `mapstructure:"password-file"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	CredentialsFile string        `mapstructure:"credentials-file" validate:"required_if=Provider gmail" label:"Gmail Credentials File"`
	TokenFile       string        `mapstructure:"token-file" validate:"required_if=Provider gmail" label:"Gmail Token File"`
	Timeout         time.Duration `mapstructure:"timeout"`
}

type ServerConfig struct {
	Listen     string        `mapstructure:"listen"`
	SessionTTL time.Duration `mapstructure:"session-ttl"`
}

// ErrIncomplete is matched by every IncompleteError.
var ErrIncomplete = errors.New("configuration incomplete")

// IncompleteError lists every required setting that is missing or unusable.
// Items are reported by their display names in declaration order.
type IncompleteError struct {
	Missing []string
	Invalid []string
}

func (e *IncompleteError) Error() string {
	parts := make([]string, 0, 2)
	if len(e.Missing) > 0 {
		parts = append(parts, "missing "+strings.Join(e.Missing, ", "))
	}
	if len(e.Invalid) > 0 {
		parts = append(parts, "invalid "+strings.Join(e.Invalid, ", "))
	}
	return fmt.Sprintf("%s: %s", ErrIncomplete, strings.Join(parts, "; "))
}

func (e *IncompleteError) Unwrap() error { return ErrIncomplete }

// Items returns missing and invalid items together.
func (e *IncompleteError) Items() []string {
	out := make([]string, 0, len(e.Missing)+len(e.Invalid))
	out = append(out, e.Missing...)
	return append(out, e.Invalid...)
}

// SetDefaults registers every known key so that environment variables are
// honoured by Unmarshal even when the key is absent from the config file.
func SetDefaults(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	defaults := map[string]any{
		"company":                 "",
		"role":                    "",
		"ai.provider":             ProviderFireworks,
		"ai.model":                "",
		"ai.base-url":             "",
		"ai.api-key":              "",
		"ai.api-key-file":         "",
		"ai.timeout":              "60s",
		"ai.max-log-length":       200,
		"zoom.account-id":         "",
		"zoom.client-id":          "",
		"zoom.client-secret":      "",
		"zoom.client-secret-file": "",
		"zoom.api-url":            "",
		"zoom.token-url":          "",
		"zoom.timeout":            "10s",
		"email.provider":          EmailSMTP,
		"email.sender":            "",
		"email.password":          "",
		"email.password-file":     "",
		"email.host":              "smtp.gmail.com",
		"email.port":              465,
		"email.credentials-file":  "",
		"email.token-file":        "",
		"email.timeout":           "30s",
		"server.listen":           ":8080",
		"server.session-ttl":      "30m",
	}
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
}

// Load decodes the configuration from v and resolves file-backed secrets.
// It does not validate; callers decide when an incomplete config is fatal.
func Load(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Resolve(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Resolve replaces secret values with the content of their *-file settings.
func (c *Config) Resolve() error {
	var err error

	c.AI.APIKey, err = secrets.LoadOptional(secrets.Source{
		Name:  "ai api key",
		Value: c.AI.APIKey,
		File:  c.AI.APIKeyFile,
	})
	if err != nil {
		return err
	}

	c.Zoom.ClientSecret, err = secrets.LoadOptional(secrets.Source{
		Name:  "zoom client secret",
		Value: c.Zoom.ClientSecret,
		File:  c.Zoom.ClientSecretFile,
	})
	if err != nil {
		return err
	}

	c.Email.Password, err = secrets.LoadOptional(secrets.Source{
		Name:  "email password",
		Value: c.Email.Password,
		File:  c.Email.PasswordFile,
	})
	return err
}

// Validate reports every missing required item in one IncompleteError. When
// the set is complete the role identifier is checked against the catalog.
func (c *Config) Validate() error {
	normalize(c)

	err := newValidator().Struct(c)
	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) {
		incomplete := &IncompleteError{}
		for _, fe := range fieldErrs {
			switch fe.Tag() {
			case "required", "required_if":
				incomplete.Missing = append(incomplete.Missing, fe.Field())
			default:
				incomplete.Invalid = append(incomplete.Invalid, fmt.Sprintf("%s (%s)", fe.Field(), fe.Tag()))
			}
		}
		return incomplete
	}
	if err != nil {
		return fmt.Errorf("validate config: %w", err)
	}

	if _, err := roles.Parse(c.Role); err != nil {
		return err
	}

	return nil
}

// RoleID returns the configured role. Call it only after Validate succeeded.
func (c *Config) RoleID() roles.Role {
	return roles.Role(c.Role)
}

func normalize(c *Config) {
	c.Company = strings.TrimSpace(c.Company)
	c.Role = strings.TrimSpace(c.Role)
	c.AI.Provider = strings.ToLower(strings.TrimSpace(c.AI.Provider))
	c.Email.Provider = strings.ToLower(strings.TrimSpace(c.Email.Provider))
	c.Email.Sender = strings.TrimSpace(c.Email.Sender)
	c.Zoom.AccountID = strings.TrimSpace(c.Zoom.AccountID)
	c.Zoom.ClientID = strings.TrimSpace(c.Zoom.ClientID)
}

func newValidator() *validator.Validate {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(field reflect.StructField) string {
		if label := field.Tag.Get("label"); label != "" {
			return label
		}
		return field.Name
	})
	return validate
}
