package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spigell/recruiter/internal/roles"
)

func completeConfig() *Config {
	return &Config{
		Company: "Acme",
		Role:    "Backend_Engineer",
		AI:      AIConfig{Provider: ProviderFireworks, APIKey: "fw-key"},
		Zoom:    ZoomConfig{AccountID: "acc", ClientID: "cid", ClientSecret: "secret"},
		Email:   EmailConfig{Provider: EmailSMTP, Sender: "hr@acme.test", Password: "app-pass"},
	}
}

func TestValidateComplete(t *testing.T) {
	cfg := completeConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, roles.BackendEngineer, cfg.RoleID())
}

func TestValidateReportsAllMissingItems(t *testing.T) {
	cfg := &Config{
		AI:    AIConfig{Provider: ProviderFireworks},
		Email: EmailConfig{Provider: EmailSMTP},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncomplete))

	var incomplete *IncompleteError
	require.True(t, errors.As(err, &incomplete))
	assert.Equal(t, []string{
		"Company Name",
		"Role",
		"AI API Key",
		"Zoom Account ID",
		"Zoom Client ID",
		"Zoom Client Secret",
		"Email Sender",
		"Email Password",
	}, incomplete.Missing)
	assert.Empty(t, incomplete.Invalid)
	assert.Contains(t, err.Error(), "missing Company Name, Role")
}

func TestValidateGmailRequiresOAuthFiles(t *testing.T) {
	cfg := completeConfig()
	cfg.Email = EmailConfig{Provider: EmailGmail, Sender: "hr@acme.test"}

	var incomplete *IncompleteError
	require.ErrorAs(t, cfg.Validate(), &incomplete)
	assert.Equal(t, []string{"Gmail Credentials File", "Gmail Token File"}, incomplete.Missing)
}

func TestValidateInvalidValues(t *testing.T) {
	cfg := completeConfig()
	cfg.Email.Sender = "not-an-address"
	cfg.AI.Provider = "anthropic"

	var incomplete *IncompleteError
	require.ErrorAs(t, cfg.Validate(), &incomplete)
	assert.Empty(t, incomplete.Missing)
	assert.Equal(t, []string{"AI Provider (oneof)", "Email Sender (email)"}, incomplete.Invalid)
	assert.Len(t, incomplete.Items(), 2)
}

func TestValidateUnknownRole(t *testing.T) {
	cfg := completeConfig()
	cfg.Role = "Data_Scientist"

	err := cfg.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, roles.ErrNotFound))
	assert.False(t, errors.Is(err, ErrIncomplete))
}

func TestLoadFromFileEnvAndSecrets(t *testing.T) {
	dir := t.TempDir()
	secretPath := filepath.Join(dir, "zoom-secret")
	require.NoError(t, os.WriteFile(secretPath, []byte("zoom-from-file\n"), 0o600))

	configPath := filepath.Join(dir, "recruiter.yaml")
	require.NoError(t, os.WriteFile(configPath, []byte(`
company: Acme
role: Frontend_Engineer
ai:
  provider: gemini
  api-key: gem-key
  timeout: 5s
zoom:
  account-id: acc
  client-id: cid
  client-secret-file: `+secretPath+`
email:
  sender: hr@acme.test
`), 0o600))

	t.Setenv("RECRUITER_EMAIL_PASSWORD", "from-env")

	v := viper.New()
	SetDefaults(v)
	v.SetConfigFile(configPath)
	require.NoError(t, v.ReadInConfig())

	cfg, err := Load(v)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, ProviderGemini, cfg.AI.Provider)
	assert.Equal(t, 5*time.Second, cfg.AI.Timeout)
	assert.Equal(t, "zoom-from-file", cfg.Zoom.ClientSecret)
	assert.Equal(t, "from-env", cfg.Email.Password)
	assert.Equal(t, 465, cfg.Email.Port)
	assert.Equal(t, "smtp.gmail.com", cfg.Email.Host)
	assert.Equal(t, 10*time.Second, cfg.Zoom.Timeout)
	assert.Equal(t, roles.FrontendEngineer, cfg.RoleID())
}

func TestLoadUnreadableSecretFile(t *testing.T) {
	v := viper.New()
	SetDefaults(v)
	v.Set("ai.api-key-file", filepath.Join(t.TempDir(), "missing"))

	_, err := Load(v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ai api key")
}
