package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCanonicalizeEnvKey_UsesExistingCamelCaseKeys(t *testing.T) {
	existing := map[string]any{
		"postgres": map[string]any{
			"sslMode": "disable",
			"master": map[string]any{
				"userName": "user",
			},
		},
		"mail": map[string]any{
			"sendGrid": map[string]any{
				"apiKey": "",
			},
			"pubsub": map[string]any{
				"topicId": "",
			},
		},
		"secretKey": map[string]any{
			"token": "",
		},
	}

	tests := []struct {
		envKey string
		want   string
	}{
		{envKey: "POSTGRES_SSLMODE", want: "postgres.sslMode"},
		{envKey: "POSTGRES_MASTER_USERNAME", want: "postgres.master.userName"},
		{envKey: "MAIL_SENDGRID_APIKEY", want: "mail.sendGrid.apiKey"},
		{envKey: "MAIL_PUBSUB_TOPICID", want: "mail.pubsub.topicId"},
		{envKey: "SECRETKEY_TOKEN", want: "secretKey.token"},
		{envKey: "NEW_FEATURE_FLAG", want: "new.feature.flag"},
	}

	for _, tt := range tests {
		t.Run(tt.envKey, func(t *testing.T) {
			if got := canonicalizeEnvKey(tt.envKey, existing); got != tt.want {
				t.Fatalf("canonicalizeEnvKey(%q) = %q, want %q", tt.envKey, got, tt.want)
			}
		})
	}
}

func TestLoadWithEnv_EnvOverridesYAML(t *testing.T) {
	dir := t.TempDir()
	yamlBody := `
env:
  env: develop
  serviceName: spurt
http:
  port: 8080
  timeouts:
    readTimeout: 5s
secretKey:
  token: from-yaml
mail:
  provider: log
media:
  acceptedExtensions: [".png"]
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yamlBody), 0o600))
	t.Chdir(dir)
	t.Setenv("SECRETKEY_TOKEN", "from-env")
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("MAIL", "/var/mail/root")

	cfg, err := LoadWithEnv[Config]("config")
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.SecretKey.Token)
	assert.Equal(t, 9090, cfg.HTTP.Port)
	assert.Equal(t, 5*time.Second, cfg.HTTP.Timeouts.ReadTimeout)
	assert.Equal(t, "spurt", cfg.Env.ServiceName)
	require.NotNil(t, cfg.Mail)
	assert.Equal(t, "log", cfg.Mail.Provider)
	require.NotNil(t, cfg.Media)
	assert.Equal(t, []string{".png"}, cfg.Media.AcceptedExtensions)
}

func TestIsSection(t *testing.T) {
	existing := map[string]any{
		"mail": map[string]any{
			"sendGrid": map[string]any{"apiKey": ""},
			"provider": "log",
		},
	}

	assert.True(t, isSection(existing, "mail"))
	assert.True(t, isSection(existing, "mail.sendGrid"))
	assert.False(t, isSection(existing, "mail.provider"))
	assert.False(t, isSection(existing, "unknown.key"))
}

func TestLoadWithEnv_MissingFile(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := LoadWithEnv[Config]("config")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config file config.yaml not found")
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{}
	applyDefaults(cfg)

	assert.Equal(t, defaultMaxRequestBodySize, cfg.HTTP.MaxRequestBodySize)
	assert.Equal(t, "noreply@234spaces.com", cfg.Mail.FromAddress)
	assert.Equal(t, "234Spaces Admin", cfg.Mail.FromName)
	assert.Equal(t, 10*time.Second, cfg.Mail.SendTimeout)
	assert.Equal(t, int64(10<<20), cfg.Media.MaxUploadBytes)
	assert.Equal(t, []string{".jpg", ".jpeg", ".png"}, cfg.Media.AcceptedExtensions)
	assert.Equal(t, 256, cfg.QRCode.Size)
	assert.NotNil(t, cfg.Migration)
	assert.NotNil(t, cfg.Metrics)
}
