package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
	"github.com/slighter12/go-lib/database/postgres"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "12MB"
	defaultMailFromAddress    = "noreply@234spaces.com"
	defaultMailFromName       = "234Spaces Admin"
	defaultMailSendTimeout    = 10 * time.Second
	defaultMaxUploadBytes     = 10 << 20
	defaultQRCodeSize         = 256
)

var defaultAcceptedExtensions = []string{".jpg", ".jpeg", ".png"}

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port int `json:"port" yaml:"port"`
		// MaxRequestBodySize must leave room for photo uploads (multipart overhead included).
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Postgres *postgres.DBConn `json:"postgres" yaml:"postgres" mapstructure:"postgres"`

	Migration *MigrationConfig `json:"migration" yaml:"migration"`

	SecretKey SecretKeyConfig `json:"secretKey" yaml:"secretKey"`

	App AppConfig `json:"app" yaml:"app"`

	// Mail configures where confirmation emails are delivered
	Mail *MailConfig `json:"mail" yaml:"mail"`

	// Media configures the remote host for event photos
	Media *MediaConfig `json:"media" yaml:"media"`

	// QRCode configuration for event share codes
	QRCode *QRCodeConfig `json:"qrcode" yaml:"qrcode"`

	Metrics *MetricsConfig `json:"metrics" yaml:"metrics"`
}

// SecretKeyConfig holds signing secrets.
type SecretKeyConfig struct {
	Token string `json:"token" yaml:"token"`
}

// AppConfig describes the public face of the application.
type AppConfig struct {
	// PublicOrigin is used for confirmation links when a request carries no Origin header
	PublicOrigin string `json:"publicOrigin" yaml:"publicOrigin"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// MigrationConfig controls schema migration on startup
type MigrationConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// MailConfig defines outbound email delivery
type MailConfig struct {
	// Provider type: "log", "sendgrid", "pubsub" or "local"
	Provider    string        `json:"provider" yaml:"provider"`
	FromAddress string        `json:"fromAddress" yaml:"fromAddress"`
	FromName    string        `json:"fromName" yaml:"fromName"`
	SendTimeout time.Duration `json:"sendTimeout" yaml:"sendTimeout"`

	SendGrid SendGridConfig `json:"sendGrid" yaml:"sendGrid"`
	PubSub   PubSubConfig   `json:"pubsub" yaml:"pubsub"`

	// Mail worker push endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`

	// VerifyPush enables OIDC verification of Pub/Sub push requests in the mail worker
	VerifyPush bool `json:"verifyPush" yaml:"verifyPush"`

	// PushAudience is the OIDC audience Pub/Sub signs push tokens for.
	// When empty the worker derives it from the request URL.
	PushAudience string `json:"pushAudience" yaml:"pushAudience"`
}

// SendGridConfig defines the SendGrid v3 API account
type SendGridConfig struct {
	APIKey string `json:"apiKey" yaml:"apiKey"`
	// Endpoint overrides the API host (scheme and authority), mainly for tests and sandboxes
	Endpoint string `json:"endpoint" yaml:"endpoint"`
}

// PubSubConfig defines the Google Pub/Sub topic that queues mail jobs
type PubSubConfig struct {
	ProjectID string `json:"projectId" yaml:"projectId"`
	TopicID   string `json:"topicId" yaml:"topicId"`
	// Service account key file; application default credentials are used when empty
	CredentialsPath string `json:"credentialsPath" yaml:"credentialsPath"`
}

// MediaConfig defines the photo host
type MediaConfig struct {
	// Provider type: "blob" for gocloud bucket URLs or "s3" for the AWS SDK
	Provider string `json:"provider" yaml:"provider"`

	// BucketURL is a gocloud URL such as mem://, file:///var/spurt or s3://bucket?region=eu-west-1
	BucketURL string `json:"bucketUrl" yaml:"bucketUrl"`

	// PublicBaseURL prefixes object keys to build the URI stored on photos
	PublicBaseURL string `json:"publicBaseUrl" yaml:"publicBaseUrl"`

	MaxUploadBytes     int64    `json:"maxUploadBytes" yaml:"maxUploadBytes"`
	AcceptedExtensions []string `json:"acceptedExtensions" yaml:"acceptedExtensions"`

	S3 S3Config `json:"s3" yaml:"s3"`
}

// S3Config defines an S3 compatible bucket (AWS or MinIO)
type S3Config struct {
	Region       string `json:"region" yaml:"region"`
	Bucket       string `json:"bucket" yaml:"bucket"`
	Endpoint     string `json:"endpoint" yaml:"endpoint"`
	AccessKey    string `json:"accessKey" yaml:"accessKey"`
	SecretKey    string `json:"secretKey" yaml:"secretKey"`
	UsePathStyle bool   `json:"usePathStyle" yaml:"usePathStyle"`
}

// QRCodeConfig defines QR code generation configuration
type QRCodeConfig struct {
	Size                 int    `json:"size" yaml:"size"`
	ErrorCorrectionLevel string `json:"errorCorrectionLevel" yaml:"errorCorrectionLevel"`
}

// MetricsConfig toggles the prometheus endpoint
type MetricsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// LoadWithEnv loads .yaml files through koanf.
func LoadWithEnv[T any](currEnv string, configPath ...string) (*T, error) {
	cfg := new(T)
	koanfInstance := koanf.New(".")

	// Build list of paths to search for config file
	searchPaths := []string{defaultPath}
	if len(configPath) != 0 {
		pwd, err := os.Getwd()
		if err != nil {
			return nil, errors.Wrap(err, "os.Getwd")
		}
		for _, path := range configPath {
			searchPaths = append(searchPaths, filepath.Join(pwd, path))
		}
	}

	configFile, found := findConfigFile(searchPaths, currEnv)
	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Environment variables override YAML values.
	// Example: SECRETKEY_TOKEN -> secretKey.token, MAIL_SENDGRID_APIKEY -> mail.sendGrid.apiKey
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			key := canonicalizeEnvKey(k, existingConfigMap)
			// A scalar must not replace a whole section (e.g. the shell's MAIL=/var/mail/user).
			if isSection(existingConfigMap, key) {
				return "", nil
			}

			return key, v
		},
	}), nil); err != nil {
		return nil, errors.Wrap(err, "load env variables failed")
	}

	// Unmarshal into the config struct (case-insensitive to match env vars)
	if err := koanfInstance.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				mapstructure.StringToSliceHookFunc(","),
			),
			MatchName: func(mapKey, fieldName string) bool {
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func findConfigFile(searchPaths []string, currEnv string) (string, bool) {
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			return candidate, true
		}
	}

	return "", false
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	// Build replicas from environment variables (POSTGRES_REPLICAS_0_HOST, POSTGRES_REPLICAS_0_PORT, etc.)
	if cfg.Postgres != nil {
		if replicas := buildReplicasFromEnv(); len(replicas) > 0 {
			cfg.Postgres.Replicas = replicas
		}
	}

	return cfg, nil
}

// applyDefaults fills optional sections so consumers never see nil pointers.
func applyDefaults(cfg *Config) {
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}

	if cfg.Migration == nil {
		cfg.Migration = &MigrationConfig{}
	}

	if cfg.Mail == nil {
		cfg.Mail = &MailConfig{}
	}
	if cfg.Mail.FromAddress == "" {
		cfg.Mail.FromAddress = defaultMailFromAddress
	}
	if cfg.Mail.FromName == "" {
		cfg.Mail.FromName = defaultMailFromName
	}
	if cfg.Mail.SendTimeout <= 0 {
		cfg.Mail.SendTimeout = defaultMailSendTimeout
	}

	if cfg.Media == nil {
		cfg.Media = &MediaConfig{}
	}
	if cfg.Media.MaxUploadBytes <= 0 {
		cfg.Media.MaxUploadBytes = defaultMaxUploadBytes
	}
	if len(cfg.Media.AcceptedExtensions) == 0 {
		cfg.Media.AcceptedExtensions = append([]string(nil), defaultAcceptedExtensions...)
	}

	if cfg.QRCode == nil {
		cfg.QRCode = &QRCodeConfig{}
	}
	if cfg.QRCode.Size <= 0 {
		cfg.QRCode.Size = defaultQRCodeSize
	}

	if cfg.Metrics == nil {
		cfg.Metrics = &MetricsConfig{}
	}
}

func isSection(existing map[string]any, key string) bool {
	current := existing
	var value any = existing
	for _, segment := range strings.Split(key, ".") {
		if current == nil {
			return false
		}
		v, ok := current[segment]
		if !ok {
			return false
		}
		value = v
		current, _ = v.(map[string]any)
	}
	_, isMap := value.(map[string]any)

	return isMap
}

func canonicalizeEnvKey(rawKey string, existing map[string]any) string {
	segments := strings.Split(strings.ToLower(rawKey), "_")
	canonical := make([]string, 0, len(segments))
	current := existing

	for _, segment := range segments {
		if segment == "" {
			continue
		}

		if matched, next, ok := findExistingSegment(current, segment); ok {
			canonical = append(canonical, matched)
			current = next
		} else {
			canonical = append(canonical, segment)
			current = nil
		}
	}

	return strings.Join(canonical, ".")
}

func findExistingSegment(current map[string]any, segment string) (matched string, next map[string]any, ok bool) {
	if len(current) == 0 {
		return "", nil, false
	}

	needle := normalizeToken(segment)
	for key, value := range current {
		if normalizeToken(key) != needle {
			continue
		}

		child, _ := value.(map[string]any)

		return key, child, true
	}

	return "", nil, false
}

func normalizeToken(s string) string {
	var normalized strings.Builder
	normalized.Grow(len(s))

	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			continue
		}
		normalized.WriteRune(unicode.ToLower(r))
	}

	return normalized.String()
}

// buildReplicasFromEnv builds the replicas slice from environment variables.
// Environment variable format: POSTGRES_REPLICAS_{index}_{field}
func buildReplicasFromEnv() []postgres.ConnectionConfig {
	var replicas []postgres.ConnectionConfig

	for i := 0; ; i++ {
		prefix := "POSTGRES_REPLICAS_" + strconv.Itoa(i) + "_"

		host := os.Getenv(prefix + "HOST")
		port := os.Getenv(prefix + "PORT")
		if host == "" || port == "" {
			break
		}

		replicas = append(replicas, postgres.ConnectionConfig{
			Host:     host,
			Port:     port,
			UserName: os.Getenv(prefix + "USERNAME"),
			Password: os.Getenv(prefix + "PASSWORD"),
		})
	}

	return replicas
}
