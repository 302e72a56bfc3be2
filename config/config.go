// Package config loads the provisioner configuration once at startup.
//
// Values come from an optional YAML file named by PROVISIONER_CONFIG and are
// overridden by environment variables. The resulting Config is treated as
// immutable and passed explicitly to every component that needs it.
package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/ortelius/media-provisioner/model"
	"github.com/ortelius/media-provisioner/util"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v2"
)

// DefaultSettingsUser is the Emby account whose settings new accounts copy
const DefaultSettingsUser = "settings"

// ImportPolicy decides when Jellyseerr imports are attempted during an add
type ImportPolicy string

const (
	// ImportRequireSecondary imports only after Jellyfin creation succeeded,
	// or when Jellyfin is not configured at all
	ImportRequireSecondary ImportPolicy = "require-secondary"
	// ImportAlways imports whenever Jellyseerr is configured
	ImportAlways ImportPolicy = "always"
)

// BackendConfig is the endpoint and credential of one backend
type BackendConfig struct {
	URL    string `yaml:"url"`
	APIKey string `yaml:"api_key"`
}

// Active reports whether both the endpoint and the credential are present.
// An inactive backend is skipped silently, never treated as an error.
func (b BackendConfig) Active() bool {
	return util.IsNotEmpty(b.URL) && util.IsNotEmpty(b.APIKey)
}

// KafkaConfig holds the optional command/result topic settings
type KafkaConfig struct {
	Brokers      []string `yaml:"brokers"`
	APIKey       string   `yaml:"api_key"`
	APISecret    string   `yaml:"api_secret"`
	CommandTopic string   `yaml:"command_topic"`
	ResultTopic  string   `yaml:"result_topic"`
}

// Enabled reports whether any broker is configured
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

// Config is the process-wide provisioner configuration
type Config struct {
	Emby       BackendConfig `yaml:"emby"`
	Jellyfin   BackendConfig `yaml:"jellyfin"`
	Jellyseerr BackendConfig `yaml:"jellyseerr"`

	SettingsUser    string        `yaml:"settings_user"`
	AuthorizedUsers []int64       `yaml:"-"`
	ImportPolicy    ImportPolicy  `yaml:"import_policy"`
	BackendTimeout  time.Duration `yaml:"-"`
	ReportFailures  bool          `yaml:"report_failures"`

	Port              string `yaml:"port"`
	JWTSecret         string `yaml:"jwt_secret"`
	ChatWebhookSecret string `yaml:"chat_webhook_secret"`

	Kafka KafkaConfig `yaml:"kafka"`
}

// fileConfig is the YAML layout; list and duration fields are kept as
// strings so the file and the environment share one parser
type fileConfig struct {
	Config          `yaml:",inline"`
	AuthorizedUsers string `yaml:"authorized_users"`
	BackendTimeout  string `yaml:"backend_timeout"`
	// reportFailures is the raw REPORT_FAILURES value, nil when unset
	reportFailures *string
}

// Backend returns the configuration of the given backend
func (c *Config) Backend(b model.Backend) BackendConfig {
	switch b {
	case model.BackendEmby:
		return c.Emby
	case model.BackendJellyfin:
		return c.Jellyfin
	case model.BackendJellyseerr:
		return c.Jellyseerr
	}
	return BackendConfig{}
}

// IsActive is the availability gate consulted before every backend call
func (c *Config) IsActive(b model.Backend) bool {
	return c.Backend(b).Active()
}

// ActiveBackends returns the configured backends in processing order
func (c *Config) ActiveBackends() []model.Backend {
	active := []model.Backend{}
	for _, b := range model.Backends {
		if c.IsActive(b) {
			active = append(active, b)
		}
	}
	return active
}

// Load reads the optional YAML file and the environment into a validated Config
func Load() (*Config, error) {
	raw := fileConfig{
		Config: Config{
			SettingsUser: DefaultSettingsUser,
			ImportPolicy: ImportRequireSecondary,
			Port:         "3000",
			Kafka: KafkaConfig{
				CommandTopic: "provisioning-commands",
				ResultTopic:  "provisioning-results",
			},
		},
		BackendTimeout: "30s",
	}

	if path := util.GetEnvDefault("PROVISIONER_CONFIG", ""); path != "" {
		if err := loadFile(path, &raw); err != nil {
			return nil, err
		}
	}

	overrideFromEnv(&raw)

	return build(raw)
}

func loadFile(path string, raw *fileConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, raw); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	return nil
}

func overrideFromEnv(raw *fileConfig) {
	set := func(key string, dst *string) {
		if val, ok := os.LookupEnv(key); ok {
			*dst = val
		}
	}

	set("EMBY_URL", &raw.Emby.URL)
	set("EMBY_API_KEY", &raw.Emby.APIKey)
	set("JELLYFIN_URL", &raw.Jellyfin.URL)
	set("JELLYFIN_API_KEY", &raw.Jellyfin.APIKey)
	set("JELLYSEERR_URL", &raw.Jellyseerr.URL)
	set("JELLYSEERR_API_KEY", &raw.Jellyseerr.APIKey)
	set("SETTINGS_USER", &raw.SettingsUser)
	set("AUTHORIZED_USERS", &raw.AuthorizedUsers)
	set("BACKEND_TIMEOUT", &raw.BackendTimeout)
	set("MS_PORT", &raw.Port)
	set("JWT_SECRET", &raw.JWTSecret)
	set("CHAT_WEBHOOK_SECRET", &raw.ChatWebhookSecret)
	set("KAFKA_API_KEY", &raw.Kafka.APIKey)
	set("KAFKA_API_SECRET", &raw.Kafka.APISecret)
	set("KAFKA_COMMAND_TOPIC", &raw.Kafka.CommandTopic)
	set("KAFKA_RESULT_TOPIC", &raw.Kafka.ResultTopic)

	if val, ok := os.LookupEnv("IMPORT_POLICY"); ok {
		raw.ImportPolicy = ImportPolicy(val)
	}
	if val, ok := os.LookupEnv("REPORT_FAILURES"); ok {
		raw.reportFailures = &val
	}
	if val, ok := os.LookupEnv("KAFKA_BROKERS"); ok {
		raw.Kafka.Brokers = util.SplitList(val)
	}
}

// build validates the raw values; every problem found is reported at once
func build(raw fileConfig) (*Config, error) {
	cfg := raw.Config
	var errs error

	cfg.Emby = normalizeBackend(cfg.Emby)
	cfg.Jellyfin = normalizeBackend(cfg.Jellyfin)
	cfg.Jellyseerr = normalizeBackend(cfg.Jellyseerr)

	for _, b := range model.Backends {
		bc := cfg.Backend(b)
		if !bc.Active() {
			continue
		}
		if err := validateURL(bc.URL); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s url: %w", b, err))
		}
	}

	principals, err := ParsePrincipals(raw.AuthorizedUsers)
	errs = multierr.Append(errs, err)
	cfg.AuthorizedUsers = principals

	timeout, err := parseTimeout(raw.BackendTimeout)
	errs = multierr.Append(errs, err)
	cfg.BackendTimeout = timeout

	if raw.reportFailures != nil {
		enabled, err := strconv.ParseBool(strings.TrimSpace(*raw.reportFailures))
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid report_failures '%s'", *raw.reportFailures))
		} else {
			cfg.ReportFailures = enabled
		}
	}

	cfg.ImportPolicy = ImportPolicy(strings.ToLower(strings.TrimSpace(string(cfg.ImportPolicy))))
	if cfg.ImportPolicy == "" {
		cfg.ImportPolicy = ImportRequireSecondary
	}
	if cfg.ImportPolicy != ImportRequireSecondary && cfg.ImportPolicy != ImportAlways {
		errs = multierr.Append(errs, fmt.Errorf("invalid import_policy '%s'", cfg.ImportPolicy))
	}

	cfg.SettingsUser = strings.TrimSpace(cfg.SettingsUser)
	if cfg.SettingsUser == "" {
		cfg.SettingsUser = DefaultSettingsUser
	}

	if errs != nil {
		return nil, fmt.Errorf("invalid config: %w", errs)
	}
	return &cfg, nil
}

// ParsePrincipals parses the delimited allow-list of principal ids.
// Malformed entries fail loudly instead of being skipped.
func ParsePrincipals(s string) ([]int64, error) {
	var errs error
	ids := []int64{}
	for _, entry := range util.SplitList(s) {
		id, err := strconv.ParseInt(entry, 10, 64)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("invalid authorized user id '%s'", entry))
			continue
		}
		ids = append(ids, id)
	}
	if errs != nil {
		return nil, errs
	}
	return ids, nil
}

func normalizeBackend(b BackendConfig) BackendConfig {
	return BackendConfig{
		URL:    strings.TrimRight(strings.TrimSpace(b.URL), "/"),
		APIKey: strings.TrimSpace(b.APIKey),
	}
}

func validateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("unsupported scheme in '%s'", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("missing host in '%s'", raw)
	}
	return nil
}

// parseTimeout accepts Go durations ("45s") or a bare number of seconds
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if secs, err := strconv.Atoi(raw); err == nil {
		raw = fmt.Sprintf("%ds", secs)
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid backend_timeout '%s'", raw)
	}
	if d <= 0 {
		return 0, fmt.Errorf("backend_timeout must be positive")
	}
	return d, nil
}
