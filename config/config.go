package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/pkg/errors"
)

const (
	defaultPath               = "."
	defaultMaxRequestBodySize = "100KB"
)

type Config struct {
	Env struct {
		Env         string `json:"env" yaml:"env"`
		ServiceName string `json:"serviceName" yaml:"serviceName"`
		Debug       bool   `json:"debug" yaml:"debug"`
		Log         Log    `json:"log" yaml:"log"`
	} `json:"env" yaml:"env"`

	HTTP struct {
		Port               int    `json:"port" yaml:"port"`
		MaxRequestBodySize string `json:"maxRequestBodySize" yaml:"maxRequestBodySize"`
		Timeouts           struct {
			ReadTimeout       time.Duration `json:"readTimeout" yaml:"readTimeout"`
			ReadHeaderTimeout time.Duration `json:"readHeaderTimeout" yaml:"readHeaderTimeout"`
			WriteTimeout      time.Duration `json:"writeTimeout" yaml:"writeTimeout"`
			IdleTimeout       time.Duration `json:"idleTimeout" yaml:"idleTimeout"`
		} `json:"timeouts" yaml:"timeouts"`
	} `json:"http" yaml:"http"`

	Worker struct {
		Port int `json:"port" yaml:"port"`
	} `json:"worker" yaml:"worker"`

	// Storage configuration for the local durable cache
	Storage *StorageConfig `json:"storage" yaml:"storage"`

	// Proximity configuration for the trigger and dedup engine
	Proximity *ProximityConfig `json:"proximity" yaml:"proximity"`

	// NoteSync configuration for the remote note API
	NoteSync *NoteSyncConfig `json:"noteSync" yaml:"noteSync"`

	// Firebase configuration for push notifications
	Firebase *FirebaseConfig `json:"firebase" yaml:"firebase"`

	// PubSub configuration for discovery event publishing
	PubSub *PubSubConfig `json:"pubsub" yaml:"pubsub"`
}

type Log struct {
	Pretty bool   `json:"pretty" yaml:"pretty"`
	Level  string `json:"level" yaml:"level"`
}

// StorageConfig defines the local key/value store location
type StorageConfig struct {
	Path string `json:"path" yaml:"path"`
}

// ProximityConfig defines the tuning knobs of the proximity engine
type ProximityConfig struct {
	// Trigger radius applied when a note carries none, in meters
	DefaultRadiusMeters float64 `json:"defaultRadiusMeters" yaml:"defaultRadiusMeters"`

	// Upper bound a note radius is clamped to, in meters
	MaxRadiusMeters float64 `json:"maxRadiusMeters" yaml:"maxRadiusMeters"`

	// Minimum interval between notification batches for an unchanged candidate set
	CooldownWindow time.Duration `json:"cooldownWindow" yaml:"cooldownWindow"`

	// Pending records older than this are discarded instead of surfaced
	PendingRecordTTL time.Duration `json:"pendingRecordTtl" yaml:"pendingRecordTtl"`
}

// NoteSyncConfig defines the remote note API client configuration
type NoteSyncConfig struct {
	BaseURL string `json:"baseUrl" yaml:"baseUrl"`

	// Bearer token passed through to the API, not interpreted locally
	AuthToken string `json:"authToken" yaml:"authToken"`

	// Interval between scheduled background resyncs
	SyncInterval time.Duration `json:"syncInterval" yaml:"syncInterval"`

	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// FirebaseConfig defines Firebase configuration for push notifications
type FirebaseConfig struct {
	ProjectID       string `json:"projectId" yaml:"projectId"`
	CredentialsPath string `json:"credentialsPath" yaml:"credentialsPath"`
}

// PubSubConfig defines Pub/Sub configuration for event publishing
type PubSubConfig struct {
	// Provider type: "local" for local HTTP or "google" for Google Pub/Sub
	Provider string `json:"provider" yaml:"provider"`

	// Google Cloud project ID (for google provider)
	ProjectID string `json:"projectId" yaml:"projectId"`

	// Pub/Sub topic ID (for google provider)
	TopicID string `json:"topicId" yaml:"topicId"`

	// Local HTTP endpoint for development (for local provider)
	LocalEndpoint string `json:"localEndpoint" yaml:"localEndpoint"`
}

// Defaults applied when the proximity section is missing or zero-valued.
const (
	DefaultRadiusMeters     = 100.0
	DefaultMaxRadiusMeters  = 5000.0
	DefaultCooldownWindow   = 60 * time.Second
	DefaultPendingRecordTTL = 15 * time.Minute
	DefaultSyncInterval     = 5 * time.Minute
)

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
			abs := filepath.Join(pwd, path)
			searchPaths = append(searchPaths, abs)
		}
	}

	// Try to find and load the config file
	var configFile string
	var found bool
	for _, path := range searchPaths {
		candidate := filepath.Join(path, currEnv+".yaml")
		if _, err := os.Stat(candidate); err == nil {
			configFile = candidate
			found = true

			break
		}
	}

	if !found {
		return nil, errors.Errorf("config file %s.yaml not found in any search path", currEnv)
	}

	// Load YAML config file
	if err := koanfInstance.Load(file.Provider(configFile), yaml.Parser()); err != nil {
		return nil, errors.Wrapf(err, "read %s config failed", currEnv)
	}

	existingConfigMap := koanfInstance.Raw()

	// Load environment variables
	if err := koanfInstance.Load(env.Provider(".", env.Opt{
		TransformFunc: func(k, v string) (string, any) {
			// Convert ENV_VAR_NAME to path and align each segment with existing YAML keys.
			// Example: NOTESYNC_BASEURL -> noteSync.baseUrl (not notesync.baseurl)
			key := canonicalizeEnvKey(k, existingConfigMap)

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
			),
			MatchName: func(mapKey, fieldName string) bool {
				// Case-insensitive matching for env var overrides
				return strings.EqualFold(mapKey, fieldName)
			},
		},
	}); err != nil {
		return nil, errors.Wrapf(err, "unmarshal %s config failed", currEnv)
	}

	return cfg, nil
}

func New() (*Config, error) {
	cfg, err := LoadWithEnv[Config]("config", "config", "../config", "../../config")
	if err != nil {
		return nil, err
	}

	applyProximityDefaults(cfg)

	return cfg, nil
}

// applyProximityDefaults fills the zero values of the proximity and sync
// sections so downstream services never branch on missing config.
func applyProximityDefaults(cfg *Config) {
	if cfg.Proximity == nil {
		cfg.Proximity = &ProximityConfig{}
	}
	if cfg.Proximity.DefaultRadiusMeters <= 0 {
		cfg.Proximity.DefaultRadiusMeters = DefaultRadiusMeters
	}
	if cfg.Proximity.MaxRadiusMeters <= 0 {
		cfg.Proximity.MaxRadiusMeters = DefaultMaxRadiusMeters
	}
	if cfg.Proximity.CooldownWindow <= 0 {
		cfg.Proximity.CooldownWindow = DefaultCooldownWindow
	}
	if cfg.Proximity.PendingRecordTTL <= 0 {
		cfg.Proximity.PendingRecordTTL = DefaultPendingRecordTTL
	}
	if cfg.NoteSync != nil && cfg.NoteSync.SyncInterval <= 0 {
		cfg.NoteSync.SyncInterval = DefaultSyncInterval
	}
	if strings.TrimSpace(cfg.HTTP.MaxRequestBodySize) == "" {
		cfg.HTTP.MaxRequestBodySize = defaultMaxRequestBodySize
	}
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
