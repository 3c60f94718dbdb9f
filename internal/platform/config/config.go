// Package config provides configuration loading and management using koanf.
package config

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Default configuration values.
const (
	// DefaultServerPort is the default HTTP server port.
	DefaultServerPort = 8080

	// DefaultMaxRequestSize is the default maximum request body size (1MB).
	DefaultMaxRequestSize = 1 << 20 // 1048576 bytes

	// DefaultClientRetryMaxAttempts is the default number of attempts per call.
	// Downstream calls are not retried; resilience commands fall back instead.
	DefaultClientRetryMaxAttempts = 1

	// DefaultClientRetryMultiplier is the default exponential backoff multiplier.
	DefaultClientRetryMultiplier = 2.0

	// DefaultClientRetryJitterFactor is the default jitter percentage (±25%).
	DefaultClientRetryJitterFactor = 0.25

	// DefaultTransportMaxIdleConns is the default max idle connections.
	DefaultTransportMaxIdleConns = 100

	// DefaultTransportMaxIdleConnsPerHost is the default max idle connections per host.
	DefaultTransportMaxIdleConnsPerHost = 10

	// DefaultTransportIdleConnTimeout is the default idle connection timeout.
	DefaultTransportIdleConnTimeout = 90 * time.Second

	// DefaultLogFileMaxSizeMB is the default max log file size in megabytes.
	DefaultLogFileMaxSizeMB = 100

	// DefaultLogFileMaxBackups is the default number of old log files to retain.
	DefaultLogFileMaxBackups = 3

	// DefaultLogFileMaxAgeDays is the default max days to retain old log files.
	DefaultLogFileMaxAgeDays = 28

	// DefaultCommandTimeout is the default wall-clock ceiling of a resilience command.
	DefaultCommandTimeout = time.Second

	// DefaultEnrichmentTimeout is the ceiling of the license enrichment command.
	DefaultEnrichmentTimeout = 15 * time.Second

	// DefaultFaultInjectionDelay is the artificial latency added to an injected fault.
	DefaultFaultInjectionDelay = 11 * time.Second

	// DefaultBulkheadMaxConcurrent is the default number of concurrently running calls.
	DefaultBulkheadMaxConcurrent = 30

	// DefaultBulkheadMaxQueue is the default number of calls waiting for a slot.
	DefaultBulkheadMaxQueue = 10

	// DefaultBreakerWindow is the default rolling statistics window.
	DefaultBreakerWindow = 15 * time.Second

	// DefaultBreakerBuckets is the default number of buckets in the window.
	DefaultBreakerBuckets = 5

	// DefaultBreakerRequestVolume is the minimum window volume before the breaker may trip.
	DefaultBreakerRequestVolume = 10

	// DefaultBreakerErrorThreshold is the error percentage that trips the breaker.
	DefaultBreakerErrorThreshold = 75

	// DefaultBreakerSleepWindow is how long an open breaker rejects calls.
	DefaultBreakerSleepWindow = 7 * time.Second

	// DefaultDirectoryTTL is how long a registered instance stays live without a heartbeat.
	DefaultDirectoryTTL = 30 * time.Second

	// DefaultHeartbeatInterval is how often a running service refreshes its registration.
	DefaultHeartbeatInterval = 10 * time.Second
)

// Directory backends.
const (
	DirectoryBackendStatic = "static"
	DirectoryBackendRedis  = "redis"
)

// Config is the root configuration structure.
type Config struct {
	App        AppConfig        `koanf:"app"        validate:"required"`
	Server     ServerConfig     `koanf:"server"     validate:"required"`
	Log        LogConfig        `koanf:"log"        validate:"required"`
	Telemetry  TelemetryConfig  `koanf:"telemetry"`
	Client     ClientConfig     `koanf:"client"     validate:"required"`
	Resilience ResilienceConfig `koanf:"resilience" validate:"required"`
	Directory  DirectoryConfig  `koanf:"directory"  validate:"required"`
	Gateway    GatewayConfig    `koanf:"gateway"`
	Services   ServicesConfig   `koanf:"services"   validate:"required"`
	Storage    StorageConfig    `koanf:"storage"`
}

// AppConfig contains application-level settings.
type AppConfig struct {
	Name        string `koanf:"name"        validate:"required"`
	Version     string `koanf:"version"     validate:"required"`
	Environment string `koanf:"environment" validate:"required,oneof=local dev qa prod test"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port            int           `koanf:"port"             validate:"required,min=1,max=65535"`
	Host            string        `koanf:"host"             validate:"required"`
	ReadTimeout     time.Duration `koanf:"read_timeout"     validate:"required,min=1s"`
	WriteTimeout    time.Duration `koanf:"write_timeout"    validate:"required,min=1s"`
	IdleTimeout     time.Duration `koanf:"idle_timeout"     validate:"required,min=1s"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout" validate:"required,min=1s"`
	MaxRequestSize  int64         `koanf:"max_request_size" validate:"required,min=1"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level  string        `koanf:"level"  validate:"required,oneof=trace debug info warn error"`
	Format string        `koanf:"format" validate:"required,oneof=json text pretty"`
	File   LogFileConfig `koanf:"file"`
}

// LogFileConfig contains rolling log file settings.
type LogFileConfig struct {
	Enabled    bool   `koanf:"enabled"`
	Path       string `koanf:"path"       validate:"required_if=Enabled true"`
	MaxSizeMB  int    `koanf:"max_size"   validate:"omitempty,min=1,max=1024"`
	MaxBackups int    `koanf:"max_backups" validate:"omitempty,min=0,max=100"`
	MaxAgeDays int    `koanf:"max_age"    validate:"omitempty,min=0,max=365"`
	Compress   bool   `koanf:"compress"`
}

// TelemetryConfig contains OpenTelemetry settings.
type TelemetryConfig struct {
	Enabled      bool    `koanf:"enabled"`
	Endpoint     string  `koanf:"endpoint"      validate:"required_if=Enabled true,omitempty,url"`
	ServiceName  string  `koanf:"service_name"  validate:"required_if=Enabled true"`
	SamplingRate float64 `koanf:"sampling_rate" validate:"min=0,max=1"`
}

// ClientConfig contains HTTP client settings for downstream services.
type ClientConfig struct {
	Timeout   time.Duration   `koanf:"timeout"   validate:"required,min=100ms"`
	Retry     RetryConfig     `koanf:"retry"     validate:"required"`
	Transport TransportConfig `koanf:"transport" validate:"required"`
}

// RetryConfig contains retry settings for HTTP clients.
type RetryConfig struct {
	MaxAttempts     int           `koanf:"max_attempts"     validate:"required,min=1,max=10"`
	InitialInterval time.Duration `koanf:"initial_interval" validate:"required,min=10ms"`
	MaxInterval     time.Duration `koanf:"max_interval"     validate:"required,min=100ms"`
	Multiplier      float64       `koanf:"multiplier"       validate:"required,min=1.1,max=10"`
	JitterFactor    float64       `koanf:"jitter_factor"    validate:"min=0,max=1"`
}

// TransportConfig contains HTTP transport pool settings.
type TransportConfig struct {
	MaxIdleConns        int           `koanf:"max_idle_conns"         validate:"required,min=1"`
	MaxIdleConnsPerHost int           `koanf:"max_idle_conns_per_host" validate:"required,min=1"`
	IdleConnTimeout     time.Duration `koanf:"idle_conn_timeout"      validate:"required,min=1s"`
}

// ResilienceConfig holds the resilience command settings. Every named
// command starts from Default; only the keys set under its own section
// differ.
type ResilienceConfig struct {
	Default    CommandConfig `koanf:"default"    validate:"required"`
	Enrichment CommandConfig `koanf:"enrichment" validate:"required"`
}

// CommandConfig configures a single resilience command.
type CommandConfig struct {
	Timeout        time.Duration        `koanf:"timeout"         validate:"required,min=1ms"`
	FaultInjection FaultInjectionConfig `koanf:"fault_injection"`
	Bulkhead       BulkheadConfig       `koanf:"bulkhead"        validate:"required"`
	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" validate:"required"`
}

// FaultInjectionConfig configures artificial latency injected before a call.
type FaultInjectionConfig struct {
	Probability float64       `koanf:"probability" validate:"min=0,max=1"`
	Delay       time.Duration `koanf:"delay"       validate:"min=0"`
	Seed        uint64        `koanf:"seed"`
}

// BulkheadConfig bounds the concurrency of a command.
type BulkheadConfig struct {
	MaxConcurrent int `koanf:"max_concurrent" validate:"required,min=1"`
	MaxQueue      int `koanf:"max_queue"      validate:"min=0"`
}

// CircuitBreakerConfig contains rolling-window circuit breaker settings.
type CircuitBreakerConfig struct {
	Window                 time.Duration `koanf:"window"                   validate:"required,min=1s"`
	Buckets                int           `koanf:"buckets"                  validate:"required,min=1,max=100"`
	RequestVolumeThreshold int           `koanf:"request_volume_threshold" validate:"required,min=1"`
	ErrorThresholdPercent  int           `koanf:"error_threshold_percent"  validate:"required,min=1,max=100"`
	SleepWindow            time.Duration `koanf:"sleep_window"             validate:"required,min=1ms"`
}

// DirectoryConfig selects and configures the service directory.
type DirectoryConfig struct {
	Backend      string                 `koanf:"backend"      validate:"required,oneof=static redis"`
	Instances    []StaticInstanceConfig `koanf:"instances"    validate:"dive"`
	Redis        RedisConfig            `koanf:"redis"`
	Registration RegistrationConfig     `koanf:"registration"`
}

// StaticInstanceConfig is one entry of the static directory.
type StaticInstanceConfig struct {
	Service    string `koanf:"service"     validate:"required"`
	InstanceID string `koanf:"instance_id"`
	Host       string `koanf:"host"        validate:"required"`
	Port       int    `koanf:"port"        validate:"required,min=1,max=65535"`
}

// RedisConfig configures the Redis-backed directory.
type RedisConfig struct {
	Addr      string        `koanf:"addr"`
	Password  string        `koanf:"password"`
	DB        int           `koanf:"db"         validate:"min=0"`
	KeyPrefix string        `koanf:"key_prefix" validate:"required"`
	TTL       time.Duration `koanf:"ttl"        validate:"required,min=1s"`
}

// RegistrationConfig controls self-registration of a running service.
type RegistrationConfig struct {
	Enabled           bool          `koanf:"enabled"`
	Host              string        `koanf:"host"               validate:"required_if=Enabled true"`
	HeartbeatInterval time.Duration `koanf:"heartbeat_interval" validate:"required_if=Enabled true,omitempty,min=100ms"`
}

// GatewayConfig configures the edge gateway.
type GatewayConfig struct {
	Routes  []RouteConfig `koanf:"routes"  validate:"dive"`
	Filters FiltersConfig `koanf:"filters"`
}

// RouteConfig maps a path prefix to a logical service.
type RouteConfig struct {
	Prefix      string `koanf:"prefix"       validate:"required,startswith=/"`
	ServiceID   string `koanf:"service_id"   validate:"required"`
	StripPrefix bool   `koanf:"strip_prefix"`
}

// FiltersConfig toggles and orders the built-in gateway filters.
type FiltersConfig struct {
	Tracking FilterConfig `koanf:"tracking"`
	Response FilterConfig `koanf:"response"`
}

// FilterConfig toggles and orders one gateway filter.
type FilterConfig struct {
	Enabled bool `koanf:"enabled"`
	Order   int  `koanf:"order"`
}

// ServicesConfig contains configuration for downstream services.
type ServicesConfig struct {
	Organization ServiceEndpointConfig `koanf:"organization" validate:"required"`
}

// ServiceEndpointConfig contains configuration for a downstream service endpoint.
// ServiceID is the logical name looked up in the directory; BaseURL is used
// by the direct (rest) strategy only.
type ServiceEndpointConfig struct {
	ServiceID string `koanf:"service_id" validate:"required"`
	BaseURL   string `koanf:"base_url"   validate:"required,url"`
	Name      string `koanf:"name"       validate:"required"`
}

// StorageConfig configures the badger-backed repositories.
type StorageConfig struct {
	InMemory bool       `koanf:"in_memory"`
	Path     string     `koanf:"path"      validate:"required_unless=InMemory true"`
	Seed     SeedConfig `koanf:"seed"`
}

// SeedConfig lists records written to an empty store at startup.
type SeedConfig struct {
	Enabled       bool                     `koanf:"enabled"`
	Organizations []SeedOrganizationConfig `koanf:"organizations" validate:"dive"`
	Licenses      []SeedLicenseConfig      `koanf:"licenses"      validate:"dive"`
}

// SeedOrganizationConfig is one seeded organization.
type SeedOrganizationConfig struct {
	ID           string `koanf:"id"            validate:"required"`
	Name         string `koanf:"name"          validate:"required"`
	ContactName  string `koanf:"contact_name"`
	ContactEmail string `koanf:"contact_email"`
	ContactPhone string `koanf:"contact_phone"`
}

// SeedLicenseConfig is one seeded license.
type SeedLicenseConfig struct {
	ID               string `koanf:"id"                validate:"required"`
	OrganizationID   string `koanf:"organization_id"   validate:"required"`
	ProductName      string `koanf:"product_name"      validate:"required"`
	LicenseType      string `koanf:"license_type"`
	LicenseMax       int    `koanf:"license_max"       validate:"min=0"`
	LicenseAllocated int    `koanf:"license_allocated" validate:"min=0"`
	Comment          string `koanf:"comment"`
}

func commandDefaults(prefix string, timeout time.Duration) map[string]any {
	return map[string]any{
		prefix + ".timeout":                                  timeout.String(),
		prefix + ".fault_injection.probability":              0.0,
		prefix + ".fault_injection.delay":                    DefaultFaultInjectionDelay.String(),
		prefix + ".fault_injection.seed":                     0,
		prefix + ".bulkhead.max_concurrent":                  DefaultBulkheadMaxConcurrent,
		prefix + ".bulkhead.max_queue":                       DefaultBulkheadMaxQueue,
		prefix + ".circuit_breaker.window":                   DefaultBreakerWindow.String(),
		prefix + ".circuit_breaker.buckets":                  DefaultBreakerBuckets,
		prefix + ".circuit_breaker.request_volume_threshold": DefaultBreakerRequestVolume,
		prefix + ".circuit_breaker.error_threshold_percent":  DefaultBreakerErrorThreshold,
		prefix + ".circuit_breaker.sleep_window":             DefaultBreakerSleepWindow.String(),
	}
}

// defaults returns the default configuration values.
func defaults() map[string]any {
	d := map[string]any{
		"app.name":        "licensingservice",
		"app.version":     "dev",
		"app.environment": "local",

		"server.port":             DefaultServerPort,
		"server.host":             "0.0.0.0",
		"server.read_timeout":     "30s",
		"server.write_timeout":    "30s",
		"server.idle_timeout":     "120s",
		"server.shutdown_timeout": "10s",
		"server.max_request_size": DefaultMaxRequestSize,

		"log.level":            "info",
		"log.format":           "json",
		"log.file.enabled":     false,
		"log.file.path":        "./logs/app.log",
		"log.file.max_size":    DefaultLogFileMaxSizeMB,
		"log.file.max_backups": DefaultLogFileMaxBackups,
		"log.file.max_age":     DefaultLogFileMaxAgeDays,
		"log.file.compress":    true,

		"telemetry.enabled":       false,
		"telemetry.endpoint":      "",
		"telemetry.service_name":  "licensing-mesh",
		"telemetry.sampling_rate": 1.0,

		"client.timeout":                           "30s",
		"client.retry.max_attempts":                DefaultClientRetryMaxAttempts,
		"client.retry.initial_interval":            "100ms",
		"client.retry.max_interval":                "5s",
		"client.retry.multiplier":                  DefaultClientRetryMultiplier,
		"client.retry.jitter_factor":               DefaultClientRetryJitterFactor,
		"client.transport.max_idle_conns":          DefaultTransportMaxIdleConns,
		"client.transport.max_idle_conns_per_host": DefaultTransportMaxIdleConnsPerHost,
		"client.transport.idle_conn_timeout":       "90s",

		"directory.backend": DirectoryBackendStatic,
		"directory.instances": []map[string]any{
			{"service": "licensingservice", "instance_id": "licensingservice-local", "host": "127.0.0.1", "port": 8080},
			{"service": "organizationservice", "instance_id": "organizationservice-local", "host": "127.0.0.1", "port": 8081},
		},
		"directory.redis.addr":                      "localhost:6379",
		"directory.redis.password":                  "",
		"directory.redis.db":                        0,
		"directory.redis.key_prefix":                "discovery",
		"directory.redis.ttl":                       DefaultDirectoryTTL.String(),
		"directory.registration.enabled":            false,
		"directory.registration.host":               "127.0.0.1",
		"directory.registration.heartbeat_interval": DefaultHeartbeatInterval.String(),

		"gateway.routes": []map[string]any{
			{"prefix": "/licensingservice", "service_id": "licensingservice", "strip_prefix": true},
			{"prefix": "/organizationservice", "service_id": "organizationservice", "strip_prefix": true},
		},
		"gateway.filters.tracking.enabled": true,
		"gateway.filters.tracking.order":   1,
		"gateway.filters.response.enabled": true,
		"gateway.filters.response.order":   1,

		"services.organization.service_id": "organizationservice",
		"services.organization.base_url":   "http://127.0.0.1:8081",
		"services.organization.name":       "organization-service",

		"storage.in_memory":    true,
		"storage.path":         "./data",
		"storage.seed.enabled": true,
		"storage.seed.organizations": []map[string]any{
			{
				"id":            "e254f8c-c442-4ebe-a82a-e2fc1d1ff78a",
				"name":          "customer-crm-co",
				"contact_name":  "Mark Balster",
				"contact_email": "mark.balster@custcrmco.com",
				"contact_phone": "823-555-1212",
			},
			{
				"id":            "442adb6e-fa58-47f3-9ca2-ed1fecdfe86c",
				"name":          "HR-PR",
				"contact_name":  "Doug Drewry",
				"contact_email": "doug.drewry@hr.com",
				"contact_phone": "920-555-1212",
			},
		},
		"storage.seed.licenses": []map[string]any{
			{
				"id":                "f3831f8c-c338-4ebe-a82a-e2fc1d1ff78a",
				"organization_id":   "e254f8c-c442-4ebe-a82a-e2fc1d1ff78a",
				"product_name":      "CustomerPro",
				"license_type":      "user",
				"license_max":       100,
				"license_allocated": 5,
			},
			{
				"id":                "t9876f8c-c338-4abc-zf6a-ttt1",
				"organization_id":   "e254f8c-c442-4ebe-a82a-e2fc1d1ff78a",
				"product_name":      "suitability-plus",
				"license_type":      "user",
				"license_max":       200,
				"license_allocated": 189,
			},
			{
				"id":                "38777179-7094-4200-9d61-edb101c6ea84",
				"organization_id":   "442adb6e-fa58-47f3-9ca2-ed1fecdfe86c",
				"product_name":      "HR-PowerSuite",
				"license_type":      "user",
				"license_max":       100,
				"license_allocated": 4,
			},
			{
				"id":                "08dbe05-606e-4dad-9d33-90ef10e334f9",
				"organization_id":   "442adb6e-fa58-47f3-9ca2-ed1fecdfe86c",
				"product_name":      "WildCat Application Gateway",
				"license_type":      "core-prod",
				"license_max":       16,
				"license_allocated": 16,
			},
		},
	}

	for k, v := range commandDefaults("resilience.default", DefaultCommandTimeout) {
		d[k] = v
	}
	d["resilience.enrichment.timeout"] = DefaultEnrichmentTimeout.String()

	return d
}

// Option customizes Load.
type Option func(*loadOptions)

type loadOptions struct {
	overrides map[string]any
	dir       string
}

// WithDefaults layers extra defaults on top of the built-in ones, below any
// config file or environment variable. Sub-commands use it to pick their own
// name and listen port.
func WithDefaults(values map[string]any) Option {
	return func(o *loadOptions) {
		o.overrides = values
	}
}

// WithDir sets the directory holding base.yaml and the profile files.
func WithDir(dir string) Option {
	return func(o *loadOptions) {
		o.dir = dir
	}
}

// Load layers configuration sources, later ones winning:
//
//	built-in defaults < WithDefaults < base.yaml < {profile}.yaml < APP_* env
//
// A missing file is skipped. An unknown profile therefore yields the base
// configuration. After layering, each named resilience command picks up the
// resilience.default keys it does not set.
func Load(profile string, opts ...Option) (*Config, error) {
	o := loadOptions{dir: "configs"}
	for _, opt := range opts {
		opt(&o)
	}

	k := koanf.New(".")

	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}
	if len(o.overrides) > 0 {
		if err := k.Load(confmap.Provider(o.overrides, "."), nil); err != nil {
			return nil, fmt.Errorf("loading command defaults: %w", err)
		}
	}

	if err := loadFileIfExists(k, filepath.Join(o.dir, "base.yaml")); err != nil {
		return nil, fmt.Errorf("loading base config: %w", err)
	}
	if profile != "" {
		if err := loadFileIfExists(k, filepath.Join(o.dir, profile+".yaml")); err != nil {
			return nil, fmt.Errorf("loading profile config %q: %w", profile, err)
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKeyMapper(commandKeys(k))), nil); err != nil {
		return nil, fmt.Errorf("loading env vars: %w", err)
	}

	for _, name := range namedCommands {
		if err := inheritCommand(k, name); err != nil {
			return nil, fmt.Errorf("resolving resilience.%s: %w", name, err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	return &cfg, nil
}

const envPrefix = "APP_"

// namedCommands are the resilience sections that inherit from
// resilience.default.
var namedCommands = []string{"enrichment"}

// inheritCommand fills resilience.<name> with every resilience.default key
// the command does not set itself.
func inheritCommand(k *koanf.Koanf, name string) error {
	merged := k.Cut("resilience.default").All()
	maps.Copy(merged, k.Cut("resilience."+name).All())

	prefixed := make(map[string]any, len(merged))
	for key, v := range merged {
		prefixed["resilience."+name+"."+key] = v
	}

	return k.Load(confmap.Provider(prefixed, "."), nil)
}

// commandKeys returns the loaded keys plus, for every named command, the
// keys it inherits, so APP_RESILIENCE_ENRICHMENT_BULKHEAD_MAX_QUEUE maps to
// resilience.enrichment.bulkhead.max_queue before the section exists.
func commandKeys(k *koanf.Koanf) []string {
	keys := k.Keys()
	for _, key := range k.Cut("resilience.default").Keys() {
		for _, name := range namedCommands {
			keys = append(keys, "resilience."+name+"."+key)
		}
	}
	return keys
}

// envKeyMapper maps APP_SERVER_MAX_REQUEST_SIZE to server.max_request_size
// by matching against the keys already loaded. Unknown variables fall back
// to replacing every underscore with a dot.
func envKeyMapper(known []string) func(string) string {
	byEnv := make(map[string]string, len(known))
	for _, key := range known {
		byEnv[strings.ReplaceAll(key, ".", "_")] = key
	}

	return func(name string) string {
		flat := strings.ToLower(strings.TrimPrefix(name, envPrefix))
		if key, ok := byEnv[flat]; ok {
			return key
		}
		return strings.ReplaceAll(flat, "_", ".")
	}
}

// loadFileIfExists loads a YAML file. Only read and parse failures are errors.
func loadFileIfExists(k *koanf.Koanf, path string) error {
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}

	return k.Load(file.Provider(path), yaml.Parser())
}
