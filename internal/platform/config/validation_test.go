package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCommand(timeout time.Duration) CommandConfig {
	return CommandConfig{
		Timeout:        timeout,
		FaultInjection: FaultInjectionConfig{Delay: 11 * time.Second},
		Bulkhead:       BulkheadConfig{MaxConcurrent: 30, MaxQueue: 10},
		CircuitBreaker: CircuitBreakerConfig{
			Window:                 15 * time.Second,
			Buckets:                5,
			RequestVolumeThreshold: 10,
			ErrorThresholdPercent:  75,
			SleepWindow:            7 * time.Second,
		},
	}
}

// validConfig is a licensing service config that passes validation.
func validConfig() *Config {
	return &Config{
		App: AppConfig{Name: "licensingservice", Version: "1.0.0", Environment: "local"},
		Server: ServerConfig{
			Port:            8080,
			Host:            "0.0.0.0",
			ReadTimeout:     30 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     2 * time.Minute,
			ShutdownTimeout: 10 * time.Second,
			MaxRequestSize:  1 << 20,
		},
		Log: LogConfig{Level: "info", Format: "json"},
		Client: ClientConfig{
			Timeout: 30 * time.Second,
			Retry: RetryConfig{
				MaxAttempts:     1,
				InitialInterval: 100 * time.Millisecond,
				MaxInterval:     5 * time.Second,
				Multiplier:      2,
				JitterFactor:    0.25,
			},
			Transport: TransportConfig{MaxIdleConns: 100, MaxIdleConnsPerHost: 10, IdleConnTimeout: 90 * time.Second},
		},
		Resilience: ResilienceConfig{
			Default:    validCommand(time.Second),
			Enrichment: validCommand(15 * time.Second),
		},
		Directory: DirectoryConfig{
			Backend: DirectoryBackendStatic,
			Instances: []StaticInstanceConfig{
				{Service: "organizationservice", InstanceID: "org-1", Host: "127.0.0.1", Port: 8081},
			},
			Redis: RedisConfig{Addr: "localhost:6379", KeyPrefix: "discovery", TTL: 30 * time.Second},
		},
		Gateway: GatewayConfig{
			Routes: []RouteConfig{{Prefix: "/licensingservice", ServiceID: "licensingservice", StripPrefix: true}},
		},
		Services: ServicesConfig{
			Organization: ServiceEndpointConfig{
				ServiceID: "organizationservice",
				BaseURL:   "http://127.0.0.1:8081",
				Name:      "organization-service",
			},
		},
		Storage: StorageConfig{InMemory: true},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   []string // substrings of the error; empty means valid
	}{
		{"baseline", func(*Config) {}, nil},

		// app
		{"app name", func(c *Config) { c.App.Name = "" }, []string{"app.name is required"}},
		{"app version", func(c *Config) { c.App.Version = "" }, []string{"app.version is required"}},
		{"environment missing", func(c *Config) { c.App.Environment = "" }, []string{"app.environment"}},
		{"environment unknown", func(c *Config) { c.App.Environment = "staging" }, []string{"app.environment must be one of"}},
		{"environment qa", func(c *Config) { c.App.Environment = "qa" }, nil},
		{"environment prod", func(c *Config) { c.App.Environment = "prod" }, nil},

		// server
		{"port lowest", func(c *Config) { c.Server.Port = 1 }, nil},
		{"port highest", func(c *Config) { c.Server.Port = 65535 }, nil},
		{"port zero", func(c *Config) { c.Server.Port = 0 }, []string{"server.port"}},
		{"port negative", func(c *Config) { c.Server.Port = -1 }, []string{"server.port must be at least 1"}},
		{"port too high", func(c *Config) { c.Server.Port = 65536 }, []string{"server.port must be at most 65535"}},
		{"host", func(c *Config) { c.Server.Host = "" }, []string{"server.host is required"}},
		{"read timeout", func(c *Config) { c.Server.ReadTimeout = 500 * time.Millisecond }, []string{"server.read_timeout"}},
		{"request size", func(c *Config) { c.Server.MaxRequestSize = 0 }, []string{"server.max_request_size"}},

		// log
		{"trace level", func(c *Config) { c.Log.Level = "trace" }, nil},
		{"level unknown", func(c *Config) { c.Log.Level = "verbose" }, []string{"log.level must be one of"}},
		{"level is case sensitive", func(c *Config) { c.Log.Level = "DEBUG" }, []string{"log.level"}},
		{"pretty format", func(c *Config) { c.Log.Format = "pretty" }, nil},
		{"format unknown", func(c *Config) { c.Log.Format = "xml" }, []string{"log.format"}},
		{"file off needs no path", func(c *Config) { c.Log.File = LogFileConfig{} }, nil},
		{"file on needs path", func(c *Config) { c.Log.File.Enabled = true }, []string{"log.file.path is required when"}},
		{"file size", func(c *Config) {
			c.Log.File = LogFileConfig{Enabled: true, Path: "/var/log/licensing.log", MaxSizeMB: 1025}
		}, []string{"log.file.max_size must be at most 1024"}},
		{"file complete", func(c *Config) {
			c.Log.File = LogFileConfig{Enabled: true, Path: "/var/log/licensing.log", MaxSizeMB: 100, MaxBackups: 3, MaxAgeDays: 28}
		}, nil},

		// telemetry
		{"telemetry off", func(c *Config) { c.Telemetry = TelemetryConfig{} }, nil},
		{"telemetry endpoint", func(c *Config) {
			c.Telemetry = TelemetryConfig{Enabled: true, ServiceName: "licensingservice"}
		}, []string{"telemetry.endpoint"}},
		{"telemetry service name", func(c *Config) {
			c.Telemetry = TelemetryConfig{Enabled: true, Endpoint: "http://localhost:4317"}
		}, []string{"telemetry.service_name"}},
		{"telemetry bad url", func(c *Config) {
			c.Telemetry = TelemetryConfig{Enabled: true, Endpoint: "not-a-url", ServiceName: "licensingservice"}
		}, []string{"telemetry.endpoint must be a valid URL"}},
		{"telemetry on", func(c *Config) {
			c.Telemetry = TelemetryConfig{Enabled: true, Endpoint: "http://localhost:4317", ServiceName: "licensingservice", SamplingRate: 0.5}
		}, nil},
		{"sampling above one", func(c *Config) { c.Telemetry.SamplingRate = 1.1 }, []string{"telemetry.sampling_rate"}},
		{"sampling negative", func(c *Config) { c.Telemetry.SamplingRate = -0.1 }, []string{"telemetry.sampling_rate"}},

		// client
		{"client timeout", func(c *Config) { c.Client.Timeout = 50 * time.Millisecond }, []string{"client.timeout"}},
		{"attempts ten", func(c *Config) { c.Client.Retry.MaxAttempts = 10 }, nil},
		{"attempts zero", func(c *Config) { c.Client.Retry.MaxAttempts = 0 }, []string{"client.retry.max_attempts"}},
		{"attempts eleven", func(c *Config) { c.Client.Retry.MaxAttempts = 11 }, []string{"client.retry.max_attempts"}},
		{"initial interval", func(c *Config) { c.Client.Retry.InitialInterval = 5 * time.Millisecond }, []string{"client.retry.initial_interval"}},
		{"max interval", func(c *Config) { c.Client.Retry.MaxInterval = 50 * time.Millisecond }, []string{"client.retry.max_interval"}},
		{"multiplier one", func(c *Config) { c.Client.Retry.Multiplier = 1 }, []string{"client.retry.multiplier"}},
		{"multiplier ten", func(c *Config) { c.Client.Retry.Multiplier = 10 }, nil},
		{"multiplier above ten", func(c *Config) { c.Client.Retry.Multiplier = 10.1 }, []string{"client.retry.multiplier"}},

		// resilience
		{"threshold 100", func(c *Config) { c.Resilience.Enrichment.CircuitBreaker.ErrorThresholdPercent = 100 }, nil},
		{"threshold zero", func(c *Config) { c.Resilience.Enrichment.CircuitBreaker.ErrorThresholdPercent = 0 },
			[]string{"resilience.enrichment.circuit_breaker.error_threshold_percent"}},
		{"threshold 101", func(c *Config) { c.Resilience.Enrichment.CircuitBreaker.ErrorThresholdPercent = 101 },
			[]string{"resilience.enrichment.circuit_breaker.error_threshold_percent must be at most 100"}},
		{"fault probability", func(c *Config) { c.Resilience.Default.FaultInjection.Probability = 1.5 },
			[]string{"resilience.default.fault_injection.probability"}},
		{"bulkhead concurrency", func(c *Config) { c.Resilience.Default.Bulkhead.MaxConcurrent = 0 },
			[]string{"resilience.default.bulkhead.max_concurrent"}},
		{"window split", func(c *Config) {
			c.Resilience.Default.CircuitBreaker.Window = 10*time.Second + time.Nanosecond
			c.Resilience.Default.CircuitBreaker.Buckets = 3
		}, []string{"resilience.default.circuit_breaker.window must divide evenly into 3 buckets"}},

		// directory
		{"backend unknown", func(c *Config) { c.Directory.Backend = "consul" }, []string{"directory.backend must be one of"}},
		{"redis addr", func(c *Config) {
			c.Directory.Backend = DirectoryBackendRedis
			c.Directory.Redis.Addr = ""
		}, []string{"directory.redis.addr is required"}},
		{"heartbeat vs ttl", func(c *Config) {
			c.Directory.Backend = DirectoryBackendRedis
			c.Directory.Registration = RegistrationConfig{Enabled: true, Host: "127.0.0.1", HeartbeatInterval: time.Minute}
		}, []string{"heartbeat_interval must be shorter than directory.redis.ttl"}},
		{"instance port", func(c *Config) { c.Directory.Instances[0].Port = 0 }, []string{"directory.instances[0].port"}},

		// gateway
		{"relative prefix", func(c *Config) { c.Gateway.Routes[0].Prefix = "licensingservice" },
			[]string{`gateway.routes[0].prefix must start with "/"`}},
		{"duplicate prefix", func(c *Config) { c.Gateway.Routes = append(c.Gateway.Routes, c.Gateway.Routes[0]) },
			[]string{`duplicate prefix "/licensingservice"`}},

		// storage
		{"disk store path", func(c *Config) { c.Storage.InMemory = false }, []string{"storage.path is required unless"}},
		{"seed license organization", func(c *Config) {
			c.Storage.Seed.Licenses = []SeedLicenseConfig{{ID: "l-1", ProductName: "CustomerPro"}}
		}, []string{"storage.seed.licenses[0].organization_id is required"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if len(tt.want) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			for _, w := range tt.want {
				assert.Contains(t, err.Error(), w)
			}
		})
	}
}

func TestValidate_ReportsEveryField(t *testing.T) {
	err := (&Config{App: AppConfig{Environment: "staging"}, Server: ServerConfig{Port: -1}}).Validate()
	require.Error(t, err)

	msg := err.Error()
	assert.Contains(t, msg, "config validation failed:")
	for _, key := range []string{"app.name", "app.version", "app.environment", "server.port", "server.host"} {
		assert.Contains(t, msg, key)
	}
}

func TestValidate_CrossFieldErrorsAreSorted(t *testing.T) {
	cfg := validConfig()
	cfg.Gateway.Routes = append(cfg.Gateway.Routes, cfg.Gateway.Routes[0])
	cfg.Directory.Backend = DirectoryBackendRedis
	cfg.Directory.Redis.Addr = ""

	errs := cfg.crossFieldErrors()
	require.Len(t, errs, 2)
	assert.IsNonDecreasing(t, errs)
}

func TestKeyPath(t *testing.T) {
	assert.Equal(t, "server.port", keyPath("Config.server.port"))
	assert.Equal(t, "directory.instances[0].port", keyPath("Config.directory.instances[0].port"))
	assert.Equal(t, "Config", keyPath("Config"))
}
