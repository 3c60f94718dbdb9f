package config

import (
	"errors"
	"fmt"
	"reflect"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// validate reports fields by their koanf key so errors read like the YAML
// that produced them.
var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("koanf"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// fieldMessages renders one failed tag. Tags missing here fall back to a
// generic message naming the tag.
var fieldMessages = map[string]func(key, param string) string{
	"required":        func(k, _ string) string { return k + " is required" },
	"required_if":     func(k, p string) string { return fmt.Sprintf("%s is required when %s", k, p) },
	"required_unless": func(k, p string) string { return fmt.Sprintf("%s is required unless %s", k, p) },
	"startswith":      func(k, p string) string { return fmt.Sprintf("%s must start with %q", k, p) },
	"min":             func(k, p string) string { return fmt.Sprintf("%s must be at least %s", k, p) },
	"max":             func(k, p string) string { return fmt.Sprintf("%s must be at most %s", k, p) },
	"oneof":           func(k, p string) string { return fmt.Sprintf("%s must be one of: %s", k, p) },
	"url":             func(k, _ string) string { return k + " must be a valid URL" },
}

// Validate checks struct tags first and then the rules that span sections.
// A service must not start with a config that fails either.
func (c *Config) Validate() error {
	var problems []string

	if err := validate.Struct(c); err != nil {
		var fieldErrs validator.ValidationErrors
		if !errors.As(err, &fieldErrs) {
			return err
		}
		for _, fe := range fieldErrs {
			problems = append(problems, describe(fe))
		}
	} else {
		problems = c.crossFieldErrors()
	}

	if len(problems) == 0 {
		return nil
	}

	return fmt.Errorf("config validation failed:\n  %s", strings.Join(problems, "\n  "))
}

func describe(fe validator.FieldError) string {
	key := keyPath(fe.Namespace())
	if msg, ok := fieldMessages[fe.Tag()]; ok {
		return msg(key, fe.Param())
	}
	return fmt.Sprintf("%s failed validation: %s", key, fe.Tag())
}

// keyPath drops the root type from a validator namespace:
// "Config.server.read_timeout" becomes "server.read_timeout".
func keyPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

// crossFieldErrors covers rules struct tags cannot express. The result is
// sorted so the message is stable.
func (c *Config) crossFieldErrors() []string {
	var errs []string

	dir := c.Directory
	if dir.Backend == DirectoryBackendRedis {
		if dir.Redis.Addr == "" {
			errs = append(errs, "directory.redis.addr is required when directory.backend is redis")
		}
		if dir.Registration.Enabled && dir.Registration.HeartbeatInterval >= dir.Redis.TTL {
			errs = append(errs, "directory.registration.heartbeat_interval must be shorter than directory.redis.ttl")
		}
	}

	for name, cmd := range map[string]CommandConfig{
		"default":    c.Resilience.Default,
		"enrichment": c.Resilience.Enrichment,
	} {
		if cb := cmd.CircuitBreaker; cb.Buckets > 0 && cb.Window%time.Duration(cb.Buckets) != 0 {
			errs = append(errs, fmt.Sprintf(
				"resilience.%s.circuit_breaker.window must divide evenly into %d buckets", name, cb.Buckets))
		}
	}

	seen := make(map[string]bool, len(c.Gateway.Routes))
	for _, r := range c.Gateway.Routes {
		if seen[r.Prefix] {
			errs = append(errs, fmt.Sprintf("gateway.routes has duplicate prefix %q", r.Prefix))
		}
		seen[r.Prefix] = true
	}

	slices.Sort(errs)
	return errs
}
