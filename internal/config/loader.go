package config

import (
	"fmt"
	"log/slog"
	"os"
	"reflect"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

var durationType = reflect.TypeOf(time.Duration(0))

// Load reads the configuration from the environment, fills defaults and
// validates the result.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := fill(reflect.ValueOf(cfg).Elem()); err != nil {
		return nil, fmt.Errorf("config load: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// fill walks the nested section structs and sets every field tagged with
// env. The tag lists variable names in lookup order: `env:"PORT,SERVER_PORT"`.
func fill(v reflect.Value) error {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		field, val := t.Field(i), v.Field(i)
		if !val.CanSet() {
			continue
		}
		if field.Type.Kind() == reflect.Struct {
			if err := fill(val); err != nil {
				return err
			}
			continue
		}

		tag := field.Tag.Get("env")
		if tag == "" {
			continue
		}
		names := strings.Split(tag, ",")

		raw := lookupEnv(names)
		if raw == "" {
			if field.Tag.Get("required") == "true" {
				return fmt.Errorf("required environment variable %s is not set", names[0])
			}
			raw = field.Tag.Get("default")
		}
		if raw == "" {
			continue
		}

		if err := set(val, raw, field.Tag.Get("unit")); err != nil {
			return fmt.Errorf("invalid value for %s=%q: %w", names[0], raw, err)
		}
	}
	return nil
}

func lookupEnv(names []string) string {
	for _, name := range names {
		if v := os.Getenv(strings.TrimSpace(name)); v != "" {
			return v
		}
	}
	return ""
}

func set(val reflect.Value, raw, unit string) error {
	switch {
	case val.Type() == durationType:
		d, err := time.ParseDuration(raw)
		if err != nil {
			return err
		}
		val.SetInt(int64(d))

	case val.Kind() == reflect.Int64 && unit == "bytes":
		n, err := parseSize(raw)
		if err != nil {
			return err
		}
		val.SetInt(n)

	case val.Kind() == reflect.Int || val.Kind() == reflect.Int64:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid integer: %w", err)
		}
		val.SetInt(n)

	case val.Kind() == reflect.Bool:
		b, err := strconv.ParseBool(raw)
		if err != nil {
			return fmt.Errorf("invalid boolean: %w", err)
		}
		val.SetBool(b)

	case val.Kind() == reflect.String:
		val.SetString(raw)

	case val.Kind() == reflect.Slice && val.Type().Elem().Kind() == reflect.String:
		var items []string
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				items = append(items, p)
			}
		}
		val.Set(reflect.ValueOf(items))

	default:
		return fmt.Errorf("unsupported field type %s", val.Type())
	}
	return nil
}

var sizeUnits = []struct {
	suffix string
	mult   int64
}{
	{"GB", 1 << 30},
	{"MB", 1 << 20},
	{"KB", 1 << 10},
	{"B", 1},
}

// parseSize reads a byte count such as "20971520", "20MB" or "512 kb".
func parseSize(raw string) (int64, error) {
	s := strings.ToUpper(strings.TrimSpace(raw))
	mult := int64(1)
	for _, u := range sizeUnits {
		if strings.HasSuffix(s, u.suffix) {
			s, mult = strings.TrimSpace(strings.TrimSuffix(s, u.suffix)), u.mult
			break
		}
	}
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid size %q: want bytes or a KB, MB or GB suffix", raw)
	}
	return n * mult, nil
}

// problems collects validation failures so Validate reports all of them.
type problems []string

func (p *problems) check(ok bool, format string, args ...any) {
	if !ok {
		*p = append(*p, fmt.Sprintf(format, args...))
	}
}

// Validate reports every setting that is out of range.
func (c *Config) Validate() error {
	var p problems

	p.check(c.Database.URL != "", "DATABASE_URL is required")
	p.check(c.Database.MaxConns > 0, "DB_MAX_CONNS must be positive")
	p.check(c.Database.MinConns >= 0, "DB_MIN_CONNS must be non-negative")
	p.check(c.Database.MaxConns >= c.Database.MinConns,
		"DB_MAX_CONNS (%d) must be >= DB_MIN_CONNS (%d)", c.Database.MaxConns, c.Database.MinConns)

	p.check(c.Server.Port > 0 && c.Server.Port <= 65535, "PORT (%d) must be 1-65535", c.Server.Port)
	p.check(c.Server.ReadTimeout >= 0, "SERVER_READ_TIMEOUT must be non-negative")
	p.check(c.Server.ShutdownTimeout > 0, "SHUTDOWN_TIMEOUT must be positive")

	c.Import.validate(&p)

	p.check(!c.Auth.Required || c.Auth.JWTSecret != "",
		"AUTH_REQUIRED is true but JWT_SECRET is empty; configure a secret or disable auth")
	p.check(c.Auth.Required || c.Auth.DevTenant != "", "AUTH_DEV_TENANT is required when AUTH_REQUIRED is false")

	p.check(!c.Rate.Enabled || (c.Rate.RPS > 0 && c.Rate.Burst > 0),
		"RATE_LIMIT_RPS and RATE_LIMIT_BURST must be positive when rate limiting is enabled")

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		p.check(false, "LOG_LEVEL (%q) must be one of: debug, info, warn, error", c.Logging.Level)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		p.check(false, "LOG_FORMAT (%q) must be one of: text, json", c.Logging.Format)
	}

	if len(p) > 0 {
		return fmt.Errorf("validation failed:\n  - %s", strings.Join(p, "\n  - "))
	}
	return nil
}

func (c *ImportConfig) validate(p *problems) {
	p.check(c.BatchSize > 0, "IMPORT_BATCH_SIZE must be positive")
	p.check(c.MaxFileSize > 0, "IMPORT_MAX_FILE_SIZE must be positive")
	p.check(c.MaxConcurrent > 0, "IMPORT_MAX_CONCURRENT must be positive")
	p.check(c.MaxWaitTime > 0, "IMPORT_MAX_WAIT_TIME must be positive")
	p.check(c.Timeout > 0, "IMPORT_TIMEOUT must be positive")
	p.check(utf8.RuneCountInString(c.Delimiter) == 1 && c.Delimiter != `"` && c.Delimiter != "\n",
		"IMPORT_DELIMITER (%q) must be a single character other than a quote or newline", c.Delimiter)
	p.check(len(c.PhoneRegion) == 2, "IMPORT_PHONE_REGION (%q) must be a 2-letter region code", c.PhoneRegion)
	p.check(c.LockTTL >= time.Second, "IMPORT_LOCK_TTL must be at least 1s")
}

// LogValue implements slog.LogValuer. The database URL and JWT secret are
// never logged.
func (c *Config) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("addr", c.Server.Addr()),
		slog.Int("db_max_conns", c.Database.MaxConns),
		slog.Group("import",
			slog.Int("batch_size", c.Import.BatchSize),
			slog.Int64("max_file_size", c.Import.MaxFileSize),
			slog.Int("max_concurrent", c.Import.MaxConcurrent),
			slog.Duration("timeout", c.Import.Timeout),
			slog.String("delimiter", c.Import.Delimiter),
			slog.String("phone_region", c.Import.PhoneRegion),
		),
		slog.Bool("redis_locks", c.Redis.URL != ""),
		slog.Bool("auth_required", c.Auth.Required),
		slog.Bool("rate_limit", c.Rate.Enabled),
		slog.String("log_level", c.Logging.Level),
	)
}
