package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	App struct {
		// dev | prod
		Env      string `yaml:"env"`
		LogLevel string `yaml:"log_level"`
	} `yaml:"app"`

	Server struct {
		Addr               string   `yaml:"addr"`
		CORSAllowedOrigins []string `yaml:"cors_allowed_origins"`
	} `yaml:"server"`

	// Appwrite: servicio de identidad. Los nombres de env son los que inyecta
	// el runtime de funciones (APPWRITE_FUNCTION_*).
	Appwrite struct {
		Endpoint  string `yaml:"endpoint"`
		ProjectID string `yaml:"project_id"`
		// APIKey es la key por defecto; el header x-appwrite-key la pisa por request.
		APIKey string `yaml:"api_key"`
		// APIKeySecretARN: si está seteado y APIKey vacío, los binarios resuelven
		// la key desde AWS Secrets Manager al arrancar.
		APIKeySecretARN string `yaml:"api_key_secret_arn"`
	} `yaml:"appwrite"`

	Rate struct {
		Enabled     bool   `yaml:"enabled"`
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`
	} `yaml:"rate"`

	Redis struct {
		Addr   string `yaml:"addr"`
		DB     int    `yaml:"db"`
		Prefix string `yaml:"prefix"`
	} `yaml:"redis"`

	Metrics struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"metrics"`
}

// Load arma la config: YAML opcional (path vacío = sin archivo), defaults,
// overrides por env y validación.
func Load(path string) (*Config, error) {
	var c Config
	if strings.TrimSpace(path) != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	c.applyDefaults()
	c.applyEnvOverrides()

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// FromEnv es Load sin archivo; el path sale de CONFIG_PATH si existe.
func FromEnv() (*Config, error) {
	return Load(os.Getenv("CONFIG_PATH"))
}

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 60
	}
	if c.Redis.Prefix == "" {
		c.Redis.Prefix = "userprofile:rl:"
	}
}

// applyEnvOverrides: las variables de entorno pisan el YAML.
func (c *Config) applyEnvOverrides() {
	// APP
	if v, ok := getEnvStr("APP_ENV"); ok {
		c.App.Env = strings.ToLower(v)
	}
	if v, ok := getEnvStr("LOG_LEVEL"); ok {
		c.App.LogLevel = v
	}

	// SERVER
	if v, ok := getEnvStr("SERVER_ADDR"); ok {
		c.Server.Addr = v
	}
	if v, ok := getEnvCSV("SERVER_CORS_ALLOWED_ORIGINS"); ok {
		c.Server.CORSAllowedOrigins = v
	}

	// APPWRITE
	if v, ok := getEnvStr("APPWRITE_FUNCTION_ENDPOINT"); ok {
		c.Appwrite.Endpoint = v
	}
	if v, ok := getEnvStr("APPWRITE_FUNCTION_PROJECT_ID"); ok {
		c.Appwrite.ProjectID = v
	}
	if v, ok := getEnvStr("APPWRITE_FUNCTION_API_KEY"); ok {
		c.Appwrite.APIKey = v
	}
	if v, ok := getEnvStr("APPWRITE_FUNCTION_API_KEY_SECRET_ARN"); ok {
		c.Appwrite.APIKeySecretARN = v
	}

	// RATE
	if v, ok := getEnvBool("RATE_ENABLED"); ok {
		c.Rate.Enabled = v
	}
	if v, ok := getEnvStr("RATE_WINDOW"); ok {
		c.Rate.Window = v
	}
	if v, ok := getEnvInt("RATE_MAX_REQUESTS"); ok {
		c.Rate.MaxRequests = v
	}

	// REDIS
	if v, ok := getEnvStr("REDIS_ADDR"); ok {
		c.Redis.Addr = v
	}
	if v, ok := getEnvInt("REDIS_DB"); ok {
		c.Redis.DB = v
	}
	if v, ok := getEnvStr("REDIS_PREFIX"); ok {
		c.Redis.Prefix = v
	}

	// METRICS
	if v, ok := getEnvBool("METRICS_ENABLED"); ok {
		c.Metrics.Enabled = v
	}
}

// Validate revisa valores que harían fallar todos los requests.
// La API key NO es obligatoria: puede venir por header en cada request.
func (c *Config) Validate() error {
	var errs []error

	if ep := strings.TrimSpace(c.Appwrite.Endpoint); ep != "" {
		u, err := url.Parse(ep)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("config: APPWRITE_FUNCTION_ENDPOINT %q is not an absolute URL", ep))
		}
	}
	if d, err := time.ParseDuration(c.Rate.Window); err != nil || d <= 0 {
		errs = append(errs, fmt.Errorf("config: invalid rate window %q", c.Rate.Window))
	}
	if c.Rate.MaxRequests < 0 {
		errs = append(errs, errors.New("config: rate max_requests must be >= 0"))
	}
	return errors.Join(errs...)
}

// RateWindow devuelve la ventana ya parseada (Validate garantiza que es válida).
func (c *Config) RateWindow() time.Duration {
	d, err := time.ParseDuration(c.Rate.Window)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// IsProd indica si corremos en producción.
func (c *Config) IsProd() bool {
	return strings.EqualFold(c.App.Env, "prod")
}

// ---- Helpers env ----

func getEnvStr(key string) (string, bool) {
	v := strings.TrimSpace(os.Getenv(key))
	return v, v != ""
}
func getEnvInt(key string) (int, bool) {
	if s, ok := getEnvStr(key); ok {
		if i, err := strconv.Atoi(s); err == nil {
			return i, true
		}
	}
	return 0, false
}
func getEnvBool(key string) (bool, bool) {
	if s, ok := getEnvStr(key); ok {
		if b, err := strconv.ParseBool(s); err == nil {
			return b, true
		}
	}
	return false, false
}
func getEnvCSV(key string) ([]string, bool) {
	if s, ok := getEnvStr(key); ok {
		parts := strings.Split(s, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				out = append(out, p)
			}
		}
		return out, true
	}
	return nil, false
}
