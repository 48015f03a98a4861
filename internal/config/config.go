package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/vadimbarashkov/shortlink/pkg/postgres"
	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

type Config struct {
	Env            string `yaml:"env" validate:"oneof=dev stage prod"`
	AppName        string `yaml:"app_name"`
	BaseURL        string `yaml:"base_url" validate:"required,http_url"`
	SecretKey      string `yaml:"secret_key"`
	MigrationsPath string `yaml:"migrations_path" validate:"required"`
	ShortCode      `yaml:"short_code"`
	HTTPServer     `yaml:"http_server"`
	Postgres       `yaml:"postgres"`
}

type ShortCode struct {
	Length      int `yaml:"length" validate:"min=1"`
	MaxLength   int `yaml:"max_length" validate:"gtefield=Length"`
	MaxAttempts int `yaml:"max_attempts" validate:"min=1"`
	WidenAfter  int `yaml:"widen_after" validate:"min=0"`
}

var defaultShortCode = ShortCode{
	Length:      6,
	MaxLength:   12,
	MaxAttempts: 10,
	WidenAfter:  3,
}

type HTTPServer struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
}

var defaultHTTPServer = HTTPServer{
	Port:           8080,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// Postgres is the database section of the config file.
type Postgres = postgres.Config

// Load reads the YAML file at path over the defaults and applies environment
// overrides. An empty path skips the file. Variables from a .env file in the
// working directory are loaded first and never replace variables already set.
func Load(path string) (*Config, error) {
	const op = "config.Load"

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%s: failed to load .env file: %w", op, err)
	}

	var cfg Config
	setDefaults(&cfg)

	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
		}
		defer f.Close()

		if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
			return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
		}
	}

	applyEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &cfg, nil
}

// Validate checks the settings the service cannot run without.
// Errors name fields by their YAML keys.
func (c *Config) Validate() error {
	const op = "config.Config.Validate"

	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%s: invalid config: %w", op, err)
	}

	return nil
}

func applyEnv(cfg *Config) {
	for key, dst := range map[string]*string{
		"ENV":             &cfg.Env,
		"APP_NAME":        &cfg.AppName,
		"BASE_URL":        &cfg.BaseURL,
		"SECRET_KEY":      &cfg.SecretKey,
		"DATABASE_URL":    &cfg.Postgres.URL,
		"MIGRATIONS_PATH": &cfg.MigrationsPath,
	} {
		if v, ok := os.LookupEnv(key); ok && v != "" {
			*dst = v
		}
	}
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.AppName = "URL Shortener"
	cfg.BaseURL = "http://localhost:8080"
	cfg.MigrationsPath = "file://migrations"
	cfg.ShortCode = defaultShortCode
	cfg.HTTPServer = defaultHTTPServer
	cfg.Postgres = postgres.DefaultConfig()
}
