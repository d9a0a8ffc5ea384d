package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type HTTPConfig struct {
	Address      string        `yaml:"address" env:"HTTP_ADDRESS" env-default:":5000"`
	Timeout      time.Duration `yaml:"timeout" env:"HTTP_TIMEOUT" env-default:"5s"`
	MaxBodyBytes int64         `yaml:"max_body_bytes" env:"HTTP_MAX_BODY_BYTES" env-default:"1048576"`
}

type StorageConfig struct {
	Driver          string `yaml:"driver" env:"DB_DRIVER" env-default:"mongo"`
	MongoURI        string `yaml:"mongo_uri" env:"MONGO_URI" env-default:"mongodb://localhost:27017"`
	MongoDatabase   string `yaml:"mongo_database" env:"MONGO_DATABASE" env-default:"taskboard"`
	PostgresAddress string `yaml:"postgres_address" env:"DB_ADDRESS"`
}

type AuthConfig struct {
	JWTSecret              string        `yaml:"jwt_secret" env:"JWT_SECRET" env-required:"true"`
	TokenTTL               time.Duration `yaml:"token_ttl" env:"TOKEN_TTL" env-default:"24h"`
	BcryptCost             int           `yaml:"bcrypt_cost" env:"BCRYPT_COST" env-default:"10"`
	AllowAdminRegistration bool          `yaml:"allow_admin_registration" env:"ALLOW_ADMIN_REGISTRATION" env-default:"false"`
	AdminName              string        `yaml:"admin_name" env:"ADMIN_NAME" env-default:"admin"`
	AdminEmail             string        `yaml:"admin_email" env:"ADMIN_EMAIL"`
	AdminPassword          string        `yaml:"admin_password" env:"ADMIN_PASSWORD"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins" env:"CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	AllowedMethods []string `yaml:"allowed_methods" env:"CORS_ALLOWED_METHODS" env-separator:","`
	AllowedHeaders []string `yaml:"allowed_headers" env:"CORS_ALLOWED_HEADERS" env-separator:","`
	MaxAge         int      `yaml:"max_age" env:"CORS_MAX_AGE" env-default:"3600"`
}

type Config struct {
	LogLevel string        `yaml:"log_level" env:"LOG_LEVEL" env-default:"DEBUG"`
	HTTP     HTTPConfig    `yaml:"http"`
	Storage  StorageConfig `yaml:"storage"`
	Auth     AuthConfig    `yaml:"auth"`
	CORS     CORSConfig    `yaml:"cors"`
}

// Validate reports combinations the struct tags cannot express.
func (c Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMongo:
		if c.Storage.MongoURI == "" || c.Storage.MongoDatabase == "" {
			return errors.New("storage: mongo driver needs mongo_uri and mongo_database")
		}
	case DriverPostgres:
		if c.Storage.PostgresAddress == "" {
			return errors.New("storage: postgres driver needs postgres_address")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage: unsupported driver %q", c.Storage.Driver)
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("auth: jwt_secret is required")
	}
	if (c.Auth.AdminEmail == "") != (c.Auth.AdminPassword == "") {
		return errors.New("auth: admin_email and admin_password must be set together")
	}
	return nil
}

// Load reads configPath, falling back to env only when the file does not exist.
func Load(configPath string) (Config, error) {
	var cfg Config

	// если путь пустой - просто env
	if configPath == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("cannot read env: %w", err)
		}
		return cfg, cfg.Validate()
	}

	// пробуем файл, если его нет - env
	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		var pe *os.PathError
		if !errors.As(err, &pe) {
			return Config{}, fmt.Errorf("cannot read config %q: %w", configPath, err)
		}
		cfg = Config{}
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return Config{}, fmt.Errorf("cannot read env: %w", err)
		}
	}

	return cfg, cfg.Validate()
}

func MustLoad(configPath string) Config {
	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	return cfg
}
