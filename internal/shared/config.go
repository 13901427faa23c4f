package shared

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	DriverMySQL = "mysql"
	DriverMongo = "mongo"
)

type Config struct {
	AppEnv         string
	LogLevel       string
	HTTPAddr       string
	MetricsAddr    string
	RequestTimeout time.Duration
	CORSOrigins    []string

	StoreDriver   string
	MySQLDSN      string
	MongoURI      string
	MongoDatabase string

	RedisAddr string
	RedisPass string
	RedisDB   int

	JWTSecret        string
	TokenTTL         time.Duration
	LoginMaxAttempts int
	LoginLockout     time.Duration

	UploadsDir     string
	UploadMaxBytes int64

	CountryMetaBase string
	CountryMetaRPS  int
	SeedFile        string
	SeedWorkers     int
}

func (c Config) IsDev() bool {
	return c.AppEnv == "dev" || c.AppEnv == "development"
}

func defaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "prod")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", ":8080")
	v.SetDefault("METRICS_ADDR", ":9100")
	v.SetDefault("REQUEST_TIMEOUT", "15s")
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("STORE_DRIVER", DriverMySQL)
	v.SetDefault("MYSQL_DSN", "root:root@tcp(localhost:3306)/travel?parseTime=true&charset=utf8mb4&loc=UTC")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "travel")
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "24h")
	v.SetDefault("LOGIN_MAX_ATTEMPTS", 5)
	v.SetDefault("LOGIN_LOCKOUT", "15m")
	v.SetDefault("UPLOADS_DIR", "uploads")
	v.SetDefault("UPLOAD_MAX_BYTES", 10<<20)
	v.SetDefault("COUNTRY_META_BASE_URL", "https://restcountries.com")
	v.SetDefault("COUNTRY_META_RPS", 5)
	v.SetDefault("SEED_FILE", "seed/countries.json")
	v.SetDefault("SEED_WORKERS", 4)
}

// Load reads configuration from the environment, optionally layered over a
// file named by CONFIG_FILE.
func Load() (Config, error) {
	return load(viper.New())
}

func load(v *viper.Viper) (Config, error) {
	defaults(v)
	v.AutomaticEnv()

	if f := v.GetString("CONFIG_FILE"); f != "" {
		v.SetConfigFile(f)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", f, err)
		}
	}

	c := Config{
		AppEnv:           v.GetString("APP_ENV"),
		LogLevel:         v.GetString("LOG_LEVEL"),
		HTTPAddr:         v.GetString("HTTP_ADDR"),
		MetricsAddr:      v.GetString("METRICS_ADDR"),
		RequestTimeout:   v.GetDuration("REQUEST_TIMEOUT"),
		CORSOrigins:      splitList(v.GetString("CORS_ORIGINS")),
		StoreDriver:      strings.ToLower(v.GetString("STORE_DRIVER")),
		MySQLDSN:         v.GetString("MYSQL_DSN"),
		MongoURI:         v.GetString("MONGO_URI"),
		MongoDatabase:    v.GetString("MONGO_DATABASE"),
		RedisAddr:        v.GetString("REDIS_ADDR"),
		RedisPass:        v.GetString("REDIS_PASSWORD"),
		RedisDB:          v.GetInt("REDIS_DB"),
		JWTSecret:        v.GetString("JWT_SECRET"),
		TokenTTL:         v.GetDuration("TOKEN_TTL"),
		LoginMaxAttempts: v.GetInt("LOGIN_MAX_ATTEMPTS"),
		LoginLockout:     v.GetDuration("LOGIN_LOCKOUT"),
		UploadsDir:       v.GetString("UPLOADS_DIR"),
		UploadMaxBytes:   v.GetInt64("UPLOAD_MAX_BYTES"),
		CountryMetaBase:  v.GetString("COUNTRY_META_BASE_URL"),
		CountryMetaRPS:   v.GetInt("COUNTRY_META_RPS"),
		SeedFile:         v.GetString("SEED_FILE"),
		SeedWorkers:      v.GetInt("SEED_WORKERS"),
	}
	return c, c.validate()
}

func (c Config) validate() error {
	var errs []error
	switch c.StoreDriver {
	case DriverMySQL, DriverMongo:
	default:
		errs = append(errs, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", DriverMySQL, DriverMongo, c.StoreDriver))
	}
	if c.JWTSecret == "" {
		if !c.IsDev() {
			errs = append(errs, errors.New("JWT_SECRET is required outside dev"))
		} else {
			log.Warn().Msg("JWT_SECRET is empty")
		}
	}
	if c.SeedWorkers < 1 {
		errs = append(errs, errors.New("SEED_WORKERS must be positive"))
	}
	return errors.Join(errs...)
}

func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
