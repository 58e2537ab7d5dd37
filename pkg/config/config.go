package config

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	devSessionSecret = "dev_session_secret"
	devUploadsSecret = "dev_uploads_secret"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	PublicURL string

	Database DatabaseConfig
	Redis    RedisConfig
	Session  SessionConfig
	CORS     CORSConfig
	Log      LogConfig
	Google   GoogleConfig
	Email    EmailConfig
	Uploads  UploadsConfig
	Grades   GradesConfig
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
	AutoMigrate  bool
}

type RedisConfig struct {
	Enabled  bool
	URL      string
	Host     string
	Port     int
	Password string
	DB       int
}

// SessionConfig governs the signed session cookie.
type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Issuer     string
	Secure     bool
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
}

// GoogleConfig configures the institutional Google sign-in flow.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Domain       string
	AuthURL      string
	TokenURL     string
	UserInfoURL  string
	HTTPTimeout  time.Duration
}

// Configured reports whether the OAuth client credentials are present.
func (g GoogleConfig) Configured() bool {
	return g.ClientID != "" && g.ClientSecret != "" && g.RedirectURL != "" && g.Domain != ""
}

// EmailConfig selects and tunes the outbound mail provider.
type EmailConfig struct {
	Provider       string
	SendgridAPIKey string
	FromAddress    string
	FromName       string
	Workers        int
}

// UploadsConfig controls local file storage for submissions.
type UploadsConfig struct {
	StorageDir       string
	SignedURLSecret  string
	SignedURLTTL     time.Duration
	MaxFileSizeBytes int64
	AllowedMIMEs     []string
}

// GradesConfig tunes grade summaries.
type GradesConfig struct {
	TrendThreshold float64
	CacheTTL       time.Duration
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	cfg := fromViper(v)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings that must never reach production: a missing
// secret, or one of the development defaults.
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		return errors.New("SESSION_SECRET is required")
	}
	if c.Env != EnvProduction {
		return nil
	}
	if c.Session.Secret == devSessionSecret {
		return errors.New("SESSION_SECRET must be set in production")
	}
	if c.Uploads.SignedURLSecret == "" || c.Uploads.SignedURLSecret == devUploadsSecret {
		return errors.New("UPLOADS_SIGNED_URL_SECRET must be set in production")
	}
	return nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.PublicURL = strings.TrimRight(v.GetString("PUBLIC_URL"), "/")

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
		AutoMigrate:  v.GetBool("DB_AUTO_MIGRATE"),
	}

	cfg.Redis = RedisConfig{
		Enabled:  v.GetBool("ENABLE_REDIS"),
		URL:      v.GetString("REDIS_URL"),
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Session = SessionConfig{
		Secret:     v.GetString("SESSION_SECRET"),
		TTL:        parseDuration(v.GetString("SESSION_TTL"), 24*time.Hour),
		CookieName: v.GetString("SESSION_COOKIE_NAME"),
		Issuer:     v.GetString("SESSION_ISSUER"),
		Secure:     cfg.Env == EnvProduction || v.GetBool("SESSION_SECURE"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
	}

	cfg.Google = GoogleConfig{
		ClientID:     v.GetString("GOOGLE_CLIENT_ID"),
		ClientSecret: v.GetString("GOOGLE_CLIENT_SECRET"),
		RedirectURL:  v.GetString("GOOGLE_REDIRECT_URL"),
		Domain:       strings.ToLower(strings.TrimSpace(v.GetString("GOOGLE_ALLOWED_DOMAIN"))),
		AuthURL:      v.GetString("GOOGLE_AUTH_URL"),
		TokenURL:     v.GetString("GOOGLE_TOKEN_URL"),
		UserInfoURL:  v.GetString("GOOGLE_USERINFO_URL"),
		HTTPTimeout:  parseDuration(v.GetString("GOOGLE_HTTP_TIMEOUT"), 10*time.Second),
	}

	cfg.Email = EmailConfig{
		Provider:       strings.ToLower(v.GetString("EMAIL_PROVIDER")),
		SendgridAPIKey: v.GetString("SENDGRID_API_KEY"),
		FromAddress:    v.GetString("EMAIL_FROM_ADDRESS"),
		FromName:       v.GetString("EMAIL_FROM_NAME"),
		Workers:        v.GetInt("EMAIL_WORKERS"),
	}

	maxUpload := v.GetInt64("UPLOADS_MAX_FILE_SIZE")
	if maxUpload <= 0 {
		maxUpload = 10 * 1024 * 1024
	}
	cfg.Uploads = UploadsConfig{
		StorageDir:       v.GetString("UPLOADS_STORAGE_DIR"),
		SignedURLSecret:  v.GetString("UPLOADS_SIGNED_URL_SECRET"),
		SignedURLTTL:     parseDuration(v.GetString("UPLOADS_SIGNED_URL_TTL"), 30*24*time.Hour),
		MaxFileSizeBytes: maxUpload,
		AllowedMIMEs:     splitAndTrim(v.GetString("UPLOADS_ALLOWED_MIME_TYPES")),
	}

	threshold := v.GetFloat64("GRADES_TREND_THRESHOLD")
	if threshold <= 0 {
		threshold = 51
	}
	cfg.Grades = GradesConfig{
		TrendThreshold: threshold,
		CacheTTL:       parseDuration(v.GetString("GRADES_CACHE_TTL"), 5*time.Minute),
	}

	return cfg
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 8080)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("PUBLIC_URL", "http://localhost:8080")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "campus_virtual")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 10)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_AUTO_MIGRATE", true)

	v.SetDefault("ENABLE_REDIS", false)
	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SESSION_SECRET", devSessionSecret)
	v.SetDefault("SESSION_TTL", "24h")
	v.SetDefault("SESSION_COOKIE_NAME", "session")
	v.SetDefault("SESSION_ISSUER", "campus-virtual")
	v.SetDefault("SESSION_SECURE", false)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("GOOGLE_CLIENT_ID", "")
	v.SetDefault("GOOGLE_CLIENT_SECRET", "")
	v.SetDefault("GOOGLE_REDIRECT_URL", "")
	v.SetDefault("GOOGLE_ALLOWED_DOMAIN", "")
	v.SetDefault("GOOGLE_AUTH_URL", "https://accounts.google.com/o/oauth2/v2/auth")
	v.SetDefault("GOOGLE_TOKEN_URL", "https://oauth2.googleapis.com/token")
	v.SetDefault("GOOGLE_USERINFO_URL", "https://openidconnect.googleapis.com/v1/userinfo")
	v.SetDefault("GOOGLE_HTTP_TIMEOUT", "10s")

	v.SetDefault("EMAIL_PROVIDER", "console")
	v.SetDefault("SENDGRID_API_KEY", "")
	v.SetDefault("EMAIL_FROM_ADDRESS", "noreply@localhost")
	v.SetDefault("EMAIL_FROM_NAME", "Campus Virtual")
	v.SetDefault("EMAIL_WORKERS", 2)

	v.SetDefault("UPLOADS_STORAGE_DIR", "./uploads")
	v.SetDefault("UPLOADS_SIGNED_URL_SECRET", devUploadsSecret)
	v.SetDefault("UPLOADS_SIGNED_URL_TTL", "720h")
	v.SetDefault("UPLOADS_MAX_FILE_SIZE", 10*1024*1024)
	v.SetDefault("UPLOADS_ALLOWED_MIME_TYPES", "application/pdf,application/zip,image/png,image/jpeg,text/plain,application/vnd.openxmlformats-officedocument.wordprocessingml.document")

	v.SetDefault("GRADES_TREND_THRESHOLD", 51)
	v.SetDefault("GRADES_CACHE_TTL", "5m")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
