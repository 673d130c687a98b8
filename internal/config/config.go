package config

import (
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"
)

var validEnvs = map[string]bool{
	"local": true,
	"alpha": true,
	"beta":  true,
	"prod":  true,
}

var validMailDrivers = map[string]bool{
	"log": true,
	"ses": true,
}

type Config struct {
	ServerPort  string
	AppEnv      string
	AuthDevMode bool
	LogLevel    string
	Timezone    string
	DB          DBConfig
	Cognito     CognitoConfig
	Weather     WeatherConfig
	Mail        MailConfig
}

func (c Config) ParseLogLevel() slog.Level {
	switch strings.ToLower(c.LogLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Location returns the zone used to decide what "today" is for due dates.
// Validate guarantees it loads; an unknown zone falls back to UTC.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (c Config) Validate() error {
	if _, err := strconv.Atoi(c.ServerPort); err != nil {
		return fmt.Errorf("invalid SERVER_PORT %q: %w", c.ServerPort, err)
	}
	if !validEnvs[c.AppEnv] {
		return fmt.Errorf("invalid APP_ENV %q: must be one of local, alpha, beta, prod", c.AppEnv)
	}
	if c.AuthDevMode && c.AppEnv != "local" {
		return fmt.Errorf("AUTH_DEV_MODE must not be enabled in %s environment", c.AppEnv)
	}
	if !c.AuthDevMode {
		if c.Cognito.UserPoolID == "" {
			return fmt.Errorf("COGNITO_USER_POOL_ID is required when AUTH_DEV_MODE is disabled")
		}
		if c.Cognito.AppClientID == "" {
			return fmt.Errorf("COGNITO_APP_CLIENT_ID is required when AUTH_DEV_MODE is disabled")
		}
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid APP_TIMEZONE %q: %w", c.Timezone, err)
	}
	if _, err := url.ParseRequestURI(c.Weather.BaseURL); err != nil {
		return fmt.Errorf("invalid OPENWEATHER_BASE_URL %q: %w", c.Weather.BaseURL, err)
	}
	if !validMailDrivers[c.Mail.Driver] {
		return fmt.Errorf("invalid MAIL_DRIVER %q: must be one of log, ses", c.Mail.Driver)
	}
	if c.Mail.Driver == "ses" && c.Mail.FromAddress == "" {
		return fmt.Errorf("MAIL_FROM_ADDRESS is required when MAIL_DRIVER is ses")
	}
	return nil
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (d DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     d.Name,
		RawQuery: fmt.Sprintf("sslmode=%s", url.QueryEscape(d.SSLMode)),
	}
	return u.String()
}

type CognitoConfig struct {
	Region          string
	UserPoolID      string
	AppClientID     string
	AppClientSecret string
}

// WeatherConfig holds the OpenWeatherMap settings. An empty APIKey is not a
// startup error; the weather endpoint reports it per request.
type WeatherConfig struct {
	APIKey      string
	BaseURL     string
	DefaultCity string
}

type MailConfig struct {
	Driver      string
	Region      string
	FromAddress string
	FromName    string
}

func Load() Config {
	cognitoRegion := envOrDefault("COGNITO_REGION", "ap-northeast-1")
	return Config{
		ServerPort:  envOrDefault("SERVER_PORT", "8080"),
		AppEnv:      envOrDefault("APP_ENV", "local"),
		AuthDevMode: strings.EqualFold(envOrDefault("AUTH_DEV_MODE", "false"), "true"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
		Timezone:    envOrDefault("APP_TIMEZONE", "UTC"),
		DB: DBConfig{
			Host:     envOrDefault("DB_HOST", "localhost"),
			Port:     envOrDefault("DB_PORT", "5432"),
			User:     envOrDefault("DB_USER", "task"),
			Password: envOrDefault("DB_PASSWORD", "task"),
			Name:     envOrDefault("DB_NAME", "task"),
			SSLMode:  envOrDefault("DB_SSLMODE", "disable"),
		},
		Cognito: CognitoConfig{
			Region:          cognitoRegion,
			UserPoolID:      os.Getenv("COGNITO_USER_POOL_ID"),
			AppClientID:     os.Getenv("COGNITO_APP_CLIENT_ID"),
			AppClientSecret: os.Getenv("COGNITO_APP_CLIENT_SECRET"),
		},
		Weather: WeatherConfig{
			APIKey:      os.Getenv("OPENWEATHER_API_KEY"),
			BaseURL:     envOrDefault("OPENWEATHER_BASE_URL", "https://api.openweathermap.org/data/2.5"),
			DefaultCity: envOrDefault("WEATHER_DEFAULT_CITY", "Madrid"),
		},
		Mail: MailConfig{
			Driver:      strings.ToLower(envOrDefault("MAIL_DRIVER", "log")),
			Region:      envOrDefault("MAIL_REGION", cognitoRegion),
			FromAddress: os.Getenv("MAIL_FROM_ADDRESS"),
			FromName:    envOrDefault("MAIL_FROM_NAME", "Gestor de Tareas"),
		},
	}
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}
