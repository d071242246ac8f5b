package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultAddr = ":8080"

// Config captures the runtime configuration for a service process.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Brewery  BreweryClientConfig
	MCP      MCPConfig
	Hosts    HostDatabases
}

// ServerConfig configures the HTTP server runtime behavior.
type ServerConfig struct {
	Addr string
}

// DatabaseConfig contains the database connection settings.
type DatabaseConfig struct {
	URL             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	UseMock         bool
}

type LoggingConfig struct {
	Level string
}

// BreweryClientConfig tells the orders service where to verify beer ids.
type BreweryClientConfig struct {
	URL     string
	Timeout time.Duration
}

type MCPConfig struct {
	Enabled bool
}

// HostDatabases holds the per-schema URLs used by the batch tools that run
// outside the service containers.
type HostDatabases struct {
	Storage string
	Brewery string
	Orders  string
}

// Load inspects the environment and builds a Config value with the generic
// default listen address.
func Load() (Config, error) {
	return LoadWithDefaultAddr(defaultAddr)
}

// LoadWithDefaultAddr is Load with a service specific fallback address.
func LoadWithDefaultAddr(fallbackAddr string) (Config, error) {
	if err := loadEnvFile(); err != nil {
		return Config{}, err
	}

	cfg := Config{}

	cfg.Server = ServerConfig{
		Addr: firstNonEmpty(
			os.Getenv("SERVER_ADDR"),
			os.Getenv("ADDR"),
			portAddr(os.Getenv("PORT")),
			fallbackAddr,
		),
	}

	cfg.Database = DatabaseConfig{
		URL: firstNonEmpty(
			os.Getenv("DATABASE_URL"),
			os.Getenv("DB_URL"),
			"",
		),
		MaxIdleConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_IDLE_CONNS"), 5),
		MaxOpenConns:    parseIntWithDefault(os.Getenv("DATABASE_MAX_OPEN_CONNS"), 20),
		ConnMaxLifetime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_LIFETIME"), time.Hour),
		ConnMaxIdleTime: parseDurationWithDefault(os.Getenv("DATABASE_CONN_MAX_IDLE_TIME"), 15*time.Minute),
		UseMock:         parseBoolWithDefault(os.Getenv("DATABASE_USE_MOCK"), false),
	}

	cfg.Logging = LoggingConfig{
		Level: firstNonEmpty(os.Getenv("LOG_LEVEL"), "info"),
	}

	cfg.Brewery = BreweryClientConfig{
		URL:     strings.TrimRight(strings.TrimSpace(os.Getenv("BREWERY_SERVICE_URL")), "/"),
		Timeout: parseDurationWithDefault(os.Getenv("BREWERY_SERVICE_TIMEOUT"), 5*time.Second),
	}

	cfg.MCP = MCPConfig{
		Enabled: parseBoolWithDefault(os.Getenv("MCP_ENABLED"), true),
	}

	cfg.Hosts = HostDatabases{
		Storage: os.Getenv("DATABASE_URL_HOST_STORAGE"),
		Brewery: os.Getenv("DATABASE_URL_HOST_BREWERY"),
		Orders:  os.Getenv("DATABASE_URL_HOST_ORDERS"),
	}

	if strings.TrimSpace(cfg.Server.Addr) == "" {
		return Config{}, fmt.Errorf("server address must not be empty")
	}

	return cfg, nil
}

// loadEnvFile reads .env (or PIFKO_ENV_FILE) without overriding variables
// already present in the environment. A missing default file is fine.
func loadEnvFile() error {
	path := strings.TrimSpace(os.Getenv("PIFKO_ENV_FILE"))
	explicit := path != ""
	if !explicit {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func portAddr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ""
	}
	return ":" + port
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}

func parseIntWithDefault(value string, def int) int {
	if strings.TrimSpace(value) == "" {
		return def
	}
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func parseDurationWithDefault(value string, def time.Duration) time.Duration {
	if strings.TrimSpace(value) == "" {
		return def
	}
	parsed, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}

func parseBoolWithDefault(value string, def bool) bool {
	if strings.TrimSpace(value) == "" {
		return def
	}
	parsed, err := strconv.ParseBool(strings.TrimSpace(value))
	if err != nil {
		return def
	}
	return parsed
}
