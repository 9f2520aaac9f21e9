package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"toloka2web/version"
)

// Config holds Toloka2Web runtime configuration.
type Config struct {
	LogLevel    string
	LogFilePath string
	Host        string
	Port        int

	DataDir       string
	DatabaseURL   string
	CatalogDBPath string
	AppINIPath    string
	TitlesINIPath string

	JWTSecretKey         string
	APIKey               string
	AccessTokenTTLHours  int
	RefreshTokenTTLHours int
	SessionTTLHours      int

	CORSOrigins []string

	// Outbound calls to MAL/TMDB/Toloka/stream/torrent-client
	ExternalTimeoutSeconds int

	// Revoked-token retention for the pruning sweep
	RevokedTokenRetentionDays int

	SQLitePragmasEnabled bool
	SQLiteBusyTimeoutMS  int
	SQLiteJournalMode    string
	SQLiteSynchronous    string
	SQLiteForeignKeys    bool
	SQLiteMaxOpenConns   int
	SQLiteMaxIdleConns   int
	SQLiteConnMaxIdleSec int
	SQLiteConnMaxLifeSec int

	CLIMode   bool
	CLIServer string // Server URL for CLI mode
}

// Settings is the global configuration instance populated from environment variables and flags.
var Settings *Config

func init() {
	Settings = &Config{
		LogLevel:    getEnv("LOG_LEVEL", "INFO"),
		LogFilePath: getEnv("LOG_FILE", "./toloka2web.log"),
		Host:        getEnv("HOST", "0.0.0.0"),
		Port:        getEnvInt("PORT", 5000),

		DataDir:       getEnv("DATA_DIR", "data"),
		DatabaseURL:   getEnv("DATABASE_URL", "data/toloka2web.db"),
		CatalogDBPath: getEnv("CATALOG_DB_PATH", "data/anime_data.db"),
		AppINIPath:    getEnv("APP_INI_PATH", "data/app.ini"),
		TitlesINIPath: getEnv("TITLES_INI_PATH", "data/titles.ini"),

		JWTSecretKey:         getEnv("JWT_SECRET_KEY", "default_jwt_secret"),
		APIKey:               getEnv("API_KEY", "default_api_key"),
		AccessTokenTTLHours:  getEnvInt("ACCESS_TOKEN_TTL_HOURS", 24),
		RefreshTokenTTLHours: getEnvInt("REFRESH_TOKEN_TTL_HOURS", 720),
		SessionTTLHours:      getEnvInt("SESSION_TTL_HOURS", 24),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),

		ExternalTimeoutSeconds: getEnvInt("EXTERNAL_TIMEOUT_SECONDS", 30),

		RevokedTokenRetentionDays: getEnvInt("REVOKED_TOKEN_RETENTION_DAYS", 30),

		SQLitePragmasEnabled: getEnvBool("SQLITE_PRAGMAS_ENABLED", true),
		SQLiteBusyTimeoutMS:  getEnvInt("SQLITE_BUSY_TIMEOUT_MS", 5000),
		SQLiteJournalMode:    getEnv("SQLITE_JOURNAL_MODE", "WAL"),
		SQLiteSynchronous:    getEnv("SQLITE_SYNCHRONOUS", "NORMAL"),
		SQLiteForeignKeys:    getEnvBool("SQLITE_FOREIGN_KEYS", true),
		SQLiteMaxOpenConns:   getEnvInt("SQLITE_MAX_OPEN_CONNS", 1),
		SQLiteMaxIdleConns:   getEnvInt("SQLITE_MAX_IDLE_CONNS", 1),
		SQLiteConnMaxIdleSec: getEnvInt("SQLITE_CONN_MAX_IDLE_SECONDS", 300),
		SQLiteConnMaxLifeSec: getEnvInt("SQLITE_CONN_MAX_LIFETIME_SECONDS", 0),

		CLIMode: getEnvBool("CLI_MODE", false),
	}
}

// ParseFlags parses command-line flags, applies any overrides to the package-level Settings,
// and handles --help and --version.
func ParseFlags() {
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Toloka2Web - release tracker and catalog search\n\n")
		fmt.Fprintf(out, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintln(out, "Options:")
		flag.PrintDefaults()
		fmt.Fprintln(out, "\nEnvironment variables:")
		fmt.Fprintln(out, "  LOG_LEVEL                     Log level (DEBUG, INFO, WARN, ERROR)")
		fmt.Fprintln(out, "  LOG_FILE                      Log file path (default ./toloka2web.log)")
		fmt.Fprintln(out, "  HOST                          Bind address (default 0.0.0.0)")
		fmt.Fprintln(out, "  PORT                          HTTP server port (default 5000)")
		fmt.Fprintln(out, "  DATA_DIR                      Data directory (default data)")
		fmt.Fprintln(out, "  DATABASE_URL                  SQLite database path (default data/toloka2web.db)")
		fmt.Fprintln(out, "  CATALOG_DB_PATH               Read-only anime catalog DB (default data/anime_data.db)")
		fmt.Fprintln(out, "  APP_INI_PATH                  Settings INI mirror (default data/app.ini)")
		fmt.Fprintln(out, "  TITLES_INI_PATH               Releases INI mirror (default data/titles.ini)")
		fmt.Fprintln(out, "  JWT_SECRET_KEY                Signing key for bearer tokens")
		fmt.Fprintln(out, "  API_KEY                       Static X-API-Key value (grants admin)")
		fmt.Fprintln(out, "  ACCESS_TOKEN_TTL_HOURS        Access token lifetime in hours (default 24)")
		fmt.Fprintln(out, "  REFRESH_TOKEN_TTL_HOURS       Refresh token lifetime in hours (default 720)")
		fmt.Fprintln(out, "  SESSION_TTL_HOURS             Session lifetime in hours (default 24)")
		fmt.Fprintln(out, "  CORS_ORIGINS                  Comma-separated allowed origins")
		fmt.Fprintln(out, "  EXTERNAL_TIMEOUT_SECONDS      Timeout for outbound API calls (default 30)")
		fmt.Fprintln(out, "  REVOKED_TOKEN_RETENTION_DAYS  Days before revoked tokens are pruned (default 30)")
		fmt.Fprintln(out, "  SQLITE_PRAGMAS_ENABLED        Enable SQLite PRAGMAs (true/false, default true)")
		fmt.Fprintln(out, "  SQLITE_BUSY_TIMEOUT_MS        SQLite busy_timeout in milliseconds (default 5000)")
		fmt.Fprintln(out, "  SQLITE_JOURNAL_MODE           SQLite journal_mode (default WAL)")
		fmt.Fprintln(out, "  SQLITE_SYNCHRONOUS            SQLite synchronous (default NORMAL)")
		fmt.Fprintln(out, "  SQLITE_FOREIGN_KEYS           Enable SQLite foreign_keys (true/false, default true)")
	}

	port := flag.Int("port", Settings.Port, "HTTP server port (overrides PORT)")
	host := flag.String("host", Settings.Host, "Bind address (overrides HOST)")
	db := flag.String("db", Settings.DatabaseURL, "SQLite database path (overrides DATABASE_URL)")
	dataDir := flag.String("data-dir", Settings.DataDir, "Data directory (overrides DATA_DIR)")
	appINI := flag.String("app-ini", Settings.AppINIPath, "Settings INI mirror path (overrides APP_INI_PATH)")
	titlesINI := flag.String("titles-ini", Settings.TitlesINIPath, "Releases INI mirror path (overrides TITLES_INI_PATH)")
	logLevel := flag.String("log-level", Settings.LogLevel, "Log level: DEBUG, INFO, WARN, ERROR (overrides LOG_LEVEL)")
	logFile := flag.String("log-file", Settings.LogFilePath, "Log file path (overrides LOG_FILE)")
	cliMode := flag.Bool("cli", Settings.CLIMode, "Run in CLI mode (HTTP client only, no database)")
	cliServer := flag.String("server", "http://localhost:5000", "Server URL for CLI mode")

	showHelp := flag.Bool("help", false, "Show help and exit")
	showVersion := flag.Bool("version", false, "Show version and exit")

	flag.Parse()

	if *showVersion {
		fmt.Println(version.GetBuildInfo())
		os.Exit(0)
	}

	if *showHelp {
		flag.Usage()
		os.Exit(0)
	}

	Settings.Port = *port
	Settings.Host = *host
	Settings.DatabaseURL = *db
	Settings.DataDir = *dataDir
	Settings.AppINIPath = *appINI
	Settings.TitlesINIPath = *titlesINI
	Settings.LogLevel = *logLevel
	Settings.LogFilePath = *logFile
	Settings.CLIMode = *cliMode
	Settings.CLIServer = *cliServer
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
