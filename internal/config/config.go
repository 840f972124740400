package config // package config loads application configuration from environment variables

import (
	"log"     // log reports configuration errors and halts execution
	"os"      // os provides access to environment variables
)

// Config holds the runtime configuration of the FilmyFly service.  Each field
// is read from an environment variable by Load.
type Config struct {
	Env            string // application environment (dev, prod)
	Port           string // HTTP port to listen on
	DBDriver       string // "mysql" in production, "sqlite3" for local runs and tests
	DBUser         string // database username
	DBPass         string // database password (optional)
	DBHost         string // database host address
	DBPort         string // database port number
	DBName         string // database name
	DBPath         string // sqlite database file when DBDriver is sqlite3
	JWTSecret      string // secret used to sign admin access tokens
	AccessTTLMin   int    // access token time-to-live in minutes
	RefreshTTLDays int    // refresh token time-to-live in days
	BcryptCost     int    // bcrypt cost for admin password hashing
	PublicDir      string // directory served as static files; sitemap.xml is written here
}

// Load reads the application configuration.  JWT_SECRET is always required;
// the MySQL connection variables are required only when DB_DRIVER is mysql.
func Load() Config {
	cfg := Config{
		Env:            envStr("APP_ENV", "dev"),
		Port:           envStr("APP_PORT", "3000"),
		DBDriver:       envStr("DB_DRIVER", "mysql"),
		DBPass:         os.Getenv("DB_PASS"),
		DBPath:         envStr("DB_PATH", "filmyfly.db"),
		JWTSecret:      must("JWT_SECRET"),
		AccessTTLMin:   envInt("ACCESS_TOKEN_TTL_MIN", 60),
		RefreshTTLDays: envInt("REFRESH_TOKEN_TTL_DAYS", 7),
		BcryptCost:     envInt("BCRYPT_COST", 12),
		PublicDir:      envStr("PUBLIC_DIR", "public"),
	}
	if cfg.DBDriver == "mysql" {
		cfg.DBUser = must("DB_USER")
		cfg.DBHost = must("DB_HOST")
		cfg.DBPort = must("DB_PORT")
		cfg.DBName = must("DB_NAME")
	}
	return cfg
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}
