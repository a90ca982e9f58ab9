package config // package config loads application configuration from environment variables

import (
	"log"     // log reports configuration errors and halts execution
	"os"      // os provides access to environment variables
	"strconv" // strconv converts strings to other types
	"time"    // time parses the LLM timeout duration
)

// Config holds all runtime configuration values. Each field corresponds
// to an environment variable. Required values are enforced by must();
// optional values fall back to sensible defaults so the service can run
// without Redis, RabbitMQ or a Gemini API key.
type Config struct {
	Env          string        // application environment (e.g. "dev", "prod")
	Port         string        // HTTP port to listen on
	DBUser       string        // database username
	DBPass       string        // database password (optional)
	DBHost       string        // database host address
	DBPort       string        // database port number
	DBName       string        // database name
	JWTSecret    string        // secret used to sign access tokens
	AccessTTLMin int           // access token time-to-live in minutes
	BcryptCost   int           // bcrypt cost for password hashing
	GeminiAPIKey string        // API key for the generative-text provider; empty disables the primary path
	GeminiModel  string        // provider model name
	LLMTimeout   time.Duration // upper bound on one provider call
}

// Load reads configuration values from environment variables and
// returns a Config. Missing required variables cause the program to
// exit with a fatal log message.
func Load() Config {
	return Config{
		Env:          must("APP_ENV"),
		Port:         must("APP_PORT"),
		DBUser:       must("DB_USER"),
		DBPass:       os.Getenv("DB_PASS"), // empty allowed
		DBHost:       must("DB_HOST"),
		DBPort:       must("DB_PORT"),
		DBName:       must("DB_NAME"),
		JWTSecret:    must("JWT_SECRET"),
		AccessTTLMin: mustInt("ACCESS_TOKEN_TTL_MIN"),
		BcryptCost:   mustInt("BCRYPT_COST"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"), // optional; fallback parser still works
		GeminiModel:  getenv("GEMINI_MODEL", "gemini-2.5-flash"),
		LLMTimeout:   parseDur(getenv("LLM_TIMEOUT", "8s")),
	}
}

// must retrieves the value of a required environment variable. If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("missing required env var: %s", key)
	}
	return v
}

// mustInt is like must() but converts the retrieved string into an integer.
func mustInt(key string) int {
	s := must(key)
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Fatalf("invalid int for %s: %q", key, s)
	}
	return n
}

func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoi(s string) int {
	i, _ := strconv.Atoi(s)
	return i
}

func parseDur(s string) time.Duration {
	d, err := time.ParseDuration(s)
	if err != nil {
		return time.Second
	}
	return d
}
