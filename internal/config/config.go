package config // package config loads application configuration from environment variables

import (
    "log" // log is used to report configuration errors and halt execution
    "os"  // os provides access to environment variables
    "time"
)

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers, durations for the session
// lifetime and feed timeout, ints for the argon2 cost parameters.
type Config struct {
    Env          string        // application environment (e.g. "dev", "prod")
    Port         string        // HTTP port to listen on
    DBUser       string        // database username
    DBPass       string        // database password (optional)
    DBHost       string        // database host address
    DBPort       string        // database port number
    DBName       string        // database name
    CookieSecure bool          // set the Secure attribute on session cookies
    SessionTTL   time.Duration // lifetime of a session from creation/refresh
    ArgonMemory  uint32        // argon2id memory cost in KiB
    ArgonTime    uint32        // argon2id time cost (iterations)
    ArgonThreads uint8         // argon2id parallelism
    FeedTimeout  time.Duration // per-request timeout for fetching remote feeds
    AuditEnabled bool          // publish audit events to the message broker
}

// Load reads configuration values from environment variables and returns a
// Config.  Required variables are enforced by must() and missing values
// cause the program to exit with a fatal log message.  Tunables (cookie
// security, session lifetime, argon2 costs, feed timeout) take defaults so
// a bare dev environment only needs the database settings.
func Load() Config {
    return Config{
        Env:          must("APP_ENV"),      // environment (dev/test/prod)
        Port:         must("APP_PORT"),     // port to bind the HTTP server
        DBUser:       must("DB_USER"),      // database user
        DBPass:       os.Getenv("DB_PASS"), // database password (empty allowed)
        DBHost:       must("DB_HOST"),      // database host
        DBPort:       must("DB_PORT"),      // database port
        DBName:       must("DB_NAME"),      // database name
        CookieSecure: envBool("COOKIE_SECURE", false),
        SessionTTL:   envDur("SESSION_TTL", 720*time.Hour), // 30 days
        ArgonMemory:  uint32(envInt("ARGON_MEMORY_KIB", 64*1024)),
        ArgonTime:    uint32(envInt("ARGON_TIME", 2)),
        ArgonThreads: uint8(envInt("ARGON_PARALLELISM", 1)),
        FeedTimeout:  envDur("FEED_TIMEOUT", 10*time.Second),
        AuditEnabled: envBool("AUDIT_ENABLED", true),
    }
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
