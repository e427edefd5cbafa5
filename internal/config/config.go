package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrSnakeDoc/jot/internal/storage"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	// Storage
	Storage       storage.Kind // memory | file | sqlite | redis
	DataFile      string       // file backend path
	WatchDataFile bool         // reload when another process edits DataFile
	SQLitePath    string       // sqlite backend path

	// Notebook
	TrashRetention time.Duration // how long trashed notes are kept (default: 30 days)
	PurgeInterval  time.Duration // periodic trash sweep, 0 disables
	ToastDuration  time.Duration // default toast lifetime
	UndoWindow     time.Duration // lifetime of the undo toast after a delete
	MaxToasts      int           // toasts visible at once
	SeedFile       string        // YAML backup imported at startup when the notebook is empty

	// Redis (only when Storage == redis)
	RedisAddr           string        // ex: "localhost:6379"
	RedisUser           string        // optional
	RedisPassword       string        // optional
	RedisDB             int           // Redis DB number
	RedisPrefix         string        // key prefix, ex: "jot:"
	RedisDT             time.Duration // Redis dial timeout (ex: 5s)
	RedisRT             time.Duration // Redis read timeout (ex: 3s)
	RedisWT             time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait        time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout    time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize       int           // Redis connection pool size
	RedisConnectTimeout time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval  time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold  int           // warn after this many attempts

	// Access restrictions
	AllowedCIDRS    []string // optional, restrict API access to specific IPs/CIDRs
	TrustProxy      bool     // true => trust X-Forwarded-For headers
	RateLimitBurst  int      // write requests allowed in a burst per client, 0 disables
	RateLimitPerMin int      // sustained write requests per minute per client
}

// Load reads the configuration from the environment. A .env file in the
// working directory is applied first; real environment variables win.
// Invalid required settings panic.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("JOT_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("JOT_SHUTDOWN_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("JOT_LOG_LEVEL", "info"),
		PrettyLog: mustBool("JOT_PRETTY_LOG", true),

		// Storage
		Storage:       mustStorageKind("JOT_STORAGE", storage.KindFile),
		DataFile:      getenv("JOT_DATA_FILE", "./data/jot.json"),
		WatchDataFile: mustBool("JOT_WATCH_DATA_FILE", false),
		SQLitePath:    getenv("JOT_SQLITE_PATH", "./data/jot.db"),

		// Notebook
		TrashRetention: mustDuration("JOT_TRASH_RETENTION", 30*24*time.Hour),
		PurgeInterval:  mustDuration("JOT_PURGE_INTERVAL", 24*time.Hour),
		ToastDuration:  mustDuration("JOT_TOAST_DURATION", 3*time.Second),
		UndoWindow:     mustDuration("JOT_UNDO_WINDOW", 5*time.Second),
		MaxToasts:      getenvInt("JOT_MAX_TOASTS", 3),
		SeedFile:       getenv("JOT_SEED_FILE", ""),

		// Redis settings
		RedisAddr:           getenv("JOT_REDIS_ADDR", ""),
		RedisUser:           getenv("JOT_REDIS_USERNAME", ""),
		RedisPassword:       getenv("JOT_REDIS_PASSWORD", ""),
		RedisDB:             getenvInt("JOT_REDIS_DB", 0),
		RedisPrefix:         getenv("JOT_REDIS_PREFIX", "jot:"),
		RedisDT:             mustDuration("REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:             mustDuration("REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:             mustDuration("REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:        mustDuration("REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:    mustDuration("REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:       getenvInt("REDIS_POOL_SIZE", 10),
		RedisConnectTimeout: mustDuration("REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:  mustDuration("REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:  getenvInt("REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedCIDRS:    parseAllowedIPs(getenv("JOT_ALLOWED_CIDRS", "")),
		TrustProxy:      mustBool("JOT_TRUST_PROXY", false),
		RateLimitBurst:  getenvInt("JOT_RATE_LIMIT_BURST", 30),
		RateLimitPerMin: getenvInt("JOT_RATE_LIMIT_PER_MIN", 120),
	}

	if cfg.Storage == storage.KindRedis {
		cfg.RedisAddr = requireEnv("JOT_REDIS_ADDR")
	}
	if cfg.TrashRetention <= 0 {
		panic(fmt.Sprintf("❌ FATAL: JOT_TRASH_RETENTION must be > 0, got %v", cfg.TrashRetention))
	}

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		cfgCopy := *cfg
		cfgCopy.RedisPassword = "***REDACTED***"
		if cfg.RedisUser != "" {
			cfgCopy.RedisUser = "***REDACTED***"
		}
		log.Printf("[DEBUG] cfg: %+v\n", cfgCopy)
	}

	return cfg
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func mustStorageKind(key string, def storage.Kind) storage.Kind {
	v := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if v == "" {
		return def
	}
	switch k := storage.Kind(v); k {
	case storage.KindMemory, storage.KindFile, storage.KindSQLite, storage.KindRedis:
		return k
	default:
		panic(fmt.Sprintf("❌ FATAL: Invalid value for %s: %s (want memory, file, sqlite or redis)", key, v))
	}
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
