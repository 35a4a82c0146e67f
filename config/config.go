package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// AppConfig holds environment driven configuration values. Sensitive data
// must be provided via the environment or an .env file, never hardcoded.
type AppConfig struct {
	AppPort string
	GinMode string

	// Database: "mysql" for production, "sqlite" (pure Go) for dev and tests.
	DBDriver    string
	DatabaseURI string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	SQLitePath  string

	// Redis backs the token store when a host is configured; otherwise the
	// store falls back to process memory.
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string

	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool

	AllowedOrigins     []string
	RateLimitPerMinute int

	PasswordMinLength int

	// UpvoteResetMinutes is the period of the counter reset job; 0 disables it.
	UpvoteResetMinutes int
}

var cfg AppConfig
var loaded bool

// Load reads configuration from an optional .env file, an optional config
// file and the environment. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("NEWSWIRE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("app.port", "8080")
	v.SetDefault("gin.mode", "release")

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.uri", "")
	v.SetDefault("db.host", "127.0.0.1")
	v.SetDefault("db.port", "3306")
	v.SetDefault("db.user", "newswire")
	v.SetDefault("db.password", "")
	v.SetDefault("db.name", "newswire")
	v.SetDefault("sqlite.path", "data/newswire.db")

	v.SetDefault("redis.host", "")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.password", "")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.path", "")
	v.SetDefault("log.maxsizemb", 100)
	v.SetDefault("log.maxbackups", 3)
	v.SetDefault("log.maxagedays", 7)
	v.SetDefault("log.compress", false)

	v.SetDefault("allowed.origins", []string{"*"})
	v.SetDefault("ratelimit.perminute", 60)
	v.SetDefault("password.minlength", 8)
	v.SetDefault("upvotereset.minutes", 0)

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("config")
	_ = v.ReadInConfig() // optional file

	cfg = AppConfig{
		AppPort: v.GetString("app.port"),
		GinMode: v.GetString("gin.mode"),

		DBDriver:    v.GetString("db.driver"),
		DatabaseURI: v.GetString("db.uri"),
		DBHost:      v.GetString("db.host"),
		DBPort:      v.GetString("db.port"),
		DBUser:      v.GetString("db.user"),
		DBPassword:  v.GetString("db.password"),
		DBName:      v.GetString("db.name"),
		SQLitePath:  v.GetString("sqlite.path"),

		RedisHost:     v.GetString("redis.host"),
		RedisPort:     v.GetInt("redis.port"),
		RedisDB:       v.GetInt("redis.db"),
		RedisPassword: v.GetString("redis.password"),

		LogLevel:      v.GetString("log.level"),
		LogPath:       v.GetString("log.path"),
		LogMaxSizeMB:  v.GetInt("log.maxsizemb"),
		LogMaxBackups: v.GetInt("log.maxbackups"),
		LogMaxAgeDays: v.GetInt("log.maxagedays"),
		LogCompress:   v.GetBool("log.compress"),

		AllowedOrigins:     v.GetStringSlice("allowed.origins"),
		RateLimitPerMinute: v.GetInt("ratelimit.perminute"),
		PasswordMinLength:  v.GetInt("password.minlength"),
		UpvoteResetMinutes: v.GetInt("upvotereset.minutes"),
	}

	loaded = true
	return cfg
}

// Get returns the cached configuration, loading it if necessary.
func Get() AppConfig {
	if !loaded {
		return Load()
	}
	return cfg
}

// Set replaces the cached configuration. Boot code and tests use it to
// inject overrides before the router is built.
func Set(c AppConfig) {
	cfg = c
	loaded = true
}
