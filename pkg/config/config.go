package config

import (
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Port                    string
	Env                     string
	LogLevel                string
	FirebaseCredentialsPath string
	FirebaseProjectID       string
	FirebaseCheckRevoked    bool
	PostgresConnStr         string
	MongoURI                string
	MongoDB                 string
	RedisAddr               string
	RedisPassword           string
	JWTSecret               string

	MaxNestingDepth int

	NotifyWorkers    int
	NotifyQueueSize  int
	NotifyMaxRetries uint
	NotifyTimeout    time.Duration

	ProfileCacheTTL time.Duration

	RateLimit  int
	RateWindow time.Duration

	PublishInterval time.Duration
}

// Load reads the optional .env file into the process environment and then
// resolves every setting through viper, falling back to defaults.
func Load() *Config {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	return &Config{
		Port:                    v.GetString("PORT"),
		Env:                     v.GetString("ENV"),
		LogLevel:                v.GetString("LOG_LEVEL"),
		FirebaseCredentialsPath: v.GetString("FIREBASE_CREDENTIALS_PATH"),
		FirebaseProjectID:       v.GetString("FIREBASE_PROJECT_ID"),
		FirebaseCheckRevoked:    v.GetBool("FIREBASE_CHECK_REVOKED"),
		PostgresConnStr:         v.GetString("POSTGRES_CONN_STR"),
		MongoURI:                v.GetString("MONGO_URI"),
		MongoDB:                 v.GetString("MONGO_DB"),
		RedisAddr:               v.GetString("REDIS_ADDR"),
		RedisPassword:           v.GetString("REDIS_PASSWORD"),
		JWTSecret:               v.GetString("JWT_SECRET"),
		MaxNestingDepth:         v.GetInt("MAX_NESTING_DEPTH"),
		NotifyWorkers:           v.GetInt("NOTIFY_WORKERS"),
		NotifyQueueSize:         v.GetInt("NOTIFY_QUEUE_SIZE"),
		NotifyMaxRetries:        v.GetUint("NOTIFY_MAX_RETRIES"),
		NotifyTimeout:           v.GetDuration("NOTIFY_TIMEOUT"),
		ProfileCacheTTL:         v.GetDuration("PROFILE_CACHE_TTL"),
		RateLimit:               v.GetInt("RATE_LIMIT"),
		RateWindow:              v.GetDuration("RATE_WINDOW"),
		PublishInterval:         v.GetDuration("PUBLISH_INTERVAL"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DB", "inkwell")
	v.SetDefault("JWT_SECRET", "supersecretjwtkey")
	v.SetDefault("MAX_NESTING_DEPTH", 3)
	v.SetDefault("NOTIFY_WORKERS", 4)
	v.SetDefault("NOTIFY_QUEUE_SIZE", 1024)
	v.SetDefault("NOTIFY_MAX_RETRIES", 3)
	v.SetDefault("NOTIFY_TIMEOUT", 5*time.Second)
	v.SetDefault("PROFILE_CACHE_TTL", 10*time.Minute)
	v.SetDefault("RATE_LIMIT", 100)
	v.SetDefault("RATE_WINDOW", 15*time.Minute)
	v.SetDefault("PUBLISH_INTERVAL", time.Minute)
}

// IsProduction reports whether the service runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
