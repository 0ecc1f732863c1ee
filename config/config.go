package config

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// AppConfig holds environment driven configuration values.
// Sensitive data should never have defaults inside code and must be provided via env files or the environment.
type AppConfig struct {
	AppPort            string
	JWTSecret          string
	DatabaseURI        string
	DBHost             string
	DBPort             string
	DBUser             string
	DBPassword         string
	DBName             string
	GitHubClientID     string
	GitHubClientSecret string
	GoogleClientID     string
	GoogleClientSecret string
	TelegramBotToken   string
	RateLimitPerMinute int
	AllowedOrigins     []string
	OAuthRedirectBase  string
	// Gin framework configuration
	GinMode string
	GinPath string
	// Redis for caching/state
	RedisHost     string
	RedisPort     int
	RedisDB       int
	RedisPassword string
	// Logging configuration
	LogLevel      string
	LogPath       string
	LogMaxSizeMB  int
	LogMaxBackups int
	LogMaxAgeDays int
	LogCompress   bool
	// Generative model settings
	AIAPIKey      string
	AIBaseURL     string
	AIModel       string
	AIMaxTokens   int
	AITemperature float64
	AITimeoutSec  int
	AIDailyQuota  int
	AICooldownSec int
	// Chat gateway used for outbound reminders
	NotifyWebhookURL string
	NotifyToken      string
	// Background jobs
	ReminderHour     int
	ReminderMinute   int
	TaskWeekday      int
	TaskHour         int
	TaskMinute       int
	SchedulerZoneMin int
	// Product settings
	DefaultChallengeDays int
	PaymentCardNumber    string
}

var cfg AppConfig
var loaded bool

// Load loads the application configuration from environment variables. It should be called once during boot.
func Load() AppConfig {
	if loaded {
		return cfg
	}

	// Precedence: config/config.json -> defaults -> environment variable overrides
	_ = loadJSONConfig(filepath.Join("config", "config.json"), &cfg)
	applyDefaults(&cfg)
	applyEnvOverrides(&cfg)

	if cfg.JWTSecret == "" {
		log.Fatal("JWT_SECRET must be set in environment variables")
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

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// loadJSONConfig reads JSON file into cfg if present. Returns error only for invalid JSON.
func loadJSONConfig(path string, out *AppConfig) error {
	f, err := os.Open(path)
	if err != nil {
		return nil // silently ignore missing file
	}
	defer f.Close()

	var raw map[string]any
	dec := json.NewDecoder(f)
	if err := dec.Decode(&raw); err != nil {
		return err
	}

	getString := func(m map[string]any, key string) string {
		if v, ok := m[key]; ok {
			if s, ok := v.(string); ok {
				return s
			}
		}
		return ""
	}
	getInt := func(m map[string]any, key string) int {
		if v, ok := m[key]; ok {
			switch t := v.(type) {
			case float64:
				return int(t)
			case int:
				return t
			case json.Number:
				i, _ := t.Int64()
				return int(i)
			}
		}
		return 0
	}
	getFloat := func(m map[string]any, key string) float64 {
		if v, ok := m[key]; ok {
			if f, ok := v.(float64); ok {
				return f
			}
		}
		return 0
	}
	getBool := func(m map[string]any, key string) bool {
		if v, ok := m[key]; ok {
			if b, ok := v.(bool); ok {
				return b
			}
		}
		return false
	}
	getStringSlice := func(m map[string]any, key string) []string {
		if v, ok := m[key]; ok {
			if arr, ok := v.([]any); ok {
				res := make([]string, 0, len(arr))
				for _, it := range arr {
					if s, ok := it.(string); ok {
						res = append(res, s)
					}
				}
				return res
			}
		}
		return nil
	}

	if app, ok := raw["app"].(map[string]any); ok {
		out.AppPort = getString(app, "AppPort")
		out.JWTSecret = getString(app, "JWTSecret")
		if v := getInt(app, "RateLimitPerMinute"); v != 0 {
			out.RateLimitPerMinute = v
		}
		if list := getStringSlice(app, "AllowedOrigins"); len(list) > 0 {
			out.AllowedOrigins = list
		}
		if v := getString(app, "OAuthRedirectBase"); v != "" {
			out.OAuthRedirectBase = v
		}
		if v := getInt(app, "DefaultChallengeDays"); v != 0 {
			out.DefaultChallengeDays = v
		}
		if v := getString(app, "PaymentCardNumber"); v != "" {
			out.PaymentCardNumber = v
		}
	}

	if g, ok := raw["gin"].(map[string]any); ok {
		if v := getString(g, "Mode"); v != "" {
			out.GinMode = v
		}
		if v := getString(g, "LogPath"); v != "" {
			out.GinPath = v
		}
	}

	if dbs, ok := raw["database"].(map[string]any); ok {
		out.DatabaseURI = getString(dbs, "DatabaseURI")
		out.DBHost = getString(dbs, "DBHost")
		out.DBPort = getString(dbs, "DBPort")
		out.DBUser = getString(dbs, "DBUser")
		out.DBPassword = getString(dbs, "DBPassword")
		out.DBName = getString(dbs, "DBName")
	}

	if rds, ok := raw["redis"].(map[string]any); ok {
		out.RedisHost = getString(rds, "RedisHost")
		if v := getInt(rds, "RedisPort"); v != 0 {
			out.RedisPort = v
		}
		if v := getInt(rds, "RedisDB"); v != 0 {
			out.RedisDB = v
		}
		out.RedisPassword = getString(rds, "RedisPassword")
	}

	if oa, ok := raw["oauth"].(map[string]any); ok {
		out.GitHubClientID = getString(oa, "GitHubClientID")
		out.GitHubClientSecret = getString(oa, "GitHubClientSecret")
		out.GoogleClientID = getString(oa, "GoogleClientID")
		out.GoogleClientSecret = getString(oa, "GoogleClientSecret")
		out.TelegramBotToken = getString(oa, "TelegramBotToken")
	}

	if lg, ok := raw["log"].(map[string]any); ok {
		if v := getString(lg, "Level"); v != "" {
			out.LogLevel = v
		}
		if v := getString(lg, "Path"); v != "" {
			out.LogPath = v
		}
		if v := getInt(lg, "MaxSizeMB"); v != 0 {
			out.LogMaxSizeMB = v
		}
		if v := getInt(lg, "MaxBackups"); v != 0 {
			out.LogMaxBackups = v
		}
		if v := getInt(lg, "MaxAgeDays"); v != 0 {
			out.LogMaxAgeDays = v
		}
		out.LogCompress = getBool(lg, "Compress")
	}

	if ai, ok := raw["ai"].(map[string]any); ok {
		out.AIAPIKey = getString(ai, "APIKey")
		out.AIBaseURL = getString(ai, "BaseURL")
		out.AIModel = getString(ai, "Model")
		if v := getInt(ai, "MaxTokens"); v != 0 {
			out.AIMaxTokens = v
		}
		if v := getFloat(ai, "Temperature"); v != 0 {
			out.AITemperature = v
		}
		if v := getInt(ai, "TimeoutSec"); v != 0 {
			out.AITimeoutSec = v
		}
		if v := getInt(ai, "DailyQuota"); v != 0 {
			out.AIDailyQuota = v
		}
		if v := getInt(ai, "CooldownSec"); v != 0 {
			out.AICooldownSec = v
		}
	}

	if nt, ok := raw["notify"].(map[string]any); ok {
		out.NotifyWebhookURL = getString(nt, "WebhookURL")
		out.NotifyToken = getString(nt, "Token")
	}

	if sch, ok := raw["scheduler"].(map[string]any); ok {
		if v := getInt(sch, "ReminderHour"); v != 0 {
			out.ReminderHour = v
		}
		if v := getInt(sch, "ReminderMinute"); v != 0 {
			out.ReminderMinute = v
		}
		if v := getInt(sch, "TaskWeekday"); v != 0 {
			out.TaskWeekday = v
		}
		if v := getInt(sch, "TaskHour"); v != 0 {
			out.TaskHour = v
		}
		if v := getInt(sch, "TaskMinute"); v != 0 {
			out.TaskMinute = v
		}
		if v := getInt(sch, "ZoneOffsetMin"); v != 0 {
			out.SchedulerZoneMin = v
		}
	}

	// Flat keys kept for compatibility with early deployments
	if v, ok := raw["AppPort"]; ok && out.AppPort == "" {
		out.AppPort, _ = v.(string)
	}
	if v, ok := raw["JWTSecret"]; ok && out.JWTSecret == "" {
		out.JWTSecret, _ = v.(string)
	}
	if v, ok := raw["DatabaseURI"]; ok && out.DatabaseURI == "" {
		out.DatabaseURI, _ = v.(string)
	}

	return nil
}

// applyDefaults sets sane defaults for zero-value fields.
func applyDefaults(c *AppConfig) {
	if c.AppPort == "" {
		c.AppPort = "8080"
	}
	if c.GinMode == "" {
		c.GinMode = "release"
	}
	if c.GinPath == "" {
		c.GinPath = "logs/go_gin.log"
	}
	if c.RateLimitPerMinute == 0 {
		c.RateLimitPerMinute = 60
	}
	if len(c.AllowedOrigins) == 0 {
		c.AllowedOrigins = []string{"*"}
	}
	if c.OAuthRedirectBase == "" {
		c.OAuthRedirectBase = "http://localhost:8080"
	}
	if c.DBHost == "" {
		c.DBHost = "127.0.0.1"
	}
	if c.DBPort == "" {
		c.DBPort = "3306"
	}
	if c.DBUser == "" {
		c.DBUser = "root"
	}
	if c.DBName == "" {
		c.DBName = "sugarstop"
	}
	if c.RedisHost == "" {
		c.RedisHost = "127.0.0.1"
	}
	if c.RedisPort == 0 {
		c.RedisPort = 6379
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.LogMaxSizeMB == 0 {
		c.LogMaxSizeMB = 100
	}
	if c.LogMaxBackups == 0 {
		c.LogMaxBackups = 3
	}
	if c.LogMaxAgeDays == 0 {
		c.LogMaxAgeDays = 7
	}
	if c.AIBaseURL == "" {
		c.AIBaseURL = "https://api.deepseek.com/v1"
	}
	if c.AIModel == "" {
		c.AIModel = "deepseek-chat"
	}
	if c.AIMaxTokens == 0 {
		c.AIMaxTokens = 700
	}
	if c.AITemperature == 0 {
		c.AITemperature = 0.7
	}
	if c.AITimeoutSec == 0 {
		c.AITimeoutSec = 30
	}
	if c.AIDailyQuota == 0 {
		c.AIDailyQuota = 20
	}
	if c.AICooldownSec == 0 {
		c.AICooldownSec = 5
	}
	if c.ReminderHour == 0 {
		c.ReminderHour = 19
	}
	if c.TaskWeekday == 0 {
		c.TaskWeekday = 1 // Monday
	}
	if c.TaskHour == 0 {
		c.TaskHour = 7
	}
	if c.SchedulerZoneMin == 0 {
		c.SchedulerZoneMin = 360 // UTC+6, the product's home zone
	}
	if c.DefaultChallengeDays == 0 {
		c.DefaultChallengeDays = 30
	}
}

// applyEnvOverrides maps known environment variables onto config values when present.
func applyEnvOverrides(c *AppConfig) {
	if v := getEnv("APP_PORT", ""); v != "" {
		c.AppPort = v
	}
	if v := getEnv("JWT_SECRET", ""); v != "" {
		c.JWTSecret = v
	}
	if v := getEnv("GIN_MODE", ""); v != "" {
		c.GinMode = v
	}
	if v := getEnv("GIN_PATH", ""); v != "" {
		c.GinPath = v
	}
	if v := getEnv("DATABASE_URI", ""); v != "" {
		c.DatabaseURI = v
	}
	if v := getEnv("DB_HOST", ""); v != "" {
		c.DBHost = v
	}
	if v := getEnv("DB_PORT", ""); v != "" {
		c.DBPort = v
	}
	if v := getEnv("DB_USER", ""); v != "" {
		c.DBUser = v
	}
	if v := getEnv("DB_PASSWORD", ""); v != "" {
		c.DBPassword = v
	}
	if v := getEnv("DB_NAME", ""); v != "" {
		c.DBName = v
	}
	if v := getEnv("GITHUB_CLIENT_ID", ""); v != "" {
		c.GitHubClientID = v
	}
	if v := getEnv("GITHUB_CLIENT_SECRET", ""); v != "" {
		c.GitHubClientSecret = v
	}
	if v := getEnv("GOOGLE_CLIENT_ID", ""); v != "" {
		c.GoogleClientID = v
	}
	if v := getEnv("GOOGLE_CLIENT_SECRET", ""); v != "" {
		c.GoogleClientSecret = v
	}
	if v := getEnv("TELEGRAM_BOT_TOKEN", ""); v != "" {
		c.TelegramBotToken = v
	}
	if v := getEnv("RATE_LIMIT_PER_MINUTE", ""); v != "" {
		c.RateLimitPerMinute = mustParseInt(v)
	}
	if v := getEnv("CORS_ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitAndTrim(v)
	}
	if v := getEnv("OAUTH_REDIRECT_BASE_URL", ""); v != "" {
		c.OAuthRedirectBase = v
	}
	if v := getEnv("REDIS_HOST", ""); v != "" {
		c.RedisHost = v
	}
	if v := getEnv("REDIS_PORT", ""); v != "" {
		c.RedisPort = mustParseInt(v)
	}
	if v := getEnv("REDIS_DB", ""); v != "" {
		c.RedisDB = mustParseInt(v)
	}
	if v := getEnv("REDIS_PASSWORD", ""); v != "" {
		c.RedisPassword = v
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("LOG_PATH", ""); v != "" {
		c.LogPath = v
	}
	if v := getEnv("LOG_MAX_SIZE_MB", ""); v != "" {
		c.LogMaxSizeMB = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_BACKUPS", ""); v != "" {
		c.LogMaxBackups = mustParseInt(v)
	}
	if v := getEnv("LOG_MAX_AGE_DAYS", ""); v != "" {
		c.LogMaxAgeDays = mustParseInt(v)
	}
	if v := getEnv("LOG_COMPRESS", ""); v != "" {
		c.LogCompress = v == "true"
	}
	if v := getEnv("AI_API_KEY", ""); v != "" {
		c.AIAPIKey = v
	}
	// Original deployments exported DEEPSEEK_API_KEY
	if v := getEnv("DEEPSEEK_API_KEY", ""); v != "" && c.AIAPIKey == "" {
		c.AIAPIKey = v
	}
	if v := getEnv("AI_BASE_URL", ""); v != "" {
		c.AIBaseURL = v
	}
	if v := getEnv("AI_MODEL", ""); v != "" {
		c.AIModel = v
	}
	if v := getEnv("AI_MAX_TOKENS", ""); v != "" {
		c.AIMaxTokens = mustParseInt(v)
	}
	if v := getEnv("AI_TEMPERATURE", ""); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			log.Fatalf("invalid float value %s: %v", v, err)
		}
		c.AITemperature = f
	}
	if v := getEnv("AI_TIMEOUT_SEC", ""); v != "" {
		c.AITimeoutSec = mustParseInt(v)
	}
	if v := getEnv("AI_DAILY_QUOTA", ""); v != "" {
		c.AIDailyQuota = mustParseInt(v)
	}
	if v := getEnv("AI_COOLDOWN_SEC", ""); v != "" {
		c.AICooldownSec = mustParseInt(v)
	}
	if v := getEnv("NOTIFY_WEBHOOK_URL", ""); v != "" {
		c.NotifyWebhookURL = v
	}
	if v := getEnv("NOTIFY_TOKEN", ""); v != "" {
		c.NotifyToken = v
	}
	if v := getEnv("REMINDER_HOUR", ""); v != "" {
		c.ReminderHour = mustParseInt(v)
	}
	if v := getEnv("REMINDER_MINUTE", ""); v != "" {
		c.ReminderMinute = mustParseInt(v)
	}
	if v := getEnv("TASK_WEEKDAY", ""); v != "" {
		c.TaskWeekday = mustParseInt(v)
	}
	if v := getEnv("TASK_HOUR", ""); v != "" {
		c.TaskHour = mustParseInt(v)
	}
	if v := getEnv("TASK_MINUTE", ""); v != "" {
		c.TaskMinute = mustParseInt(v)
	}
	if v := getEnv("SCHEDULER_ZONE_OFFSET_MIN", ""); v != "" {
		c.SchedulerZoneMin = mustParseInt(v)
	}
	if v := getEnv("DEFAULT_CHALLENGE_DAYS", ""); v != "" {
		c.DefaultChallengeDays = mustParseInt(v)
	}
	if v := getEnv("PAYMENT_CARD_NUMBER", ""); v != "" {
		c.PaymentCardNumber = v
	}
}

func mustParseInt(val string) int {
	i, err := strconv.Atoi(val)
	if err != nil {
		log.Fatalf("invalid integer value %s: %v", val, err)
	}
	return i
}

func splitAndTrim(raw string) []string {
	items := []string{}
	for _, item := range strings.Split(raw, ",") {
		trimmed := strings.TrimSpace(item)
		if trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
