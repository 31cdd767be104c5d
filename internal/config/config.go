package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Cache     CacheConfig
	Auth      AuthConfig
	Game      GameConfig
	Vision    VisionConfig
	Storage   StorageConfig
	Geocoding GeocodingConfig
	Mail      MailConfig
	Logging   LoggingConfig
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string
	Host            string
	Environment     string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	GracefulTimeout time.Duration
	MaxBodyBytes    int64
	CORSOrigins     []string

	// Per-IP request budget for credential and AI endpoints; 0 disables
	RateLimitRequests int
	RateLimitWindow   time.Duration
}

// DatabaseConfig holds postgres configuration
type DatabaseConfig struct {
	URL                string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetime    time.Duration
	ConnMaxIdleTime    time.Duration
	SlowQueryThreshold time.Duration
	MigrationsEnabled  bool
	StartupTimeout     time.Duration
}

// CacheConfig holds cache configuration
type CacheConfig struct {
	Provider       string // "redis" or "memory"
	RedisURL       string
	RedisHost      string
	RedisPort      string
	RedisPassword  string
	RedisDB        int
	PoolSize       int
	GeoTTL         time.Duration
	LeaderboardTTL time.Duration
}

// RedisAddr returns host:port for non-URL configuration
func (c CacheConfig) RedisAddr() string {
	return c.RedisHost + ":" + c.RedisPort
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret  string
	JWTExpiry  time.Duration
	BCryptCost int
}

// GameConfig holds check-in and progression tuning
type GameConfig struct {
	GeofenceRadiusMeters float64
	CheckInExpReward     int64
	LevelConstant        int64
	ProofFolder          string
	UploadFolder         string
}

// VisionConfig holds the OpenAI-compatible AI provider configuration used for
// proof verification and image generation
type VisionConfig struct {
	APIKey       string
	BaseURL      string
	Model        string
	Timeout      time.Duration
	FailOpen     bool
	ImageModel   string
	ImageTimeout time.Duration
}

// StorageConfig holds object storage configuration
type StorageConfig struct {
	Provider   string // "cloudinary" or "s3"
	MaxRetries int
	Timeout    time.Duration

	CloudinaryCloudName string
	CloudinaryAPIKey    string
	CloudinaryAPISecret string

	S3Bucket        string
	S3Region        string
	S3Endpoint      string
	S3AccessKey     string
	S3SecretKey     string
	S3PublicBaseURL string
}

// GeocodingConfig holds reverse-geocoding configuration
type GeocodingConfig struct {
	BaseURL        string
	Timeout        time.Duration
	UserAgent      string
	AcceptLanguage string
}

// MailConfig holds SMTP configuration
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	FromName string
}

// Enabled reports whether SMTP delivery is configured
func (m MailConfig) Enabled() bool {
	return m.Host != "" && m.Username != ""
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from the environment
func Load() (*Config, error) {
	env := getEnv("GO_ENV", "development")
	if env != "production" {
		envFile := fmt.Sprintf(".env.%s", env)
		if _, err := os.Stat(envFile); err == nil {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load() // fallback to .env
		}
	}

	config := &Config{
		Server:    loadServerConfig(env),
		Database:  loadDatabaseConfig(env),
		Cache:     loadCacheConfig(),
		Auth:      loadAuthConfig(),
		Game:      loadGameConfig(),
		Vision:    loadVisionConfig(),
		Storage:   loadStorageConfig(),
		Geocoding: loadGeocodingConfig(),
		Mail:      loadMailConfig(),
		Logging:   loadLoggingConfig(env),
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

func loadServerConfig(env string) ServerConfig {
	config := ServerConfig{
		Port:            getEnv("PORT", "3000"),
		Host:            getEnv("SERVER_HOST", "0.0.0.0"),
		Environment:     env,
		ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 30*time.Second),
		WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 60*time.Second),
		IdleTimeout:     getDurationEnv("SERVER_IDLE_TIMEOUT", 120*time.Second),
		GracefulTimeout: getDurationEnv("GRACEFUL_TIMEOUT", 30*time.Second),
		MaxBodyBytes:    getInt64Env("MAX_BODY_BYTES", 50<<20), // proof photos arrive as base64
		CORSOrigins:     getListEnv("CORS_ORIGINS"),

		RateLimitRequests: getIntEnv("RATE_LIMIT_REQUESTS", 20),
		RateLimitWindow:   getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
	}

	if env == "development" {
		config.GracefulTimeout = getDurationEnv("GRACEFUL_TIMEOUT", 10*time.Second)
	}

	return config
}

func loadDatabaseConfig(env string) DatabaseConfig {
	config := DatabaseConfig{
		URL:                getEnv("DATABASE_URL", ""),
		MaxOpenConns:       getIntEnv("DB_MAX_OPEN_CONNS", 25),
		MaxIdleConns:       getIntEnv("DB_MAX_IDLE_CONNS", 5),
		ConnMaxLifetime:    getDurationEnv("DB_CONN_MAX_LIFETIME", 5*time.Minute),
		ConnMaxIdleTime:    getDurationEnv("DB_CONN_MAX_IDLE_TIME", 30*time.Minute),
		SlowQueryThreshold: getDurationEnv("DB_SLOW_QUERY_THRESHOLD", 100*time.Millisecond),
		MigrationsEnabled:  getBoolEnv("MIGRATIONS_ENABLED", true),
		StartupTimeout:     getDurationEnv("DB_STARTUP_TIMEOUT", 30*time.Second),
	}

	if env == "production" {
		config.StartupTimeout = getDurationEnv("DB_STARTUP_TIMEOUT", 60*time.Second)
	}

	return config
}

func loadCacheConfig() CacheConfig {
	redisURL := getEnv("REDIS_URL", "")
	provider := getEnv("CACHE_PROVIDER", "")
	if provider == "" {
		provider = "memory"
		if redisURL != "" || getEnv("REDIS_HOST", "") != "" {
			provider = "redis"
		}
	}

	return CacheConfig{
		Provider:       strings.ToLower(provider),
		RedisURL:       redisURL,
		RedisHost:      getEnv("REDIS_HOST", "127.0.0.1"),
		RedisPort:      getEnv("REDIS_PORT", "6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getIntEnv("REDIS_DB", 0),
		PoolSize:       getIntEnv("CACHE_POOL_SIZE", 10),
		GeoTTL:         getDurationEnv("GEO_CACHE_TTL", time.Hour),
		LeaderboardTTL: getDurationEnv("LEADERBOARD_CACHE_TTL", 10*time.Minute),
	}
}

func loadAuthConfig() AuthConfig {
	return AuthConfig{
		JWTSecret:  getEnv("JWT_SECRET", ""),
		JWTExpiry:  getDurationEnv("JWT_EXPIRY", 7*24*time.Hour),
		BCryptCost: getIntEnv("BCRYPT_COST", 10),
	}
}

func loadGameConfig() GameConfig {
	return GameConfig{
		GeofenceRadiusMeters: getFloat64Env("GEOFENCE_RADIUS_METERS", 100),
		CheckInExpReward:     getInt64Env("CHECKIN_EXP_REWARD", 100),
		LevelConstant:        getInt64Env("LEVEL_CONSTANT", 100),
		ProofFolder:          getEnv("PROOF_FOLDER", "rekaloka_proofs"),
		UploadFolder:         getEnv("UPLOAD_FOLDER", "rekaloka_general"),
	}
}

func loadVisionConfig() VisionConfig {
	return VisionConfig{
		APIKey:       getEnv("VISION_API_KEY", getEnv("GOOGLE_API_KEY", "")),
		BaseURL:      getEnv("VISION_BASE_URL", "https://generativelanguage.googleapis.com/v1beta/openai/"),
		Model:        getEnv("VISION_MODEL", "gemini-2.0-flash"),
		Timeout:      getDurationEnv("VISION_TIMEOUT", 30*time.Second),
		FailOpen:     getBoolEnv("VISION_FAIL_OPEN", false),
		ImageModel:   getEnv("IMAGE_MODEL", "imagen-4.0-generate-001"),
		ImageTimeout: getDurationEnv("IMAGE_TIMEOUT", 2*time.Minute),
	}
}

func loadStorageConfig() StorageConfig {
	return StorageConfig{
		Provider:            strings.ToLower(getEnv("STORAGE_PROVIDER", "cloudinary")),
		MaxRetries:          getIntEnv("UPLOAD_MAX_RETRIES", 3),
		Timeout:             getDurationEnv("UPLOAD_TIMEOUT", 60*time.Second),
		CloudinaryCloudName: getEnv("CLOUDINARY_CLOUD_NAME", ""),
		CloudinaryAPIKey:    getEnv("CLOUDINARY_API_KEY", ""),
		CloudinaryAPISecret: getEnv("CLOUDINARY_API_SECRET", ""),
		S3Bucket:            getEnv("S3_BUCKET", ""),
		S3Region:            getEnv("S3_REGION", "auto"),
		S3Endpoint:          getEnv("S3_ENDPOINT", ""),
		S3AccessKey:         getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:         getEnv("S3_SECRET_KEY", ""),
		S3PublicBaseURL:     getEnv("S3_PUBLIC_BASE_URL", ""),
	}
}

func loadGeocodingConfig() GeocodingConfig {
	return GeocodingConfig{
		BaseURL:        getEnv("NOMINATIM_URL", "https://nominatim.openstreetmap.org"),
		Timeout:        getDurationEnv("GEOCODER_TIMEOUT", 5*time.Second),
		UserAgent:      getEnv("GEOCODER_USER_AGENT", "Rekaloka-App/1.0 (santara.rekaloka@gmail.com)"),
		AcceptLanguage: getEnv("GEOCODER_ACCEPT_LANGUAGE", "id-ID"),
	}
}

func loadMailConfig() MailConfig {
	return MailConfig{
		Host:     getEnv("MAIL_HOST", ""),
		Port:     getIntEnv("MAIL_PORT", 587),
		Username: getEnv("MAIL_USER", ""),
		Password: getEnv("MAIL_PASS", ""),
		FromName: getEnv("MAIL_FROM_NAME", "Rekaloka Team"),
	}
}

func loadLoggingConfig(env string) LoggingConfig {
	return LoggingConfig{
		Level:  getEnv("LOG_LEVEL", getDefaultLogLevel(env)),
		Format: getEnv("LOG_FORMAT", getDefaultLogFormat(env)),
	}
}

// ===============================
// VALIDATION
// ===============================

// Validate checks the whole configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Database.Validate(); err != nil {
		return fmt.Errorf("database config: %w", err)
	}

	if err := c.Auth.Validate(c.Server.Environment); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	if err := c.Game.Validate(); err != nil {
		return fmt.Errorf("game config: %w", err)
	}

	switch c.Cache.Provider {
	case "redis", "memory":
	default:
		return fmt.Errorf("cache config: unsupported provider %q", c.Cache.Provider)
	}

	switch c.Storage.Provider {
	case "cloudinary", "s3":
	default:
		return fmt.Errorf("storage config: unsupported provider %q", c.Storage.Provider)
	}

	return nil
}

func (s *ServerConfig) Validate() error {
	if s.Port == "" {
		return fmt.Errorf("PORT is required")
	}

	if s.ReadTimeout <= 0 {
		return fmt.Errorf("ReadTimeout must be positive")
	}

	if s.WriteTimeout <= 0 {
		return fmt.Errorf("WriteTimeout must be positive")
	}

	if s.RateLimitRequests > 0 && s.RateLimitWindow <= 0 {
		return fmt.Errorf("RateLimitWindow must be positive when rate limiting is enabled")
	}

	return nil
}

func (d *DatabaseConfig) Validate() error {
	if d.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if d.MaxOpenConns <= 0 {
		return fmt.Errorf("MaxOpenConns must be positive")
	}

	if d.MaxIdleConns < 0 {
		return fmt.Errorf("MaxIdleConns cannot be negative")
	}

	if d.MaxIdleConns > d.MaxOpenConns {
		return fmt.Errorf("MaxIdleConns cannot be greater than MaxOpenConns")
	}

	if d.ConnMaxLifetime <= 0 {
		return fmt.Errorf("ConnMaxLifetime must be positive")
	}

	return nil
}

func (a *AuthConfig) Validate(env string) error {
	if a.JWTSecret == "" {
		if env == "production" {
			return fmt.Errorf("JWT_SECRET must be set for production")
		}
		a.JWTSecret = "rekaloka-dev-secret"
	}

	if a.BCryptCost < 4 || a.BCryptCost > 31 {
		return fmt.Errorf("BCryptCost must be between 4 and 31")
	}

	if a.JWTExpiry <= 0 {
		return fmt.Errorf("JWTExpiry must be positive")
	}

	return nil
}

func (g *GameConfig) Validate() error {
	if g.GeofenceRadiusMeters <= 0 {
		return fmt.Errorf("GEOFENCE_RADIUS_METERS must be positive")
	}

	if g.CheckInExpReward < 0 {
		return fmt.Errorf("CHECKIN_EXP_REWARD cannot be negative")
	}

	if g.LevelConstant <= 0 {
		return fmt.Errorf("LEVEL_CONSTANT must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.Server.Environment == "production"
}

func (c *Config) IsDevelopment() bool {
	return c.Server.Environment == "development"
}

// ===============================
// ENV HELPERS
// ===============================

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value, exists := os.LookupEnv(key); exists {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getFloat64Env(key string, defaultValue float64) float64 {
	if value, exists := os.LookupEnv(key); exists {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	var out []string
	for _, v := range strings.Split(os.Getenv(key), ",") {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getDefaultLogLevel(env string) string {
	switch env {
	case "production":
		return "info"
	default:
		return "debug"
	}
}

func getDefaultLogFormat(env string) string {
	switch env {
	case "production":
		return "json"
	default:
		return "console"
	}
}
