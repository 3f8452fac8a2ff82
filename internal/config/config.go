package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Auth backends.
const (
	AuthBackendFile  = "file"
	AuthBackendMongo = "mongo"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	Inventory InventoryConfig
	Auth      AuthConfig
	WhatsApp  WhatsAppConfig
	Sheets    SheetsConfig
	Reporting ReportingConfig
	AI        AIConfig
	MongoDB   MongoDBConfig
	Kafka     KafkaConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port     string
	LogLevel string
}

// InventoryConfig holds the engine thresholds and background sweep settings.
type InventoryConfig struct {
	MaxSafeTemp     float64
	MaxSafeHumidity float64
	SoonWindowDays  int
	ProfilesFile    string
	SweepSchedule   string
	AlertQueueSize  int
}

// AuthConfig selects where credentials live.
type AuthConfig struct {
	Backend   string
	UsersFile string
}

// WhatsAppConfig contains credentials and options for the Meta WhatsApp Cloud API.
// The whole block is optional; Enabled reports whether it was provided.
type WhatsAppConfig struct {
	AccessToken   string
	PhoneNumberID string
	VerifyToken   string
	BaseURL       string
	APIVersion    string
	ManagerNumber string
	// OperatorNumbers may run commands over the chat channel. Empty means the
	// manager number only.
	OperatorNumbers []string
}

// SheetsConfig contains configuration required to interact with Google Sheets.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	ReportRange     string
}

// ReportingConfig holds scheduler-related settings.
type ReportingConfig struct {
	CronSchedule string
	Timezone     string
}

// AIConfig holds settings for LLM providers.
type AIConfig struct {
	AnthropicKey string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// KafkaConfig holds the alert event stream settings.
type KafkaConfig struct {
	Brokers    []string
	AlertTopic string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// A missing .env is fine when everything comes from the environment.
		_ = godotenv.Load()
	}

	maxTemp, err := getenvFloat("MAX_SAFE_TEMP", 25)
	if err != nil {
		return nil, err
	}
	maxHumidity, err := getenvFloat("MAX_SAFE_HUMIDITY", 98)
	if err != nil {
		return nil, err
	}
	soonDays, err := getenvInt("EXPIRY_SOON_DAYS", 2)
	if err != nil {
		return nil, err
	}
	queueSize, err := getenvInt("ALERT_QUEUE_SIZE", 64)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:     getenvWithDefault("APP_PORT", "8080"),
			LogLevel: getenvWithDefault("LOG_LEVEL", "info"),
		},
		Inventory: InventoryConfig{
			MaxSafeTemp:     maxTemp,
			MaxSafeHumidity: maxHumidity,
			SoonWindowDays:  soonDays,
			ProfilesFile:    os.Getenv("PROFILES_FILE"),
			SweepSchedule:   getenvWithDefault("SWEEP_SCHEDULE", "@every 1h"),
			AlertQueueSize:  queueSize,
		},
		Auth: AuthConfig{
			Backend:   getenvWithDefault("AUTH_BACKEND", AuthBackendFile),
			UsersFile: getenvWithDefault("AUTH_USERS_FILE", "users.json"),
		},
		WhatsApp: WhatsAppConfig{
			AccessToken:     os.Getenv("WHATSAPP_TOKEN"),
			PhoneNumberID:   os.Getenv("WHATSAPP_PHONE_NUMBER_ID"),
			VerifyToken:     os.Getenv("META_VERIFY_TOKEN"),
			BaseURL:         getenvWithDefault("WHATSAPP_BASE_URL", "https://graph.facebook.com"),
			APIVersion:      getenvWithDefault("WHATSAPP_API_VERSION", "v20.0"),
			ManagerNumber:   os.Getenv("WHATSAPP_MANAGER_NUMBER"),
			OperatorNumbers: splitList(os.Getenv("WHATSAPP_OPERATOR_NUMBERS")),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_DATABASE_ID"),
			ReportRange:     getenvWithDefault("GOOGLE_SHEET_REPORT_RANGE", "Reports!A:H"),
		},
		Reporting: ReportingConfig{
			CronSchedule: getenvWithDefault("REPORT_CRON_SCHEDULE", "0 20 * * *"),
			Timezone:     getenvWithDefault("TIMEZONE", "UTC"),
		},
		AI: AIConfig{
			AnthropicKey: os.Getenv("ANTHROPIC_API_KEY"),
		},
		MongoDB: MongoDBConfig{
			URI:    os.Getenv("MONGODB_URI"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "smartstore"),
		},
		Kafka: KafkaConfig{
			Brokers:    splitList(os.Getenv("KAFKA_BROKERS")),
			AlertTopic: getenvWithDefault("KAFKA_ALERT_TOPIC", "smartstore.alerts"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated and that
// optional blocks are either complete or absent.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.Inventory.SoonWindowDays <= 0 {
		return errors.New("EXPIRY_SOON_DAYS must be positive")
	}
	if c.Inventory.AlertQueueSize <= 0 {
		return errors.New("ALERT_QUEUE_SIZE must be positive")
	}
	if c.Inventory.SweepSchedule == "" {
		return errors.New("SWEEP_SCHEDULE must not be empty")
	}

	switch c.Auth.Backend {
	case AuthBackendFile:
		if c.Auth.UsersFile == "" {
			return errors.New("AUTH_USERS_FILE must be provided for the file auth backend")
		}
	case AuthBackendMongo:
		if !c.MongoDB.Enabled() {
			return errors.New("MONGODB_URI must be provided for the mongo auth backend")
		}
	default:
		return fmt.Errorf("AUTH_BACKEND must be %q or %q, got %q", AuthBackendFile, AuthBackendMongo, c.Auth.Backend)
	}

	if c.WhatsApp.Enabled() {
		switch {
		case c.WhatsApp.AccessToken == "":
			return errors.New("WHATSAPP_TOKEN must be provided")
		case c.WhatsApp.PhoneNumberID == "":
			return errors.New("WHATSAPP_PHONE_NUMBER_ID must be provided")
		case c.WhatsApp.VerifyToken == "":
			return errors.New("META_VERIFY_TOKEN must be provided")
		case c.WhatsApp.BaseURL == "":
			return errors.New("WHATSAPP_BASE_URL must not be empty")
		case c.WhatsApp.APIVersion == "":
			return errors.New("WHATSAPP_API_VERSION must not be empty")
		}
	}

	if c.Sheets.Enabled() {
		if c.Sheets.CredentialsPath == "" {
			return errors.New("GOOGLE_SHEETS_CREDENTIALS_PATH must be provided")
		}
		if c.Sheets.SpreadsheetID == "" {
			return errors.New("GOOGLE_SHEET_DATABASE_ID must be provided")
		}
	}

	if c.Reporting.CronSchedule == "" {
		return errors.New("REPORT_CRON_SCHEDULE must be provided")
	}

	if c.Reporting.Timezone == "" {
		return errors.New("TIMEZONE must be provided")
	}

	if c.Kafka.Enabled() && c.Kafka.AlertTopic == "" {
		return errors.New("KAFKA_ALERT_TOPIC must not be empty when KAFKA_BROKERS is set")
	}

	return nil
}

// Enabled reports whether any WhatsApp credential was supplied.
func (w WhatsAppConfig) Enabled() bool {
	return w.AccessToken != "" || w.PhoneNumberID != "" || w.VerifyToken != ""
}

// Operators returns the numbers allowed to send commands.
func (w WhatsAppConfig) Operators() []string {
	if len(w.OperatorNumbers) > 0 {
		return w.OperatorNumbers
	}
	if w.ManagerNumber != "" {
		return []string{w.ManagerNumber}
	}
	return nil
}

// Enabled reports whether any Sheets setting was supplied.
func (s SheetsConfig) Enabled() bool {
	return s.CredentialsPath != "" || s.SpreadsheetID != ""
}

// Enabled reports whether a MongoDB connection string was supplied.
func (m MongoDBConfig) Enabled() bool {
	return m.URI != ""
}

// Enabled reports whether Kafka brokers were supplied.
func (k KafkaConfig) Enabled() bool {
	return len(k.Brokers) > 0
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvFloat(key string, fallback float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	return v, nil
}

func getenvInt(key string, fallback int) (int, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
