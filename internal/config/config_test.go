package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_PORT", "LOG_LEVEL", "MAX_SAFE_TEMP", "MAX_SAFE_HUMIDITY", "EXPIRY_SOON_DAYS", "PROFILES_FILE",
	"SWEEP_SCHEDULE", "ALERT_QUEUE_SIZE", "AUTH_BACKEND", "AUTH_USERS_FILE",
	"WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "META_VERIFY_TOKEN", "WHATSAPP_BASE_URL",
	"WHATSAPP_API_VERSION", "WHATSAPP_MANAGER_NUMBER", "WHATSAPP_OPERATOR_NUMBERS", "GOOGLE_SHEETS_CREDENTIALS_PATH",
	"GOOGLE_SHEET_DATABASE_ID", "GOOGLE_SHEET_REPORT_RANGE", "REPORT_CRON_SCHEDULE", "TIMEZONE",
	"ANTHROPIC_API_KEY", "MONGODB_URI", "MONGODB_DB_NAME", "KAFKA_BROKERS", "KAFKA_ALERT_TOPIC",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range configKeys {
		t.Setenv(key, "")
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 25.0, cfg.Inventory.MaxSafeTemp)
	assert.Equal(t, 98.0, cfg.Inventory.MaxSafeHumidity)
	assert.Equal(t, 2, cfg.Inventory.SoonWindowDays)
	assert.Equal(t, "@every 1h", cfg.Inventory.SweepSchedule)
	assert.Equal(t, AuthBackendFile, cfg.Auth.Backend)
	assert.False(t, cfg.WhatsApp.Enabled())
	assert.False(t, cfg.Sheets.Enabled())
	assert.False(t, cfg.MongoDB.Enabled())
	assert.False(t, cfg.Kafka.Enabled())
}

func TestLoadFromEnvFile(t *testing.T) {
	clearEnv(t)
	for _, key := range configKeys {
		// godotenv never overrides variables that are already present.
		require.NoError(t, os.Unsetenv(key))
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := "APP_PORT=9090\nMAX_SAFE_TEMP=20.5\nEXPIRY_SOON_DAYS=3\nKAFKA_BROKERS=k1:9092, k2:9092\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, 20.5, cfg.Inventory.MaxSafeTemp)
	assert.Equal(t, 3, cfg.Inventory.SoonWindowDays)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.Kafka.Brokers)
}

func TestLoadRejectsMalformedNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAX_SAFE_HUMIDITY", "wet")

	_, err := Load(missingEnvFile(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "MAX_SAFE_HUMIDITY")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server:    ServerConfig{Port: "8080"},
			Inventory: InventoryConfig{SoonWindowDays: 2, AlertQueueSize: 8, SweepSchedule: "@every 1h"},
			Auth:      AuthConfig{Backend: AuthBackendFile, UsersFile: "users.json"},
			WhatsApp:  WhatsAppConfig{BaseURL: "https://graph.facebook.com", APIVersion: "v20.0"},
			Reporting: ReportingConfig{CronSchedule: "0 20 * * *", Timezone: "UTC"},
			Kafka:     KafkaConfig{AlertTopic: "alerts"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{name: "valid", mutate: func(*Config) {}},
		{name: "missing port", mutate: func(c *Config) { c.Server.Port = "" }, wantErr: "APP_PORT"},
		{name: "zero soon window", mutate: func(c *Config) { c.Inventory.SoonWindowDays = 0 }, wantErr: "EXPIRY_SOON_DAYS"},
		{name: "unknown auth backend", mutate: func(c *Config) { c.Auth.Backend = "ldap" }, wantErr: "AUTH_BACKEND"},
		{name: "mongo auth without uri", mutate: func(c *Config) { c.Auth.Backend = AuthBackendMongo }, wantErr: "MONGODB_URI"},
		{name: "partial whatsapp", mutate: func(c *Config) { c.WhatsApp.AccessToken = "token" }, wantErr: "WHATSAPP_PHONE_NUMBER_ID"},
		{
			name: "complete whatsapp",
			mutate: func(c *Config) {
				c.WhatsApp.AccessToken = "token"
				c.WhatsApp.PhoneNumberID = "123"
				c.WhatsApp.VerifyToken = "verify"
			},
		},
		{name: "partial sheets", mutate: func(c *Config) { c.Sheets.SpreadsheetID = "sheet" }, wantErr: "GOOGLE_SHEETS_CREDENTIALS_PATH"},
		{name: "kafka without topic", mutate: func(c *Config) { c.Kafka = KafkaConfig{Brokers: []string{"k:9092"}} }, wantErr: "KAFKA_ALERT_TOPIC"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadProfiles(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "profiles.yaml")
	content := `profiles:
  - name: Tomato
    optimal_temp: 12
    optimal_humidity: 85
    shelf_life_days: 7
  - name: Mango
    optimal_temp: 13
    optimal_humidity: 90
    shelf_life_days: 21
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	profiles, err := LoadProfiles(path)
	require.NoError(t, err)
	require.Len(t, profiles, 2)
	assert.Equal(t, "Mango", profiles[1].Name)
	assert.Equal(t, 21.0, profiles[1].ShelfLifeDays)

	dup := filepath.Join(dir, "dup.yaml")
	require.NoError(t, os.WriteFile(dup, []byte("profiles:\n  - name: A\n  - name: A\n"), 0o600))
	_, err = LoadProfiles(dup)
	assert.ErrorContains(t, err, "declared twice")

	_, err = LoadProfiles(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestWhatsAppOperators(t *testing.T) {
	clearEnv(t)
	t.Setenv("WHATSAPP_MANAGER_NUMBER", "224611111111")

	cfg, err := Load(missingEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"224611111111"}, cfg.WhatsApp.Operators())

	t.Setenv("WHATSAPP_OPERATOR_NUMBERS", "224622222222, 224633333333")
	cfg, err = Load(missingEnvFile(t))
	require.NoError(t, err)
	assert.Equal(t, []string{"224622222222", "224633333333"}, cfg.WhatsApp.Operators())

	assert.Empty(t, WhatsAppConfig{}.Operators())
}
