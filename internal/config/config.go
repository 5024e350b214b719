package config

import (
	"encoding/json"
	"fmt"
	"os"
)

type Config struct {
	Server   ServerConfig   `json:"server"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
	Auth     AuthConfig     `json:"auth"`
	AI       AIConfig       `json:"ai"`
	Security SecurityConfig `json:"security"`
	Tiers    TierConfig     `json:"tiers"`
}

type ServerConfig struct {
	Port        string `json:"port"`
	Environment string `json:"environment"`
}

type DatabaseConfig struct {
	DSN string `json:"dsn"`
}

type RedisConfig struct {
	Host     string `json:"host"`
	Port     string `json:"port"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type AuthConfig struct {
	JWTExpiryMinutes  int `json:"jwt_expiry_minutes"`
	RefreshExpiryDays int `json:"refresh_expiry_days"`
}

type AIConfig struct {
	BaseURL        string `json:"base_url"`
	Model          string `json:"model"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

type SecurityConfig struct {
	InjectionAlertThreshold int `json:"injection_alert_threshold"`
	LoginRequestsPerMinute  int `json:"login_requests_per_minute"`
}

// Tier limit tables, keyed by tier level 0-6. The defaults are part of the
// mobile app contract and must not drift.
type TierConfig struct {
	ChatRequestsPerDay []int              `json:"chat_requests_per_day"`
	InsightsPerMonth   []int              `json:"insights_per_month"`
	SavingsThresholds  []SavingsThreshold `json:"savings_thresholds"`
}

type SavingsThreshold struct {
	MinSavings float64 `json:"min_savings"`
	Tier       string  `json:"tier"`
}

func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        "8000",
			Environment: "development",
		},
		Redis: RedisConfig{
			Host: "localhost",
			Port: "6379",
		},
		Auth: AuthConfig{
			JWTExpiryMinutes:  30,
			RefreshExpiryDays: 7,
		},
		AI: AIConfig{
			BaseURL:        "https://api.x.ai/v1",
			Model:          "grok-beta",
			TimeoutSeconds: 30,
		},
		Security: SecurityConfig{
			InjectionAlertThreshold: 5,
			LoginRequestsPerMinute:  10,
		},
		Tiers: TierConfig{
			ChatRequestsPerDay: []int{3, 10, 25, 50, -1, -1, -1},
			InsightsPerMonth:   []int{1, 5, 15, 30, -1, -1, -1},
			SavingsThresholds: []SavingsThreshold{
				{MinSavings: 10000, Tier: "Elite Saver"},
				{MinSavings: 5000, Tier: "Diamond Saver"},
				{MinSavings: 2500, Tier: "Platinum Saver"},
				{MinSavings: 1000, Tier: "Gold Saver"},
				{MinSavings: 500, Tier: "Silver Saver"},
				{MinSavings: 100, Tier: "Bronze Saver"},
				{MinSavings: 0, Tier: "Starter"},
			},
		},
	}
}

// Loads config.json over the compiled-in defaults. Secrets (database DSN,
// JWT secret, AI API key) come from the environment, not the file.
func Load(path string) (*Config, error) {
	config := Default()

	file, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, err
	}

	if err := json.Unmarshal(file, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if len(config.Tiers.ChatRequestsPerDay) != 7 || len(config.Tiers.InsightsPerMonth) != 7 {
		return nil, fmt.Errorf("tier limit tables must cover all 7 levels")
	}

	return config, nil
}

func (r *RedisConfig) GetRedisAddr() string {
	return r.Host + ":" + r.Port
}
