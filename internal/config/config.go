// Package config provides configuration management for the monitoring
// application.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/spf13/viper"

	apperrors "coinsentinel/internal/errors"
	"coinsentinel/internal/models"
	"coinsentinel/internal/trigger"
)

// Config holds all application configuration.
type Config struct {
	Monitor       MonitorConfig      `mapstructure:"monitor"`
	Thresholds    ThresholdConfig    `mapstructure:"thresholds"`
	Triggers      []TriggerRule      `mapstructure:"triggers"`
	Notifications NotificationConfig `mapstructure:"notifications"`
	Credentials   Credentials        `mapstructure:"-"` // Loaded separately
}

// MonitorConfig holds monitoring behaviour configuration.
type MonitorConfig struct {
	ListID        string `mapstructure:"list_id"`
	ReducedMode   bool   `mapstructure:"reduced_mode"`
	QuietMode     bool   `mapstructure:"quiet_mode"`
	LogData       bool   `mapstructure:"log_data"`
	WatchlistPath string `mapstructure:"watchlist_path"`
	QuoteAsset    string `mapstructure:"quote_asset"`
	DatabasePath  string `mapstructure:"database_path"`
}

// ThresholdConfig maps monitoring horizons (seconds) to percentage
// gain thresholds per tier. Keys are horizon seconds; TOML keys are
// strings, so conversion happens in the accessors.
type ThresholdConfig struct {
	Red   map[string]float64 `mapstructure:"red"`
	Amber map[string]float64 `mapstructure:"amber"`
}

// RedBySeconds returns the red thresholds keyed by horizon seconds.
func (t ThresholdConfig) RedBySeconds() map[int]float64 {
	return thresholdsBySeconds(t.Red)
}

// AmberBySeconds returns the amber thresholds keyed by horizon seconds.
func (t ThresholdConfig) AmberBySeconds() map[int]float64 {
	return thresholdsBySeconds(t.Amber)
}

func thresholdsBySeconds(m map[string]float64) map[int]float64 {
	out := make(map[int]float64, len(m))
	for k, v := range m {
		if seconds, err := strconv.Atoi(k); err == nil {
			out[seconds] = v
		}
	}
	return out
}

// TriggerRule is the configuration form of a trigger rule.
type TriggerRule struct {
	Author  string   `mapstructure:"author"`
	Phrases []string `mapstructure:"phrases"`
	Tier    string   `mapstructure:"tier"`
	Message string   `mapstructure:"message"`
}

// NotificationConfig holds notification channel configuration.
type NotificationConfig struct {
	VoiceEnabled bool `mapstructure:"voice_enabled"`
	BellEnabled  bool `mapstructure:"bell_enabled"`
	SMSEnabled   bool `mapstructure:"sms_enabled"`
}

// Credentials holds API credentials.
type Credentials struct {
	Twitter TwitterCredentials `mapstructure:"twitter"`
	Twilio  TwilioCredentials  `mapstructure:"twilio"`
}

// TwitterCredentials holds Twitter API credentials.
type TwitterCredentials struct {
	BearerToken string `mapstructure:"bearer_token"`
	ListOwner   string `mapstructure:"list_owner"`
}

// TwilioCredentials holds Twilio SMS credentials.
type TwilioCredentials struct {
	AccountSID string `mapstructure:"account_sid"`
	AuthToken  string `mapstructure:"auth_token"`
	From       string `mapstructure:"from"`
	To         string `mapstructure:"to"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/coinsentinel"
	}
	return filepath.Join(home, ".config", "coinsentinel")
}

// DefaultRedThresholds maps horizon seconds to the red-tier gain
// threshold in percent.
func DefaultRedThresholds() map[string]float64 {
	return map[string]float64{"30": 0.6, "60": 1.1, "150": 1.8, "300": 3.0, "600": 5.0}
}

// DefaultAmberThresholds maps horizon seconds to the amber-tier gain
// threshold in percent.
func DefaultAmberThresholds() map[string]float64 {
	return map[string]float64{"30": 0.4, "60": 0.9, "150": 1.4, "300": 2.5, "600": 4.5}
}

// Load loads configuration from the specified directory.
// If configDir is empty, uses the default config directory.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	cfg := &Config{}

	if err := loadConfigFile(configDir, cfg); err != nil {
		return nil, fmt.Errorf("loading config.toml: %w", err)
	}
	if err := loadCredentials(configDir, &cfg.Credentials); err != nil {
		return nil, fmt.Errorf("loading credentials.toml: %w", err)
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg, configDir)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

func loadConfigFile(configDir string, target *Config) error {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	v.SetDefault("monitor.list_id", "binance-coins")
	v.SetDefault("monitor.log_data", true)
	v.SetDefault("monitor.quote_asset", "BTC")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		// First run: write the template, then load it so the returned
		// config matches the file the user will go on to edit.
		if err := createTemplateConfig(configDir); err != nil {
			return err
		}
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}
	return v.Unmarshal(target)
}

func loadCredentials(configDir string, creds *Credentials) error {
	v := viper.New()
	v.SetConfigName("credentials")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return err
		}
		if err := createTemplateCredentials(configDir); err != nil {
			return err
		}
		if err := v.ReadInConfig(); err != nil {
			return err
		}
	}
	return v.Unmarshal(creds)
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TWITTER_BEARER_TOKEN"); v != "" {
		cfg.Credentials.Twitter.BearerToken = v
	}
	if v := os.Getenv("TWILIO_ACCOUNT_SID"); v != "" {
		cfg.Credentials.Twilio.AccountSID = v
	}
	if v := os.Getenv("TWILIO_AUTH_TOKEN"); v != "" {
		cfg.Credentials.Twilio.AuthToken = v
	}
}

func applyDefaults(cfg *Config, configDir string) {
	if cfg.Monitor.WatchlistPath == "" {
		cfg.Monitor.WatchlistPath = filepath.Join(configDir, "watchlist.csv")
	}
	if cfg.Monitor.DatabasePath == "" {
		cfg.Monitor.DatabasePath = filepath.Join(configDir, "sentinel.db")
	}
	if len(cfg.Thresholds.Red) == 0 {
		cfg.Thresholds.Red = DefaultRedThresholds()
	}
	if len(cfg.Thresholds.Amber) == 0 {
		cfg.Thresholds.Amber = DefaultAmberThresholds()
	}
	if len(cfg.Triggers) == 0 {
		cfg.Triggers = defaultTriggers()
	}
}

func defaultTriggers() []TriggerRule {
	return []TriggerRule{
		{Author: "binance", Phrases: []string{"competition"}, Tier: "red", Message: "binance competition"},
		{Phrases: []string{"upbit"}, Tier: "red", Message: "upbit listing"},
		{Phrases: []string{"bithumb"}, Tier: "red", Message: "bithumb listing"},
		{Phrases: []string{"huobi"}, Tier: "red", Message: "huobi listing"},
		{Phrases: []string{"okex"}, Tier: "red", Message: "okex listing"},
		{Author: "binance", Tier: "red", Message: "binance update"},
		{Phrases: []string{"listed"}, Tier: "amber", Message: "exchange listing"},
		{Phrases: []string{"announce"}, Tier: "amber", Message: "announcement"},
		{Phrases: []string{"partnership"}, Tier: "amber", Message: "partnership"},
	}
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	for i, rule := range c.Triggers {
		if rule.Author == "" && len(rule.Phrases) == 0 {
			// Such a rule matches everything; almost certainly a
			// config error, so refuse it rather than alert on every
			// event.
			return apperrors.NewValidationError(
				fmt.Sprintf("triggers[%d]", i), rule.Message,
				"rule must set at least one of author or phrases")
		}
		if models.ParseTier(rule.Tier) == models.TierNone {
			return apperrors.NewValidationError(
				fmt.Sprintf("triggers[%d].tier", i), rule.Tier,
				"tier must be amber or red")
		}
	}

	for key, red := range c.Thresholds.Red {
		horizon, err := strconv.Atoi(key)
		if err != nil || horizon <= 0 || red <= 0 {
			return apperrors.NewValidationError("thresholds.red", key, "horizons and thresholds must be positive integers")
		}
	}
	for key, amber := range c.Thresholds.Amber {
		if horizon, err := strconv.Atoi(key); err != nil || horizon <= 0 || amber <= 0 {
			return apperrors.NewValidationError("thresholds.amber", key, "horizons and thresholds must be positive integers")
		}
	}

	// Every horizon needs both tiers configured. A missing amber key
	// would otherwise read as a zero threshold and fire amber alerts
	// on any positive gain at that horizon.
	for key, amber := range c.Thresholds.Amber {
		red, ok := c.Thresholds.Red[key]
		if !ok {
			return apperrors.NewValidationError("thresholds.red", key, "horizon has an amber threshold but no red threshold")
		}
		if amber >= red {
			return apperrors.NewValidationError("thresholds", key, "amber threshold must be below red")
		}
	}
	for key := range c.Thresholds.Red {
		if _, ok := c.Thresholds.Amber[key]; !ok {
			return apperrors.NewValidationError("thresholds.amber", key, "horizon has a red threshold but no amber threshold")
		}
	}
	return nil
}

// TriggerRules converts the configured rules into the matcher's form.
func (c *Config) TriggerRules() []trigger.Rule {
	rules := make([]trigger.Rule, 0, len(c.Triggers))
	for _, r := range c.Triggers {
		rules = append(rules, trigger.Rule{
			Author:  r.Author,
			Phrases: r.Phrases,
			Tier:    models.ParseTier(r.Tier),
			Message: r.Message,
		})
	}
	return rules
}

// Horizons returns the configured monitoring horizons in seconds,
// strictly increasing. In reduced mode only a subset is monitored to
// lower the call rate on the exchange.
func (c *Config) Horizons() []int {
	red := c.Thresholds.RedBySeconds()
	full := make([]int, 0, len(red))
	for horizon := range red {
		full = append(full, horizon)
	}
	sort.Ints(full)
	if !c.Monitor.ReducedMode {
		return full
	}

	reduced := make([]int, 0, len(full))
	for i, horizon := range full {
		// Keep every other horizon plus the final one.
		if i%2 == 1 || i == len(full)-1 {
			reduced = append(reduced, horizon)
		}
	}
	return reduced
}

// PollCadenceSeconds returns the feed poll cadence: 15s normally, 60s
// in reduced mode.
func (c *Config) PollCadenceSeconds() int {
	if c.Monitor.ReducedMode {
		return 60
	}
	return 15
}
