package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# coinsentinel configuration

[monitor]
# Slug of the monitored Twitter list
list_id = "binance-coins"
# Reduced mode: poll every 60s instead of 15s and monitor fewer horizons
reduced_mode = false
# Quiet mode: suppress voice/terminal announcements (logging unaffected)
quiet_mode = false
# Archive market data for every monitor that raised an alert
log_data = true
# Quote asset appended to symbols to form exchange pairs
quote_asset = "BTC"
# CSV mapping tracked authors to market symbols (columns: symbol,author)
#watchlist_path = ""
# SQLite database for archived monitoring records
#database_path = ""

[notifications]
# Speak alerts with the system voice
voice_enabled = true
# Ring the terminal bell on alerts
bell_enabled = true
# Text red alerts via Twilio (credentials.toml must be filled in)
sms_enabled = false

# Gain thresholds in percent, keyed by horizon seconds
[thresholds.red]
30 = 0.6
60 = 1.1
150 = 1.8
300 = 3.0
600 = 5.0

[thresholds.amber]
30 = 0.4
60 = 0.9
150 = 1.4
300 = 2.5
600 = 4.5

# Trigger rules, evaluated in order. Each rule needs an author and/or
# phrases; the first matching red rule alerts immediately.
[[triggers]]
author = "binance"
phrases = ["competition"]
tier = "red"
message = "binance competition"

[[triggers]]
phrases = ["upbit"]
tier = "red"
message = "upbit listing"

[[triggers]]
author = "binance"
tier = "red"
message = "binance update"

[[triggers]]
phrases = ["listed"]
tier = "amber"
message = "exchange listing"

[[triggers]]
phrases = ["announce"]
tier = "amber"
message = "announcement"

[[triggers]]
phrases = ["partnership"]
tier = "amber"
message = "partnership"
`

const credentialsTemplate = `# coinsentinel credentials
# Keep this file private (chmod 600).

[twitter]
bearer_token = ""
# Screen name of the account that owns the monitored list
list_owner = ""

[twilio]
account_sid = ""
auth_token = ""
# E.164 numbers
from = ""
to = ""
`

const watchlistTemplate = `symbol,author
NANO,nano
IOTA,iota
XLM,stellarorg
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing config template: %w", err)
	}

	watchlistPath := filepath.Join(configDir, "watchlist.csv")
	if _, err := os.Stat(watchlistPath); os.IsNotExist(err) {
		if err := os.WriteFile(watchlistPath, []byte(watchlistTemplate), 0644); err != nil {
			return fmt.Errorf("writing watchlist template: %w", err)
		}
	}
	return nil
}

func createTemplateCredentials(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	path := filepath.Join(configDir, "credentials.toml")
	return os.WriteFile(path, []byte(credentialsTemplate), 0600)
}
