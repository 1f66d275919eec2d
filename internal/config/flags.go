package config

import "github.com/spf13/pflag"

// flagKeys maps command-line flag names to configuration keys.
var flagKeys = map[string]string{
	"host":            "host",
	"port":            "port",
	"log-level":       "log_level",
	"metrics-addr":    "metrics_addr",
	"max-history":     "max_history",
	"rate-limit":      "rate_limit_per_minute",
	"allowed-origins": "allowed_origins",
}

// RegisterFlags adds the configuration override flags to fs. Only flags the
// user sets take effect in Load, so an explicit zero (e.g. --rate-limit 0)
// still overrides the file and environment.
func RegisterFlags(fs *pflag.FlagSet) {
	fs.String("host", "", "HTTP listen host")
	fs.IntP("port", "p", 0, "HTTP listen port")
	fs.String("log-level", "", "log level (debug, info, warn, error, disabled)")
	fs.String("metrics-addr", "", "listen address for /metrics and /health (empty disables)")
	fs.Int("max-history", 0, "messages kept per room")
	fs.Int("rate-limit", 0, "inbound frames allowed per connection per minute (0 disables)")
	fs.StringSlice("allowed-origins", nil, "allowed WebSocket origins (empty allows all)")
}
