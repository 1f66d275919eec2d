package http

import (
	"net/url"
	"strings"

	"github.com/coder/websocket"
	"github.com/rs/zerolog"
)

// acceptOptions turns the configured origin allow-list into WebSocket accept options.
// An empty list, or one containing "*", disables origin checks.
func acceptOptions(origins []string, logger *zerolog.Logger) *websocket.AcceptOptions {
	patterns, allowAll := originPatterns(origins, logger)
	if allowAll || len(patterns) == 0 {
		return &websocket.AcceptOptions{InsecureSkipVerify: true}
	}
	return &websocket.AcceptOptions{OriginPatterns: patterns}
}

// originPatterns normalizes origins to the host patterns the websocket library matches against.
// Full URLs are reduced to their host; bare host patterns such as "*.example.com" pass through.
func originPatterns(origins []string, logger *zerolog.Logger) ([]string, bool) {
	patterns := make([]string, 0, len(origins))
	allowAll := false

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		switch {
		case trimmed == "":
			continue
		case trimmed == "*":
			allowAll = true
			continue
		case !strings.Contains(trimmed, "://"):
			patterns = append(patterns, strings.ToLower(trimmed))
			continue
		}

		parsed, err := url.Parse(trimmed)
		if err != nil || parsed.Host == "" {
			logger.Warn().Str("origin", origin).Msg("ignoring invalid origin in configuration")
			continue
		}
		patterns = append(patterns, strings.ToLower(parsed.Host))
	}

	return patterns, allowAll
}
