package featureflags

import (
	"os"
	"strings"
)

// Known flags. Flags are read from env as FLAG_<NAME>=true/1/yes
// (case-insensitive); unset means disabled.
const (
	TicketEvents  = "TICKET_EVENTS"  // websocket ticket event feed
	StatsWorker   = "STATS_WORKER"   // background ticket stats gauges
	LoginThrottle = "LOGIN_THROTTLE" // redis-backed login failure throttle
)

// Enabled reports whether a flag is turned on via its environment variable.
func Enabled(name string) bool {
	return enabled(os.Getenv("FLAG_" + strings.ToUpper(name)))
}

// EnabledDefault is like Enabled but falls back to def when the
// variable is unset.
func EnabledDefault(name string, def bool) bool {
	v, ok := os.LookupEnv("FLAG_" + strings.ToUpper(name))
	if !ok {
		return def
	}
	return enabled(v)
}

func enabled(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
