package types

import "sync"

const ContextUserKey = "user"

var (
	originsMu      sync.RWMutex
	allowedOrigins = []string{
		"http://localhost:3000",
		"http://localhost:5173",
	}
)

// SetAllowedOrigins replaces the browser origins accepted by CORS and websocket upgrades.
func SetAllowedOrigins(origins []string) {
	originsMu.Lock()
	defer originsMu.Unlock()
	allowedOrigins = append([]string(nil), origins...)
}

func AllowedOrigins() []string {
	originsMu.RLock()
	defer originsMu.RUnlock()
	return append([]string(nil), allowedOrigins...)
}

func IsAllowedOrigin(origin string) bool {
	for _, allowed := range AllowedOrigins() {
		if origin == allowed {
			return true
		}
	}
	return false
}
