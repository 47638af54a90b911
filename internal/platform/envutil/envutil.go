package envutil

import (
	"os"
	"strconv"
	"strings"

	"github.com/yungbote/competence-ledger/internal/platform/logger"
)

func GetEnv(key, defaultVal string, log *logger.Logger) string {
	if log != nil {
		log = log.With("env_var", key)
	}
	val, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(val) == "" {
		if log != nil {
			log.Debug("Environment variable not found, using default", "default", defaultVal)
		}
		return defaultVal
	}
	if log != nil {
		shown := val
		if logger.Sensitive(key) {
			shown = "[REDACTED]"
		}
		log.Debug("Environment variable found, using environment", "environment", shown)
	}
	return strings.TrimSpace(val)
}

func GetEnvAsInt(key string, defaultVal int, log *logger.Logger) int {
	if log != nil {
		log = log.With("env_var", key)
	}
	valStr, ok := os.LookupEnv(key)
	if !ok {
		if log != nil {
			log.Debug("Environment variable not found, using default", "default", defaultVal)
		}
		return defaultVal
	}
	i, err := strconv.Atoi(strings.TrimSpace(valStr))
	if err != nil {
		if log != nil {
			log.Debug("Environment variable could not be parsed as int, using default", "providedVal", valStr, "defaultVal", defaultVal, "error", err)
		}
		return defaultVal
	}
	return i
}

func GetEnvAsBool(key string, defaultVal bool, log *logger.Logger) bool {
	v := strings.TrimSpace(strings.ToLower(GetEnv(key, "", log)))
	switch v {
	case "":
		return defaultVal
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		if log != nil {
			log.Debug("Environment variable could not be parsed as bool, using default", "env_var", key, "providedVal", v, "defaultVal", defaultVal)
		}
		return defaultVal
	}
}

func GetEnvAsFloat(key string, defaultVal float64, log *logger.Logger) float64 {
	v := GetEnv(key, "", log)
	if v == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		if log != nil {
			log.Debug("Environment variable could not be parsed as float, using default", "env_var", key, "providedVal", v, "defaultVal", defaultVal, "error", err)
		}
		return defaultVal
	}
	return f
}

// GetEnvAsList splits a comma-separated variable, dropping empty entries.
func GetEnvAsList(key string, log *logger.Logger) []string {
	var out []string
	for _, part := range strings.Split(GetEnv(key, "", log), ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
