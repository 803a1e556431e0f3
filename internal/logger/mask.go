package logger

import (
	"strings"

	"go.uber.org/zap"
)

// MaskSecret keeps the last four characters of a credential.
func MaskSecret(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return strings.Repeat("*", len(value))
	}
	return strings.Repeat("*", len(value)-4) + value[len(value)-4:]
}

// Secret is a zap field carrying a masked credential.
func Secret(key, value string) zap.Field {
	return zap.String(key, MaskSecret(value))
}
