package logger

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// RequestIDKey keys the request identifier on a context.Context.
type RequestIDKey struct{}

var (
	shared   *zap.Logger
	buildErr error
	once     sync.Once
)

// New builds the process-wide logger. Production gets JSON output; every
// other environment gets the colored console encoder. Repeated calls return
// the same instance.
func New(env string) (*zap.Logger, error) {
	once.Do(func() {
		var cfg zap.Config
		if env == "production" {
			cfg = zap.NewProductionConfig()
		} else {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}
		shared, buildErr = cfg.Build()
	})
	return shared, buildErr
}

// WithContext returns the shared logger annotated with the request ID carried
// by ctx, when present.
func WithContext(ctx context.Context) *zap.Logger {
	if shared == nil {
		fallback, _ := zap.NewDevelopment()
		return fallback
	}
	if ctx == nil {
		return shared
	}
	if id, ok := ctx.Value(RequestIDKey{}).(string); ok && id != "" {
		return shared.With(zap.String("request_id", id))
	}
	return shared
}

// MaskEmail keeps at most the first three characters of the local part and
// the full domain: john.doe@example.com becomes joh***@example.com.
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}

	at := strings.LastIndexByte(email, '@')
	if at <= 0 {
		return "***"
	}

	local, domain := email[:at], email[at:]
	visible := len(local)
	if visible > 3 {
		visible = 3
	}
	return local[:visible] + "***" + domain
}

// MaskIP keeps the first two IPv4 octets or the first four IPv6 groups.
func MaskIP(ip string) string {
	if ip == "" {
		return ""
	}

	if octets := strings.Split(ip, "."); len(octets) == 4 {
		return octets[0] + "." + octets[1] + ".*.*"
	}
	if groups := strings.Split(ip, ":"); len(groups) >= 4 {
		return strings.Join(groups[:4], ":") + ":*:*:*:*"
	}
	return "***"
}

// MaskString keeps the outermost two characters of an arbitrary secret.
func MaskString(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 4 {
		return "***"
	}
	return s[:2] + "***" + s[len(s)-2:]
}
