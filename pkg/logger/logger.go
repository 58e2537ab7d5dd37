package logger

import (
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/noah-isme/campus-virtual-api/pkg/config"
	"github.com/noah-isme/campus-virtual-api/pkg/middleware/requestid"
)

// Gin context keys the session middleware fills so access logs name the user.
const (
	ContextUserIDKey = "log_user_id"
	ContextRoleKey   = "log_user_role"
)

// New builds the process logger. Production logs JSON at info with sampling;
// other environments log at debug with caller info. LOG_FORMAT and LOG_LEVEL
// override either default; an unparsable level is ignored.
func New(cfg *config.Config) (*zap.Logger, error) {
	prod := cfg.Env == config.EnvProduction

	level := zapcore.DebugLevel
	if prod {
		level = zapcore.InfoLevel
	}
	if cfg.Log.Level != "" {
		if parsed, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
			level = parsed
		}
	}

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var encoder zapcore.Encoder
	switch {
	case cfg.Log.Format == "console", cfg.Log.Format == "" && !prod:
		encCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encCfg)
	default:
		encoder = zapcore.NewJSONEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), zap.NewAtomicLevelAt(level))
	opts := []zap.Option{zap.ErrorOutput(zapcore.Lock(os.Stderr)), zap.Fields(zap.String("service", "campus-virtual-api"))}
	if prod {
		core = zapcore.NewSamplerWithOptions(core, time.Second, 100, 100)
	} else {
		opts = append(opts, zap.AddCaller())
	}
	return zap.New(core, opts...), nil
}

// GinMiddleware writes one access log line per request at a level matching
// its status class. Paths in skip, such as probes, are not logged.
func GinMiddleware(l *zap.Logger, skip ...string) gin.HandlerFunc {
	quiet := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		quiet[p] = struct{}{}
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		if _, ok := quiet[c.Request.URL.Path]; ok {
			return
		}
		status := c.Writer.Status()
		fields := make([]zap.Field, 0, 10)
		fields = append(fields,
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("route", c.FullPath()),
			zap.Int("status", status),
			zap.Int("bytes", c.Writer.Size()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		)
		if id := requestid.Value(c); id != "" {
			fields = append(fields, zap.String("request_id", id))
		}
		if userID := c.GetString(ContextUserIDKey); userID != "" {
			fields = append(fields, zap.String("user_id", userID), zap.String("role", c.GetString(ContextRoleKey)))
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}

		log := l.Info
		if status >= 500 {
			log = l.Error
		} else if status >= 400 {
			log = l.Warn
		}
		log("http_request", fields...)
	}
}
