package adapter

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/mateusmacedo/airline-registry/pkg/application"
)

type zapAppLoggerAdapter struct {
	zapLogger *zap.Logger
}

// NewZapAppLogger monta o logger de produção do serviço com o nível informado.
func NewZapAppLogger(serviceName, level string) (application.AppLogger, error) {
	atomicLevel, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	config := zap.NewProductionConfig()
	config.Level = atomicLevel
	config.InitialFields = map[string]interface{}{"service": serviceName}
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return NewZapAppLoggerFrom(zapLogger), nil
}

// NewZapAppLoggerFrom adapta um *zap.Logger já construído.
func NewZapAppLoggerFrom(zapLogger *zap.Logger) application.AppLogger {
	return &zapAppLoggerAdapter{zapLogger: zapLogger.WithOptions(zap.AddCallerSkip(1))}
}

func (l *zapAppLoggerAdapter) Info(ctx context.Context, msg string, fields map[string]interface{}) {
	l.zapLogger.Info(msg, convertFields(ctx, fields)...)
}

func (l *zapAppLoggerAdapter) Debug(ctx context.Context, msg string, fields map[string]interface{}) {
	l.zapLogger.Debug(msg, convertFields(ctx, fields)...)
}

func (l *zapAppLoggerAdapter) Error(ctx context.Context, msg string, fields map[string]interface{}) {
	l.zapLogger.Error(msg, convertFields(ctx, fields)...)
}

// zap não tem nível trace; o trace é emitido como debug.
func (l *zapAppLoggerAdapter) Trace(ctx context.Context, msg string, fields map[string]interface{}) {
	l.zapLogger.Debug(msg, convertFields(ctx, fields)...)
}

func convertFields(ctx context.Context, fields map[string]interface{}) []zap.Field {
	zapFields := make([]zap.Field, 0, len(fields)+1)

	if requestID, ok := application.RequestIDFrom(ctx); ok {
		zapFields = append(zapFields, zap.String("requestID", requestID))
	}

	for k, v := range fields {
		if err, ok := v.(error); ok {
			zapFields = append(zapFields, zap.NamedError(k, err))
			continue
		}
		zapFields = append(zapFields, zap.Any(k, v))
	}
	return zapFields
}
