package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger — общий интерфейс логирования, который прокидывается во все слои приложения.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(err error, format string, args ...any)
}

// ZapLogger реализует Logger поверх zap.SugaredLogger.
type ZapLogger struct {
	log *zap.SugaredLogger
}

// New создаёт production-логгер zap с JSON-выводом. Уровень берётся из LOG_LEVEL.
func New() (*ZapLogger, error) {
	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(parseLevel(os.Getenv("LOG_LEVEL")))

	log, err := config.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, err
	}

	return FromZap(log), nil
}

func FromZap(log *zap.Logger) *ZapLogger {
	return &ZapLogger{log: log.Sugar()}
}

// NewDiscard возвращает логгер, который ничего не пишет (для тестов).
func NewDiscard() *ZapLogger {
	return FromZap(zap.NewNop())
}

func (l *ZapLogger) Debugf(format string, args ...any) {
	l.log.Debugf(format, args...)
}

func (l *ZapLogger) Infof(format string, args ...any) {
	l.log.Infof(format, args...)
}

func (l *ZapLogger) Warnf(format string, args ...any) {
	l.log.Warnf(format, args...)
}

func (l *ZapLogger) Errorf(err error, format string, args ...any) {
	l.log.With(zap.Error(err)).Errorf(format, args...)
}

// Sync сбрасывает буферы; вызывается перед выходом из процесса.
func (l *ZapLogger) Sync() error {
	return l.log.Sync()
}

func parseLevel(s string) zapcore.Level {
	level, err := zapcore.ParseLevel(s)
	if err != nil {
		return zapcore.InfoLevel
	}
	return level
}
