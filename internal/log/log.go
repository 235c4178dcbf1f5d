// Package log provides centralized logging for rainodds using zap.
package log

import (
	"fmt"

	"go.uber.org/zap"
)

var (
	base    *zap.Logger
	sugared *zap.SugaredLogger
)

// Init initializes the package-level logger. Debug selects the development
// encoder with debug-level output.
func Init(debug bool) error {
	var (
		logger *zap.Logger
		err    error
	)
	if debug {
		logger, err = zap.NewDevelopment(zap.AddCallerSkip(1))
	} else {
		logger, err = zap.NewProduction(zap.AddCallerSkip(1))
	}
	if err != nil {
		return fmt.Errorf("can't initialize zap logger: %w", err)
	}
	base = logger
	sugared = logger.Sugar()
	return nil
}

// GetZapLogger returns the base zap logger for collaborators that need one
// directly, such as the GORM logger bridge.
func GetZapLogger() *zap.Logger {
	if base == nil {
		base, _ = zap.NewProduction(zap.AddCallerSkip(1))
		sugared = base.Sugar()
	}
	return base
}

// GetSugaredLogger returns the sugared logger instance.
func GetSugaredLogger() *zap.SugaredLogger {
	if sugared == nil {
		GetZapLogger()
	}
	return sugared
}

// Sync flushes any buffered log entries.
func Sync() {
	if sugared != nil {
		sugared.Sync()
	}
}

func Debug(args ...interface{})                       { GetSugaredLogger().Debug(args...) }
func Debugf(template string, args ...interface{})     { GetSugaredLogger().Debugf(template, args...) }
func Debugw(msg string, keysAndValues ...interface{}) { GetSugaredLogger().Debugw(msg, keysAndValues...) }
func Info(args ...interface{})                        { GetSugaredLogger().Info(args...) }
func Infof(template string, args ...interface{})      { GetSugaredLogger().Infof(template, args...) }
func Infow(msg string, keysAndValues ...interface{})  { GetSugaredLogger().Infow(msg, keysAndValues...) }
func Warn(args ...interface{})                        { GetSugaredLogger().Warn(args...) }
func Warnf(template string, args ...interface{})      { GetSugaredLogger().Warnf(template, args...) }
func Error(args ...interface{})                       { GetSugaredLogger().Error(args...) }
func Errorf(template string, args ...interface{})     { GetSugaredLogger().Errorf(template, args...) }
func Errorw(msg string, keysAndValues ...interface{}) { GetSugaredLogger().Errorw(msg, keysAndValues...) }
func Fatalf(template string, args ...interface{})     { GetSugaredLogger().Fatalf(template, args...) }
