// Copyright (c) 2023-2025 RapidaAI
// Author: Prashant Srivastav <prashant@rapida.ai>
//
// Licensed under GPL-2.0 with Rapida Additional Terms.
// See LICENSE.md or contact sales@rapida.ai for commercial usage.
package commons

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger is the narrow logging surface used throughout the mediator. It is
// implemented by the zap-backed ApplicationLogger in production and by
// NoOpLogger in tests that don't care about log output.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})

	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// NoOpLogger discards everything. Useful as a default in tests.
type NoOpLogger struct{}

func (n *NoOpLogger) Debug(msg string, args ...interface{})            {}
func (n *NoOpLogger) Info(msg string, args ...interface{})             {}
func (n *NoOpLogger) Warn(msg string, args ...interface{})             {}
func (n *NoOpLogger) Error(msg string, args ...interface{})            {}
func (n *NoOpLogger) Debugf(format string, args ...interface{})        {}
func (n *NoOpLogger) Infof(format string, args ...interface{})         {}
func (n *NoOpLogger) Warnf(format string, args ...interface{})         {}
func (n *NoOpLogger) Errorf(format string, args ...interface{})        {}

// ApplicationLogger is the zap-backed production Logger, with file rotation
// handled by lumberjack when a log file path is configured.
type ApplicationLogger struct {
	sugar *zap.SugaredLogger
}

// NewApplicationLogger builds a Logger writing to stdout and, if logFilePath
// is non-empty, to a rotated log file (100MB/file, 7 backups, 28 days).
func NewApplicationLogger(level string, logFilePath string) (Logger, error) {
	zapLevel := zapcore.InfoLevel
	if err := zapLevel.UnmarshalText([]byte(level)); err != nil {
		zapLevel = zapcore.InfoLevel
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	cores := []zapcore.Core{
		zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.AddSync(os.Stdout),
			zapLevel,
		),
	}

	if logFilePath != "" {
		rotator := &lumberjack.Logger{
			Filename:   logFilePath,
			MaxSize:    100,
			MaxBackups: 7,
			MaxAge:     28,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(
			zapcore.NewJSONEncoder(encoderCfg),
			zapcore.AddSync(rotator),
			zapLevel,
		))
	}

	logger := zap.New(zapcore.NewTee(cores...), zap.AddCaller())
	return &ApplicationLogger{sugar: logger.Sugar()}, nil
}

func (a *ApplicationLogger) Debug(msg string, args ...interface{}) { a.sugar.Debugw(msg, args...) }
func (a *ApplicationLogger) Info(msg string, args ...interface{})  { a.sugar.Infow(msg, args...) }
func (a *ApplicationLogger) Warn(msg string, args ...interface{})  { a.sugar.Warnw(msg, args...) }
func (a *ApplicationLogger) Error(msg string, args ...interface{}) { a.sugar.Errorw(msg, args...) }

func (a *ApplicationLogger) Debugf(format string, args ...interface{}) { a.sugar.Debugf(format, args...) }
func (a *ApplicationLogger) Infof(format string, args ...interface{})  { a.sugar.Infof(format, args...) }
func (a *ApplicationLogger) Warnf(format string, args ...interface{})  { a.sugar.Warnf(format, args...) }
func (a *ApplicationLogger) Errorf(format string, args ...interface{}) { a.sugar.Errorf(format, args...) }
