// Copyright 2021 the u-root Authors. All rights reserved
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/tarm/serial"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	LogContainer     logContainer
	loggerInit       sync.Once
	simpleLoggerInit sync.Once

	// Second sink next to stdout. Packages grab their logger at init time,
	// long before main has parsed flags, so the sink is swappable.
	extra = &sinkWriter{}
)

type logContainer struct {
	logger       *zap.Logger
	simpleLogger *zap.SugaredLogger
}

// GetLogger returns the pointer to the logger and creates one if none exists
func (l *logContainer) GetLogger() *zap.Logger {
	loggerInit.Do(func() {
		l.logger = zap.New(getCombinedCore())
	})
	return l.logger
}

// GetSimpleLogger returns the pointer to the sugared logger and creates one
// if none exists
func (l *logContainer) GetSimpleLogger() *zap.SugaredLogger {
	simpleLoggerInit.Do(func() {
		logger := zap.New(getCombinedCore())
		l.simpleLogger = logger.Sugar()
	})
	return l.simpleLogger
}

// String mirrors zap.String
func (l *logContainer) String(key string, val string) zap.Field {
	return zap.String(key, val)
}

// Int mirrors zap.Int
func (l *logContainer) Int(key string, val int) zap.Field {
	return zap.Int(key, val)
}

// Sync flushes both loggers.
func (l *logContainer) Sync() {
	if l.logger != nil {
		_ = l.logger.Sync()
	}
	if l.simpleLogger != nil {
		_ = l.simpleLogger.Sync()
	}
}

type sinkWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *sinkWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.w == nil {
		return len(p), nil
	}
	return s.w.Write(p)
}

func (s *sinkWriter) Sync() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.w.(interface{ Sync() error }); ok {
		return f.Sync()
	}
	return nil
}

func (s *sinkWriter) set(w io.Writer) {
	s.mu.Lock()
	s.w = w
	s.mu.Unlock()
}

// SetSink copies all further log output to w. A nil w removes the sink.
func SetSink(w io.Writer) {
	extra.set(w)
}

// OpenSerialSink opens a debug UART and installs it as the log sink.
func OpenSerialSink(tty string, baud int) (io.Closer, error) {
	p, err := serial.OpenPort(&serial.Config{Name: tty, Baud: baud})
	if err != nil {
		return nil, fmt.Errorf("logger: open %s: %w", tty, err)
	}
	SetSink(p)
	return closerFunc(func() error {
		SetSink(nil)
		return p.Close()
	}), nil
}

// OpenFileSink appends log output to path.
func OpenFileSink(path string) (io.Closer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("logger: unable to create logfile: %w", err)
	}
	SetSink(f)
	return closerFunc(func() error {
		SetSink(nil)
		return f.Close()
	}), nil
}

type closerFunc func() error

func (c closerFunc) Close() error { return c() }

func getConsoleEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

// Serial consoles and log files get no color codes.
func getSinkEncoder() zapcore.Encoder {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.EpochTimeEncoder
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewConsoleEncoder(encoderConfig)
}

func getConsoleCore() zapcore.Core {
	return zapcore.NewCore(getConsoleEncoder(), zapcore.AddSync(os.Stdout), zapcore.InfoLevel)
}

func getSinkCore() zapcore.Core {
	return zapcore.NewCore(getSinkEncoder(), extra, zapcore.DebugLevel)
}

func getCombinedCore() zapcore.Core {
	return zapcore.NewTee(getConsoleCore(), getSinkCore())
}
