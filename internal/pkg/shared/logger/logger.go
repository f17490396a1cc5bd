// Copyright (c) 2018 PT Defender Nusa Semesta and contributors, All rights reserved.
//
// This file is part of Dsiem.
//
// Dsiem is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation version 3 of the License.
//
// Dsiem is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Dsiem. If not, see <https://www.gnu.org/licenses/>.

package logger

import (
	"bufio"
	"bytes"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var zlog = zap.NewNop()
var enableDebugMessage bool

var enc zapcore.Encoder
var wrt *bufio.Writer
var buffer bytes.Buffer
var zLock = sync.RWMutex{}

// TestMode is a flag for testing mode
var TestMode bool

// Setup initialize logger
func Setup(dbg bool) (err error) {
	zLock.Lock()
	defer zLock.Unlock()
	enableDebugMessage = dbg
	var l *zap.Logger
	if enableDebugMessage {
		cfg := zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.DisableStacktrace = true
		cfg.DisableCaller = true
		l, err = cfg.Build(zap.AddStacktrace(zap.ErrorLevel))
	} else {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		cfg.DisableCaller = true
		cfg.OutputPaths = []string{"stderr"}
		cfg.ErrorOutputPaths = []string{"stderr"}
		l, err = cfg.Build()
	}
	if err == nil {
		zlog = l
		zlog.Sync()
	}
	return
}

// Logger returns the underlying zap logger, for libraries that take one
func Logger() *zap.Logger {
	zLock.RLock()
	defer zLock.RUnlock()
	return zlog
}

// M defines the type for log messages
type M struct {
	Msg      string // the message
	Endpoint string // API endpoint or intel source
	Term     string // looked up term, e.g. an IP address
	RId      string // request ID
}

func (m *M) fields() (f []zapcore.Field) {
	if m.Endpoint != "" {
		f = append(f, zap.String("endpoint", m.Endpoint))
	}
	if m.Term != "" {
		f = append(f, zap.String("term", m.Term))
	}
	if m.RId != "" {
		f = append(f, zap.String("request", m.RId))
	}
	return
}

func lock() func() {
	if !TestMode {
		return func() {}
	}
	zLock.Lock()
	return zLock.Unlock
}

// Info logs with info level
func Info(m M) {
	defer lock()()
	zlog.Info(m.Msg, m.fields()...)
}

// InfoMsg logs msg with info level
func InfoMsg(msg string) {
	Info(M{Msg: msg})
}

// Warn logs with warn level
func Warn(m M) {
	defer lock()()
	zlog.Warn(m.Msg, m.fields()...)
}

// Debug logs with debug level
func Debug(m M) {
	if !enableDebugMessage {
		return
	}
	defer lock()()
	zlog.Debug(m.Msg, m.fields()...)
}

// Error logs with error level
func Error(m M) {
	defer lock()()
	zlog.Error(m.Msg, m.fields()...)
}

// CaptureZapOutput returns output of zap logger so that it can be used
// in tests
func CaptureZapOutput(funcToRun func()) string {
	zLock.Lock()
	buffer.Reset()
	zLock.Unlock()
	funcToRun()
	zLock.Lock()
	wrt.Flush()
	zLock.Unlock()
	return buffer.String()
}

// EnableTestingMode set zap for testing, should be called before CaptureZapOutput
func EnableTestingMode() {
	zLock.Lock()
	defer zLock.Unlock()
	TestMode = true
	enableDebugMessage = true
	enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	wrt = bufio.NewWriter(&buffer)
	zlog = zap.New(
		zapcore.NewCore(enc, zapcore.AddSync(wrt), zapcore.DebugLevel))
}
