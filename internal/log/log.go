/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package log

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Level defines a log level.
type Level zapcore.Level

// Log levels.
const (
	DEBUG   = Level(zapcore.DebugLevel)
	INFO    = Level(zapcore.InfoLevel)
	WARNING = Level(zapcore.WarnLevel)
	ERROR   = Level(zapcore.ErrorLevel)
	PANIC   = Level(zapcore.PanicLevel)
	FATAL   = Level(zapcore.FatalLevel)
)

const (
	defaultLevel    = INFO
	defaultModuleID = ""
	specDelimiter   = ":"
	moduleDelimiter = "="
)

var levelNames = map[Level]string{
	DEBUG:   "DEBUG",
	INFO:    "INFO",
	WARNING: "WARNING",
	ERROR:   "ERROR",
	PANIC:   "PANIC",
	FATAL:   "FATAL",
}

// String returns the name of the level.
func (l Level) String() string {
	name, ok := levelNames[l]
	if !ok {
		return fmt.Sprintf("Level(%d)", l)
	}

	return name
}

// ParseLevel returns the level for the given name. Names are case-insensitive.
func ParseLevel(name string) (Level, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG, nil
	case "INFO":
		return INFO, nil
	case "WARN", "WARNING":
		return WARNING, nil
	case "ERROR":
		return ERROR, nil
	case "PANIC":
		return PANIC, nil
	case "FATAL", "CRITICAL":
		return FATAL, nil
	default:
		return ERROR, fmt.Errorf("invalid log level: %s", name)
	}
}

type moduleLevels struct {
	mutex  sync.RWMutex
	levels map[string]Level
}

var levels = &moduleLevels{levels: map[string]Level{defaultModuleID: defaultLevel}}

func (l *moduleLevels) get(module string) Level {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	level, ok := l.levels[module]
	if !ok {
		return l.levels[defaultModuleID]
	}

	return level
}

func (l *moduleLevels) set(module string, level Level) {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	l.levels[module] = level
}

// moduleEnabler resolves the level of its module on every call so that level changes
// take effect on loggers that were created earlier.
type moduleEnabler string

func (m moduleEnabler) Enabled(level zapcore.Level) bool {
	return Level(level) >= levels.get(string(m))
}

// Log wraps a zap logger that is bound to a module.
type Log struct {
	*zap.Logger
	module string
}

// Encoding defines the log output format.
type Encoding string

// Log encodings.
const (
	Console Encoding = "console"
	JSON    Encoding = "json"
)

type options struct {
	out      io.Writer
	encoding Encoding
	fields   []zap.Field
}

// Option is a logger option.
type Option func(o *options)

// WithStdOut sets the writer for log output. Defaults to os.Stdout.
func WithStdOut(w io.Writer) Option {
	return func(o *options) {
		o.out = w
	}
}

// WithEncoding sets the output format. Defaults to Console.
func WithEncoding(encoding Encoding) Option {
	return func(o *options) {
		o.encoding = encoding
	}
}

// WithFields adds fields to every message produced by the logger.
func WithFields(fields ...zap.Field) Option {
	return func(o *options) {
		o.fields = append(o.fields, fields...)
	}
}

// New returns a logger for the given module.
func New(module string, opts ...Option) *Log {
	o := &options{out: os.Stdout, encoding: Console}

	for _, opt := range opts {
		opt(o)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder

	encoder := zapcore.NewConsoleEncoder(encoderCfg)
	if o.encoding == JSON {
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(o.out), moduleEnabler(module))

	logger := zap.New(core, zap.AddCaller(), zap.AddCallerSkip(1)).Named(module)
	if len(o.fields) > 0 {
		logger = logger.With(o.fields...)
	}

	return &Log{Logger: logger, module: module}
}

// IsEnabled returns true if the given level is enabled for the module of this logger.
func (l *Log) IsEnabled(level Level) bool {
	return moduleEnabler(l.module).Enabled(zapcore.Level(level))
}

// Debug logs a message at DEBUG level.
func (l *Log) Debug(msg string, fields ...zap.Field) {
	l.Logger.Debug(msg, fields...)
}

// Info logs a message at INFO level.
func (l *Log) Info(msg string, fields ...zap.Field) {
	l.Logger.Info(msg, fields...)
}

// Warn logs a message at WARNING level.
func (l *Log) Warn(msg string, fields ...zap.Field) {
	l.Logger.Warn(msg, fields...)
}

// Error logs a message at ERROR level.
func (l *Log) Error(msg string, fields ...zap.Field) {
	l.Logger.Error(msg, fields...)
}

// Panic logs a message at PANIC level and panics.
func (l *Log) Panic(msg string, fields ...zap.Field) {
	l.Logger.Panic(msg, fields...)
}

// Fatal logs a message at FATAL level and exits the process.
func (l *Log) Fatal(msg string, fields ...zap.Field) {
	l.Logger.Fatal(msg, fields...)
}

// SetLevel sets the log level for the given module.
func SetLevel(module string, level Level) {
	levels.set(module, level)
}

// SetDefaultLevel sets the level for modules that don't have an explicit level.
func SetDefaultLevel(level Level) {
	levels.set(defaultModuleID, level)
}

// GetLevel returns the level of the given module.
func GetLevel(module string) Level {
	return levels.get(module)
}

// SetSpec sets module levels and the default level from a spec of the form
// module1=level1:module2=level2:defaultLevel.
func SetSpec(spec string) error {
	parsed, err := ParseSpec(spec)
	if err != nil {
		return err
	}

	for module, level := range parsed {
		levels.set(module, level)
	}

	return nil
}

// ParseSpec parses a log spec without applying it. The default level is keyed by the empty module.
func ParseSpec(spec string) (map[string]Level, error) {
	parsed := make(map[string]Level)

	for _, part := range strings.Split(spec, specDelimiter) {
		if part == "" {
			continue
		}

		kv := strings.Split(part, moduleDelimiter)

		switch len(kv) {
		case 1:
			level, err := ParseLevel(kv[0])
			if err != nil {
				return nil, err
			}

			parsed[defaultModuleID] = level
		case 2: //nolint:gomnd
			level, err := ParseLevel(kv[1])
			if err != nil {
				return nil, err
			}

			parsed[kv[0]] = level
		default:
			return nil, fmt.Errorf("invalid log spec: %s", part)
		}
	}

	return parsed, nil
}

// GetSpec returns the current log spec.
func GetSpec() string {
	levels.mutex.RLock()
	defer levels.mutex.RUnlock()

	var modules []string

	for module, level := range levels.levels {
		if module == defaultModuleID {
			continue
		}

		modules = append(modules, module+moduleDelimiter+level.String())
	}

	sort.Strings(modules)

	return strings.Join(append(modules, levels.levels[defaultModuleID].String()), specDelimiter)
}
