// Package log provides structured leveled logging on top of logrus,
// with optional rotating file output.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/sirupsen/logrus"
)

var logger = logrus.New()

// JSONFormat print log in json format
var JSONFormat bool

func init() {
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05.000",
	})
	logger.SetOutput(os.Stdout)
	logger.SetLevel(logrus.InfoLevel)
}

// SetLogger set log level, json format and color format
func SetLogger(verbosity uint32, jsonFormat, colorFormat bool) {
	logger.SetLevel(logrus.Level(verbosity))
	JSONFormat = jsonFormat
	if jsonFormat {
		logger.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02T15:04:05.000",
		})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02T15:04:05.000",
			ForceColors:     colorFormat,
			DisableColors:   !colorFormat,
		})
	}
}

// SetLogFile set log file path and rotation
func SetLogFile(logFile string, logRotation, logMaxAge uint64) {
	if logFile == "" {
		return
	}
	logDir := filepath.Dir(logFile)
	if logDir != "" {
		err := os.MkdirAll(logDir, os.ModePerm)
		if err != nil {
			logger.Fatalf("create log dir '%v' failed. %v", logDir, err)
		}
	}
	writer, err := rotatelogs.New(
		logFile+".%Y%m%d%H",
		rotatelogs.WithLinkName(logFile),
		rotatelogs.WithRotationTime(time.Duration(logRotation)*time.Hour),
		rotatelogs.WithMaxAge(time.Duration(logMaxAge)*time.Hour),
	)
	if err != nil {
		logger.Fatalf("set log file '%v' failed. %v", logFile, err)
	}
	logger.SetOutput(writer)
}

// GetLogLevel returns the current log level
func GetLogLevel() uint32 {
	return uint32(logger.GetLevel())
}

func toFields(ctx ...interface{}) logrus.Fields {
	fields := make(logrus.Fields)
	for k := 0; k+1 < len(ctx); k += 2 {
		key, ok := ctx[k].(string)
		if !ok {
			key = fmt.Sprintf("%v", ctx[k])
		}
		fields[key] = ctx[k+1]
	}
	if len(ctx)%2 != 0 {
		fields["dangling"] = ctx[len(ctx)-1]
	}
	return fields
}

// WithFields encapsulate logrus.WithFields
func WithFields(ctx ...interface{}) *logrus.Entry {
	return logger.WithFields(toFields(ctx...))
}

// Trace trace
func Trace(msg string, ctx ...interface{}) {
	logger.WithFields(toFields(ctx...)).Trace(msg)
}

// Tracef tracef
func Tracef(format string, args ...interface{}) {
	logger.Tracef(format, args...)
}

// Debug debug
func Debug(msg string, ctx ...interface{}) {
	logger.WithFields(toFields(ctx...)).Debug(msg)
}

// Debugf debugf
func Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

// Info info
func Info(msg string, ctx ...interface{}) {
	logger.WithFields(toFields(ctx...)).Info(msg)
}

// Infof infof
func Infof(format string, args ...interface{}) {
	logger.Infof(format, args...)
}

// Warn warn
func Warn(msg string, ctx ...interface{}) {
	logger.WithFields(toFields(ctx...)).Warn(msg)
}

// Warnf warnf
func Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

// Error error
func Error(msg string, ctx ...interface{}) {
	logger.WithFields(toFields(ctx...)).Error(msg)
}

// Errorf errorf
func Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// Fatal fatal
func Fatal(msg string, ctx ...interface{}) {
	logger.WithFields(toFields(ctx...)).Fatal(msg)
}

// Fatalf fatalf
func Fatalf(format string, args ...interface{}) {
	logger.Fatalf(format, args...)
}

// Println println
func Println(msg ...interface{}) {
	logger.Println(msg...)
}
