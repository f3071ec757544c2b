// Package logger is the process-wide structured log. Records go to a
// rotating file under the config directory; --debug mirrors them to stderr.
// The helpers are no-ops until Init runs, so packages can log from tests.
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/julianstephens/nextup/internal/constants"
)

var Logger *log.Logger

// Config selects where and how much is logged. Zero values fall back to
// <ConfigDir>/logs/nextup.log at info level with the default rotation.
type Config struct {
	Debug     bool
	ConfigDir string
	// File is the log file name; relative names resolve inside
	// <ConfigDir>/logs.
	File       string
	Level      string
	MaxSizeMB  int
	MaxBackups int
}

// FilePath returns the log file Init writes to.
func (c Config) FilePath() string {
	name := c.File
	if name == "" {
		name = constants.AppName + ".log"
	}
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(c.ConfigDir, constants.LogDirName, name)
}

func (c Config) level() (log.Level, error) {
	if c.Debug {
		return log.DebugLevel, nil
	}
	if c.Level == "" {
		return log.InfoLevel, nil
	}
	lvl, err := log.ParseLevel(c.Level)
	if err != nil {
		return log.InfoLevel, fmt.Errorf("invalid log level %q: %w", c.Level, err)
	}
	return lvl, nil
}

func Init(cfg Config) error {
	lvl, err := cfg.level()
	if err != nil {
		return err
	}
	path := cfg.FilePath()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	rotating := &lumberjack.Logger{
		Filename:   path,
		MaxSize:    valueOr(cfg.MaxSizeMB, constants.DefaultLogMaxSizeMB),
		MaxBackups: valueOr(cfg.MaxBackups, constants.DefaultLogMaxBackups),
		MaxAge:     constants.DefaultLogMaxAgeDays,
		Compress:   true,
	}

	var out io.Writer = rotating
	if cfg.Debug {
		out = io.MultiWriter(os.Stderr, rotating)
	}

	Logger = log.NewWithOptions(out, log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           lvl,
		Prefix:          constants.AppName,
	})
	return nil
}

func valueOr(v, def int) int {
	if v > 0 {
		return v
	}
	return def
}

func Debug(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Debug(msg, keyvals...)
	}
}

func Info(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Info(msg, keyvals...)
	}
}

func Warn(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Warn(msg, keyvals...)
	}
}

func Error(msg string, keyvals ...any) {
	if Logger != nil {
		Logger.Error(msg, keyvals...)
	}
}
