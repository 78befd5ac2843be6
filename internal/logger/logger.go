// Package logger builds the process-wide zap logger: JSON to stdout and, when a
// file is configured, to a size-rotated log file as well.
package logger

import (
	"fmt"
	"os"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// New returns a logger at the given level ("debug", "info", "warn", "error").
func New(level, file string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	cores := []zapcore.Core{
		zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), lvl),
	}
	if file != "" {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(&lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}), lvl))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

// RedirectDiscordgo routes discordgo's internal log output into l.
func RedirectDiscordgo(l *zap.Logger) {
	discordgo.Logger = DiscordgoLogger(l)
}

// DiscordgoLogger adapts l to the discordgo.Logger signature.
func DiscordgoLogger(l *zap.Logger) func(msgL, caller int, format string, a ...interface{}) {
	dl := l.Named("discordgo")
	return func(msgL, _ int, format string, a ...interface{}) {
		msg := fmt.Sprintf(format, a...)
		switch msgL {
		case discordgo.LogError:
			dl.Error(msg)
		case discordgo.LogWarning:
			dl.Warn(msg)
		case discordgo.LogInformational:
			dl.Info(msg)
		default:
			dl.Debug(msg)
		}
	}
}
