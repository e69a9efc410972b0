package logger

import (
	"io"
	"os"

	"github.com/rs/zerolog"
)

type LogBuild struct {
	writer io.Writer
	level  zerolog.Level
}

func New() *LogBuild {
	return &LogBuild{writer: os.Stdout, level: zerolog.InfoLevel}
}

func (build *LogBuild) FromWriter(w io.Writer) *LogBuild {
	build.writer = w
	return build
}

// WithLevel accepts zerolog level names; unknown names keep the current level.
func (build *LogBuild) WithLevel(name string) *LogBuild {
	if lvl, err := zerolog.ParseLevel(name); err == nil && name != "" {
		build.level = lvl
	}
	return build
}

func (build *LogBuild) Make() zerolog.Logger {
	return zerolog.New(build.writer).Level(build.level).With().Timestamp().Logger()
}

// Nop is used by services constructed without a logger.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
