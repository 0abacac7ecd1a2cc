package main

import (
	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/PaulSz7/crossword-generator/internal/clue"
	"github.com/PaulSz7/crossword-generator/internal/dict"
	"github.com/PaulSz7/crossword-generator/internal/gen"
	"github.com/PaulSz7/crossword-generator/internal/grid"
	"github.com/PaulSz7/crossword-generator/internal/layout"
	"github.com/PaulSz7/crossword-generator/internal/solver"
	"github.com/PaulSz7/crossword-generator/internal/store"
	"github.com/PaulSz7/crossword-generator/internal/theme"
)

func setupLogging(verbose bool, logFile string) {
	level := logrus.InfoLevel
	if verbose {
		level = logrus.DebugLevel
	}
	formatter := &logrus.TextFormatter{ForceColors: true}

	loggers := []*logrus.Logger{
		log, dict.Log, grid.Log, layout.Log, solver.Log,
		gen.Log, theme.Log, clue.Log, store.Log,
	}
	var hook logrus.Hook
	if logFile != "" {
		var err error
		hook, err = rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   logFile,
			MaxSize:    10, // MB
			MaxBackups: 3,
			MaxAge:     28, // days
			Level:      level,
			Formatter:  &logrus.JSONFormatter{},
		})
		if err != nil {
			log.Warn("unable to open log file: ", err)
			hook = nil
		}
	}
	for _, l := range loggers {
		l.SetLevel(level)
		l.SetFormatter(formatter)
		if hook != nil {
			l.AddHook(hook)
		}
	}
}
