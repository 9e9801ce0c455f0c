package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type impl struct {
	*zap.SugaredLogger
	level zap.AtomicLevel
}

func (imp *impl) Sublogger(subname string) Logger {
	level := zap.NewAtomicLevelAt(imp.level.Level())
	return &impl{
		SugaredLogger: imp.SugaredLogger.Named(subname).WithOptions(zap.IncreaseLevel(level)),
		level:         level,
	}
}

func (imp *impl) SetLevel(level zapcore.Level) {
	imp.level.SetLevel(level)
}

func (imp *impl) Level() zapcore.Level {
	return imp.level.Level()
}
