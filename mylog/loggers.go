package mylog

import (
	"os"

	"github.com/sirupsen/logrus"
)

// const
const (
	PanicLevel = "panic"
	FatalLevel = "fatal"
	ErrorLevel = "error"
	WarnLevel  = "warn"
	InfoLevel  = "info"
	DebugLevel = "debug"
)

type MyLog struct {
	Logger *logrus.Logger
}

func convertLevel(level string) logrus.Level {
	switch level {
	case PanicLevel:
		return logrus.PanicLevel
	case FatalLevel:
		return logrus.FatalLevel
	case ErrorLevel:
		return logrus.ErrorLevel
	case WarnLevel:
		return logrus.WarnLevel
	case InfoLevel:
		return logrus.InfoLevel
	case DebugLevel:
		return logrus.DebugLevel
	default:
		return logrus.InfoLevel
	}
}

func NewMyLog(dir string, level string, lifeSpanSecs uint64) (*MyLog, error) {
	mylog := &MyLog{}
	mylog.Logger = Init(dir, level, lifeSpanSecs)
	return mylog, nil
}

// Init loggers
func Init(dir string, level string, lifeSpanSecs uint64) *logrus.Logger {
	var clog *logrus.Logger

	clog = logrus.New()
	LoadFunctionHooker(clog)
	if dir != "" {
		clog.Hooks.Add(NewFileRotateHooker(dir, lifeSpanSecs))
	}
	clog.Out = os.Stdout
	clog.Formatter = &TextFormatter{
		ForceColors:     true,
		TimestampFormat: "2006-01-02 15:04:05",
		FullTimestamp:   true,
	}
	clog.Level = convertLevel(level)

	return clog
}
