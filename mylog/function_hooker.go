package mylog

import (
	"runtime"
	"strings"

	"github.com/sirupsen/logrus"
)

// functionHooker attaches the calling function and line to every entry.
type functionHooker struct {
	innerLogger *logrus.Logger
}

// skip frames inside logrus and this package when walking the stack
var skippedPackages = []string{
	"github.com/sirupsen/logrus",
	"corvus-sim-go/mylog",
}

func LoadFunctionHooker(logger *logrus.Logger) {
	hooker := &functionHooker{innerLogger: logger}
	logger.Hooks.Add(hooker)
}

func (h *functionHooker) Fire(entry *logrus.Entry) error {
	pcs := make([]uintptr, 16)
	n := runtime.Callers(4, pcs)
	frames := runtime.CallersFrames(pcs[:n])
	for {
		frame, more := frames.Next()
		if !isSkipped(frame.Function) {
			entry.Data["func"] = trimFuncName(frame.Function)
			entry.Data["line"] = frame.Line
			break
		}
		if !more {
			break
		}
	}
	return nil
}

func (h *functionHooker) Levels() []logrus.Level {
	return logrus.AllLevels
}

func isSkipped(funcName string) bool {
	for _, pkg := range skippedPackages {
		if strings.Contains(funcName, pkg) {
			return true
		}
	}
	return false
}

func trimFuncName(funcName string) string {
	if idx := strings.LastIndex(funcName, "/"); idx >= 0 {
		return funcName[idx+1:]
	}
	return funcName
}
