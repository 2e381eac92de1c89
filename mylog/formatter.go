package mylog

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mgutz/ansi"
	"github.com/sirupsen/logrus"
)

const defaultTimestampFormat = time.RFC3339

// TextFormatter renders entries as "[time] LEVEL message key=value ...",
// coloring the level tag when attached to a terminal or when forced.
type TextFormatter struct {
	ForceColors     bool
	DisableColors   bool
	TimestampFormat string
	FullTimestamp   bool
}

func (f *TextFormatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := &bytes.Buffer{}

	timestampFormat := f.TimestampFormat
	if timestampFormat == "" {
		timestampFormat = defaultTimestampFormat
	}
	if !f.FullTimestamp {
		timestampFormat = "15:04:05"
	}

	levelText := strings.ToUpper(entry.Level.String())
	if len(levelText) > 5 {
		levelText = levelText[:5]
	}
	if f.ForceColors && !f.DisableColors {
		levelText = ansi.Color(levelText, levelColor(entry.Level))
	}

	fmt.Fprintf(b, "[%s] %s %s", entry.Time.Format(timestampFormat), levelText, entry.Message)

	keys := make([]string, 0, len(entry.Data))
	for k := range entry.Data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(b, " %s=%v", k, entry.Data[k])
	}

	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelColor(level logrus.Level) string {
	switch level {
	case logrus.DebugLevel:
		return "cyan"
	case logrus.WarnLevel:
		return "yellow"
	case logrus.ErrorLevel, logrus.FatalLevel, logrus.PanicLevel:
		return "red"
	default:
		return "green"
	}
}
