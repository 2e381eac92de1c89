package mylog

import (
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat/go-file-rotatelogs"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"
)

// NewFileRotateHooker duplicates log entries into a daily-rotated file under
// dir, pruning rotations older than lifeSpanSecs (0 keeps a week).
func NewFileRotateHooker(dir string, lifeSpanSecs uint64) logrus.Hook {
	if len(dir) == 0 {
		panic("directory of logs is empty")
	}

	maxAge := time.Duration(lifeSpanSecs) * time.Second
	if maxAge == 0 {
		maxAge = 7 * 24 * time.Hour
	}

	path := filepath.Join(dir, "corvussim-%Y%m%d-%H.log")
	writer, err := rotatelogs.New(
		path,
		rotatelogs.WithLinkName(filepath.Join(dir, "corvussim.log")),
		rotatelogs.WithRotationTime(time.Duration(24)*time.Hour),
		rotatelogs.WithMaxAge(maxAge),
	)
	if err != nil {
		panic(err)
	}

	hook := lfshook.NewHook(lfshook.WriterMap{
		logrus.DebugLevel: writer,
		logrus.InfoLevel:  writer,
		logrus.WarnLevel:  writer,
		logrus.ErrorLevel: writer,
		logrus.FatalLevel: writer,
		logrus.PanicLevel: writer,
	}, &logrus.TextFormatter{DisableColors: true, TimestampFormat: "2006-01-02 15:04:05"})
	return hook
}
