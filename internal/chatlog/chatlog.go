package chatlog

import (
	"fmt"
	"io"
	"sync"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

const timeLayout = "2006-01-02 15:04:05"

// Logger appends chat lines to a size-rotated file.
type Logger struct {
	mu  sync.Mutex
	w   io.WriteCloser
	now func() time.Time
}

func New(path string) *Logger {
	return NewWithWriter(&lumberjack.Logger{
		Filename:   path,
		MaxSize:    50, // megabytes
		MaxBackups: 5,
		Compress:   true,
	})
}

func NewWithWriter(w io.WriteCloser) *Logger {
	return &Logger{w: w, now: time.Now}
}

// Append writes one "[time] [author]: content" line.
func (l *Logger) Append(author, content string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, err := fmt.Fprintf(l.w, "[%s] [%s]: %s\n", l.now().Format(timeLayout), author, content)
	return err
}

func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Close()
}
