package utils

import (
	"fmt"
	"io"
)

// Logger is a verbose trace sink. A nil *Logger discards everything.
type Logger struct {
	io.Writer
}

func NewLogger(w io.Writer) *Logger {
	if w == nil {
		return nil
	}
	return &Logger{w}
}

func (l *Logger) Println(a ...interface{}) {
	if l != nil {
		fmt.Fprintln(l, a...)
	}
}

func (l *Logger) Printf(format string, a ...interface{}) {
	if l != nil {
		fmt.Fprintf(l, format+"\n", a...)
	}
}
