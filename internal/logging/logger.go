package logging

import "fmt"

// Logger is the minimal logging surface used across the service. Adapters
// translate it to whatever backend the host process wires in.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// DefLogger writes to stdout. It is the fallback when no logger is configured.
type DefLogger struct{}

func (d DefLogger) Debug(msg string, args ...any) {
	fmt.Println(append([]any{"[DBG] MAGNIFIER " + msg}, args...)...)
}

func (d DefLogger) Info(msg string, args ...any) {
	fmt.Println(append([]any{"[INF] MAGNIFIER " + msg}, args...)...)
}

func (d DefLogger) Warn(msg string, args ...any) {
	fmt.Println(append([]any{"[WRN] MAGNIFIER " + msg}, args...)...)
}

func (d DefLogger) Error(msg string, args ...any) {
	fmt.Println(append([]any{"[ERR] MAGNIFIER " + msg}, args...)...)
}

var _ Logger = DefLogger{}
