package logging

// Logger is the minimal logging surface used by components that absorb
// failures instead of surfacing them (stats refresh, abandoned polls).
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	With(args ...any) Logger
}

type nopLogger struct{}

func (nopLogger) Debug(string, ...any) {}
func (nopLogger) Warn(string, ...any)  {}
func (nopLogger) Error(string, ...any) {}
func (n nopLogger) With(...any) Logger { return n }

// Nop returns a Logger that discards everything.
func Nop() Logger { return nopLogger{} }
