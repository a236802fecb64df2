package core

// Logger is implemented by the logging services (std, rollbar).
// args may contain errors, maps and a user object for error reporting context.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
