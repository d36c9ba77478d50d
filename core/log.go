package core

// Logger is any leveled logger that can also report to an external service.
// Extra args may carry an error, a map of metadata or the acting auth identity.
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
