package core

// Logger is the application logger.
// args may hold errors, extra data (map[string]interface{}) and at most one Identity.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Identity is the authenticated caller attached to error reports.
type Identity struct {
	ID    string
	Email string
}
