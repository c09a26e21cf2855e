package i

// Logger is the logging surface every component receives.
type Logger interface {
	Info(string)
	Warning(string)
	Error(string)
}
