package serve

import "github.com/banshee-data/serve.report/internal/monitoring"

// LogWriters holds the io.Writers for each logging stream.
type LogWriters = monitoring.LogWriters

var logs = monitoring.NewStreams("[serve] ")

// SetLogWriters configures all three logging streams at once.
// Pass nil for any writer to disable that stream.
func SetLogWriters(w LogWriters) {
	logs.Set(w)
}

func opsf(format string, args ...interface{})   { logs.Opsf(format, args...) }
func diagf(format string, args ...interface{})  { logs.Diagf(format, args...) }
func tracef(format string, args ...interface{}) { logs.Tracef(format, args...) }
