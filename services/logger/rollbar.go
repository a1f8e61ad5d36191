// Package logsvc implements core.Logger on a std logger, reporting to rollbar when enabled.
package logsvc

import (
	"context"
	"fmt"
	"log"

	"github.com/rollbar/rollbar-go"
	"github.com/rollbar/rollbar-go/errors"

	"github.com/submitly/backend/core"
)

// RollbarLogger prints every entry and reports it to its own rollbar client.
// The API and DB loggers each get a client, so enabling one does not touch the other.
type RollbarLogger struct {
	client *rollbar.Client
	std    *log.Logger
}

var _ core.Logger = (*RollbarLogger)(nil)

func NewRollbarLogger(std *log.Logger, conf *core.Config) *RollbarLogger {
	client := rollbar.New(conf.RollbarToken, conf.Env, conf.Build, conf.Server.Host, conf.WorkDir)
	client.SetStackTracer(errors.StackTracer)
	client.SetCustom(map[string]interface{}{"app": conf.AppName})
	return &RollbarLogger{client: client, std: std}
}

func (l *RollbarLogger) Enable(enabled bool) {
	l.client.SetEnabled(enabled)
}

// Close flushes the pending reports.
func (l *RollbarLogger) Close() error {
	return l.client.Close()
}

// entry is a log call split by argument kind.
type entry struct {
	err    error
	extras map[string]interface{}
	person *rollbar.Person
}

// parseArgs reads args as: errors (the first is reported, the others kept as extras),
// map[string]interface{} extras, at most one core.Identity, and any other detail.
func parseArgs(args []interface{}) entry {
	e := entry{extras: make(map[string]interface{})}
	var details []string
	for _, arg := range args {
		switch v := arg.(type) {
		case nil:
		case error:
			if e.err == nil {
				e.err = v
			} else {
				details = append(details, v.Error())
			}
		case map[string]interface{}:
			for k, val := range v {
				e.extras[k] = val
			}
		case core.Identity:
			if e.person == nil { // first caller wins
				e.person = &rollbar.Person{Id: v.ID, Username: v.Email, Email: v.Email}
			}
		default:
			details = append(details, fmt.Sprintf("%+v", v))
		}
	}
	if len(details) > 0 {
		e.extras["details"] = details
	}
	return e
}

func (l *RollbarLogger) report(level, msg string, args []interface{}) {
	e := parseArgs(args)

	ctx := context.Background()
	if e.person != nil {
		ctx = rollbar.NewPersonContext(ctx, e.person)
	}
	if e.err != nil {
		e.extras["message"] = msg
		l.client.ErrorWithStackSkipWithExtrasAndContext(ctx, level, e.err, 3, e.extras)
	} else {
		l.client.MessageWithExtrasAndContext(ctx, level, msg, e.extras)
	}

	// the identity stays out of the std output
	l.std.Printf("%s: %s", prefixes[level], msg)
	if e.err != nil {
		l.std.Printf("%+v\n", e.err)
	}
	for k, v := range e.extras {
		if k != "message" {
			l.std.Printf("  %s=%v\n", k, v)
		}
	}
}

var prefixes = map[string]string{
	rollbar.DEBUG: "DEBUG",
	rollbar.INFO:  "INFO",
	rollbar.WARN:  "WARN",
	rollbar.ERR:   "ERROR",
	rollbar.CRIT:  "FATAL",
}

func (l *RollbarLogger) Debug(msg string, args ...interface{}) { l.report(rollbar.DEBUG, msg, args) }
func (l *RollbarLogger) Info(msg string, args ...interface{})  { l.report(rollbar.INFO, msg, args) }
func (l *RollbarLogger) Warn(msg string, args ...interface{})  { l.report(rollbar.WARN, msg, args) }
func (l *RollbarLogger) Error(msg string, args ...interface{}) { l.report(rollbar.ERR, msg, args) }

// Fatal reports msg, waits for the report to be sent, then exits.
func (l *RollbarLogger) Fatal(msg string, args ...interface{}) {
	l.report(rollbar.CRIT, msg, args)
	_ = l.client.Close()
	l.std.Fatal(msg)
}
