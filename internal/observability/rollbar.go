package observability

import (
	"github.com/rollbar/rollbar-go"
	"github.com/rs/zerolog"
)

// ErrorReporting configures forwarding of error logs to Rollbar.
type ErrorReporting struct {
	Token       string
	Environment string
	ServerHost  string
	Version     string
}

// Enabled reports whether a Rollbar token is configured.
func (r ErrorReporting) Enabled() bool {
	return r.Token != ""
}

// Setup initialises the global Rollbar client and returns a hook for the
// root logger plus a flush function to call on shutdown. When reporting is
// disabled the hook is nil and flush is a no-op.
func (r ErrorReporting) Setup() (zerolog.Hook, func()) {
	if !r.Enabled() {
		return nil, func() {}
	}

	rollbar.SetToken(r.Token)
	rollbar.SetEnvironment(r.Environment)
	if r.ServerHost != "" {
		rollbar.SetServerHost(r.ServerHost)
	}
	if r.Version != "" {
		rollbar.SetCodeVersion(r.Version)
	}

	return RollbarHook{}, rollbar.Wait
}

// RollbarHook forwards error and fatal log events to Rollbar.
type RollbarHook struct{}

// Run implements zerolog.Hook.
func (RollbarHook) Run(e *zerolog.Event, level zerolog.Level, msg string) {
	switch level {
	case zerolog.ErrorLevel:
		rollbar.Error(msg)
	case zerolog.FatalLevel, zerolog.PanicLevel:
		rollbar.Critical(msg)
	}
}
