package errreport

import (
	"github.com/rollbar/rollbar-go"
)

// Reporter forwards errors to an external tracker
type Reporter interface {
	Report(err error, userID *int64, extras map[string]interface{})
	Close()
}

// Config configures Rollbar
type Config struct {
	Token       string
	Environment string
	ServerHost  string
	CodeVersion string
}

// New returns a Rollbar reporter, or a no-op one when no token is set
func New(cfg Config) Reporter {
	if cfg.Token == "" {
		return Noop{}
	}
	rollbar.SetToken(cfg.Token)
	rollbar.SetEnvironment(cfg.Environment)
	rollbar.SetServerHost(cfg.ServerHost)
	if cfg.CodeVersion != "" {
		rollbar.SetCodeVersion(cfg.CodeVersion)
	}
	rollbar.SetEnabled(true)
	return &Rollbar{}
}

// Rollbar reports through the rollbar-go package client
type Rollbar struct{}

// Report sends err at error level
func (r *Rollbar) Report(err error, userID *int64, extras map[string]interface{}) {
	if err == nil {
		return
	}
	if userID != nil {
		if extras == nil {
			extras = map[string]interface{}{}
		}
		extras["userId"] = *userID
	}
	rollbar.Error(err, extras)
}

// Close flushes pending items
func (r *Rollbar) Close() {
	rollbar.Wait()
}

// Noop drops everything
type Noop struct{}

func (Noop) Report(error, *int64, map[string]interface{}) {}
func (Noop) Close()                                        {}
