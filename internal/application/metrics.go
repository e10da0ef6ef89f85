package application

import "expvar"

// Flow counters, exported on /debug/vars.
var (
	registrationsStarted  = expvar.NewInt("registrations_started")
	registrationsVerified = expvar.NewInt("registrations_verified")
	accountsActivated     = expvar.NewInt("accounts_activated")
	loginsSucceeded       = expvar.NewInt("logins_succeeded")
	loginsFailed          = expvar.NewInt("logins_failed")
)
