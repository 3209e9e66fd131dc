// internal/domain/payment/signal.go
package payment

import (
	"net/url"
)

// Query parameters the external payment provider appends to the return URL
const (
	ParamPaid     = "paid"
	ParamCanceled = "canceled"
)

// Signal is the ephemeral outcome carried by a return navigation. It is
// consumed once and never persisted.
type Signal int

const (
	SignalNone Signal = iota
	SignalPaid
	SignalCanceled
)

// String returns the signal name for logging
func (s Signal) String() string {
	switch s {
	case SignalPaid:
		return "paid"
	case SignalCanceled:
		return "canceled"
	default:
		return "none"
	}
}

// ParseSignal reads the return signal from request query parameters.
// A paid signal takes precedence; the provider never sends both.
func ParseSignal(query url.Values) Signal {
	if query.Get(ParamPaid) == "true" {
		return SignalPaid
	}
	if query.Get(ParamCanceled) == "true" {
		return SignalCanceled
	}
	return SignalNone
}

// StripReturnParams returns the URL with the signal parameters removed.
// Redirecting to the stripped location replaces the signal-carrying one,
// so refresh or back-navigation cannot re-trigger consumption.
func StripReturnParams(u *url.URL) string {
	stripped := *u
	q := stripped.Query()
	q.Del(ParamPaid)
	q.Del(ParamCanceled)
	stripped.RawQuery = q.Encode()
	return stripped.RequestURI()
}
