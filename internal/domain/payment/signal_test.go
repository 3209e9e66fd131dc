// internal/domain/payment/signal_test.go
package payment

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignal(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Signal
	}{
		{"no params", "", SignalNone},
		{"paid true", "paid=true", SignalPaid},
		{"canceled true", "canceled=true", SignalCanceled},
		{"paid false", "paid=false", SignalNone},
		{"canceled false", "canceled=false", SignalNone},
		{"paid wins over canceled", "paid=true&canceled=true", SignalPaid},
		{"unrelated params", "ref=campaign&utm_source=mail", SignalNone},
		{"paid wrong value", "paid=1", SignalNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ParseSignal(q))
		})
	}
}

func TestStripReturnParams(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"paid only", "/api/v1/orders/5?paid=true", "/api/v1/orders/5"},
		{"canceled only", "/api/v1/orders/5?canceled=true", "/api/v1/orders/5"},
		{"keeps other params", "/api/v1/orders/5?paid=true&ref=abc", "/api/v1/orders/5?ref=abc"},
		{"both removed", "/api/v1/orders/5?paid=true&canceled=true", "/api/v1/orders/5"},
		{"no signal params", "/api/v1/orders/5?ref=abc", "/api/v1/orders/5?ref=abc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, StripReturnParams(u))
		})
	}
}

func TestSignalString(t *testing.T) {
	assert.Equal(t, "paid", SignalPaid.String())
	assert.Equal(t, "canceled", SignalCanceled.String())
	assert.Equal(t, "none", SignalNone.String())
}
