package client

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-secret-keeper/internal/adapter"
	"github.com/MKhiriev/go-secret-keeper/internal/service"
)

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "refused", err: errors.New(`Post "http://localhost:8080/api/auth/params": dial tcp 127.0.0.1:8080: connect: connection refused`), want: "server unavailable: check the network and ADAPTER_ADDRESS"},
		{name: "rate limited", err: fmt.Errorf("%w: slow down", adapter.ErrTooManyRequests), want: "too many requests, try again later"},
		{name: "conflict", err: adapter.ErrConflict, want: "conflict (someone else may have changed the vault, retry)"},
		{name: "client sentinel", err: service.ErrUnlockFailed, want: service.ErrUnlockFailed.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.err))
		})
	}
}

func TestPrintError_PlainWhenNotATerminal(t *testing.T) {
	var buf bytes.Buffer

	PrintError(&buf, service.ErrShareUnavailable)

	assert.Equal(t, "error: "+service.ErrShareUnavailable.Error()+"\n", buf.String())
}
