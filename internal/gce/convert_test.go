package gce

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	compute "google.golang.org/api/compute/v1"
	"google.golang.org/api/googleapi"

	"github.com/jbweber/gcevm/internal/provider"
)

func TestTranslateError(t *testing.T) {
	tests := []struct {
		name          string
		err           error
		wantTransient bool
		wantRejected  bool
		wantCode      int
	}{
		{name: "nil", err: nil},
		{name: "bad request", err: &googleapi.Error{Code: http.StatusBadRequest, Message: "invalid"}, wantRejected: true, wantCode: 400},
		{name: "forbidden", err: &googleapi.Error{Code: http.StatusForbidden, Message: "denied"}, wantRejected: true, wantCode: 403},
		{name: "not found wrapped", err: fmt.Errorf("call: %w", &googleapi.Error{Code: http.StatusNotFound}), wantRejected: true, wantCode: 404},
		{name: "rate limited", err: &googleapi.Error{Code: http.StatusTooManyRequests}, wantTransient: true, wantCode: 429},
		{name: "internal error", err: &googleapi.Error{Code: http.StatusInternalServerError}, wantTransient: true, wantCode: 500},
		{name: "transport", err: errors.New("dial tcp: connection refused"), wantTransient: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := translateError("op", tt.err)
			if tt.err == nil {
				assert.NoError(t, got)
				return
			}

			var transient *provider.TransientNetworkError
			var rejected *provider.ProviderRejectedError
			assert.Equal(t, tt.wantTransient, errors.As(got, &transient))
			assert.Equal(t, tt.wantRejected, errors.As(got, &rejected))
			if rejected != nil {
				assert.Equal(t, tt.wantCode, rejected.Code)
			}
			if transient != nil {
				assert.Equal(t, tt.wantCode, transient.Code)
			}
		})
	}
}

func TestTranslateError_FallsBackToBody(t *testing.T) {
	got := translateError("op", &googleapi.Error{Code: 400, Body: "raw body"})
	var rejected *provider.ProviderRejectedError
	require.True(t, errors.As(got, &rejected))
	assert.Equal(t, "raw body", rejected.Message)
}

func TestToInstanceRecord_MissingInterfaces(t *testing.T) {
	rec := toInstanceRecord(&compute.Instance{Name: "bare", Zone: "zones/us-east1-b"})
	assert.Equal(t, provider.InstanceRecord{Name: "bare", Zone: "us-east1-b"}, rec)

	rec = toInstanceRecord(&compute.Instance{
		Name:              "internal-only",
		NetworkInterfaces: []*compute.NetworkInterface{{NetworkIP: "10.0.0.9"}},
	})
	assert.Equal(t, "10.0.0.9", rec.InternalAddress)
	assert.Empty(t, rec.ExternalAddress)
}

func TestToOperationStatus_DoneWithEmptyErrorIsSuccess(t *testing.T) {
	st, err := toOperationStatus(&compute.Operation{Name: "op", Status: "DONE", Error: &compute.OperationError{}})
	require.NoError(t, err)
	assert.True(t, st.IsTerminal())
	assert.False(t, st.Failed())
}

func TestToOperationStatus_DoneWithHTTPErrorIsFailure(t *testing.T) {
	tests := []struct {
		name string
		op   *compute.Operation
	}{
		{
			name: "empty error list",
			op: &compute.Operation{
				Name: "op", Status: "DONE",
				Error:               &compute.OperationError{},
				HttpErrorStatusCode: 403,
				HttpErrorMessage:    "FORBIDDEN",
			},
		},
		{
			name: "no error block",
			op: &compute.Operation{
				Name: "op", Status: "DONE",
				HttpErrorStatusCode: 403,
				HttpErrorMessage:    "FORBIDDEN",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			st, err := toOperationStatus(tt.op)
			require.NoError(t, err)
			require.True(t, st.Failed())
			assert.Equal(t, 403, st.Error.Code)
			assert.Equal(t, "FORBIDDEN", st.Error.Message)
			assert.Empty(t, st.Error.Errors)
		})
	}
}

func TestToOperationStatus_DoneWithRedirectCodeIsSuccess(t *testing.T) {
	st, err := toOperationStatus(&compute.Operation{Name: "op", Status: "DONE", HttpErrorStatusCode: 304})
	require.NoError(t, err)
	assert.False(t, st.Failed())
}
