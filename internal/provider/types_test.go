package provider

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusKind(t *testing.T) {
	tests := []struct {
		in      string
		want    StatusKind
		wantErr bool
	}{
		{in: "PENDING", want: StatusPending},
		{in: "RUNNING", want: StatusRunning},
		{in: "DONE", want: StatusDone},
		{in: "done", want: StatusDone},
		{in: "ABORTED", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStatusKind(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, strings.ToUpper(tt.in), got.String())
		})
	}
}

func TestOperationStatus_Terminal(t *testing.T) {
	assert.False(t, Pending().IsTerminal())
	assert.False(t, Running().IsTerminal())
	assert.True(t, Done(nil).IsTerminal())
	assert.False(t, Done(nil).Failed())
	assert.True(t, Done(&ErrorDetail{Message: "boom"}).Failed())
}

func TestErrorDetail_String(t *testing.T) {
	d := ErrorDetail{
		Errors: []ErrorEntry{
			{Code: "QUOTA_EXCEEDED", Message: "Quota 'CPUS' exceeded", Location: "us-central1"},
			{Code: "RESOURCE_ALREADY_EXISTS", Message: "already exists"},
		},
	}
	assert.Equal(t, "QUOTA_EXCEEDED: Quota 'CPUS' exceeded (us-central1); RESOURCE_ALREADY_EXISTS: already exists", d.String())
	assert.Equal(t, "unknown error", ErrorDetail{}.String())
}

func TestFilter(t *testing.T) {
	var none *Filter
	assert.Equal(t, "", none.String())
	assert.True(t, none.Matches(InstanceRecord{Name: "anything"}))

	f := NameFilter("other")
	assert.Equal(t, "name = other", f.String())
	assert.True(t, f.Matches(InstanceRecord{Name: "other"}))
	assert.False(t, f.Matches(InstanceRecord{Name: "other-2"}))

	unknown := &Filter{Field: "zone", Value: "x"}
	assert.False(t, unknown.Matches(InstanceRecord{Name: "x", Zone: "x"}))
}

func TestOperationHandle_String(t *testing.T) {
	h := OperationHandle{Name: "op-1", Project: "p", Zone: "z"}
	assert.Equal(t, "projects/p/zones/z/operations/op-1", h.String())
}

func TestErrors_Matching(t *testing.T) {
	imgErr := fmt.Errorf("build: %w", &ImageNotFoundError{Project: "debian-cloud", Family: "nope"})
	assert.True(t, errors.Is(imgErr, ErrImageNotFound))

	cause := errors.New("connection reset")
	transient := fmt.Errorf("list: %w", &TransientNetworkError{Op: "instances.list", Err: cause})
	assert.True(t, IsTransient(transient))
	assert.True(t, errors.Is(transient, cause))

	rejected := &ProviderRejectedError{Op: "instances.delete", Code: 404, Message: "not found"}
	assert.False(t, IsTransient(rejected))
	assert.Contains(t, rejected.Error(), "HTTP 404")

	var failed *OperationFailedError
	opErr := fmt.Errorf("wait: %w", &OperationFailedError{
		Operation: OperationHandle{Name: "op-9"},
		Detail:    ErrorDetail{Message: "disk quota"},
	})
	require.True(t, errors.As(opErr, &failed))
	assert.Equal(t, "disk quota", failed.Detail.Message)
	assert.Contains(t, opErr.Error(), "op-9")
}
