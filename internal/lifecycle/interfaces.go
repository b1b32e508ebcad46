package lifecycle

import (
	"context"

	"github.com/jbweber/gcevm/internal/instance"
	"github.com/jbweber/gcevm/internal/operation"
	"github.com/jbweber/gcevm/internal/provider"
)

// Gateway defines the provider calls needed for instance lifecycle management.
//
// In production, this is satisfied by *gce.Client.
// In tests, this is satisfied by mock implementations.
type Gateway interface {
	instance.ImageResolver

	// SubmitCreate submits an instance insert
	SubmitCreate(ctx context.Context, spec *instance.Spec) (provider.OperationHandle, error)

	// SubmitDelete submits an instance delete
	SubmitDelete(ctx context.Context, project, zone, name string) (provider.OperationHandle, error)

	// ListMatching lists instances in a zone, optionally filtered
	ListMatching(ctx context.Context, project, zone string, filter *provider.Filter) ([]provider.InstanceRecord, error)
}

// Waiter blocks until an operation is Done.
//
// In production, this is satisfied by *operation.Poller.
type Waiter interface {
	Wait(ctx context.Context, h provider.OperationHandle) (operation.Result, error)
}
