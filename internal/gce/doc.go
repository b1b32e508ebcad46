// Package gce is the Compute Engine gateway used by gcevm.
//
// This package wraps google.golang.org/api/compute/v1 to provide the four
// calls the lifecycle needs, plus image family resolution:
//   - SubmitCreate: insert an instance, returning its operation handle
//   - SubmitDelete: delete an instance, returning its operation handle
//   - ListMatching: list instances in a zone, optionally filtered by name
//   - GetOperationStatus: observe a zonal operation
//   - ImageFromFamily: resolve the current image of an image family
//
// Connection Management:
//
//	client, err := gce.Connect(ctx, gce.Options{})
//	if err != nil {
//	    return err
//	}
//
// Credentials default to Application Default Credentials. Obtaining them is
// outside the scope of this package.
//
// Error Translation:
//
// All methods return errors from internal/provider: API rejections become
// *provider.ProviderRejectedError, transport failures and retryable statuses
// (429, 5xx) become *provider.TransientNetworkError. A 404 while resolving an
// image family becomes *provider.ImageNotFoundError.
//
// Consumer-Side Interfaces:
//
// This package does not define interfaces. Consumers (internal/instance,
// internal/operation, internal/lifecycle) declare the subset of methods
// they need and *Client satisfies them implicitly.
package gce
