package gce

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	compute "google.golang.org/api/compute/v1"
	"google.golang.org/api/option"

	"github.com/jbweber/gcevm/internal/instance"
	"github.com/jbweber/gcevm/internal/naming"
	"github.com/jbweber/gcevm/internal/provider"
)

// Options configure the connection to the Compute Engine API.
type Options struct {
	// CredentialsFile is a service account key file. Empty means
	// Application Default Credentials.
	CredentialsFile string

	// Endpoint overrides the API base URL (emulators, tests).
	Endpoint string

	// UserAgent is appended to the default user agent.
	UserAgent string

	// WithoutAuthentication disables credentials entirely (tests only).
	WithoutAuthentication bool

	// Logger receives debug logs for each remote call. Defaults to a no-op.
	Logger *zap.Logger
}

// Client is the Compute Engine gateway. Every method is a fresh remote
// round trip; nothing is cached.
type Client struct {
	svc    *compute.Service
	logger *zap.Logger

	// newRequestID generates insert request IDs; replaced in tests.
	newRequestID func() string
}

// Connect creates a Client for the Compute Engine v1 API.
func Connect(ctx context.Context, opts Options) (*Client, error) {
	var clientOpts []option.ClientOption
	if opts.CredentialsFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(opts.CredentialsFile))
	}
	if opts.Endpoint != "" {
		clientOpts = append(clientOpts, option.WithEndpoint(opts.Endpoint))
	}
	if opts.UserAgent != "" {
		clientOpts = append(clientOpts, option.WithUserAgent(opts.UserAgent))
	}
	if opts.WithoutAuthentication {
		clientOpts = append(clientOpts, option.WithoutAuthentication())
	}

	svc, err := compute.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create compute client: %w", err)
	}

	return NewFromService(svc, opts.Logger), nil
}

// NewFromService wraps an existing compute service.
func NewFromService(svc *compute.Service, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		svc:          svc,
		logger:       logger,
		newRequestID: func() string { return uuid.NewString() },
	}
}

// ImageFromFamily returns the self link of the current image in family.
func (c *Client) ImageFromFamily(ctx context.Context, project, family string) (string, error) {
	c.logger.Debug("resolving image family", zap.String("project", project), zap.String("family", family))

	img, err := c.svc.Images.GetFromFamily(project, family).Context(ctx).Do()
	if err != nil {
		translated := translateError("images.getFromFamily", err)
		var rejected *provider.ProviderRejectedError
		if errors.As(translated, &rejected) && rejected.Code == 404 {
			return "", &provider.ImageNotFoundError{Project: project, Family: family, Err: translated}
		}
		return "", translated
	}
	if img.SelfLink == "" {
		return "", &provider.ImageNotFoundError{Project: project, Family: family}
	}

	return img.SelfLink, nil
}

// SubmitCreate submits an instance insert and returns its operation.
//
// Each call carries a fresh request ID, so the provider treats a transport
// level resubmission of the same call as a duplicate.
func (c *Client) SubmitCreate(ctx context.Context, spec *instance.Spec) (provider.OperationHandle, error) {
	if spec == nil {
		return provider.OperationHandle{}, errors.New("instance spec is required")
	}

	body := toComputeInstance(spec)
	requestID := c.newRequestID()
	c.logger.Debug("inserting instance",
		zap.String("project", spec.Project()),
		zap.String("zone", spec.Zone()),
		zap.String("instance", spec.Name()),
		zap.String("requestId", requestID))

	op, err := c.svc.Instances.Insert(spec.Project(), spec.Zone(), body).RequestId(requestID).Context(ctx).Do()
	if err != nil {
		return provider.OperationHandle{}, translateError("instances.insert", err)
	}

	return handleFor(op, spec.Project(), spec.Zone()), nil
}

// SubmitDelete submits an instance delete and returns its operation.
func (c *Client) SubmitDelete(ctx context.Context, project, zone, name string) (provider.OperationHandle, error) {
	c.logger.Debug("deleting instance",
		zap.String("project", project),
		zap.String("zone", zone),
		zap.String("instance", name))

	op, err := c.svc.Instances.Delete(project, zone, name).Context(ctx).Do()
	if err != nil {
		return provider.OperationHandle{}, translateError("instances.delete", err)
	}

	return handleFor(op, project, zone), nil
}

// ListMatching lists the instances in a zone, optionally restricted by an
// equality filter. It follows pagination and returns an empty slice, not
// an error, when nothing matches.
func (c *Client) ListMatching(ctx context.Context, project, zone string, filter *provider.Filter) ([]provider.InstanceRecord, error) {
	call := c.svc.Instances.List(project, zone).Context(ctx)
	if filter != nil {
		call = call.Filter(filter.String())
	}
	c.logger.Debug("listing instances",
		zap.String("project", project),
		zap.String("zone", zone),
		zap.String("filter", filter.String()))

	records := []provider.InstanceRecord{}
	err := call.Pages(ctx, func(page *compute.InstanceList) error {
		for _, inst := range page.Items {
			records = append(records, toInstanceRecord(inst))
		}
		return nil
	})
	if err != nil {
		return nil, translateError("instances.list", err)
	}

	return records, nil
}

// GetOperationStatus fetches the current status of a zonal operation.
func (c *Client) GetOperationStatus(ctx context.Context, h provider.OperationHandle) (provider.OperationStatus, error) {
	op, err := c.svc.ZoneOperations.Get(h.Project, h.Zone, h.Name).Context(ctx).Do()
	if err != nil {
		return provider.OperationStatus{}, translateError("zoneOperations.get", err)
	}

	return toOperationStatus(op)
}

func handleFor(op *compute.Operation, project, zone string) provider.OperationHandle {
	h := provider.OperationHandle{Name: op.Name, Project: project, Zone: zone}
	// The operation's own zone wins if present (it is a full URL)
	if op.Zone != "" {
		h.Zone = naming.LastSegment(op.Zone)
	}
	return h
}
