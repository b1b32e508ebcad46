package gce

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	compute "google.golang.org/api/compute/v1"
	"google.golang.org/api/googleapi"

	"github.com/jbweber/gcevm/internal/instance"
	"github.com/jbweber/gcevm/internal/naming"
	"github.com/jbweber/gcevm/internal/provider"
)

// toComputeInstance converts a Spec into the API request body.
func toComputeInstance(spec *instance.Spec) *compute.Instance {
	disks := make([]*compute.AttachedDisk, 0, len(spec.Disks()))
	for _, d := range spec.Disks() {
		disks = append(disks, &compute.AttachedDisk{
			Kind:       "compute#attachedDisk",
			Type:       "PERSISTENT",
			Boot:       d.Role == instance.RoleBoot,
			AutoDelete: d.AutoDelete,
			Mode:       d.Mode,
			DeviceName: d.Name,
			InitializeParams: &compute.AttachedDiskInitializeParams{
				SourceImage: d.SourceImage,
				DiskType:    d.Type,
				DiskName:    d.Name,
				DiskSizeGb:  d.SizeGB,
			},
		})
	}

	net := spec.Network()
	nic := &compute.NetworkInterface{
		Network:    net.Network,
		Subnetwork: net.Subnetwork,
	}
	if net.PublicAccess {
		nic.AccessConfigs = []*compute.AccessConfig{
			{Type: "ONE_TO_ONE_NAT", Name: "External NAT"},
		}
	}

	md := spec.Metadata()
	items := make([]*compute.MetadataItems, 0, len(md))
	for _, e := range md {
		value := e.Value
		items = append(items, &compute.MetadataItems{Key: e.Key, Value: &value})
	}

	inst := &compute.Instance{
		Kind:              "compute#instance",
		Name:              spec.Name(),
		Zone:              naming.ZonePath(spec.Project(), spec.Zone()),
		MachineType:       spec.MachineType(),
		Disks:             disks,
		NetworkInterfaces: []*compute.NetworkInterface{nic},
		Metadata:          &compute.Metadata{Items: items},
	}
	if tags := spec.Tags(); len(tags) > 0 {
		inst.Tags = &compute.Tags{Items: tags}
	}
	if spec.ServiceAccount() != "" {
		inst.ServiceAccounts = []*compute.ServiceAccount{
			{Email: spec.ServiceAccount(), Scopes: spec.Scopes()},
		}
	}

	return inst
}

// toInstanceRecord projects an API instance onto an InstanceRecord.
// Addresses come from the first interface and its first access config;
// either may be absent.
func toInstanceRecord(inst *compute.Instance) provider.InstanceRecord {
	rec := provider.InstanceRecord{
		Name:    inst.Name,
		Zone:    naming.LastSegment(inst.Zone),
		Status:  inst.Status,
		Created: inst.CreationTimestamp,
	}
	if len(inst.NetworkInterfaces) > 0 && inst.NetworkInterfaces[0] != nil {
		nic := inst.NetworkInterfaces[0]
		rec.InternalAddress = nic.NetworkIP
		if len(nic.AccessConfigs) > 0 && nic.AccessConfigs[0] != nil {
			rec.ExternalAddress = nic.AccessConfigs[0].NatIP
		}
	}
	return rec
}

// toOperationStatus decodes an API operation.
func toOperationStatus(op *compute.Operation) (provider.OperationStatus, error) {
	kind, err := provider.ParseStatusKind(op.Status)
	if err != nil {
		return provider.OperationStatus{}, fmt.Errorf("operation %s: %w", op.Name, err)
	}

	if kind != provider.StatusDone {
		return provider.OperationStatus{Kind: kind}, nil
	}

	// A DONE operation failed if it lists errors or reports an HTTP error
	// status, even when the error list is empty.
	var errs []*compute.OperationErrorErrors
	if op.Error != nil {
		errs = op.Error.Errors
	}
	if len(errs) == 0 && op.HttpErrorStatusCode < 400 {
		return provider.Done(nil), nil
	}

	detail := &provider.ErrorDetail{
		Code:    int(op.HttpErrorStatusCode),
		Message: op.HttpErrorMessage,
	}
	for _, e := range errs {
		if e == nil {
			continue
		}
		detail.Errors = append(detail.Errors, provider.ErrorEntry{
			Code:     e.Code,
			Location: e.Location,
			Message:  e.Message,
		})
	}
	return provider.Done(detail), nil
}

// translateError maps API and transport errors onto the provider taxonomy.
//
//   - context cancellation is returned unchanged
//   - *googleapi.Error 429 and 5xx → TransientNetworkError
//   - any other *googleapi.Error → ProviderRejectedError
//   - everything else (DNS, connection reset, TLS) → TransientNetworkError
func translateError(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusTooManyRequests || apiErr.Code >= http.StatusInternalServerError {
			return &provider.TransientNetworkError{Op: op, Code: apiErr.Code, Err: err}
		}
		msg := apiErr.Message
		if msg == "" {
			msg = apiErr.Body
		}
		return &provider.ProviderRejectedError{Op: op, Code: apiErr.Code, Message: msg}
	}

	return &provider.TransientNetworkError{Op: op, Err: err}
}
