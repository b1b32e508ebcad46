package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/jbweber/gcevm/internal/instance"
	"github.com/jbweber/gcevm/internal/operation"
	"github.com/jbweber/gcevm/internal/provider"
)

const testImage = "https://www.googleapis.com/compute/v1/projects/debian-cloud/global/images/debian-9-stretch-v20190326"

// listCall records one ListMatching invocation.
type listCall struct {
	project, zone string
	filter        *provider.Filter
}

// mockGateway is a mock implementation of the Gateway interface for testing.
type mockGateway struct {
	mu sync.Mutex

	// Configurable behavior
	imageFromFamilyFunc func(project, family string) (string, error)
	submitCreateFunc    func(spec *instance.Spec) (provider.OperationHandle, error)
	submitDeleteFunc    func(project, zone, name string) (provider.OperationHandle, error)
	listMatchingFunc    func(project, zone string, filter *provider.Filter) ([]provider.InstanceRecord, error)

	// Call tracking
	imageFromFamilyCalls []string
	submitCreateCalls    []*instance.Spec
	submitDeleteCalls    []string
	listMatchingCalls    []listCall
}

// newMockGateway creates a mock gateway where every call succeeds.
func newMockGateway() *mockGateway {
	m := &mockGateway{}

	m.imageFromFamilyFunc = func(project, family string) (string, error) {
		return testImage, nil
	}

	m.submitCreateFunc = func(spec *instance.Spec) (provider.OperationHandle, error) {
		return provider.OperationHandle{Name: "operation-create", Project: spec.Project(), Zone: spec.Zone()}, nil
	}

	m.submitDeleteFunc = func(project, zone, name string) (provider.OperationHandle, error) {
		return provider.OperationHandle{Name: "operation-delete", Project: project, Zone: zone}, nil
	}

	// Default: empty zone
	m.listMatchingFunc = func(project, zone string, filter *provider.Filter) ([]provider.InstanceRecord, error) {
		return []provider.InstanceRecord{}, nil
	}

	return m
}

func (m *mockGateway) ImageFromFamily(_ context.Context, project, family string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.imageFromFamilyCalls = append(m.imageFromFamilyCalls, project+"/"+family)
	return m.imageFromFamilyFunc(project, family)
}

func (m *mockGateway) SubmitCreate(_ context.Context, spec *instance.Spec) (provider.OperationHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitCreateCalls = append(m.submitCreateCalls, spec)
	return m.submitCreateFunc(spec)
}

func (m *mockGateway) SubmitDelete(_ context.Context, project, zone, name string) (provider.OperationHandle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitDeleteCalls = append(m.submitDeleteCalls, fmt.Sprintf("%s/%s/%s", project, zone, name))
	return m.submitDeleteFunc(project, zone, name)
}

func (m *mockGateway) ListMatching(_ context.Context, project, zone string, filter *provider.Filter) ([]provider.InstanceRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listMatchingCalls = append(m.listMatchingCalls, listCall{project: project, zone: zone, filter: filter})
	return m.listMatchingFunc(project, zone, filter)
}

// mockWaiter is a mock implementation of the Waiter interface for testing.
type mockWaiter struct {
	mu sync.Mutex

	// Configurable behavior
	waitFunc func(h provider.OperationHandle) (operation.Result, error)

	// Call tracking
	waitCalls []provider.OperationHandle
}

// newMockWaiter creates a mock waiter that reports Done after 3 polls.
func newMockWaiter() *mockWaiter {
	return &mockWaiter{
		waitFunc: func(h provider.OperationHandle) (operation.Result, error) {
			return operation.Result{Status: provider.Done(nil), Attempts: 3}, nil
		},
	}
}

func (m *mockWaiter) Wait(_ context.Context, h provider.OperationHandle) (operation.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.waitCalls = append(m.waitCalls, h)
	return m.waitFunc(h)
}
