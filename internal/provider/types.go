// Package provider defines the provider-neutral values exchanged between the
// lifecycle orchestrator, the operation poller and the Compute Engine
// gateway: operation handles and statuses, instance records, list filters,
// and the error taxonomy every layer surfaces unmodified.
package provider

import (
	"fmt"
	"strings"
)

// OperationHandle identifies a provider-tracked asynchronous operation.
// It is scoped by project and zone, which are needed to poll it.
type OperationHandle struct {
	Name    string `json:"name" yaml:"name"`
	Project string `json:"project" yaml:"project"`
	Zone    string `json:"zone" yaml:"zone"`
}

// String returns the handle in projects/{p}/zones/{z}/operations/{name} form.
func (h OperationHandle) String() string {
	return fmt.Sprintf("projects/%s/zones/%s/operations/%s", h.Project, h.Zone, h.Name)
}

// StatusKind is the lifecycle state of an operation.
type StatusKind int

const (
	// StatusPending means the operation has been accepted but not started.
	StatusPending StatusKind = iota
	// StatusRunning means the operation is in progress.
	StatusRunning
	// StatusDone means the operation is terminal, successfully or not.
	StatusDone
)

// String returns the provider spelling of the status.
func (k StatusKind) String() string {
	switch k {
	case StatusPending:
		return "PENDING"
	case StatusRunning:
		return "RUNNING"
	case StatusDone:
		return "DONE"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", int(k))
	}
}

// ParseStatusKind converts the provider's status string.
func ParseStatusKind(s string) (StatusKind, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "PENDING":
		return StatusPending, nil
	case "RUNNING":
		return StatusRunning, nil
	case "DONE":
		return StatusDone, nil
	default:
		return 0, fmt.Errorf("unrecognized operation status %q", s)
	}
}

// ErrorEntry is a single error reported by a terminal operation.
type ErrorEntry struct {
	Code     string `json:"code" yaml:"code"`
	Location string `json:"location,omitempty" yaml:"location,omitempty"`
	Message  string `json:"message" yaml:"message"`
}

// ErrorDetail is the error embedded in a Done operation.
type ErrorDetail struct {
	// Code is the HTTP status code the operation would have returned, if known.
	Code    int          `json:"code,omitempty" yaml:"code,omitempty"`
	Message string       `json:"message,omitempty" yaml:"message,omitempty"`
	Errors  []ErrorEntry `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// String joins the detail into a single line.
func (d ErrorDetail) String() string {
	parts := make([]string, 0, len(d.Errors)+1)
	if d.Message != "" {
		parts = append(parts, d.Message)
	}
	for _, e := range d.Errors {
		if e.Location != "" {
			parts = append(parts, fmt.Sprintf("%s: %s (%s)", e.Code, e.Message, e.Location))
		} else {
			parts = append(parts, fmt.Sprintf("%s: %s", e.Code, e.Message))
		}
	}
	if len(parts) == 0 {
		return "unknown error"
	}
	return strings.Join(parts, "; ")
}

// OperationStatus is one observation of an operation.
//
// Pending and Running are non-terminal. Done is terminal and carries an
// error detail when the operation failed.
type OperationStatus struct {
	Kind  StatusKind   `json:"kind" yaml:"kind"`
	Error *ErrorDetail `json:"error,omitempty" yaml:"error,omitempty"`
}

// Pending returns a Pending status.
func Pending() OperationStatus { return OperationStatus{Kind: StatusPending} }

// Running returns a Running status.
func Running() OperationStatus { return OperationStatus{Kind: StatusRunning} }

// Done returns a Done status carrying the given error detail (nil on success).
func Done(detail *ErrorDetail) OperationStatus {
	return OperationStatus{Kind: StatusDone, Error: detail}
}

// IsTerminal reports whether the operation has finished.
func (s OperationStatus) IsTerminal() bool {
	return s.Kind == StatusDone
}

// Failed reports whether the operation finished with an error.
func (s OperationStatus) Failed() bool {
	return s.Kind == StatusDone && s.Error != nil
}

// InstanceRecord is a read-only projection of a provider instance.
type InstanceRecord struct {
	Name            string `json:"name" yaml:"name"`
	Zone            string `json:"zone,omitempty" yaml:"zone,omitempty"`
	Status          string `json:"status,omitempty" yaml:"status,omitempty"`
	InternalAddress string `json:"internalAddress,omitempty" yaml:"internalAddress,omitempty"`
	ExternalAddress string `json:"externalAddress,omitempty" yaml:"externalAddress,omitempty"`
	// Created is the provider's RFC 3339 creation timestamp.
	Created string `json:"created,omitempty" yaml:"created,omitempty"`
}

// Filter is an equality predicate on an instance field.
// A nil *Filter means "match everything".
type Filter struct {
	Field string
	Value string
}

// NameFilter returns a filter matching instances named name.
func NameFilter(name string) *Filter {
	return &Filter{Field: "name", Value: name}
}

// String renders the filter in the provider's list-filter syntax.
func (f *Filter) String() string {
	if f == nil {
		return ""
	}
	return fmt.Sprintf("%s = %s", f.Field, f.Value)
}

// Matches reports whether the record satisfies the filter. A nil filter
// matches every record. Only the name field is understood.
func (f *Filter) Matches(r InstanceRecord) bool {
	if f == nil {
		return true
	}
	switch f.Field {
	case "name":
		return r.Name == f.Value
	default:
		return false
	}
}
