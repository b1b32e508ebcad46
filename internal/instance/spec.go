// Package instance builds the immutable description of a Compute Engine
// instance that gcevm submits for creation.
package instance

import (
	"errors"
	"fmt"
	"regexp"
)

// DiskRole distinguishes the boot disk from data disks.
type DiskRole string

const (
	RoleBoot DiskRole = "boot"
	RoleData DiskRole = "data"
)

// Disk describes one persistent disk attached at creation time.
type Disk struct {
	Name       string   `json:"name" yaml:"name"`
	Role       DiskRole `json:"role" yaml:"role"`
	SizeGB     int64    `json:"sizeGB" yaml:"sizeGB"`
	AutoDelete bool     `json:"autoDelete" yaml:"autoDelete"`
	Mode       string   `json:"mode" yaml:"mode"`
	Type       string   `json:"type" yaml:"type"` // disk type path
	// SourceImage is set on the boot disk only.
	SourceImage string `json:"sourceImage,omitempty" yaml:"sourceImage,omitempty"`
}

// NetworkAttachment describes the instance's single network interface.
type NetworkAttachment struct {
	Network      string `json:"network" yaml:"network"`
	Subnetwork   string `json:"subnetwork" yaml:"subnetwork"`
	PublicAccess bool   `json:"publicAccess" yaml:"publicAccess"`
}

// MetadataEntry is one key/value metadata item.
type MetadataEntry struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Metadata is an ordered list of metadata entries. Order is preserved all
// the way to the provider.
type Metadata []MetadataEntry

// Get returns the value for key.
func (m Metadata) Get(key string) (string, bool) {
	for _, e := range m {
		if e.Key == key {
			return e.Value, true
		}
	}
	return "", false
}

// Keys returns the keys in order.
func (m Metadata) Keys() []string {
	keys := make([]string, 0, len(m))
	for _, e := range m {
		keys = append(keys, e.Key)
	}
	return keys
}

// Fields holds everything needed to construct a Spec.
type Fields struct {
	Name           string
	Zone           string
	Project        string
	MachineType    string
	Tags           []string
	BootDisk       Disk
	DataDisks      []Disk
	Network        NetworkAttachment
	ServiceAccount string
	Scopes         []string
	Metadata       Metadata
}

// Spec is a validated, immutable instance description. It is created by
// New (or Build) and never modified afterwards; accessors return copies.
//
// The boot disk is held apart from the data disks, so a Spec always has
// exactly one boot disk.
type Spec struct {
	name           string
	zone           string
	project        string
	machineType    string
	tags           []string
	bootDisk       Disk
	dataDisks      []Disk
	network        NetworkAttachment
	serviceAccount string
	scopes         []string
	metadata       Metadata
}

var namePattern = regexp.MustCompile(`^[a-z]([-a-z0-9]{0,61}[a-z0-9])?$`)

// New validates f and returns an immutable Spec.
func New(f Fields) (*Spec, error) {
	if f.Name == "" {
		return nil, errors.New("name is required")
	}
	if !namePattern.MatchString(f.Name) {
		return nil, fmt.Errorf("name must be 1-63 lowercase letters, digits or hyphens, start with a letter and not end with a hyphen, got %q", f.Name)
	}
	if f.Zone == "" {
		return nil, errors.New("zone is required")
	}
	if f.Project == "" {
		return nil, errors.New("project is required")
	}
	if f.MachineType == "" {
		return nil, errors.New("machine type is required")
	}

	if f.BootDisk.Role != RoleBoot {
		return nil, fmt.Errorf("boot disk must have role %q, got %q", RoleBoot, f.BootDisk.Role)
	}
	if f.BootDisk.SourceImage == "" {
		return nil, errors.New("boot disk requires a source image")
	}

	names := map[string]bool{}
	for i, d := range append([]Disk{f.BootDisk}, f.DataDisks...) {
		if i > 0 && d.Role != RoleData {
			return nil, fmt.Errorf("disks[%d]: only one disk may have role %q", i, RoleBoot)
		}
		if d.Name == "" {
			return nil, fmt.Errorf("disks[%d]: name is required", i)
		}
		if names[d.Name] {
			return nil, fmt.Errorf("disks[%d]: duplicate disk name %q", i, d.Name)
		}
		names[d.Name] = true
		if d.SizeGB <= 0 {
			return nil, fmt.Errorf("disks[%d]: size must be > 0, got %d", i, d.SizeGB)
		}
	}

	if f.Network.Network == "" {
		return nil, errors.New("network is required")
	}

	keys := map[string]bool{}
	for i, e := range f.Metadata {
		if e.Key == "" {
			return nil, fmt.Errorf("metadata[%d]: key is required", i)
		}
		if keys[e.Key] {
			return nil, fmt.Errorf("metadata[%d]: duplicate key %q", i, e.Key)
		}
		keys[e.Key] = true
	}

	return &Spec{
		name:           f.Name,
		zone:           f.Zone,
		project:        f.Project,
		machineType:    f.MachineType,
		tags:           append([]string(nil), f.Tags...),
		bootDisk:       f.BootDisk,
		dataDisks:      append([]Disk(nil), f.DataDisks...),
		network:        f.Network,
		serviceAccount: f.ServiceAccount,
		scopes:         append([]string(nil), f.Scopes...),
		metadata:       append(Metadata(nil), f.Metadata...),
	}, nil
}

// Name returns the instance name.
func (s *Spec) Name() string { return s.name }

// Zone returns the zone the instance is created in.
func (s *Spec) Zone() string { return s.zone }

// Project returns the project that owns the instance.
func (s *Spec) Project() string { return s.project }

// MachineType returns the zone-relative machine type path.
func (s *Spec) MachineType() string { return s.machineType }

// Tags returns a copy of the network tags.
func (s *Spec) Tags() []string { return append([]string(nil), s.tags...) }

// BootDisk returns the boot disk.
func (s *Spec) BootDisk() Disk { return s.bootDisk }

// DataDisks returns a copy of the non-boot disks in attachment order.
func (s *Spec) DataDisks() []Disk { return append([]Disk(nil), s.dataDisks...) }

// Network returns the single network attachment.
func (s *Spec) Network() NetworkAttachment { return s.network }

// ServiceAccount returns the service account email.
func (s *Spec) ServiceAccount() string { return s.serviceAccount }

// Scopes returns a copy of the service account scopes.
func (s *Spec) Scopes() []string { return append([]string(nil), s.scopes...) }

// Metadata returns a copy of the metadata entries in order.
func (s *Spec) Metadata() Metadata { return append(Metadata(nil), s.metadata...) }

// Disks returns all disks in attachment order, boot disk first.
func (s *Spec) Disks() []Disk {
	return append([]Disk{s.bootDisk}, s.dataDisks...)
}

// View is a serializable snapshot of a Spec, used for display.
type View struct {
	Name           string            `json:"name" yaml:"name"`
	Zone           string            `json:"zone" yaml:"zone"`
	Project        string            `json:"project" yaml:"project"`
	MachineType    string            `json:"machineType" yaml:"machineType"`
	Tags           []string          `json:"tags,omitempty" yaml:"tags,omitempty"`
	Disks          []Disk            `json:"disks" yaml:"disks"`
	Network        NetworkAttachment `json:"network" yaml:"network"`
	ServiceAccount string            `json:"serviceAccount" yaml:"serviceAccount"`
	Scopes         []string          `json:"scopes,omitempty" yaml:"scopes,omitempty"`
	MetadataKeys   []string          `json:"metadataKeys,omitempty" yaml:"metadataKeys,omitempty"`
}

// View returns a snapshot of the spec. Metadata values are omitted since
// they may carry large scripts.
func (s *Spec) View() View {
	return View{
		Name:           s.name,
		Zone:           s.zone,
		Project:        s.project,
		MachineType:    s.machineType,
		Tags:           s.Tags(),
		Disks:          s.Disks(),
		Network:        s.network,
		ServiceAccount: s.serviceAccount,
		Scopes:         s.Scopes(),
		MetadataKeys:   s.metadata.Keys(),
	}
}
