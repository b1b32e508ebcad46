package instance

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jbweber/gcevm/internal/config"
	"github.com/jbweber/gcevm/internal/naming"
)

// Metadata keys read by the startup script on the instance.
const (
	MetadataStartupScript = "startup-script"
	MetadataURL           = "url"
	MetadataText          = "text"
	MetadataBucket        = "bucket"
	MetadataSSHKeys       = "ssh-keys"
)

// ImageResolver looks up the current image of an image family.
//
// In production, this is satisfied by *gce.Client.
// In tests, this is satisfied by mock implementations.
type ImageResolver interface {
	// ImageFromFamily returns the self link of the newest non-deprecated
	// image in family, or an error matching provider.ErrImageNotFound.
	ImageFromFamily(ctx context.Context, project, family string) (string, error)
}

// Params are the caller-supplied inputs of a create request.
type Params struct {
	Name         string
	Zone         string
	Project      string
	Bucket       string
	MachineType  string
	ImageProject string
	ImageFamily  string
	Network      string
	Subnetwork   string
}

// Validate checks that every parameter is present.
func (p Params) Validate() error {
	var missing []string
	for _, f := range []struct{ name, value string }{
		{"name", p.Name},
		{"zone", p.Zone},
		{"project", p.Project},
		{"bucket", p.Bucket},
		{"machine type", p.MachineType},
		{"image project", p.ImageProject},
		{"image family", p.ImageFamily},
		{"network", p.Network},
		{"subnetwork", p.Subnetwork},
	} {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required parameters: %s", strings.Join(missing, ", "))
	}
	return nil
}

// Build assembles the Spec for a create request.
//
// The boot image is resolved through images; everything else is derived
// deterministically from p and the template:
//   - boot disk {name}-os-disk, data disk {name}-data-disk
//   - disk type projects/{project}/zones/{zone}/diskTypes/{type}
//   - network "default" → global/networks/default, otherwise project-scoped
//   - subnetwork in the template's fixed region, regardless of zone
//   - metadata startup-script, url, text, bucket (and ssh-keys if configured)
func Build(ctx context.Context, images ImageResolver, tmpl *config.Template, p Params) (*Spec, error) {
	if tmpl == nil {
		return nil, errors.New("template is required")
	}
	if images == nil {
		return nil, errors.New("image resolver is required")
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	sourceImage, err := images.ImageFromFamily(ctx, p.ImageProject, p.ImageFamily)
	if err != nil {
		return nil, err
	}

	script, err := tmpl.LoadStartupScript()
	if err != nil {
		return nil, err
	}

	diskType := naming.DiskTypePath(p.Project, p.Zone, tmpl.DiskType)

	boot := Disk{
		Name:        naming.BootDiskName(p.Name),
		Role:        RoleBoot,
		SizeGB:      tmpl.BootDisk.SizeGB,
		AutoDelete:  derefBool(tmpl.BootDisk.AutoDelete),
		Mode:        tmpl.BootDisk.Mode,
		Type:        diskType,
		SourceImage: sourceImage,
	}
	data := Disk{
		Name:       naming.DataDiskName(p.Name),
		Role:       RoleData,
		SizeGB:     tmpl.DataDisk.SizeGB,
		AutoDelete: derefBool(tmpl.DataDisk.AutoDelete),
		Mode:       tmpl.DataDisk.Mode,
		Type:       diskType,
	}

	metadata := Metadata{
		{Key: MetadataStartupScript, Value: script},
		{Key: MetadataURL, Value: tmpl.ImageURL},
		{Key: MetadataText, Value: tmpl.ImageCaption},
		{Key: MetadataBucket, Value: p.Bucket},
	}
	if len(tmpl.SSHKeys) > 0 {
		metadata = append(metadata, MetadataEntry{Key: MetadataSSHKeys, Value: strings.Join(tmpl.SSHKeys, "\n")})
	}

	spec, err := New(Fields{
		Name:        p.Name,
		Zone:        p.Zone,
		Project:     p.Project,
		MachineType: naming.MachineTypePath(p.Zone, p.MachineType),
		Tags:        tmpl.Tags,
		BootDisk:    boot,
		DataDisks:   []Disk{data},
		Network: NetworkAttachment{
			Network:      naming.NetworkPath(p.Project, p.Network),
			Subnetwork:   naming.SubnetworkPath(p.Project, tmpl.SubnetworkRegion, p.Subnetwork),
			PublicAccess: derefBool(tmpl.PublicAccess),
		},
		ServiceAccount: tmpl.Service.Email,
		Scopes:         tmpl.Service.Scopes,
		Metadata:       metadata,
	})
	if err != nil {
		return nil, fmt.Errorf("invalid instance spec: %w", err)
	}

	return spec, nil
}

func derefBool(b *bool) bool {
	return b != nil && *b
}
