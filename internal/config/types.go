package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/crypto/ssh"
	"gopkg.in/yaml.v3"
)

// Default template values. These mirror the demo workload gcevm was built
// around: a Debian instance that downloads a photo, captions it and uploads
// the result to a bucket.
const (
	DefaultStartupScriptFile = "startup-script.sh"
	DefaultImageURL          = "http://storage.googleapis.com/gce-demo-input/photo.jpg"
	DefaultImageCaption      = "Ready for dessert?"
	DefaultSubnetworkRegion  = "us-east1"
	DefaultDiskType          = "pd-standard"
	DefaultBootDiskSizeGB    = 20
	DefaultDataDiskSizeGB    = 500
	DefaultServiceAccount    = "default"
	DiskModeReadWrite        = "READ_WRITE"
	DiskModeReadOnly         = "READ_ONLY"
)

// DefaultScopes are the service account scopes granted to new instances.
var DefaultScopes = []string{
	"https://www.googleapis.com/auth/devstorage.read_only",
	"https://www.googleapis.com/auth/logging.write",
	"https://www.googleapis.com/auth/monitoring.write",
	"https://www.googleapis.com/auth/servicecontrol",
	"https://www.googleapis.com/auth/service.management.readonly",
	"https://www.googleapis.com/auth/trace.append",
	"https://www.googleapis.com/auth/cloud-platform",
}

// DefaultTags are the network tags applied to new instances.
var DefaultTags = []string{"http-server", "https-server"}

// Template is the static part of every instance request: disk shapes,
// service account, tags, and the demo payload embedded as metadata.
// It is loaded once and injected into the request builder.
type Template struct {
	// StartupScript is the inline startup script. If empty, the script is
	// read from StartupScriptFile by LoadStartupScript.
	StartupScript     string `yaml:"startup_script,omitempty"`
	StartupScriptFile string `yaml:"startup_script_file,omitempty"`

	ImageURL     string `yaml:"image_url,omitempty"`
	ImageCaption string `yaml:"image_caption,omitempty"`

	// SubnetworkRegion is the region subnetworks are resolved in. It is not
	// derived from the instance zone.
	SubnetworkRegion string `yaml:"subnetwork_region,omitempty"`

	DiskType string         `yaml:"disk_type,omitempty"`
	BootDisk DiskConfig     `yaml:"boot_disk,omitempty"`
	DataDisk DiskConfig     `yaml:"data_disk,omitempty"`
	Tags     []string       `yaml:"tags,omitempty"`
	Service  ServiceAccount `yaml:"service_account,omitempty"`

	// SSHKeys are added as the ssh-keys metadata entry, each in
	// "user:ssh-ed25519 AAAA... comment" form.
	SSHKeys []string `yaml:"ssh_keys,omitempty"`

	// PublicAccess attaches a one-to-one NAT access config (external IP).
	PublicAccess *bool `yaml:"public_access,omitempty"`
}

// DiskConfig defines the shape of one disk.
type DiskConfig struct {
	SizeGB     int64  `yaml:"size_gb,omitempty"`
	AutoDelete *bool  `yaml:"auto_delete,omitempty"` // Pointer to distinguish unset vs false
	Mode       string `yaml:"mode,omitempty"`
}

// ServiceAccount defines the identity and scopes of new instances.
type ServiceAccount struct {
	Email  string   `yaml:"email,omitempty"`
	Scopes []string `yaml:"scopes,omitempty"`
}

// Default returns a template populated with all defaults.
func Default() *Template {
	t := &Template{}
	t.Normalize()
	return t
}

// Normalize fills in defaults for every unset field.
// This is called automatically by LoadFromFile before validation.
func (t *Template) Normalize() {
	if t.StartupScriptFile == "" && t.StartupScript == "" {
		t.StartupScriptFile = DefaultStartupScriptFile
	}
	if t.ImageURL == "" {
		t.ImageURL = DefaultImageURL
	}
	if t.ImageCaption == "" {
		t.ImageCaption = DefaultImageCaption
	}
	t.SubnetworkRegion = strings.ToLower(strings.TrimSpace(t.SubnetworkRegion))
	if t.SubnetworkRegion == "" {
		t.SubnetworkRegion = DefaultSubnetworkRegion
	}
	if t.DiskType == "" {
		t.DiskType = DefaultDiskType
	}

	if t.BootDisk.SizeGB == 0 {
		t.BootDisk.SizeGB = DefaultBootDiskSizeGB
	}
	if t.BootDisk.AutoDelete == nil {
		t.BootDisk.AutoDelete = boolPtr(false)
	}
	if t.BootDisk.Mode == "" {
		t.BootDisk.Mode = DiskModeReadWrite
	}

	if t.DataDisk.SizeGB == 0 {
		t.DataDisk.SizeGB = DefaultDataDiskSizeGB
	}
	if t.DataDisk.AutoDelete == nil {
		t.DataDisk.AutoDelete = boolPtr(true)
	}
	if t.DataDisk.Mode == "" {
		t.DataDisk.Mode = DiskModeReadWrite
	}

	if t.Tags == nil {
		t.Tags = append([]string(nil), DefaultTags...)
	}
	if t.Service.Email == "" {
		t.Service.Email = DefaultServiceAccount
	}
	if len(t.Service.Scopes) == 0 {
		t.Service.Scopes = append([]string(nil), DefaultScopes...)
	}
	if t.PublicAccess == nil {
		t.PublicAccess = boolPtr(true)
	}
}

// Validate checks the template for errors.
// It does not check provider resources (images, networks), only structure.
func (t *Template) Validate() error {
	if t.StartupScript == "" && t.StartupScriptFile == "" {
		return fmt.Errorf("one of startup_script or startup_script_file is required")
	}
	if t.StartupScript != "" && t.StartupScriptFile != "" {
		return fmt.Errorf("cannot specify both startup_script and startup_script_file")
	}

	regionPattern := regexp.MustCompile(`^[a-z]+-[a-z]+[0-9]+$`)
	if !regionPattern.MatchString(t.SubnetworkRegion) {
		return fmt.Errorf("subnetwork_region must look like a region (e.g. us-east1), got %q", t.SubnetworkRegion)
	}

	if err := t.BootDisk.Validate(); err != nil {
		return fmt.Errorf("boot_disk: %w", err)
	}
	if err := t.DataDisk.Validate(); err != nil {
		return fmt.Errorf("data_disk: %w", err)
	}

	for i, tag := range t.Tags {
		if strings.TrimSpace(tag) == "" {
			return fmt.Errorf("tags[%d] is empty", i)
		}
	}

	seen := make(map[string]bool)
	for i, scope := range t.Service.Scopes {
		if !strings.HasPrefix(scope, "https://") {
			return fmt.Errorf("service_account.scopes[%d] must be a scope URL, got %q", i, scope)
		}
		if seen[scope] {
			return fmt.Errorf("service_account.scopes[%d]: duplicate scope %q", i, scope)
		}
		seen[scope] = true
	}

	// Validate SSH keys using golang.org/x/crypto/ssh parser
	for i, entry := range t.SSHKeys {
		user, key, ok := strings.Cut(entry, ":")
		if !ok || user == "" {
			return fmt.Errorf("ssh_keys[%d] must be in user:key form", i)
		}
		if _, _, _, _, err := ssh.ParseAuthorizedKey([]byte(key)); err != nil {
			return fmt.Errorf("ssh_keys[%d] is not a valid SSH public key: %w", i, err)
		}
	}

	return nil
}

// Validate checks a disk configuration.
func (d *DiskConfig) Validate() error {
	if d.SizeGB <= 0 {
		return fmt.Errorf("size_gb must be > 0, got %d", d.SizeGB)
	}
	if d.Mode != DiskModeReadWrite && d.Mode != DiskModeReadOnly {
		return fmt.Errorf("mode must be %s or %s, got %q", DiskModeReadWrite, DiskModeReadOnly, d.Mode)
	}
	return nil
}

// LoadStartupScript returns the startup script content, reading
// StartupScriptFile when no inline script is set. The template is not
// modified, so the file is read again on every call.
func (t *Template) LoadStartupScript() (string, error) {
	if t.StartupScript != "" {
		return t.StartupScript, nil
	}
	data, err := os.ReadFile(t.StartupScriptFile)
	if err != nil {
		return "", fmt.Errorf("failed to read startup script: %w", err)
	}
	return string(data), nil
}

// LoadFromFile loads a template from a YAML file. A relative
// startup_script_file is resolved against the template's directory.
func LoadFromFile(path string) (*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	tmpl, err := LoadFromYAML(data)
	if err != nil {
		return nil, err
	}

	if tmpl.StartupScriptFile != "" && !filepath.IsAbs(tmpl.StartupScriptFile) {
		tmpl.StartupScriptFile = filepath.Join(filepath.Dir(path), tmpl.StartupScriptFile)
	}

	return tmpl, nil
}

// LoadFromYAML loads a template from YAML bytes.
func LoadFromYAML(data []byte) (*Template, error) {
	var tmpl Template
	if err := yaml.Unmarshal(data, &tmpl); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	// Normalize user input before validation
	tmpl.Normalize()

	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &tmpl, nil
}

func boolPtr(b bool) *bool {
	return &b
}
