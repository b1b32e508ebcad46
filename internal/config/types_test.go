package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSSHKey = "ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIIbJKZscbOLzBsgY5y2QupKW4A2kSDjMBQGPb1dChr+S test@example.com"

func TestDefault(t *testing.T) {
	tmpl := Default()

	assert.Equal(t, DefaultStartupScriptFile, tmpl.StartupScriptFile)
	assert.Equal(t, DefaultImageURL, tmpl.ImageURL)
	assert.Equal(t, DefaultImageCaption, tmpl.ImageCaption)
	assert.Equal(t, "us-east1", tmpl.SubnetworkRegion)
	assert.Equal(t, "pd-standard", tmpl.DiskType)
	assert.Equal(t, int64(20), tmpl.BootDisk.SizeGB)
	assert.False(t, *tmpl.BootDisk.AutoDelete)
	assert.Equal(t, int64(500), tmpl.DataDisk.SizeGB)
	assert.True(t, *tmpl.DataDisk.AutoDelete)
	assert.Equal(t, []string{"http-server", "https-server"}, tmpl.Tags)
	assert.Equal(t, "default", tmpl.Service.Email)
	assert.Len(t, tmpl.Service.Scopes, 7)
	assert.True(t, *tmpl.PublicAccess)
	require.NoError(t, tmpl.Validate())
}

func TestDefault_DoesNotAliasPackageSlices(t *testing.T) {
	tmpl := Default()
	tmpl.Tags[0] = "changed"
	tmpl.Service.Scopes[0] = "changed"

	assert.Equal(t, "http-server", DefaultTags[0])
	assert.Equal(t, "https://www.googleapis.com/auth/devstorage.read_only", DefaultScopes[0])
}

func TestLoadFromYAML(t *testing.T) {
	data := []byte(`
startup_script: |
  #!/bin/bash
  echo hello
image_caption: Custom caption
subnetwork_region: " EUROPE-WEST4 "
boot_disk:
  size_gb: 50
  auto_delete: true
data_disk:
  size_gb: 100
tags: []
ssh_keys:
  - "admin:` + testSSHKey + `"
`)

	tmpl, err := LoadFromYAML(data)
	require.NoError(t, err)

	assert.Contains(t, tmpl.StartupScript, "echo hello")
	assert.Empty(t, tmpl.StartupScriptFile)
	assert.Equal(t, "Custom caption", tmpl.ImageCaption)
	assert.Equal(t, DefaultImageURL, tmpl.ImageURL)
	assert.Equal(t, "europe-west4", tmpl.SubnetworkRegion)
	assert.Equal(t, int64(50), tmpl.BootDisk.SizeGB)
	assert.True(t, *tmpl.BootDisk.AutoDelete)
	assert.Equal(t, int64(100), tmpl.DataDisk.SizeGB)
	assert.True(t, *tmpl.DataDisk.AutoDelete)
	assert.Empty(t, tmpl.Tags)
	assert.Len(t, tmpl.SSHKeys, 1)
}

func TestLoadFromYAML_Invalid(t *testing.T) {
	tests := []struct {
		name        string
		yaml        string
		expectError string
	}{
		{
			name:        "malformed yaml",
			yaml:        "boot_disk: [",
			expectError: "failed to parse YAML",
		},
		{
			name:        "both script sources",
			yaml:        "startup_script: echo\nstartup_script_file: a.sh\n",
			expectError: "cannot specify both",
		},
		{
			name:        "negative boot disk",
			yaml:        "boot_disk:\n  size_gb: -1\n",
			expectError: "boot_disk: size_gb must be > 0",
		},
		{
			name:        "bad disk mode",
			yaml:        "data_disk:\n  mode: WRITE_ONLY\n",
			expectError: "data_disk: mode must be",
		},
		{
			name:        "bad region",
			yaml:        "subnetwork_region: us-east1-b\n",
			expectError: "subnetwork_region must look like a region",
		},
		{
			name:        "empty tag",
			yaml:        "tags: [\"web\", \" \"]\n",
			expectError: "tags[1] is empty",
		},
		{
			name:        "scope not a URL",
			yaml:        "service_account:\n  scopes: [cloud-platform]\n",
			expectError: "scopes[0] must be a scope URL",
		},
		{
			name:        "duplicate scope",
			yaml:        "service_account:\n  scopes: [\"https://a\", \"https://a\"]\n",
			expectError: "duplicate scope",
		},
		{
			name:        "ssh key without user",
			yaml:        "ssh_keys: [\"" + testSSHKey + "\"]\n",
			expectError: "ssh_keys[0]",
		},
		{
			name:        "ssh key garbage",
			yaml:        "ssh_keys: [\"admin:not-a-key\"]\n",
			expectError: "ssh_keys[0] is not a valid SSH public key",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromYAML([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestLoadFromFile_ResolvesRelativeScript(t *testing.T) {
	dir := t.TempDir()
	scriptPath := filepath.Join(dir, "boot.sh")
	require.NoError(t, os.WriteFile(scriptPath, []byte("#!/bin/sh\necho boot\n"), 0o644))

	cfgPath := filepath.Join(dir, "template.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("startup_script_file: boot.sh\n"), 0o644))

	tmpl, err := LoadFromFile(cfgPath)
	require.NoError(t, err)
	assert.Equal(t, scriptPath, tmpl.StartupScriptFile)

	script, err := tmpl.LoadStartupScript()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(script, "#!/bin/sh"))

	// The template keeps pointing at the file
	assert.Empty(t, tmpl.StartupScript)
	assert.Equal(t, scriptPath, tmpl.StartupScriptFile)
}

func TestLoadStartupScript_EmptyFileIsRepeatable(t *testing.T) {
	scriptPath := filepath.Join(t.TempDir(), "empty.sh")
	require.NoError(t, os.WriteFile(scriptPath, nil, 0o644))

	tmpl := Default()
	tmpl.StartupScriptFile = scriptPath

	for i := 0; i < 2; i++ {
		script, err := tmpl.LoadStartupScript()
		require.NoError(t, err, "read %d", i+1)
		assert.Empty(t, script)
	}
	assert.Equal(t, scriptPath, tmpl.StartupScriptFile)
	assert.NoError(t, tmpl.Validate())
}

func TestLoadFromFile_Missing(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestLoadStartupScript_MissingFile(t *testing.T) {
	tmpl := Default()
	tmpl.StartupScriptFile = filepath.Join(t.TempDir(), "missing.sh")

	_, err := tmpl.LoadStartupScript()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read startup script")
}
