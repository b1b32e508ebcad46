// Package naming provides the deterministic naming conventions for Compute
// Engine resources created by gcevm. This includes disk names derived from
// the instance name and the partial resource paths the Compute API expects
// for zones, machine types, disk types, networks and subnetworks.
//
// The same inputs always produce the same names, so a failed create can be
// diagnosed (or re-run) against predictable disk names.
package naming

import (
	"fmt"
	"strings"
)

// DefaultNetwork is the network name that resolves to the provider's
// global default network instead of a project-scoped one.
const DefaultNetwork = "default"

// BootDiskName returns the name of an instance's boot disk.
// Format: {instanceName}-os-disk
func BootDiskName(instanceName string) string {
	return fmt.Sprintf("%s-os-disk", instanceName)
}

// DataDiskName returns the name of an instance's data disk.
// Format: {instanceName}-data-disk
func DataDiskName(instanceName string) string {
	return fmt.Sprintf("%s-data-disk", instanceName)
}

// ZonePath returns the fully-qualified zone path.
// Format: projects/{project}/zones/{zone}
func ZonePath(project, zone string) string {
	return fmt.Sprintf("projects/%s/zones/%s", project, zone)
}

// MachineTypePath returns the zone-relative machine type path.
// Format: zones/{zone}/machineTypes/{machineType}
func MachineTypePath(zone, machineType string) string {
	return fmt.Sprintf("zones/%s/machineTypes/%s", zone, machineType)
}

// DiskTypePath returns the disk type path for disks in the given zone.
// Format: projects/{project}/zones/{zone}/diskTypes/{diskType}
func DiskTypePath(project, zone, diskType string) string {
	return fmt.Sprintf("%s/diskTypes/%s", ZonePath(project, zone), diskType)
}

// NetworkPath resolves a network name to a resource path.
//
// The name "default" resolves to the global default network
// (global/networks/default); anything else is a custom network in the
// project (projects/{project}/global/networks/{network}).
func NetworkPath(project, network string) string {
	if network == DefaultNetwork {
		return "global/networks/default"
	}
	return fmt.Sprintf("projects/%s/global/networks/%s", project, network)
}

// SubnetworkPath returns the subnetwork path in the given region.
// Format: projects/{project}/regions/{region}/subnetworks/{subnetwork}
//
// The region is supplied by the caller and is not derived from the
// instance zone.
func SubnetworkPath(project, region, subnetwork string) string {
	return fmt.Sprintf("projects/%s/regions/%s/subnetworks/%s", project, region, subnetwork)
}

// RegionFromZone returns the region a zone belongs to by stripping the
// trailing zone suffix (us-central1-f → us-central1). It returns an error
// for strings that do not look like a zone.
func RegionFromZone(zone string) (string, error) {
	idx := strings.LastIndex(zone, "-")
	if idx <= 0 || idx == len(zone)-1 {
		return "", fmt.Errorf("invalid zone %q: expected <region>-<suffix>", zone)
	}
	return zone[:idx], nil
}

// OutputURL returns the public URL where the demo workload uploads its result.
// Format: http://storage.googleapis.com/{bucket}/output.png
func OutputURL(bucket string) string {
	return fmt.Sprintf("http://storage.googleapis.com/%s/output.png", bucket)
}

// LastSegment returns the final path component of a resource URL or path,
// e.g. "https://.../zones/us-central1-f" → "us-central1-f".
func LastSegment(resource string) string {
	if idx := strings.LastIndex(resource, "/"); idx >= 0 {
		return resource[idx+1:]
	}
	return resource
}
