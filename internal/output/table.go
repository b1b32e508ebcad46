package output

import (
	"bytes"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jbweber/gcevm/internal/instance"
	"github.com/jbweber/gcevm/internal/lifecycle"
	"github.com/jbweber/gcevm/internal/provider"
)

// TableFormatter formats results as human-readable text.
type TableFormatter struct {
	// NoHeaders omits the header row.
	NoHeaders bool

	// now returns the reference time for ages; time.Now when nil.
	now func() time.Time
}

// FormatInstances formats instance records as a table.
func (f *TableFormatter) FormatInstances(records []provider.InstanceRecord) (string, error) {
	if len(records) == 0 {
		return "No instances found\n", nil
	}

	now := time.Now
	if f.now != nil {
		now = f.now
	}

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "NAME\tZONE\tSTATUS\tINTERNAL_IP\tEXTERNAL_IP\tAGE")
	}

	for _, r := range records {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Name,
			orDash(r.Zone),
			orDash(r.Status),
			orDash(r.InternalAddress),
			orDash(r.ExternalAddress),
			ageOf(r.Created, now()))
	}

	_ = w.Flush()
	return buf.String(), nil
}

// FormatCreate reports a finished create and where its output will appear.
func (f *TableFormatter) FormatCreate(res *lifecycle.CreateResult) (string, error) {
	var b strings.Builder
	fmt.Fprintf(&b, "Instance %s created in %s.\n", res.Name, res.Zone)
	b.WriteString("It will take a minute or two for the instance to complete work.\n")
	fmt.Fprintf(&b, "Check this URL: %s\n", res.OutputURL)
	return b.String(), nil
}

// FormatDelete reports a finished delete.
func (f *TableFormatter) FormatDelete(res *lifecycle.DeleteResult) (string, error) {
	return fmt.Sprintf("Instance %s deleted from %s.\n", res.Name, res.Zone), nil
}

// FormatPlan formats the request as key/value rows followed by a disk table.
func (f *TableFormatter) FormatPlan(view instance.View) (string, error) {
	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintf(w, "Name:\t%s\n", view.Name)
	_, _ = fmt.Fprintf(w, "Project:\t%s\n", view.Project)
	_, _ = fmt.Fprintf(w, "Zone:\t%s\n", view.Zone)
	_, _ = fmt.Fprintf(w, "Machine type:\t%s\n", view.MachineType)
	_, _ = fmt.Fprintf(w, "Network:\t%s\n", view.Network.Network)
	_, _ = fmt.Fprintf(w, "Subnetwork:\t%s\n", view.Network.Subnetwork)
	_, _ = fmt.Fprintf(w, "External IP:\t%t\n", view.Network.PublicAccess)
	_, _ = fmt.Fprintf(w, "Tags:\t%s\n", orDash(strings.Join(view.Tags, ", ")))
	_, _ = fmt.Fprintf(w, "Service account:\t%s\n", orDash(view.ServiceAccount))
	_, _ = fmt.Fprintf(w, "Metadata:\t%s\n", orDash(strings.Join(view.MetadataKeys, ", ")))
	_, _ = fmt.Fprintln(w)

	if !f.NoHeaders {
		_, _ = fmt.Fprintln(w, "DISK\tROLE\tSIZE\tMODE\tAUTO_DELETE")
	}
	for _, d := range view.Disks {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d GB\t%s\t%t\n", d.Name, d.Role, d.SizeGB, d.Mode, d.AutoDelete)
	}

	_ = w.Flush()
	return buf.String(), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// ageOf returns the age of an RFC 3339 timestamp relative to now,
// or "-" if the timestamp is empty or unparseable.
func ageOf(created string, now time.Time) string {
	if created == "" {
		return "-"
	}
	t, err := time.Parse(time.RFC3339, created)
	if err != nil {
		return "-"
	}
	return formatAge(now.Sub(t))
}

// formatAge formats a duration as a human-readable age string.
// Examples: "5s", "2m", "3h", "4d", "2w", "1y"
func formatAge(d time.Duration) string {
	// Clock skew between us and the provider
	if d < 0 {
		return "0s"
	}

	seconds := int(d.Seconds())
	if seconds < 60 {
		return fmt.Sprintf("%ds", seconds)
	}

	minutes := seconds / 60
	if minutes < 60 {
		return fmt.Sprintf("%dm", minutes)
	}

	hours := minutes / 60
	if hours < 24 {
		return fmt.Sprintf("%dh", hours)
	}

	days := hours / 24
	if days < 7 {
		return fmt.Sprintf("%dd", days)
	}

	weeks := days / 7
	if weeks < 8 {
		return fmt.Sprintf("%dw", weeks)
	}

	if years := days / 365; years > 0 {
		return fmt.Sprintf("%dy", years)
	}
	return fmt.Sprintf("%dd", days)
}
