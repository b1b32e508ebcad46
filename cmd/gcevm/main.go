package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jbweber/gcevm/internal/lifecycle"
	"github.com/jbweber/gcevm/internal/logging"
	"github.com/jbweber/gcevm/internal/operation"
	"github.com/jbweber/gcevm/internal/output"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := defaultOptions()

	cmd := &cobra.Command{
		Use:   "gcevm <project> <bucket>",
		Short: "gcevm - Compute Engine instance lifecycle tool",
		Long: `gcevm creates, lists and deletes Compute Engine instances, waiting for
each create or delete to finish before returning.

Created instances run a startup script that captions a photo and uploads
the result to <bucket>.

Operations:
  --operation add     Create --name and wait for it to come up
  --operation list    List instances in --zone (all of them when --name is
                      the default demo-instance, otherwise only --name)
  --operation delete  Delete --name and wait for it to be gone

Output formats:
  -o table  Human-readable output (default)
  -o yaml   YAML
  -o json   JSON`,
		Example: `  gcevm my-project my-bucket --operation add
  gcevm my-project my-bucket --operation list --zone us-east1-b
  gcevm my-project my-bucket --operation delete --name web-1`,
		Version:       fmt.Sprintf("%s (commit: %s)", version, commit),
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, opts, args[0], args[1])
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.zone, "zone", opts.zone, "Compute Engine zone")
	f.StringVar(&opts.name, "name", opts.name, "instance name")
	f.StringVar(&opts.machineType, "machine-type", opts.machineType, "machine type (see https://cloud.google.com/compute/docs/machine-types)")
	f.StringVar(&opts.imageProject, "image-project", opts.imageProject, "project owning the boot image family")
	f.StringVar(&opts.imageFamily, "image-family", opts.imageFamily, "boot image family")
	f.StringVar(&opts.network, "network", opts.network, "VPC network name")
	f.StringVar(&opts.subnetwork, "subnetwork", opts.subnetwork, "subnetwork name")
	f.StringVar(&opts.operation, "operation", "", "operation to perform: add, list or delete")
	f.StringVar(&opts.configPath, "config", "", "instance template YAML file (defaults are used when unset)")
	f.StringVar(&opts.startupScript, "startup-script", "", "startup script file, overriding the template")
	f.BoolVar(&opts.wait, "wait", true, "wait for Enter after add or list (--wait=false to skip)")
	f.BoolVar(&opts.dryRun, "dry-run", false, "with add, print the instance request without submitting it")
	f.StringVarP(&opts.outputFormat, "output", "o", string(output.FormatTable), "output format: table, yaml or json")
	f.BoolVar(&opts.noHeaders, "no-headers", false, "omit headers in table output")
	f.DurationVar(&opts.pollInterval, "poll-interval", operation.DefaultInterval, "delay between operation status polls")
	f.IntVar(&opts.maxPolls, "max-polls", 0, "give up waiting after this many polls (0 = never)")
	f.StringVar(&opts.credentials, "credentials", "", "service account key file (defaults to Application Default Credentials)")
	f.StringVar(&opts.endpoint, "endpoint", "", "Compute Engine API endpoint override")
	f.StringVar(&opts.logLevel, "log-level", "info", "log level: debug, info, warn or error")
	f.StringVar(&opts.logFormat, "log-format", logging.FormatConsole, "log format: console or json")
	_ = cmd.MarkFlagRequired("operation")

	return cmd
}

// defaultOptions returns the flag defaults.
func defaultOptions() *options {
	return &options{
		zone:         "us-central1-f",
		name:         lifecycle.DefaultInstanceName,
		machineType:  "n1-standard-1",
		imageProject: "debian-cloud",
		imageFamily:  "debian-9",
		network:      "default",
		subnetwork:   "default",
	}
}
