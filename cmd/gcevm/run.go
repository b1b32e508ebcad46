package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jbweber/gcevm/internal/config"
	"github.com/jbweber/gcevm/internal/gce"
	"github.com/jbweber/gcevm/internal/instance"
	"github.com/jbweber/gcevm/internal/lifecycle"
	"github.com/jbweber/gcevm/internal/logging"
	"github.com/jbweber/gcevm/internal/operation"
	"github.com/jbweber/gcevm/internal/output"
)

// options holds the parsed command line.
type options struct {
	zone         string
	name         string
	machineType  string
	imageProject string
	imageFamily  string
	network      string
	subnetwork   string
	operation    string

	configPath    string
	startupScript string

	wait         bool
	dryRun       bool
	outputFormat string
	noHeaders    bool

	pollInterval time.Duration
	maxPolls     int

	credentials string
	endpoint    string
	logLevel    string
	logFormat   string
}

// validate checks flag values that cobra cannot.
func (o *options) validate() (lifecycle.Action, error) {
	action, err := lifecycle.ParseAction(o.operation)
	if err != nil {
		return "", err
	}
	if err := output.ValidateFormat(o.outputFormat); err != nil {
		return "", err
	}
	if o.pollInterval <= 0 {
		return "", fmt.Errorf("--poll-interval must be positive, got %s", o.pollInterval)
	}
	if o.maxPolls < 0 {
		return "", fmt.Errorf("--max-polls must not be negative, got %d", o.maxPolls)
	}
	if o.dryRun && action != lifecycle.ActionAdd {
		return "", errors.New("--dry-run only applies to --operation add")
	}
	return action, nil
}

func (o *options) params(project, bucket string) instance.Params {
	return instance.Params{
		Name:         o.name,
		Zone:         o.zone,
		Project:      project,
		Bucket:       bucket,
		MachineType:  o.machineType,
		ImageProject: o.imageProject,
		ImageFamily:  o.imageFamily,
		Network:      o.network,
		Subnetwork:   o.subnetwork,
	}
}

// loadTemplate loads --config (or the defaults) and applies --startup-script.
func (o *options) loadTemplate() (*config.Template, error) {
	var tmpl *config.Template
	if o.configPath != "" {
		var err error
		tmpl, err = config.LoadFromFile(o.configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load configuration: %w", err)
		}
	} else {
		tmpl = config.Default()
	}

	if o.startupScript != "" {
		tmpl.StartupScript = ""
		tmpl.StartupScriptFile = o.startupScript
	}

	if err := tmpl.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return tmpl, nil
}

// connect opens the Compute Engine client. Tests replace it to reach a fake API.
var connect = gce.Connect

func run(cmd *cobra.Command, o *options, project, bucket string) error {
	action, err := o.validate()
	if err != nil {
		return err
	}

	logger, err := logging.New(o.logLevel, o.logFormat)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	var tmpl *config.Template
	if action == lifecycle.ActionAdd {
		if tmpl, err = o.loadTemplate(); err != nil {
			return err
		}
	}

	formatter, err := output.NewFormatter(output.Options{
		Format:    output.Format(o.outputFormat),
		NoHeaders: o.noHeaders,
	})
	if err != nil {
		return err
	}

	ctx := context.Background()
	client, err := connect(ctx, gce.Options{
		CredentialsFile: o.credentials,
		Endpoint:        o.endpoint,
		UserAgent:       "gcevm/" + version,
		Logger:          logger.Named("gce"),
	})
	if err != nil {
		return err
	}

	poller := operation.New(client,
		operation.WithInterval(o.pollInterval),
		operation.WithMaxAttempts(o.maxPolls),
		operation.WithLogger(logger.Named("operation")))
	orch := lifecycle.New(client, poller, tmpl, logger)
	p := o.params(project, bucket)
	out := cmd.OutOrStdout()

	if o.dryRun {
		spec, err := orch.Plan(ctx, p)
		if err != nil {
			return err
		}
		text, err := formatter.FormatPlan(spec.View())
		return printResult(out, text, err)
	}

	outcome, err := orch.Run(ctx, action, p)
	if err != nil {
		return err
	}

	var text string
	switch action {
	case lifecycle.ActionAdd:
		text, err = formatter.FormatCreate(outcome.Created)
	case lifecycle.ActionList:
		if o.outputFormat == string(output.FormatTable) && !o.noHeaders {
			_, _ = fmt.Fprintf(out, "Instances in project %s and zone %s:\n\n", project, o.zone)
		}
		text, err = formatter.FormatInstances(outcome.Instances)
	case lifecycle.ActionDelete:
		text, err = formatter.FormatDelete(outcome.Deleted)
	}
	if err := printResult(out, text, err); err != nil {
		return err
	}

	if o.wait && action != lifecycle.ActionDelete {
		logger.Debug("waiting for confirmation", zap.String("operation", string(action)))
		return waitForEnter(cmd.InOrStdin(), cmd.ErrOrStderr())
	}
	return nil
}

func printResult(w io.Writer, s string, err error) error {
	if err != nil {
		return fmt.Errorf("failed to format output: %w", err)
	}
	_, err = io.WriteString(w, s)
	return err
}

// waitForEnter blocks until a line (or EOF) is read from in.
func waitForEnter(in io.Reader, prompt io.Writer) error {
	_, _ = fmt.Fprint(prompt, "Press Enter to continue...")
	_, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("failed to read confirmation: %w", err)
	}
	return nil
}
