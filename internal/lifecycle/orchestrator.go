package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/jbweber/gcevm/internal/config"
	"github.com/jbweber/gcevm/internal/instance"
	"github.com/jbweber/gcevm/internal/naming"
	"github.com/jbweber/gcevm/internal/provider"
)

// DefaultInstanceName is the default --name. Listing with it returns every
// instance in the zone instead of filtering.
const DefaultInstanceName = "demo-instance"

// Action selects the flow Run performs.
type Action string

const (
	ActionAdd    Action = "add"
	ActionList   Action = "list"
	ActionDelete Action = "delete"
)

// Actions lists the valid actions in display order.
var Actions = []Action{ActionAdd, ActionList, ActionDelete}

// ParseAction converts an --operation value.
func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	for _, valid := range Actions {
		if a == valid {
			return a, nil
		}
	}
	return "", fmt.Errorf("invalid operation %q (must be add, list or delete)", s)
}

// CreateResult describes a finished create.
type CreateResult struct {
	Name      string `json:"name" yaml:"name"`
	Zone      string `json:"zone" yaml:"zone"`
	Operation string `json:"operation" yaml:"operation"`
	Polls     int    `json:"polls" yaml:"polls"`
	OutputURL string `json:"outputURL" yaml:"outputURL"`
}

// DeleteResult describes a finished delete.
type DeleteResult struct {
	Name      string `json:"name" yaml:"name"`
	Zone      string `json:"zone" yaml:"zone"`
	Operation string `json:"operation" yaml:"operation"`
	Polls     int    `json:"polls" yaml:"polls"`
}

// Outcome is the result of Run. Exactly one field matching Action is set.
type Outcome struct {
	Action    Action
	Created   *CreateResult
	Instances []provider.InstanceRecord
	Deleted   *DeleteResult
}

// Orchestrator runs lifecycle flows against a gateway.
type Orchestrator struct {
	gw     Gateway
	waiter Waiter
	tmpl   *config.Template
	logger *zap.Logger
}

// New creates an Orchestrator. tmpl supplies the static part of create
// requests; a nil logger disables logging.
func New(gw Gateway, waiter Waiter, tmpl *config.Template, logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{gw: gw, waiter: waiter, tmpl: tmpl, logger: logger}
}

// Plan builds the instance spec for p without submitting anything.
func (o *Orchestrator) Plan(ctx context.Context, p instance.Params) (*instance.Spec, error) {
	if o.tmpl == nil {
		return nil, errors.New("no instance template configured")
	}
	o.warnOnRegionMismatch(p.Zone)
	return instance.Build(ctx, o.gw, o.tmpl, p)
}

// Create builds, submits and waits for an instance insert.
//
// The sequence is:
//  1. Resolve the boot image and build the spec
//  2. Submit the insert
//  3. Wait for the operation to finish
//
// Nothing is cleaned up if a later step fails.
func (o *Orchestrator) Create(ctx context.Context, p instance.Params) (*CreateResult, error) {
	spec, err := o.Plan(ctx, p)
	if err != nil {
		return nil, err
	}

	log := o.logger.With(zap.String("instance", spec.Name()), zap.String("zone", spec.Zone()))
	log.Info("Creating instance.")
	h, err := o.gw.SubmitCreate(ctx, spec)
	if err != nil {
		return nil, err
	}

	res, err := o.waiter.Wait(ctx, h)
	if err != nil {
		return nil, err
	}

	result := &CreateResult{
		Name:      spec.Name(),
		Zone:      spec.Zone(),
		Operation: h.Name,
		Polls:     res.Attempts,
		OutputURL: naming.OutputURL(p.Bucket),
	}
	log.Info("Instance created.", zap.String("output", result.OutputURL))
	return result, nil
}

// List returns the instances in zone. The reserved DefaultInstanceName
// lists everything; any other name lists only instances with that name.
func (o *Orchestrator) List(ctx context.Context, project, zone, name string) ([]provider.InstanceRecord, error) {
	var filter *provider.Filter
	if name != DefaultInstanceName {
		filter = provider.NameFilter(name)
	}

	o.logger.Debug("Listing instances.",
		zap.String("project", project),
		zap.String("zone", zone),
		zap.String("filter", filter.String()))
	return o.gw.ListMatching(ctx, project, zone, filter)
}

// Delete submits and waits for an instance delete. A missing instance
// fails with the provider's rejection.
func (o *Orchestrator) Delete(ctx context.Context, project, zone, name string) (*DeleteResult, error) {
	log := o.logger.With(zap.String("instance", name), zap.String("zone", zone))
	log.Info("Deleting instance.")

	h, err := o.gw.SubmitDelete(ctx, project, zone, name)
	if err != nil {
		return nil, err
	}

	res, err := o.waiter.Wait(ctx, h)
	if err != nil {
		return nil, err
	}

	log.Info("Instance deleted.")
	return &DeleteResult{Name: name, Zone: zone, Operation: h.Name, Polls: res.Attempts}, nil
}

// Run dispatches action with p.
func (o *Orchestrator) Run(ctx context.Context, action Action, p instance.Params) (*Outcome, error) {
	out := &Outcome{Action: action}
	var err error

	switch action {
	case ActionAdd:
		out.Created, err = o.Create(ctx, p)
	case ActionList:
		out.Instances, err = o.List(ctx, p.Project, p.Zone, p.Name)
	case ActionDelete:
		out.Deleted, err = o.Delete(ctx, p.Project, p.Zone, p.Name)
	default:
		return nil, fmt.Errorf("invalid operation %q", action)
	}
	if err != nil {
		return nil, err
	}
	return out, nil
}

// warnOnRegionMismatch logs when the subnetwork region (fixed by the
// template) differs from the zone's region. The insert is still attempted.
func (o *Orchestrator) warnOnRegionMismatch(zone string) {
	region, err := naming.RegionFromZone(zone)
	if err != nil {
		return
	}
	if region != o.tmpl.SubnetworkRegion {
		o.logger.Warn("subnetwork region differs from zone region",
			zap.String("zone", zone),
			zap.String("zoneRegion", region),
			zap.String("subnetworkRegion", o.tmpl.SubnetworkRegion))
	}
}
