package app

import (
	"github.com/kubedos/mfexp/internal/config"
	"github.com/kubedos/mfexp/internal/topo"
)

type Options struct {
	// trace stream
	TraceSource   string
	BacklogSource string
	MaxBytes      uint64

	// kernel side
	RemoveModules []string
	InsertModules []string
	ProbeModule   string
	ProbeArgs     []string
	Congestion    string

	// external router simulation
	RouterCmd []string

	// mode inputs
	Multipath bool
	XCP       bool

	// outputs
	OutDir string

	// host selection
	Topology *topo.Topology
	HostsCSV string // restrict partitioning to these labels; empty = all senders

	// privileged steps can be skipped so the collect/partition path runs
	// without root (e.g. against a pre-recorded trace source)
	SkipModules bool
	SkipRouter  bool

	Quiet bool
}

// FromConfig maps a loaded config onto run options.
func FromConfig(cfg *config.Config, tp *topo.Topology) Options {
	return Options{
		TraceSource:   cfg.Trace.Source,
		BacklogSource: cfg.Trace.Backlog,
		MaxBytes:      cfg.Trace.MaxBytes,
		RemoveModules: cfg.Modules.Remove,
		InsertModules: cfg.Modules.Insert,
		ProbeModule:   cfg.Modules.Probe,
		ProbeArgs:     cfg.Modules.ProbeArgs,
		Congestion:    cfg.Run.Congestion,
		RouterCmd:     cfg.Router.Command,
		Multipath:     cfg.Run.Multipath,
		XCP:           cfg.Run.XCP,
		OutDir:        cfg.Run.OutDir,
		Topology:      tp,
	}
}

type Result struct {
	Mode        string
	TraceData   string
	HostData    []string
	BacklogData string // empty when the snapshot copy was skipped
	SummaryJSON string
	RunJSON     string
	BundleTGZ   string
}
