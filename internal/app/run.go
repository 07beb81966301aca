package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"runtime"
	"time"

	"golang.org/x/sys/unix"

	"github.com/kubedos/mfexp/internal/capture"
	"github.com/kubedos/mfexp/internal/kmod"
	"github.com/kubedos/mfexp/internal/mode"
	"github.com/kubedos/mfexp/internal/output"
	"github.com/kubedos/mfexp/internal/partition"
	"github.com/kubedos/mfexp/internal/router"
	"github.com/kubedos/mfexp/internal/summary"
	"github.com/kubedos/mfexp/internal/topo"
	"github.com/kubedos/mfexp/internal/util"
)

const version = "0.3.0"

// Run executes one experiment end to end: swap the qdisc module, arm the
// trace probe, capture the trace stream while the router simulation runs,
// then partition the capture per host and write summary + metadata + bundle.
//
// Partial outputs from a failed run are left in place for inspection.
func Run(ctx context.Context, opts Options) (Result, error) {
	if runtime.GOOS != "linux" {
		return Result{}, errors.New("mfexp requires Linux")
	}
	if opts.Topology == nil {
		opts.Topology = topo.Default()
	}

	filters, err := selectHosts(opts.Topology.Filters(), opts.HostsCSV)
	if err != nil {
		return Result{}, err
	}

	m := mode.Select(opts.Multipath, opts.XCP, opts.Congestion)
	phase := PhaseIdle

	fail := func(err error) (Result, error) {
		return Result{Mode: m.String()}, fmt.Errorf("phase %s: %w", phase, err)
	}

	files, err := output.Build(opts.OutDir, m)
	if err != nil {
		return fail(err)
	}

	if !opts.Quiet {
		fmt.Printf("[mfexp] mode=%s out=%s hosts=%d\n", m, opts.OutDir, len(filters))
	}

	tsStart := time.Now().UTC()

	if !opts.SkipModules {
		if err := kmod.Swap(ctx, opts.RemoveModules, opts.InsertModules); err != nil {
			return fail(err)
		}
		if err := kmod.SetCongestionControl(opts.Congestion); err != nil {
			return fail(err)
		}
		if err := kmod.ArmProbe(ctx, opts.ProbeModule, opts.ProbeArgs, opts.TraceSource); err != nil {
			return fail(err)
		}
		if opts.BacklogSource != "" && !kmod.DebugFSMounted() && !opts.Quiet {
			fmt.Println("[mfexp] warning: debugfs not mounted, backlog snapshot will be skipped")
		}
	}
	phase = PhaseModuleSwapped

	clock, err := util.NewTraceClock()
	if err != nil {
		return fail(err)
	}

	cp, err := capture.Start(opts.TraceSource, files.TraceData, opts.MaxBytes)
	if err != nil {
		return fail(err)
	}
	// release the capture on every exit path
	defer cp.Stop()
	phase = PhaseCapturing

	if !opts.Quiet {
		fmt.Printf("[mfexp] capturing %s -> %s\n", opts.TraceSource, files.TraceData)
	}

	if !opts.SkipRouter {
		phase = PhaseRouterRunning
		if err := router.Run(ctx, opts.RouterCmd, opts.Quiet); err != nil {
			return fail(err)
		}
	}

	if err := cp.Stop(); err != nil {
		return fail(err)
	}
	phase = PhaseStopped
	capBytes, capLimitHit := cp.Stats()

	hostData, err := partition.Partition(files.TraceData, m, filters, opts.OutDir)
	if err != nil {
		return fail(err)
	}
	phase = PhasePartitioned

	// the backlog snapshot is independent of the per-host outputs; a
	// failure here is reported and skipped
	backlogData := ""
	if opts.BacklogSource != "" {
		p, err := partition.CopySnapshot(opts.BacklogSource, m, opts.OutDir)
		if err != nil {
			if !opts.Quiet {
				fmt.Printf("[mfexp] backlog snapshot skipped: %v\n", err)
			}
		} else {
			backlogData = p
		}
	}

	stats, err := summary.Scan(files.TraceData, filters)
	if err != nil {
		return fail(err)
	}

	tsEnd := time.Now().UTC()

	summaryObj := map[string]any{
		"tool":     "mfexp",
		"version":  version,
		"mode":     m.String(),
		"ts_start": tsStart.Format(time.RFC3339Nano),
		"ts_end":   tsEnd.Format(time.RFC3339Nano),

		"capture": map[string]any{
			"bytes":     capBytes,
			"limit_hit": capLimitHit,
		},

		"trace": map[string]any{
			"lines_total":     stats.Total,
			"lines_unmatched": stats.Unmatched,
			"per_host_lines":  summary.TopN(stats.Lines, len(filters)),
			"per_host_bytes":  summary.TopN(stats.Bytes, len(filters)),
		},
	}
	if stats.Stamped {
		summaryObj["trace"].(map[string]any)["first_line"] = clock.At(stats.First).Format(time.RFC3339Nano)
		summaryObj["trace"].(map[string]any)["last_line"] = clock.At(stats.Last).Format(time.RFC3339Nano)
	}
	if err := writeJSON(files.SummaryJSON, summaryObj); err != nil {
		return fail(err)
	}

	runMeta := buildRunMeta(opts, m)
	runMeta["ts_start"] = tsStart.Format(time.RFC3339Nano)
	runMeta["ts_end"] = tsEnd.Format(time.RFC3339Nano)
	runMeta["capture_bytes"] = capBytes
	runMeta["capture_limit_hit"] = capLimitHit
	if err := writeJSON(files.RunJSON, runMeta); err != nil {
		return fail(err)
	}

	items := append([]string{}, hostData...)
	items = append(items, backlogData, files.SummaryJSON, files.RunJSON)
	if err := output.WriteBundleTGZ(files.BundleTGZ, items); err != nil {
		return fail(err)
	}
	phase = PhaseDone

	if !opts.Quiet {
		fmt.Printf("[mfexp] %s\n", phase)
	}

	return Result{
		Mode:        m.String(),
		TraceData:   files.TraceData,
		HostData:    hostData,
		BacklogData: backlogData,
		SummaryJSON: files.SummaryJSON,
		RunJSON:     files.RunJSON,
		BundleTGZ:   files.BundleTGZ,
	}, nil
}

func buildRunMeta(opts Options, m mode.RunMode) map[string]any {
	var uts unix.Utsname
	_ = unix.Uname(&uts)

	uname := map[string]any{
		"sysname":  charsToString(uts.Sysname[:]),
		"release":  charsToString(uts.Release[:]),
		"version":  charsToString(uts.Version[:]),
		"machine":  charsToString(uts.Machine[:]),
		"nodename": charsToString(uts.Nodename[:]),
	}

	return map[string]any{
		"tool":    "mfexp",
		"version": version,
		"mode":    m.String(),
		"args": map[string]any{
			"trace_source":   opts.TraceSource,
			"backlog_source": opts.BacklogSource,
			"max_bytes":      opts.MaxBytes,
			"remove_modules": opts.RemoveModules,
			"insert_modules": opts.InsertModules,
			"probe":          opts.ProbeModule,
			"probe_args":     opts.ProbeArgs,
			"congestion":     opts.Congestion,
			"router":         opts.RouterCmd,
			"multipath":      opts.Multipath,
			"xcp":            opts.XCP,
			"out_dir":        opts.OutDir,
			"hosts":          opts.HostsCSV,
			"skip_modules":   opts.SkipModules,
			"skip_router":    opts.SkipRouter,
		},
		"topology": opts.Topology.Name,
		"uname":    uname,
	}
}

func charsToString(ca []byte) string {
	out := make([]byte, 0, len(ca))
	for _, c := range ca {
		if c == 0 {
			break
		}
		out = append(out, c)
	}
	return string(out)
}

func writeJSON(path string, obj any) error {
	tmp := path + ".tmp"
	b, err := json.MarshalIndent(obj, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
