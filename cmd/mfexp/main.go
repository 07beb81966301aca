package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/kubedos/mfexp/internal/app"
	"github.com/kubedos/mfexp/internal/config"
	"github.com/kubedos/mfexp/internal/topo"
)

func main() {
	var (
		configPath    = flag.String("config", "", "TOML config file. Flags override config values.")
		topologyPath  = flag.String("topology", "", "Topology file (.yaml/.yml or .json). Default: built-in parking lot.")
		outDir        = flag.String("out-dir", "", "Output directory.")
		multipath     = flag.Bool("multipath", false, "Multipath variant enabled.")
		xcp           = flag.Bool("xcp", false, "XCP variant enabled.")
		cong          = flag.String("cong", "", "TCP congestion control name (e.g. cubic, bbr, cdg).")
		traceSource   = flag.String("trace-source", "", "Kernel trace stream to capture.")
		backlog       = flag.String("backlog", "", "Backlog snapshot file to preserve (empty disables).")
		routerCmd     = flag.String("router", "", "Router simulation command line (whitespace-split).")
		maxBytes      = flag.Uint64("max-bytes", 0, "Hard cap on captured bytes (guardrail; 0 = config/default).")
		hostsCSV      = flag.String("hosts", "", "Comma-separated host labels to partition (default: all senders).")
		skipModules   = flag.Bool("skip-modules", false, "Skip module swap and probe arming (unprivileged collect).")
		skipRouter    = flag.Bool("skip-router", false, "Do not start the router simulation.")
		writeConfig   = flag.String("write-config", "", "Write the default config to this path and exit.")
		writeTopology = flag.String("write-topology", "", "Write the default topology to this path and exit.")
		quiet         = flag.Bool("quiet", false, "Reduce console output (recommended for automation).")
	)

	flag.Parse()

	if *writeConfig != "" {
		wrote, err := config.Save(*writeConfig, config.Default(), false)
		if err != nil {
			fatal(err)
		}
		if !wrote {
			fatal(fmt.Errorf("%s exists, not overwritten", *writeConfig))
		}
		fmt.Println("config:", *writeConfig)
		return
	}
	if *writeTopology != "" {
		if err := topo.Default().WriteToFile(*writeTopology); err != nil {
			fatal(err)
		}
		fmt.Println("topology:", *writeTopology)
		return
	}

	cfg := config.Default()
	if *configPath != "" {
		c, err := config.Load(*configPath)
		if err != nil {
			fatal(fmt.Errorf("load config: %w", err))
		}
		cfg = c
	}

	tpPath := cfg.Run.Topology
	if *topologyPath != "" {
		tpPath = *topologyPath
	}
	tp := topo.Default()
	if tpPath != "" {
		t, err := topo.ReadFromFile(tpPath)
		if err != nil {
			fatal(fmt.Errorf("load topology: %w", err))
		}
		tp = t
	}

	opts := app.FromConfig(cfg, tp)
	if *outDir != "" {
		opts.OutDir = *outDir
	}
	if *cong != "" {
		opts.Congestion = *cong
	}
	if *traceSource != "" {
		opts.TraceSource = *traceSource
	}
	if *backlog != "" {
		opts.BacklogSource = *backlog
	}
	if *routerCmd != "" {
		opts.RouterCmd = strings.Fields(*routerCmd)
	}
	if *maxBytes != 0 {
		opts.MaxBytes = *maxBytes
	}
	if *multipath {
		opts.Multipath = true
	}
	if *xcp {
		opts.XCP = true
	}
	opts.HostsCSV = *hostsCSV
	opts.SkipModules = *skipModules
	opts.SkipRouter = *skipRouter
	opts.Quiet = *quiet

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := app.Run(ctx, opts)
	if err != nil {
		fatal(err)
	}

	if !opts.Quiet {
		fmt.Println("[mfexp] done")
	}
	fmt.Println("mode:", res.Mode)
	fmt.Println("trace:", res.TraceData)
	for _, p := range res.HostData {
		fmt.Println("host:", p)
	}
	if res.BacklogData != "" {
		fmt.Println("backlog:", res.BacklogData)
	}
	fmt.Println("summary:", res.SummaryJSON)
	fmt.Println("run:", res.RunJSON)
	fmt.Println("bundle:", res.BundleTGZ)
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "mfexp error:", err)
	os.Exit(1)
}
