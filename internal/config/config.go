package config

import (
	"errors"
	"os"

	"github.com/BurntSushi/toml"
)

// Trace names the kernel trace stream the collector copies and the
// auxiliary backlog snapshot the partitioner preserves.
type Trace struct {
	Source   string `toml:"source"`
	Backlog  string `toml:"backlog"`
	MaxBytes uint64 `toml:"max_bytes"`
}

// Modules describes the qdisc module swap and the trace probe arming.
type Modules struct {
	Remove    []string `toml:"remove"`
	Insert    []string `toml:"insert"`
	Probe     string   `toml:"probe"`
	ProbeArgs []string `toml:"probe_args"`
}

// Router is the external simulation command line.
type Router struct {
	Command []string `toml:"command"`
}

// Run holds the mode inputs and output placement.
type Run struct {
	OutDir     string `toml:"out_dir"`
	Multipath  bool   `toml:"multipath"`
	XCP        bool   `toml:"xcp"`
	Congestion string `toml:"congestion"`
	Topology   string `toml:"topology"` // path to a topology file; empty selects the built-in parking lot
}

type Config struct {
	Trace   Trace   `toml:"trace"`
	Modules Modules `toml:"modules"`
	Router  Router  `toml:"router"`
	Run     Run     `toml:"run"`
}

func Default() *Config {
	return &Config{
		Trace: Trace{
			Source:   "/proc/net/tcpprobe",
			Backlog:  "/sys/kernel/debug/mf/backlog0",
			MaxBytes: 250 * 1024 * 1024,
		},
		Modules: Modules{
			Remove:    []string{"sch_fq"},
			Insert:    []string{"sch_mf"},
			Probe:     "tcp_probe",
			ProbeArgs: []string{"port=8554", "full=1"},
		},
		Router: Router{
			Command: []string{"python2", "parkinglot.py"},
		},
		Run: Run{
			OutDir:     "./out",
			Congestion: "cubic",
		},
	}
}

// Load reads a TOML config. A missing file surfaces as os.ErrNotExist so
// callers can fall back to Default.
func Load(path string) (*Config, error) {
	st, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if st.IsDir() {
		return nil, errors.New("config path is a directory")
	}
	var cfg Config
	if _, err := toml.DecodeFile(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes cfg atomically. An existing file is only replaced when force
// is set; it reports whether the file was written.
func Save(path string, cfg *Config, force bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	}

	tmp := path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return false, err
	}
	enc := toml.NewEncoder(f)
	if err := enc.Encode(cfg); err != nil {
		f.Close()
		_ = os.Remove(tmp)
		return false, err
	}
	if err := f.Close(); err != nil {
		return false, err
	}
	if err := os.Rename(tmp, path); err != nil {
		return false, err
	}
	return true, nil
}
