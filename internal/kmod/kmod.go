package kmod

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"golang.org/x/sys/unix"
)

const modulesPath = "/proc/modules"

var ErrModuleMissing = errors.New("kernel module not loaded")

// Swap removes the modules in remove (ignoring ones that are not loaded)
// and inserts the modules in insert, then verifies each inserted module
// shows up in /proc/modules.
func Swap(ctx context.Context, remove, insert []string) error {
	for _, name := range remove {
		loaded, err := Loaded(name)
		if err != nil {
			return err
		}
		if !loaded {
			continue
		}
		if err := modprobe(ctx, "-r", name); err != nil {
			return fmt.Errorf("remove module %s: %w", name, err)
		}
	}
	for _, name := range insert {
		if err := modprobe(ctx, name); err != nil {
			return fmt.Errorf("insert module %s: %w", name, err)
		}
	}
	// post-condition: inserted modules are visible
	for _, name := range insert {
		loaded, err := Loaded(name)
		if err != nil {
			return err
		}
		if !loaded {
			return fmt.Errorf("%w: %s after insert", ErrModuleMissing, name)
		}
	}
	return nil
}

// ArmProbe loads the trace probe module with its arguments (e.g.
// "port=8554", "full=1") and makes the trace source world-readable, the way
// the probe stream has to be opened by an unprivileged collector.
func ArmProbe(ctx context.Context, module string, args []string, source string) error {
	cmdArgs := append([]string{module}, args...)
	if err := modprobe(ctx, cmdArgs...); err != nil {
		return fmt.Errorf("arm probe %s: %w", module, err)
	}
	loaded, err := Loaded(module)
	if err != nil {
		return err
	}
	if !loaded {
		return fmt.Errorf("%w: %s after arm", ErrModuleMissing, module)
	}
	if source != "" {
		if err := os.Chmod(source, 0o444); err != nil {
			return fmt.Errorf("chmod trace source: %w", err)
		}
	}
	return nil
}

// SetCongestionControl selects the TCP congestion control for the run.
func SetCongestionControl(name string) error {
	if name == "" {
		return nil
	}
	path := "/proc/sys/net/ipv4/tcp_congestion_control"
	if err := os.WriteFile(path, []byte(name+"\n"), 0o644); err != nil {
		return fmt.Errorf("set congestion control %s: %w", name, err)
	}
	return nil
}

// Loaded reports whether the named module appears in /proc/modules.
func Loaded(name string) (bool, error) {
	f, err := os.Open(modulesPath)
	if err != nil {
		return false, fmt.Errorf("open %s: %w", modulesPath, err)
	}
	defer f.Close()
	return scanModules(f, name)
}

// scanModules walks /proc/modules-format lines (module name is the first
// field) looking for name.
func scanModules(r io.Reader, name string) (bool, error) {
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		ln := strings.TrimSpace(sc.Text())
		if ln == "" {
			continue
		}
		fields := strings.Fields(ln)
		if len(fields) > 0 && fields[0] == name {
			return true, nil
		}
	}
	if err := sc.Err(); err != nil {
		return false, err
	}
	return false, nil
}

// DebugFSMounted reports whether /sys/kernel/debug carries debugfs, which
// the backlog snapshot source lives under.
func DebugFSMounted() bool {
	var st unix.Statfs_t
	if err := unix.Statfs("/sys/kernel/debug", &st); err != nil {
		return false
	}
	return st.Type == unix.DEBUGFS_MAGIC
}

func modprobe(ctx context.Context, args ...string) error {
	cmd := exec.CommandContext(ctx, "modprobe", args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("modprobe %s: %w (%s)", strings.Join(args, " "), err, strings.TrimSpace(string(out)))
	}
	return nil
}
