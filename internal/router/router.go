package router

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
)

// Run starts the external router simulation and blocks until it exits.
//
// The simulation's stdout and stderr are relayed line by line under a
// [router] tag so its output lands in the harness log in real time. Context
// cancellation kills the process. The simulation is an opaque collaborator;
// only its exit status matters.
func Run(ctx context.Context, argv []string, quiet bool) error {
	if len(argv) == 0 {
		return errors.New("router: empty command")
	}
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("router: stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return fmt.Errorf("router: stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("router: start %s: %w", argv[0], err)
	}

	var wg sync.WaitGroup
	relay := func(r io.Reader, w *os.File) {
		defer wg.Done()
		in := bufio.NewReaderSize(r, 64*1024)
		for {
			line, rerr := in.ReadString('\n')
			if len(line) > 0 && !quiet {
				fmt.Fprintf(w, "[router] %s", line)
				if line[len(line)-1] != '\n' {
					fmt.Fprintln(w)
				}
			}
			if rerr != nil {
				return
			}
		}
	}
	wg.Add(2)
	go relay(stdout, os.Stdout)
	go relay(stderr, os.Stderr)
	wg.Wait()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("router: %s: %w", argv[0], err)
	}
	return nil
}
