package capture

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// ErrStart marks a capture that could not begin because the trace source or
// the destination file failed to open.
var ErrStart = errors.New("capture start failed")

const defaultMaxBytes = 250 * 1024 * 1024

// Capture owns one background copy of a kernel trace stream to a file.
// The source stays open for the capture's lifetime; Stop releases it on
// every exit path.
type Capture struct {
	src  *os.File
	dst  *os.File
	done chan struct{}

	stopOnce sync.Once

	mu       sync.Mutex
	bytes    uint64
	limitHit bool
	copyErr  error
}

// Start opens the trace source and the destination file and begins copying
// bytes continuously in the background. maxBytes is a guardrail on the
// destination size (0 selects the default cap); hitting it halts the copy
// without error.
func Start(source, dest string, maxBytes uint64) (*Capture, error) {
	if maxBytes == 0 {
		maxBytes = defaultMaxBytes
	}

	src, err := os.Open(source)
	if err != nil {
		return nil, fmt.Errorf("%w: open source %q: %v", ErrStart, source, err)
	}
	dst, err := os.Create(dest)
	if err != nil {
		_ = src.Close()
		return nil, fmt.Errorf("%w: create destination %q: %v", ErrStart, dest, err)
	}

	c := &Capture{
		src:  src,
		dst:  dst,
		done: make(chan struct{}),
	}
	go c.copyLoop(maxBytes)
	return c, nil
}

func (c *Capture) copyLoop(maxBytes uint64) {
	defer close(c.done)

	buf := make([]byte, 64*1024)
	for {
		n, rerr := c.src.Read(buf)
		if n > 0 {
			c.mu.Lock()
			room := maxBytes - c.bytes
			w := uint64(n)
			if w > room {
				w = room
				c.limitHit = true
			}
			c.mu.Unlock()

			if w > 0 {
				if _, werr := c.dst.Write(buf[:w]); werr != nil {
					c.setErr(werr)
					return
				}
				c.mu.Lock()
				c.bytes += w
				c.mu.Unlock()
			}
			c.mu.Lock()
			hit := c.limitHit
			c.mu.Unlock()
			if hit {
				return
			}
		}
		if rerr != nil {
			// EOF, a Stop-induced deadline and a closed source all end
			// the capture; they are the normal stop paths.
			if !errors.Is(rerr, io.EOF) && !errors.Is(rerr, os.ErrClosed) && !errors.Is(rerr, os.ErrDeadlineExceeded) {
				c.setErr(rerr)
			}
			return
		}
	}
}

func (c *Capture) setErr(err error) {
	c.mu.Lock()
	if c.copyErr == nil {
		c.copyErr = err
	}
	c.mu.Unlock()
}

// Stop terminates the copy, releases the source stream and syncs the
// destination. All bytes written before Stop returns are in the file.
// Idempotent: the second and later calls are no-ops returning nil.
func (c *Capture) Stop() error {
	var err error
	c.stopOnce.Do(func() {
		// Pollable stream sources (proc/debugfs, pipes) unblock a pending
		// Read via the deadline; a plain file source just runs to EOF.
		_ = c.src.SetReadDeadline(time.Now())
		<-c.done
		_ = c.src.Close()

		if serr := c.dst.Sync(); serr != nil && err == nil {
			err = serr
		}
		if cerr := c.dst.Close(); cerr != nil && err == nil {
			err = cerr
		}

		c.mu.Lock()
		if c.copyErr != nil && err == nil {
			err = c.copyErr
		}
		c.mu.Unlock()
	})
	return err
}

// Stats reports bytes copied so far and whether the size cap was hit.
func (c *Capture) Stats() (bytes uint64, limitHit bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bytes, c.limitHit
}
