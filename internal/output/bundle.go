package output

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"time"
)

// WriteBundleTGZ packs the run's artifacts into one tgz for collection.
// Paths that are empty strings are skipped (e.g. a backlog snapshot that
// could not be copied).
func WriteBundleTGZ(outPath string, paths []string) error {
	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer f.Close()

	gw := gzip.NewWriter(f)
	defer gw.Close()

	tw := tar.NewWriter(gw)
	defer tw.Close()

	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := addFile(tw, p); err != nil {
			return err
		}
	}
	return nil
}

func addFile(tw *tar.Writer, path string) error {
	st, err := os.Stat(path)
	if err != nil {
		return err
	}

	h := &tar.Header{
		Name:    filepath.Base(path),
		Mode:    0o644,
		Size:    st.Size(),
		ModTime: time.Now(),
	}
	if err := tw.WriteHeader(h); err != nil {
		return err
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(tw, f)
	return err
}
