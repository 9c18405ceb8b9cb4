package archive

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ryanmoran/dockerdb/internal/dockerfile"
)

// Context is a build context containing a Dockerfile and the data files it references.
type Context struct {
	dockerfile []byte
	files      []dockerfile.File
	modTime    time.Time
}

// New creates a build context. Files are written at the archive root in the given order.
func New(content []byte, files ...dockerfile.File) Context {
	return Context{
		dockerfile: content,
		files:      files,
		modTime:    time.Unix(0, 0),
	}
}

// WriteTo writes the build context to w as a tar archive. It implements
// io.WriterTo and returns the number of bytes written to w.
func (c Context) WriteTo(w io.Writer) (int64, error) {
	counter := &countingWriter{w: w}
	tw := tar.NewWriter(counter)

	if err := c.writeFile(tw, "Dockerfile", c.dockerfile); err != nil {
		return counter.n, err
	}

	for _, file := range c.files {
		if file.Name == "Dockerfile" {
			return counter.n, fmt.Errorf("data file %q would overwrite the generated Dockerfile\nRename the data file", file.Name)
		}
		if err := c.writeFile(tw, file.Name, file.Content); err != nil {
			return counter.n, err
		}
	}

	if err := tw.Close(); err != nil {
		return counter.n, fmt.Errorf("failed to finish build context archive: %w", err)
	}

	return counter.n, nil
}

func (c Context) writeFile(tw *tar.Writer, name string, content []byte) error {
	header := &tar.Header{
		Name:    name,
		Mode:    0644,
		Size:    int64(len(content)),
		ModTime: c.modTime,
	}

	if err := tw.WriteHeader(header); err != nil {
		return fmt.Errorf("failed to write tar header for %s: %w\nThis is a system error with tar archive creation", name, err)
	}

	if _, err := tw.Write(content); err != nil {
		return fmt.Errorf("failed to write %s to tar archive: %w\nThis is a system error with tar archive creation", name, err)
	}

	return nil
}

// LoadFiles reads the named data files from dir, preserving order. Names
// must be plain base names and each may appear only once.
func LoadFiles(dir string, names []string) ([]dockerfile.File, error) {
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if err := dockerfile.ValidateFileName(name); err != nil {
			return nil, err
		}
		if seen[name] {
			return nil, fmt.Errorf("data file %q is listed more than once", name)
		}
		seen[name] = true
	}

	files := make([]dockerfile.File, 0, len(names))
	for _, name := range names {
		path := filepath.Join(dir, name)

		info, err := os.Lstat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read data file %q: %w\nCheck that the file exists in the data directory", path, err)
		}
		if !info.Mode().IsRegular() {
			return nil, fmt.Errorf("data file %q is not a regular file", path)
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read data file %q: %w\nCheck file permissions", path, err)
		}

		files = append(files, dockerfile.File{Name: name, Content: content})
	}

	return files, nil
}

type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}
