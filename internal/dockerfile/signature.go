package dockerfile

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
)

// File is a data file baked into the image.
type File struct {
	Name    string
	Content []byte
}

// Signature digests every data file's contents followed by every SQL
// statement. Order matters: reordering inputs changes the signature. The
// signature is echoed in a RUN step so any data change invalidates the build
// cache from that step on.
func Signature(files []File, statements []string) string {
	digest := xxhash.New()
	for _, file := range files {
		_, _ = digest.Write(file.Content)
		_, _ = digest.Write([]byte{0})
	}
	for _, statement := range statements {
		_, _ = digest.WriteString(statement)
		_, _ = digest.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", digest.Sum64())
}

// Names returns the file names in order.
func Names(files []File) []string {
	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.Name)
	}
	return names
}
