package internal

import (
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/joho/godotenv"
)

// LoadEnvironment merges the variables from a dotenv file into environ.
// Variables already present in environ win. A missing file is not an error.
func LoadEnvironment(environ []string, path string) ([]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return environ, nil
		}
		return nil, fmt.Errorf("failed to read environment file %q: %w\nCheck the file uses KEY=value lines", path, err)
	}

	present := make(map[string]bool, len(environ))
	for _, variable := range environ {
		if key, _, ok := strings.Cut(variable, "="); ok {
			present[key] = true
		}
	}

	keys := make([]string, 0, len(values))
	for key := range values {
		if !present[key] {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	merged := append([]string(nil), environ...)
	for _, key := range keys {
		merged = append(merged, key+"="+values[key])
	}

	return merged, nil
}
