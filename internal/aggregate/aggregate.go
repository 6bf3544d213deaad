// Package aggregate folds all per-stage outcomes into the two canonical
// outputs per record family: a nested per-ID JSON store and a flat CSV
// projection with a fixed, versioned header. Aggregation is a deterministic
// left-merge keyed by rtl_id (or the composite netlist key): re-running on
// unchanged inputs produces byte-identical files.
package aggregate

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
)

// MergeConflictError reports inconsistent keys across input sources, e.g. a
// summary that claims success for a netlist whose artifacts are missing. The
// record is flagged, never dropped.
type MergeConflictError struct {
	Key    string
	Reason string
}

func (e *MergeConflictError) Error() string {
	return fmt.Sprintf("merge conflict on %s: %s", e.Key, e.Reason)
}

// writeOrderedJSON emits a JSON object with integer-string keys in ascending
// numeric order, each value indented the way the downstream tooling expects.
func writeOrderedJSON(w io.Writer, keys []int, value func(int) (any, error)) error {
	sorted := append([]int(nil), keys...)
	sort.Ints(sorted)

	if _, err := io.WriteString(w, "{\n"); err != nil {
		return err
	}
	for i, key := range sorted {
		v, err := value(key)
		if err != nil {
			return err
		}
		data, err := json.MarshalIndent(v, "", "    ")
		if err != nil {
			return err
		}
		if i > 0 {
			if _, err := io.WriteString(w, ",\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(w, "%q: %s", strconv.Itoa(key), data); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "\n}")
	return err
}

// writeFileAtomic replaces path in one rename so a crashed aggregation never
// leaves a half-written canonical file behind.
func writeFileAtomic(path string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".agg-*")
	if err != nil {
		return err
	}
	if err := write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// jsonDistribution renders an int-keyed histogram as a deterministic JSON
// object for a CSV cell.
func jsonDistribution(m map[int]int) string {
	conv := make(map[string]int, len(m))
	for k, v := range m {
		conv[strconv.Itoa(k)] = v
	}
	data, _ := json.Marshal(conv)
	return string(data)
}

// jsonStringDistribution is jsonDistribution for string-keyed histograms.
func jsonStringDistribution(m map[string]int) string {
	if m == nil {
		m = map[string]int{}
	}
	data, _ := json.Marshal(m)
	return string(data)
}

// copyFile copies src to dst, creating dst's directory.
func copyFile(src, dst string) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return err
	}
	return os.WriteFile(dst, data, 0644)
}
