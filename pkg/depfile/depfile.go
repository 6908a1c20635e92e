// Package depfile reads compiler-emitted .d files (Makefile-style
// dependency rules) and extracts the header prerequisites of each
// target. The compiler writes these as a side effect of -MMD, and the
// discovered headers become extra dependency edges before resolution.
package depfile

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/kiln/pkg/errors"
)

var headerSuffixes = []string{".h", ".hpp"}

// Read parses the depfile sitting next to objectPath (same name,
// .d extension) and returns target paths mapped to their header
// prerequisites. A missing depfile yields an empty result: before the
// first compile there is nothing to know yet.
func Read(objectPath string) (map[string][]string, error) {
	dPath := strings.TrimSuffix(objectPath, filepath.Ext(objectPath)) + ".d"

	data, err := os.ReadFile(dPath)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string][]string{}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrDepfileRead, "cannot read depfile %s", dPath)
	}

	return parse(string(data)), nil
}

// parse splits the depfile into rules. Lines ending in a backslash
// continue on the next line.
func parse(content string) map[string][]string {
	lines := strings.Split(content, "\n")
	for i := range lines {
		lines[i] = strings.TrimRight(lines[i], " \t\r")
	}

	// Fold continuation lines into their rule line
	i := 0
	for i < len(lines)-1 {
		if strings.HasSuffix(lines[i], "\\") {
			lines[i] = strings.TrimSuffix(lines[i], "\\") + " " + strings.TrimLeft(lines[i+1], " \t")
			lines = append(lines[:i+1], lines[i+2:]...)
		} else {
			i++
		}
	}

	rules := make(map[string][]string)
	for _, line := range lines {
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		target := strings.TrimSuffix(fields[0], ":")
		if target == fields[0] {
			// Not a rule line
			continue
		}

		var headers []string
		for _, dep := range fields[1:] {
			if isHeader(dep) {
				headers = append(headers, dep)
			}
		}
		rules[target] = headers
	}
	return rules
}

func isHeader(path string) bool {
	ext := filepath.Ext(path)
	for _, suffix := range headerSuffixes {
		if ext == suffix {
			return true
		}
	}
	return false
}
