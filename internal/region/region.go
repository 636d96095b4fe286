// Package region handles ISO 3166-1 alpha-2 region codes and region list sources.
package region

import (
	"bufio"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Valid reports whether code is two upper-case ASCII letters.
func Valid(code string) bool {
	if len(code) != 2 {
		return false
	}
	for i := 0; i < len(code); i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return false
		}
	}
	return true
}

// LoadFile reads region codes from a file, one per line.
// Lines are trimmed and upper-cased; blank and invalid lines are dropped.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open regions file")
	}
	defer f.Close()

	var codes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		code := strings.ToUpper(strings.TrimSpace(scanner.Text()))
		if Valid(code) {
			codes = append(codes, code)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read regions file")
	}

	return codes, nil
}

// Resolve picks the region list: explicit codes win, then the file, then Defaults.
func Resolve(codes []string, path string) ([]string, error) {
	if len(codes) > 0 {
		out := make([]string, 0, len(codes))
		for _, c := range codes {
			c = strings.ToUpper(strings.TrimSpace(c))
			if !Valid(c) {
				return nil, errors.Errorf("invalid region code %q", c)
			}
			out = append(out, c)
		}
		return out, nil
	}

	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		if len(loaded) == 0 {
			return nil, errors.Errorf("no valid region codes in %s", path)
		}
		return loaded, nil
	}

	return append([]string(nil), Defaults...), nil
}
