package identity

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Read parses an identity list: one identity per line. Blank lines and
// lines starting with "#" are skipped.
func Read(r io.Reader) ([]string, error) {
	var identities []string
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		identities = append(identities, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read identity list: %w", err)
	}
	return identities, nil
}

// LoadFile reads an identity list from path.
func LoadFile(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // user-provided identity list path is intentional
	if err != nil {
		return nil, fmt.Errorf("failed to open identity list: %w", err)
	}
	defer f.Close()

	return Read(f)
}
