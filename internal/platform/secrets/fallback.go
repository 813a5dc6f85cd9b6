package secrets

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// fallbackFile reads "secret://name[?version=N]=value" lines from a local file once. Lines
// without a version answer every version.
type fallbackFile struct {
	path   string
	once   sync.Once
	values map[string]string
	err    error
}

func newFallbackFile(path string) *fallbackFile {
	return &fallbackFile{path: strings.TrimSpace(path)}
}

func (f *fallbackFile) lookup(canonical, version string) (string, error) {
	f.once.Do(f.load)
	if f.err != nil {
		return "", f.err
	}
	if value, ok := f.values[cacheKey(canonical, version)]; ok {
		return value, nil
	}
	if value, ok := f.values[canonical]; ok {
		return value, nil
	}
	return "", fmt.Errorf("secrets: fallback value not found for %s", canonical)
}

func (f *fallbackFile) load() {
	f.values = map[string]string{}
	if f.path == "" {
		return
	}
	path, err := filepath.Abs(f.path)
	if err != nil {
		path = f.path
	}

	file, err := os.Open(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			f.err = fmt.Errorf("secrets: unable to open fallback file %s: %w", path, err)
		}
		return
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, ok := splitFallbackLine(line)
		if !ok {
			continue
		}
		parsed, err := parseReference(strings.TrimSpace(key))
		if err != nil {
			continue
		}
		if parsed.Version == "" {
			f.values[parsed.Canonical] = strings.TrimSpace(value)
			continue
		}
		f.values[cacheKey(parsed.Canonical, parsed.Version)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		f.err = fmt.Errorf("secrets: failed reading %s: %w", path, err)
	}
}

// splitFallbackLine separates the reference from the value. Query parameters in the reference
// carry their own "=", so the separator is the first "=" after the last parameter value.
func splitFallbackLine(line string) (string, string, bool) {
	eq := strings.IndexByte(line, '=')
	if eq <= 0 {
		return "", "", false
	}
	q := strings.IndexByte(line, '?')
	if q < 0 || q > eq {
		return line[:eq], line[eq+1:], true
	}
	offset := q + 1
	for {
		rest := line[offset:]
		pe := strings.IndexByte(rest, '=')
		if pe < 0 {
			return "", "", false
		}
		sep := strings.IndexAny(rest[pe+1:], "&=")
		if sep < 0 {
			return "", "", false
		}
		end := offset + pe + 1 + sep
		if line[end] == '=' {
			return line[:end], line[end+1:], true
		}
		offset = end + 1
	}
}
