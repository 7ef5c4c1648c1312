package output

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"unicode"

	"github.com/pranshuparmar/lsport/pkg/model"
)

var ErrUnknownFormat = errors.New("unknown output format")

type Format string

const (
	FormatText     Format = "text"
	FormatJSON     Format = "json"
	FormatMarkdown Format = "md"
	FormatTree     Format = "tree"
)

// ParseFormat accepts a format name case-insensitively. "markdown" is an
// alias for md.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	case "md", "markdown":
		return FormatMarkdown, nil
	case "tree":
		return FormatTree, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// Options tweak rendering. Color only affects text and tree.
type Options struct {
	Color bool
}

func Render(w io.Writer, f Format, ports []model.PortInfo, opts Options) error {
	switch f {
	case FormatText:
		return RenderText(w, ports, opts.Color)
	case FormatJSON:
		return RenderJSON(w, ports)
	case FormatMarkdown:
		return RenderMarkdown(w, ports)
	case FormatTree:
		return RenderTree(w, ports, opts.Color)
	}
	return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
}

type SortKey string

const (
	SortNone SortKey = "none"
	SortPort SortKey = "port"
	SortPID  SortKey = "pid"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "", SortNone:
		return SortNone, nil
	case SortPort, SortPID:
		return k, nil
	}
	return "", fmt.Errorf("unknown sort key %q", s)
}

// Next returns the key after k in the none, port, pid cycle.
func (k SortKey) Next() SortKey {
	switch k {
	case SortNone, "":
		return SortPort
	case SortPort:
		return SortPID
	}
	return SortNone
}

// Sort orders ports in place by key, with port number as tie-breaker.
// SortNone leaves the scan order untouched.
func Sort(ports []model.PortInfo, key SortKey) {
	switch key {
	case SortPort:
		sort.SliceStable(ports, func(i, j int) bool {
			return ports[i].Port < ports[j].Port
		})
	case SortPID:
		sort.SliceStable(ports, func(i, j int) bool {
			if ports[i].PID != ports[j].PID {
				return ports[i].PID < ports[j].PID
			}
			return ports[i].Port < ports[j].Port
		})
	}
}

// Printable replaces control characters, newlines and tabs included, with a
// space so a record always stays on one line.
func Printable(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, s)
}

func orUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
