package services

import (
	"bufio"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
)

//go:embed services.list
var embedded string

// Entry is one well-known service from the dataset.
type Entry struct {
	Name      string  `json:"name"`
	Port      uint16  `json:"port"`
	Protocol  string  `json:"protocol"`
	Frequency float64 `json:"frequency"`
	Comment   string  `json:"comment,omitempty"`
}

type key struct {
	port     uint16
	protocol string
}

// Registry maps (port, protocol) to a service. It is never modified after
// construction, so concurrent lookups are safe.
type Registry struct {
	entries map[key]Entry
	skipped int
}

var defaultRegistry = sync.OnceValue(func() *Registry {
	return Parse(strings.NewReader(embedded))
})

// Default returns the registry built from the embedded dataset.
func Default() *Registry {
	return defaultRegistry()
}

// Load builds a registry from a dataset file on disk.
func Load(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open services file: %w", err)
	}
	defer f.Close()
	return Parse(f), nil
}

// Parse reads a dataset. Malformed lines are skipped, never fatal.
func Parse(r io.Reader) *Registry {
	reg := &Registry{entries: make(map[key]Entry)}

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		e, err := ParseLine(line)
		if err != nil {
			reg.skipped++
			continue
		}
		reg.entries[key{e.Port, e.Protocol}] = e
	}
	return reg
}

// ParseLine parses "name port/protocol frequency [comment...]".
func ParseLine(line string) (Entry, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Entry{}, errors.New("missing port/protocol")
	}
	if len(fields) < 3 {
		return Entry{}, errors.New("missing frequency")
	}

	portStr, proto, ok := strings.Cut(fields[1], "/")
	if !ok || proto == "" || strings.Contains(proto, "/") {
		return Entry{}, fmt.Errorf("invalid port/protocol %q", fields[1])
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return Entry{}, fmt.Errorf("invalid port %q", portStr)
	}

	freq, _ := strconv.ParseFloat(fields[2], 64)

	comment := strings.Join(fields[3:], " ")
	comment = strings.TrimSpace(strings.TrimPrefix(comment, "#"))

	return Entry{
		Name:      fields[0],
		Port:      uint16(port),
		Protocol:  proto,
		Frequency: freq,
		Comment:   comment,
	}, nil
}

// Lookup returns the service registered for port and protocol. The protocol
// is matched exactly, e.g. "tcp".
func (r *Registry) Lookup(port uint16, protocol string) (Entry, bool) {
	if r == nil {
		return Entry{}, false
	}
	e, ok := r.entries[key{port, protocol}]
	return e, ok
}

func (r *Registry) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// Skipped is the number of dataset lines that failed to parse.
func (r *Registry) Skipped() int {
	if r == nil {
		return 0
	}
	return r.skipped
}

// Entries returns every service ordered by port, then protocol.
func (r *Registry) Entries() []Entry {
	if r == nil {
		return nil
	}
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Port != out[j].Port {
			return out[i].Port < out[j].Port
		}
		return out[i].Protocol < out[j].Protocol
	})
	return out
}
