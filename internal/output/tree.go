package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pranshuparmar/lsport/pkg/model"
)

var (
	colorResetTree   = "\033[0m"
	colorMagentaTree = "\033[35m"
	colorGreenTree   = "\033[32m"
	colorBoldTree    = "\033[2m"
)

// RenderTree groups records under their owning process, in the order each
// process first appears.
func RenderTree(w io.Writer, ports []model.PortInfo, colorEnabled bool) error {
	colorReset := ""
	colorMagenta := ""
	colorGreen := ""
	colorBold := ""
	if colorEnabled {
		colorReset = colorResetTree
		colorMagenta = colorMagentaTree
		colorGreen = colorGreenTree
		colorBold = colorBoldTree
	}

	var order []int
	byPID := make(map[int][]model.PortInfo)
	for _, p := range ports {
		if _, ok := byPID[p.PID]; !ok {
			order = append(order, p.PID)
		}
		byPID[p.PID] = append(byPID[p.PID], p)
	}

	var b strings.Builder
	for _, pid := range order {
		group := byPID[pid]
		head := group[0]
		fmt.Fprintf(&b, "%s%s%s (%spid %d%s", colorGreen, Printable(orUnknown(head.Process)), colorReset, colorBold, pid, colorReset)
		if head.User != "" {
			fmt.Fprintf(&b, ", %s", Printable(head.User))
		}
		b.WriteString(")\n")

		for i, p := range group {
			connector := "├─ "
			if i == len(group)-1 {
				connector = "└─ "
			}
			fmt.Fprintf(&b, "  %s%s%s%s\n", colorMagenta, connector, colorReset, portLabel(p))
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func portLabel(p model.PortInfo) string {
	host := p.Host
	if p.IPv6 {
		host = "[" + host + "]"
	}
	label := fmt.Sprintf("%s:%d", host, p.Port)
	if p.Service != "" {
		label += " " + p.Service
	}
	return label
}
