package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/pranshuparmar/lsport/pkg/model"
)

var cellEscaper = strings.NewReplacer("|", `\|`)

// RenderMarkdown writes a pipe table with the text columns. Free-form cells
// are wrapped in backticks.
func RenderMarkdown(w io.Writer, ports []model.PortInfo) error {
	var b strings.Builder
	b.WriteString("| " + strings.Join(columns, " | ") + " |\n")
	b.WriteString("|")
	for _, c := range columns {
		b.WriteString(strings.Repeat("-", len(c)+2) + "|")
	}
	b.WriteString("\n")

	for _, p := range ports {
		fmt.Fprintf(&b, "| %d | %d | %s | %t | %t | %s | %s | %s | %s |\n",
			p.Port, p.PID, cell(orUnknown(p.User)), p.Privileged, p.IPv6,
			code(p.Process), code(p.Cwd), code(p.Command), code(p.Service))
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func cell(s string) string {
	return cellEscaper.Replace(Printable(s))
}

func code(s string) string {
	return "`" + cell(orUnknown(s)) + "`"
}
