package output

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/pranshuparmar/lsport/pkg/model"
)

// Row prefixes share one byte length so tabwriter pads every first cell by
// the same amount.
var (
	colorResetText = "\033[0m"
	colorBoldText  = "\033[01m"
	colorRedText   = "\033[31m"
	colorPlainText = "\033[39m"
)

var columns = []string{"PORT", "PID", "USER", "PRIVILEGED", "IS_IPV6", "PROCESS", "CWD", "FULL CMD", "SERVICE"}

// RenderText writes one tab-aligned row per record. Absent fields print as
// "unknown". With color the header is bold and privileged rows are red.
func RenderText(w io.Writer, ports []model.PortInfo, colorEnabled bool) error {
	var buf bytes.Buffer
	tw := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	bold, plain, red, reset := "", "", "", ""
	if colorEnabled {
		bold, plain, red, reset = colorBoldText, colorPlainText, colorRedText, colorResetText
	}

	fmt.Fprintln(tw, bold+strings.Join(columns, "\t")+reset)
	for _, p := range ports {
		rowColor := plain
		if p.Privileged {
			rowColor = red
		}
		fmt.Fprintf(tw, "%s%d\t%d\t%s\t%t\t%t\t%s\t%s\t%s\t%s%s\n",
			rowColor, p.Port, p.PID, textCell(p.User), p.Privileged, p.IPv6,
			textCell(p.Process), textCell(p.Cwd), textCell(p.Command), textCell(p.Service), reset)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	_, err := w.Write(buf.Bytes())
	return err
}

func textCell(s string) string {
	return Printable(orUnknown(s))
}
