package app

import (
	"encoding/json"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/pranshuparmar/lsport/internal/services"
	"github.com/spf13/cobra"
)

func newServicesCmd(opts *options) *cobra.Command {
	var jsonOutput bool
	cmd := &cobra.Command{
		Use:   "services [port]",
		Short: "Show the well-known service dataset",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := opts.newLogger(opts.stderr)
			if err != nil {
				return err
			}
			defer closeLog()

			reg, err := opts.registry(log)
			if err != nil {
				return err
			}

			entries := reg.Entries()
			if len(args) == 1 {
				port, err := strconv.ParseUint(args[0], 10, 16)
				if err != nil {
					return fmt.Errorf("invalid port number: %s", args[0])
				}
				var matched []services.Entry
				for _, e := range entries {
					if e.Port == uint16(port) {
						matched = append(matched, e)
					}
				}
				entries = matched
			}

			if jsonOutput {
				if entries == nil {
					entries = []services.Entry{}
				}
				enc := json.NewEncoder(opts.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(entries)
			}

			if len(entries) == 0 {
				fmt.Fprintln(opts.stdout, "No matching services.")
				return nil
			}
			w := tabwriter.NewWriter(opts.stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "PORT\tPROTO\tNAME\tFREQUENCY\tCOMMENT")
			for _, e := range entries {
				fmt.Fprintf(w, "%d\t%s\t%s\t%g\t%s\n", e.Port, e.Protocol, e.Name, e.Frequency, e.Comment)
			}
			return w.Flush()
		},
	}
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")
	return cmd
}
