package app

import (
	"bytes"
	"fmt"
	"os"

	"github.com/pranshuparmar/lsport/internal/proc"
	"github.com/pranshuparmar/lsport/internal/snapshot"
	"github.com/spf13/cobra"
)

func newCaptureCmd(opts *options) *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Record this host's sockets and processes to a snapshot file",
		Long: `capture reads the local socket tables and process state once and writes them
as JSON. Feed the file back with --method snapshot --snapshot FILE to inspect
it later or on another machine.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			log, closeLog, err := opts.newLogger(opts.stderr)
			if err != nil {
				return err
			}
			defer closeLog()

			fs, err := proc.NewFS(opts.procRoot)
			if err != nil {
				return err
			}
			snap, err := snapshot.Capture(fs, fs, proc.NewUsers())
			if err != nil {
				return err
			}
			log.WithField("processes", len(snap.Processes)).Debug("captured snapshot")

			var buf bytes.Buffer
			if err := snap.Save(&buf); err != nil {
				return err
			}
			if out == "" {
				_, err := opts.stdout.Write(buf.Bytes())
				return err
			}
			if err := os.WriteFile(out, buf.Bytes(), 0644); err != nil {
				return fmt.Errorf("write snapshot: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&out, "output", "o", "", "write the snapshot to this file instead of stdout")
	return cmd
}
