package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/genemede/gnmd/pkg/conformance"
	"github.com/genemede/gnmd/pkg/storage"
)

func newValidateCmd(a *app) *cobra.Command {
	var guids bool

	cmd := &cobra.Command{
		Use:   "validate <path>...",
		Short: "Check that entity files are conformant",
		Long: `Checks each file is a JSON array of objects that all have exactly the
schema keys. With --guids every record must also carry a unique canonical GUID.

Exits non-zero when any file fails.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			disk := a.disk()

			invalid := 0
			for _, path := range args {
				report, err := storage.ValidateFile(disk, path)
				if err != nil {
					printFailure(out, path, []string{err.Error()})
					a.logger.Errorf("validate %s: %v", path, err)
					invalid++
					continue
				}
				if guids && report.Valid() {
					audit, err := storage.AuditGUIDs(disk, path)
					if err != nil {
						return err
					}
					report.Merge(audit)
				}
				if !report.Valid() {
					printFailure(out, path, report.Lines())
					for _, line := range report.Lines() {
						a.logger.Debugf("%s", line)
					}
					invalid++
					continue
				}
				printReportOK(out, report)
			}

			if invalid > 0 {
				return fmt.Errorf("%d of %d files invalid", invalid, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&guids, "guids", false, "also require unique canonical GUIDs")
	return cmd
}

func printReportOK(w io.Writer, report *conformance.Report) {
	fmt.Fprintf(w, "%s %s %s\n",
		okStyle.Render(okMark),
		report.Source,
		mutedStyle.Render(fmt.Sprintf("(%d records)", report.Records)))
}

func printFailure(w io.Writer, path string, details []string) {
	fmt.Fprintf(w, "%s %s\n", errorStyle.Render(failMark), path)
	for _, d := range details {
		fmt.Fprintln(w, detailStyle.Render(d))
	}
}
