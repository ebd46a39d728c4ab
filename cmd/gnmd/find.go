package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genemede/gnmd/pkg/storage"
)

func newFindCmd(a *app) *cobra.Command {
	var validate bool

	cmd := &cobra.Command{
		Use:   "find [root]",
		Short: "List entity files below a directory",
		Long: `Walks root (default: the current directory) and lists the files selected
by the discovery include/exclude patterns of the config. Backups are excluded
by default.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}

			m, err := a.cfg.Matcher()
			if err != nil {
				return err
			}
			files, err := storage.FindFiles(root, m)
			if err != nil {
				return err
			}
			a.logger.Debugf("found %d files under %s", len(files), root)

			out := cmd.OutOrStdout()
			disk := a.disk()
			for _, path := range files {
				if !validate {
					fmt.Fprintln(out, path)
					continue
				}
				valid, err := storage.IsValidFile(disk, path)
				if err != nil {
					a.logger.Warnf("%s: %v", path, err)
				}
				if valid {
					fmt.Fprintf(out, "%s %s\n", okStyle.Render(okMark), path)
				} else {
					fmt.Fprintf(out, "%s %s\n", errorStyle.Render(failMark), path)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&validate, "validate", false, "mark each file as valid or invalid")
	return cmd
}
