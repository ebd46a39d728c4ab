package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/genemede/gnmd/pkg/curate"
	"github.com/genemede/gnmd/pkg/storage"
)

type fixOptions struct {
	apply     bool
	keys      bool
	guids     bool
	datetimes bool
	dedupe    bool
	lenient   bool
}

// passes returns the selected passes in their fixed order. None selected
// means all of them.
func (o fixOptions) passes() []curate.Pass {
	var passes []curate.Pass
	if o.keys {
		passes = append(passes, curate.PassMissingKeys)
	}
	if o.guids {
		passes = append(passes, curate.PassGUIDs)
	}
	if o.datetimes {
		passes = append(passes, curate.PassDatetimes)
	}
	if len(passes) == 0 {
		return curate.AllPasses()
	}
	return passes
}

func newFixCmd(a *app) *cobra.Command {
	var opts fixOptions

	cmd := &cobra.Command{
		Use:   "fix <path>...",
		Short: "Repair entity files",
		Long: `Runs repair passes over each file and prints one line per change:

  keys       add missing schema keys with empty values
  guids      replace missing or invalid GUIDs
  datetimes  replace datetimes not in the canonical layout

Nothing is written unless --apply is given. With --apply the file is backed
up before it is rewritten.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			dryRun := !opts.apply

			repairer := a.cfg.Repairer(
				curate.WithLenientDatetimes(a.cfg.Repair.LenientDatetimes || opts.lenient),
				curate.WithDedupe(a.cfg.Repair.DedupeGUIDs || opts.dedupe),
			)

			failed := 0
			for _, path := range args {
				f, err := storage.Open(path, a.fileOptions(storage.WithRepairer(repairer), storage.Lazy())...)
				if err != nil {
					return err
				}

				res, err := f.Repair(storage.RepairOptions{DryRun: dryRun, Passes: opts.passes()})
				if err != nil {
					printFailure(out, path, []string{err.Error()})
					failed++
					continue
				}

				name := filepath.Base(path)
				for _, line := range res.Lines(dryRun) {
					fmt.Fprintf(out, "%s: %s\n", name, changeStyle.Render(line))
				}
				for _, fail := range res.Failures {
					fmt.Fprintln(out, detailStyle.Render(fail.Error()))
				}

				switch {
				case !res.Changed():
					fmt.Fprintf(out, "%s %s %s\n", okStyle.Render(okMark), path, mutedStyle.Render("(nothing to fix)"))
				case dryRun:
					fmt.Fprintf(out, "%s\n", mutedStyle.Render(fmt.Sprintf("%s: %d changes, run with --apply to write them", path, len(res.Changes))))
				default:
					fmt.Fprintf(out, "%s %s %s\n", okStyle.Render(okMark), path, mutedStyle.Render(fmt.Sprintf("(%d changes written)", len(res.Changes))))
				}
				if len(res.Failures) > 0 {
					failed++
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d files could not be fully repaired", failed, len(args))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&opts.apply, "apply", false, "write the repaired files (a backup is made first)")
	cmd.Flags().BoolVar(&opts.keys, "keys", false, "run the missing-keys pass")
	cmd.Flags().BoolVar(&opts.guids, "guids", false, "run the GUID pass")
	cmd.Flags().BoolVar(&opts.datetimes, "datetimes", false, "run the datetime pass")
	cmd.Flags().BoolVar(&opts.dedupe, "dedupe", false, "give every repeated GUID after the first a fresh one")
	cmd.Flags().BoolVar(&opts.lenient, "lenient", false, "re-render parseable non-canonical datetimes instead of replacing them")
	return cmd
}
