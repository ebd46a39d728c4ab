package storage

import (
	"fmt"
	"path/filepath"

	"github.com/genemede/gnmd/pkg/conformance"
	"github.com/genemede/gnmd/pkg/curate"
	"github.com/genemede/gnmd/pkg/entity"
)

// RepairOptions selects what Repair does.
type RepairOptions struct {
	// DryRun reports the changes without writing anything.
	DryRun bool

	// Passes to run, in order. Empty means curate.AllPasses.
	Passes []curate.Pass
}

// Repair runs repair passes over the file's contents on disk and logs one
// line per change. Unless DryRun is set or nothing changed, the result is
// written back after a backup and reloaded when it now conforms.
func (f *File) Repair(opts RepairOptions) (*curate.Result, error) {
	doc, err := f.fs.ReadJSON(f.path)
	if err != nil {
		return nil, err
	}
	records, ok := doc.([]any)
	if !ok {
		return nil, fmt.Errorf("storage: %s: %w", f.path, entity.ErrNotAList)
	}

	res, err := f.repairer.Run(records, opts.Passes...)
	if err != nil {
		return nil, err
	}

	name := filepath.Base(f.path)
	for _, c := range res.Changes {
		f.logger.Infof("%s: %s", name, c.Line(opts.DryRun))
	}
	for _, fail := range res.Failures {
		f.logger.Warnf("%s: %v", name, fail)
	}
	if opts.DryRun || !res.Changed() {
		return res, nil
	}

	if err := f.write(res.Records); err != nil {
		return res, err
	}

	if report := conformance.Check(f.path, res.Records); report.Valid() {
		if err := f.Load(); err != nil {
			f.ents = nil
			f.logger.Warnf("%s: repaired but not loadable: %v", name, err)
		}
	} else {
		f.ents = nil
		f.logger.Warnf("%s: still not a valid entity file after repair", name)
	}
	return res, nil
}

// FixGUIDs runs the GUID pass.
func (f *File) FixGUIDs(dryRun bool) (*curate.Result, error) {
	return f.Repair(RepairOptions{DryRun: dryRun, Passes: []curate.Pass{curate.PassGUIDs}})
}

// FixDatetimes runs the datetime pass.
func (f *File) FixDatetimes(dryRun bool) (*curate.Result, error) {
	return f.Repair(RepairOptions{DryRun: dryRun, Passes: []curate.Pass{curate.PassDatetimes}})
}

// FixMissingKeys runs the missing-key backfill pass.
func (f *File) FixMissingKeys(dryRun bool) (*curate.Result, error) {
	return f.Repair(RepairOptions{DryRun: dryRun, Passes: []curate.Pass{curate.PassMissingKeys}})
}

// TryFix runs every pass and writes the result.
func (f *File) TryFix() (*curate.Result, error) {
	return f.Repair(RepairOptions{})
}
