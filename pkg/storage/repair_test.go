package storage_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/genemede/gnmd/pkg/conformance"
	"github.com/genemede/gnmd/pkg/curate"
	"github.com/genemede/gnmd/pkg/entity"
	"github.com/genemede/gnmd/pkg/logging"
	"github.com/genemede/gnmd/pkg/storage"
	"github.com/genemede/gnmd/pkg/storage/storagetest"
)

func openLazy(t *testing.T, fs *storagetest.MemFS, path string, opts ...storage.Option) *storage.File {
	t.Helper()
	base := []storage.Option{
		storage.WithProvider(fs),
		storage.WithRepairer(testRepairer()),
		storage.Lazy(),
	}
	f, err := storage.Open(path, append(base, opts...)...)
	require.NoError(t, err)
	return f
}

func TestRepairDryRunWritesNothing(t *testing.T) {
	fs := storagetest.NewMemFS()
	fs.Put("a.gnmd", `[{"name": "a"}]`)
	var buf bytes.Buffer
	f := openLazy(t, fs, "a.gnmd", storage.WithLogger(logging.New("fix", &buf, logging.LevelInfo)))

	res, err := f.Repair(storage.RepairOptions{DryRun: true})
	require.NoError(t, err)
	assert.True(t, res.Changed())
	assert.Empty(t, fs.Ops())

	content, _ := fs.Content("a.gnmd")
	assert.Equal(t, `[{"name": "a"}]`, content)
	assert.Contains(t, buf.String(), "would add missing keys")
	assert.Equal(t, []string{"a.gnmd"}, fs.Paths())
}

func TestRepairBacksUpOnceThenWrites(t *testing.T) {
	fs := storagetest.NewMemFS()
	fs.Put("a.gnmd", `[{"name": "a"}]`)
	f := openLazy(t, fs, "a.gnmd")

	res, err := f.TryFix()
	require.NoError(t, err)
	require.True(t, res.Changed())

	ops := fs.Ops()
	require.Len(t, ops, 2)
	assert.True(t, strings.HasPrefix(ops[0], "copy a.gnmd a_bak_"))
	assert.True(t, strings.HasSuffix(ops[0], ".gnmd"))
	assert.Equal(t, "write a.gnmd", ops[1])

	report, err := storage.ValidateFile(fs, "a.gnmd")
	require.NoError(t, err)
	assert.True(t, report.Valid(), report.Lines())

	require.Equal(t, 1, f.Len())
	e := f.Entities()[0]
	assert.Equal(t, "a", e.Name)
	assert.True(t, entity.ValidGUID(e.GUID))
	assert.Equal(t, []any{}, e.Resources)
	assert.Equal(t, []any{}, e.BIDS)
}

func TestFixGUIDsMakesInvalidGUIDsDistinct(t *testing.T) {
	fs := storagetest.NewMemFS()
	doc := `[
	  {"guid": "not-a-uuid", "datetime": "2023-04-18T09:54:41.000000", "name": "a", "description": null,
	   "mtype": null, "resources": [], "properties": [], "custom": [], "bids": []},
	  {"guid": "not-a-uuid", "datetime": "2023-04-18T09:54:41.000000", "name": "b", "description": null,
	   "mtype": null, "resources": [], "properties": [], "custom": [], "bids": []}
	]`
	fs.Put("g.gnmd", doc)
	f := openLazy(t, fs, "g.gnmd")

	res, err := f.FixGUIDs(false)
	require.NoError(t, err)
	assert.Len(t, res.Changes, 2)

	ents := f.Entities()
	require.Len(t, ents, 2)
	assert.True(t, entity.ValidGUID(ents[0].GUID))
	assert.True(t, entity.ValidGUID(ents[1].GUID))
	assert.NotEqual(t, ents[0].GUID, ents[1].GUID)

	assert.True(t, conformance.CheckGUIDs("g.gnmd", ents).Valid())
}

func TestFixDatetimes(t *testing.T) {
	fs := storagetest.NewMemFS()
	fs.Put("d.gnmd", `[{"guid": "0a2ec4a4-e2f7-4d35-8a4a-8b9bd0d7b7f0", "datetime": "yesterday",
	  "name": "a", "description": null, "mtype": null,
	  "resources": [], "properties": [], "custom": [], "bids": []}]`)
	f := openLazy(t, fs, "d.gnmd")

	res, err := f.FixDatetimes(false)
	require.NoError(t, err)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, "2023-06-15T11:13:44.000000", f.Entities()[0].Datetime)
}

func TestFixMissingKeysOnly(t *testing.T) {
	fs := storagetest.NewMemFS()
	fs.Put("k.gnmd", `[{"name": "a"}]`)
	f := openLazy(t, fs, "k.gnmd")

	res, err := f.FixMissingKeys(false)
	require.NoError(t, err)
	require.Len(t, res.Changes, 1)
	assert.Equal(t, curate.PassMissingKeys, res.Changes[0].Pass)

	// Keys are complete, so the typed load fills in guid and datetime.
	report, err := storage.ValidateFile(fs, "k.gnmd")
	require.NoError(t, err)
	assert.True(t, report.Valid())
}

func TestRepairRejectsNonArray(t *testing.T) {
	fs := storagetest.NewMemFS()
	fs.Put("obj.gnmd", `{"name": "a"}`)
	f := openLazy(t, fs, "obj.gnmd")

	_, err := f.TryFix()
	assert.ErrorIs(t, err, entity.ErrNotAList)
	assert.Empty(t, fs.Ops())

	report, err := storage.ValidateFile(fs, "obj.gnmd")
	require.NoError(t, err)
	assert.False(t, report.Valid())
	assert.True(t, report.Has(entity.ErrNotAList))
}

func TestRepairKeepsNonObjectRecords(t *testing.T) {
	fs := storagetest.NewMemFS()
	fs.Put("mixed.gnmd", `[{"name": "a"}, 7]`)
	var buf bytes.Buffer
	f := openLazy(t, fs, "mixed.gnmd", storage.WithLogger(logging.New("fix", &buf, logging.LevelInfo)))

	res, err := f.TryFix()
	require.NoError(t, err)
	assert.NotEmpty(t, res.Failures)
	assert.Contains(t, buf.String(), "[WARN]")
	assert.Equal(t, 0, f.Len())

	report, err := storage.ValidateFile(fs, "mixed.gnmd")
	require.NoError(t, err)
	assert.True(t, report.Has(entity.ErrNotAllDicts))
}

func TestValidateFileMissing(t *testing.T) {
	fs := storagetest.NewMemFS()
	_, err := storage.ValidateFile(fs, "nope.gnmd")
	assert.ErrorIs(t, err, entity.ErrFileNotFound)
}

func TestAuditGUIDs(t *testing.T) {
	fs := storagetest.NewMemFS()
	fs.Put("dup.gnmd", `[
	  {"guid": "0a2ec4a4-e2f7-4d35-8a4a-8b9bd0d7b7f0", "name": "a"},
	  {"guid": "0A2EC4A4-E2F7-4D35-8A4A-8B9BD0D7B7F0", "name": "b"},
	  {"guid": 42, "name": "c"}
	]`)

	report, err := storage.AuditGUIDs(fs, "dup.gnmd")
	require.NoError(t, err)
	assert.True(t, report.Has(entity.ErrDuplicateGUID))
	assert.True(t, report.Has(entity.ErrInvalidGUID))

	fs.Put("ok.gnmd", validDoc)
	report, err = storage.AuditGUIDs(fs, "ok.gnmd")
	require.NoError(t, err)
	assert.True(t, report.Valid())
}

func TestRepairWithoutChangesWritesNothing(t *testing.T) {
	fs := storagetest.NewMemFS()
	fs.Put("ok.gnmd", validDoc)
	f := openLazy(t, fs, "ok.gnmd")

	res, err := f.TryFix()
	require.NoError(t, err)
	assert.False(t, res.Changed())
	assert.Empty(t, fs.Ops())
}
