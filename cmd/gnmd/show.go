package main

import (
	"fmt"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/spf13/cobra"

	"github.com/genemede/gnmd/pkg/entity"
	"github.com/genemede/gnmd/pkg/storage"
)

func newShowCmd(a *app) *cobra.Command {
	var (
		plain bool
		guid  string
		style string
	)

	cmd := &cobra.Command{
		Use:   "show <path>",
		Short: "Print the records of an entity file",
		Long: `Prints the file's records as indented JSON with syntax highlighting.
Records keep their schema key order. With --guid only the matching record is
printed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.disk().ReadJSON(args[0])
			if err != nil {
				return err
			}

			if arr, ok := doc.([]any); ok {
				doc = orderRecords(arr)
			}
			if guid != "" {
				rec, err := findRecord(doc, guid)
				if err != nil {
					return fmt.Errorf("%s: %w", args[0], err)
				}
				doc = rec
			}

			data, err := storage.EncodeJSON(doc, a.cfg.Store.Indent)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if plain {
				_, err := out.Write(data)
				return err
			}
			return quick.Highlight(out, string(data), "json", "terminal256", style)
		},
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "disable syntax highlighting")
	cmd.Flags().StringVar(&guid, "guid", "", "print only the record with this GUID")
	cmd.Flags().StringVar(&style, "style", "monokai", "highlighting style")
	return cmd
}

// orderRecords converts object elements to entity.Record so they encode in
// schema key order. Other elements are kept as they are.
func orderRecords(arr []any) []any {
	out := make([]any, len(arr))
	for i, v := range arr {
		if rec, ok := entity.AsRecord(v); ok {
			out[i] = rec
			continue
		}
		out[i] = v
	}
	return out
}

func findRecord(doc any, guid string) (entity.Record, error) {
	arr, ok := doc.([]any)
	if !ok {
		return nil, entity.ErrNotAList
	}
	for _, v := range arr {
		rec, ok := entity.AsRecord(v)
		if !ok {
			continue
		}
		if g, ok := rec.Get(entity.FieldGUID).(string); ok && strings.EqualFold(g, guid) {
			return rec, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", entity.ErrNotFound, guid)
}
