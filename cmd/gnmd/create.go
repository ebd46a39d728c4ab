package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/genemede/gnmd/pkg/entity"
	"github.com/genemede/gnmd/pkg/storage"
)

func newCreateCmd(a *app) *cobra.Command {
	var (
		count int
		name  string
		mtype string
	)

	cmd := &cobra.Command{
		Use:   "create <path>",
		Short: "Create a new entity file",
		Long: `Creates a new entity file holding --count fresh entities, each with a new
GUID and the current time. The configured suffix is enforced on path and an
existing file is never overwritten.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 0 {
				return fmt.Errorf("count cannot be negative")
			}

			ents := make([]*entity.Entity, 0, count)
			for i := 0; i < count; i++ {
				e := entity.New()
				e.Name = name
				e.MType = mtype
				ents = append(ents, e)
			}

			f, err := storage.Create(args[0], ents, a.fileOptions()...)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s %s\n", okStyle.Render(okMark), f.Path(),
				mutedStyle.Render(fmt.Sprintf("(%d entities)", f.Len())))
			for _, e := range f.Entities() {
				fmt.Fprintln(out, detailStyle.Render(e.GUID))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of entities to create")
	cmd.Flags().StringVar(&name, "name", "", "name given to every new entity")
	cmd.Flags().StringVar(&mtype, "mtype", "", "mtype given to every new entity")
	return cmd
}
