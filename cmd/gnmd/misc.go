package main

import (
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/genemede/gnmd/pkg/config"
	"github.com/genemede/gnmd/pkg/entity"
	"github.com/genemede/gnmd/pkg/storage"
)

func newBackupCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "backup <path>...",
		Short: "Write timestamped backup copies",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			disk := a.disk()
			for _, path := range args {
				bak, err := storage.Backup(disk, path)
				if err != nil {
					return err
				}
				a.logger.Debugf("backed up %s to %s", path, bak)
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s %s\n", okStyle.Render(okMark), path, mutedStyle.Render("-> "+bak))
			}
			return nil
		},
	}
}

func newGUIDCmd(a *app) *cobra.Command {
	var (
		count       int
		toClipboard bool
	)

	cmd := &cobra.Command{
		Use:   "guid",
		Short: "Print fresh GUIDs",
		Args:  cobra.NoArgs,
		Annotations: map[string]string{
			skipConfig: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("count must be at least 1")
			}

			guids := make([]string, count)
			for i := range guids {
				guids[i] = uuid.NewString()
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(guids, "\n"))

			if toClipboard {
				if err := clipboard.WriteAll(strings.Join(guids, "\n")); err != nil {
					return fmt.Errorf("failed to copy to clipboard: %w", err)
				}
				a.logger.Infof("copied %d guids to the clipboard", count)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 1, "number of GUIDs")
	cmd.Flags().BoolVar(&toClipboard, "copy", false, "also copy the GUIDs to the clipboard")
	return cmd
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the gnmd configuration",
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write the default configuration",
		Args:  cobra.MaximumNArgs(1),
		Annotations: map[string]string{
			skipConfig: "true",
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.configPath
			if len(args) == 1 {
				path = args[0]
			}
			if path == "" {
				p, err := config.DefaultPath()
				if err != nil {
					return err
				}
				path = p
			}

			if storage.NewDisk(0).Exists(path) && !force {
				return fmt.Errorf("%w: %s (use --force to overwrite)", entity.ErrFileExists, path)
			}
			if err := config.DefaultConfig().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", okStyle.Render(okMark), path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := yaml.Marshal(a.cfg)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if _, err := out.Write(data); err != nil {
				return err
			}
			dest := a.logger.LogPath()
			if dest == "" {
				dest = "stderr"
			}
			fmt.Fprintf(out, "# log level: %s, log output: %s\n", a.level, dest)
			return nil
		},
	}

	cmd.AddCommand(initCmd, showCmd)
	return cmd
}
