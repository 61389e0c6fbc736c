package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/zjrosen/carreg/internal/config"
)

func newInitConfigCmd(_ *app) *cobra.Command {
	var force bool

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "Write a commented default config file",
		Long: `Write the default configuration, with comments, to path
(default: .carreg/config.yaml). An existing file is kept unless --force is set.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := localConfigPath
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("config file %s already exists (use --force to overwrite)", path)
			}
			if err := config.WriteDefaultConfig(path); err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", path)
			return nil
		},
	}

	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing config file")
	return initCmd
}
