package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/zjrosen/carreg/internal/console"
	"github.com/zjrosen/carreg/internal/registry"
	"github.com/zjrosen/carreg/internal/vehicle"
)

func newListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print every vehicle in the database",
		Long: `Print every vehicle record, ordered by registration, without starting
the interactive menu.

Example:
  carreg list
  carreg list --data fleet.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			reg, err := loadRegistry(cmd.Context(), st, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			console.NewPrinter(cmd.OutOrStdout()).List(reg.List())
			return nil
		},
	}
}

func newFindCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "find <registration>",
		Short: "Show one vehicle by registration",
		Long: `Show the record for a single registration. Case and spacing are
ignored, so "ab12 cde" finds AB12CDE.

Exits non-zero when the registration is not in the database.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := a.openStore()
			if err != nil {
				return err
			}
			defer func() { _ = st.Close() }()

			reg, err := loadRegistry(cmd.Context(), st, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return printOne(cmd, reg, args[0])
		},
	}
}

func printOne(cmd *cobra.Command, reg *registry.Registry, raw string) error {
	v, err := reg.Find(raw)
	if err != nil {
		return fmt.Errorf("car not found: %w", err)
	}
	console.NewPrinter(cmd.OutOrStdout()).Details(vehicle.NormalizeRegistration(raw), v)
	return nil
}
