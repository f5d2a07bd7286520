package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newRecalcCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "recalc",
		Short: "Recompute every account balance from its journal lines",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := st.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			n, err := rt.Ledger.RecalcAll(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recalculated %d account(s)\n", n)
			return nil
		},
	}
}

func newAccountsCommand(st *state) *cobra.Command {
	accounts := &cobra.Command{
		Use:   "accounts",
		Short: "Manage the chart of accounts",
	}
	accounts.AddCommand(&cobra.Command{
		Use:   "load <coa.yaml|->",
		Short: "Upsert accounts by code from a YAML chart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, closeIn, err := openInput(cmd, args[0])
			if err != nil {
				return err
			}
			defer closeIn()

			rt, err := st.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			result, err := rt.Ledger.LoadChart(cmd.Context(), in)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d, updated %d account(s)\n", result.Created, result.Updated)
			return nil
		},
	})
	return accounts
}
