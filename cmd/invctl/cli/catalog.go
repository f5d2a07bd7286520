package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newImportCommand(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.csv|->",
		Short: "Import a product catalog feed",
		Long: `Import upserts products by SKU from a CSV feed with the columns
SKU, Name, Category, Unit Price, Tax %, Stock. Rows that fail are
reported individually and do not stop the import.`,
		Args: cobra.ExactArgs(1),
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

			result, err := rt.Catalog.Import(cmd.Context(), in)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			if err := enc.Encode(result); err != nil {
				return err
			}
			if len(result.Errors) > 0 {
				fmt.Fprintf(cmd.ErrOrStderr(), "%d row(s) failed\n", len(result.Errors))
			}
			return nil
		},
	}
}

func newExportCommand(st *state) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the product catalog as CSV",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := st.runtime(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			var out io.Writer = cmd.OutOrStdout()
			if output != "" && output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				out = f
			}
			return rt.Catalog.Export(cmd.Context(), out)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "destination file, - for stdout")
	return cmd
}

func openInput(cmd *cobra.Command, path string) (io.Reader, func(), error) {
	if path == "-" {
		return cmd.InOrStdin(), func() {}, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { _ = f.Close() }, nil
}
