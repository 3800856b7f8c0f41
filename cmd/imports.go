package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/housing-cli/internal/model"
	"github.com/sells-group/housing-cli/internal/store"
)

var importsCmd = &cobra.Command{
	Use:   "imports",
	Short: "List recorded imports, newest first",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("imports"); err != nil {
			return err
		}
		st, err := openStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		kind, _ := cmd.Flags().GetString("kind")
		limit, _ := cmd.Flags().GetInt("limit")
		imports, err := st.ListImports(ctx, store.ImportFilter{Kind: model.ImportKind(kind), Limit: limit})
		if err != nil {
			return eris.Wrap(err, "imports")
		}

		if len(imports) == 0 {
			fmt.Fprintln(os.Stderr, "No imports found.")
			return nil
		}
		formatImports(os.Stdout, imports)
		return nil
	},
}

// formatImports writes a tabular list of imports to out.
func formatImports(out io.Writer, imports []model.Import) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "ID\tKIND\tROWS\tCREATED\tSOURCE")
	_, _ = fmt.Fprintln(w, "--\t----\t----\t-------\t------")
	for _, imp := range imports {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n",
			truncateID(imp.ID),
			imp.Kind,
			imp.Rows,
			imp.CreatedAt.Format("2006-01-02 15:04"),
			imp.Source,
		)
	}
	_ = w.Flush()
}

// truncateID returns the first 8 characters of a UUID for compact display.
func truncateID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func init() {
	importsCmd.Flags().String("kind", "", "filter by kind (census, coordinates)")
	importsCmd.Flags().Int("limit", 50, "max number of imports to display")
	rootCmd.AddCommand(importsCmd)
}
