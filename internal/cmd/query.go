package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	queryKind string
	queryName string
)

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Query the fact index",
	Long: `Query reads facts back from the .cfx/facts.db index populated by
"cfx extract --index". Each matching fact is printed as the JSON line that
was originally appended to its output file.`,
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryKind, "kind", "", "Filter by fact kind (declaration|enum|relation)")
	queryCmd.Flags().StringVar(&queryName, "name", "", "Filter by fact name")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	st, err := openStore()
	if err != nil {
		return err
	}
	defer st.Close()

	results, err := st.Query(queryKind, queryName)
	if err != nil {
		return err
	}

	for _, f := range results {
		fmt.Fprintln(cmd.OutOrStdout(), f.Payload)
	}
	if verbose {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d facts\n", len(results))
	}
	return nil
}
