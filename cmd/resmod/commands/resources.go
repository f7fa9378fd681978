package commands

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newResourcesCommand() *cobra.Command {
	var (
		storePath string
		limit     int
		offset    int
	)

	cmd := &cobra.Command{
		Use:   "resources [type-name]",
		Short: "List or show persisted resource schemas",
		Long: `List the resource schemas persisted in a store, or show the full
schema document of one resource type.`,
		Example: `  # List stored schemas
  resmod resources --store ./resmod.db

  # Show one schema document
  resmod resources --store ./resmod.db ec2_vpc`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			store, err := openStore(ctx, storePath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if len(args) == 1 {
				stored, err := store.GetSchema(ctx, args[0])
				if err != nil {
					return err
				}
				// The document is already JSON; re-indent for readability.
				var doc any
				if err := json.Unmarshal([]byte(stored.Document), &doc); err != nil {
					return fmt.Errorf("stored schema is corrupt: %w", err)
				}
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			}

			schemas, err := store.ListSchemas(ctx, limit, offset)
			if err != nil {
				return err
			}

			if jsonOutput {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(schemas)
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "TYPE NAME\tUPSTREAM TYPE\tFORMAT\tUPDATED")
			for _, s := range schemas {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					s.TypeName, s.UpstreamType, s.Format,
					s.UpdatedAt.Format("2006-01-02 15:04:05"))
			}
			return w.Flush()
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "SQLite store path")
	cmd.Flags().IntVar(&limit, "limit", 100, "max schemas to list")
	cmd.Flags().IntVar(&offset, "offset", 0, "list offset for pagination")
	_ = cmd.MarkFlagRequired("store")

	return cmd
}
