package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/resmod/resmod/pkg/registry"
	"github.com/resmod/resmod/pkg/schema"
)

func newAliasCommand() *cobra.Command {
	var storePath string

	cmd := &cobra.Command{
		Use:   "alias <type-name> <attribute> <value>",
		Short: "Resolve an enum value or alias to its canonical form",
		Long: `Resolve a user-supplied enum value for one attribute of a persisted
resource schema. Aliases resolve to their canonical value; a value that is
already canonical is echoed back unchanged. Matching is case-sensitive and
exact.`,
		Example: `  # "-1" is how the provider spells "all protocols"
  resmod alias --store ./resmod.db ec2_security_group_egress ip_protocol all`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			typeName, attribute, value := args[0], args[1], args[2]

			store, err := openStore(ctx, storePath)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			stored, err := store.GetSchema(ctx, typeName)
			if err != nil {
				return err
			}

			var rs schema.ResourceSchema
			if err := json.Unmarshal([]byte(stored.Document), &rs); err != nil {
				return fmt.Errorf("stored schema is corrupt: %w", err)
			}

			reg := registry.New()
			if err := reg.Put(&rs); err != nil {
				return err
			}

			canonical, ok := reg.LookupAlias(typeName, attribute, value)
			if !ok {
				// Already-canonical input is echoed back; only declared
				// aliases carry a mapping.
				if def := reg.EnumFor(typeName, attribute); def != nil && def.IsCanonical(value) {
					fmt.Println(value)
					return nil
				}
				return fmt.Errorf("no enum value or alias %q on %s.%s", value, typeName, attribute)
			}

			fmt.Println(canonical)
			return nil
		},
	}

	cmd.Flags().StringVar(&storePath, "store", "", "SQLite store path")
	_ = cmd.MarkFlagRequired("store")

	return cmd
}
