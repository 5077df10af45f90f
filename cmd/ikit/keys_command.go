package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"ikit/internal/transform"
)

func newKeysCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:         "keys",
		Short:       "List transformation parameter names and their URL codes",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		Args:        cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			keys := transform.DefaultKeys
			names := keys.Names()
			if asJSON {
				mapping := make(map[string]string, len(names))
				for _, name := range names {
					mapping[name] = keys.Resolve(name)
				}
				return writeJSON(cmd, mapping)
			}
			rows := make([][]string, 0, len(names))
			for _, name := range names {
				rows = append(rows, []string{name, keys.Resolve(name)})
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]column{{title: "Name"}, {title: "Code"}}, rows))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}
