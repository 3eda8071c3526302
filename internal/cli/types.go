package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

func (c *CLI) typesCommand() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "types",
		Short: "List the block type table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			reg, err := c.registry()
			if err != nil {
				return err
			}
			types := reg.Types()
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), types)
			}

			t := newTable("ID", "Name", "Flags")
			for _, typ := range types {
				t.Row(strconv.Itoa(int(typ.ID)), typ.Name, typeFlags(typ.NonInteractable, typ.Custom, typ.Math))
			}
			fmt.Fprintln(stdout, t.Render())
			printDetail("%d types · fingerprint %s", len(types), reg.Fingerprint())
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the table as JSON")
	return cmd
}

func typeFlags(nonInteractable, custom, math bool) string {
	var s string
	add := func(on bool, name string) {
		if !on {
			return
		}
		if s != "" {
			s += ", "
		}
		s += name
	}
	add(nonInteractable, "static")
	add(custom, "custom")
	add(math, "math")
	if s == "" {
		return "—"
	}
	return s
}
