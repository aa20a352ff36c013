package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/angler/sim/internal/content"
)

func newCheckCmd() *cobra.Command {
	var doorsPath string
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate a door table and print its entries",
		RunE: func(cmd *cobra.Command, _ []string) error {
			table := content.DefaultDoorTable()
			source := "built-in"
			if doorsPath != "" {
				t, err := content.LoadDoorTable(doorsPath)
				if err != nil {
					return err
				}
				table, source = t, doorsPath
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "door table %s: %d types\n", source, table.Count())
			table.Each(func(d *content.DoorSprites) {
				fmt.Fprintf(out, "  %-6s closed=%s open=%s opening=[%s] %s closing=[%s] %s\n",
					d.Type, d.ClosedSprite, d.OpenSprite,
					frames(d.OpenAnimation), d.OpenAnimation.Total(),
					frames(d.CloseAnimation), d.CloseAnimation.Total())
			})
			return nil
		},
	}
	cmd.Flags().StringVar(&doorsPath, "doors", "", "door table YAML file (default: built-in table)")
	return cmd
}

func frames(a content.SpriteAnimation) string {
	names := make([]string, len(a))
	for i, f := range a {
		names[i] = f.Sprite.String()
	}
	return strings.Join(names, " ")
}
