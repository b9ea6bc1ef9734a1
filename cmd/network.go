package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
)

var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "List supported networks",
}

var networkListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the networks drops can be minted on",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		reg := chain.NewRegistry()
		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 12},
			{Title: "Display", Width: 16},
			{Title: "Chain ID", Width: 10},
			{Title: "Currency", Width: 9},
			{Title: "Testnet", Width: 16},
		})
		for _, c := range reg.All() {
			name := c.Name
			if name == cfg.DefaultNetwork {
				name += " *"
			}
			t.AddRow(ui.Row{
				name,
				c.DisplayName,
				fmt.Sprintf("%d", c.ID(cfg.NetworkMode)),
				c.NativeCurrency,
				c.TestnetName,
			})
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d networks, mode %s, * = default", len(reg.All()), cfg.NetworkMode)))
		return nil
	},
}

func init() {
	networkCmd.AddCommand(networkListCmd)
}
