package cmd

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/rpc"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
)

var rpcCmd = &cobra.Command{
	Use:   "rpc",
	Short: "Manage RPC endpoints",
}

var rpcAddCmd = &cobra.Command{
	Use:   "add <network> <url>",
	Short: "Add a custom RPC URL for a network",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return addRPC(cmd, args[0], args[1])
	},
}

var rpcRemoveCmd = &cobra.Command{
	Use:   "remove <network> <url>",
	Short: "Remove a custom RPC URL",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		network, url := args[0], args[1]
		if err := cfg.RemoveRPC(network, url); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Removed RPC for %s: %s", network, url)))
		return nil
	},
}

var rpcListCmd = &cobra.Command{
	Use:   "list <network>",
	Short: "List the RPCs a mint on a network will choose from",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		c, err := chain.NewRegistry().GetByName(args[0])
		if err != nil {
			return fmt.Errorf("unknown network %q", args[0])
		}

		fmt.Fprintln(out, ui.StyleTitle.Render(fmt.Sprintf("RPCs for %s (%s)", c.Label(cfg.NetworkMode), cfg.NetworkMode)))
		for _, r := range cfg.GetRPCs(c.Name) {
			fmt.Fprintf(out, "  %s %s\n", ui.Meta("(custom) "), r)
		}
		for _, r := range c.RPCs(cfg.NetworkMode) {
			fmt.Fprintf(out, "  %s %s\n", ui.Meta("(builtin)"), r)
		}
		return nil
	},
}

var rpcTestCmd = &cobra.Command{
	Use:   "test <network>",
	Short: "Probe every RPC for a network and show which one a mint would use",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		c, err := chain.NewRegistry().GetByName(args[0])
		if err != nil {
			return fmt.Errorf("unknown network %q", args[0])
		}
		algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
		if err != nil {
			return err
		}

		urls := cfg.RPCCandidates(c.Name, c.RPCs(cfg.NetworkMode))
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		endpoints := rpc.Probe(ctx, urls, c.ID(cfg.NetworkMode))
		sort.SliceStable(endpoints, func(i, j int) bool {
			if endpoints[i].Healthy() != endpoints[j].Healthy() {
				return endpoints[i].Healthy()
			}
			return endpoints[i].Latency < endpoints[j].Latency
		})

		t := ui.NewTable([]ui.Column{
			{Title: "RPC URL", Width: 44},
			{Title: "Latency", Width: 10},
			{Title: "Block #", Width: 12},
			{Title: "Status", Width: 24},
		})
		for _, e := range endpoints {
			if !e.Healthy() {
				t.AddRow(ui.Row{e.URL, "-", "-", e.Err.Error()})
				continue
			}
			t.AddRow(ui.Row{e.URL, fmt.Sprintf("%dms", e.Latency.Milliseconds()), fmt.Sprintf("%d", e.BlockNumber), "healthy"})
		}
		fmt.Fprintln(out, t.Render())

		winner, err := rpc.NewPicker(algo).Pick(endpoints)
		if err != nil {
			fmt.Fprintln(out, ui.Err(err.Error()))
			return nil
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("%s would use %s", algo, winner.URL)))
		return nil
	},
}

var rpcAlgorithmCmd = &cobra.Command{
	Use:   "algorithm",
	Short: "Show or set the RPC selection algorithm",
}

var rpcAlgorithmSetCmd = &cobra.Command{
	Use:   "set <fastest|round-robin|failover>",
	Short: "Set the RPC selection algorithm",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		algo, err := rpc.ParseAlgorithm(args[0])
		if err != nil {
			return err
		}
		cfg.RPCAlgorithm = string(algo)
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("RPC algorithm set to %q", algo)))
		return nil
	},
}

func init() {
	rpcAlgorithmCmd.AddCommand(rpcAlgorithmSetCmd)
	rpcCmd.AddCommand(rpcAddCmd, rpcRemoveCmd, rpcListCmd, rpcTestCmd, rpcAlgorithmCmd)
}

func addRPC(cmd *cobra.Command, network, url string) error {
	c, err := chain.NewRegistry().GetByName(network)
	if err != nil {
		return fmt.Errorf("unknown network %q", network)
	}
	if err := cfg.AddRPC(c.Name, url); err != nil {
		return err
	}
	if err := cfg.Save(); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Added RPC for %s: %s", ui.ChainName(c.Name), url)))
	return nil
}
