package cmd

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/config"
	"github.com/Mohsinsiddi/w3mint/internal/mint"
	"github.com/Mohsinsiddi/w3mint/internal/sync"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
)

// dropFlags describes a drop on the command line. It backs both
// `drop add` and ad-hoc `mint --contract ...`.
type dropFlags struct {
	network        string
	contract       string
	standard       string
	erc1155        bool
	erc721         bool
	tokenID        string
	price          string
	currencySymbol string
	currency       string
	decimals       int32
	displayName    string
	description    string
	image          string
	terms          string
}

func (f *dropFlags) register(fs *pflag.FlagSet) {
	fs.StringVar(&f.network, "network", "", "network the drop lives on (default: config default_network)")
	fs.StringVar(&f.contract, "contract", "", "drop contract address")
	fs.StringVar(&f.standard, "standard", "", "token standard: erc721 or erc1155")
	fs.BoolVar(&f.erc1155, "erc1155", false, "shorthand for --standard erc1155")
	fs.BoolVar(&f.erc721, "erc721", false, "shorthand for --standard erc721")
	fs.StringVar(&f.tokenID, "token-id", "", "token id (erc1155 only)")
	fs.StringVar(&f.price, "price", "", "price per token, in whole currency units (e.g. 0.01)")
	fs.StringVar(&f.currencySymbol, "currency-symbol", "", "currency symbol shown next to prices (default: network's native coin)")
	fs.StringVar(&f.currency, "currency", "", "ERC-20 currency address (default: native coin)")
	fs.Int32Var(&f.decimals, "decimals", 0, "ERC-20 currency decimals (default 18)")
	fs.StringVar(&f.displayName, "name", "", "display name")
	fs.StringVar(&f.description, "description", "", "description")
	fs.StringVar(&f.image, "image", "", "image URL or path")
	fs.StringVar(&f.terms, "terms", "", "terms of service URL shown under the mint button")
}

// drop builds a profile. A missing --standard falls back to the boolean
// shorthands, where --erc1155 wins.
func (f *dropFlags) drop(name string) config.Drop {
	std := f.standard
	if std == "" {
		std = string(mint.StandardFromFlags(f.erc1155, f.erc721))
	}
	network := f.network
	if network == "" {
		network = cfg.DefaultNetwork
	}
	return config.Drop{
		Name:           name,
		Network:        strings.ToLower(network),
		Address:        f.contract,
		Standard:       std,
		TokenID:        f.tokenID,
		Price:          f.price,
		CurrencySymbol: f.currencySymbol,
		Currency:       f.currency,
		Decimals:       f.decimals,
		DisplayName:    f.displayName,
		Description:    f.description,
		Image:          f.image,
		TermsURL:       f.terms,
	}
}

var (
	addDropFlags    dropFlags
	dropNetworkFlag string
	dropYesFlag     bool
	dropSourceFlag  string
	dropWatchFlag   time.Duration
)

var dropCmd = &cobra.Command{
	Use:   "drop",
	Short: "Manage saved drop profiles",
}

var dropAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Save a drop profile",
	Example: `  w3mint drop add genesis --network base --contract 0x... --price 0.01
  w3mint drop add edition --network zora --contract 0x... --erc1155 --token-id 3 --price 0`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d := addDropFlags.drop(args[0])
		if _, err := chain.NewRegistry().GetByName(d.Network); err != nil {
			return fmt.Errorf("unknown network %q, run `w3mint network list`", d.Network)
		}
		if d.Price == "" {
			fmt.Fprintln(cmd.OutOrStdout(), ui.Warn("No --price given: the claim condition is read on-chain, but the mint card will not show."))
		}

		reg, err := loadDrops()
		if err != nil {
			return err
		}
		if old, err := reg.Get(d.Name, d.Network); err == nil && !dropYesFlag {
			prompt := fmt.Sprintf("Drop %q on %s already points at %s. Replace it?", d.Name, d.Network, ui.TruncateAddr(old.Address))
			if !ui.Confirm(cmd.InOrStdin(), cmd.OutOrStdout(), prompt) {
				fmt.Fprintln(cmd.OutOrStdout(), ui.Info("Kept the saved drop."))
				return nil
			}
		}
		if err := reg.Add(&d); err != nil {
			return err
		}
		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Drop %q saved on %s", d.Name, ui.ChainName(d.Network))))
		fmt.Fprintln(cmd.OutOrStdout(), ui.Hint("Mint it with: w3mint mint "+d.Name))
		return nil
	},
}

var dropListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved drops",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		reg, err := loadDrops()
		if err != nil {
			return err
		}
		drops := reg.All()
		if len(drops) == 0 {
			fmt.Fprintln(out, ui.Info("No drops saved yet."))
			fmt.Fprintln(out, ui.Hint("Add one with: w3mint drop add <name> --contract 0x... --price 0.01"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Network", Width: 10},
			{Title: "Standard", Width: 9},
			{Title: "Contract", Width: 13},
			{Title: "Price", Width: 20},
		})
		for _, d := range drops {
			t.AddRow(ui.Row{d.Name, d.Network, d.Standard, ui.TruncateAddr(d.Address), dropPriceLabel(d)})
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d drop(s) saved", len(drops))))
		return nil
	},
}

var dropShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show a saved drop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := loadDrops()
		if err != nil {
			return err
		}
		d, err := reg.Find(args[0], dropNetworkFlag)
		if err != nil {
			return err
		}
		mcfg, err := d.MintConfig()
		if err != nil {
			return err
		}

		pairs := [][2]string{
			{"Name", d.Name},
			{"Display name", mcfg.DisplayName},
			{"Network", d.Network},
			{"Contract", mcfg.Contract.Address.Hex()},
			{"Standard", mcfg.Standard.Label()},
		}
		if mcfg.TokenID != nil {
			pairs = append(pairs, [2]string{"Token ID", mcfg.TokenID.String()})
		}
		pairs = append(pairs, [2]string{"Price", dropPriceLabel(d)})
		if !mcfg.IsNativeCurrency() {
			pairs = append(pairs, [2]string{"Currency", fmt.Sprintf("%s (%d decimals)", mcfg.Currency.Hex(), mcfg.Decimals())})
		}
		if d.Description != "" {
			pairs = append(pairs, [2]string{"Description", d.Description})
		}
		pairs = append(pairs, [2]string{"Image", mcfg.ImageRef()})
		if d.TermsURL != "" {
			pairs = append(pairs, [2]string{"Terms", d.TermsURL})
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.KeyValueBlock("Drop", pairs))
		return nil
	},
}

var dropRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Delete a saved drop",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		reg, err := loadDrops()
		if err != nil {
			return err
		}
		d, err := reg.Find(args[0], dropNetworkFlag)
		if err != nil {
			return err
		}
		if !dropYesFlag && !ui.ConfirmDanger(cmd.InOrStdin(), out, fmt.Sprintf("Remove drop %q on %s?", d.Name, d.Network)) {
			fmt.Fprintln(out, ui.Meta("Cancelled."))
			return nil
		}
		if err := reg.Remove(d.Name, d.Network); err != nil {
			return err
		}
		if err := reg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Drop %q removed.", d.Name)))
		return nil
	},
}

var dropSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Pull drop profiles from a remote manifest",
	Long: `Fetch a JSON manifest ({"drops": [...]}) and merge its drops into the local
registry. --source stores the manifest URL for later runs; --watch keeps
syncing on an interval until interrupted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		reg, err := loadDrops()
		if err != nil {
			return err
		}
		s := sync.New(cfg, reg, sync.WithLogger(log))
		if dropSourceFlag != "" {
			if err := s.SetSource(dropSourceFlag); err != nil {
				return err
			}
		}

		if dropWatchFlag > 0 {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			fmt.Fprintln(out, ui.Info(fmt.Sprintf("Syncing %s every %s, Ctrl+C to stop", cfg.DropSource, dropWatchFlag)))
			return s.Watch(ctx, dropWatchFlag)
		}

		res, err := s.Run(cmd.Context())
		if errors.Is(err, sync.ErrNoSource) {
			return err
		}
		if err != nil {
			return fmt.Errorf("sync failed: %w", err)
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Synced from %s: %d added, %d updated, %d skipped",
			cfg.DropSource, res.Added, res.Updated, res.Skipped)))
		return nil
	},
}

func init() {
	addDropFlags.register(dropAddCmd.Flags())
	_ = dropAddCmd.MarkFlagRequired("contract")

	for _, c := range []*cobra.Command{dropShowCmd, dropRemoveCmd} {
		c.Flags().StringVar(&dropNetworkFlag, "network", "", "network, when the name exists on several")
	}
	dropRemoveCmd.Flags().BoolVarP(&dropYesFlag, "yes", "y", false, "skip the confirmation prompt")
	dropAddCmd.Flags().BoolVarP(&dropYesFlag, "yes", "y", false, "replace an existing drop without asking")
	dropSyncCmd.Flags().StringVar(&dropSourceFlag, "source", "", "manifest URL (saved for later runs)")
	dropSyncCmd.Flags().DurationVar(&dropWatchFlag, "watch", 0, "keep syncing at this interval (e.g. 10m)")

	dropCmd.AddCommand(dropAddCmd, dropListCmd, dropShowCmd, dropRemoveCmd, dropSyncCmd)
}

func loadDrops() (*config.DropRegistry, error) {
	reg := config.NewDropRegistry(cfg.DropsPath())
	if err := reg.Load(); err != nil {
		return nil, fmt.Errorf("loading drops: %w", err)
	}
	return reg, nil
}

// dropPriceLabel formats the stored price the way the mint card shows it.
func dropPriceLabel(d *config.Drop) string {
	mcfg, err := d.MintConfig()
	if err != nil || mcfg.PricePerToken == nil {
		return "-"
	}
	return mint.UnitPriceLabel(*mcfg.PricePerToken, currencySymbol(mcfg))
}

// currencySymbol returns the configured symbol, or the network's native coin
// for native-priced drops.
func currencySymbol(mcfg mint.Config) string {
	if mcfg.CurrencySymbol != "" || !mcfg.IsNativeCurrency() {
		return mcfg.CurrencySymbol
	}
	if c, err := chain.NewRegistry().GetByName(mcfg.Contract.Network); err == nil {
		return c.NativeCurrency
	}
	return ""
}
