package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Mohsinsiddi/w3mint/internal/ui"
	"github.com/Mohsinsiddi/w3mint/internal/wallet"
)

var (
	walletKeyFlag string
	walletYesFlag bool
)

// openKeystore is swapped for an in-memory store in tests.
var openKeystore = func() (wallet.KeyStore, error) {
	return wallet.OpenKeystore(cfg.KeysDir())
}

var walletCmd = &cobra.Command{
	Use:   "wallet",
	Short: "Manage wallets",
}

var walletAddCmd = &cobra.Command{
	Use:   "add <name> [address]",
	Short: "Add a wallet",
	Long: `Add a signing wallet with --key (the key goes to the OS keychain), or a
watch-only address that can be used as a mint recipient.

  w3mint wallet add main --key 0x...
  w3mint wallet add cold 0xYourAddress`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		name := args[0]

		if walletKeyFlag != "" {
			mgr, err := newWalletManager(true)
			if err != nil {
				return err
			}
			w, err := mgr.AddWithKey(name, walletKeyFlag)
			if err != nil {
				return err
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Signing wallet %q added: %s", name, ui.Addr(w.Address))))
			fmt.Fprintln(out, ui.Hint(fmt.Sprintf("Set as default with: w3mint wallet use %s", name)))
			return nil
		}

		if len(args) < 2 {
			return errors.New("address required for watch-only wallet\n  Usage: w3mint wallet add <name> <address>\n  Or for signing: w3mint wallet add <name> --key <private-key>")
		}
		mgr, err := newWalletManager(false)
		if err != nil {
			return err
		}
		if err := mgr.AddWatchOnly(name, args[1]); err != nil {
			return err
		}
		w, _ := mgr.Get(name)
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Watch-only wallet %q added: %s", name, ui.Addr(w.Address))))
		return nil
	},
}

var walletListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all wallets",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		mgr, err := newWalletManager(false)
		if err != nil {
			return err
		}
		wallets, err := mgr.List()
		if err != nil {
			return err
		}

		if len(wallets) == 0 {
			fmt.Fprintln(out, ui.Info("No wallets configured yet."))
			fmt.Fprintln(out, ui.Hint("Add one with: w3mint wallet add main --key <private-key>"))
			return nil
		}

		t := ui.NewTable([]ui.Column{
			{Title: "Name", Width: 16},
			{Title: "Address", Width: 44},
			{Title: "Type", Width: 12},
			{Title: "Default", Width: 8},
		})
		def := mgr.Default()
		for _, w := range wallets {
			mark := ""
			if def != nil && def.Name == w.Name {
				mark = "✓"
			}
			t.AddRow(ui.Row{w.Name, w.Address, walletTypeLabel(w.Type), mark})
		}
		fmt.Fprintln(out, t.Render())
		fmt.Fprintln(out, ui.Meta(fmt.Sprintf("%d wallet(s) configured", len(wallets))))
		return nil
	},
}

var walletRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a wallet and its stored key",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		name := args[0]
		if !walletYesFlag && !ui.ConfirmDanger(cmd.InOrStdin(), out, fmt.Sprintf("Remove wallet %q?", name)) {
			fmt.Fprintln(out, ui.Meta("Cancelled."))
			return nil
		}

		mgr, err := newWalletManager(false)
		if err != nil {
			return err
		}
		w, err := mgr.Get(name)
		if err != nil {
			return err
		}
		if w.CanSign() {
			if mgr, err = newWalletManager(true); err != nil {
				return err
			}
		}
		if err := mgr.Remove(name); err != nil {
			return err
		}
		if cfg.DefaultWallet == name {
			cfg.DefaultWallet = ""
			if err := cfg.Save(); err != nil {
				return err
			}
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Wallet %q removed.", name)))
		return nil
	},
}

var walletUseCmd = &cobra.Command{
	Use:   "use <name>",
	Short: "Set the default wallet",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		mgr, err := newWalletManager(false)
		if err != nil {
			return err
		}
		if err := mgr.SetDefault(name); err != nil {
			return err
		}
		cfg.DefaultWallet = name
		if err := cfg.Save(); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Default wallet set to %q.", name)))
		return nil
	},
}

func init() {
	walletAddCmd.Flags().StringVar(&walletKeyFlag, "key", "", "private key for a signing wallet (stored in the OS keychain)")
	walletRemoveCmd.Flags().BoolVarP(&walletYesFlag, "yes", "y", false, "skip the confirmation prompt")
	walletCmd.AddCommand(walletAddCmd, walletListCmd, walletRemoveCmd, walletUseCmd)
}

// walletTypeLabel converts an internal wallet type to a user-friendly label.
func walletTypeLabel(t string) string {
	switch t {
	case wallet.TypeSigning:
		return "signing"
	default:
		return t
	}
}

// newWalletManager creates a Manager backed by the config-dir JSON store.
// withKeys opens the OS keychain, which may prompt.
func newWalletManager(withKeys bool) (*wallet.Manager, error) {
	opts := []wallet.Option{wallet.WithStore(wallet.NewJSONStore(cfg.WalletsPath()))}
	if withKeys {
		ks, err := openKeystore()
		if err != nil {
			return nil, fmt.Errorf("opening keychain: %w", err)
		}
		opts = append(opts, wallet.WithKeystore(ks))
	}
	return wallet.NewManager(opts...), nil
}

// walletConnector lets the mint card connect any stored signing wallet.
type walletConnector struct {
	mgr  *wallet.Manager
	conn *wallet.Connection
}

func (c walletConnector) Accounts() []ui.PickerItem {
	wallets, err := c.mgr.List()
	if err != nil {
		return nil
	}
	var items []ui.PickerItem
	for _, w := range wallets {
		if !w.CanSign() {
			continue
		}
		items = append(items, ui.PickerItem{Label: w.Name, SubLabel: ui.TruncateAddr(w.Address), Value: w.Name})
	}
	return items
}

func (c walletConnector) Connect(name string) error {
	w, err := c.mgr.Get(name)
	if err != nil {
		return err
	}
	return c.conn.Connect(w)
}

func (c walletConnector) Disconnect() { c.conn.Disconnect() }
