package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/claim"
	"github.com/Mohsinsiddi/w3mint/internal/config"
	"github.com/Mohsinsiddi/w3mint/internal/ens"
	"github.com/Mohsinsiddi/w3mint/internal/logger"
	"github.com/Mohsinsiddi/w3mint/internal/mint"
	"github.com/Mohsinsiddi/w3mint/internal/price"
	"github.com/Mohsinsiddi/w3mint/internal/rpc"
	"github.com/Mohsinsiddi/w3mint/internal/ui"
	"github.com/Mohsinsiddi/w3mint/internal/wallet"
)

const fiatTimeout = 3 * time.Second

var (
	mintDropFlags    dropFlags
	mintWalletFlag   string
	mintToFlag       string
	mintQuantityFlag string
	mintYesFlag      bool
	mintOneShotFlag  bool
	mintFiatFlag     string
)

var mintCmd = &cobra.Command{
	Use:   "mint [drop]",
	Short: "Open the mint card for a drop",
	Long: `Open an interactive mint card for a saved drop, or for a drop described
with flags. Pick a quantity, optionally a custom recipient, connect a wallet
and press Mint. The card follows the claim until it is mined.

With --yes the card is skipped: the claim is previewed, sent and awaited on
the console.`,
	Example: `  w3mint mint genesis
  w3mint mint genesis --quantity 3 --to vitalik.eth
  w3mint mint --network base --contract 0x... --price 0.01 --yes`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		if !mintYesFlag {
			// The card owns the terminal; diagnostics go to the log file.
			log = logger.Must(logger.Config{Debug: verbose || cfg.Debug, OutputPaths: []string{cfg.LogPath()}})
		}

		d, err := mintDrop(args)
		if err != nil {
			return err
		}
		mcfg, err := mintConfig(d)
		if err != nil {
			return err
		}

		ch, err := chain.NewRegistry().GetByName(mcfg.Contract.Network)
		if err != nil {
			return fmt.Errorf("unknown network %q, run `w3mint network list`", mcfg.Contract.Network)
		}
		mode := cfg.NetworkMode
		rpcURL, err := selectRPC(ctx, ch, mode)
		if err != nil {
			return err
		}
		client := chain.NewEVMClient(rpcURL)

		var names ens.Caller
		if nc, err := nameClient(ctx, ch, mode, client); err != nil {
			log.Warn("no Ethereum mainnet RPC for ENS", zap.Error(err))
		} else {
			names = nc
		}

		mgr, err := newWalletManager(true)
		if err != nil {
			return err
		}
		conn := wallet.NewConnection(mgr.Keystore())
		if err := connectWallet(mgr, conn, mintWalletFlag); err != nil {
			return err
		}

		sub := claim.NewSubmitter(client, conn,
			claim.WithLogger(log),
			claim.WithReceiptTimeout(cfg.ReceiptWait()),
			claim.WithChainID(ch.ID(mode)),
			claim.WithFallbackPricing(configuredPricing(mcfg)),
		)

		var (
			notifier mint.Notifier
			sp       *ui.Spinner
			toasts   = ui.NewToasts(0)
		)
		if mintYesFlag {
			sp = ui.NewSpinner(out, "Sending claim…")
			notifier = ui.ConsoleNotifier{W: out, Spinner: sp}
		} else {
			notifier = toasts
		}
		opts := []mint.Option{mint.WithLogger(log), mint.WithNotifier(notifier)}
		if mintOneShotFlag {
			opts = append(opts, mint.WithOneShot())
		}
		form := mint.NewForm(mcfg, conn, sub, opts...)
		if !form.Renderable() {
			return fmt.Errorf("drop %q has no price set, nothing to mint (add one with `w3mint drop add %s --price ...`)", d.Name, d.Name)
		}

		if mintQuantityFlag != "" && !form.SetQuantityText(mintQuantityFlag) {
			return fmt.Errorf("invalid quantity %q", mintQuantityFlag)
		}
		if mintToFlag != "" {
			to, err := resolveRecipient(ctx, names, mintToFlag)
			if err != nil {
				return err
			}
			form.ToggleCustom(true)
			form.SetAddressText(to)
		}

		account, _ := form.Account()
		run := mintRun{
			form:   form,
			chain:  ch,
			mode:   mode,
			rpcURL: rpcURL,
			conn:   conn,
			check:  readClaimCheck(ctx, client, form),
			names:  lookupNames(ctx, names, account, form.ResolveRecipient()),
		}
		if ens.IsName(mintToFlag) {
			run.names[strings.ToLower(form.ResolveRecipient())] = strings.ToLower(strings.TrimSpace(mintToFlag))
		}

		if mintYesFlag {
			return mintHeadless(ctx, out, run, sp)
		}

		model := ui.NewMintModel(form,
			ui.WithTheme(ui.DefaultTheme()),
			ui.WithToasts(toasts),
			ui.WithConnector(walletConnector{mgr: mgr, conn: conn}),
			ui.WithRecipientNames(run.names),
			ui.WithWarnings(func() []string { return run.check.warnings(form, ch) }),
			ui.WithContext(ctx),
		)
		if _, err := tea.NewProgram(model, tea.WithInput(cmd.InOrStdin()), tea.WithOutput(out)).Run(); err != nil {
			return fmt.Errorf("mint card: %w", err)
		}
		printTxResult(out, form, ch, mode)
		return nil
	},
}

// mintRun is one prepared claim: the form plus what was read about it.
type mintRun struct {
	form   *mint.Form
	chain  *chain.Chain
	mode   string
	rpcURL string
	conn   *wallet.Connection
	check  claimCheck
	names  map[string]string
}

func init() {
	mintDropFlags.register(mintCmd.Flags())
	mintCmd.Flags().StringVarP(&mintWalletFlag, "wallet", "w", "", "signing wallet to connect (default: configured default)")
	mintCmd.Flags().StringVar(&mintToFlag, "to", "", "custom recipient address or ENS name")
	mintCmd.Flags().StringVarP(&mintQuantityFlag, "quantity", "q", "", "quantity to mint (default 1)")
	mintCmd.Flags().BoolVarP(&mintYesFlag, "yes", "y", false, "skip the card and mint right away")
	mintCmd.Flags().BoolVar(&mintOneShotFlag, "one-shot", false, "keep the card locked after the first claim")
	mintCmd.Flags().StringVar(&mintFiatFlag, "fiat", "usd", "fiat currency for the --yes total estimate (empty to skip)")
}

// mintDrop returns the saved drop named in args, or an ad-hoc drop built
// from --contract and friends.
func mintDrop(args []string) (*config.Drop, error) {
	if len(args) == 1 {
		if mintDropFlags.contract != "" {
			return nil, errors.New("pass either a saved drop name or --contract, not both")
		}
		reg, err := loadDrops()
		if err != nil {
			return nil, err
		}
		return reg.Find(args[0], mintDropFlags.network)
	}
	if mintDropFlags.contract == "" {
		return nil, errors.New("no drop given\n  Usage: w3mint mint <drop>\n  Or:    w3mint mint --contract 0x... --price 0.01")
	}
	d := mintDropFlags.drop("ad-hoc")
	return &d, nil
}

// mintConfig converts d and checks it can be claimed. A drop without a price
// passes here; the form reports it as not renderable.
func mintConfig(d *config.Drop) (mint.Config, error) {
	mcfg, err := d.MintConfig()
	if err != nil {
		return mint.Config{}, err
	}
	if err := mcfg.Validate(); err != nil && !errors.Is(err, mint.ErrMissingPrice) {
		return mint.Config{}, fmt.Errorf("drop %q: %w", d.Name, err)
	}
	mcfg.CurrencySymbol = currencySymbol(mcfg)
	return mcfg, nil
}

// selectRPC probes the user's and the registry's endpoints for the chain and
// returns the one the configured algorithm prefers. Round-robin resumes
// where the previous run left off.
func selectRPC(ctx context.Context, ch *chain.Chain, mode string) (string, error) {
	algo, err := rpc.ParseAlgorithm(cfg.RPCAlgorithm)
	if err != nil {
		algo = rpc.AlgorithmFastest
	}
	urls := cfg.RPCCandidates(ch.Name, ch.RPCs(mode))
	picker := rpc.NewPicker(algo)
	picker.StartAt(cfg.Rotation(ch.Name, mode))
	u, err := rpc.Select(ctx, urls, ch.ID(mode), picker, log)
	if err != nil {
		return "", fmt.Errorf("%s: %w", ch.Label(mode), err)
	}
	if algo == rpc.AlgorithmRoundRobin && cfg.SetRotation(ch.Name, mode, picker.Next()) {
		if err := cfg.Save(); err != nil {
			log.Warn("could not save rpc rotation", zap.Error(err))
		}
	}
	return u, nil
}

// resolveRecipient returns to unchanged unless it is an ENS name, which is
// resolved through c on Ethereum mainnet.
func resolveRecipient(ctx context.Context, c ens.Caller, to string) (string, error) {
	if !ens.IsName(to) {
		return to, nil
	}
	if c == nil {
		return "", fmt.Errorf("resolving %s: no Ethereum mainnet RPC available", to)
	}
	addr, err := ens.Resolve(ctx, c, to)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", to, err)
	}
	log.Debug("ens resolved", zap.String("name", to), zap.String("address", addr.Hex()))
	return addr.Hex(), nil
}

// connectWallet connects the named wallet, or else the configured default
// when it can sign. Leaving the connection empty is not an error; the card
// prompts for a wallet.
func connectWallet(mgr *wallet.Manager, conn *wallet.Connection, name string) error {
	if name != "" {
		w, err := mgr.Get(name)
		if err != nil {
			return err
		}
		return conn.Connect(w)
	}

	var w *wallet.Wallet
	if cfg.DefaultWallet != "" {
		w, _ = mgr.Get(cfg.DefaultWallet)
	}
	if w == nil {
		w = mgr.Default()
	}
	if w == nil || !w.CanSign() {
		return nil
	}
	return conn.Connect(w)
}

// mintHeadless previews, sends and follows the claim on the console. The
// spinner is the one the form's notifier prints through.
func mintHeadless(ctx context.Context, out io.Writer, r mintRun, sp *ui.Spinner) error {
	w, ok := r.conn.Wallet()
	if !ok {
		return fmt.Errorf("%w\n  Add one with: w3mint wallet add <name> --key <private-key>", mint.ErrNotConnected)
	}
	fmt.Fprintln(out, ui.KeyValueBlock("Claim", mintPreview(ctx, r, w)))
	for _, warn := range r.check.warnings(r.form, r.chain) {
		fmt.Fprintln(out, ui.Warn(warn))
	}

	outcomes, err := r.form.Submit(ctx)
	if err != nil {
		return err
	}

	sp.Start()
	for o := range outcomes {
		r.form.Apply(o)
		if !o.Terminal() {
			sp.SetMessage("Waiting for confirmation…")
		}
	}
	sp.Stop()

	printTxResult(out, r.form, r.chain, r.mode)
	if r.form.Phase() != mint.PhaseConfirmed {
		return errors.New("mint failed")
	}
	return nil
}

// mintPreview lists what the claim will do before it is sent.
func mintPreview(ctx context.Context, r mintRun, w *wallet.Wallet) [][2]string {
	form := r.form
	mcfg := form.Config()
	sel := claim.Selector(claim.Signature(mcfg.Standard))

	pairs := [][2]string{
		{"Drop", mcfg.DisplayName},
		{"Network", r.chain.Label(r.mode)},
		{"Contract", mcfg.Contract.Address.Hex()},
		{"Standard", mcfg.Standard.Label()},
	}
	if mcfg.TokenID != nil {
		pairs = append(pairs, [2]string{"Token ID", mcfg.TokenID.String()})
	}
	pairs = append(pairs,
		[2]string{"Quantity", form.Quantity().String()},
		[2]string{"Price", form.UnitPriceLabel()},
		[2]string{"Total", form.TotalPriceLabel() + fiatEstimate(ctx, form)},
	)
	pairs = append(pairs, r.check.rows(form, r.chain)...)
	pairs = append(pairs,
		[2]string{"Recipient", ui.RecipientLabel(form.ResolveRecipient(), r.names)},
		[2]string{"Wallet", fmt.Sprintf("%s (%s)", w.Name, ui.TruncateAddr(w.Address))},
		[2]string{"RPC", r.rpcURL},
		[2]string{"Call", hexutil.Encode(sel[:])},
	)
	return pairs
}

// fiatEstimate returns " (≈ 12.34 USD)" for the form's total, or "" when the
// price feed has nothing or does not answer in time.
func fiatEstimate(ctx context.Context, form *mint.Form) string {
	mcfg := form.Config()
	if mintFiatFlag == "" || mcfg.PricePerToken == nil || mcfg.PricePerToken.IsZero() {
		return ""
	}
	total := mcfg.PricePerToken.Mul(decimal.NewFromInt(form.Quantity().Value()))

	ctx, cancel := context.WithTimeout(ctx, fiatTimeout)
	defer cancel()
	f := price.NewFetcher(mintFiatFlag)
	v, err := f.Value(ctx, total, mcfg.CurrencySymbol)
	if err != nil {
		log.Debug("fiat estimate unavailable", zap.String("symbol", mcfg.CurrencySymbol), zap.Error(err))
		return ""
	}
	return fmt.Sprintf(" (≈ %s %s)", v.StringFixed(2), strings.ToUpper(f.Currency()))
}

func printTxResult(out io.Writer, form *mint.Form, ch *chain.Chain, mode string) {
	hash := form.TxHash()
	if hash == "" {
		return
	}
	switch form.Phase() {
	case mint.PhaseConfirmed:
		fmt.Fprintln(out, ui.Success("Minted: "+ui.Addr(ch.TxURL(mode, hash))))
	case mint.PhaseSubmitted:
		fmt.Fprintln(out, ui.Info("Transaction still pending: "+ui.Addr(ch.TxURL(mode, hash))))
	default:
		fmt.Fprintln(out, ui.Err("Failed: "+ui.Addr(ch.TxURL(mode, hash))))
	}
}
