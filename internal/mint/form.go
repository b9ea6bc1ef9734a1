package mint

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Errors returned by Form.Submit.
var (
	ErrNotConnected   = errors.New("no wallet connected")
	ErrMintInProgress = errors.New("a mint is already in progress")
)

// Phase is the submission state of a Form.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseSubmitted
	PhaseConfirmed
	PhaseFailed
)

func (p Phase) String() string {
	switch p {
	case PhaseSubmitted:
		return "submitted"
	case PhaseConfirmed:
		return "confirmed"
	case PhaseFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Option configures a Form.
type Option func(*Form)

// WithLogger sets the diagnostic logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(f *Form) {
		if l != nil {
			f.log = l
		}
	}
}

// WithNotifier sets the sink for lifecycle messages.
func WithNotifier(n Notifier) Option {
	return func(f *Form) {
		if n != nil {
			f.notifier = n
		}
	}
}

// WithOneShot keeps the form locked after the first submission, whatever
// its outcome. Without it the form unlocks on confirmation or failure.
func WithOneShot() Option {
	return func(f *Form) {
		f.oneShot = true
	}
}

// Form is the state behind one mint card: quantity, recipient, and the
// submission lifecycle. It is owned by a single event loop and is not safe
// for concurrent use.
type Form struct {
	cfg       Config
	accounts  AccountProvider
	submitter Submitter
	notifier  Notifier
	log       *zap.Logger
	oneShot   bool

	quantity  Quantity
	recipient Recipient

	minting bool
	phase   Phase
	txHash  string
}

// NewForm creates a form for cfg. A config without a price produces a form
// that does not render; the problem is logged once here.
func NewForm(cfg Config, accounts AccountProvider, submitter Submitter, opts ...Option) *Form {
	f := &Form{
		cfg:       cfg,
		accounts:  accounts,
		submitter: submitter,
		notifier:  nopNotifier{},
		log:       zap.NewNop(),
		quantity:  NewQuantity(),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.log = f.log.With(
		zap.String("drop", cfg.DisplayName),
		zap.String("contract", cfg.Contract.Address.Hex()),
		zap.String("network", cfg.Contract.Network),
	)
	if cfg.PricePerToken == nil {
		f.log.Error("invalid price per token")
	}
	return f
}

// Config returns the drop configuration.
func (f *Form) Config() Config { return f.cfg }

// Renderable reports whether the drop has a price and may be shown.
func (f *Form) Renderable() bool { return f.cfg.PricePerToken != nil }

// --- quantity ---

// Quantity returns the current quantity.
func (f *Form) Quantity() Quantity { return f.quantity }

// Increase adds one to the quantity.
func (f *Form) Increase() { f.quantity.Increase() }

// Decrease removes one from the quantity, stopping at 1.
func (f *Form) Decrease() { f.quantity.Decrease() }

// SetQuantityText applies typed text to the quantity; see Quantity.SetFromText.
func (f *Form) SetQuantityText(text string) bool { return f.quantity.SetFromText(text) }

// --- recipient ---

// Recipient returns the recipient state.
func (f *Form) Recipient() Recipient { return f.recipient }

// ToggleCustom shows or hides the custom address field.
func (f *Form) ToggleCustom(enabled bool) { f.recipient.ToggleCustom(enabled) }

// SetAddressText stores the custom address text.
func (f *Form) SetAddressText(text string) { f.recipient.SetAddressText(text) }

// Account returns the connected address, if any.
func (f *Form) Account() (string, bool) {
	if f.accounts == nil {
		return "", false
	}
	return f.accounts.ActiveAccount()
}

// ResolveRecipient returns the address the claim would mint to.
func (f *Form) ResolveRecipient() string {
	addr, _ := f.Account()
	return f.recipient.Resolve(addr)
}

// --- pricing ---

// UnitPriceLabel returns the per-token badge text, or "" when not renderable.
func (f *Form) UnitPriceLabel() string {
	if !f.Renderable() {
		return ""
	}
	return UnitPriceLabel(*f.cfg.PricePerToken, f.cfg.CurrencySymbol)
}

// TotalPriceLabel returns the running total for the current quantity.
func (f *Form) TotalPriceLabel() string {
	if !f.Renderable() {
		return ""
	}
	return TotalPriceLabel(*f.cfg.PricePerToken, f.quantity.Value(), f.cfg.CurrencySymbol)
}

// --- submission ---

// Minting reports whether a submission is in flight (or, with WithOneShot,
// has ever been made).
func (f *Form) Minting() bool { return f.minting }

// Phase returns the submission phase.
func (f *Form) Phase() Phase { return f.phase }

// TxHash returns the hash of the latest broadcast transaction, if any.
func (f *Form) TxHash() string { return f.txHash }

// CanSubmit reports whether the submit control is enabled.
func (f *Form) CanSubmit() bool {
	_, connected := f.Account()
	return f.Renderable() && connected && !f.minting
}

// BuildRequest assembles the claim for the current state. A new request is
// built on every call.
func (f *Form) BuildRequest() (ClaimRequest, error) {
	return BuildRequest(f.cfg, f.quantity, f.ResolveRecipient())
}

// Submit builds a request and hands it to the submitter. It returns
// immediately; outcomes arrive on the returned channel and must be passed
// back through Apply on the form's event loop.
func (f *Form) Submit(ctx context.Context) (<-chan Outcome, error) {
	if !f.Renderable() {
		return nil, ErrMissingPrice
	}
	if _, ok := f.Account(); !ok {
		return nil, ErrNotConnected
	}
	if f.minting {
		return nil, ErrMintInProgress
	}

	req, err := f.BuildRequest()
	if err != nil {
		return nil, err
	}
	f.minting = true
	f.phase = PhaseSubmitted
	f.txHash = ""

	base := req.Base()
	f.log.Info("submitting claim",
		zap.String("standard", string(req.Standard())),
		zap.String("to", base.To),
		zap.String("quantity", base.Quantity.String()),
	)
	return f.submitter.Submit(ctx, req), nil
}

// Apply records one outcome and emits its notification.
func (f *Form) Apply(o Outcome) {
	if o.TxHash != "" {
		f.txHash = o.TxHash
	}

	switch o.Kind {
	case OutcomeSent:
		f.phase = PhaseSubmitted
		f.log.Info("claim sent", zap.String("tx", o.TxHash))
		f.notifier.Notify(LevelInfo, MsgSent)

	case OutcomeConfirmed:
		f.phase = PhaseConfirmed
		f.unlock()
		f.log.Info("claim confirmed", zap.String("tx", o.TxHash))
		f.notifier.Notify(LevelSuccess, MsgConfirmed)

	case OutcomeFailed:
		f.phase = PhaseFailed
		f.unlock()
		msg := "mint failed"
		if o.Err != nil {
			msg = o.Err.Error()
		}
		f.log.Warn("claim failed", zap.String("tx", o.TxHash), zap.String("error", msg))
		f.notifier.Notify(LevelError, msg)
	}
}

func (f *Form) unlock() {
	if !f.oneShot {
		f.minting = false
	}
}
