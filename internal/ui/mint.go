package ui

import (
	"context"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/Mohsinsiddi/w3mint/internal/mint"
)

// Connector lists the wallets the connect prompt offers, connects the
// chosen one and disconnects it again.
type Connector interface {
	Accounts() []PickerItem
	Connect(value string) error
	Disconnect()
}

type focus int

const (
	focusDecrease focus = iota
	focusQuantity
	focusIncrease
	focusCustom
	focusAddress
	focusSubmit
	focusCount
)

const spinEvery = 100 * time.Millisecond

type (
	outcomeMsg struct {
		outcome mint.Outcome
		ch      <-chan mint.Outcome
	}
	outcomesDoneMsg struct{}
	spinTickMsg     struct{}
)

// MintOption configures a MintModel.
type MintOption func(*MintModel)

// WithTheme sets the palette.
func WithTheme(t Theme) MintOption {
	return func(m *MintModel) { m.theme = t }
}

// WithToasts sets the toast stack to render. It should be the same stack the
// form notifies.
func WithToasts(t *Toasts) MintOption {
	return func(m *MintModel) {
		if t != nil {
			m.toasts = t
		}
	}
}

// WithConnector enables the connect prompt.
func WithConnector(c Connector) MintOption {
	return func(m *MintModel) { m.connector = c }
}

// WithRecipientNames labels known addresses with a name, e.g. their primary
// ENS name. Keys are lower-case hex addresses.
func WithRecipientNames(names map[string]string) MintOption {
	return func(m *MintModel) { m.names = names }
}

// WithWarnings shows the lines warn returns under the total. It is called on
// every render and must not block.
func WithWarnings(warn func() []string) MintOption {
	return func(m *MintModel) { m.warnings = warn }
}

// WithContext sets the context submissions run under.
func WithContext(ctx context.Context) MintOption {
	return func(m *MintModel) {
		if ctx != nil {
			m.ctx = ctx
		}
	}
}

// MintModel is the Bubble Tea model for one mint card. All form mutations
// happen in Update; outcomes from the submitter are fed back as messages.
type MintModel struct {
	form      *mint.Form
	theme     Theme
	toasts    *Toasts
	connector Connector
	names     map[string]string
	warnings  func() []string
	ctx       context.Context

	focus    focus
	qtyText  string
	picker   *Picker
	spin     int
	spinning bool
	quitting bool
}

// NewMintModel creates the card for form.
func NewMintModel(form *mint.Form, opts ...MintOption) MintModel {
	m := MintModel{
		form:   form,
		theme:  DefaultTheme(),
		toasts: NewToasts(0),
		ctx:    context.Background(),
		focus:  focusSubmit,
	}
	for _, opt := range opts {
		opt(&m)
	}
	m.qtyText = form.Quantity().String()
	return m
}

// Form returns the form behind the card.
func (m MintModel) Form() *mint.Form { return m.form }

// Init starts the toast clock.
func (m MintModel) Init() tea.Cmd {
	return toastTick()
}

// Update handles key presses and submission outcomes.
func (m MintModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case toastTickMsg:
		m.toasts.Prune(time.Time(msg))
		return m, toastTick()

	case spinTickMsg:
		if !m.awaitingOutcome() {
			m.spinning = false
			return m, nil
		}
		m.spin++
		return m, spinTick()

	case outcomeMsg:
		m.form.Apply(msg.outcome)
		return m, waitOutcome(msg.ch)

	case outcomesDoneMsg:
		return m, nil

	case tea.KeyMsg:
		if m.picker != nil {
			return m.updatePicker(msg)
		}
		return m.updateKey(msg)
	}
	return m, nil
}

func (m MintModel) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.picker.HandleKey(msg.String()) {
	case PickCancelled:
		m.picker = nil
	case PickSelected:
		item, _ := m.picker.Current()
		m.picker = nil
		if err := m.connector.Connect(item.Value); err != nil {
			m.toasts.Notify(mint.LevelError, err.Error())
		}
	}
	return m, nil
}

func (m MintModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	switch key {
	case "ctrl+c", "esc":
		m.quitting = true
		return m, tea.Quit
	case "tab", "down":
		m.moveFocus(1)
		return m, nil
	case "shift+tab", "up":
		m.moveFocus(-1)
		return m, nil
	}

	switch m.focus {
	case focusQuantity:
		m.editQuantity(msg)
		return m, nil
	case focusAddress:
		m.editAddress(msg)
		return m, nil
	}

	switch key {
	case "q":
		m.quitting = true
		return m, tea.Quit
	case "+", "=":
		m.increase()
		return m, nil
	case "-":
		m.decrease()
		return m, nil
	case "d":
		m.disconnect()
		return m, nil
	case "enter", " ":
		return m.activate()
	}
	return m, nil
}

func (m MintModel) activate() (tea.Model, tea.Cmd) {
	switch m.focus {
	case focusDecrease:
		m.decrease()
	case focusIncrease:
		m.increase()
	case focusCustom:
		m.form.ToggleCustom(!m.form.Recipient().UseCustom())
	case focusSubmit:
		if _, ok := m.form.Account(); !ok {
			m.openConnect()
			return m, nil
		}
		return m.submit()
	}
	return m, nil
}

func (m MintModel) submit() (tea.Model, tea.Cmd) {
	if !m.form.CanSubmit() {
		return m, nil
	}
	ch, err := m.form.Submit(m.ctx)
	if err != nil {
		m.toasts.Notify(mint.LevelError, err.Error())
		return m, nil
	}
	cmds := []tea.Cmd{waitOutcome(ch)}
	if !m.spinning {
		m.spinning = true
		cmds = append(cmds, spinTick())
	}
	return m, tea.Batch(cmds...)
}

func (m *MintModel) openConnect() {
	if m.connector == nil {
		m.toasts.Notify(mint.LevelError, mint.ErrNotConnected.Error())
		return
	}
	items := m.connector.Accounts()
	if len(items) == 0 {
		m.toasts.Notify(mint.LevelError, "no signing wallets available, add one with `w3mint wallet add`")
		return
	}
	m.picker = NewPicker("Connect a wallet", items)
}

// disconnect drops the connected wallet. It is refused while a claim is in
// flight.
func (m *MintModel) disconnect() {
	if m.connector == nil {
		return
	}
	if _, ok := m.form.Account(); !ok {
		return
	}
	if m.form.Minting() {
		m.toasts.Notify(mint.LevelError, mint.ErrMintInProgress.Error())
		return
	}
	m.connector.Disconnect()
	m.toasts.Notify(mint.LevelInfo, "Wallet disconnected")
}

func (m *MintModel) increase() {
	m.form.Increase()
	m.qtyText = m.form.Quantity().String()
}

func (m *MintModel) decrease() {
	m.form.Decrease()
	m.qtyText = m.form.Quantity().String()
}

func (m *MintModel) editQuantity(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyBackspace:
		m.qtyText = dropLastRune(m.qtyText)
	case tea.KeyRunes:
		s := string(msg.Runes)
		switch s {
		case "+", "=":
			m.increase()
			return
		case "-":
			m.decrease()
			return
		}
		m.qtyText += s
	default:
		return
	}
	m.form.SetQuantityText(m.qtyText)
}

func (m *MintModel) editAddress(msg tea.KeyMsg) {
	text := m.form.Recipient().AddressText()
	switch msg.Type {
	case tea.KeyBackspace:
		text = dropLastRune(text)
	case tea.KeyRunes:
		text += string(msg.Runes)
	case tea.KeySpace:
		text += " "
	default:
		return
	}
	m.form.SetAddressText(text)
}

func (m *MintModel) moveFocus(delta int) {
	if m.focus == focusQuantity {
		m.qtyText = m.form.Quantity().String()
	}
	for {
		m.focus = (m.focus + focus(delta) + focusCount) % focusCount
		if m.focus != focusAddress || m.form.Recipient().UseCustom() {
			return
		}
	}
}

func (m MintModel) awaitingOutcome() bool {
	return m.form.Minting() && m.form.Phase() == mint.PhaseSubmitted
}

func waitOutcome(ch <-chan mint.Outcome) tea.Cmd {
	return func() tea.Msg {
		o, ok := <-ch
		if !ok {
			return outcomesDoneMsg{}
		}
		return outcomeMsg{outcome: o, ch: ch}
	}
}

func spinTick() tea.Cmd {
	return tea.Tick(spinEvery, func(time.Time) tea.Msg { return spinTickMsg{} })
}

func dropLastRune(s string) string {
	r := []rune(s)
	if len(r) == 0 {
		return s
	}
	return string(r[:len(r)-1])
}

// --- view ---

// View renders the card. A form without a price renders nothing.
func (m MintModel) View() string {
	if m.quitting || !m.form.Renderable() {
		return ""
	}
	if m.picker != nil {
		return "\n" + m.picker.View()
	}

	cfg := m.form.Config()
	t := m.theme

	var sb strings.Builder
	sb.WriteString(RenderImage(cfg.ImageRef(), t) + "\n\n")
	sb.WriteString(t.title().Render(cfg.DisplayName) + "  " + t.badge().Render(m.form.UnitPriceLabel()) + "\n")
	if cfg.Description != "" {
		sb.WriteString(t.muted().Width(52).Render(cfg.Description) + "\n")
	}
	sb.WriteString("\n")

	sb.WriteString(m.quantityRow() + "\n")
	sb.WriteString(t.text().Render("Total: ") + t.title().Render(m.form.TotalPriceLabel()) + "\n")
	if m.warnings != nil {
		for _, w := range m.warnings() {
			sb.WriteString(t.level(t.Warning).Width(52).Render("⚠ "+w) + "\n")
		}
	}
	sb.WriteString("\n")

	sb.WriteString(m.recipientBlock())
	sb.WriteString("\n")

	sb.WriteString(m.submitButton() + "\n")
	if h := m.form.TxHash(); h != "" {
		sb.WriteString(t.muted().Render("tx ") + t.address().Render(h) + "\n")
	}

	if cfg.TermsURL != "" {
		sb.WriteString("\n" + t.muted().Render("By clicking 'Mint', you agree to our terms of service.") + "\n")
		sb.WriteString(t.address().Render(cfg.TermsURL) + "\n")
	}

	out := t.card().Render(strings.TrimRight(sb.String(), "\n"))
	if toasts := m.toasts.View(t); toasts != "" {
		out += "\n" + toasts
	}
	help := "  [ tab ] move   [ enter ] press   [ +/- ] quantity"
	if _, ok := m.form.Account(); ok && m.connector != nil {
		help += "   [ d ] disconnect"
	}
	out += "\n" + StyleMeta.Render(help+"   [ esc ] quit") + "\n"
	return out
}

func (m MintModel) quantityRow() string {
	t := m.theme
	q := m.form.Quantity()

	dec := t.button(m.focus == focusDecrease, q.CanDecrease()).Render("-")
	inc := t.button(m.focus == focusIncrease, true).Render("+")

	text := m.qtyText
	if m.focus == focusQuantity {
		text += "▏"
	}
	field := t.button(m.focus == focusQuantity, true).Width(8).Align(lipgloss.Center).Render(text)

	return lipgloss.JoinHorizontal(lipgloss.Center, t.text().Render("Quantity  "), dec, " ", field, " ", inc)
}

func (m MintModel) recipientBlock() string {
	t := m.theme
	r := m.form.Recipient()

	box := "[ ]"
	if r.UseCustom() {
		box = "[x]"
	}
	toggle := box + " Mint to a custom address"
	if m.focus == focusCustom {
		toggle = lipgloss.NewStyle().Foreground(t.Focus).Bold(true).Render(toggle)
	} else {
		toggle = t.text().Render(toggle)
	}

	var sb strings.Builder
	sb.WriteString(toggle + "\n")

	if r.UseCustom() {
		text := r.AddressText()
		var shown string
		if text == "" {
			shown = t.muted().Render("Enter recipient address")
		} else {
			shown = t.address().Render(text)
		}
		if m.focus == focusAddress {
			shown += "▏"
		}
		field := t.button(m.focus == focusAddress, true).Width(48).Render(shown)
		sb.WriteString(field + "\n")
	}

	if to := m.form.ResolveRecipient(); to != "" {
		sb.WriteString(t.muted().Render("Minting to ") + t.address().Render(RecipientLabel(to, m.names)) + "\n")
	}
	return sb.String()
}

func (m MintModel) submitButton() string {
	t := m.theme
	focused := m.focus == focusSubmit

	if _, ok := m.form.Account(); !ok {
		return t.button(focused, true).Render("Connect wallet")
	}
	if m.awaitingOutcome() {
		return t.button(focused, false).Render(spinnerFrame(m.spin) + " Minting…")
	}
	return t.button(focused, m.form.CanSubmit()).Render(MintButtonLabel(m.form.Quantity().Value()))
}

// RecipientLabel returns "name (0x1234…5678)" when names knows addr, and
// addr unchanged otherwise.
func RecipientLabel(addr string, names map[string]string) string {
	if name := names[strings.ToLower(addr)]; name != "" {
		return name + " (" + TruncateAddr(addr) + ")"
	}
	return addr
}

// MintButtonLabel returns the submit text for quantity q.
func MintButtonLabel(q int64) string {
	if q > 1 {
		return "Mint " + strconv.FormatInt(q, 10) + " NFTs"
	}
	return "Mint " + strconv.FormatInt(q, 10) + " NFT"
}
