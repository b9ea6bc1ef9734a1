package ui

import (
	"context"
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Mohsinsiddi/w3mint/internal/mint"
)

const connectedAddr = "0x1111111111111111111111111111111111111111"

// --- test doubles ---

type fakeAccounts struct{ addr string }

func (a *fakeAccounts) ActiveAccount() (string, bool) { return a.addr, a.addr != "" }

// fakeConnector connects by setting the shared account.
type fakeConnector struct {
	accounts     *fakeAccounts
	items        []PickerItem
	connected    []string
	disconnected int
	err          error
}

func (c *fakeConnector) Accounts() []PickerItem { return c.items }

func (c *fakeConnector) Connect(value string) error {
	c.connected = append(c.connected, value)
	if c.err != nil {
		return c.err
	}
	c.accounts.addr = value
	return nil
}

func (c *fakeConnector) Disconnect() {
	c.disconnected++
	c.accounts.addr = ""
}

// pipeSubmitter hands back an unbuffered channel the test feeds by hand.
type pipeSubmitter struct {
	requests []mint.ClaimRequest
	ch       chan mint.Outcome
}

func (s *pipeSubmitter) Submit(_ context.Context, req mint.ClaimRequest) <-chan mint.Outcome {
	s.requests = append(s.requests, req)
	s.ch = make(chan mint.Outcome, 3)
	return s.ch
}

func dropConfig(price string) mint.Config {
	cfg := mint.Config{
		Contract: mint.Contract{
			Address: common.HexToAddress("0x2222222222222222222222222222222222222222"),
			Network: "base",
		},
		DisplayName:    "Genesis Pass",
		Description:    "First edition",
		CurrencySymbol: "ETH",
		Standard:       mint.StandardERC721,
	}
	if price != "" {
		p := decimal.RequireFromString(price)
		cfg.PricePerToken = &p
	}
	return cfg
}

type harness struct {
	model     MintModel
	accounts  *fakeAccounts
	submitter *pipeSubmitter
	toasts    *Toasts
	connector *fakeConnector
}

func newHarness(t *testing.T, cfg mint.Config, account string) *harness {
	t.Helper()
	h := &harness{
		accounts:  &fakeAccounts{addr: account},
		submitter: &pipeSubmitter{},
		toasts:    NewToasts(0),
	}
	h.connector = &fakeConnector{
		accounts: h.accounts,
		items:    []PickerItem{{Label: "main", SubLabel: "0x3333…3333", Value: "0x3333333333333333333333333333333333333333"}},
	}
	form := mint.NewForm(cfg, h.accounts, h.submitter, mint.WithNotifier(h.toasts))
	h.model = NewMintModel(form, WithToasts(h.toasts), WithConnector(h.connector))
	return h
}

func (h *harness) send(msg tea.Msg) tea.Cmd {
	next, cmd := h.model.Update(msg)
	h.model = next.(MintModel)
	return cmd
}

func (h *harness) keys(keys ...tea.KeyMsg) {
	for _, k := range keys {
		h.send(k)
	}
}

// deliver pushes o through the submitter channel and the model's wait loop.
func (h *harness) deliver(t *testing.T, o mint.Outcome) {
	t.Helper()
	require.NotNil(t, h.submitter.ch, "nothing was submitted")
	h.submitter.ch <- o
	h.send(waitOutcome(h.submitter.ch)())
}

func (h *harness) toastMessages() []string {
	var out []string
	for _, it := range h.toasts.Items() {
		out = append(out, it.Message)
	}
	return out
}

func key(t tea.KeyType) tea.KeyMsg { return tea.KeyMsg{Type: t} }

func runes(s string) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)} }

var (
	tab   = key(tea.KeyTab)
	enter = key(tea.KeyEnter)
	space = key(tea.KeySpace)
	bksp  = key(tea.KeyBackspace)
)

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

func TestMintViewEmptyWithoutPrice(t *testing.T) {
	h := newHarness(t, dropConfig(""), connectedAddr)
	assert.Empty(t, h.model.View())
}

func TestMintViewShowsDropDetails(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), connectedAddr)
	view := h.model.View()
	assert.Contains(t, view, "Genesis Pass")
	assert.Contains(t, view, "First edition")
	assert.Contains(t, view, "0.1 ETH/each")
	assert.Contains(t, view, "Mint 1 NFT")
	assert.Contains(t, view, "no image")
	assert.NotContains(t, view, "terms of service")
}

func TestMintViewFreeDrop(t *testing.T) {
	h := newHarness(t, dropConfig("0"), connectedAddr)
	view := h.model.View()
	assert.Contains(t, view, "FREE")
	assert.NotContains(t, view, "/each")
}

func TestMintViewTermsFooter(t *testing.T) {
	cfg := dropConfig("0.1")
	cfg.TermsURL = "https://example.com/terms"
	h := newHarness(t, cfg, connectedAddr)
	view := h.model.View()
	assert.Contains(t, view, "By clicking 'Mint', you agree to our terms of service.")
	assert.Contains(t, view, "https://example.com/terms")
}

func TestMintButtonLabel(t *testing.T) {
	assert.Equal(t, "Mint 1 NFT", MintButtonLabel(1))
	assert.Equal(t, "Mint 2 NFTs", MintButtonLabel(2))
	assert.Equal(t, "Mint 40 NFTs", MintButtonLabel(40))
}

// ---------------------------------------------------------------------------
// Quantity
// ---------------------------------------------------------------------------

func TestPlusAndMinusKeysChangeQuantity(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), connectedAddr)
	h.keys(runes("+"), runes("+"))
	assert.Equal(t, int64(3), h.model.Form().Quantity().Value())

	view := h.model.View()
	assert.Contains(t, view, "Mint 3 NFTs")
	assert.Contains(t, view, "0.3 ETH")

	h.keys(runes("-"), runes("-"), runes("-"))
	assert.Equal(t, int64(1), h.model.Form().Quantity().Value())
}

func TestDecreaseButtonStopsAtOne(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), connectedAddr)
	h.keys(tab) // submit wraps to the decrease button
	require.Equal(t, focusDecrease, h.model.focus)
	h.keys(enter, space)
	assert.Equal(t, int64(1), h.model.Form().Quantity().Value())
}

func TestIncreaseButton(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), connectedAddr)
	h.keys(tab, tab, tab)
	require.Equal(t, focusIncrease, h.model.focus)
	h.keys(enter, enter)
	assert.Equal(t, int64(3), h.model.Form().Quantity().Value())
}

func TestTypedQuantity(t *testing.T) {
	h := newHarness(t, dropConfig("0.5"), connectedAddr)
	h.keys(tab, tab)
	require.Equal(t, focusQuantity, h.model.focus)

	h.keys(bksp, runes("1"), runes("2"))
	assert.Equal(t, int64(12), h.model.Form().Quantity().Value())
	assert.Contains(t, h.model.View(), "6 ETH")
}

func TestTypedQuantityIgnoresTextWithoutDigits(t *testing.T) {
	h := newHarness(t, dropConfig("0.5"), connectedAddr)
	h.keys(tab, tab, runes("+"), runes("+"))
	require.Equal(t, int64(3), h.model.Form().Quantity().Value())

	h.keys(bksp)
	assert.Equal(t, int64(3), h.model.Form().Quantity().Value(), "empty text keeps the last value")

	h.keys(runes("x"))
	assert.Equal(t, int64(3), h.model.Form().Quantity().Value())
}

func TestTypedZeroClampsToOne(t *testing.T) {
	h := newHarness(t, dropConfig("0.5"), connectedAddr)
	h.keys(tab, tab, bksp, runes("0"))
	assert.Equal(t, int64(1), h.model.Form().Quantity().Value())
}

func TestLeavingQuantityFieldResyncsText(t *testing.T) {
	h := newHarness(t, dropConfig("0.5"), connectedAddr)
	h.keys(tab, tab, bksp, runes("4"), runes("z"), tab)
	assert.Equal(t, int64(4), h.model.Form().Quantity().Value())
	assert.Equal(t, "4", h.model.qtyText)
}

// ---------------------------------------------------------------------------
// Recipient
// ---------------------------------------------------------------------------

func TestAddressFieldSkippedWhileToggleOff(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), connectedAddr)
	h.keys(tab, tab, tab, tab)
	require.Equal(t, focusCustom, h.model.focus)
	h.keys(tab)
	assert.Equal(t, focusSubmit, h.model.focus)
	assert.NotContains(t, h.model.View(), "Enter recipient address")
}

func TestCustomAddressFlow(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), connectedAddr)
	h.keys(tab, tab, tab, tab, space)
	require.True(t, h.model.Form().Recipient().UseCustom())
	assert.Contains(t, h.model.View(), "Enter recipient address")

	h.keys(tab)
	require.Equal(t, focusAddress, h.model.focus)
	h.keys(runes("0xabc"), runes("q"), bksp)

	assert.Equal(t, "0xabc", h.model.Form().Recipient().AddressText())
	assert.Equal(t, "0xabc", h.model.Form().ResolveRecipient())
	assert.Contains(t, h.model.View(), "Minting to 0xabc")
}

func TestRecipientDefaultsToConnectedAccount(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), connectedAddr)
	assert.Contains(t, h.model.View(), "Minting to "+connectedAddr)
	assert.Contains(t, h.model.View(), "Mint to a custom address")
}

// ---------------------------------------------------------------------------
// Connect prompt
// ---------------------------------------------------------------------------

func TestDisconnectedShowsConnectButton(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), "")
	view := h.model.View()
	assert.Contains(t, view, "Connect wallet")
	assert.NotContains(t, view, "Mint 1 NFT")
}

func TestConnectPromptConnectsChosenWallet(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), "")
	h.keys(enter)
	require.NotNil(t, h.model.picker)
	assert.Contains(t, h.model.View(), "Connect a wallet")
	assert.Empty(t, h.submitter.requests)

	h.keys(enter)
	assert.Nil(t, h.model.picker)
	assert.Equal(t, []string{"0x3333333333333333333333333333333333333333"}, h.connector.connected)
	assert.Contains(t, h.model.View(), "Mint 1 NFT")
}

func TestConnectPromptCancel(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), "")
	h.keys(enter, key(tea.KeyEsc))
	assert.Nil(t, h.model.picker)
	assert.False(t, h.model.quitting, "esc closes the prompt, not the program")
	assert.Empty(t, h.connector.connected)
}

func TestConnectFailureBecomesToast(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), "")
	h.connector.err = errors.New("keyring locked")
	h.keys(enter, enter)
	assert.Equal(t, []string{"keyring locked"}, h.toastMessages())
}

func TestConnectWithoutWallets(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), "")
	h.connector.items = nil
	h.keys(enter)
	assert.Nil(t, h.model.picker)
	require.Len(t, h.toasts.Items(), 1)
	assert.Equal(t, mint.LevelError, h.toasts.Items()[0].Level)
}

// ---------------------------------------------------------------------------
// Submission
// ---------------------------------------------------------------------------

func TestSubmitLifecycle(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), connectedAddr)
	h.keys(runes("+"))

	cmd := h.send(enter)
	require.NotNil(t, cmd)
	require.Len(t, h.submitter.requests, 1)
	assert.Equal(t, int64(2), h.submitter.requests[0].Base().Quantity.Int64())
	assert.Equal(t, connectedAddr, h.submitter.requests[0].Base().To)

	assert.True(t, h.model.Form().Minting())
	assert.Contains(t, h.model.View(), "Minting…")

	h.deliver(t, mint.Sent("0xfeed"))
	assert.Equal(t, []string{mint.MsgSent}, h.toastMessages())
	assert.Contains(t, h.model.View(), "0xfeed")

	h.deliver(t, mint.Confirmed("0xfeed"))
	assert.Equal(t, []string{mint.MsgSent, mint.MsgConfirmed}, h.toastMessages())
	assert.False(t, h.model.Form().Minting())
	assert.Contains(t, h.model.View(), "Mint 2 NFTs")
}

func TestSubmitWhileMintingIsIgnored(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), connectedAddr)
	h.keys(enter, enter, enter)
	assert.Len(t, h.submitter.requests, 1)
}

func TestFailureToastCarriesErrorText(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), connectedAddr)
	h.keys(enter)
	h.deliver(t, mint.Failed("", errors.New("insufficient funds for gas * price + value")))

	assert.Equal(t, []string{"insufficient funds for gas * price + value"}, h.toastMessages())
	assert.Equal(t, mint.PhaseFailed, h.model.Form().Phase())
	assert.True(t, h.model.Form().CanSubmit())
}

func TestClosedOutcomeChannelEndsWait(t *testing.T) {
	ch := make(chan mint.Outcome)
	close(ch)
	assert.IsType(t, outcomesDoneMsg{}, waitOutcome(ch)())
}

func TestSpinnerStopsAfterOutcome(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), connectedAddr)
	h.keys(enter)
	require.NotNil(t, h.send(spinTickMsg{}), "spinner keeps ticking while waiting")

	h.deliver(t, mint.Confirmed("0xfeed"))
	assert.Nil(t, h.send(spinTickMsg{}))
	assert.False(t, h.model.spinning)
}

func TestDisconnectKey(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), connectedAddr)
	assert.Contains(t, h.model.View(), "[ d ] disconnect")

	h.keys(runes("d"))
	assert.Equal(t, 1, h.connector.disconnected)
	assert.Equal(t, []string{"Wallet disconnected"}, h.toastMessages())
	view := h.model.View()
	assert.Contains(t, view, "Connect wallet")
	assert.NotContains(t, view, "[ d ] disconnect")

	h.keys(runes("d"))
	assert.Equal(t, 1, h.connector.disconnected, "nothing left to disconnect")
}

func TestDisconnectRefusedWhileMinting(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), connectedAddr)
	h.keys(enter)
	require.True(t, h.model.Form().Minting())

	h.keys(runes("d"))
	assert.Zero(t, h.connector.disconnected)
	assert.Equal(t, []string{mint.ErrMintInProgress.Error()}, h.toastMessages())
	_, ok := h.model.Form().Account()
	assert.True(t, ok)
}

func TestDisconnectKeyTypesIntoAddressField(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), connectedAddr)
	h.model.Form().ToggleCustom(true)
	h.model.focus = focusAddress
	h.keys(runes("d"))
	assert.Zero(t, h.connector.disconnected)
	assert.Equal(t, "d", h.model.Form().Recipient().AddressText())
}

// ---------------------------------------------------------------------------
// Recipient names and warnings
// ---------------------------------------------------------------------------

func TestRecipientShowsKnownName(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), connectedAddr)
	h.model = NewMintModel(h.model.Form(), WithToasts(h.toasts), WithConnector(h.connector),
		WithRecipientNames(map[string]string{connectedAddr: "alice.eth"}))

	assert.Contains(t, h.model.View(), "Minting to alice.eth (0x1111…1111)")

	h.model.Form().ToggleCustom(true)
	h.model.Form().SetAddressText("0x2222222222222222222222222222222222222222")
	assert.Contains(t, h.model.View(), "Minting to 0x2222222222222222222222222222222222222222")
}

func TestRecipientLabel(t *testing.T) {
	names := map[string]string{"0xd8da6bf26964af9d7eed9e03e53415d37aa96045": "vitalik.eth"}
	assert.Equal(t, "vitalik.eth (0xd8dA…6045)", RecipientLabel("0xd8dA6BF26964aF9D7eEd9e03E53415D37aA96045", names))
	assert.Equal(t, "0xabc", RecipientLabel("0xabc", names))
	assert.Equal(t, "0xabc", RecipientLabel("0xabc", nil))
}

func TestWarningsFollowFormState(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), connectedAddr)
	form := h.model.Form()
	h.model = NewMintModel(form, WithToasts(h.toasts), WithWarnings(func() []string {
		if form.Quantity().Value() > 2 {
			return []string{"Wallet balance is below the total"}
		}
		return nil
	}))

	assert.NotContains(t, h.model.View(), "Wallet balance")
	h.keys(runes("+"), runes("+"))
	assert.Contains(t, h.model.View(), "⚠ Wallet balance is below the total")
}

func TestQuitKeys(t *testing.T) {
	h := newHarness(t, dropConfig("0.1"), connectedAddr)
	cmd := h.send(runes("q"))
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.Empty(t, h.model.View())
}
