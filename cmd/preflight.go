package cmd

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/claim"
	"github.com/Mohsinsiddi/w3mint/internal/ens"
	"github.com/Mohsinsiddi/w3mint/internal/mint"
)

const (
	checkTimeout = 5 * time.Second
	nameTimeout  = 3 * time.Second
)

// chainReader is the read side of the drop's RPC client.
type chainReader interface {
	claim.Caller
	GetBalance(ctx context.Context, address string) (*chain.Balance, error)
}

// claimCheck is what the chain reports about a claim before it is sent.
// Nil fields could not be read.
type claimCheck struct {
	onChain *claim.Pricing
	balance *chain.Balance
}

// readClaimCheck reads the active claim condition and the connected
// wallet's balance. Read failures are logged and leave the field nil.
func readClaimCheck(ctx context.Context, r chainReader, form *mint.Form) claimCheck {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	var c claimCheck
	if req, err := form.BuildRequest(); err == nil {
		cond, err := claim.ActiveCondition(ctx, r, req)
		if err != nil {
			log.Debug("claim condition unavailable", zap.Error(err))
		} else {
			p := cond.Pricing()
			c.onChain = &p
		}
	}
	if addr, ok := form.Account(); ok {
		bal, err := r.GetBalance(ctx, addr)
		if err != nil {
			log.Debug("balance unavailable", zap.String("address", addr), zap.Error(err))
		} else {
			c.balance = bal
		}
	}
	return c
}

// rows lists the values read for the claim preview.
func (c claimCheck) rows(form *mint.Form, ch *chain.Chain) [][2]string {
	var rows [][2]string
	if c.onChain != nil {
		rows = append(rows, [2]string{"On-chain price", onChainPriceLabel(*c.onChain, form.Config())})
	}
	if c.balance != nil {
		rows = append(rows, [2]string{"Balance", c.balance.Amount + " " + ch.NativeCurrency})
	}
	return rows
}

// warnings lists problems with sending the claim now: an on-chain price that
// differs from the drop profile, or a balance below the value the claim
// sends. It only reads the form, so the card may call it on every render.
func (c claimCheck) warnings(form *mint.Form, ch *chain.Chain) []string {
	mcfg := form.Config()
	var out []string
	if c.onChain != nil && mcfg.PricePerToken != nil && !c.onChain.Matches(configuredPricing(mcfg)) {
		out = append(out, fmt.Sprintf("The drop charges %s on-chain, not %s. The claim pays the on-chain price.",
			onChainPriceLabel(*c.onChain, mcfg), form.UnitPriceLabel()))
	}
	if c.balance != nil {
		need := c.nativeValue(form)
		if c.balance.Wei.Cmp(need) < 0 {
			out = append(out, fmt.Sprintf("Wallet balance %s %s is below the %s %s the claim sends.",
				c.balance.Amount, ch.NativeCurrency, chain.FormatUnits(need, 18), ch.NativeCurrency))
		}
	}
	return out
}

// nativeValue is the native amount the claim attaches, before gas. The
// on-chain price wins when it was read.
func (c claimCheck) nativeValue(form *mint.Form) *big.Int {
	p := configuredPricing(form.Config())
	if c.onChain != nil {
		p = *c.onChain
	}
	if !p.IsNative() {
		return new(big.Int)
	}
	return p.Total(big.NewInt(form.Quantity().Value()))
}

// configuredPricing is what the drop profile says a token costs.
func configuredPricing(mcfg mint.Config) claim.Pricing {
	return claim.Pricing{Currency: mcfg.Currency, PricePerToken: mcfg.PriceWei()}
}

// onChainPriceLabel formats p like the card's badge when it is in the drop's
// currency. A foreign currency is shown in raw units with its address.
func onChainPriceLabel(p claim.Pricing, mcfg mint.Config) string {
	raw := p.PricePerToken
	if raw == nil {
		raw = new(big.Int)
	}
	if !p.SameCurrency(configuredPricing(mcfg)) {
		return chain.FormatUnits(raw, 0) + " units of " + p.Currency.Hex() + "/each"
	}
	return mint.UnitPriceLabel(decimal.NewFromBigInt(raw, -mcfg.Decimals()), mcfg.CurrencySymbol)
}

// nameClient returns an Ethereum mainnet client for ENS lookups, reusing
// client when the drop already lives there.
func nameClient(ctx context.Context, ch *chain.Chain, mode string, client *chain.EVMClient) (*chain.EVMClient, error) {
	if ch.Name == "ethereum" && mode == chain.ModeMainnet {
		return client, nil
	}
	eth, err := chain.NewRegistry().GetByName("ethereum")
	if err != nil {
		return nil, err
	}
	u, err := selectRPC(ctx, eth, chain.ModeMainnet)
	if err != nil {
		return nil, err
	}
	return chain.NewEVMClient(u), nil
}

// lookupNames finds the verified primary ENS name of each address. Lookups
// that fail or run out of time are skipped. Keys are lower-case addresses.
func lookupNames(ctx context.Context, c ens.Caller, addrs ...string) map[string]string {
	names := make(map[string]string)
	if c == nil {
		return names
	}
	ctx, cancel := context.WithTimeout(ctx, nameTimeout)
	defer cancel()

	for _, a := range addrs {
		key := strings.ToLower(a)
		if _, done := names[key]; done || !common.IsHexAddress(a) {
			continue
		}
		name, err := ens.PrimaryName(ctx, c, common.HexToAddress(a))
		if err != nil {
			log.Debug("no primary name", zap.String("address", a), zap.Error(err))
			continue
		}
		names[key] = name
	}
	return names
}
