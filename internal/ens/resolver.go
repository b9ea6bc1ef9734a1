// Package ens resolves ENS names given as mint recipients.
package ens

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// RegistryAddress is the ENS registry, deployed at the same address on
// Ethereum mainnet and Sepolia.
var RegistryAddress = common.HexToAddress("0x00000000000C2E074eC69A0dFb2997BA6C7d2e1e")

// Function selectors.
var (
	selResolver = "0x0178b8bf" // resolver(bytes32)
	selAddr     = "0x3b3b57de" // addr(bytes32)
	selName     = "0x691f3431" // name(bytes32)
)

// Errors returned by the resolver.
var (
	ErrNoResolver = errors.New("no resolver set")
	ErrNoRecord   = errors.New("no address record")
)

// Caller runs read-only contract calls.
type Caller interface {
	CallContract(ctx context.Context, to, data string) (string, error)
}

// IsName reports whether s looks like an ENS name rather than a hex address.
func IsName(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" || common.IsHexAddress(s) || strings.HasPrefix(strings.ToLower(s), "0x") {
		return false
	}
	i := strings.LastIndex(s, ".")
	return i > 0 && i < len(s)-1
}

// Namehash implements the EIP-137 namehash. Names must already be
// normalised; no case folding happens here.
func Namehash(name string) common.Hash {
	var node common.Hash
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	for i := len(labels) - 1; i >= 0; i-- {
		label := keccak256([]byte(labels[i]))
		node = common.BytesToHash(keccak256(node.Bytes(), label))
	}
	return node
}

// Resolve returns the address name points to.
func Resolve(ctx context.Context, c Caller, name string) (common.Address, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	node := Namehash(name)

	resolver, err := resolverFor(ctx, c, node)
	if err != nil {
		return common.Address{}, fmt.Errorf("%s: %w", name, err)
	}

	out, err := c.CallContract(ctx, resolver.Hex(), selAddr+strings.TrimPrefix(node.Hex(), "0x"))
	if err != nil {
		return common.Address{}, fmt.Errorf("querying ENS resolver: %w", err)
	}
	addr, ok := wordAddress(out)
	if !ok {
		return common.Address{}, fmt.Errorf("%s: %w", name, ErrNoRecord)
	}
	return addr, nil
}

// ReverseLookup returns the primary name of addr, if one is set.
func ReverseLookup(ctx context.Context, c Caller, addr common.Address) (string, error) {
	node := Namehash(strings.ToLower(strings.TrimPrefix(addr.Hex(), "0x")) + ".addr.reverse")

	resolver, err := resolverFor(ctx, c, node)
	if err != nil {
		return "", fmt.Errorf("%s: %w", addr.Hex(), err)
	}

	out, err := c.CallContract(ctx, resolver.Hex(), selName+strings.TrimPrefix(node.Hex(), "0x"))
	if err != nil {
		return "", fmt.Errorf("querying reverse resolver: %w", err)
	}
	name, err := decodeString(out)
	if err != nil {
		return "", fmt.Errorf("decoding reverse name: %w", err)
	}
	if name == "" {
		return "", fmt.Errorf("%s: %w", addr.Hex(), ErrNoRecord)
	}
	return name, nil
}

// PrimaryName returns addr's reverse record after checking that the name
// resolves back to addr. Unverified names are reported as ErrNoRecord.
func PrimaryName(ctx context.Context, c Caller, addr common.Address) (string, error) {
	name, err := ReverseLookup(ctx, c, addr)
	if err != nil {
		return "", err
	}
	fwd, err := Resolve(ctx, c, name)
	if err != nil {
		return "", err
	}
	if fwd != addr {
		return "", fmt.Errorf("%s resolves to %s, not %s: %w", name, fwd.Hex(), addr.Hex(), ErrNoRecord)
	}
	return strings.ToLower(name), nil
}

func resolverFor(ctx context.Context, c Caller, node common.Hash) (common.Address, error) {
	out, err := c.CallContract(ctx, RegistryAddress.Hex(), selResolver+strings.TrimPrefix(node.Hex(), "0x"))
	if err != nil {
		return common.Address{}, fmt.Errorf("querying ENS registry: %w", err)
	}
	addr, ok := wordAddress(out)
	if !ok {
		return common.Address{}, ErrNoResolver
	}
	return addr, nil
}

// wordAddress reads a non-zero address from a single ABI word.
func wordAddress(hexResult string) (common.Address, bool) {
	raw, err := hexutil.Decode(hexResult)
	if err != nil || len(raw) < 32 {
		return common.Address{}, false
	}
	addr := common.BytesToAddress(raw[12:32])
	return addr, addr != (common.Address{})
}

var stringArgs = func() abi.Arguments {
	t, err := abi.NewType("string", "", nil)
	if err != nil {
		panic(err)
	}
	return abi.Arguments{{Type: t}}
}()

func decodeString(hexResult string) (string, error) {
	raw, err := hexutil.Decode(hexResult)
	if err != nil {
		return "", err
	}
	if len(raw) == 0 {
		return "", nil
	}
	vals, err := stringArgs.Unpack(raw)
	if err != nil {
		return "", err
	}
	s, _ := vals[0].(string)
	return s, nil
}

func keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
