package claim

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/Mohsinsiddi/w3mint/internal/mint"
)

// Caller runs read-only contract calls.
type Caller interface {
	CallContract(ctx context.Context, to, data string) (string, error)
}

// ActiveCondition reads the claim phase currently open on the drop that req
// targets.
func ActiveCondition(ctx context.Context, c Caller, req mint.ClaimRequest) (*ClaimCondition, error) {
	contract := req.Base().Contract.Address

	a := dropERC721ABI
	var idArgs []interface{}
	if r, ok := req.(mint.MultiTokenClaim); ok {
		a = dropERC1155ABI
		idArgs = []interface{}{r.TokenID}
	}

	out, err := call(ctx, c, a, contract, "getActiveClaimConditionId", idArgs...)
	if err != nil {
		return nil, fmt.Errorf("reading active claim condition: %w", err)
	}
	condID, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("reading active claim condition: unexpected %T", out[0])
	}

	out, err = call(ctx, c, a, contract, "getClaimConditionById", append(idArgs, condID)...)
	if err != nil {
		return nil, fmt.Errorf("reading claim condition %s: %w", condID, err)
	}
	cond, ok := abi.ConvertType(out[0], new(ClaimCondition)).(*ClaimCondition)
	if !ok {
		return nil, fmt.Errorf("reading claim condition %s: unexpected %T", condID, out[0])
	}
	return cond, nil
}

// Pricing returns the condition's price and currency.
func (c *ClaimCondition) Pricing() Pricing {
	return Pricing{Currency: c.Currency, PricePerToken: c.PricePerToken}
}

// Allowance reads how much of token spender may pull from owner.
func Allowance(ctx context.Context, c Caller, token, owner, spender common.Address) (*big.Int, error) {
	out, err := call(ctx, c, erc20ABI, token, "allowance", owner, spender)
	if err != nil {
		return nil, fmt.Errorf("reading allowance: %w", err)
	}
	n, ok := out[0].(*big.Int)
	if !ok {
		return nil, fmt.Errorf("reading allowance: unexpected %T", out[0])
	}
	return n, nil
}

// EncodeApprove builds approve(spender, amount) calldata.
func EncodeApprove(spender common.Address, amount *big.Int) ([]byte, error) {
	return erc20ABI.Pack("approve", spender, amount)
}

func call(ctx context.Context, c Caller, a abi.ABI, to common.Address, method string, args ...interface{}) ([]interface{}, error) {
	data, err := a.Pack(method, args...)
	if err != nil {
		return nil, err
	}
	res, err := c.CallContract(ctx, to.Hex(), hexutil.Encode(data))
	if err != nil {
		return nil, err
	}
	raw, err := hexutil.Decode(res)
	if err != nil {
		return nil, fmt.Errorf("decoding %s result: %w", method, err)
	}
	if len(raw) == 0 {
		return nil, fmt.Errorf("%s returned no data (is %s a drop contract?)", method, to.Hex())
	}
	out, err := a.Unpack(method, raw)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s returned no values", method)
	}
	return out, nil
}
