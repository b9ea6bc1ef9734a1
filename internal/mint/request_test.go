package mint

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testContract = Contract{
	Address: common.HexToAddress("0x00000000000000000000000000000000000000d1"),
	Network: "base",
}

func TestBuildRequestMultiToken(t *testing.T) {
	cfg := Config{Contract: testContract, Standard: StandardERC1155, TokenID: big.NewInt(7)}
	q := NewQuantity()
	q.Increase()

	req, err := BuildRequest(cfg, q, "0xAAA")
	require.NoError(t, err)
	multi, ok := req.(MultiTokenClaim)
	require.True(t, ok, "erc1155 drops build a MultiTokenClaim")

	assert.Equal(t, StandardERC1155, multi.Standard())
	assert.Equal(t, 0, multi.TokenID.Cmp(big.NewInt(7)))
	assert.Equal(t, 0, multi.Quantity.Cmp(big.NewInt(2)))
	assert.True(t, multi.Quantity.IsInt64())
	assert.Equal(t, "0xAAA", multi.To)
	assert.Equal(t, testContract, multi.Contract)
}

func TestBuildRequestSingleToken(t *testing.T) {
	cfg := Config{Contract: testContract, Standard: StandardERC721, TokenID: big.NewInt(7)}
	req, err := BuildRequest(cfg, NewQuantity(), "0xBBB")
	require.NoError(t, err)

	single, ok := req.(SingleTokenClaim)
	require.True(t, ok)
	assert.Equal(t, StandardERC721, single.Standard())
	assert.Equal(t, int64(1), single.Quantity.Int64())
	assert.Equal(t, "0xBBB", single.Base().To)
}

func TestBuildRequestCopiesTokenID(t *testing.T) {
	id := big.NewInt(9)
	cfg := Config{Contract: testContract, Standard: StandardERC1155, TokenID: id}
	req, err := BuildRequest(cfg, NewQuantity(), "")
	require.NoError(t, err)

	id.SetInt64(10)
	assert.Equal(t, int64(9), req.(MultiTokenClaim).TokenID.Int64())
}

func TestBuildRequestMultiTokenNeedsTokenID(t *testing.T) {
	cfg := Config{Contract: testContract, Standard: StandardERC1155}
	req, err := BuildRequest(cfg, NewQuantity(), "0xAAA")
	assert.ErrorIs(t, err, ErrMissingTokenID)
	assert.Nil(t, req)

	cfg.TokenID = big.NewInt(0)
	req, err = BuildRequest(cfg, NewQuantity(), "0xAAA")
	require.NoError(t, err)
	assert.Equal(t, int64(0), req.(MultiTokenClaim).TokenID.Int64())
}

func TestBuildRequestLargeQuantityIsLossless(t *testing.T) {
	q := NewQuantity()
	q.SetFromText("9007199254740993") // 2^53 + 1
	req, err := BuildRequest(Config{Standard: StandardERC721}, q, "")
	require.NoError(t, err)
	assert.Equal(t, "9007199254740993", req.Base().Quantity.String())
}

func TestStandardFromFlags(t *testing.T) {
	assert.Equal(t, StandardERC1155, StandardFromFlags(true, false))
	assert.Equal(t, StandardERC1155, StandardFromFlags(true, true))
	assert.Equal(t, StandardERC721, StandardFromFlags(false, true))
	assert.Equal(t, StandardERC721, StandardFromFlags(false, false))
}

func TestParseStandard(t *testing.T) {
	for in, want := range map[string]TokenStandard{
		"erc721":   StandardERC721,
		"ERC-721":  StandardERC721,
		"1155":     StandardERC1155,
		" erc1155": StandardERC1155,
	} {
		got, err := ParseStandard(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseStandard("erc20")
	assert.Error(t, err)
}

func TestConfigValidate(t *testing.T) {
	assert.ErrorIs(t, Config{DisplayName: "x"}.Validate(), ErrMissingPrice)
	assert.ErrorIs(t, Config{DisplayName: "x", Standard: StandardERC1155}.Validate(), ErrMissingTokenID,
		"a missing token id outranks a missing price")

	cfg := testConfig("2", "ETH")
	cfg.DisplayName = ""
	assert.ErrorIs(t, cfg.Validate(), ErrMissingName)

	cfg = testConfig("2", "ETH")
	cfg.Standard = StandardERC1155
	assert.ErrorIs(t, cfg.Validate(), ErrMissingTokenID)

	cfg.TokenID = big.NewInt(0)
	assert.NoError(t, cfg.Validate())
}

func TestConfigImageRefFallsBack(t *testing.T) {
	assert.Equal(t, PlaceholderImage, Config{}.ImageRef())
	assert.Equal(t, "ipfs://cid", Config{Image: "ipfs://cid"}.ImageRef())
}
