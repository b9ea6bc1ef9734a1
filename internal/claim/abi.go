package claim

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

const allowlistProofTuple = `{"name":"_allowlistProof","type":"tuple","components":[
	{"name":"proof","type":"bytes32[]"},
	{"name":"quantityLimitPerWallet","type":"uint256"},
	{"name":"pricePerToken","type":"uint256"},
	{"name":"currency","type":"address"}]}`

const claimConditionTuple = `{"name":"condition","type":"tuple","components":[
	{"name":"startTimestamp","type":"uint256"},
	{"name":"maxClaimableSupply","type":"uint256"},
	{"name":"supplyClaimed","type":"uint256"},
	{"name":"quantityLimitPerWallet","type":"uint256"},
	{"name":"merkleRoot","type":"bytes32"},
	{"name":"pricePerToken","type":"uint256"},
	{"name":"currency","type":"address"},
	{"name":"metadata","type":"string"}]}`

// dropERC721JSON covers the claim surface of a single-token drop contract.
const dropERC721JSON = `[
{"type":"function","name":"claim","stateMutability":"payable","outputs":[],"inputs":[
	{"name":"_receiver","type":"address"},
	{"name":"_quantity","type":"uint256"},
	{"name":"_currency","type":"address"},
	{"name":"_pricePerToken","type":"uint256"},
	` + allowlistProofTuple + `,
	{"name":"_data","type":"bytes"}]},
{"type":"function","name":"getActiveClaimConditionId","stateMutability":"view","inputs":[],
	"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"getClaimConditionById","stateMutability":"view",
	"inputs":[{"name":"_conditionId","type":"uint256"}],
	"outputs":[` + claimConditionTuple + `]}
]`

// dropERC1155JSON covers the claim surface of a multi-token (edition) drop.
const dropERC1155JSON = `[
{"type":"function","name":"claim","stateMutability":"payable","outputs":[],"inputs":[
	{"name":"_receiver","type":"address"},
	{"name":"_tokenId","type":"uint256"},
	{"name":"_quantity","type":"uint256"},
	{"name":"_currency","type":"address"},
	{"name":"_pricePerToken","type":"uint256"},
	` + allowlistProofTuple + `,
	{"name":"_data","type":"bytes"}]},
{"type":"function","name":"getActiveClaimConditionId","stateMutability":"view",
	"inputs":[{"name":"_tokenId","type":"uint256"}],
	"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"getClaimConditionById","stateMutability":"view",
	"inputs":[{"name":"_tokenId","type":"uint256"},{"name":"_conditionId","type":"uint256"}],
	"outputs":[` + claimConditionTuple + `]}
]`

const erc20JSON = `[
{"type":"function","name":"allowance","stateMutability":"view",
	"inputs":[{"name":"owner","type":"address"},{"name":"spender","type":"address"}],
	"outputs":[{"name":"","type":"uint256"}]},
{"type":"function","name":"approve","stateMutability":"nonpayable",
	"inputs":[{"name":"spender","type":"address"},{"name":"amount","type":"uint256"}],
	"outputs":[{"name":"","type":"bool"}]}
]`

var (
	dropERC721ABI  = mustParse(dropERC721JSON)
	dropERC1155ABI = mustParse(dropERC1155JSON)
	erc20ABI       = mustParse(erc20JSON)
)

func mustParse(s string) abi.ABI {
	a, err := abi.JSON(strings.NewReader(s))
	if err != nil {
		panic("claim: bad embedded ABI: " + err.Error())
	}
	return a
}

// AllowlistProof is the allowlist argument of claim. Public claims send
// EmptyAllowlistProof.
type AllowlistProof struct {
	Proof                  [][32]byte
	QuantityLimitPerWallet *big.Int
	PricePerToken          *big.Int
	Currency               common.Address
}

// EmptyAllowlistProof is the proof sent when the claimer is not on an
// allowlist: no proof, no limit override and a max-uint price so the
// condition's own price applies.
func EmptyAllowlistProof() AllowlistProof {
	return AllowlistProof{
		Proof:                  [][32]byte{},
		QuantityLimitPerWallet: big.NewInt(0),
		PricePerToken:          new(big.Int).Set(abi.MaxUint256),
		Currency:               common.Address{},
	}
}

// ClaimCondition is one phase of a drop as stored on chain.
type ClaimCondition struct {
	StartTimestamp         *big.Int
	MaxClaimableSupply     *big.Int
	SupplyClaimed          *big.Int
	QuantityLimitPerWallet *big.Int
	MerkleRoot             [32]byte
	PricePerToken          *big.Int
	Currency               common.Address
	Metadata               string
}
