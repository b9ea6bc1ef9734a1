package claim

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"github.com/Mohsinsiddi/w3mint/internal/chain"
	"github.com/Mohsinsiddi/w3mint/internal/mint"
	"github.com/Mohsinsiddi/w3mint/internal/wallet"
)

const (
	defaultReceiptTimeout = 3 * time.Minute
	// Estimates are padded by this percentage; claim gas varies with
	// supply counters touched between estimate and inclusion.
	gasBufferPercent = 20
)

// ErrWrongChain is returned when the RPC serves a different chain than the drop.
var ErrWrongChain = errors.New("rpc endpoint is on the wrong chain")

// Backend is the chain access a Submitter needs. *chain.EVMClient satisfies it.
type Backend interface {
	Caller
	ChainID(ctx context.Context) (int64, error)
	GasPrice(ctx context.Context) (*big.Int, error)
	GetPendingNonce(ctx context.Context, address string) (uint64, error)
	EstimateGas(ctx context.Context, from, to, data string, value *big.Int) (uint64, error)
	SendRawTransaction(ctx context.Context, rawTx string) (string, error)
	WaitForReceipt(ctx context.Context, hash string, timeout time.Duration) (*chain.TxReceipt, error)
}

// SignerSource hands out the signer of the connected wallet.
// *wallet.Connection satisfies it.
type SignerSource interface {
	Signer() (*wallet.Signer, error)
}

// Option configures a Submitter.
type Option func(*Submitter)

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Submitter) {
		if l != nil {
			s.log = l
		}
	}
}

// WithReceiptTimeout bounds how long a submission waits to be mined.
func WithReceiptTimeout(d time.Duration) Option {
	return func(s *Submitter) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithChainID pins the chain the drop lives on. Submissions through an RPC
// serving another chain fail before anything is signed.
func WithChainID(id int64) Option {
	return func(s *Submitter) {
		s.chainID = id
	}
}

// WithFallbackPricing sets the price used when the drop's claim condition
// cannot be read.
func WithFallbackPricing(p Pricing) Option {
	return func(s *Submitter) {
		s.fallback = &p
	}
}

// Submitter turns claim requests into signed drop-contract transactions.
type Submitter struct {
	backend  Backend
	signers  SignerSource
	log      *zap.Logger
	timeout  time.Duration
	chainID  int64
	fallback *Pricing
}

// NewSubmitter creates a Submitter.
func NewSubmitter(backend Backend, signers SignerSource, opts ...Option) *Submitter {
	s := &Submitter{
		backend: backend,
		signers: signers,
		log:     zap.NewNop(),
		timeout: defaultReceiptTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit sends req in the background. The returned channel yields Sent once
// the claim is broadcast, then Confirmed or Failed, and is closed. The
// submission outlives ctx cancellation; only the receipt timeout bounds it.
func (s *Submitter) Submit(ctx context.Context, req mint.ClaimRequest) <-chan mint.Outcome {
	out := make(chan mint.Outcome, 3)
	ctx = context.WithoutCancel(ctx)

	go func() {
		defer close(out)

		hash, err := s.send(ctx, req)
		if err != nil {
			s.log.Warn("claim not sent", zap.Error(err))
			out <- mint.Failed(hash, err)
			return
		}
		out <- mint.Sent(hash)

		receipt, err := s.backend.WaitForReceipt(ctx, hash, s.timeout)
		if err != nil {
			s.log.Warn("claim not confirmed", zap.String("tx", hash), zap.Error(err))
			out <- mint.Failed(hash, err)
			return
		}
		s.log.Info("claim mined",
			zap.String("tx", hash),
			zap.Uint64("block", receipt.BlockNumber),
			zap.Uint64("gas_used", receipt.GasUsed),
		)
		out <- mint.Confirmed(hash)
	}()

	return out
}

// send builds, signs and broadcasts the claim, approving an ERC-20 spend
// first when needed. It returns the claim transaction hash.
func (s *Submitter) send(ctx context.Context, req mint.ClaimRequest) (string, error) {
	signer, err := s.signers.Signer()
	if err != nil {
		return "", err
	}
	if _, err := Recipient(req); err != nil {
		return "", err
	}

	chainID, err := s.backend.ChainID(ctx)
	if err != nil {
		return "", fmt.Errorf("getting chain id: %w", err)
	}
	if s.chainID != 0 && chainID != s.chainID {
		return "", fmt.Errorf("%w: rpc reports %d, drop is on %d", ErrWrongChain, chainID, s.chainID)
	}

	pricing, err := s.pricing(ctx, req)
	if err != nil {
		return "", err
	}

	data, err := Encode(req, pricing)
	if err != nil {
		return "", fmt.Errorf("encoding claim: %w", err)
	}

	contract := req.Base().Contract.Address
	if !pricing.IsNative() {
		if err := s.ensureAllowance(ctx, signer, chainID, contract, pricing, req.Base().Quantity); err != nil {
			return "", err
		}
	}

	return s.transact(ctx, signer, chainID, contract, data, Value(req, pricing))
}

func (s *Submitter) pricing(ctx context.Context, req mint.ClaimRequest) (Pricing, error) {
	cond, err := ActiveCondition(ctx, s.backend, req)
	if err == nil {
		p := cond.Pricing()
		s.log.Debug("claim condition",
			zap.String("price", p.PricePerToken.String()),
			zap.String("currency", p.Currency.Hex()),
		)
		return p, nil
	}
	if s.fallback == nil {
		return Pricing{}, err
	}
	s.log.Warn("using configured price", zap.Error(err))
	return *s.fallback, nil
}

func (s *Submitter) ensureAllowance(ctx context.Context, signer *wallet.Signer, chainID int64, spender common.Address, p Pricing, quantity *big.Int) error {
	total := p.Total(quantity)
	if total.Sign() == 0 {
		return nil
	}
	owner := common.HexToAddress(signer.Address())
	have, err := Allowance(ctx, s.backend, p.Currency, owner, spender)
	if err != nil {
		return err
	}
	if have.Cmp(total) >= 0 {
		return nil
	}

	data, err := EncodeApprove(spender, total)
	if err != nil {
		return fmt.Errorf("encoding approve: %w", err)
	}
	hash, err := s.transact(ctx, signer, chainID, p.Currency, data, new(big.Int))
	if err != nil {
		return fmt.Errorf("approving %s: %w", p.Currency.Hex(), err)
	}
	s.log.Info("approval sent", zap.String("tx", hash), zap.String("amount", total.String()))
	if _, err := s.backend.WaitForReceipt(ctx, hash, s.timeout); err != nil {
		return fmt.Errorf("approval %s: %w", hash, err)
	}
	return nil
}

// transact estimates, signs and broadcasts one transaction.
func (s *Submitter) transact(ctx context.Context, signer *wallet.Signer, chainID int64, to common.Address, data []byte, value *big.Int) (string, error) {
	from := signer.Address()
	calldata := hexutil.Encode(data)

	gas, err := s.backend.EstimateGas(ctx, from, to.Hex(), calldata, value)
	if err != nil {
		return "", fmt.Errorf("estimating gas: %w", err)
	}
	gas += gas * gasBufferPercent / 100

	gasPrice, err := s.backend.GasPrice(ctx)
	if err != nil {
		return "", fmt.Errorf("getting gas price: %w", err)
	}

	nonce, err := s.backend.GetPendingNonce(ctx, from)
	if err != nil {
		return "", fmt.Errorf("getting nonce: %w", err)
	}

	id := big.NewInt(chainID)
	tx := types.NewTx(&types.DynamicFeeTx{
		ChainID:   id,
		Nonce:     nonce,
		GasTipCap: gasPrice,
		GasFeeCap: new(big.Int).Mul(gasPrice, big.NewInt(2)),
		Gas:       gas,
		To:        &to,
		Value:     value,
		Data:      data,
	})

	signed, err := signer.SignTx(tx, id)
	if err != nil {
		return "", fmt.Errorf("signing transaction: %w", err)
	}
	raw, err := signed.MarshalBinary()
	if err != nil {
		return "", fmt.Errorf("encoding transaction: %w", err)
	}

	s.log.Debug("broadcasting",
		zap.String("to", to.Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas", gas),
		zap.String("value", value.String()),
	)
	hash, err := s.backend.SendRawTransaction(ctx, hexutil.Encode(raw))
	if err != nil {
		return "", fmt.Errorf("broadcasting transaction: %w", err)
	}
	return hash, nil
}
