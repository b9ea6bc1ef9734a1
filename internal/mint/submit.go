package mint

import "context"

// OutcomeKind is one of the three observable results of a submission.
type OutcomeKind int

const (
	OutcomeSent OutcomeKind = iota + 1
	OutcomeConfirmed
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeSent:
		return "sent"
	case OutcomeConfirmed:
		return "confirmed"
	case OutcomeFailed:
		return "failed"
	}
	return "unknown"
}

// Outcome is a lifecycle event reported by a Submitter.
type Outcome struct {
	Kind   OutcomeKind
	TxHash string
	Err    error
}

// Terminal reports whether no further outcomes follow.
func (o Outcome) Terminal() bool {
	return o.Kind == OutcomeConfirmed || o.Kind == OutcomeFailed
}

// Sent reports a broadcast transaction.
func Sent(hash string) Outcome { return Outcome{Kind: OutcomeSent, TxHash: hash} }

// Confirmed reports a mined, successful transaction.
func Confirmed(hash string) Outcome { return Outcome{Kind: OutcomeConfirmed, TxHash: hash} }

// Failed reports any failure, before or after broadcast.
func Failed(hash string, err error) Outcome {
	return Outcome{Kind: OutcomeFailed, TxHash: hash, Err: err}
}

// Submitter executes claim requests.
//
// Submit must not block. It returns a channel that yields at most one Sent
// outcome followed by exactly one Confirmed or Failed outcome, and is then
// closed. Cancelling ctx after Submit returns does not abort the submission.
type Submitter interface {
	Submit(ctx context.Context, req ClaimRequest) <-chan Outcome
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, req ClaimRequest) <-chan Outcome

// Submit calls f.
func (f SubmitterFunc) Submit(ctx context.Context, req ClaimRequest) <-chan Outcome {
	return f(ctx, req)
}

// AccountProvider exposes the currently connected wallet, if any.
type AccountProvider interface {
	ActiveAccount() (address string, ok bool)
}
