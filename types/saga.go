package types

import (
	"fmt"
	"time"

	sdkmath "cosmossdk.io/math"
)

type SagaKind uint8

const (
	SagaHarvest SagaKind = iota + 1
	SagaWithdraw
)

func (k SagaKind) String() string {
	switch k {
	case SagaHarvest:
		return "harvest"
	case SagaWithdraw:
		return "withdraw"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// Memo is attached to the outbound transfer of the saga
func (k SagaKind) Memo() string {
	switch k {
	case SagaHarvest:
		return "staking pool harvest"
	case SagaWithdraw:
		return "staking pool withdraw"
	default:
		return ""
	}
}

type SagaState uint8

const (
	SagaRequested SagaState = iota + 1
	SagaCommitted
	SagaRolledBack
)

func (s SagaState) String() string {
	switch s {
	case SagaRequested:
		return "REQUESTED"
	case SagaCommitted:
		return "COMMITTED"
	case SagaRolledBack:
		return "ROLLED_BACK"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(s))
	}
}

func (s SagaState) IsTerminal() bool {
	return s == SagaCommitted || s == SagaRolledBack
}

// Saga tracks an outbound transfer from initiation to resolution
type Saga struct {
	// ID is the correlation token returned on initiation
	ID        string
	Kind      SagaKind
	State     SagaState
	AccountID string
	Amount    sdkmath.Uint
	// Snapshot is the account before the optimistic update of a withdraw,
	// nil for harvest
	Snapshot   *Account
	CreatedAt  time.Time
	ResolvedAt time.Time
}

// TransferRequest builds the outbound transfer of the saga
func (s *Saga) TransferRequest() *TransferRequest {
	return &TransferRequest{
		ID:       s.ID,
		Receiver: s.AccountID,
		Amount:   s.Amount,
		Memo:     s.Kind.Memo(),
	}
}
