package types

import (
	"fmt"

	sdkmath "cosmossdk.io/math"
)

// TransferRequest asks the asset service to move funds out of the pool
type TransferRequest struct {
	// ID correlates the request with its outcome and is reused on retries
	ID       string
	Receiver string
	Amount   sdkmath.Uint
	Memo     string
}

type CallStatus uint8

const (
	CallPending CallStatus = iota
	CallSucceeded
	CallFailed
)

func (s CallStatus) String() string {
	switch s {
	case CallPending:
		return "PENDING"
	case CallSucceeded:
		return "SUCCEEDED"
	case CallFailed:
		return "FAILED"
	default:
		return fmt.Sprintf("UNKNOWN(%d)", uint8(s))
	}
}

func NewCallStatus(s string) (CallStatus, error) {
	switch s {
	case "PENDING":
		return CallPending, nil
	case "SUCCEEDED":
		return CallSucceeded, nil
	case "FAILED":
		return CallFailed, nil
	default:
		return 0, fmt.Errorf("unknown call status %q", s)
	}
}

// CallResult is one result embedded in a transfer outcome
type CallResult struct {
	Status CallStatus
	Reason string
}

// TransferOutcome is the outcome reported by the asset service. A well-formed
// outcome carries exactly one result.
type TransferOutcome struct {
	RequestID string
	Results   []CallResult
}

func NewSucceededOutcome(requestID string) *TransferOutcome {
	return &TransferOutcome{
		RequestID: requestID,
		Results:   []CallResult{{Status: CallSucceeded}},
	}
}

func NewFailedOutcome(requestID, reason string) *TransferOutcome {
	return &TransferOutcome{
		RequestID: requestID,
		Results:   []CallResult{{Status: CallFailed, Reason: reason}},
	}
}

// IsPending reports whether the asset service is still working on the
// transfer. Any other outcome, malformed ones included, goes to resolution.
func (o *TransferOutcome) IsPending() bool {
	return o != nil && len(o.Results) == 1 && o.Results[0].Status == CallPending
}

// IsFinal reports whether the outcome is settled and can resolve a saga
func (o *TransferOutcome) IsFinal() bool {
	return len(o.Results) == 1 && o.Results[0].Status != CallPending
}
