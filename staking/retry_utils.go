package staking

import (
	"errors"
	"time"

	"github.com/avast/retry-go/v4"

	"github.com/babylonchain/staking-ledger/ledger"
)

var (
	RtyAttNum = uint(5)
	RtyAtt    = retry.Attempts(RtyAttNum)
	RtyDel    = retry.Delay(time.Millisecond * 400)
	RtyErr    = retry.LastErrorOnly(true)
)

// these errors are final answers of the ledger, another attempt of the same
// resolution cannot change them
var unrecoverableErrors = []error{
	ledger.ErrExternalCallFailed,
	ledger.ErrInvariantViolation,
	ledger.ErrSagaNotFound,
	ledger.ErrSagaResolved,
}

func isUnrecoverable(err error) bool {
	for _, e := range unrecoverableErrors {
		if errors.Is(err, e) {
			return true
		}
	}

	return false
}
