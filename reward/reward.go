package reward

import (
	errorsmod "cosmossdk.io/errors"
	sdkmath "cosmossdk.io/math"
)

const codespace = "reward"

var (
	ErrCheckpointAhead = errorsmod.Register(codespace, 2, "checkpoint is ahead of now")
	ErrInvalidRate     = errorsmod.Register(codespace, 3, "invalid reward rate")
)

const (
	// DefaultNumerator and DefaultDenominator give a per-block rate of
	// roughly 15% a year at one-second blocks
	DefaultNumerator   uint64 = 715
	DefaultDenominator uint64 = 100_000_000_000
)

// Rate is the reward paid per staked unit per block, as a fraction
type Rate struct {
	Numerator   uint64
	Denominator uint64
}

func DefaultRate() Rate {
	return Rate{
		Numerator:   DefaultNumerator,
		Denominator: DefaultDenominator,
	}
}

func (r Rate) Validate() error {
	if r.Denominator == 0 {
		return errorsmod.Wrap(ErrInvalidRate, "denominator must be positive")
	}

	return nil
}

// AccruedReward returns the reward earned by balance between checkpoint and
// now. The division truncates, so rounding never favours the staker.
func AccruedReward(balance sdkmath.Uint, checkpoint, now uint64, rate Rate) (sdkmath.Uint, error) {
	if err := rate.Validate(); err != nil {
		return sdkmath.ZeroUint(), err
	}
	if now < checkpoint {
		return sdkmath.ZeroUint(), errorsmod.Wrapf(ErrCheckpointAhead, "checkpoint %d, now %d", checkpoint, now)
	}

	elapsed := now - checkpoint
	if elapsed == 0 || balance.IsZero() || rate.Numerator == 0 {
		return sdkmath.ZeroUint(), nil
	}

	return balance.MulUint64(rate.Numerator).MulUint64(elapsed).QuoUint64(rate.Denominator), nil
}
