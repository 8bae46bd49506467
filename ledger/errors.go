package ledger

import (
	errorsmod "cosmossdk.io/errors"
)

const codespace = "ledger"

var (
	ErrNotRegistered            = errorsmod.Register(codespace, 2, "account is not registered")
	ErrAlreadyRegistered        = errorsmod.Register(codespace, 3, "account is already registered")
	ErrPoolPaused               = errorsmod.Register(codespace, 4, "pool is paused")
	ErrUnauthorizedCaller       = errorsmod.Register(codespace, 5, "caller is not authorized")
	ErrInsufficientStakeBalance = errorsmod.Register(codespace, 6, "insufficient stake balance")
	ErrZeroRewardOwed           = errorsmod.Register(codespace, 7, "no reward owed")
	ErrWithdrawLocked           = errorsmod.Register(codespace, 8, "withdraw is locked until the unlock epoch")
	ErrZeroUnstakeBalance       = errorsmod.Register(codespace, 9, "no unstaked balance to withdraw")
	ErrExternalCallFailed       = errorsmod.Register(codespace, 10, "external transfer failed")
	ErrInvariantViolation       = errorsmod.Register(codespace, 11, "ledger invariant violated")
	ErrZeroAmount               = errorsmod.Register(codespace, 12, "amount must be positive")
	ErrSagaInProgress           = errorsmod.Register(codespace, 13, "a transfer is outstanding for the account")
	ErrSagaNotFound             = errorsmod.Register(codespace, 14, "saga not found")
	ErrSagaResolved             = errorsmod.Register(codespace, 15, "saga is already resolved")
	ErrPauseUnchanged           = errorsmod.Register(codespace, 16, "pool is already in the requested pause state")
	ErrInvalidAccountID         = errorsmod.Register(codespace, 17, "invalid account id")
)
