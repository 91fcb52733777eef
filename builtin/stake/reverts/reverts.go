// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
	"fmt"
)

// ErrRevert is a caller visible rejection. The call that returned it has no effect.
type ErrRevert struct {
	code    string
	message string
	cause   error
}

func New(code, message string) *ErrRevert {
	return &ErrRevert{
		code:    code,
		message: message,
	}
}

var (
	ErrUnauthorized        = New("Unauthorized", "caller lacks the admin role")
	ErrPoolNotFound        = New("PoolNotFound", "pool not found")
	ErrPoolClosed          = New("PoolClosed", "pool does not accept deposits")
	ErrBelowMinimum        = New("BelowMinimum", "deposit below pool minimum")
	ErrInsufficientStake   = New("InsufficientStake", "unstake exceeds staked amount")
	ErrTokenTransferFailed = New("TokenTransferFailed", "token transfer failed")
	ErrAlreadyInitialized  = New("AlreadyInitialized", "engine already initialized")
	ErrNotInitialized      = New("NotInitialized", "engine not initialized")
	ErrInvalidParams       = New("InvalidParams", "invalid parameters")
	ErrWithdrawPaused      = New("WithdrawPaused", "withdraw is paused")
	ErrClaimPaused         = New("ClaimPaused", "claim is paused")
)

func (e *ErrRevert) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Code returns the stable name of the failure.
func (e *ErrRevert) Code() string {
	return e.code
}

func (e *ErrRevert) Unwrap() error {
	return e.cause
}

// Is matches any revert with the same code, so details never hide the kind.
func (e *ErrRevert) Is(target error) bool {
	var t *ErrRevert
	if !errors.As(target, &t) {
		return false
	}
	return t.code == e.code
}

// Withf returns a copy carrying a detailed message.
func (e *ErrRevert) Withf(format string, args ...any) *ErrRevert {
	return &ErrRevert{
		code:    e.code,
		message: e.message + ": " + fmt.Sprintf(format, args...),
		cause:   e.cause,
	}
}

// Wrap returns a copy caused by err.
func (e *ErrRevert) Wrap(err error) *ErrRevert {
	return &ErrRevert{
		code:    e.code,
		message: e.message,
		cause:   err,
	}
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}
