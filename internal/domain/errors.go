package domain

import "errors"

// Domain errors
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrPlayerNotFound    = errors.New("player not found")
	ErrUserNotFound      = errors.New("user not found")
	ErrCellNotFound      = errors.New("cell not found")
	ErrBattleNotFound    = errors.New("battle not found")
	ErrListingNotFound   = errors.New("listing not found")
	ErrEventNotFound     = errors.New("daily event not found")
	ErrItemNotFound      = errors.New("item not found")
	ErrNoItemsAvailable  = errors.New("no items available")
	ErrAlreadyCompleted  = errors.New("already completed")
	ErrAlreadyClaimed    = errors.New("already claimed")
	ErrCellFull          = errors.New("cell is full")
	ErrAlreadyInCell     = errors.New("player already in a cell")
	ErrNotInCell         = errors.New("player not in a cell")
	ErrBattleActive      = errors.New("battle already active")
	ErrNoActiveBattle    = errors.New("no active battle")
	ErrNotEnoughEnergy   = errors.New("not enough energy")
)

// ValidationError carries a caller-facing rejection message.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// Validation builds a ValidationError.
func Validation(reason string) error {
	return &ValidationError{Reason: reason}
}

// IsValidation checks if an error is a validation rejection.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFound checks if an error is a not-found type error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrPlayerNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrCellNotFound) ||
		errors.Is(err, ErrBattleNotFound) ||
		errors.Is(err, ErrListingNotFound) ||
		errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrItemNotFound)
}
