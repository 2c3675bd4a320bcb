package settlement

import (
	"errors"

	"github.com/cloudx-io/auctionsettle/settleapi"
)

// Every precondition violation maps to exactly one of these sentinels.
// Operations wrap them with context; callers branch with errors.Is.
var (
	// Authorization
	ErrMissingSignature = errors.New("required signer did not sign")
	ErrOnlyOwner        = errors.New("only the owner can perform this action")
	ErrOnlyDealer       = errors.New("only the dealer can perform this action")
	ErrNotEntitled      = errors.New("caller is not entitled to reclaim this item")

	// Lifecycle
	ErrContractPaused     = errors.New("settlement is paused")
	ErrAuctionNotActive   = errors.New("auction is not in a state that allows this operation")
	ErrAlreadyInitialized = errors.New("record already initialized")
	ErrNotInitialized     = errors.New("program state not initialized")

	// Temporal
	ErrAuctionExpired          = errors.New("auction deadline has passed")
	ErrAuctionNotExpired       = errors.New("auction deadline has not passed")
	ErrAcceptancePeriodExpired = errors.New("acceptance period expired")
	ErrPennyTimerNotExpired    = errors.New("penny auction timer not expired")

	// Validation
	ErrBidTooLow          = errors.New("bid amount too low")
	ErrInvalidAuctionType = errors.New("invalid auction type for this operation")
	ErrMaxItemsExceeded   = errors.New("maximum items exceeded")

	// Arithmetic
	ErrMathOverflow = errors.New("math overflow")

	// NotFound / funds
	ErrNotFound          = errors.New("record not found")
	ErrAuctionNotFound   = errors.New("auction not found")
	ErrNoItems           = errors.New("no such item in auction")
	ErrNoBidder          = errors.New("no bidder")
	ErrNoFunds           = errors.New("no funds to claim")
	ErrInsufficientFunds = errors.New("insufficient balance for transfer")

	// Codec
	ErrInvalidRecord = errors.New("invalid persisted record")
)

// ErrorCode returns a stable machine-readable code for a settlement error,
// for use in dispatcher responses. Unrecognized errors map to "internal".
func ErrorCode(err error) string {
	for _, m := range errorCodes {
		if errors.Is(err, m.err) {
			return m.code
		}
	}
	return "internal"
}

var errorCodes = []struct {
	err  error
	code string
}{
	{ErrMissingSignature, "missing_signature"},
	{ErrOnlyOwner, "only_owner"},
	{ErrOnlyDealer, "only_dealer"},
	{ErrNotEntitled, "not_entitled"},
	{ErrContractPaused, "paused"},
	{ErrAuctionNotActive, "auction_not_active"},
	{ErrAlreadyInitialized, "already_initialized"},
	{ErrNotInitialized, "not_initialized"},
	{ErrAuctionExpired, "auction_expired"},
	{ErrAuctionNotExpired, "auction_not_expired"},
	{ErrAcceptancePeriodExpired, "acceptance_period_expired"},
	{ErrPennyTimerNotExpired, "penny_timer_not_expired"},
	{ErrBidTooLow, "bid_too_low"},
	{ErrInvalidAuctionType, "invalid_auction_type"},
	{ErrMaxItemsExceeded, "max_items_exceeded"},
	{ErrMathOverflow, "math_overflow"},
	{ErrAuctionNotFound, "auction_not_found"},
	{ErrNoItems, "no_items"},
	{ErrNoBidder, "no_bidder"},
	{ErrNoFunds, "no_funds"},
	{ErrInsufficientFunds, "insufficient_funds"},
	{ErrNotFound, "not_found"},
	{ErrInvalidRecord, "invalid_record"},
	{settleapi.ErrInvalidRequest, "invalid_request"},
}
