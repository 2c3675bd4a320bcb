// Package settleapi defines the typed request structs accepted by the
// settlement controller, one per operation, validated at the boundary
// before any state is touched.
package settleapi

import (
	"errors"
	"fmt"

	"github.com/cloudx-io/auctionsettle/core"
)

// ErrInvalidRequest marks a malformed request payload rejected at the
// boundary. All Validate failures wrap it.
var ErrInvalidRequest = errors.New("invalid request")

func invalidf(format string, args ...any) error {
	return fmt.Errorf(format+": %w", append(args, ErrInvalidRequest)...)
}

// InitializeRequest creates the program state singleton.
type InitializeRequest struct {
	Payer core.Identity `json:"payer" cbor:"payer"`
}

func (r InitializeRequest) Validate() error {
	if r.Payer.IsZero() {
		return invalidf("initialize: payer identity is zero")
	}
	return nil
}

// SetPausedRequest toggles the global pause flag. Owner-only.
type SetPausedRequest struct {
	Caller core.Identity `json:"caller" cbor:"caller"`
	Paused bool          `json:"paused" cbor:"paused"`
}

func (r SetPausedRequest) Validate() error {
	if r.Caller.IsZero() {
		return invalidf("set_paused: caller identity is zero")
	}
	return nil
}

// TransferOwnershipRequest hands the program to a new owner. Owner-only.
type TransferOwnershipRequest struct {
	Caller   core.Identity `json:"caller" cbor:"caller"`
	NewOwner core.Identity `json:"new_owner" cbor:"new_owner"`
}

func (r TransferOwnershipRequest) Validate() error {
	if r.Caller.IsZero() {
		return invalidf("transfer_ownership: caller identity is zero")
	}
	if r.NewOwner.IsZero() {
		return invalidf("transfer_ownership: new owner identity is zero")
	}
	return nil
}

// ClaimFeesRequest sweeps the fee vault for one denomination to the owner.
type ClaimFeesRequest struct {
	Caller       core.Identity   `json:"caller" cbor:"caller"`
	Denomination core.AssetClass `json:"denomination" cbor:"denomination"`
}

func (r ClaimFeesRequest) Validate() error {
	if r.Caller.IsZero() {
		return invalidf("claim_fees: caller identity is zero")
	}
	return nil
}

// CreateTraditionalRequest opens an ascending auction.
type CreateTraditionalRequest struct {
	Dealer              core.Identity   `json:"dealer" cbor:"dealer"`
	AuctionID           core.AuctionID  `json:"auction_id" cbor:"auction_id"`
	PaymentDenomination core.AssetClass `json:"payment_denomination" cbor:"payment_denomination"`
	StartAmount         uint64          `json:"start_amount" cbor:"start_amount"`
	Increment           uint64          `json:"increment" cbor:"increment"`
	ReservePrice        uint64          `json:"reserve_price" cbor:"reserve_price"`
	Deadline            int64           `json:"deadline" cbor:"deadline"`
}

func (r CreateTraditionalRequest) Validate() error {
	if r.Dealer.IsZero() {
		return invalidf("create_traditional: dealer identity is zero")
	}
	if r.AuctionID.IsZero() {
		return invalidf("create_traditional: auction id is zero")
	}
	if r.StartAmount == 0 {
		return invalidf("create_traditional: start amount must be positive")
	}
	if r.Increment == 0 {
		return invalidf("create_traditional: increment must be positive")
	}
	return nil
}

// CreateDutchRequest opens a descending auction. The price schedule starts
// at creation time.
type CreateDutchRequest struct {
	Dealer              core.Identity   `json:"dealer" cbor:"dealer"`
	AuctionID           core.AuctionID  `json:"auction_id" cbor:"auction_id"`
	PaymentDenomination core.AssetClass `json:"payment_denomination" cbor:"payment_denomination"`
	StartPrice          uint64          `json:"start_price" cbor:"start_price"`
	DecreaseAmount      uint64          `json:"decrease_amount" cbor:"decrease_amount"`
	Interval            int64           `json:"interval" cbor:"interval"`
	MinimumPrice        uint64          `json:"minimum_price" cbor:"minimum_price"`
	Deadline            int64           `json:"deadline" cbor:"deadline"`
}

func (r CreateDutchRequest) Validate() error {
	if r.Dealer.IsZero() {
		return invalidf("create_dutch: dealer identity is zero")
	}
	if r.AuctionID.IsZero() {
		return invalidf("create_dutch: auction id is zero")
	}
	if r.StartPrice == 0 {
		return invalidf("create_dutch: start price must be positive")
	}
	if r.Interval <= 0 {
		return invalidf("create_dutch: interval must be positive")
	}
	if r.MinimumPrice > r.StartPrice {
		return invalidf("create_dutch: minimum price exceeds start price")
	}
	return nil
}

// CreatePennyRequest opens an escalating-timer auction. Penny auctions have
// no creation-time deadline; the timer starts on the first bid.
type CreatePennyRequest struct {
	Dealer              core.Identity   `json:"dealer" cbor:"dealer"`
	AuctionID           core.AuctionID  `json:"auction_id" cbor:"auction_id"`
	PaymentDenomination core.AssetClass `json:"payment_denomination" cbor:"payment_denomination"`
	Increment           uint64          `json:"increment" cbor:"increment"`
	TimerDuration       int64           `json:"timer_duration" cbor:"timer_duration"`
}

func (r CreatePennyRequest) Validate() error {
	if r.Dealer.IsZero() {
		return invalidf("create_penny: dealer identity is zero")
	}
	if r.AuctionID.IsZero() {
		return invalidf("create_penny: auction id is zero")
	}
	if r.Increment == 0 {
		return invalidf("create_penny: increment must be positive")
	}
	if r.TimerDuration <= 0 {
		return invalidf("create_penny: timer duration must be positive")
	}
	return nil
}

// DepositItemRequest escrows one asset into an auction. Non-fungible
// deposits always carry amount 1.
type DepositItemRequest struct {
	Dealer      core.Identity   `json:"dealer" cbor:"dealer"`
	AuctionID   core.AuctionID  `json:"auction_id" cbor:"auction_id"`
	AssetClass  core.AssetClass `json:"asset_class" cbor:"asset_class"`
	Amount      uint64          `json:"amount" cbor:"amount"`
	NonFungible bool            `json:"non_fungible" cbor:"non_fungible"`
}

func (r DepositItemRequest) Validate() error {
	if r.Dealer.IsZero() {
		return invalidf("deposit_item: dealer identity is zero")
	}
	if r.AuctionID.IsZero() {
		return invalidf("deposit_item: auction id is zero")
	}
	if r.NonFungible {
		if r.Amount != 0 && r.Amount != 1 {
			return invalidf("deposit_item: non-fungible amount must be 1")
		}
	} else if r.Amount == 0 {
		return invalidf("deposit_item: amount must be positive")
	}
	return nil
}

// BidTraditionalRequest places an ascending-auction bid.
type BidTraditionalRequest struct {
	Bidder    core.Identity  `json:"bidder" cbor:"bidder"`
	AuctionID core.AuctionID `json:"auction_id" cbor:"auction_id"`
	Amount    uint64         `json:"amount" cbor:"amount"`
}

func (r BidTraditionalRequest) Validate() error {
	if r.Bidder.IsZero() {
		return invalidf("bid_traditional: bidder identity is zero")
	}
	if r.AuctionID.IsZero() {
		return invalidf("bid_traditional: auction id is zero")
	}
	if r.Amount == 0 {
		return invalidf("bid_traditional: amount must be positive")
	}
	return nil
}

// BuyDutchRequest buys at the current descending price, capped at MaxPrice.
type BuyDutchRequest struct {
	Buyer     core.Identity  `json:"buyer" cbor:"buyer"`
	AuctionID core.AuctionID `json:"auction_id" cbor:"auction_id"`
	MaxPrice  uint64         `json:"max_price" cbor:"max_price"`
}

func (r BuyDutchRequest) Validate() error {
	if r.Buyer.IsZero() {
		return invalidf("buy_dutch: buyer identity is zero")
	}
	if r.AuctionID.IsZero() {
		return invalidf("buy_dutch: auction id is zero")
	}
	if r.MaxPrice == 0 {
		return invalidf("buy_dutch: max price must be positive")
	}
	return nil
}

// BidPennyRequest pays one increment and resets the escalation timer.
type BidPennyRequest struct {
	Bidder    core.Identity  `json:"bidder" cbor:"bidder"`
	AuctionID core.AuctionID `json:"auction_id" cbor:"auction_id"`
}

func (r BidPennyRequest) Validate() error {
	if r.Bidder.IsZero() {
		return invalidf("bid_penny: bidder identity is zero")
	}
	if r.AuctionID.IsZero() {
		return invalidf("bid_penny: auction id is zero")
	}
	return nil
}

// FinalizeRequest drives an auction past its deadline to a terminal state.
// Permissionless: any caller may finalize once the preconditions hold.
type FinalizeRequest struct {
	Caller    core.Identity  `json:"caller" cbor:"caller"`
	AuctionID core.AuctionID `json:"auction_id" cbor:"auction_id"`
}

func (r FinalizeRequest) Validate() error {
	if r.AuctionID.IsZero() {
		return invalidf("finalize: auction id is zero")
	}
	return nil
}

// AcceptBidRequest lets the dealer accept a below-reserve bid during the
// acceptance window. Dealer-only.
type AcceptBidRequest struct {
	Dealer    core.Identity  `json:"dealer" cbor:"dealer"`
	AuctionID core.AuctionID `json:"auction_id" cbor:"auction_id"`
}

func (r AcceptBidRequest) Validate() error {
	if r.Dealer.IsZero() {
		return invalidf("accept_bid: dealer identity is zero")
	}
	if r.AuctionID.IsZero() {
		return invalidf("accept_bid: auction id is zero")
	}
	return nil
}

// CloseItemVaultRequest reclaims one deposited item after the auction
// reaches a terminal state. Remaining balance goes to Recipient; the
// reclaimed storage deposit goes to RentRecipient.
type CloseItemVaultRequest struct {
	Caller        core.Identity  `json:"caller" cbor:"caller"`
	AuctionID     core.AuctionID `json:"auction_id" cbor:"auction_id"`
	ItemIndex     uint8          `json:"item_index" cbor:"item_index"`
	Recipient     core.Address   `json:"recipient" cbor:"recipient"`
	RentRecipient core.Address   `json:"rent_recipient" cbor:"rent_recipient"`
}

func (r CloseItemVaultRequest) Validate() error {
	if r.Caller.IsZero() {
		return invalidf("close_item_vault: caller identity is zero")
	}
	if r.AuctionID.IsZero() {
		return invalidf("close_item_vault: auction id is zero")
	}
	if r.Recipient == (core.Address{}) {
		return invalidf("close_item_vault: recipient address is zero")
	}
	return nil
}
