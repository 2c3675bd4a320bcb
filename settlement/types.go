package settlement

import (
	"github.com/cloudx-io/auctionsettle/core"
)

// SchemaVersion is the leading version byte carried by every persisted record.
const SchemaVersion byte = 1

// AcceptancePeriod is the window after a Traditional auction's deadline
// during which the dealer may accept a below-reserve bid (24 hours).
const AcceptancePeriod int64 = 24 * 60 * 60

// DefaultPennyTimer is the conventional Penny auction timer duration
// (5 minutes). Creation requests may choose a different duration.
const DefaultPennyTimer int64 = 5 * 60

// MaxItems is the maximum number of items per auction.
const MaxItems = 255

// Status is the auction lifecycle state.
type Status uint8

const (
	// StatusActive accepts bids (or buys, for Dutch).
	StatusActive Status = 0
	// StatusExpired is the dealer decision window after a Traditional
	// auction ends below reserve.
	StatusExpired Status = 1
	// StatusFinalized is terminal: sale completed.
	StatusFinalized Status = 2
	// StatusRefunded is terminal: escrow returned, items back to dealer.
	StatusRefunded Status = 3
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusExpired:
		return "expired"
	case StatusFinalized:
		return "finalized"
	case StatusRefunded:
		return "refunded"
	}
	return "unknown"
}

// Terminal reports whether the status admits no further transitions.
func (s Status) Terminal() bool {
	return s == StatusFinalized || s == StatusRefunded
}

// TypeTag discriminates the auction's parameter record.
type TypeTag uint8

const (
	TypeTraditional TypeTag = 0
	TypeDutch       TypeTag = 1
	TypePenny       TypeTag = 2
)

func (t TypeTag) String() string {
	switch t {
	case TypeTraditional:
		return "traditional"
	case TypeDutch:
		return "dutch"
	case TypePenny:
		return "penny"
	}
	return "unknown"
}

// TraditionalParams holds ascending-auction parameters.
type TraditionalParams struct {
	StartAmount        uint64 // minimum first bid
	Increment          uint64 // minimum bid increase
	ReservePrice       uint64 // minimum bid for automatic finalization
	Deadline           int64  // auction end timestamp
	AcceptanceDeadline int64  // 0 until the reserve-not-met path is engaged
	ReserveMet         bool   // recomputed on every bid
}

// DutchParams holds descending-auction parameters.
type DutchParams struct {
	StartPrice     uint64
	DecreaseAmount uint64
	Interval       int64 // seconds between decreases
	MinimumPrice   uint64
	Deadline       int64
	StartTime      int64
}

// Curve returns the pure price function for these parameters.
func (p DutchParams) Curve() core.DutchCurve {
	return core.DutchCurve{
		StartPrice:     p.StartPrice,
		DecreaseAmount: p.DecreaseAmount,
		Interval:       p.Interval,
		MinimumPrice:   p.MinimumPrice,
		StartTime:      p.StartTime,
	}
}

// PennyParams holds escalating-timer auction parameters.
type PennyParams struct {
	Increment       uint64 // fixed amount paid to the dealer per bid
	TimerDuration   int64  // timer reset duration in seconds
	CurrentDeadline int64  // 0 until the first bid
	TotalPaid       uint64 // running total of payments to the dealer
	LastBidTime     int64
}

// Auction is the aggregate record for one auction. Exactly one of the
// three parameter pointers is set, and it always agrees with Type.
type Auction struct {
	ID                  core.AuctionID
	Status              Status
	Type                TypeTag
	Dealer              core.Identity
	CurrentBidder       core.Identity // zero value means no bidder
	PaymentDenomination core.AssetClass
	CurrentBid          uint64

	Traditional *TraditionalParams
	Dutch       *DutchParams
	Penny       *PennyParams

	ItemCount   uint8
	CreatedAt   int64
	FinalizedAt int64 // 0 until finalized
}

// TraditionalParams returns the embedded Traditional record, or
// ErrInvalidAuctionType when the tag or the active variant disagrees.
func (a *Auction) TraditionalParams() (*TraditionalParams, error) {
	if a.Type != TypeTraditional || a.Traditional == nil {
		return nil, ErrInvalidAuctionType
	}
	return a.Traditional, nil
}

// DutchParams returns the embedded Dutch record, or ErrInvalidAuctionType.
func (a *Auction) DutchParams() (*DutchParams, error) {
	if a.Type != TypeDutch || a.Dutch == nil {
		return nil, ErrInvalidAuctionType
	}
	return a.Dutch, nil
}

// PennyParams returns the embedded Penny record, or ErrInvalidAuctionType.
func (a *Auction) PennyParams() (*PennyParams, error) {
	if a.Type != TypePenny || a.Penny == nil {
		return nil, ErrInvalidAuctionType
	}
	return a.Penny, nil
}

// HasBidder reports whether any bid has been recorded.
func (a *Auction) HasBidder() bool {
	return !a.CurrentBidder.IsZero()
}

// AuctionItem tracks one asset deposited into an auction.
type AuctionItem struct {
	AuctionID   core.AuctionID
	AssetClass  core.AssetClass
	Amount      uint64 // 1 for non-fungible assets
	NonFungible bool
	Index       uint8 // assigned sequentially from 0
}

// FeeVault accumulates platform fees for one payment denomination.
// Created lazily on the first fee-generating event; claimable only by
// the program owner.
type FeeVault struct {
	PaymentDenomination core.AssetClass
	Amount              uint64
}

// ProgramState is the process-wide singleton.
type ProgramState struct {
	Owner        core.Identity
	Paused       bool
	AuctionCount uint64
}
