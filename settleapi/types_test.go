package settleapi

import (
	"errors"
	"testing"

	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/auctionsettle/core"
)

func ident(b byte) core.Identity {
	var id core.Identity
	id[0] = b
	return id
}

func asset(b byte) core.AssetClass {
	var c core.AssetClass
	c[0] = b
	return c
}

func auctionID(b byte) core.AuctionID {
	var id core.AuctionID
	id[0] = b
	return id
}

func address(b byte) core.Address {
	var a core.Address
	a[0] = b
	return a
}

func TestValidate(t *testing.T) {
	valid := []interface{ Validate() error }{
		InitializeRequest{Payer: ident(1)},
		SetPausedRequest{Caller: ident(1), Paused: true},
		TransferOwnershipRequest{Caller: ident(1), NewOwner: ident(2)},
		ClaimFeesRequest{Caller: ident(1), Denomination: asset(1)},
		CreateTraditionalRequest{Dealer: ident(1), AuctionID: auctionID(1), PaymentDenomination: asset(1), StartAmount: 100, Increment: 10, Deadline: 5_000},
		CreateDutchRequest{Dealer: ident(1), AuctionID: auctionID(1), PaymentDenomination: asset(1), StartPrice: 1_000, DecreaseAmount: 10, Interval: 60, MinimumPrice: 100, Deadline: 5_000},
		CreatePennyRequest{Dealer: ident(1), AuctionID: auctionID(1), PaymentDenomination: asset(1), Increment: 5, TimerDuration: 300},
		DepositItemRequest{Dealer: ident(1), AuctionID: auctionID(1), AssetClass: asset(1), Amount: 3},
		DepositItemRequest{Dealer: ident(1), AuctionID: auctionID(1), AssetClass: asset(1), NonFungible: true},
		BidTraditionalRequest{Bidder: ident(1), AuctionID: auctionID(1), Amount: 100},
		BuyDutchRequest{Buyer: ident(1), AuctionID: auctionID(1), MaxPrice: 1_000},
		BidPennyRequest{Bidder: ident(1), AuctionID: auctionID(1)},
		FinalizeRequest{AuctionID: auctionID(1)},
		AcceptBidRequest{Dealer: ident(1), AuctionID: auctionID(1)},
		CloseItemVaultRequest{Caller: ident(1), AuctionID: auctionID(1), Recipient: address(1), RentRecipient: address(1)},
	}
	for _, req := range valid {
		check.NoError(t, req.Validate())
	}

	invalid := []interface{ Validate() error }{
		InitializeRequest{},
		SetPausedRequest{},
		TransferOwnershipRequest{Caller: ident(1)},
		ClaimFeesRequest{},
		CreateTraditionalRequest{Dealer: ident(1), PaymentDenomination: asset(1), StartAmount: 100, Increment: 10},
		CreateTraditionalRequest{Dealer: ident(1), AuctionID: auctionID(1), PaymentDenomination: asset(1), Increment: 10},
		CreateTraditionalRequest{Dealer: ident(1), AuctionID: auctionID(1), PaymentDenomination: asset(1), StartAmount: 100},
		CreateDutchRequest{Dealer: ident(1), AuctionID: auctionID(1), StartPrice: 1_000, Interval: 0},
		CreateDutchRequest{Dealer: ident(1), AuctionID: auctionID(1), StartPrice: 100, Interval: 60, MinimumPrice: 200},
		CreatePennyRequest{Dealer: ident(1), AuctionID: auctionID(1), Increment: 5},
		DepositItemRequest{Dealer: ident(1), AuctionID: auctionID(1), AssetClass: asset(1)},
		DepositItemRequest{Dealer: ident(1), AuctionID: auctionID(1), AssetClass: asset(1), Amount: 2, NonFungible: true},
		BidTraditionalRequest{Bidder: ident(1), AuctionID: auctionID(1)},
		BuyDutchRequest{Buyer: ident(1), AuctionID: auctionID(1)},
		BidPennyRequest{Bidder: ident(1)},
		FinalizeRequest{},
		AcceptBidRequest{AuctionID: auctionID(1)},
		CloseItemVaultRequest{Caller: ident(1), AuctionID: auctionID(1)},
	}
	for _, req := range invalid {
		check.True(t, errors.Is(req.Validate(), ErrInvalidRequest))
	}
}
