package core

import "encoding/hex"

// Identity is a 32-byte account identity key. The zero value is the
// "no identity" sentinel (no bidder yet, unset owner).
type Identity [32]byte

// IsZero reports whether the identity is the "none" sentinel.
func (id Identity) IsZero() bool {
	return id == Identity{}
}

func (id Identity) String() string {
	return hex.EncodeToString(id[:])
}

// AssetClass identifies a fungible or non-fungible asset class
// (the payment denomination, or a deposited item's class).
type AssetClass [32]byte

func (c AssetClass) String() string {
	return hex.EncodeToString(c[:])
}

// AuctionID is the caller-chosen 32-byte opaque auction identifier.
type AuctionID [32]byte

func (a AuctionID) IsZero() bool {
	return a == AuctionID{}
}

func (a AuctionID) String() string {
	return hex.EncodeToString(a[:])
}

// Address identifies a holder of asset balances in the external transfer
// layer. User accounts use their identity bytes directly; escrow and vault
// accounts use addresses derived from their storage keys.
type Address [32]byte

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

// AccountAddress returns the asset account address for an identity.
func AccountAddress(id Identity) Address {
	return Address(id)
}
