package settlement

import (
	"crypto/sha256"

	"github.com/cloudx-io/auctionsettle/core"
)

// Storage keys are derived deterministically: seed label + version byte +
// auction id + optional sub-index, so the same logical entity always maps
// to the same key in the external store.
const keyVersion byte = 1

var (
	stateSeed     = []byte("auction_state")
	auctionSeed   = []byte("auction")
	escrowSeed    = []byte("escrow")
	itemSeed      = []byte("item")
	itemVaultSeed = []byte("item_vault")
	feeVaultSeed  = []byte("fee_vault")
)

func derive(seed []byte, parts ...[]byte) []byte {
	key := make([]byte, 0, len(seed)+1+64)
	key = append(key, seed...)
	key = append(key, keyVersion)
	for _, p := range parts {
		key = append(key, p...)
	}
	return key
}

// StateKey is the storage key of the ProgramState singleton.
func StateKey() []byte {
	return derive(stateSeed)
}

// AuctionKey is the storage key of an auction record.
func AuctionKey(id core.AuctionID) []byte {
	return derive(auctionSeed, id[:])
}

// EscrowKey is the storage key of an auction's payment escrow account.
func EscrowKey(id core.AuctionID) []byte {
	return derive(escrowSeed, id[:])
}

// ItemKey is the storage key of one deposited item record.
func ItemKey(id core.AuctionID, index uint8) []byte {
	return derive(itemSeed, id[:], []byte{index})
}

// ItemVaultKey is the storage key of the vault holding deposited assets of
// one class. Deposits of the same class share a vault.
func ItemVaultKey(id core.AuctionID, class core.AssetClass) []byte {
	return derive(itemVaultSeed, id[:], class[:])
}

// FeeVaultKey is the storage key of the fee vault for one payment
// denomination.
func FeeVaultKey(denomination core.AssetClass) []byte {
	return derive(feeVaultSeed, denomination[:])
}

// HolderAddress derives the asset-ledger address owned by a storage key
// (escrow accounts, item vaults, fee vaults).
func HolderAddress(key []byte) core.Address {
	return core.Address(sha256.Sum256(key))
}

// EscrowAddress is the asset account holding a Traditional auction's
// escrowed bid.
func EscrowAddress(id core.AuctionID) core.Address {
	return HolderAddress(EscrowKey(id))
}

// ItemVaultAddress is the asset account holding deposited items of a class.
func ItemVaultAddress(id core.AuctionID, class core.AssetClass) core.Address {
	return HolderAddress(ItemVaultKey(id, class))
}

// FeeVaultAddress is the asset account accumulating fees for a denomination.
func FeeVaultAddress(denomination core.AssetClass) core.Address {
	return HolderAddress(FeeVaultKey(denomination))
}
