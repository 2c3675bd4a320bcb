package settlement

import "github.com/cloudx-io/auctionsettle/core"

// Store is the external keyed storage collaborator. Commit is all-or-nothing
// per operation and access per stored record is exclusive; both guarantees
// are provided by the implementation, not by this package.
type Store interface {
	// Load returns the record bytes for a key, or an error wrapping
	// ErrNotFound when no record exists.
	Load(key []byte) ([]byte, error)
	// Store writes the record bytes for a key.
	Store(key, value []byte) error
	// Create allocates backing storage for a key. size is the expected
	// record size; ownerTag labels the owning component. Fails with
	// ErrAlreadyInitialized when the key is already allocated.
	Create(key []byte, size uint64, ownerTag byte) error
	// Delete reclaims the backing storage for a key.
	Delete(key []byte) error
}

// Owner tags passed to Store.Create.
const (
	TagState     byte = 0x01
	TagAuction   byte = 0x02
	TagEscrow    byte = 0x03
	TagItem      byte = 0x04
	TagItemVault byte = 0x05
	TagFeeVault  byte = 0x06
)

// AssetLedger is the external escrow primitive that atomically moves asset
// balances between accounts. Transfer and Close are fail-closed: either the
// referenced amount moves exactly or nothing changes.
type AssetLedger interface {
	Transfer(from, to core.Address, class core.AssetClass, amount uint64) error
	Balance(holder core.Address, class core.AssetClass) (uint64, error)
	// Close sweeps any remaining balance of the class to rentRecipient and
	// reclaims the account.
	Close(holder core.Address, class core.AssetClass, rentRecipient core.Address) error
}

// Clock reads the trusted external time source, monotonically
// non-decreasing across operations. Read exactly once per operation.
type Clock interface {
	Now() int64
}

// SignerCheck authorizes dealer/owner/bidder-restricted operations.
type SignerCheck interface {
	IsSigner(id core.Identity) bool
}

// Env bundles the collaborators threaded through every operation.
type Env struct {
	Store   Store
	Assets  AssetLedger
	Clock   Clock
	Signers SignerCheck
}
