package storage

import (
	"encoding/binary"
	"errors"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/cloudx-io/auctionsettle/core"
	"github.com/cloudx-io/auctionsettle/settlement"
)

// balancePrefix namespaces ledger entries so a BadgerLedger can share a
// database with other data without key collisions.
var balancePrefix = []byte("balance/")

// BadgerLedger tracks asset balances per (holder, class) pair in a
// badger store. Transfers are all-or-nothing: each one runs in a single
// read-write transaction.
type BadgerLedger struct {
	db *badger.DB
}

// NewBadgerLedger opens the ledger under dataDir/ledger. An empty
// dataDir opens an in-memory ledger.
func NewBadgerLedger(dataDir string) (*BadgerLedger, error) {
	db, err := openBadger(dataDir, "ledger")
	if err != nil {
		return nil, err
	}
	return &BadgerLedger{db: db}, nil
}

// Shutdown releases the underlying database. Close is taken by the
// account-closing ledger operation.
func (l *BadgerLedger) Shutdown() error {
	return l.db.Close()
}

func balanceKey(holder core.Address, class core.AssetClass) []byte {
	key := make([]byte, 0, len(balancePrefix)+64)
	key = append(key, balancePrefix...)
	key = append(key, holder[:]...)
	key = append(key, class[:]...)
	return key
}

func readBalance(txn *badger.Txn, key []byte) (uint64, error) {
	item, err := txn.Get(key)
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return 0, nil
		}
		return 0, err
	}
	var balance uint64
	err = item.Value(func(val []byte) error {
		if len(val) != 8 {
			return fmt.Errorf("balance entry is %d bytes, want 8: %w", len(val), settlement.ErrInvalidRecord)
		}
		balance = binary.LittleEndian.Uint64(val)
		return nil
	})
	return balance, err
}

func writeBalance(txn *badger.Txn, key []byte, balance uint64) error {
	return txn.Set(key, binary.LittleEndian.AppendUint64(nil, balance))
}

// Mint credits a holder out of thin air. Test and provisioning helper;
// settlement operations only ever move existing balances.
func (l *BadgerLedger) Mint(holder core.Address, class core.AssetClass, amount uint64) error {
	return l.db.Update(func(txn *badger.Txn) error {
		key := balanceKey(holder, class)
		balance, err := readBalance(txn, key)
		if err != nil {
			return err
		}
		sum, ok := core.CheckedAdd(balance, amount)
		if !ok {
			return fmt.Errorf("minted balance overflows: %w", settlement.ErrMathOverflow)
		}
		return writeBalance(txn, key, sum)
	})
}

// Transfer moves amount of class from one holder to another. Fails with
// settlement.ErrInsufficientFunds without touching either balance when
// the source cannot cover it.
func (l *BadgerLedger) Transfer(from, to core.Address, class core.AssetClass, amount uint64) error {
	return l.db.Update(func(txn *badger.Txn) error {
		fromKey := balanceKey(from, class)
		fromBalance, err := readBalance(txn, fromKey)
		if err != nil {
			return err
		}
		if fromBalance < amount {
			return fmt.Errorf("holder %s has %d of %s, need %d: %w",
				from, fromBalance, class, amount, settlement.ErrInsufficientFunds)
		}

		toKey := balanceKey(to, class)
		toBalance, err := readBalance(txn, toKey)
		if err != nil {
			return err
		}
		sum, ok := core.CheckedAdd(toBalance, amount)
		if !ok {
			return fmt.Errorf("destination balance overflows: %w", settlement.ErrMathOverflow)
		}

		if err := writeBalance(txn, fromKey, fromBalance-amount); err != nil {
			return err
		}
		return writeBalance(txn, toKey, sum)
	})
}

// Balance returns the holder's balance of class. Unknown pairs are zero.
func (l *BadgerLedger) Balance(holder core.Address, class core.AssetClass) (uint64, error) {
	var balance uint64
	err := l.db.View(func(txn *badger.Txn) error {
		var err error
		balance, err = readBalance(txn, balanceKey(holder, class))
		return err
	})
	return balance, err
}

// Close removes the holder's balance entry for class, sweeping any
// remainder to rentRecipient.
func (l *BadgerLedger) Close(holder core.Address, class core.AssetClass, rentRecipient core.Address) error {
	return l.db.Update(func(txn *badger.Txn) error {
		key := balanceKey(holder, class)
		remaining, err := readBalance(txn, key)
		if err != nil {
			return err
		}
		if remaining > 0 {
			rentKey := balanceKey(rentRecipient, class)
			rentBalance, err := readBalance(txn, rentKey)
			if err != nil {
				return err
			}
			sum, ok := core.CheckedAdd(rentBalance, remaining)
			if !ok {
				return fmt.Errorf("swept balance overflows: %w", settlement.ErrMathOverflow)
			}
			if err := writeBalance(txn, rentKey, sum); err != nil {
				return err
			}
		}
		return txn.Delete(key)
	})
}

var _ settlement.AssetLedger = (*BadgerLedger)(nil)
