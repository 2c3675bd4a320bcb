package settlement

import (
	"fmt"
	"sync"

	"github.com/cloudx-io/auctionsettle/core"
)

// In-memory collaborator implementations used by tests and local
// development. Production deployments supply their own Store and
// AssetLedger with real atomic-commit guarantees.

// MemoryStore is a map-backed Store.
type MemoryStore struct {
	mu      sync.Mutex
	records map[string][]byte
	tags    map[string]byte
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[string][]byte),
		tags:    make(map[string]byte),
	}
}

func (s *MemoryStore) Load(key []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.records[string(key)]
	if !ok {
		return nil, fmt.Errorf("key %x: %w", key, ErrNotFound)
	}
	out := make([]byte, len(data))
	copy(out, data)
	return out, nil
}

func (s *MemoryStore) Store(key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	data := make([]byte, len(value))
	copy(data, value)
	s.records[string(key)] = data
	return nil
}

func (s *MemoryStore) Create(key []byte, size uint64, ownerTag byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.records[string(key)]; ok {
		return fmt.Errorf("key %x: %w", key, ErrAlreadyInitialized)
	}
	s.records[string(key)] = []byte{}
	s.tags[string(key)] = ownerTag
	return nil
}

func (s *MemoryStore) Delete(key []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, string(key))
	delete(s.tags, string(key))
	return nil
}

// Has reports whether any record exists at the key.
func (s *MemoryStore) Has(key []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.records[string(key)]
	return ok
}

type balanceKey struct {
	holder core.Address
	class  core.AssetClass
}

// MemoryLedger is a map-backed AssetLedger. Transfers are all-or-nothing:
// an insufficient source balance changes nothing.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[balanceKey]uint64
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{balances: make(map[balanceKey]uint64)}
}

// Mint credits a holder out of thin air. Test setup only.
func (l *MemoryLedger) Mint(holder core.Address, class core.AssetClass, amount uint64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.balances[balanceKey{holder, class}] += amount
}

func (l *MemoryLedger) Transfer(from, to core.Address, class core.AssetClass, amount uint64) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	fromKey := balanceKey{from, class}
	if l.balances[fromKey] < amount {
		return fmt.Errorf("holder %s has %d of %s, need %d: %w", from, l.balances[fromKey], class, amount, ErrInsufficientFunds)
	}
	toKey := balanceKey{to, class}
	sum, ok := core.CheckedAdd(l.balances[toKey], amount)
	if !ok {
		return fmt.Errorf("destination balance overflows: %w", ErrMathOverflow)
	}
	l.balances[fromKey] -= amount
	l.balances[toKey] = sum
	return nil
}

func (l *MemoryLedger) Balance(holder core.Address, class core.AssetClass) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[balanceKey{holder, class}], nil
}

func (l *MemoryLedger) Close(holder core.Address, class core.AssetClass, rentRecipient core.Address) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := balanceKey{holder, class}
	if remaining := l.balances[key]; remaining > 0 {
		l.balances[balanceKey{rentRecipient, class}] += remaining
	}
	delete(l.balances, key)
	return nil
}

// FixedClock is a settable Clock.
type FixedClock struct {
	mu  sync.Mutex
	now int64
}

func NewFixedClock(now int64) *FixedClock {
	return &FixedClock{now: now}
}

func (c *FixedClock) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock. Time never goes backwards in the real collaborator,
// so tests should only advance it.
func (c *FixedClock) Set(now int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Advance moves the clock forward by d seconds.
func (c *FixedClock) Advance(d int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
}

// SignerSet authorizes a fixed set of identities.
type SignerSet map[core.Identity]bool

func (s SignerSet) IsSigner(id core.Identity) bool {
	return s[id]
}

// AllowAllSigners authorizes every identity. Test use only.
type AllowAllSigners struct{}

func (AllowAllSigners) IsSigner(core.Identity) bool {
	return true
}
