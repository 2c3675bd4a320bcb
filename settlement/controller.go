package settlement

import (
	"errors"
	"fmt"

	"github.com/cloudx-io/auctionsettle/core"
	"github.com/cloudx-io/auctionsettle/settleapi"
)

// ReclaimPolicy decides who may reclaim a deposited item once the auction
// is terminal. It is injectable because entitlement after a refund is a
// deployment policy, not a protocol rule.
type ReclaimPolicy func(a *Auction, caller core.Identity) error

// DefaultReclaimPolicy: after a completed sale the dealer or the winning
// bidder may reclaim; after a refund only the dealer may (the "winner" of
// a refunded auction has no entitlement to its items).
func DefaultReclaimPolicy(a *Auction, caller core.Identity) error {
	switch a.Status {
	case StatusFinalized:
		if caller == a.Dealer || (a.HasBidder() && caller == a.CurrentBidder) {
			return nil
		}
	case StatusRefunded:
		if caller == a.Dealer {
			return nil
		}
	}
	return fmt.Errorf("caller %s may not reclaim from %s auction: %w", caller, a.Status, ErrNotEntitled)
}

// Controller orchestrates the auction lifecycle. It is the single entry
// point a dispatcher invokes per operation: each method validates its
// request, reads the prior state, applies the pure domain arithmetic,
// signals asset transfers, and persists the new snapshot. Every transition
// is derived purely from the prior state and the request inputs.
type Controller struct {
	env     Env
	reclaim ReclaimPolicy
}

// Option configures a Controller.
type Option func(*Controller)

// WithReclaimPolicy overrides the item reclaim entitlement rule.
func WithReclaimPolicy(p ReclaimPolicy) Option {
	return func(c *Controller) { c.reclaim = p }
}

// NewController builds a controller over the given collaborators.
func NewController(env Env, opts ...Option) *Controller {
	c := &Controller{env: env, reclaim: DefaultReclaimPolicy}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// requireSigner checks that the identity authorized this operation.
func (c *Controller) requireSigner(id core.Identity) error {
	if !c.env.Signers.IsSigner(id) {
		return fmt.Errorf("identity %s: %w", id, ErrMissingSignature)
	}
	return nil
}

func (c *Controller) loadState() (*ProgramState, error) {
	data, err := c.env.Store.Load(StateKey())
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("program state: %w", ErrNotInitialized)
		}
		return nil, fmt.Errorf("failed to load program state: %w", err)
	}
	return DecodeProgramState(data)
}

func (c *Controller) storeState(s *ProgramState) error {
	return c.env.Store.Store(StateKey(), EncodeProgramState(s))
}

func (c *Controller) loadAuction(id core.AuctionID) (*Auction, error) {
	data, err := c.env.Store.Load(AuctionKey(id))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("auction %s: %w", id, ErrAuctionNotFound)
		}
		return nil, fmt.Errorf("failed to load auction %s: %w", id, err)
	}
	return DecodeAuction(data)
}

func (c *Controller) storeAuction(a *Auction) error {
	data, err := EncodeAuction(a)
	if err != nil {
		return err
	}
	return c.env.Store.Store(AuctionKey(a.ID), data)
}

// loadUnpausedState loads the program state and rejects while paused.
func (c *Controller) loadUnpausedState() (*ProgramState, error) {
	state, err := c.loadState()
	if err != nil {
		return nil, err
	}
	if state.Paused {
		return nil, ErrContractPaused
	}
	return state, nil
}

// Initialize creates the program state singleton with the payer as owner.
func (c *Controller) Initialize(req settleapi.InitializeRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := c.requireSigner(req.Payer); err != nil {
		return err
	}

	if _, err := c.env.Store.Load(StateKey()); err == nil {
		return fmt.Errorf("program state: %w", ErrAlreadyInitialized)
	} else if !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("failed to probe program state: %w", err)
	}

	if err := c.env.Store.Create(StateKey(), programStateLen, TagState); err != nil {
		return fmt.Errorf("failed to create program state: %w", err)
	}
	return c.storeState(&ProgramState{Owner: req.Payer})
}

// SetPaused toggles the global pause flag. Owner-only.
func (c *Controller) SetPaused(req settleapi.SetPausedRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := c.requireSigner(req.Caller); err != nil {
		return err
	}

	state, err := c.loadState()
	if err != nil {
		return err
	}
	if state.Owner != req.Caller {
		return ErrOnlyOwner
	}

	state.Paused = req.Paused
	return c.storeState(state)
}

// TransferOwnership hands the program state to a new owner. Owner-only.
func (c *Controller) TransferOwnership(req settleapi.TransferOwnershipRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := c.requireSigner(req.Caller); err != nil {
		return err
	}

	state, err := c.loadState()
	if err != nil {
		return err
	}
	if state.Owner != req.Caller {
		return ErrOnlyOwner
	}

	state.Owner = req.NewOwner
	return c.storeState(state)
}

// ClaimFees sweeps the full fee vault balance for one denomination to the
// owner and zeroes the vault. Owner-only; fails with ErrNoFunds when the
// vault is absent or empty.
func (c *Controller) ClaimFees(req settleapi.ClaimFeesRequest) (uint64, error) {
	if err := req.Validate(); err != nil {
		return 0, err
	}
	if err := c.requireSigner(req.Caller); err != nil {
		return 0, err
	}

	state, err := c.loadState()
	if err != nil {
		return 0, err
	}
	if state.Owner != req.Caller {
		return 0, ErrOnlyOwner
	}

	data, err := c.env.Store.Load(FeeVaultKey(req.Denomination))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return 0, fmt.Errorf("fee vault for %s: %w", req.Denomination, ErrNoFunds)
		}
		return 0, fmt.Errorf("failed to load fee vault: %w", err)
	}
	vault, err := DecodeFeeVault(data)
	if err != nil {
		return 0, err
	}
	if vault.Amount == 0 {
		return 0, fmt.Errorf("fee vault for %s is empty: %w", req.Denomination, ErrNoFunds)
	}

	claimed := vault.Amount
	err = c.env.Assets.Transfer(
		FeeVaultAddress(req.Denomination),
		core.AccountAddress(state.Owner),
		req.Denomination,
		claimed,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to transfer claimed fees: %w", err)
	}

	vault.Amount = 0
	if err := c.env.Store.Store(FeeVaultKey(req.Denomination), EncodeFeeVault(vault)); err != nil {
		return 0, err
	}
	return claimed, nil
}

// createAuction performs the common part of auction creation: global
// checks, id allocation, escrow allocation, counter increment.
func (c *Controller) createAuction(dealer core.Identity, a *Auction) (*Auction, error) {
	if err := c.requireSigner(dealer); err != nil {
		return nil, err
	}

	state, err := c.loadUnpausedState()
	if err != nil {
		return nil, err
	}

	if _, err := c.env.Store.Load(AuctionKey(a.ID)); err == nil {
		return nil, fmt.Errorf("auction id %s already in use: %w", a.ID, ErrAlreadyInitialized)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to probe auction %s: %w", a.ID, err)
	}

	encoded, err := EncodeAuction(a)
	if err != nil {
		return nil, err
	}
	if err := c.env.Store.Create(AuctionKey(a.ID), uint64(len(encoded)), TagAuction); err != nil {
		return nil, fmt.Errorf("failed to create auction record: %w", err)
	}
	if err := c.env.Store.Create(EscrowKey(a.ID), 0, TagEscrow); err != nil {
		return nil, fmt.Errorf("failed to create escrow account: %w", err)
	}
	if err := c.env.Store.Store(AuctionKey(a.ID), encoded); err != nil {
		return nil, err
	}

	state.AuctionCount = core.SaturatingAdd(state.AuctionCount, 1)
	if err := c.storeState(state); err != nil {
		return nil, err
	}
	return a, nil
}

// CreateTraditional opens an ascending auction.
func (c *Controller) CreateTraditional(req settleapi.CreateTraditionalRequest) (*Auction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := c.env.Clock.Now()
	if req.Deadline <= now {
		return nil, fmt.Errorf("deadline %d is not in the future: %w", req.Deadline, ErrAuctionExpired)
	}

	return c.createAuction(req.Dealer, &Auction{
		ID:                  req.AuctionID,
		Status:              StatusActive,
		Type:                TypeTraditional,
		Dealer:              req.Dealer,
		PaymentDenomination: req.PaymentDenomination,
		Traditional: &TraditionalParams{
			StartAmount:  req.StartAmount,
			Increment:    req.Increment,
			ReservePrice: req.ReservePrice,
			Deadline:     req.Deadline,
		},
		CreatedAt: now,
	})
}

// CreateDutch opens a descending auction whose price schedule starts now.
func (c *Controller) CreateDutch(req settleapi.CreateDutchRequest) (*Auction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := c.env.Clock.Now()
	if req.Deadline <= now {
		return nil, fmt.Errorf("deadline %d is not in the future: %w", req.Deadline, ErrAuctionExpired)
	}

	return c.createAuction(req.Dealer, &Auction{
		ID:                  req.AuctionID,
		Status:              StatusActive,
		Type:                TypeDutch,
		Dealer:              req.Dealer,
		PaymentDenomination: req.PaymentDenomination,
		Dutch: &DutchParams{
			StartPrice:     req.StartPrice,
			DecreaseAmount: req.DecreaseAmount,
			Interval:       req.Interval,
			MinimumPrice:   req.MinimumPrice,
			Deadline:       req.Deadline,
			StartTime:      now,
		},
		CreatedAt: now,
	})
}

// CreatePenny opens an escalating-timer auction. No deadline exists until
// the first bid starts the timer.
func (c *Controller) CreatePenny(req settleapi.CreatePennyRequest) (*Auction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := c.env.Clock.Now()
	return c.createAuction(req.Dealer, &Auction{
		ID:                  req.AuctionID,
		Status:              StatusActive,
		Type:                TypePenny,
		Dealer:              req.Dealer,
		PaymentDenomination: req.PaymentDenomination,
		Penny: &PennyParams{
			Increment:     req.Increment,
			TimerDuration: req.TimerDuration,
		},
		CreatedAt: now,
	})
}

// DepositItem escrows one asset into an Active auction. Dealer-only.
// Deposits of the same asset class share a vault; each deposit gets its
// own item record at the next sequential index.
func (c *Controller) DepositItem(req settleapi.DepositItemRequest) (*AuctionItem, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := c.requireSigner(req.Dealer); err != nil {
		return nil, err
	}

	auction, err := c.loadAuction(req.AuctionID)
	if err != nil {
		return nil, err
	}
	if auction.Dealer != req.Dealer {
		return nil, ErrOnlyDealer
	}
	if auction.Status != StatusActive {
		return nil, fmt.Errorf("cannot deposit into %s auction: %w", auction.Status, ErrAuctionNotActive)
	}
	if auction.ItemCount >= MaxItems {
		return nil, ErrMaxItemsExceeded
	}

	amount := req.Amount
	if req.NonFungible {
		amount = 1
	}

	item := &AuctionItem{
		AuctionID:   req.AuctionID,
		AssetClass:  req.AssetClass,
		Amount:      amount,
		NonFungible: req.NonFungible,
		Index:       auction.ItemCount,
	}

	itemKey := ItemKey(req.AuctionID, item.Index)
	if err := c.env.Store.Create(itemKey, auctionItemLen, TagItem); err != nil {
		return nil, fmt.Errorf("failed to create item record: %w", err)
	}

	// The vault for this asset class is created on first use and shared
	// by later deposits of the same class.
	vaultKey := ItemVaultKey(req.AuctionID, req.AssetClass)
	if _, err := c.env.Store.Load(vaultKey); errors.Is(err, ErrNotFound) {
		if err := c.env.Store.Create(vaultKey, 0, TagItemVault); err != nil {
			return nil, fmt.Errorf("failed to create item vault: %w", err)
		}
		if err := c.env.Store.Store(vaultKey, []byte{SchemaVersion}); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to probe item vault: %w", err)
	}

	err = c.env.Assets.Transfer(
		core.AccountAddress(req.Dealer),
		ItemVaultAddress(req.AuctionID, req.AssetClass),
		req.AssetClass,
		amount,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to escrow deposit: %w", err)
	}

	if err := c.env.Store.Store(itemKey, EncodeAuctionItem(item)); err != nil {
		return nil, err
	}

	auction.ItemCount++
	if err := c.storeAuction(auction); err != nil {
		return nil, err
	}
	return item, nil
}

// BidTraditional places an ascending-auction bid. The previous bidder is
// refunded in full before the new bid is escrowed; a refund failure aborts
// the operation before the new deposit is attempted.
func (c *Controller) BidTraditional(req settleapi.BidTraditionalRequest) (*Auction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := c.requireSigner(req.Bidder); err != nil {
		return nil, err
	}
	if _, err := c.loadUnpausedState(); err != nil {
		return nil, err
	}

	auction, err := c.loadAuction(req.AuctionID)
	if err != nil {
		return nil, err
	}
	if auction.Status != StatusActive {
		return nil, fmt.Errorf("cannot bid on %s auction: %w", auction.Status, ErrAuctionNotActive)
	}
	params, err := auction.TraditionalParams()
	if err != nil {
		return nil, err
	}

	now := c.env.Clock.Now()
	if now > params.Deadline {
		return nil, fmt.Errorf("deadline %d passed at %d: %w", params.Deadline, now, ErrAuctionExpired)
	}

	minBid := params.StartAmount
	if auction.CurrentBid > 0 {
		var ok bool
		minBid, ok = core.CheckedAdd(auction.CurrentBid, params.Increment)
		if !ok {
			return nil, fmt.Errorf("current bid plus increment overflows: %w", ErrMathOverflow)
		}
	}
	if req.Amount < minBid {
		return nil, fmt.Errorf("bid %d below minimum %d: %w", req.Amount, minBid, ErrBidTooLow)
	}

	escrow := EscrowAddress(auction.ID)

	// Refund first. Ordering matters: if the refund fails nothing else
	// runs, and the external storage commit discards the whole operation.
	if auction.HasBidder() && auction.CurrentBid > 0 {
		prev := core.AccountAddress(auction.CurrentBidder)
		if err := c.env.Assets.Transfer(escrow, prev, auction.PaymentDenomination, auction.CurrentBid); err != nil {
			return nil, fmt.Errorf("failed to refund previous bidder: %w", err)
		}
	}

	err = c.env.Assets.Transfer(core.AccountAddress(req.Bidder), escrow, auction.PaymentDenomination, req.Amount)
	if err != nil {
		return nil, fmt.Errorf("failed to escrow bid: %w", err)
	}

	auction.CurrentBidder = req.Bidder
	auction.CurrentBid = req.Amount
	params.ReserveMet = req.Amount >= params.ReservePrice

	if err := c.storeAuction(auction); err != nil {
		return nil, err
	}
	return auction, nil
}

// ensureFeeVault loads the fee vault for a denomination, creating an empty
// one on first use.
func (c *Controller) ensureFeeVault(denomination core.AssetClass) (*FeeVault, error) {
	key := FeeVaultKey(denomination)
	data, err := c.env.Store.Load(key)
	if err == nil {
		return DecodeFeeVault(data)
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, fmt.Errorf("failed to load fee vault: %w", err)
	}

	vault := &FeeVault{PaymentDenomination: denomination}
	if err := c.env.Store.Create(key, feeVaultLen, TagFeeVault); err != nil {
		return nil, fmt.Errorf("failed to create fee vault: %w", err)
	}
	if err := c.env.Store.Store(key, EncodeFeeVault(vault)); err != nil {
		return nil, err
	}
	return vault, nil
}

// collectFee moves fee from payer into the denomination's fee vault and
// persists the accrued amount. A zero fee is a no-op.
func (c *Controller) collectFee(payer core.Address, denomination core.AssetClass, fee uint64) error {
	vault, err := c.ensureFeeVault(denomination)
	if err != nil {
		return err
	}
	if fee == 0 {
		return nil
	}
	if err := c.env.Assets.Transfer(payer, FeeVaultAddress(denomination), denomination, fee); err != nil {
		return fmt.Errorf("failed to collect fee: %w", err)
	}
	vault.Amount = core.SaturatingAdd(vault.Amount, fee)
	return c.env.Store.Store(FeeVaultKey(denomination), EncodeFeeVault(vault))
}

// BuyDutch buys at the current descending price. Settles immediately: net
// to the dealer, fee to the vault, auction straight to Finalized. Dutch
// auctions never pass through Expired.
func (c *Controller) BuyDutch(req settleapi.BuyDutchRequest) (*Auction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := c.requireSigner(req.Buyer); err != nil {
		return nil, err
	}
	if _, err := c.loadUnpausedState(); err != nil {
		return nil, err
	}

	auction, err := c.loadAuction(req.AuctionID)
	if err != nil {
		return nil, err
	}
	if auction.Status != StatusActive {
		return nil, fmt.Errorf("cannot buy from %s auction: %w", auction.Status, ErrAuctionNotActive)
	}
	if auction.ItemCount == 0 {
		return nil, fmt.Errorf("auction holds no items: %w", ErrNoItems)
	}
	params, err := auction.DutchParams()
	if err != nil {
		return nil, err
	}

	now := c.env.Clock.Now()
	if now > params.Deadline {
		return nil, fmt.Errorf("deadline %d passed at %d: %w", params.Deadline, now, ErrAuctionExpired)
	}

	currentPrice := params.Curve().PriceAt(now)
	if currentPrice > req.MaxPrice {
		return nil, fmt.Errorf("current price %d exceeds max price %d: %w", currentPrice, req.MaxPrice, ErrBidTooLow)
	}

	fee, net := core.SplitFee(currentPrice)
	buyer := core.AccountAddress(req.Buyer)

	err = c.env.Assets.Transfer(buyer, core.AccountAddress(auction.Dealer), auction.PaymentDenomination, net)
	if err != nil {
		return nil, fmt.Errorf("failed to pay dealer: %w", err)
	}
	if err := c.collectFee(buyer, auction.PaymentDenomination, fee); err != nil {
		return nil, err
	}

	auction.CurrentBidder = req.Buyer
	auction.CurrentBid = currentPrice
	auction.Status = StatusFinalized
	auction.FinalizedAt = now

	if err := c.storeAuction(auction); err != nil {
		return nil, err
	}
	return auction, nil
}

// BidPenny pays one increment (net to the dealer immediately, fee to the
// vault) and resets the escalation timer. The auction stays Active.
func (c *Controller) BidPenny(req settleapi.BidPennyRequest) (*Auction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := c.requireSigner(req.Bidder); err != nil {
		return nil, err
	}
	if _, err := c.loadUnpausedState(); err != nil {
		return nil, err
	}

	auction, err := c.loadAuction(req.AuctionID)
	if err != nil {
		return nil, err
	}
	if auction.Status != StatusActive {
		return nil, fmt.Errorf("cannot bid on %s auction: %w", auction.Status, ErrAuctionNotActive)
	}
	params, err := auction.PennyParams()
	if err != nil {
		return nil, err
	}

	now := c.env.Clock.Now()
	if params.CurrentDeadline > 0 && now > params.CurrentDeadline {
		return nil, fmt.Errorf("timer expired at %d: %w", params.CurrentDeadline, ErrAuctionExpired)
	}

	fee, net := core.SplitFee(params.Increment)
	bidder := core.AccountAddress(req.Bidder)

	err = c.env.Assets.Transfer(bidder, core.AccountAddress(auction.Dealer), auction.PaymentDenomination, net)
	if err != nil {
		return nil, fmt.Errorf("failed to pay dealer: %w", err)
	}
	if err := c.collectFee(bidder, auction.PaymentDenomination, fee); err != nil {
		return nil, err
	}

	params.TotalPaid = core.SaturatingAdd(params.TotalPaid, params.Increment)
	params.LastBidTime = now
	params.CurrentDeadline = core.SaturatingAddTime(now, params.TimerDuration)

	auction.CurrentBidder = req.Bidder
	auction.CurrentBid = params.TotalPaid

	if err := c.storeAuction(auction); err != nil {
		return nil, err
	}
	return auction, nil
}

// Finalize drives an auction past its deadline into a terminal state.
// Permissionless; behavior branches on the auction type. Calling it on an
// already-terminal auction fails rather than re-applying side effects.
func (c *Controller) Finalize(req settleapi.FinalizeRequest) (*Auction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if _, err := c.loadUnpausedState(); err != nil {
		return nil, err
	}

	auction, err := c.loadAuction(req.AuctionID)
	if err != nil {
		return nil, err
	}
	if auction.Status != StatusActive && auction.Status != StatusExpired {
		return nil, fmt.Errorf("cannot finalize %s auction: %w", auction.Status, ErrAuctionNotActive)
	}

	now := c.env.Clock.Now()

	switch auction.Type {
	case TypeTraditional:
		if err := c.finalizeTraditional(auction, now); err != nil {
			return nil, err
		}
	case TypeDutch:
		params, err := auction.DutchParams()
		if err != nil {
			return nil, err
		}
		if now <= params.Deadline {
			return nil, fmt.Errorf("deadline %d not reached at %d: %w", params.Deadline, now, ErrAuctionNotExpired)
		}
		// The sale path already settled in BuyDutch; reaching finalize
		// means nobody bought.
		auction.Status = StatusRefunded
		auction.FinalizedAt = now
	case TypePenny:
		params, err := auction.PennyParams()
		if err != nil {
			return nil, err
		}
		if params.CurrentDeadline == 0 {
			return nil, fmt.Errorf("no bid ever placed: %w", ErrNoBidder)
		}
		if now <= params.CurrentDeadline {
			return nil, fmt.Errorf("timer runs until %d: %w", params.CurrentDeadline, ErrPennyTimerNotExpired)
		}
		// Winner already paid incrementally during bidding.
		auction.Status = StatusFinalized
		auction.FinalizedAt = now
	default:
		return nil, fmt.Errorf("unknown auction type tag %d: %w", auction.Type, ErrInvalidAuctionType)
	}

	if err := c.storeAuction(auction); err != nil {
		return nil, err
	}
	return auction, nil
}

func (c *Controller) finalizeTraditional(auction *Auction, now int64) error {
	params, err := auction.TraditionalParams()
	if err != nil {
		return err
	}
	if now <= params.Deadline {
		return fmt.Errorf("deadline %d not reached at %d: %w", params.Deadline, now, ErrAuctionNotExpired)
	}

	escrow := EscrowAddress(auction.ID)

	switch {
	case !auction.HasBidder():
		auction.Status = StatusRefunded
		auction.FinalizedAt = now

	case params.ReserveMet:
		if err := c.payoutEscrowedBid(auction, escrow); err != nil {
			return err
		}
		auction.Status = StatusFinalized
		auction.FinalizedAt = now

	default:
		// Reserve not met: give the dealer a decision window, then
		// refund when it lapses.
		acceptanceDeadline := core.SaturatingAddTime(params.Deadline, AcceptancePeriod)
		if now <= acceptanceDeadline {
			auction.Status = StatusExpired
			params.AcceptanceDeadline = acceptanceDeadline
		} else {
			prev := core.AccountAddress(auction.CurrentBidder)
			if err := c.env.Assets.Transfer(escrow, prev, auction.PaymentDenomination, auction.CurrentBid); err != nil {
				return fmt.Errorf("failed to refund bidder: %w", err)
			}
			auction.Status = StatusRefunded
			auction.FinalizedAt = now
		}
	}
	return nil
}

// payoutEscrowedBid splits the escrowed winning bid into fee and net and
// signals both transfers.
func (c *Controller) payoutEscrowedBid(auction *Auction, escrow core.Address) error {
	fee, net := core.SplitFee(auction.CurrentBid)
	err := c.env.Assets.Transfer(escrow, core.AccountAddress(auction.Dealer), auction.PaymentDenomination, net)
	if err != nil {
		return fmt.Errorf("failed to pay dealer: %w", err)
	}
	return c.collectFee(escrow, auction.PaymentDenomination, fee)
}

// AcceptBid lets the dealer accept a below-reserve bid while the auction
// sits in the Expired decision window. Dealer-only.
func (c *Controller) AcceptBid(req settleapi.AcceptBidRequest) (*Auction, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if err := c.requireSigner(req.Dealer); err != nil {
		return nil, err
	}
	if _, err := c.loadUnpausedState(); err != nil {
		return nil, err
	}

	auction, err := c.loadAuction(req.AuctionID)
	if err != nil {
		return nil, err
	}
	if auction.Dealer != req.Dealer {
		return nil, ErrOnlyDealer
	}
	if auction.Status != StatusExpired {
		return nil, fmt.Errorf("cannot accept bid on %s auction: %w", auction.Status, ErrAuctionNotActive)
	}
	if !auction.HasBidder() {
		return nil, ErrNoBidder
	}
	params, err := auction.TraditionalParams()
	if err != nil {
		return nil, err
	}

	now := c.env.Clock.Now()
	if params.AcceptanceDeadline > 0 && now > params.AcceptanceDeadline {
		return nil, fmt.Errorf("acceptance window closed at %d: %w", params.AcceptanceDeadline, ErrAcceptancePeriodExpired)
	}

	if err := c.payoutEscrowedBid(auction, EscrowAddress(auction.ID)); err != nil {
		return nil, err
	}

	auction.Status = StatusFinalized
	auction.FinalizedAt = now

	if err := c.storeAuction(auction); err != nil {
		return nil, err
	}
	return auction, nil
}

// CloseItemVault reclaims one deposited item after the auction is
// terminal: remaining balance to the caller-chosen recipient, vault and
// item record storage reclaimed. Entitlement is decided by the reclaim
// policy.
func (c *Controller) CloseItemVault(req settleapi.CloseItemVaultRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	if err := c.requireSigner(req.Caller); err != nil {
		return err
	}

	auction, err := c.loadAuction(req.AuctionID)
	if err != nil {
		return err
	}
	if !auction.Status.Terminal() {
		return fmt.Errorf("cannot reclaim items from %s auction: %w", auction.Status, ErrAuctionNotActive)
	}
	if err := c.reclaim(auction, req.Caller); err != nil {
		return err
	}

	itemKey := ItemKey(req.AuctionID, req.ItemIndex)
	data, err := c.env.Store.Load(itemKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return fmt.Errorf("item %d: %w", req.ItemIndex, ErrNoItems)
		}
		return fmt.Errorf("failed to load item %d: %w", req.ItemIndex, err)
	}
	item, err := DecodeAuctionItem(data)
	if err != nil {
		return err
	}
	if item.Index != req.ItemIndex || item.AuctionID != req.AuctionID {
		return fmt.Errorf("item record mismatch at index %d: %w", req.ItemIndex, ErrNoItems)
	}

	vault := ItemVaultAddress(req.AuctionID, item.AssetClass)
	balance, err := c.env.Assets.Balance(vault, item.AssetClass)
	if err != nil {
		return fmt.Errorf("failed to read vault balance: %w", err)
	}
	if balance > 0 {
		if err := c.env.Assets.Transfer(vault, req.Recipient, item.AssetClass, balance); err != nil {
			return fmt.Errorf("failed to release items: %w", err)
		}
	}
	if err := c.env.Assets.Close(vault, item.AssetClass, req.RentRecipient); err != nil {
		return fmt.Errorf("failed to close item vault: %w", err)
	}

	if err := c.env.Store.Delete(itemKey); err != nil {
		return fmt.Errorf("failed to reclaim item record: %w", err)
	}
	return nil
}
