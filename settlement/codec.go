package settlement

import (
	"encoding/binary"
	"fmt"
)

// Persisted layout is bit-exact: fields in declaration order, little-endian
// fixed widths, booleans as one byte, preceded by the schema-version byte.
// Implementations that share stored data must match this layout.

const (
	programStateLen = 1 + 32 + 1 + 8
	auctionHeadLen  = 1 + 32 + 1 + 1 + 32 + 32 + 32 + 8 + 1 + 8 + 8
	traditionalLen  = 8 + 8 + 8 + 8 + 8 + 1
	dutchLen        = 8 + 8 + 8 + 8 + 8 + 8
	pennyLen        = 8 + 8 + 8 + 8 + 8
	auctionItemLen  = 1 + 32 + 32 + 8 + 1 + 1
	feeVaultLen     = 1 + 32 + 8
)

func appendBool(buf []byte, v bool) []byte {
	if v {
		return append(buf, 1)
	}
	return append(buf, 0)
}

func appendInt64(buf []byte, v int64) []byte {
	return binary.LittleEndian.AppendUint64(buf, uint64(v))
}

func readBool(b byte) bool {
	return b != 0
}

func readU64(buf []byte) uint64 {
	return binary.LittleEndian.Uint64(buf)
}

func readI64(buf []byte) int64 {
	return int64(binary.LittleEndian.Uint64(buf))
}

func checkRecord(buf []byte, wantLen int, kind string) error {
	if len(buf) != wantLen {
		return fmt.Errorf("%s record is %d bytes, want %d: %w", kind, len(buf), wantLen, ErrInvalidRecord)
	}
	if buf[0] != SchemaVersion {
		return fmt.Errorf("%s record has schema version %d, want %d: %w", kind, buf[0], SchemaVersion, ErrInvalidRecord)
	}
	return nil
}

// EncodeProgramState serializes the singleton program state.
func EncodeProgramState(s *ProgramState) []byte {
	buf := make([]byte, 0, programStateLen)
	buf = append(buf, SchemaVersion)
	buf = append(buf, s.Owner[:]...)
	buf = appendBool(buf, s.Paused)
	buf = binary.LittleEndian.AppendUint64(buf, s.AuctionCount)
	return buf
}

// DecodeProgramState parses a persisted program state record.
func DecodeProgramState(buf []byte) (*ProgramState, error) {
	if err := checkRecord(buf, programStateLen, "program state"); err != nil {
		return nil, err
	}
	s := &ProgramState{}
	copy(s.Owner[:], buf[1:33])
	s.Paused = readBool(buf[33])
	s.AuctionCount = readU64(buf[34:42])
	return s, nil
}

// EncodeAuction serializes an auction with its type-specific parameter
// record. The parameter block follows the fixed header and its shape is
// selected by the type tag.
func EncodeAuction(a *Auction) ([]byte, error) {
	var paramsLen int
	switch a.Type {
	case TypeTraditional:
		paramsLen = traditionalLen
	case TypeDutch:
		paramsLen = dutchLen
	case TypePenny:
		paramsLen = pennyLen
	default:
		return nil, fmt.Errorf("unknown auction type tag %d: %w", a.Type, ErrInvalidAuctionType)
	}

	buf := make([]byte, 0, auctionHeadLen+paramsLen)
	buf = append(buf, SchemaVersion)
	buf = append(buf, a.ID[:]...)
	buf = append(buf, byte(a.Status))
	buf = append(buf, byte(a.Type))
	buf = append(buf, a.Dealer[:]...)
	buf = append(buf, a.CurrentBidder[:]...)
	buf = append(buf, a.PaymentDenomination[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, a.CurrentBid)
	buf = append(buf, a.ItemCount)
	buf = appendInt64(buf, a.CreatedAt)
	buf = appendInt64(buf, a.FinalizedAt)

	switch a.Type {
	case TypeTraditional:
		p, err := a.TraditionalParams()
		if err != nil {
			return nil, err
		}
		buf = binary.LittleEndian.AppendUint64(buf, p.StartAmount)
		buf = binary.LittleEndian.AppendUint64(buf, p.Increment)
		buf = binary.LittleEndian.AppendUint64(buf, p.ReservePrice)
		buf = appendInt64(buf, p.Deadline)
		buf = appendInt64(buf, p.AcceptanceDeadline)
		buf = appendBool(buf, p.ReserveMet)
	case TypeDutch:
		p, err := a.DutchParams()
		if err != nil {
			return nil, err
		}
		buf = binary.LittleEndian.AppendUint64(buf, p.StartPrice)
		buf = binary.LittleEndian.AppendUint64(buf, p.DecreaseAmount)
		buf = appendInt64(buf, p.Interval)
		buf = binary.LittleEndian.AppendUint64(buf, p.MinimumPrice)
		buf = appendInt64(buf, p.Deadline)
		buf = appendInt64(buf, p.StartTime)
	case TypePenny:
		p, err := a.PennyParams()
		if err != nil {
			return nil, err
		}
		buf = binary.LittleEndian.AppendUint64(buf, p.Increment)
		buf = appendInt64(buf, p.TimerDuration)
		buf = appendInt64(buf, p.CurrentDeadline)
		buf = binary.LittleEndian.AppendUint64(buf, p.TotalPaid)
		buf = appendInt64(buf, p.LastBidTime)
	}
	return buf, nil
}

// DecodeAuction parses a persisted auction record. The parameter block is
// decoded according to the stored type tag; a truncated or oversized
// record fails with ErrInvalidRecord rather than being coerced.
func DecodeAuction(buf []byte) (*Auction, error) {
	if len(buf) < auctionHeadLen {
		return nil, fmt.Errorf("auction record is %d bytes, want at least %d: %w", len(buf), auctionHeadLen, ErrInvalidRecord)
	}

	tag := TypeTag(buf[34])
	switch tag {
	case TypeTraditional:
		if err := checkRecord(buf, auctionHeadLen+traditionalLen, "auction"); err != nil {
			return nil, err
		}
	case TypeDutch:
		if err := checkRecord(buf, auctionHeadLen+dutchLen, "auction"); err != nil {
			return nil, err
		}
	case TypePenny:
		if err := checkRecord(buf, auctionHeadLen+pennyLen, "auction"); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("auction record has unknown type tag %d: %w", tag, ErrInvalidRecord)
	}

	a := &Auction{Type: tag}
	copy(a.ID[:], buf[1:33])
	a.Status = Status(buf[33])
	copy(a.Dealer[:], buf[35:67])
	copy(a.CurrentBidder[:], buf[67:99])
	copy(a.PaymentDenomination[:], buf[99:131])
	a.CurrentBid = readU64(buf[131:139])
	a.ItemCount = buf[139]
	a.CreatedAt = readI64(buf[140:148])
	a.FinalizedAt = readI64(buf[148:156])

	params := buf[auctionHeadLen:]
	switch tag {
	case TypeTraditional:
		a.Traditional = &TraditionalParams{
			StartAmount:        readU64(params[0:8]),
			Increment:          readU64(params[8:16]),
			ReservePrice:       readU64(params[16:24]),
			Deadline:           readI64(params[24:32]),
			AcceptanceDeadline: readI64(params[32:40]),
			ReserveMet:         readBool(params[40]),
		}
	case TypeDutch:
		a.Dutch = &DutchParams{
			StartPrice:     readU64(params[0:8]),
			DecreaseAmount: readU64(params[8:16]),
			Interval:       readI64(params[16:24]),
			MinimumPrice:   readU64(params[24:32]),
			Deadline:       readI64(params[32:40]),
			StartTime:      readI64(params[40:48]),
		}
	case TypePenny:
		a.Penny = &PennyParams{
			Increment:       readU64(params[0:8]),
			TimerDuration:   readI64(params[8:16]),
			CurrentDeadline: readI64(params[16:24]),
			TotalPaid:       readU64(params[24:32]),
			LastBidTime:     readI64(params[32:40]),
		}
	}
	return a, nil
}

// EncodeAuctionItem serializes one deposited item record.
func EncodeAuctionItem(it *AuctionItem) []byte {
	buf := make([]byte, 0, auctionItemLen)
	buf = append(buf, SchemaVersion)
	buf = append(buf, it.AuctionID[:]...)
	buf = append(buf, it.AssetClass[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, it.Amount)
	buf = appendBool(buf, it.NonFungible)
	buf = append(buf, it.Index)
	return buf
}

// DecodeAuctionItem parses a persisted item record.
func DecodeAuctionItem(buf []byte) (*AuctionItem, error) {
	if err := checkRecord(buf, auctionItemLen, "auction item"); err != nil {
		return nil, err
	}
	it := &AuctionItem{}
	copy(it.AuctionID[:], buf[1:33])
	copy(it.AssetClass[:], buf[33:65])
	it.Amount = readU64(buf[65:73])
	it.NonFungible = readBool(buf[73])
	it.Index = buf[74]
	return it, nil
}

// EncodeFeeVault serializes a fee vault record.
func EncodeFeeVault(v *FeeVault) []byte {
	buf := make([]byte, 0, feeVaultLen)
	buf = append(buf, SchemaVersion)
	buf = append(buf, v.PaymentDenomination[:]...)
	buf = binary.LittleEndian.AppendUint64(buf, v.Amount)
	return buf
}

// DecodeFeeVault parses a persisted fee vault record.
func DecodeFeeVault(buf []byte) (*FeeVault, error) {
	if err := checkRecord(buf, feeVaultLen, "fee vault"); err != nil {
		return nil, err
	}
	v := &FeeVault{}
	copy(v.PaymentDenomination[:], buf[1:33])
	v.Amount = readU64(buf[33:41])
	return v, nil
}
