package settlement

import (
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestProgramStateRoundTrip(t *testing.T) {
	in := &ProgramState{Owner: ident(0x11), Paused: true, AuctionCount: 42}

	buf := EncodeProgramState(in)
	check.Equal(t, programStateLen, len(buf))
	check.Equal(t, byte(SchemaVersion), buf[0])

	out, err := DecodeProgramState(buf)
	assert.NoError(t, err)
	check.Equal(t, in, out)
}

func TestAuctionRoundTrip_Traditional(t *testing.T) {
	in := &Auction{
		ID:                  auctionID(0x21),
		Status:              StatusExpired,
		Type:                TypeTraditional,
		Dealer:              ident(0x22),
		CurrentBidder:       ident(0x23),
		PaymentDenomination: asset(0x24),
		CurrentBid:          160,
		ItemCount:           3,
		CreatedAt:           1_000,
		FinalizedAt:         0,
		Traditional: &TraditionalParams{
			StartAmount:        100,
			Increment:          10,
			ReservePrice:       500,
			Deadline:           5_000,
			AcceptanceDeadline: 5_000 + AcceptancePeriod,
			ReserveMet:         false,
		},
	}

	buf, err := EncodeAuction(in)
	assert.NoError(t, err)
	check.Equal(t, auctionHeadLen+traditionalLen, len(buf))

	out, err := DecodeAuction(buf)
	assert.NoError(t, err)
	check.Equal(t, in, out)
}

func TestAuctionRoundTrip_Dutch(t *testing.T) {
	in := &Auction{
		ID:                  auctionID(0x31),
		Status:              StatusActive,
		Type:                TypeDutch,
		Dealer:              ident(0x32),
		PaymentDenomination: asset(0x33),
		ItemCount:           1,
		CreatedAt:           2_000,
		Dutch: &DutchParams{
			StartPrice:     1_000,
			DecreaseAmount: 10,
			Interval:       60,
			MinimumPrice:   100,
			Deadline:       10_000,
			StartTime:      2_000,
		},
	}

	buf, err := EncodeAuction(in)
	assert.NoError(t, err)
	check.Equal(t, auctionHeadLen+dutchLen, len(buf))

	out, err := DecodeAuction(buf)
	assert.NoError(t, err)
	check.Equal(t, in, out)
}

func TestAuctionRoundTrip_Penny(t *testing.T) {
	in := &Auction{
		ID:                  auctionID(0x41),
		Status:              StatusFinalized,
		Type:                TypePenny,
		Dealer:              ident(0x42),
		CurrentBidder:       ident(0x43),
		PaymentDenomination: asset(0x44),
		CurrentBid:          3_000,
		CreatedAt:           1_000,
		FinalizedAt:         9_000,
		Penny: &PennyParams{
			Increment:       1_000,
			TimerDuration:   300,
			CurrentDeadline: 8_700,
			TotalPaid:       3_000,
			LastBidTime:     8_400,
		},
	}

	buf, err := EncodeAuction(in)
	assert.NoError(t, err)
	check.Equal(t, auctionHeadLen+pennyLen, len(buf))

	out, err := DecodeAuction(buf)
	assert.NoError(t, err)
	check.Equal(t, in, out)
}

func TestEncodeAuction_RequiresMatchingParams(t *testing.T) {
	// Tag says Traditional but the params variant is missing
	_, err := EncodeAuction(&Auction{ID: auctionID(1), Type: TypeTraditional})
	check.True(t, errors.Is(err, ErrInvalidAuctionType))

	_, err = EncodeAuction(&Auction{ID: auctionID(1), Type: TypeTag(9)})
	check.True(t, errors.Is(err, ErrInvalidAuctionType))
}

func TestDecodeAuction_Invalid(t *testing.T) {
	good, err := EncodeAuction(&Auction{
		ID: auctionID(1), Type: TypePenny, Dealer: ident(2), PaymentDenomination: asset(3),
		Penny: &PennyParams{Increment: 5, TimerDuration: 300},
	})
	assert.NoError(t, err)

	// Truncated
	_, err = DecodeAuction(good[:len(good)-1])
	check.True(t, errors.Is(err, ErrInvalidRecord))

	// Too short to even carry a header
	_, err = DecodeAuction(good[:10])
	check.True(t, errors.Is(err, ErrInvalidRecord))

	// Wrong schema version
	bad := append([]byte(nil), good...)
	bad[0] = SchemaVersion + 1
	_, err = DecodeAuction(bad)
	check.True(t, errors.Is(err, ErrInvalidRecord))

	// Unknown type tag
	bad = append([]byte(nil), good...)
	bad[34] = 9
	_, err = DecodeAuction(bad)
	check.True(t, errors.Is(err, ErrInvalidRecord))
}

func TestAuctionItemRoundTrip(t *testing.T) {
	in := &AuctionItem{
		AuctionID:   auctionID(0x51),
		AssetClass:  asset(0x52),
		Amount:      7,
		NonFungible: true,
		Index:       4,
	}

	buf := EncodeAuctionItem(in)
	check.Equal(t, auctionItemLen, len(buf))

	out, err := DecodeAuctionItem(buf)
	assert.NoError(t, err)
	check.Equal(t, in, out)

	_, err = DecodeAuctionItem(buf[:auctionItemLen-1])
	check.True(t, errors.Is(err, ErrInvalidRecord))
}

func TestFeeVaultRoundTrip(t *testing.T) {
	in := &FeeVault{PaymentDenomination: asset(0x61), Amount: 12_345}

	buf := EncodeFeeVault(in)
	check.Equal(t, feeVaultLen, len(buf))

	out, err := DecodeFeeVault(buf)
	assert.NoError(t, err)
	check.Equal(t, in, out)

	bad := append([]byte(nil), buf...)
	bad[0] = 0
	_, err = DecodeFeeVault(bad)
	check.True(t, errors.Is(err, ErrInvalidRecord))
}
