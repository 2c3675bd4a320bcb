package settleapi

import (
	"errors"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"
)

func TestEnvelopeRoundTrip(t *testing.T) {
	in := BidTraditionalRequest{Bidder: ident(7), AuctionID: auctionID(9), Amount: 160}

	data, err := EncodeEnvelope(OpBidTraditional, "req-1", in)
	assert.NoError(t, err)

	env, err := DecodeEnvelope(data)
	assert.NoError(t, err)
	check.Equal(t, OpBidTraditional, env.Op)
	check.Equal(t, "req-1", env.RequestID)

	out, err := DecodePayload[BidTraditionalRequest](env)
	assert.NoError(t, err)
	check.Equal(t, in, out)
}

func TestDecodeEnvelope_Garbage(t *testing.T) {
	_, err := DecodeEnvelope([]byte{0xff, 0x00, 0x13})
	check.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestDecodePayload_Invalid(t *testing.T) {
	// Structurally valid payload that fails request validation
	data, err := EncodeEnvelope(OpBidTraditional, "", BidTraditionalRequest{Bidder: ident(7), AuctionID: auctionID(9)})
	assert.NoError(t, err)
	env, err := DecodeEnvelope(data)
	assert.NoError(t, err)

	_, err = DecodePayload[BidTraditionalRequest](env)
	check.True(t, errors.Is(err, ErrInvalidRequest))

	// Payload that is not CBOR at all
	env.Payload = cbor.RawMessage{0xff}
	_, err = DecodePayload[BidTraditionalRequest](env)
	check.True(t, errors.Is(err, ErrInvalidRequest))
}

func TestResponses(t *testing.T) {
	env := &Envelope{Op: OpFinalize, RequestID: "req-2"}

	ok := Ok(env, map[string]string{"status": "finalized"})
	check.True(t, ok.Success)
	check.Equal(t, OpFinalize, ok.Op)
	check.Equal(t, "req-2", ok.RequestID)

	fail := Fail(env, "auction_not_found", ErrInvalidRequest)
	check.False(t, fail.Success)
	check.Equal(t, "auction_not_found", fail.ErrorCode)
	check.Equal(t, ErrInvalidRequest.Error(), fail.Error)
}

func TestOk_UnencodableResult(t *testing.T) {
	env := &Envelope{Op: OpPing, RequestID: "req-3"}

	resp := Ok(env, make(chan int))
	check.False(t, resp.Success)
	check.Equal(t, "internal", resp.ErrorCode)
	check.Equal(t, 0, len(resp.Result))
}
