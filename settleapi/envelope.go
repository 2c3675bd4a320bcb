package settleapi

import (
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Operation names carried in the wire envelope.
const (
	OpPing              = "ping"
	OpInitialize        = "initialize"
	OpSetPaused         = "set_paused"
	OpTransferOwnership = "transfer_ownership"
	OpClaimFees         = "claim_fees"
	OpCreateTraditional = "create_traditional"
	OpCreateDutch       = "create_dutch"
	OpCreatePenny       = "create_penny"
	OpDepositItem       = "deposit_item"
	OpBidTraditional    = "bid_traditional"
	OpBuyDutch          = "buy_dutch"
	OpBidPenny          = "bid_penny"
	OpFinalize          = "finalize"
	OpAcceptBid         = "accept_bid"
	OpCloseItemVault    = "close_item_vault"
)

// Envelope frames one operation request on the wire: the operation name,
// an optional caller-chosen correlation id, the CBOR-encoded request
// payload for that operation, and the COSE_Sign1 envelopes authorizing it.
// Each authorization must sign exactly the payload bytes.
type Envelope struct {
	Op             string          `json:"op" cbor:"op"`
	RequestID      string          `json:"request_id,omitempty" cbor:"request_id,omitempty"`
	Payload        cbor.RawMessage `json:"payload,omitempty" cbor:"payload,omitempty"`
	Authorizations [][]byte        `json:"authorizations,omitempty" cbor:"authorizations,omitempty"`
}

// Response is the wire reply for one operation.
type Response struct {
	Op        string          `json:"op" cbor:"op"`
	RequestID string          `json:"request_id,omitempty" cbor:"request_id,omitempty"`
	Success   bool            `json:"success" cbor:"success"`
	Error     string          `json:"error,omitempty" cbor:"error,omitempty"`
	ErrorCode string          `json:"error_code,omitempty" cbor:"error_code,omitempty"`
	Result    cbor.RawMessage `json:"result,omitempty" cbor:"result,omitempty"`
}

// EncodeEnvelope wraps an operation request into a wire envelope.
func EncodeEnvelope(op, requestID string, req any) ([]byte, error) {
	payload, err := cbor.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s payload: %w", op, err)
	}
	return cbor.Marshal(Envelope{Op: op, RequestID: requestID, Payload: payload})
}

// DecodeEnvelope parses a wire envelope without touching its payload.
func DecodeEnvelope(data []byte) (*Envelope, error) {
	var env Envelope
	if err := cbor.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to decode envelope: %w", ErrInvalidRequest)
	}
	if env.Op == "" {
		return nil, fmt.Errorf("envelope has no operation: %w", ErrInvalidRequest)
	}
	return &env, nil
}

// DecodePayload parses an envelope payload into the typed request for its
// operation and validates it.
func DecodePayload[T interface{ Validate() error }](env *Envelope) (T, error) {
	var req T
	if err := cbor.Unmarshal(env.Payload, &req); err != nil {
		return req, fmt.Errorf("failed to decode %s payload: %w", env.Op, ErrInvalidRequest)
	}
	if err := req.Validate(); err != nil {
		return req, err
	}
	return req, nil
}

// Ok builds a success response, encoding result when non-nil. A result
// that cannot be encoded yields a failure response instead.
func Ok(env *Envelope, result any) Response {
	resp := Response{Op: env.Op, RequestID: env.RequestID, Success: true}
	if result != nil {
		data, err := cbor.Marshal(result)
		if err != nil {
			return Fail(env, "internal", fmt.Errorf("failed to encode %s result: %w", env.Op, err))
		}
		resp.Result = data
	}
	return resp
}

// Fail builds an error response with a stable code.
func Fail(env *Envelope, code string, err error) Response {
	return Response{
		Op:        env.Op,
		RequestID: env.RequestID,
		Success:   false,
		Error:     err.Error(),
		ErrorCode: code,
	}
}
