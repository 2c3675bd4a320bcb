// Package signercheck authenticates operation requests. Callers prove an
// identity by wrapping the request payload in a COSE_Sign1 envelope whose
// protected key id names the identity; the verified set of identities is
// what the settlement controller consults before acting on their behalf.
package signercheck

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/veraison/go-cose"

	"github.com/cloudx-io/auctionsettle/core"
	"github.com/cloudx-io/auctionsettle/settlement"
)

// KeyDirectory resolves an identity to its registered Ed25519 public key.
type KeyDirectory interface {
	PublicKey(id core.Identity) (ed25519.PublicKey, bool)
}

// StaticKeys is a KeyDirectory backed by a fixed map.
type StaticKeys map[core.Identity]ed25519.PublicKey

func (k StaticKeys) PublicKey(id core.Identity) (ed25519.PublicKey, bool) {
	key, ok := k[id]
	return key, ok
}

// Verifier checks COSE_Sign1 authorization envelopes against a key
// directory.
type Verifier struct {
	keys KeyDirectory
}

// NewVerifier builds a verifier over the given key directory.
func NewVerifier(keys KeyDirectory) *Verifier {
	return &Verifier{keys: keys}
}

// VerifyAuthorization checks one COSE_Sign1 envelope: the protected key
// id must name a registered identity, the signature must verify under
// that identity's key, and the signed payload must be exactly the request
// payload being authorized. Returns the proven identity.
func (v *Verifier) VerifyAuthorization(envelope, payload []byte) (core.Identity, error) {
	var id core.Identity

	var msg cose.Sign1Message
	if err := msg.UnmarshalCBOR(envelope); err != nil {
		return id, fmt.Errorf("parse COSE_Sign1 envelope: %w", err)
	}

	kid, err := keyID(&msg)
	if err != nil {
		return id, err
	}
	if len(kid) != len(id) {
		return id, fmt.Errorf("key id is %d bytes, want %d", len(kid), len(id))
	}
	copy(id[:], kid)

	pub, ok := v.keys.PublicKey(id)
	if !ok {
		return core.Identity{}, fmt.Errorf("identity %s: %w", id, settlement.ErrMissingSignature)
	}

	verifier, err := cose.NewVerifier(cose.AlgorithmEdDSA, pub)
	if err != nil {
		return core.Identity{}, fmt.Errorf("create verifier: %w", err)
	}
	if err := msg.Verify(nil, verifier); err != nil {
		return core.Identity{}, fmt.Errorf("identity %s signature invalid: %w", id, settlement.ErrMissingSignature)
	}

	// The signature must cover this payload, not a replayed one.
	if !bytes.Equal(msg.Payload, payload) {
		return core.Identity{}, fmt.Errorf("identity %s signed a different payload: %w", id, settlement.ErrMissingSignature)
	}
	return id, nil
}

// SignerSet verifies every authorization envelope against the request
// payload and returns the set of proven identities. A single bad
// envelope fails the whole request.
func (v *Verifier) SignerSet(envelopes [][]byte, payload []byte) (settlement.SignerSet, error) {
	signers := make(settlement.SignerSet, len(envelopes))
	for i, envelope := range envelopes {
		id, err := v.VerifyAuthorization(envelope, payload)
		if err != nil {
			return nil, fmt.Errorf("authorization %d: %w", i, err)
		}
		signers[id] = true
	}
	return signers, nil
}

// Sign wraps a request payload in a COSE_Sign1 envelope proving the
// given identity. Client-side counterpart of VerifyAuthorization.
func Sign(key ed25519.PrivateKey, id core.Identity, payload []byte) ([]byte, error) {
	signer, err := cose.NewSigner(cose.AlgorithmEdDSA, key)
	if err != nil {
		return nil, fmt.Errorf("create signer: %w", err)
	}

	msg := cose.NewSign1Message()
	msg.Headers.Protected[cose.HeaderLabelAlgorithm] = cose.AlgorithmEdDSA
	msg.Headers.Protected[cose.HeaderLabelKeyID] = id[:]
	msg.Payload = payload

	if err := msg.Sign(rand.Reader, nil, signer); err != nil {
		return nil, fmt.Errorf("sign envelope: %w", err)
	}
	return msg.MarshalCBOR()
}

func keyID(msg *cose.Sign1Message) ([]byte, error) {
	raw, ok := msg.Headers.Protected[cose.HeaderLabelKeyID]
	if !ok {
		return nil, errors.New("envelope has no key id")
	}
	kid, ok := raw.([]byte)
	if !ok {
		return nil, errors.New("envelope key id is not a byte string")
	}
	return kid, nil
}
