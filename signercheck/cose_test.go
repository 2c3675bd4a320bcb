package signercheck

import (
	"crypto/ed25519"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/peterldowns/testy/assert"
	"github.com/peterldowns/testy/check"

	"github.com/cloudx-io/auctionsettle/core"
	"github.com/cloudx-io/auctionsettle/settlement"
)

func newIdentity(t *testing.T, b byte) (core.Identity, ed25519.PublicKey, ed25519.PrivateKey) {
	t.Helper()
	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	assert.NoError(t, err)
	var id core.Identity
	id[0] = b
	return id, pub, priv
}

func TestVerifyAuthorization(t *testing.T) {
	id, pub, priv := newIdentity(t, 1)
	verifier := NewVerifier(StaticKeys{id: pub})
	payload := []byte("operation payload")

	envelope, err := Sign(priv, id, payload)
	assert.NoError(t, err)

	got, err := verifier.VerifyAuthorization(envelope, payload)
	assert.NoError(t, err)
	check.Equal(t, id, got)
}

func TestVerifyAuthorization_WrongPayload(t *testing.T) {
	id, pub, priv := newIdentity(t, 1)
	verifier := NewVerifier(StaticKeys{id: pub})

	envelope, err := Sign(priv, id, []byte("signed payload"))
	assert.NoError(t, err)

	_, err = verifier.VerifyAuthorization(envelope, []byte("different payload"))
	check.True(t, errors.Is(err, settlement.ErrMissingSignature))
}

func TestVerifyAuthorization_UnknownIdentity(t *testing.T) {
	id, _, priv := newIdentity(t, 1)
	verifier := NewVerifier(StaticKeys{})
	payload := []byte("payload")

	envelope, err := Sign(priv, id, payload)
	assert.NoError(t, err)

	_, err = verifier.VerifyAuthorization(envelope, payload)
	check.True(t, errors.Is(err, settlement.ErrMissingSignature))
}

func TestVerifyAuthorization_WrongKey(t *testing.T) {
	id, _, priv := newIdentity(t, 1)
	_, otherPub, _ := newIdentity(t, 2)
	verifier := NewVerifier(StaticKeys{id: otherPub})
	payload := []byte("payload")

	envelope, err := Sign(priv, id, payload)
	assert.NoError(t, err)

	_, err = verifier.VerifyAuthorization(envelope, payload)
	check.True(t, errors.Is(err, settlement.ErrMissingSignature))
}

func TestVerifyAuthorization_Garbage(t *testing.T) {
	verifier := NewVerifier(StaticKeys{})
	_, err := verifier.VerifyAuthorization([]byte{0xde, 0xad}, nil)
	check.NotNil(t, err)
}

func TestSignerSet(t *testing.T) {
	idA, pubA, privA := newIdentity(t, 1)
	idB, pubB, privB := newIdentity(t, 2)
	verifier := NewVerifier(StaticKeys{idA: pubA, idB: pubB})
	payload := []byte("payload")

	envA, err := Sign(privA, idA, payload)
	assert.NoError(t, err)
	envB, err := Sign(privB, idB, payload)
	assert.NoError(t, err)

	signers, err := verifier.SignerSet([][]byte{envA, envB}, payload)
	assert.NoError(t, err)
	check.True(t, signers.IsSigner(idA))
	check.True(t, signers.IsSigner(idB))
	check.False(t, signers.IsSigner(core.Identity{}))

	// One bad envelope fails the whole set
	_, err = verifier.SignerSet([][]byte{envA, envB}, []byte("other"))
	check.True(t, errors.Is(err, settlement.ErrMissingSignature))
}
