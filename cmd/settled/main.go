// Command settled runs the auction settlement dispatcher: it accepts one
// CBOR-framed operation per connection, authenticates the request's
// signers, applies the operation through the settlement controller, and
// replies with the operation result.
package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"

	"github.com/cloudx-io/auctionsettle/core"
	"github.com/cloudx-io/auctionsettle/settlement"
	"github.com/cloudx-io/auctionsettle/signercheck"
	"github.com/cloudx-io/auctionsettle/storage"
)

// Config is read from SETTLED_-prefixed environment variables.
type Config struct {
	Port       uint32 `default:"5000"`
	UseVsock   bool   `split_words:"true" default:"false"`
	DataDir    string `split_words:"true"`
	MaxWorkers int    `split_words:"true" default:"8"`

	// TrustAllSigners skips COSE authorization checks. Local
	// development only.
	TrustAllSigners bool `split_words:"true" default:"false"`

	// KeysFile is a JSON object mapping hex identities to hex Ed25519
	// public keys. Required unless TrustAllSigners is set.
	KeysFile string `split_words:"true"`
}

// systemClock reports wall-clock unix seconds.
type systemClock struct{}

func (systemClock) Now() int64 {
	return time.Now().Unix()
}

func loadKeys(path string) (signercheck.StaticKeys, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read keys file: %w", err)
	}
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse keys file: %w", err)
	}

	keys := make(signercheck.StaticKeys, len(raw))
	for idHex, keyHex := range raw {
		idBytes, err := hex.DecodeString(idHex)
		if err != nil || len(idBytes) != 32 {
			return nil, fmt.Errorf("invalid identity %q in keys file", idHex)
		}
		keyBytes, err := hex.DecodeString(keyHex)
		if err != nil || len(keyBytes) != ed25519.PublicKeySize {
			return nil, fmt.Errorf("invalid public key for identity %q in keys file", idHex)
		}
		var id core.Identity
		copy(id[:], idBytes)
		keys[id] = ed25519.PublicKey(keyBytes)
	}
	return keys, nil
}

func run() error {
	var cfg Config
	if err := envconfig.Process("settled", &cfg); err != nil {
		return fmt.Errorf("failed to read configuration: %w", err)
	}
	if cfg.MaxWorkers <= 0 {
		return fmt.Errorf("max workers must be positive, got %d", cfg.MaxWorkers)
	}

	store, err := storage.NewBadgerStore(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open record store: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Printf("ERROR: Failed to close record store: %v", err)
		}
	}()

	ledger, err := storage.NewBadgerLedger(cfg.DataDir)
	if err != nil {
		return fmt.Errorf("failed to open asset ledger: %w", err)
	}
	defer func() {
		if err := ledger.Shutdown(); err != nil {
			log.Printf("ERROR: Failed to close asset ledger: %v", err)
		}
	}()

	server := &Server{
		cfg:    cfg,
		store:  store,
		assets: ledger,
		clock:  systemClock{},
	}

	if cfg.TrustAllSigners {
		log.Printf("INFO: Signer checks disabled (trust-all mode)")
	} else {
		if cfg.KeysFile == "" {
			return fmt.Errorf("keys file is required unless trust-all mode is set")
		}
		keys, err := loadKeys(cfg.KeysFile)
		if err != nil {
			return err
		}
		server.verifier = signercheck.NewVerifier(keys)
		log.Printf("INFO: Loaded %d signer keys from %s", len(keys), cfg.KeysFile)
	}

	if cfg.DataDir == "" {
		log.Printf("INFO: No data dir configured, records are in-memory only")
	}

	return server.Start()
}

var _ settlement.Clock = systemClock{}

func main() {
	log.Fatal(run())
}
