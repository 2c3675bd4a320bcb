package main

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net"
	"time"

	"github.com/fxamacker/cbor/v2"
	"github.com/google/uuid"
	"github.com/mdlayher/vsock"

	"github.com/cloudx-io/auctionsettle/settleapi"
	"github.com/cloudx-io/auctionsettle/settlement"
	"github.com/cloudx-io/auctionsettle/signercheck"
)

// Server accepts one operation request per connection and dispatches it
// to the settlement controller.
type Server struct {
	cfg    Config
	store  settlement.Store
	assets settlement.AssetLedger
	clock  settlement.Clock

	// verifier is nil in trust-all mode
	verifier *signercheck.Verifier
}

func (s *Server) listen() (net.Listener, error) {
	if s.cfg.UseVsock {
		return vsock.Listen(s.cfg.Port, nil)
	}
	return net.Listen("tcp", fmt.Sprintf(":%d", s.cfg.Port))
}

func (s *Server) Start() error {
	listener, err := s.listen()
	if err != nil {
		return fmt.Errorf("failed to create listener: %w", err)
	}
	defer func() {
		if err := listener.Close(); err != nil {
			log.Printf("ERROR: Failed to close listener: %v", err)
		}
	}()

	log.Printf("INFO: Settlement server listening on %s", listener.Addr())

	semaphore := make(chan struct{}, s.cfg.MaxWorkers)
	log.Printf("INFO: Worker pool initialized with %d max concurrent workers", s.cfg.MaxWorkers)

	for {
		conn, err := listener.Accept()
		if err != nil {
			log.Printf("ERROR: Failed to accept connection: %v", err)
			continue
		}

		// Acquire worker slot - immediate rejection if pool full
		select {
		case semaphore <- struct{}{}:
			go func(c net.Conn) {
				defer func() { <-semaphore }() // Release worker slot
				s.handleConnection(c)
			}(conn)
		default:
			log.Printf("INFO: No workers available, rejecting connection (pool full)")
			if err := conn.Close(); err != nil {
				log.Printf("ERROR: Failed to close rejected connection: %v", err)
			}
		}
	}
}

func (s *Server) handleConnection(conn net.Conn) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ERROR: Panic recovered in handleConnection: %v", r)
		}
		if err := conn.Close(); err != nil {
			log.Printf("ERROR: Failed to close connection: %v", err)
		}
	}()

	_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, conn); err != nil {
		log.Printf("ERROR: Failed to read request: %v", err)
		return
	}

	response := s.serve(buf.Bytes())

	data, err := cbor.Marshal(response)
	if err != nil {
		log.Printf("ERROR: Failed to encode response: %v", err)
		return
	}
	if _, err := conn.Write(data); err != nil {
		log.Printf("ERROR: Failed to write response: %v", err)
		return
	}
	log.Printf("INFO: Successfully sent response for %s (%s)", response.Op, response.RequestID)
}

func (s *Server) serve(data []byte) settleapi.Response {
	env, err := settleapi.DecodeEnvelope(data)
	if err != nil {
		log.Printf("ERROR: Failed to decode envelope: %v", err)
		return settleapi.Fail(&settleapi.Envelope{Op: "unknown"}, settlement.ErrorCode(err), err)
	}
	if env.RequestID == "" {
		env.RequestID = uuid.NewString()
	}

	log.Printf("INFO: Received request op=%s id=%s", env.Op, env.RequestID)

	signers, err := s.requestSigners(env)
	if err != nil {
		log.Printf("ERROR: Request %s authorization failed: %v", env.RequestID, err)
		return settleapi.Fail(env, settlement.ErrorCode(err), err)
	}

	controller := settlement.NewController(settlement.Env{
		Store:   s.store,
		Assets:  s.assets,
		Clock:   s.clock,
		Signers: signers,
	})

	response := s.dispatch(controller, env)
	if response.Success {
		log.Printf("INFO: Request %s (%s) succeeded", env.RequestID, env.Op)
	} else {
		log.Printf("ERROR: Request %s (%s) failed: %s", env.RequestID, env.Op, response.Error)
	}
	return response
}

// requestSigners builds the set of identities proven by the envelope's
// authorizations.
func (s *Server) requestSigners(env *settleapi.Envelope) (settlement.SignerCheck, error) {
	if s.verifier == nil {
		return settlement.AllowAllSigners{}, nil
	}
	return s.verifier.SignerSet(env.Authorizations, env.Payload)
}

func (s *Server) dispatch(controller *settlement.Controller, env *settleapi.Envelope) settleapi.Response {
	switch env.Op {
	case settleapi.OpPing:
		return settleapi.Ok(env, map[string]any{
			"message":   "settlement server is healthy",
			"timestamp": s.clock.Now(),
		})

	case settleapi.OpInitialize:
		return respond(env, func(req settleapi.InitializeRequest) (any, error) {
			return nil, controller.Initialize(req)
		})

	case settleapi.OpSetPaused:
		return respond(env, func(req settleapi.SetPausedRequest) (any, error) {
			return nil, controller.SetPaused(req)
		})

	case settleapi.OpTransferOwnership:
		return respond(env, func(req settleapi.TransferOwnershipRequest) (any, error) {
			return nil, controller.TransferOwnership(req)
		})

	case settleapi.OpClaimFees:
		return respond(env, func(req settleapi.ClaimFeesRequest) (any, error) {
			claimed, err := controller.ClaimFees(req)
			if err != nil {
				return nil, err
			}
			return map[string]any{"claimed": claimed}, nil
		})

	case settleapi.OpCreateTraditional:
		return respond(env, func(req settleapi.CreateTraditionalRequest) (any, error) {
			return controller.CreateTraditional(req)
		})

	case settleapi.OpCreateDutch:
		return respond(env, func(req settleapi.CreateDutchRequest) (any, error) {
			return controller.CreateDutch(req)
		})

	case settleapi.OpCreatePenny:
		return respond(env, func(req settleapi.CreatePennyRequest) (any, error) {
			return controller.CreatePenny(req)
		})

	case settleapi.OpDepositItem:
		return respond(env, func(req settleapi.DepositItemRequest) (any, error) {
			return controller.DepositItem(req)
		})

	case settleapi.OpBidTraditional:
		return respond(env, func(req settleapi.BidTraditionalRequest) (any, error) {
			return controller.BidTraditional(req)
		})

	case settleapi.OpBuyDutch:
		return respond(env, func(req settleapi.BuyDutchRequest) (any, error) {
			return controller.BuyDutch(req)
		})

	case settleapi.OpBidPenny:
		return respond(env, func(req settleapi.BidPennyRequest) (any, error) {
			return controller.BidPenny(req)
		})

	case settleapi.OpFinalize:
		return respond(env, func(req settleapi.FinalizeRequest) (any, error) {
			return controller.Finalize(req)
		})

	case settleapi.OpAcceptBid:
		return respond(env, func(req settleapi.AcceptBidRequest) (any, error) {
			return controller.AcceptBid(req)
		})

	case settleapi.OpCloseItemVault:
		return respond(env, func(req settleapi.CloseItemVaultRequest) (any, error) {
			return nil, controller.CloseItemVault(req)
		})

	default:
		err := fmt.Errorf("unknown operation %q: %w", env.Op, settleapi.ErrInvalidRequest)
		return settleapi.Fail(env, settlement.ErrorCode(err), err)
	}
}

// respond decodes the typed request for an operation, applies it, and
// frames the outcome.
func respond[T interface{ Validate() error }](env *settleapi.Envelope, apply func(T) (any, error)) settleapi.Response {
	req, err := settleapi.DecodePayload[T](env)
	if err != nil {
		return settleapi.Fail(env, settlement.ErrorCode(err), err)
	}
	result, err := apply(req)
	if err != nil {
		return settleapi.Fail(env, settlement.ErrorCode(err), err)
	}
	return settleapi.Ok(env, result)
}
