// Package subscriber owns the live Transfer log subscription of one network.
package subscriber

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"poapFeed/internal/chain"
	"poapFeed/internal/model"
	"poapFeed/internal/observability"
	"poapFeed/internal/poap"
)

// ErrReconnectExhausted is returned by Run once every reconnect attempt failed.
var ErrReconnectExhausted = errors.New("reconnect attempts exhausted")

// LogSource is the chain capability the subscriber needs.
type LogSource interface {
	GetChainID(ctx context.Context) (*big.Int, error)
	LatestBlockNumber(ctx context.Context) (uint64, error)
	SubscribeLogs(ctx context.Context, address common.Address, topic0 common.Hash, ch chan<- types.Log) (ethereum.Subscription, error)
	FilterLogs(ctx context.Context, fromBlock, toBlock uint64, address common.Address, topic0 common.Hash) ([]types.Log, error)
	Close()
}

// Dialer opens a LogSource for an endpoint.
type Dialer func(ctx context.Context, endpoint string) (LogSource, error)

// DialChain dials a go-ethereum websocket endpoint.
func DialChain(ctx context.Context, endpoint string) (LogSource, error) {
	client, err := chain.NewClient(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// State is the connection state of a subscription.
type State int32

const (
	StateIdle State = iota
	StateConnecting
	StateConnected
	StateReconnecting
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateReconnecting:
		return "reconnecting"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Config holds per-network subscription settings.
type Config struct {
	Network  model.Network
	Endpoint string
	Contract common.Address

	// ReconnectDelay is the fixed wait between reconnect attempts.
	ReconnectDelay time.Duration
	// ReconnectAttempts bounds consecutive failed attempts; a successful
	// connection resets the count.
	ReconnectAttempts int

	// BackfillMaxBlocks caps how far back a reconnect catches up. Zero disables backfill.
	BackfillMaxBlocks uint64
	BackfillBatchSize uint64
	MaxRetries        int
	RetryBackoff      time.Duration
}

// Subscriber streams decoded Transfer events of one (network, contract) pair.
type Subscriber struct {
	cfg     Config
	dial    Dialer
	logger  *zap.Logger
	metrics *observability.Metrics

	topic0    common.Hash
	state     atomic.Int32
	lastBlock uint64
	seen      *seenLogs
}

// New builds a Subscriber. A nil dial uses DialChain.
func New(cfg Config, dial Dialer, logger *zap.Logger, metrics *observability.Metrics) (*Subscriber, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%s: endpoint is required", cfg.Network)
	}
	if cfg.Contract == (common.Address{}) {
		return nil, fmt.Errorf("%s: contract address is required", cfg.Network)
	}
	if cfg.ReconnectDelay <= 0 {
		cfg.ReconnectDelay = 5 * time.Second
	}
	if cfg.ReconnectAttempts < 0 {
		cfg.ReconnectAttempts = 0
	}
	if cfg.BackfillBatchSize == 0 {
		cfg.BackfillBatchSize = 100
	}
	if dial == nil {
		dial = DialChain
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	topic0, err := poap.TransferTopic()
	if err != nil {
		return nil, fmt.Errorf("transfer topic: %w", err)
	}

	window := cfg.BackfillMaxBlocks
	if window < 64 {
		window = 64
	}

	return &Subscriber{
		cfg:     cfg,
		dial:    dial,
		logger:  logger.With(zap.String("network", cfg.Network.String())),
		metrics: metrics,
		topic0:  topic0,
		seen:    newSeenLogs(window),
	}, nil
}

// ID identifies the subscription.
func (s *Subscriber) ID() string {
	return s.cfg.Network.String() + ":" + strings.ToLower(s.cfg.Contract.Hex())
}

func (s *Subscriber) Network() model.Network {
	return s.cfg.Network
}

func (s *Subscriber) State() State {
	return State(s.state.Load())
}

func (s *Subscriber) setState(state State) {
	s.state.Store(int32(state))
	s.metrics.SetConnected(s.cfg.Network.String(), state == StateConnected)
}

// Run streams events into out in transport order until ctx is done or
// reconnects are exhausted. out is closed when Run returns.
func (s *Subscriber) Run(ctx context.Context, out chan<- model.TransferEvent) error {
	defer close(out)

	s.logger.Info("subscribing", zap.String("contract", s.cfg.Contract.Hex()))

	attempt := 0
	for {
		s.setState(StateConnecting)
		connected, err := s.session(ctx, out)
		if ctx.Err() != nil {
			s.setState(StateStopped)
			return nil
		}
		if connected {
			attempt = 0
		}

		attempt++
		if attempt > s.cfg.ReconnectAttempts {
			s.setState(StateStopped)
			s.logger.Error("subscription stopped", zap.Int("attempts", attempt-1), zap.Error(err))
			return ErrReconnectExhausted
		}

		s.setState(StateReconnecting)
		s.metrics.Reconnect(s.cfg.Network.String())
		s.logger.Warn("subscription lost, reconnecting",
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", s.cfg.ReconnectAttempts),
			zap.Duration("delay", s.cfg.ReconnectDelay),
			zap.Error(err),
		)
		if err := sleep(ctx, s.cfg.ReconnectDelay); err != nil {
			s.setState(StateStopped)
			return nil
		}
	}
}

// session runs one connection. connected reports whether the subscription was established.
func (s *Subscriber) session(ctx context.Context, out chan<- model.TransferEvent) (connected bool, err error) {
	src, err := s.dial(ctx, s.cfg.Endpoint)
	if err != nil {
		return false, fmt.Errorf("dial: %w", err)
	}
	defer src.Close()

	logs := make(chan types.Log, 128)
	sub, err := src.SubscribeLogs(ctx, s.cfg.Contract, s.topic0, logs)
	if err != nil {
		return false, fmt.Errorf("subscribe: %w", err)
	}
	defer sub.Unsubscribe()

	s.setState(StateConnected)
	fields := []zap.Field{zap.Uint64("last_block", s.lastBlock)}
	if chainID, err := src.GetChainID(ctx); err == nil {
		fields = append(fields, zap.String("chain_id", chainID.String()))
	}
	s.logger.Info("connected", fields...)

	if s.lastBlock > 0 && s.cfg.BackfillMaxBlocks > 0 {
		if err := s.catchUp(ctx, src, out); err != nil {
			if ctx.Err() != nil {
				return true, ctx.Err()
			}
			s.logger.Warn("backfill failed", zap.Uint64("from", s.lastBlock), zap.Error(err))
		}
	}

	for {
		select {
		case <-ctx.Done():
			return true, ctx.Err()
		case err := <-sub.Err():
			if err == nil {
				err = errors.New("subscription closed")
			}
			s.logger.Warn("transport error", zap.Error(err))
			return true, err
		case log := <-logs:
			if !s.deliver(ctx, log, out) {
				return true, ctx.Err()
			}
		}
	}
}

// catchUp delivers logs emitted between the last observed block and the head.
func (s *Subscriber) catchUp(ctx context.Context, src LogSource, out chan<- model.TransferEvent) error {
	var head uint64
	err := withRetry(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		head, err = src.LatestBlockNumber(ctx)
		return err
	})
	if err != nil {
		return fmt.Errorf("latest block: %w", err)
	}

	from, cut := clampRange(s.lastBlock, head, s.cfg.BackfillMaxBlocks)
	if cut {
		s.logger.Warn("backfill gap truncated",
			zap.Uint64("last_block", s.lastBlock),
			zap.Uint64("from", from),
			zap.Uint64("head", head),
		)
	}
	if head < from {
		return nil
	}

	s.logger.Info("backfill", zap.Uint64("from", from), zap.Uint64("to", head))
	return s.deliverRange(ctx, src, from, head, out)
}

func (s *Subscriber) deliverRange(ctx context.Context, src LogSource, from, to uint64, out chan<- model.TransferEvent) error {
	ranges, err := SplitRange(from, to, s.cfg.BackfillBatchSize)
	if err != nil {
		return err
	}

	for _, blockRange := range ranges {
		var logs []types.Log
		err := withRetry(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, func(ctx context.Context) error {
			var err error
			logs, err = src.FilterLogs(ctx, blockRange.From, blockRange.To, s.cfg.Contract, s.topic0)
			if err != nil {
				s.logger.Warn("filter logs failed", zap.Error(err), zap.Uint64("from", blockRange.From), zap.Uint64("to", blockRange.To))
			}
			return err
		})
		if err != nil {
			return fmt.Errorf("filter logs %d-%d: %w", blockRange.From, blockRange.To, err)
		}

		for _, log := range logs {
			if !s.deliver(ctx, log, out) {
				return ctx.Err()
			}
		}
	}
	return nil
}

// deliver decodes and forwards one log. It returns false only when ctx is done.
func (s *Subscriber) deliver(ctx context.Context, log types.Log, out chan<- model.TransferEvent) bool {
	network := s.cfg.Network.String()

	if log.Removed {
		s.metrics.LogRemoved(network)
		s.logger.Info("log removed",
			zap.String("tx", log.TxHash.Hex()),
			zap.Uint64("block_number", log.BlockNumber),
			zap.Uint("log_index", log.Index),
		)
		return true
	}
	if !s.seen.add(log) {
		return true
	}

	event, err := poap.DecodeTransfer(s.cfg.Network, log)
	if err != nil {
		s.metrics.EventDropped(network, "decode")
		s.logger.Warn("event dropped",
			zap.String("stage", "decode"),
			zap.String("tx", log.TxHash.Hex()),
			zap.Uint64("block_number", log.BlockNumber),
			zap.Error(err),
		)
		return true
	}

	if log.BlockNumber > s.lastBlock {
		s.lastBlock = log.BlockNumber
		s.seen.prune(s.lastBlock)
	}

	s.metrics.EventReceived(network)
	s.logger.Debug("transfer",
		zap.String("token_id", event.TokenID),
		zap.String("to", event.To.Hex()),
		zap.String("tx", event.TxHash),
	)

	select {
	case out <- event:
		return true
	case <-ctx.Done():
		return false
	}
}

// Replay delivers every Transfer log in [from, to] and closes out.
func (s *Subscriber) Replay(ctx context.Context, from, to uint64, out chan<- model.TransferEvent) error {
	defer close(out)

	src, err := s.dial(ctx, s.cfg.Endpoint)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer src.Close()

	if to == 0 {
		if err := withRetry(ctx, s.cfg.MaxRetries, s.cfg.RetryBackoff, func(ctx context.Context) error {
			var err error
			to, err = src.LatestBlockNumber(ctx)
			return err
		}); err != nil {
			return fmt.Errorf("latest block: %w", err)
		}
	}

	s.logger.Info("replay", zap.Uint64("from", from), zap.Uint64("to", to))
	return s.deliverRange(ctx, src, from, to, out)
}
