package stream

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"curvescope/internal/decode"
	"curvescope/internal/model"
)

// ErrStreamClosed is the terminal error delivered as the final item when
// reconnection attempts are exhausted. The sequence never ends silently.
var ErrStreamClosed = errors.New("stream closed")

// ErrAlreadySubscribed is returned when Subscribe is called twice; a session
// owns exactly one subscription and is not restartable.
var ErrAlreadySubscribed = errors.New("session already subscribed")

// State is the observable phase of a live session.
type State int32

const (
	Disconnected State = iota
	Connecting
	Subscribed
	Delivering
	Reconnecting
	Closed
)

func (s State) String() string {
	switch s {
	case Connecting:
		return "connecting"
	case Subscribed:
		return "subscribed"
	case Delivering:
		return "delivering"
	case Reconnecting:
		return "reconnecting"
	case Closed:
		return "closed"
	default:
		return "disconnected"
	}
}

// LogSubscriber opens persistent log subscriptions.
type LogSubscriber interface {
	SubscribeFilterLogs(ctx context.Context, query ethereum.FilterQuery, ch chan<- types.Log) (ethereum.Subscription, error)
}

// Item is one element of the live sequence: a decoded event or a per-item
// error. A decode failure does not terminate the stream.
type Item struct {
	Event model.Event
	Err   error
}

// Config holds runtime settings for a live session.
type Config struct {
	// Addresses are the contracts whose logs are streamed; filter pool
	// restrictions are appended at subscribe time.
	Addresses []common.Address
	// MaxReconnects bounds reconnection attempts after a transport drop.
	// Defaults to 10.
	MaxReconnects int
	// BaseBackoff and MaxBackoff shape the reconnect delay curve.
	BaseBackoff time.Duration
	MaxBackoff  time.Duration
	// Buffer is the delivery channel capacity. Defaults to 64.
	Buffer int
}

// Session is a single live log subscription delivering decoded events as a
// lazy, infinite, non-restartable sequence. Reconnection with bounded
// backoff is owned here; consumers cancel via context.
type Session struct {
	cfg        Config
	subscriber LogSubscriber
	decoder    decode.Decoder
	logger     *zap.Logger

	state   atomic.Int32
	started atomic.Bool
}

// NewSession builds a live session over a log subscriber.
func NewSession(cfg Config, subscriber LogSubscriber, decoder decode.Decoder, logger *zap.Logger) (*Session, error) {
	if subscriber == nil {
		return nil, fmt.Errorf("log subscriber is nil")
	}
	if decoder == nil {
		return nil, fmt.Errorf("decoder is nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxReconnects <= 0 {
		cfg.MaxReconnects = 10
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = time.Second
	}
	if cfg.MaxBackoff <= 0 {
		cfg.MaxBackoff = 60 * time.Second
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 64
	}

	return &Session{
		cfg:        cfg,
		subscriber: subscriber,
		decoder:    decoder,
		logger:     logger,
	}, nil
}

// State reports the session's current phase.
func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(state State) {
	s.state.Store(int32(state))
}

// Subscribe opens the subscription and returns the delivery channel. The
// channel is closed when the context is cancelled or reconnection attempts
// are exhausted; in the latter case the final item carries ErrStreamClosed.
// Filtering matches the historical path: server-side where the transport
// supports it, token/pool checks after decode.
func (s *Session) Subscribe(ctx context.Context, filter model.Filter) (<-chan Item, error) {
	if !s.started.CompareAndSwap(false, true) {
		return nil, ErrAlreadySubscribed
	}

	query := s.buildQuery(filter)
	out := make(chan Item, s.cfg.Buffer)
	go s.run(ctx, query, filter, out)
	return out, nil
}

func (s *Session) buildQuery(filter model.Filter) ethereum.FilterQuery {
	addresses := make([]common.Address, 0, len(s.cfg.Addresses))
	addresses = append(addresses, s.cfg.Addresses...)
	addresses = append(addresses, filter.Pools()...)

	query := ethereum.FilterQuery{Addresses: addresses}
	if topics := decode.TopicFilter(s.decoder, filter); len(topics) > 0 {
		query.Topics = [][]common.Hash{topics}
	}
	return query
}

func (s *Session) run(ctx context.Context, query ethereum.FilterQuery, filter model.Filter, out chan<- Item) {
	defer close(out)
	defer s.setState(Closed)

	attempts := 0
	for {
		s.setState(Connecting)
		logs := make(chan types.Log, s.cfg.Buffer)
		sub, err := s.subscriber.SubscribeFilterLogs(ctx, query, logs)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			s.logger.Warn("subscription failed", zap.Error(err), zap.Int("attempt", attempts+1))
			if !s.waitReconnect(ctx, &attempts, err, out) {
				return
			}
			continue
		}

		s.setState(Subscribed)
		s.logger.Info("subscribed", zap.Int("addresses", len(query.Addresses)))
		attempts = 0

		if !s.deliver(ctx, sub, logs, filter, out, &attempts) {
			return
		}
	}
}

// deliver pumps one subscription until it drops. It returns false when the
// session is finished (cancelled or terminally failed), true to reconnect.
func (s *Session) deliver(ctx context.Context, sub ethereum.Subscription, logs <-chan types.Log, filter model.Filter, out chan<- Item, attempts *int) bool {
	defer sub.Unsubscribe()

	for {
		select {
		case <-ctx.Done():
			return false

		case log := <-logs:
			s.setState(Delivering)
			item, deliverable := s.decodeItem(log, filter)
			if !deliverable {
				continue
			}
			select {
			case out <- item:
			case <-ctx.Done():
				return false
			}

		case err := <-sub.Err():
			if ctx.Err() != nil {
				return false
			}
			s.logger.Warn("subscription dropped", zap.Error(err))
			return s.waitReconnect(ctx, attempts, err, out)
		}
	}
}

// decodeItem decodes and filters one raw log. Decode failures become Err
// items; logs rejected by the filter are dropped silently.
func (s *Session) decodeItem(log types.Log, filter model.Filter) (Item, bool) {
	event, err := s.decoder.Decode(log)
	if err != nil {
		return Item{Err: err}, true
	}
	if !filter.Match(event) {
		return Item{}, false
	}
	return Item{Event: event}, true
}

// waitReconnect sleeps the backoff delay for the next attempt. It returns
// false when the retry budget is spent, after delivering the terminal item.
func (s *Session) waitReconnect(ctx context.Context, attempts *int, cause error, out chan<- Item) bool {
	if *attempts >= s.cfg.MaxReconnects {
		s.logger.Error("reconnect attempts exhausted", zap.Int("attempts", *attempts), zap.Error(cause))
		terminal := Item{Err: fmt.Errorf("%w: %v", ErrStreamClosed, cause)}
		select {
		case out <- terminal:
		case <-ctx.Done():
		}
		return false
	}

	s.setState(Reconnecting)
	delay := backoffDelay(s.cfg.BaseBackoff, s.cfg.MaxBackoff, *attempts)
	s.logger.Info("reconnecting", zap.Duration("delay", delay), zap.Int("attempt", *attempts+1))

	timer := time.NewTimer(delay)
	select {
	case <-ctx.Done():
		timer.Stop()
		return false
	case <-timer.C:
	}
	*attempts++
	return true
}
