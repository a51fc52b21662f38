// ABOUTME: Per-session sampling state machine over one WebSocket channel
// ABOUTME: Sends timestamped pings and derives skew-corrected samples from echoes
package sampler

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"time"

	"github.com/echolat/echolat-go/internal/logging"
	"github.com/echolat/echolat-go/internal/protocol"
	"github.com/echolat/echolat-go/internal/timing"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// State is the sampler's lifecycle state.
type State int32

const (
	StateConnecting State = iota
	StateAwaitingEcho
	StateCompleted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateAwaitingEcho:
		return "awaiting-echo"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// DefaultSampleInterval is the fixed delay between samples. Back-to-back
// sends measurably perturb the delay measurements, so this is a tuned
// constant rather than a derived quantity; deviations from it are a
// known source of measurement noise.
const DefaultSampleInterval = 100 * time.Millisecond

// Config configures one sampling session.
type Config struct {
	Session  int           // 1-based session number, for labeling only
	URL      string        // full ws:// URL including mode/region params
	Target   int           // sample quota
	Interval time.Duration // inter-sample delay; DefaultSampleInterval if zero

	// OnSample, if set, is called after each accepted sample with the
	// session number and the running collected count.
	OnSample func(session, collected int)
}

// Sampler drives one session against one endpoint: ping, await echo,
// derive, repeat until the quota is met.
type Sampler struct {
	cfg     Config
	conn    *websocket.Conn
	samples []timing.Sample
	state   atomic.Int32
	log     *logrus.Entry
}

// New creates a sampler in the Connecting state.
func New(cfg Config) *Sampler {
	if cfg.Interval == 0 {
		cfg.Interval = DefaultSampleInterval
	}

	return &Sampler{
		cfg:     cfg,
		samples: make([]timing.Sample, 0, cfg.Target),
		log:     logging.With(logrus.Fields{"session": cfg.Session}),
	}
}

// State returns the sampler's current state.
func (s *Sampler) State() State {
	return State(s.state.Load())
}

// Collected returns how many samples have been accepted so far.
func (s *Sampler) Collected() int {
	return len(s.samples)
}

// Run executes the session until a terminal state and returns its
// result. It blocks the calling goroutine; concurrency is the caller's
// concern. On failure the error is a *ConnectionError or a
// *PrematureTerminationError carrying the partial sample count.
func (s *Sampler) Run(ctx context.Context) (*timing.SessionResult, error) {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.cfg.URL, nil)
	if err != nil {
		s.state.Store(int32(StateFailed))
		return nil, &ConnectionError{Endpoint: s.cfg.URL, Err: err}
	}
	s.conn = conn
	defer conn.Close()

	// Close the connection on cancellation so a blocked read returns
	// promptly and the session reports Failed with its partial count.
	watchDone := make(chan struct{})
	defer close(watchDone)
	go func() {
		select {
		case <-ctx.Done():
			conn.Close()
		case <-watchDone:
		}
	}()

	s.state.Store(int32(StateAwaitingEcho))
	s.log.Debugf("connected to %s", s.cfg.URL)

	for len(s.samples) < s.cfg.Target {
		if err := s.exchange(); err != nil {
			s.state.Store(int32(StateFailed))
			if ctx.Err() != nil {
				err = ctx.Err()
			}
			return nil, &PrematureTerminationError{
				Collected: len(s.samples),
				Target:    s.cfg.Target,
				Err:       err,
			}
		}

		if len(s.samples) < s.cfg.Target {
			select {
			case <-time.After(s.cfg.Interval):
			case <-ctx.Done():
				s.state.Store(int32(StateFailed))
				return nil, &PrematureTerminationError{
					Collected: len(s.samples),
					Target:    s.cfg.Target,
					Err:       ctx.Err(),
				}
			}
		}
	}

	s.state.Store(int32(StateCompleted))
	s.log.Infof("session complete: %d samples", len(s.samples))

	return &timing.SessionResult{
		Session: s.cfg.Session,
		Samples: s.samples,
		Average: timing.Average(s.samples),
	}, nil
}

// exchange performs one ping/echo round trip. A malformed or incomplete
// echo is logged and discarded without counting toward the quota; only
// channel errors are returned.
func (s *Sampler) exchange() error {
	blob := uuid.New().String()
	t1 := protocol.EpochMillis()

	ping := protocol.EchoPayload{
		Blob:              blob,
		ClientTransmitted: protocol.Millis(t1),
	}

	if err := s.conn.WriteJSON(ping); err != nil {
		return err
	}

	_, data, err := s.conn.ReadMessage()
	if err != nil {
		return err
	}
	t4 := protocol.EpochMillis()

	var echo protocol.EchoPayload
	if err := json.Unmarshal(data, &echo); err != nil {
		s.log.Warnf("discarding unparseable echo: %v", err)
		return nil
	}

	if echo.Blob != blob {
		s.log.Warnf("discarding echo with mismatched blob")
		return nil
	}

	echo.ClientReceived = protocol.Millis(t4)
	if !echo.Complete() {
		s.log.Warnf("discarding sample with missing timestamps")
		return nil
	}

	sample := timing.Derive(
		*echo.ClientTransmitted,
		*echo.ServerReceived,
		*echo.ServerTransmitted,
		*echo.ClientReceived,
	)
	s.samples = append(s.samples, sample)

	if s.cfg.OnSample != nil {
		s.cfg.OnSample(s.cfg.Session, len(s.samples))
	}

	return nil
}
