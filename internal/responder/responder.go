// ABOUTME: Echo responder server that timestamps pings
// ABOUTME: Fills T2 on receive and T3 on reply, echoing the payload otherwise unchanged
package responder

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/echolat/echolat-go/internal/discovery"
	"github.com/echolat/echolat-go/internal/logging"
	"github.com/echolat/echolat-go/internal/protocol"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

// ProcessingDuration bounds the busy work performed between stamping T2
// and T3 when a session was opened in processing mode.
const ProcessingDuration = 5 * time.Millisecond

// Config holds responder configuration.
type Config struct {
	Port       int
	Name       string
	Colo       string // identifier for the location serving this responder
	EnableMDNS bool
}

// Server accepts echo sessions over WebSocket and answers pings with
// receive/transmit timestamps.
type Server struct {
	config     Config
	serverID   string
	upgrader   websocket.Upgrader
	mux        *http.ServeMux
	httpServer *http.Server
	mdns       *discovery.Manager

	stopChan chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates a responder server.
func New(config Config) *Server {
	return &Server{
		config:   config,
		serverID: uuid.New().String(),
		mux:      http.NewServeMux(),
		upgrader: websocket.Upgrader{
			// Non-browser measurement clients send no Origin header.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		stopChan: make(chan struct{}),
	}
}

// Start runs the server until Stop is called or the listener fails.
func (s *Server) Start() error {
	log := logging.L()
	log.Infof("responder starting: %s (ID: %s)", s.config.Name, s.serverID)

	if s.config.EnableMDNS {
		s.mdns = discovery.NewManager(discovery.Config{
			ServiceName: s.config.Name,
			Port:        s.config.Port,
			Colo:        s.config.Colo,
		})
		if err := s.mdns.Advertise(); err != nil {
			log.Warnf("mDNS advertisement failed: %v", err)
		}
	}

	s.mux.HandleFunc("/echo", s.handleEcho)

	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{Addr: addr, Handler: s.mux}
	log.Infof("listening on %s", addr)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()

	var serverErr error
	select {
	case <-s.stopChan:
		log.Infof("responder shutting down")
	case err := <-errChan:
		serverErr = err
	}

	if s.mdns != nil {
		s.mdns.Stop()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.httpServer.Shutdown(ctx); err != nil {
		log.Warnf("shutdown error: %v", err)
	}

	s.wg.Wait()

	if serverErr != nil {
		return fmt.Errorf("responder listener failed: %w", serverErr)
	}
	return nil
}

// Stop stops the server.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

// handleEcho upgrades the connection and serves one echo session.
func (s *Server) handleEcho(w http.ResponseWriter, r *http.Request) {
	mode := r.URL.Query().Get(protocol.ParamMode)
	region := r.URL.Query().Get(protocol.ParamRegion)
	processing := mode == protocol.ModeProcessing

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.L().Warnf("upgrade error from %s: %v", r.RemoteAddr, err)
		return
	}

	log := logging.With(logrus.Fields{
		"remote": r.RemoteAddr,
		"mode":   mode,
		"region": region,
	})
	log.Debugf("echo session opened")

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer conn.Close()
		s.serveSession(conn, processing, log)
	}()
}

// serveSession answers pings until the client goes away. An unparseable
// ping terminates the session with a protocol-error close code.
func (s *Server) serveSession(conn *websocket.Conn, processing bool, log *logrus.Entry) {
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				log.Warnf("read error: %v", err)
			}
			return
		}

		// Stamp T2 as early as possible after the read returns.
		received := protocol.EpochMillis()

		var ping protocol.EchoPayload
		if err := json.Unmarshal(data, &ping); err != nil {
			log.Warnf("unparseable ping, closing session: %v", err)
			msg := websocket.FormatCloseMessage(protocol.CloseProtocolError, "unparseable ping")
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		}

		if processing {
			busyWork(ProcessingDuration)
		}

		ping.ServerReceived = protocol.Millis(received)
		ping.ServerTransmitted = protocol.Millis(protocol.EpochMillis())

		if err := conn.WriteJSON(&ping); err != nil {
			log.Warnf("write error: %v", err)
			return
		}
	}
}

// busyWork spins for at most d, simulating request processing between
// the receive and transmit stamps.
func busyWork(d time.Duration) {
	deadline := time.Now().Add(d)
	x := uint64(1)
	for time.Now().Before(deadline) {
		x ^= x << 13
		x ^= x >> 7
		x ^= x << 17
	}
	_ = x
}
