// ABOUTME: Tests for the echo responder session handling
// ABOUTME: Verifies timestamp stamping, processing mode, and protocol-error closes
package responder

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/echolat/echolat-go/internal/protocol"
	"github.com/gorilla/websocket"
)

// startResponder exposes the echo handler on an in-process server.
func startResponder(t *testing.T) *httptest.Server {
	t.Helper()
	s := New(Config{Name: "test-responder"})
	srv := httptest.NewServer(http.HandlerFunc(s.handleEcho))
	t.Cleanup(srv.Close)
	return srv
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(srv.URL, "http") + "/echo"
	if query != "" {
		u += "?" + query
	}
	conn, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestEchoFillsServerTimestamps(t *testing.T) {
	srv := startResponder(t)
	conn := dial(t, srv, "mode=baseline")

	t1 := protocol.EpochMillis()
	ping := protocol.EchoPayload{
		Blob:              "correlation-token",
		ClientTransmitted: protocol.Millis(t1),
	}
	if err := conn.WriteJSON(&ping); err != nil {
		t.Fatalf("write: %v", err)
	}

	var echo protocol.EchoPayload
	if err := conn.ReadJSON(&echo); err != nil {
		t.Fatalf("read: %v", err)
	}

	if echo.Blob != "correlation-token" {
		t.Errorf("expected blob echoed unchanged, got %q", echo.Blob)
	}
	if echo.ClientTransmitted == nil || *echo.ClientTransmitted != t1 {
		t.Error("expected client transmit time echoed unchanged")
	}
	if echo.ServerReceived == nil || echo.ServerTransmitted == nil {
		t.Fatal("expected server timestamps filled")
	}
	if *echo.ServerTransmitted < *echo.ServerReceived {
		t.Errorf("expected T3 >= T2, got T2=%v T3=%v", *echo.ServerReceived, *echo.ServerTransmitted)
	}
	if echo.ClientReceived != nil {
		t.Error("expected client receive time left empty on the wire")
	}
}

func TestEchoServesMultiplePings(t *testing.T) {
	srv := startResponder(t)
	conn := dial(t, srv, "")

	for i := 0; i < 3; i++ {
		ping := protocol.EchoPayload{
			Blob:              "b",
			ClientTransmitted: protocol.Millis(protocol.EpochMillis()),
		}
		if err := conn.WriteJSON(&ping); err != nil {
			t.Fatalf("write %d: %v", i, err)
		}
		var echo protocol.EchoPayload
		if err := conn.ReadJSON(&echo); err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if echo.ServerReceived == nil {
			t.Fatalf("ping %d: missing server receive time", i)
		}
	}
}

func TestProcessingModeDelaysTransmitStamp(t *testing.T) {
	srv := startResponder(t)
	conn := dial(t, srv, "mode=processing&region=SJC")

	ping := protocol.EchoPayload{
		Blob:              "b",
		ClientTransmitted: protocol.Millis(protocol.EpochMillis()),
	}
	if err := conn.WriteJSON(&ping); err != nil {
		t.Fatalf("write: %v", err)
	}

	var echo protocol.EchoPayload
	if err := conn.ReadJSON(&echo); err != nil {
		t.Fatalf("read: %v", err)
	}

	proc := *echo.ServerTransmitted - *echo.ServerReceived
	min := float64(ProcessingDuration/time.Millisecond) * 0.8
	if proc < min {
		t.Errorf("expected proc >= %vms in processing mode, got %vms", min, proc)
	}
}

func TestUnparseablePingClosesWithProtocolError(t *testing.T) {
	srv := startResponder(t)
	conn := dial(t, srv, "")

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, _, err := conn.ReadMessage()
	if err == nil {
		t.Fatal("expected close after unparseable ping")
	}

	closeErr, ok := err.(*websocket.CloseError)
	if !ok {
		t.Fatalf("expected *websocket.CloseError, got %T: %v", err, err)
	}
	if closeErr.Code != protocol.CloseProtocolError {
		t.Errorf("expected close code %d, got %d", protocol.CloseProtocolError, closeErr.Code)
	}
}

func TestBusyWorkBounded(t *testing.T) {
	start := time.Now()
	busyWork(2 * time.Millisecond)
	elapsed := time.Since(start)

	if elapsed < 2*time.Millisecond {
		t.Errorf("expected at least 2ms of work, got %s", elapsed)
	}
	if elapsed > 50*time.Millisecond {
		t.Errorf("expected bounded work, got %s", elapsed)
	}
}
