// ABOUTME: Tests for wire payload completeness and null handling
// ABOUTME: Ensures missing timestamps are distinguishable from zero values
package protocol

import (
	"encoding/json"
	"testing"
)

func TestCompleteRequiresAllFourTimestamps(t *testing.T) {
	p := &EchoPayload{Blob: "x"}
	if p.Complete() {
		t.Error("expected incomplete with no timestamps")
	}

	p.ClientTransmitted = Millis(1)
	p.ServerReceived = Millis(2)
	p.ServerTransmitted = Millis(3)
	if p.Complete() {
		t.Error("expected incomplete without client receive time")
	}

	p.ClientReceived = Millis(4)
	if !p.Complete() {
		t.Error("expected complete with all four timestamps")
	}
}

func TestUnmarshalNullTimestamp(t *testing.T) {
	// A responder that omits or nulls t_rx_epoch must yield a nil
	// pointer, not a zero value.
	data := []byte(`{"blob":"abc","t_tx_epoch":1000,"t_rx_epoch":null,"t_tx2_epoch":1510,"t_rx2_epoch":null}`)

	var p EchoPayload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if p.ServerReceived != nil {
		t.Error("expected nil server receive time")
	}
	if p.ClientTransmitted == nil || *p.ClientTransmitted != 1000 {
		t.Error("expected client transmit time 1000")
	}
	if p.Complete() {
		t.Error("expected incomplete payload")
	}
}

func TestZeroTimestampIsPresent(t *testing.T) {
	data := []byte(`{"blob":"abc","t_tx_epoch":0,"t_rx_epoch":0,"t_tx2_epoch":0,"t_rx2_epoch":0}`)

	var p EchoPayload
	if err := json.Unmarshal(data, &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if !p.Complete() {
		t.Error("zero timestamps are present, payload should be complete")
	}
}

func TestEpochMillisAdvances(t *testing.T) {
	a := EpochMillis()
	b := EpochMillis()
	if b < a {
		t.Errorf("expected non-decreasing epoch millis, got %v then %v", a, b)
	}
}
