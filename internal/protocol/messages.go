// ABOUTME: Wire payload definitions for the echo latency protocol
// ABOUTME: Defines the four-timestamp ping/echo record and connection parameters
package protocol

import "time"

// CloseProtocolError is sent by a responder when a ping cannot be decoded.
// Application-defined so it is distinguishable from transport-level closes.
const CloseProtocolError = 4400

// Connection query parameter names, forwarded opaquely by the client.
const (
	ParamMode   = "mode"
	ParamRegion = "region"
)

// Mode selector values for an echo session.
const (
	ModeBaseline   = "baseline"
	ModeProcessing = "processing"
)

// EchoPayload is the record exchanged with a responder. Fields are filled
// in progressively as the packet travels: the client sets Blob and
// ClientTransmitted, the responder fills ServerReceived on receipt and
// ServerTransmitted on reply, and the client stamps ClientReceived locally
// on arrival (never sent over the wire).
//
// Timestamps are Unix epoch milliseconds. Pointer types distinguish a
// missing field from a zero value.
type EchoPayload struct {
	Blob              string   `json:"blob"`
	ClientTransmitted *float64 `json:"t_tx_epoch"`  // T1
	ServerReceived    *float64 `json:"t_rx_epoch"`  // T2
	ServerTransmitted *float64 `json:"t_tx2_epoch"` // T3
	ClientReceived    *float64 `json:"t_rx2_epoch"` // T4, local only
}

// Complete reports whether all four timestamps are present.
func (p *EchoPayload) Complete() bool {
	return p.ClientTransmitted != nil &&
		p.ServerReceived != nil &&
		p.ServerTransmitted != nil &&
		p.ClientReceived != nil
}

// EpochMillis returns the current Unix epoch time in milliseconds with
// sub-millisecond precision.
func EpochMillis() float64 {
	return float64(time.Now().UnixNano()) / 1e6
}

// Millis returns a pointer to v, for filling timestamp fields.
func Millis(v float64) *float64 {
	return &v
}
