// ABOUTME: Skew correction math for four-timestamp echo exchanges
// ABOUTME: Splits a round trip into skew-corrected one-way legs per the NTP estimator
package timing

// Sample is one skew-corrected measurement derived from a single echo
// exchange. All values are in milliseconds; Offset may be negative.
// A Sample is immutable once computed.
type Sample struct {
	RTT      float64 `json:"rtt"`
	Proc     float64 `json:"proc"`
	Uplink   float64 `json:"uplink"`
	Downlink float64 `json:"downlink"`
	Offset   float64 `json:"offset"`
}

// Derive computes a Sample from the four timestamps of one exchange:
// t1 = client send, t2 = server receive, t3 = server send, t4 = client
// receive, all Unix epoch milliseconds on their respective clocks.
//
// This is the classical NTP clock-offset/delay estimator applied to a
// single round trip:
//
//	proc   = t3 - t2
//	offset = ((t2 - t1) + (t3 - t4)) / 2
//	rtt    = (t4 - t1) - (t3 - t2)
//
// The one-way legs subtract the estimated offset so that a skewed client
// clock does not show up as asymmetric path delay. RTT is deliberately
// not clamped at zero: under pathological clock drift the estimator can
// go negative, and callers are expected to see that rather than a
// silently corrected value.
func Derive(t1, t2, t3, t4 float64) Sample {
	proc := t3 - t2
	offset := ((t2 - t1) + (t3 - t4)) / 2

	return Sample{
		RTT:      (t4 - t1) - proc,
		Proc:     proc,
		Uplink:   (t2 - t1) - offset,
		Downlink: (t4 - t3) + offset,
		Offset:   offset,
	}
}
