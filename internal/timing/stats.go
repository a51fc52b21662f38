// ABOUTME: Aggregate statistics over pooled samples
// ABOUTME: Computes mean/min/max/stddev per metric, always from the full pool
package timing

import "math"

// MetricStats summarizes one metric over a sample pool.
type MetricStats struct {
	Mean   float64 `json:"mean"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	StdDev float64 `json:"stddev"`
}

// AggregateStats holds per-metric statistics over the union of all
// samples across all sessions.
type AggregateStats struct {
	RTT      MetricStats `json:"rtt"`
	Proc     MetricStats `json:"proc"`
	Uplink   MetricStats `json:"uplink"`
	Downlink MetricStats `json:"downlink"`
	Offset   MetricStats `json:"offset"`
	Count    int         `json:"count"`
}

// SessionResult is the outcome of one completed session: the ordered
// sample sequence (arrival order) and the per-metric average.
type SessionResult struct {
	Session int      `json:"session"`
	Samples []Sample `json:"samples"`
	Average Sample   `json:"average"`
}

// Average computes the per-metric arithmetic mean of samples.
// Returns the zero Sample for an empty slice.
func Average(samples []Sample) Sample {
	if len(samples) == 0 {
		return Sample{}
	}

	var sum Sample
	for _, s := range samples {
		sum.RTT += s.RTT
		sum.Proc += s.Proc
		sum.Uplink += s.Uplink
		sum.Downlink += s.Downlink
		sum.Offset += s.Offset
	}

	n := float64(len(samples))
	return Sample{
		RTT:      sum.RTT / n,
		Proc:     sum.Proc / n,
		Uplink:   sum.Uplink / n,
		Downlink: sum.Downlink / n,
		Offset:   sum.Offset / n,
	}
}

// Aggregate computes AggregateStats over the full sample pool. It is
// recomputed fresh from all samples on every call, never updated
// incrementally, so repeated aggregation cannot accumulate numerical
// drift.
func Aggregate(samples []Sample) AggregateStats {
	return AggregateStats{
		RTT:      metricStats(samples, func(s Sample) float64 { return s.RTT }),
		Proc:     metricStats(samples, func(s Sample) float64 { return s.Proc }),
		Uplink:   metricStats(samples, func(s Sample) float64 { return s.Uplink }),
		Downlink: metricStats(samples, func(s Sample) float64 { return s.Downlink }),
		Offset:   metricStats(samples, func(s Sample) float64 { return s.Offset }),
		Count:    len(samples),
	}
}

// metricStats computes mean/min/max and population standard deviation
// for one metric.
func metricStats(samples []Sample, metric func(Sample) float64) MetricStats {
	if len(samples) == 0 {
		return MetricStats{}
	}

	min := math.Inf(1)
	max := math.Inf(-1)
	sum := 0.0
	for _, s := range samples {
		v := metric(s)
		sum += v
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}

	mean := sum / float64(len(samples))

	variance := 0.0
	for _, s := range samples {
		d := metric(s) - mean
		variance += d * d
	}
	variance /= float64(len(samples))

	return MetricStats{
		Mean:   mean,
		Min:    min,
		Max:    max,
		StdDev: math.Sqrt(variance),
	}
}
