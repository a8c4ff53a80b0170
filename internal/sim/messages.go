package sim

// Interval is a closed time interval in absolute POSIX seconds.
type Interval struct {
	Lower int64
	Upper int64
}

// Contains reports whether t lies inside the interval.
func (iv Interval) Contains(t int64) bool {
	return iv.Lower <= t && t <= iv.Upper
}

// coverageReply reports the absolute span of time during which a consumer
// could possibly be drawing power.
type coverageReply struct {
	Consumer *Consumer
	Coverage Interval
}

// consumptionReply carries one consumer's incremental energy draw at each
// shared production sample, aligned index-for-index with the sample axis the
// request was issued against.
type consumptionReply struct {
	Consumer *Consumer
	Energy   []float64
	Err      error
}

// consumer mailbox messages.
type coverageRequest struct {
	reply chan<- coverageReply
}

type consumptionRequest struct {
	start float64
	times []int64
	reply chan<- consumptionReply
}
