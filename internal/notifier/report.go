package notifier

import (
	"fmt"
	"time"
)

// Report records the outcome of one run.
type Report struct {
	RunID   string
	Package string
	Count   int64
	// Message is the rendered text before mrkdwn escaping.
	Message string

	Sent       int
	Failed     int
	Deliveries []Delivery

	StartedAt time.Time
	Duration  time.Duration
}

// Delivery is the outcome for a single destination, in attempt order.
type Delivery struct {
	// Destination is the normalized name ("#channel" or "@username").
	Destination string
	// Err is nil when the post was accepted.
	Err error
}

// RenderMessage builds the sentence posted to every destination. The count
// is embedded verbatim, without digit grouping or rounding.
func RenderMessage(pkg string, count int64) string {
	return fmt.Sprintf("%s has been downloaded %d times in the last week", pkg, count)
}
