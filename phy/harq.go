package phy

import "log"

// DefaultRvSequence is the redundancy version order used when no sequence is
// configured.
var DefaultRvSequence = []uint8{0, 3, 2, 1}

// An RVController tracks the redundancy-version sequence of one link
// direction. Its only failure-recovery decision is whether a failed decode
// exhausted the sequence, in which case the soft-decision buffer of that
// HARQ process must be reset before further retransmissions.
type RVController struct {
	seq []uint8
}

// NewRVController creates a controller for the given sequence. A nil
// sequence selects DefaultRvSequence. A single-entry sequence disables
// retransmission entirely.
func NewRVController(seq []uint8) *RVController {
	if seq == nil {
		seq = DefaultRvSequence
	}
	if len(seq) == 0 {
		log.Panic("redundancy version sequence cannot be empty")
	}

	c := &RVController{seq: make([]uint8, len(seq))}
	copy(c.seq, seq)

	return c
}

// Sequence returns a copy of the configured sequence.
func (c *RVController) Sequence() []uint8 {
	out := make([]uint8, len(c.seq))
	copy(out, c.seq)
	return out
}

// MaxAttempts returns the number of transmission attempts the sequence
// allows.
func (c *RVController) MaxAttempts() int {
	return len(c.seq)
}

// RvForAttempt returns the redundancy version of the given attempt,
// counting the initial transmission as attempt 0.
func (c *RVController) RvForAttempt(attempt int) uint8 {
	if attempt < 0 || attempt >= len(c.seq) {
		log.Panicf("attempt %d outside the %d-entry sequence",
			attempt, len(c.seq))
	}
	return c.seq[attempt]
}

// IsLast reports whether the given redundancy version is the final entry of
// the sequence, i.e. whether a failure at this version exhausts the HARQ
// process.
func (c *RVController) IsLast(rv uint8) bool {
	return rv == c.seq[len(c.seq)-1]
}
