package store

import (
	"time"

	"github.com/lalith-99/beans/internal/models"
)

// Sequence names one of the ID counters carried in the snapshot.
type Sequence int

const (
	UserSeq Sequence = iota
	ChannelSeq
	DmSeq
	MessageSeq
)

// Tx is a single write in progress. Data is a private clone; Now is fixed for
// the whole transaction so every record it touches shares one timestamp.
type Tx struct {
	Data *models.Data
	Now  time.Time
}

// NextID hands out the next ID for seq. The counter lives in the cloned
// snapshot, so a rolled-back transaction does not burn IDs.
func (tx *Tx) NextID(seq Sequence) int64 {
	c := &tx.Data.Counters
	switch seq {
	case UserSeq:
		c.User++
		return c.User
	case ChannelSeq:
		c.Channel++
		return c.Channel
	case DmSeq:
		c.Dm++
		return c.Dm
	case MessageSeq:
		c.Message++
		return c.Message
	}
	panic("store: unknown sequence")
}
