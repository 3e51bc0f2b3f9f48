package steg

import "sync/atomic"

// Counters are bumped by workers while a run is in flight. A nil
// *Counters ignores updates.
type Counters struct {
	moves      atomic.Int64
	games      atomic.Int64
	terminated atomic.Int64
}

// Snapshot is a point-in-time copy of Counters.
type Snapshot struct {
	Moves      int64
	Games      int64
	Terminated int64
}

func (c *Counters) addMove() {
	if c != nil {
		c.moves.Add(1)
	}
}

func (c *Counters) addGame() {
	if c != nil {
		c.games.Add(1)
	}
}

func (c *Counters) addTerminated() {
	if c != nil {
		c.terminated.Add(1)
	}
}

func (c *Counters) Snapshot() Snapshot {
	if c == nil {
		return Snapshot{}
	}
	return Snapshot{
		Moves:      c.moves.Load(),
		Games:      c.games.Load(),
		Terminated: c.terminated.Load(),
	}
}
