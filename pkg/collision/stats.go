package collision

import "time"

// FrameStats collects per-step counters. The broadphase fills the fields it
// owns when handed a non-nil pointer.
type FrameStats struct {
	Frame              uint64
	Bodies             int
	TreeUpdates        int
	Pairs              int
	Collisions         int
	FastBodies         int
	FastBodyCollisions int
	Started            int
	Ended              int
	BroadphaseTime     time.Duration
	NarrowphaseTime    time.Duration
}
