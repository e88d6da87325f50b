// Package l3history owns Layer 3 (History) of the pose data model: the
// fixed-capacity, insertion-ordered window of recently computed poses that
// the phase classifier and multi-frame quality metrics read from.
//
// Dependency rule: L3 may depend on L1-L2. History is not safe for
// concurrent use; callers serialize access.
package l3history

import (
	"github.com/banshee-data/form.report/internal/config"
	"github.com/banshee-data/form.report/internal/pose/l2geometry"
)

// DefaultCapacity is the number of poses retained when no capacity is given.
const DefaultCapacity = 30

// History maintains a sliding window of poses, oldest evicted first.
type History struct {
	poses    []*l2geometry.BodyPose
	capacity int
	head     int // Points to next write position
	size     int // Current number of poses stored
}

// NewHistory creates a pose history with the specified capacity.
func NewHistory(capacity int) *History {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	return &History{
		poses:    make([]*l2geometry.BodyPose, capacity),
		capacity: capacity,
	}
}

// NewHistoryFromTuning creates a pose history sized from a TuningConfig.
func NewHistoryFromTuning(cfg *config.TuningConfig) *History {
	return NewHistory(cfg.GetHistoryCapacity())
}

// Push appends a pose, evicting the oldest if at capacity.
func (h *History) Push(pose *l2geometry.BodyPose) {
	h.poses[h.head] = pose
	h.head = (h.head + 1) % h.capacity
	if h.size < h.capacity {
		h.size++
	}
}

// Previous returns the pose N steps back from the most recent.
// Previous(1) returns the most recently added pose.
// Returns nil if the requested pose doesn't exist.
func (h *History) Previous(n int) *l2geometry.BodyPose {
	if n < 1 || n > h.size {
		return nil
	}
	idx := (h.head - n + h.capacity) % h.capacity
	return h.poses[idx]
}

// Latest returns the most recent pose, or nil when empty.
func (h *History) Latest() *l2geometry.BodyPose {
	return h.Previous(1)
}

// Last returns the n most recent poses in chronological order, or fewer if
// the history holds fewer.
func (h *History) Last(n int) []*l2geometry.BodyPose {
	if n > h.size {
		n = h.size
	}
	if n <= 0 {
		return nil
	}
	result := make([]*l2geometry.BodyPose, n)
	for i := 0; i < n; i++ {
		result[i] = h.Previous(n - i)
	}
	return result
}

// All returns every stored pose from oldest to newest.
func (h *History) All() []*l2geometry.BodyPose {
	return h.Last(h.size)
}

// Len returns the current number of poses in history.
func (h *History) Len() int {
	return h.size
}

// Capacity returns the maximum number of poses that can be stored.
func (h *History) Capacity() int {
	return h.capacity
}

// Clear removes all poses from history.
func (h *History) Clear() {
	for i := range h.poses {
		h.poses[i] = nil
	}
	h.head = 0
	h.size = 0
}

// TimeDeltaSeconds returns the time delta between the two most recent poses.
// Returns 0 if fewer than 2 poses are available.
func (h *History) TimeDeltaSeconds() float64 {
	if h.size < 2 {
		return 0
	}
	return h.Previous(1).Timestamp - h.Previous(2).Timestamp
}
