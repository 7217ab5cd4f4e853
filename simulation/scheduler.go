package simulation

import (
	"container/heap"
	"fmt"

	log "gopkg.in/inconshreveable/log15.v2"
)

// logger is the package's child logger, following the teacher's
// parentLogger.New("module", "...") idiom.
var logger = log.New("module", "simulation")

// item is one entry in the Scheduler's binary heap: a Command due at Time.
// seq breaks ties between commands inserted at the same (Time, Command) pair
// so heap.Fix/Pop stay stable, but it never affects the Less order the spec
// requires — that's entirely Time then Command.Less.
type item struct {
	at   Time
	cmd  Command
	seq  int
	index int
}

type commandHeap []*item

func (h commandHeap) Len() int { return len(h) }
func (h commandHeap) Less(i, j int) bool {
	if !h[i].at.Before(h[j].at) && !h[j].at.Before(h[i].at) {
		if h[i].cmd.Equal(h[j].cmd) {
			return h[i].seq < h[j].seq
		}
		return h[i].cmd.Less(h[j].cmd)
	}
	return h[i].at.Before(h[j].at)
}
func (h commandHeap) Swap(i, j int) {
	h[i], h[j] = h[j], h[i]
	h[i].index = i
	h[j].index = j
}
func (h *commandHeap) Push(x interface{}) {
	it := x.(*item)
	it.index = len(*h)
	*h = append(*h, it)
}
func (h *commandHeap) Pop() interface{} {
	old := *h
	n := len(old)
	it := old[n-1]
	old[n-1] = nil
	it.index = -1
	*h = old[:n-1]
	return it
}

// Scheduler is the discrete-event priority queue driving the simulation:
// commands are popped in (Time, Command) order, with Command.Less providing
// the deterministic tie-break spec.md requires for bit-identical replay.
type Scheduler struct {
	heap    commandHeap
	byKey   map[identityKey]*item
	nextSeq int
}

// NewScheduler builds an empty Scheduler.
func NewScheduler() *Scheduler {
	s := &Scheduler{byKey: make(map[identityKey]*item)}
	heap.Init(&s.heap)
	return s
}

// Push schedules cmd to fire at "at". Pushing a command scheduled to fire in
// the past is a programmer error (a command generator computed a negative
// delay) and is fatal: spec.md §7's fatal tier.
func (s *Scheduler) Push(at Time, cmd Command, now Time) {
	if at.Before(now) {
		logger.Crit("scheduling command in the past", "cmd", cmd.String(), "at", at, "now", now)
		panic(fmt.Sprintf("Scheduler.Push(%s) at %s is before now %s", cmd, at, now))
	}
	if old, ok := s.byKey[cmd.key()]; ok {
		heap.Remove(&s.heap, old.index)
	}
	it := &item{at: at, cmd: cmd, seq: s.nextSeq}
	s.nextSeq++
	heap.Push(&s.heap, it)
	s.byKey[cmd.key()] = it
}

// Update reschedules cmd to fire at "at", cancelling any existing pending
// instance of the same logical command (same identityKey). This is how
// driving/walking state machines push an agent's next wakeup without ever
// double-scheduling it.
func (s *Scheduler) Update(at Time, cmd Command, now Time) {
	s.Push(at, cmd, now)
}

// Cancel removes any pending instance of cmd, if one exists.
func (s *Scheduler) Cancel(cmd Command) {
	if old, ok := s.byKey[cmd.key()]; ok {
		heap.Remove(&s.heap, old.index)
		delete(s.byKey, cmd.key())
	}
}

// Pop removes and returns the earliest-due command along with its time.
// Panics if the scheduler is empty; callers must check IsEmpty first.
func (s *Scheduler) Pop() (Time, Command) {
	it := heap.Pop(&s.heap).(*item)
	delete(s.byKey, it.cmd.key())
	return it.at, it.cmd
}

// IsEmpty reports whether the scheduler has nothing left to run.
func (s *Scheduler) IsEmpty() bool { return s.heap.Len() == 0 }

// PeekTime returns the time of the next due command without removing it.
// Panics if empty.
func (s *Scheduler) PeekTime() Time { return s.heap[0].at }

// Len reports how many commands are currently pending.
func (s *Scheduler) Len() int { return s.heap.Len() }
