package simulation

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestSchedulerOrdering(t *testing.T) {
	Convey("Given a scheduler with several commands due at different times", t, func() {
		s := NewScheduler()
		now := TimeZero
		s.Push(now.Add(DurationFromSeconds(5)), UpdateCarCommand(2), now)
		s.Push(now.Add(DurationFromSeconds(1)), UpdateCarCommand(1), now)
		s.Push(now.Add(DurationFromSeconds(3)), UpdatePedCommand(1), now)

		Convey("Pop returns them in time order regardless of insertion order", func() {
			_, c1 := s.Pop()
			So(c1, ShouldResemble, UpdateCarCommand(1))
			_, c2 := s.Pop()
			So(c2, ShouldResemble, UpdatePedCommand(1))
			_, c3 := s.Pop()
			So(c3, ShouldResemble, UpdateCarCommand(2))
			So(s.IsEmpty(), ShouldBeTrue)
		})
	})

	Convey("Given two commands scheduled at the identical time", t, func() {
		s := NewScheduler()
		now := TimeZero
		at := now.Add(DurationFromSeconds(1))
		s.Push(at, UpdateCarCommand(7), now)
		s.Push(at, UpdateCarCommand(3), now)

		Convey("Pop breaks the tie by Command.Less (lower CarID first)", func() {
			_, c1 := s.Pop()
			So(c1, ShouldResemble, UpdateCarCommand(3))
			_, c2 := s.Pop()
			So(c2, ShouldResemble, UpdateCarCommand(7))
		})
	})

	Convey("Given a command already pending for an agent", t, func() {
		s := NewScheduler()
		now := TimeZero
		s.Push(now.Add(DurationFromSeconds(10)), UpdateCarCommand(1), now)

		Convey("Update reschedules it instead of leaving a stale duplicate", func() {
			s.Update(now.Add(DurationFromSeconds(2)), UpdateCarCommand(1), now)
			So(s.Len(), ShouldEqual, 1)
			at, cmd := s.Pop()
			So(cmd, ShouldResemble, UpdateCarCommand(1))
			So(at, ShouldResemble, now.Add(DurationFromSeconds(2)))
		})
	})

	Convey("Given a scheduler and a command scheduled before now", t, func() {
		s := NewScheduler()
		now := TimeFromSeconds(10)

		Convey("Push panics rather than silently corrupting replay order", func() {
			So(func() {
				s.Push(TimeFromSeconds(5), UpdateCarCommand(1), now)
			}, ShouldPanic)
		})
	})
}
