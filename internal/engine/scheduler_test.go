package engine

import (
	"testing"
	"time"
)

func TestSchedulerFiresRepeatedly(t *testing.T) {
	fired := make(chan struct{}, 64)
	var s Scheduler
	s.Arm(5*time.Millisecond, func() { fired <- struct{}{} })
	defer s.Disarm()

	deadline := time.After(2 * time.Second)
	for i := 0; i < 3; i++ {
		select {
		case <-fired:
		case <-deadline:
			t.Fatalf("only %d fires before deadline", i)
		}
	}
	if !s.Armed() {
		t.Error("scheduler disarmed itself")
	}
	if s.Interval() != 5*time.Millisecond {
		t.Errorf("interval = %v", s.Interval())
	}
}

func TestSchedulerDisarmStopsFiring(t *testing.T) {
	fired := make(chan struct{}, 64)
	var s Scheduler
	s.Arm(2*time.Millisecond, func() { fired <- struct{}{} })

	<-fired
	s.Disarm()

	// Drain anything already in flight, then expect silence.
	time.Sleep(20 * time.Millisecond)
	for len(fired) > 0 {
		<-fired
	}
	time.Sleep(20 * time.Millisecond)
	if len(fired) != 0 {
		t.Error("scheduler fired after disarm")
	}
	if s.Armed() {
		t.Error("Armed() true after disarm")
	}
	if s.Interval() != 0 {
		t.Errorf("interval = %v after disarm", s.Interval())
	}
}

func TestSchedulerRearmReplacesInterval(t *testing.T) {
	fired := make(chan struct{}, 64)
	var s Scheduler
	s.Arm(time.Hour, func() { fired <- struct{}{} })
	s.Arm(3*time.Millisecond, func() { fired <- struct{}{} })
	defer s.Disarm()

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("re-armed scheduler never fired")
	}
	if s.Interval() != 3*time.Millisecond {
		t.Errorf("interval = %v", s.Interval())
	}
}
