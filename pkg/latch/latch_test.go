package latch

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func expectInvariant(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatalf("expected panic wrapping %v", target)
		}
		err, ok := r.(*InvariantError)
		if !ok {
			t.Fatalf("expected *InvariantError, got %T", r)
		}
		if !errors.Is(err, target) {
			t.Fatalf("expected %v, got %v", target, err)
		}
	}()
	fn()
}

func TestDeliverBuffersLatestUntilAttach(t *testing.T) {
	l := New()
	if l.Deliver("https://tonhub.com/a") {
		t.Fatalf("expected buffering without consumer")
	}
	l.Deliver("https://tonhub.com/b")

	if link, ok := l.Pending(); !ok || link != "https://tonhub.com/b" {
		t.Fatalf("expected latest link buffered, got %q %v", link, ok)
	}

	var got []string
	l.Attach(func(link string) { got = append(got, link) })
	if len(got) != 1 || got[0] != "https://tonhub.com/b" {
		t.Fatalf("expected single replay of latest link, got %v", got)
	}
	if _, ok := l.Pending(); ok {
		t.Fatalf("expected buffer cleared after replay")
	}
}

func TestDeliverCallsConsumerDirectly(t *testing.T) {
	l := New()
	var got []string
	l.Attach(func(link string) { got = append(got, link) })

	if !l.Deliver("x") || !l.Deliver("y") {
		t.Fatalf("expected immediate delivery")
	}
	if len(got) != 2 || got[0] != "x" || got[1] != "y" {
		t.Fatalf("unexpected deliveries %v", got)
	}
	if _, ok := l.Pending(); ok {
		t.Fatalf("buffer must stay empty while attached")
	}
}

func TestAttachWithEmptyBufferDoesNotInvoke(t *testing.T) {
	l := New()
	calls := 0
	l.Attach(func(string) { calls++ })
	if calls != 0 {
		t.Fatalf("expected no replay, got %d calls", calls)
	}
}

func TestAttachTwicePanicsAndKeepsFirst(t *testing.T) {
	l := New()
	var first []string
	l.Attach(func(link string) { first = append(first, link) })

	expectInvariant(t, ErrConsumerAttached, func() {
		l.Attach(func(string) { t.Fatalf("second consumer must never run") })
	})

	l.Deliver("after")
	if len(first) != 1 || first[0] != "after" {
		t.Fatalf("expected first consumer to keep receiving, got %v", first)
	}
}

func TestDetachThenBuffer(t *testing.T) {
	l := New()
	detach := l.Attach(func(string) {})
	detach()
	if l.Attached() {
		t.Fatalf("expected slot cleared")
	}
	l.Deliver("later")
	if link, ok := l.Pending(); !ok || link != "later" {
		t.Fatalf("expected buffered link after detach, got %q", link)
	}
}

func TestDoubleDetachPanics(t *testing.T) {
	l := New()
	detach := l.Attach(func(string) {})
	detach()
	expectInvariant(t, ErrDetachMismatch, detach)
}

func TestStaleDetachPanicsAndKeepsCurrent(t *testing.T) {
	l := New()
	stale := l.Attach(func(string) {})
	stale()
	var got []string
	l.Attach(func(link string) { got = append(got, link) })

	expectInvariant(t, ErrDetachMismatch, stale)
	if !l.Attached() {
		t.Fatalf("current consumer must survive a stale detach")
	}
	l.Deliver("z")
	if len(got) != 1 {
		t.Fatalf("expected current consumer to receive link, got %v", got)
	}
}

func TestAttachReplaysBeforeReturning(t *testing.T) {
	l := New()
	l.Deliver("first")
	var detach Detach
	received := ""
	detach = l.Attach(func(link string) {
		received = link
	})
	detach()
	if received != "first" {
		t.Fatalf("expected replay before attach returned, got %q", received)
	}
}

func TestConcurrentDeliverExactlyOnce(t *testing.T) {
	l := New()
	var mu sync.Mutex
	seen := map[string]int{}
	l.Attach(func(link string) {
		mu.Lock()
		seen[link]++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			l.Deliver(string(rune('a' + i%26)))
		}(i)
	}
	wg.Wait()

	total := 0
	for _, n := range seen {
		total += n
	}
	if total != 50 {
		t.Fatalf("expected 50 deliveries, got %d", total)
	}
}

func TestReplayFinishesBeforeConcurrentDeliver(t *testing.T) {
	l := New()
	l.Deliver("old")

	var mu sync.Mutex
	var completed []string
	l.Attach(func(link string) {
		if link == "old" {
			done := make(chan struct{})
			go func() {
				l.Deliver("new")
				close(done)
			}()
			<-done
		}
		mu.Lock()
		completed = append(completed, link)
		mu.Unlock()
	})

	mu.Lock()
	defer mu.Unlock()
	if len(completed) != 2 || completed[0] != "old" || completed[1] != "new" {
		t.Fatalf("expected [old new], got %v", completed)
	}
}

func TestDeliverFromConsumerIsQueued(t *testing.T) {
	l := New()
	var got []string
	l.Attach(func(link string) {
		got = append(got, link)
		if link == "a" {
			if !l.Deliver("b") {
				t.Errorf("expected nested deliver to be accepted")
			}
			if len(got) != 1 {
				t.Errorf("nested deliver must not run the consumer re-entrantly")
			}
		}
	})
	l.Deliver("a")
	if len(got) != 2 || got[1] != "b" {
		t.Fatalf("expected [a b], got %v", got)
	}
}

func TestConsumerNeverRunsConcurrently(t *testing.T) {
	l := New()
	var (
		mu       sync.Mutex
		inFlight int
		overlap  bool
		total    int
	)
	l.Attach(func(string) {
		mu.Lock()
		inFlight++
		if inFlight > 1 {
			overlap = true
		}
		mu.Unlock()

		time.Sleep(time.Millisecond)

		mu.Lock()
		inFlight--
		total++
		mu.Unlock()
	})

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			l.Deliver("x")
		}()
	}
	wg.Wait()

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := total
		mu.Unlock()
		if n == 20 || time.Now().After(deadline) {
			break
		}
		time.Sleep(time.Millisecond)
	}

	mu.Lock()
	defer mu.Unlock()
	if overlap {
		t.Fatalf("consumer ran concurrently with itself")
	}
	if total != 20 {
		t.Fatalf("expected 20 deliveries, got %d", total)
	}
}

func TestDetachDuringHandOffBuffersNewest(t *testing.T) {
	l := New()
	var detach Detach
	var got []string
	detach = l.Attach(func(link string) {
		got = append(got, link)
		if link == "a" {
			l.Deliver("b")
			l.Deliver("c")
			detach()
		}
	})
	l.Deliver("a")

	if len(got) != 1 {
		t.Fatalf("expected only the first link before detach, got %v", got)
	}
	if link, ok := l.Pending(); !ok || link != "c" {
		t.Fatalf("expected newest queued link buffered, got %q %v", link, ok)
	}
}
