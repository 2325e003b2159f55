package eventbus

import (
	"sync"
	"testing"
)

func TestPublishFanout(t *testing.T) {
	t.Parallel()
	b := New()
	a, unsubA := b.Subscribe(4)
	c, unsubC := b.Subscribe(4)
	defer unsubA()
	defer unsubC()

	b.Publish(Event{Type: TypeInvoke, Task: "blink", Data: Invocation{Cycle: 1, Seq: 1}})

	for _, ch := range []<-chan Event{a, c} {
		select {
		case e := <-ch:
			if e.Type != TypeInvoke || e.Task != "blink" {
				t.Fatalf("unexpected event %+v", e)
			}
			if e.Time.IsZero() {
				t.Fatal("Publish should stamp the event time")
			}
		default:
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestPublishDropsWhenSubscriberFull(t *testing.T) {
	t.Parallel()
	b := New()
	ch, unsub := b.Subscribe(1)
	defer unsub()

	b.Publish(Event{Type: TypeState})
	b.Publish(Event{Type: TypeDone}) // dropped, must not block

	if got := len(ch); got != 1 {
		t.Fatalf("len = %d, want 1", got)
	}
	if e := <-ch; e.Type != TypeState {
		t.Fatalf("kept %q, want first event", e.Type)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()
	b := New()
	ch, unsub := b.Subscribe(0)
	unsub()
	unsub() // idempotent
	if _, ok := <-ch; ok {
		t.Fatal("channel should be closed")
	}
	b.Publish(Event{Type: TypeAdvance}) // no panic after unsubscribe
}

func TestConcurrentPublishAndUnsubscribe(t *testing.T) {
	t.Parallel()
	b := New()

	stop := make(chan struct{})
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					b.Publish(Event{Type: TypeInvoke, Task: "blink"})
				}
			}
		}()
	}

	for i := 0; i < 200; i++ {
		ch, unsub := b.Subscribe(1)
		if i%2 == 0 {
			<-ch
		}
		unsub()
		for range ch {
		}
	}
	close(stop)
	wg.Wait()
}

func TestNopBus(t *testing.T) {
	t.Parallel()
	b := Nop()
	b.Publish(Event{Type: TypeDone})
	ch, unsub := b.Subscribe(1)
	defer unsub()
	if _, ok := <-ch; ok {
		t.Fatal("nop subscription should be closed")
	}
}
