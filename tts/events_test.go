package tts

import "testing"

func TestBroadcasterDeliversToAllSubscribers(t *testing.T) {
	b := NewBroadcaster[int]()
	defer b.Close()

	ch1, cancel1 := b.Subscribe()
	ch2, cancel2 := b.Subscribe()
	defer cancel1()
	defer cancel2()

	b.Publish(7)
	b.Publish(8)

	for name, ch := range map[string]<-chan int{"first": ch1, "second": ch2} {
		if got := <-ch; got != 7 {
			t.Errorf("%s subscriber got %d, want 7", name, got)
		}
		if got := <-ch; got != 8 {
			t.Errorf("%s subscriber got %d, want 8", name, got)
		}
	}
}

func TestBroadcasterCancelClosesChannel(t *testing.T) {
	b := NewBroadcaster[int]()
	defer b.Close()

	ch, cancel := b.Subscribe()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after cancel")
	}
	// Cancel twice is safe, and publishing after cancel does not panic.
	cancel()
	b.Publish(1)
}

func TestBroadcasterNeverBlocksOnSlowSubscriber(t *testing.T) {
	b := NewBroadcaster[int]()
	defer b.Close()

	ch, cancel := b.Subscribe()
	defer cancel()

	// Overfill the subscriber buffer; extra values are dropped, not queued.
	for i := 0; i < subscriberBuffer*2; i++ {
		b.Publish(i)
	}

	for i := 0; i < subscriberBuffer; i++ {
		if got := <-ch; got != i {
			t.Fatalf("value %d = %d, buffered values should arrive in order", i, got)
		}
	}
	select {
	case v := <-ch:
		t.Errorf("unexpected extra value %d past the buffer", v)
	default:
	}
}

func TestBroadcasterClose(t *testing.T) {
	b := NewBroadcaster[string]()
	ch, _ := b.Subscribe()

	b.Close()
	if _, ok := <-ch; ok {
		t.Error("subscriber channel should be closed")
	}

	// Closed broadcasters hand out already-closed channels.
	late, cancel := b.Subscribe()
	defer cancel()
	if _, ok := <-late; ok {
		t.Error("post-close subscription should be closed")
	}

	// Idempotent close, publish after close is a no-op.
	b.Close()
	b.Publish("dropped")
}
