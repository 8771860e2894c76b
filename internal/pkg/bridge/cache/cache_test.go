package cache

import (
	"fmt"
	"sync"
	"testing"

	bridge "github.com/sparxmathsalternative/damnis/internal/pkg/bridge/domain"
)

func msg(id string) bridge.Message {
	return bridge.Message{ID: id, Content: "m" + id, ChannelID: "C1"}
}

func TestReadLastUnknownConversation(t *testing.T) {
	c := New(50)
	got := c.ReadLast("missing", 10)
	if got == nil {
		t.Fatal("expected empty slice, got nil")
	}
	if len(got) != 0 {
		t.Fatalf("expected no messages, got %d", len(got))
	}
}

func TestAppendEvictsOldestFIFO(t *testing.T) {
	c := New(50)
	for i := 1; i <= 60; i++ {
		c.Append("C1", msg(fmt.Sprintf("%d", i)))
	}

	got := c.ReadLast("C1", 100)
	if len(got) != 50 {
		t.Fatalf("expected exactly 50 retained messages, got %d", len(got))
	}
	// Messages 1-10 must have been evicted; 11 is the oldest survivor.
	if got[0].ID != "11" {
		t.Fatalf("expected oldest retained message 11, got %s", got[0].ID)
	}
	if got[49].ID != "60" {
		t.Fatalf("expected newest message 60, got %s", got[49].ID)
	}
	// Chronological order throughout.
	for i, m := range got {
		if want := fmt.Sprintf("%d", 11+i); m.ID != want {
			t.Fatalf("position %d: expected %s, got %s", i, want, m.ID)
		}
	}
}

func TestReadLastReturnsRequestedWindow(t *testing.T) {
	c := New(50)
	for i := 1; i <= 5; i++ {
		c.Append("C1", msg(fmt.Sprintf("%d", i)))
	}

	got := c.ReadLast("C1", 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(got))
	}
	if got[0].ID != "3" || got[2].ID != "5" {
		t.Fatalf("expected window [3..5], got [%s..%s]", got[0].ID, got[2].ID)
	}

	if got := c.ReadLast("C1", 0); len(got) != 0 {
		t.Fatalf("expected empty result for n=0, got %d", len(got))
	}
}

func TestConversationsAreIndependent(t *testing.T) {
	c := New(50)
	c.Append("C1", msg("1"))
	c.Append("C2", msg("2"))

	if got := c.ReadLast("C1", 10); len(got) != 1 || got[0].ID != "1" {
		t.Fatalf("C1: unexpected contents %v", got)
	}
	if got := c.ReadLast("C2", 10); len(got) != 1 || got[0].ID != "2" {
		t.Fatalf("C2: unexpected contents %v", got)
	}
	if c.Total() != 2 {
		t.Fatalf("expected total 2, got %d", c.Total())
	}
}

func TestConcurrentReadersSingleWriter(t *testing.T) {
	c := New(50)
	done := make(chan struct{})

	var wg sync.WaitGroup
	for r := 0; r < 8; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-done:
					return
				default:
					got := c.ReadLast("C1", 50)
					if len(got) > 50 {
						t.Errorf("read more than capacity: %d", len(got))
						return
					}
				}
			}
		}()
	}

	for i := 0; i < 500; i++ {
		c.Append("C1", msg(fmt.Sprintf("%d", i)))
	}
	close(done)
	wg.Wait()

	if got := c.ReadLast("C1", 50); len(got) != 50 {
		t.Fatalf("expected 50 retained after load, got %d", len(got))
	}
}
