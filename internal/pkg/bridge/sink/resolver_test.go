package sink

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/platform"
)

type fakeSink struct {
	owner string
	id    string
}

func (f *fakeSink) OwnerID() string                                    { return f.owner }
func (f *fakeSink) Post(ctx context.Context, m platform.SinkMessage) error { return nil }

// fakePlatform counts sink listings and creations and can simulate slow or
// failing creation.
type fakePlatform struct {
	mu       sync.Mutex
	existing map[string][]platform.Sink
	creates  atomic.Int64
	failNext atomic.Bool
	notFound atomic.Bool // Sinks reports an unknown conversation
	gate     chan struct{} // when non-nil, CreateSink blocks until closed
}

func (f *fakePlatform) Guilds(ctx context.Context) ([]platform.Guild, error) { return nil, nil }
func (f *fakePlatform) Channels(ctx context.Context, guildID string) ([]platform.Channel, error) {
	return nil, nil
}
func (f *fakePlatform) Member(ctx context.Context, guildID, userID string) (platform.Member, error) {
	return platform.Member{}, nil
}

func (f *fakePlatform) Sinks(ctx context.Context, channelID string) ([]platform.Sink, error) {
	if f.notFound.Load() {
		return nil, platform.ErrNotFound
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.existing[channelID], nil
}

func (f *fakePlatform) CreateSink(ctx context.Context, channelID, name string) (platform.Sink, error) {
	if f.gate != nil {
		<-f.gate
	}
	if f.failNext.Swap(false) {
		return nil, errors.New("missing permission")
	}
	f.creates.Add(1)
	return &fakeSink{owner: "bridge-bot", id: channelID + "/" + name}, nil
}

func selfBridge() string { return "bridge-bot" }

func TestResolveCreatesOnce(t *testing.T) {
	p := &fakePlatform{existing: map[string][]platform.Sink{}}
	r := NewResolver(p, selfBridge)

	first, err := r.Resolve(context.Background(), "C1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := r.Resolve(context.Background(), "C1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first != second {
		t.Fatal("expected cached handle on second resolve")
	}
	if got := p.creates.Load(); got != 1 {
		t.Fatalf("expected 1 creation, got %d", got)
	}
}

func TestResolvePrefersOwnExistingSink(t *testing.T) {
	ours := &fakeSink{owner: "bridge-bot", id: "theirs-before-ours"}
	p := &fakePlatform{existing: map[string][]platform.Sink{
		"C1": {&fakeSink{owner: "someone-else"}, ours},
	}}
	r := NewResolver(p, selfBridge)

	got, err := r.Resolve(context.Background(), "C1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != ours {
		t.Fatal("expected the bridge-owned existing sink to be reused")
	}
	if p.creates.Load() != 0 {
		t.Fatalf("expected no creation, got %d", p.creates.Load())
	}
}

func TestConcurrentResolveSharesOneCreation(t *testing.T) {
	p := &fakePlatform{
		existing: map[string][]platform.Sink{},
		gate:     make(chan struct{}),
	}
	r := NewResolver(p, selfBridge)

	const callers = 12
	var (
		wg      sync.WaitGroup
		started sync.WaitGroup
		mu      sync.Mutex
		results []platform.Sink
	)

	started.Add(callers)
	wg.Add(callers)
	for i := 0; i < callers; i++ {
		go func() {
			defer wg.Done()
			started.Done()
			s, err := r.Resolve(context.Background(), "C1")
			if err != nil {
				t.Errorf("resolve: %v", err)
				return
			}
			mu.Lock()
			results = append(results, s)
			mu.Unlock()
		}()
	}

	// Release creation only after all callers are in flight.
	started.Wait()
	close(p.gate)
	wg.Wait()

	if got := p.creates.Load(); got != 1 {
		t.Fatalf("expected exactly 1 creation under concurrency, got %d", got)
	}
	if len(results) != callers {
		t.Fatalf("expected %d results, got %d", callers, len(results))
	}
	for _, s := range results {
		if s != results[0] {
			t.Fatal("callers received different handles")
		}
	}
}

func TestResolveFailureNotCached(t *testing.T) {
	p := &fakePlatform{existing: map[string][]platform.Sink{}}
	p.failNext.Store(true)
	r := NewResolver(p, selfBridge)

	if _, err := r.Resolve(context.Background(), "C1"); !errors.Is(err, ErrSinkUnavailable) {
		t.Fatalf("expected ErrSinkUnavailable, got %v", err)
	}

	// The next attempt must go back to the platform and succeed.
	s, err := r.Resolve(context.Background(), "C1")
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if s == nil {
		t.Fatal("expected a sink after retry")
	}
	if p.creates.Load() != 1 {
		t.Fatalf("expected 1 successful creation, got %d", p.creates.Load())
	}
}

func TestResolveUnknownConversation(t *testing.T) {
	p := &fakePlatform{existing: map[string][]platform.Sink{}}
	p.notFound.Store(true)
	r := NewResolver(p, selfBridge)

	if _, err := r.Resolve(context.Background(), "C1"); !errors.Is(err, platform.ErrNotFound) {
		t.Fatalf("expected ErrNotFound to pass through, got %v", err)
	}
	if p.creates.Load() != 0 {
		t.Fatalf("expected no creation attempt, got %d", p.creates.Load())
	}
}
