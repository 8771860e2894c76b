// Package sink resolves and caches the outbound-post handle for each
// conversation. Resolution is serialized per conversation so concurrent
// first-time callers share one creation request instead of racing.
package sink

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/platform"
)

// DefaultName is the well-known name given to sinks created by the bridge.
const DefaultName = "Damnis Bridge"

// ErrSinkUnavailable reports that the platform denied sink lookup or
// creation for the conversation. Failures are never cached.
var ErrSinkUnavailable = errors.New("sink: unavailable")

// Resolver guarantees at most one sink creation per conversation per
// process lifetime. Safe for concurrent use.
type Resolver struct {
	client platform.Client
	selfID func() string
	name   string

	mu    sync.RWMutex
	sinks map[string]platform.Sink
	group singleflight.Group
}

// NewResolver constructs a Resolver. selfID reports the bridge account's
// platform user ID and is consulted at resolution time, since the identity
// is only known once the gateway session is ready.
func NewResolver(client platform.Client, selfID func() string) *Resolver {
	return &Resolver{
		client: client,
		selfID: selfID,
		name:   DefaultName,
		sinks:  make(map[string]platform.Sink),
	}
}

// Resolve returns the sink for the conversation, creating it on first use.
// Concurrent callers for the same uncached conversation wait for, and
// share, the first caller's result.
func (r *Resolver) Resolve(ctx context.Context, conversationID string) (platform.Sink, error) {
	r.mu.RLock()
	s := r.sinks[conversationID]
	r.mu.RUnlock()
	if s != nil {
		return s, nil
	}

	v, err, _ := r.group.Do(conversationID, func() (interface{}, error) {
		// Re-check under the flight: a previous flight may have populated
		// the cache between our miss and acquiring the key.
		r.mu.RLock()
		s := r.sinks[conversationID]
		r.mu.RUnlock()
		if s != nil {
			return s, nil
		}

		s, err := r.lookupOrCreate(ctx, conversationID)
		if err != nil {
			return nil, err
		}

		r.mu.Lock()
		r.sinks[conversationID] = s
		r.mu.Unlock()
		return s, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(platform.Sink), nil
}

// lookupOrCreate prefers an existing sink owned by the bridge identity over
// creating a new one; the platform may hold sinks from other accounts.
func (r *Resolver) lookupOrCreate(ctx context.Context, conversationID string) (platform.Sink, error) {
	existing, err := r.client.Sinks(ctx, conversationID)
	if errors.Is(err, platform.ErrNotFound) {
		return nil, fmt.Errorf("conversation %s: %w", conversationID, platform.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: list for %s: %v", ErrSinkUnavailable, conversationID, err)
	}

	self := r.selfID()
	for _, s := range existing {
		if self != "" && s.OwnerID() == self {
			return s, nil
		}
	}

	created, err := r.client.CreateSink(ctx, conversationID, r.name)
	if err != nil {
		return nil, fmt.Errorf("%w: create for %s: %v", ErrSinkUnavailable, conversationID, err)
	}
	return created, nil
}
