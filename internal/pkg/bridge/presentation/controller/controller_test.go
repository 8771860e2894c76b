package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	cacheadapter "github.com/sparxmathsalternative/damnis/internal/infrastructure/cache/adapter"
	"github.com/sparxmathsalternative/damnis/internal/pkg/auth/application/usecase"
	auth "github.com/sparxmathsalternative/damnis/internal/pkg/auth/domain"
	repoadapter "github.com/sparxmathsalternative/damnis/internal/pkg/auth/persistence/repository/adapter"
	authctl "github.com/sparxmathsalternative/damnis/internal/pkg/auth/presentation/controller"
	msgcache "github.com/sparxmathsalternative/damnis/internal/pkg/bridge/cache"
	bridge "github.com/sparxmathsalternative/damnis/internal/pkg/bridge/domain"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/dispatch"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/eventclient"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/platform"
	"github.com/sparxmathsalternative/damnis/internal/pkg/bridge/sink"
)

type fakeSink struct {
	mu    sync.Mutex
	owner string
	posts []platform.SinkMessage
	block chan struct{} // when set, Post waits for ctx
}

func (s *fakeSink) OwnerID() string { return s.owner }

func (s *fakeSink) Post(ctx context.Context, m platform.SinkMessage) error {
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.posts = append(s.posts, m)
	return nil
}

func (s *fakeSink) sent() []platform.SinkMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]platform.SinkMessage(nil), s.posts...)
}

// fakePlatform serves canned guild/channel/member data and hands out sinks.
type fakePlatform struct {
	guilds   []platform.Guild
	channels map[string][]platform.Channel
	members  map[string]platform.Member
	sink     *fakeSink
	sinkErr  error
}

func (f *fakePlatform) Guilds(ctx context.Context) ([]platform.Guild, error) {
	return f.guilds, nil
}

func (f *fakePlatform) Channels(ctx context.Context, guildID string) ([]platform.Channel, error) {
	chs, ok := f.channels[guildID]
	if !ok {
		return nil, platform.ErrNotFound
	}
	return chs, nil
}

func (f *fakePlatform) Member(ctx context.Context, guildID, userID string) (platform.Member, error) {
	m, ok := f.members[guildID+"/"+userID]
	if !ok {
		return platform.Member{}, platform.ErrNotFound
	}
	return m, nil
}

func (f *fakePlatform) Sinks(ctx context.Context, channelID string) ([]platform.Sink, error) {
	if f.sinkErr != nil {
		return nil, f.sinkErr
	}
	for _, chs := range f.channels {
		for _, ch := range chs {
			if ch.ID == channelID {
				return nil, nil
			}
		}
	}
	return nil, platform.ErrNotFound
}

func (f *fakePlatform) CreateSink(ctx context.Context, channelID, name string) (platform.Sink, error) {
	if f.sinkErr != nil {
		return nil, f.sinkErr
	}
	return f.sink, nil
}

type env struct {
	router   *gin.Engine
	cache    *msgcache.MessageCache
	plat     *fakePlatform
	sendCtl  *SendMessageController
	quickURL string // auth query string for a seeded user
}

func newEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := repoadapter.NewMemoryUserRepository()
	sessions := repoadapter.NewCacheSessionStore(cacheadapter.NewMemoryAdapter())
	if _, err := repo.CreateUser(context.Background(), auth.User{
		Email: "a@x.com", Username: "alice", QuickCode: "123456",
	}); err != nil {
		t.Fatalf("seed user: %v", err)
	}

	plat := &fakePlatform{
		guilds: []platform.Guild{{ID: "g1", Name: "home", IconURL: "http://icons/g1", MemberCount: 3}},
		channels: map[string][]platform.Channel{
			"g1": {
				{ID: "c1", Name: "general", Type: "text", Category: "main"},
				{ID: "c2", Name: "lounge", Type: "voice", Category: "main"},
			},
		},
		members: map[string]platform.Member{
			"g1/u1": {
				User: platform.User{ID: "u1", Username: "bob", DisplayName: "Bob"},
				Roles: []platform.Role{
					{ID: "r0", Name: "@everyone"},
					{ID: "r1", Name: "admin", Color: "#ff0000"},
				},
			},
		},
		sink: &fakeSink{owner: "self"},
	}

	mc := msgcache.New(msgcache.DefaultCapacity)
	d := dispatch.New(8)

	loopCtx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() {
		for {
			select {
			case <-loopCtx.Done():
				return
			case inv := <-d.Queue():
				inv.Run(loopCtx)
			}
		}
	}()

	resolver := sink.NewResolver(plat, func() string { return "self" })
	sendCtl := NewSendMessageController(d, resolver, repo)

	requireAuth := authctl.RequireAuth(usecase.NewAuthenticateUseCase(repo, sessions))

	r := gin.New()
	r.GET("/guilds", requireAuth, NewGuildsController(plat).Handle())
	r.GET("/guilds/:guildId/channels", requireAuth, NewChannelsController(plat).Handle())
	r.GET("/guilds/:guildId/members/:userId", requireAuth, NewMemberController(plat).Handle())
	r.GET("/channels/:channelId/messages", requireAuth, NewMessagesController(mc).Handle())
	r.POST("/channels/:channelId/send", requireAuth, sendCtl.Handle())

	return &env{router: r, cache: mc, plat: plat, sendCtl: sendCtl, quickURL: "code=123456"}
}

func (e *env) do(t *testing.T, method, path string, body interface{}) (int, map[string]interface{}) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	sep := "?"
	if bytes.ContainsRune([]byte(path), '?') {
		sep = "&"
	}
	req := httptest.NewRequest(method, path+sep+e.quickURL, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	out := map[string]interface{}{}
	if w.Body.Len() > 0 {
		if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
			t.Fatalf("decode response %q: %v", w.Body.String(), err)
		}
	}
	return w.Code, out
}

func fillCache(mc *msgcache.MessageCache, channelID string, n int) {
	for i := 1; i <= n; i++ {
		mc.Append(channelID, bridge.Message{
			ID:        fmt.Sprintf("m%d", i),
			Content:   fmt.Sprintf("hello %d", i),
			ChannelID: channelID,
		})
	}
}

func TestGuildListing(t *testing.T) {
	e := newEnv(t)
	code, body := e.do(t, http.MethodGet, "/guilds", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", code, body)
	}
	guilds, _ := body["guilds"].([]interface{})
	if len(guilds) != 1 {
		t.Fatalf("expected one guild, got %v", body)
	}
	g := guilds[0].(map[string]interface{})
	if g["id"] != "g1" || g["member_count"] != float64(3) {
		t.Fatalf("unexpected guild payload %v", g)
	}
}

func TestChannelListingKeepsOnlyTextChannels(t *testing.T) {
	e := newEnv(t)
	code, body := e.do(t, http.MethodGet, "/guilds/g1/channels", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", code, body)
	}
	chs, _ := body["channels"].([]interface{})
	if len(chs) != 1 {
		t.Fatalf("expected the voice channel to be filtered, got %v", body)
	}
	ch := chs[0].(map[string]interface{})
	if ch["id"] != "c1" || ch["category"] != "main" {
		t.Fatalf("unexpected channel payload %v", ch)
	}
}

func TestChannelListingUnknownGuildIs404(t *testing.T) {
	e := newEnv(t)
	code, _ := e.do(t, http.MethodGet, "/guilds/nope/channels", nil)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestMemberLookupFiltersEveryoneRole(t *testing.T) {
	e := newEnv(t)
	code, body := e.do(t, http.MethodGet, "/guilds/g1/members/u1", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d %v", code, body)
	}
	roles, _ := body["roles"].([]interface{})
	if len(roles) != 1 {
		t.Fatalf("expected the everyone role to be filtered, got %v", body)
	}

	code, _ = e.do(t, http.MethodGet, "/guilds/g1/members/ghost", nil)
	if code != http.StatusNotFound {
		t.Fatalf("expected 404 for an unknown member, got %d", code)
	}
}

func TestMessagesDefaultLimitAndCap(t *testing.T) {
	e := newEnv(t)
	fillCache(e.cache, "c1", 60)

	code, body := e.do(t, http.MethodGet, "/channels/c1/messages", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	msgs, _ := body["messages"].([]interface{})
	if len(msgs) != 10 {
		t.Fatalf("expected the default limit of 10, got %d", len(msgs))
	}
	last := msgs[len(msgs)-1].(map[string]interface{})
	if last["id"] != "m60" {
		t.Fatalf("expected the newest message last, got %v", last)
	}

	code, body = e.do(t, http.MethodGet, "/channels/c1/messages?limit=3", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if msgs, _ := body["messages"].([]interface{}); len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}

	code, body = e.do(t, http.MethodGet, "/channels/c1/messages?limit=500", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if msgs, _ := body["messages"].([]interface{}); len(msgs) != 50 {
		t.Fatalf("expected the cap of 50, got %d", len(msgs))
	}
}

func TestMessagesRejectsBadLimit(t *testing.T) {
	e := newEnv(t)
	for _, limit := range []string{"abc", "0", "-5"} {
		if code, _ := e.do(t, http.MethodGet, "/channels/c1/messages?limit="+limit, nil); code != http.StatusBadRequest {
			t.Fatalf("expected 400 for limit %q, got %d", limit, code)
		}
	}
}

func TestMessagesUnknownChannelIsEmpty(t *testing.T) {
	e := newEnv(t)
	code, body := e.do(t, http.MethodGet, "/channels/empty/messages", nil)
	if code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if msgs, _ := body["messages"].([]interface{}); len(msgs) != 0 {
		t.Fatalf("expected an empty list, got %v", msgs)
	}
}

func TestSendDefaultsIdentityFromCaller(t *testing.T) {
	e := newEnv(t)

	code, body := e.do(t, http.MethodPost, "/channels/c1/send", gin.H{"content": "hi there"})
	if code != http.StatusOK || body["success"] != true {
		t.Fatalf("send failed: %d %v", code, body)
	}

	sent := e.plat.sink.sent()
	if len(sent) != 1 {
		t.Fatalf("expected one post, got %d", len(sent))
	}
	if sent[0].Content != "hi there" || sent[0].Username != "alice" {
		t.Fatalf("unexpected post %+v", sent[0])
	}
}

func TestSendKeepsExplicitIdentity(t *testing.T) {
	e := newEnv(t)

	code, _ := e.do(t, http.MethodPost, "/channels/c1/send", gin.H{
		"content": "hi", "username": "impostor", "avatar_base64": "YQ==",
	})
	if code != http.StatusOK {
		t.Fatalf("send failed with %d", code)
	}

	sent := e.plat.sink.sent()
	if sent[0].Username != "impostor" || sent[0].AvatarBase64 != "YQ==" {
		t.Fatalf("explicit identity was overridden: %+v", sent[0])
	}
}

func TestSendRejectsMissingContent(t *testing.T) {
	e := newEnv(t)
	code, _ := e.do(t, http.MethodPost, "/channels/c1/send", gin.H{"username": "alice"})
	if code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", code)
	}
}

func TestSendSurfacesSinkUnavailable(t *testing.T) {
	e := newEnv(t)
	e.plat.sinkErr = fmt.Errorf("forbidden")

	code, body := e.do(t, http.MethodPost, "/channels/c1/send", gin.H{"content": "hi"})
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d %v", code, body)
	}
}

func TestSendUnknownChannelIs404(t *testing.T) {
	e := newEnv(t)
	code, _ := e.do(t, http.MethodPost, "/channels/nope/send", gin.H{"content": "hi"})
	if code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", code)
	}
}

func TestSendTimesOutOnStuckSink(t *testing.T) {
	e := newEnv(t)
	e.plat.sink.block = make(chan struct{}) // never closed
	e.sendCtl.Timeout = 50 * time.Millisecond

	start := time.Now()
	code, body := e.do(t, http.MethodPost, "/channels/c1/send", gin.H{"content": "hi"})
	if code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d %v", code, body)
	}
	if msg, _ := body["error"].(string); msg == "" || msg == "send failed" {
		t.Fatalf("expected a timeout-specific error, got %v", body)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Fatalf("timeout took too long: %v", elapsed)
	}
}

// idleGateway never delivers events; used to exercise the health report
// before the bot has connected.
type idleGateway struct{}

func (idleGateway) Connect(ctx context.Context) error { <-ctx.Done(); return ctx.Err() }
func (idleGateway) Events() <-chan platform.Event     { return nil }
func (idleGateway) Latency() time.Duration            { return 0 }
func (idleGateway) Close() error                      { return nil }

func TestHealthReportsZeroUptimeBeforeReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mc := msgcache.New(msgcache.DefaultCapacity)
	ec := eventclient.New(idleGateway{}, dispatch.New(4), mc, nil)

	r := gin.New()
	r.GET("/health", NewHealthController(ec, mc).Handle())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	out := map[string]interface{}{}
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got := out["uptime_seconds"].(float64); got != 0 {
		t.Fatalf("uptime before first ready = %v, want 0", got)
	}
}
