package security

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/logging"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/storage"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTokenStore(t *testing.T, singleUse bool) (*TokenStore, *storage.MemoryStore, *testClock) {
	t.Helper()
	clock := &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	store := storage.NewMemoryStore(clock.Now)
	ts := NewTokenStore(store, CSRFConfig{TTL: 15 * time.Minute, SingleUse: singleUse, Clock: clock.Now}, logging.NewDiscardLogger())
	return ts, store, clock
}

func TestGenerators(t *testing.T) {
	key, err := GenerateSecureKey(64)
	require.NoError(t, err)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{64}$`), key)

	assert.Len(t, GenerateULID(), 26)
}

func TestCSRFRoundTrip(t *testing.T) {
	ts, _, _ := newTokenStore(t, false)
	ctx := context.Background()

	token, err := ts.Issue(ctx, "session-a")
	require.NoError(t, err)
	assert.Len(t, token, 64)

	assert.True(t, ts.Verify(ctx, "session-a", token))
	assert.True(t, ts.Verify(ctx, "session-a", token), "tokens stay valid until they expire")
}

func TestCSRFIsolation(t *testing.T) {
	ts, _, _ := newTokenStore(t, false)
	ctx := context.Background()

	tokenA, err := ts.Issue(ctx, "session-a")
	require.NoError(t, err)
	_, err = ts.Issue(ctx, "session-b")
	require.NoError(t, err)

	assert.False(t, ts.Verify(ctx, "session-b", tokenA))
	assert.False(t, ts.Verify(ctx, "session-c", tokenA))
}

func TestCSRFReissueSupersedes(t *testing.T) {
	ts, _, _ := newTokenStore(t, false)
	ctx := context.Background()

	first, err := ts.Issue(ctx, "session-a")
	require.NoError(t, err)
	second, err := ts.Issue(ctx, "session-a")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.False(t, ts.Verify(ctx, "session-a", first))
	assert.True(t, ts.Verify(ctx, "session-a", second))
}

func TestCSRFExpiryEvicts(t *testing.T) {
	ts, store, clock := newTokenStore(t, false)
	ctx := context.Background()

	token, err := ts.Issue(ctx, "session-a")
	require.NoError(t, err)

	clock.Advance(15*time.Minute - time.Millisecond)
	assert.True(t, ts.Verify(ctx, "session-a", token))

	clock.Advance(time.Millisecond)
	assert.False(t, ts.Verify(ctx, "session-a", token))
	assert.Equal(t, 0, store.Len())
}

func TestCSRFRejectsWrongTokens(t *testing.T) {
	ts, _, _ := newTokenStore(t, false)
	ctx := context.Background()

	token, err := ts.Issue(ctx, "session-a")
	require.NoError(t, err)

	for _, supplied := range []string{"", "wrong", token[:63], token + "0", strings.ToUpper(token)} {
		if supplied == token {
			continue
		}
		assert.False(t, ts.Verify(ctx, "session-a", supplied), supplied)
	}
}

func TestCSRFSingleUse(t *testing.T) {
	ts, _, _ := newTokenStore(t, true)
	ctx := context.Background()

	token, err := ts.Issue(ctx, "session-a")
	require.NoError(t, err)

	assert.True(t, ts.Verify(ctx, "session-a", token))
	assert.False(t, ts.Verify(ctx, "session-a", token))
}

func TestCSRFSingleUseKeepsTokenOnMismatch(t *testing.T) {
	ts, _, _ := newTokenStore(t, true)
	ctx := context.Background()

	token, err := ts.Issue(ctx, "session-a")
	require.NoError(t, err)

	assert.False(t, ts.Verify(ctx, "session-a", strings.Repeat("0", len(token))))
	assert.True(t, ts.Verify(ctx, "session-a", token))
}

func TestCSRFSingleUseConcurrentVerify(t *testing.T) {
	ts, store, _ := newTokenStore(t, true)
	ctx := context.Background()

	token, err := ts.Issue(ctx, "session-a")
	require.NoError(t, err)

	var accepted atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ts.Verify(ctx, "session-a", token) {
				accepted.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), accepted.Load())
	assert.Equal(t, 0, store.Len())
}

func TestCSRFSweepsOnIssue(t *testing.T) {
	ts, store, clock := newTokenStore(t, false)
	ctx := context.Background()

	_, err := ts.Issue(ctx, "stale")
	require.NoError(t, err)
	clock.Advance(16 * time.Minute)

	_, err = ts.Issue(ctx, "fresh")
	require.NoError(t, err)
	assert.Equal(t, 1, store.Len())
}

func TestSanitizeString(t *testing.T) {
	s := NewSanitizer(DefaultMaxChars)

	cases := map[string]string{
		"  hello  ":                     "hello",
		"<script>alert(1)</script>":     "scriptalert(1)/script",
		"JavaScript:alert(1)":           "alert(1)",
		`<img src=x onerror=alert(1)>`:  "img src=x alert(1)",
		"jajavascript:vascript:void(0)": "void(0)",
		"ONMOUSEOVER=steal()":           "steal()",
		"Крем для лица, 50 мл":          "Крем для лица, 50 мл",
	}
	for in, want := range cases {
		assert.Equal(t, want, s.String(in), in)
	}
}

func TestSanitizeIsIdempotent(t *testing.T) {
	s := NewSanitizer(DefaultMaxChars)

	inputs := []any{
		"  <<b>>bold</b>  ",
		"javajavascript:script:x",
		"ononclick=click=",
		" trailing space after cut " + strings.Repeat("x", 20000),
		strings.Repeat("a ", 6000),
		[]any{"<a>", 1.5, true, nil, map[string]any{"k": " on1=v "}},
		map[string]any{"nested": []any{"javascript:javascript:"}},
	}
	for _, in := range inputs {
		once := s.Value(in)
		assert.Equal(t, once, s.Value(once))
	}
}

func TestSanitizeLengthCeiling(t *testing.T) {
	s := NewSanitizer(DefaultMaxChars)

	out := s.String(strings.Repeat("a", 15000))
	assert.Len(t, out, 10000)

	cyrillic := s.String(strings.Repeat("я", 15000))
	assert.Equal(t, 10000, len([]rune(cyrillic)))
}

func TestSanitizeStructure(t *testing.T) {
	s := NewSanitizer(DefaultMaxChars)

	in := map[string]any{
		"name":     " <b>Анна</b> ",
		"count":    float64(3),
		"agree":    true,
		"missing":  nil,
		"products": []any{map[string]any{"brand": "<x>"}, "y"},
	}
	out := s.Value(in).(map[string]any)

	assert.Equal(t, "bАнна/b", out["name"])
	assert.Equal(t, float64(3), out["count"])
	assert.Equal(t, true, out["agree"])
	assert.Nil(t, out["missing"])
	assert.Contains(t, out, "missing")

	products := out["products"].([]any)
	require.Len(t, products, 2)
	assert.Equal(t, "x", products[0].(map[string]any)["brand"])
	assert.Equal(t, "y", products[1])
	assert.Equal(t, " <b>Анна</b> ", in["name"], "input is not modified")
}
