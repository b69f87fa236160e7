package cache_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bastndev/bracketlens/pkg/cache"
)

// fakeRenderer records whether its render handle was released.
type fakeRenderer struct {
	closed int
}

func (f *fakeRenderer) Close() error {
	f.closed++
	return nil
}

func TestEditorCacheRoundTrip(t *testing.T) {
	t.Parallel()

	c := cache.NewEditorCache(4, time.Minute)

	muted := true
	c.Set("editor-1", cache.EditorState{Muted: &muted, Dirty: true})

	state, ok := c.Get("editor-1")
	require.True(t, ok)
	require.NotNil(t, state.Muted)
	assert.True(t, *state.Muted)
	assert.True(t, state.Dirty)

	_, ok = c.Get("editor-2")
	assert.False(t, ok)
}

func TestEditorCacheClosesRendererOnInvalidate(t *testing.T) {
	t.Parallel()

	c := cache.NewEditorCache(4, time.Minute)
	r := &fakeRenderer{}
	c.Set("editor-1", cache.EditorState{Renderer: r})

	require.True(t, c.Invalidate("editor-1"))
	assert.Equal(t, 1, r.closed)
}

func TestEditorCacheClosesRendererOnReplace(t *testing.T) {
	t.Parallel()

	c := cache.NewEditorCache(4, time.Minute)
	old := &fakeRenderer{}
	c.Set("editor-1", cache.EditorState{Renderer: old})

	replacement := &fakeRenderer{}
	c.Set("editor-1", cache.EditorState{Renderer: replacement})

	assert.Equal(t, 1, old.closed, "replaced entry must release its handle")
	assert.Equal(t, 0, replacement.closed)
}

func TestEditorCacheClosesRendererOnCapacityEviction(t *testing.T) {
	t.Parallel()

	c := cache.NewEditorCache(1, time.Minute)
	first := &fakeRenderer{}
	c.Set("editor-1", cache.EditorState{Renderer: first})
	c.Set("editor-2", cache.EditorState{Renderer: &fakeRenderer{}})

	assert.Equal(t, 1, first.closed)
}

func TestEditorCacheClosesRenderersOnClear(t *testing.T) {
	t.Parallel()

	c := cache.NewEditorCache(4, time.Minute)
	a := &fakeRenderer{}
	b := &fakeRenderer{}
	c.Set("editor-1", cache.EditorState{Renderer: a})
	c.Set("editor-2", cache.EditorState{Renderer: b})

	c.Clear()

	assert.Equal(t, 1, a.closed)
	assert.Equal(t, 1, b.closed)
	assert.Equal(t, 0, c.Len())
}
