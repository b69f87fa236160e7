package cache

import (
	"io"
	"time"
)

// EditorState is the per-editor decoration state. A document may have
// multiple open editors; each gets its own entry keyed by editor identity.
type EditorState struct {
	// Muted is the editor's mute override: nil means unset (inherit).
	Muted *bool

	// Dirty marks the editor as needing a re-render.
	Dirty bool

	// Renderer is the external render resource exclusively owned by this
	// entry. It must be released before the entry is evicted or the
	// editor closes; the cache closes it on every eviction path.
	Renderer io.Closer
}

// EditorCache caches per-editor state. Eviction for any reason releases
// the entry's render handle.
type EditorCache struct {
	inner *Cache[EditorState]
}

// editorFingerprint is used for all editor entries: editor state is keyed
// by editor identity alone, not content.
const editorFingerprint = 0

// NewEditorCache creates an editor-state cache.
func NewEditorCache(capacity int, ttl time.Duration) *EditorCache {
	inner := New[EditorState]("editors", capacity, ttl)
	inner.SetOnEvict(func(_ string, state EditorState) {
		if state.Renderer != nil {
			state.Renderer.Close()
		}
	})
	return &EditorCache{inner: inner}
}

// Get returns the state for an editor key.
func (e *EditorCache) Get(editorKey string) (EditorState, bool) {
	return e.inner.Get(editorKey, editorFingerprint)
}

// Set stores the state for an editor key, replacing (and releasing) any
// previous entry.
func (e *EditorCache) Set(editorKey string, state EditorState) {
	e.inner.Set(editorKey, state, editorFingerprint, 1)
}

// Invalidate removes an editor's entry, releasing its render handle.
func (e *EditorCache) Invalidate(editorKey string) bool {
	return e.inner.Invalidate(editorKey)
}

// Sweepable surface, delegated to the inner cache.

func (e *EditorCache) Sweep() int { return e.inner.Sweep() }

func (e *EditorCache) RemoveOldest(n int) int { return e.inner.RemoveOldest(n) }

func (e *EditorCache) Len() int { return e.inner.Len() }

func (e *EditorCache) SizeBytes() int { return e.inner.SizeBytes() }

func (e *EditorCache) Capacity() int { return e.inner.Capacity() }

func (e *EditorCache) SetCapacity(capacity int) { e.inner.SetCapacity(capacity) }

func (e *EditorCache) TTL() time.Duration { return e.inner.TTL() }

func (e *EditorCache) SetTTL(ttl time.Duration) { e.inner.SetTTL(ttl) }

func (e *EditorCache) Stats() Stats { return e.inner.Stats() }

func (e *EditorCache) Clear() { e.inner.Clear() }
