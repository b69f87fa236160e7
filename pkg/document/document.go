// Package document provides the immutable document snapshot the scope engine
// operates on. A Document holds the raw content, a line index for
// offset<->position conversion, and a content fingerprint used as the
// change-detection key by every cache layer.
package document

import "hash/fnv"

// Document is an immutable view of one source document at a specific time.
// All engine passes read from a Document; none of them mutate it. An edit
// produces a new Document with a new fingerprint.
type Document struct {
	// Path is the file path (may be empty for in-memory content).
	Path string

	// LanguageID selects the grammar used to parse this document
	// (e.g. "go", "javascript"). Empty means the default grammar.
	LanguageID string

	// Content is the full document bytes.
	Content []byte

	// Lines contains metadata for each line in the document.
	Lines []LineInfo

	// Version is a caller-supplied edit counter. It is carried for
	// diagnostics only; cache validity is decided by the fingerprint.
	Version int

	fingerprint uint64
}

// LineInfo holds metadata for a single line in a document.
type LineInfo struct {
	// StartOffset is the byte index of the line start.
	StartOffset int

	// NewlineStart is the byte index where newline characters begin.
	// For lines without a trailing newline this equals EndOffset.
	NewlineStart int

	// EndOffset is the byte index just after the newline (or end of file).
	EndOffset int
}

// New creates a Document from content, building the line index and
// fingerprint eagerly.
func New(path, languageID string, content []byte) *Document {
	return &Document{
		Path:        path,
		LanguageID:  languageID,
		Content:     content,
		Lines:       BuildLines(content),
		fingerprint: Fingerprint(content),
	}
}

// Fingerprint computes the FNV-1a content fingerprint for arbitrary bytes.
// A fingerprint mismatch between a cache entry and the current content is
// always authoritative: it forces a miss regardless of entry age.
func Fingerprint(content []byte) uint64 {
	h := fnv.New64a()
	h.Write(content)
	return h.Sum64()
}

// Fingerprint returns the content fingerprint of this document.
func (d *Document) Fingerprint() uint64 {
	return d.fingerprint
}

// Key returns the cache key identifying this document across edits.
// Path-less documents fall back to a fingerprint-derived key, which makes
// them single-shot as far as caching is concerned.
func (d *Document) Key() string {
	if d.Path != "" {
		return d.Path
	}
	return "mem:" + fingerprintString(d.fingerprint)
}

const hexDigits = "0123456789abcdef"

func fingerprintString(fp uint64) string {
	var buf [16]byte
	for i := 15; i >= 0; i-- {
		buf[i] = hexDigits[fp&0xf]
		fp >>= 4
	}
	return string(buf[:])
}
