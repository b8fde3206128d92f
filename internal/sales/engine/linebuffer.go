package engine

import "bytes"

// LineBuffer reassembles complete lines from an arbitrarily chunked byte
// stream. Chunks may split lines anywhere, including inside multi-byte UTF-8
// sequences; because lines are cut only on '\n' (a byte that never occurs
// inside a multi-byte sequence) reassembly is byte-exact for any chunking.
type LineBuffer struct {
	pending []byte
}

// Feed splits chunk on newlines and emits every completed line, in order and
// without its terminator. The unterminated tail becomes the new pending
// fragment. The emitted slice is only valid for the duration of the callback.
func (b *LineBuffer) Feed(chunk []byte, emit func(line []byte)) {
	start := 0
	for {
		i := bytes.IndexByte(chunk[start:], '\n')
		if i < 0 {
			break
		}

		line := chunk[start : start+i]
		if len(b.pending) > 0 {
			line = append(b.pending, line...)
			b.pending = b.pending[:0]
		}
		emit(line)

		start += i + 1
	}

	if start < len(chunk) {
		b.pending = append(b.pending, chunk[start:]...)
	}
}

// Finish flushes the pending fragment as one final line; no trailing
// terminator is required. A stream ending exactly on a terminator produces
// nothing. Must be called once, after the last Feed.
func (b *LineBuffer) Finish(emit func(line []byte)) {
	if len(b.pending) == 0 {
		return
	}

	line := b.pending
	b.pending = nil
	emit(line)
}

// Pending returns the number of buffered bytes awaiting a terminator.
func (b *LineBuffer) Pending() int {
	return len(b.pending)
}
