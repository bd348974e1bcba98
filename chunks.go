package blobstore

import (
	"fmt"
	"io"
)

// DefaultChunkSize is the chunk size used when none is specified.
const DefaultChunkSize = 128 << 10

// Resetter is implemented by readers that can rewind to the start of their
// content without seeking, for example by reopening a remote stream.
type Resetter interface {
	Reset() error
}

// ChunkIterator yields the bytes of a reader as a finite sequence of chunks
// of at most a fixed size.
//
// The iterator is lazy: each Next call performs at most one read of the
// underlying source. Reading past end-of-data terminates the sequence
// exactly once; subsequent Next calls return false without touching the
// source. The sequence restarts from the beginning via Reset when the
// source supports it.
//
// The chunk returned by Chunk is only valid until the next call to Next or
// Reset.
type ChunkIterator struct {
	src   io.Reader
	buf   []byte
	chunk []byte
	err   error
	done  bool
}

// NewChunkIterator creates an iterator over src producing chunks of at most
// chunkSize bytes. Sizes less than 1 fall back to DefaultChunkSize.
func NewChunkIterator(src io.Reader, chunkSize int) *ChunkIterator {
	if chunkSize < 1 {
		chunkSize = DefaultChunkSize
	}
	return &ChunkIterator{
		src: src,
		buf: make([]byte, chunkSize),
	}
}

// Next advances to the next chunk. It returns false when the sequence is
// exhausted or a read error occurred; check Err after iteration.
func (it *ChunkIterator) Next() bool {
	if it.done {
		return false
	}

	n, err := io.ReadFull(it.src, it.buf)
	switch {
	case err == io.EOF:
		it.done = true
		it.chunk = nil
		return false
	case err == io.ErrUnexpectedEOF:
		// Short final chunk.
		it.done = true
		it.chunk = it.buf[:n]
		return true
	case err != nil:
		it.done = true
		it.chunk = nil
		it.err = err
		return false
	}

	it.chunk = it.buf[:n]
	return true
}

// Chunk returns the current chunk. It is nil before the first Next call and
// after the sequence terminates.
func (it *ChunkIterator) Chunk() []byte {
	return it.chunk
}

// Err returns the first read error encountered, if any. io.EOF is not
// reported as an error.
func (it *ChunkIterator) Err() error {
	return it.err
}

// Reset rewinds the iterator to the beginning of the source.
//
// Sources that implement io.Seeker are rewound in place; sources that
// implement Resetter are asked to restart. Reset returns ErrUnsupported
// for sources that can do neither.
func (it *ChunkIterator) Reset() error {
	switch src := it.src.(type) {
	case io.Seeker:
		if _, err := src.Seek(0, io.SeekStart); err != nil {
			return fmt.Errorf("rewind source: %w", err)
		}
	case Resetter:
		if err := src.Reset(); err != nil {
			return fmt.Errorf("restart source: %w", err)
		}
	default:
		return fmt.Errorf("%w: source is not rewindable", ErrUnsupported)
	}

	it.chunk = nil
	it.err = nil
	it.done = false
	return nil
}
