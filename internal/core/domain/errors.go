package domain

import (
	"errors"
	"fmt"
)

// Domain errors represent pipeline failures.
// Typed errors below unwrap to one of these so callers can use errors.Is.
var (
	// ErrMissingCredential indicates the provider API key is not set.
	// This is fatal at startup for any command that talks to a provider.
	ErrMissingCredential = errors.New("missing credential")

	// ErrDirectoryNotFound indicates the source directory does not exist.
	ErrDirectoryNotFound = errors.New("directory not found")

	// ErrDecode indicates a source file is not valid UTF-8 text.
	ErrDecode = errors.New("decode error")

	// ErrInvalidConfiguration indicates settings that are nonsensical or
	// would never terminate, such as a chunk overlap >= chunk size.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrProvider indicates an embedding or chat provider call failed.
	ErrProvider = errors.New("provider error")

	// ErrEmbeddingFailed indicates a chunk could not be embedded.
	ErrEmbeddingFailed = errors.New("embedding failed")

	// ErrUpsertFailed indicates a chunk could not be written to the vector store.
	ErrUpsertFailed = errors.New("upsert failed")
)

// DecodeError reports a source file that could not be decoded as text.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
	}
	return fmt.Sprintf("decode %s: not valid UTF-8", e.Path)
}

// Is reports ErrDecode as a match.
func (e *DecodeError) Is(target error) bool {
	return target == ErrDecode
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// ProviderError wraps a failed call to an external provider.
// Op names the call, e.g. "embed" or "complete".
type ProviderError struct {
	Op  string
	Err error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Op, e.Err)
}

// Is reports ErrProvider as a match.
func (e *ProviderError) Is(target error) bool {
	return target == ErrProvider
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Chunk operations reported by ChunkError.
const (
	OpEmbed  = "embed"
	OpUpsert = "upsert"
)

// ChunkError reports a failure indexing a single chunk.
type ChunkError struct {
	Op      string
	ChunkID string
	Err     error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("%s chunk %s: %v", e.Op, e.ChunkID, e.Err)
}

// Is matches ErrEmbeddingFailed or ErrUpsertFailed depending on Op.
func (e *ChunkError) Is(target error) bool {
	switch e.Op {
	case OpEmbed:
		return target == ErrEmbeddingFailed
	case OpUpsert:
		return target == ErrUpsertFailed
	}
	return false
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}
