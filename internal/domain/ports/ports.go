// Package ports defines interfaces for external dependencies.
// Usecases depend on these abstractions, adapters implement them.
package ports

import (
	"context"

	"github.com/0xcro3dile/eley-go/internal/domain/entities"
)

// KnowledgeStore persists the knowledge document.
// Save always writes the full document.
type KnowledgeStore interface {
	// Load reads the document. A missing document yields an empty knowledge
	// base; a malformed one yields a *entities.PersistenceError.
	Load(ctx context.Context) (*entities.KnowledgeBase, error)

	// Save replaces the persisted document with kb.
	Save(ctx context.Context, kb *entities.KnowledgeBase) error
}

// QuotaStore persists the fallback query counter.
type QuotaStore interface {
	// Load reads the counter. A missing document yields zero.
	Load(ctx context.Context) (entities.QuotaState, error)

	// Save replaces the persisted counter.
	Save(ctx context.Context, state entities.QuotaState) error
}

// FallbackService answers questions the knowledge store cannot.
type FallbackService interface {
	// Query returns the answer text, or "" when the service has no result.
	// Transport and service failures are returned as errors.
	Query(ctx context.Context, question string) (string, error)
}

// SpeechInput captures one utterance.
type SpeechInput interface {
	// Listen blocks until an utterance is captured and returns its
	// lower-cased transcript. A failed transcription returns a
	// *entities.RecognitionError; io.EOF means no more input will arrive.
	Listen(ctx context.Context) (string, error)
}

// SpeechOutput renders text into an audio artifact.
type SpeechOutput interface {
	// Synthesize writes audio for text and returns the artifact path.
	Synthesize(ctx context.Context, text string) (string, error)
}

// AudioPlayer plays an audio artifact.
type AudioPlayer interface {
	Play(ctx context.Context, path string) error
}

// WebSearcher opens search results for a query.
type WebSearcher interface {
	// Search returns a user-facing status message.
	Search(ctx context.Context, query string) (string, error)
}

// DeviceController sends a command to an attached device.
type DeviceController interface {
	// Send writes command and returns the device acknowledgment.
	Send(ctx context.Context, command entities.DeviceCommand) (string, error)
	Close() error
}

// FileWatcher monitors files for changes.
type FileWatcher interface {
	// Watch starts monitoring path and emits events.
	Watch(ctx context.Context, path string) (<-chan FileEvent, error)

	// Stop stops the watcher.
	Stop() error
}

// FileEvent represents a file system change.
type FileEvent struct {
	Path      string
	Operation FileOperation
}

// FileOperation is the type of file change.
type FileOperation int

const (
	FileCreated FileOperation = iota
	FileModified
	FileDeleted
)

// FactLoader reads facts from a document on disk.
type FactLoader interface {
	// Load returns the facts in path, in document order.
	Load(ctx context.Context, path string) ([]entities.Fact, error)

	// SupportedExtensions returns file extensions this loader handles.
	SupportedExtensions() []string
}
