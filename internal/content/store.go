// Package content holds the in-memory document store and the source loader.
package content

import (
	"sync"

	"git.home.luguber.info/inful/sitegen/pkg/model"
)

// Store is the thread-safe container for the current build's documents and
// derived taxonomy collections. It is rebuilt from disk on every generation
// run; nothing in it survives a run except by being loaded again.
type Store struct {
	mu         sync.RWMutex
	documents  []model.Document
	categories []model.Category
	tags       []model.Tag
}

func NewStore() *Store {
	return &Store{}
}

// SetDocuments replaces the document collection and clears derived taxonomy
// state until the next Classify.
func (s *Store) SetDocuments(docs []model.Document) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = docs
	s.categories = nil
	s.tags = nil
}

// Documents returns a copy of the document slice. Elements share backing
// maps with the store; callers that hand documents to plugins must Clone.
func (s *Store) Documents() []model.Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Document(nil), s.documents...)
}

// Categories returns a copy of the derived category collection.
func (s *Store) Categories() []model.Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Category(nil), s.categories...)
}

// Tags returns a copy of the derived tag collection.
func (s *Store) Tags() []model.Tag {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Tag(nil), s.tags...)
}

// Snapshot deep-copies everything for a plugin context.
func (s *Store) Snapshot() ([]model.Document, []model.Category, []model.Tag) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	docs := make([]model.Document, len(s.documents))
	for i, d := range s.documents {
		docs[i] = d.Clone()
	}
	cats := append([]model.Category(nil), s.categories...)
	tags := append([]model.Tag(nil), s.tags...)
	return docs, cats, tags
}

// Len reports the number of documents.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.documents)
}
