package filter

import (
	"context"
	"fmt"

	"semfilter/internal/store"
)

// fakeEmbedder serves canned vectors keyed by text and records every batch
// it is asked to encode.
type fakeEmbedder struct {
	dims    int
	vectors map[string][]float32
	calls   [][]string
	err     error
}

func newFakeEmbedder(dims int) *fakeEmbedder {
	return &fakeEmbedder{dims: dims, vectors: make(map[string][]float32)}
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls = append(f.calls, append([]string(nil), texts...))
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i, text := range texts {
		vec, ok := f.vectors[text]
		if !ok {
			return nil, fmt.Errorf("fake embedder: no vector for %q", text)
		}
		out[i] = append([]float32(nil), vec...)
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return f.dims }
func (f *fakeEmbedder) Name() string    { return "fake" }

func (f *fakeEmbedder) encodedTexts() []string {
	var all []string
	for _, call := range f.calls {
		all = append(all, call...)
	}
	return all
}

// fakeStore is an in-memory Store for engine and adjuster tests.
type fakeStore struct {
	categories []store.Category
	feedback   []store.FeedbackEntry
	whitelist  []store.WhitelistEntry
	nextID     int64
	listCalls  int
	listErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{nextID: 1}
}

func (f *fakeStore) CreateCategory(_ context.Context, c *store.Category) error {
	c.ID = f.nextID
	f.nextID++
	f.categories = append(f.categories, *c)
	return nil
}

func (f *fakeStore) ListCategories(_ context.Context, userID int64) ([]store.Category, error) {
	f.listCalls++
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []store.Category
	for _, c := range f.categories {
		if c.UserID == userID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeStore) GetCategory(_ context.Context, userID, categoryID int64) (*store.Category, error) {
	for _, c := range f.categories {
		if c.ID == categoryID && c.UserID == userID {
			cp := c
			return &cp, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeStore) DeleteCategory(_ context.Context, userID, categoryID int64) error {
	for i, c := range f.categories {
		if c.ID == categoryID && c.UserID == userID {
			f.categories = append(f.categories[:i], f.categories[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) RecordFeedback(_ context.Context, entry *store.FeedbackEntry, newVector []byte) error {
	for i, c := range f.categories {
		if c.ID == entry.CategoryID && c.UserID == entry.UserID {
			f.categories[i].Embedding = newVector
			entry.ID = fmt.Sprintf("fb-%d", len(f.feedback)+1)
			f.feedback = append(f.feedback, *entry)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) AddWhitelist(_ context.Context, userID int64, text string) error {
	f.whitelist = append(f.whitelist, store.WhitelistEntry{UserID: userID, Text: text})
	return nil
}

func (f *fakeStore) ListWhitelist(_ context.Context, userID int64) ([]store.WhitelistEntry, error) {
	var out []store.WhitelistEntry
	for _, e := range f.whitelist {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) RemoveWhitelist(_ context.Context, userID int64, text string) error {
	for i, e := range f.whitelist {
		if e.UserID == userID && e.Text == text {
			f.whitelist = append(f.whitelist[:i], f.whitelist[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (f *fakeStore) Close() error { return nil }
