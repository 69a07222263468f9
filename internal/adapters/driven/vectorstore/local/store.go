// Package local persists the vector index as a directory on local disk and
// answers filtered nearest-neighbour queries by brute-force cosine similarity.
package local

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/pascalhuerten/moodle-rag/internal/core/domain"
	"github.com/pascalhuerten/moodle-rag/internal/core/ports/driven"
)

// Ensure Store implements VectorIndexStore
var _ driven.VectorIndexStore = (*Store)(nil)

// Ensure Index implements VectorIndex
var _ driven.VectorIndex = (*Index)(nil)

const (
	// MetricCosine is the only supported similarity metric
	MetricCosine = "cosine"

	indexFile     = "index.json"
	formatVersion = 1
)

// manifest is the on-disk representation of an index
type manifest struct {
	Version    int                `json:"version"`
	Metric     string             `json:"metric"`
	Model      string             `json:"model"`
	Dimensions int                `json:"dimensions"`
	CreatedAt  time.Time          `json:"created_at"`
	Documents  []*domain.Document `json:"documents"`
}

// Store creates and opens the index directory
type Store struct {
	dir    string
	logger *slog.Logger
}

// NewStore creates a store rooted at dir. The directory is not created until Create.
func NewStore(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{dir: dir, logger: logger}
}

// Dir returns the index directory
func (s *Store) Dir() string {
	return s.dir
}

// Exists reports whether the index directory is present.
// Its presence alone decides between reopening and rebuilding.
func (s *Store) Exists() (bool, error) {
	info, err := os.Stat(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat index directory: %w", err)
	}
	if !info.IsDir() {
		return false, fmt.Errorf("index path %s is not a directory", s.dir)
	}
	return true, nil
}

// Create writes the documents into a temporary sibling directory and renames
// it into place, so readers of the directory never see a partial index.
func (s *Store) Create(ctx context.Context, docs []*domain.Document, model string) (driven.VectorIndex, error) {
	idx, err := newIndex(docs, model)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	parent := filepath.Dir(s.dir)
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return nil, fmt.Errorf("create index parent: %w", err)
	}

	tmp, err := os.MkdirTemp(parent, "."+filepath.Base(s.dir)+"-*")
	if err != nil {
		return nil, fmt.Errorf("create staging directory: %w", err)
	}
	defer os.RemoveAll(tmp) // no-op after a successful rename

	m := manifest{
		Version:    formatVersion,
		Metric:     MetricCosine,
		Model:      model,
		Dimensions: idx.dims,
		CreatedAt:  time.Now().UTC(),
		Documents:  docs,
	}
	if err := writeManifest(filepath.Join(tmp, indexFile), &m); err != nil {
		return nil, err
	}

	if err := os.Rename(tmp, s.dir); err != nil {
		return nil, fmt.Errorf("publish index directory: %w", err)
	}

	s.logger.Info("vector index persisted",
		"dir", s.dir,
		"documents", len(docs),
		"dimensions", idx.dims,
	)
	return idx, nil
}

// Open reads the persisted index. The stored model must match model unless either is empty.
func (s *Store) Open(ctx context.Context, model string) (driven.VectorIndex, error) {
	path := filepath.Join(s.dir, indexFile)
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("open index: %w", err)
	}
	defer f.Close()

	var m manifest
	if err := json.NewDecoder(f).Decode(&m); err != nil {
		return nil, fmt.Errorf("decode index: %w", err)
	}
	if m.Version != formatVersion {
		return nil, fmt.Errorf("unsupported index version %d", m.Version)
	}
	if m.Metric != MetricCosine {
		return nil, fmt.Errorf("unsupported index metric %q", m.Metric)
	}
	if model != "" && m.Model != "" && model != m.Model {
		return nil, fmt.Errorf("index was built with embedding model %q, configured model is %q", m.Model, model)
	}

	return newIndex(m.Documents, m.Model)
}

func writeManifest(path string, m *manifest) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create index file: %w", err)
	}
	if err := json.NewEncoder(f).Encode(m); err != nil {
		f.Close()
		return fmt.Errorf("encode index: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("sync index file: %w", err)
	}
	return f.Close()
}

// Index is an immutable in-memory index handle.
// Safe for concurrent Search calls.
type Index struct {
	model string
	dims  int
	docs  []*domain.Document
	unit  [][]float32 // L2-normalised embeddings, parallel to docs
}

func newIndex(docs []*domain.Document, model string) (*Index, error) {
	idx := &Index{
		model: model,
		docs:  docs,
		unit:  make([][]float32, len(docs)),
	}
	for i, d := range docs {
		if len(d.Embedding) == 0 {
			return nil, fmt.Errorf("document %s has no embedding", d.ID)
		}
		if idx.dims == 0 {
			idx.dims = len(d.Embedding)
		}
		if len(d.Embedding) != idx.dims {
			return nil, fmt.Errorf("document %s: embedding dimension %d, expected %d", d.ID, len(d.Embedding), idx.dims)
		}
		idx.unit[i] = normalise(d.Embedding)
	}
	return idx, nil
}

// Search returns up to opts.Limit documents matching opts.Filter, most similar first.
// Scores are cosine similarities in [-1, 1].
func (x *Index) Search(ctx context.Context, embedding []float32, opts domain.SearchOptions) ([]*domain.ScoredDocument, error) {
	if len(x.docs) == 0 {
		return []*domain.ScoredDocument{}, nil
	}
	if len(embedding) != x.dims {
		return nil, fmt.Errorf("query dimension %d, index dimension %d", len(embedding), x.dims)
	}
	limit := opts.Limit
	if limit <= 0 {
		limit = domain.DefaultTopK
	}

	q := normalise(embedding)
	hits := make([]*domain.ScoredDocument, 0, limit)
	for i, d := range x.docs {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		if !opts.Filter.Matches(d.Metadata) {
			continue
		}
		hits = append(hits, &domain.ScoredDocument{Document: d, Score: dot(q, x.unit[i])})
	}

	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	if len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Count returns the number of indexed documents
func (x *Index) Count() int {
	return len(x.docs)
}

// Model returns the embedding model the index was built with
func (x *Index) Model() string {
	return x.model
}

// Close is a no-op, the index holds no file handles
func (x *Index) Close() error {
	return nil
}

func normalise(v []float32) []float32 {
	var sum float64
	for _, f := range v {
		sum += float64(f) * float64(f)
	}
	out := make([]float32, len(v))
	if sum == 0 {
		return out
	}
	n := math.Sqrt(sum)
	for i, f := range v {
		out[i] = float32(float64(f) / n)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
