package search

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
	bleveQuery "github.com/blevesearch/bleve/v2/search/query"

	"github.com/pders01/hnsearch/internal/debuglog"
	"github.com/pders01/hnsearch/internal/storage"
)

// BleveEngine keeps a full-text index over the story archive.
type BleveEngine struct {
	store *storage.Store
	idx   bleve.Index
}

// Open returns a bleve-backed Searcher for indexPath, falling back to the
// scanning Engine when indexPath is empty or the index cannot be opened.
func Open(store *storage.Store, indexPath string) Searcher {
	if indexPath == "" {
		return NewEngine(store)
	}
	eng, err := NewBleveEngine(store, indexPath)
	if err != nil {
		debuglog.Warnf("search index unavailable, scanning archive instead: %v", err)
		return NewEngine(store)
	}
	return eng
}

// NewBleveEngine creates or opens a Bleve index at indexPath and indexes
// the archived stories.
func NewBleveEngine(store *storage.Store, indexPath string) (*BleveEngine, error) {
	if err := os.MkdirAll(filepath.Dir(indexPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating index directory: %w", err)
	}

	idx, err := bleve.Open(indexPath)
	if errors.Is(err, bleve.ErrorIndexPathDoesNotExist) {
		idx, err = bleve.New(indexPath, buildIndexMapping())
	}
	if err != nil {
		return nil, fmt.Errorf("opening index %s: %w", indexPath, err)
	}

	be := &BleveEngine{store: store, idx: idx}
	if err := be.reindexAll(); err != nil {
		_ = idx.Close()
		return nil, err
	}
	return be, nil
}

func buildIndexMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	im.DefaultAnalyzer = standard.Name

	dm := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = standard.Name
	title.Store = true
	title.IncludeTermVectors = true

	author := bleve.NewTextFieldMapping()
	author.Analyzer = keyword.Name
	author.Store = true

	url := bleve.NewTextFieldMapping()
	url.Analyzer = standard.Name
	url.Store = true

	query := bleve.NewTextFieldMapping()
	query.Analyzer = standard.Name
	query.Store = false

	dm.AddFieldMappingsAt("title", title)
	dm.AddFieldMappingsAt("author", author)
	dm.AddFieldMappingsAt("url", url)
	dm.AddFieldMappingsAt("query", query)

	im.DefaultMapping = dm
	return im
}

func (b *BleveEngine) reindexAll() error {
	stories, err := b.store.GetStories(0)
	if err != nil {
		return err
	}
	return b.Index(stories)
}

// Index adds or replaces stories in the index.
func (b *BleveEngine) Index(stories []*storage.Story) error {
	batch := b.idx.NewBatch()
	for _, s := range stories {
		if s == nil || s.ID == "" {
			continue
		}
		if err := batch.Index(docIDForStory(s.ID), storyDocument(s)); err != nil {
			return fmt.Errorf("indexing story %s: %w", s.ID, err)
		}
	}
	return b.idx.Batch(batch)
}

func storyDocument(s *storage.Story) map[string]any {
	return map[string]any{
		"title":  s.Title,
		"author": strings.ToLower(s.Author),
		"url":    s.URL,
		"query":  s.Query,
	}
}

func (b *BleveEngine) Search(query string, limit int) ([]*Result, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []*Result{}, nil
	}
	if limit <= 0 {
		limit = 50
	}

	// OR of per-token matches across fields, title boosted highest
	var qs []bleveQuery.Query
	for _, tok := range tokenize(query) {
		qt := bleve.NewMatchQuery(tok)
		qt.SetField("title")
		qt.SetBoost(4.0)
		qtp := bleve.NewPrefixQuery(tok)
		qtp.SetField("title")
		qtp.SetBoost(3.5)

		qa := bleve.NewTermQuery(tok)
		qa.SetField("author")
		qa.SetBoost(2.0)
		qap := bleve.NewPrefixQuery(tok)
		qap.SetField("author")
		qap.SetBoost(1.8)

		qq := bleve.NewMatchQuery(tok)
		qq.SetField("query")
		qq.SetBoost(1.5)

		qu := bleve.NewMatchQuery(tok)
		qu.SetField("url")
		qu.SetBoost(0.5)

		qs = append(qs, qt, qtp, qa, qap, qq, qu)
	}
	if len(qs) == 0 {
		return []*Result{}, nil
	}

	req := bleve.NewSearchRequestOptions(bleve.NewDisjunctionQuery(qs...), limit, 0, false)
	req.Fields = []string{"title", "author", "url"}
	res, err := b.idx.Search(req)
	if err != nil {
		return nil, err
	}

	out := make([]*Result, 0, len(res.Hits))
	for _, h := range res.Hits {
		id := strings.TrimPrefix(h.ID, "story:")
		s, err := b.store.GetStory(id)
		if err != nil {
			// Index ahead of the archive; rebuild from stored fields.
			s = &storage.Story{ID: id}
			if t, ok := h.Fields["title"].(string); ok {
				s.Title = t
			}
			if a, ok := h.Fields["author"].(string); ok {
				s.Author = a
			}
			if u, ok := h.Fields["url"].(string); ok {
				s.URL = u
			}
		}
		out = append(out, &Result{Story: s, Score: h.Score})
	}
	return out, nil
}

// DocCount reports total documents in the index.
func (b *BleveEngine) DocCount() (int, error) {
	n, err := b.idx.DocCount()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (b *BleveEngine) Close() error {
	return b.idx.Close()
}

func docIDForStory(id string) string { return "story:" + id }
