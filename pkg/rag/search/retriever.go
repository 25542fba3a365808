// Package search implements hybrid retrieval over indexed resolution chunks:
// exact numeric matching, keyword matching widened with orthographic
// variants, and vector similarity, fused into one ranked context.
package search

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strconv"
	"strings"

	"resolution-rag-be/pkg/embedding"
	"resolution-rag-be/pkg/store"
	"resolution-rag-be/pkg/variation"

	"golang.org/x/sync/errgroup"
)

// ErrNoCollections means nothing has been indexed yet.
var ErrNoCollections = errors.New("no collections indexed")

type Config struct {
	// VectorLimit caps the hits of the vector strategy per collection.
	VectorLimit int
}

func DefaultConfig() Config {
	return Config{VectorLimit: 50}
}

// Item is one selected context entry.
type Item struct {
	DocumentName string
	Content      string
	ResolvePage  string
	Similarity   float64
	Strategy     Strategy
}

// Result holds the selected items and the sources and considerations of
// those same items, position by position.
type Result struct {
	Context        string
	Items          []Item
	Sources        []store.Source
	Considerations []store.Consideration
}

type Retriever struct {
	store    Store
	embedder embedding.EmbeddingProvider
	recorder RequestRecorder
	cfg      Config
}

// NewRetriever wires a retriever. recorder may be nil.
func NewRetriever(st Store, embedder embedding.EmbeddingProvider, recorder RequestRecorder, cfg Config) *Retriever {
	if cfg.VectorLimit <= 0 {
		cfg.VectorLimit = DefaultConfig().VectorLimit
	}
	return &Retriever{store: st, embedder: embedder, recorder: recorder, cfg: cfg}
}

// Search runs every strategy on every collection, keeps the n most similar
// hits and renders them as "<document_name> [<chunk text>]" joined by ", ".
func (r *Retriever) Search(ctx context.Context, query string, wordList []string, n int) (*Result, error) {
	collections, err := r.store.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	if len(collections) == 0 {
		return nil, ErrNoCollections
	}

	emb, err := r.embedder.Generate(ctx, query, embedding.TaskRetrievalQuery)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	queryVector := emb.Vector()

	numbers := ExtractNumbers(query)
	variants := expandAll(wordList)

	var hits []Hit
	for _, collection := range collections {
		found, err := r.searchCollection(ctx, collection, queryVector, numbers, variants)
		if err != nil {
			return nil, fmt.Errorf("collection %s: %w", collection, err)
		}
		hits = append(hits, found...)
	}

	selected := Fuse(hits, n)
	res := buildResult(selected)
	log.Printf("[INFO] Search %q: %d collections, %d hits, %d selected", query, len(collections), len(hits), len(selected))

	if r.recorder != nil && len(res.Sources) > 0 {
		if err := r.recorder.RecordRequests(ctx, RequestedDocuments(res.Sources)); err != nil {
			log.Printf("[WARN] Failed to record requested documents: %v", err)
		}
	}
	return res, nil
}

// searchCollection runs the three strategies concurrently. Hits come back
// in numeric, keyword, vector order so ties keep a stable ranking.
func (r *Retriever) searchCollection(ctx context.Context, collection string, vector []float32, numbers, variants []string) ([]Hit, error) {
	var numeric, keyword, semantic []Hit
	g, gctx := errgroup.WithContext(ctx)

	if len(numbers) > 0 {
		g.Go(func() error {
			var err error
			numeric, err = r.numericHits(gctx, collection, numbers)
			return err
		})
	}
	if len(variants) > 0 {
		g.Go(func() error {
			var err error
			keyword, err = r.keywordHits(gctx, collection, variants)
			return err
		})
	}
	g.Go(func() error {
		var err error
		semantic, err = r.store.VectorSearch(gctx, collection, vector, r.cfg.VectorLimit)
		for i := range semantic {
			semantic[i].Strategy = StrategyVector
		}
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]Hit, 0, len(numeric)+len(keyword)+len(semantic))
	out = append(out, numeric...)
	out = append(out, keyword...)
	return append(out, semantic...), nil
}

// numericHits scores 1.0 when number_resolution equals the token and 0.0
// when only the collection name did.
func (r *Retriever) numericHits(ctx context.Context, collection string, numbers []string) ([]Hit, error) {
	var hits []Hit
	for _, token := range numbers {
		forms := NumberForms(token)
		matches, err := r.store.NumericMatch(ctx, collection, forms)
		if err != nil {
			return nil, fmt.Errorf("numeric match %s: %w", token, err)
		}
		for _, m := range matches {
			score := 0.0
			if slices.Contains(forms, m.Number()) {
				score = 1.0
			}
			hits = append(hits, Hit{Metadata: m, Similarity: score, Strategy: StrategyNumeric})
		}
	}
	return hits, nil
}

// keywordHits scores each substring match by the Jaccard similarity of the
// variant and the chunk text.
func (r *Retriever) keywordHits(ctx context.Context, collection string, variants []string) ([]Hit, error) {
	var hits []Hit
	for _, v := range variants {
		matches, err := r.store.KeywordMatch(ctx, collection, v)
		if err != nil {
			return nil, fmt.Errorf("keyword match %q: %w", v, err)
		}
		for _, m := range matches {
			hits = append(hits, Hit{Metadata: m, Similarity: Jaccard(v, m.Text), Strategy: StrategyKeyword})
		}
	}
	return hits, nil
}

// expandAll expands every keyword and drops variants that differ only by
// case, since keyword matching is case-insensitive.
func expandAll(wordList []string) []string {
	var out []string
	seen := make(map[string]struct{})
	for _, w := range wordList {
		if strings.TrimSpace(w) == "" {
			continue
		}
		for _, v := range variation.Expand(w) {
			key := strings.ToLower(v)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// Fuse merges hits of the same chunk keeping its best score, orders them by
// similarity descending (stable) and keeps the first n.
func Fuse(hits []Hit, n int) []Hit {
	if n <= 0 {
		return nil
	}

	merged := make([]Hit, 0, len(hits))
	index := make(map[string]int, len(hits))
	for _, h := range hits {
		key := chunkKey(h.Metadata)
		if i, ok := index[key]; ok {
			if h.Similarity > merged[i].Similarity {
				merged[i].Similarity = h.Similarity
				merged[i].Strategy = h.Strategy
			}
			continue
		}
		index[key] = len(merged)
		merged = append(merged, h)
	}

	slices.SortStableFunc(merged, func(a, b Hit) int {
		return cmp.Compare(b.Similarity, a.Similarity)
	})
	if len(merged) > n {
		merged = merged[:n]
	}
	return merged
}

func chunkKey(m store.EmbeddingMetadata) string {
	if m.UUID != "" {
		return m.UUID
	}
	return m.CollectionName + "\x00" + m.DocumentName + "\x00" + strconv.Itoa(m.ChunkIndex)
}

func buildResult(selected []Hit) *Result {
	res := &Result{
		Items:          make([]Item, len(selected)),
		Sources:        make([]store.Source, len(selected)),
		Considerations: make([]store.Consideration, len(selected)),
	}
	parts := make([]string, len(selected))
	for i, h := range selected {
		m := h.Metadata
		res.Items[i] = Item{
			DocumentName: m.DocumentName,
			Content:      m.Text,
			ResolvePage:  m.ResolvePage,
			Similarity:   h.Similarity,
			Strategy:     h.Strategy,
		}
		res.Sources[i] = m.Source()
		res.Considerations[i] = m.Consideration()
		parts[i] = fmt.Sprintf("%s [%s]", m.DocumentName, m.Text)
	}
	res.Context = strings.Join(parts, ", ")
	return res
}

// RequestedDocuments returns each distinct source document once, keyed by
// name, with a ".pdf" suffix added to names that lack it.
func RequestedDocuments(sources []store.Source) []DocumentRequest {
	var out []DocumentRequest
	seen := make(map[string]struct{})
	for _, s := range sources {
		name := s.DocumentName
		if name == "" {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(name), ".pdf") {
			name += ".pdf"
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, DocumentRequest{Name: name, FilePath: s.FilePath})
	}
	return out
}
