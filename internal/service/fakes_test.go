package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"resolution-rag-be/internal/entity"
	"resolution-rag-be/internal/repository/contract"
	"resolution-rag-be/internal/repository/specification"
	"resolution-rag-be/internal/repository/unitofwork"
	"resolution-rag-be/pkg/embedding"
	"resolution-rag-be/pkg/events"
	"resolution-rag-be/pkg/llm"
	pktNats "resolution-rag-be/pkg/nats"
	"resolution-rag-be/pkg/rag/search"
	"resolution-rag-be/pkg/storage"
	"resolution-rag-be/pkg/store"
)

// fakeDB is an in-memory stand-in for the Postgres tables behind the
// unit of work. Transactions are recorded but not isolated.
type fakeDB struct {
	mu         sync.Mutex
	nextId     uint
	documents  map[uint]*entity.Document
	embeddings map[string]*entity.Embedding
	requested  map[uint]*entity.RequestedDocument
	feedbacks  []*entity.Feedback

	createDocumentErr error
	commits           int
}

func newFakeDB() *fakeDB {
	return &fakeDB{
		documents:  map[uint]*entity.Document{},
		embeddings: map[string]*entity.Embedding{},
		requested:  map[uint]*entity.RequestedDocument{},
	}
}

func (db *fakeDB) NewUnitOfWork(ctx context.Context) unitofwork.UnitOfWork {
	return &fakeUnitOfWork{db: db}
}

func (db *fakeDB) addDocument(doc entity.Document) *entity.Document {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.nextId++
	doc.Id = db.nextId
	db.documents[doc.Id] = &doc
	return &doc
}

func (db *fakeDB) document(id uint) *entity.Document {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.documents[id]
}

func (db *fakeDB) embeddingsOf(documentId uint) []*entity.Embedding {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []*entity.Embedding
	for _, e := range db.embeddings {
		if e.DocumentId == documentId {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChunkIndex < out[j].ChunkIndex })
	return out
}

type fakeUnitOfWork struct {
	db        *fakeDB
	began     bool
	committed bool
}

func (u *fakeUnitOfWork) Begin(ctx context.Context) error {
	u.began = true
	return nil
}

func (u *fakeUnitOfWork) Commit() error {
	if !u.began {
		return errors.New("commit without begin")
	}
	u.committed = true
	u.db.mu.Lock()
	u.db.commits++
	u.db.mu.Unlock()
	return nil
}

func (u *fakeUnitOfWork) Rollback() error {
	if u.committed {
		return errors.New("transaction already committed")
	}
	return nil
}

func (u *fakeUnitOfWork) DocumentRepository() contract.DocumentRepository {
	return &fakeDocumentRepository{db: u.db}
}

func (u *fakeUnitOfWork) EmbeddingRepository() contract.EmbeddingRepository {
	return &fakeEmbeddingRepository{db: u.db}
}

func (u *fakeUnitOfWork) RequestedDocumentRepository() contract.RequestedDocumentRepository {
	return &fakeRequestedDocumentRepository{db: u.db}
}

func (u *fakeUnitOfWork) FeedbackRepository() contract.FeedbackRepository {
	return &fakeFeedbackRepository{db: u.db}
}

type fakeDocumentRepository struct {
	db *fakeDB
}

func documentMatches(d *entity.Document, specs []specification.Specification) bool {
	for _, spec := range specs {
		switch s := spec.(type) {
		case specification.ByID:
			if fmt.Sprint(d.Id) != fmt.Sprint(s.ID) {
				return false
			}
		case specification.ByPath:
			if d.Path != s.Path && d.PhysicalPath != s.Path {
				return false
			}
		case specification.ByDocumentName:
			if d.Name != s.Name {
				return false
			}
		case specification.ByCollection:
			if d.CollectionName != s.Collection {
				return false
			}
		case specification.NameContains:
			if !strings.Contains(strings.ToLower(d.Name), strings.ToLower(s.Query)) {
				return false
			}
		}
	}
	return true
}

func (r *fakeDocumentRepository) Create(ctx context.Context, doc *entity.Document) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if r.db.createDocumentErr != nil {
		return r.db.createDocumentErr
	}
	for _, d := range r.db.documents {
		if doc.PhysicalPath != "" && d.PhysicalPath == doc.PhysicalPath {
			return contract.ErrDuplicateKey
		}
	}
	r.db.nextId++
	doc.Id = r.db.nextId
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	stored := *doc
	r.db.documents[doc.Id] = &stored
	return nil
}

func (r *fakeDocumentRepository) Update(ctx context.Context, doc *entity.Document) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	if _, ok := r.db.documents[doc.Id]; !ok {
		return errors.New("record not found")
	}
	stored := *doc
	r.db.documents[doc.Id] = &stored
	return nil
}

func (r *fakeDocumentRepository) Delete(ctx context.Context, id uint) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	delete(r.db.documents, id)
	return nil
}

func (r *fakeDocumentRepository) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.Document, error) {
	docs, _ := r.FindAll(ctx, specs...)
	if len(docs) == 0 {
		return nil, nil
	}
	return docs[0], nil
}

func (r *fakeDocumentRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Document, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.Document
	for _, d := range r.db.documents {
		if documentMatches(d, specs) {
			c := *d
			c.EmbeddingIds = append([]string(nil), d.EmbeddingIds...)
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	for _, spec := range specs {
		if p, ok := spec.(specification.Pagination); ok {
			out = paginate(out, p)
		}
	}
	return out, nil
}

func paginate(docs []*entity.Document, p specification.Pagination) []*entity.Document {
	if p.Offset >= len(docs) {
		return nil
	}
	docs = docs[p.Offset:]
	if p.Limit < len(docs) {
		docs = docs[:p.Limit]
	}
	return docs
}

func (r *fakeDocumentRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	docs, _ := r.FindAll(ctx, specs...)
	return int64(len(docs)), nil
}

func (r *fakeDocumentRepository) AppendEmbeddingId(ctx context.Context, documentId uint, embeddingId string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	d, ok := r.db.documents[documentId]
	if !ok {
		return errors.New("record not found")
	}
	if !d.HasEmbedding(embeddingId) {
		d.EmbeddingIds = append(d.EmbeddingIds, embeddingId)
	}
	return nil
}

type fakeEmbeddingRepository struct {
	db *fakeDB
}

func embeddingKey(documentId uint, chunk int) string {
	return fmt.Sprintf("%d:%d", documentId, chunk)
}

func (r *fakeEmbeddingRepository) Create(ctx context.Context, e *entity.Embedding) (bool, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	key := embeddingKey(e.DocumentId, e.ChunkIndex)
	if _, ok := r.db.embeddings[key]; ok {
		return false, nil
	}
	stored := *e
	r.db.embeddings[key] = &stored
	return true, nil
}

func (r *fakeEmbeddingRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Embedding, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.Embedding
	for _, e := range r.db.embeddings {
		out = append(out, e)
	}
	return out, nil
}

func (r *fakeEmbeddingRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	all, _ := r.FindAll(ctx, specs...)
	return int64(len(all)), nil
}

func (r *fakeEmbeddingRepository) DeleteByDocumentId(ctx context.Context, documentId uint) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for k, e := range r.db.embeddings {
		if e.DocumentId == documentId {
			delete(r.db.embeddings, k)
		}
	}
	return nil
}

func (r *fakeEmbeddingRepository) UpdateCollection(ctx context.Context, documentId uint, collection string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, e := range r.db.embeddings {
		if e.DocumentId == documentId {
			e.CollectionName = collection
			e.Metadata.CollectionName = collection
		}
	}
	return nil
}

func (r *fakeEmbeddingRepository) Collections(ctx context.Context) ([]string, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	seen := map[string]struct{}{}
	var out []string
	for _, e := range r.db.embeddings {
		if _, ok := seen[e.CollectionName]; !ok {
			seen[e.CollectionName] = struct{}{}
			out = append(out, e.CollectionName)
		}
	}
	sort.Strings(out)
	return out, nil
}

func (r *fakeEmbeddingRepository) NumericMatch(ctx context.Context, collection string, forms []string) ([]store.EmbeddingMetadata, error) {
	return nil, nil
}

func (r *fakeEmbeddingRepository) KeywordMatch(ctx context.Context, collection string, term string) ([]store.EmbeddingMetadata, error) {
	return nil, nil
}

func (r *fakeEmbeddingRepository) VectorSearch(ctx context.Context, collection string, vector []float32, limit int) ([]search.Hit, error) {
	return nil, nil
}

type fakeRequestedDocumentRepository struct {
	db *fakeDB
}

func (r *fakeRequestedDocumentRepository) Increment(ctx context.Context, documentId uint, at time.Time) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	row, ok := r.db.requested[documentId]
	if !ok {
		row = &entity.RequestedDocument{Id: uint(len(r.db.requested) + 1), DocumentId: documentId}
		if d, ok := r.db.documents[documentId]; ok {
			row.DocumentName = d.Name
		}
		r.db.requested[documentId] = row
	}
	row.RequestedCount++
	row.LastRequestedAt = at
	return nil
}

func (r *fakeRequestedDocumentRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.RequestedDocument, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	var out []*entity.RequestedDocument
	for _, row := range r.db.requested {
		c := *row
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RequestedCount > out[j].RequestedCount })
	return out, nil
}

func (r *fakeRequestedDocumentRepository) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	rows, _ := r.FindAll(ctx, specs...)
	return int64(len(rows)), nil
}

type fakeFeedbackRepository struct {
	db *fakeDB
}

func (r *fakeFeedbackRepository) Create(ctx context.Context, feedback *entity.Feedback) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	feedback.Id = uint(len(r.db.feedbacks) + 1)
	stored := *feedback
	r.db.feedbacks = append(r.db.feedbacks, &stored)
	return nil
}

func (r *fakeFeedbackRepository) FindAll(ctx context.Context, specs ...specification.Specification) ([]*entity.Feedback, error) {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	return append([]*entity.Feedback(nil), r.db.feedbacks...), nil
}

// fakeEmbedder returns a fixed vector, failing for texts containing failOn.
type fakeEmbedder struct {
	mu     sync.Mutex
	failOn string
	calls  int
}

func (e *fakeEmbedder) Generate(ctx context.Context, text string, taskType string) (*embedding.EmbeddingResponse, error) {
	e.mu.Lock()
	e.calls++
	e.mu.Unlock()
	if e.failOn != "" && strings.Contains(text, e.failOn) {
		return nil, errors.New("embedding backend unavailable")
	}
	return &embedding.EmbeddingResponse{Embedding: embedding.EmbeddingResponseEmbedding{Values: []float32{0.1, 0.2, 0.3}}}, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, e := range p.events {
		out[i] = e.EventType()
	}
	return out
}

type fakeBlobStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	deleted []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{objects: map[string][]byte{}}
}

func (b *fakeBlobStore) Upload(ctx context.Context, objectPath string, r io.Reader, contentType string) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.objects[objectPath]; ok {
		return "", storage.ErrObjectExists
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	b.objects[objectPath] = data
	return b.PublicURL(objectPath), nil
}

func (b *fakeBlobStore) List(ctx context.Context, prefix string) ([]storage.Object, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []storage.Object
	for p, data := range b.objects {
		if path.Dir(p) == prefix {
			out = append(out, storage.Object{Name: path.Base(p), Size: int64(len(data))})
		}
	}
	return out, nil
}

func (b *fakeBlobStore) Exists(ctx context.Context, objectPath string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.objects[objectPath]
	return ok, nil
}

func (b *fakeBlobStore) Delete(ctx context.Context, objectPath string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.objects, objectPath)
	b.deleted = append(b.deleted, objectPath)
	return nil
}

func (b *fakeBlobStore) PublicURL(objectPath string) string {
	return "http://files.test/uploads/" + objectPath
}

func (b *fakeBlobStore) LocalPath(objectPath string) (string, error) {
	return "", storage.ErrInvalidPath
}

type recordingQueue struct {
	mu       sync.Mutex
	payloads []interface{}
}

func (q *recordingQueue) Publish(ctx context.Context, payload interface{}) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.payloads = append(q.payloads, payload)
	return nil
}

type countingCache struct {
	mu    sync.Mutex
	count int
}

func (c *countingCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.count++
}

func (c *countingCache) invalidations() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.count
}

type fakeSearcher struct {
	result *search.Result
	err    error
}

func (s *fakeSearcher) Search(ctx context.Context, query string, wordList []string, n int) (*search.Result, error) {
	return s.result, s.err
}

// fakeLLM answers every chat with reply. It does not stream, so llm.Stream
// wraps it.
type fakeLLM struct {
	reply   string
	err     error
	history []llm.Message
	options llm.Options
}

func (l *fakeLLM) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	l.history = history
	l.options = llm.Apply(llm.Options{}, options...)
	return l.reply, l.err
}

func (l *fakeLLM) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return l.Chat(ctx, []llm.Message{{Role: "user", Content: prompt}}, options...)
}

type fakeEventSubscriber struct {
	handlers map[string]pktNats.EventHandler
	failOn   string
}

func (s *fakeEventSubscriber) Subscribe(ctx context.Context, eventType, durableName string, handler pktNats.EventHandler) error {
	if eventType == s.failOn {
		return errors.New("stream not found")
	}
	if s.handlers == nil {
		s.handlers = map[string]pktNats.EventHandler{}
	}
	s.handlers[eventType] = handler
	return nil
}
