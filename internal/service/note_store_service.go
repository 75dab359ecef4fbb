package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"ai-research-agent/internal/constant"
	"ai-research-agent/internal/entity"
	"ai-research-agent/internal/repository/contract"
	"ai-research-agent/pkg/utils"
)

type INoteStoreService interface {
	// SaveNote writes the finding for subtopic under the topic's collection, replacing any
	// earlier note with the same derived key.
	SaveNote(ctx context.Context, topic, subtopic, content string) (*entity.Document, error)
	ListNotes(ctx context.Context, topic string) ([]*entity.Document, error)
	ClearNotes(ctx context.Context, topic string) error
	Collection(topic string) string
	Locate(topic, key string) string
}

type noteStoreService struct {
	repo contract.DocumentRepository
	now  func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewNoteStoreService(repo contract.DocumentRepository) INoteStoreService {
	return &noteStoreService{
		repo:  repo,
		now:   time.Now,
		locks: make(map[string]*sync.Mutex),
	}
}

// NoteCollection is the collection holding a topic's notes.
func NoteCollection(topic string) string {
	return constant.CollectionResearchNotes + "/" + utils.Slugify(topic)
}

// FormatNote renders the persisted form of a finding.
func FormatNote(subtopic, content string, researchedAt time.Time) string {
	return fmt.Sprintf("# %s\n\n*Researched: %s*\n\n%s",
		subtopic, researchedAt.Format(constant.DisplayTimeLayout), content)
}

func (s *noteStoreService) Collection(topic string) string {
	return NoteCollection(topic)
}

func (s *noteStoreService) Locate(topic, key string) string {
	return s.repo.Locate(NoteCollection(topic), key)
}

// keyLock serializes writers of one (collection, key) so parallel research keeps
// last-write-wins without interleaving.
func (s *noteStoreService) keyLock(collection, key string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := collection + "/" + key
	l, ok := s.locks[id]
	if !ok {
		l = &sync.Mutex{}
		s.locks[id] = l
	}
	return l
}

func (s *noteStoreService) SaveNote(ctx context.Context, topic, subtopic, content string) (*entity.Document, error) {
	collection := NoteCollection(topic)
	key := utils.Slugify(subtopic)
	if key == "" {
		return nil, fmt.Errorf("subtopic %q yields an empty note key", subtopic)
	}

	lock := s.keyLock(collection, key)
	lock.Lock()
	defer lock.Unlock()

	now := s.now()
	doc := &entity.Document{
		Collection: collection,
		Key:        key,
		Content:    FormatNote(subtopic, content, now),
		Metadata: map[string]string{
			"topic":    topic,
			"subtopic": subtopic,
		},
		CreatedAt: now,
	}
	if err := s.repo.Put(ctx, doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func (s *noteStoreService) ListNotes(ctx context.Context, topic string) ([]*entity.Document, error) {
	return s.repo.ListAll(ctx, NoteCollection(topic))
}

func (s *noteStoreService) ClearNotes(ctx context.Context, topic string) error {
	return s.repo.DeleteCollection(ctx, NoteCollection(topic))
}
