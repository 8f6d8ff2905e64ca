package session

import (
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

// Session is the per-browser state: transcript, search history and the
// itinerary bucket. Handlers for the same session may overlap, so every
// accessor takes the lock and hands out copies.
type Session struct {
	ID        uuid.UUID
	CreatedAt time.Time
	ExpiresAt time.Time

	mu         sync.Mutex
	transcript []types.ConversationTurn
	history    []string
	bucket     []types.PlaceRecord
	// fetched holds every record a search returned to this session, by key.
	// Only these can enter the bucket.
	fetched map[string]types.PlaceRecord
}

func newSession(id uuid.UUID, now time.Time, ttl time.Duration) *Session {
	return &Session{
		ID:        id,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
		fetched:   make(map[string]types.PlaceRecord),
	}
}

func (s *Session) AppendTurn(role types.MessageRole, content string) types.ConversationTurn {
	turn := types.ConversationTurn{Role: role, Content: content, CreatedAt: time.Now()}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = append(s.transcript, turn)
	return turn
}

func (s *Session) Transcript() []types.ConversationTurn {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.transcript)
}

// ResetTranscript is the only way turns leave the transcript.
func (s *Session) ResetTranscript() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transcript = nil
}

// RecordSearch appends query unless it is already in the history. It reports
// whether the history changed.
func (s *Session) RecordSearch(query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if slices.Contains(s.history, query) {
		return false
	}
	s.history = append(s.history, query)
	return true
}

func (s *Session) SearchHistory() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.history)
}

// RememberResults keeps records returned by a search so they can later be
// added to the itinerary by key. A later search overwrites an earlier record
// with the same key.
func (s *Session) RememberResults(records []types.PlaceRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, rec := range records {
		if key := rec.Key(); key != "" {
			s.fetched[key] = rec
		}
	}
}

// AddToItinerary appends the fetched place with the given key unless it is
// already in the bucket. It reports whether the place was added, and fails
// with ErrPlaceNotFetched for keys no search returned.
func (s *Session) AddToItinerary(key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	place, ok := s.fetched[key]
	if !ok {
		return false, types.ErrPlaceNotFetched
	}
	if s.indexOf(key) >= 0 {
		return false, nil
	}
	s.bucket = append(s.bucket, place)
	return true, nil
}

func (s *Session) RemoveFromItinerary(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.indexOf(key)
	if i < 0 {
		return types.ErrPlaceNotFound
	}
	s.bucket = slices.Delete(s.bucket, i, i+1)
	return nil
}

func (s *Session) ClearItinerary() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bucket = nil
}

func (s *Session) Itinerary() []types.PlaceRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.bucket)
}

// caller holds mu
func (s *Session) indexOf(key string) int {
	return slices.IndexFunc(s.bucket, func(p types.PlaceRecord) bool { return p.Key() == key })
}
