package session

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-travel-assistant/internal/types"
)

func testSession() *Session {
	return newSession(uuid.New(), time.Now(), time.Hour)
}

func rating(f float64) *float64 { return &f }

func TestSession_RecordSearch(t *testing.T) {
	s := testSession()

	assert.True(t, s.RecordSearch("museums in Lisbon"))
	assert.False(t, s.RecordSearch("museums in Lisbon"))
	assert.False(t, s.RecordSearch("  museums in Lisbon "))
	assert.True(t, s.RecordSearch("cafes in Porto"))
	assert.False(t, s.RecordSearch("   "))

	assert.Equal(t, []string{"museums in Lisbon", "cafes in Porto"}, s.SearchHistory())
}

func added(t *testing.T, s *Session, key string) bool {
	t.Helper()
	ok, err := s.AddToItinerary(key)
	require.NoError(t, err)
	return ok
}

func TestSession_Itinerary(t *testing.T) {
	s := testSession()
	tower := types.PlaceRecord{PlaceID: "p-1", Name: "Belem Tower", Rating: rating(4.6)}
	noID := types.PlaceRecord{Name: "Time Out Market"}
	s.RememberResults([]types.PlaceRecord{tower, noID, {}})

	t.Run("add is idempotent by key", func(t *testing.T) {
		assert.True(t, added(t, s, "p-1"))
		assert.False(t, added(t, s, "p-1"))
		assert.True(t, added(t, s, "Time Out Market"))
		assert.False(t, added(t, s, "Time Out Market"))

		got := s.Itinerary()
		require.Len(t, got, 2)
		assert.Equal(t, "Belem Tower", got[0].Name)
		assert.Equal(t, "Time Out Market", got[1].Name)
	})

	t.Run("only fetched places can be added", func(t *testing.T) {
		for _, key := range []string{"forged", "", "Belem Tower"} {
			ok, err := s.AddToItinerary(key)
			assert.ErrorIs(t, err, types.ErrPlaceNotFetched, key)
			assert.False(t, ok)
		}
		assert.Len(t, s.Itinerary(), 2)
	})

	t.Run("remove by key", func(t *testing.T) {
		require.NoError(t, s.RemoveFromItinerary("p-1"))
		assert.ErrorIs(t, s.RemoveFromItinerary("p-1"), types.ErrPlaceNotFound)
		require.NoError(t, s.RemoveFromItinerary("Time Out Market"))
		assert.Empty(t, s.Itinerary())
	})

	t.Run("clear keeps fetched results", func(t *testing.T) {
		added(t, s, "p-1")
		added(t, s, "Time Out Market")
		s.ClearItinerary()
		assert.Empty(t, s.Itinerary())
		assert.True(t, added(t, s, "p-1"))
		s.ClearItinerary()
	})

	t.Run("later search refreshes the stored record", func(t *testing.T) {
		s.RememberResults([]types.PlaceRecord{{PlaceID: "p-1", Name: "Torre de Belem"}})
		added(t, s, "p-1")
		assert.Equal(t, "Torre de Belem", s.Itinerary()[0].Name)
	})

	t.Run("returned slice is a copy", func(t *testing.T) {
		got := s.Itinerary()
		got[0].Name = "changed"
		assert.Equal(t, "Torre de Belem", s.Itinerary()[0].Name)
	})
}

func TestSession_Transcript(t *testing.T) {
	s := testSession()
	s.AppendTurn(types.RoleUser, "hi")
	s.AppendTurn(types.RoleAssistant, "hello")

	got := s.Transcript()
	require.Len(t, got, 2)
	assert.Equal(t, types.RoleUser, got[0].Role)
	assert.Equal(t, "hello", got[1].Content)
	assert.False(t, got[1].CreatedAt.IsZero())

	s.ResetTranscript()
	assert.Empty(t, s.Transcript())
}

func TestSession_ConcurrentAccess(t *testing.T) {
	s := testSession()
	for i := 0; i < 5; i++ {
		s.RememberResults([]types.PlaceRecord{{PlaceID: fmt.Sprintf("p-%d", i)}})
	}
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.AppendTurn(types.RoleUser, fmt.Sprintf("msg %d", i))
			s.RecordSearch(fmt.Sprintf("query %d", i%10))
			_, _ = s.AddToItinerary(fmt.Sprintf("p-%d", i%5))
		}(i)
	}
	wg.Wait()

	assert.Len(t, s.Transcript(), 50)
	assert.Len(t, s.SearchHistory(), 10)
	assert.Len(t, s.Itinerary(), 5)
}
