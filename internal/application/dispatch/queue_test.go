package dispatch

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkarlen/starhelm/internal/domain/shared"
)

func TestEventQueueOrdersByPriority(t *testing.T) {
	q := NewEventQueue()

	q.Push("LATE", "2024-03-01T12:00:30.000Z")
	q.Push("EARLY", "2024-03-01T12:00:05.000Z")
	q.Push("MID", "2024-03-01T12:00:10.000Z")

	priority, ok := q.PeekNextPriority()
	require.True(t, ok)
	assert.Equal(t, "2024-03-01T12:00:05.000Z", priority)

	order := make([]string, 0, 3)
	for {
		ship, ok := q.ExtractMin()
		if !ok {
			break
		}
		order = append(order, ship)
	}
	assert.Equal(t, []string{"EARLY", "MID", "LATE"}, order)
	assert.Equal(t, 0, q.Size())
}

func TestEventQueueFIFOOnEqualPriority(t *testing.T) {
	q := NewEventQueue()
	priority := "2024-03-01T12:00:00.000Z"

	q.Push("FIRST", priority)
	q.Push("SECOND", priority)
	q.Push("THIRD", priority)

	first, _ := q.ExtractMin()
	second, _ := q.ExtractMin()
	third, _ := q.ExtractMin()
	assert.Equal(t, []string{"FIRST", "SECOND", "THIRD"}, []string{first, second, third})
}

func TestEventQueueRejectsDuplicates(t *testing.T) {
	q := NewEventQueue()

	assert.True(t, q.Push("HULK-1", "2024-03-01T12:00:00.000Z"))
	assert.False(t, q.Push("HULK-1", "2024-03-01T12:00:05.000Z"))
	assert.Equal(t, 1, q.Size())

	// After a pop the ship may re-enter
	_, ok := q.ExtractMin()
	require.True(t, ok)
	assert.True(t, q.Push("HULK-1", "2024-03-01T12:00:05.000Z"))
}

func TestEventQueueExtractMinNeverSkipsSmaller(t *testing.T) {
	q := NewEventQueue()
	rng := rand.New(rand.NewSource(7))
	base := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	priorities := make(map[string]string)
	for i := 0; i < 50; i++ {
		symbol := shared.FormatISO(base) + string(rune('A'+i%26)) + string(rune('0'+i/26))
		p := shared.FormatISO(base.Add(time.Duration(rng.Intn(600)) * time.Second))
		if q.Push(symbol, p) {
			priorities[symbol] = p
		}
	}

	last := ""
	for {
		ship, ok := q.ExtractMin()
		if !ok {
			break
		}
		p := priorities[ship]
		assert.GreaterOrEqual(t, p, last)
		last = p
	}
}

func TestEventQueueEmpty(t *testing.T) {
	q := NewEventQueue()

	_, ok := q.PeekNextPriority()
	assert.False(t, ok)
	_, ok = q.ExtractMin()
	assert.False(t, ok)
	assert.Equal(t, 0, q.Size())
}
