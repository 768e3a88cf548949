package events

import (
	"testing"

	"github.com/hondanabooks/hondana/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBusFanOut(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	ch1, unsub1 := bus.Subscribe()
	ch2, unsub2 := bus.Subscribe()
	defer unsub1()
	defer unsub2()

	series := &models.Series{ID: 1, Name: "Akira"}
	bus.Publish(SeriesAdded{Series: series})

	for _, ch := range []<-chan Event{ch1, ch2} {
		event := <-ch
		added, ok := event.(SeriesAdded)
		require.True(t, ok)
		assert.Equal(t, 1, added.Series.ID)
	}
}

func TestBusPreservesCallSiteOrder(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	ch, unsub := bus.Subscribe()
	defer unsub()

	for i := 1; i <= 5; i++ {
		bus.Publish(BookAdded{Book: &models.Book{ID: i}})
	}

	for i := 1; i <= 5; i++ {
		event := <-ch
		added, ok := event.(BookAdded)
		require.True(t, ok)
		assert.Equal(t, i, added.Book.ID)
	}
}

func TestBusDoesNotBlockOnSlowSubscriber(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	bus.bufferSize = 1
	_, unsub := bus.Subscribe()
	defer unsub()

	// Second publish overflows the buffer; it must drop, not block.
	bus.Publish(SeriesUpdated{Series: &models.Series{ID: 1}})
	bus.Publish(SeriesUpdated{Series: &models.Series{ID: 2}})
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	t.Parallel()

	bus := NewBus()
	ch, unsub := bus.Subscribe()
	unsub()

	_, open := <-ch
	assert.False(t, open)

	// Publishing after unsubscribe must not panic.
	bus.Publish(SeriesDeleted{Series: &models.Series{ID: 1}})
}
