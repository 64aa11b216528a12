package walker

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQueue_DrainAndFinish(t *testing.T) {
	assert := assert.New(t)
	q := NewQueue[int]()

	items, finished := q.Drain()
	assert.Empty(items)
	assert.False(finished)

	assert.NoError(q.Push(1))
	assert.NoError(q.Push(2))
	assert.Equal(2, q.Len())

	items, finished = q.Drain()
	assert.Equal([]int{1, 2}, items)
	assert.False(finished)

	assert.NoError(q.Push(3))
	q.Finish()
	<-q.Done()

	items, finished = q.Drain()
	assert.Equal([]int{3}, items)
	assert.True(finished)

	q.Finish()
}

func TestQueue_Close(t *testing.T) {
	assert := assert.New(t)
	q := NewQueue[string]()
	assert.NoError(q.Push("a"))

	q.Close()
	q.Close()
	<-q.Done()

	assert.ErrorIs(q.Push("b"), ErrQueueClosed)
	items, finished := q.Drain()
	assert.Empty(items)
	assert.False(finished)
}

func TestQueue_ConcurrentProducers(t *testing.T) {
	q := NewQueue[int]()
	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 250; i++ {
				q.Push(i)
			}
		}()
	}

	total := 0
	done := make(chan struct{})
	go func() {
		wg.Wait()
		q.Finish()
		close(done)
	}()

	for {
		items, finished := q.Drain()
		total += len(items)
		if finished {
			break
		}
		select {
		case <-q.Ready():
		case <-done:
		}
	}
	assert.Equal(t, 1000, total)
}
