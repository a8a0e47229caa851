package mailbox

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMailbox_FIFO(t *testing.T) {
	m := New[int]()
	for i := range 5 {
		require.True(t, m.Put(i))
	}

	assert.Equal(t, 5, m.Len())
	assert.Equal(t, []int{0, 1, 2, 3, 4}, m.Drain())
	assert.Nil(t, m.Drain())
	assert.Equal(t, 0, m.Len())
}

func TestMailbox_ReadySignalledOnPut(t *testing.T) {
	m := New[string]()

	select {
	case <-m.Ready():
		t.Fatal("ready signalled on empty mailbox")
	default:
	}

	m.Put("a")
	m.Put("b")

	select {
	case <-m.Ready():
	default:
		t.Fatal("ready not signalled after Put")
	}
	assert.Equal(t, []string{"a", "b"}, m.Drain())
}

func TestMailbox_ClosedRejectsPut(t *testing.T) {
	m := New[int]()
	m.Put(1)
	m.Close()

	assert.True(t, m.Closed())
	assert.False(t, m.Put(2))
	assert.Nil(t, m.Drain())
}

func TestMailbox_ConcurrentProducersKeepPerProducerOrder(t *testing.T) {
	const producers = 8
	const perProducer = 500

	m := New[[2]int]()
	var wg sync.WaitGroup
	for p := range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range perProducer {
				m.Put([2]int{p, i})
			}
		}()
	}
	wg.Wait()

	items := m.Drain()
	require.Len(t, items, producers*perProducer)

	next := make([]int, producers)
	for _, it := range items {
		p, i := it[0], it[1]
		if i != next[p] {
			t.Fatalf("producer %d: got item %d, want %d", p, i, next[p])
		}
		next[p]++
	}
}
