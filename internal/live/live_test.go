package live

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"schooladmin/internal/docstore"
)

func receive(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "channel closed")
		return c
	case <-time.After(time.Second):
		t.Fatal("no change received")
	}
	return Change{}
}

func TestMemoryBrokerLifecycle(t *testing.T) {
	b := NewMemory(4)
	ctx, cancel := context.WithCancel(context.Background())

	ch, err := b.Subscribe(ctx, "students")
	require.NoError(t, err)
	assert.Equal(t, 1, b.Subscribers("students"))

	require.NoError(t, b.Publish(context.Background(), Change{Collection: "teachers", ID: "t1"}))
	require.NoError(t, b.Publish(context.Background(), Change{Collection: "students", ID: "s1"}))
	assert.Equal(t, "s1", receive(t, ch).ID)

	cancel()
	assert.Eventually(t, func() bool { return b.Subscribers("students") == 0 }, time.Second, 5*time.Millisecond)
	_, ok := <-ch
	assert.False(t, ok, "unsubscribe closes the channel")
}

func TestMemoryBrokerDropsForSlowSubscriber(t *testing.T) {
	b := NewMemory(1)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := b.Subscribe(ctx, "students")
	require.NoError(t, err)

	require.NoError(t, b.Publish(ctx, Change{Collection: "students", ID: "1"}))
	require.NoError(t, b.Publish(ctx, Change{Collection: "students", ID: "2"}))
	assert.Equal(t, "1", receive(t, ch).ID)
}

type failingBroker struct{ *Memory }

func (failingBroker) Publish(context.Context, Change) error { return errors.New("down") }

func TestStorePublishesSuccessfulWrites(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	b := NewMemory(8)
	var hooked []Change
	s := NewStore(docstore.NewMemory(), b, zap.NewNop(), func(_ context.Context, c Change) { hooked = append(hooked, c) })
	ch, err := b.Subscribe(ctx, "students")
	require.NoError(t, err)

	id, err := s.Create(ctx, "students", docstore.Document{"name": "Ravi"})
	require.NoError(t, err)
	c := receive(t, ch)
	assert.Equal(t, Change{Collection: "students", ID: id, Op: OpCreate, At: c.At}, c)

	require.NoError(t, s.Update(ctx, "students", id, docstore.Set("attendance.April_day_1", "P")))
	assert.Equal(t, OpUpdate, receive(t, ch).Op)

	assert.Error(t, s.Update(ctx, "students", "missing", docstore.Set("a", 1)))
	require.NoError(t, s.Delete(ctx, "students", id))
	assert.Equal(t, OpDelete, receive(t, ch).Op, "failed writes publish nothing")

	assert.Len(t, hooked, 3)
}

func TestStoreWriteSurvivesPublishFailure(t *testing.T) {
	ctx := context.Background()
	s := NewStore(docstore.NewMemory(), failingBroker{NewMemory(1)}, zap.NewNop())
	id, err := s.Create(ctx, "notices", docstore.Document{"title": "Holiday"})
	require.NoError(t, err)
	_, err = s.Get(ctx, "notices", id)
	assert.NoError(t, err)
}
