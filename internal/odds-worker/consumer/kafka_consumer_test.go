package consumer

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/radieske/points-bet-platform/internal/shared/kafka"
	"github.com/radieske/points-bet-platform/pkg/contracts/events"
)

// scriptedReader entrega as mensagens em ordem e cancela o contexto no fim
type scriptedReader struct {
	steps  []func() (kafka.Message, error)
	cancel context.CancelFunc
	i      int
}

func (r *scriptedReader) ReadMessage(ctx context.Context) (kafka.Message, error) {
	if r.i >= len(r.steps) {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	step := r.steps[r.i]
	r.i++
	return step()
}

func msg(v string) func() (kafka.Message, error) {
	return func() (kafka.Message, error) { return kafka.Message{Value: []byte(v)}, nil }
}

type fakeRepo struct {
	calls []string
	err   error
}

func (f *fakeRepo) Recalculate(_ context.Context, id string) (events.OddsSnapshot, error) {
	f.calls = append(f.calls, id)
	if f.err != nil {
		return events.OddsSnapshot{}, f.err
	}
	return events.OddsSnapshot{EventID: id, OddsA: 1.7, OddsB: 2.4}, nil
}

type fakeCache struct {
	mu  sync.Mutex
	set []events.OddsSnapshot
	err error
}

func (f *fakeCache) Set(_ context.Context, s events.OddsSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.set = append(f.set, s)
	return f.err
}

type counters struct {
	consumed, processed int
	errors              map[string]int
}

func newProcessor(r MessageReader, repo OddsRepo, c OddsCache, n *counters) *Processor {
	n.errors = map[string]int{}
	return &Processor{
		Log:         zap.NewNop(),
		Reader:      r,
		Repo:        repo,
		Cache:       c,
		OnConsumed:  func() { n.consumed++ },
		OnProcessed: func() { n.processed++ },
		OnError:     func(s string) { n.errors[s]++ },
		ReadBackoff: time.Millisecond,
	}
}

func TestRunProcessesAndSkipsBadMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	reader := &scriptedReader{cancel: cancel, steps: []func() (kafka.Message, error){
		msg(`{"bet_id":"b1","event_id":"ev-1","team":"a","amount":100}`),
		msg(`not-json`),
		func() (kafka.Message, error) { return kafka.Message{}, errors.New("broker gone") },
		msg(`{"bet_id":"b2","event_id":"ev-2","team":"b","amount":50}`),
	}}
	repo := &fakeRepo{}
	cache := &fakeCache{}
	var n counters

	err := newProcessor(reader, repo, cache, &n).Run(ctx)

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"ev-1", "ev-2"}, repo.calls)
	require.Len(t, cache.set, 2)
	assert.Equal(t, 1.7, cache.set[0].OddsA)
	assert.Equal(t, 3, n.consumed)
	assert.Equal(t, 2, n.processed)
	assert.Equal(t, map[string]int{"decode": 1, "read": 1}, n.errors)
}

func TestHandleCacheFailureStillCounts(t *testing.T) {
	var n counters
	p := newProcessor(nil, &fakeRepo{}, &fakeCache{err: errors.New("redis down")}, &n)

	require.NoError(t, p.Handle(context.Background(), events.BetPlaced{EventID: "ev-1"}))

	assert.Equal(t, 1, n.processed)
	assert.Equal(t, 1, n.errors["cache"])
}

func TestHandleRepoFailureSkipsCache(t *testing.T) {
	var n counters
	cache := &fakeCache{}
	p := newProcessor(nil, &fakeRepo{err: errors.New("db down")}, cache, &n)

	err := p.Handle(context.Background(), events.BetPlaced{EventID: "ev-1"})

	require.Error(t, err)
	assert.Empty(t, cache.set)
	assert.Equal(t, 1, n.errors["db"])
	assert.Zero(t, n.processed)
}

func TestHandleRejectsMissingEventID(t *testing.T) {
	var n counters
	repo := &fakeRepo{}
	p := newProcessor(nil, repo, &fakeCache{}, &n)

	assert.ErrorIs(t, p.Handle(context.Background(), events.BetPlaced{BetID: "b1"}), errMissingEventID)
	assert.Empty(t, repo.calls)
}
