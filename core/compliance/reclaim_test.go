package compliance

import (
	"context"
	"errors"
	"testing"

	"compliance-engine/core/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReclaimer_Reclaim(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	live := newObject("device", "live", map[string]any{"foo": "bad"})
	gone := newObject("device", "gone", map[string]any{"foo": "bad"})
	source := newMemSource(live, gone)

	engine := newTestEngine(store)
	for _, rule := range []Rule{attrRule("a", "device", false, "foo"), attrRule("b", "device", false, "foo")} {
		for _, obj := range []Object{live, gone} {
			_, err := engine.Audit(ctx, rule, obj)
			require.NoError(t, err)
		}
	}
	liveRows := store.pair(live.Ref(), "a")

	source.remove(gone.Ref())
	m := metrics.New(prometheus.NewRegistry())
	reclaimer := NewReclaimer(store, source, nil, m)

	deleted, err := reclaimer.Reclaim(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, deleted)
	assert.Empty(t, store.pair(gone.Ref(), "a"))
	assert.Empty(t, store.pair(gone.Ref(), "b"))
	assert.Equal(t, liveRows, store.pair(live.Ref(), "a"))
	assert.Equal(t, float64(4), testutil.ToFloat64(m.Reclaimed))

	t.Run("second pass deletes nothing", func(t *testing.T) {
		deleted, err := reclaimer.Reclaim(ctx)
		require.NoError(t, err)
		assert.Zero(t, deleted)
		assert.Equal(t, liveRows, store.pair(live.Ref(), "a"))
	})
}

func TestReclaimer_LookupErrorKeepsRecords(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	obj := newObject("device", "flaky", nil)
	source := newMemSource()

	_, err := newTestEngine(store).Reconcile(ctx, obj.Ref(), "a", Clean())
	require.NoError(t, err)
	source.existsErr[obj.Ref()] = errors.New("timeout")

	deleted, err := NewReclaimer(store, source, nil, nil).Reclaim(ctx)
	require.NoError(t, err)
	assert.Zero(t, deleted)
	assert.Len(t, store.pair(obj.Ref(), "a"), 1)
}
