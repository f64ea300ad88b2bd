package compliance

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// switchProvider returns rules until failing is set.
type switchProvider struct {
	mu      sync.Mutex
	name    string
	rules   []Rule
	failing bool
	calls   int
}

func (p *switchProvider) Name() string { return p.name }

func (p *switchProvider) Rules(ctx context.Context) ([]Rule, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	if p.failing {
		return nil, errors.New("remote unavailable")
	}
	return p.rules, nil
}

func TestCatalog_Sync(t *testing.T) {
	ctx := context.Background()
	bundled := NewStaticProvider("bundled",
		&FuncRule{RuleID: "a", RuleName: "bundled a", TargetKind: "device"},
		&FuncRule{RuleID: "b", TargetKind: "site"},
	)
	remote := &switchProvider{name: "remote", rules: []Rule{
		&FuncRule{RuleID: "a", RuleName: "remote a", TargetKind: "device"},
		&FuncRule{RuleID: "c", TargetKind: "device"},
	}}

	c := NewCatalog(nil, bundled, remote)
	assert.False(t, c.Synced())
	require.NoError(t, c.Sync(ctx))
	assert.True(t, c.Synced())

	t.Run("later provider wins", func(t *testing.T) {
		r, ok := c.Get("a")
		require.True(t, ok)
		assert.Equal(t, "remote a", r.Name())
	})

	t.Run("list is sorted", func(t *testing.T) {
		var ids []string
		for _, r := range c.List() {
			ids = append(ids, r.ID())
		}
		assert.Equal(t, []string{"a", "b", "c"}, ids)
	})

	t.Run("for kind", func(t *testing.T) {
		assert.Len(t, c.ForKind("device"), 2)
		assert.Len(t, c.ForKind("site"), 1)
		assert.Empty(t, c.ForKind("rack"))
	})

	t.Run("failing provider keeps previous rules", func(t *testing.T) {
		remote.mu.Lock()
		remote.failing = true
		remote.mu.Unlock()

		err := c.Sync(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "provider remote")

		_, ok := c.Get("c")
		assert.True(t, ok)
		r, _ := c.Get("a")
		assert.Equal(t, "remote a", r.Name())
	})
}

func TestCatalog_Select(t *testing.T) {
	c := NewCatalog(nil, NewStaticProvider("static",
		&FuncRule{RuleID: "a", TargetKind: "device"},
		&FuncRule{RuleID: "b", TargetKind: "device"},
		&FuncRule{RuleID: "c", TargetKind: "site"},
	))
	require.NoError(t, c.Sync(context.Background()))

	all, err := c.Select(nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	some, err := c.Select([]string{"c", " a", "c"})
	require.NoError(t, err)
	require.Len(t, some, 2)
	assert.Equal(t, "a", some[0].ID())
	assert.Equal(t, "c", some[1].ID())

	_, err = c.Select([]string{"a", "missing"})
	assert.ErrorIs(t, err, ErrUnknownRule)
	assert.Contains(t, err.Error(), "missing")
}

func TestCatalog_ConcurrentSync(t *testing.T) {
	p := &switchProvider{name: "p", rules: []Rule{&FuncRule{RuleID: "a", TargetKind: "device"}}}
	c := NewCatalog(nil, p)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Sync(context.Background()))
		}()
	}
	wg.Wait()

	_, ok := c.Get("a")
	assert.True(t, ok)
	p.mu.Lock()
	defer p.mu.Unlock()
	assert.LessOrEqual(t, p.calls, 10)
}
