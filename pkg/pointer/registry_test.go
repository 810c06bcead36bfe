package pointer_test

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/yaklabco/nbcells/pkg/buffer"
	"github.com/yaklabco/nbcells/pkg/cell"
	"github.com/yaklabco/nbcells/pkg/partition"
	"github.com/yaklabco/nbcells/pkg/pointer"
	"github.com/yaklabco/nbcells/pkg/tokenizer/percent"
)

const twoCells = "# %%\nx=1\n\n# %% [markdown]\ny=2\n"

func setup(t require.TestingT, text string) (*buffer.Buffer, *partition.Incremental, *pointer.Registry) {
	buf := buffer.New(text)
	engine, err := partition.NewIncremental(buf, percent.New(), partition.DefaultOptions())
	require.NoError(t, err)
	buf.AddListener(engine)
	return buf, engine, pointer.New(engine, nil)
}

// pointers returns the registry's pointer for every current interval.
func pointers(t *testing.T, engine partition.Engine, reg *pointer.Registry) []*pointer.Pointer {
	t.Helper()

	var out []*pointer.Pointer
	for _, iv := range engine.Intervals() {
		out = append(out, reg.MustCreate(iv))
	}
	return out
}

func get(t *testing.T, p *pointer.Pointer) cell.Interval {
	t.Helper()

	iv, ok := p.Get()
	require.True(t, ok, "pointer invalid")
	return iv
}

func TestRegistry_Create(t *testing.T) {
	t.Parallel()

	_, engine, reg := setup(t, twoCells)
	intervals := engine.Intervals()
	require.Equal(t, 2, reg.Len())

	p, err := reg.Create(intervals[1])
	require.NoError(t, err)
	assert.Same(t, p, reg.MustCreate(intervals[1]), "one pointer per interval")
	assert.Equal(t, intervals[1], get(t, p))

	stale := intervals[1]
	stale.Lines.Last++
	_, err = reg.Create(stale)
	require.ErrorIs(t, err, pointer.ErrStaleInterval)

	_, err = reg.Create(cell.Interval{Ordinal: 5})
	require.ErrorIs(t, err, pointer.ErrStaleInterval)

	assert.Panics(t, func() { reg.MustCreate(stale) })
}

func TestRegistry_ResizeKeepsIdentity(t *testing.T) {
	t.Parallel()

	buf, engine, reg := setup(t, twoCells)
	ptrs := pointers(t, engine, reg)

	require.NoError(t, buf.Insert(9, "\n"))

	assert.Equal(t, cell.LineRange{First: 0, Last: 3}, get(t, ptrs[0]).Lines)
	assert.Equal(t, cell.LineRange{First: 4, Last: 6}, get(t, ptrs[1]).Lines)
	assert.Equal(t, ptrs, pointers(t, engine, reg))
}

func TestRegistry_DeleteCellInvalidatesOnlyThatCell(t *testing.T) {
	t.Parallel()

	buf, engine, reg := setup(t, "# %%\na\n# %%\nb\n# %% [md]\nc\n")
	ptrs := pointers(t, engine, reg)

	require.NoError(t, buf.Delete(7, 14))

	assert.True(t, ptrs[0].Valid())
	assert.False(t, ptrs[1].Valid())
	assert.Equal(t, cell.Interval{Ordinal: 1, Kind: cell.KindMarkdown, Lines: cell.LineRange{First: 2, Last: 4}}, get(t, ptrs[2]))
	assert.Equal(t, []*pointer.Pointer{ptrs[0], ptrs[2]}, pointers(t, engine, reg))

	require.NoError(t, buf.Insert(0, "x\n"))
	_, ok := ptrs[1].Get()
	assert.False(t, ok, "invalid is terminal")
}

func TestRegistry_StructuralChange(t *testing.T) {
	t.Parallel()

	buf, engine, reg := setup(t, twoCells)
	ptrs := pointers(t, engine, reg)

	require.NoError(t, buf.Insert(0, "# %% [raw]\n"))

	// The new raw cell is reported as a pure insertion, so both old cells
	// keep their pointers and shift down by one ordinal.
	assert.Equal(t, cell.Interval{Ordinal: 1, Kind: cell.KindCode, Lines: cell.LineRange{First: 1, Last: 3}}, get(t, ptrs[0]))
	assert.Equal(t, 2, get(t, ptrs[1]).Ordinal)
	assert.Equal(t, 3, reg.Len())

	current := pointers(t, engine, reg)
	assert.Same(t, ptrs[0], current[1])
	assert.Same(t, ptrs[1], current[2])
	assert.NotSame(t, ptrs[0], current[0])
	assert.Equal(t, cell.Interval{Ordinal: 0, Kind: cell.KindRaw, Lines: cell.LineRange{First: 0, Last: 0}}, get(t, current[0]))
}

func TestRegistry_KindChangeReplacesPointer(t *testing.T) {
	t.Parallel()

	buf, engine, reg := setup(t, "# %%\nx\n")
	before := pointers(t, engine, reg)

	require.NoError(t, buf.Insert(4, " [md]"))

	assert.False(t, before[0].Valid())
	assert.Equal(t, cell.KindMarkdown, get(t, pointers(t, engine, reg)[0]).Kind)
}

func TestRegistry_InvalidateHint(t *testing.T) {
	t.Parallel()

	buf, engine, reg := setup(t, twoCells)
	ptrs := pointers(t, engine, reg)

	err := reg.WithHints([]pointer.Hint{pointer.Invalidate(ptrs[0])}, func() error {
		return buf.Insert(9, "\n")
	})
	require.NoError(t, err)

	assert.False(t, ptrs[0].Valid(), "resize would have kept it")
	assert.True(t, ptrs[1].Valid())

	replacement := pointers(t, engine, reg)[0]
	assert.NotSame(t, ptrs[0], replacement)
	assert.Equal(t, cell.LineRange{First: 0, Last: 3}, get(t, replacement).Lines)
}

func TestRegistry_ReuseHintAcrossSwap(t *testing.T) {
	t.Parallel()

	buf, engine, reg := setup(t, "# %%\na\n# %% [md]\nb")
	ptrs := pointers(t, engine, reg)

	hints := []pointer.Hint{pointer.Reuse(ptrs[0], 1), pointer.Reuse(ptrs[1], 0)}
	err := reg.WithHints(hints, func() error {
		return buf.SetText("# %% [md]\nb\n# %%\na")
	})
	require.NoError(t, err)

	assert.Equal(t, cell.Interval{Ordinal: 1, Kind: cell.KindCode, Lines: cell.LineRange{First: 2, Last: 3}}, get(t, ptrs[0]))
	assert.Equal(t, cell.Interval{Ordinal: 0, Kind: cell.KindMarkdown, Lines: cell.LineRange{First: 0, Last: 1}}, get(t, ptrs[1]))
	assert.Equal(t, []*pointer.Pointer{ptrs[1], ptrs[0]}, pointers(t, engine, reg))
}

func TestRegistry_HintsWithoutPartitionChange(t *testing.T) {
	t.Parallel()

	_, engine, reg := setup(t, twoCells)
	ptrs := pointers(t, engine, reg)

	require.NoError(t, reg.WithHints([]pointer.Hint{pointer.Invalidate(ptrs[1])}, func() error { return nil }))

	assert.True(t, ptrs[0].Valid())
	assert.False(t, ptrs[1].Valid())
	assert.NotSame(t, ptrs[1], pointers(t, engine, reg)[1])
}

func TestRegistry_HintsDroppedWhenActionFails(t *testing.T) {
	t.Parallel()

	_, engine, reg := setup(t, twoCells)
	ptrs := pointers(t, engine, reg)
	errBoom := errors.New("boom")

	err := reg.WithHints([]pointer.Hint{pointer.Invalidate(ptrs[0])}, func() error { return errBoom })
	require.ErrorIs(t, err, errBoom)
	assert.True(t, ptrs[0].Valid())
}

func TestRegistry_ReuseOfInvalidPointerIgnored(t *testing.T) {
	t.Parallel()

	buf, engine, reg := setup(t, "# %%\nx\n")
	old := pointers(t, engine, reg)[0]
	require.NoError(t, buf.Insert(4, " [md]"))
	require.False(t, old.Valid())

	require.NoError(t, reg.WithHints([]pointer.Hint{pointer.Reuse(old, 0)}, func() error { return nil }))
	assert.False(t, old.Valid())
	assert.True(t, pointers(t, engine, reg)[0].Valid())
}

func TestPointer_ConcurrentReads(t *testing.T) {
	t.Parallel()

	buf, engine, reg := setup(t, twoCells)
	ptrs := pointers(t, engine, reg)

	var wg sync.WaitGroup
	stop := make(chan struct{})
	for _, p := range ptrs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
					_, _ = p.Get()
				}
			}
		}()
	}

	for range 50 {
		require.NoError(t, buf.Insert(9, "\n"))
	}
	close(stop)
	wg.Wait()

	assert.Equal(t, cell.LineRange{First: 0, Last: 52}, get(t, ptrs[0]).Lines)
}

func TestRegistry_TracksEveryInterval(t *testing.T) {
	t.Parallel()

	fragments := []string{"", "\n", "# %%\n", "# %% [md]\n", "x", "\n# %% [raw]"}

	rapid.Check(t, func(t *rapid.T) {
		buf, engine, reg := setup(t, twoCells)
		var seen []*pointer.Pointer
		invalid := map[*pointer.Pointer]bool{}

		steps := rapid.IntRange(1, 15).Draw(t, "steps")
		for range steps {
			start := rapid.IntRange(0, buf.Len()).Draw(t, "start")
			end := rapid.IntRange(start, min(buf.Len(), start+8)).Draw(t, "end")
			require.NoError(t, buf.Replace(start, end, rapid.SampledFrom(fragments).Draw(t, "text")))

			intervals := engine.Intervals()
			require.Equal(t, len(intervals), reg.Len())
			for _, iv := range intervals {
				p, err := reg.Create(iv)
				require.NoError(t, err)
				got, ok := p.Get()
				require.True(t, ok)
				require.Equal(t, iv, got)
				seen = append(seen, p)
			}
			for _, p := range seen {
				if invalid[p] {
					require.False(t, p.Valid(), "pointer came back to life")
				} else if !p.Valid() {
					invalid[p] = true
				}
			}
		}
	})
}
