package partition_test

import (
	"errors"
	"iter"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yaklabco/nbcells/pkg/buffer"
	"github.com/yaklabco/nbcells/pkg/cell"
	"github.com/yaklabco/nbcells/pkg/partition"
	"github.com/yaklabco/nbcells/pkg/tokenizer/percent"
)

type engineFactory func(doc partition.Document, src partition.Source, opts partition.Options) (partition.Engine, error)

func engines() map[string]engineFactory {
	return map[string]engineFactory{
		"incremental": func(doc partition.Document, src partition.Source, opts partition.Options) (partition.Engine, error) {
			return partition.NewIncremental(doc, src, opts)
		},
		"reference": func(doc partition.Document, src partition.Source, opts partition.Options) (partition.Engine, error) {
			return partition.NewReference(doc, src, opts)
		},
	}
}

// recorder keeps every reported change.
type recorder struct {
	changes []partition.Change
	counts  []int
}

func (r *recorder) SegmentChanged(change partition.Change) {
	r.counts = append(r.counts, change.Current.IntervalCount())
	change.Current = nil
	r.changes = append(r.changes, change)
}

func (r *recorder) reset() {
	r.changes = nil
	r.counts = nil
}

func setup(t *testing.T, factory engineFactory, src partition.Source, text string) (*buffer.Buffer, partition.Engine, *recorder) {
	t.Helper()

	buf := buffer.New(text)
	engine, err := factory(buf, src, partition.DefaultOptions())
	require.NoError(t, err)
	buf.AddListener(engine)

	rec := &recorder{}
	engine.AddListener(rec)
	return buf, engine, rec
}

// freshIntervals partitions text from scratch.
func freshIntervals(t require.TestingT, text string) []cell.Interval {
	engine, err := partition.NewReference(buffer.New(text), percent.New(), partition.DefaultOptions())
	require.NoError(t, err)
	return engine.Intervals()
}

// wholeFile forces the full re-lex path of a windowable tokenizer.
type wholeFile struct{ *percent.Tokenizer }

func (wholeFile) ShouldParseWholeFile() bool { return true }

var errLex = errors.New("lex failed")

// flaky fails or panics on demand.
type flaky struct {
	partition.Source
	fail    bool
	explode bool
}

func (s *flaky) MarkerSequence(text string, ordinalIncrement, offsetIncrement int) iter.Seq2[cell.Marker, error] {
	if s.explode {
		panic("tokenizer exploded")
	}
	if s.fail {
		return func(yield func(cell.Marker, error) bool) {
			yield(cell.Marker{}, errLex)
		}
	}
	return s.Source.MarkerSequence(text, ordinalIncrement, offsetIncrement)
}

// stacked yields two markers at the start of every window.
type stacked struct{}

func (stacked) ShouldParseWholeFile() bool { return true }

func (stacked) MarkerSequence(_ string, ordinalIncrement, offsetIncrement int) iter.Seq2[cell.Marker, error] {
	return func(yield func(cell.Marker, error) bool) {
		for idx := range 2 {
			if !yield(cell.Marker{Ordinal: ordinalIncrement + idx, Kind: cell.KindCode, Offset: offsetIncrement}, nil) {
				return
			}
		}
	}
}

func code(ordinal, first, last int) cell.Interval {
	return cell.Interval{Ordinal: ordinal, Kind: cell.KindCode, Lines: cell.LineRange{First: first, Last: last}}
}

func markdown(ordinal, first, last int) cell.Interval {
	return cell.Interval{Ordinal: ordinal, Kind: cell.KindMarkdown, Lines: cell.LineRange{First: first, Last: last}}
}

func raw(ordinal, first, last int) cell.Interval {
	return cell.Interval{Ordinal: ordinal, Kind: cell.KindRaw, Lines: cell.LineRange{First: first, Last: last}}
}
