package batch

import (
	"slices"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/setanarut/iconcomposer"
)

// Report tallies the outcome of a batch. It is safe for concurrent use and
// is passed explicitly to whoever renders; there is no package-level state.
type Report struct {
	rendered  atomic.Int64
	minor     atomic.Int64
	failed    atomic.Int64
	ambiguous atomic.Int64

	mu        sync.Mutex
	bad       []string
	overflows []float64
}

// Record counts one rendered icon.
func (r *Report) Record(name string, res iconcomposer.Result) {
	r.rendered.Add(1)
	switch res.Overflow.Kind {
	case iconcomposer.OverflowNone:
		return
	case iconcomposer.OverflowMinor:
		r.minor.Add(1)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.overflows = append(r.overflows, float64(res.Overflow.Pixels))
	if res.Overflow.Kind == iconcomposer.OverflowBad {
		r.bad = append(r.bad, name)
	}
}

// Fail counts an icon that could not be rendered.
func (r *Report) Fail() { r.failed.Add(1) }

// AddAmbiguous counts asset namespaces resolved against several archives.
func (r *Report) AddAmbiguous(n int) { r.ambiguous.Add(int64(n)) }

// Summary is a snapshot of a Report.
type Summary struct {
	Rendered     int
	Failed       int
	Minor        int
	Bad          int
	Ambiguous    int
	MeanOverflow float64 // over icons that overflowed at all
	MaxOverflow  float64
	BadIcons     []string // sorted
}

func (r *Report) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()
	s := Summary{
		Rendered:  int(r.rendered.Load()),
		Failed:    int(r.failed.Load()),
		Minor:     int(r.minor.Load()),
		Bad:       len(r.bad),
		Ambiguous: int(r.ambiguous.Load()),
		BadIcons:  slices.Sorted(slices.Values(r.bad)),
	}
	if len(r.overflows) > 0 {
		s.MeanOverflow = stat.Mean(r.overflows, nil)
		s.MaxOverflow = floats.Max(r.overflows)
	}
	return s
}

// Log writes the summary once, at info level, listing every bad overflow.
func (s Summary) Log(l *zap.Logger) {
	l.Info("batch finished",
		zap.Int("rendered", s.Rendered),
		zap.Int("failed", s.Failed),
		zap.Int("overflow_minor", s.Minor),
		zap.Int("overflow_bad", s.Bad),
		zap.Int("ambiguous_assets", s.Ambiguous),
		zap.Float64("overflow_mean", s.MeanOverflow),
		zap.Float64("overflow_max", s.MaxOverflow))
	if len(s.BadIcons) > 0 {
		l.Warn("icons clipped by overflow", zap.Strings("icons", s.BadIcons))
	}
}
