package batch

import (
	"fmt"
	"io"
	"strings"
	"sync"
)

// Progress receives the number of finished tasks of one phase.
type Progress interface {
	Update(done int)
	Finish()
}

// ProgressFunc creates the reporter for a phase with total tasks.
type ProgressFunc func(name string, total int) Progress

type nopProgress struct{}

func (nopProgress) Update(int) {}
func (nopProgress) Finish()    {}

// NopProgress discards progress.
func NopProgress(string, int) Progress { return nopProgress{} }

const barWidth = 40

// Bar draws a single-line progress bar, rewriting it in place:
//
//	items: [==========                              ] 250/1000
type Bar struct {
	w     io.Writer
	name  string
	total int

	mu   sync.Mutex
	last int
}

func NewBar(w io.Writer, name string, total int) *Bar {
	b := &Bar{w: w, name: name, total: total, last: -1}
	b.Update(0)
	return b
}

// Bars returns a ProgressFunc drawing a Bar on w for every phase.
func Bars(w io.Writer) ProgressFunc {
	return func(name string, total int) Progress { return NewBar(w, name, total) }
}

func (b *Bar) Update(done int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	done = min(max(done, 0), b.total)
	if done <= b.last {
		return
	}
	b.last = done
	fmt.Fprintf(b.w, "\r%s: [%-*s] %d/%d ", b.name, barWidth, strings.Repeat("=", b.filled(done)), done, b.total)
}

func (b *Bar) Finish() {
	b.Update(b.total)
	b.mu.Lock()
	fmt.Fprintln(b.w)
	b.mu.Unlock()
}

func (b *Bar) filled(done int) int {
	if b.total <= 0 {
		return barWidth
	}
	return done * barWidth / b.total
}
