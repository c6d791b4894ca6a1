package query

import (
	"sync"
	"time"
)

// DefaultSearchDebounce is the quiet period before a typed search
// term becomes part of the active query.
const DefaultSearchDebounce = 300 * time.Millisecond

// Debouncer delays an action until a burst of triggers has paused.
// Each Trigger supersedes any pending one, so only the final value in
// a burst fires.
type Debouncer struct {
	mu    sync.Mutex
	delay time.Duration
	timer *time.Timer
}

// NewDebouncer creates a debouncer with the given quiet period. A
// non-positive delay falls back to the default.
func NewDebouncer(delay time.Duration) *Debouncer {
	if delay <= 0 {
		delay = DefaultSearchDebounce
	}
	return &Debouncer{delay: delay}
}

// Trigger schedules fn after the quiet period, cancelling any pending
// schedule.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.delay, fn)
}

// Stop cancels any pending trigger.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// SearchInput binds keystrokes to a debounced search-term consumer.
// Type may be called per keystroke; apply only sees terms that
// survived the quiet period.
type SearchInput struct {
	debouncer *Debouncer
	apply     func(term string)
}

// NewSearchInput creates a debounced search input feeding apply.
func NewSearchInput(delay time.Duration, apply func(term string)) *SearchInput {
	return &SearchInput{
		debouncer: NewDebouncer(delay),
		apply:     apply,
	}
}

// Type registers the current contents of the search box.
func (si *SearchInput) Type(term string) {
	si.debouncer.Trigger(func() {
		si.apply(term)
	})
}

// Cancel drops any pending term, e.g. when the view unmounts.
func (si *SearchInput) Cancel() {
	si.debouncer.Stop()
}
