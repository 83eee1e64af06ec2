// Package par runs independent jobs in parallel.
package par

import (
	"math/rand"
	"sync"
)

// Work runs f on a set of items in parallel, at most once each,
// and keeps the error each item failed with.
// The items in the set must all be valid map keys.
type Work[T comparable] struct {
	f       func(T) error
	running int

	mu      sync.Mutex
	added   map[T]bool
	errs    map[T]error
	todo    []T
	wait    sync.Cond
	waiting int
}

// Add adds item to the work set, if it hasn't already been added.
// It may be called from f.
func (w *Work[T]) Add(item T) {
	w.mu.Lock()
	if w.added == nil {
		w.added = make(map[T]bool)
	}
	if !w.added[item] {
		w.added[item] = true
		w.todo = append(w.todo, item)
		if w.waiting > 0 {
			w.wait.Signal()
		}
	}
	w.mu.Unlock()
}

// Do runs f on every item of the set with at most n calls running at a
// time and returns once the set is drained. The result maps each failed
// item to its error; it is nil when nothing failed.
// Do should only be used once on a given Work.
func (w *Work[T]) Do(n int, f func(item T) error) map[T]error {
	if n < 1 {
		panic("par.Work.Do: n < 1")
	}
	if w.running >= 1 {
		panic("par.Work.Do: already called Do")
	}

	w.running = n
	w.f = f
	w.wait.L = &w.mu

	for i := 0; i < n-1; i++ {
		go w.runner()
	}
	w.runner()

	w.mu.Lock()
	defer w.mu.Unlock()
	return w.errs
}

// runner takes items until the set is empty and every runner waits.
func (w *Work[T]) runner() {
	for {
		w.mu.Lock()
		for len(w.todo) == 0 {
			w.waiting++
			if w.waiting == w.running {
				w.wait.Broadcast()
				w.mu.Unlock()
				return
			}
			w.wait.Wait()
			w.waiting--
		}

		// Pick at random so items added together do not contend.
		i := rand.Intn(len(w.todo))
		item := w.todo[i]
		w.todo[i] = w.todo[len(w.todo)-1]
		w.todo = w.todo[:len(w.todo)-1]
		w.mu.Unlock()

		if err := w.f(item); err != nil {
			w.mu.Lock()
			if w.errs == nil {
				w.errs = make(map[T]error)
			}
			w.errs[item] = err
			w.mu.Unlock()
		}
	}
}
