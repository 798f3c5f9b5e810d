package dataflow

// Parallel worklist driver: N workers share one worklist and one
// out-state map; a monitor goroutine watches worker states and raises
// the stop flag once every worker is idle (at which point the worklist
// is empty by invariant). The CFG is read-only during the run; only the
// worklist, the out-state map and the worker-state array are shared and
// each is guarded separately.

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("brilt.dataflow")

// Worker lifecycle states, observed by the monitor.
const (
	workerSleep int32 = iota
	workerWorking
	workerSubmitted
	workerIdle
)

// RunParallel computes the same fixed point as Run using cfg.Workers
// goroutines. When p implements MonotoneProblem, updates that change the
// value without improving it are dropped; the framework is only correct
// when transfer is monotone with respect to that order.
//
// The result is equal to Run's as a value; iteration-order-sensitive
// merges may produce different representations, so problems must compare
// by value.
func RunParallel[F any](g Graph, p Problem[F], cfg Config) map[int]F {
	workers := cfg.Workers
	if workers <= 0 {
		workers = DefaultConfig().Workers
	}
	dir := p.Direction()
	monotone, _ := p.(MonotoneProblem[F])

	var (
		queueMu sync.Mutex
		queue   []int

		outMu sync.Mutex
		out   = make(map[int]F, g.NumNodes())

		states = make([]atomic.Int32, workers)
		stop   atomic.Bool
	)
	for i := 0; i < g.NumNodes(); i++ {
		queue = append(queue, i)
	}

	log.Debugf("parallel fixed point: %d nodes, %d workers", g.NumNodes(), workers)

	var wg sync.WaitGroup
	// Monitor: termination is "all workers idle", observed under the queue
	// lock, which implies an empty queue (a worker only goes idle on an
	// empty dequeue, leaves idle only by dequeuing under the same lock, and
	// an enqueue only happens from a non-idle worker).
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			queueMu.Lock()
			allIdle := true
			for i := range states {
				if states[i].Load() != workerIdle {
					allIdle = false
					break
				}
			}
			if allIdle {
				if len(queue) != 0 {
					queueMu.Unlock()
					panic(fmt.Sprintf("dataflow: %d nodes queued with all workers idle", len(queue)))
				}
				stop.Store(true)
				queueMu.Unlock()
				return
			}
			queueMu.Unlock()
			runtime.Gosched()
		}
	}()

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			for {
				queueMu.Lock()
				if len(queue) == 0 {
					if stop.Load() {
						queueMu.Unlock()
						return
					}
					states[id].Store(workerIdle)
					queueMu.Unlock()
					runtime.Gosched()
					continue
				}
				next := queue[0]
				queue = queue[1:]
				states[id].Store(workerWorking)
				queueMu.Unlock()

				var flows []F
				outMu.Lock()
				for _, up := range upstream(g, dir, next) {
					if f, ok := out[up]; ok {
						flows = append(flows, f)
					}
				}
				outMu.Unlock()

				var in F
				if len(flows) > 0 {
					in = p.Merge(flows)
				} else {
					in = p.InitIn(next)
				}
				newOut := p.Transfer(next, in)

				outMu.Lock()
				prev, seen := out[next]
				accept := !seen
				if seen && !p.Equal(prev, newOut) {
					accept = monotone == nil || monotone.Improves(prev, newOut)
				}
				if accept {
					out[next] = newOut
				}
				outMu.Unlock()

				if accept {
					queueMu.Lock()
					queue = append(queue, downstream(g, dir, next)...)
					queueMu.Unlock()
					states[id].Store(workerSubmitted)
				}
			}
		}(w)
	}

	wg.Wait()
	return out
}
