package cache

import (
	"sync"

	"github.com/zeromicro/go-zero/core/threading"
)

const (
	defaultRebuildWorkers = 4
	defaultRebuildQueue   = 256
)

// RebuildPool runs cache rebuilds on a fixed set of workers behind a bounded queue.
// Submit never blocks: when the queue is full the task is rejected and the caller drops it.
type RebuildPool struct {
	tasks chan func()
	quit  chan struct{}
	wg    sync.WaitGroup
	once  sync.Once
}

func NewRebuildPool(workers, queueSize int) *RebuildPool {
	if workers <= 0 {
		workers = defaultRebuildWorkers
	}
	if queueSize <= 0 {
		queueSize = defaultRebuildQueue
	}

	p := &RebuildPool{
		tasks: make(chan func(), queueSize),
		quit:  make(chan struct{}),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		threading.GoSafe(p.work)
	}
	return p
}

func (p *RebuildPool) work() {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case task := <-p.tasks:
			threading.RunSafe(task)
		}
	}
}

// Submit reports whether the task was queued.
func (p *RebuildPool) Submit(task func()) bool {
	select {
	case <-p.quit:
		return false
	default:
	}

	select {
	case p.tasks <- task:
		return true
	default:
		return false
	}
}

// Stop lets running tasks finish; queued ones are discarded.
func (p *RebuildPool) Stop() {
	p.once.Do(func() {
		close(p.quit)
	})
	p.wg.Wait()
}
