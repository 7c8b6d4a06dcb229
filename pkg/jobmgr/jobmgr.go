// Package jobmgr runs named background jobs with cancellation. A name can
// only run once at a time; jobs unregister themselves when they return.
//
//	jm := jobmgr.NewManager(ctx, nil)
//	err := jm.StartAsync("playback:123", func(ctx context.Context) error {
//	    // work until ctx is cancelled
//	    return nil
//	})
//	...
//	jm.StopAll()
//	jm.Wait()
package jobmgr

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var ErrAlreadyRunning = errors.New("job is already running")

// StatusReporter receives lifecycle events such as "running:get",
// "error:get:failed to connect" and "done:get".
type StatusReporter func(string)

type job struct {
	cancel context.CancelFunc
	id     uint64
}

// Manager is safe for concurrent use.
type Manager struct {
	parent   context.Context
	reporter StatusReporter

	mu     sync.Mutex
	jobs   map[string]job
	nextID uint64
	wg     sync.WaitGroup
}

// NewManager derives every job context from parent. reporter may be nil.
func NewManager(parent context.Context, reporter StatusReporter) *Manager {
	if parent == nil {
		parent = context.Background()
	}
	return &Manager{
		parent:   parent,
		reporter: reporter,
		jobs:     make(map[string]job),
	}
}

// StartAsync runs runner in its own goroutine and returns immediately.
func (m *Manager) StartAsync(name string, runner func(ctx context.Context) error) error {
	m.mu.Lock()
	if _, exists := m.jobs[name]; exists {
		m.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrAlreadyRunning, name)
	}
	ctx, cancel := context.WithCancel(m.parent)
	m.nextID++
	id := m.nextID
	m.jobs[name] = job{cancel: cancel, id: id}
	m.wg.Add(1)
	m.mu.Unlock()

	go func() {
		defer m.wg.Done()
		defer cancel()

		m.report("running:" + name)
		if err := runner(ctx); err != nil {
			m.report("error:" + name + ":" + err.Error())
		} else {
			m.report("done:" + name)
		}

		m.mu.Lock()
		if j, ok := m.jobs[name]; ok && j.id == id {
			delete(m.jobs, name)
		}
		m.mu.Unlock()
	}()

	return nil
}

// Stop cancels a running job. The job's goroutine may still be finishing
// when Stop returns.
func (m *Manager) Stop(name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	j, ok := m.jobs[name]
	if !ok {
		return fmt.Errorf("job '%s' not running", name)
	}
	j.cancel()
	delete(m.jobs, name)
	return nil
}

func (m *Manager) StopAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for name, j := range m.jobs {
		j.cancel()
		delete(m.jobs, name)
	}
}

// Wait blocks until every started job has returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}

func (m *Manager) Running(name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.jobs[name]
	return ok
}

// List returns the active job names, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]string, 0, len(m.jobs))
	for k := range m.jobs {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Status is "Running jobs: a, b" or "No jobs are running."
func (m *Manager) Status() string {
	active := m.List()
	if len(active) == 0 {
		return "No jobs are running."
	}
	return "Running jobs: " + strings.Join(active, ", ")
}

func (m *Manager) report(s string) {
	if m.reporter != nil {
		m.reporter(s)
	}
}
