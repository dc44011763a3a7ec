package node

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Manager runs several modes in one process, as a local cluster. Stopping
// the Sender through it is the same as interrupting a Sender process.
type Manager struct {
	config *Config
	opts   []Option

	mu      sync.RWMutex
	running map[Mode]*managedNode
}

type managedNode struct {
	node   *Node
	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// NewManager creates a manager whose nodes share config and opts.
func NewManager(config *Config, opts ...Option) *Manager {
	return &Manager{
		config:  config,
		opts:    opts,
		running: make(map[Mode]*managedNode),
	}
}

// Start runs mode in the background and returns once its endpoints are bound.
// A node that fails to start is not kept.
func (m *Manager) Start(mode Mode) (*Node, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.running[mode]; ok {
		return nil, fmt.Errorf("%w: %s", ErrNodeAlreadyRunning, mode)
	}

	n, err := New(m.config, mode, m.opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s node: %w", mode, err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	mn := &managedNode{node: n, cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(mn.done)
		mn.err = n.Run(ctx)
	}()

	select {
	case <-n.Ready():
	case <-mn.done:
		cancel()
		return nil, fmt.Errorf("failed to start %s node: %w", mode, mn.err)
	}

	m.running[mode] = mn
	return n, nil
}

// Stop cancels mode and waits for it to return.
func (m *Manager) Stop(mode Mode) error {
	m.mu.Lock()
	mn, ok := m.running[mode]
	delete(m.running, mode)
	m.mu.Unlock()

	if !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotRunning, mode)
	}

	mn.cancel()
	<-mn.done
	if mn.err != nil {
		return fmt.Errorf("%s: %w", mode, mn.err)
	}
	return nil
}

// Get returns the running node for mode, or nil.
func (m *Manager) Get(mode Mode) *Node {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mn, ok := m.running[mode]; ok {
		return mn.node
	}
	return nil
}

// Running lists the running modes in start order.
func (m *Manager) Running() []Mode {
	m.mu.RLock()
	defer m.mu.RUnlock()

	modes := make([]Mode, 0, len(m.running))
	for _, mode := range Modes {
		if _, ok := m.running[mode]; ok {
			modes = append(modes, mode)
		}
	}
	return modes
}

// StopAll stops every running node, the Sender first.
func (m *Manager) StopAll() error {
	running := m.Running()

	var errs []error
	for i := len(running) - 1; i >= 0; i-- {
		if err := m.Stop(running[i]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
