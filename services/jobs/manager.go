// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package jobs

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/AleutianAI/Kodiak/pkg/logging"
)

// Executor runs one job and returns its result payload.
//
// Executors are registered per job name. The context is cancelled when
// the job is cancelled or the manager shuts down; long-running
// executors must honor it.
type Executor func(ctx context.Context, job Job) (map[string]any, error)

// ManagerConfig holds sizing for the worker pool and queue.
type ManagerConfig struct {
	Workers   int
	QueueSize int
}

// DefaultManagerConfig returns the default pool sizing.
func DefaultManagerConfig() ManagerConfig {
	return ManagerConfig{
		Workers:   4,
		QueueSize: 64,
	}
}

// Manager is an in-memory job registry plus a worker pool.
//
// Description:
//
//	CreateJob registers a pending job; SubmitJob queues it for the
//	worker pool (async) or runs it inline (sync). All accessors return
//	job value snapshots. Lifecycle transitions are logged through the
//	observability pipeline and published to subscribers.
//
// Thread Safety: All public methods are safe for concurrent use.
type Manager struct {
	log *logging.Handle
	cfg ManagerConfig

	mu        sync.Mutex
	jobs      map[string]*Job
	order     []string
	executors map[string]Executor
	cancels   map[string]context.CancelFunc
	subs      map[int]chan Event
	nextSub   int
	running   bool

	queue  chan string
	group  *errgroup.Group
	stopFn context.CancelFunc
}

// NewManager creates a stopped manager; call Start to accept work.
func NewManager(log *logging.Handle, cfg ManagerConfig) *Manager {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultManagerConfig().Workers
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = DefaultManagerConfig().QueueSize
	}
	return &Manager{
		log:       log,
		cfg:       cfg,
		jobs:      make(map[string]*Job),
		executors: make(map[string]Executor),
		cancels:   make(map[string]context.CancelFunc),
		subs:      make(map[int]chan Event),
	}
}

// RegisterExecutor binds an executor to a job name. Creating or
// submitting a job with an unregistered name fails.
func (m *Manager) RegisterExecutor(name string, exec Executor) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.executors[name] = exec
}

// Start launches the worker pool. Safe to call once per manager.
func (m *Manager) Start(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return
	}
	m.running = true
	m.queue = make(chan string, m.cfg.QueueSize)

	ctx, cancel := context.WithCancel(ctx)
	m.stopFn = cancel
	g, gctx := errgroup.WithContext(ctx)
	m.group = g
	for i := 0; i < m.cfg.Workers; i++ {
		g.Go(func() error {
			m.workerLoop(gctx)
			return nil
		})
	}
	m.log.Info("job manager started", logging.Fields{
		"workers":    m.cfg.Workers,
		"queue_size": m.cfg.QueueSize,
	})
}

// Stop drains the pool and closes all subscriber channels. Queued jobs
// that never ran stay queued in the registry; running jobs are
// cancelled.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	stop := m.stopFn
	group := m.group
	m.mu.Unlock()

	stop()
	_ = group.Wait()

	m.mu.Lock()
	for id, ch := range m.subs {
		close(ch)
		delete(m.subs, id)
	}
	m.mu.Unlock()
	m.log.Info("job manager stopped", nil)
}

// CreateJob registers a new pending job.
func (m *Manager) CreateJob(name string, typ Type, payload map[string]any) (Job, error) {
	if name == "" {
		return Job{}, ErrEmptyName
	}
	switch typ {
	case TypeAsync, TypeSync:
	default:
		return Job{}, fmt.Errorf("%w: %q", ErrUnknownType, string(typ))
	}

	m.mu.Lock()
	if _, ok := m.executors[name]; !ok {
		m.mu.Unlock()
		return Job{}, fmt.Errorf("%w: %q", ErrNoExecutor, name)
	}
	job := &Job{
		ID:        uuid.NewString(),
		Name:      name,
		Type:      typ,
		Payload:   payload,
		Status:    StatusPending,
		CreatedAt: time.Now().UTC(),
	}
	m.jobs[job.ID] = job
	m.order = append(m.order, job.ID)
	snapshot := *job
	m.mu.Unlock()

	m.log.Info("job created", logging.Fields{
		"job_id": snapshot.ID, "job_name": snapshot.Name, "job_type": string(snapshot.Type),
	})
	m.publish(EventCreated, snapshot)
	return snapshot, nil
}

// GetJob returns a snapshot of one job.
func (m *Manager) GetJob(id string) (Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[id]
	if !ok {
		return Job{}, ErrJobNotFound
	}
	return *job, nil
}

// ListJobs returns job snapshots, newest first.
func (m *Manager) ListJobs(opts ListOptions) []Job {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]Job, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		job := m.jobs[m.order[i]]
		if opts.Status != "" && job.Status != opts.Status {
			continue
		}
		out = append(out, *job)
	}

	if opts.Offset > 0 {
		if opts.Offset >= len(out) {
			return []Job{}
		}
		out = out[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(out) {
		out = out[:opts.Limit]
	}
	return out
}

// SubmitJob moves a pending job toward execution.
//
// Async jobs are queued for the worker pool and the call returns
// immediately. Sync jobs run inline; the call returns after the job
// reaches a terminal state.
func (m *Manager) SubmitJob(ctx context.Context, id string) (Job, error) {
	m.mu.Lock()
	job, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return Job{}, ErrJobNotFound
	}
	if job.Status != StatusPending {
		m.mu.Unlock()
		return Job{}, fmt.Errorf("%w: submit from %q", ErrInvalidTransition, string(job.Status))
	}
	if !m.running {
		m.mu.Unlock()
		return Job{}, ErrManagerStopped
	}
	job.Status = StatusQueued
	snapshot := *job
	queue := m.queue
	m.mu.Unlock()

	m.publish(EventQueued, snapshot)

	if snapshot.Type == TypeSync {
		m.runJob(ctx, id)
		return m.GetJob(id)
	}

	select {
	case queue <- id:
		return snapshot, nil
	case <-ctx.Done():
		return Job{}, ctx.Err()
	}
}

// CancelJob cancels a job that has not finished.
//
// Pending and queued jobs move straight to cancelled; running jobs get
// their executor context cancelled and finish as cancelled once the
// executor returns.
func (m *Manager) CancelJob(id string) (Job, error) {
	m.mu.Lock()
	job, ok := m.jobs[id]
	if !ok {
		m.mu.Unlock()
		return Job{}, ErrJobNotFound
	}

	if job.Status.terminal() {
		m.mu.Unlock()
		return Job{}, fmt.Errorf("%w: cancel from %q", ErrInvalidTransition, string(job.Status))
	}

	if job.Status == StatusRunning {
		cancel := m.cancels[id]
		snapshot := *job
		m.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return snapshot, nil
	}

	// Pending or queued: never ran, move straight to cancelled.
	now := time.Now().UTC()
	job.Status = StatusCancelled
	job.EndedAt = &now
	snapshot := *job
	m.mu.Unlock()
	m.log.Info("job cancelled", logging.Fields{"job_id": snapshot.ID})
	m.publish(EventCancelled, snapshot)
	return snapshot, nil
}

// Subscribe returns a channel of lifecycle events and a cancel func.
//
// Slow subscribers lose events rather than blocking the manager.
func (m *Manager) Subscribe() (<-chan Event, func()) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	ch := make(chan Event, 16)
	m.subs[id] = ch

	cancel := func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		if sub, ok := m.subs[id]; ok {
			close(sub)
			delete(m.subs, id)
		}
	}
	return ch, cancel
}

func (m *Manager) publish(typ EventType, job Job) {
	evt := Event{Type: typ, Job: job, Time: time.Now().UTC()}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, ch := range m.subs {
		select {
		case ch <- evt:
		default:
			// Subscriber is not keeping up; drop rather than block.
		}
	}
}

func (m *Manager) workerLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case id := <-m.queue:
			m.runJob(ctx, id)
		}
	}
}

// runJob drives one job from queued through a terminal state.
func (m *Manager) runJob(ctx context.Context, id string) {
	m.mu.Lock()
	job, ok := m.jobs[id]
	if !ok || job.Status != StatusQueued {
		// Cancelled while waiting in the queue.
		m.mu.Unlock()
		return
	}
	now := time.Now().UTC()
	job.Status = StatusRunning
	job.StartedAt = &now
	exec := m.executors[job.Name]

	jobCtx, cancel := context.WithCancel(ctx)
	m.cancels[id] = cancel
	snapshot := *job
	m.mu.Unlock()
	defer cancel()

	m.publish(EventStarted, snapshot)

	log := m.log.Bind(logging.Fields{"job_id": id, "job_name": snapshot.Name})
	var result map[string]any
	err := logging.Timed(log, snapshot.Name, func() error {
		var execErr error
		result, execErr = exec(jobCtx, snapshot)
		return execErr
	})

	m.mu.Lock()
	ended := time.Now().UTC()
	job.EndedAt = &ended
	delete(m.cancels, id)

	var evtType EventType
	switch {
	case err == nil:
		job.Status = StatusCompleted
		job.Result = result
		evtType = EventCompleted
	case errors.Is(err, context.Canceled):
		job.Status = StatusCancelled
		job.Error = err.Error()
		evtType = EventCancelled
	default:
		job.Status = StatusFailed
		job.Error = err.Error()
		evtType = EventFailed
	}
	snapshot = *job
	m.mu.Unlock()

	m.publish(evtType, snapshot)
}
