// Package audit carries audit entries off the request path: it persists
// best-effort entries asynchronously and streams committed ones to
// subscribers.
package audit

import (
	"context"
	"database/sql"
	"log/slog"
	"sync"
	"time"

	"github.com/erazemk/armory/internal/model"
	"github.com/erazemk/armory/internal/store"
)

// DefaultQueueSize is used when NewRecorder is given a non-positive size.
const DefaultQueueSize = 256

type job struct {
	entry   model.AuditEntry
	persist bool
	flushed chan struct{}
}

// Recorder is a bounded, non-blocking audit queue drained by one worker.
//
// Entries passed to Record are written to the audit log by the worker; a
// full queue or a failed write is logged and the entry is lost. Entries
// passed to Published were already committed with their business
// transaction and are only broadcast.
type Recorder struct {
	db  *sql.DB
	hub *Hub

	mu     sync.RWMutex
	closed bool
	queue  chan job
	done   chan struct{}
	once   sync.Once
}

// NewRecorder starts a recorder. hub may be nil.
func NewRecorder(db *sql.DB, hub *Hub, size int) *Recorder {
	if size <= 0 {
		size = DefaultQueueSize
	}
	r := &Recorder{
		db:    db,
		hub:   hub,
		queue: make(chan job, size),
		done:  make(chan struct{}),
	}
	go r.run()
	return r
}

// Record queues an entry for persistence and broadcast. It never blocks and
// reports whether the entry was queued.
func (r *Recorder) Record(e model.AuditEntry) bool {
	return r.enqueue(job{entry: e, persist: true})
}

// Published queues an already committed entry for broadcast only.
func (r *Recorder) Published(e model.AuditEntry) bool {
	if r.hub == nil {
		return true
	}
	return r.enqueue(job{entry: e})
}

func (r *Recorder) enqueue(j job) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		slog.Warn("audit recorder closed, dropping entry", "action", j.entry.Action)
		return false
	}
	select {
	case r.queue <- j:
		return true
	default:
		slog.Error("audit queue full, dropping entry", "action", j.entry.Action, "user", j.entry.UserID)
		return false
	}
}

// Flush blocks until every entry queued before the call has been handled
// or ctx is done.
func (r *Recorder) Flush(ctx context.Context) error {
	ch := make(chan struct{})
	r.mu.RLock()
	if r.closed {
		r.mu.RUnlock()
		return nil
	}
	select {
	case r.queue <- job{flushed: ch}:
	case <-ctx.Done():
		r.mu.RUnlock()
		return ctx.Err()
	}
	r.mu.RUnlock()

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting entries, drains the queue and waits for the worker.
func (r *Recorder) Close() {
	r.once.Do(func() {
		r.mu.Lock()
		r.closed = true
		close(r.queue)
		r.mu.Unlock()
		<-r.done
	})
}

func (r *Recorder) run() {
	defer close(r.done)
	for j := range r.queue {
		if j.flushed != nil {
			close(j.flushed)
			continue
		}
		r.handle(j)
	}
}

func (r *Recorder) handle(j job) {
	if j.persist {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := store.InsertAudit(ctx, r.db, &j.entry)
		cancel()
		if err != nil {
			slog.Error("writing audit entry", "action", j.entry.Action, "user", j.entry.UserID, "error", err)
			return
		}
	}
	if r.hub != nil {
		r.hub.Broadcast(j.entry)
	}
}
