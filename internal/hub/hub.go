// Package hub keeps the live game sessions of a server in memory and
// runs their clocks.
package hub

import (
	"context"
	"errors"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/vancomm/minefield/internal/config"
	"github.com/vancomm/minefield/internal/mines"
)

var (
	ErrNotFound = errors.New("game session not found")
	ErrFull     = errors.New("too many game sessions")
	ErrClosed   = errors.New("hub is shut down")
)

type Entry struct {
	ID        uuid.UUID
	Session   *mines.Session
	StartedAt time.Time

	mu      sync.Mutex
	endedAt time.Time
}

func (e *Entry) EndedAt() (time.Time, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.endedAt, !e.endedAt.IsZero()
}

func (e *Entry) markEnded(t time.Time) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.endedAt.IsZero() {
		e.endedAt = t
	}
}

type Hub struct {
	log *logrus.Logger
	cfg config.Hub
	ctx context.Context
	g   *errgroup.Group

	rndMu sync.Mutex
	rnd   *rand.Rand

	mu       sync.RWMutex
	sessions map[uuid.UUID]*Entry

	now func() time.Time
}

// New returns a hub whose session clocks stop when ctx is done.
func New(ctx context.Context, log *logrus.Logger, cfg config.Hub, rnd *rand.Rand) *Hub {
	g, gCtx := errgroup.WithContext(ctx)
	return &Hub{
		log:      log,
		cfg:      cfg,
		ctx:      gCtx,
		g:        g,
		rnd:      rnd,
		sessions: make(map[uuid.UUID]*Entry),
		now:      time.Now,
	}
}

// Create starts a new game and its clock.
func (h *Hub) Create(p mines.Params) (*Entry, error) {
	if h.ctx.Err() != nil {
		return nil, ErrClosed
	}

	h.rndMu.Lock()
	session, err := mines.NewSession(p, h.rnd)
	h.rndMu.Unlock()
	if err != nil {
		return nil, err
	}

	entry := &Entry{
		ID:        uuid.New(),
		Session:   session,
		StartedAt: h.now().UTC(),
	}

	h.mu.Lock()
	if h.cfg.MaxSessions > 0 && len(h.sessions) >= h.cfg.MaxSessions {
		h.mu.Unlock()
		return nil, ErrFull
	}
	h.sessions[entry.ID] = entry
	h.mu.Unlock()

	h.g.Go(func() error {
		err := session.StartClock(h.ctx)
		if session.State().Terminal() {
			entry.markEnded(h.now().UTC())
		}
		h.log.WithFields(logrus.Fields{
			"session": entry.ID,
			"state":   session.State(),
		}).Debug("session clock stopped")
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	})

	h.log.WithFields(logrus.Fields{
		"session": entry.ID,
		"seed":    p.Seed(),
	}).Info("session created")

	return entry, nil
}

func (h *Hub) Get(id string) (*Entry, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	entry, ok := h.sessions[uid]
	if !ok {
		return nil, ErrNotFound
	}
	return entry, nil
}

func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

// Sweep drops sessions that ended more than the retention period
// before now and reports how many were dropped.
func (h *Hub) Sweep(now time.Time) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	n := 0
	for id, entry := range h.sessions {
		endedAt, ended := entry.EndedAt()
		if ended && now.Sub(endedAt) >= h.cfg.Retention {
			delete(h.sessions, id)
			n++
		}
	}
	return n
}

// Run sweeps finished sessions until the hub's context is done, then
// waits for every clock to stop.
func (h *Hub) Run() error {
	h.g.Go(func() error {
		ticker := time.NewTicker(h.cfg.SweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-h.ctx.Done():
				return nil
			case t := <-ticker.C:
				if n := h.Sweep(t); n > 0 {
					h.log.WithField("evicted", n).Debug("swept sessions")
				}
			}
		}
	})
	return h.g.Wait()
}
