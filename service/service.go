package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/emzola/prolibrary/config"
	"github.com/emzola/prolibrary/data"
	"github.com/emzola/prolibrary/internal/jsonlog"
	"github.com/emzola/prolibrary/repository"
)

type Service interface {
	books
	catalog
	Subscribe(fn func(State)) (unsubscribe func())
	Wait()
	Close()
}

// service is the catalog controller. It caches the remote books table and
// holds the form state of one user. The remote store remains the single
// source of truth; the cache is replaced wholesale on every refresh.
type service struct {
	config config.Config
	wg     *sync.WaitGroup
	logger *jsonlog.Logger
	repo   repository.Repository

	mu         sync.Mutex
	books      []*data.Book
	inflight   int
	issued     uint64
	applied    uint64
	searchTerm string
	draft      data.Draft
	formOpen   bool
	alert      string
	closed     bool
	subs       map[int]func(State)
	nextSub    int
}

// New creates a new instance of Service and starts the initial load of the
// catalog in the background.
func New(cfg config.Config, wg *sync.WaitGroup, logger *jsonlog.Logger, repo repository.Repository) *service {
	if wg == nil {
		wg = &sync.WaitGroup{}
	}
	s := &service{
		config: cfg,
		wg:     wg,
		logger: logger,
		repo:   repo,
		books:  []*data.Book{},
		subs:   make(map[int]func(State)),
	}
	// Register the initial load before returning so Loading reports it at once.
	s.mu.Lock()
	seq := s.beginRefreshLocked()
	s.mu.Unlock()
	s.background(func() {
		s.finishRefresh(context.Background(), seq)
	})
	return s
}

// Subscribe registers fn to be called with a fresh snapshot after every
// state change. Calls happen on the goroutine that made the change, never
// under the state lock.
func (s *service) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
	}
}

// Wait blocks until background tasks have finished.
func (s *service) Wait() {
	s.wg.Wait()
}

// Close tears the controller down. Remote calls already in flight still
// complete, but their results are discarded.
func (s *service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.subs = make(map[int]func(State))
}

// notify sends the current snapshot to every subscriber.
func (s *service) notify() {
	s.mu.Lock()
	if s.closed || len(s.subs) == 0 {
		s.mu.Unlock()
		return
	}
	state := s.snapshotLocked()
	subs := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()
	for _, fn := range subs {
		fn(state)
	}
}

// background launches fn in a goroutine tracked by the wait group and
// recovers from panics inside it.
func (s *service) background(fn func()) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if err := recover(); err != nil {
				s.logger.PrintError(fmt.Errorf("%s", err), nil)
			}
		}()
		fn()
	}()
}
