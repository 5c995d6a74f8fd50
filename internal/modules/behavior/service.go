package behavior

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/finpulse/finpulse/internal/domain"
	"github.com/finpulse/finpulse/internal/events"
)

// Service coordinates profile updates. Writes for one user are serialized
// through a per-user lock so decay is applied at most once per gap and
// running aggregates never interleave mid-update; different users proceed in
// parallel.
type Service struct {
	engine *Engine
	repo   *Repository
	events *events.Manager
	log    zerolog.Logger

	mu        sync.Mutex
	userLocks map[int64]*sync.Mutex
}

// NewService creates a new behavior service
func NewService(engine *Engine, repo *Repository, ev *events.Manager, log zerolog.Logger) *Service {
	return &Service{
		engine:    engine,
		repo:      repo,
		events:    ev,
		log:       log.With().Str("service", "behavior").Logger(),
		userLocks: make(map[int64]*sync.Mutex),
	}
}

func (s *Service) userLock(userID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	lock, ok := s.userLocks[userID]
	if !ok {
		lock = &sync.Mutex{}
		s.userLocks[userID] = lock
	}
	return lock
}

// RecordTransaction folds a transaction into the user's profile, creating the
// profile lazily on first use. Credits do not touch category spending stats.
// The profile is committed atomically; on a save failure nothing is persisted.
func (s *Service) RecordTransaction(tx domain.Transaction, now time.Time) (*Profile, error) {
	lock := s.userLock(tx.UserID)
	lock.Lock()
	defer lock.Unlock()

	profile, err := s.repo.Get(tx.UserID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		profile = NewProfile(tx.UserID)
	}

	if tx.IsCredit() {
		return profile, nil
	}

	decayed := s.engine.Update(profile, tx.Category, tx.Amount, now)

	if err := s.repo.Save(profile); err != nil {
		return nil, err
	}

	if decayed && s.events != nil {
		s.events.Emit(events.ProfileDecayApplied, "behavior", map[string]interface{}{
			"user_id": tx.UserID,
		})
	}
	if s.events != nil {
		s.events.Emit(events.ProfileUpdated, "behavior", map[string]interface{}{
			"user_id":           tx.UserID,
			"category":          tx.Category,
			"transaction_count": profile.TransactionCount,
		})
	}

	return profile, nil
}

// GetProfile returns the stored profile for a user, or nil when absent
func (s *Service) GetProfile(userID int64) (*Profile, error) {
	return s.repo.Get(userID)
}
