package app

import (
	"sort"
	"sync"
	"time"

	"wisdom-quiz-service/internal/domain"
)

// Session is the in-memory leaderboard state of one quiz. Shuffled views are
// never stored here; they are recomputed on demand, so the session only
// tracks who is playing and what they have scored.
type Session struct {
	id           string
	createdAt    time.Time
	now          func() time.Time
	mu           sync.RWMutex
	participants map[string]*domain.Participant
	lifelines    map[string]map[domain.Lifeline]struct{}
	subscribers  map[chan domain.Leaderboard]struct{}
}

// NewSession is exported for infrastructure layers that need to seed sessions.
func NewSession(id string) *Session {
	return newSessionWithClock(id, time.Now)
}

// NewSessionWithClock is test-only for deterministic timestamps.
func NewSessionWithClock(id string, now func() time.Time) *Session {
	return newSessionWithClock(id, now)
}

func newSessionWithClock(id string, now func() time.Time) *Session {
	return &Session{
		id:           id,
		createdAt:    now(),
		now:          now,
		participants: make(map[string]*domain.Participant),
		lifelines:    make(map[string]map[domain.Lifeline]struct{}),
		subscribers:  make(map[chan domain.Leaderboard]struct{}),
	}
}

func (s *Session) join(userID, displayName string) domain.Leaderboard {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if participant, ok := s.participants[userID]; ok {
		participant.DisplayName = displayName
		participant.LastUpdated = now
	} else {
		s.participants[userID] = &domain.Participant{
			UserID:      userID,
			DisplayName: displayName,
			Score:       0,
			LastUpdated: now,
		}
	}
	return s.broadcastLocked()
}

// addPoints credits a participant and returns the refreshed leaderboard plus
// their new total. Zero points still bumps LastUpdated so tie-breaks reflect
// activity.
func (s *Session) addPoints(userID string, points int) (domain.Leaderboard, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	participant, ok := s.participants[userID]
	if !ok {
		return domain.Leaderboard{}, 0, domain.ErrParticipantNotFound
	}
	if points > 0 {
		participant.Score += points
	}
	participant.LastUpdated = s.now()

	return s.broadcastLocked(), participant.Score, nil
}

func (s *Session) leave(userID string) domain.Leaderboard {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.participants, userID)
	delete(s.lifelines, userID)
	return s.broadcastLocked()
}

func (s *Session) hasParticipant(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.participants[userID]
	return ok
}

// useLifeline marks a lifeline as spent. Each kind is single-use per
// participant for the lifetime of the session.
func (s *Session) useLifeline(userID string, kind domain.Lifeline) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.participants[userID]; !ok {
		return domain.ErrParticipantNotFound
	}
	used, ok := s.lifelines[userID]
	if !ok {
		used = make(map[domain.Lifeline]struct{})
		s.lifelines[userID] = used
	}
	if _, spent := used[kind]; spent {
		return domain.ErrLifelineUsed
	}
	used[kind] = struct{}{}
	return nil
}

// releaseLifeline returns a reserved lifeline when hint generation failed, so
// the participant is not charged for a hint they never received.
func (s *Session) releaseLifeline(userID string, kind domain.Lifeline) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if used, ok := s.lifelines[userID]; ok {
		delete(used, kind)
	}
}

func (s *Session) isEmpty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.participants) == 0
}

// IsEmpty reports whether the session has no participants.
func (s *Session) IsEmpty() bool {
	return s.isEmpty()
}

func (s *Session) subscribe() (<-chan domain.Leaderboard, func()) {
	ch := make(chan domain.Leaderboard, 8)

	s.mu.Lock()
	s.subscribers[ch] = struct{}{}
	initial := s.snapshotLocked()
	s.mu.Unlock()

	ch <- initial

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

func (s *Session) broadcastLocked() domain.Leaderboard {
	lb := s.snapshotLocked()
	for ch := range s.subscribers {
		select {
		case ch <- lb:
		default:
			// Drop the stale update so a slow client cannot block broadcast.
			select {
			case <-ch:
			default:
			}
			ch <- lb
		}
	}
	return lb
}

func (s *Session) snapshotLocked() domain.Leaderboard {
	entries := make([]domain.LeaderboardEntry, 0, len(s.participants))
	for _, participant := range s.participants {
		entries = append(entries, domain.LeaderboardEntry{
			UserID:      participant.UserID,
			DisplayName: participant.DisplayName,
			Score:       participant.Score,
		})
	}

	// Score desc, then whoever reached the score earlier, then name.
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score != entries[j].Score {
			return entries[i].Score > entries[j].Score
		}
		pi := s.participants[entries[i].UserID]
		pj := s.participants[entries[j].UserID]
		if pi != nil && pj != nil && !pi.LastUpdated.Equal(pj.LastUpdated) {
			return pi.LastUpdated.Before(pj.LastUpdated)
		}
		return entries[i].DisplayName < entries[j].DisplayName
	})

	return domain.Leaderboard{
		QuizID:    s.id,
		Entries:   entries,
		UpdatedAt: s.now(),
	}
}
