package service

import (
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/v-anushka05/mockmate-backend/internal/model"
)

// Selection accumulates one booking attempt while the user is choosing.
// Nothing here is persisted: discarding a selection has no side effect.
type Selection struct {
	ID            string
	UserID        int64
	Subject       model.Subject
	Date          time.Time
	TimeSlot      string
	InterviewerID int64
	Candidates    map[int64]struct{}
	CreatedAt     time.Time
}

// Complete reports whether all four fields of the booking request are
// present and the chosen interviewer belongs to the last filtered set.
func (s *Selection) Complete() bool {
	if !s.Subject.Valid() || s.Date.IsZero() || s.TimeSlot == "" || s.InterviewerID == 0 {
		return false
	}
	_, ok := s.Candidates[s.InterviewerID]
	return ok
}

// selectionStore keeps in-flight selections in memory, keyed by session
// id. Value semantics on the way in and out keep callers from mutating
// shared state outside the lock.
type selectionStore struct {
	mu       sync.RWMutex
	sessions map[string]Selection
}

func newSelectionStore() *selectionStore {
	return &selectionStore{
		sessions: make(map[string]Selection),
	}
}

func (st *selectionStore) Create(userID int64) Selection {
	sel := Selection{
		ID:        uuid.NewString(),
		UserID:    userID,
		CreatedAt: time.Now(),
	}

	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[sel.ID] = sel
	return sel
}

func (st *selectionStore) Get(id string) (Selection, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	sel, ok := st.sessions[id]
	return sel, ok
}

func (st *selectionStore) Put(sel Selection) {
	st.mu.Lock()
	defer st.mu.Unlock()
	st.sessions[sel.ID] = sel
}

func (st *selectionStore) Discard(id string) {
	st.mu.Lock()
	defer st.mu.Unlock()
	delete(st.sessions, id)
}
