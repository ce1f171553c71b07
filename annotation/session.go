// Package annotation holds labeling session state, the manual box lifecycle
// and the cross-frame track records derived from confirmed boxes.
package annotation

import (
	"sync"

	"github.com/google/uuid"
	"github.com/swdee/go-seglabel/region"
)

// Session owns the mutable state shared by a labeling run, the track ID
// counter and the bulk colour key to track ID map.  It is safe for
// concurrent use.
type Session struct {
	// ID identifies the session in exported track stores
	ID uuid.UUID

	ids   *idGenerator
	mu    sync.Mutex
	byKey map[region.Key]int
	order []region.Key
}

// NewSession returns a session with a fresh ID and counter
func NewSession() *Session {
	return &Session{
		ID:    uuid.New(),
		ids:   newIDGenerator(),
		byKey: make(map[region.Key]int),
	}
}

// NextTrackID allocates a new track ID
func (s *Session) NextTrackID() int {
	return s.ids.next()
}

// LastTrackID returns the most recently allocated track ID, 0 if none
func (s *Session) LastTrackID() int {
	return s.ids.last()
}

// TrackIDFor returns the track ID of a bulk selector key, allocating one from
// the session counter the first time the key is seen
func (s *Session) TrackIDFor(key region.Key) (id int, created bool) {

	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byKey[key]; ok {
		return id, false
	}

	id = s.ids.next()
	s.byKey[key] = id
	s.order = append(s.order, key)

	return id, true
}

// Keys returns the bulk keys in the order they were first seen
func (s *Session) Keys() []region.Key {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]region.Key(nil), s.order...)
}
