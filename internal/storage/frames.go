package storage

import "sync"

// FrameStore holds the latest rendered frame per session, replaced on every
// navigation so the image endpoint always serves the current record.
type FrameStore struct {
	frames map[string][]byte
	mu     sync.RWMutex
}

func NewFrameStore() *FrameStore {
	return &FrameStore{
		frames: make(map[string][]byte),
	}
}

func (s *FrameStore) Get(sessionID string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	frame, exists := s.frames[sessionID]
	return frame, exists
}

func (s *FrameStore) Set(sessionID string, frame []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames[sessionID] = frame
}

func (s *FrameStore) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.frames, sessionID)
}
