package handlers

import "sync"

// SessionManager makes sure only one editor session owns the map at a time
type SessionManager struct {
	owner   string
	handler *EditorHandler
	mutex   sync.Mutex
}

// NewSessionManager creates a new session manager
func NewSessionManager() *SessionManager {
	return &SessionManager{}
}

// Acquire makes id the owner if nobody holds the map
func (sm *SessionManager) Acquire(id string, handler *EditorHandler) bool {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if sm.handler != nil {
		return false
	}
	sm.owner = id
	sm.handler = handler
	return true
}

// Release gives up ownership; ignored unless id is the owner
func (sm *SessionManager) Release(id string) {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()

	if sm.owner == id {
		sm.owner = ""
		sm.handler = nil
	}
}

// Owner returns the id of the current owner, or "" when the map is free
func (sm *SessionManager) Owner() string {
	sm.mutex.Lock()
	defer sm.mutex.Unlock()
	return sm.owner
}
