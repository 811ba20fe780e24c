package session

import "sync"

// Store owns all live sessions for the process. Sessions are created on first
// reference and live until deleted or process exit. Safe for concurrent use.
type Store struct {
	mu           sync.Mutex
	sessions     map[string]*Session
	systemPrompt string
}

// NewStore creates an empty Store. Every session it creates is anchored by
// systemPrompt as its first transcript message.
func NewStore(systemPrompt string) *Store {
	return &Store{
		sessions:     make(map[string]*Session),
		systemPrompt: systemPrompt,
	}
}

// GetOrCreate returns the session identified by id, creating it on first
// reference.
func (st *Store) GetOrCreate(id string) *Session {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	if !ok {
		s = newSession(id, st.systemPrompt)
		st.sessions[id] = s
	}
	return s
}

// Get returns the session identified by id, or nil, false if it does not exist.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.Lock()
	defer st.mu.Unlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Delete removes the session identified by id. Deleting an unknown id is a no-op.
func (st *Store) Delete(id string) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}

// Len returns the number of live sessions.
func (st *Store) Len() int {
	st.mu.Lock()
	defer st.mu.Unlock()
	return len(st.sessions)
}
