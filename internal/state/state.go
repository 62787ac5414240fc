package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const (
	stateFileName = "reading_positions.json"
	hashBytes     = 8192 // First 8KB for content hash
)

// ErrInvalidIdentifier is returned when a string is not a valid StoryID.
var ErrInvalidIdentifier = errors.New("invalid story identifier")

// StoryID identifies a story by content: 32 lowercase hex characters.
type StoryID string

// ParseStoryID validates s as a StoryID.
func ParseStoryID(s string) (StoryID, error) {
	if len(s) != 32 {
		return "", fmt.Errorf("%w: %q: want 32 hex characters", ErrInvalidIdentifier, s)
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c < '0' || c > '9') && (c < 'a' || c > 'f') {
			return "", fmt.Errorf("%w: %q: want lowercase hex", ErrInvalidIdentifier, s)
		}
	}
	return StoryID(s), nil
}

// StoryIDFromContent derives the StoryID of an uploaded file from its bytes.
func StoryIDFromContent(data []byte) StoryID {
	if len(data) > hashBytes {
		data = data[:hashBytes]
	}
	hash := sha256.Sum256(data)
	return StoryID(hex.EncodeToString(hash[:16])) // First 16 bytes = 32 hex chars
}

// Progress is the last read position of a story.
type Progress struct {
	StoryID     StoryID   `json:"story_id"`
	LastChapter int       `json:"last_chapter"`
	LastWord    int       `json:"last_word"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StateStore manages persistent reading progress.
type StateStore struct {
	path string
	data map[StoryID]Progress
	mu   sync.RWMutex
}

// NewStateStore creates or loads state from XDG_STATE_HOME/aeroread/
func NewStateStore() (*StateStore, error) {
	return OpenStateStore(getStateDir())
}

// OpenStateStore creates or loads state from dir.
func OpenStateStore(dir string) (*StateStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	store := &StateStore{
		path: filepath.Join(dir, stateFileName),
		data: make(map[StoryID]Progress),
	}
	if err := store.load(); err != nil {
		// Non-fatal - start with empty state
		store.data = make(map[StoryID]Progress)
	}
	return store, nil
}

// getStateDir returns XDG_STATE_HOME/aeroread or ~/.local/state/aeroread
func getStateDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "aeroread")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "aeroread")
}

// Get returns the saved progress for id.
func (s *StateStore) Get(id StoryID) (Progress, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.data[id]
	return p, ok
}

// Sync records the reading position of id as of now.
func (s *StateStore) Sync(id StoryID, chapter, word int, now time.Time) (Progress, error) {
	if _, err := ParseStoryID(string(id)); err != nil {
		return Progress{}, err
	}
	if chapter < 0 || word < 0 {
		return Progress{}, fmt.Errorf("invalid position chapter=%d word=%d", chapter, word)
	}

	p := Progress{
		StoryID:     id,
		LastChapter: chapter,
		LastWord:    word,
		UpdatedAt:   now.UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[id] = p
	return p, s.save()
}

// Clear removes saved progress for id.
func (s *StateStore) Clear(id StoryID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
	return s.save()
}

func (s *StateStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var loaded map[StoryID]Progress
	if err := json.Unmarshal(data, &loaded); err != nil {
		return err
	}
	for id, p := range loaded {
		if _, err := ParseStoryID(string(id)); err != nil {
			continue
		}
		p.StoryID = id
		s.data[id] = p
	}
	return nil
}

func (s *StateStore) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
