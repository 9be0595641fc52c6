package slack

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// SelectionStore persists the channels chosen for monitoring, per workspace.
// Save keeps the first occurrence of each id and its order.
type SelectionStore interface {
	Load(ctx context.Context, teamID string) ([]string, error)
	Save(ctx context.Context, teamID string, channelIDs []string) error
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}

// MemorySelectionStore is a threadsafe in-memory store
type MemorySelectionStore struct {
	mu       sync.RWMutex
	selected map[string][]string
}

func NewMemorySelectionStore() *MemorySelectionStore {
	return &MemorySelectionStore{selected: make(map[string][]string)}
}

func (s *MemorySelectionStore) Load(ctx context.Context, teamID string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.selected[teamID]...), nil
}

func (s *MemorySelectionStore) Save(ctx context.Context, teamID string, channelIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selected[teamID] = dedupe(channelIDs)
	return nil
}

type teamState struct {
	SelectedChannelIDs []string `json:"selected_channel_ids"`
}

// FileSelectionStore keeps every workspace's selection in one JSON document:
//
//	{"T123": {"selected_channel_ids": ["C1", "C2"]}}
type FileSelectionStore struct {
	mu   sync.Mutex
	path string
}

func NewFileSelectionStore(path string) *FileSelectionStore {
	return &FileSelectionStore{path: path}
}

func (s *FileSelectionStore) Load(ctx context.Context, teamID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.read()
	if err != nil {
		return nil, err
	}
	return state[teamID].SelectedChannelIDs, nil
}

func (s *FileSelectionStore) Save(ctx context.Context, teamID string, channelIDs []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	state, err := s.read()
	if err != nil {
		return err
	}
	state[teamID] = teamState{SelectedChannelIDs: dedupe(channelIDs)}
	return s.write(state)
}

func (s *FileSelectionStore) read() (map[string]teamState, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return map[string]teamState{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read selection state: %w", err)
	}
	state := map[string]teamState{}
	if len(data) == 0 {
		return state, nil
	}
	if err := json.Unmarshal(data, &state); err != nil {
		return nil, fmt.Errorf("decode selection state %s: %w", s.path, err)
	}
	return state, nil
}

// write replaces the file through a rename so readers never see a partial document.
func (s *FileSelectionStore) write(state map[string]teamState) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return err
	}
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".pulse-state-*")
	if err != nil {
		return fmt.Errorf("create temp state: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write temp state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
