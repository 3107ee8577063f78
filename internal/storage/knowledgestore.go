// Package storage provides the persistence layer for the knowledge base
// under knowledge/ in the base directory.
package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/kbdesk/kbdesk/pkg/models"
	"gopkg.in/yaml.v3"
)

// KnowledgeStoreManager defines the interface for reading and appending
// knowledge entries. Implementations must tolerate a missing backing file
// by starting empty; a malformed file is reported as a load error so the
// caller can degrade to an empty, still-queryable state. Implementations
// must be safe for concurrent use.
type KnowledgeStoreManager interface {
	// Load reads the knowledge base from disk. A missing file yields an
	// empty store and no error.
	Load() error
	// GetAllEntries returns a copy of the loaded entries in file order.
	GetAllEntries() ([]models.KnowledgeEntry, error)
	// AddEntry appends a new entry and persists the whole base. The entry
	// must have an ID already assigned (via GenerateID).
	AddEntry(entry models.KnowledgeEntry) (string, error)
	// GenerateID returns the next sequential entry ID (KB-XXXXX).
	GenerateID() (string, error)
	// Save persists the knowledge base to disk.
	Save() error
}

type fileKnowledgeStore struct {
	mu       sync.Mutex
	basePath string
	base     models.KnowledgeBase
}

// NewKnowledgeStoreManager creates a KnowledgeStoreManager backed by a YAML
// file under knowledge/ in the given base directory.
func NewKnowledgeStoreManager(basePath string) KnowledgeStoreManager {
	return &fileKnowledgeStore{
		basePath: basePath,
		base: models.KnowledgeBase{
			Version: "1.0",
			Entries: nil,
		},
	}
}

func (s *fileKnowledgeStore) knowledgeDir() string {
	return filepath.Join(s.basePath, "knowledge")
}

func (s *fileKnowledgeStore) baseFilePath() string {
	return filepath.Join(s.knowledgeDir(), "base.yaml")
}

func (s *fileKnowledgeStore) counterPath() string {
	return filepath.Join(s.basePath, ".kb_counter")
}

// GenerateID reads and increments the entry counter file, returning the
// next sequential ID in KB-XXXXX format.
func (s *fileKnowledgeStore) GenerateID() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	counterFile := s.counterPath()
	counter := 0

	data, err := os.ReadFile(counterFile)
	if err == nil {
		trimmed := strings.TrimSpace(string(data))
		if trimmed != "" {
			counter, err = strconv.Atoi(trimmed)
			if err != nil {
				return "", fmt.Errorf("generating entry ID: parsing counter: %w", err)
			}
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf("generating entry ID: reading counter: %w", err)
	}

	counter++
	id := fmt.Sprintf("KB-%05d", counter)

	if err := os.WriteFile(counterFile, []byte(strconv.Itoa(counter)), 0o600); err != nil {
		return "", fmt.Errorf("generating entry ID: writing counter: %w", err)
	}
	return id, nil
}

// AddEntry appends a knowledge entry and persists the base to disk.
func (s *fileKnowledgeStore) AddEntry(entry models.KnowledgeEntry) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entry.ID == "" {
		return "", fmt.Errorf("adding knowledge entry: ID must not be empty")
	}
	if strings.TrimSpace(entry.Question) == "" {
		return "", fmt.Errorf("adding knowledge entry: question must not be empty")
	}
	for _, existing := range s.base.Entries {
		if existing.ID == entry.ID {
			return "", fmt.Errorf("adding knowledge entry: %s already exists", entry.ID)
		}
	}
	if entry.Source == "" {
		entry.Source = models.SourceManual
	}

	s.base.Entries = append(s.base.Entries, entry)
	if err := s.saveLocked(); err != nil {
		return "", fmt.Errorf("adding knowledge entry: %w", err)
	}
	return entry.ID, nil
}

func (s *fileKnowledgeStore) GetAllEntries() ([]models.KnowledgeEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]models.KnowledgeEntry, len(s.base.Entries))
	copy(result, s.base.Entries)
	return result, nil
}

// Load reads the knowledge base from disk. A missing file is treated as an
// empty base; a malformed file is an error so the engine can degrade.
func (s *fileKnowledgeStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.base = models.KnowledgeBase{Version: "1.0"}

	data, err := os.ReadFile(s.baseFilePath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("loading knowledge base: %w", err)
	}
	if err := yaml.Unmarshal(data, &s.base); err != nil {
		return fmt.Errorf("loading knowledge base: parsing: %w", err)
	}
	if s.base.Version == "" {
		s.base.Version = "1.0"
	}
	return nil
}

// Save persists the knowledge base to disk.
func (s *fileKnowledgeStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveLocked()
}

func (s *fileKnowledgeStore) saveLocked() error {
	if err := os.MkdirAll(s.knowledgeDir(), 0o755); err != nil {
		return fmt.Errorf("saving knowledge base: creating directory: %w", err)
	}

	data, err := yaml.Marshal(&s.base)
	if err != nil {
		return fmt.Errorf("saving knowledge base: marshalling: %w", err)
	}
	if err := os.WriteFile(s.baseFilePath(), data, 0o600); err != nil {
		return fmt.Errorf("saving knowledge base: %w", err)
	}
	return nil
}
