package checkpoint

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"jiraminer/pkg/logger"
)

// Checkpoint is the durable marker of scrape progress for one project key.
// Invariant: LastOffset equals TotalFetched whenever a checkpoint is written,
// because a checkpoint is only saved after a page has been both fetched and
// persisted.
type Checkpoint struct {
	ProjectKey   string    `json:"project_key"`
	LastOffset   int       `json:"last_offset"`
	TotalFetched int       `json:"total_fetched"`
	TotalKnown   int       `json:"total_known"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Manager stores one checkpoint file per project key in a single directory.
type Manager struct {
	dir    string
	logger logger.Logger
}

// NewManager creates a checkpoint manager rooted at dir, creating the
// directory if absent.
func NewManager(dir string, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	return &Manager{dir: dir, logger: log}, nil
}

// Path returns the checkpoint file path for a project key.
func (m *Manager) Path(projectKey string) string {
	return filepath.Join(m.dir, fmt.Sprintf("%s_checkpoint.json", projectKey))
}

// Save writes the checkpoint atomically, overwriting any previous one for
// the same project key. UpdatedAt is stamped here.
func (m *Manager) Save(cp *Checkpoint) error {
	cp.UpdatedAt = time.Now()

	path := m.Path(cp.ProjectKey)
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create temporary checkpoint file: %w", err)
	}

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(cp); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to encode checkpoint: %w", err)
	}

	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to sync checkpoint file: %w", err)
	}

	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close checkpoint file: %w", err)
	}

	// Rename makes the write appear atomic to any reader.
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace checkpoint file: %w", err)
	}

	m.logger.DebugWithFields("checkpoint saved", map[string]interface{}{
		"project":       cp.ProjectKey,
		"last_offset":   cp.LastOffset,
		"total_fetched": cp.TotalFetched,
	})

	return nil
}

// Load returns the checkpoint for a project key, or nil when none exists.
// A file that cannot be read or parsed is treated as a cold start: logged as
// a warning, never fatal.
func (m *Manager) Load(projectKey string) (*Checkpoint, error) {
	path := m.Path(projectKey)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		m.logger.WarnWithFields("failed to read checkpoint, starting fresh", map[string]interface{}{
			"project": projectKey,
			"error":   err.Error(),
		})
		return nil, nil
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		m.logger.WarnWithFields("corrupt checkpoint, starting fresh", map[string]interface{}{
			"project": projectKey,
			"error":   err.Error(),
		})
		return nil, nil
	}

	m.logger.InfoWithFields("checkpoint loaded", map[string]interface{}{
		"project":       cp.ProjectKey,
		"last_offset":   cp.LastOffset,
		"total_fetched": cp.TotalFetched,
		"updated_at":    cp.UpdatedAt,
	})

	return &cp, nil
}

// Delete removes the checkpoint file for a project key. A missing file is a
// no-op, not an error.
func (m *Manager) Delete(projectKey string) error {
	if err := os.Remove(m.Path(projectKey)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}

	m.logger.InfoWithFields("checkpoint deleted", map[string]interface{}{
		"project": projectKey,
	})
	return nil
}

// Exists reports whether a checkpoint file exists for the project key.
func (m *Manager) Exists(projectKey string) bool {
	_, err := os.Stat(m.Path(projectKey))
	return err == nil
}

// LastOffset returns the next unfetched offset for a project key, zero when
// no checkpoint is present or loadable.
func (m *Manager) LastOffset(projectKey string) int {
	cp, err := m.Load(projectKey)
	if err != nil || cp == nil {
		return 0
	}
	return cp.LastOffset
}
