package storage

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"jiraminer/pkg/logger"
)

// previewCount is the number of training examples written to the pretty
// inspection file alongside the JSONL output.
const previewCount = 10

// Manager owns the on-disk layout of raw page batches and processed
// training data. Batch files are immutable once written; re-running from a
// checkpoint overwrites the batch at the resumed offset's number.
type Manager struct {
	rawDir       string
	processedDir string
	logger       logger.Logger
}

// NewManager creates a storage manager, creating both directories if absent.
func NewManager(rawDir, processedDir string, log logger.Logger) (*Manager, error) {
	if log == nil {
		log = logger.GetLogger()
	}
	if err := os.MkdirAll(rawDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create raw data directory: %w", err)
	}
	if err := os.MkdirAll(processedDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create processed data directory: %w", err)
	}

	return &Manager{
		rawDir:       rawDir,
		processedDir: processedDir,
		logger:       log,
	}, nil
}

// RawDir returns the raw batch directory.
func (m *Manager) RawDir() string {
	return m.rawDir
}

// BatchPath returns the file path for a numbered batch of a project.
func (m *Manager) BatchPath(projectKey string, batchNumber int) string {
	return filepath.Join(m.rawDir, fmt.Sprintf("%s_batch_%d.json", projectKey, batchNumber))
}

// SaveBatch persists one page of raw records as a pretty-printed JSON array,
// written atomically via a temporary file.
func (m *Manager) SaveBatch(projectKey string, batchNumber int, issues []json.RawMessage) error {
	data, err := json.MarshalIndent(issues, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}

	path := m.BatchPath(projectKey, batchNumber)
	if err := writeFileAtomic(path, data); err != nil {
		return err
	}

	m.logger.InfoWithFields("batch saved", map[string]interface{}{
		"project": projectKey,
		"batch":   batchNumber,
		"issues":  len(issues),
		"path":    path,
	})

	return nil
}

// LoadBatch reads a batch file back into raw records.
func (m *Manager) LoadBatch(path string) ([]json.RawMessage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read batch file: %w", err)
	}

	var issues []json.RawMessage
	if err := json.Unmarshal(data, &issues); err != nil {
		return nil, fmt.Errorf("failed to parse batch file %s: %w", path, err)
	}

	return issues, nil
}

// ListBatches returns the batch file paths for a project, sorted by batch
// number.
func (m *Manager) ListBatches(projectKey string) ([]string, error) {
	entries, err := os.ReadDir(m.rawDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read raw data directory: %w", err)
	}

	prefix := projectKey + "_batch_"
	type batch struct {
		number int
		path   string
	}
	var batches []batch
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		var number int
		if _, err := fmt.Sscanf(strings.TrimPrefix(name, prefix), "%d.json", &number); err != nil {
			continue
		}
		batches = append(batches, batch{number: number, path: filepath.Join(m.rawDir, name)})
	}

	sort.Slice(batches, func(i, j int) bool { return batches[i].number < batches[j].number })

	paths := make([]string, len(batches))
	for i, b := range batches {
		paths[i] = b.path
	}
	return paths, nil
}

// TrainingDataPath returns the JSONL output path for a project.
func (m *Manager) TrainingDataPath(projectKey string) string {
	return filepath.Join(m.processedDir, fmt.Sprintf("%s_training_data.jsonl", projectKey))
}

// SaveTrainingData writes training examples as JSONL, plus a pretty-printed
// preview of the first few examples for inspection.
func (m *Manager) SaveTrainingData(projectKey string, examples []interface{}) error {
	path := m.TrainingDataPath(projectKey)
	tempPath := path + ".tmp"

	file, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create training data file: %w", err)
	}

	w := bufio.NewWriter(file)
	for _, example := range examples {
		line, err := json.Marshal(example)
		if err != nil {
			file.Close()
			os.Remove(tempPath)
			return fmt.Errorf("failed to marshal training example: %w", err)
		}
		w.Write(line)
		w.WriteByte('\n')
	}

	if err := w.Flush(); err != nil {
		file.Close()
		os.Remove(tempPath)
		return fmt.Errorf("failed to flush training data: %w", err)
	}
	if err := file.Close(); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to close training data file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to replace training data file: %w", err)
	}

	if err := m.savePreview(projectKey, examples); err != nil {
		// The preview is a convenience artifact; the JSONL already landed.
		m.logger.WithError(err).Warn("failed to save training data preview")
	}

	m.logger.InfoWithFields("training data saved", map[string]interface{}{
		"project":  projectKey,
		"examples": len(examples),
		"path":     path,
	})

	return nil
}

func (m *Manager) savePreview(projectKey string, examples []interface{}) error {
	preview := examples
	if len(preview) > previewCount {
		preview = preview[:previewCount]
	}

	data, err := json.MarshalIndent(preview, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal preview: %w", err)
	}

	path := filepath.Join(m.processedDir, fmt.Sprintf("%s_training_data_pretty.json", projectKey))
	return writeFileAtomic(path, data)
}

// writeFileAtomic writes data to path via a temporary file and rename.
func writeFileAtomic(path string, data []byte) error {
	tempPath := path + ".tmp"

	if err := os.WriteFile(tempPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to rename temporary file: %w", err)
	}

	return nil
}
