package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"seleniumacros/domain/entities"
	"seleniumacros/domain/interfaces"
)

// ErrNoReport is returned by LoadReport before any run was saved
var ErrNoReport = errors.New("no run report saved yet")

// MaxHistory bounds the number of reports kept in history.json
const MaxHistory = 50

type reportStore struct {
	mu          sync.Mutex
	lastPath    string
	historyPath string
}

// NewReportStore - creates a JSON file store under dir
func NewReportStore(dir string) (interfaces.ReportStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create report directory: %w", err)
	}

	return &reportStore{
		lastPath:    filepath.Join(dir, "last_run.json"),
		historyPath: filepath.Join(dir, "history.json"),
	}, nil
}

// SaveReport - writes the last run and appends it to the history
func (s *reportStore) SaveReport(report entities.RunReport) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode run report: %w", err)
	}
	if err := os.WriteFile(s.lastPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write run report: %w", err)
	}

	history, err := s.loadHistory()
	if err != nil {
		return err
	}
	history = append(history, report)
	if len(history) > MaxHistory {
		history = history[len(history)-MaxHistory:]
	}

	data, err = json.Marshal(history)
	if err != nil {
		return fmt.Errorf("failed to encode run history: %w", err)
	}
	return os.WriteFile(s.historyPath, data, 0644)
}

// LoadReport - loads the last run
func (s *reportStore) LoadReport() (entities.RunReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.lastPath)
	if err != nil {
		if os.IsNotExist(err) {
			return entities.RunReport{}, ErrNoReport
		}
		return entities.RunReport{}, err
	}

	var report entities.RunReport
	if err := json.Unmarshal(data, &report); err != nil {
		return entities.RunReport{}, fmt.Errorf("failed to decode run report: %w", err)
	}
	return report, nil
}

// LoadHistory - loads earlier runs, oldest first
func (s *reportStore) LoadHistory() ([]entities.RunReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadHistory()
}

func (s *reportStore) loadHistory() ([]entities.RunReport, error) {
	data, err := os.ReadFile(s.historyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return []entities.RunReport{}, nil
		}
		return nil, err
	}

	var history []entities.RunReport
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, fmt.Errorf("failed to decode run history: %w", err)
	}
	return history, nil
}
