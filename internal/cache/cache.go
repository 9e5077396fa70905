// Package cache keeps one CSV snapshot per processing stage in a data directory.
package cache

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/google/uuid"

	"devsurvey/internal/frame"
	"devsurvey/internal/logger"
	"devsurvey/internal/normalizer"
	"devsurvey/pkg/metadata"
)

// Stage names a cached snapshot.
type Stage string

// Known stages.
const (
	Raw      Stage = "raw"
	Wide     Stage = "wide"
	Salaries Stage = "salaries"
)

// Cache errors.
var (
	ErrUnknownStage = errors.New("unknown stage")
	ErrCacheMiss    = fmt.Errorf("cache miss: %w", fs.ErrNotExist)
)

var files = map[Stage]string{
	Raw:      "merged_stack_raw.csv",
	Wide:     "merged_stack_wide.csv",
	Salaries: "combined_salaries.csv",
}

// Stages lists the known stages in build order.
func Stages() []Stage {
	return []Stage{Raw, Wide, Salaries}
}

// ParseStage validates a stage name.
func ParseStage(name string) (Stage, error) {
	s := Stage(name)
	if _, ok := files[s]; !ok {
		return "", fmt.Errorf("%w: %q (want raw, wide or salaries)", ErrUnknownStage, name)
	}

	return s, nil
}

// FileName returns the snapshot file name for stage.
func (s Stage) FileName() (string, error) {
	name, ok := files[s]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownStage, string(s))
	}

	return name, nil
}

// Types returns the column types applied when a stage is loaded. Columns not
// listed are strings.
func (s Stage) Types() map[string]series.Type {
	switch s {
	case Raw, Wide:
		types := map[string]series.Type{
			normalizer.ColYear:         series.Int,
			normalizer.ColAnnualSalary: series.Float,
		}
		for _, avg := range normalizer.AverageColumns {
			types[avg.Target] = series.Float
		}

		return types
	case Salaries:
		return map[string]series.Type{
			"Annual Salary": series.Int,
			"Monthly Pay":   series.Int,
			"Weekly Pay":    series.Int,
			"Hourly Wage":   series.Float,
		}
	default:
		return nil
	}
}

// Manager reads and writes stage snapshots and their manifest.
type Manager struct {
	dir    string
	runID  string
	logger *logger.Logger
	mu     sync.Mutex
}

// NewManager creates a manager rooted at dir. The directory is created on
// first save.
func NewManager(dir string, log *logger.Logger) *Manager {
	return &Manager{
		dir:    dir,
		runID:  uuid.NewString(),
		logger: log.Component("cache"),
	}
}

// Dir returns the data directory.
func (m *Manager) Dir() string {
	return m.dir
}

// RunID identifies the process that wrote snapshots in this session.
func (m *Manager) RunID() string {
	return m.runID
}

// Path returns the snapshot path for stage.
func (m *Manager) Path(stage Stage) (string, error) {
	name, err := stage.FileName()
	if err != nil {
		return "", err
	}

	return filepath.Join(m.dir, name), nil
}

// Exists reports whether a snapshot for stage is on disk.
func (m *Manager) Exists(stage Stage) bool {
	path, err := m.Path(stage)
	if err != nil {
		return false
	}

	info, err := os.Stat(path)

	return err == nil && !info.IsDir()
}

// Remove deletes the snapshot for stage and its manifest entry. A missing
// snapshot is not an error.
func (m *Manager) Remove(stage Stage) error {
	path, err := m.Path(stage)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to remove %s: %w", path, err)
	} else if err == nil {
		m.logger.Info("Deleted existing snapshot", "stage", stage, "path", path)
	}

	return m.updateManifest(func(man *metadata.Manifest) error {
		man.Forget(string(stage))

		return nil
	})
}

// Save writes df as the snapshot for stage and records it in the manifest.
func (m *Manager) Save(stage Stage, df dataframe.DataFrame) error {
	path, err := m.Path(stage)
	if err != nil {
		return err
	}

	if err := frame.WriteCSVFile(path, df); err != nil {
		return fmt.Errorf("failed to save %s snapshot: %w", stage, err)
	}

	err = m.updateManifest(func(man *metadata.Manifest) error {
		_, err := man.Sign(string(stage), path, df.Nrow(), df.Ncol(), m.runID)

		return err
	})
	if err != nil {
		return err
	}

	m.logger.Info("Saved snapshot", "stage", stage, "path", path, "rows", df.Nrow(), "cols", df.Ncol())

	return nil
}

// Load reads the snapshot for stage with its column types.
func (m *Manager) Load(stage Stage) (dataframe.DataFrame, error) {
	path, err := m.Path(stage)
	if err != nil {
		return dataframe.DataFrame{}, err
	}

	if !m.Exists(stage) {
		return dataframe.DataFrame{}, fmt.Errorf("%w: %s snapshot %s not found, run build to generate it",
			ErrCacheMiss, stage, path)
	}

	df, err := frame.ReadCSVFile(path, stage.Types())
	if err != nil {
		return df, fmt.Errorf("failed to load %s snapshot: %w", stage, err)
	}

	m.logger.Debug("Loaded snapshot", "stage", stage, "rows", df.Nrow(), "cols", df.Ncol())

	return df, nil
}

// Verify checks the snapshot for stage against its manifest hash.
func (m *Manager) Verify(stage Stage) error {
	path, err := m.Path(stage)
	if err != nil {
		return err
	}

	man, err := m.Manifest()
	if err != nil {
		return err
	}

	if _, err := man.Verify(string(stage), path); err != nil {
		return fmt.Errorf("%s: %w", stage, err)
	}

	return nil
}

// Manifest reads the current manifest.
func (m *Manager) Manifest() (*metadata.Manifest, error) {
	return metadata.Load(m.manifestPath())
}

func (m *Manager) manifestPath() string {
	return filepath.Join(m.dir, metadata.FileName)
}

func (m *Manager) updateManifest(fn func(*metadata.Manifest) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	man, err := metadata.Load(m.manifestPath())
	if err != nil {
		return err
	}

	if err := fn(man); err != nil {
		return err
	}

	if len(man.Entries) == 0 {
		if _, err := os.Stat(m.dir); errors.Is(err, fs.ErrNotExist) {
			return nil
		}
	}

	return man.Save(m.manifestPath())
}
