package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"github.com/lizzypokerface/news-hub-aggregator/internal/logging"
	"github.com/lizzypokerface/news-hub-aggregator/internal/services"
)

const (
	checkpointDir = "checkpoints"
	lockFile      = ".lock"
)

// Manager owns one run's workspace directory.
type Manager struct {
	dir    string
	date   time.Time
	logger *slog.Logger

	mu          sync.Mutex
	checkpoints map[string]struct{}
}

// New creates the workspace for date under root and caches its checkpoint
// listing.
func New(root string, date time.Time, logger *slog.Logger) (*Manager, error) {
	if strings.TrimSpace(root) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "workspace", "create", "output directory is empty", nil)
	}
	dir := filepath.Join(root, DirName(date))
	if err := os.MkdirAll(filepath.Join(dir, checkpointDir), 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workspace", "create", "create workspace directory", err)
	}
	m := &Manager{
		dir:         dir,
		date:        date,
		logger:      logging.NewComponentLogger(logger, "workspace"),
		checkpoints: make(map[string]struct{}),
	}
	if err := m.refresh(); err != nil {
		return nil, err
	}
	m.logger.Debug("workspace ready",
		logging.String("dir", dir),
		logging.Int("checkpoints", len(m.checkpoints)),
	)
	return m, nil
}

// Dir returns the workspace directory.
func (m *Manager) Dir() string { return m.dir }

// Date returns the run date the workspace was derived from.
func (m *Manager) Date() time.Time { return m.date }

func (m *Manager) refresh() error {
	entries, err := os.ReadDir(filepath.Join(m.dir, checkpointDir))
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "workspace", "list checkpoints", m.dir, err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.checkpoints = make(map[string]struct{}, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		m.checkpoints[strings.TrimSuffix(name, ".json")] = struct{}{}
	}
	return nil
}

// HasCheckpoint reports whether key has been checkpointed. It answers from the
// cached listing without touching the disk.
func (m *Manager) HasCheckpoint(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.checkpoints[key]
	return ok
}

// Checkpoints returns the cached checkpoint keys in sorted order.
func (m *Manager) Checkpoints() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.checkpoints))
	for key := range m.checkpoints {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// SaveCheckpoint JSON-encodes payload under key. A failure is logged and
// swallowed: the phase simply redoes on the next run.
func (m *Manager) SaveCheckpoint(key string, payload any) {
	path := m.checkpointPath(key)
	data, err := json.MarshalIndent(payload, "", "  ")
	if err == nil {
		err = writeAtomic(path, data)
	}
	if err != nil {
		logging.ErrorWithContext(m.logger, "checkpoint write failed", "checkpoint_save_failed",
			logging.String("key", key),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check free space and permissions on the workspace"),
		)
		return
	}
	m.mu.Lock()
	m.checkpoints[key] = struct{}{}
	m.mu.Unlock()
	m.logger.Info("checkpoint saved",
		logging.String(logging.FieldEventType, "checkpoint_saved"),
		logging.String("key", key),
	)
}

// LoadCheckpoint decodes the checkpoint for key into dst. It returns false
// when the checkpoint was never written or cannot be decoded; a corrupt file
// is logged and evicted from the cache so the phase redoes.
func (m *Manager) LoadCheckpoint(key string, dst any) bool {
	raw, ok := m.LoadCheckpointRaw(key)
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		m.corrupt(key, err)
		return false
	}
	return true
}

// LoadCheckpointRaw returns the stored JSON for key without decoding it.
func (m *Manager) LoadCheckpointRaw(key string) (json.RawMessage, bool) {
	data, err := os.ReadFile(m.checkpointPath(key))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			m.corrupt(key, err)
		} else {
			m.evict(key)
		}
		return nil, false
	}
	if !json.Valid(data) {
		m.corrupt(key, errors.New("invalid JSON"))
		return nil, false
	}
	return json.RawMessage(data), true
}

func (m *Manager) corrupt(key string, err error) {
	logging.ErrorWithContext(m.logger, "checkpoint unreadable", "checkpoint_corrupt",
		logging.String("key", key),
		logging.Error(err),
		logging.String(logging.FieldErrorHint, "the phase will be redone; delete the file to silence this"),
	)
	m.evict(key)
}

func (m *Manager) evict(key string) {
	m.mu.Lock()
	delete(m.checkpoints, key)
	m.mu.Unlock()
}

// SaveReport writes a report under name, creating sub-directories as needed.
func (m *Manager) SaveReport(name, text string) error {
	path, err := m.reportPath(name)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return services.Wrap(services.ErrExternalTool, "workspace", "save report", name, err)
	}
	if err := writeAtomic(path, []byte(text)); err != nil {
		return services.Wrap(services.ErrExternalTool, "workspace", "save report", name, err)
	}
	m.logger.Info("report saved",
		logging.String(logging.FieldEventType, "report_saved"),
		logging.String("report", name),
		logging.Int("bytes", len(text)),
	)
	return nil
}

// LoadReport returns the report text, or "" when it does not exist.
func (m *Manager) LoadReport(name string) string {
	path, err := m.reportPath(name)
	if err != nil {
		return ""
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			m.logger.Warn("report unreadable",
				logging.String("report", name),
				logging.Error(err),
			)
		}
		return ""
	}
	return string(data)
}

// ReportNames lists report files directly under subdir, sorted, as names
// usable with LoadReport.
func (m *Manager) ReportNames(subdir string) []string {
	base, err := m.reportPath(subdir)
	if err != nil {
		return nil
	}
	entries, err := os.ReadDir(base)
	if err != nil {
		return nil
	}
	var names []string
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") || strings.HasSuffix(entry.Name(), ".tmp") {
			continue
		}
		names = append(names, filepath.ToSlash(filepath.Join(subdir, entry.Name())))
	}
	sort.Strings(names)
	return names
}

// Path returns the absolute path for an artifact owned by another component.
func (m *Manager) Path(name string) string {
	return filepath.Join(m.dir, filepath.FromSlash(name))
}

// Lock takes the single-run lock for this workspace. The returned release
// function is safe to call more than once.
func (m *Manager) Lock() (func(), error) {
	lock := flock.New(filepath.Join(m.dir, lockFile))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "workspace", "lock", m.dir, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, "workspace", "lock", "another run is using "+m.dir, nil)
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			if err := lock.Unlock(); err != nil {
				m.logger.Warn("workspace unlock failed", logging.Error(err))
			}
		})
	}, nil
}

func (m *Manager) checkpointPath(key string) string {
	return filepath.Join(m.dir, checkpointDir, key+".json")
}

func (m *Manager) reportPath(name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimSpace(name)))
	if cleaned == "." || cleaned == "" || filepath.IsAbs(cleaned) || strings.HasPrefix(cleaned, "..") {
		return "", services.Wrap(services.ErrValidation, "workspace", "report path", fmt.Sprintf("invalid report name %q", name), nil)
	}
	return filepath.Join(m.dir, cleaned), nil
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}
