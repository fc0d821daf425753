package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/c2FmZQ/storage"
	"github.com/c2FmZQ/storage/crypto"
	"go.uber.org/zap"

	"github.com/DoyleJ11/dualstrike/internal/engine"
)

const (
	matchesDir    = "matches"
	masterKeyFile = "master.key"
)

// matchFile is the on-disk envelope. SchemaVersion guards future layout
// changes.
type matchFile struct {
	SchemaVersion int          `json:"schemaVersion"`
	Match         engine.Match `json:"match"`
}

const fileSchemaVersion = 1

// File stores one data file per match under DataDir/matches, compressed and
// encrypted when a master key is configured.
type File struct {
	DataDir string
	storage *storage.Storage
	logger  *zap.Logger
	locks   sync.Map // match id -> *sync.Mutex
}

func NewFile(dataDir string, masterKey crypto.MasterKey, logger *zap.Logger) (*File, error) {
	if err := os.MkdirAll(filepath.Join(dataDir, matchesDir), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	s := storage.New(dataDir, masterKey)
	s.EnableCompression(true)
	return &File{DataDir: dataDir, storage: s, logger: logger.Named("filestore")}, nil
}

// OpenMasterKey loads DataDir/master.key with passphrase, creating it on
// first use. An empty passphrase with an existing key file is refused so
// encrypted data is never read or overwritten in the clear.
func OpenMasterKey(dataDir, passphrase string, logger *zap.Logger) (crypto.MasterKey, error) {
	keyFile := filepath.Join(dataDir, masterKeyFile)
	if passphrase == "" {
		if _, err := os.Stat(keyFile); err == nil {
			return nil, fmt.Errorf("%s exists but no passphrase is set", keyFile)
		}
		logger.Warn("no master key passphrase, match files are stored unencrypted")
		return nil, nil
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	mk, err := crypto.ReadMasterKey([]byte(passphrase), keyFile)
	if err == nil {
		logger.Info("loaded master encryption key")
		return mk, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("read master key: %w", err)
	}

	mk, err = crypto.CreateMasterKey()
	if err != nil {
		return nil, fmt.Errorf("create master key: %w", err)
	}
	if err := mk.Save([]byte(passphrase), keyFile); err != nil {
		return nil, fmt.Errorf("save master key: %w", err)
	}
	logger.Info("initialized new master encryption key")
	return mk, nil
}

func matchFilename(id string) string {
	return filepath.Join(matchesDir, url.PathEscape(id)+".json")
}

func (s *File) lock(id string) func() {
	l, _ := s.locks.LoadOrStore(id, &sync.Mutex{})
	mu := l.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (s *File) SaveMatch(ctx context.Context, m engine.Match) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	defer s.lock(m.ID)()

	doc := matchFile{SchemaVersion: fileSchemaVersion, Match: m}
	if err := s.storage.SaveDataFile(matchFilename(m.ID), &doc); err != nil {
		return fmt.Errorf("storage.SaveDataFile: %w", err)
	}
	return nil
}

func (s *File) LoadMatch(ctx context.Context, id string) (engine.Match, error) {
	if err := ctx.Err(); err != nil {
		return engine.Match{}, err
	}
	defer s.lock(id)()
	return s.read(matchFilename(id))
}

func (s *File) read(filename string) (engine.Match, error) {
	var doc matchFile
	if err := s.storage.ReadDataFile(filename, &doc); err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return engine.Match{}, fmt.Errorf("%w: %s", ErrNotFound, filename)
		}
		return engine.Match{}, fmt.Errorf("storage.ReadDataFile: %w", err)
	}
	if doc.SchemaVersion != fileSchemaVersion {
		return engine.Match{}, fmt.Errorf("%s: unsupported schema version %d", filename, doc.SchemaVersion)
	}
	return doc.Match, nil
}

// ListMatches reads every match file. Unreadable files are logged and
// skipped.
func (s *File) ListMatches(ctx context.Context) ([]Summary, error) {
	entries, err := os.ReadDir(filepath.Join(s.DataDir, matchesDir))
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read matches directory: %w", err)
	}

	out := make([]Summary, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		m, err := s.read(filepath.Join(matchesDir, e.Name()))
		if err != nil {
			s.logger.Warn("skipping match file", zap.String("file", e.Name()), zap.Error(err))
			continue
		}
		out = append(out, summarize(m))
	}
	sortSummaries(out)
	return out, nil
}

func (s *File) Close() error { return nil }
