package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/san-kum/rocketmc/internal/campaign"
	"github.com/san-kum/rocketmc/internal/config"
)

const ManifestFile = "campaign.json"

var ErrNoManifest = errors.New("storage: no campaign manifest")

// Manifest records how a campaign was configured and how it ended. It sits
// next to the worker directories at the campaign root.
type Manifest struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Timestamp time.Time        `json:"timestamp"`
	Root      string           `json:"root"`
	Config    *config.Config   `json:"config"`
	Report    *campaign.Report `json:"report"`
}

func NewManifest(root string, cfg *config.Config, report *campaign.Report) *Manifest {
	m := &Manifest{
		Name:      filepath.Base(root),
		Timestamp: time.Now(),
		Root:      root,
		Config:    cfg,
		Report:    report,
	}
	if report != nil {
		m.ID = report.ID
		if !report.Finished.IsZero() {
			m.Timestamp = report.Finished
		}
	}
	return m
}

func WriteManifest(root string, m *Manifest) error {
	if err := os.MkdirAll(root, 0755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(root, ManifestFile))
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(m); err != nil {
		return err
	}
	return f.Close()
}

func ReadManifest(root string) (*Manifest, error) {
	data, err := os.ReadFile(filepath.Join(root, ManifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w in %s", ErrNoManifest, root)
		}
		return nil, err
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", ManifestFile, err)
	}
	return &m, nil
}

// Store indexes campaigns kept as sibling directories under one base dir.
type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

func (s *Store) Path(name string) string {
	return filepath.Join(s.baseDir, name)
}

func (s *Store) Save(name string, m *Manifest) error {
	return WriteManifest(s.Path(name), m)
}

// List returns every readable manifest, newest first. Directories without a
// manifest are skipped.
func (s *Store) List() ([]Manifest, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []Manifest{}, nil
		}
		return nil, err
	}

	runs := make([]Manifest, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		m, err := ReadManifest(s.Path(entry.Name()))
		if err != nil {
			continue
		}
		m.Name = entry.Name()
		runs = append(runs, *m)
	}

	sort.SliceStable(runs, func(i, j int) bool {
		return runs[i].Timestamp.After(runs[j].Timestamp)
	})
	return runs, nil
}

func (s *Store) Load(name string) (*Manifest, error) {
	m, err := ReadManifest(s.Path(name))
	if err != nil {
		return nil, err
	}
	m.Name = name
	return m, nil
}
