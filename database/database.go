package database

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fulldump/labgrid/collection"
	"github.com/fulldump/labgrid/logger"
	"github.com/fulldump/labgrid/utils"
)

const (
	StatusOpening   = "opening"
	StatusOperating = "operating"
	StatusClosing   = "closing"
)

var (
	ErrCollectionExists   = errors.New("collection already exists")
	ErrCollectionNotFound = errors.New("collection not found")
)

type Config struct {
	Dir string
}

type Database struct {
	config      *Config
	status      string
	mutex       sync.RWMutex
	collections map[string]*collection.Collection
	exit        chan struct{}
	exitOnce    sync.Once
}

func NewDatabase(config *Config) *Database {
	s := &Database{
		config:      config,
		status:      StatusOpening,
		collections: map[string]*collection.Collection{},
		exit:        make(chan struct{}),
	}

	return s
}

func (db *Database) GetStatus() string {
	db.mutex.RLock()
	defer db.mutex.RUnlock()
	return db.status
}

func (db *Database) setStatus(status string) {
	db.mutex.Lock()
	db.status = status
	db.mutex.Unlock()
}

func (db *Database) GetCollection(name string) (*collection.Collection, error) {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	col, exists := db.collections[name]
	if !exists {
		return nil, fmt.Errorf("%w: '%s'", ErrCollectionNotFound, name)
	}
	return col, nil
}

func (db *Database) ListCollections() []string {
	db.mutex.RLock()
	defer db.mutex.RUnlock()

	return utils.GetKeys(db.collections)
}

func (db *Database) CreateCollection(name string) (*collection.Collection, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if _, exists := db.collections[name]; exists {
		return nil, fmt.Errorf("%w: '%s'", ErrCollectionExists, name)
	}
	return db.openLocked(name)
}

// GetOrCreateCollection returns the named collection, opening it when the
// database has not loaded it yet.
func (db *Database) GetOrCreateCollection(name string) (*collection.Collection, error) {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	if col, exists := db.collections[name]; exists {
		return col, nil
	}
	return db.openLocked(name)
}

func (db *Database) openLocked(name string) (*collection.Collection, error) {
	if err := os.MkdirAll(db.config.Dir, 0755); err != nil {
		return nil, err
	}

	filename := path.Join(db.config.Dir, name)
	col, err := collection.OpenCollection(filename)
	if err != nil {
		return nil, err
	}

	db.collections[name] = col

	return col, nil
}

func (db *Database) DropCollection(name string) error {
	db.mutex.Lock()
	defer db.mutex.Unlock()

	col, exists := db.collections[name]
	if !exists {
		return fmt.Errorf("%w: '%s'", ErrCollectionNotFound, name)
	}

	delete(db.collections, name)

	return col.Drop()
}

// Load opens every collection file found under Dir.
func (db *Database) Load() error {

	log := logger.Get()
	log.Info("loading database", "dir", db.config.Dir)

	dir := db.config.Dir
	err := os.MkdirAll(dir, 0755)
	if err != nil {
		db.setStatus(StatusClosing)
		return err
	}
	err = filepath.WalkDir(dir, func(filename string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		name := filename
		name = strings.TrimPrefix(name, dir)
		name = strings.TrimPrefix(name, "/")

		db.mutex.RLock()
		_, loaded := db.collections[name]
		db.mutex.RUnlock()
		if loaded {
			return nil
		}

		t0 := time.Now()
		col, err := collection.OpenCollection(filename)
		if err != nil {
			log.Error("open collection", "filename", filename, "err", err)
			return err
		}
		log.Info("collection loaded", "name", name, "rows", col.Len(), "took", time.Since(t0))

		db.mutex.Lock()
		db.collections[name] = col
		db.mutex.Unlock()

		return nil
	})

	if err != nil {
		db.setStatus(StatusClosing)
		return err
	}

	db.setStatus(StatusOperating)

	return nil
}

// Start loads the database and blocks until Stop is called.
func (db *Database) Start() error {

	if err := db.Load(); err != nil {
		return err
	}

	<-db.exit

	return nil
}

func (db *Database) Stop() error {

	defer db.exitOnce.Do(func() { close(db.exit) })

	db.mutex.Lock()
	defer db.mutex.Unlock()

	db.status = StatusClosing

	log := logger.Get()

	var errs []error
	for name, col := range db.collections {
		log.Info("closing collection", "name", name)
		err := col.Close()
		if err != nil {
			log.Error("close collection", "name", name, "err", err)
			errs = append(errs, fmt.Errorf("close '%s': %w", name, err))
		}
	}

	return errors.Join(errs...)
}
