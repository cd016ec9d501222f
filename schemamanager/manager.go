package schemamanager

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/dot5enko/metatable/schema"
	"golang.org/x/sync/singleflight"
)

// SchemaManager caches schema files by path. Concurrent loads of the same file
// share one read.
type SchemaManager struct {
	schemas map[string]*Schema
	locker  sync.RWMutex

	loadGroup singleflight.Group
}

func NewSchemaManager() *SchemaManager {
	return &SchemaManager{
		schemas: map[string]*Schema{},
	}
}

func (sm *SchemaManager) Get(path string) (*Schema, error) {
	key, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	sm.locker.RLock()
	defer sm.locker.RUnlock()

	s, ok := sm.schemas[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, path)
	}
	return s, nil
}

func (sm *SchemaManager) LoadFile(path string) (*Schema, error) {

	if cached, err := sm.Get(path); err == nil {
		return cached, nil
	}

	key, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}

	result, err, _ := sm.loadGroup.Do(key, func() (any, error) {

		// a flight that finished after our cache check may have stored it already
		if cached, err := sm.Get(key); err == nil {
			return cached, nil
		}

		data, err := os.ReadFile(key)
		if err != nil {
			return nil, err
		}

		loaded, err := Load(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}

		if loaded.Id == "" {
			loaded.Id = filepath.Base(path)
		}

		sm.locker.Lock()
		sm.schemas[key] = loaded
		sm.locker.Unlock()

		log.Printf("loaded schema '%s' with %d classes from %s", loaded.Id, len(loaded.Classes), path)

		return loaded, nil
	})

	if err != nil {
		return nil, err
	}

	return result.(*Schema), nil
}

// Class loads the schema at path and resolves one class from it.
func (sm *SchemaManager) Class(path, classId string) (*schema.Class, error) {
	s, err := sm.LoadFile(path)
	if err != nil {
		return nil, err
	}

	class, ok := s.Class(classId)
	if !ok {
		return nil, fmt.Errorf("%w: class '%s' in %s", ErrSchemaNotFound, classId, path)
	}
	return class, nil
}
