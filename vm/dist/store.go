package dist

import (
	"fmt"
	"os"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/chazu/tanuki/vm"
)

var bucketModules = []byte("modules")

// Store persists serialized modules in a bolt database keyed by module
// name. A Store is safe for concurrent use; the engines loading from it are
// not.
type Store struct {
	db *bolt.DB
}

// OpenStore opens or creates a module database at path.
func OpenStore(path string) (*Store, error) {
	db, err := bolt.Open(path, os.FileMode(0644), &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("dist: open store: %w", err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketModules)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("dist: init store: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put serializes and saves a module under its name, replacing any previous
// version.
func (s *Store) Put(m *vm.Module) error {
	if m.Name == "" {
		return fmt.Errorf("dist: refusing to store a nameless module")
	}
	data, err := MarshalModule(m)
	if err != nil {
		return fmt.Errorf("dist: marshal %q: %w", m.Name, err)
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketModules).Put([]byte(m.Name), data)
	})
}

// Get loads the module stored under name. The boolean is false when no such
// module exists.
func (s *Store) Get(name string) (*vm.Module, bool, error) {
	var data []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(bucketModules).Get([]byte(name)); v != nil {
			data = append(data, v...)
		}
		return nil
	})
	if err != nil {
		return nil, false, fmt.Errorf("dist: get %q: %w", name, err)
	}
	if data == nil {
		return nil, false, nil
	}
	m, err := UnmarshalModule(data)
	if err != nil {
		return nil, false, err
	}
	return m, true, nil
}

// Delete removes the module stored under name. Deleting a missing module is
// not an error.
func (s *Store) Delete(name string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketModules).Delete([]byte(name))
	})
}

// Names lists the stored module names in key order.
func (s *Store) Names() ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketModules).ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("dist: list modules: %w", err)
	}
	return names, nil
}
