package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	bolt "go.etcd.io/bbolt"
)

var (
	metaBucket    = []byte("metadata")
	storiesBucket = []byte("stories")
)

// ErrNotFound is returned when a key or story does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *bolt.DB
}

func NewStore(dbPath string) (*Store, error) {
	return NewStoreWithTimeout(dbPath, 1*time.Second)
}

// NewStoreWithTimeout opens the database, waiting at most timeout for the
// file lock held by another process.
func NewStoreWithTimeout(dbPath string, timeout time.Duration) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{metaBucket, storiesBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return nil
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// GetValue reads a metadata entry. The boolean is false when the key has
// never been written.
func (s *Store) GetValue(key string) (string, bool, error) {
	var (
		value string
		found bool
	)
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(metaBucket).Get([]byte(key))
		if data == nil {
			return nil
		}
		value, found = string(data), true
		return nil
	})
	return value, found, err
}

// PutValue writes a metadata entry.
func (s *Store) PutValue(key, value string) error {
	if key == "" {
		return fmt.Errorf("metadata key cannot be empty")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(metaBucket).Put([]byte(key), []byte(value))
	})
}

func (s *Store) SaveStories(stories []*Story) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(storiesBucket)
		for _, story := range stories {
			if story.ID == "" {
				continue
			}
			data, err := json.Marshal(story)
			if err != nil {
				return err
			}
			if err := b.Put([]byte(story.ID), data); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) GetStory(id string) (*Story, error) {
	var story Story
	err := s.db.View(func(tx *bolt.Tx) error {
		data := tx.Bucket(storiesBucket).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("story %s: %w", id, ErrNotFound)
		}
		return json.Unmarshal(data, &story)
	})
	if err != nil {
		return nil, err
	}
	return &story, nil
}

// GetStories returns archived stories, most recently fetched first. A limit
// of zero or less returns everything.
func (s *Store) GetStories(limit int) ([]*Story, error) {
	var stories []*Story
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(storiesBucket)
		return b.ForEach(func(_ []byte, v []byte) error {
			var story Story
			if err := json.Unmarshal(v, &story); err != nil {
				return nil
			}
			stories = append(stories, &story)
			return nil
		})
	})
	sort.SliceStable(stories, func(i, j int) bool {
		return stories[i].FetchedAt.After(stories[j].FetchedAt)
	})
	if limit > 0 && len(stories) > limit {
		stories = stories[:limit]
	}
	return stories, err
}

func (s *Store) CountStories() (int, error) {
	var n int
	err := s.db.View(func(tx *bolt.Tx) error {
		n = tx.Bucket(storiesBucket).Stats().KeyN
		return nil
	})
	return n, err
}

// ClearStories empties the archive. The persisted search term is kept.
func (s *Store) ClearStories() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		if err := tx.DeleteBucket(storiesBucket); err != nil {
			return err
		}
		_, err := tx.CreateBucket(storiesBucket)
		return err
	})
}
