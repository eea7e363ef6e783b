package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/pders01/podfeed/internal/config"
	"github.com/pders01/podfeed/internal/validation"
)

var (
	subscriptionsBucket = []byte("subscriptions")
	metaBucket          = []byte("metadata")

	schemaVersionKey = []byte("schema_version")
	schemaVersion    = []byte("1")
)

// ErrNotSubscribed is returned when removing a feed that was never stored.
var ErrNotSubscribed = errors.New("not subscribed")

type Store struct {
	db        *bolt.DB
	validator *validation.FeedURLValidator
	now       func() time.Time
}

// Open opens the database named by the config, creating its directory.
func Open(cfg *config.DatabaseConfig) (*Store, error) {
	if dir := filepath.Dir(cfg.Path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}
	return newStore(cfg.Path, cfg.Timeout)
}

func NewStore(dbPath string) (*Store, error) {
	return newStore(dbPath, 1*time.Second)
}

func newStore(dbPath string, timeout time.Duration) (*Store, error) {
	db, err := bolt.Open(dbPath, 0o600, &bolt.Options{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{subscriptionsBucket, metaBucket} {
			if _, createErr := tx.CreateBucketIfNotExists(bucket); createErr != nil {
				return createErr
			}
		}
		return tx.Bucket(metaBucket).Put(schemaVersionKey, schemaVersion)
	})

	if err != nil {
		db.Close()
		return nil, fmt.Errorf("creating buckets: %w", err)
	}

	return &Store{
		db:        db,
		validator: validation.NewPermissiveFeedURLValidator(),
		now:       time.Now,
	}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) normalize(url string) (string, error) {
	key, err := s.validator.ValidateAndNormalize(url)
	if err != nil {
		return "", fmt.Errorf("invalid feed URL %q: %w", url, err)
	}
	return key, nil
}

// Subscribe stores the feed URL. Subscribing twice keeps the first timestamp
// and updates the title when a new one is given.
func (s *Store) Subscribe(url, title string) (*Subscription, error) {
	key, err := s.normalize(url)
	if err != nil {
		return nil, err
	}

	sub := &Subscription{URL: key, Title: title, SubscribedAt: s.now().UTC()}
	err = s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(subscriptionsBucket)
		if existing := b.Get([]byte(key)); existing != nil {
			var prev Subscription
			if err := json.Unmarshal(existing, &prev); err == nil {
				sub.SubscribedAt = prev.SubscribedAt
				if title == "" {
					sub.Title = prev.Title
				}
			}
		}
		data, err := json.Marshal(sub)
		if err != nil {
			return err
		}
		return b.Put([]byte(key), data)
	})
	if err != nil {
		return nil, fmt.Errorf("saving subscription: %w", err)
	}
	return sub, nil
}

func (s *Store) Unsubscribe(url string) error {
	key, err := s.normalize(url)
	if err != nil {
		return err
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(subscriptionsBucket)
		if b.Get([]byte(key)) == nil {
			return fmt.Errorf("%s: %w", key, ErrNotSubscribed)
		}
		return b.Delete([]byte(key))
	})
}

// IsSubscribed satisfies feed.SubscriptionLookup.
func (s *Store) IsSubscribed(url string) (bool, error) {
	key, err := s.normalize(url)
	if err != nil {
		return false, err
	}

	var found bool
	err = s.db.View(func(tx *bolt.Tx) error {
		found = tx.Bucket(subscriptionsBucket).Get([]byte(key)) != nil
		return nil
	})
	return found, err
}

// List returns all subscriptions sorted by title, falling back to the URL.
func (s *Store) List() ([]*Subscription, error) {
	var subs []*Subscription
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(subscriptionsBucket)
		return b.ForEach(func(_ []byte, v []byte) error {
			var sub Subscription
			if err := json.Unmarshal(v, &sub); err != nil {
				return err
			}
			subs = append(subs, &sub)
			return nil
		})
	})
	sort.Slice(subs, func(i, j int) bool {
		ti := subs[i].Title
		tj := subs[j].Title
		if ti == "" {
			ti = subs[i].URL
		}
		if tj == "" {
			tj = subs[j].URL
		}
		return strings.ToLower(ti) < strings.ToLower(tj)
	})
	return subs, err
}
