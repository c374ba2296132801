package store

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/amosWeiskopf/indexsmith/internal/models"
)

var (
	metaBucket    = []byte("meta")
	pagesBucket   = []byte("pages")
	visitedBucket = []byte("visited")
	indexBucket   = []byte("index")

	snapshotKey = []byte("snapshot")

	// hashedWordPrefix marks index keys of words too long to be bolt keys.
	// Words are letters and digits only, so no word starts with it.
	hashedWordPrefix = []byte("#sha256:")
)

// postingsRecord is the stored value of an index key. Word is only set
// when the key is a hash of it.
type postingsRecord struct {
	Word  string         `json:"word,omitempty"`
	Pages map[string]int `json:"pages"`
}

// wordKey returns the index key for word: the word itself, or a hash of
// it when it would exceed bolt's key size limit.
func wordKey(word string) ([]byte, bool) {
	if len(word) <= bolt.MaxKeySize {
		return []byte(word), false
	}
	sum := sha256.Sum256([]byte(word))
	return fmt.Appendf(append([]byte(nil), hashedWordPrefix...), "%x", sum), true
}

// BoltStore keeps the snapshot in a bbolt database, one key per page and
// per word.
type BoltStore struct {
	db   *bolt.DB
	path string
}

func OpenBolt(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt store %s: %w", path, err)
	}
	return &BoltStore{db: db, path: path}, nil
}

// Save replaces the stored snapshot in a single transaction
func (s *BoltStore) Save(snap *models.Snapshot) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		buckets := make(map[string]*bolt.Bucket)
		for _, name := range [][]byte{metaBucket, pagesBucket, visitedBucket, indexBucket} {
			if tx.Bucket(name) != nil {
				if err := tx.DeleteBucket(name); err != nil {
					return err
				}
			}
			b, err := tx.CreateBucket(name)
			if err != nil {
				return err
			}
			buckets[string(name)] = b
		}

		meta := snap.Meta
		meta.Pages = nil
		meta.Visited = nil
		body, err := json.Marshal(meta)
		if err != nil {
			return err
		}
		if err := buckets[string(metaBucket)].Put(snapshotKey, body); err != nil {
			return err
		}

		for i, p := range snap.Meta.Pages {
			body, err := json.Marshal(p)
			if err != nil {
				return err
			}
			if err := buckets[string(pagesBucket)].Put(itob(uint64(i)), body); err != nil {
				return err
			}
		}
		for i, u := range snap.Meta.Visited {
			if err := buckets[string(visitedBucket)].Put(itob(uint64(i)), []byte(u)); err != nil {
				return err
			}
		}
		for word, postings := range snap.Index {
			key, hashed := wordKey(word)
			rec := postingsRecord{Pages: postings}
			if hashed {
				rec.Word = word
			}
			body, err := json.Marshal(rec)
			if err != nil {
				return err
			}
			if err := buckets[string(indexBucket)].Put(key, body); err != nil {
				return fmt.Errorf("store postings of %.40q: %w", word, err)
			}
		}
		return nil
	})
}

func (s *BoltStore) Load() (*models.Snapshot, error) {
	snap := &models.Snapshot{Index: make(map[string]map[string]int)}

	err := s.db.View(func(tx *bolt.Tx) error {
		mb := tx.Bucket(metaBucket)
		if mb == nil {
			return ErrNotFound
		}
		body := mb.Get(snapshotKey)
		if body == nil {
			return ErrNotFound
		}
		if err := json.Unmarshal(body, &snap.Meta); err != nil {
			return fmt.Errorf("decode meta: %w", err)
		}

		// keys are big-endian positions, so iteration keeps page order
		if b := tx.Bucket(pagesBucket); b != nil {
			err := b.ForEach(func(_, v []byte) error {
				var p models.Page
				if err := json.Unmarshal(v, &p); err != nil {
					return fmt.Errorf("decode page: %w", err)
				}
				snap.Meta.Pages = append(snap.Meta.Pages, p)
				return nil
			})
			if err != nil {
				return err
			}
		}
		if b := tx.Bucket(visitedBucket); b != nil {
			err := b.ForEach(func(_, v []byte) error {
				snap.Meta.Visited = append(snap.Meta.Visited, string(v))
				return nil
			})
			if err != nil {
				return err
			}
		}
		if b := tx.Bucket(indexBucket); b != nil {
			return b.ForEach(func(k, v []byte) error {
				var rec postingsRecord
				if err := json.Unmarshal(v, &rec); err != nil {
					return fmt.Errorf("decode postings of %.40q: %w", k, err)
				}
				word := string(k)
				if bytes.HasPrefix(k, hashedWordPrefix) {
					word = rec.Word
				}
				snap.Index[word] = rec.Pages
				return nil
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

func (s *BoltStore) Location() string {
	return s.path
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}
