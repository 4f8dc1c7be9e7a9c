// Package store keeps scanned documents in BadgerDB. Records are superseded
// by newer revisions and never deleted; every revision stays readable.
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"reflect"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/m-mizutani/goerr/v2"
	"github.com/ppiankov/casedex/internal/model"
	"go.uber.org/zap"
)

const (
	currentPrefix = "doc/"
	historyPrefix = "rev/"
)

// Record is a stored document revision
type Record struct {
	Document *model.Document `json:"document"`
	StoredAt time.Time       `json:"stored_at"`
}

// Store is a revisioned document store
type Store struct {
	db     *badger.DB
	logger *zap.Logger
}

// Open opens a persistent store at cfg.Path
func Open(cfg model.StoreConfig, logger *zap.Logger) (*Store, error) {
	if cfg.Path == "" {
		return nil, goerr.Wrap(model.ErrInvalidInput, "store path is required")
	}
	if err := os.MkdirAll(cfg.Path, 0750); err != nil {
		return nil, fmt.Errorf("create store directory %s: %w", cfg.Path, err)
	}
	return open(badger.DefaultOptions(cfg.Path).WithSyncWrites(true), logger)
}

// OpenInMemory opens a store that lives only as long as the process
func OpenInMemory(logger *zap.Logger) (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), logger)
}

func open(opts badger.Options, logger *zap.Logger) (*Store, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	opts = opts.WithLogger(&badgerLogger{sugar: logger.Named("badger").Sugar()})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger database: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Close flushes and closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores doc as a new revision when it differs from the current record
// and returns the revision now current. doc.Revision is updated in place.
func (s *Store) Put(doc *model.Document) (int, error) {
	if doc == nil || doc.DocID == "" {
		return 0, goerr.Wrap(model.ErrInvalidInput, "document id is required")
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		current, err := getRecord(txn, currentKey(doc.DocID))
		if err != nil {
			return err
		}

		next := 1
		if current != nil {
			if sameContent(current.Document, doc) {
				doc.Revision = current.Document.Revision
				return nil
			}
			next = current.Document.Revision + 1
		}

		stored := *doc
		stored.Revision = next
		data, err := json.Marshal(Record{Document: &stored, StoredAt: time.Now().UTC()})
		if err != nil {
			return fmt.Errorf("marshal record: %w", err)
		}

		if err := txn.Set(historyKey(doc.DocID, next), data); err != nil {
			return err
		}
		if err := txn.Set(currentKey(doc.DocID), data); err != nil {
			return err
		}

		doc.Revision = next
		s.logger.Debug("stored document revision",
			zap.String("doc_id", doc.DocID),
			zap.Int("revision", next))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("put %s: %w", doc.DocID, err)
	}

	return doc.Revision, nil
}

// Get returns the current revision of a document
func (s *Store) Get(docID string) (*model.Document, bool, error) {
	var rec *Record
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		rec, err = getRecord(txn, currentKey(docID))
		return err
	})
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", docID, err)
	}
	if rec == nil {
		return nil, false, nil
	}
	return rec.Document, true, nil
}

// List returns the current revision of every document in key order
func (s *Store) List() ([]*model.Document, error) {
	var docs []*model.Document
	err := s.scan([]byte(currentPrefix), func(rec *Record) {
		docs = append(docs, rec.Document)
	})
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return docs, nil
}

// History returns every stored revision of a document, oldest first
func (s *Store) History(docID string) ([]Record, error) {
	var revs []Record
	err := s.scan([]byte(historyPrefix+docID+"/"), func(rec *Record) {
		revs = append(revs, *rec)
	})
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", docID, err)
	}
	return revs, nil
}

func (s *Store) scan(prefix []byte, fn func(*Record)) error {
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return err
			}
			fn(&rec)
		}
		return nil
	})
}

func getRecord(txn *badger.Txn, key []byte) (*Record, error) {
	item, err := txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var rec Record
	if err := item.Value(func(val []byte) error {
		return json.Unmarshal(val, &rec)
	}); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	return &rec, nil
}

// sameContent compares two documents ignoring their revision numbers
func sameContent(a, b *model.Document) bool {
	x, y := *a, *b
	x.Revision, y.Revision = 0, 0
	return reflect.DeepEqual(x, y)
}

func currentKey(docID string) []byte {
	return []byte(currentPrefix + docID)
}

// historyKey zero-pads the revision so keys sort numerically
func historyKey(docID string, rev int) []byte {
	return []byte(fmt.Sprintf("%s%s/%010d", historyPrefix, docID, rev))
}

// badgerLogger routes badger's internal logging through zap
type badgerLogger struct {
	sugar *zap.SugaredLogger
}

func (l *badgerLogger) Errorf(format string, args ...interface{})   { l.sugar.Errorf(format, args...) }
func (l *badgerLogger) Warningf(format string, args ...interface{}) { l.sugar.Warnf(format, args...) }
func (l *badgerLogger) Infof(format string, args ...interface{})    { l.sugar.Debugf(format, args...) }
func (l *badgerLogger) Debugf(format string, args ...interface{})   { l.sugar.Debugf(format, args...) }
