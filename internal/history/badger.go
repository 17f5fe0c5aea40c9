package history

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/iwvelando/signal-timing/internal/simulation"
	"github.com/iwvelando/signal-timing/pkg/constants"
	"github.com/vmihailenco/msgpack/v5"
	"go.uber.org/zap"
)

// BadgerStore persists the whole history list under a single key. Each
// append is one read-modify-write transaction.
type BadgerStore struct {
	mu       sync.Mutex
	db       *badger.DB
	logger   *zap.Logger
	capacity int
	key      []byte
}

// OpenBadgerStore opens (or creates) a Badger database at path. An empty path
// opens an in-memory database.
func OpenBadgerStore(logger *zap.Logger, path string, capacity int) (*BadgerStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := badger.DefaultOptions(path).WithLogger(badgerLogger{sugar: logger.Sugar()})
	if path == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger database: %w", err)
	}

	return &BadgerStore{
		db:       db,
		logger:   logger,
		capacity: normalizeCapacity(capacity),
		key:      []byte(constants.HistoryKey),
	}, nil
}

func (s *BadgerStore) Append(result simulation.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		list, err := s.read(txn)
		if err != nil {
			return err
		}
		value, err := encodeResults(prepend(list, result, s.capacity))
		if err != nil {
			return err
		}
		return txn.Set(s.key, value)
	})
	if err != nil {
		return fmt.Errorf("failed to append result %s: %w", result.ID, err)
	}
	return nil
}

func (s *BadgerStore) List() ([]simulation.Result, error) {
	var list []simulation.Result
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		list, err = s.read(txn)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	if list == nil {
		list = []simulation.Result{}
	}
	return list, nil
}

func (s *BadgerStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(s.key)
	})
	if err != nil {
		return fmt.Errorf("failed to clear history: %w", err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

// read loads the stored list. A missing key is an empty history; an
// undecodable value is logged and also read as empty so the next append
// replaces it.
func (s *BadgerStore) read(txn *badger.Txn) ([]simulation.Result, error) {
	item, err := txn.Get(s.key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var list []simulation.Result
	err = item.Value(func(val []byte) error {
		decoded, decodeErr := decodeResults(val)
		if decodeErr != nil {
			s.logger.Warn("discarding unreadable history",
				zap.String("op", "history.BadgerStore.read"),
				zap.Error(decodeErr),
			)
			return nil
		}
		list = decoded
		return nil
	})
	return list, err
}

func encodeResults(list []simulation.Result) ([]byte, error) {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(list); err != nil {
		return nil, fmt.Errorf("failed to encode history: %w", err)
	}
	return buf.Bytes(), nil
}

func decodeResults(data []byte) ([]simulation.Result, error) {
	dec := msgpack.NewDecoder(bytes.NewReader(data))
	dec.SetCustomStructTag("json")
	var list []simulation.Result
	if err := dec.Decode(&list); err != nil {
		return nil, fmt.Errorf("failed to decode history: %w", err)
	}
	for i := range list {
		list[i].Timestamp = list[i].Timestamp.UTC()
	}
	return list, nil
}

// badgerLogger routes Badger's internal logging to zap.
type badgerLogger struct {
	sugar *zap.SugaredLogger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.sugar.Error(badgerMessage(format, args))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.sugar.Warn(badgerMessage(format, args))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.sugar.Debug(badgerMessage(format, args))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.sugar.Debug(badgerMessage(format, args))
}

func badgerMessage(format string, args []interface{}) string {
	return strings.TrimRight(fmt.Sprintf(format, args...), "\n")
}
