package store

import (
	"fmt"

	"github.com/lightningnetwork/lnd/kvdb"

	"github.com/babylonchain/staking-ledger/types"
)

var (
	// mapping account id -> accountRecord
	accountBucketName = []byte("accounts")

	// singleton records of the pool
	poolStateBucketName = []byte("poolState")
	poolKey             = []byte("pool")
	pauseKey            = []byte("pause")

	// mapping saga id -> sagaRecord
	sagaBucketName = []byte("sagas")

	// mapping account id -> id of the saga outstanding against it
	pendingSagaBucketName = []byte("pendingSagas")
)

// LedgerStore persists the ledger aggregate root. All reads and writes of
// one ledger operation go through a single transaction.
type LedgerStore struct {
	db kvdb.Backend
}

// NewLedgerStore returns a new store backed by db
func NewLedgerStore(db kvdb.Backend) (*LedgerStore, error) {
	s := &LedgerStore{db}
	if err := s.initBuckets(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *LedgerStore) initBuckets() error {
	if err := kvdb.Batch(s.db, func(tx kvdb.RwTx) error {
		for _, name := range [][]byte{
			accountBucketName, poolStateBucketName, sagaBucketName, pendingSagaBucketName,
		} {
			if _, err := tx.CreateTopLevelBucket(name); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}

		return nil
	}); err != nil {
		return fmt.Errorf("failed to initialize ledger buckets: %w", err)
	}

	return nil
}

// Update runs f inside a read-write transaction. Nothing is written if f
// returns an error.
func (s *LedgerStore) Update(f func(tx *RwTx) error) error {
	return kvdb.Update(s.db, func(tx kvdb.RwTx) error {
		return f(&RwTx{RTx: RTx{tx: tx}, rw: tx})
	}, func() {})
}

// View runs f inside a read-only transaction
func (s *LedgerStore) View(f func(tx *RTx) error) error {
	return s.db.View(func(tx kvdb.RTx) error {
		return f(&RTx{tx: tx})
	}, func() {})
}

// RTx gives typed read access to the ledger records
type RTx struct {
	tx kvdb.RTx
}

func (t *RTx) bucket(name []byte) (kvdb.RBucket, error) {
	b := t.tx.ReadBucket(name)
	if b == nil {
		return nil, ErrCorruptedLedgerDb
	}
	return b, nil
}

func (t *RTx) GetAccount(accountID string) (*types.Account, error) {
	b, err := t.bucket(accountBucketName)
	if err != nil {
		return nil, err
	}

	v := b.Get([]byte(accountID))
	if v == nil {
		return nil, ErrAccountNotFound
	}

	return unmarshalAccount(v)
}

func (t *RTx) HasAccount(accountID string) (bool, error) {
	b, err := t.bucket(accountBucketName)
	if err != nil {
		return false, err
	}

	return b.Get([]byte(accountID)) != nil, nil
}

// ForEachAccount calls f for every account in key order
func (t *RTx) ForEachAccount(f func(accountID string, a *types.Account) error) error {
	b, err := t.bucket(accountBucketName)
	if err != nil {
		return err
	}

	return b.ForEach(func(k, v []byte) error {
		a, err := unmarshalAccount(v)
		if err != nil {
			return err
		}
		return f(string(k), a)
	})
}

func (t *RTx) GetPool() (*types.Pool, error) {
	b, err := t.bucket(poolStateBucketName)
	if err != nil {
		return nil, err
	}

	v := b.Get(poolKey)
	if v == nil {
		return nil, ErrPoolNotFound
	}

	return unmarshalPool(v)
}

// GetPauseState returns the pause record, unpaused if none was stored
func (t *RTx) GetPauseState() (*types.PauseState, error) {
	b, err := t.bucket(poolStateBucketName)
	if err != nil {
		return nil, err
	}

	v := b.Get(pauseKey)
	if v == nil {
		return &types.PauseState{}, nil
	}

	return unmarshalPauseState(v)
}

func (t *RTx) GetSaga(sagaID string) (*types.Saga, error) {
	b, err := t.bucket(sagaBucketName)
	if err != nil {
		return nil, err
	}

	v := b.Get([]byte(sagaID))
	if v == nil {
		return nil, ErrSagaNotFound
	}

	return unmarshalSaga(v)
}

// PendingSagaID returns the id of the saga outstanding against the account
func (t *RTx) PendingSagaID(accountID string) (string, bool, error) {
	b, err := t.bucket(pendingSagaBucketName)
	if err != nil {
		return "", false, err
	}

	v := b.Get([]byte(accountID))
	if v == nil {
		return "", false, nil
	}

	return string(v), true, nil
}

// PendingSagas returns every saga that has not been resolved yet
func (t *RTx) PendingSagas() ([]*types.Saga, error) {
	b, err := t.bucket(pendingSagaBucketName)
	if err != nil {
		return nil, err
	}

	var sagas []*types.Saga
	if err := b.ForEach(func(_, v []byte) error {
		s, err := t.GetSaga(string(v))
		if err != nil {
			return fmt.Errorf("pending saga %s: %w", v, err)
		}
		sagas = append(sagas, s)
		return nil
	}); err != nil {
		return nil, err
	}

	return sagas, nil
}

// RwTx extends RTx with writes
type RwTx struct {
	RTx
	rw kvdb.RwTx
}

func (t *RwTx) rwBucket(name []byte) (kvdb.RwBucket, error) {
	b := t.rw.ReadWriteBucket(name)
	if b == nil {
		return nil, ErrCorruptedLedgerDb
	}
	return b, nil
}

func (t *RwTx) PutAccount(accountID string, a *types.Account) error {
	if a == nil {
		return fmt.Errorf("cannot save nil account")
	}

	b, err := t.rwBucket(accountBucketName)
	if err != nil {
		return err
	}

	marshalled, err := marshalAccount(a)
	if err != nil {
		return fmt.Errorf("failed to marshal account %s: %w", accountID, err)
	}

	return b.Put([]byte(accountID), marshalled)
}

func (t *RwTx) PutPool(p *types.Pool) error {
	b, err := t.rwBucket(poolStateBucketName)
	if err != nil {
		return err
	}

	marshalled, err := marshalPool(p)
	if err != nil {
		return fmt.Errorf("failed to marshal pool: %w", err)
	}

	return b.Put(poolKey, marshalled)
}

func (t *RwTx) PutPauseState(p *types.PauseState) error {
	b, err := t.rwBucket(poolStateBucketName)
	if err != nil {
		return err
	}

	marshalled, err := marshalPauseState(p)
	if err != nil {
		return fmt.Errorf("failed to marshal pause state: %w", err)
	}

	return b.Put(pauseKey, marshalled)
}

// PutSaga saves the saga and keeps the pending index of its account in step
// with its state
func (t *RwTx) PutSaga(s *types.Saga) error {
	b, err := t.rwBucket(sagaBucketName)
	if err != nil {
		return err
	}

	marshalled, err := marshalSaga(s)
	if err != nil {
		return fmt.Errorf("failed to marshal saga %s: %w", s.ID, err)
	}

	if err := b.Put([]byte(s.ID), marshalled); err != nil {
		return err
	}

	pending, err := t.rwBucket(pendingSagaBucketName)
	if err != nil {
		return err
	}

	if s.State.IsTerminal() {
		return pending.Delete([]byte(s.AccountID))
	}

	return pending.Put([]byte(s.AccountID), []byte(s.ID))
}
