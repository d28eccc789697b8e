// Package local persists device-local state in an embedded BadgerDB, keeping
// the pairing credential out of the server-side database.
package local

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"talkboard/internal/domain"
)

var credentialKey = []byte("credential")

type credentialRepository struct {
	db *badger.DB
}

// NewCredentialRepository returns a CredentialRepository on top of an open
// Badger database. The caller owns the database lifecycle.
func NewCredentialRepository(db *badger.DB) domain.CredentialRepository {
	return &credentialRepository{db: db}
}

// Open opens the Badger database at dir with logging silenced.
func Open(dir string) (*badger.DB, error) {
	return badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.ERROR))
}

func (r *credentialRepository) Get(ctx context.Context) (domain.Credential, error) {
	var raw string
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(credentialKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			raw = string(val)
			return nil
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return domain.Credential{}, domain.ErrNotFound
		}
		return domain.Credential{}, fmt.Errorf("read credential: %w", err)
	}
	credential, err := domain.NewCredential(strings.Split(raw, " "))
	if err != nil {
		return domain.Credential{}, fmt.Errorf("stored credential is corrupt: %w", err)
	}
	return credential, nil
}

func (r *credentialRepository) Set(ctx context.Context, credential domain.Credential) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Set(credentialKey, []byte(credential.String()))
	})
	if err != nil {
		return fmt.Errorf("store credential: %w", err)
	}
	return nil
}

func (r *credentialRepository) Create(ctx context.Context) (domain.Credential, error) {
	credential, err := domain.GenerateCredential()
	if err != nil {
		return domain.Credential{}, err
	}
	if err := r.Set(ctx, credential); err != nil {
		return domain.Credential{}, err
	}
	return credential, nil
}

func (r *credentialRepository) Delete(ctx context.Context) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(credentialKey)
	})
	if err != nil {
		return fmt.Errorf("delete credential: %w", err)
	}
	return nil
}
