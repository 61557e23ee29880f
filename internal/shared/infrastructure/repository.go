package infrastructure

import (
	"context"
	"database/sql"
	"fmt"
)

// DBTX est l'exécuteur commun à *sql.DB et *sql.Tx
type DBTX interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
}

// UnitOfWork gère les transactions pour les opérations d'écriture
// Toute erreur (ou panic) dans fn provoque un rollback; rien n'est jamais commité partiellement
type UnitOfWork interface {
	Begin(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
	Commit(tx *sql.Tx) error
	Rollback(tx *sql.Tx) error
	Execute(ctx context.Context, fn func(tx *sql.Tx) error) error
	ExecuteReadOnly(ctx context.Context, fn func(tx *sql.Tx) error) error
}

// DBUnitOfWork implémentation de UnitOfWork avec sql.DB
type DBUnitOfWork struct {
	db *sql.DB
}

// NewUnitOfWork crée une nouvelle instance de UnitOfWork
func NewUnitOfWork(db *sql.DB) UnitOfWork {
	return &DBUnitOfWork{db: db}
}

// Begin démarre une transaction
func (uow *DBUnitOfWork) Begin(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	tx, err := uow.db.BeginTx(ctx, opts)
	if err != nil {
		return nil, ClassifyError("begin transaction", err)
	}
	return tx, nil
}

// Commit valide une transaction
func (uow *DBUnitOfWork) Commit(tx *sql.Tx) error {
	if err := tx.Commit(); err != nil {
		return ClassifyError("commit transaction", err)
	}
	return nil
}

// Rollback annule une transaction
func (uow *DBUnitOfWork) Rollback(tx *sql.Tx) error {
	if err := tx.Rollback(); err != nil && err != sql.ErrTxDone {
		return err
	}
	return nil
}

// Execute exécute fn dans une transaction d'écriture (READ COMMITTED)
func (uow *DBUnitOfWork) Execute(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return uow.run(ctx, &sql.TxOptions{Isolation: sql.LevelReadCommitted}, fn)
}

// ExecuteReadOnly exécute fn dans une transaction en lecture seule
// Utile quand plusieurs lectures doivent voir le même état
func (uow *DBUnitOfWork) ExecuteReadOnly(ctx context.Context, fn func(tx *sql.Tx) error) error {
	return uow.run(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead, ReadOnly: true}, fn)
}

func (uow *DBUnitOfWork) run(ctx context.Context, opts *sql.TxOptions, fn func(tx *sql.Tx) error) (err error) {
	tx, err := uow.Begin(ctx, opts)
	if err != nil {
		return err
	}

	defer func() {
		if p := recover(); p != nil {
			_ = uow.Rollback(tx)
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := uow.Rollback(tx); rbErr != nil {
			return fmt.Errorf("%w (rollback failed: %v)", err, rbErr)
		}
		return err
	}

	return uow.Commit(tx)
}

// BaseRepository structure de base pour les repositories
// L'exécuteur est la DB par défaut, ou la transaction fournie par WithTx
type BaseRepository struct {
	db *sql.DB
	tx *sql.Tx
}

// NewBaseRepository crée un nouveau repository de base
func NewBaseRepository(db *sql.DB) BaseRepository {
	return BaseRepository{db: db}
}

// Bind retourne une copie du repository liée à la transaction
func (r BaseRepository) Bind(tx *sql.Tx) BaseRepository {
	r.tx = tx
	return r
}

// Executor retourne l'exécuteur approprié (DB ou Tx)
func (r *BaseRepository) Executor() DBTX {
	if r.tx != nil {
		return r.tx
	}
	return r.db
}

// Query exécute une requête de lecture
func (r *BaseRepository) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return r.Executor().QueryContext(ctx, query, args...)
}

// QueryRow exécute une requête de lecture pour une seule ligne
func (r *BaseRepository) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	return r.Executor().QueryRowContext(ctx, query, args...)
}

// Exec exécute une requête d'écriture
func (r *BaseRepository) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return r.Executor().ExecContext(ctx, query, args...)
}

// Exists exécute une requête SELECT EXISTS(...) et retourne le booléen
func (r *BaseRepository) Exists(ctx context.Context, query string, args ...interface{}) (bool, error) {
	var exists bool
	if err := r.QueryRow(ctx, query, args...).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}
