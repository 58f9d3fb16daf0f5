package store

import (
	"database/sql"

	"github.com/jinzhu/gorm"
)

type Store struct {
	Db              *gorm.DB `inject:""`
	StringGenerator interface {
		GenerateUuid() string
	} `inject:""`
}

// Tx opens a transaction scoped to the caller. Every store method takes it as
// its first argument; passing nil runs the query on the shared connection.
func (s *Store) Tx() *gorm.DB {
	return s.Db.Begin()
}

func (s *Store) Commit(tx *gorm.DB) {
	tx.Commit()
}

func (s *Store) Rollback(tx *gorm.DB) {
	tx.Rollback()
}

func (s *Store) dbOrTx(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return s.Db
}

func DbNullString(value string) sql.NullString {
	return sql.NullString{String: value, Valid: value != ""}
}

func DbNullInt64(value int64) sql.NullInt64 {
	return sql.NullInt64{Int64: value, Valid: value != 0}
}
