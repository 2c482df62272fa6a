package database

import (
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
)

func TestMigrate(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	t.Run("applies schema", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE IF NOT EXISTS replay_runs")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.NoError(t, Migrate(db))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports failure", func(t *testing.T) {
		mock.ExpectExec("CREATE TABLE").WillReturnError(errors.New("permission denied"))

		err := Migrate(db)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "error applying schema")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
