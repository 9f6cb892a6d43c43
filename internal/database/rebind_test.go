package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebind(t *testing.T) {
	orig := dbType
	defer func() { dbType = orig }()

	dbType = "sqlite"
	assert.Equal(t, "SELECT * FROM users WHERE id = ?", Rebind("SELECT * FROM users WHERE id = ?"))

	dbType = "postgres"
	assert.Equal(t, "SELECT * FROM users WHERE id = $1", Rebind("SELECT * FROM users WHERE id = ?"))
	assert.Equal(t,
		"INSERT INTO t (a, b, c) VALUES ($1, $2, $3)",
		Rebind("INSERT INTO t (a, b, c) VALUES (?, ?, ?)"),
	)
	assert.Equal(t, "SELECT 1", Rebind("SELECT 1"))
}
