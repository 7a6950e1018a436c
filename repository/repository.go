package repository

import (
	"github.com/emzola/prolibrary/internal/postgrest"
)

type Repository interface {
	books
}

// repository reaches the books table through the PostgREST interface of the
// hosted database.
type repository struct {
	client *postgrest.Client
	table  string
}

// New creates a new instance of Repository backed by client. Rows are read
// from and written to table.
func New(client *postgrest.Client, table string) *repository {
	return &repository{client: client, table: table}
}
