package repo

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"server/internal/domain"
)

// fakeRow scans a single fixed value set into the destinations. A nil values
// slice behaves like an empty result.
type fakeRow struct {
	values []any
	err    error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	if r.values == nil {
		return pgx.ErrNoRows
	}
	return scanInto(dest, r.values)
}

// fakeRows iterates over fixed value sets for Query-based repository methods.
type fakeRows struct {
	values [][]any
	index  int
	err    error
}

func (r *fakeRows) Next() bool {
	if r.index >= len(r.values) {
		return false
	}
	r.index++
	return true
}

func (r *fakeRows) Scan(dest ...any) error {
	return scanInto(dest, r.values[r.index-1])
}

func (r *fakeRows) Close()                                       {}
func (r *fakeRows) Err() error                                   { return r.err }
func (r *fakeRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *fakeRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *fakeRows) Values() ([]any, error)                       { return nil, nil }
func (r *fakeRows) RawValues() [][]byte                          { return nil }
func (r *fakeRows) Conn() *pgx.Conn                              { return nil }

func scanInto(dest []any, values []any) error {
	if len(dest) != len(values) {
		return fmt.Errorf("scan: %d destinations for %d values", len(dest), len(values))
	}
	for i, value := range values {
		switch d := dest[i].(type) {
		case *string:
			*d = value.(string)
		case *domain.OperationType:
			*d = domain.OperationType(value.(string))
		case *time.Time:
			*d = value.(time.Time)
		case *int:
			*d = value.(int)
		default:
			return fmt.Errorf("scan: unsupported destination %T", dest[i])
		}
	}
	return nil
}

type executedQuery struct {
	query string
	args  []any
}

// fakeExecutor satisfies infra.SQLExecutor and replays canned results keyed
// by call order.
type fakeExecutor struct {
	rowQueue  []fakeRow
	rowsQueue []*fakeRows
	execTag   pgconn.CommandTag
	execErr   error
	queryErr  error

	executed []executedQuery
}

func (f *fakeExecutor) Exec(ctx context.Context, query string, args ...any) (pgconn.CommandTag, error) {
	f.executed = append(f.executed, executedQuery{query: query, args: args})
	return f.execTag, f.execErr
}

func (f *fakeExecutor) QueryRow(ctx context.Context, query string, args ...any) pgx.Row {
	f.executed = append(f.executed, executedQuery{query: query, args: args})
	if len(f.rowQueue) == 0 {
		return fakeRow{}
	}
	row := f.rowQueue[0]
	f.rowQueue = f.rowQueue[1:]
	return row
}

func (f *fakeExecutor) Query(ctx context.Context, query string, args ...any) (pgx.Rows, error) {
	f.executed = append(f.executed, executedQuery{query: query, args: args})
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if len(f.rowsQueue) == 0 {
		return &fakeRows{}, nil
	}
	rows := f.rowsQueue[0]
	f.rowsQueue = f.rowsQueue[1:]
	return rows, nil
}
