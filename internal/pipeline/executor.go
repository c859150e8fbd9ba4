package pipeline

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/streamhub/backend/internal/db"
)

// Executor runs compiled pipelines against the entity store. It is
// read-only; a failed query is always surfaced as an error, never as an
// empty result set.
type Executor struct {
	pool db.Pool
}

// NewExecutor constructs an executor over the provided connection pool.
func NewExecutor(pool db.Pool) *Executor {
	return &Executor{pool: pool}
}

// Query compiles and runs the pipeline, handing the row stream to collect.
// collect is called once and must drain the rows it is given.
func (e *Executor) Query(ctx context.Context, p *Pipeline, collect func(rows pgx.Rows) error) error {
	plan, err := p.Compile()
	if err != nil {
		return err
	}
	return e.run(ctx, plan.Query, plan.Args, collect)
}

// QueryWithCount runs the windowed row query and the independent
// branch-count query as two parallel branches over the same filtered row
// set, returning the total match count alongside the collected rows.
func (e *Executor) QueryWithCount(ctx context.Context, p *Pipeline, collect func(rows pgx.Rows) error) (int64, error) {
	plan, err := p.Compile()
	if err != nil {
		return 0, err
	}

	countCh := make(chan error, 1)
	var total int64
	go func() {
		countCh <- e.count(ctx, plan.CountSQL, plan.CountArgs, &total)
	}()

	rowsErr := e.run(ctx, plan.Query, plan.Args, collect)
	countErr := <-countCh

	if rowsErr != nil {
		return 0, rowsErr
	}
	if countErr != nil {
		return 0, countErr
	}
	return total, nil
}

func (e *Executor) run(ctx context.Context, query string, args []any, collect func(rows pgx.Rows) error) error {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("run pipeline: %w", err)
	}
	defer rows.Close()

	if err := collect(rows); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate pipeline rows: %w", err)
	}
	return nil
}

func (e *Executor) count(ctx context.Context, query string, args []any, total *int64) error {
	conn, err := e.pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Release()

	if err := conn.QueryRow(ctx, query, args...).Scan(total); err != nil {
		return fmt.Errorf("run branch count: %w", err)
	}
	return nil
}
