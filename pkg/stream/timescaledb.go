package stream

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/pkg/errors"
)

const residualTable = "residual_load"

const createResidualTable = `CREATE TABLE IF NOT EXISTS ` + residualTable + ` (
	time        timestamptz NOT NULL,
	meter_w     double precision,
	pv_w        double precision,
	residual_w  double precision)`

// DefaultDBBatchSize buffers one minute of the 1 Hz stream per copy.
const DefaultDBBatchSize = 60

var residualCols = []string{"time", "meter_w", "pv_w", "residual_w"}

// DBRecorder buffers joined rows and copies them into TimescaleDB in
// batches. Postgres accepts NaN for double precision, so partial rows
// need no special casing.
type DBRecorder struct {
	conn      *pgx.Conn
	batchSize int
	buf       [][]interface{}
}

// ConnectDB dials dbURL and makes sure the residual_load table exists.
// batchSize values below 1 fall back to DefaultDBBatchSize.
func ConnectDB(ctx context.Context, dbURL string, batchSize int) (*DBRecorder, error) {
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		return nil, errors.Wrap(err, "could not connect to database")
	}
	if _, err := conn.Exec(ctx, createResidualTable); err != nil {
		_ = conn.Close(ctx)
		return nil, errors.Wrap(err, "could not create table "+residualTable)
	}
	if batchSize < 1 {
		batchSize = DefaultDBBatchSize
	}
	return &DBRecorder{conn: conn, batchSize: batchSize}, nil
}

// Record buffers one row and flushes once a full batch is waiting.
func (d *DBRecorder) Record(ctx context.Context, row Row) error {
	d.buf = append(d.buf, []interface{}{
		row.Time.UTC(), row.MeterW, row.PVW, row.ResidualW(),
	})
	if len(d.buf) < d.batchSize {
		return nil
	}
	return d.flush(ctx)
}

func (d *DBRecorder) flush(ctx context.Context) error {
	if len(d.buf) == 0 {
		return nil
	}
	rows := pgx.CopyFromRows(d.buf)
	inserted, err := d.conn.CopyFrom(ctx, pgx.Identifier{residualTable}, residualCols, rows)
	if err != nil {
		return errors.Wrap(err, "could not copy rows to "+residualTable)
	}
	if inserted != int64(len(d.buf)) {
		return errors.Errorf("failed to insert all the rows! Expected: %d, Got: %d", len(d.buf), inserted)
	}
	d.buf = d.buf[:0]
	return nil
}

// Close flushes whatever is buffered and closes the connection. The
// flush error wins when both fail.
func (d *DBRecorder) Close(ctx context.Context) error {
	flushErr := d.flush(ctx)
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	closeErr := d.conn.Close(closeCtx)
	if flushErr != nil {
		return flushErr
	}
	return errors.Wrap(closeErr, "could not close database connection")
}
