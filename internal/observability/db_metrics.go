package observability

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTracer hooks into the pgx pool and feeds statement latency and
// error counts into prometheus without touching the repos.
type DBTracer struct {
	prom *Prom
}

func NewDBTracer(p *Prom) *DBTracer {
	return &DBTracer{prom: p}
}

type dbTraceKey struct{}

type dbTraceState struct {
	start time.Time
	op    string
}

func (t *DBTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	return context.WithValue(ctx, dbTraceKey{}, dbTraceState{
		start: time.Now(),
		op:    sqlVerb(data.SQL),
	})
}

func (t *DBTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	state, ok := ctx.Value(dbTraceKey{}).(dbTraceState)

	if !ok {
		return
	}

	status := "ok"

	// no rows is an application-level outcome, not a database failure
	if data.Err != nil && !errors.Is(data.Err, pgx.ErrNoRows) {
		status = "error"
		t.prom.DbErrorsTotal.WithLabelValues(state.op, classifyDBErr(data.Err)).Inc()
	}

	t.prom.DbQueryDuration.WithLabelValues(state.op, status).Observe(time.Since(state.start).Seconds())
}

// sqlVerb keeps the label cardinality down to the statement verb.
func sqlVerb(sql string) string {
	verb, _, _ := strings.Cut(strings.TrimSpace(sql), " ")

	switch v := strings.ToUpper(verb); v {
	case "SELECT", "INSERT", "UPDATE", "DELETE", "CREATE":
		return v
	default:
		return "OTHER"
	}
}

func classifyDBErr(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505":
			return "unique_violation"
		case "40001":
			return "serialization_failure"
		case "40P01":
			return "deadlock"
		case "57014":
			return "query_canceled"
		default:
			return "pg_" + pgErr.Code
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline"):
		return "timeout"
	case strings.Contains(msg, "connection"):
		return "connection"
	default:
		return "unknown"
	}
}
