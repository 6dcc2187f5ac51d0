package adapters

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/driftwatch/driftwatch/internal/gateway"
	"github.com/driftwatch/driftwatch/internal/invariants"
	"github.com/driftwatch/driftwatch/internal/types"

	// Database drivers
	_ "github.com/go-sql-driver/mysql"
	_ "github.com/lib/pq"
)

func databaseChecks() map[string]Func {
	return map[string]Func{
		"connectivity": databaseConnectivity,
	}
}

// databaseConnectivity opens a connection to the target database and pings it.
func databaseConnectivity(ctx context.Context, req Request, _ gateway.Clients) (invariants.CheckResult, error) {
	var p types.ConnectivityParams
	if err := decodeParams(req.Params, &p); err != nil {
		return paramFail(types.ServiceDatabase, err.Error()), nil
	}
	if p.Host == "" || p.Database == "" {
		return paramFail(types.ServiceDatabase, "host and database are required"), nil
	}

	timeout := p.Timeout
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}

	cctx, cancel := context.WithTimeout(ctx, time.Duration(timeout)*time.Second)
	defer cancel()

	var dsn string
	driverName := p.Type

	switch p.Type {
	case "postgres", "postgresql":
		driverName = "postgres"
		dsn = fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			p.Host, p.Port, p.Username, p.Password, p.Database, p.SSLMode)
	case "mysql":
		dsn = fmt.Sprintf("%s:%s@tcp(%s:%d)/%s",
			p.Username, p.Password, p.Host, p.Port, p.Database)
	default:
		return paramFail(types.ServiceDatabase, fmt.Sprintf("unsupported database type: %s", p.Type)), nil
	}

	expected := fmt.Sprintf("database %s on %s:%d accepts connections", p.Database, p.Host, p.Port)

	conn, err := sql.Open(driverName, dsn)
	if err != nil {
		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: expected,
			Observed: "connection could not be opened",
			Reason:   err.Error(),
		}, nil
	}
	defer conn.Close()

	start := time.Now()

	if err := conn.PingContext(cctx); err != nil {
		return invariants.CheckResult{
			Status:   types.StatusFail,
			Expected: expected,
			Observed: fmt.Sprintf("database %s on %s:%d is unreachable", p.Database, p.Host, p.Port),
			Reason:   err.Error(),
		}, nil
	}

	elapsed := time.Since(start)
	evidence := fmt.Sprintf("database %s on %s:%d reachable in %d ms", p.Database, p.Host, p.Port, elapsed.Milliseconds())
	data := map[string]any{
		"host":           p.Host,
		"port":           p.Port,
		"responseTimeMs": elapsed.Milliseconds(),
	}

	return found(expected, evidence, data), nil
}
