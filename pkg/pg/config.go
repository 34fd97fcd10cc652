package pg

import "time"

type Config struct {
	ConnectionString  string        `env:"SESSION_PG_CONN_URL"`                            // ConnectionString is the connection string to the database.
	MaxOpenConns      int32         `env:"SESSION_PG_MAX_OPEN_CONNS" envDefault:"10"`      // MaxOpenConns is the maximum number of open connections to the database.
	MaxIdleConns      int32         `env:"SESSION_PG_MAX_IDLE_CONNS" envDefault:"2"`       // MaxIdleConns is the number of connections kept open when idle.
	HealthCheckPeriod time.Duration `env:"SESSION_PG_HEALTHCHECK_PERIOD" envDefault:"1m"`  // HealthCheckPeriod is the period between pool health checks.
	MaxConnIdleTime   time.Duration `env:"SESSION_PG_MAX_CONN_IDLE_TIME" envDefault:"10m"` // MaxConnIdleTime is the maximum amount of time a connection may be idle.
	MaxConnLifetime   time.Duration `env:"SESSION_PG_MAX_CONN_LIFETIME" envDefault:"30m"`  // MaxConnLifetime is the maximum amount of time a connection may be reused.
	RetryAttempts     int           `env:"SESSION_PG_RETRY_ATTEMPTS" envDefault:"3"`       // RetryAttempts is the number of attempts to connect to the database.
	RetryInterval     time.Duration `env:"SESSION_PG_RETRY_INTERVAL" envDefault:"2s"`      // RetryInterval is multiplied by the attempt number between attempts.
}
