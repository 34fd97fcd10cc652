package sessiondb

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidTableName reports whether name can be interpolated into statements.
func ValidTableName(name string) bool {
	return tableNamePattern.MatchString(name)
}

// dialect renders the engine's statements for one SQL flavour. Every stateful
// operation is a single statement, so atomicity comes from the database alone.
type dialect struct {
	name        string
	integerType string
	upsert      string
	placeholder func(n int) string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		name:        DriverSQLite,
		integerType: "INTEGER",
		upsert:      "INSERT OR REPLACE INTO %[1]s (sid, sess, expired) VALUES (?, ?, ?)",
		placeholder: func(int) string { return "?" },
	},
	DriverPostgres: {
		name:        DriverPostgres,
		integerType: "BIGINT",
		upsert: "INSERT INTO %[1]s (sid, sess, expired) VALUES (?, ?, ?) " +
			"ON CONFLICT (sid) DO UPDATE SET sess = EXCLUDED.sess, expired = EXCLUDED.expired",
		placeholder: func(n int) string { return "$" + strconv.Itoa(n) },
	},
}

// queries holds the rendered statements for one table.
type queries struct {
	schema string
	index  string
	upsert string
	find   string
	touch  string
	delete string
	clear  string
	count  string
	all    string
	sweep  string
}

func (d dialect) queries(table string) queries {
	return queries{
		schema: fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
	sid TEXT PRIMARY KEY,
	sess TEXT NOT NULL,
	expired %s NOT NULL
)`, table, d.integerType),
		index:  fmt.Sprintf("CREATE INDEX IF NOT EXISTS %[1]s_expired_idx ON %[1]s (expired)", table),
		upsert: d.rebind(fmt.Sprintf(d.upsert, table)),
		find:   d.rebind(fmt.Sprintf("SELECT sess, expired FROM %s WHERE sid = ? AND ? <= expired", table)),
		touch:  d.rebind(fmt.Sprintf("UPDATE %s SET expired = ? WHERE sid = ? AND ? <= expired", table)),
		delete: d.rebind(fmt.Sprintf("DELETE FROM %s WHERE sid = ?", table)),
		clear:  fmt.Sprintf("DELETE FROM %s", table),
		count:  fmt.Sprintf("SELECT COUNT(*) FROM %s", table),
		all:    fmt.Sprintf("SELECT sid, sess, expired FROM %s", table),
		sweep:  d.rebind(fmt.Sprintf("DELETE FROM %s WHERE ? > expired", table)),
	}
}

// rebind replaces each "?" with the dialect's positional placeholder.
func (d dialect) rebind(query string) string {
	if d.placeholder(1) == "?" {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString(d.placeholder(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
