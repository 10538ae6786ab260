package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string           `json:"db_path"`
	DBSizeBytes int64            `json:"db_size_bytes"`
	TotalKeys   int              `json:"total_keys"`
	Namespaces  []NamespaceStats `json:"namespaces"`
}

// NamespaceStats holds per-namespace counts.
type NamespaceStats struct {
	NS         string `json:"ns"`
	Keys       int    `json:"keys"`
	Bytes      int64  `json:"bytes"`
	LastUpdate string `json:"last_update"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM kv`).Scan(&st.TotalKeys)

	rows, err := s.db.QueryContext(ctx, `
		SELECT ns, COUNT(*) AS keys, COALESCE(SUM(LENGTH(value)), 0) AS bytes, MAX(updated_at)
		FROM kv GROUP BY ns ORDER BY keys DESC`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var ns NamespaceStats
		if err := rows.Scan(&ns.NS, &ns.Keys, &ns.Bytes, &ns.LastUpdate); err != nil {
			return st, err
		}
		st.Namespaces = append(st.Namespaces, ns)
	}

	return st, rows.Err()
}
