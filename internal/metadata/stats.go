package metadata

import "context"

// GetStats computes aggregate namespace and blob statistics.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	var stats Stats
	stats.BlobsByTier = make(map[Tier]int64)

	row := s.q(ctx).QueryRowContext(ctx,
		`SELECT
			(SELECT COUNT(*) FROM entries WHERE type = 'file'),
			(SELECT COUNT(*) FROM entries WHERE type = 'directory'),
			(SELECT COALESCE(SUM(size), 0) FROM entries WHERE type = 'file')`)
	if err := row.Scan(&stats.FileCount, &stats.DirCount, &stats.TotalSize); err != nil {
		return Stats{}, err
	}

	rows, err := s.q(ctx).QueryContext(ctx, `SELECT tier, COUNT(*) FROM blobs GROUP BY tier`)
	if err != nil {
		return Stats{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var tier string
		var count int64
		if err := rows.Scan(&tier, &count); err != nil {
			return Stats{}, err
		}
		stats.BlobsByTier[Tier(tier)] = count
	}
	return stats, rows.Err()
}
