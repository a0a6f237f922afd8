package postgres

// SQL queries for whole-snapshot storage with optimistic concurrency.

const (
	// queryLoadSnapshot fetches the last written snapshot bytes and the
	// revision that guards the next write.
	queryLoadSnapshot = `
		SELECT data, revision
		FROM snapshots
		WHERE key = $1
	`

	// queryInsertSnapshot creates the first snapshot for a key.
	// ON CONFLICT DO NOTHING returns no rows when another writer created the
	// key first — that maps to a revision mismatch.
	queryInsertSnapshot = `
		INSERT INTO snapshots (key, data, revision, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (key) DO NOTHING
		RETURNING revision
	`

	// queryUpdateSnapshot replaces the snapshot only while the stored
	// revision still matches the caller's expectation (compare-and-swap).
	queryUpdateSnapshot = `
		UPDATE snapshots
		SET data = $2, revision = $3, updated_at = NOW()
		WHERE key = $1 AND revision = $4
		RETURNING revision
	`

	queryDeleteSnapshot = `
		DELETE FROM snapshots
		WHERE key = $1
	`
)
