package settings

import (
	"database/sql"
)

func buildCreateOverlayTable() string {
	return `CREATE TABLE IF NOT EXISTS overlay (
		key TEXT PRIMARY KEY,
		ahead INTEGER NOT NULL,
		behind INTEGER NOT NULL);`
}

func buildSelectOverlayCommand() (string, func(*sql.Rows) (Overlay, bool, error)) {
	return `SELECT key, ahead, behind FROM overlay WHERE key = ?`, processSelectOverlayRows
}

func processSelectOverlayRows(rows *sql.Rows) (Overlay, bool, error) {
	defer rows.Close()

	var o Overlay
	// key is the primary key, at most one row
	if rows.Next() {
		err := rows.Scan(&o.Key, &o.Ahead, &o.Behind)
		if err != nil {
			return o, false, err
		}
		return o, true, nil
	}
	return o, false, rows.Err()
}

func buildUpsertOverlayCommand() string {
	return `INSERT OR REPLACE INTO overlay (key, ahead, behind) VALUES (?, ?, ?)`
}
