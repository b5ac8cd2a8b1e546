package mysql

import (
	"context"
	"database/sql"
	"time"

	"tourbot/internal/domain"
)

type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

func (r *Repo) AppendSearch(ctx context.Context, userID int64, command string, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, insertSearchSQL, userID, command, at.UTC())
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *Repo) AppendHotel(ctx context.Context, searchRef int64, name, address string) error {
	_, err := r.db.ExecContext(ctx, insertHotelSQL, searchRef, name, address)
	return err
}

func (r *Repo) ListSearches(ctx context.Context, userID int64) ([]domain.HistoryEntry, error) {
	rows, err := r.db.QueryContext(ctx, listSearchesSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var (
		out    []domain.HistoryEntry
		lastID int64
	)
	for rows.Next() {
		var (
			id        int64
			command   string
			createdAt time.Time
			name      sql.NullString
			address   sql.NullString
		)
		if err := rows.Scan(&id, &command, &createdAt, &name, &address); err != nil {
			return nil, err
		}
		if len(out) == 0 || id != lastID {
			out = append(out, domain.HistoryEntry{Command: command, At: createdAt})
			lastID = id
		}
		if name.Valid {
			e := &out[len(out)-1]
			e.Hotels = append(e.Hotels, domain.HistoryHotel{Name: name.String, Address: address.String})
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
