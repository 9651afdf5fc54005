package db

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries holds the statements used by the stores.
type Queries struct {
	db DBTX
}

// New returns queries bound to db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns queries bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Record is a row of the records table.
type Record struct {
	ID        string
	Kind      string
	Code      sql.NullString
	Status    string
	Title     string
	Payload   string
	CreatedAt int64
}

// Notification is a row of the notifications table.
type Notification struct {
	ID        int64
	Level     string
	Message   string
	Action    string
	CreatedAt int64
}

const recordColumns = `id, kind, code, status, title, payload, created_at`

func scanRecord(row interface{ Scan(...any) error }) (Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.Kind, &r.Code, &r.Status, &r.Title, &r.Payload, &r.CreatedAt)
	return r, err
}

const insertRecord = `INSERT INTO records (` + recordColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertRecord(ctx context.Context, r Record) error {
	_, err := q.db.ExecContext(ctx, insertRecord, r.ID, r.Kind, r.Code, r.Status, r.Title, r.Payload, r.CreatedAt)
	return err
}

const getRecord = `SELECT ` + recordColumns + ` FROM records WHERE id = ?`

func (q *Queries) GetRecord(ctx context.Context, id string) (Record, error) {
	return scanRecord(q.db.QueryRowContext(ctx, getRecord, id))
}

const getRecordByCode = `SELECT ` + recordColumns + ` FROM records WHERE code = ?`

func (q *Queries) GetRecordByCode(ctx context.Context, code string) (Record, error) {
	return scanRecord(q.db.QueryRowContext(ctx, getRecordByCode, code))
}

const listRecordsByKind = `SELECT ` + recordColumns + ` FROM records WHERE kind = ? ORDER BY created_at DESC, id DESC`

func (q *Queries) ListRecordsByKind(ctx context.Context, kind string) ([]Record, error) {
	return q.listRecords(ctx, listRecordsByKind, kind)
}

const listRecords = `SELECT ` + recordColumns + ` FROM records ORDER BY created_at DESC, id DESC`

func (q *Queries) ListRecords(ctx context.Context) ([]Record, error) {
	return q.listRecords(ctx, listRecords)
}

func (q *Queries) listRecords(ctx context.Context, query string, args ...any) ([]Record, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const updateRecordStatus = `UPDATE records SET status = ? WHERE id = ?`

func (q *Queries) UpdateRecordStatus(ctx context.Context, id, status string) (int64, error) {
	res, err := q.db.ExecContext(ctx, updateRecordStatus, status, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

const countRecords = `SELECT COUNT(*) FROM records WHERE kind = ?`

func (q *Queries) CountRecords(ctx context.Context, kind string) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx, countRecords, kind).Scan(&n)
	return n, err
}

const insertNotification = `INSERT INTO notifications (level, message, action, created_at) VALUES (?, ?, ?, ?) RETURNING id`

func (q *Queries) InsertNotification(ctx context.Context, n Notification) (int64, error) {
	var id int64
	err := q.db.QueryRowContext(ctx, insertNotification, n.Level, n.Message, n.Action, n.CreatedAt).Scan(&id)
	return id, err
}

// An empty level matches every row; limit <= 0 means no limit.
const listNotifications = `SELECT id, level, message, action, created_at FROM notifications
WHERE (? = '' OR level = ?)
ORDER BY created_at DESC, id DESC
LIMIT CASE WHEN ? > 0 THEN ? ELSE -1 END`

func (q *Queries) ListNotifications(ctx context.Context, level string, limit int) ([]Notification, error) {
	rows, err := q.db.QueryContext(ctx, listNotifications, level, level, limit, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.Level, &n.Message, &n.Action, &n.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, n)
	}
	return items, rows.Err()
}

const deleteAllNotifications = `DELETE FROM notifications`

// DeleteAllNotifications returns the number of rows removed.
func (q *Queries) DeleteAllNotifications(ctx context.Context) (int64, error) {
	res, err := q.db.ExecContext(ctx, deleteAllNotifications)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
