package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/yumyai/protlit/pkg/model"
)

const historySchema = `
CREATE TABLE IF NOT EXISTS report_history (
	id            TEXT PRIMARY KEY,
	pdb_id        TEXT NOT NULL,
	uniprot_id    TEXT NOT NULL DEFAULT '',
	title         TEXT NOT NULL DEFAULT '',
	hotspot_count INTEGER NOT NULL DEFAULT 0,
	warning_count INTEGER NOT NULL DEFAULT 0,
	created_at    TEXT NOT NULL,
	body          TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS report_history_created ON report_history(created_at);
`

const DefaultHistoryLimit = 50

// fixed width so created_at sorts lexically
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// HistoryEntry is the list view of a stored report.
type HistoryEntry struct {
	ID           string    `json:"id"`
	PDBID        string    `json:"pdb_id"`
	UniProtID    string    `json:"uniprot_id"`
	Title        string    `json:"title"`
	HotspotCount int       `json:"hotspot_count"`
	WarningCount int       `json:"warning_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// HistoryStore persists completed reports in sqlite.
type HistoryStore struct {
	db *sql.DB
}

func NewHistoryStore(db *sql.DB) *HistoryStore {
	return &HistoryStore{db: db}
}

func (h *HistoryStore) Migrate() error {
	_, err := h.db.Exec(historySchema)
	return errors.Wrap(err, "migrate report_history")
}

func (h *HistoryStore) Insert(ctx context.Context, report *model.Report) error {
	body, err := json.Marshal(report)
	if err != nil {
		return errors.Wrap(err, "encode report")
	}

	_, err = h.db.ExecContext(ctx,
		`INSERT INTO report_history (id, pdb_id, uniprot_id, title, hotspot_count, warning_count, created_at, body)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.ID, report.PDBID, report.UniProtID, report.Title,
		len(report.Hotspots), len(report.Warnings),
		report.CreatedAt.UTC().Format(timeLayout), string(body),
	)
	return errors.Wrapf(err, "insert report %s", report.ID)
}

// List returns the newest entries first. limit <= 0 means DefaultHistoryLimit.
func (h *HistoryStore) List(ctx context.Context, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	stm, err := h.db.PrepareContext(ctx,
		`SELECT id, pdb_id, uniprot_id, title, hotspot_count, warning_count, created_at
		 FROM report_history ORDER BY created_at DESC LIMIT ?`)
	if err != nil {
		return nil, errors.Wrap(err, "prepare history list")
	}
	defer stm.Close()

	rows, err := stm.QueryContext(ctx, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query history")
	}
	defer rows.Close()

	entries := []HistoryEntry{}
	for rows.Next() {
		var e HistoryEntry
		var created string
		if err := rows.Scan(&e.ID, &e.PDBID, &e.UniProtID, &e.Title, &e.HotspotCount, &e.WarningCount, &created); err != nil {
			return nil, errors.Wrap(err, "scan history row")
		}
		e.CreatedAt, err = time.Parse(timeLayout, created)
		if err != nil {
			return nil, errors.Wrapf(err, "bad created_at for %s", e.ID)
		}
		entries = append(entries, e)
	}
	return entries, errors.Wrap(rows.Err(), "iterate history")
}

// Get decodes a stored report.
func (h *HistoryStore) Get(ctx context.Context, id string) (*model.Report, error) {
	var body string
	err := h.db.QueryRowContext(ctx, `SELECT body FROM report_history WHERE id = ?`, id).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errors.Wrapf(ErrNotFound, "report %s", id)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "load report %s", id)
	}

	var report model.Report
	if err := json.Unmarshal([]byte(body), &report); err != nil {
		return nil, errors.Wrapf(err, "decode report %s", id)
	}
	return &report, nil
}
