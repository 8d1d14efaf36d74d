// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Activity actions.
const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries runs the activity journal statements.
type Queries struct {
	db DBTX
}

// New creates Queries over db.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// Activity is one journal row: a successful back-office mutation.
type Activity struct {
	ID        int64
	Resource  string
	EntityID  string
	Action    string
	Label     string
	Actor     string
	CreatedAt time.Time
}

// RecordActivityParams holds the columns of a new journal row.
type RecordActivityParams struct {
	Resource  string
	EntityID  string
	Action    string
	Label     string
	Actor     string
	CreatedAt time.Time
}

const recordActivity = `INSERT INTO activity (resource, entity_id, action, label, actor, created_at)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, resource, entity_id, action, label, actor, created_at`

// RecordActivity appends a journal row.
func (q *Queries) RecordActivity(ctx context.Context, arg RecordActivityParams) (Activity, error) {
	row := q.db.QueryRowContext(ctx, recordActivity,
		arg.Resource, arg.EntityID, arg.Action, arg.Label, arg.Actor, arg.CreatedAt.UTC())
	var a Activity
	err := row.Scan(&a.ID, &a.Resource, &a.EntityID, &a.Action, &a.Label, &a.Actor, &a.CreatedAt)
	return a, err
}

const listRecentActivity = `SELECT id, resource, entity_id, action, label, actor, created_at
FROM activity
ORDER BY created_at DESC, id DESC
LIMIT ?`

// ListRecentActivity returns the newest rows first.
func (q *Queries) ListRecentActivity(ctx context.Context, limit int64) ([]Activity, error) {
	rows, err := q.db.QueryContext(ctx, listRecentActivity, limit)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []Activity
	for rows.Next() {
		var a Activity
		if err := rows.Scan(&a.ID, &a.Resource, &a.EntityID, &a.Action, &a.Label, &a.Actor, &a.CreatedAt); err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const pruneActivity = `DELETE FROM activity WHERE created_at < ?`

// PruneActivity deletes rows older than before and returns how many were removed.
func (q *Queries) PruneActivity(ctx context.Context, before time.Time) (int64, error) {
	res, err := q.db.ExecContext(ctx, pruneActivity, before.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning activity: %w", err)
	}
	return res.RowsAffected()
}
