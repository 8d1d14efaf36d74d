// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"errors"
)

const getSchedulerOverride = `SELECT override_schedule FROM scheduler_overrides WHERE name = ?`

// GetSchedulerOverride returns the saved schedule of a job, or "" when none is saved.
func (q *Queries) GetSchedulerOverride(ctx context.Context, name string) (string, error) {
	var schedule string
	err := q.db.QueryRowContext(ctx, getSchedulerOverride, name).Scan(&schedule)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return schedule, err
}

const upsertSchedulerOverride = `INSERT INTO scheduler_overrides (name, override_schedule, updated_at)
VALUES (?, ?, CURRENT_TIMESTAMP)
ON CONFLICT (name) DO UPDATE SET override_schedule = excluded.override_schedule, updated_at = CURRENT_TIMESTAMP`

// UpsertSchedulerOverride saves the schedule of a job.
func (q *Queries) UpsertSchedulerOverride(ctx context.Context, name, schedule string) error {
	_, err := q.db.ExecContext(ctx, upsertSchedulerOverride, name, schedule)
	return err
}

const deleteSchedulerOverride = `DELETE FROM scheduler_overrides WHERE name = ?`

// DeleteSchedulerOverride forgets the saved schedule of a job.
func (q *Queries) DeleteSchedulerOverride(ctx context.Context, name string) error {
	_, err := q.db.ExecContext(ctx, deleteSchedulerOverride, name)
	return err
}
