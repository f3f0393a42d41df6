package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const runColumns = "id, created_at, zone_id, bucket_id, notes"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*RebinRun, error) {
	var (
		run        RebinRun
		createdRaw string
		zoneID     sql.NullInt64
		bucketID   sql.NullInt64
	)
	if err := scanner.Scan(&run.ID, &createdRaw, &zoneID, &bucketID, &run.Notes); err != nil {
		return nil, err
	}
	run.ZoneID = int64Ptr(zoneID)
	run.BucketID = int64Ptr(bucketID)
	if created, err := parseTimeString(createdRaw); err == nil {
		run.CreatedAt = created
	}
	return &run, nil
}

// CreateRun opens a rebin run record for a scope.
func (q *queries) CreateRun(ctx context.Context, zoneID, bucketID *int64, notes string) (*RebinRun, error) {
	run := &RebinRun{
		ID:       NewRunID(),
		ZoneID:   zoneID,
		BucketID: bucketID,
		Notes:    notes,
	}
	_, err := q.q.ExecContext(
		ctx,
		`INSERT INTO rebin_runs (id, created_at, zone_id, bucket_id, notes)
         VALUES (?, ?, ?, ?, ?)`,
		run.ID,
		timestamp(),
		nullableInt64(run.ZoneID),
		nullableInt64(run.BucketID),
		run.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert rebin run: %w", err)
	}
	return q.GetRun(ctx, run.ID)
}

// GetRun fetches a rebin run by identifier or nil when absent.
func (q *queries) GetRun(ctx context.Context, id string) (*RebinRun, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+runColumns+` FROM rebin_runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get rebin run: %w", err)
	}
	return run, nil
}

// ListRuns returns rebin runs, most recent first.
func (q *queries) ListRuns(ctx context.Context, limit int) ([]*RebinRun, error) {
	query := `SELECT ` + runColumns + ` FROM rebin_runs ORDER BY created_at DESC, id`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list rebin runs: %w", err)
	}
	defer rows.Close()

	var runs []*RebinRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recent rebin run, or nil when none exist.
func (q *queries) LatestRun(ctx context.Context) (*RebinRun, error) {
	runs, err := q.ListRuns(ctx, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return runs[0], nil
}

const moveSelect = `SELECT m.id, m.run_id, m.media_item_id, m.old_logical_bin_id, m.new_logical_bin_id,
       m.old_physical_label, m.new_physical_label, m.is_done, m.created_at,
       i.title, a.display_name
FROM rebin_moves m
JOIN media_items i ON i.id = m.media_item_id
JOIN artists a ON a.id = i.artist_id`

func scanMove(scanner interface{ Scan(dest ...any) error }) (*RebinMove, error) {
	var (
		move       RebinMove
		oldBin     sql.NullInt64
		newBin     sql.NullInt64
		isDone     int
		createdRaw string
	)
	if err := scanner.Scan(
		&move.ID,
		&move.RunID,
		&move.MediaItemID,
		&oldBin,
		&newBin,
		&move.OldPhysicalLabel,
		&move.NewPhysicalLabel,
		&isDone,
		&createdRaw,
		&move.ItemTitle,
		&move.ArtistDisplayName,
	); err != nil {
		return nil, err
	}
	move.OldLogicalBinID = int64Ptr(oldBin)
	move.NewLogicalBinID = int64Ptr(newBin)
	move.IsDone = isDone != 0
	if created, err := parseTimeString(createdRaw); err == nil {
		move.CreatedAt = created
	}
	return &move, nil
}

// CreateMoves appends a batch of move records for a run. Run inside the same
// Tx as the bin reassignments they describe.
func (q *queries) CreateMoves(ctx context.Context, moves []*RebinMove) error {
	now := timestamp()
	for _, move := range moves {
		if move == nil {
			continue
		}
		if _, err := q.q.ExecContext(
			ctx,
			`INSERT INTO rebin_moves (run_id, media_item_id, old_logical_bin_id, new_logical_bin_id,
                 old_physical_label, new_physical_label, is_done, created_at)
             VALUES (?, ?, ?, ?, ?, ?, 0, ?)`,
			move.RunID,
			move.MediaItemID,
			nullableInt64(move.OldLogicalBinID),
			nullableInt64(move.NewLogicalBinID),
			move.OldPhysicalLabel,
			move.NewPhysicalLabel,
			now,
		); err != nil {
			return fmt.Errorf("insert rebin move: %w", err)
		}
	}
	return nil
}

// ListMovesForRun returns a run's moves in creation order.
func (q *queries) ListMovesForRun(ctx context.Context, runID string) ([]*RebinMove, error) {
	return q.queryMoves(ctx, moveSelect+` WHERE m.run_id = ? ORDER BY m.id`, runID)
}

// ListPendingMoves returns every move not yet marked done, oldest first.
func (q *queries) ListPendingMoves(ctx context.Context) ([]*RebinMove, error) {
	return q.queryMoves(ctx, moveSelect+` WHERE m.is_done = 0 ORDER BY m.created_at, m.id`)
}

func (q *queries) queryMoves(ctx context.Context, query string, args ...any) ([]*RebinMove, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rebin moves: %w", err)
	}
	defer rows.Close()

	var moves []*RebinMove
	for rows.Next() {
		move, err := scanMove(rows)
		if err != nil {
			return nil, err
		}
		moves = append(moves, move)
	}
	return moves, rows.Err()
}

// MarkMoveDone flips a move's operator-workflow flag. The audit fields stay
// immutable.
func (q *queries) MarkMoveDone(ctx context.Context, moveID int64, done bool) (bool, error) {
	res, err := q.q.ExecContext(ctx, `UPDATE rebin_moves SET is_done = ? WHERE id = ?`, boolToInt(done), moveID)
	if err != nil {
		return false, fmt.Errorf("mark move done: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}
