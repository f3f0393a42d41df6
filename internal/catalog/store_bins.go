package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const logicalBinColumns = "id, zone_id, number, capacity_override, is_active"

func scanLogicalBin(scanner interface{ Scan(dest ...any) error }) (*LogicalBin, error) {
	var (
		bin      LogicalBin
		override sql.NullInt64
		isActive int
	)
	if err := scanner.Scan(&bin.ID, &bin.ZoneID, &bin.Number, &override, &isActive); err != nil {
		return nil, err
	}
	bin.CapacityOverride = intPtr(override)
	bin.IsActive = isActive != 0
	return &bin, nil
}

// UpsertLogicalBin creates or updates a logical bin keyed by (zone, number).
func (q *queries) UpsertLogicalBin(ctx context.Context, bin *LogicalBin) (*LogicalBin, error) {
	if bin == nil {
		return nil, errors.New("logical bin is nil")
	}
	_, err := q.q.ExecContext(
		ctx,
		`INSERT INTO logical_bins (zone_id, number, capacity_override, is_active)
         VALUES (?, ?, ?, ?)
         ON CONFLICT (zone_id, number) DO UPDATE SET
             capacity_override = excluded.capacity_override,
             is_active = excluded.is_active`,
		bin.ZoneID,
		bin.Number,
		nullableInt(bin.CapacityOverride),
		boolToInt(bin.IsActive),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert logical bin: %w", err)
	}
	return q.GetLogicalBinByNumber(ctx, bin.ZoneID, bin.Number)
}

// GetLogicalBin fetches a logical bin by identifier or nil when absent.
func (q *queries) GetLogicalBin(ctx context.Context, id int64) (*LogicalBin, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+logicalBinColumns+` FROM logical_bins WHERE id = ?`, id)
	bin, err := scanLogicalBin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get logical bin: %w", err)
	}
	return bin, nil
}

// GetLogicalBinByNumber fetches a logical bin by (zone, number) or nil when absent.
func (q *queries) GetLogicalBinByNumber(ctx context.Context, zoneID int64, number int) (*LogicalBin, error) {
	row := q.q.QueryRowContext(
		ctx,
		`SELECT `+logicalBinColumns+` FROM logical_bins WHERE zone_id = ? AND number = ?`,
		zoneID,
		number,
	)
	bin, err := scanLogicalBin(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get logical bin by number: %w", err)
	}
	return bin, nil
}

// ActiveBins returns a zone's active logical bins ordered by number.
func (q *queries) ActiveBins(ctx context.Context, zoneID int64) ([]*LogicalBin, error) {
	return q.queryBins(
		ctx,
		`SELECT `+logicalBinColumns+` FROM logical_bins WHERE zone_id = ? AND is_active = 1 ORDER BY number`,
		zoneID,
	)
}

// ActiveBinsInRange returns the zone's active logical bins whose number falls
// within [startBin, endBin], ordered by number.
func (q *queries) ActiveBinsInRange(ctx context.Context, zoneID int64, startBin, endBin int) ([]*LogicalBin, error) {
	return q.queryBins(
		ctx,
		`SELECT `+logicalBinColumns+` FROM logical_bins
         WHERE zone_id = ? AND is_active = 1 AND number >= ? AND number <= ?
         ORDER BY number`,
		zoneID,
		startBin,
		endBin,
	)
}

func (q *queries) queryBins(ctx context.Context, query string, args ...any) ([]*LogicalBin, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query logical bins: %w", err)
	}
	defer rows.Close()

	var bins []*LogicalBin
	for rows.Next() {
		bin, err := scanLogicalBin(rows)
		if err != nil {
			return nil, err
		}
		bins = append(bins, bin)
	}
	return bins, rows.Err()
}

// SetBinCapacityOverride updates a logical bin's capacity override. Passing
// nil clears the override so the zone default applies again.
func (q *queries) SetBinCapacityOverride(ctx context.Context, binID int64, override *int) error {
	if override != nil && *override < 1 {
		return fmt.Errorf("set bin override: capacity must be positive, got %d", *override)
	}
	_, err := q.q.ExecContext(
		ctx,
		`UPDATE logical_bins SET capacity_override = ? WHERE id = ?`,
		nullableInt(override),
		binID,
	)
	if err != nil {
		return fmt.Errorf("set bin override: %w", err)
	}
	return nil
}

const physicalBinColumns = "id, zone_id, shelf_number, bin_number, label, is_active"

func scanPhysicalBin(scanner interface{ Scan(dest ...any) error }) (*PhysicalBin, error) {
	var (
		bin      PhysicalBin
		isActive int
	)
	if err := scanner.Scan(&bin.ID, &bin.ZoneID, &bin.ShelfNumber, &bin.BinNumber, &bin.Label, &isActive); err != nil {
		return nil, err
	}
	bin.IsActive = isActive != 0
	return &bin, nil
}

// UpsertPhysicalBin creates or updates a physical bin keyed by (zone, shelf, bin).
func (q *queries) UpsertPhysicalBin(ctx context.Context, bin *PhysicalBin) (*PhysicalBin, error) {
	if bin == nil {
		return nil, errors.New("physical bin is nil")
	}
	_, err := q.q.ExecContext(
		ctx,
		`INSERT INTO physical_bins (zone_id, shelf_number, bin_number, label, is_active)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (zone_id, shelf_number, bin_number) DO UPDATE SET
             label = excluded.label,
             is_active = excluded.is_active`,
		bin.ZoneID,
		bin.ShelfNumber,
		bin.BinNumber,
		bin.Label,
		boolToInt(bin.IsActive),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert physical bin: %w", err)
	}

	row := q.q.QueryRowContext(
		ctx,
		`SELECT `+physicalBinColumns+` FROM physical_bins WHERE zone_id = ? AND shelf_number = ? AND bin_number = ?`,
		bin.ZoneID,
		bin.ShelfNumber,
		bin.BinNumber,
	)
	stored, err := scanPhysicalBin(row)
	if err != nil {
		return nil, fmt.Errorf("get physical bin: %w", err)
	}
	return stored, nil
}

// ListPhysicalBins returns a zone's active physical bins in physical order
// (shelf, then bin).
func (q *queries) ListPhysicalBins(ctx context.Context, zoneID int64) ([]*PhysicalBin, error) {
	rows, err := q.q.QueryContext(
		ctx,
		`SELECT `+physicalBinColumns+` FROM physical_bins
         WHERE zone_id = ? AND is_active = 1
         ORDER BY shelf_number, bin_number`,
		zoneID,
	)
	if err != nil {
		return nil, fmt.Errorf("list physical bins: %w", err)
	}
	defer rows.Close()

	var bins []*PhysicalBin
	for rows.Next() {
		bin, err := scanPhysicalBin(rows)
		if err != nil {
			return nil, err
		}
		bins = append(bins, bin)
	}
	return bins, rows.Err()
}

// ActivateMapping points a logical bin at a physical bin. Any other active
// mapping on the same physical bin is deactivated first, preserving the
// at-most-one-active-mapping-per-physical-bin invariant.
func (q *queries) ActivateMapping(ctx context.Context, logicalBinID, physicalBinID int64) (*BinMapping, error) {
	if _, err := q.q.ExecContext(
		ctx,
		`UPDATE bin_mappings SET is_active = 0 WHERE physical_bin_id = ? AND logical_bin_id != ?`,
		physicalBinID,
		logicalBinID,
	); err != nil {
		return nil, fmt.Errorf("deactivate sibling mappings: %w", err)
	}

	if _, err := q.q.ExecContext(
		ctx,
		`INSERT INTO bin_mappings (logical_bin_id, physical_bin_id, is_active)
         VALUES (?, ?, 1)
         ON CONFLICT (logical_bin_id) DO UPDATE SET
             physical_bin_id = excluded.physical_bin_id,
             is_active = 1`,
		logicalBinID,
		physicalBinID,
	); err != nil {
		return nil, fmt.Errorf("activate mapping: %w", err)
	}

	return q.ActiveMappingForLogical(ctx, logicalBinID)
}

// ActiveMappingForLogical returns the active mapping for a logical bin, or
// nil when unmapped.
func (q *queries) ActiveMappingForLogical(ctx context.Context, logicalBinID int64) (*BinMapping, error) {
	row := q.q.QueryRowContext(
		ctx,
		`SELECT id, logical_bin_id, physical_bin_id, is_active FROM bin_mappings
         WHERE logical_bin_id = ? AND is_active = 1`,
		logicalBinID,
	)
	var (
		mapping  BinMapping
		isActive int
	)
	err := row.Scan(&mapping.ID, &mapping.LogicalBinID, &mapping.PhysicalBinID, &isActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active mapping: %w", err)
	}
	mapping.IsActive = isActive != 0
	return &mapping, nil
}

// PhysicalLabelForLogical resolves a logical bin to its human-readable
// physical bin label via the active mapping. Returns "" when no active
// mapping exists.
func (q *queries) PhysicalLabelForLogical(ctx context.Context, logicalBinID int64) (string, error) {
	row := q.q.QueryRowContext(
		ctx,
		`SELECT z.code, p.shelf_number, p.bin_number
         FROM bin_mappings m
         JOIN physical_bins p ON p.id = m.physical_bin_id
         JOIN storage_zones z ON z.id = p.zone_id
         WHERE m.logical_bin_id = ? AND m.is_active = 1`,
		logicalBinID,
	)
	var (
		zoneCode string
		shelf    int
		bin      int
	)
	err := row.Scan(&zoneCode, &shelf, &bin)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("resolve physical label: %w", err)
	}
	return fmt.Sprintf("%s: Shelf %d Bin %d", zoneCode, shelf, bin), nil
}

const rangeColumns = "id, zone_id, bucket_id, start_bin, end_bin, is_active, created_at"

func scanRange(scanner interface{ Scan(dest ...any) error }) (*BucketBinRange, error) {
	var (
		r          BucketBinRange
		isActive   int
		createdRaw string
	)
	if err := scanner.Scan(&r.ID, &r.ZoneID, &r.BucketID, &r.StartBin, &r.EndBin, &isActive, &createdRaw); err != nil {
		return nil, err
	}
	r.IsActive = isActive != 0
	if created, err := parseTimeString(createdRaw); err == nil {
		r.CreatedAt = created
	}
	return &r, nil
}

// SetBucketRange replaces the active bucket bin range for a (zone, bucket)
// pair. Any previous active range is deactivated, keeping the replaced rows
// for audit.
func (q *queries) SetBucketRange(ctx context.Context, zoneID, bucketID int64, startBin, endBin int) (*BucketBinRange, error) {
	if endBin < startBin {
		return nil, fmt.Errorf("set bucket range: end bin %d precedes start bin %d", endBin, startBin)
	}

	if _, err := q.q.ExecContext(
		ctx,
		`UPDATE bucket_bin_ranges SET is_active = 0 WHERE zone_id = ? AND bucket_id = ? AND is_active = 1`,
		zoneID,
		bucketID,
	); err != nil {
		return nil, fmt.Errorf("deactivate previous range: %w", err)
	}

	res, err := q.q.ExecContext(
		ctx,
		`INSERT INTO bucket_bin_ranges (zone_id, bucket_id, start_bin, end_bin, is_active, created_at)
         VALUES (?, ?, ?, ?, 1, ?)`,
		zoneID,
		bucketID,
		startBin,
		endBin,
		timestamp(),
	)
	if err != nil {
		return nil, fmt.Errorf("insert bucket range: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	row := q.q.QueryRowContext(ctx, `SELECT `+rangeColumns+` FROM bucket_bin_ranges WHERE id = ?`, id)
	stored, err := scanRange(row)
	if err != nil {
		return nil, fmt.Errorf("get bucket range: %w", err)
	}
	return stored, nil
}

// ActiveRange returns the active bucket bin range for a (zone, bucket) pair,
// or nil when none is configured. Should duplicates ever exist despite the
// uniqueness constraint, the most recently created row wins.
func (q *queries) ActiveRange(ctx context.Context, zoneID, bucketID int64) (*BucketBinRange, error) {
	row := q.q.QueryRowContext(
		ctx,
		`SELECT `+rangeColumns+` FROM bucket_bin_ranges
         WHERE zone_id = ? AND bucket_id = ? AND is_active = 1
         ORDER BY id DESC LIMIT 1`,
		zoneID,
		bucketID,
	)
	r, err := scanRange(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get active range: %w", err)
	}
	return r, nil
}

// ListRanges returns a zone's active ranges ordered by start bin.
func (q *queries) ListRanges(ctx context.Context, zoneID int64) ([]*BucketBinRange, error) {
	rows, err := q.q.QueryContext(
		ctx,
		`SELECT `+rangeColumns+` FROM bucket_bin_ranges
         WHERE zone_id = ? AND is_active = 1
         ORDER BY start_bin, end_bin`,
		zoneID,
	)
	if err != nil {
		return nil, fmt.Errorf("list ranges: %w", err)
	}
	defer rows.Close()

	var ranges []*BucketBinRange
	for rows.Next() {
		r, err := scanRange(rows)
		if err != nil {
			return nil, err
		}
		ranges = append(ranges, r)
	}
	return ranges, rows.Err()
}
