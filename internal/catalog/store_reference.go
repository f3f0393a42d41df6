package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const zoneColumns = "id, code, name, description, is_binned, sort_strategy, default_bin_capacity, bins_per_shelf, created_at, updated_at"

func scanZone(scanner interface{ Scan(dest ...any) error }) (*StorageZone, error) {
	var (
		zone       StorageZone
		isBinned   int
		strategy   string
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(
		&zone.ID,
		&zone.Code,
		&zone.Name,
		&zone.Description,
		&isBinned,
		&strategy,
		&zone.DefaultBinCapacity,
		&zone.BinsPerShelf,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	zone.IsBinned = isBinned != 0
	zone.SortStrategy = SortStrategy(strategy)
	if created, err := parseTimeString(createdRaw); err == nil {
		zone.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		zone.UpdatedAt = updated
	}
	return &zone, nil
}

// UpsertZone creates or updates a storage zone keyed by code and returns the
// stored row.
func (q *queries) UpsertZone(ctx context.Context, zone *StorageZone) (*StorageZone, error) {
	if zone == nil {
		return nil, errors.New("zone is nil")
	}
	now := timestamp()
	_, err := q.q.ExecContext(
		ctx,
		`INSERT INTO storage_zones (code, name, description, is_binned, sort_strategy, default_bin_capacity, bins_per_shelf, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
         ON CONFLICT (code) DO UPDATE SET
             name = excluded.name,
             description = excluded.description,
             is_binned = excluded.is_binned,
             sort_strategy = excluded.sort_strategy,
             default_bin_capacity = excluded.default_bin_capacity,
             bins_per_shelf = excluded.bins_per_shelf,
             updated_at = excluded.updated_at`,
		zone.Code,
		zone.Name,
		zone.Description,
		boolToInt(zone.IsBinned),
		string(zone.SortStrategy),
		zone.DefaultBinCapacity,
		zone.BinsPerShelf,
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert zone: %w", err)
	}
	return q.GetZoneByCode(ctx, zone.Code)
}

// GetZoneByID fetches a zone by identifier or nil when absent.
func (q *queries) GetZoneByID(ctx context.Context, id int64) (*StorageZone, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+zoneColumns+` FROM storage_zones WHERE id = ?`, id)
	zone, err := scanZone(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get zone: %w", err)
	}
	return zone, nil
}

// GetZoneByCode fetches a zone by its unique code or nil when absent.
func (q *queries) GetZoneByCode(ctx context.Context, code string) (*StorageZone, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+zoneColumns+` FROM storage_zones WHERE code = ?`, code)
	zone, err := scanZone(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get zone by code: %w", err)
	}
	return zone, nil
}

// ListZones returns all zones ordered by code.
func (q *queries) ListZones(ctx context.Context) ([]*StorageZone, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT `+zoneColumns+` FROM storage_zones ORDER BY code`)
	if err != nil {
		return nil, fmt.Errorf("list zones: %w", err)
	}
	defer rows.Close()

	var zones []*StorageZone
	for rows.Next() {
		zone, err := scanZone(rows)
		if err != nil {
			return nil, err
		}
		zones = append(zones, zone)
	}
	return zones, rows.Err()
}

// SetZoneDefaultCapacity updates a zone's default bin capacity.
func (q *queries) SetZoneDefaultCapacity(ctx context.Context, zoneID int64, capacity int) error {
	if capacity < 1 {
		return fmt.Errorf("set zone capacity: capacity must be positive, got %d", capacity)
	}
	_, err := q.q.ExecContext(
		ctx,
		`UPDATE storage_zones SET default_bin_capacity = ?, updated_at = ? WHERE id = ?`,
		capacity,
		timestamp(),
		zoneID,
	)
	if err != nil {
		return fmt.Errorf("set zone capacity: %w", err)
	}
	return nil
}

const mediaTypeColumns = "id, name, default_zone_id, is_vinyl, requires_speed"

func scanMediaType(scanner interface{ Scan(dest ...any) error }) (*MediaType, error) {
	var (
		mt            MediaType
		isVinyl       int
		requiresSpeed int
	)
	if err := scanner.Scan(&mt.ID, &mt.Name, &mt.DefaultZoneID, &isVinyl, &requiresSpeed); err != nil {
		return nil, err
	}
	mt.IsVinyl = isVinyl != 0
	mt.RequiresSpeed = requiresSpeed != 0
	return &mt, nil
}

// UpsertMediaType creates or updates a media type keyed by name.
func (q *queries) UpsertMediaType(ctx context.Context, mt *MediaType) (*MediaType, error) {
	if mt == nil {
		return nil, errors.New("media type is nil")
	}
	_, err := q.q.ExecContext(
		ctx,
		`INSERT INTO media_types (name, default_zone_id, is_vinyl, requires_speed)
         VALUES (?, ?, ?, ?)
         ON CONFLICT (name) DO UPDATE SET
             default_zone_id = excluded.default_zone_id,
             is_vinyl = excluded.is_vinyl,
             requires_speed = excluded.requires_speed`,
		mt.Name,
		mt.DefaultZoneID,
		boolToInt(mt.IsVinyl),
		boolToInt(mt.RequiresSpeed),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert media type: %w", err)
	}
	return q.GetMediaTypeByName(ctx, mt.Name)
}

// GetMediaTypeByID fetches a media type by identifier or nil when absent.
func (q *queries) GetMediaTypeByID(ctx context.Context, id int64) (*MediaType, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+mediaTypeColumns+` FROM media_types WHERE id = ?`, id)
	mt, err := scanMediaType(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get media type: %w", err)
	}
	return mt, nil
}

// GetMediaTypeByName fetches a media type by its unique name or nil when absent.
func (q *queries) GetMediaTypeByName(ctx context.Context, name string) (*MediaType, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+mediaTypeColumns+` FROM media_types WHERE name = ?`, name)
	mt, err := scanMediaType(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get media type by name: %w", err)
	}
	return mt, nil
}

// ListMediaTypes returns all media types ordered by name.
func (q *queries) ListMediaTypes(ctx context.Context) ([]*MediaType, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT `+mediaTypeColumns+` FROM media_types ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list media types: %w", err)
	}
	defer rows.Close()

	var types []*MediaType
	for rows.Next() {
		mt, err := scanMediaType(rows)
		if err != nil {
			return nil, err
		}
		types = append(types, mt)
	}
	return types, rows.Err()
}

const bucketColumns = "id, code, name, sort_order, is_active"

func scanBucket(scanner interface{ Scan(dest ...any) error }) (*SortBucket, error) {
	var (
		bucket   SortBucket
		isActive int
	)
	if err := scanner.Scan(&bucket.ID, &bucket.Code, &bucket.Name, &bucket.SortOrder, &isActive); err != nil {
		return nil, err
	}
	bucket.IsActive = isActive != 0
	return &bucket, nil
}

// UpsertBucket creates or updates a sort bucket keyed by code.
func (q *queries) UpsertBucket(ctx context.Context, bucket *SortBucket) (*SortBucket, error) {
	if bucket == nil {
		return nil, errors.New("bucket is nil")
	}
	_, err := q.q.ExecContext(
		ctx,
		`INSERT INTO sort_buckets (code, name, sort_order, is_active)
         VALUES (?, ?, ?, ?)
         ON CONFLICT (code) DO UPDATE SET
             name = excluded.name,
             sort_order = excluded.sort_order,
             is_active = excluded.is_active`,
		bucket.Code,
		bucket.Name,
		bucket.SortOrder,
		boolToInt(bucket.IsActive),
	)
	if err != nil {
		return nil, fmt.Errorf("upsert bucket: %w", err)
	}
	return q.GetBucketByCode(ctx, bucket.Code)
}

// GetBucketByID fetches a bucket by identifier or nil when absent.
func (q *queries) GetBucketByID(ctx context.Context, id int64) (*SortBucket, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+bucketColumns+` FROM sort_buckets WHERE id = ?`, id)
	bucket, err := scanBucket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bucket: %w", err)
	}
	return bucket, nil
}

// GetBucketByCode fetches a bucket by its unique code or nil when absent.
func (q *queries) GetBucketByCode(ctx context.Context, code string) (*SortBucket, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+bucketColumns+` FROM sort_buckets WHERE code = ?`, code)
	bucket, err := scanBucket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get bucket by code: %w", err)
	}
	return bucket, nil
}

// ListBuckets returns buckets ordered by sort order then name. When
// activeOnly is set, inactive buckets are excluded.
func (q *queries) ListBuckets(ctx context.Context, activeOnly bool) ([]*SortBucket, error) {
	query := `SELECT ` + bucketColumns + ` FROM sort_buckets`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY sort_order, name`

	rows, err := q.q.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list buckets: %w", err)
	}
	defer rows.Close()

	var buckets []*SortBucket
	for rows.Next() {
		bucket, err := scanBucket(rows)
		if err != nil {
			return nil, err
		}
		buckets = append(buckets, bucket)
	}
	return buckets, rows.Err()
}
