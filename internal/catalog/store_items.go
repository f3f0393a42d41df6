package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

const itemSelect = `SELECT i.id, i.master_key, i.artist_id, i.title, i.release_year, i.pressing_year,
       i.media_type_id, i.owner, i.speed_rpm, i.notes, i.bucket_id, i.zone_override_id,
       i.logical_bin_id, i.created_at, i.updated_at,
       a.sort_name, a.display_name,
       COALESCE(i.zone_override_id, t.default_zone_id)
FROM media_items i
JOIN artists a ON a.id = i.artist_id
JOIN media_types t ON t.id = i.media_type_id`

func scanItem(scanner interface{ Scan(dest ...any) error }) (*MediaItem, error) {
	var (
		item         MediaItem
		masterKey    sql.NullString
		releaseYear  sql.NullInt64
		pressingYear sql.NullInt64
		owner        string
		speedRPM     sql.NullInt64
		bucketID     sql.NullInt64
		zoneOverride sql.NullInt64
		logicalBin   sql.NullInt64
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(
		&item.ID,
		&masterKey,
		&item.ArtistID,
		&item.Title,
		&releaseYear,
		&pressingYear,
		&item.MediaTypeID,
		&owner,
		&speedRPM,
		&item.Notes,
		&bucketID,
		&zoneOverride,
		&logicalBin,
		&createdRaw,
		&updatedRaw,
		&item.ArtistSortName,
		&item.ArtistDisplayName,
		&item.EffectiveZoneID,
	); err != nil {
		return nil, err
	}
	item.MasterKey = masterKey.String
	item.ReleaseYear = intPtr(releaseYear)
	item.PressingYear = intPtr(pressingYear)
	item.Owner = Owner(owner)
	item.SpeedRPM = intPtr(speedRPM)
	item.BucketID = int64Ptr(bucketID)
	item.ZoneOverrideID = int64Ptr(zoneOverride)
	item.LogicalBinID = int64Ptr(logicalBin)
	if created, err := parseTimeString(createdRaw); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		item.UpdatedAt = updated
	}
	return &item, nil
}

// CreateItem inserts a media item. The logical bin reference always starts
// unset; only the placement engine assigns it.
func (q *queries) CreateItem(ctx context.Context, item *MediaItem) (*MediaItem, error) {
	if item == nil {
		return nil, errors.New("item is nil")
	}
	now := timestamp()
	res, err := q.q.ExecContext(
		ctx,
		`INSERT INTO media_items (master_key, artist_id, title, release_year, pressing_year,
             media_type_id, owner, speed_rpm, notes, bucket_id, zone_override_id, logical_bin_id,
             created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL, ?, ?)`,
		nullableString(item.MasterKey),
		item.ArtistID,
		item.Title,
		nullableInt(item.ReleaseYear),
		nullableInt(item.PressingYear),
		item.MediaTypeID,
		string(item.Owner),
		nullableInt(item.SpeedRPM),
		item.Notes,
		nullableInt64(item.BucketID),
		nullableInt64(item.ZoneOverrideID),
		now,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return q.GetItem(ctx, id)
}

// UpdateItem persists user-editable item fields. The logical bin reference is
// deliberately excluded: it is engine-owned and changes only through
// UpdateItemBin or the batch rebin path.
func (q *queries) UpdateItem(ctx context.Context, item *MediaItem) (*MediaItem, error) {
	if item == nil {
		return nil, errors.New("item is nil")
	}
	_, err := q.q.ExecContext(
		ctx,
		`UPDATE media_items
         SET master_key = ?, artist_id = ?, title = ?, release_year = ?, pressing_year = ?,
             media_type_id = ?, owner = ?, speed_rpm = ?, notes = ?, bucket_id = ?,
             zone_override_id = ?, updated_at = ?
         WHERE id = ?`,
		nullableString(item.MasterKey),
		item.ArtistID,
		item.Title,
		nullableInt(item.ReleaseYear),
		nullableInt(item.PressingYear),
		item.MediaTypeID,
		string(item.Owner),
		nullableInt(item.SpeedRPM),
		item.Notes,
		nullableInt64(item.BucketID),
		nullableInt64(item.ZoneOverrideID),
		timestamp(),
		item.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return q.GetItem(ctx, item.ID)
}

// DeleteItem removes an item by identifier.
func (q *queries) DeleteItem(ctx context.Context, id int64) (bool, error) {
	res, err := q.q.ExecContext(ctx, `DELETE FROM media_items WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// GetItem fetches an item by identifier or nil when absent.
func (q *queries) GetItem(ctx context.Context, id int64) (*MediaItem, error) {
	row := q.q.QueryRowContext(ctx, itemSelect+` WHERE i.id = ?`, id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// GetItemByMasterKey fetches an item by its stable legacy key or nil when absent.
func (q *queries) GetItemByMasterKey(ctx context.Context, masterKey string) (*MediaItem, error) {
	row := q.q.QueryRowContext(ctx, itemSelect+` WHERE i.master_key = ?`, masterKey)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item by master key: %w", err)
	}
	return item, nil
}

// ItemsInScope loads the items governed by one placement scope. For a
// BUCKETED zone the scope is (zone, bucket-or-none); for any other strategy
// the bucket does not partition placement and every item in the effective
// zone belongs to the single zone scope. The row order is a stable base; the
// placement engine applies the canonical collation on top.
func (q *queries) ItemsInScope(ctx context.Context, zone *StorageZone, bucketID *int64) ([]*MediaItem, error) {
	if zone == nil {
		return nil, errors.New("zone is nil")
	}

	query := itemSelect + ` WHERE (i.zone_override_id = ? OR (i.zone_override_id IS NULL AND t.default_zone_id = ?))`
	args := []any{zone.ID, zone.ID}

	if zone.SortStrategy == SortBucketed {
		if bucketID == nil {
			query += ` AND i.bucket_id IS NULL`
		} else {
			query += ` AND i.bucket_id = ?`
			args = append(args, *bucketID)
		}
	}
	query += ` ORDER BY a.sort_name, i.title, i.id`

	return q.queryItems(ctx, query, args...)
}

// ItemsForArtists returns every item whose artist is in the given set.
func (q *queries) ItemsForArtists(ctx context.Context, artistIDs []int64) ([]*MediaItem, error) {
	if len(artistIDs) == 0 {
		return nil, nil
	}
	placeholders := makePlaceholders(len(artistIDs))
	args := make([]any, len(artistIDs))
	for i, id := range artistIDs {
		args[i] = id
	}
	return q.queryItems(ctx, itemSelect+` WHERE i.artist_id IN (`+placeholders+`) ORDER BY i.id`, args...)
}

// ItemFilter narrows ListItems output. Zero values mean "no filter".
type ItemFilter struct {
	ZoneID     int64
	BucketID   int64
	ArtistID   int64
	TagSlug    string
	Unassigned bool
}

// ListItems returns items matching the filter in canonical display order.
func (q *queries) ListItems(ctx context.Context, filter ItemFilter) ([]*MediaItem, error) {
	var (
		conditions []string
		args       []any
	)
	if filter.ZoneID != 0 {
		conditions = append(conditions, `(i.zone_override_id = ? OR (i.zone_override_id IS NULL AND t.default_zone_id = ?))`)
		args = append(args, filter.ZoneID, filter.ZoneID)
	}
	if filter.BucketID != 0 {
		conditions = append(conditions, `i.bucket_id = ?`)
		args = append(args, filter.BucketID)
	}
	if filter.ArtistID != 0 {
		conditions = append(conditions, `i.artist_id = ?`)
		args = append(args, filter.ArtistID)
	}
	if filter.TagSlug != "" {
		conditions = append(conditions, `i.id IN (
            SELECT it.media_item_id FROM item_tags it
            JOIN tags g ON g.id = it.tag_id
            WHERE g.scope = ? AND g.slug = ?)`)
		args = append(args, string(TagScopeItem), filter.TagSlug)
	}
	if filter.Unassigned {
		conditions = append(conditions, `i.logical_bin_id IS NULL`)
	}

	query := itemSelect
	if len(conditions) > 0 {
		query += ` WHERE ` + strings.Join(conditions, ` AND `)
	}
	query += ` ORDER BY a.sort_name, i.title, i.id`

	return q.queryItems(ctx, query, args...)
}

func (q *queries) queryItems(ctx context.Context, query string, args ...any) ([]*MediaItem, error) {
	rows, err := q.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []*MediaItem
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// BinAssignment pairs an item with its newly computed logical bin.
type BinAssignment struct {
	ItemID int64
	BinID  *int64
}

// UpdateItemBin writes one item's logical bin reference and nothing else.
// This is the engine's single-item persistence path; it bypasses the change
// triggers so assignment never cascades into further rebins.
func (q *queries) UpdateItemBin(ctx context.Context, itemID int64, binID *int64) error {
	_, err := q.q.ExecContext(
		ctx,
		`UPDATE media_items SET logical_bin_id = ?, updated_at = ? WHERE id = ?`,
		nullableInt64(binID),
		timestamp(),
		itemID,
	)
	if err != nil {
		return fmt.Errorf("update item bin: %w", err)
	}
	return nil
}

// UpdateItemBins applies a batch of bin reassignments. Run inside a Tx so a
// scope's reassignment commits atomically with its move records.
func (q *queries) UpdateItemBins(ctx context.Context, assignments []BinAssignment) error {
	now := timestamp()
	for _, assignment := range assignments {
		if _, err := q.q.ExecContext(
			ctx,
			`UPDATE media_items SET logical_bin_id = ?, updated_at = ? WHERE id = ?`,
			nullableInt64(assignment.BinID),
			now,
			assignment.ItemID,
		); err != nil {
			return fmt.Errorf("batch update item %d bin: %w", assignment.ItemID, err)
		}
	}
	return nil
}

// CountItemsPerBin returns the number of items currently assigned to each
// logical bin in a zone, keyed by logical bin ID.
func (q *queries) CountItemsPerBin(ctx context.Context, zoneID int64) (map[int64]int, error) {
	rows, err := q.q.QueryContext(
		ctx,
		`SELECT i.logical_bin_id, COUNT(1)
         FROM media_items i
         JOIN logical_bins b ON b.id = i.logical_bin_id
         WHERE b.zone_id = ?
         GROUP BY i.logical_bin_id`,
		zoneID,
	)
	if err != nil {
		return nil, fmt.Errorf("count items per bin: %w", err)
	}
	defer rows.Close()

	counts := make(map[int64]int)
	for rows.Next() {
		var (
			binID int64
			count int
		)
		if err := rows.Scan(&binID, &count); err != nil {
			return nil, err
		}
		counts[binID] = count
	}
	return counts, rows.Err()
}

// Counts aggregates catalog totals for status output.
type Counts struct {
	Items      int
	Artists    int
	Zones      int
	Unassigned int
}

// CatalogCounts returns aggregate totals for status displays.
func (q *queries) CatalogCounts(ctx context.Context) (Counts, error) {
	var counts Counts
	queriesByTarget := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(1) FROM media_items`, &counts.Items},
		{`SELECT COUNT(1) FROM artists`, &counts.Artists},
		{`SELECT COUNT(1) FROM storage_zones`, &counts.Zones},
		{`SELECT COUNT(1) FROM media_items WHERE logical_bin_id IS NULL`, &counts.Unassigned},
	}
	for _, target := range queriesByTarget {
		row := q.q.QueryRowContext(ctx, target.query)
		if err := row.Scan(target.dest); err != nil {
			return Counts{}, fmt.Errorf("catalog counts: %w", err)
		}
	}
	return counts, nil
}
