package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const artistColumns = "id, kind, name_primary, name_secondary, name_suffix, filed_under_id, display_name, sort_name, alpha_bucket, created_at, updated_at"

func scanArtist(scanner interface{ Scan(dest ...any) error }) (*Artist, error) {
	var (
		artist     Artist
		kind       string
		filedUnder sql.NullInt64
		createdRaw string
		updatedRaw string
	)
	if err := scanner.Scan(
		&artist.ID,
		&kind,
		&artist.NamePrimary,
		&artist.NameSecondary,
		&artist.NameSuffix,
		&filedUnder,
		&artist.DisplayName,
		&artist.SortName,
		&artist.AlphaBucket,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}
	artist.Kind = ArtistKind(kind)
	artist.FiledUnderID = int64Ptr(filedUnder)
	if created, err := parseTimeString(createdRaw); err == nil {
		artist.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw); err == nil {
		artist.UpdatedAt = updated
	}
	return &artist, nil
}

// SaveArtist normalizes and persists an artist, inserting when ID is zero.
// After the write, stored sort fields are propagated to every artist filed
// under this one so their ranking stays aligned. Propagation is a direct
// bulk update; callers that need dependent items rebinned must route the
// change through the trigger layer.
func (q *queries) SaveArtist(ctx context.Context, artist *Artist) (*Artist, error) {
	if artist == nil {
		return nil, errors.New("artist is nil")
	}

	var filing *Artist
	if artist.FiledUnderID != nil {
		var err error
		filing, err = q.GetArtist(ctx, *artist.FiledUnderID)
		if err != nil {
			return nil, err
		}
		if filing == nil {
			return nil, fmt.Errorf("save artist: filed-under artist %d not found", *artist.FiledUnderID)
		}
	}

	if err := NormalizeArtist(artist, filing); err != nil {
		return nil, err
	}

	now := timestamp()
	if artist.ID == 0 {
		res, err := q.q.ExecContext(
			ctx,
			`INSERT INTO artists (kind, name_primary, name_secondary, name_suffix, filed_under_id, display_name, sort_name, alpha_bucket, created_at, updated_at)
             VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			string(artist.Kind),
			artist.NamePrimary,
			artist.NameSecondary,
			artist.NameSuffix,
			nullableInt64(artist.FiledUnderID),
			artist.DisplayName,
			artist.SortName,
			artist.AlphaBucket,
			now,
			now,
		)
		if err != nil {
			return nil, fmt.Errorf("insert artist: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return nil, fmt.Errorf("last insert id: %w", err)
		}
		artist.ID = id
	} else {
		_, err := q.q.ExecContext(
			ctx,
			`UPDATE artists
             SET kind = ?, name_primary = ?, name_secondary = ?, name_suffix = ?,
                 filed_under_id = ?, display_name = ?, sort_name = ?, alpha_bucket = ?, updated_at = ?
             WHERE id = ?`,
			string(artist.Kind),
			artist.NamePrimary,
			artist.NameSecondary,
			artist.NameSuffix,
			nullableInt64(artist.FiledUnderID),
			artist.DisplayName,
			artist.SortName,
			artist.AlphaBucket,
			now,
			artist.ID,
		)
		if err != nil {
			return nil, fmt.Errorf("update artist: %w", err)
		}
	}

	// Keep dependents aligned when this artist's stored sort fields change.
	if _, err := q.q.ExecContext(
		ctx,
		`UPDATE artists SET sort_name = ?, alpha_bucket = ?, updated_at = ?
         WHERE filed_under_id = ? AND id != ?`,
		artist.SortName,
		artist.AlphaBucket,
		now,
		artist.ID,
		artist.ID,
	); err != nil {
		return nil, fmt.Errorf("propagate sort fields: %w", err)
	}

	return q.GetArtist(ctx, artist.ID)
}

// GetArtist fetches an artist by identifier or nil when absent.
func (q *queries) GetArtist(ctx context.Context, id int64) (*Artist, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+artistColumns+` FROM artists WHERE id = ?`, id)
	artist, err := scanArtist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get artist: %w", err)
	}
	return artist, nil
}

// FindBand looks up a band artist by its normalized primary name.
func (q *queries) FindBand(ctx context.Context, namePrimary string) (*Artist, error) {
	row := q.q.QueryRowContext(
		ctx,
		`SELECT `+artistColumns+` FROM artists WHERE kind = ? AND name_primary = ? ORDER BY id LIMIT 1`,
		string(ArtistBand),
		namePrimary,
	)
	artist, err := scanArtist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find band: %w", err)
	}
	return artist, nil
}

// FindPerson looks up a person artist by normalized first and last name.
func (q *queries) FindPerson(ctx context.Context, first, last string) (*Artist, error) {
	row := q.q.QueryRowContext(
		ctx,
		`SELECT `+artistColumns+` FROM artists WHERE kind = ? AND name_primary = ? AND name_secondary = ? ORDER BY id LIMIT 1`,
		string(ArtistPerson),
		first,
		last,
	)
	artist, err := scanArtist(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find person: %w", err)
	}
	return artist, nil
}

// ListArtists returns all artists ordered by sort name.
func (q *queries) ListArtists(ctx context.Context) ([]*Artist, error) {
	rows, err := q.q.QueryContext(ctx, `SELECT `+artistColumns+` FROM artists ORDER BY sort_name, id`)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	defer rows.Close()

	var artists []*Artist
	for rows.Next() {
		artist, err := scanArtist(rows)
		if err != nil {
			return nil, err
		}
		artists = append(artists, artist)
	}
	return artists, rows.Err()
}

// AffectedArtistIDs returns the artist itself plus every artist filed under
// it. The dependents' stored sort fields are bulk-updated on save without
// their own item-level triggers, so rebin scheduling must enumerate items
// across this whole set.
func (q *queries) AffectedArtistIDs(ctx context.Context, artistID int64) ([]int64, error) {
	rows, err := q.q.QueryContext(
		ctx,
		`SELECT id FROM artists WHERE id = ? OR filed_under_id = ?`,
		artistID,
		artistID,
	)
	if err != nil {
		return nil, fmt.Errorf("affected artist ids: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
