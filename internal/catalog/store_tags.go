package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const tagColumns = "id, name, slug, scope, sort_order, note"

func scanTag(scanner interface{ Scan(dest ...any) error }) (*Tag, error) {
	var (
		tag   Tag
		scope string
	)
	if err := scanner.Scan(&tag.ID, &tag.Name, &tag.Slug, &scope, &tag.SortOrder, &tag.Note); err != nil {
		return nil, err
	}
	tag.Scope = TagScope(scope)
	return &tag, nil
}

// UpsertTag creates or updates a tag keyed by (scope, slug). The slug derives
// from the name when unset.
func (q *queries) UpsertTag(ctx context.Context, tag *Tag) (*Tag, error) {
	if tag == nil {
		return nil, errors.New("tag is nil")
	}
	if tag.Slug == "" {
		tag.Slug = slugify(tag.Name)
	}
	_, err := q.q.ExecContext(
		ctx,
		`INSERT INTO tags (name, slug, scope, sort_order, note)
         VALUES (?, ?, ?, ?, ?)
         ON CONFLICT (scope, slug) DO UPDATE SET
             name = excluded.name,
             sort_order = excluded.sort_order,
             note = excluded.note`,
		tag.Name,
		tag.Slug,
		string(tag.Scope),
		tag.SortOrder,
		tag.Note,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert tag: %w", err)
	}

	row := q.q.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE scope = ? AND slug = ?`, string(tag.Scope), tag.Slug)
	stored, err := scanTag(row)
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return stored, nil
}

// TagItem attaches an item-scoped tag to a media item.
func (q *queries) TagItem(ctx context.Context, itemID, tagID int64) error {
	tag, err := q.getTag(ctx, tagID)
	if err != nil {
		return err
	}
	if tag == nil {
		return fmt.Errorf("tag item: tag %d not found", tagID)
	}
	if tag.Scope != TagScopeItem {
		return fmt.Errorf("tag item: tag %q is %s-scoped", tag.Name, tag.Scope)
	}
	_, err = q.q.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO item_tags (media_item_id, tag_id, created_at) VALUES (?, ?, ?)`,
		itemID,
		tagID,
		timestamp(),
	)
	if err != nil {
		return fmt.Errorf("tag item: %w", err)
	}
	return nil
}

// TagArtist attaches an artist-scoped tag to an artist.
func (q *queries) TagArtist(ctx context.Context, artistID, tagID int64) error {
	tag, err := q.getTag(ctx, tagID)
	if err != nil {
		return err
	}
	if tag == nil {
		return fmt.Errorf("tag artist: tag %d not found", tagID)
	}
	if tag.Scope != TagScopeArtist {
		return fmt.Errorf("tag artist: tag %q is %s-scoped", tag.Name, tag.Scope)
	}
	_, err = q.q.ExecContext(
		ctx,
		`INSERT OR IGNORE INTO artist_tags (artist_id, tag_id, created_at) VALUES (?, ?, ?)`,
		artistID,
		tagID,
		timestamp(),
	)
	if err != nil {
		return fmt.Errorf("tag artist: %w", err)
	}
	return nil
}

// ListTags returns tags in a scope ordered by sort order then name.
func (q *queries) ListTags(ctx context.Context, scope TagScope) ([]*Tag, error) {
	rows, err := q.q.QueryContext(
		ctx,
		`SELECT `+tagColumns+` FROM tags WHERE scope = ? ORDER BY sort_order, name`,
		string(scope),
	)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		tag, err := scanTag(rows)
		if err != nil {
			return nil, err
		}
		tags = append(tags, tag)
	}
	return tags, rows.Err()
}

func (q *queries) getTag(ctx context.Context, id int64) (*Tag, error) {
	row := q.q.QueryRowContext(ctx, `SELECT `+tagColumns+` FROM tags WHERE id = ?`, id)
	tag, err := scanTag(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tag: %w", err)
	}
	return tag, nil
}
