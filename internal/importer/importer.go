package importer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"platter/internal/binwatch"
	"platter/internal/catalog"
	"platter/internal/logging"
)

// DefaultSheet is the worksheet read when none is named.
const DefaultSheet = "Sheet1"

// errDryRun forces the import transaction to roll back after a full pass.
var errDryRun = errors.New("dry run rollback")

// Options controls one import invocation.
type Options struct {
	Sheet  string
	DryRun bool
	Limit  int
}

// Stats summarizes an import pass.
type Stats struct {
	Rows           int
	Created        int
	Updated        int
	Skipped        int
	ArtistsCreated int
}

// Importer loads legacy workbook rows into the catalog.
type Importer struct {
	store   *catalog.Store
	watcher *binwatch.Watcher
	logger  *slog.Logger
}

// New constructs an Importer. The watcher may be nil, in which case imported
// items are left for a later manual rebin.
func New(store *catalog.Store, watcher *binwatch.Watcher, logger *slog.Logger) *Importer {
	return &Importer{
		store:   store,
		watcher: watcher,
		logger:  logging.NewComponentLogger(logger, "importer"),
	}
}

// ImportFile reads one workbook and upserts its rows. The entire pass runs
// in a single transaction; a dry run performs every write and then rolls
// the transaction back, so validation sees exactly what a real import would.
func (imp *Importer) ImportFile(ctx context.Context, path string, opts Options) (Stats, error) {
	sheet := opts.Sheet
	if sheet == "" {
		sheet = DefaultSheet
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return Stats{}, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return Stats{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return Stats{}, fmt.Errorf("sheet %q is empty", sheet)
	}

	columns, err := resolveColumns(rows[0])
	if err != nil {
		return Stats{}, err
	}

	var stats Stats
	rec := binwatch.NewRecorder()
	err = imp.store.WithTx(ctx, func(tx *catalog.Tx) error {
		lookups, txErr := loadLookups(ctx, tx)
		if txErr != nil {
			return txErr
		}
		for i, row := range rows[1:] {
			if opts.Limit > 0 && stats.Rows >= opts.Limit {
				break
			}
			stats.Rows++
			if txErr := imp.importRow(ctx, tx, rec, lookups, columns, row, i+2, &stats); txErr != nil {
				return txErr
			}
		}
		if opts.DryRun {
			return errDryRun
		}
		return nil
	})
	if errors.Is(err, errDryRun) {
		imp.logger.Info("dry run complete, all writes rolled back", logging.Int("rows", stats.Rows))
		return stats, nil
	}
	if err != nil {
		return Stats{}, err
	}

	if imp.watcher != nil {
		if err := imp.watcher.Flush(ctx, rec); err != nil {
			return stats, err
		}
	}
	imp.logger.Info("import complete",
		logging.Int("rows", stats.Rows),
		logging.Int("created", stats.Created),
		logging.Int("updated", stats.Updated),
		logging.Int("skipped", stats.Skipped),
	)
	return stats, nil
}

type lookups struct {
	bucketsByCode    map[string]*catalog.SortBucket
	mediaTypesByName map[string]*catalog.MediaType
}

func loadLookups(ctx context.Context, tx *catalog.Tx) (*lookups, error) {
	buckets, err := tx.ListBuckets(ctx, false)
	if err != nil {
		return nil, err
	}
	mediaTypes, err := tx.ListMediaTypes(ctx)
	if err != nil {
		return nil, err
	}
	l := &lookups{
		bucketsByCode:    make(map[string]*catalog.SortBucket, len(buckets)),
		mediaTypesByName: make(map[string]*catalog.MediaType, len(mediaTypes)),
	}
	for _, b := range buckets {
		l.bucketsByCode[b.Code] = b
	}
	for _, mt := range mediaTypes {
		l.mediaTypesByName[strings.ToLower(mt.Name)] = mt
	}
	return l, nil
}

func (imp *Importer) importRow(ctx context.Context, tx *catalog.Tx, rec *binwatch.Recorder, l *lookups, columns map[string]int, row []string, rowNum int, stats *Stats) error {
	masterKey := cellString(row, columns, "master_key")
	artistPrimary := cellString(row, columns, "artist_primary")
	title := cellString(row, columns, "title")
	if masterKey == "" || title == "" || artistPrimary == "" {
		stats.Skipped++
		return nil
	}

	kind := catalog.ArtistKind(strings.ToUpper(cellString(row, columns, "artist_kind")))
	if kind != catalog.ArtistPerson && kind != catalog.ArtistBand {
		kind = catalog.ArtistBand
	}
	artistSecondary := cellString(row, columns, "artist_secondary")
	if kind == catalog.ArtistPerson && artistSecondary == "" {
		return fmt.Errorf("row %d: person artist %q missing last name", rowNum, artistPrimary)
	}

	bucket, err := resolveBucket(l, cellString(row, columns, "sortkey2"), rowNum)
	if err != nil {
		return err
	}
	mediaType, err := resolveMediaType(l, cellString(row, columns, "sortkey3"), rowNum)
	if err != nil {
		return err
	}

	owner := catalog.OwnerMe
	if cellBool(row, columns, "special") {
		owner = catalog.OwnerBIL
	}

	artist, err := imp.findOrCreateArtist(ctx, tx, kind, artistPrimary, artistSecondary, cellString(row, columns, "name_suffix"), stats)
	if err != nil {
		return fmt.Errorf("row %d: %w", rowNum, err)
	}

	releaseYear := cellInt(row, columns, "release_year")
	item := &catalog.MediaItem{
		MasterKey:    masterKey,
		ArtistID:     artist.ID,
		Title:        title,
		ReleaseYear:  releaseYear,
		PressingYear: releaseYear,
		MediaTypeID:  mediaType.ID,
		Owner:        owner,
		SpeedRPM:     cellInt(row, columns, "speed"),
	}
	if bucket != nil {
		item.BucketID = &bucket.ID
	}

	existing, err := tx.GetItemByMasterKey(ctx, masterKey)
	if err != nil {
		return err
	}
	var oldSnap *binwatch.ItemSnapshot
	var saved *catalog.MediaItem
	if existing != nil {
		oldSnap = binwatch.SnapshotItem(existing)
		item.ID = existing.ID
		item.Notes = existing.Notes
		item.ZoneOverrideID = existing.ZoneOverrideID
		saved, err = tx.UpdateItem(ctx, item)
		if err != nil {
			return fmt.Errorf("row %d: update item: %w", rowNum, err)
		}
		stats.Updated++
	} else {
		saved, err = tx.CreateItem(ctx, item)
		if err != nil {
			return fmt.Errorf("row %d: create item: %w", rowNum, err)
		}
		stats.Created++
	}
	return binwatch.ItemSaved(ctx, tx, rec, oldSnap, binwatch.SnapshotItem(saved))
}

func (imp *Importer) findOrCreateArtist(ctx context.Context, tx *catalog.Tx, kind catalog.ArtistKind, primary, secondary, suffix string, stats *Stats) (*catalog.Artist, error) {
	var existing *catalog.Artist
	var err error
	if kind == catalog.ArtistPerson {
		existing, err = tx.FindPerson(ctx, primary, secondary)
	} else {
		existing, err = tx.FindBand(ctx, primary)
	}
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	artist := &catalog.Artist{
		Kind:        kind,
		NamePrimary: primary,
	}
	if kind == catalog.ArtistPerson {
		artist.NameSecondary = secondary
		artist.NameSuffix = suffix
	}
	created, err := tx.SaveArtist(ctx, artist)
	if err != nil {
		return nil, fmt.Errorf("create artist %q: %w", primary, err)
	}
	stats.ArtistsCreated++
	return created, nil
}

func resolveBucket(l *lookups, raw string, rowNum int) (*catalog.SortBucket, error) {
	if raw == "" || raw == "0" {
		return nil, nil
	}
	code, ok := sortKey2ToBucketCode[raw]
	if !ok {
		// The sheet may already carry codes instead of legacy numbers.
		code = raw
	}
	if bucket := l.bucketsByCode[code]; bucket != nil {
		return bucket, nil
	}
	return nil, fmt.Errorf("row %d: unknown sort bucket %q", rowNum, raw)
}

func resolveMediaType(l *lookups, raw string, rowNum int) (*catalog.MediaType, error) {
	name, ok := sortKey3ToMediaTypeName[raw]
	if !ok {
		if raw == "" || raw == "0" {
			name = "Standard LP"
		} else {
			name = raw
		}
	}
	if mt := l.mediaTypesByName[strings.ToLower(name)]; mt != nil {
		return mt, nil
	}
	return nil, fmt.Errorf("row %d: unknown media type %q", rowNum, raw)
}

func resolveColumns(header []string) (map[string]int, error) {
	byName := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h != "" {
			byName[h] = i
		}
	}

	columns := make(map[string]int, len(headerAliases))
	for key, aliases := range headerAliases {
		for _, alias := range aliases {
			if idx, ok := byName[alias]; ok {
				columns[key] = idx
				break
			}
		}
	}

	var missing []string
	for _, key := range requiredColumns {
		if _, ok := columns[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}
	return columns, nil
}

func cellString(row []string, columns map[string]int, key string) string {
	idx, ok := columns[key]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func cellInt(row []string, columns map[string]int, key string) *int {
	s := cellString(row, columns, key)
	if s == "" {
		return nil
	}
	// Excel stores integers as floats often enough to matter.
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	v := int(f)
	return &v
}

func cellBool(row []string, columns map[string]int, key string) bool {
	switch strings.ToLower(cellString(row, columns, key)) {
	case "y", "yes", "true", "1":
		return true
	}
	return false
}
