package api

import (
	"time"

	"platter/internal/catalog"
)

// FromItem converts a catalog item to its API representation.
func FromItem(item *catalog.MediaItem) MediaItem {
	if item == nil {
		return MediaItem{}
	}
	dto := MediaItem{
		ID:             item.ID,
		MasterKey:      item.MasterKey,
		Title:          item.Title,
		ArtistID:       item.ArtistID,
		Artist:         item.ArtistDisplayName,
		ArtistSortName: item.ArtistSortName,
		MediaTypeID:    item.MediaTypeID,
		Owner:          string(item.Owner),
		ReleaseYear:    item.ReleaseYear,
		PressingYear:   item.PressingYear,
		SpeedRPM:       item.SpeedRPM,
		Notes:          item.Notes,
		BucketID:       item.BucketID,
		ZoneOverrideID: item.ZoneOverrideID,
		ZoneID:         item.EffectiveZoneID,
		LogicalBinID:   item.LogicalBinID,
		CreatedAt:      formatTime(item.CreatedAt),
		UpdatedAt:      formatTime(item.UpdatedAt),
	}
	return dto
}

// FromItems converts a slice of catalog items.
func FromItems(items []*catalog.MediaItem) []MediaItem {
	out := make([]MediaItem, 0, len(items))
	for _, item := range items {
		out = append(out, FromItem(item))
	}
	return out
}

// FromArtist converts an artist record.
func FromArtist(artist *catalog.Artist) Artist {
	if artist == nil {
		return Artist{}
	}
	return Artist{
		ID:           artist.ID,
		Kind:         string(artist.Kind),
		DisplayName:  artist.DisplayName,
		SortName:     artist.SortName,
		AlphaBucket:  artist.AlphaBucket,
		FiledUnderID: artist.FiledUnderID,
	}
}

// FromZone converts a storage zone record.
func FromZone(zone *catalog.StorageZone) Zone {
	if zone == nil {
		return Zone{}
	}
	return Zone{
		ID:                 zone.ID,
		Code:               zone.Code,
		Name:               zone.Name,
		IsBinned:           zone.IsBinned,
		SortStrategy:       string(zone.SortStrategy),
		DefaultBinCapacity: zone.DefaultBinCapacity,
		BinsPerShelf:       zone.BinsPerShelf,
	}
}

// FromZones converts a slice of zones.
func FromZones(zones []*catalog.StorageZone) []Zone {
	out := make([]Zone, 0, len(zones))
	for _, zone := range zones {
		out = append(out, FromZone(zone))
	}
	return out
}

// FromRun converts a rebin run record. The move count is joined by callers
// that have it; zero means unknown or none.
func FromRun(run *catalog.RebinRun, moveCount int) RebinRun {
	if run == nil {
		return RebinRun{}
	}
	return RebinRun{
		ID:        run.ID,
		CreatedAt: formatTime(run.CreatedAt),
		ZoneID:    run.ZoneID,
		BucketID:  run.BucketID,
		Notes:     run.Notes,
		MoveCount: moveCount,
	}
}

// FromMove converts a rebin move record.
func FromMove(move *catalog.RebinMove) RebinMove {
	if move == nil {
		return RebinMove{}
	}
	return RebinMove{
		ID:          move.ID,
		RunID:       move.RunID,
		MediaItemID: move.MediaItemID,
		ItemTitle:   move.ItemTitle,
		Artist:      move.ArtistDisplayName,
		FromBin:     move.OldLogicalBinID,
		ToBin:       move.NewLogicalBinID,
		FromLabel:   move.OldPhysicalLabel,
		ToLabel:     move.NewPhysicalLabel,
		Done:        move.IsDone,
		RecordedAt:  formatTime(move.CreatedAt),
	}
}

// FromMoves converts a slice of moves.
func FromMoves(moves []*catalog.RebinMove) []RebinMove {
	out := make([]RebinMove, 0, len(moves))
	for _, move := range moves {
		out = append(out, FromMove(move))
	}
	return out
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
