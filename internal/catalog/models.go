package catalog

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// SortStrategy determines whether a zone places items per sort bucket or by
// alphabetical rank alone.
type SortStrategy string

const (
	SortBucketed  SortStrategy = "BUCKETED"
	SortAlphaOnly SortStrategy = "ALPHA_ONLY"
)

// ArtistKind distinguishes people from bands for name normalization.
type ArtistKind string

const (
	ArtistPerson ArtistKind = "PERSON"
	ArtistBand   ArtistKind = "BAND"
)

// Owner identifies whose collection an item belongs to.
type Owner string

const (
	OwnerMe  Owner = "ME"
	OwnerBIL Owner = "BIL"
)

// TagScope restricts a tag to artists or media items.
type TagScope string

const (
	TagScopeArtist TagScope = "ARTIST"
	TagScopeItem   TagScope = "MEDIA_ITEM"
)

// StorageZone is a bin universe: a storage area with its own sort strategy
// and capacity defaults.
type StorageZone struct {
	ID                 int64
	Code               string
	Name               string
	Description        string
	IsBinned           bool
	SortStrategy       SortStrategy
	DefaultBinCapacity int
	BinsPerShelf       int
	CreatedAt          time.Time
	UpdatedAt          time.Time
}

// MediaType classifies an item and carries its default storage zone.
type MediaType struct {
	ID            int64
	Name          string
	DefaultZoneID int64
	IsVinyl       bool
	RequiresSpeed bool
}

// SortBucket is the secondary classification dimension (genre-ish) used by
// bucketed zones to restrict placement to a bin sub-range.
type SortBucket struct {
	ID        int64
	Code      string
	Name      string
	SortOrder int
	IsActive  bool
}

// LogicalBin is an addressable placement slot inside a zone.
type LogicalBin struct {
	ID               int64
	ZoneID           int64
	Number           int
	CapacityOverride *int
	IsActive         bool
}

// EffectiveCapacity resolves the bin capacity against the zone default.
func (b *LogicalBin) EffectiveCapacity(zone *StorageZone) int {
	if b.CapacityOverride != nil {
		return *b.CapacityOverride
	}
	if zone == nil {
		return 0
	}
	return zone.DefaultBinCapacity
}

// PhysicalBin is a real-world shelf/bin location inside a zone.
type PhysicalBin struct {
	ID          int64
	ZoneID      int64
	ShelfNumber int
	BinNumber   int
	Label       string
	IsActive    bool
}

// DisplayLabel renders the human-readable location label.
func (p *PhysicalBin) DisplayLabel(zoneCode string) string {
	return fmt.Sprintf("%s: Shelf %d Bin %d", zoneCode, p.ShelfNumber, p.BinNumber)
}

// LinearBinNumber converts shelf/bin coordinates into a 1..N label number
// within the zone. Used for physical-order reporting only, never for ranking.
func (p *PhysicalBin) LinearBinNumber(zone *StorageZone) int {
	perShelf := 8
	if zone != nil && zone.BinsPerShelf > 0 {
		perShelf = zone.BinsPerShelf
	}
	return (p.ShelfNumber-1)*perShelf + p.BinNumber
}

// BinMapping associates a logical bin with a physical bin. At most one active
// mapping may exist per physical bin at a time.
type BinMapping struct {
	ID            int64
	LogicalBinID  int64
	PhysicalBinID int64
	IsActive      bool
}

// BucketBinRange restricts which logical bin numbers a (zone, bucket) pair
// may occupy. Meaningful only for BUCKETED zones.
type BucketBinRange struct {
	ID        int64
	ZoneID    int64
	BucketID  int64
	StartBin  int
	EndBin    int
	IsActive  bool
	CreatedAt time.Time
}

// Artist is a catalog artist with stored derived sort fields. SortName and
// AlphaBucket are derived on save and reflect the filed-under target when set.
type Artist struct {
	ID            int64
	Kind          ArtistKind
	NamePrimary   string
	NameSecondary string
	NameSuffix    string
	FiledUnderID  *int64
	DisplayName   string
	SortName      string
	AlphaBucket   string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// MediaItem is one catalog entry. LogicalBinID is engine-owned: only the
// placement engine writes it.
type MediaItem struct {
	ID             int64
	MasterKey      string
	ArtistID       int64
	Title          string
	ReleaseYear    *int
	PressingYear   *int
	MediaTypeID    int64
	Owner          Owner
	SpeedRPM       *int
	Notes          string
	BucketID       *int64
	ZoneOverrideID *int64
	LogicalBinID   *int64
	CreatedAt      time.Time
	UpdatedAt      time.Time

	// Joined fields populated by scope and list queries. EffectiveZoneID is
	// the zone override when present, else the media type's default zone.
	ArtistSortName    string
	ArtistDisplayName string
	EffectiveZoneID   int64
}

// Tag is a scoped label attachable to artists or media items.
type Tag struct {
	ID        int64
	Name      string
	Slug      string
	Scope     TagScope
	SortOrder int
	Note      string
}

// RebinRun groups the moves produced by one rebin invocation over a scope.
type RebinRun struct {
	ID        string
	CreatedAt time.Time
	ZoneID    *int64
	BucketID  *int64
	Notes     string
}

// RebinMove records one detected placement change within a run. Physical bin
// labels are captured at move time so history stays readable after mappings
// change.
type RebinMove struct {
	ID               int64
	RunID            string
	MediaItemID      int64
	OldLogicalBinID  *int64
	NewLogicalBinID  *int64
	OldPhysicalLabel string
	NewPhysicalLabel string
	IsDone           bool
	CreatedAt        time.Time

	// Joined display fields for task lists.
	ItemTitle         string
	ArtistDisplayName string
}

// NewRunID generates the identifier for a rebin run.
func NewRunID() string {
	return uuid.NewString()
}
