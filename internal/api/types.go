package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// MediaItem describes a catalog entry in a transport-friendly format.
type MediaItem struct {
	ID             int64  `json:"id"`
	MasterKey      string `json:"masterKey,omitempty"`
	Title          string `json:"title"`
	ArtistID       int64  `json:"artistId"`
	Artist         string `json:"artist"`
	ArtistSortName string `json:"artistSortName"`
	MediaTypeID    int64  `json:"mediaTypeId"`
	Owner          string `json:"owner"`
	ReleaseYear    *int   `json:"releaseYear,omitempty"`
	PressingYear   *int   `json:"pressingYear,omitempty"`
	SpeedRPM       *int   `json:"speedRpm,omitempty"`
	Notes          string `json:"notes,omitempty"`
	BucketID       *int64 `json:"bucketId,omitempty"`
	ZoneOverrideID *int64 `json:"zoneOverrideId,omitempty"`
	ZoneID         int64  `json:"zoneId"`
	LogicalBinID   *int64 `json:"logicalBinId,omitempty"`
	CreatedAt      string `json:"createdAt,omitempty"`
	UpdatedAt      string `json:"updatedAt,omitempty"`
}

// Artist describes an artist with its derived filing fields.
type Artist struct {
	ID           int64  `json:"id"`
	Kind         string `json:"kind"`
	DisplayName  string `json:"displayName"`
	SortName     string `json:"sortName"`
	AlphaBucket  string `json:"alphaBucket"`
	FiledUnderID *int64 `json:"filedUnderId,omitempty"`
}

// Zone describes a storage zone.
type Zone struct {
	ID                 int64  `json:"id"`
	Code               string `json:"code"`
	Name               string `json:"name"`
	IsBinned           bool   `json:"isBinned"`
	SortStrategy       string `json:"sortStrategy"`
	DefaultBinCapacity int    `json:"defaultBinCapacity"`
	BinsPerShelf       int    `json:"binsPerShelf"`
}

// BinOccupancy reports one logical bin with its mapping and item count.
type BinOccupancy struct {
	LogicalBinID     int64  `json:"logicalBinId"`
	Number           int    `json:"number"`
	Capacity         int    `json:"capacity"`
	CapacityOverride *int   `json:"capacityOverride,omitempty"`
	PhysicalLabel    string `json:"physicalLabel,omitempty"`
	ItemCount        int    `json:"itemCount"`
}

// RebinRun describes one recorded rebin execution.
type RebinRun struct {
	ID        string `json:"id"`
	CreatedAt string `json:"createdAt,omitempty"`
	ZoneID    *int64 `json:"zoneId,omitempty"`
	BucketID  *int64 `json:"bucketId,omitempty"`
	Notes     string `json:"notes,omitempty"`
	MoveCount int    `json:"moveCount"`
}

// RebinMove describes one item movement within a run.
type RebinMove struct {
	ID            int64  `json:"id"`
	RunID         string `json:"runId"`
	MediaItemID   int64  `json:"mediaItemId"`
	ItemTitle     string `json:"itemTitle"`
	Artist        string `json:"artist"`
	FromBin       *int64 `json:"fromBin,omitempty"`
	ToBin         *int64 `json:"toBin,omitempty"`
	FromLabel     string `json:"fromLabel,omitempty"`
	ToLabel       string `json:"toLabel,omitempty"`
	Done          bool   `json:"done"`
	RecordedAt    string `json:"recordedAt,omitempty"`
}

// AssignmentOutcome reports a single-item placement computation.
type AssignmentOutcome struct {
	ItemID        int64  `json:"itemId"`
	Assigned      bool   `json:"assigned"`
	BinID         *int64 `json:"binId,omitempty"`
	BinNumber     *int   `json:"binNumber,omitempty"`
	PhysicalLabel string `json:"physicalLabel,omitempty"`
	Reason        string `json:"reason"`
	Persisted     bool   `json:"persisted"`
}

// RecalcResult summarizes a manual placement recalculation.
type RecalcResult struct {
	Selected int      `json:"selected"`
	Updated  int      `json:"updated"`
	RunIDs   []string `json:"runIds,omitempty"`
}

// ReclassifyResult summarizes a bulk media type / zone override change.
type ReclassifyResult struct {
	Selected int `json:"selected"`
	Updated  int `json:"updated"`
}

// StatusResponse aggregates catalog totals for status displays.
type StatusResponse struct {
	Items      int       `json:"items"`
	Artists    int       `json:"artists"`
	Zones      int       `json:"zones"`
	Unassigned int       `json:"unassigned"`
	LastRun    *RebinRun `json:"lastRun,omitempty"`
}

// ItemListResponse wraps a collection of items for API responses.
type ItemListResponse struct {
	Items []MediaItem `json:"items"`
}

// RunListResponse wraps a collection of runs for API responses.
type RunListResponse struct {
	Runs []RebinRun `json:"runs"`
}

// MoveListResponse wraps a collection of moves for API responses.
type MoveListResponse struct {
	Moves []RebinMove `json:"moves"`
}
