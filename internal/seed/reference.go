package seed

import (
	"context"
	"fmt"
	"log/slog"

	"platter/internal/catalog"
	"platter/internal/logging"
)

type zoneDef struct {
	code         string
	name         string
	isBinned     bool
	sortStrategy catalog.SortStrategy
	capacity     int
	binsPerShelf int
}

type bucketDef struct {
	code      string
	name      string
	sortOrder int
}

type mediaTypeDef struct {
	name          string
	zoneCode      string
	isVinyl       bool
	requiresSpeed bool
}

var zoneDefs = []zoneDef{
	{"GARAGE_MAIN", "Garage Main", true, catalog.SortBucketed, 35, 8},
	{"OFFICE_SHELF", "Office Shelf", true, catalog.SortAlphaOnly, 35, 8},
	{"TURNTABLE_SHELF", "Turntable Shelf", false, catalog.SortAlphaOnly, 35, 8},
}

// Codes are stable machine keys; names are display labels.
var bucketDefs = []bucketDef{
	{"COUNTRY_AMERICANA", "Country & Americana", 10},
	{"POP", "Pop", 20},
	{"ROCK", "Rock", 30},
	{"HARD_ROCK", "Hard Rock, Metal, Punk", 40},
	{"RB_HIPHOP", "R&B, Hip Hop, Rap, Reggae", 50},
	{"BLUES_JAZZ", "Blues, Jazz, Vocals", 60},
	{"ALT_GRUNGE", "Alternative & Grunge", 70},
	{"SOUNDTRACKS", "Soundtracks", 80},
	{"COMPS", "Compilations", 90},
	{"HOLIDAY", "Holiday", 100},
	{"NEW_WAVE_SYNTH", "New Wave & Synthpop", 110},
	{"MISC", "Miscellaneous", 120},
}

var mediaTypeDefs = []mediaTypeDef{
	{"Standard LP", "GARAGE_MAIN", true, false},
	{`7" Vinyl`, "GARAGE_MAIN", true, true},
	{"Cassette Tape", "GARAGE_MAIN", false, false},
	{"CD", "GARAGE_MAIN", false, false},
	{"Valuable, Sealed, Special", "OFFICE_SHELF", true, false},
	{"Premium Pressings", "TURNTABLE_SHELF", true, false},
	{"Box Set", "TURNTABLE_SHELF", false, false},
}

// Reference seeds zones, buckets, and media types in one transaction.
func Reference(ctx context.Context, store *catalog.Store, logger *slog.Logger) error {
	log := logging.NewComponentLogger(logger, "seed")
	return store.WithTx(ctx, func(tx *catalog.Tx) error {
		zonesByCode := make(map[string]*catalog.StorageZone, len(zoneDefs))
		for _, def := range zoneDefs {
			zone, err := tx.UpsertZone(ctx, &catalog.StorageZone{
				Code:               def.code,
				Name:               def.name,
				IsBinned:           def.isBinned,
				SortStrategy:       def.sortStrategy,
				DefaultBinCapacity: def.capacity,
				BinsPerShelf:       def.binsPerShelf,
			})
			if err != nil {
				return fmt.Errorf("seed zone %s: %w", def.code, err)
			}
			zonesByCode[def.code] = zone
			log.Info("seeded zone", logging.String(logging.FieldZone, def.code))
		}

		for _, def := range bucketDefs {
			if _, err := tx.UpsertBucket(ctx, &catalog.SortBucket{
				Code:      def.code,
				Name:      def.name,
				SortOrder: def.sortOrder,
				IsActive:  true,
			}); err != nil {
				return fmt.Errorf("seed bucket %s: %w", def.code, err)
			}
		}

		for _, def := range mediaTypeDefs {
			zone := zonesByCode[def.zoneCode]
			if zone == nil {
				return fmt.Errorf("seed media type %q: unknown zone %s", def.name, def.zoneCode)
			}
			if _, err := tx.UpsertMediaType(ctx, &catalog.MediaType{
				Name:          def.name,
				DefaultZoneID: zone.ID,
				IsVinyl:       def.isVinyl,
				RequiresSpeed: def.requiresSpeed,
			}); err != nil {
				return fmt.Errorf("seed media type %q: %w", def.name, err)
			}
		}

		log.Info("reference data seeded",
			logging.Int("zones", len(zoneDefs)),
			logging.Int("buckets", len(bucketDefs)),
			logging.Int("media_types", len(mediaTypeDefs)),
		)
		return nil
	})
}
