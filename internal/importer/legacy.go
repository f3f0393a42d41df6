package importer

// Legacy Access export code maps. SortKey2 carried the genre bucket, SortKey3
// the media type. Code "0" (or blank) means unset.

var sortKey2ToBucketCode = map[string]string{
	"1":  "COUNTRY_AMERICANA",
	"2":  "POP",
	"3":  "ROCK",
	"4":  "HARD_ROCK",
	"5":  "RB_HIPHOP",
	"6":  "BLUES_JAZZ",
	"7":  "ALT_GRUNGE",
	"8":  "SOUNDTRACKS",
	"9":  "COMPS",
	"10": "HOLIDAY",
	"11": "NEW_WAVE_SYNTH",
	"12": "MISC",
}

var sortKey3ToMediaTypeName = map[string]string{
	"10": "Standard LP",
	"11": "Valuable, Sealed, Special",
	"14": "Premium Pressings",
	"15": "Box Set",
	"17": `7" Vinyl`,
	"20": "Cassette Tape",
	"21": "CD",
}

// Header aliases keep the import working across the several hand-edited
// generations of the workbook.
var headerAliases = map[string][]string{
	"master_key":       {"MasterKey", "master_key", "MASTERKEY"},
	"artist_primary":   {"ArtistPrimary", "artist_name_primary", "Artist Name Primary"},
	"artist_secondary": {"ArtistSecondary", "artist_name_secondary", "Artist Name Secondary"},
	"name_suffix":      {"NameSuffix", "Suffix", "name_suffix"},
	"artist_kind":      {"ArtistType", "artist_type"},
	"title":            {"AlbumTitle", "Title", "album_title"},
	"release_year":     {"ReleaseYear", "release_year"},
	"sortkey2":         {"SortKey2", "sortkey2", "Bucket", "SortBucket"},
	"sortkey3":         {"SortKey3", "sortkey3", "MediaType"},
	"special":          {"Special", "special", "Owned", "IsOwned"},
	"speed":            {"Speed", "speed", "SpeedRPM", "speed_rpm"},
}

// requiredColumns must resolve through the aliases for an import to start.
var requiredColumns = []string{
	"master_key", "artist_primary", "artist_secondary", "artist_kind",
	"title", "release_year", "sortkey2", "sortkey3", "special",
}
