package config

const (
	defaultDataDir          = "~/.local/share/platter"
	defaultExportDir        = "~/platter"
	defaultLogDir           = "~/.local/share/platter/logs"
	defaultAPIBind          = "127.0.0.1:7512"
	defaultOwner            = "ME"
	defaultImportUpdate     = true
	defaultLogFormat        = "console"
	defaultLogLevel         = "info"
	defaultLogRetentionDays = 60
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DataDir:   defaultDataDir,
			ExportDir: defaultExportDir,
			LogDir:    defaultLogDir,
			APIBind:   defaultAPIBind,
		},
		Library: Library{
			DefaultOwner: defaultOwner,
		},
		Import: Import{
			UpdateExisting: defaultImportUpdate,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetentionDays,
		},
	}
}
