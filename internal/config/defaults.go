package config

import "github.com/spf13/viper"

// Config keys shared by the CLI and the server.
const (
	KeyDatabasePath     = "database.path"
	KeyLogLevel         = "logging.level"
	KeyLogFormat        = "logging.format"
	KeySystemAppearance = "appearance.system"
	KeyServerAddr       = "server.addr"
	KeyServerDebug      = "server.debug"
	KeyServerTLS        = "server.tls"
	KeyServerCertDir    = "server.cert_dir"
	KeyBackupDir        = "backup.dir"
)

// Defaults for values that are not set in the config file or environment.
const (
	DefaultDatabasePath     = "$HOME/.local/share/fintrack/fintrack.db"
	DefaultConfigDir        = "$HOME/.config/fintrack"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "console"
	DefaultSystemAppearance = "auto"
	DefaultServerAddr       = ":8080"
	DefaultServerCertDir    = DefaultConfigDir + "/certs"
)

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault(KeyDatabasePath, DefaultDatabasePath)
	v.SetDefault(KeyLogLevel, DefaultLogLevel)
	v.SetDefault(KeyLogFormat, DefaultLogFormat)
	v.SetDefault(KeySystemAppearance, DefaultSystemAppearance)
	v.SetDefault(KeyServerAddr, DefaultServerAddr)
	v.SetDefault(KeyServerCertDir, DefaultServerCertDir)
}

// DatabasePath returns the configured database location with ~ and
// environment variables expanded.
func DatabasePath(v *viper.Viper) string {
	path := v.GetString(KeyDatabasePath)
	if path == "" {
		path = DefaultDatabasePath
	}
	return ExpandPath(path)
}
