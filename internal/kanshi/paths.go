package kanshi

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// EnvBaseDir overrides the kanshi base directory when set.
const EnvBaseDir = "SWAYDISPLAYD_KANSHI_DIR"

// Paths locates the kanshi directory layout: a profiles/ subdirectory
// holding one file per arrangement and the config file kanshi reads.
type Paths struct {
	Base     string
	Profiles string
	Config   string
}

// ResolvePaths picks the kanshi base directory: the environment
// override wins, then the configured directory, then the default
// $XDG_CONFIG_HOME/kanshi.
func ResolvePaths(configured string) Paths {
	base := os.Getenv(EnvBaseDir)
	if base == "" {
		base = configured
	}
	if base == "" {
		base = filepath.Join(xdg.ConfigHome, "kanshi")
	}
	return Paths{
		Base:     base,
		Profiles: filepath.Join(base, "profiles"),
		Config:   filepath.Join(base, "config"),
	}
}
