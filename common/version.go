package common

import (
	"runtime/debug"
	"sync"
)

// ModulePath is the import path of this module.
const ModulePath = "github.com/starshine-sys/cordial"

var (
	versionOnce sync.Once
	version     string
)

// Version returns the version of this module.
// When cordial is imported as a library, this is the version the main module depends on.
func Version() string {
	versionOnce.Do(func() {
		bi, ok := debug.ReadBuildInfo()
		if !ok {
			version = "unknown"
			return
		}
		version = moduleVersion(bi)
	})
	return version
}

// UserAgent returns the User-Agent Discord expects from bots.
func UserAgent() string {
	return "DiscordBot (https://" + ModulePath + ", " + Version() + ")"
}

func moduleVersion(bi *debug.BuildInfo) string {
	if bi.Main.Path != ModulePath {
		for _, dep := range bi.Deps {
			if dep.Path != ModulePath {
				continue
			}
			if dep.Replace != nil && dep.Replace.Version != "" {
				return dep.Replace.Version
			}
			if dep.Version != "" {
				return dep.Version
			}
		}
	}

	if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		return bi.Main.Version
	}

	var rev string
	var dirty bool
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			rev = s.Value
		case "vcs.modified":
			dirty = s.Value == "true"
		}
	}
	if rev != "" {
		if len(rev) > 12 {
			rev = rev[:12]
		}
		if dirty {
			rev += "-dirty"
		}
		return rev
	}

	if bi.Main.Version != "" {
		return bi.Main.Version
	}
	return "unknown"
}
