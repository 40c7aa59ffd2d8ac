// Package buildinfo lists the module dependencies compiled into the
// running binary for the log header's environment section.
package buildinfo

import (
	"runtime/debug"

	"github.com/cockroachdb/errors"
)

// ErrNoBuildInfo indicates the binary carries no embedded build
// information (built outside module mode).
var ErrNoBuildInfo = errors.New("build info not embedded in binary")

// Module is one dependency of the running binary. Replaced marks modules
// substituted by a replace directive, i.e. locally sourced code.
type Module struct {
	Path     string
	Version  string
	Replaced bool
}

// List returns the main module followed by every dependency recorded in
// the binary, in the order the toolchain embedded them. It fails with
// ErrNoBuildInfo when the information is unavailable; the caller decides
// whether that is fatal.
func List() ([]Module, error) {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return nil, ErrNoBuildInfo
	}

	mods := make([]Module, 0, len(bi.Deps)+1)
	if bi.Main.Path != "" {
		mods = append(mods, Module{Path: bi.Main.Path, Version: bi.Main.Version})
	}
	for _, d := range bi.Deps {
		m := Module{Path: d.Path, Version: d.Version}
		if d.Replace != nil {
			m.Path = d.Replace.Path
			m.Version = d.Replace.Version
			m.Replaced = true
		}
		mods = append(mods, m)
	}
	return mods, nil
}

// Partition splits modules into locally sourced (replaced) and regular
// requirements, preserving order within each group.
func Partition(mods []Module) (local, global []Module) {
	for _, m := range mods {
		if m.Replaced {
			local = append(local, m)
			continue
		}
		global = append(global, m)
	}
	return local, global
}
