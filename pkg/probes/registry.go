package probes

import (
	"github.com/core-tools/hsu-autodiscovery/pkg/logging"
	"github.com/core-tools/hsu-autodiscovery/pkg/probe"
)

// Names lists every built-in probe in registry order.
func Names() []string {
	return []string{
		BacklogName,
		EESgehName,
		EELteesName,
		EELteefaName,
		OMBSBackupName,
		RollingSnapshotName,
		RollingSnapshotStatusName,
	}
}

var constructors = map[string]func(logging.Logger) probe.Probe{
	BacklogName:               NewBacklog,
	EESgehName:                NewEESgeh,
	EELteesName:               NewEELtees,
	EELteefaName:              NewEELteefa,
	OMBSBackupName:            NewOMBSBackup,
	RollingSnapshotName:       NewRollingSnapshot,
	RollingSnapshotStatusName: NewRollingSnapshotStatus,
}

// All builds every built-in probe with its compiled-in layout.
func All(logger logging.Logger) []probe.Probe {
	all := make([]probe.Probe, 0, len(constructors))
	for _, name := range Names() {
		all = append(all, constructors[name](logger))
	}
	return all
}

// ByName builds a single built-in probe.
func ByName(name string, logger logging.Logger) (probe.Probe, bool) {
	constructor, ok := constructors[name]
	if !ok {
		return nil, false
	}
	return constructor(logger), true
}

// IsKnown reports whether name is a built-in probe.
func IsKnown(name string) bool {
	_, ok := constructors[name]
	return ok
}
