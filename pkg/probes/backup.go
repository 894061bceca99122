package probes

import (
	"github.com/core-tools/hsu-autodiscovery/pkg/fileprobe"
	"github.com/core-tools/hsu-autodiscovery/pkg/gate"
	"github.com/core-tools/hsu-autodiscovery/pkg/logging"
	"github.com/core-tools/hsu-autodiscovery/pkg/probe"
)

const (
	OMBSBackupName            = "ombs-backup"
	RollingSnapshotName       = "rolling-snapshot"
	RollingSnapshotStatusName = "rolling-snapshot-status"
)

// BackupLayout locates the log and script a backup probe checks. LogFile is
// empty for probes that only look for their script.
type BackupLayout struct {
	LogFile string
	Script  string
}

func OMBSBackupLayout() BackupLayout {
	return BackupLayout{
		LogFile: "/eniq/local_logs/backup_logs/prep_eniq_backup.log",
		Script:  scriptDir + "ombs_backup.pl",
	}
}

func RollingSnapshotLayout() BackupLayout {
	return BackupLayout{
		LogFile: "/eniq/local_logs/rolling_snapshot_logs/prep_roll_snap.log",
		Script:  scriptDir + "rollingsnapshot.pl",
	}
}

func RollingSnapshotStatusLayout() BackupLayout {
	return BackupLayout{
		Script: scriptDir + "rollingsnapshot_status.pl",
	}
}

// NewOMBSBackupWithLayout requires a readable backup log and the script.
func NewOMBSBackupWithLayout(layout BackupLayout, logger logging.Logger) probe.Probe {
	logger = probeLogger(logger, OMBSBackupName)
	const serverType = "OMBS Backup"

	return &serverProbe{
		name:       OMBSBackupName,
		serverType: serverType,
		conditions: func() []gate.Condition {
			return []gate.Condition{
				pathCondition("backup log exists", fileprobe.Exists(layout.LogFile), logger),
				pathCondition("backup log readable", fileprobe.IsReadable(layout.LogFile), logger),
				pathCondition("backup script exists", fileprobe.Exists(layout.Script), logger),
			}
		},
		identity:    platformIdentity(serverType),
		description: platformDescription(serverType),
		logger:      logger,
	}
}

// NewRollingSnapshotWithLayout requires the snapshot log to be a readable
// regular file and the script to be a regular file.
func NewRollingSnapshotWithLayout(layout BackupLayout, logger logging.Logger) probe.Probe {
	logger = probeLogger(logger, RollingSnapshotName)
	const serverType = "RollingSnapshot"

	return &serverProbe{
		name:       RollingSnapshotName,
		serverType: serverType,
		conditions: func() []gate.Condition {
			return []gate.Condition{
				pathCondition("snapshot log exists", fileprobe.Exists(layout.LogFile), logger),
				pathCondition("snapshot log readable", fileprobe.IsReadable(layout.LogFile), logger),
				pathCondition("snapshot log present", fileprobe.IsFile(layout.LogFile), logger),
				pathCondition("metric script present", fileprobe.IsFile(layout.Script), logger),
			}
		},
		identity:    platformIdentity(serverType),
		description: platformDescription(serverType),
		logger:      logger,
	}
}

// NewRollingSnapshotStatusWithLayout only requires the alarm script.
func NewRollingSnapshotStatusWithLayout(layout BackupLayout, logger logging.Logger) probe.Probe {
	logger = probeLogger(logger, RollingSnapshotStatusName)
	const serverType = "Rolling Snapshot Status"

	return &serverProbe{
		name:       RollingSnapshotStatusName,
		serverType: serverType,
		conditions: func() []gate.Condition {
			return []gate.Condition{
				pathCondition("alarm script present", fileprobe.IsFile(layout.Script), logger),
			}
		},
		identity:    platformIdentity(serverType),
		description: platformDescription(serverType),
		logger:      logger,
	}
}

func NewOMBSBackup(logger logging.Logger) probe.Probe {
	return NewOMBSBackupWithLayout(OMBSBackupLayout(), logger)
}

func NewRollingSnapshot(logger logging.Logger) probe.Probe {
	return NewRollingSnapshotWithLayout(RollingSnapshotLayout(), logger)
}

func NewRollingSnapshotStatus(logger logging.Logger) probe.Probe {
	return NewRollingSnapshotStatusWithLayout(RollingSnapshotStatusLayout(), logger)
}
