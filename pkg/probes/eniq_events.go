package probes

import (
	"github.com/core-tools/hsu-autodiscovery/pkg/fileprobe"
	"github.com/core-tools/hsu-autodiscovery/pkg/gate"
	"github.com/core-tools/hsu-autodiscovery/pkg/logging"
	"github.com/core-tools/hsu-autodiscovery/pkg/probe"
	"github.com/core-tools/hsu-autodiscovery/pkg/servertype"
)

const (
	EESgehName   = "ee-sgeh"
	EELteesName  = "ee-ltees"
	EELteefaName = "ee-lteefa"
)

// eventsServerTypes are the ENIQ Events roles hosting mediation features.
var eventsServerTypes = []string{"eniq_events", "eniq_coordinator"}

// FeatureLayout locates what an ENIQ Events mediation feature probe checks.
type FeatureLayout struct {
	ServerType  string
	Description string

	MetricScript fileprobe.PathCheck
	FeatureDir   string

	ServerTypeFile string
	Whitelist      servertype.Whitelist
}

func SgehLayout() FeatureLayout {
	return FeatureLayout{
		ServerType:     "EE-SGEH",
		Description:    "Performance Metrics for ENIQ Events Mediation Layer - SGEH feature.",
		MetricScript:   fileprobe.IsFile(scriptDir + "sgeh_perf_stat.pl"),
		FeatureDir:     "/eniq/mediation_inter/M_E_SGEH",
		ServerTypeFile: servertype.DescriptorFile,
		Whitelist:      servertype.NewWhitelist(eventsServerTypes...),
	}
}

func LteesLayout() FeatureLayout {
	return FeatureLayout{
		ServerType:     "EE-LTEES",
		Description:    "Performance Metrics for ENIQ Events Mediation Layer - ltees feature.",
		MetricScript:   fileprobe.IsFile(scriptDir + "ltees_perf_stat.pl"),
		FeatureDir:     "/eniq/mediation_inter/M_E_LTEES",
		ServerTypeFile: servertype.DescriptorFile,
		Whitelist:      servertype.NewWhitelist(eventsServerTypes...),
	}
}

// LteefaLayout only requires the metric script to exist.
func LteefaLayout() FeatureLayout {
	return FeatureLayout{
		ServerType:     "EE-LTEEFA",
		Description:    "Performance Metrics for ENIQ Events Mediation Layer - lteefa feature.",
		MetricScript:   fileprobe.Exists(scriptDir + "lteefa_perf_stat.pl"),
		FeatureDir:     "/eniq/mediation_inter/M_E_LTEEFA",
		ServerTypeFile: servertype.DescriptorFile,
		Whitelist:      servertype.NewWhitelist(eventsServerTypes...),
	}
}

// NewFeatureProbe builds an ENIQ Events feature probe. The gate is: metric
// script present, valid server type, feature directory installed.
func NewFeatureProbe(name string, layout FeatureLayout, logger logging.Logger) probe.Probe {
	logger = probeLogger(logger, name)
	classifier := servertype.Classifier{Path: layout.ServerTypeFile, Whitelist: layout.Whitelist}

	return &serverProbe{
		name:       name,
		serverType: layout.ServerType,
		conditions: func() []gate.Condition {
			return []gate.Condition{
				pathCondition("metric script present", layout.MetricScript, logger),
				serverTypeCondition(classifier, logger),
				pathCondition("feature installed", fileprobe.IsDirectory(layout.FeatureDir), logger),
			}
		},
		identity:    fixedIdentity(layout.ServerType),
		description: fixedDescription(layout.Description),
		logger:      logger,
	}
}

func NewEESgeh(logger logging.Logger) probe.Probe {
	return NewFeatureProbe(EESgehName, SgehLayout(), logger)
}

func NewEELtees(logger logging.Logger) probe.Probe {
	return NewFeatureProbe(EELteesName, LteesLayout(), logger)
}

func NewEELteefa(logger logging.Logger) probe.Probe {
	return NewFeatureProbe(EELteefaName, LteefaLayout(), logger)
}
