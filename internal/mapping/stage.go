package mapping

import (
	"strings"
	"time"

	"github.com/xelth-com/mfgtrack/internal/models"
)

// stageKeywords is checked in order against the lowercased operation name.
// First match wins.
var stageKeywords = []struct {
	keywords []string
	stage    models.DeviceStage
}{
	{[]string{"assembly", "assemblage"}, models.StageSubAssembly},
	{[]string{"test"}, models.StageTesting},
	{[]string{"final touch", "cleaning", "packing"}, models.StageFinalTouch},
	{[]string{"packaging"}, models.StagePacking},
}

// InferDeviceStage guesses a device's stage from the free-text name of its
// current operation. It is a best-effort classification for backends that do
// not report a stage, not an authoritative mapping. A completion timestamp
// always means completed.
func InferDeviceStage(operationName string, completedAt *time.Time) models.DeviceStage {
	if completedAt != nil && !completedAt.IsZero() {
		return models.StageCompleted
	}
	name := strings.ToLower(operationName)
	for _, rule := range stageKeywords {
		for _, kw := range rule.keywords {
			if strings.Contains(name, kw) {
				return rule.stage
			}
		}
	}
	return models.StageInstallation
}

// ParseStage accepts a backend stage value when it names a known stage
func ParseStage(raw string) (models.DeviceStage, bool) {
	s := models.DeviceStage(strings.ReplaceAll(lower(raw), " ", "_"))
	if s.Valid() {
		return s, true
	}
	return "", false
}

func lower(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
