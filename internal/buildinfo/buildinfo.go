package buildinfo

import (
	"fmt"
	"runtime"
	"time"
)

// Set via -ldflags at build time
var (
	Version    = "dev"
	BuildTime  string // when the binary was compiled
	CommitTime string // last git commit time (last code edit)
	CommitHash string // short git commit hash
)

// StartTime is recorded when the process starts
var StartTime = time.Now().UTC().Format(time.RFC3339)

// Info is the build metadata reported by the CLI and the simulator health check
type Info struct {
	Version    string `json:"version"`
	CommitHash string `json:"commitHash,omitempty"`
	CommitTime string `json:"commitTime,omitempty"`
	BuildTime  string `json:"buildTime,omitempty"`
	StartTime  string `json:"startTime"`
	GoVersion  string `json:"goVersion"`
}

// Get collects the build metadata
func Get() Info {
	return Info{
		Version:    Version,
		CommitHash: CommitHash,
		CommitTime: CommitTime,
		BuildTime:  BuildTime,
		StartTime:  StartTime,
		GoVersion:  runtime.Version(),
	}
}

func (i Info) String() string {
	s := "mfgtrack " + i.Version
	if i.CommitHash != "" {
		s += fmt.Sprintf(" (%s)", i.CommitHash)
	}
	if i.BuildTime != "" {
		s += " built " + i.BuildTime
	}
	return s + " " + i.GoVersion
}
