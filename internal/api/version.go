package api

// EngineVersion identifies the trial engine release. It is echoed in the
// X-Engine-Version header and in every response envelope so exported lab
// records can be tied to the engine that produced them.
const EngineVersion = "1.0.0"

// VersionInfo contains engine version information.
type VersionInfo struct {
	EngineVersion string `json:"engine_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildTime     string `json:"build_time,omitempty"`
}
