package player

const (
	StageCatalog = "catalog"
	StageResolve = "resolve"
	StageSink    = "sink"
)

const (
	OutcomeCompleted = "completed"
	OutcomeStopped   = "stopped"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
)

type Metrics interface {
	TrackPlayed(kind string)
	TrackFailed(stage string)
	PlaylistFinished(outcome string)
}

type nopMetrics struct{}

func (nopMetrics) TrackPlayed(string)      {}
func (nopMetrics) TrackFailed(string)      {}
func (nopMetrics) PlaylistFinished(string) {}
