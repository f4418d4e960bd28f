package events

// DefaultPrefix is the subject root when none is configured
const DefaultPrefix = "boat_oracle"

// Request kinds served over request/reply
const (
	KindStatistical = "statistical"
	KindML          = "ml"
	KindConsensus   = "consensus"
	KindAnalysis    = "analysis"
)

// Subjects builds subject names under one prefix
type Subjects struct {
	Prefix string
}

func (s Subjects) root() string {
	if s.Prefix == "" {
		return DefaultPrefix
	}
	return s.Prefix
}

// Completed is where finished outcomes of a kind are published
func (s Subjects) Completed(kind string) string { return s.root() + ".prediction." + kind + ".completed" }

// Request is where requests of a kind are served
func (s Subjects) Request(kind string) string { return s.root() + ".request." + kind }

// AllCompleted matches every completion subject
func (s Subjects) AllCompleted() string { return s.root() + ".prediction.>" }
