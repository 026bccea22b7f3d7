package jobs

import (
	"github.com/riverqueue/river"
	"github.com/riverqueue/river/rivertype"
)

// ImportDocumentsArgs are the arguments for an import_documents job: every
// line is parsed, formatted and stored as a document.
type ImportDocumentsArgs struct {
	Lines     []string `json:"lines"`
	Normalize bool     `json:"normalize,omitempty"`
	Fix       bool     `json:"fix,omitempty"`
	Merge     bool     `json:"merge,omitempty"`
	Lossy     bool     `json:"lossy,omitempty"`
}

func (ImportDocumentsArgs) Kind() string { return "import_documents" }

func (args ImportDocumentsArgs) InsertOpts() river.InsertOpts {
	return river.InsertOpts{
		UniqueOpts: river.UniqueOpts{
			ByArgs: true,
			ByState: []rivertype.JobState{
				rivertype.JobStateAvailable,
				rivertype.JobStatePending,
				rivertype.JobStateRunning,
				rivertype.JobStateRetryable,
				rivertype.JobStateScheduled,
			},
		},
		MaxAttempts: 3,
	}
}
