package results

import "fmt"

// OutcomeKind classifies one ingested payload.
type OutcomeKind int

const (
	// Empty means the server answered with an informational message and no records.
	Empty OutcomeKind = iota + 1
	// Populated means records were processed and the payload replaces the store.
	Populated
	// NoData means neither records nor a message came back.
	NoData
	// Failed means the upload never produced a payload.
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Empty:
		return "empty"
	case Populated:
		return "populated"
	case NoData:
		return "no-data"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Level is the severity of a user-facing notice.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Notice is the single message shown to the user after an action.
type Notice struct {
	Level Level
	Text  string
}

// NoDataMessage is shown when a payload carries neither records nor a message.
const NoDataMessage = "No data processed. The file might be empty or not in the expected format after the header."

// Outcome is the classification of a payload plus the notice it produces.
type Outcome struct {
	Kind   OutcomeKind
	Notice Notice
}

// Classify decides what an ingested payload means. It performs no
// validation of the metric maps themselves.
func Classify(r *AggregateResult) Outcome {
	switch {
	case r == nil:
		return Outcome{Kind: NoData, Notice: Notice{Level: LevelError, Text: NoDataMessage}}
	case r.Message != "" && r.TotalRecordsProcessed <= 0:
		return Outcome{Kind: Empty, Notice: Notice{Level: LevelInfo, Text: r.Message}}
	case r.TotalRecordsProcessed > 0:
		text := fmt.Sprintf("Successfully processed %s for year %d.", r.FileName, r.DatasetYear)
		return Outcome{Kind: Populated, Notice: Notice{Level: LevelSuccess, Text: text}}
	default:
		return Outcome{Kind: NoData, Notice: Notice{Level: LevelError, Text: NoDataMessage}}
	}
}

// FailureMessage prefixes transport and server errors shown to the user.
const FailureMessage = "Failed to process file: "

// Failure wraps an upload error as an outcome.
func Failure(err error) Outcome {
	return Outcome{Kind: Failed, Notice: Notice{Level: LevelError, Text: FailureMessage + err.Error()}}
}
