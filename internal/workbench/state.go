// Package workbench holds the interaction logic of the converter and review
// flows as pure state transitions. Adapters render State and carry out the
// effects returned by the command handlers.
package workbench

import "codefusion/internal/render"

// Flow identifies one of the two interaction flows
type Flow string

const (
	FlowConverter Flow = "converter"
	FlowReview    Flow = "review"
)

// StatusKind is the phase of the idle → processing → success/error cycle
type StatusKind int

const (
	StatusIdle StatusKind = iota
	StatusProcessing
	StatusSuccess
	StatusError
)

func (k StatusKind) String() string {
	switch k {
	case StatusProcessing:
		return "processing"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Status line messages
const (
	MsgIdle          = "idle"
	MsgProcessing    = "Processing..."
	MsgConvertPrompt = "Please enter or upload code to convert."
	MsgReviewPrompt  = "Please enter or upload some code to review."
	MsgConnectFailed = "Failed to connect to the server."
	MsgConverted     = "Conversion successful!"
	MsgReviewed      = "Review complete."
	MsgCopied        = "Copied to clipboard!"
	MsgDownloaded    = "File downloaded!"
)

// Status is the single status line; every dispatch overwrites it
type Status struct {
	Kind StatusKind
	Text string
}

// Output is the rendered result of the last successful dispatch
type Output struct {
	// Raw is the converted code or the markdown body, exactly as received
	Raw     string
	HTML    string
	Grammar render.Grammar

	// Language is the target language code the result was produced for
	Language string
}

// CodeSubmission is built fresh for every dispatch
type CodeSubmission struct {
	RawText        string
	SourceLanguage string
	TargetLanguage string
}

// Request is a dispatch handed to the adapter for execution
type Request struct {
	Seq        uint64
	Flow       Flow
	Submission CodeSubmission
}

// State is everything one flow displays
type State struct {
	Flow       Flow
	Input      string
	Mirror     string
	FileName   string
	SourceLang string
	TargetLang string
	Status     Status
	Output     *Output
	// Seq is the sequence number of the latest issued request; responses
	// carrying any other number are stale.
	Seq uint64
}

// NewState returns the idle state of a flow
func NewState(flow Flow) State {
	return State{
		Flow:   flow,
		Status: Status{Kind: StatusIdle, Text: MsgIdle},
	}
}

// OutputText is the currently displayed raw result, empty when none
func (s State) OutputText() string {
	if s.Output == nil {
		return ""
	}
	return s.Output.Raw
}

func (s State) withStatus(kind StatusKind, text string) State {
	s.Status = Status{Kind: kind, Text: text}
	return s
}
