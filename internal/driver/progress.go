package driver

import "time"

// Stage identifies a step of one header's pipeline.
type Stage string

const (
	StagePreprocess Stage = "preprocess"
	StageParse      Stage = "parse"
	StageResolve    Stage = "resolve"
	StageSimplify   Stage = "simplify"
	StageSizes      Stage = "sizes"
	StageRender     Stage = "render"
)

// Status represents the lifecycle state of a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting for a worker.
	StatusQueued  Status = "queued"
	StatusWorking Status = "working"
	StatusDone    Status = "done"
	StatusError   Status = "error"
)

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events.
type ProgressSink interface {
	OnEvent(Event)
}

// ChannelSink forwards events into a channel.
type ChannelSink struct {
	Ch chan<- Event
}

func (s ChannelSink) OnEvent(evt Event) {
	if s.Ch == nil {
		return
	}
	s.Ch <- evt
}

// PhaseObserver adapts a function to ProgressSink.
type PhaseObserver func(Event)

func (f PhaseObserver) OnEvent(evt Event) {
	if f != nil {
		f(evt)
	}
}

func emit(sink ProgressSink, evt Event) {
	if sink != nil {
		sink.OnEvent(evt)
	}
}
