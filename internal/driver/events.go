package driver

import "time"

// Stage describes a per-file phase of Check.
type Stage string

const (
	// StageLoad reads the template from disk.
	StageLoad Stage = "load"
	// StageParse runs the lexer and parser.
	StageParse Stage = "parse"
	// StageLint checks filter names.
	StageLint Stage = "lint"
)

// Status captures progress state within a stage.
type Status string

const (
	// StatusQueued indicates the file is waiting for a worker.
	StatusQueued Status = "queued"
	// StatusWorking indicates a worker is processing the file.
	StatusWorking Status = "working"
	// StatusCached indicates diagnostics were restored from the disk cache.
	StatusCached Status = "cached"
	// StatusDone indicates the file produced no errors.
	StatusDone Status = "done"
	// StatusError indicates the file failed to load or parse.
	StatusError Status = "error"
)

// Finished reports whether no more events follow for the file.
func (s Status) Finished() bool {
	return s == StatusCached || s == StatusDone || s == StatusError
}

// Event reports progress for a file (or for the whole run when File is empty).
type Event struct {
	File    string
	Stage   Stage
	Status  Status
	Err     error
	Elapsed time.Duration
}

// ProgressSink consumes progress events. Implementations must be safe for
// concurrent use: workers emit events in parallel.
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

// SinkFunc adapts a function to ProgressSink.
type SinkFunc func(Event)

func (f SinkFunc) OnEvent(evt Event) { f(evt) }

func emit(sink ProgressSink, evt Event) {
	if sink == nil {
		return
	}
	sink.OnEvent(evt)
}
