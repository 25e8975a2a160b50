package driver

import "context"

// Stage is a compile phase reported through Options.Events.
type Stage uint8

const (
	StageParse Stage = iota
	StageResolve
	StageGenerate
)

func (s Stage) String() string {
	switch s {
	case StageParse:
		return "parsing"
	case StageResolve:
		return "resolving"
	case StageGenerate:
		return "generating"
	}
	return ""
}

type Status uint8

const (
	StatusQueued Status = iota
	StatusWorking
	StatusDone
	StatusError
)

// Event reports progress of one unit, or of the whole set when Path is "".
type Event struct {
	Path   string
	Stage  Stage
	Status Status
}

func (w *Workspace) emit(ctx context.Context, ev Event) {
	if w.opts.Events == nil {
		return
	}
	select {
	case w.opts.Events <- ev:
	case <-ctx.Done():
	}
}
