package workbench

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"
)

// ErrSuperseded is returned by Session.Dispatch when a newer dispatch was
// issued before this one resolved; its response was discarded.
var ErrSuperseded = errors.New("response superseded by a newer request")

// Sink performs the effects that leave the process
type Sink interface {
	WriteClipboard(text string) error
	SaveFile(name string, data []byte) error
}

// Session owns the state of one flow and serialises every transition.
// Only the network wait happens outside the lock, so dispatches may overlap.
type Session struct {
	mu    sync.Mutex
	state State

	wb         *Workbench
	dispatcher *Dispatcher
	sink       Sink
	logger     *zap.Logger
	observer   func(State)
}

// NewSession creates an idle session for flow
func NewSession(flow Flow, wb *Workbench, dispatcher *Dispatcher, sink Sink, logger *zap.Logger) *Session {
	return &Session{
		state:      NewState(flow),
		wb:         wb,
		dispatcher: dispatcher,
		sink:       sink,
		logger:     logger,
	}
}

// Observe registers fn to receive every new state
func (s *Session) Observe(fn func(State)) {
	s.mu.Lock()
	s.observer = fn
	s.mu.Unlock()
}

// State returns a snapshot
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Session) update(fn func(State) State) State {
	s.mu.Lock()
	s.state = fn(s.state)
	next, observer := s.state, s.observer
	s.mu.Unlock()

	if observer != nil {
		observer(next)
	}
	return next
}

// SelectLanguages sets the converter's source and target selection
func (s *Session) SelectLanguages(source, target string) {
	s.update(func(st State) State {
		st.SourceLang = source
		st.TargetLang = target
		return st
	})
}

// Edit replaces the text field content
func (s *Session) Edit(text string) {
	s.update(func(st State) State {
		return s.wb.Edit(st, text)
	})
}

// Upload loads a file into the text field
func (s *Session) Upload(name string, data []byte) error {
	var err error
	s.update(func(st State) State {
		var next State
		next, err = s.wb.Upload(st, name, data)
		return next
	})
	return err
}

// Dispatch submits the current input and waits for the backend. The returned
// error is ErrEmptyInput, ErrSuperseded, a *LogicalError, a *TransportError
// or nil.
func (s *Session) Dispatch(ctx context.Context) (State, error) {
	var req *Request
	var err error
	s.update(func(st State) State {
		var next State
		next, req, err = Submit(st)
		return next
	})
	if err != nil {
		return s.State(), err
	}

	resp := s.dispatcher.Dispatch(ctx, *req)

	var applied bool
	final := s.update(func(st State) State {
		var next State
		next, applied = s.wb.Resolve(st, resp)
		return next
	})
	if !applied {
		return final, ErrSuperseded
	}
	return final, resp.Failure()
}

// Copy writes the displayed result to the clipboard
func (s *Session) Copy() error {
	s.mu.Lock()
	next, effect := Copy(s.state)
	s.mu.Unlock()
	if effect == nil {
		return nil
	}

	if err := s.sink.WriteClipboard(effect.Text); err != nil {
		s.logger.Error("clipboard write failed", zap.Error(err))
		s.update(func(st State) State { return st.withStatus(StatusError, "Error: "+err.Error()) })
		return err
	}
	s.update(func(st State) State { return st.withStatus(next.Status.Kind, next.Status.Text) })
	return nil
}

// Download saves the displayed result as converted.<ext>
func (s *Session) Download() (string, error) {
	s.mu.Lock()
	next, effect := Download(s.state)
	s.mu.Unlock()
	if effect == nil {
		return "", nil
	}

	if err := s.sink.SaveFile(effect.Name, effect.Data); err != nil {
		s.logger.Error("download failed", zap.String("file", effect.Name), zap.Error(err))
		s.update(func(st State) State { return st.withStatus(StatusError, "Error: "+err.Error()) })
		return "", err
	}
	s.update(func(st State) State { return st.withStatus(next.Status.Kind, next.Status.Text) })
	return effect.Name, nil
}

// Reset clears the review flow
func (s *Session) Reset() {
	s.update(Reset)
}
