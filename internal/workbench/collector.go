package workbench

import (
	"errors"
	"html"
	"unicode/utf8"

	"go.uber.org/zap"

	"codefusion/internal/render"
)

// Workbench applies the state transitions of both flows
type Workbench struct {
	renderer *render.Renderer
	logger   *zap.Logger
}

// New creates a Workbench rendering through r
func New(r *render.Renderer, logger *zap.Logger) *Workbench {
	return &Workbench{
		renderer: r,
		logger:   logger,
	}
}

// Text returns the code the next dispatch would send
func (s State) Text() string {
	return s.Input
}

// Edit replaces the text field content. The review flow keeps a highlighted
// mirror of the editor in sync.
func (w *Workbench) Edit(s State, text string) State {
	s.Input = text
	if s.Flow == FlowReview {
		s.Mirror = w.mirror(text)
	}
	return s
}

// Upload overwrites the text field with a file's content. Content that is not
// valid UTF-8 is rejected with a FileReadError and the previous text is kept.
func (w *Workbench) Upload(s State, name string, data []byte) (State, error) {
	if !utf8.Valid(data) {
		err := &FileReadError{Name: name, Err: errors.New("content is not valid UTF-8")}
		w.logger.Warn("file upload rejected", zap.String("file", name), zap.Error(err))
		return s.withStatus(StatusError, "Error: could not read "+name+" as text"), err
	}

	s = w.Edit(s, string(data))
	s.FileName = name
	w.logger.Debug("file loaded", zap.String("file", name), zap.Int("size", len(data)))
	return s, nil
}

func (w *Workbench) mirror(text string) string {
	if text == "" {
		return ""
	}
	out, err := w.renderer.HighlightGuess(text)
	if err != nil {
		w.logger.Warn("mirror highlight failed", zap.Error(err))
		return "<pre><code>" + html.EscapeString(text) + "</code></pre>"
	}
	return out
}
