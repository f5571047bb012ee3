package workbench

import (
	"context"
	"errors"
	"html"
	"strings"

	"go.uber.org/zap"

	"codefusion/internal/render"
	"codefusion/pkg/types"
)

// Backend is the remote side of both flows
type Backend interface {
	Convert(ctx context.Context, sub CodeSubmission) (types.ConversionResult, error)
	Review(ctx context.Context, code string) (string, error)
}

// Response is the outcome of one dispatched Request
type Response struct {
	Request    Request
	Conversion types.ConversionResult
	Review     string
	// Err is a *TransportError when the exchange itself failed
	Err error
}

// Submit starts a dispatch. Blank input yields ErrEmptyInput, a prompt in the
// status line and no request.
func Submit(s State) (State, *Request, error) {
	if strings.TrimSpace(s.Input) == "" {
		prompt := MsgConvertPrompt
		if s.Flow == FlowReview {
			prompt = MsgReviewPrompt
		}
		return s.withStatus(StatusError, prompt), nil, ErrEmptyInput
	}

	sub := CodeSubmission{RawText: s.Input}
	if s.Flow == FlowConverter {
		sub.RawText = strings.TrimSpace(s.Input)
		sub.SourceLanguage = s.SourceLang
		sub.TargetLanguage = s.TargetLang
	}

	s.Seq++
	req := &Request{Seq: s.Seq, Flow: s.Flow, Submission: sub}
	return s.withStatus(StatusProcessing, MsgProcessing), req, nil
}

// Dispatcher executes requests against a Backend
type Dispatcher struct {
	backend Backend
	logger  *zap.Logger
}

// NewDispatcher creates a Dispatcher
func NewDispatcher(backend Backend, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		backend: backend,
		logger:  logger,
	}
}

// Dispatch issues exactly one backend call for req and waits for the full
// response.
func (d *Dispatcher) Dispatch(ctx context.Context, req Request) Response {
	resp := Response{Request: req}

	var err error
	switch req.Flow {
	case FlowConverter:
		resp.Conversion, err = d.backend.Convert(ctx, req.Submission)
	case FlowReview:
		resp.Review, err = d.backend.Review(ctx, req.Submission.RawText)
	default:
		err = errors.New("unknown flow " + string(req.Flow))
	}

	if err != nil {
		var te *TransportError
		if !errors.As(err, &te) {
			te = &TransportError{Op: string(req.Flow), Err: err}
		}
		d.logger.Error("dispatch failed",
			zap.String("flow", string(req.Flow)),
			zap.Uint64("seq", req.Seq),
			zap.Error(te),
		)
		resp.Err = te
	}
	return resp
}

// Resolve folds a response into the state. Responses for anything but the
// latest issued request are discarded and ok is false.
func (w *Workbench) Resolve(s State, resp Response) (next State, ok bool) {
	if resp.Request.Flow != s.Flow || resp.Request.Seq != s.Seq {
		w.logger.Debug("discarding stale response",
			zap.Uint64("seq", resp.Request.Seq),
			zap.Uint64("latest", s.Seq),
		)
		return s, false
	}

	if resp.Err != nil {
		// the converter clears its output on failure, the review flow does not
		if s.Flow == FlowConverter {
			s.Output = nil
		}
		return s.withStatus(StatusError, MsgConnectFailed), true
	}

	if s.Flow == FlowConverter {
		return w.resolveConversion(s, resp), true
	}
	return w.resolveReview(s, resp), true
}

func (w *Workbench) resolveConversion(s State, resp Response) State {
	if resp.Conversion.Error != "" {
		s.Output = nil
		return s.withStatus(StatusError, "Error: "+resp.Conversion.Error)
	}

	target := resp.Request.Submission.TargetLanguage
	grammar := render.GrammarFor(target)
	code := resp.Conversion.ConvertedCode
	out, err := w.renderer.HighlightCode(code, grammar)
	if err != nil {
		w.logger.Warn("highlight failed", zap.String("grammar", grammar.String()), zap.Error(err))
		out = "<pre><code>" + html.EscapeString(code) + "</code></pre>"
	}

	s.Output = &Output{
		Raw:      code,
		HTML:     out,
		Grammar:  grammar,
		Language: target,
	}
	return s.withStatus(StatusSuccess, MsgConverted)
}

func (w *Workbench) resolveReview(s State, resp Response) State {
	out, err := w.renderer.Markdown(resp.Review)
	if err != nil {
		w.logger.Warn("markdown render failed", zap.Error(err))
		out = "<pre>" + html.EscapeString(resp.Review) + "</pre>"
	}

	s.Output = &Output{
		Raw:  resp.Review,
		HTML: out,
	}
	return s.withStatus(StatusSuccess, MsgReviewed)
}

// Failure returns the error a caller should report for the response, if any
func (r Response) Failure() error {
	if r.Err != nil {
		return r.Err
	}
	if r.Conversion.Error != "" {
		return &LogicalError{Message: r.Conversion.Error}
	}
	return nil
}
