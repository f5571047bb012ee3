package workbench

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"codefusion/internal/render"
	"codefusion/pkg/types"
)

type fakeBackend struct {
	mu          sync.Mutex
	conversions []CodeSubmission
	reviews     []string

	convert func(ctx context.Context, sub CodeSubmission) (types.ConversionResult, error)
	review  func(ctx context.Context, code string) (string, error)
}

func (f *fakeBackend) Convert(ctx context.Context, sub CodeSubmission) (types.ConversionResult, error) {
	f.mu.Lock()
	f.conversions = append(f.conversions, sub)
	f.mu.Unlock()
	if f.convert == nil {
		return types.ConversionResult{ConvertedCode: sub.RawText}, nil
	}
	return f.convert(ctx, sub)
}

func (f *fakeBackend) Review(ctx context.Context, code string) (string, error) {
	f.mu.Lock()
	f.reviews = append(f.reviews, code)
	f.mu.Unlock()
	if f.review == nil {
		return "Looks fine.", nil
	}
	return f.review(ctx, code)
}

func (f *fakeBackend) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.conversions) + len(f.reviews)
}

type fakeSink struct {
	clipboard []string
	files     map[string][]byte
	err       error
}

func (f *fakeSink) WriteClipboard(text string) error {
	if f.err != nil {
		return f.err
	}
	f.clipboard = append(f.clipboard, text)
	return nil
}

func (f *fakeSink) SaveFile(name string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	if f.files == nil {
		f.files = make(map[string][]byte)
	}
	f.files[name] = data
	return nil
}

func newTestSession(t *testing.T, flow Flow, backend Backend, sink Sink) *Session {
	t.Helper()
	logger := zaptest.NewLogger(t)
	wb := New(render.New(), logger)
	return NewSession(flow, wb, NewDispatcher(backend, logger), sink, logger)
}

func TestDispatchSendsExactlyOneRequest(t *testing.T) {
	t.Run("converter", func(t *testing.T) {
		backend := &fakeBackend{}
		sess := newTestSession(t, FlowConverter, backend, &fakeSink{})
		sess.SelectLanguages("python", "cpp")
		sess.Edit("  print(1)\n")

		_, err := sess.Dispatch(context.Background())
		require.NoError(t, err)

		require.Len(t, backend.conversions, 1)
		assert.Empty(t, backend.reviews)
		assert.Equal(t, CodeSubmission{
			RawText:        "print(1)",
			SourceLanguage: "python",
			TargetLanguage: "cpp",
		}, backend.conversions[0])
	})

	t.Run("review", func(t *testing.T) {
		backend := &fakeBackend{}
		sess := newTestSession(t, FlowReview, backend, &fakeSink{})
		sess.Edit("x = 1\n")

		_, err := sess.Dispatch(context.Background())
		require.NoError(t, err)

		assert.Empty(t, backend.conversions)
		assert.Equal(t, []string{"x = 1\n"}, backend.reviews)
	})
}

func TestDispatchBlankInputMakesNoRequest(t *testing.T) {
	tests := []struct {
		flow   Flow
		input  string
		prompt string
	}{
		{FlowConverter, "", MsgConvertPrompt},
		{FlowConverter, " \t\n ", MsgConvertPrompt},
		{FlowReview, "\n\n", MsgReviewPrompt},
	}
	for _, tt := range tests {
		t.Run(string(tt.flow), func(t *testing.T) {
			backend := &fakeBackend{}
			sess := newTestSession(t, tt.flow, backend, &fakeSink{})
			sess.Edit(tt.input)

			st, err := sess.Dispatch(context.Background())
			assert.ErrorIs(t, err, ErrEmptyInput)
			assert.Zero(t, backend.calls())
			assert.Equal(t, tt.prompt, st.Status.Text)
			assert.Zero(t, st.Seq)
		})
	}
}

func TestConversionSuccessRendersGrammar(t *testing.T) {
	backend := &fakeBackend{
		convert: func(ctx context.Context, sub CodeSubmission) (types.ConversionResult, error) {
			return types.ConversionResult{ConvertedCode: "int x;"}, nil
		},
	}
	sink := &fakeSink{}
	sess := newTestSession(t, FlowConverter, backend, sink)
	sess.SelectLanguages("python", "cpp")
	sess.Edit("x = 0")

	st, err := sess.Dispatch(context.Background())
	require.NoError(t, err)

	require.NotNil(t, st.Output)
	assert.Equal(t, "int x;", st.Output.Raw)
	assert.Equal(t, render.GrammarCPP, st.Output.Grammar)
	assert.Contains(t, st.Output.HTML, `class="language-cpp"`)
	assert.Equal(t, Status{Kind: StatusSuccess, Text: MsgConverted}, st.Status)

	name, err := sess.Download()
	require.NoError(t, err)
	assert.Equal(t, "converted.cpp", name)
	assert.Equal(t, []byte("int x;"), sink.files["converted.cpp"])
	assert.Equal(t, MsgDownloaded, sess.State().Status.Text)
}

func TestConversionLogicalError(t *testing.T) {
	fail := false
	backend := &fakeBackend{
		convert: func(ctx context.Context, sub CodeSubmission) (types.ConversionResult, error) {
			if fail {
				return types.ConversionResult{Error: "bad syntax"}, nil
			}
			return types.ConversionResult{ConvertedCode: "ok"}, nil
		},
	}
	sess := newTestSession(t, FlowConverter, backend, &fakeSink{})
	sess.SelectLanguages("c", "java")
	sess.Edit("int main() {}")

	_, err := sess.Dispatch(context.Background())
	require.NoError(t, err)
	require.Equal(t, "ok", sess.State().OutputText())

	fail = true
	st, err := sess.Dispatch(context.Background())

	var logical *LogicalError
	require.ErrorAs(t, err, &logical)
	assert.Equal(t, "bad syntax", logical.Message)
	assert.Equal(t, "Error: bad syntax", st.Status.Text)
	assert.Equal(t, "", st.OutputText())
}

func TestTransportFailure(t *testing.T) {
	connErr := errors.New("dial tcp 127.0.0.1:5000: connection refused")

	t.Run("converter clears output", func(t *testing.T) {
		fail := false
		backend := &fakeBackend{
			convert: func(ctx context.Context, sub CodeSubmission) (types.ConversionResult, error) {
				if fail {
					return types.ConversionResult{}, connErr
				}
				return types.ConversionResult{ConvertedCode: "print(1)"}, nil
			},
		}
		sess := newTestSession(t, FlowConverter, backend, &fakeSink{})
		sess.SelectLanguages("js", "python")
		sess.Edit("console.log(1)")
		_, err := sess.Dispatch(context.Background())
		require.NoError(t, err)

		fail = true
		st, err := sess.Dispatch(context.Background())

		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.ErrorIs(t, err, connErr)
		assert.Equal(t, MsgConnectFailed, st.Status.Text)
		assert.Nil(t, st.Output)
	})

	t.Run("review keeps output", func(t *testing.T) {
		fail := false
		backend := &fakeBackend{
			review: func(ctx context.Context, code string) (string, error) {
				if fail {
					return "", connErr
				}
				return "# Review\n", nil
			},
		}
		sess := newTestSession(t, FlowReview, backend, &fakeSink{})
		sess.Edit("x = 1")
		_, err := sess.Dispatch(context.Background())
		require.NoError(t, err)

		fail = true
		st, err := sess.Dispatch(context.Background())

		var te *TransportError
		require.ErrorAs(t, err, &te)
		assert.Equal(t, MsgConnectFailed, st.Status.Text)
		require.NotNil(t, st.Output)
		assert.Equal(t, "# Review\n", st.Output.Raw)
	})
}

func TestReviewRendersMarkdown(t *testing.T) {
	backend := &fakeBackend{
		review: func(ctx context.Context, code string) (string, error) {
			return "## Issues\n\n```go\nfmt.Println(1)\n```\n", nil
		},
	}
	sess := newTestSession(t, FlowReview, backend, &fakeSink{})
	sess.Edit("package main")

	st, err := sess.Dispatch(context.Background())
	require.NoError(t, err)
	assert.Contains(t, st.Output.HTML, "<h2>Issues</h2>")
	assert.Contains(t, st.Output.HTML, `class="language-go"`)
	assert.Equal(t, MsgReviewed, st.Status.Text)
}

func TestCopy(t *testing.T) {
	t.Run("empty output is a no-op", func(t *testing.T) {
		sink := &fakeSink{}
		sess := newTestSession(t, FlowConverter, &fakeBackend{}, sink)
		before := sess.State().Status

		require.NoError(t, sess.Copy())
		assert.Empty(t, sink.clipboard)
		assert.Equal(t, before, sess.State().Status)

		name, err := sess.Download()
		require.NoError(t, err)
		assert.Empty(t, name)
		assert.Empty(t, sink.files)
	})

	t.Run("copies verbatim", func(t *testing.T) {
		sink := &fakeSink{}
		sess := newTestSession(t, FlowConverter, &fakeBackend{}, sink)
		sess.SelectLanguages("python", "python")
		sess.Edit("print( 1 )")
		_, err := sess.Dispatch(context.Background())
		require.NoError(t, err)

		require.NoError(t, sess.Copy())
		assert.Equal(t, []string{"print( 1 )"}, sink.clipboard)
		assert.Equal(t, MsgCopied, sess.State().Status.Text)
	})

	t.Run("sink failure surfaces", func(t *testing.T) {
		sink := &fakeSink{err: errors.New("no clipboard")}
		sess := newTestSession(t, FlowConverter, &fakeBackend{}, sink)
		sess.Edit("x")
		_, err := sess.Dispatch(context.Background())
		require.NoError(t, err)

		assert.Error(t, sess.Copy())
		assert.Equal(t, StatusError, sess.State().Status.Kind)
	})
}

func TestUploadRoundTrip(t *testing.T) {
	sess := newTestSession(t, FlowConverter, &fakeBackend{}, &fakeSink{})
	sess.Edit("old text")

	require.NoError(t, sess.Upload("main.py", []byte("print(1)")))
	st := sess.State()
	assert.Equal(t, "print(1)", st.Text())
	assert.Equal(t, "main.py", st.FileName)
}

func TestUploadRejectsBinary(t *testing.T) {
	sess := newTestSession(t, FlowReview, &fakeBackend{}, &fakeSink{})
	sess.Edit("keep me")

	err := sess.Upload("blob.bin", []byte{0xff, 0xfe, 0x00, 0xc3})

	var readErr *FileReadError
	require.ErrorAs(t, err, &readErr)
	assert.Equal(t, "blob.bin", readErr.Name)
	st := sess.State()
	assert.Equal(t, "keep me", st.Text())
	assert.Empty(t, st.FileName)
	assert.Equal(t, StatusError, st.Status.Kind)
	assert.Contains(t, st.Status.Text, "blob.bin")
}

func TestReviewMirrorFollowsEdits(t *testing.T) {
	sess := newTestSession(t, FlowReview, &fakeBackend{}, &fakeSink{})

	sess.Edit("def f():\n    return 1\n")
	assert.Contains(t, sess.State().Mirror, "return")

	sess.Edit("")
	assert.Empty(t, sess.State().Mirror)
}

func TestReset(t *testing.T) {
	sess := newTestSession(t, FlowReview, &fakeBackend{}, &fakeSink{})
	sess.Edit("a")
	require.NoError(t, sess.Upload("b.js", []byte("let b = 1;")))
	_, err := sess.Dispatch(context.Background())
	require.NoError(t, err)
	require.NotNil(t, sess.State().Output)

	sess.Reset()
	once := sess.State()
	assert.Empty(t, once.Input)
	assert.Empty(t, once.Mirror)
	assert.Empty(t, once.FileName)
	assert.Nil(t, once.Output)

	sess.Reset()
	twice := sess.State()
	assert.Empty(t, twice.Input)
	assert.Empty(t, twice.Mirror)
	assert.Empty(t, twice.FileName)
	assert.Nil(t, twice.Output)
	assert.Equal(t, once.Status, twice.Status)
}

func TestResetDiscardsInFlightReview(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{
		review: func(ctx context.Context, code string) (string, error) {
			close(started)
			<-release
			return "## Late review", nil
		},
	}
	sess := newTestSession(t, FlowReview, backend, &fakeSink{})
	sess.Edit("x = 1")

	errs := make(chan error, 1)
	go func() {
		_, err := sess.Dispatch(context.Background())
		errs <- err
	}()
	<-started

	sess.Reset()
	assert.Equal(t, StatusIdle, sess.State().Status.Kind)
	close(release)
	assert.ErrorIs(t, <-errs, ErrSuperseded)

	st := sess.State()
	assert.Empty(t, st.Input)
	assert.Empty(t, st.Mirror)
	assert.Empty(t, st.FileName)
	assert.Nil(t, st.Output)
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	backend := &fakeBackend{
		convert: func(ctx context.Context, sub CodeSubmission) (types.ConversionResult, error) {
			if sub.RawText == "first" {
				close(started)
				<-release
			}
			return types.ConversionResult{ConvertedCode: "converted " + sub.RawText}, nil
		},
	}
	sess := newTestSession(t, FlowConverter, backend, &fakeSink{})
	sess.SelectLanguages("python", "java")
	sess.Edit("first")

	firstErr := make(chan error, 1)
	go func() {
		_, err := sess.Dispatch(context.Background())
		firstErr <- err
	}()
	<-started

	sess.Edit("second")
	st, err := sess.Dispatch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "converted second", st.OutputText())

	close(release)
	assert.ErrorIs(t, <-firstErr, ErrSuperseded)

	final := sess.State()
	assert.Equal(t, "converted second", final.OutputText())
	assert.Equal(t, uint64(2), final.Seq)
	assert.Equal(t, MsgConverted, final.Status.Text)
}

func TestObserverSeesStatusTransitions(t *testing.T) {
	sess := newTestSession(t, FlowConverter, &fakeBackend{}, &fakeSink{})
	sess.Edit("x")

	var seen []string
	sess.Observe(func(st State) { seen = append(seen, st.Status.Text) })
	_, err := sess.Dispatch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{MsgProcessing, MsgConverted}, seen)
}

func TestDownloadName(t *testing.T) {
	assert.Equal(t, "converted.cpp", DownloadName("cpp"))
	assert.Equal(t, "converted.py", DownloadName("py"))
	assert.Equal(t, "converted.java", DownloadName("java"))
	assert.Equal(t, "converted.txt", DownloadName(""))
	assert.True(t, strings.HasPrefix(DownloadName("js"), "converted."))
}
