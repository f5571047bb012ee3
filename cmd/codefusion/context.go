package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/atotto/clipboard"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"codefusion/internal/backend"
	"codefusion/internal/render"
	"codefusion/internal/workbench"
	"codefusion/pkg/types"
)

type commandContext struct {
	viper    *viper.Viper
	logLevel string

	// writeClipboard is swapped out in tests
	writeClipboard func(string) error

	loggerOnce sync.Once
	logger     *zap.Logger
}

func newCommandContext() *commandContext {
	return &commandContext{
		viper:          viper.New(),
		writeClipboard: clipboard.WriteAll,
	}
}

func (c *commandContext) ensureLogger(errOut io.Writer) *zap.Logger {
	c.loggerOnce.Do(func() {
		level := zap.WarnLevel
		if err := level.UnmarshalText([]byte(c.logLevel)); err != nil {
			level = zap.WarnLevel
		}
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.TimeKey = "time"
		encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		core := zapcore.NewCore(
			zapcore.NewConsoleEncoder(encoderConfig),
			zapcore.AddSync(errOut),
			zap.NewAtomicLevelAt(level),
		)
		c.logger = zap.New(core)
	})
	return c.logger
}

func (c *commandContext) newClient(cmd *cobra.Command) (*backend.Client, error) {
	cfg, err := types.LoadClientConfig(c.viper)
	if err != nil {
		return nil, err
	}
	return backend.NewClient(*cfg, c.ensureLogger(cmd.ErrOrStderr())), nil
}

// newSession wires a workbench session for flow and echoes every status
// change to stderr.
func (c *commandContext) newSession(cmd *cobra.Command, flow workbench.Flow, renderer *render.Renderer, downloadDir string) (*workbench.Session, error) {
	client, err := c.newClient(cmd)
	if err != nil {
		return nil, err
	}
	logger := c.ensureLogger(cmd.ErrOrStderr())

	sink := &terminalSink{dir: downloadDir, writeClipboard: c.writeClipboard}
	sess := workbench.NewSession(flow,
		workbench.New(renderer, logger),
		workbench.NewDispatcher(client, logger),
		sink,
		logger,
	)

	last := ""
	sess.Observe(func(st workbench.State) {
		if st.Status.Kind == workbench.StatusIdle || st.Status.Text == last {
			return
		}
		last = st.Status.Text
		fmt.Fprintln(cmd.ErrOrStderr(), st.Status.Text)
	})
	return sess, nil
}

// loadInput feeds --code, --file or piped stdin into the session's text field.
// A file replaces text given with --code.
func loadInput(cmd *cobra.Command, sess *workbench.Session, code, file string) error {
	if code != "" {
		sess.Edit(code)
	}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("read %s: %w", file, err)
		}
		return sess.Upload(filepath.Base(file), data)
	}
	if code == "" {
		if f, ok := cmd.InOrStdin().(*os.File); ok && isTerminal(f) {
			return nil
		}
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		return sess.Upload("stdin", data)
	}
	return nil
}

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func writerIsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && isTerminal(f)
}

// terminalSink carries out clipboard and download effects for the CLI
type terminalSink struct {
	dir            string
	writeClipboard func(string) error
}

func (s *terminalSink) WriteClipboard(text string) error {
	if err := s.writeClipboard(text); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}

func (s *terminalSink) SaveFile(name string, data []byte) error {
	dir := s.dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create %s: %w", dir, err)
	}
	return os.WriteFile(filepath.Join(dir, name), data, 0o644)
}
