package cli

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/LucianoXu/diracoq/internal/compiler"
	"github.com/LucianoXu/diracoq/internal/kernel"
	"github.com/LucianoXu/diracoq/internal/prover"
	"github.com/LucianoXu/diracoq/internal/store"
)

// SessionOptions are the flags of the commands that drive a prover.
type SessionOptions struct {
	Database string
	Theory   string
	MaxSteps int
	Atomic   bool
	Label    string

	// IDGenerator overrides the session id generator (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	IDGenerator store.IDGenerator
}

func (o *SessionOptions) addTheoryFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Theory, "theory", "", "CUE theory file or directory to load first")
	cmd.Flags().IntVar(&o.MaxSteps, "max-steps", 0, "rewrite step budget per normalization (0 = unlimited)")
}

func (o *SessionOptions) addRecordFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Database, "db", "", "record the session into this SQLite database")
	cmd.Flags().StringVar(&o.Label, "label", "", "label stored with the recorded session")
	cmd.Flags().BoolVar(&o.Atomic, "atomic", false, "roll back a Group when any of its commands fails")
}

// session is a prover ready for user commands, with its theories loaded
// and, when --db is set, a recorder attached.
type session struct {
	prover   *prover.Prover
	store    *store.Store
	recorder *store.SessionRecorder
	logger   *slog.Logger
}

// ID returns the recorded session id, or "" when nothing is recorded.
func (s *session) ID() string {
	if s.recorder == nil {
		return ""
	}
	return s.recorder.Session().ID
}

// Kernel returns the kernel shared by the theories and the user commands.
func (s *session) Kernel() *kernel.Kernel {
	return s.prover.Kernel()
}

func (s *session) Close() error {
	if s.store == nil {
		return nil
	}
	return s.store.Close()
}

// openSession builds the kernel and prover for a command. User command
// output goes to out. Theory commands share the prover's clock and
// recorder but print nowhere; a failing one aborts with its output.
func openSession(ctx context.Context, opts *SessionOptions, logger *slog.Logger, out io.Writer) (*session, error) {
	k := kernel.New(kernel.WithLogger(logger), kernel.WithMaxSteps(opts.MaxSteps))
	clock := prover.NewClock()
	base := []prover.Option{
		prover.WithKernel(k),
		prover.WithLogger(logger),
		prover.WithClock(clock),
		prover.WithAtomic(opts.Atomic),
	}

	s := &session{logger: logger}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "failed to open database", err)
		}
		gen := opts.IDGenerator
		if gen == nil {
			gen = store.UUIDv7Generator{}
		}
		rec, err := st.NewSession(ctx, gen, store.Session{
			Label:    opts.Label,
			Atomic:   opts.Atomic,
			MaxSteps: opts.MaxSteps,
		})
		if err != nil {
			st.Close()
			return nil, WrapExitError(ExitCommandError, "failed to create session", err)
		}
		s.store, s.recorder = st, rec
		base = append(base, prover.WithRecorder(rec))
		logger.Info("recording session", "id", rec.Session().ID, "db", opts.Database)
	}

	if opts.Theory != "" {
		if err := loadSessionTheories(ctx, opts.Theory, base, logger); err != nil {
			s.Close()
			return nil, err
		}
	}

	s.prover = prover.New(out, base...)
	return s, nil
}

func loadSessionTheories(ctx context.Context, path string, base []prover.Option, logger *slog.Logger) error {
	result, errs := LoadTheories(path, LoadModeFailFast)
	if len(errs) > 0 {
		return WrapExitError(ExitCommandError, "failed to load theories", errs[0])
	}
	cmds, err := compiler.Program(result.Theories)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load theories", convertCompileError(err, ErrCodeGeneric))
	}

	var buf bytes.Buffer
	p := prover.New(&buf, base...)
	for _, c := range cmds {
		buf.Reset()
		if !p.Process(ctx, c) {
			msg := strings.TrimSpace(buf.String())
			return WrapExitError(ExitCommandError, "failed to load theories",
				fmt.Errorf("command %s failed: %s", c, msg))
		}
	}
	logger.Debug("theories loaded", "path", path, "theories", len(result.Theories), "commands", len(cmds))
	return nil
}
