package printer

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"ptouch-print/internal/ptcmd"
	"ptouch-print/internal/status"
)

// Defaults for the completion wait
const (
	DefaultMaxStatusPolls    = 64
	DefaultCompletionTimeout = 60 * time.Second
)

var (
	ErrPrintTimeout  = errors.New("timed out waiting for printing to complete")
	ErrSessionUsed   = errors.New("session already ran")
	ErrNoStatusReply = errors.New("printer did not reply to the status request")
)

// PrintTimeoutError is returned when a copy never reports completion
type PrintTimeoutError struct {
	Copy    int
	Polls   int
	Elapsed time.Duration
}

func (e *PrintTimeoutError) Error() string {
	return fmt.Sprintf("copy %d: no completion after %d status polls in %s", e.Copy, e.Polls, e.Elapsed.Round(time.Millisecond))
}

func (e *PrintTimeoutError) Unwrap() error {
	return ErrPrintTimeout
}

// State is a step of a print session
type State int

const (
	StateIdle State = iota
	StateHandshaking
	StateAwaitingInitialStatus
	StateConfiguring
	StatePrintingCopy
	StateAwaitingCompletion
	StateDone
	StateFaulted
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateHandshaking:
		return "handshaking"
	case StateAwaitingInitialStatus:
		return "awaiting initial status"
	case StateConfiguring:
		return "configuring"
	case StatePrintingCopy:
		return "printing copy"
	case StateAwaitingCompletion:
		return "awaiting completion"
	case StateDone:
		return "done"
	case StateFaulted:
		return "faulted"
	}
	return fmt.Sprintf("state %d", int(s))
}

// Options tunes a session
type Options struct {
	// MaxStatusPolls bounds the status frames read while waiting for one copy
	MaxStatusPolls int
	// CompletionTimeout bounds the time spent waiting for one copy
	CompletionTimeout time.Duration
	// AutoCut cuts the tape after every copy
	AutoCut bool
}

func DefaultOptions() Options {
	return Options{
		MaxStatusPolls:    DefaultMaxStatusPolls,
		CompletionTimeout: DefaultCompletionTimeout,
		AutoCut:           true,
	}
}

// Session drives one print job over a transport. A session runs once; it
// ends either Done or Faulted.
type Session struct {
	t    Transport
	log  zerolog.Logger
	opts Options

	state State
	copy  int
	err   error
	now   func() time.Time
}

func NewSession(t Transport, log zerolog.Logger, opts Options) *Session {
	if opts.MaxStatusPolls <= 0 {
		opts.MaxStatusPolls = DefaultMaxStatusPolls
	}
	if opts.CompletionTimeout <= 0 {
		opts.CompletionTimeout = DefaultCompletionTimeout
	}
	return &Session{t: t, log: log, opts: opts, now: time.Now}
}

// State returns the current state
func (s *Session) State() State {
	return s.state
}

// Err returns the error that faulted the session, if any
func (s *Session) Err() error {
	return s.err
}

// Print runs the whole job: handshake, configuration, then every copy
// followed by a wait for the printer to report it completed.
func (s *Session) Print(job *Job) error {
	if s.state != StateIdle {
		return ErrSessionUsed
	}

	reply, err := s.handshake()
	if err != nil {
		return s.fault(err)
	}
	if reply != nil && reply.MediaWidth != job.Tape().MediaWidth {
		s.log.Warn().
			Uint8("loaded_mm", reply.MediaWidth).
			Str("job_tape", job.Tape().Name).
			Msg("loaded tape does not match the job")
	}

	s.enter(StateConfiguring)
	if err := s.send("configure", s.configuration(job)); err != nil {
		return s.fault(err)
	}

	cmd := ptcmd.New()
	for i := 1; i <= job.Copies(); i++ {
		s.copy = i
		s.enter(StatePrintingCopy)
		s.log.Info().Int("copy", i).Int("copies", job.Copies()).Msg("printing copy")

		last := i == job.Copies()
		cmd.Reset()
		cmd.RasterLines(job.lines).Print(last)
		if err := s.send("raster", cmd.Bytes()); err != nil {
			return s.fault(err)
		}

		s.enter(StateAwaitingCompletion)
		if err := s.awaitCompletion(); err != nil {
			return s.fault(err)
		}
	}

	s.enter(StateDone)
	s.log.Info().Int("copies", job.Copies()).Msg("done")
	return nil
}

// Status performs the handshake only and returns the printer's reply
func (s *Session) Status() (status.ReplyToStatus, error) {
	if s.state != StateIdle {
		return status.ReplyToStatus{}, ErrSessionUsed
	}

	reply, err := s.handshake()
	if err == nil && reply == nil {
		err = ErrNoStatusReply
	}
	if err != nil {
		return status.ReplyToStatus{}, s.fault(err)
	}

	s.enter(StateDone)
	return *reply, nil
}

// handshake resets the printer and reads its initial status. Events other
// than a reply or a fault are logged and skipped, leaving reply nil.
func (s *Session) handshake() (*status.ReplyToStatus, error) {
	s.enter(StateHandshaking)
	cmd := ptcmd.New().Invalidate().Initialize().StatusRequest()
	if err := s.send("handshake", cmd.Bytes()); err != nil {
		return nil, err
	}

	s.enter(StateAwaitingInitialStatus)
	ev, err := s.receive()
	if err != nil {
		return nil, err
	}

	switch ev := ev.(type) {
	case status.ReplyToStatus:
		s.log.Info().Stringer("status", ev).Msg("printer status")
		return &ev, nil
	case status.ErrorOccurred:
		return nil, ev.Err()
	case status.TurnedOff:
		return nil, ev.Err()
	case status.PrintingCompleted, status.Notification, status.PhaseChange:
		s.log.Warn().Stringer("status", ev).Msg("unexpected status during handshake")
		return nil, nil
	default:
		return nil, fmt.Errorf("unhandled status event %T", ev)
	}
}

func (s *Session) configuration(job *Job) []byte {
	mode := ptcmd.Mode(0)
	if s.opts.AutoCut {
		mode |= ptcmd.ModeAutoCut
	}

	return ptcmd.New().
		RasterMode().
		NotifyStatus().
		PrintInformation(job.Tape().MediaWidth, job.DataLength()).
		VariousMode(mode).
		AdvancedMode(ptcmd.AdvancedNoChainPrinting).
		Margin(0).
		Compression(ptcmd.CompressionTIFF).
		Bytes()
}

// awaitCompletion reads status frames until the current copy completes.
// A read timeout counts as an empty poll.
func (s *Session) awaitCompletion() error {
	start := s.now()
	deadline := start.Add(s.opts.CompletionTimeout)

	polls := 0
	for polls < s.opts.MaxStatusPolls && !s.now().After(deadline) {
		polls++

		ev, err := s.receive()
		if errors.Is(err, ErrTimeout) {
			s.log.Debug().Int("copy", s.copy).Int("poll", polls).Msg("no status yet")
			continue
		}
		if err != nil {
			return err
		}

		switch ev := ev.(type) {
		case status.PrintingCompleted:
			s.log.Info().Int("copy", s.copy).Stringer("status", ev).Msg("copy completed")
			return nil
		case status.ErrorOccurred:
			return ev.Err()
		case status.TurnedOff:
			return ev.Err()
		case status.ReplyToStatus, status.Notification, status.PhaseChange:
			s.log.Info().Int("copy", s.copy).Stringer("status", ev).Msg("status")
		default:
			return fmt.Errorf("unhandled status event %T", ev)
		}
	}

	return &PrintTimeoutError{Copy: s.copy, Polls: polls, Elapsed: s.now().Sub(start)}
}

func (s *Session) send(what string, data []byte) error {
	s.log.Debug().Str("command", what).Int("bytes", len(data)).Msg("send")
	if err := s.t.Send(data); err != nil {
		return &TransportError{Op: "send " + what, Err: err}
	}
	return nil
}

// receive reads and classifies one status frame. ErrTimeout is returned
// wrapped so callers can still match it.
func (s *Session) receive() (status.Event, error) {
	raw, err := s.t.Receive(status.FrameSize)
	if err != nil {
		return nil, &TransportError{Op: "receive", Err: err}
	}
	s.log.Debug().Hex("frame", raw).Int("bytes", len(raw)).Msg("received status")

	return status.Decode(raw)
}

func (s *Session) enter(next State) {
	s.log.Debug().Stringer("from", s.state).Stringer("to", next).Int("copy", s.copy).Msg("state")
	s.state = next
}

func (s *Session) fault(err error) error {
	s.log.Error().Err(err).Stringer("state", s.state).Int("copy", s.copy).Msg("print session faulted")
	s.state = StateFaulted
	s.err = err
	return err
}
