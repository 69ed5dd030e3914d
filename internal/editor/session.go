// Package editor keeps one text editor's workout text and its structured
// model in sync.
//
// Text edits are parsed automatically after a debounce delay; a newer edit
// replaces a pending one. The model is rendered back to text only on an
// explicit Regenerate, and the session ignores the echo of text it produced
// itself. All state changes for a session are serialised.
package editor

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/claude/repnotes/internal/codec"
	"github.com/claude/repnotes/internal/models"
	"github.com/claude/repnotes/internal/volume"
)

// DefaultDebounce is used when Options.Debounce is zero.
const DefaultDebounce = 400 * time.Millisecond

// ErrExerciseNotFound is returned by row and progress edits for an unknown id.
var ErrExerciseNotFound = errors.New("exercise not found")

// State is a snapshot of a session.
type State struct {
	Text      string            `json:"text"`
	Exercises []models.Exercise `json:"exercises"`
	Progress  models.Progress   `json:"progress"`
	Version   uint64            `json:"version"`
}

func (s State) clone() State {
	out := s
	out.Exercises = append([]models.Exercise(nil), s.Exercises...)
	out.Progress = s.Progress.Clone()
	return out
}

// Options configure a Session.
type Options struct {
	Debounce time.Duration
	Builder  *codec.Builder
	Rows     *volume.Editor
	Logger   *slog.Logger
}

// Session owns the text, exercises and progress of one editor.
type Session struct {
	delay   time.Duration
	builder *codec.Builder
	rows    *volume.Editor
	log     *slog.Logger

	mu          sync.Mutex
	state       State
	timer       *time.Timer
	pendingText string
	pending     bool
	seq         uint64
	echo        string
	hasEcho     bool
	onChange    func(State)
}

// New creates a session starting from initial.
func New(initial State, opts Options) *Session {
	s := &Session{
		delay:   opts.Debounce,
		builder: opts.Builder,
		rows:    opts.Rows,
		log:     opts.Logger,
		state:   initial.clone(),
	}
	if s.delay <= 0 {
		s.delay = DefaultDebounce
	}
	if s.builder == nil {
		s.builder = codec.NewBuilder()
	}
	if s.rows == nil {
		s.rows = volume.NewEditor()
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.state.Progress == nil {
		s.state.Progress = models.Progress{}
	}
	return s
}

// OnChange registers fn to receive a snapshot after every committed change.
func (s *Session) OnChange(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onChange = fn
}

// State returns a snapshot of the committed state.
func (s *Session) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// TextChanged records an edit and schedules a parse after the debounce delay.
// A parse already pending for an older edit is replaced.
func (s *Session) TextChanged(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.hasEcho && text == s.echo {
		s.hasEcho = false
		return
	}
	s.hasEcho = false

	s.seq++
	seq := s.seq
	s.pendingText = text
	s.pending = true
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, func() { s.fire(seq) })
}

// Flush runs a pending parse immediately. It reports whether one ran.
func (s *Session) Flush() bool {
	s.mu.Lock()
	if !s.pending {
		s.mu.Unlock()
		return false
	}
	if s.timer != nil {
		s.timer.Stop()
	}
	snap, ok := s.applyLocked()
	s.mu.Unlock()
	if ok {
		s.notify(snap)
	}
	return true
}

// Close cancels a pending parse.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.pending = false
}

func (s *Session) fire(seq uint64) {
	s.mu.Lock()
	if !s.pending || seq != s.seq {
		s.mu.Unlock()
		return
	}
	snap, ok := s.applyLocked()
	s.mu.Unlock()
	if ok {
		s.notify(snap)
	}
}

// applyLocked decodes the pending text and commits it only if the result is
// a valid model. On failure the previous state is kept.
func (s *Session) applyLocked() (snap State, ok bool) {
	text := s.pendingText
	s.pending = false

	defer func() {
		if r := recover(); r != nil {
			s.log.Error("workout parse failed", "error", fmt.Sprint(r))
			ok = false
		}
	}()

	result := s.builder.Decode(text, s.state.Exercises)
	if err := models.Validate(result.Exercises, result.Progress); err != nil {
		s.log.Error("decoded workout rejected", "error", err)
		return State{}, false
	}

	s.state = State{
		Text:      text,
		Exercises: result.Exercises,
		Progress:  result.Progress,
		Version:   s.state.Version + 1,
	}
	s.log.Debug("workout text parsed", "exercises", len(result.Exercises), "version", s.state.Version)
	return s.state.clone(), true
}

// Regenerate renders the committed model as text and makes it the session
// text. The next TextChanged carrying exactly this text is ignored.
func (s *Session) Regenerate() string {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.pending = false
	text := codec.Generate(s.state.Exercises, s.state.Progress)
	s.state.Text = text
	s.state.Version++
	s.echo = text
	s.hasEcho = true
	snap := s.state.clone()
	s.mu.Unlock()

	s.notify(snap)
	return text
}

// AddRow appends a default row to an exercise.
func (s *Session) AddRow(exerciseID string) error {
	return s.editExercise(exerciseID, func(ex models.Exercise) (volume.Edit, error) {
		return s.rows.Add(ex), nil
	})
}

// RemoveRow deletes a row of an exercise.
func (s *Session) RemoveRow(exerciseID string, row int) error {
	return s.editExercise(exerciseID, func(ex models.Exercise) (volume.Edit, error) {
		return s.rows.Remove(ex, row)
	})
}

// UpdateRow applies changes to a row of an exercise.
func (s *Session) UpdateRow(exerciseID string, row int, ch volume.Changes) error {
	return s.editExercise(exerciseID, func(ex models.Exercise) (volume.Edit, error) {
		return s.rows.Update(ex, row, ch)
	})
}

// SetDone marks one set of an exercise complete or incomplete.
func (s *Session) SetDone(exerciseID string, index int, done bool) error {
	s.mu.Lock()
	flags, ok := s.state.Progress[exerciseID]
	if !ok {
		s.mu.Unlock()
		return ErrExerciseNotFound
	}
	if index < 0 || index >= len(flags) {
		s.mu.Unlock()
		return fmt.Errorf("set %d out of range for exercise %s", index, exerciseID)
	}
	updated := append([]bool(nil), flags...)
	updated[index] = done
	s.state.Progress = s.state.Progress.Clone()
	s.state.Progress[exerciseID] = updated
	s.state.Version++
	snap := s.state.clone()
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

func (s *Session) editExercise(id string, fn func(models.Exercise) (volume.Edit, error)) error {
	s.mu.Lock()
	idx := -1
	for i, ex := range s.state.Exercises {
		if ex.ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return ErrExerciseNotFound
	}

	edit, err := fn(s.state.Exercises[idx])
	if err != nil {
		s.mu.Unlock()
		return err
	}

	exercises := append([]models.Exercise(nil), s.state.Exercises...)
	exercises[idx] = edit.Exercise
	progress := s.state.Progress.Clone()
	progress[id] = edit.Remap.Apply(progress[id])
	if err := models.Validate(exercises, progress); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("applying row edit: %w", err)
	}

	s.state.Exercises = exercises
	s.state.Progress = progress
	s.state.Version++
	snap := s.state.clone()
	s.mu.Unlock()

	s.notify(snap)
	return nil
}

func (s *Session) notify(snap State) {
	s.mu.Lock()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn(snap)
	}
}
