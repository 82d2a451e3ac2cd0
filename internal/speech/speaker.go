package speech

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
)

type Outcome int

const (
	Finished Outcome = iota
	Failed
	Stopped
)

func (o Outcome) String() string {
	switch o {
	case Finished:
		return "finished"
	case Failed:
		return "failed"
	case Stopped:
		return "stopped"
	}
	return "unknown"
}

type utterance struct {
	key     string
	cancel  context.CancelFunc
	stopped atomic.Bool
	once    sync.Once
	onDone  func(Outcome)
}

func (u *utterance) finish(o Outcome) {
	u.once.Do(func() {
		if u.onDone != nil {
			u.onDone(o)
		}
	})
}

// Speaker owns the single active utterance.
type Speaker struct {
	engine    Engine
	preferred []string
	log       *slog.Logger

	mu     sync.Mutex
	active *utterance
}

func NewSpeaker(engine Engine, preferred []string, log *slog.Logger) *Speaker {
	if log == nil {
		log = slog.Default()
	}
	return &Speaker{
		engine:    engine,
		preferred: append(append([]string{}, preferred...), PreferredVendors...),
		log:       log,
	}
}

// Speak starts reading text and returns at once. Any utterance already
// playing is stopped first and reports Stopped. onDone (may be nil) fires
// exactly once with Finished, Failed or Stopped. key tags the utterance so a
// caller can tell what is playing.
func (s *Speaker) Speak(ctx context.Context, key, text string, onDone func(Outcome)) Voice {
	lang := DetectLang(text)
	voices, err := s.engine.Voices(ctx)
	if err != nil {
		s.log.Warn("speech.voices_failed", "err", err)
	}
	voice, ok := SelectVoice(voices, lang, s.preferred)
	if !ok {
		s.log.Warn("speech.default_voice", "lang", lang)
	}

	uctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	u := &utterance{key: key, cancel: cancel, onDone: onDone}

	s.mu.Lock()
	prev := s.active
	s.active = u
	s.mu.Unlock()
	if prev != nil {
		prev.stop()
	}

	go func() {
		defer cancel()
		err := s.engine.Say(uctx, text, lang, voice)
		switch {
		case u.stopped.Load():
			u.finish(Stopped)
		case err != nil:
			s.log.Warn("speech.failed", "key", key, "err", err)
			u.finish(Failed)
		default:
			u.finish(Finished)
		}
		s.release(u)
	}()
	return voice
}

func (u *utterance) stop() {
	u.stopped.Store(true)
	u.cancel()
	u.finish(Stopped)
}

// Stop halts the active utterance, if any.
func (s *Speaker) Stop() {
	s.mu.Lock()
	u := s.active
	s.active = nil
	s.mu.Unlock()
	if u != nil {
		u.stop()
	}
}

// Active returns the key of the playing utterance, "" when idle.
func (s *Speaker) Active() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == nil {
		return ""
	}
	return s.active.key
}

func (s *Speaker) release(u *utterance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.active == u {
		s.active = nil
	}
}
