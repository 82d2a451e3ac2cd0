package speech

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/LordMilo/SmartTaskManager/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sayCall struct {
	text     string
	lang     string
	voice    Voice
	release  chan error
	returned chan struct{}
}

type fakeEngine struct {
	voices    []Voice
	voicesErr error
	calls     chan *sayCall
}

func newFakeEngine(voices ...Voice) *fakeEngine {
	return &fakeEngine{voices: voices, calls: make(chan *sayCall, 8)}
}

func (e *fakeEngine) Voices(context.Context) ([]Voice, error) {
	return e.voices, e.voicesErr
}

func (e *fakeEngine) Say(ctx context.Context, text, lang string, voice Voice) error {
	c := &sayCall{text: text, lang: lang, voice: voice, release: make(chan error, 1), returned: make(chan struct{})}
	defer close(c.returned)
	e.calls <- c
	select {
	case err := <-c.release:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *fakeEngine) next(t *testing.T) *sayCall {
	t.Helper()
	select {
	case c := <-e.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("engine was not called")
		return nil
	}
}

type outcomes struct {
	mu  sync.Mutex
	got []Outcome
	ch  chan Outcome
}

func newOutcomes() *outcomes { return &outcomes{ch: make(chan Outcome, 4)} }

func (o *outcomes) record(out Outcome) {
	o.mu.Lock()
	o.got = append(o.got, out)
	o.mu.Unlock()
	o.ch <- out
}

func (o *outcomes) wait(t *testing.T) Outcome {
	t.Helper()
	select {
	case out := <-o.ch:
		return out
	case <-time.After(2 * time.Second):
		t.Fatal("no outcome")
		return 0
	}
}

func (o *outcomes) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.got)
}

func quiet() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestDetectLang(t *testing.T) {
	assert.Equal(t, LangThai, DetectLang("รดน้ำต้นไม้"))
	assert.Equal(t, LangThai, DetectLang("Water ต้นไม้ now"))
	assert.Equal(t, LangEnglish, DetectLang("Water plants"))
	assert.Equal(t, LangEnglish, DetectLang(""))
}

func TestSelectVoice(t *testing.T) {
	voices := []Voice{
		{Name: "Samantha", Lang: "en-US"},
		{Name: "Kanya", Lang: "th_TH"},
		{Name: "Google US English", Lang: "en-US"},
		{Name: "Narisa", Lang: "TH-th"},
	}

	v, ok := SelectVoice(voices, LangEnglish, PreferredVendors)
	require.True(t, ok)
	assert.Equal(t, "Google US English", v.Name)

	v, ok = SelectVoice(voices, LangThai, PreferredVendors)
	require.True(t, ok)
	assert.Equal(t, "Kanya", v.Name)

	_, ok = SelectVoice(voices[:1], LangThai, PreferredVendors)
	assert.False(t, ok)
	_, ok = SelectVoice(nil, LangEnglish, PreferredVendors)
	assert.False(t, ok)
}

func TestReadout(t *testing.T) {
	task := model.Task{Title: "Water plants", Description: "Front lawn", Priority: model.PriorityUrgent, DueDate: "2024-06-10", AssigneeID: "m2"}
	assert.Equal(t, "Water plants. Front lawn. Priority URGENT. Assigned to Bob Soil. Due date June 10, 2024.", Readout(task, "Bob Soil"))

	task = model.Task{Title: "Mow", Priority: model.PriorityNormal, DueDate: "someday"}
	assert.Equal(t, "Mow. Priority NORMAL. Unassigned. Due date someday.", Readout(task, ""))
}

func TestSpeak_Finished(t *testing.T) {
	e := newFakeEngine(Voice{ID: "gmw/en-US", Name: "English (America)", Lang: "en-us"})
	s := NewSpeaker(e, nil, quiet())
	out := newOutcomes()

	voice := s.Speak(context.Background(), "t1", "Water plants", out.record)
	assert.Equal(t, "gmw/en-US", voice.ID)
	assert.Equal(t, "t1", s.Active())

	c := e.next(t)
	assert.Equal(t, LangEnglish, c.lang)
	c.release <- nil
	assert.Equal(t, Finished, out.wait(t))
	assert.Eventually(t, func() bool { return s.Active() == "" }, time.Second, 10*time.Millisecond)
}

func TestSpeak_Failed(t *testing.T) {
	e := newFakeEngine()
	e.voicesErr = errors.New("no binary")
	s := NewSpeaker(e, nil, quiet())
	out := newOutcomes()

	s.Speak(context.Background(), "t1", "สวัสดี", out.record)
	c := e.next(t)
	assert.Equal(t, LangThai, c.lang)
	assert.Equal(t, Voice{}, c.voice)
	c.release <- errors.New("audio device busy")
	assert.Equal(t, Failed, out.wait(t))
}

func TestSpeak_NewUtteranceStopsPrevious(t *testing.T) {
	e := newFakeEngine()
	s := NewSpeaker(e, nil, quiet())
	first, second := newOutcomes(), newOutcomes()

	s.Speak(context.Background(), "t1", "first", first.record)
	c1 := e.next(t)
	s.Speak(context.Background(), "t2", "second", second.record)
	c2 := e.next(t)

	assert.Equal(t, Stopped, first.wait(t))
	assert.Equal(t, "t2", s.Active())
	<-c1.returned

	c2.release <- nil
	assert.Equal(t, Finished, second.wait(t))
	<-c2.returned
	assert.Equal(t, 1, first.count())
	assert.Equal(t, 1, second.count())
}

func TestStop_FiresOnce(t *testing.T) {
	e := newFakeEngine()
	s := NewSpeaker(e, nil, quiet())
	out := newOutcomes()

	// a cancelled request context does not cut playback short
	ctx, cancel := context.WithCancel(context.Background())
	s.Speak(ctx, "t1", "Water plants", out.record)
	cancel()
	c := e.next(t)

	s.Stop()
	assert.Equal(t, Stopped, out.wait(t))
	assert.Empty(t, s.Active())
	<-c.returned
	assert.Equal(t, 1, out.count())

	// stopping while idle is a no-op
	s.Stop()
}

func TestParseVoices(t *testing.T) {
	out := []byte(`Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  en-us           --/M      English_(America)  gmw/en-US            (en 10)
 5  th              --/M      Thai               tai/th
`)
	assert.Equal(t, []Voice{
		{ID: "gmw/en-US", Name: "English (America)", Lang: "en-us"},
		{ID: "tai/th", Name: "Thai", Lang: "th"},
	}, parseVoices(out))
}
