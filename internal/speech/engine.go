package speech

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// Engine plays text. Say blocks until playback ends or ctx is cancelled.
// A zero voice means the engine default for lang.
type Engine interface {
	Voices(ctx context.Context) ([]Voice, error)
	Say(ctx context.Context, text, lang string, voice Voice) error
}

// Command drives an espeak-ng compatible binary.
type Command struct {
	Path string
}

func (c Command) Voices(ctx context.Context) ([]Voice, error) {
	out, err := exec.CommandContext(ctx, c.Path, "--voices").Output()
	if err != nil {
		return nil, fmt.Errorf("%s --voices: %w", c.Path, err)
	}
	return parseVoices(out), nil
}

func (c Command) Say(ctx context.Context, text, lang string, voice Voice) error {
	name := voice.ID
	if name == "" {
		name = normalizeLang(lang)
	}
	cmd := exec.CommandContext(ctx, c.Path, "-v", name, "--", text)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%s: %w: %s", c.Path, err, strings.TrimSpace(stderr.String()))
	}
	return nil
}

// parseVoices reads the `--voices` table:
//
//	Pty Language       Age/Gender VoiceName          File                 Other Languages
//	 5  en-us           --/M      English_(America)  gmw/en-US            (en 10)
func parseVoices(out []byte) []Voice {
	var voices []Voice
	sc := bufio.NewScanner(bytes.NewReader(out))
	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		f := strings.Fields(sc.Text())
		if len(f) < 5 {
			continue
		}
		voices = append(voices, Voice{ID: f[4], Name: strings.ReplaceAll(f[3], "_", " "), Lang: f[1]})
	}
	return voices
}
