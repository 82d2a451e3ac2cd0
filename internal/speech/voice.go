// Package speech reads task text aloud through a pluggable engine. Only one
// utterance plays at a time.
package speech

import (
	"fmt"
	"strings"
	"time"

	"github.com/LordMilo/SmartTaskManager/internal/model"
)

const (
	LangThai    = "th-TH"
	LangEnglish = "en-US"
)

// PreferredVendors are name fragments of the higher quality voices.
var PreferredVendors = []string{"Google", "Microsoft", "Enhanced", "Siri"}

// Voice is one installed voice. ID is the engine's handle for it.
type Voice struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Lang string `json:"lang"`
}

// DetectLang returns th-TH when text contains any Thai script, else en-US.
func DetectLang(text string) string {
	for _, r := range text {
		if r >= 0x0E00 && r <= 0x0E7F {
			return LangThai
		}
	}
	return LangEnglish
}

func normalizeLang(lang string) string {
	return strings.ReplaceAll(strings.ToLower(lang), "_", "-")
}

// SelectVoice picks a voice for lang. Candidates are voices whose normalized
// language starts with lang's two-letter prefix; among them the first whose
// name contains a preferred fragment wins, else the first candidate. ok is
// false when nothing matches and the engine default should be used.
func SelectVoice(voices []Voice, lang string, preferred []string) (Voice, bool) {
	prefix := normalizeLang(lang)
	if len(prefix) > 2 {
		prefix = prefix[:2]
	}

	var candidates []Voice
	for _, v := range voices {
		if strings.HasPrefix(normalizeLang(v.Lang), prefix) {
			candidates = append(candidates, v)
		}
	}
	if len(candidates) == 0 {
		return Voice{}, false
	}
	for _, v := range candidates {
		for _, p := range preferred {
			if p != "" && strings.Contains(v.Name, p) {
				return v, true
			}
		}
	}
	return candidates[0], true
}

// Readout is the sentence read for a task card. assignee is the member's
// display name, empty when nobody holds the task.
func Readout(t model.Task, assignee string) string {
	var b strings.Builder
	b.WriteString(t.Title + ". ")
	if d := strings.TrimSpace(t.Description); d != "" {
		b.WriteString(strings.TrimRight(d, ".") + ". ")
	}
	fmt.Fprintf(&b, "Priority %s. ", t.Priority)
	if assignee != "" {
		fmt.Fprintf(&b, "Assigned to %s. ", assignee)
	} else {
		b.WriteString("Unassigned. ")
	}
	due := t.DueDate
	if d, err := time.Parse(time.DateOnly, t.DueDate); err == nil {
		due = d.Format("January 2, 2006")
	}
	fmt.Fprintf(&b, "Due date %s.", due)
	return b.String()
}
