package transcribe

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
)

// VocabularyFileName is the auto-discovered vocabulary file inside the
// output root's state directory.
const VocabularyFileName = "vocabulary.json"

// Vocabulary carries domain terms and corrections for transcripts.
type Vocabulary struct {
	// Terms are joined into the initial prompt so the model favors them.
	Terms []string `json:"vocabulary"`
	// Replacements are case-sensitive find-and-replace pairs applied to
	// the transcript after transcription.
	Replacements map[string]string `json:"replacements"`
}

// LoadVocabulary reads a vocabulary file. A missing file is not an error;
// the nil return means no vocabulary applies.
func LoadVocabulary(path string) (*Vocabulary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read vocabulary %s: %w", path, err)
	}

	var vocab Vocabulary
	if err := json.Unmarshal(data, &vocab); err != nil {
		return nil, fmt.Errorf("parse vocabulary %s: %w", path, err)
	}
	return &vocab, nil
}

// InitialPrompt joins the vocabulary terms into a prompt string, or returns
// empty when there is nothing to seed.
func (v *Vocabulary) InitialPrompt() string {
	if v == nil || len(v.Terms) == 0 {
		return ""
	}
	return strings.Join(v.Terms, ", ")
}

// Apply rewrites the result text and every segment with the configured
// replacements.
func (v *Vocabulary) Apply(result *Result) {
	if v == nil || result == nil || len(v.Replacements) == 0 {
		return
	}
	result.Text = v.replace(result.Text)
	for i := range result.Segments {
		result.Segments[i].Text = v.replace(result.Segments[i].Text)
	}
}

func (v *Vocabulary) replace(text string) string {
	// Sorted so overlapping replacements apply in a stable order.
	keys := make([]string, 0, len(v.Replacements))
	for old := range v.Replacements {
		keys = append(keys, old)
	}
	sort.Strings(keys)
	for _, old := range keys {
		text = strings.ReplaceAll(text, old, v.Replacements[old])
	}
	return text
}
