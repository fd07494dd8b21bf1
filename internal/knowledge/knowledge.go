package knowledge

import (
	_ "embed"
	"fmt"
	"net/http"
	"os"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v3"

	apperrors "github.com/safeguardian/autopilot/pkg/app/errors"
)

//go:embed knowledge.yaml
var defaultBase []byte

// Entry represents one playbook rule mapping keyword patterns to a canned
// response. The single entry with an empty keyword set is the fallback.
type Entry struct {
	ID          string   `yaml:"id"`
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Tags        []string `yaml:"tags,omitempty"`
	Keywords    []string `yaml:"keywords"`
	Response    string   `yaml:"response"`
}

// Base is a validated, read-only collection of playbook entries, loaded once
// at startup.
type Base struct {
	entries    []Entry
	byID       map[string]int
	fallbackID string
}

type baseFile struct {
	Entries []Entry `yaml:"entries"`
}

// Default loads the embedded SafeGuardian playbook.
func Default() (*Base, error) {
	return parse(defaultBase)
}

// Load reads a playbook from a YAML file.
func Load(path string) (*Base, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.New(apperrors.ErrCodeKnowledgeInvalid, http.StatusInternalServerError,
			fmt.Sprintf("failed to read knowledge base %s", path), err)
	}
	return parse(data)
}

func parse(data []byte) (*Base, error) {
	var file baseFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeKnowledgeInvalid, http.StatusInternalServerError,
			"failed to parse knowledge base", err)
	}

	base := &Base{
		entries: file.Entries,
		byID:    make(map[string]int, len(file.Entries)),
	}
	if err := base.validate(); err != nil {
		return nil, apperrors.New(apperrors.ErrCodeKnowledgeInvalid, http.StatusInternalServerError,
			"invalid knowledge base", err)
	}
	return base, nil
}

// validate collects every problem instead of stopping at the first one.
func (b *Base) validate() error {
	var result *multierror.Error

	if len(b.entries) == 0 {
		result = multierror.Append(result, fmt.Errorf("knowledge base is empty"))
		return result.ErrorOrNil()
	}

	fallbacks := 0
	for i, entry := range b.entries {
		if entry.ID == "" {
			result = multierror.Append(result, fmt.Errorf("entry %d has no id", i))
			continue
		}
		if _, dup := b.byID[entry.ID]; dup {
			result = multierror.Append(result, fmt.Errorf("duplicate entry id %q", entry.ID))
			continue
		}
		b.byID[entry.ID] = i

		if entry.Response == "" {
			result = multierror.Append(result, fmt.Errorf("entry %q has no response", entry.ID))
		}
		if len(entry.Keywords) == 0 {
			fallbacks++
			b.fallbackID = entry.ID
		}
	}

	if fallbacks != 1 {
		result = multierror.Append(result,
			fmt.Errorf("knowledge base must contain exactly one fallback entry with no keywords, found %d", fallbacks))
	}
	return result.ErrorOrNil()
}

// Entries returns the entries in declaration order.
func (b *Base) Entries() []Entry {
	return b.entries
}

// Entry returns the entry with the given id.
func (b *Base) Entry(id string) (Entry, bool) {
	i, ok := b.byID[id]
	if !ok {
		return Entry{}, false
	}
	return b.entries[i], true
}

// Fallback returns the designated fallback entry.
func (b *Base) Fallback() Entry {
	entry, _ := b.Entry(b.fallbackID)
	return entry
}
