// Package browser runs explicit, ordered browser action scripts against a
// driver capability, checking each step before the next one runs.
package browser

import (
	_ "embed"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Kind names an action type.
type Kind string

const (
	KindNavigate     Kind = "navigate"
	KindSearch       Kind = "search"
	KindClick        Kind = "click"
	KindFirstComment Kind = "first_comment"
	KindExtractText  Kind = "extract_text"
	KindWait         Kind = "wait"
)

// ErrInvalidAction marks an action that is missing a required field.
var ErrInvalidAction = errors.New("invalid action")

// Action is one step of a script.
type Action struct {
	Kind     Kind   `yaml:"kind"`
	URL      string `yaml:"url,omitempty"`
	Selector string `yaml:"selector,omitempty"`
	Query    string `yaml:"query,omitempty"`
	Expect   string `yaml:"expect,omitempty"` // Substring the step's text must contain
}

// ProducesText reports whether the action returns page text.
func (a Action) ProducesText() bool {
	return a.Kind == KindFirstComment || a.Kind == KindExtractText
}

// Validate checks that the action carries the fields its kind needs.
func (a Action) Validate() error {
	switch a.Kind {
	case KindNavigate:
		u, err := url.Parse(a.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("%w: navigate needs an http(s) url, got %q", ErrInvalidAction, a.URL)
		}
	case KindSearch:
		if strings.TrimSpace(a.Selector) == "" || strings.TrimSpace(a.Query) == "" {
			return fmt.Errorf("%w: search needs selector and query", ErrInvalidAction)
		}
	case KindClick, KindExtractText:
		if strings.TrimSpace(a.Selector) == "" {
			return fmt.Errorf("%w: %s needs a selector", ErrInvalidAction, a.Kind)
		}
	case KindFirstComment, KindWait:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidAction, a.Kind)
	}
	if a.Expect != "" && !a.ProducesText() {
		return fmt.Errorf("%w: expect is only valid on text steps", ErrInvalidAction)
	}
	return nil
}

// Script is a named, ordered list of actions.
type Script struct {
	Name    string   `yaml:"name"`
	Actions []Action `yaml:"actions"`
}

// Validate checks every action, reporting the first bad one by index.
func (s Script) Validate() error {
	if len(s.Actions) == 0 {
		return fmt.Errorf("%w: script %q has no actions", ErrInvalidAction, s.Name)
	}
	for i, a := range s.Actions {
		if err := a.Validate(); err != nil {
			return &StepError{Index: i, Kind: a.Kind, Err: err}
		}
	}
	return nil
}

// ParseScript decodes a YAML script.
func ParseScript(data []byte) (Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return Script{}, fmt.Errorf("parse script: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Script{}, err
	}
	return s, nil
}

// LoadScript reads and decodes a YAML script file.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("read script: %w", err)
	}
	return ParseScript(data)
}

//go:embed scripts/reddit_first_comment.yaml
var defaultScriptYAML []byte

// DefaultScript searches Reddit for "browser-use", opens the first post and
// returns its first comment.
func DefaultScript() Script {
	s, err := ParseScript(defaultScriptYAML)
	if err != nil {
		panic(fmt.Sprintf("browser: embedded default script: %v", err))
	}
	return s
}
