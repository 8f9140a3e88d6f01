package config

import (
	"errors"
	"fmt"
	"strings"
)

// Source locates a value in a configuration file.
type Source struct {
	File   string
	Line   int
	Column int
}

func (s Source) String() string {
	if s.File == "" {
		return ""
	}
	if s.Line > 0 {
		return fmt.Sprintf("%s:%d:%d", s.File, s.Line, s.Column)
	}
	return s.File
}

type ValidationError struct {
	Path   string
	Source Source
	Err    error
}

func (e *ValidationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Source.File != "" && e.Source.Line > 0 {
		if e.Path == "" {
			return fmt.Sprintf("%s: %v", e.Source, e.Err)
		}
		return fmt.Sprintf("%s: %s: %v", e.Source, e.Path, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %v", e.Path, e.Err)
	}
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// RuleError collects every problem found in one rule.
type RuleError struct {
	Index    int
	Name     string
	Source   Source
	Problems []*ValidationError
}

func (e *RuleError) Error() string {
	label := fmt.Sprintf("rules[%d]", e.Index)
	if e.Name != "" {
		label = fmt.Sprintf("%s (%s)", label, e.Name)
	}
	msgs := make([]string, 0, len(e.Problems))
	for _, p := range e.Problems {
		msgs = append(msgs, p.Error())
	}
	return fmt.Sprintf("%s is invalid: %s", label, strings.Join(msgs, "; "))
}

func (e *RuleError) Unwrap() []error {
	errs := make([]error, 0, len(e.Problems))
	for _, p := range e.Problems {
		errs = append(errs, p)
	}
	return errs
}

// ConfigError is a fatal configuration failure: the document could not be
// read or parsed, or it listed rules of which none was valid.
type ConfigError struct {
	File     string
	Err      error
	Rejected []*RuleError
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	var verr *ValidationError
	located := errors.As(e.Err, &verr) && verr.Source.Line > 0
	if e.File != "" && !located {
		b.WriteString(e.File)
		b.WriteString(": ")
	}
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		b.WriteString("invalid configuration")
	}
	for _, r := range e.Rejected {
		b.WriteString("\n  ")
		b.WriteString(r.Error())
	}
	return b.String()
}

func (e *ConfigError) Unwrap() []error {
	errs := make([]error, 0, len(e.Rejected)+1)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	for _, r := range e.Rejected {
		errs = append(errs, r)
	}
	return errs
}
