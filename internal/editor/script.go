package editor

import (
	"bytes"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/roach88/apflow/internal/flow"
	"github.com/roach88/apflow/internal/stepkey"
)

// OpKind names an edit operation variant.
type OpKind string

const (
	OpInsertAfter  OpKind = "insert_after"
	OpInsertBefore OpKind = "insert_before"
	OpDelete       OpKind = "delete"
	OpMove         OpKind = "move"
	OpUpdate       OpKind = "update"
	OpRenumber     OpKind = "renumber"
)

// Operation is one edit in a script. Which fields matter depends on
// the kind; the constructors build well-formed operations.
type Operation struct {
	Kind OpKind

	// Target is the step the operation acts on. Renumber leaves it
	// zero.
	Target stepkey.Key

	// Anchor is the step a move lands after.
	Anchor stepkey.Key

	// Step is the payload of an insert.
	Step flow.Step

	// Field and Value carry an update.
	Field string
	Value any

	// Targets restricts a renumber to the named steps; empty means
	// every step. Width is the canonical fraction width.
	Targets []stepkey.Key
	Width   int
}

// String renders the operation for logs and failure reports.
func (op Operation) String() string {
	switch op.Kind {
	case OpInsertAfter, OpInsertBefore:
		return fmt.Sprintf("%s %s", op.Kind, op.Target)
	case OpDelete:
		return fmt.Sprintf("delete %s", op.Target)
	case OpMove:
		return fmt.Sprintf("move %s after %s", op.Target, op.Anchor)
	case OpUpdate:
		return fmt.Sprintf("update %s %s", op.Target, op.Field)
	case OpRenumber:
		if len(op.Targets) > 0 {
			return fmt.Sprintf("renumber %d steps at width %d", len(op.Targets), op.Width)
		}
		return fmt.Sprintf("renumber all at width %d", op.Width)
	default:
		return string(op.Kind)
	}
}

// InsertAfter builds an operation adding st after the step at target.
func InsertAfter(target stepkey.Key, st flow.Step) Operation {
	return Operation{Kind: OpInsertAfter, Target: target, Step: st}
}

// InsertBefore builds an operation adding st before the step at
// target.
func InsertBefore(target stepkey.Key, st flow.Step) Operation {
	return Operation{Kind: OpInsertBefore, Target: target, Step: st}
}

// Delete builds an operation removing the step at target.
func Delete(target stepkey.Key) Operation {
	return Operation{Kind: OpDelete, Target: target}
}

// Move builds an operation relocating the step at target to sit after
// anchor.
func Move(target, anchor stepkey.Key) Operation {
	return Operation{Kind: OpMove, Target: target, Anchor: anchor}
}

// Update builds an operation setting one field on the step at target.
func Update(target stepkey.Key, field string, value any) Operation {
	return Operation{Kind: OpUpdate, Target: target, Field: field, Value: value}
}

// RenumberAll builds an operation canonicalizing every step key at
// the given fraction width.
func RenumberAll(width int) Operation {
	return Operation{Kind: OpRenumber, Width: width}
}

// RenumberSteps builds an operation canonicalizing only the named
// steps at the given fraction width.
func RenumberSteps(width int, targets ...stepkey.Key) Operation {
	return Operation{Kind: OpRenumber, Width: width, Targets: targets}
}

// Script is an ordered batch of operations applied as one transaction.
type Script struct {
	// Title describes the change for history entries, optional.
	Title string

	// Ops run in order; the first failure rolls the whole batch back.
	Ops []Operation
}

// scriptFile is the YAML layout of a script document.
type scriptFile struct {
	Title string   `yaml:"title,omitempty"`
	Ops   []opForm `yaml:"ops"`
}

type opForm struct {
	Op      string     `yaml:"op"`
	Target  string     `yaml:"target,omitempty"`
	Anchor  string     `yaml:"anchor,omitempty"`
	Step    *flow.Step `yaml:"step,omitempty"`
	Field   string     `yaml:"field,omitempty"`
	Value   any        `yaml:"value,omitempty"`
	Targets []string   `yaml:"targets,omitempty"`
	Width   int        `yaml:"width,omitempty"`
}

// ParseScript reads a script from YAML bytes. Unknown fields and
// malformed keys are rejected up front, so a script that parses can
// only fail by its semantics.
func ParseScript(data []byte) (*Script, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var file scriptFile
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("parsing script: %w", err)
	}
	if len(file.Ops) == 0 {
		return nil, fmt.Errorf("parsing script: no ops")
	}

	script := &Script{Title: file.Title}
	for i, form := range file.Ops {
		op, err := form.operation()
		if err != nil {
			return nil, fmt.Errorf("parsing script op %d: %w", i+1, err)
		}
		script.Ops = append(script.Ops, op)
	}
	return script, nil
}

// LoadScript reads a script from a YAML file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading script: %w", err)
	}
	script, err := ParseScript(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return script, nil
}

func (form opForm) operation() (Operation, error) {
	key := func(name, text string) (stepkey.Key, error) {
		if text == "" {
			return stepkey.Key{}, fmt.Errorf("op %q needs %s", form.Op, name)
		}
		k, err := stepkey.Parse(text)
		if err != nil {
			return stepkey.Key{}, err
		}
		return k, nil
	}

	switch OpKind(form.Op) {
	case OpInsertAfter, OpInsertBefore:
		target, err := key("target", form.Target)
		if err != nil {
			return Operation{}, err
		}
		if form.Step == nil {
			return Operation{}, fmt.Errorf("op %q needs step", form.Op)
		}
		return Operation{Kind: OpKind(form.Op), Target: target, Step: *form.Step}, nil

	case OpDelete:
		target, err := key("target", form.Target)
		if err != nil {
			return Operation{}, err
		}
		return Delete(target), nil

	case OpMove:
		target, err := key("target", form.Target)
		if err != nil {
			return Operation{}, err
		}
		anchor, err := key("anchor", form.Anchor)
		if err != nil {
			return Operation{}, err
		}
		return Move(target, anchor), nil

	case OpUpdate:
		target, err := key("target", form.Target)
		if err != nil {
			return Operation{}, err
		}
		if form.Field == "" {
			return Operation{}, fmt.Errorf("op %q needs field", form.Op)
		}
		return Update(target, form.Field, form.Value), nil

	case OpRenumber:
		width := form.Width
		if width == 0 {
			width = stepkey.MinFractionDigits
		}
		op := Operation{Kind: OpRenumber, Width: width}
		for _, text := range form.Targets {
			k, err := stepkey.Parse(text)
			if err != nil {
				return Operation{}, err
			}
			op.Targets = append(op.Targets, k)
		}
		return op, nil

	default:
		return Operation{}, fmt.Errorf("unknown op %q", form.Op)
	}
}
