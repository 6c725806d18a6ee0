package diag

import "regexp"

// Code is a stable machine-readable diagnostic identifier, APF followed
// by four digits. The first two digits group related checks: 01 schema,
// 02 identity and ordering, 03 references, 04 registries, 05 branches,
// 06 dataflow.
type Code string

const (
	// Structural schema failures, reported by the first validation
	// phase. A document that trips one of these never reaches the
	// semantic checks.

	// SchemaDocument means the document shape does not match the flow
	// schema at all, including unparseable serializations.
	SchemaDocument Code = "APF0101"
	// SchemaField means a field has the wrong type or an unknown name.
	SchemaField Code = "APF0102"
	// SchemaKeyFormat means a step key does not match the wire pattern.
	SchemaKeyFormat Code = "APF0103"

	// Step identity and ordering.

	// DupStepID means two steps share a numeric key.
	DupStepID Code = "APF0201"
	// SectionMajor means a step key's major disagrees with its section.
	SectionMajor Code = "APF0202"
	// SectionOrder means section majors are not strictly ascending.
	SectionOrder Code = "APF0203"
	// StepOrder means step keys are not strictly ascending within a
	// section.
	StepOrder Code = "APF0204"

	// Step references.

	// DanglingRef means a reference names a step that does not exist.
	DanglingRef Code = "APF0301"
	// SelfRef means a step references itself.
	SelfRef Code = "APF0302"

	// Registry membership.

	// UnknownActor means a step actor is not in the actor registry.
	UnknownActor Code = "APF0401"
	// UnknownAction means a step action is not in the action registry.
	UnknownAction Code = "APF0402"

	// Branching.

	// NonexhaustiveBranch means a branch's guards cover neither all of
	// its declared cases nor a default.
	NonexhaustiveBranch Code = "APF0501"
	// DuplicateGuard means two guards in a branch share a label.
	DuplicateGuard Code = "APF0502"
	// UnreachableStep means no control path from the first step reaches
	// a step.
	UnreachableStep Code = "APF0503"

	// Dataflow.

	// UnusedOutput means a step output is never consumed later.
	UnusedOutput Code = "APF0601"
	// UndefinedInput means a step input is never produced earlier.
	UndefinedInput Code = "APF0602"
)

var codeNames = map[Code]string{
	SchemaDocument:      "SCHEMA_DOCUMENT",
	SchemaField:         "SCHEMA_FIELD",
	SchemaKeyFormat:     "SCHEMA_KEY_FORMAT",
	DupStepID:           "DUP_STEP_ID",
	SectionMajor:        "SECTION_MAJOR",
	SectionOrder:        "SECTION_ORDER",
	StepOrder:           "STEP_ORDER",
	DanglingRef:         "DANGLING_REF",
	SelfRef:             "SELF_REF",
	UnknownActor:        "UNKNOWN_ACTOR",
	UnknownAction:       "UNKNOWN_ACTION",
	NonexhaustiveBranch: "NONEXHAUSTIVE_BRANCH",
	DuplicateGuard:      "DUPLICATE_GUARD",
	UnreachableStep:     "UNREACHABLE_STEP",
	UnusedOutput:        "UNUSED_OUTPUT",
	UndefinedInput:      "UNDEFINED_INPUT",
}

var codePattern = regexp.MustCompile(`^APF[0-9]{4}$`)

// Name returns the mnemonic for a code, such as DANGLING_REF for
// APF0301, or the code itself when none is registered.
func (c Code) Name() string {
	if n, ok := codeNames[c]; ok {
		return n
	}
	return string(c)
}

// Valid reports whether c matches the APF code pattern.
func (c Code) Valid() bool {
	return codePattern.MatchString(string(c))
}
