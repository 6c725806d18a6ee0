package stepkey

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// MinFractionDigits is the smallest fraction width accepted on the
// wire. Keys with shorter fractions are rejected by Parse so that
// comparing equal-width fractions digit by digit matches numeric order.
const MinFractionDigits = 3

var keyPattern = regexp.MustCompile(`^([0-9]+)(?:\.([0-9]+))?$`)

// Key identifies a step within a flow. The major part names the
// section the step belongs to; the optional fraction orders steps
// inside the section. The fraction keeps its printed width, so "1.100"
// and "1.1000" are numerically equal yet distinct values, and String
// reproduces exactly what Parse consumed.
//
// Key is comparable with ==, which distinguishes representations.
// Numeric identity is Equal. The zero Key is not a valid identifier;
// obtain Keys through Parse, MustParse, Bare, First, or the arithmetic
// helpers.
type Key struct {
	major int64
	frac  string // fraction digits exactly as printed, "" when absent
}

// ParseOption adjusts how Parse interprets its input.
type ParseOption func(*parseConfig)

type parseConfig struct {
	minFraction int
}

// WithMinFraction overrides the minimum fraction width Parse accepts.
// The default is MinFractionDigits.
func WithMinFraction(n int) ParseOption {
	return func(c *parseConfig) { c.minFraction = n }
}

// Parse converts the wire form MAJOR or MAJOR.FRACTION into a Key. The
// major part must be a base-10 integer of at least 1 without leading
// zeros, and the fraction, when present, must be at least
// MinFractionDigits digits wide. Fraction width is preserved, trailing
// zeros included.
func Parse(text string, opts ...ParseOption) (Key, error) {
	cfg := parseConfig{minFraction: MinFractionDigits}
	for _, opt := range opts {
		opt(&cfg)
	}

	m := keyPattern.FindStringSubmatch(text)
	if m == nil {
		return Key{}, &FormatError{Input: text, Reason: "must be MAJOR or MAJOR.FRACTION in decimal digits"}
	}
	if len(m[1]) > 1 && m[1][0] == '0' {
		return Key{}, &FormatError{Input: text, Reason: "major part must not have leading zeros"}
	}
	major, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		return Key{}, &FormatError{Input: text, Reason: "major part does not fit in 64 bits"}
	}
	if major < 1 {
		return Key{}, &FormatError{Input: text, Reason: "major part must be at least 1"}
	}
	if frac := m[2]; frac != "" && len(frac) < cfg.minFraction {
		return Key{}, &FormatError{
			Input:  text,
			Reason: fmt.Sprintf("fraction must be at least %d digits, got %d", cfg.minFraction, len(frac)),
		}
	}
	return Key{major: major, frac: m[2]}, nil
}

// MustParse is Parse for trusted literals. It panics on error and
// exists for tests and package-level constants.
func MustParse(text string) Key {
	k, err := Parse(text)
	if err != nil {
		panic(err)
	}
	return k
}

// Bare returns the fraction-free key for a major, the numeric floor of
// its section. The major must be at least 1; Bare panics otherwise.
func Bare(major int64) Key {
	if major < 1 {
		panic(fmt.Sprintf("stepkey: invalid major %d", major))
	}
	return Key{major: major}
}

// Major returns the section number the key belongs to.
func (k Key) Major() int64 { return k.major }

// Precision reports the number of fraction digits the key carries.
// Bare majors have precision 0.
func (k Key) Precision() int { return len(k.frac) }

// Fraction returns the fraction digits exactly as printed, without the
// leading dot. Bare majors return "".
func (k Key) Fraction() string { return k.frac }

// IsZero reports whether k is the zero value rather than a parsed key.
func (k Key) IsZero() bool { return k.major == 0 }

// String renders the wire form, preserving fraction width.
func (k Key) String() string {
	if k.frac == "" {
		return strconv.FormatInt(k.major, 10)
	}
	return strconv.FormatInt(k.major, 10) + "." + k.frac
}

// Normal returns the numeric identity of the key: the fraction with
// trailing zeros stripped, so 1.100 and 1.1000 share "1.1" and 1.000
// shares "1". Two keys are Equal exactly when their Normal forms match.
// The result is an identity for maps, not a wire form; it may be
// shorter than the wire contract allows.
func (k Key) Normal() string {
	frac := strings.TrimRight(k.frac, "0")
	if frac == "" {
		return strconv.FormatInt(k.major, 10)
	}
	return strconv.FormatInt(k.major, 10) + "." + frac
}

// Compare orders keys by major part, then by fraction. Fractions
// compare as if zero-padded to equal width, so 1.1005 sorts between
// 1.100 and 1.101. The result is -1, 0, or +1. Keys of different
// precision can compare equal: 1 and 1.000 are the same position.
func (k Key) Compare(o Key) int {
	if k.major != o.major {
		if k.major < o.major {
			return -1
		}
		return 1
	}
	a, b := k.frac, o.frac
	if len(a) < len(b) {
		a += strings.Repeat("0", len(b)-len(a))
	} else if len(b) < len(a) {
		b += strings.Repeat("0", len(a)-len(b))
	}
	return strings.Compare(a, b)
}

// Less reports whether k orders before o.
func (k Key) Less(o Key) bool { return k.Compare(o) < 0 }

// Equal reports numeric equality. Note that == on Key is stricter: it
// also distinguishes representations such as 1 and 1.000.
func (k Key) Equal(o Key) bool { return k.Compare(o) == 0 }

// MarshalText implements encoding.TextMarshaler so keys serialize as
// their wire form inside JSON documents.
func (k Key) MarshalText() ([]byte, error) {
	if k.IsZero() {
		return nil, &FormatError{Input: "", Reason: "zero Key has no wire form"}
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Key) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler. yaml.v3 does not consult
// encoding.TextMarshaler, and keys must stay quoted strings on the
// wire rather than turning into floats.
func (k Key) MarshalYAML() (any, error) {
	if k.IsZero() {
		return nil, &FormatError{Input: "", Reason: "zero Key has no wire form"}
	}
	return k.String(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (k *Key) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := Parse(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
