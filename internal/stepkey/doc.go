// Package stepkey implements the fractional ordering keys that
// identify steps inside a flow document.
//
// A key pairs an integer major part, which names a section, with an
// optional decimal fraction that orders steps inside the section. The
// printed width of the fraction is significant: 1.100 and 1.1000 are
// numerically equal but remain distinct representations, and parsing
// followed by formatting always reproduces the original text.
//
// Key arithmetic is exact. Midpoint insertion, tail appends, and
// precision changes work on the fraction as an arbitrary-precision
// decimal coefficient, so keys never drift the way binary floating
// point would. Precision grows by at most one digit per midpoint, which
// keeps keys short until a section genuinely runs out of room and is
// renumbered.
package stepkey
