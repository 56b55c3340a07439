// Package reader tokenizes source text into syntax objects.
//
// The reader groups balanced parentheses, braces, and brackets into
// delimiter objects, so its output is a token tree rather than a flat token
// list. A "#" immediately followed by a backtick opens a syntax template,
// which is closed by the next unmatched backtick. Template literals are read
// with each "${...}" interpolation as a braces group.
//
// Freshly read syntax carries no scopes. Read results are cached by a hash of
// the source; sharing is safe because syntax objects are immutable.
package reader
