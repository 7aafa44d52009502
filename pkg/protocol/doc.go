// Package protocol implements the shutter tester's line protocol: framing of
// the raw device stream into lines, classification of lines into protocol
// candidates and diagnostic output, schema-checked decoding of the three
// inbound message types, and encoding of outbound mode commands.
//
// The device writes newline-terminated UTF-8. Lines of the form {...} are
// JSON messages carrying a "type" discriminant; anything else is debug text
// and is never treated as an error.
package protocol
