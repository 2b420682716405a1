// Package strreader implements a zero-copy, cursor-based string reader.
//
// A Reader holds an input string and a byte offset into it. Operations
// either match and consume input, extract tokens as sub-strings of the
// input, or parse primitive values from the input:
//
//	r := strreader.New("HTTP/1.1 404 Not Found")
//	if err := r.MatchString("HTTP/"); err != nil { ... }
//	version := r.ReadWord()     // "1.1"
//	code, err := r.ReadUint16() // 404
//	reason := strings.TrimSpace(r.Rest())
//
// Extracted tokens share memory with the input string. They stay valid for
// as long as the caller keeps them; they do not depend on the Reader.
//
// Every fallible operation moves the cursor if and only if it succeeds.
// Callers that need to undo a sequence of successful operations save the
// cursor with Mark and restore it with Reset.
//
// A Reader is not safe for concurrent use.
package strreader
