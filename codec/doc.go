// Package codec turns raw response bytes into typed values.
//
// A Shape names the target representation: a string, an unparsed byte
// stream, a jsonnode tree, or an arbitrary Go type read through an
// ObjectMapper. Decode never discards the raw bytes; a failure is reported as
// a *DecodeError that carries them.
package codec
