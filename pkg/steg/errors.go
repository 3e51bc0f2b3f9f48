// Package steg stores arbitrary bytes as chess games in PGN and reads
// them back. Each chunk of the input becomes one game whose move choices
// carry the chunk's bits.
package steg

import (
	"errors"
	"fmt"
)

// Document errors
var (
	ErrMalformedDocument = errors.New("steg: malformed PGN document")
	ErrUnknownMove       = errors.New("steg: move is not in the legal move list")
)

// Codec errors
var (
	ErrLegalMoveExhaustion = errors.New("steg: game ended before all chunk bits were encoded")
)

// Config errors
var (
	ErrInvalidConfig = errors.New("steg: invalid configuration")
)

// SyntaxError reports where a PGN document stopped making sense.
type SyntaxError struct {
	Line int
	Col  int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("pgn: line %d col %d: %s", e.Line, e.Col, e.Msg)
}

func (e *SyntaxError) Unwrap() error {
	return ErrMalformedDocument
}

// GameError is a decode failure inside one game of a document.
type GameError struct {
	Index int
	Ply   int
	Move  string
	Err   error
}

func (e *GameError) Error() string {
	return fmt.Sprintf("game %d ply %d (%s): %v", e.Index+1, e.Ply, e.Move, e.Err)
}

func (e *GameError) Unwrap() error {
	return e.Err
}

// ChunkError is an encode failure of one input chunk.
type ChunkError struct {
	Index int
	Err   error
}

func (e *ChunkError) Error() string {
	return fmt.Sprintf("chunk %d: %v", e.Index, e.Err)
}

func (e *ChunkError) Unwrap() error {
	return e.Err
}
