package chess

// Standard plays orthodox chess from the standard start position and names
// moves in SAN. The zero value is ready to use.
type Standard struct{}

func (Standard) NewPosition() *Position {
	return NewPosition()
}

func (Standard) LegalMoves(p *Position) []Move {
	return p.LegalMoves()
}

func (Standard) Apply(p *Position, m Move) {
	p.Apply(m)
}

func (Standard) IsTerminal(p *Position) bool {
	return p.IsTerminal()
}

func (Standard) Notate(p *Position, m Move) string {
	return p.SAN(m)
}

func (Standard) Resolve(p *Position, token string) (Move, error) {
	return p.ParseSAN(token)
}
