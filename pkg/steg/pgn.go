package steg

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// Tag is one [Name "Value"] pair of a game header.
type Tag struct {
	Name  string
	Value string
}

// Game is one PGN record. Moves hold the SAN tokens of the main line as
// written; comments, NAGs and variations are not kept.
type Game struct {
	Index  int
	Tags   []Tag
	Moves  []string
	Result string
}

// UnknownResult is the result token written for every encoded game.
const UnknownResult = "*"

// NewGame builds a game with the seven-tag roster filled with unknowns.
func NewGame(index int, moves []string) Game {
	return Game{
		Index: index,
		Tags: []Tag{
			{"Event", "?"},
			{"Site", "?"},
			{"Date", "????.??.??"},
			{"Round", "?"},
			{"White", "?"},
			{"Black", "?"},
			{"Result", UnknownResult},
		},
		Moves:  moves,
		Result: UnknownResult,
	}
}

// Tag returns the value of the named tag, or "" when absent.
func (g Game) Tag(name string) string {
	for _, tag := range g.Tags {
		if tag.Name == name {
			return tag.Value
		}
	}
	return ""
}

// WriterOptions control PGN output. LineWidth wraps movetext at the given
// column; zero keeps each game's movetext on one line.
type WriterOptions struct {
	LineWidth int
}

// FormatGame renders one game: tag pairs, a blank line, then movetext
// ending with the result token.
func FormatGame(g Game, opts WriterOptions) string {
	var b strings.Builder
	for _, tag := range g.Tags {
		fmt.Fprintf(&b, "[%s \"%s\"]\n", tag.Name, escapeTagValue(tag.Value))
	}
	if len(g.Tags) > 0 {
		b.WriteByte('\n')
	}

	result := g.Result
	if result == "" {
		result = UnknownResult
	}
	tokens := make([]string, 0, len(g.Moves)*3/2+1)
	for i, move := range g.Moves {
		if i%2 == 0 {
			tokens = append(tokens, strconv.Itoa(i/2+1)+".")
		}
		tokens = append(tokens, move)
	}
	tokens = append(tokens, result)

	col := 0
	for i, tok := range tokens {
		if i > 0 {
			if opts.LineWidth > 0 && col+1+len(tok) > opts.LineWidth {
				b.WriteByte('\n')
				col = 0
			} else {
				b.WriteByte(' ')
				col++
			}
		}
		b.WriteString(tok)
		col += len(tok)
	}
	return b.String()
}

// FormatDocument joins games with one blank line between them.
func FormatDocument(games []Game, opts WriterOptions) string {
	parts := make([]string, len(games))
	for i, g := range games {
		parts[i] = FormatGame(g, opts)
	}
	return strings.Join(parts, "\n\n")
}

// WriteDocument writes FormatDocument's output to w.
func WriteDocument(w io.Writer, games []Game, opts WriterOptions) error {
	bw := bufio.NewWriter(w)
	for i, g := range games {
		if i > 0 {
			bw.WriteString("\n\n")
		}
		bw.WriteString(FormatGame(g, opts))
	}
	return bw.Flush()
}

func escapeTagValue(v string) string {
	if !strings.ContainsAny(v, `\"`) {
		return v
	}
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `"`, `\"`)
}

// ReadDocument reads every game of a document. Input that is not valid
// UTF-8 is read as ISO-8859-1.
func ReadDocument(r io.Reader) ([]Game, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	text, err := decodeText(data)
	if err != nil {
		return nil, err
	}
	return ParseDocument(text)
}

// ParseDocument parses PGN text into games in document order.
func ParseDocument(text string) ([]Game, error) {
	pr := NewReader(strings.NewReader(text))
	var games []Game
	for {
		g, err := pr.Next()
		if err == io.EOF {
			return games, nil
		}
		if err != nil {
			return nil, err
		}
		games = append(games, g)
	}
}

var (
	sanRe    = regexp.MustCompile(`^(?:[NBRQK][a-h]?[1-8]?x?[a-h][1-8]|[a-h](?:x[a-h])?[1-8](?:=?[NBRQ])?|O-O(?:-O)?|0-0(?:-0)?)[+#]?[!?]{0,2}$`)
	resultRe = regexp.MustCompile(`^(?:1-0|0-1|1/2-1/2|\*)$`)
)

type tokenKind int

const (
	tokEOF tokenKind = iota
	tokTag
	tokMoveNumber
	tokMove
	tokResult
	tokNAG
	tokOpenVariation
	tokCloseVariation
)

type token struct {
	kind  tokenKind
	text  string
	value string
	line  int
	col   int
}

// Reader parses a PGN stream one game at a time.
type Reader struct {
	br       *bufio.Reader
	line     int
	col      int
	prevLine int
	prevCol  int
	index    int
}

func NewReader(r io.Reader) *Reader {
	return &Reader{br: bufio.NewReader(r), line: 1}
}

// Next returns the next game, or io.EOF once the stream holds only
// whitespace and comments. A record cut off before its result token is a
// *SyntaxError.
func (r *Reader) Next() (Game, error) {
	game := Game{Index: r.index}
	started, inMoves := false, false
	depth := 0
	for {
		tok, err := r.token()
		if err != nil {
			return Game{}, err
		}
		switch tok.kind {
		case tokEOF:
			if !started {
				return Game{}, io.EOF
			}
			if depth > 0 {
				return Game{}, r.errorAt(tok.line, tok.col, "unterminated variation")
			}
			return Game{}, r.errorAt(tok.line, tok.col, "game record has no result")
		case tokTag:
			if inMoves {
				return Game{}, r.errorAt(tok.line, tok.col, "tag pair inside movetext")
			}
			game.Tags = append(game.Tags, Tag{Name: tok.text, Value: tok.value})
		case tokOpenVariation:
			if len(game.Moves) == 0 && depth == 0 {
				return Game{}, r.errorAt(tok.line, tok.col, "variation before first move")
			}
			depth++
			inMoves = true
		case tokCloseVariation:
			if depth == 0 {
				return Game{}, r.errorAt(tok.line, tok.col, "unbalanced ')'")
			}
			depth--
		case tokMoveNumber, tokNAG:
			inMoves = true
		case tokMove:
			inMoves = true
			if depth == 0 {
				game.Moves = append(game.Moves, tok.text)
			}
		case tokResult:
			if depth > 0 {
				return Game{}, r.errorAt(tok.line, tok.col, "result inside variation")
			}
			game.Result = tok.text
			r.index++
			return game, nil
		}
		started = true
	}
}

func (r *Reader) errorAt(line, col int, format string, args ...any) error {
	return &SyntaxError{Line: line, Col: col, Msg: fmt.Sprintf(format, args...)}
}

func (r *Reader) read() (rune, error) {
	c, _, err := r.br.ReadRune()
	if err != nil {
		return 0, err
	}
	r.prevLine, r.prevCol = r.line, r.col
	if c == '\n' {
		r.line++
		r.col = 0
	} else {
		r.col++
	}
	return c, nil
}

func (r *Reader) unread() {
	_ = r.br.UnreadRune()
	r.line, r.col = r.prevLine, r.prevCol
}

func (r *Reader) token() (token, error) {
	for {
		c, err := r.read()
		if err == io.EOF {
			return token{kind: tokEOF, line: r.line, col: r.col}, nil
		}
		if err != nil {
			return token{}, err
		}
		line, col := r.line, r.col
		switch {
		case unicode.IsSpace(c) || c == '\uFEFF':
		case c == '%' && col == 1:
			if err := r.skipLine(); err != nil {
				return token{}, err
			}
		case c == ';':
			if err := r.skipLine(); err != nil {
				return token{}, err
			}
		case c == '{':
			if err := r.skipComment(line, col); err != nil {
				return token{}, err
			}
		case c == '[':
			return r.tag(line, col)
		case c == '(':
			return token{kind: tokOpenVariation, line: line, col: col}, nil
		case c == ')':
			return token{kind: tokCloseVariation, line: line, col: col}, nil
		case c == '$':
			digits, err := r.run(unicode.IsDigit)
			if err != nil {
				return token{}, err
			}
			if digits == "" {
				return token{}, r.errorAt(line, col, "NAG without a number")
			}
			return token{kind: tokNAG, text: "$" + digits, line: line, col: col}, nil
		case c == '!' || c == '?':
			glyph, err := r.run(func(c rune) bool { return c == '!' || c == '?' })
			if err != nil {
				return token{}, err
			}
			return token{kind: tokNAG, text: string(c) + glyph, line: line, col: col}, nil
		case c == '*' || isSymbolRune(c):
			rest, err := r.run(isSymbolRune)
			if err != nil {
				return token{}, err
			}
			return r.symbol(string(c)+rest, line, col)
		default:
			return token{}, r.errorAt(line, col, "unexpected character %q", c)
		}
	}
}

func isSymbolRune(c rune) bool {
	if c < 0x80 && (unicode.IsLetter(c) || unicode.IsDigit(c)) {
		return true
	}
	return strings.ContainsRune("_+#=:-/.!?", c)
}

func (r *Reader) symbol(text string, line, col int) (token, error) {
	if resultRe.MatchString(text) {
		return token{kind: tokResult, text: text, line: line, col: col}, nil
	}
	if rest, ok := stripMoveNumber(text); ok {
		if rest == "" {
			return token{kind: tokMoveNumber, text: text, line: line, col: col}, nil
		}
		text = rest
	}
	if !sanRe.MatchString(text) {
		return token{}, r.errorAt(line, col, "invalid move token %q", text)
	}
	return token{kind: tokMove, text: text, line: line, col: col}, nil
}

// stripMoveNumber removes a leading "12." or "12..." and reports whether
// one was present. A bare number counts as a move number too.
func stripMoveNumber(text string) (string, bool) {
	i := 0
	for i < len(text) && text[i] >= '0' && text[i] <= '9' {
		i++
	}
	if i == len(text) && i > 0 {
		return "", true
	}
	j := i
	for j < len(text) && text[j] == '.' {
		j++
	}
	if j == i {
		return text, false
	}
	return text[j:], true
}

func (r *Reader) run(accept func(rune) bool) (string, error) {
	var sb strings.Builder
	for {
		c, err := r.read()
		if err == io.EOF {
			return sb.String(), nil
		}
		if err != nil {
			return "", err
		}
		if !accept(c) {
			r.unread()
			return sb.String(), nil
		}
		sb.WriteRune(c)
	}
}

func (r *Reader) skipLine() error {
	for {
		c, err := r.read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if c == '\n' {
			return nil
		}
	}
}

func (r *Reader) skipComment(line, col int) error {
	for {
		c, err := r.read()
		if err == io.EOF {
			return r.errorAt(line, col, "unterminated comment")
		}
		if err != nil {
			return err
		}
		if c == '}' {
			return nil
		}
	}
}

func (r *Reader) skipSpace() error {
	for {
		c, err := r.read()
		if err != nil {
			return err
		}
		if !unicode.IsSpace(c) {
			r.unread()
			return nil
		}
	}
}

func (r *Reader) tag(line, col int) (token, error) {
	unterminated := func(err error) (token, error) {
		if err == io.EOF {
			return token{}, r.errorAt(line, col, "unterminated tag pair")
		}
		return token{}, err
	}
	if err := r.skipSpace(); err != nil {
		return unterminated(err)
	}
	name, err := r.run(func(c rune) bool { return c == '_' || c < 0x80 && (unicode.IsLetter(c) || unicode.IsDigit(c)) })
	if err != nil {
		return token{}, err
	}
	if name == "" {
		return token{}, r.errorAt(line, col, "tag pair without a name")
	}
	if err := r.skipSpace(); err != nil {
		return unterminated(err)
	}
	c, err := r.read()
	if err != nil {
		return unterminated(err)
	}
	if c != '"' {
		return token{}, r.errorAt(r.line, r.col, "tag %s: expected '\"', got %q", name, c)
	}
	var value strings.Builder
	for {
		c, err := r.read()
		if err != nil {
			return unterminated(err)
		}
		if c == '"' {
			break
		}
		if c == '\n' {
			return token{}, r.errorAt(line, col, "tag %s: value runs past end of line", name)
		}
		if c == '\\' {
			if c, err = r.read(); err != nil {
				return unterminated(err)
			}
		}
		value.WriteRune(c)
	}
	if err := r.skipSpace(); err != nil {
		return unterminated(err)
	}
	if c, err = r.read(); err != nil {
		return unterminated(err)
	}
	if c != ']' {
		return token{}, r.errorAt(r.line, r.col, "tag %s: expected ']', got %q", name, c)
	}
	return token{kind: tokTag, text: name, value: value.String(), line: line, col: col}, nil
}
