package furigana

// span is a half-open byte range into the source string.
type span struct {
	start, end int
}

func (s span) in(src string) string {
	return src[s.start:s.end]
}

func (s span) empty() bool {
	return s.start == s.end
}

type tokenKind uint8

const (
	tokenText tokenKind = iota + 1
	tokenBracket
)

// rawToken is either a plain text run or a bracket group. For brackets, text
// holds the kanji span and offset points at the opening '['.
type rawToken struct {
	kind     tokenKind
	offset   int
	text     span
	readings []span
}

type scanState uint8

const (
	stateNormal scanState = iota
	stateInKanji
	stateInReading
)

const (
	openBracket  = '['
	closeBracket = ']'
	separator    = '|'
)

// scanner is a pull based tokenizer over encoded furigana. The delimiters are
// ASCII, which never occur inside a multi-byte UTF-8 sequence, so scanning
// bytes is equivalent to scanning characters.
type scanner struct {
	src string
	pos int
	err error
}

func newScanner(src string) *scanner {
	return &scanner{src: src}
}

// next returns the next token. ok is false once the input is exhausted or an
// error was returned; errors are sticky.
func (s *scanner) next() (tok rawToken, ok bool, err error) {
	if s.err != nil || s.pos >= len(s.src) {
		return rawToken{}, false, s.err
	}

	start := s.pos
	state := stateNormal
	acc := start

	for i := start; i < len(s.src); i++ {
		c := s.src[i]
		switch state {
		case stateNormal:
			switch c {
			case openBracket:
				if i > start {
					s.pos = i
					return rawToken{kind: tokenText, offset: start, text: span{start, i}}, true, nil
				}
				tok = rawToken{kind: tokenBracket, offset: i}
				state = stateInKanji
				acc = i + 1
			case closeBracket:
				return s.fail(UnexpectedClose, i)
			}

		case stateInKanji:
			switch c {
			case separator:
				if i == acc {
					return s.fail(EmptyKanjiSpan, tok.offset)
				}
				tok.text = span{acc, i}
				state = stateInReading
				acc = i + 1
			case closeBracket:
				if i == acc {
					return s.fail(EmptyKanjiSpan, tok.offset)
				}
				// "[漢字]" closes with no reading at all.
				return s.fail(EmptyReading, tok.offset)
			}

		case stateInReading:
			switch c {
			case separator, closeBracket:
				if i == acc {
					return s.fail(EmptyReading, tok.offset)
				}
				tok.readings = append(tok.readings, span{acc, i})
				acc = i + 1
				if c == closeBracket {
					s.pos = i + 1
					return tok, true, nil
				}
			}
		}
	}

	if state != stateNormal {
		return s.fail(UnterminatedBracket, tok.offset)
	}
	s.pos = len(s.src)
	return rawToken{kind: tokenText, offset: start, text: span{start, len(s.src)}}, true, nil
}

func (s *scanner) fail(kind ErrorKind, offset int) (rawToken, bool, error) {
	s.err = &ParseError{Kind: kind, Offset: offset}
	s.pos = len(s.src)
	return rawToken{}, false, s.err
}

// scanAll validates the whole input, returning the first error.
func scanAll(src string, visit func(rawToken) error) error {
	sc := newScanner(src)
	for {
		tok, ok, err := sc.next()
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		if visit != nil {
			if err := visit(tok); err != nil {
				return err
			}
		}
	}
}
