package luma

// ANSI escape handling for Terminal. The parser is a small state machine
// over the incoming character stream, so sequences split across Print
// calls are handled transparently. Parsing is fail-soft: malformed or
// unrecognized sequences are consumed or degrade to plain text, they never
// produce an error.

const (
	stateText = iota
	stateEscape
	stateCSI
)

const (
	dirPutch = iota
	dirSGR
)

// directive is one unit of terminal work: either a printable character or
// a select-graphic-rendition command with its parameters.
type directive struct {
	kind int
	ch   rune
	args []int
}

type ansiParser struct {
	state  int
	params []byte
}

// feed advances the parser by one rune, appending any completed directives
// to out.
func (p *ansiParser) feed(r rune, out []directive) []directive {
	switch p.state {
	case stateEscape:
		if r == '[' {
			p.state = stateCSI
			p.params = p.params[:0]
			return out
		}
		// Abandoned escape: drop the ESC, keep the offending byte.
		p.state = stateText
		return append(out, directive{kind: dirPutch, ch: r})

	case stateCSI:
		switch {
		case r >= '0' && r <= '9' || r == ';':
			p.params = append(p.params, byte(r))
			return out
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z':
			p.state = stateText
			if r == 'm' {
				return append(out, directive{kind: dirSGR, args: parseSGRParams(p.params)})
			}
			// Recognized shape, unsupported command: swallow it.
			return out
		default:
			p.state = stateText
			return append(out, directive{kind: dirPutch, ch: r})
		}

	default:
		if r == 0x1B {
			p.state = stateEscape
			return out
		}
		return append(out, directive{kind: dirPutch, ch: r})
	}
}

// parseSGRParams splits a raw parameter string like "45;37" into integers.
// Empty parameters default to 0, per ECMA-48.
func parseSGRParams(raw []byte) []int {
	args := []int{0}
	n := 0
	for _, b := range raw {
		if b == ';' {
			args = append(args, 0)
			n++
			continue
		}
		args[n] = args[n]*10 + int(b-'0')
	}
	return args
}
