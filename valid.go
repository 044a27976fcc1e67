package plotexpr

import (
	"errors"
	"io"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Normalize removes an optional leading "y =" and surrounding whitespace from
// an expression as a user would type it.
func Normalize(text string) string {
	s := strings.TrimSpace(text)
	rest, ok := strings.CutPrefix(s, "y")
	if !ok {
		return s
	}
	rest = strings.TrimLeftFunc(rest, unicode.IsSpace)
	body, ok := strings.CutPrefix(rest, "=")
	if !ok || strings.HasPrefix(body, "=") {
		// y alone, or y == ..., is not the prefix.
		return s
	}
	return strings.TrimSpace(body)
}

// Compile parses an expression as a user would type it, e.g. "y = sin(x)".
// Error positions are rune columns of text, counting the "y =" prefix.
func Compile(text string, opts ...ParseOption) (*Expr, error) {
	return CompileFrom(strings.NewReader(text), opts...)
}

// CompileFrom is like Compile, but reads the expression from src. With
// StopOn, successive calls read successive expressions from one source.
func CompileFrom(src io.RuneScanner, opts ...ParseOption) (*Expr, error) {
	rest, n, err := stripY(src)
	if err != nil {
		return nil, err
	}
	o := make([]ParseOption, 0, len(opts)+1)
	o = append(o, opts...)
	o = append(o, offsetopt(n))
	return Parse(rest, o...)
}

// stripY consumes an optional "y =" from the start of src. It returns a
// scanner over the remaining input and the number of runes consumed. Runes
// read while looking for the prefix that are not part of one are replayed
// ahead of src.
func stripY(src io.RuneScanner) (io.RuneScanner, int, error) {
	var read []rune
	next := func(skip func(rune) bool) (rune, bool, error) {
		for {
			r, _, err := src.ReadRune()
			if err != nil {
				if errors.Is(err, io.EOF) {
					return 0, false, nil
				}
				return 0, false, err
			}
			read = append(read, r)
			if skip == nil || !skip(r) {
				return r, true, nil
			}
		}
	}
	r, ok, err := next(unicode.IsSpace)
	if err != nil {
		return nil, 0, err
	}
	if !ok || r != 'y' {
		return replay(read, src), 0, nil
	}
	// Stay on the line, so that a lone y doesn't absorb the next one.
	r, ok, err = next(func(r rune) bool { return r != '\n' && unicode.IsSpace(r) })
	if err != nil {
		return nil, 0, err
	}
	if !ok || r != '=' {
		return replay(read, src), 0, nil
	}
	r, ok, err = next(nil)
	switch {
	case err != nil:
		return nil, 0, err
	case !ok:
		return src, len(read), nil
	case r == '=':
		// y == ... is a comparison, not the prefix.
		return replay(read, src), 0, nil
	}
	n := len(read) - 1
	return replay(read[n:], src), n, nil
}

// replayer is a RuneScanner that reads head before src.
type replayer struct {
	head []rune
	i    int
	src  io.RuneScanner
	// last is 1 if the last rune read came from head, 2 if from src, and 0
	// if there is nothing to unread.
	last int
}

func replay(head []rune, src io.RuneScanner) io.RuneScanner {
	if len(head) == 0 {
		return src
	}
	return &replayer{head: head, src: src}
}

func (r *replayer) ReadRune() (rune, int, error) {
	if r.i < len(r.head) {
		c := r.head[r.i]
		r.i++
		r.last = 1
		return c, utf8.RuneLen(c), nil
	}
	c, sz, err := r.src.ReadRune()
	r.last = 0
	if err == nil {
		r.last = 2
	}
	return c, sz, err
}

func (r *replayer) UnreadRune() error {
	switch r.last {
	case 1:
		r.i--
	case 2:
		if err := r.src.UnreadRune(); err != nil {
			return err
		}
	default:
		return errUnread
	}
	r.last = 0
	return nil
}

var errUnread = errors.New("plotexpr: UnreadRune without ReadRune")

// Valid reports whether text compiles.
func Valid(text string) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()
	_, err := Compile(text)
	return err == nil
}
