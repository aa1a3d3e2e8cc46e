package scanner

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// DefaultEncoding is used when Options.Encoding is empty.
const DefaultEncoding = "utf-8"

const readBufferSize = 64 * 1024

// resolveEncoding maps a WHATWG/IANA label ("utf-8", "latin1", "windows-1252",
// "utf-16le", ...) to an encoding. Decoders from the index never fail on bad
// input; undecodable bytes become U+FFFD.
func resolveEncoding(name string) (encoding.Encoding, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unsupported encoding %q: %w", name, err)
	}
	return enc, nil
}

// lineReader yields decoded lines with their original terminator attached.
type lineReader struct {
	r *bufio.Reader
}

func newLineReader(src io.Reader, enc encoding.Encoding) *lineReader {
	decoded := transform.NewReader(src, enc.NewDecoder())
	return &lineReader{r: bufio.NewReaderSize(decoded, readBufferSize)}
}

// Next returns the next line including its "\n" (and any "\r" before it).
// The final line may lack a terminator. At end of input it returns "", io.EOF.
func (lr *lineReader) Next() (string, error) {
	line, err := lr.r.ReadString('\n')
	if err == io.EOF && line != "" {
		return line, nil
	}
	return line, err
}
