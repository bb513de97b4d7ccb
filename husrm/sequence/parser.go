package sequence

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

var (
	ErrMalformedToken  = errors.New("malformed token")
	ErrNegativeUtility = errors.New("negative utility")
)

const (
	tokenEndItemset  = "-1"
	tokenEndSequence = "-2"
	maxLineBytes     = 64 << 20
)

// ParseOption customizes Parse.
type ParseOption func(*parser)

// WithMaxSequences stops parsing once n sequences were loaded. n <= 0 means no cap.
func WithMaxSequences(n int) ParseOption {
	return func(p *parser) {
		p.maxSequences = n
	}
}

// WithParseLogger sets the logger used for parse diagnostics.
func WithParseLogger(logger zerolog.Logger) ParseOption {
	return func(p *parser) {
		p.logger = logger
	}
}

type parser struct {
	maxSequences int
	logger       zerolog.Logger
}

// Parse reads a corpus, one sequence per line. Any malformed token aborts the
// whole load; no partial database is returned.
func Parse(r io.Reader, opts ...ParseOption) (*Database, error) {
	p := &parser{logger: zerolog.Nop()}
	for _, opt := range opts {
		opt(p)
	}

	db := NewDatabase()
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if isSkippable(line) {
			continue
		}
		seq, complete, err := parseLine(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if !complete {
			p.logger.Warn().Int("line", lineNo).Msg("sequence has no -2 terminator, skipping")
			continue
		}
		seq.Line = lineNo
		db.Add(seq)
		if p.maxSequences > 0 && db.Len() >= p.maxSequences {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read corpus: %w", err)
	}

	p.logger.Debug().Int("sequences", db.Len()).Int("lines", lineNo).Msg("corpus loaded")
	return db, nil
}

// LoadFile parses the corpus stored at path. "-" reads standard input.
func LoadFile(path string, opts ...ParseOption) (*Database, error) {
	if path == "-" {
		return Parse(os.Stdin, opts...)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open corpus %s: %w", path, err)
	}
	defer f.Close()
	db, err := Parse(f, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to parse corpus %s: %w", path, err)
	}
	return db, nil
}

func isSkippable(line string) bool {
	if line == "" {
		return true
	}
	switch line[0] {
	case '#', '%', '@':
		return true
	}
	return false
}

// parseLine turns one corpus line into a sequence. The declared utility may
// follow the -2 terminator, so the whole line is consumed before returning.
func parseLine(line string) (*Sequence, bool, error) {
	seq := &Sequence{}
	seen := make(map[Item]struct{})
	var (
		current     Itemset
		repeated    float64
		kept        float64
		declared    float64
		hasDeclared bool
		complete    bool
	)

	closeItemset := func() {
		if current.Len() > 0 {
			current.sortPairs()
			seq.Itemsets = append(seq.Itemsets, current)
		}
		current = Itemset{}
	}

	for _, token := range strings.Fields(line) {
		switch {
		case token == tokenEndItemset:
			closeItemset()
		case token == tokenEndSequence:
			closeItemset()
			complete = true
		case token[0] == 'S':
			v, err := parseDeclaredUtility(token)
			if err != nil {
				return nil, false, err
			}
			declared, hasDeclared = v, true
		default:
			item, utility, err := parseItemToken(token)
			if err != nil {
				return nil, false, err
			}
			if _, dup := seen[item]; dup {
				repeated += utility
				continue
			}
			seen[item] = struct{}{}
			current.Items = append(current.Items, item)
			current.Utilities = append(current.Utilities, utility)
			kept += utility
		}
	}

	if hasDeclared {
		seq.ExactUtility = declared - repeated
	} else {
		seq.ExactUtility = kept
	}
	return seq, complete, nil
}

func parseDeclaredUtility(token string) (float64, error) {
	_, value, ok := strings.Cut(token, ":")
	if !ok || value == "" {
		return 0, fmt.Errorf("%w: sequence utility %q", ErrMalformedToken, token)
	}
	v, err := parseUtility(value)
	if err != nil {
		return 0, fmt.Errorf("%w: sequence utility %q: %v", ErrMalformedToken, token, err)
	}
	return v, nil
}

// parseUtility accepts finite numbers only.
func parseUtility(s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errors.New("not a finite number")
	}
	return v, nil
}

// parseItemToken splits "<item>[<utility>]".
func parseItemToken(token string) (Item, float64, error) {
	open := strings.IndexByte(token, '[')
	if open <= 0 || !strings.HasSuffix(token, "]") {
		return 0, 0, fmt.Errorf("%w: item %q", ErrMalformedToken, token)
	}
	item, err := strconv.Atoi(token[:open])
	if err != nil || item < 0 {
		return 0, 0, fmt.Errorf("%w: item id %q", ErrMalformedToken, token)
	}
	utility, err := parseUtility(token[open+1 : len(token)-1])
	if err != nil {
		return 0, 0, fmt.Errorf("%w: utility %q: %v", ErrMalformedToken, token, err)
	}
	if utility < 0 {
		return 0, 0, fmt.Errorf("%w: %q", ErrNegativeUtility, token)
	}
	return item, utility, nil
}
