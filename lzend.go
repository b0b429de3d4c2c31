// Package lzend computes LZ-End factorizations of byte strings.
//
// LZ-End is a variant of LZ77 in which every phrase that copies earlier
// text must end exactly at the end of a previous phrase occurrence. The
// parser implements the linear-time algorithm of Kempa and Kosolobov: it
// builds the suffix array of the reversed input, derives the LCP array and
// a range-minimum structure over it, and then sweeps the text once while a
// dynamic predecessor structure over "marked" suffix-array ranks answers
// the longest-match queries.
package lzend

import (
	"fmt"
	"io"
	"math"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/ulikunitz/lz/suffix"

	"github.com/pdinklag/lzend/ordered"
	"github.com/pdinklag/lzend/rmq"
)

// Index is the integer type for text positions, lexicographic ranks and
// phrase identifiers. Inputs must be shorter than 2^31 bytes.
type Index = int32

// Phrase is a single LZ-End factor. The first Len-1 bytes are a copy of a
// suffix of the text prefix that ends with phrase Lnk; the final byte is
// the literal Ext. A phrase with Len == 1 is a pure literal and its Lnk
// must be ignored; in particular the first phrase is always (0, 1, S[0]).
type Phrase struct {
	Lnk Index
	Len Index
	Ext byte
}

// ParserConfig configures a parse. The zero value is ready to use. Verbose
// enables progress lines on Log, which defaults to os.Stderr.
type ParserConfig struct {
	Verbose bool
	Log     io.Writer
}

// SetDefaults replaces zero fields of the configuration with their default
// values.
func (cfg *ParserConfig) SetDefaults() {
	if cfg.Log == nil {
		cfg.Log = os.Stderr
	}
}

// Verify checks the configuration.
func (cfg *ParserConfig) Verify() error {
	if cfg.Log == nil {
		return fmt.Errorf("lzend: Log must not be nil")
	}
	return nil
}

// Parse computes the LZ-End parsing of data without progress output.
func Parse(data []byte) ([]Phrase, error) {
	var cfg ParserConfig
	return cfg.Parse(data)
}

// Parse computes the LZ-End parsing of data. The returned phrase lengths
// sum to len(data). The parse is a one-shot call; the index structures it
// builds are released on return.
func (cfg *ParserConfig) Parse(data []byte) ([]Phrase, error) {
	cfg.SetDefaults()
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	if len(data) > math.MaxInt32 {
		return nil, fmt.Errorf("lzend: input length %d exceeds %d bytes",
			len(data), math.MaxInt32)
	}
	if len(data) == 0 {
		return nil, nil
	}
	p := &parser{cfg: cfg, data: data, n: Index(len(data))}
	p.prepare()
	return p.parse(), nil
}

// parser holds the index structures that live for the duration of a parse:
// the remapped inverse suffix array, the LCP array with its RMQ, and the
// map of marked ranks.
type parser struct {
	cfg  *ParserConfig
	data []byte
	n    Index

	isa    []Index
	lcp    []Index
	rmq    *rmq.RMQ[Index]
	marked ordered.Map[Index, Index]
}

func (p *parser) logf(format string, args ...any) {
	if p.cfg.Verbose {
		fmt.Fprintf(p.cfg.Log, format, args...)
	}
}

// prepare builds the suffix array of the reversed text and derives the
// structures the main loop needs. The suffix array and the reversed text
// are only required here and become garbage before the loop starts.
func (p *parser) prepare() {
	n := p.n
	p.logf("LZ-End input: n=%d (%s)\n", n, humanize.IBytes(uint64(n)))

	r := make([]byte, n)
	for i := Index(0); i < n; i++ {
		r[n-i-1] = p.data[i]
	}

	t0 := time.Now()
	p.logf("\tcompute SA ...\t\t\t")
	sa := make([]Index, n)
	suffix.Sort(r, sa)
	p.logf("%d ms\n", time.Since(t0).Milliseconds())

	// The isa buffer holds the PLCP array first and is overwritten with
	// the remapped inverse suffix array once the LCP array exists.
	t0 = time.Now()
	p.logf("\tcompute LCP ...\t\t\t")
	isa := make([]Index, n)
	plcp(r, sa, isa)
	lcp := make([]Index, n)
	lcpFromPLCP(isa, sa, lcp)
	p.lcp = lcp
	p.logf("%d ms\n", time.Since(t0).Milliseconds())

	t0 = time.Now()
	p.logf("\tcompute RMQ ...\t\t\t")
	p.rmq = rmq.New(lcp)
	p.logf("%d ms\n", time.Since(t0).Milliseconds())

	// ISA[q] is the rank, among the suffixes of the reversed text, of the
	// reversed text prefix ending at forward position q.
	t0 = time.Now()
	p.logf("\tcompute permuted ISA ...\t")
	for i := Index(0); i < n; i++ {
		isa[n-sa[i]-1] = i
	}
	p.isa = isa
	p.logf("%d ms\n", time.Since(t0).Milliseconds())
}

// candidate describes a possible copy source for the current phrase: the
// marked rank it was found at, the phrase it belongs to, and the length of
// the common suffix with the text ending at the current position.
type candidate struct {
	lexPos Index
	lnk    Index
	len    Index
}

// lexSmallerPhrase finds the marked phrase whose rank is closest below x.
func (p *parser) lexSmallerPhrase(x Index) candidate {
	r := p.marked.Predecessor(x - 1)
	if !r.Exists {
		return candidate{}
	}
	return candidate{
		lexPos: r.Key,
		lnk:    r.Value,
		len:    p.lcp[p.rmq.Query(int(r.Key)+1, int(x))],
	}
}

// lexGreaterPhrase finds the marked phrase whose rank is closest above x.
func (p *parser) lexGreaterPhrase(x Index) candidate {
	r := p.marked.Successor(x + 1)
	if !r.Exists {
		return candidate{}
	}
	return candidate{
		lexPos: r.Key,
		lnk:    r.Value,
		len:    p.lcp[p.rmq.Query(int(x)+1, int(r.Key))],
	}
}

// parse runs the factorization sweep.
func (p *parser) parse() []Phrase {
	n := p.n
	s := p.data

	t0 := time.Now()
	p.logf("\tparse ...\t\t\t")

	parsing := make([]Phrase, 1, 16)
	parsing[0] = Phrase{Lnk: 0, Len: 1, Ext: s[0]}
	z := Index(0) // index of the latest phrase

	for i := Index(1); i < n; i++ {
		len1 := parsing[z].Len
		len2 := len1
		if z > 0 {
			len2 += parsing[z-1].Len
		}
		rank := p.isa[i-1]

		// A candidate extends the last phrase if its common suffix
		// covers it entirely, and additionally merges the last two
		// phrases if it covers both. If the nearest candidate is the
		// previous phrase itself, re-query from its rank so the merge
		// is not sourced from the phrase being merged away.
		p1, p2 := Index(-1), Index(-1)
		findCopySource := func(search func(Index) candidate) {
			c := search(rank)
			if c.len >= len1 {
				p1 = c.lnk
				if i > len1 {
					if c.lnk == z-1 {
						c = search(c.lexPos)
					}
					if c.len >= len2 {
						p2 = c.lnk
					}
				}
			}
		}
		findCopySource(p.lexSmallerPhrase)
		if p1 == -1 || p2 == -1 {
			findCopySource(p.lexGreaterPhrase)
		}

		switch {
		case p2 != -1:
			// merge the last two phrases
			p.marked.Erase(p.isa[i-1-len1])
			parsing = parsing[:z]
			z--
			parsing[z] = Phrase{Lnk: p2, Len: len2 + 1, Ext: s[i]}
		case p1 != -1:
			// extend the last phrase
			parsing[z] = Phrase{Lnk: p1, Len: len1 + 1, Ext: s[i]}
		default:
			// lazily mark the last phrase and start a new literal
			p.marked.Insert(rank, z)
			parsing = append(parsing, Phrase{Lnk: 0, Len: 1, Ext: s[i]})
			z++
		}
	}

	p.logf("%d ms\n", time.Since(t0).Milliseconds())
	return parsing
}
