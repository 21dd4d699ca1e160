package fixed

// Candidate types in detection order, most restrictive first. STRING always
// parses, so every column settles on some candidate.
var (
	defaultCandidates = []ColumnType{
		LocalDateTime, LocalTime, LocalDate, Boolean, Integer, Long, Double, String,
	}
	minimizedCandidates = []ColumnType{
		LocalDateTime, LocalTime, LocalDate, Boolean, Short, Integer, Long, Float, Double, String,
	}
)

// columnInference tracks which candidates accept every non-missing value
// seen in one column. Memory is constant per column: each value is checked
// once against the candidates still viable, then dropped.
type columnInference struct {
	candidates []ColumnType
	viable     []bool
	idx        int
	last       string
	observed   bool
}

func newColumnInference(candidates []ColumnType) *columnInference {
	viable := make([]bool, len(candidates))
	for i := range viable {
		viable[i] = true
	}
	return &columnInference{candidates: candidates, viable: viable}
}

// observe rules out the candidates rejecting v and moves to the narrowest
// candidate still accepting every value.
func (c *columnInference) observe(p TypeParser, v string) {
	if c.candidates[c.idx] == String || (c.observed && v == c.last) {
		c.observed = true
		return
	}
	c.observed = true
	c.last = v

	for i := c.idx; i < len(c.candidates); i++ {
		if c.viable[i] && c.candidates[i] != String && !p.CanParse(c.candidates[i], v) {
			c.viable[i] = false
		}
	}
	for !c.viable[c.idx] {
		c.idx++
	}
}

// result is STRING for columns holding only missing values.
func (c *columnInference) result() ColumnType {
	if !c.observed {
		return String
	}
	return c.candidates[c.idx]
}

// inferTypes accumulates per-column inference over tokenized rows.
type inferTypes struct {
	parser  TypeParser
	opts    ReadOptions
	columns []*columnInference
	rows    int
}

func newInferTypes(opts ReadOptions) *inferTypes {
	candidates := defaultCandidates
	if opts.minimize {
		candidates = minimizedCandidates
	}
	columns := make([]*columnInference, opts.spec.Len())
	for i := range columns {
		columns[i] = newColumnInference(candidates)
	}
	return &inferTypes{parser: opts.parser, opts: opts, columns: columns}
}

// full reports whether the sample cap has been reached.
func (in *inferTypes) full() bool {
	return in.opts.sample && in.rows >= in.opts.sampleSize
}

func (in *inferTypes) add(row RawRow) {
	in.rows++
	for i, v := range row {
		if in.opts.IsMissing(v) {
			continue
		}
		in.columns[i].observe(in.parser, v)
	}
}

// types returns one detected type per declared field.
func (in *inferTypes) types() []ColumnType {
	out := make([]ColumnType, len(in.columns))
	for i, c := range in.columns {
		out[i] = c.result()
	}
	return out
}
