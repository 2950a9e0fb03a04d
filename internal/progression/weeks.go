package progression

import "fmt"

const (
	// WeeksPerBlock is the length of one periodization block; its last week is a deload.
	WeeksPerBlock = 7
	// Blocks is the number of blocks in the full program.
	Blocks = 3
	// MaxWeeks is the length of the full program.
	MaxWeeks = WeeksPerBlock * Blocks

	deloadIntensity = 0.60
	deloadSets      = 3
	deloadReps      = 5
)

// WeekParams are the periodization parameters for one program week.
type WeekParams struct {
	Week        int     `json:"week"`
	Block       int     `json:"block"`
	WeekInBlock int     `json:"week_in_block"`
	Intensity   float64 `json:"intensity_percent"`
	Sets        int     `json:"sets"`
	TargetReps  int     `json:"target_reps"`
	IsDeload    bool    `json:"is_deload"`
}

// BlockOf returns the 1-based block a week falls in.
func BlockOf(week int) int {
	return (week + WeeksPerBlock - 1) / WeeksPerBlock
}

// WeekInBlock returns the 1-based position of a week inside its block.
func WeekInBlock(week int) int {
	return ((week - 1) % WeeksPerBlock) + 1
}

// Table is the immutable week-parameter table for a program of totalWeeks weeks.
type Table struct {
	rows []WeekParams
}

// NewTable derives the parameters for weeks 1..totalWeeks from the block template.
func NewTable(totalWeeks int) (*Table, error) {
	if totalWeeks < 1 || totalWeeks > MaxWeeks {
		return nil, fmt.Errorf("%w: total weeks %d not in 1..%d", ErrOutOfRange, totalWeeks, MaxWeeks)
	}
	rows := make([]WeekParams, totalWeeks)
	for i := range rows {
		rows[i] = deriveWeek(i + 1)
	}
	return &Table{rows: rows}, nil
}

// DefaultTable returns the full 21-week table.
func DefaultTable() *Table {
	t, err := NewTable(MaxWeeks)
	if err != nil {
		panic(err)
	}
	return t
}

// TotalWeeks is the number of weeks the table covers.
func (t *Table) TotalWeeks() int {
	return len(t.rows)
}

// Get returns the parameters for week.
func (t *Table) Get(week int) (WeekParams, error) {
	if week < 1 || week > len(t.rows) {
		return WeekParams{}, fmt.Errorf("%w: week %d not in 1..%d", ErrOutOfRange, week, len(t.rows))
	}
	return t.rows[week-1], nil
}

// All returns a copy of every row in week order.
func (t *Table) All() []WeekParams {
	out := make([]WeekParams, len(t.rows))
	copy(out, t.rows)
	return out
}

// deriveWeek expands the block template. Each block runs two three-week
// mini-cycles ramping intensity by 5% per week, the second offset by +2.5%
// and one rep lighter, then a deload.
func deriveWeek(week int) WeekParams {
	block := BlockOf(week)
	wib := WeekInBlock(week)
	p := WeekParams{Week: week, Block: block, WeekInBlock: wib}

	if wib == WeeksPerBlock {
		p.IsDeload = true
		p.Intensity = deloadIntensity
		p.Sets = deloadSets
		p.TargetReps = deloadReps
		return p
	}

	pos := (wib - 1) % 3
	cycle := (wib - 1) / 3
	p.Intensity = roundDecimals(0.70+0.05*float64(block-1)+0.05*float64(pos)+0.025*float64(cycle), 3)
	p.TargetReps = 10 - 2*(block-1) - 2*pos - cycle
	p.Sets = 5
	if block == Blocks {
		p.Sets = 4
	}
	return p
}
