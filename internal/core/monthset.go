package core

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// EmptyRangeLabel is the sentinel emitted by FormatRange for an empty set,
// preserved verbatim from the legacy data ("no months selected").
const EmptyRangeLabel = "CHƯA CHỌN THÁNG"

// Month is a single calendar month.
type Month struct {
	Year int
	Mon  int // 1..12
}

// NewMonth builds a Month without validation; callers validate via the codec.
func NewMonth(year, mon int) Month {
	return Month{Year: year, Mon: mon}
}

func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Mon < o.Mon
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	if m.Mon == 12 {
		return Month{Year: m.Year + 1, Mon: 1}
	}
	return Month{Year: m.Year, Mon: m.Mon + 1}
}

// String renders the canonical single-month token.
func (m Month) String() string {
	return fmt.Sprintf("Tháng %d/%d", m.Mon, m.Year)
}

// Key renders a sortable "YYYY-MM" key, used for stable grouping.
func (m Month) Key() string {
	return fmt.Sprintf("%04d-%02d", m.Year, m.Mon)
}

// MonthSet is a set of calendar months, always displayed in chronological
// order. Tokens the codec cannot interpret are preserved verbatim as opaque
// entries so that malformed legacy data still round-trips through
// ParseMonthSet/Format without loss.
type MonthSet struct {
	months map[Month]struct{}
	opaque []string
}

// NewMonthSet builds a set from explicit months; duplicates merge.
func NewMonthSet(months ...Month) MonthSet {
	var s MonthSet
	for _, m := range months {
		s.Add(m)
	}
	return s
}

func (s *MonthSet) Add(m Month) {
	if s.months == nil {
		s.months = make(map[Month]struct{})
	}
	s.months[m] = struct{}{}
}

// AddOpaque preserves an uninterpretable token. Duplicate opaque tokens merge
// like regular set entries.
func (s *MonthSet) AddOpaque(token string) {
	for _, t := range s.opaque {
		if t == token {
			return
		}
	}
	s.opaque = append(s.opaque, token)
}

// Union merges o into a copy of s.
func (s MonthSet) Union(o MonthSet) MonthSet {
	out := NewMonthSet(s.Sorted()...)
	for _, t := range s.opaque {
		out.AddOpaque(t)
	}
	for _, m := range o.Sorted() {
		out.Add(m)
	}
	for _, t := range o.opaque {
		out.AddOpaque(t)
	}
	return out
}

func (s MonthSet) Contains(m Month) bool {
	_, ok := s.months[m]
	return ok
}

// Len counts the entries of the set: distinct calendar months plus opaque
// singleton entries.
func (s MonthSet) Len() int {
	return len(s.months) + len(s.opaque)
}

func (s MonthSet) IsEmpty() bool {
	return s.Len() == 0
}

// Sorted returns the parsed months in chronological order.
func (s MonthSet) Sorted() []Month {
	out := make([]Month, 0, len(s.months))
	for m := range s.months {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}

// Opaque returns the preserved pass-through tokens in insertion order.
func (s MonthSet) Opaque() []string {
	return append([]string(nil), s.opaque...)
}

func (s MonthSet) Equal(o MonthSet) bool {
	if len(s.months) != len(o.months) || len(s.opaque) != len(o.opaque) {
		return false
	}
	for m := range s.months {
		if !o.Contains(m) {
			return false
		}
	}
	om := map[string]struct{}{}
	for _, t := range o.opaque {
		om[t] = struct{}{}
	}
	for _, t := range s.opaque {
		if _, ok := om[t]; !ok {
			return false
		}
	}
	return true
}

// Token grammar of the legacy coverage encoding. Tokens are joined with "+";
// each token is one of:
//
//	Tháng M/YYYY                single month
//	Tháng M1-M2/YYYY            intra-year run, M1 <= M2
//	M1/YYYY tới M2/YYYY         generic range ("Tháng" prefix optional)
//	Tháng M1/YYYY - M2/YYYY     cross-year dash range
var (
	reSingleMonth = regexp.MustCompile(`^Tháng\s*(\d{1,2})/(\d{4})$`)
	reYearRun     = regexp.MustCompile(`^Tháng\s*(\d{1,2})-(\d{1,2})/(\d{4})$`)
	reToiRange    = regexp.MustCompile(`^(?:Tháng\s*)?(\d{1,2})/(\d{4})\s+tới\s+(\d{1,2})/(\d{4})$`)
	reDashRange   = regexp.MustCompile(`^Tháng\s*(\d{1,2})/(\d{4})\s*-\s*(\d{1,2})/(\d{4})$`)
)

// ParseMonthSet interprets the textual coverage encoding. It never fails:
// tokens that do not match the grammar (or that name impossible months)
// become opaque entries preserved verbatim, because historical data must
// never become unreadable.
func ParseMonthSet(text string) MonthSet {
	var s MonthSet
	for _, part := range strings.Split(text, "+") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if !parseToken(&s, part) {
			s.AddOpaque(part)
		}
	}
	return s
}

func parseToken(s *MonthSet, token string) bool {
	if m := reSingleMonth.FindStringSubmatch(token); m != nil {
		mon, year := atoi(m[1]), atoi(m[2])
		if !validMonth(mon) {
			return false
		}
		s.Add(NewMonth(year, mon))
		return true
	}
	if m := reYearRun.FindStringSubmatch(token); m != nil {
		m1, m2, year := atoi(m[1]), atoi(m[2]), atoi(m[3])
		if !validMonth(m1) || !validMonth(m2) || m1 > m2 {
			return false
		}
		addSpan(s, NewMonth(year, m1), NewMonth(year, m2))
		return true
	}
	if m := reToiRange.FindStringSubmatch(token); m != nil {
		return addRange(s, atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4]))
	}
	if m := reDashRange.FindStringSubmatch(token); m != nil {
		return addRange(s, atoi(m[1]), atoi(m[2]), atoi(m[3]), atoi(m[4]))
	}
	return false
}

func addRange(s *MonthSet, m1, y1, m2, y2 int) bool {
	if !validMonth(m1) || !validMonth(m2) {
		return false
	}
	from, to := NewMonth(y1, m1), NewMonth(y2, m2)
	if to.Before(from) {
		return false
	}
	addSpan(s, from, to)
	return true
}

func addSpan(s *MonthSet, from, to Month) {
	for m := from; !to.Before(m); m = m.Next() {
		s.Add(m)
	}
}

func validMonth(m int) bool {
	return m >= 1 && m <= 12
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

// Format renders the canonical persisted form: the months in chronological
// order as individual "Tháng M/YYYY" tokens joined by "+", followed by any
// opaque entries verbatim. Legacy range syntax is accepted on input but never
// emitted.
func (s MonthSet) Format() string {
	tokens := make([]string, 0, s.Len())
	for _, m := range s.Sorted() {
		tokens = append(tokens, m.String())
	}
	tokens = append(tokens, s.opaque...)
	return strings.Join(tokens, "+")
}

// FormatRange renders a display label for the set: "M1/YYYY tới M2/YYYY"
// when the months form an unbroken run, the single-month token for one
// month. Sets with gaps or opaque entries cannot be summarized by a span
// without lying about membership, so they fall back to the exact Format.
func (s MonthSet) FormatRange() string {
	months := s.Sorted()
	if len(months) == 0 && len(s.opaque) == 0 {
		return EmptyRangeLabel
	}
	if len(s.opaque) > 0 || !s.Contiguous() {
		return s.Format()
	}
	first, last := months[0], months[len(months)-1]
	if first == last {
		return first.String()
	}
	return fmt.Sprintf("%d/%d tới %d/%d", first.Mon, first.Year, last.Mon, last.Year)
}

// Contiguous reports whether the parsed months form an unbroken run.
func (s MonthSet) Contiguous() bool {
	months := s.Sorted()
	for i := 1; i < len(months); i++ {
		if months[i] != months[i-1].Next() {
			return false
		}
	}
	return true
}
