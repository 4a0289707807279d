package astrofit

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/soniakeys/meeus/julian"
)

const (
	// mjdOffset converts between Julian dates and modified Julian dates.
	mjdOffset = 2400000.5
	// arcsec2rad converts arcseconds to radians.
	arcsec2rad = math.Pi / (180 * 3600)
)

// EOPEntry is one daily Earth orientation record: pole coordinates in radians,
// UT1-UTC and length of day excess in seconds, at the given modified Julian date.
type EOPEntry struct {
	MJD         float64
	X, Y        float64
	UT1MinusUTC float64
	LOD         float64
}

// DT returns the epoch of this entry.
func (e EOPEntry) DT() time.Time {
	return julian.JDToTime(e.MJD + mjdOffset)
}

// EOPHistory interpolates Earth orientation parameters between daily entries.
type EOPHistory struct {
	entries []EOPEntry
}

// NewEOPHistory returns a history over the given entries, sorted by date.
func NewEOPHistory(entries []EOPEntry) (*EOPHistory, error) {
	if len(entries) < 2 {
		return nil, fmt.Errorf("an EOP history needs at least 2 entries, got %d", len(entries))
	}
	sorted := append([]EOPEntry(nil), entries...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].MJD < sorted[j].MJD })
	return &EOPHistory{sorted}, nil
}

// Range returns the validity range of this history.
func (h *EOPHistory) Range() (time.Time, time.Time) {
	return h.entries[0].DT(), h.entries[len(h.entries)-1].DT()
}

// At linearly interpolates all parameters at the given date. Dates outside the
// validity range are an error.
func (h *EOPHistory) At(dt time.Time) (EOPEntry, error) {
	// The Julian date conversion carries a resolution of a few tens of
	// microseconds at current epochs, so the bounds get that much slack.
	const mjdε = 1e-6
	mjd := julian.TimeToJD(dt) - mjdOffset
	first, last := h.entries[0].MJD, h.entries[len(h.entries)-1].MJD
	if mjd < first-mjdε || mjd > last+mjdε {
		return EOPEntry{}, fmt.Errorf("date %s outside of the EOP history range", dt)
	}
	if mjd <= first {
		return h.entries[0], nil
	}
	if mjd >= last {
		return h.entries[len(h.entries)-1], nil
	}
	hi := sort.Search(len(h.entries), func(i int) bool { return h.entries[i].MJD >= mjd })
	if h.entries[hi].MJD == mjd {
		return h.entries[hi], nil
	}
	e0, e1 := h.entries[hi-1], h.entries[hi]
	t := (mjd - e0.MJD) / (e1.MJD - e0.MJD)
	lerp := func(a, b float64) float64 { return a + t*(b-a) }
	return EOPEntry{MJD: mjd,
		X:           lerp(e0.X, e1.X),
		Y:           lerp(e0.Y, e1.Y),
		UT1MinusUTC: lerp(e0.UT1MinusUTC, e1.UT1MinusUTC),
		LOD:         lerp(e0.LOD, e1.LOD)}, nil
}

// ParseC04Line parses one data line of an EOP 08 C04 file. The line layout is
// year month day MJD x y UT1-UTC LOD ..., pole coordinates in arcseconds.
func ParseC04Line(line string) (EOPEntry, error) {
	fields := strings.Fields(line)
	if len(fields) < 8 {
		return EOPEntry{}, fmt.Errorf("C04 line has %d fields, expected at least 8", len(fields))
	}
	vals := make([]float64, 5)
	for i, pos := range []int{3, 4, 5, 6, 7} {
		val, err := strconv.ParseFloat(fields[pos], 64)
		if err != nil {
			return EOPEntry{}, fmt.Errorf("C04 field %d: %s", pos, err)
		}
		vals[i] = val
	}
	return EOPEntry{MJD: vals[0],
		X:           vals[1] * arcsec2rad,
		Y:           vals[2] * arcsec2rad,
		UT1MinusUTC: vals[3],
		LOD:         vals[4]}, nil
}

// ParseC04 reads a full EOP 08 C04 stream into a history, skipping the header.
func ParseC04(r io.Reader) (*EOPHistory, error) {
	var entries []EOPEntry
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.Fields(line)
		// Header lines do not start with a numeric year.
		if len(fields) < 8 {
			continue
		}
		if _, err := strconv.Atoi(fields[0]); err != nil {
			continue
		}
		entry, err := ParseC04Line(line)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return NewEOPHistory(entries)
}
