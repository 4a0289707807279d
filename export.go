package astrofit

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/soniakeys/meeus/julian"
)

// ExportSample writes the sample as a CSV file in the configured output
// directory. The first column is the Julian date of the state, followed by the
// Cartesian position and velocity.
func ExportSample(filename string, s Sample) error {
	f, err := os.Create(fmt.Sprintf("%s/%s.csv", afConfig().outputDir, filename))
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"jd", "x", "y", "z", "vx", "vy", "vz"}); err != nil {
		return err
	}
	for _, state := range s {
		R, V := state.RV()
		record := make([]string, 7)
		record[0] = strconv.FormatFloat(julian.TimeToJD(state.DT), 'f', 8, 64)
		for i := 0; i < 3; i++ {
			record[1+i] = strconv.FormatFloat(R[i], 'f', -1, 64)
			record[4+i] = strconv.FormatFloat(V[i], 'f', -1, 64)
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	return nil
}

// ExportFit writes a one line CSV summary of the converter's latest fit in the
// configured output directory.
func ExportFit(filename string, c *PropagatorConverter) error {
	f, err := os.Create(fmt.Sprintf("%s/%s.csv", afConfig().outputDir, filename))
	if err != nil {
		return err
	}
	defer f.Close()
	w := csv.NewWriter(f)
	defer w.Flush()
	if err := w.Write([]string{"rms", "evaluations", "points"}); err != nil {
		return err
	}
	return w.Write([]string{
		strconv.FormatFloat(c.RMS(), 'e', 12, 64),
		strconv.Itoa(c.Evaluations()),
		strconv.Itoa(len(c.sample)),
	})
}
