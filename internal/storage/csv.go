package storage

import (
	"encoding/csv"
	"io"

	"github.com/san-kum/rdsim/internal/metrics"
)

func WriteCSV(w io.Writer, samples []metrics.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(statsHeader); err != nil {
		return err
	}
	for _, s := range samples {
		if err := cw.Write(sampleRow(s)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
