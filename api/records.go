package api

import (
	"bytes"
	"strconv"
	"time"

	forecaster "github.com/aouyang1/go-autoforecast"
	"github.com/aouyang1/go-autoforecast/timedataset"

	"github.com/goccy/go-json"
)

// ModelColumn names the forecast column the same way statsforecast names the AutoARIMA output
const ModelColumn = "AutoARIMA"

// ForecastRequest is the body of POST /forecast/
type ForecastRequest struct {
	Periods int  `json:"periods" binding:"required,gt=0"`
	Level   *int `json:"level,omitempty" binding:"omitempty,min=1,max=99"`
}

// ForecastRecord is one forecast row. The interval columns are only written when Level is set.
type ForecastRecord struct {
	DS    time.Time
	Mean  float64
	Lower float64
	Upper float64
	Level int
}

// MarshalJSON writes the record with the ds column first followed by the model columns
func (r ForecastRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"ds":"`)
	buf.WriteString(r.DS.Format(time.DateOnly))
	buf.WriteString(`",`)

	type column struct {
		key string
		val float64
	}
	fields := []column{{ModelColumn, r.Mean}}
	if r.Level > 0 {
		lvl := strconv.Itoa(r.Level)
		fields = append(fields,
			column{ModelColumn + "-lo-" + lvl, r.Lower},
			column{ModelColumn + "-hi-" + lvl, r.Upper},
		)
	}
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(f.key))
		buf.WriteByte(':')
		b, err := json.Marshal(f.val)
		if err != nil {
			return nil, err
		}
		buf.Write(b)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// NewForecastRecords converts forecaster results into rows, one per forecast time
func NewForecastRecords(res *forecaster.Results, level int) []ForecastRecord {
	records := make([]ForecastRecord, res.Len())
	for i := range records {
		records[i] = ForecastRecord{
			DS:   res.T[i],
			Mean: res.Forecast[i],
		}
		if level > 0 && res.HasInterval() {
			records[i].Lower = res.Lower[i]
			records[i].Upper = res.Upper[i]
			records[i].Level = level
		}
	}
	return records
}

// HistoricalRecord is one row of GET /historical_data/
type HistoricalRecord struct {
	DS string  `json:"ds"`
	Y  float64 `json:"y"`
}

func NewHistoricalRecords(td *timedataset.TimeDataset) []HistoricalRecord {
	records := make([]HistoricalRecord, td.Len())
	for i := range records {
		records[i] = HistoricalRecord{
			DS: td.T[i].Format(time.DateOnly),
			Y:  td.Y[i],
		}
	}
	return records
}
