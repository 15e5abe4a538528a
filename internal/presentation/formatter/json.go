package formatter

import (
	"io"

	"github.com/bytedance/sonic"
)

type JSONFormatter struct{}

func NewJSONFormatter() *JSONFormatter {
	return &JSONFormatter{}
}

// Format writes r.Data, or the rows keyed by header when there is no Data.
func (f *JSONFormatter) Format(w io.Writer, r *Report) error {
	data := r.Data
	if data == nil {
		rows := make([]map[string]string, 0, len(r.Rows))
		for _, row := range r.Rows {
			obj := make(map[string]string, len(r.Headers))
			for i, h := range r.Headers {
				if i < len(row) {
					obj[h] = row[i]
				}
			}
			rows = append(rows, obj)
		}
		data = rows
	}

	out, err := sonic.ConfigStd.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	out = append(out, '\n')
	_, err = w.Write(out)
	return err
}
