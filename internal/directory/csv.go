package directory

import (
	"bufio"
	"io"
	"strings"

	"github.com/aanand-mishra/student-directory/internal/types"
)

// CSVFileName is the default export file name.
const CSVFileName = "students.csv"

var csvHeader = []string{"Name", "Age", "Group", "Email", "Avatar"}

// WriteCSV writes records as CSV: a bare header row, then one row per
// record with every field double-quoted. Rows are separated by "\n" with
// no trailing newline.
func WriteCSV(w io.Writer, records []types.Student) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(strings.Join(csvHeader, ","))

	for _, r := range records {
		bw.WriteByte('\n')
		for i, v := range []string{r.Name, r.Age.String(), r.Group, r.Email, r.Avatar} {
			if i > 0 {
				bw.WriteByte(',')
			}
			bw.WriteByte('"')
			bw.WriteString(strings.ReplaceAll(v, `"`, `""`))
			bw.WriteByte('"')
		}
	}
	return bw.Flush()
}
