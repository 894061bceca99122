package servicediscovery

import (
	"bufio"
	"io"
	"strings"
)

// Record is one well-formed line of command output: exactly two
// whitespace-separated tokens.
type Record struct {
	First  string
	Second string
}

// Name is the composite service name, "first-second".
func (r Record) Name() string {
	return r.First + "-" + r.Second
}

// ParseRecords reads r to end of stream. Lines that do not split into
// exactly two tokens are dropped; their count is returned for diagnostics.
func ParseRecords(r io.Reader) ([]Record, int, error) {
	var (
		records []Record
		dropped int
	)

	reader := bufio.NewReader(r)
	for {
		line, err := reader.ReadString('\n')
		if line != "" {
			if record, ok := parseLine(line); ok {
				records = append(records, record)
			} else {
				dropped++
			}
		}
		if err == io.EOF {
			return records, dropped, nil
		}
		if err != nil {
			return records, dropped, err
		}
	}
}

func parseLine(line string) (Record, bool) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return Record{}, false
	}
	return Record{First: fields[0], Second: fields[1]}, true
}
