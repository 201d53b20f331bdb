package document

import "strings"

// RecordSet is the document parsed into records, in document order.
type RecordSet []Record

// ParseRecords splits raw into records. Empty lines are dropped and a
// trailing carriage return is stripped from each line. It never fails.
func ParseRecords(raw string) RecordSet {
	if raw == "" {
		return RecordSet{}
	}
	lines := strings.Split(raw, "\n")
	records := make(RecordSet, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSuffix(line, "\r")
		if line == "" {
			continue
		}
		records = append(records, ParseRecord(line))
	}
	return records
}

// Serialize joins the records' lines with "\n".
func (rs RecordSet) Serialize() string {
	lines := make([]string, len(rs))
	for i, r := range rs {
		lines[i] = r.Line()
	}
	return strings.Join(lines, "\n")
}

// Upsert returns a copy of rs where every record matching target is replaced
// by rec, in place. A target that matches nothing leaves the set unchanged.
// With a nil target rec is appended.
func (rs RecordSet) Upsert(target *RecordKey, rec Record) RecordSet {
	out := make(RecordSet, len(rs), len(rs)+1)
	copy(out, rs)
	if target == nil {
		return append(out, rec)
	}
	for i := range out {
		if out[i].Key() == *target {
			out[i] = rec
		}
	}
	return out
}

// Delete returns a copy of rs without any record matching target.
func (rs RecordSet) Delete(target RecordKey) RecordSet {
	out := make(RecordSet, 0, len(rs))
	for _, r := range rs {
		if r.Key() != target {
			out = append(out, r)
		}
	}
	return out
}
