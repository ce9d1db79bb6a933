package timex

import "time"

// StampLayout is the fixed-width, second-precision UTC layout used for
// updated_at and client_updated_at values on the wire and in both stores.
// Because every stamp has the same width and is zero-padded, lexicographic
// order equals chronological order, which is what the change-log cursor and
// the last-write-wins comparison rely on.
const StampLayout = "2006-01-02T15:04:05Z"

// Stamp formats t as a sync timestamp.
func Stamp(t time.Time) string {
	return t.UTC().Truncate(time.Second).Format(StampLayout)
}

// ParseStamp parses a sync timestamp produced by Stamp.
func ParseStamp(s string) (time.Time, error) {
	return time.Parse(StampLayout, s)
}
