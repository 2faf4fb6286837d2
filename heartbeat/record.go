package heartbeat

import (
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	// FieldDelimiter separates the fields of a heartbeat record.
	FieldDelimiter = "|"

	// StatusConnected is the only status token treated as connected.
	StatusConnected = "CONNECTED"

	// StatusLegacyOrMalformed is assigned to records with fewer than two fields.
	StatusLegacyOrMalformed = "LEGACY_OR_MALFORMED"

	maxFields = 4
)

// Kind tags how a record was decoded.
type Kind int

const (
	// KindRecord is a record with at least timestamp and status.
	KindRecord Kind = iota
	// KindMalformed is a legacy or unparseable record degraded to a
	// maximally unhealthy value.
	KindMalformed
)

func (k Kind) String() string {
	switch k {
	case KindRecord:
		return "record"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Record is the decoded content of a heartbeat file. Timestamps are seconds
// since the Unix epoch.
type Record struct {
	Kind        Kind
	Timestamp   float64
	Status      string
	Connected   bool
	ReaderAlive bool
	LastRx      float64
}

// Decode parses heartbeat content. It never fails: content with fewer than
// two fields, or with an unusable timestamp, yields a KindMalformed record
// stamped with modTime.
//
// Missing trailing fields default for compatibility with older writers:
// readerAlive defaults to true and lastRxTimestamp to timestamp. Fields past
// the fourth are ignored.
func Decode(content string, modTime time.Time) Record {
	fields := strings.Split(strings.TrimSpace(content), FieldDelimiter)
	if len(fields) < 2 {
		return malformed(modTime)
	}
	if len(fields) > maxFields {
		fields = fields[:maxFields]
	}

	ts, ok := parseSeconds(fields[0])
	if !ok {
		return malformed(modTime)
	}

	status := strings.TrimSpace(fields[1])
	rec := Record{
		Kind:        KindRecord,
		Timestamp:   ts,
		Status:      status,
		Connected:   status == StatusConnected,
		ReaderAlive: true,
		LastRx:      ts,
	}

	if len(fields) >= 3 {
		rec.ReaderAlive = strings.EqualFold(strings.TrimSpace(fields[2]), "true")
	}
	if len(fields) >= 4 {
		if rx, ok := parseSeconds(fields[3]); ok {
			rec.LastRx = rx
		}
	}

	return rec
}

// Load reads and decodes the heartbeat file at path.
func Load(path string) (Record, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, fmt.Errorf("%w: %s: %v", ErrUnreadable, path, err)
	}

	return Decode(string(data), info.ModTime()), nil
}

func malformed(modTime time.Time) Record {
	return Record{
		Kind:        KindMalformed,
		Timestamp:   unixSeconds(modTime),
		Status:      StatusLegacyOrMalformed,
		Connected:   false,
		ReaderAlive: false,
		LastRx:      0,
	}
}

func parseSeconds(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsInf(v, 0) || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

func unixSeconds(t time.Time) float64 {
	return float64(t.Unix()) + float64(t.Nanosecond())/float64(time.Second)
}
