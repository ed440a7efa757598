package render

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
)

// snapshotEntry is one value of the snapshot object.
type snapshotEntry struct {
	Date snapshotTime `json:"date"`
	Size int64        `json:"size"`
}

// snapshotTime is written as epoch milliseconds and read from either epoch
// milliseconds or an ISO-8601 string.
type snapshotTime time.Time

func (t snapshotTime) MarshalJSON() ([]byte, error) {
	return strconv.AppendInt(nil, time.Time(t).UnixMilli(), 10), nil
}

func (t *snapshotTime) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*t = snapshotTime(time.Time{})
		return nil
	}

	if strings.HasPrefix(s, `"`) {
		var str string
		if err := json.Unmarshal(data, &str); err != nil {
			return err
		}
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05.000Z07:00", time.DateTime, time.DateOnly} {
			if parsed, err := time.Parse(layout, str); err == nil {
				*t = snapshotTime(parsed.UTC())
				return nil
			}
		}
		return fmt.Errorf("unrecognized date %q", str)
	}

	var ms json.Number
	if err := json.Unmarshal(data, &ms); err != nil {
		return fmt.Errorf("date must be epoch millis or ISO-8601: %w", err)
	}
	n, err := ms.Int64()
	if err != nil {
		f, ferr := ms.Float64()
		if ferr != nil {
			return fmt.Errorf("date must be epoch millis or ISO-8601: %w", err)
		}
		n = int64(f)
	}
	*t = snapshotTime(time.UnixMilli(n).UTC())
	return nil
}

// EncodeSnapshot serializes state as {"key": {"date": millis, "size": n}}.
// Keys are emitted in lexical order.
func EncodeSnapshot(state mirrortypes.State) ([]byte, error) {
	out := make(map[string]snapshotEntry, len(state))
	for k, rec := range state {
		out[k] = snapshotEntry{Date: snapshotTime(rec.LastModified), Size: rec.Size}
	}
	data, err := json.Marshal(out)
	if err != nil {
		return nil, fmt.Errorf("encoding snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a snapshot. Keys not ending in ext are dropped so the
// state only ever holds mirrored files.
func DecodeSnapshot(data []byte, ext string) (mirrortypes.State, error) {
	var in map[string]snapshotEntry
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}
	if in == nil {
		return nil, fmt.Errorf("decoding snapshot: not a JSON object")
	}

	state := make(mirrortypes.State, len(in))
	for k, e := range in {
		if ext != "" && !strings.HasSuffix(k, ext) {
			continue
		}
		state[k] = mirrortypes.Record{
			Key:          k,
			LastModified: time.Time(e.Date),
			Size:         e.Size,
		}
	}
	return state, nil
}
