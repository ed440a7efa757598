package render

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
)

func TestEncodeSnapshot(t *testing.T) {
	s := mirrortypes.State{}
	s.Put(mirrortypes.Record{Key: "b_00000000.map", LastModified: time.UnixMilli(1_700_000_000_123), Size: 42})
	s.Put(mirrortypes.Record{Key: "a_00000000.map", LastModified: time.UnixMilli(5), Size: 0})

	data, err := EncodeSnapshot(s)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"a_00000000.map": {"date": 5, "size": 0},
		"b_00000000.map": {"date": 1700000000123, "size": 42}
	}`, string(data))

	var raw map[string]map[string]json.Number
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, json.Number("1700000000123"), raw["b_00000000.map"]["date"])
}

func TestDecodeSnapshot(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    mirrortypes.State
		wantErr bool
	}{
		{
			name:  "epoch millis",
			input: `{"a.map": {"date": 1700000000123, "size": 10}}`,
			want: mirrortypes.State{
				"a.map": {Key: "a.map", LastModified: time.UnixMilli(1_700_000_000_123).UTC(), Size: 10},
			},
		},
		{
			name:  "iso string",
			input: `{"a.map": {"date": "2024-06-07T08:09:10.500Z", "size": 10}}`,
			want: mirrortypes.State{
				"a.map": {Key: "a.map", LastModified: time.Date(2024, 6, 7, 8, 9, 10, 500_000_000, time.UTC), Size: 10},
			},
		},
		{
			name:  "non mirrored keys dropped",
			input: `{"a.map": {"date": 0, "size": 1}, "index.html": {"date": 0, "size": 1}}`,
			want: mirrortypes.State{
				"a.map": {Key: "a.map", LastModified: time.UnixMilli(0).UTC(), Size: 1},
			},
		},
		{
			name:  "empty object",
			input: `{}`,
			want:  mirrortypes.State{},
		},
		{name: "not json", input: `<html>`, wantErr: true},
		{name: "null", input: `null`, wantErr: true},
		{name: "array", input: `[]`, wantErr: true},
		{name: "bad date", input: `{"a.map": {"date": "yesterday", "size": 1}}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := DecodeSnapshot([]byte(tt.input), ".map")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSnapshotRoundTripPreservesMillis(t *testing.T) {
	s := mirrortypes.State{}
	s.Put(mirrortypes.Record{Key: "x.map", LastModified: time.UnixMilli(1_234_567_890_123).UTC(), Size: 7})

	data, err := EncodeSnapshot(s)
	require.NoError(t, err)
	got, err := DecodeSnapshot(data, ".map")
	require.NoError(t, err)
	assert.Equal(t, s, got)
}
