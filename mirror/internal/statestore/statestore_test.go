package statestore

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/errors"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/mirror/mirrortypes"
	"github.com/input-output-hk/catalyst-forge-libs/mapmirror/store"
)

// failingStore wraps a memory store and fails selected operations.
type failingStore struct {
	*store.Local
	listErr error
	getErr  error
	putErr  error
	lists   int
}

func (f *failingStore) List(ctx context.Context, token string, pageSize int) (*store.ListPage, error) {
	f.lists++
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.Local.List(ctx, token, pageSize)
}

func (f *failingStore) Get(ctx context.Context, key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.Local.Get(ctx, key)
}

func (f *failingStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if f.putErr != nil {
		return f.putErr
	}
	return f.Local.Put(ctx, key, data, contentType)
}

func seed(t *testing.T, objects store.ObjectStore, keys ...string) {
	t.Helper()
	for _, k := range keys {
		require.NoError(t, objects.Put(context.Background(), k, []byte(k), ""))
	}
}

func TestStore_Load(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		setup      func(t *testing.T, objects *failingStore)
		wantSource Source
		wantKeys   []string
		wantErr    bool
	}{
		{
			name: "snapshot",
			setup: func(t *testing.T, objects *failingStore) {
				seed(t, objects, "stored_00000000.map")
				require.NoError(t, objects.Put(ctx, "maps.json",
					[]byte(`{"a_00000000.map":{"date":1700000000000,"size":3},"notes.txt":{"date":0,"size":1}}`), ""))
			},
			wantSource: SourceSnapshot,
			wantKeys:   []string{"a_00000000.map"},
		},
		{
			name: "missing snapshot enumerates",
			setup: func(t *testing.T, objects *failingStore) {
				seed(t, objects, "a_00000000.map", "b_00000000.map", "index.html")
			},
			wantSource: SourceEnumeration,
			wantKeys:   []string{"a_00000000.map", "b_00000000.map"},
		},
		{
			name: "corrupt snapshot enumerates",
			setup: func(t *testing.T, objects *failingStore) {
				seed(t, objects, "a_00000000.map")
				require.NoError(t, objects.Put(ctx, "maps.json", []byte(`{not json`), ""))
			},
			wantSource: SourceEnumeration,
			wantKeys:   []string{"a_00000000.map"},
		},
		{
			name: "snapshot read error enumerates",
			setup: func(t *testing.T, objects *failingStore) {
				seed(t, objects, "a_00000000.map")
				objects.getErr = fmt.Errorf("connection reset")
			},
			wantSource: SourceEnumeration,
			wantKeys:   []string{"a_00000000.map"},
		},
		{
			name: "enumeration failure",
			setup: func(_ *testing.T, objects *failingStore) {
				objects.listErr = fmt.Errorf("access denied")
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			objects := &failingStore{Local: store.NewMemory()}
			tt.setup(t, objects)

			state, source, err := New(objects).Load(ctx)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.HasCode(err, errors.CodeStateLoadFailed))
				assert.True(t, errors.IsFatal(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.wantSource, source)
			assert.ElementsMatch(t, tt.wantKeys, state.Keys().Sorted())
		})
	}
}

func TestStore_EnumeratePaginates(t *testing.T) {
	ctx := context.Background()
	objects := &failingStore{Local: store.NewMemory()}

	var keys []string
	for i := range 7 {
		keys = append(keys, fmt.Sprintf("m%02d_00000000.map", i))
	}
	seed(t, objects, keys...)
	seed(t, objects, "sync-count.svg")

	state, err := New(objects, WithPageSize(3)).Enumerate(ctx)
	require.NoError(t, err)

	assert.Equal(t, keys, state.Keys().Sorted())
	assert.Equal(t, 3, objects.lists)
	assert.Equal(t, int64(len(keys[0])), state[keys[0]].Size)
}

func TestStore_EnumerateCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	objects := &failingStore{Local: store.NewMemory()}
	seed(t, objects, "a_00000000.map")

	_, err := New(objects).Enumerate(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, objects.lists)
}

func TestStore_SaveRoundTrip(t *testing.T) {
	ctx := context.Background()
	objects := &failingStore{Local: store.NewMemory()}
	s := New(objects, WithSnapshotKey("state/maps.json"))

	when := time.UnixMilli(1700000000123).UTC()
	state := mirrortypes.State{}
	state.Put(mirrortypes.Record{Key: "a_00000000.map", LastModified: when, Size: 42})

	require.NoError(t, s.Save(ctx, state))

	loaded, source, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, SourceSnapshot, source)
	require.Contains(t, loaded, "a_00000000.map")
	assert.True(t, when.Equal(loaded["a_00000000.map"].LastModified))
	assert.Equal(t, int64(42), loaded["a_00000000.map"].Size)
}

func TestStore_SaveFailure(t *testing.T) {
	objects := &failingStore{Local: store.NewMemory(), putErr: fmt.Errorf("bucket gone")}

	err := New(objects).Save(context.Background(), mirrortypes.State{})
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.CodeStatePersistFailed))
	assert.Contains(t, err.Error(), "bucket gone")
}
