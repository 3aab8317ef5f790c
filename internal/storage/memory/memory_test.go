package memory

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aanand-mishra/students-dashboard/internal/storage"
	"github.com/aanand-mishra/students-dashboard/internal/types"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seed() []types.Student {
	return []types.Student{
		{ID: 1, Name: "Alice", Email: "alice@uni.edu", Phone: "1", Department: "CS", Semester: 2, CGPA: 3.8, Attendance: 90, Status: types.StatusActive},
		{ID: 2, Name: "Bob", Email: "bob@uni.edu", Phone: "2", Department: "EE", Semester: 5, CGPA: 3.2, Attendance: 60, Status: types.StatusInactive},
	}
}

func staticSource(records []types.Student) storage.Source {
	return storage.SourceFunc(func(context.Context) ([]types.Student, error) {
		return records, nil
	})
}

func loadedStore(t *testing.T, opts Options) *Store {
	t.Helper()
	opts.Logger = quietLogger()
	s := New(staticSource(seed()), opts)
	require.NoError(t, s.Load(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func carl() types.Student {
	return types.Student{
		Name: "Carl", Email: "carl@uni.edu", Phone: "3", Department: "ME",
		Semester: 3, CGPA: 2.9, Attendance: 75, Status: types.StatusActive,
	}
}

func TestNewStoreIsPendingAndEmpty(t *testing.T) {
	s := New(staticSource(seed()), Options{Logger: quietLogger()})

	snap := s.Snapshot()
	assert.True(t, snap.Loading())
	assert.Equal(t, storage.LoadPending, snap.Status)
	assert.Zero(t, snap.Len())
	assert.NotNil(t, snap.Records)
}

func TestLoadPopulatesAndClearsLoading(t *testing.T) {
	s := loadedStore(t, Options{})

	snap := s.Snapshot()
	assert.False(t, snap.Loading())
	assert.Equal(t, storage.LoadReady, snap.Status)
	assert.Equal(t, seed(), snap.Records)
	assert.NoError(t, snap.Err)
}

func TestLoadTwiceIsRejected(t *testing.T) {
	s := loadedStore(t, Options{})
	assert.ErrorIs(t, s.Load(context.Background()), storage.ErrAlreadyLoaded)
}

func TestLoadFailureIsObservableAndRetryable(t *testing.T) {
	fail := true
	source := storage.SourceFunc(func(context.Context) ([]types.Student, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return seed(), nil
	})
	s := New(source, Options{Logger: quietLogger()})

	var statuses []storage.LoadStatus
	s.Subscribe(func(snap storage.Snapshot, change storage.Change) {
		assert.Equal(t, storage.OpLoad, change.Op)
		statuses = append(statuses, snap.Status)
	})

	err := s.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")

	snap := s.Snapshot()
	assert.True(t, snap.Loading())
	assert.Equal(t, storage.LoadFailed, snap.Status)
	require.Error(t, snap.Err)
	assert.Zero(t, snap.Len())

	fail = false
	require.NoError(t, s.Load(context.Background()))
	assert.Equal(t, storage.LoadReady, s.Snapshot().Status)
	assert.Equal(t, 2, s.Snapshot().Len())
	assert.Equal(t, []storage.LoadStatus{storage.LoadFailed, storage.LoadReady}, statuses)
}

func TestLoadWhileInFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	source := storage.SourceFunc(func(context.Context) ([]types.Student, error) {
		close(entered)
		<-release
		return seed(), nil
	})
	s := New(source, Options{Logger: quietLogger()})

	done := make(chan error, 1)
	go func() { done <- s.Load(context.Background()) }()

	<-entered
	assert.ErrorIs(t, s.Load(context.Background()), storage.ErrLoadInProgress)
	assert.True(t, s.Snapshot().Loading())

	close(release)
	require.NoError(t, <-done)
	assert.False(t, s.Snapshot().Loading())
}

func TestLoadRejectsMalformedRecords(t *testing.T) {
	tests := []struct {
		name    string
		records []types.Student
	}{
		{"duplicate id", []types.Student{
			{ID: 1, Name: "A", Status: types.StatusActive},
			{ID: 1, Name: "B", Status: types.StatusActive},
		}},
		{"zero id", []types.Student{{ID: 0, Name: "A", Status: types.StatusActive}}},
		{"unknown status", []types.Student{{ID: 1, Name: "A", Status: "graduated"}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(staticSource(tt.records), Options{Logger: quietLogger()})
			err := s.Load(context.Background())
			assert.True(t, storage.IsMalformed(err))
			assert.Equal(t, storage.LoadFailed, s.Snapshot().Status)
		})
	}
}

func TestAddThenGetReturnsCandidateWithID(t *testing.T) {
	s := loadedStore(t, Options{})

	candidate := carl()
	id, err := s.Add(candidate)
	require.NoError(t, err)

	got, ok := s.Get(id)
	require.True(t, ok)

	candidate.ID = id
	assert.Equal(t, candidate, got)
	assert.Equal(t, 3, s.Snapshot().Len())
}

func TestAddAssignsIDsAboveLoadedMax(t *testing.T) {
	records := []types.Student{{ID: 41, Name: "A", Status: types.StatusActive}}
	s := New(staticSource(records), Options{Logger: quietLogger()})
	require.NoError(t, s.Load(context.Background()))

	id, err := s.Add(carl())
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestAddRapidSuccessionYieldsUniqueIDs(t *testing.T) {
	s := loadedStore(t, Options{})

	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		id, err := s.Add(carl())
		require.NoError(t, err)
		require.False(t, seen[id], "duplicate id %d", id)
		seen[id] = true
	}
}

func TestIDsAreNotReusedAfterDelete(t *testing.T) {
	s := loadedStore(t, Options{})

	id, err := s.Add(carl())
	require.NoError(t, err)
	require.NoError(t, s.Delete(id))

	next, err := s.Add(carl())
	require.NoError(t, err)
	assert.Greater(t, next, id)
}

func TestAddIgnoresCallerIDAndDefaultsStatus(t *testing.T) {
	s := loadedStore(t, Options{})

	candidate := carl()
	candidate.ID = 1 // already taken
	candidate.Status = ""

	id, err := s.Add(candidate)
	require.NoError(t, err)
	assert.NotEqual(t, int64(1), id)

	got, _ := s.Get(id)
	assert.Equal(t, types.StatusActive, got.Status)
}

func TestAddDoesNotValidate(t *testing.T) {
	s := loadedStore(t, Options{})

	candidate := carl()
	candidate.Semester = 9

	id, err := s.Add(candidate)
	require.NoError(t, err)

	got, ok := s.Get(id)
	require.True(t, ok)
	assert.Equal(t, 9, got.Semester)
}

func TestUpdateChangesOnlySuppliedFields(t *testing.T) {
	s := loadedStore(t, Options{})
	before := s.Snapshot()

	cgpa := 3.95
	status := types.StatusInactive
	require.NoError(t, s.Update(1, types.StudentPatch{CGPA: &cgpa, Status: &status}))

	got, ok := s.Get(1)
	require.True(t, ok)

	want := before.Records[0]
	want.CGPA = cgpa
	want.Status = status
	assert.Equal(t, want, got)

	other, _ := s.Get(2)
	assert.Equal(t, before.Records[1], other)
}

func TestDeleteRemovesExactlyOne(t *testing.T) {
	s := loadedStore(t, Options{})

	require.NoError(t, s.Delete(1))

	_, ok := s.Get(1)
	assert.False(t, ok)
	assert.Equal(t, 1, s.Snapshot().Len())
}

func TestMissingIDIsSilentByDefault(t *testing.T) {
	s := loadedStore(t, Options{})

	notified := 0
	s.Subscribe(func(storage.Snapshot, storage.Change) { notified++ })
	before := s.Snapshot()

	name := "Ghost"
	assert.NoError(t, s.Update(99, types.StudentPatch{Name: &name}))
	assert.NoError(t, s.Delete(99))

	assert.Zero(t, notified)
	assert.Equal(t, before, s.Snapshot())
}

func TestMissingIDInStrictMode(t *testing.T) {
	s := loadedStore(t, Options{Strict: true})

	name := "Ghost"
	assert.True(t, storage.IsNotFound(s.Update(99, types.StudentPatch{Name: &name})))
	assert.True(t, storage.IsNotFound(s.Delete(99)))
}

func TestSnapshotIsIsolatedFromCaller(t *testing.T) {
	s := loadedStore(t, Options{})

	snap := s.Snapshot()
	snap.Records[0].Name = "Mallory"

	got, _ := s.Get(1)
	assert.Equal(t, "Alice", got.Name)
}

func TestSubscribersSeeEveryMutationSynchronously(t *testing.T) {
	s := loadedStore(t, Options{})

	var changes []storage.Change
	var sizes []int
	var versions []uint64
	unsubscribe := s.Subscribe(func(snap storage.Snapshot, change storage.Change) {
		changes = append(changes, change)
		sizes = append(sizes, snap.Len())
		versions = append(versions, snap.Version)
	})

	id, err := s.Add(carl())
	require.NoError(t, err)
	require.Len(t, changes, 1, "listener must run before Add returns")

	name := "Carla"
	require.NoError(t, s.Update(id, types.StudentPatch{Name: &name}))
	require.NoError(t, s.Delete(id))

	assert.Equal(t, []storage.Change{
		{Op: storage.OpAdd, ID: id},
		{Op: storage.OpUpdate, ID: id},
		{Op: storage.OpDelete, ID: id},
	}, changes)
	assert.Equal(t, []int{3, 3, 2}, sizes)
	assert.IsIncreasing(t, versions)

	unsubscribe()
	unsubscribe()
	_, err = s.Add(carl())
	require.NoError(t, err)
	assert.Len(t, changes, 3)
}

func TestListenersRunInRegistrationOrder(t *testing.T) {
	s := loadedStore(t, Options{})

	var order []string
	s.Subscribe(func(storage.Snapshot, storage.Change) { order = append(order, "first") })
	s.Subscribe(func(storage.Snapshot, storage.Change) { order = append(order, "second") })

	_, err := s.Add(carl())
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second"}, order)
}

func TestListenerCanReadStore(t *testing.T) {
	s := loadedStore(t, Options{})

	var seen bool
	s.Subscribe(func(_ storage.Snapshot, change storage.Change) {
		_, seen = s.Get(change.ID)
	})

	_, err := s.Add(carl())
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestClosedStoreRejectsMutations(t *testing.T) {
	s := loadedStore(t, Options{})

	notified := false
	s.Subscribe(func(storage.Snapshot, storage.Change) { notified = true })
	require.NoError(t, s.Close())

	_, err := s.Add(carl())
	assert.ErrorIs(t, err, storage.ErrClosed)
	assert.ErrorIs(t, s.Delete(1), storage.ErrClosed)
	assert.ErrorIs(t, s.Load(context.Background()), storage.ErrClosed)
	assert.False(t, notified)

	// reads keep working
	assert.Equal(t, 2, s.Snapshot().Len())
}
