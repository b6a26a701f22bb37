package theme

import (
	"context"
	"sync"
	"testing"

	"github.com/Veraticus/fintrack/internal/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingStore remembers every write in order.
type recordingStore struct {
	*storage.MemoryPreferenceStore
	writes []string
	mu     sync.Mutex
}

func newRecordingStore() *recordingStore {
	return &recordingStore{MemoryPreferenceStore: storage.NewMemoryPreferenceStore()}
}

func (s *recordingStore) Set(ctx context.Context, key, value string) {
	s.mu.Lock()
	s.writes = append(s.writes, value)
	s.mu.Unlock()
	s.MemoryPreferenceStore.Set(ctx, key, value)
}

func (s *recordingStore) Writes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.writes...)
}

// switchable is an appearance source a test can flip.
type switchable struct {
	current Appearance
	calls   int
	mu      sync.Mutex
}

func (s *switchable) Appearance() Appearance {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.current
}

func (s *switchable) set(a Appearance) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = a
}

func TestResolver_IsDark(t *testing.T) {
	tests := []struct {
		name       string
		mode       Mode
		appearance Appearance
		want       bool
	}{
		{name: "light ignores light system", mode: ModeLight, appearance: AppearanceLight, want: false},
		{name: "light ignores dark system", mode: ModeLight, appearance: AppearanceDark, want: false},
		{name: "dark ignores light system", mode: ModeDark, appearance: AppearanceLight, want: true},
		{name: "dark ignores dark system", mode: ModeDark, appearance: AppearanceDark, want: true},
		{name: "auto follows light system", mode: ModeAuto, appearance: AppearanceLight, want: false},
		{name: "auto follows dark system", mode: ModeAuto, appearance: AppearanceDark, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			r := NewResolver(storage.NewMemoryPreferenceStore(), Static(tt.appearance))
			r.Load(ctx)
			require.NoError(t, r.SetMode(ctx, tt.mode))

			assert.Equal(t, tt.want, r.IsDark())

			resolved := r.Theme()
			assert.Equal(t, tt.want, resolved.IsDark)
			assert.Equal(t, tt.mode, resolved.Mode)
			if tt.want {
				assert.Equal(t, DarkPalette(), resolved.Palette)
			} else {
				assert.Equal(t, LightPalette(), resolved.Palette)
			}
		})
	}
}

func TestResolver_ToggleCycle(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	r := NewResolver(store, Static(AppearanceLight))
	r.Load(ctx)
	require.NoError(t, r.SetMode(ctx, ModeLight))

	var visited []Mode
	for i := 0; i < 3; i++ {
		visited = append(visited, r.Toggle(ctx))
	}

	assert.Equal(t, []Mode{ModeDark, ModeAuto, ModeLight}, visited)
	assert.Equal(t, []string{"light", "dark", "auto", "light"}, store.Writes(), "every change is saved")

	saved, ok := store.Get(ctx, PreferenceKey)
	require.True(t, ok)
	assert.Equal(t, "light", saved)
}

func TestResolver_NoWritesBeforeLoad(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	store.MemoryPreferenceStore.Set(ctx, PreferenceKey, "dark")

	r := NewResolver(store, Static(AppearanceLight))
	assert.Equal(t, ModeAuto, r.Mode(), "auto until loaded")
	assert.False(t, r.Loaded())

	r.Toggle(ctx)
	assert.Empty(t, store.Writes(), "the transient default must not overwrite the saved mode")

	assert.Equal(t, ModeDark, r.Load(ctx))
	assert.True(t, r.Loaded())
	assert.Equal(t, ModeDark, r.Mode())

	r.Toggle(ctx)
	assert.Equal(t, []string{"auto"}, store.Writes())
}

func TestResolver_Load(t *testing.T) {
	tests := []struct {
		name  string
		saved *string
		want  Mode
	}{
		{name: "nothing saved", saved: nil, want: ModeAuto},
		{name: "light", saved: ptr("light"), want: ModeLight},
		{name: "dark", saved: ptr("dark"), want: ModeDark},
		{name: "auto", saved: ptr("auto"), want: ModeAuto},
		{name: "garbage", saved: ptr("sepia"), want: ModeAuto},
		{name: "empty", saved: ptr(""), want: ModeAuto},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := storage.NewMemoryPreferenceStore()
			if tt.saved != nil {
				store.Set(ctx, PreferenceKey, *tt.saved)
			}
			r := NewResolver(store, Static(AppearanceDark))
			assert.Equal(t, tt.want, r.Load(ctx))
			assert.Equal(t, tt.want, r.Mode())
		})
	}
}

func TestResolver_SetModeRejectsUnknown(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	r := NewResolver(store, Static(AppearanceLight))
	r.Load(ctx)

	err := r.SetMode(ctx, Mode("sepia"))
	assert.ErrorIs(t, err, ErrInvalidMode)
	assert.Equal(t, ModeAuto, r.Mode())
	assert.Empty(t, store.Writes())
}

func TestResolver_ReadsAppearanceEveryCall(t *testing.T) {
	ctx := context.Background()
	system := &switchable{current: AppearanceLight}
	r := NewResolver(storage.NewMemoryPreferenceStore(), system)
	r.Load(ctx)

	assert.False(t, r.IsDark())
	system.set(AppearanceDark)
	assert.True(t, r.IsDark(), "auto must follow a live appearance change")
	assert.Equal(t, DarkPalette(), r.Palette())

	require.NoError(t, r.SetMode(ctx, ModeLight))
	calls := system.calls
	assert.False(t, r.IsDark())
	assert.Equal(t, calls, system.calls, "explicit modes do not consult the system")
}

func TestResolver_SurvivesStoreRestart(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryPreferenceStore()

	first := NewResolver(store, Static(AppearanceLight))
	first.Load(ctx)
	first.Toggle(ctx)

	second := NewResolver(store, Static(AppearanceLight))
	assert.Equal(t, ModeLight, second.Load(ctx))
}

func TestResolver_ConcurrentToggles(t *testing.T) {
	ctx := context.Background()
	store := newRecordingStore()
	r := NewResolver(store, Static(AppearanceDark))
	r.Load(ctx)

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r.Toggle(ctx)
			_ = r.Theme()
		}()
	}
	wg.Wait()

	// 30 toggles from auto is ten full cycles.
	assert.Equal(t, ModeAuto, r.Mode())
	writes := store.Writes()
	require.Len(t, writes, 30)
	assert.Equal(t, "auto", writes[len(writes)-1])
}

func ptr(s string) *string {
	return &s
}
