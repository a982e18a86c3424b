package audio

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmylchreest/flashui/internal/config"
	"github.com/jmylchreest/flashui/internal/model"
	"github.com/jmylchreest/flashui/internal/presenter"
)

type fakePlayer struct {
	mu          sync.Mutex
	played      []string
	preloaded   []string
	invalidated []string
	volume      float64
	cleared     int
	closed      bool
}

func (f *fakePlayer) Play(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.played = append(f.played, path)
	return nil
}

func (f *fakePlayer) Preload(path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.preloaded = append(f.preloaded, path)
	return nil
}

func (f *fakePlayer) SetVolume(volume float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.volume = volume
}

func (f *fakePlayer) InvalidateCache(path string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, path)
}

func (f *fakePlayer) ClearCache() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
}

func (f *fakePlayer) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
}

func (f *fakePlayer) snapshot() (played, invalidated []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.played...), append([]string(nil), f.invalidated...)
}

func soundConfig(t *testing.T) (*config.Config, string, string) {
	t.Helper()
	dir := t.TempDir()
	info := filepath.Join(dir, "info.wav")
	errSound := filepath.Join(dir, "error.ogg")
	require.NoError(t, os.WriteFile(info, []byte("RIFF"), 0644))
	require.NoError(t, os.WriteFile(errSound, []byte("OggS"), 0644))

	cfg := config.DefaultConfig()
	cfg.Audio.Enabled = true
	cfg.Audio.Volume = 50
	cfg.Audio.Sounds = config.SoundConfig{
		Info:    info,
		Error:   errSound,
		Warning: filepath.Join(dir, "missing.wav"),
	}
	return cfg, info, errSound
}

func TestManager_ResolvesSounds(t *testing.T) {
	cfg, info, errSound := soundConfig(t)
	player := &fakePlayer{}
	m := NewManagerWithPlayer(cfg, player, nil)

	path, ok := m.SoundFor(model.CategoryInfo)
	assert.True(t, ok)
	assert.Equal(t, info, path)

	path, ok = m.SoundFor(model.CategoryError)
	assert.True(t, ok)
	assert.Equal(t, errSound, path)

	_, ok = m.SoundFor(model.CategoryWarning)
	assert.False(t, ok, "missing file should be skipped")

	_, ok = m.SoundFor(model.CategorySuccess)
	assert.False(t, ok, "unconfigured category has no sound")

	assert.InDelta(t, 0.5, player.volume, 0.001)
}

func TestManager_PlayForCategory(t *testing.T) {
	cfg, info, _ := soundConfig(t)
	player := &fakePlayer{}
	m := NewManagerWithPlayer(cfg, player, nil)

	require.NoError(t, m.PlayForCategory(model.CategoryInfo))
	require.NoError(t, m.PlayForCategory(model.CategorySuccess))

	played, _ := player.snapshot()
	assert.Equal(t, []string{info}, played)
}

func TestManager_Disabled(t *testing.T) {
	cfg, _, _ := soundConfig(t)
	cfg.Audio.Enabled = false
	player := &fakePlayer{}
	m := NewManagerWithPlayer(cfg, player, nil)

	m.Start()
	require.NoError(t, m.PlayForCategory(model.CategoryInfo))

	played, _ := player.snapshot()
	assert.Empty(t, played)
	assert.Empty(t, player.preloaded)
}

func TestManager_HandleEvent(t *testing.T) {
	cfg, info, errSound := soundConfig(t)
	player := &fakePlayer{}
	m := NewManagerWithPlayer(cfg, player, nil)

	m.HandleEvent(presenter.Event{Kind: presenter.EventTransition, Category: model.CategoryInfo,
		From: model.StatePending, To: model.StateShown})
	m.HandleEvent(presenter.Event{Kind: presenter.EventTransition, Category: model.CategoryError,
		From: model.StateShown, To: model.StateHiding})
	m.HandleEvent(presenter.Event{Kind: presenter.EventMove, Category: model.CategoryError,
		From: model.StateShown, To: model.StateShown})
	m.HandleEvent(presenter.Event{Kind: presenter.EventTransition, Category: model.CategoryError,
		From: model.StatePending, To: model.StateShown})

	played, _ := player.snapshot()
	assert.Equal(t, []string{info, errSound}, played)
}

func TestManager_UpdateConfig(t *testing.T) {
	cfg, _, _ := soundConfig(t)
	player := &fakePlayer{}
	m := NewManagerWithPlayer(cfg, player, nil)
	t.Cleanup(m.Stop)

	updated := config.DefaultConfig()
	updated.Audio.Enabled = true
	updated.Audio.Volume = 100
	m.UpdateConfig(updated)

	assert.Equal(t, 1, player.cleared)
	assert.InDelta(t, 1.0, player.volume, 0.001)
	_, ok := m.SoundFor(model.CategoryInfo)
	assert.False(t, ok)
}

func TestManager_StartPreloadsAndWatches(t *testing.T) {
	cfg, info, _ := soundConfig(t)
	player := &fakePlayer{}
	m := NewManagerWithPlayer(cfg, player, nil)

	m.Start()
	t.Cleanup(m.Stop)

	assert.Len(t, player.preloaded, 2)
	assert.Equal(t, 2, m.watcher.Paths())

	require.NoError(t, os.WriteFile(info, []byte("RIFF changed"), 0644))
	require.Eventually(t, func() bool {
		_, invalidated := player.snapshot()
		return len(invalidated) > 0 && invalidated[0] == info
	}, 2*time.Second, 10*time.Millisecond)
}

func TestManager_Stop(t *testing.T) {
	player := &fakePlayer{}
	m := NewManagerWithPlayer(nil, player, nil)
	m.Stop()
	assert.True(t, player.closed)
}

func TestDecoder(t *testing.T) {
	for _, path := range []string{"a.wav", "b.OGG", "c.oga", "d.mp3"} {
		_, err := decoder(path)
		assert.NoError(t, err, path)
	}

	_, err := decoder("e.flac")
	assert.ErrorContains(t, err, "unsupported audio format")
}

func TestVolumeToExponent(t *testing.T) {
	assert.InDelta(t, -1.0, volumeToExponent(0.5), 0.0001)
	assert.InDelta(t, -2.0, volumeToExponent(0.25), 0.0001)
	assert.InDelta(t, 0.0, volumeToExponent(1), 0.0001)
	assert.Equal(t, -10.0, volumeToExponent(0))
}

func TestPlayer_SetVolumeClamps(t *testing.T) {
	p := NewPlayer(nil)
	p.SetVolume(1.5)
	assert.Equal(t, 1.0, p.Volume())
	p.SetVolume(-1)
	assert.Equal(t, 0.0, p.Volume())
}

func TestPlayer_MissingFile(t *testing.T) {
	p := NewPlayer(nil)
	err := p.Play(filepath.Join(t.TempDir(), "nope.wav"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.NoError(t, p.Play(""))
}
