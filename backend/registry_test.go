package backend

import (
	"errors"
	"slices"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/sprite/gpucore"
)

type fakeBackend struct {
	name   string
	closed bool
}

func (b *fakeBackend) Name() string           { return b.name }
func (b *fakeBackend) Device() gpucore.Device { return nil }
func (b *fakeBackend) Close()                 { b.closed = true }
func (b *fakeBackend) NewSurface(int, int, gputypes.TextureFormat) (gpucore.Surface, error) {
	return nil, errors.New("not supported")
}

// withRegistry runs fn against an empty registry and restores the
// previous registry afterwards.
func withRegistry(t *testing.T, fn func()) {
	t.Helper()
	registryMu.Lock()
	saved := factories
	factories = make(map[string]Factory)
	registryMu.Unlock()
	defer func() {
		registryMu.Lock()
		factories = saved
		registryMu.Unlock()
	}()
	fn()
}

func TestRegistry(t *testing.T) {
	withRegistry(t, func() {
		if _, err := OpenDefault(); !errors.Is(err, ErrBackendNotAvailable) {
			t.Errorf("expected ErrBackendNotAvailable from empty registry, got %v", err)
		}

		Register("zeta", func() (Backend, error) { return &fakeBackend{name: "zeta"}, nil })
		Register("alpha", func() (Backend, error) { return &fakeBackend{name: "alpha"}, nil })
		if got := Available(); !slices.Equal(got, []string{"alpha", "zeta"}) {
			t.Errorf("expected sorted names, got %v", got)
		}
		if !IsRegistered("zeta") || IsRegistered("missing") {
			t.Error("IsRegistered mismatch")
		}

		b, err := Open("zeta")
		if err != nil || b.Name() != "zeta" {
			t.Fatalf("Open(zeta) = %v, %v", b, err)
		}
		if _, err := Open("missing"); !errors.Is(err, ErrBackendNotAvailable) {
			t.Errorf("expected ErrBackendNotAvailable, got %v", err)
		}

		b, err = OpenDefault()
		if err != nil || b.Name() != "alpha" {
			t.Errorf("expected alpha without a priority backend, got %v, %v", b, err)
		}

		Register(Noop, func() (Backend, error) { return &fakeBackend{name: Noop}, nil })
		if b, _ := OpenDefault(); b.Name() != Noop {
			t.Errorf("expected %s by priority, got %s", Noop, b.Name())
		}

		Unregister(Noop)
		if IsRegistered(Noop) {
			t.Error("expected Noop unregistered")
		}
	})
}

func TestOpenDefault_FallsBack(t *testing.T) {
	withRegistry(t, func() {
		failure := errors.New("no adapter")
		Register(Noop, func() (Backend, error) { return nil, failure })
		Register("other", func() (Backend, error) { return &fakeBackend{name: "other"}, nil })

		b, err := OpenDefault()
		if err != nil || b.Name() != "other" {
			t.Fatalf("expected fallback to other, got %v, %v", b, err)
		}

		Unregister("other")
		if _, err := OpenDefault(); !errors.Is(err, failure) {
			t.Errorf("expected the factory error, got %v", err)
		}
	})
}
