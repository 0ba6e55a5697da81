package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	calls []string
}

type fakeService struct {
	name     string
	deps     []string
	initErr  error
	startErr error
	rec      *recorder
}

func (f *fakeService) Name() string           { return f.name }
func (f *fakeService) Dependencies() []string { return f.deps }

func (f *fakeService) Init(args ...any) error {
	f.rec.calls = append(f.rec.calls, "init:"+f.name)
	return f.initErr
}

func (f *fakeService) Start() error {
	f.rec.calls = append(f.rec.calls, "start:"+f.name)
	return f.startErr
}

func (f *fakeService) Stop() error {
	f.rec.calls = append(f.rec.calls, "stop:"+f.name)
	return nil
}

func TestHub_DependencyOrder(t *testing.T) {
	rec := &recorder{}
	h := NewHub()
	require.NoError(t, h.Register(&fakeService{name: "output", deps: []string{"terminal"}, rec: rec}))
	require.NoError(t, h.Register(&fakeService{name: "terminal", rec: rec}))
	require.NoError(t, h.Register(&fakeService{name: "scene", rec: rec}))

	require.NoError(t, h.InitAll())
	require.NoError(t, h.StartAll())
	h.StopAll()

	assert.Equal(t, []string{"scene", "terminal", "output"}, h.Order())
	assert.Equal(t, []string{
		"init:scene", "init:terminal", "init:output",
		"start:scene", "start:terminal", "start:output",
		"stop:output", "stop:terminal", "stop:scene",
	}, rec.calls)
}

func TestHub_StopAllIdempotent(t *testing.T) {
	rec := &recorder{}
	h := NewHub()
	require.NoError(t, h.Register(&fakeService{name: "a", rec: rec}))
	require.NoError(t, h.InitAll())
	require.NoError(t, h.StartAll())

	h.StopAll()
	h.StopAll()
	assert.Equal(t, []string{"init:a", "start:a", "stop:a"}, rec.calls)
}

func TestHub_DuplicateRegister(t *testing.T) {
	h := NewHub()
	require.NoError(t, h.Register(&fakeService{name: "a", rec: &recorder{}}))
	assert.Error(t, h.Register(&fakeService{name: "a", rec: &recorder{}}))
}

func TestHub_MissingDependency(t *testing.T) {
	h := NewHub()
	require.NoError(t, h.Register(&fakeService{name: "output", deps: []string{"terminal"}, rec: &recorder{}}))
	err := h.InitAll()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unregistered service: terminal")
}

func TestHub_Cycle(t *testing.T) {
	h := NewHub()
	require.NoError(t, h.Register(&fakeService{name: "a", deps: []string{"b"}, rec: &recorder{}}))
	require.NoError(t, h.Register(&fakeService{name: "b", deps: []string{"a"}, rec: &recorder{}}))
	assert.ErrorContains(t, h.InitAll(), "circular dependency")
}

func TestHub_InitFailureRollsBack(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	h := NewHub()
	require.NoError(t, h.Register(&fakeService{name: "a", rec: rec}))
	require.NoError(t, h.Register(&fakeService{name: "b", deps: []string{"a"}, initErr: boom, rec: rec}))

	err := h.InitAll()
	require.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"init:a", "init:b", "stop:a"}, rec.calls)

	h.StopAll()
	assert.Len(t, rec.calls, 3, "rolled back services are not stopped twice")
}

func TestHub_StartFailureStopsInitialized(t *testing.T) {
	rec := &recorder{}
	boom := errors.New("boom")
	h := NewHub()
	require.NoError(t, h.Register(&fakeService{name: "a", rec: rec}))
	require.NoError(t, h.Register(&fakeService{name: "b", deps: []string{"a"}, startErr: boom, rec: rec}))

	require.NoError(t, h.InitAll())
	require.ErrorIs(t, h.StartAll(), boom)
	assert.Equal(t, []string{"init:a", "init:b", "start:a", "start:b", "stop:b", "stop:a"}, rec.calls)
}
