package jobs

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/portraitforge/genjobs/internal/docmerge"
)

func TestStore_CreateGetUpdate(t *testing.T) {
	s := NewStore()
	job := NewJob("tenant-1", "studio portrait", nil)

	require.NoError(t, s.Create(job))
	require.Error(t, s.Create(job), "duplicate IDs must be rejected")

	got, err := s.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StateSubmitted, got.State)
	assert.Equal(t, "tenant-1", got.TenantID)

	require.NoError(t, s.Update(job.ID, func(j *Job) {
		j.State = StateRunning
	}))
	got, err = s.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, StateRunning, got.State)

	_, err = s.Get("missing")
	assert.Error(t, err)
	assert.Error(t, s.Update("missing", func(*Job) {}))
}

func TestStore_GetReturnsIndependentCopy(t *testing.T) {
	s := NewStore()
	job := NewJob("tenant-1", "p", docmerge.Document{"a": 1.0})
	require.NoError(t, s.Create(job))

	got, err := s.Get(job.ID)
	require.NoError(t, err)
	got.Overlay["a"] = 2.0
	got.State = StateFailed

	stored, err := s.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1.0, stored.Overlay["a"])
	assert.Equal(t, StateSubmitted, stored.State)
}

func TestStore_ListFiltersAndOrder(t *testing.T) {
	s := NewStore()
	a := NewJob("tenant-a", "one", nil)
	b := NewJob("tenant-b", "two", nil)
	c := NewJob("tenant-a", "three", nil)
	for _, j := range []Job{a, b, c} {
		require.NoError(t, s.Create(j))
	}
	require.NoError(t, s.Update(c.ID, func(j *Job) { j.State = StateCompleted }))

	all := s.List("", "")
	require.Len(t, all, 3)
	assert.Equal(t, []string{a.ID, b.ID, c.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	tenantA := s.List("tenant-a", "")
	require.Len(t, tenantA, 2)

	completed := s.List("tenant-a", StateCompleted)
	require.Len(t, completed, 1)
	assert.Equal(t, c.ID, completed[0].ID)
}

func TestHandle_UpdateProgress(t *testing.T) {
	s := NewStore()
	job := NewJob("tenant-1", "p", nil)
	require.NoError(t, s.Create(job))

	h := s.Handle(job.ID)
	require.NoError(t, h.UpdateProgress(context.Background(), 40, "rendering"))

	got, err := s.Get(job.ID)
	require.NoError(t, err)
	assert.Equal(t, 40, got.Progress)
	assert.Equal(t, "rendering", got.Message)

	assert.Error(t, s.Handle("missing").UpdateProgress(context.Background(), 1, "x"))
}
