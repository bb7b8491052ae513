// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"testing"

	"github.com/prashantv/gostub"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func memStore(t *testing.T) (*Store, afero.Fs) {
	t.Helper()

	memfs := afero.NewMemMapFs()
	stubs := gostub.Stub(&FsFactory, func() afero.Fs { return memfs })
	t.Cleanup(stubs.Reset)

	return NewStore("/run/syncloop/syncloop.pid"), memfs
}

func TestStore_LoadMissing(t *testing.T) {
	s, _ := memStore(t)

	_, err := s.Load()
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestStore_CreateLoadRemove(t *testing.T) {
	s, memfs := memStore(t)

	require.NoError(t, s.Create(&State{PID: 77, List: "/a/list.txt"}))

	exists, err := afero.Exists(memfs, "/run/syncloop/syncloop.pid")
	require.NoError(t, err)
	assert.True(t, exists)

	st, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 77, st.PID)
	assert.Equal(t, "/a/list.txt", st.List)

	require.NoError(t, s.Remove())
	require.NoError(t, s.Remove(), "removing a missing record is not an error")

	_, err = s.Load()
	assert.ErrorIs(t, err, ErrNoRecord)
}

func TestStore_CreateIsExclusive(t *testing.T) {
	s, _ := memStore(t)

	require.NoError(t, s.Create(&State{PID: 1}))
	require.ErrorIs(t, s.Create(&State{PID: 2}), ErrRecordExists)

	st, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 1, st.PID)
}

func TestStore_LoadBarePID(t *testing.T) {
	s, memfs := memStore(t)
	require.NoError(t, afero.WriteFile(memfs, s.Path(), []byte("31337\n"), 0o644))

	st, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, 31337, st.PID)
}
