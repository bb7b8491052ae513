// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package supervisor

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

const (
	recordPerm = 0o644
	dirPerm    = 0o755
)

var (
	// ErrNoRecord is returned when there is no PID record.
	ErrNoRecord = errors.New("no pid record")
	// ErrRecordExists is returned when a PID record is created while another one exists.
	ErrRecordExists = errors.New("pid record already exists")
	// ErrCorruptRecord is returned when the PID record cannot be decoded.
	ErrCorruptRecord = errors.New("pid record is corrupt")
	// ErrRecordIO is returned for other failures reading or writing the record.
	ErrRecordIO = errors.New("pid record i/o error")
)

// FsFactory is a function that returns an afero filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// Store reads and writes the PID record.
type Store struct {
	fs   afero.Fs
	path string
}

// NewStore returns a store for the record at path.
func NewStore(path string) *Store {
	return &Store{
		fs:   FsFactory(),
		path: path,
	}
}

// Path returns the record location.
func (s *Store) Path() string {
	return s.path
}

// Load reads the record. It returns ErrNoRecord if there is none.
func (s *Store) Load() (*State, error) {
	data, err := afero.ReadFile(s.fs, s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNoRecord
		}

		return nil, errors.Join(ErrRecordIO, err)
	}

	return ParseState(data)
}

// Create writes the record only if none exists. The existence check and the
// creation are a single exclusive open, so two racing starters cannot both win.
func (s *Store) Create(st *State) error {
	data, err := st.Marshal()
	if err != nil {
		return err
	}

	if err := s.fs.MkdirAll(filepath.Dir(s.path), dirPerm); err != nil {
		return errors.Join(ErrRecordIO, err)
	}

	f, err := s.fs.OpenFile(s.path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, recordPerm)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return ErrRecordExists
		}

		return errors.Join(ErrRecordIO, err)
	}

	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = s.fs.Remove(s.path)

		return errors.Join(ErrRecordIO, err)
	}

	if err := f.Close(); err != nil {
		return errors.Join(ErrRecordIO, err)
	}

	return nil
}

// Remove deletes the record. A missing record is not an error.
func (s *Store) Remove() error {
	if err := s.fs.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %w", ErrRecordIO, err)
	}

	return nil
}
