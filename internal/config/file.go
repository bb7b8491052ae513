// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclsyntax"
	"github.com/spf13/afero"
	"github.com/zclconf/go-cty/cty"
)

// ErrConfigFile is returned when the options file cannot be read or decoded.
var ErrConfigFile = errors.New("failed to load options file")

// FsFactory is a function that returns an afero filesystem.
var FsFactory = func() afero.Fs {
	return afero.NewOsFs()
}

// EnvironFactory returns the environment exposed to the options file as `env`.
var EnvironFactory = os.Environ

// file mirrors the attributes accepted in an options file. Unset attributes keep their current value.
type file struct {
	List        *string           `hcl:"list,optional"`
	LogDir      *string           `hcl:"log_dir,optional"`
	Interval    *int64            `hcl:"interval,optional"`
	Rounds      *int              `hcl:"rounds,optional"`
	Verbose     *bool             `hcl:"verbose,optional"`
	PIDFile     *string           `hcl:"pid_file,optional"`
	BaseDir     *string           `hcl:"base_dir,optional"`
	Shell       *string           `hcl:"shell,optional"`
	Reload      *bool             `hcl:"reload,optional"`
	Grace       *string           `hcl:"grace,optional"`
	StopTimeout *string           `hcl:"stop_timeout,optional"`
	WaitSlice   *string           `hcl:"wait_slice,optional"`
	TailLines   *int              `hcl:"tail_lines,optional"`
	CommandEnv  map[string]string `hcl:"command_env,optional"`
}

// LoadFile decodes the HCL options file at path onto opts.
// The interval is a number of seconds; grace, stop_timeout and wait_slice are Go duration strings.
func LoadFile(path string, opts *Options) error {
	src, err := afero.ReadFile(FsFactory(), path)
	if err != nil {
		return errors.Join(ErrConfigFile, err)
	}

	f, diags := hclsyntax.ParseConfig(src, path, hcl.InitialPos)
	if diags.HasErrors() {
		return fmt.Errorf("%w: %w", ErrConfigFile, diags)
	}

	var decoded file
	if diags := gohcl.DecodeBody(f.Body, evalContext(), &decoded); diags.HasErrors() {
		return fmt.Errorf("%w: %w", ErrConfigFile, diags)
	}

	if err := decoded.apply(opts); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrConfigFile, path, err)
	}

	return nil
}

func evalContext() *hcl.EvalContext {
	env := make(map[string]cty.Value)

	for _, kv := range EnvironFactory() {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || k == "" {
			continue
		}

		env[k] = cty.StringVal(v)
	}

	return &hcl.EvalContext{
		Variables: map[string]cty.Value{
			"env": cty.ObjectVal(env),
		},
	}
}

func (f *file) apply(o *Options) error {
	setString(&o.List, f.List)
	setString(&o.LogDir, f.LogDir)
	setString(&o.PIDFile, f.PIDFile)
	setString(&o.BaseDir, f.BaseDir)
	setString(&o.Shell, f.Shell)

	if f.Interval != nil {
		o.Interval = time.Duration(*f.Interval) * time.Second
	}

	if f.Rounds != nil {
		o.Rounds = *f.Rounds
	}

	if f.Verbose != nil {
		o.Verbose = *f.Verbose
	}

	if f.Reload != nil {
		o.Reload = *f.Reload
	}

	if f.TailLines != nil {
		o.TailLines = *f.TailLines
	}

	if len(f.CommandEnv) > 0 {
		o.Env = envPairs(f.CommandEnv)
	}

	var errs []error

	for _, d := range []struct {
		name string
		src  *string
		dst  *time.Duration
	}{
		{"grace", f.Grace, &o.Grace},
		{"stop_timeout", f.StopTimeout, &o.StopTimeout},
		{"wait_slice", f.WaitSlice, &o.WaitSlice},
	} {
		if d.src == nil {
			continue
		}

		v, err := time.ParseDuration(*d.src)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", d.name, err))
			continue
		}

		*d.dst = v
	}

	return errors.Join(errs...)
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
