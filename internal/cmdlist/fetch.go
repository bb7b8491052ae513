// Copyright (c) matt-FFFFFF 2025. All rights reserved.
// SPDX-License-Identifier: MIT

package cmdlist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-getter/v2"
	"github.com/matt-FFFFFF/syncloop/internal/ctxlog"
)

const (
	goGetterPathSeparator  = "//"
	goGetterRefSeparator   = "?"
	minimumGetterParts     = 3 // Minimum parts in a go-getter URL: scheme, host, and path
	fetchDirName           = "cmdlist"
)

// ErrFetch is returned when a remote command list cannot be retrieved.
var ErrFetch = errors.New("failed to fetch command list")

// IsRemote reports whether src is a go-getter source rather than a local path.
// A source is local when go-getter's file getter would claim it, so a path such
// as `./lists/a::b.txt` stays local while `git::https://...` and `https://...` do not.
func IsRemote(src string) bool {
	if src == "" {
		return false
	}

	req := &getter.Request{
		Src: src,
		Pwd: ".",
	}

	ok, err := getter.Detect(req, new(getter.FileGetter))

	return !ok || err != nil
}

// Fetch resolves src to a local file. Local paths are returned unchanged.
// Remote sources use Hashicorp's go-getter syntax and must name the file after a `//`
// subdirectory separator, e.g. `git::https://example.com/ops.git//sync_commands.txt?ref=main`.
// The download lands under dstDir and is replaced on every call.
func Fetch(ctx context.Context, src, dstDir string) (string, error) {
	if !IsRemote(src) {
		return src, nil
	}

	newURL, fileName := splitFileNameFromGetterURL(src)
	if newURL == "" || fileName == "" {
		return "", fmt.Errorf("%w: invalid URL format: %s", ErrFetch, src)
	}

	dst := filepath.Join(dstDir, fetchDirName)
	if err := os.RemoveAll(dst); err != nil {
		return "", errors.Join(ErrFetch, err)
	}

	wd, err := os.Getwd()
	if err != nil {
		return "", errors.Join(ErrFetch, err)
	}

	client := getter.Client{
		DisableSymlinks: true,
	}

	req := &getter.Request{
		Src:     newURL,
		Dst:     dst,
		Pwd:     wd,
		GetMode: getter.ModeDir,
	}

	ctxlog.Debug(ctx, "fetching command list", "src", newURL, "dst", dst)

	res, err := client.Get(ctx, req)
	if err != nil {
		return "", errors.Join(ErrFetch, err)
	}

	return filepath.Join(res.Dst, fileName), nil
}

// splitFileNameFromGetterURL splits the URL into the directory and file name.
// It returns the new getter URL without the file name and the file name itself.
// It will append any ref query parameter to the new URL if it exists.
func splitFileNameFromGetterURL(url string) (string, string) {
	var ref string

	parts := strings.Split(url, goGetterPathSeparator)
	if len(parts) < minimumGetterParts {
		return "", ""
	}

	last := parts[len(parts)-1]
	if before, after, found := strings.Cut(last, goGetterRefSeparator); found {
		ref = after
		last = before
	}

	if filepath.Clean(last) == filepath.Dir(last) {
		return "", ""
	}

	fileName := filepath.Base(last)

	parts[len(parts)-1] = filepath.Dir(last)
	if parts[len(parts)-1] == "." {
		parts = parts[:len(parts)-1]
	}

	newURL := strings.Join(parts, goGetterPathSeparator)

	if ref != "" {
		newURL += goGetterRefSeparator + ref
	}

	return newURL, fileName
}
