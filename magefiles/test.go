//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, unit, race, smoke).
type Test mg.Namespace

// All runs all tests.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs the tests without verbose output.
func (Test) Unit() error {
	return sh.RunV(binGo, "test", "./...")
}

// Race runs the store tests with the race detector.
func (Test) Race() error {
	return sh.RunV(binGo, "test", "-race", "./internal/...", "./pkg/...")
}

// Smoke builds the binary and drives it against a throwaway store:
// init, a board view, a backup and a JSONL export.
func (Test) Smoke() error {
	mg.Deps(Build)
	dir, err := os.MkdirTemp("", "taskboard-smoke-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(dir)

	bin := filepath.Join(binaryDir, binaryName)
	base := []string{"--config-dir", filepath.Join(dir, "config"), "--data-dir", filepath.Join(dir, "data")}
	steps := [][]string{
		{"init"},
		{"board", "show"},
		{"task", "add", "1", "Smoke task", "--due", "tomorrow"},
		{"reorder", "1", "3", "1", "2"},
		{"backup", dir},
		{"export", filepath.Join(dir, "export")},
	}
	for _, step := range steps {
		fmt.Printf("--- taskboard %v\n", step)
		if err := sh.RunV(bin, append(base, step...)...); err != nil {
			return fmt.Errorf("taskboard %v: %w", step, err)
		}
	}
	return nil
}
