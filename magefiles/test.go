//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// Test groups test targets (all, unit, postgres).
type Test mg.Namespace

// All runs every test. PostgreSQL tests skip unless SILK_POSTGRES_DSN is set.
func (Test) All() error {
	return sh.RunV(binGo, "test", "-v", "./...")
}

// Unit runs the tests in short mode without a database server.
func (Test) Unit() error {
	return sh.RunWith(map[string]string{envPostgresDSN: ""}, binGo, "test", "-short", "./...")
}

// Postgres starts a disposable PostgreSQL container, runs the postgres
// backend tests against it, and removes the container. An existing
// SILK_POSTGRES_DSN is used as is.
func (Test) Postgres() error {
	if dsn := os.Getenv(envPostgresDSN); dsn != "" {
		return runPostgresTests(dsn)
	}

	rt := containerRuntime()
	if rt == "" {
		return fmt.Errorf("no container runtime found (tried podman, docker) and %s is not set", envPostgresDSN)
	}
	dsn, err := startPostgres(rt)
	if err != nil {
		return err
	}
	defer stopPostgres(rt)
	return runPostgresTests(dsn)
}

func runPostgresTests(dsn string) error {
	return sh.RunWithV(map[string]string{envPostgresDSN: dsn}, binGo, "test", "-v", "-count=1", "./internal/postgres/...")
}
