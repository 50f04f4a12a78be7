//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the silk project using Mage.
//
// Usage:
//
//	mage build          Compile the silk binary to bin/
//	mage install        Install silk to GOPATH/bin
//	mage clean          Remove build artifacts
//	mage lint           Run go vet and golangci-lint
//	mage test:all       Run every test; postgres tests skip without a DSN
//	mage test:unit      Run tests in short mode
//	mage test:postgres  Start a throwaway PostgreSQL container and run its tests
//	mage stats          Print Go line counts per package as JSON
package main
