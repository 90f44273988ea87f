// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.
//
// Package cli implements the command-line interface for fxview using Cobra.
// It wires configuration, the rate loader stack and the store, then hands
// them to the TUI, the one-shot convert/rates commands, the HTTP API and the
// snapshot import/export commands. Conversion logic stays in the converter
// package; commands only parse arguments and print.
package cli
