// Copyright © 2025 Steve Taranto staranto@gmail.com
// SPDX-License-Identifier: Apache-2.0

// exefitgo is the main package for the exefit command line tool. It wires the
// CLI, delegates to internal packages, and serves as the entry point.
package main
