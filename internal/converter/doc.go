// Copyright (c) 2026 fxview Team
// fxview - terminal currency converter
// This source code is licensed under the MIT license found in the LICENSE file.

// Package converter holds the UI-agnostic state machine behind the converter
// view: the base amount and currency, the list of displayed target
// currencies and the rate table they are priced against.
//
// Everything here is synchronous and deterministic. Asynchronous concerns
// (fetching, debouncing) are expressed as tokens: callers obtain a token when
// they start something and hand it back when it completes, and the state
// decides whether the completion is still current.
package converter
