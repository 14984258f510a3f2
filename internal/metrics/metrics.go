// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package metrics exposes this module's Prometheus instrumentation: one
// private Registry every counter/histogram in the package registers against,
// and a namespace every metric name shares.
package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "anp"

// Registry is the Prometheus registerer every metric in this package uses.
// A private registry (rather than prometheus.DefaultRegisterer) keeps this
// module's metrics free of the Go-runtime/process collectors the default
// registry auto-registers, leaving that choice to the embedding process.
var Registry = prometheus.NewRegistry()
