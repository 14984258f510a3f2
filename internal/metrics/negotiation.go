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

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// NegotiationsStarted tracks meta-protocol negotiations entering
	// StateNegotiating for the first time.
	NegotiationsStarted = promauto.With(Registry).NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "negotiations",
			Name:      "started_total",
			Help:      "Total number of meta-protocol negotiations started",
		},
	)

	// NegotiationsCompleted tracks negotiations reaching a terminal state.
	NegotiationsCompleted = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "negotiations",
			Name:      "completed_total",
			Help:      "Total number of negotiations reaching a terminal state",
		},
		[]string{"outcome"}, // completed, rejected, failed
	)

	// NegotiationRounds tracks how many negotiate events a negotiation took
	// before leaving StateNegotiating.
	NegotiationRounds = promauto.With(Registry).NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "negotiations",
			Name:      "rounds",
			Help:      "Number of negotiation rounds before StateNegotiating was left",
			Buckets:   prometheus.LinearBuckets(1, 1, 10),
		},
	)

	// NegotiationStateDuration tracks time spent in each FSM state.
	NegotiationStateDuration = promauto.With(Registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "negotiations",
			Name:      "state_duration_seconds",
			Help:      "Time a negotiation spent in a given state before transitioning out of it",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14), // 10ms to ~82s
		},
		[]string{"state"},
	)
)
