/*-
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package coordinator pkg/coordinator/health.go

package coordinator

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/mfreeman451/eightlocal/pkg/eightsleep"
	"github.com/mfreeman451/eightlocal/pkg/models"
)

// MinHealthInterval is the floor for the health poll cadence; the pod
// recomputes these metrics at most once a minute.
const MinHealthInterval = time.Minute

// HealthCoordinator polls sleep records and, for each side with a recent
// session, the vitals summary for that session's window.
type HealthCoordinator struct {
	*coordinator
	client DeviceClient
}

// NewHealthCoordinator creates a health coordinator polling at interval.
func NewHealthCoordinator(client DeviceClient, interval time.Duration) (*HealthCoordinator, error) {
	if interval < MinHealthInterval {
		return nil, fmt.Errorf("%w: %s", ErrHealthIntervalTooShort, interval)
	}

	h := &HealthCoordinator{client: client}
	h.coordinator = newCoordinator("health", interval, h.poll)

	return h, nil
}

// poll fetches recent sleep records, picks the newest session per side and
// fetches the vitals summary for that window. A side with no session gets
// no vitals fetch at all. Any fetch error fails the whole poll.
func (h *HealthCoordinator) poll(ctx context.Context) (interface{}, error) {
	records, err := h.client.SleepRecords(ctx, eightsleep.MetricsFilter{})
	if err != nil {
		return nil, fmt.Errorf("sleep records fetch failed: %w", err)
	}

	// The device is assumed to return newest-first, but that is not a
	// documented guarantee; sort explicitly so an ordering change cannot
	// silently select a stale session.
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].EnteredBedAt.After(records[j].EnteredBedAt)
	})

	health := models.Health{Updated: time.Now()}

	for _, side := range []eightsleep.Side{eightsleep.SideLeft, eightsleep.SideRight} {
		rec := newestForSide(records, side)
		if rec == nil {
			continue
		}

		summary, err := h.client.VitalsSummary(ctx, eightsleep.MetricsFilter{
			Side:      side,
			StartTime: rec.EnteredBedAt,
			EndTime:   rec.LeftBedAt,
		})
		if err != nil {
			return nil, fmt.Errorf("vitals summary fetch failed for %s: %w", side, err)
		}

		sideHealth := models.SideHealth{Sleep: rec, VitalsSummary: &summary}

		if side == eightsleep.SideLeft {
			health.Left = sideHealth
		} else {
			health.Right = sideHealth
		}
	}

	return health, nil
}

func newestForSide(records []eightsleep.SleepRecord, side eightsleep.Side) *eightsleep.SleepRecord {
	for i := range records {
		if records[i].Side == side {
			rec := records[i]
			return &rec
		}
	}

	return nil
}

// Health returns the last successful composite health result.
func (h *HealthCoordinator) Health() (models.Health, bool) {
	data, ok := h.Data()
	if !ok {
		return models.Health{}, false
	}

	return data.(models.Health), true
}
