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

// Package coordinator pkg/coordinator/status.go

package coordinator

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mfreeman451/eightlocal/pkg/eightsleep"
	"github.com/mfreeman451/eightlocal/pkg/models"
)

// StatusCoordinator polls the device status and presence endpoints and
// serves the composite result to all readers.
type StatusCoordinator struct {
	*coordinator
	client DeviceClient
}

// NewStatusCoordinator creates a status coordinator polling at interval.
func NewStatusCoordinator(client DeviceClient, interval time.Duration) *StatusCoordinator {
	s := &StatusCoordinator{client: client}
	s.coordinator = newCoordinator("status", interval, s.poll)

	return s
}

// poll fetches device status then presence. A failed status fetch fails
// the whole poll (the previous result is retained); a failed presence
// fetch only degrades presence to its default shape.
func (s *StatusCoordinator) poll(ctx context.Context) (interface{}, error) {
	if err := s.client.UpdateDeviceData(ctx); err != nil {
		return nil, fmt.Errorf("device status poll failed: %w", err)
	}

	presence, err := s.client.Presence(ctx)
	if err != nil {
		log.Printf("Presence fetch failed, serving defaults: %v", err)

		presence = eightsleep.Presence{}
	}

	return models.Status{
		Device:   s.client.DeviceData(),
		Presence: presence,
		Updated:  time.Now(),
	}, nil
}

// Status returns the last successful composite status.
func (s *StatusCoordinator) Status() (models.Status, bool) {
	data, ok := s.Data()
	if !ok {
		return models.Status{}, false
	}

	return data.(models.Status), true
}
