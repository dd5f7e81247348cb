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

// cmd/simdevice/main.go
package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"github.com/mfreeman451/eightlocal/pkg/eightsleep"
	"github.com/mfreeman451/eightlocal/pkg/simulator"
)

func main() {
	listenAddr := flag.String("listen", ":3000", "Listen address for the simulated pod")
	flag.Parse()

	sim := simulator.New()
	seed(sim)

	server := &http.Server{
		Addr:              *listenAddr,
		Handler:           sim.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	log.Printf("Simulated pod listening on %s", *listenAddr)

	if err := server.ListenAndServe(); err != nil {
		log.Fatalf("Simulator failed: %v", err)
	}
}

// seed gives the simulator one night of data so the bridge has something
// to show immediately.
func seed(sim *simulator.Simulator) {
	now := time.Now()
	enteredBed := now.Add(-9 * time.Hour)
	leftBed := now.Add(-1 * time.Hour)

	sim.SetPresence(eightsleep.Presence{
		Left:  eightsleep.SidePresence{Present: true, LastUpdated: now},
		Right: eightsleep.SidePresence{Present: false, LastUpdated: now.Add(-2 * time.Hour)},
	})

	sim.SetSleepRecords([]eightsleep.SleepRecord{
		{
			Side:               eightsleep.SideLeft,
			EnteredBedAt:       enteredBed,
			LeftBedAt:          leftBed,
			SleepPeriodSeconds: int(leftBed.Sub(enteredBed).Seconds()),
			TimesExitedBed:     1,
		},
	})

	vitals := make([]eightsleep.VitalRecord, 0, 8)
	for i := 0; i < 8; i++ {
		vitals = append(vitals, eightsleep.VitalRecord{
			Side:          eightsleep.SideLeft,
			Timestamp:     enteredBed.Add(time.Duration(i) * time.Hour),
			HeartRate:     56 + float64(i%4),
			HRV:           42 + float64(i%6),
			BreathingRate: 13.5,
		})
	}

	sim.SetVitals(vitals)

	sim.SetMovement([]eightsleep.MovementRecord{
		{Side: eightsleep.SideLeft, Timestamp: enteredBed.Add(3 * time.Hour), Count: 4},
	})
}
