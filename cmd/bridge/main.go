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

// cmd/bridge/main.go
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/mfreeman451/eightlocal/pkg/api"
	"github.com/mfreeman451/eightlocal/pkg/config"
	"github.com/mfreeman451/eightlocal/pkg/coordinator"
	"github.com/mfreeman451/eightlocal/pkg/eightsleep"
	"github.com/mfreeman451/eightlocal/pkg/lifecycle"
)

// clientService adapts the device client to the lifecycle runner.
type clientService struct {
	client *eightsleep.Client
}

func (s clientService) Start(context.Context) error { return s.client.Start() }
func (s clientService) Stop(context.Context) error  { return s.client.Stop() }

func main() {
	configPath := flag.String("config", "", "Path to the bridge config file (JSON)")
	flag.Parse()

	// Environment variables from a .env file, if one exists, then the
	// real environment, override the config file.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	var cfg config.BridgeConfig

	if *configPath != "" {
		if err := config.LoadFile(*configPath, &cfg); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	cfg.ApplyDefaults()

	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Invalid environment override: %v", err)
	}

	if err := config.ValidateConfig(&cfg); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	client := eightsleep.NewClient(
		cfg.DeviceHost,
		cfg.DevicePort,
		eightsleep.WithRequestTimeout(time.Duration(cfg.RequestTimeout)),
	)

	statusCoord := coordinator.NewStatusCoordinator(client, time.Duration(cfg.StatusInterval))

	healthCoord, err := coordinator.NewHealthCoordinator(client, time.Duration(cfg.HealthInterval))
	if err != nil {
		log.Fatalf("Failed to create health coordinator: %v", err)
	}

	server := api.NewServer(client, statusCoord, healthCoord)

	err = lifecycle.RunServer(context.Background(), &lifecycle.ServerOptions{
		HTTPAddr:    cfg.ListenAddr,
		GRPCAddr:    cfg.GrpcAddr,
		ServiceName: "eightlocal-bridge",
		Handler:     server.Handler(),
		Services: []lifecycle.Service{
			clientService{client: client},
			statusCoord,
			healthCoord,
		},
		Healthy: statusCoord.Healthy,
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Bridge failed: %v", err)
	}
}
