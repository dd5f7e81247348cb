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

// Package lifecycle runs the bridge daemon: it starts the services, serves
// the HTTP API and a grpc health endpoint, and shuts everything down on a
// signal.
package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

const (
	ShutdownTimeout = 10 * time.Second

	// healthProbeInterval is how often the grpc serving status is
	// reconciled with the device's reachability.
	healthProbeInterval = 5 * time.Second
)

// Service defines the interface that all services must implement.
type Service interface {
	Start(context.Context) error
	Stop(context.Context) error
}

// ServerOptions holds configuration for running the bridge.
type ServerOptions struct {
	HTTPAddr    string
	GRPCAddr    string // empty disables the grpc health endpoint
	ServiceName string
	Handler     http.Handler
	Services    []Service

	// Healthy reports whether the device is reachable; the grpc health
	// endpoint mirrors it. Nil means always serving.
	Healthy func() bool
}

// RunServer starts the services and servers and handles lifecycle.
func RunServer(ctx context.Context, opts *ServerOptions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	log.Printf("*** Starting service %s", opts.ServiceName)

	errChan := make(chan error, 1)

	for _, svc := range opts.Services {
		if err := svc.Start(ctx); err != nil {
			return fmt.Errorf("failed to start service: %w", err)
		}
	}

	httpServer := &http.Server{
		Addr:              opts.HTTPAddr,
		Handler:           opts.Handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Starting HTTP server on %s", opts.HTTPAddr)

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			select {
			case errChan <- err:
			default:
				log.Printf("HTTP server error: %v", err)
			}
		}
	}()

	var grpcServer *grpc.Server

	if opts.GRPCAddr != "" {
		var err error

		grpcServer, err = startHealthServer(ctx, opts, errChan)
		if err != nil {
			return err
		}
	}

	return handleShutdown(ctx, cancel, httpServer, grpcServer, opts.Services, errChan)
}

func startHealthServer(ctx context.Context, opts *ServerOptions, errChan chan error) (*grpc.Server, error) {
	lis, err := net.Listen("tcp", opts.GRPCAddr)
	if err != nil {
		return nil, fmt.Errorf("failed to listen on %s: %w", opts.GRPCAddr, err)
	}

	grpcServer := grpc.NewServer()
	hs := health.NewServer()
	hs.SetServingStatus(opts.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(grpcServer, hs)

	// Keep the serving status aligned with device reachability.
	if opts.Healthy != nil {
		go func() {
			ticker := time.NewTicker(healthProbeInterval)
			defer ticker.Stop()

			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					status := healthpb.HealthCheckResponse_SERVING
					if !opts.Healthy() {
						status = healthpb.HealthCheckResponse_NOT_SERVING
					}

					hs.SetServingStatus(opts.ServiceName, status)
				}
			}
		}()
	}

	go func() {
		log.Printf("Starting grpc health server on %s", opts.GRPCAddr)

		if err := grpcServer.Serve(lis); err != nil {
			select {
			case errChan <- err:
			default:
				log.Printf("grpc server error: %v", err)
			}
		}
	}()

	return grpcServer, nil
}

func handleShutdown(
	ctx context.Context,
	cancel context.CancelFunc,
	httpServer *http.Server,
	grpcServer *grpc.Server,
	services []Service,
	errChan chan error,
) error {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	var runErr error

	select {
	case sig := <-sigChan:
		log.Printf("Received signal %v, initiating shutdown", sig)
	case err := <-errChan:
		log.Printf("Received error: %v, initiating shutdown", err)
		runErr = fmt.Errorf("service error: %w", err)
	case <-ctx.Done():
		log.Printf("Context canceled, initiating shutdown")
		runErr = ctx.Err()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer shutdownCancel()

	cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error shutting down HTTP server: %v", err)
	}

	if grpcServer != nil {
		grpcServer.GracefulStop()
	}

	// Stop services in reverse start order so consumers go down before
	// the client they depend on.
	for i := len(services) - 1; i >= 0; i-- {
		if err := services[i].Stop(shutdownCtx); err != nil {
			log.Printf("Error during service shutdown: %v", err)

			if runErr == nil {
				runErr = fmt.Errorf("shutdown error: %w", err)
			}
		}
	}

	return runErr
}
