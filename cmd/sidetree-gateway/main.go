/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

// Command sidetree-gateway accepts Sidetree DID operations over REST, batches them into the
// content addressable store, anchors the batches and resolves DID documents from the anchors.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/trustbloc/sidetree-gateway-go/pkg/config"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
)

var logger = log.New(serviceName)

const shutdownTimeout = 30 * time.Second

func main() {
	params, err := config.Load(serviceName, os.Args[1:], os.Stderr)
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}

		logger.Fatal("Failed to load configuration", log.WithError(err))
	}

	if err := params.Config.ApplyLogSpec(); err != nil {
		logger.Fatal("Invalid log spec", log.WithError(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, params); err != nil {
		logger.Fatal("Gateway failed", log.WithError(err))
	}
}

// run starts the gateway and blocks until the context is done or the HTTP server fails.
func run(ctx context.Context, params *config.Parameters) error {
	gw, err := newGateway(ctx, params.Config, params.Versions)
	if err != nil {
		return err
	}

	if err := gw.start(); err != nil {
		shutdown(gw)

		return err
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		select {
		case err := <-gw.server.Done():
			if err != nil {
				return err
			}

			return errors.New("HTTP server stopped")
		case <-gctx.Done():
			return nil
		}
	})

	g.Go(func() error {
		<-gctx.Done()

		return shutdown(gw)
	})

	return g.Wait()
}

func shutdown(gw *gateway) error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return gw.stop(ctx)
}
