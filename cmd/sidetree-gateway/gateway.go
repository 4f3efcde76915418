/*
Copyright SecureKey Technologies Inc. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package main

import (
	"context"
	"io"
	"path/filepath"

	"github.com/pkg/errors"

	apicas "github.com/trustbloc/sidetree-gateway-go/pkg/api/cas"
	"github.com/trustbloc/sidetree-gateway-go/pkg/api/protocol"
	"github.com/trustbloc/sidetree-gateway-go/pkg/batch"
	"github.com/trustbloc/sidetree-gateway-go/pkg/batch/opqueue"
	"github.com/trustbloc/sidetree-gateway-go/pkg/cas/ipfs"
	"github.com/trustbloc/sidetree-gateway-go/pkg/cas/local"
	"github.com/trustbloc/sidetree-gateway-go/pkg/cas/retry"
	"github.com/trustbloc/sidetree-gateway-go/pkg/config"
	"github.com/trustbloc/sidetree-gateway-go/pkg/dochandler"
	"github.com/trustbloc/sidetree-gateway-go/pkg/httpserver"
	"github.com/trustbloc/sidetree-gateway-go/internal/log"
	"github.com/trustbloc/sidetree-gateway-go/pkg/ledger"
	"github.com/trustbloc/sidetree-gateway-go/pkg/metrics"
	"github.com/trustbloc/sidetree-gateway-go/pkg/observer"
	"github.com/trustbloc/sidetree-gateway-go/pkg/opstore"
	"github.com/trustbloc/sidetree-gateway-go/pkg/processor"
	"github.com/trustbloc/sidetree-gateway-go/pkg/protocolversion"
	"github.com/trustbloc/sidetree-gateway-go/pkg/restapi/common"
	"github.com/trustbloc/sidetree-gateway-go/pkg/restapi/diddochandler"
)

const serviceName = "sidetree-gateway"

// gateway holds the running components.
type gateway struct {
	cfg      *config.Config
	pc       protocol.Client
	ledger   *ledger.Ledger
	store    *opstore.Store
	writer   *batch.Writer
	observer *observer.Observer
	server   *httpserver.Server
	closers  []io.Closer
}

// batchContext provides the batch writer with its collaborators.
type batchContext struct {
	pc     protocol.Client
	ledger *ledger.Ledger
	store  *opstore.Store
}

func (c *batchContext) Protocol() protocol.Client {
	return c.pc
}

func (c *batchContext) Anchor() batch.AnchorWriter {
	return c.ledger
}

func (c *batchContext) OperationStore() batch.OperationStore {
	return c.store
}

//nolint:funlen
func newGateway(ctx context.Context, cfg *config.Config, versions []protocolversion.Entry) (_ *gateway, err error) {
	gw := &gateway{cfg: cfg}

	defer func() {
		if err != nil {
			gw.close()
		}
	}()

	m := metrics.NewPrometheus()

	casClient, err := gw.openCAS(ctx)
	if err != nil {
		return nil, err
	}

	pc, err := protocolversion.NewRegistry().CreateClient(versions, casClient, m)
	if err != nil {
		return nil, errors.Wrap(err, "create protocol client")
	}

	gw.pc = pc

	if err := gw.openLedger(); err != nil {
		return nil, err
	}

	queue, err := gw.openQueue()
	if err != nil {
		return nil, err
	}

	gw.store, err = opstore.New(queue, opstore.WithMetrics(m))
	if err != nil {
		return nil, errors.Wrap(err, "create operation store")
	}

	gw.writer, err = batch.New(cfg.Namespace, &batchContext{pc: pc, ledger: gw.ledger, store: gw.store},
		batch.WithBatchTimeout(cfg.Batch.Interval),
		batch.WithWriteTimeout(cfg.Batch.WriteTimeout),
		batch.WithMaxOperationsPerBatch(cfg.Batch.MaxOperations),
		batch.WithMetrics(m),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create batch writer")
	}

	resolver, err := processor.New(cfg.Namespace, gw.ledger, pc,
		processor.WithCacheSize(cfg.Resolver.CacheSize),
		processor.WithMetrics(m),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create operation processor")
	}

	gw.observer = observer.New(
		&observer.Providers{
			Ledger:         gw.ledger,
			ProtocolClient: pc,
			OpStore:        gw.store,
			Cache:          resolver,
		},
		observer.WithRetryInterval(cfg.Observer.RetryInterval),
		observer.WithMetrics(m),
	)

	var opts []dochandler.Option
	if cfg.Resolver.CommitmentCheck {
		opts = append(opts, dochandler.WithCommitmentCheck())
	}

	docHandler := dochandler.New(cfg.Namespace, pc, gw.store, gw.writer, resolver, opts...)

	handlers := []common.HTTPHandler{
		diddochandler.NewUpdateHandler(cfg.BasePath, docHandler, maxRequestSize(versions)),
		diddochandler.NewResolveHandler(cfg.BasePath, docHandler, cfg.Resolver.Timeout),
		diddochandler.NewVersionHandler(cfg.BasePath, serviceName, pc),
	}

	if cfg.MetricsEnabled {
		handlers = append(handlers, m)
	}

	gw.server = httpserver.New(cfg.Address(), handlers, httpserver.WithMetrics(m))

	return gw, nil
}

func (gw *gateway) openCAS(ctx context.Context) (apicas.Client, error) {
	switch gw.cfg.CAS.Type {
	case config.CASTypeIPFS:
		client := ipfs.New(gw.cfg.CAS.Endpoint)

		pingCtx, cancel := context.WithTimeout(ctx, gw.cfg.CAS.Timeout)
		defer cancel()

		if _, err := client.Ping(pingCtx); err != nil {
			if gw.cfg.CAS.RequireAtStartup {
				return nil, errors.Wrapf(err, "IPFS node at %s is not reachable", gw.cfg.CAS.Endpoint)
			}

			// the node may come up later; reads and writes are retried
			logger.Warn("IPFS node is not reachable", log.WithURIString(gw.cfg.CAS.Endpoint), log.WithError(err))
		}

		return retry.New(client,
			retry.WithTimeout(gw.cfg.CAS.Timeout),
			retry.WithMaxRetries(gw.cfg.CAS.MaxRetries),
		), nil
	default:
		if gw.cfg.DataDir == "" {
			client := local.NewInMemory()
			gw.closers = append(gw.closers, client)

			return client, nil
		}

		client, err := local.Open(filepath.Join(gw.cfg.DataDir, "cas"))
		if err != nil {
			return nil, err
		}

		gw.closers = append(gw.closers, client)

		return client, nil
	}
}

func (gw *gateway) openLedger() error {
	if gw.cfg.DataDir == "" {
		gw.ledger = ledger.New()
	} else {
		l, err := ledger.Open(filepath.Join(gw.cfg.DataDir, "ledger"))
		if err != nil {
			return err
		}

		gw.ledger = l
	}

	gw.closers = append(gw.closers, gw.ledger)

	return nil
}

func (gw *gateway) openQueue() (opqueue.Queue, error) {
	var (
		queue *opqueue.LevelDBQueue
		err   error
	)

	if gw.cfg.DataDir == "" {
		queue, err = opqueue.NewInMemoryLevelDBQueue()
	} else {
		queue, err = opqueue.OpenLevelDBQueue(filepath.Join(gw.cfg.DataDir, "opqueue"))
	}

	if err != nil {
		return nil, errors.Wrap(err, "open operation queue")
	}

	gw.closers = append(gw.closers, queue)

	return queue, nil
}

// start starts the background loops and then the REST API.
func (gw *gateway) start() error {
	gw.observer.Start()
	gw.writer.Start()

	if err := gw.server.Start(); err != nil {
		return errors.Wrap(err, "start HTTP server")
	}

	logger.Info("Started gateway", log.WithNamespace(gw.cfg.Namespace), log.WithAddress(gw.server.Addr()))

	return nil
}

// stop stops accepting requests, lets the writer finish the batch in flight and closes the databases.
func (gw *gateway) stop(ctx context.Context) error {
	err := gw.server.Stop(ctx)

	gw.writer.Stop()
	gw.observer.Stop()
	gw.close()

	logger.Info("Stopped gateway")

	return err
}

func (gw *gateway) close() {
	for _, c := range gw.closers {
		if err := c.Close(); err != nil {
			logger.Warn("Error closing store", log.WithError(err))
		}
	}

	gw.closers = nil
}

// maxRequestSize is the largest operation any configured protocol version accepts.
func maxRequestSize(versions []protocolversion.Entry) int64 {
	var size uint

	for _, v := range versions {
		if v.Protocol.MaxOperationSize > size {
			size = v.Protocol.MaxOperationSize
		}
	}

	return int64(size)
}
