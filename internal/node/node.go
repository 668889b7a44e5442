// Package node provides a reusable seed service that can be embedded in any
// binary (daemon, CLI, tests). It wires configuration, logging, storage, the
// keystore and the RPC server together.
package node

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/Klingon-tech/klingnet-seed/config"
	"github.com/Klingon-tech/klingnet-seed/internal/keystore"
	klog "github.com/Klingon-tech/klingnet-seed/internal/log"
	"github.com/Klingon-tech/klingnet-seed/internal/rpc"
	"github.com/Klingon-tech/klingnet-seed/internal/storage"
)

// Node is a fully-initialized seed service.
type Node struct {
	cfg    *config.Config
	logger zerolog.Logger

	// Core
	db       storage.DB
	keystore *keystore.Keystore

	// RPC
	rpcServer *rpc.Server

	logCloser io.Closer
}

// New creates and initializes a new Node. It performs all setup steps
// (logger, storage, keystore, RPC) but does NOT start listening.
// Call Start() for that.
func New(cfg *config.Config) (*Node, error) {
	// ── 1. Init logger ──────────────────────────────────────────────
	logFile := cfg.Log.File
	if logFile == "" {
		logsDir := cfg.LogsDir()
		if err := os.MkdirAll(logsDir, 0700); err != nil {
			return nil, fmt.Errorf("creating logs dir: %w", err)
		}
		logFile = filepath.Join(logsDir, "seedd.log")
	}
	logCloser, err := klog.Init(cfg.Log.Level, cfg.Log.JSON, expandHome(logFile))
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	logger := klog.WithComponent("node")

	logger.Info().
		Str("datadir", cfg.DataDir).
		Str("backend", cfg.Keystore.Backend).
		Bool("compressed", cfg.Keystore.Compressed).
		Int("mnemonic_bits", cfg.Mnemonic.Bits).
		Msg("Starting Klingnet Seed service")

	// ── 2. Open storage + keystore ──────────────────────────────────
	ks, db, err := OpenKeystore(cfg)
	if err != nil {
		logCloser.Close()
		return nil, err
	}

	n := &Node{
		cfg:       cfg,
		logger:    logger,
		db:        db,
		keystore:  ks,
		logCloser: logCloser,
	}

	// ── 3. RPC server ───────────────────────────────────────────────
	if cfg.RPC.Enabled {
		addr := fmt.Sprintf("%s:%d", cfg.RPC.Addr, cfg.RPC.Port)
		n.rpcServer = rpc.New(addr, cfg.RPC)
		n.rpcServer.SetKeystore(ks)
		n.rpcServer.SetDefaultBits(cfg.Mnemonic.Bits)
	}

	return n, nil
}

// OpenKeystore opens the configured storage backend and a keystore over it.
// The caller owns the returned DB and must close it.
func OpenKeystore(cfg *config.Config) (*keystore.Keystore, storage.DB, error) {
	db, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}
	return keystore.New(db, keystoreOptions(cfg)), db, nil
}

// Start binds the RPC listener, if enabled.
func (n *Node) Start() error {
	if n.rpcServer != nil {
		if err := n.rpcServer.Start(); err != nil {
			return fmt.Errorf("start rpc: %w", err)
		}
	}

	n.logger.Info().
		Str("rpc", n.RPCAddr()).
		Msg("Seed service started successfully")
	return nil
}

// Stop performs graceful shutdown in reverse order.
func (n *Node) Stop() {
	if n.rpcServer != nil {
		if err := n.rpcServer.Stop(); err != nil {
			n.logger.Warn().Err(err).Msg("RPC shutdown")
		}
	}
	if n.db != nil {
		if err := n.db.Close(); err != nil {
			n.logger.Warn().Err(err).Msg("Closing keystore database")
		}
	}

	n.logger.Info().Msg("Goodbye!")
	if n.logCloser != nil {
		n.logCloser.Close()
	}
}

// RPCAddr returns the address the RPC server is listening on.
func (n *Node) RPCAddr() string {
	if n.rpcServer == nil {
		return ""
	}
	return n.rpcServer.Addr()
}

// Keystore returns the node's keystore.
func (n *Node) Keystore() *keystore.Keystore {
	return n.keystore
}
