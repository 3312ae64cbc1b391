package main

import (
	"context"
	"fmt"

	"crypto-payments/config"
	"crypto-payments/internal/adapter/chain/evm"
	"crypto-payments/internal/adapter/chain/solana"
	"crypto-payments/internal/core/ports"

	"github.com/rs/zerolog"
)

// buildNetworks connects every configured network. The returned func closes the RPC clients.
func buildNetworks(ctx context.Context, networks []config.NetworkConfig, log zerolog.Logger) (ports.NetworkClients, ports.BlockchainReaders, func(), error) {
	clients := make(ports.NetworkClients, len(networks))
	readers := make(ports.BlockchainReaders, len(networks))
	var closers []func()
	closeAll := func() {
		for _, c := range closers {
			c()
		}
	}

	for _, n := range networks {
		netLog := log.With().Str("network", n.Name).Logger()

		switch n.Type {
		case "evm":
			backend, err := evm.Dial(ctx, n.RPCURL)
			if err != nil {
				closeAll()
				return nil, nil, nil, fmt.Errorf("dial %s: %w", n.Name, err)
			}
			closers = append(closers, backend.Close)
			clients[n.Name] = evm.NewNetworkClient(backend, n.ChainID, n.Currency, netLog)
			readers[n.Name] = evm.NewBlockchainReader(backend, n.Name, n.LookbackBlocks, n.TokenDecimals, netLog)

		case "solana":
			rpcClient := solana.Dial(n.RPCURL)
			closers = append(closers, func() { _ = rpcClient.Close() })
			clients[n.Name] = solana.NewNetworkClient(rpcClient, n.Currency, netLog)
			readers[n.Name] = solana.NewBlockchainReader(rpcClient, n.Name, int(n.LookbackBlocks), netLog)

		default:
			closeAll()
			return nil, nil, nil, fmt.Errorf("network %q: unknown type %q", n.Name, n.Type)
		}

		netLog.Info().Str("type", n.Type).Str("currency", n.Currency).Msg("Network configured")
	}

	return clients, readers, closeAll, nil
}
