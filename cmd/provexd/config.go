// Copyright (c) 2026 The Provex developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"math/big"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/provex/provex/ledger"
	"github.com/provex/provex/provex"
)

// genesisConfig describes the initial ledger state.
type genesisConfig struct {
	Owner       string `yaml:"owner"`
	Allocations []struct {
		Address string `yaml:"address"`
		Balance string `yaml:"balance"`
	} `yaml:"allocations"`
}

// loadGenesis parses the genesis file into an owner and allocations.
func loadGenesis(path string) (provex.Address, []ledger.GenesisAccount, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return provex.Address{}, nil, errors.Wrap(err, "read genesis file")
	}
	var cfg genesisConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return provex.Address{}, nil, errors.Wrap(err, "parse genesis file")
	}
	owner, err := provex.ParseAddress(cfg.Owner)
	if err != nil {
		return provex.Address{}, nil, errors.Wrap(err, "genesis owner")
	}
	alloc := make([]ledger.GenesisAccount, 0, len(cfg.Allocations))
	for _, entry := range cfg.Allocations {
		addr, err := provex.ParseAddress(entry.Address)
		if err != nil {
			return provex.Address{}, nil, errors.Wrapf(err, "genesis allocation %q", entry.Address)
		}
		balance, ok := new(big.Int).SetString(entry.Balance, 10)
		if !ok || balance.Sign() < 0 {
			return provex.Address{}, nil, errors.Errorf("genesis allocation %s: malformed balance %q", entry.Address, entry.Balance)
		}
		alloc = append(alloc, ledger.GenesisAccount{Address: addr, Balance: balance})
	}
	return owner, alloc, nil
}
