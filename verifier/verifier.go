// Package verifier checks that the bridge pairs declared by token data files
// are consistent on-chain.
package verifier

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	ethCommon "github.com/ethereum/go-ethereum/common"
	"golang.org/x/sync/errgroup"

	"github.com/superbridgeapp/superchain-token-list/common"
	"github.com/superbridgeapp/superchain-token-list/evm"
	"github.com/superbridgeapp/superchain-token-list/generator"
	"github.com/superbridgeapp/superchain-token-list/log"
	"github.com/superbridgeapp/superchain-token-list/tokenlist"
)

var (
	ErrBaseBridgeNotFound   = errors.New("BASE_BRIDGE not found")
	ErrRemoteBridgeNotFound = errors.New("REMOTE_BRIDGE not found")
	ErrBridgeMismatch       = errors.New("bridge addresses do not match")
	ErrDecimalsMismatch     = errors.New("decimals do not match")
)

type Status string

const (
	// StatusSkipped: the deployment is not an OptimismMintableERC20, there is
	// no pair to check.
	StatusSkipped  Status = "skipped"
	StatusVerified Status = "verified"
	StatusFailed   Status = "failed"
)

// ChainResult is the outcome of checking one declared deployment.
type ChainResult struct {
	ChainID common.ChainID
	Address string
	Status  Status
	// BaseChainID is the chain of REMOTE_TOKEN, when the deployment is mintable.
	BaseChainID common.ChainID
	Err         error
}

// FileResult is the outcome of checking one data file.
type FileResult struct {
	Path string
	// Ignored is set for paths that are not data files.
	Ignored bool
	Name    string
	// Err is set when the file itself could not be checked.
	Err    error
	Chains []ChainResult
}

// Failed reports whether the file or any of its chains failed.
func (r *FileResult) Failed() bool {
	if r.Err != nil {
		return true
	}
	for _, c := range r.Chains {
		if c.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Report collects the results of a verification run.
type Report struct {
	Files []FileResult
}

// Failed reports whether any check of the run failed.
func (r *Report) Failed() bool {
	for i := range r.Files {
		if r.Files[i].Failed() {
			return true
		}
	}
	return false
}

// Verifier checks token data files against the chains.
type Verifier struct {
	source        evm.Source
	dataDir       string
	checkDecimals bool
	logger        *log.Logger
}

// New returns a verifier for the data files under dataDir. With
// checkDecimals, every deployment's decimals() must match its data file.
func New(source evm.Source, dataDir string, checkDecimals bool, logger *log.Logger) *Verifier {
	return &Verifier{
		source:        source,
		dataDir:       dataDir,
		checkDecimals: checkDecimals,
		logger:        logger.WithModule("verifier"),
	}
}

// Verify checks the given files, or every data file when paths is empty.
// Check failures are part of the report; the returned error is only set when
// the run itself could not proceed.
func (v *Verifier) Verify(ctx context.Context, paths []string) (*Report, error) {
	if len(paths) == 0 {
		all, err := tokenlist.DataFiles(v.dataDir)
		if err != nil {
			return nil, err
		}
		paths = all
	}

	report := &Report{Files: make([]FileResult, 0, len(paths))}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		result := v.verifyFile(ctx, path)
		v.logFile(&result)
		report.Files = append(report.Files, result)
	}
	return report, nil
}

// isDataFile reports whether path is a .json file inside the data directory.
func (v *Verifier) isDataFile(path string) bool {
	if filepath.Ext(path) != ".json" {
		return false
	}
	dir, err := filepath.Abs(v.dataDir)
	if err != nil {
		return false
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(dir, abs)
	if err != nil {
		return false
	}
	return rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (v *Verifier) verifyFile(ctx context.Context, path string) FileResult {
	result := FileResult{Path: path}
	if !v.isDataFile(path) {
		result.Ignored = true
		return result
	}
	data, err := tokenlist.LoadTokenData(path)
	if err != nil {
		result.Err = err
		return result
	}
	result.Name = data.Name
	v.logger.Info("verifying token", "path", path, "name", data.Name, "op_token_id", data.OpTokenID)

	chainIDs := data.Addresses.ChainIDs()
	result.Chains = make([]ChainResult, len(chainIDs))
	var group errgroup.Group
	for i, chainID := range chainIDs {
		group.Go(func() error {
			result.Chains[i] = v.verifyChain(ctx, data, chainID)
			return nil
		})
	}
	_ = group.Wait()
	return result
}

// verifyChain checks the bridge pair of one deployment and then, when
// enabled, its decimals. Both failures are reported together.
func (v *Verifier) verifyChain(ctx context.Context, data *tokenlist.TokenData, chainID common.ChainID) ChainResult {
	result := ChainResult{ChainID: chainID, Address: data.Addresses[chainID]}
	address, err := common.ParseAddress(result.Address)
	if err != nil {
		result.Status, result.Err = StatusFailed, err
		return result
	}
	client, err := v.source.Chain(ctx, chainID)
	if err != nil {
		result.Status, result.Err = StatusFailed, err
		return result
	}

	result = v.verifyPair(ctx, client, address, data, chainID)
	if !v.checkDecimals {
		return result
	}
	if err := v.verifyDecimals(ctx, client, address, data); err != nil {
		result.Status = StatusFailed
		result.Err = errors.Join(result.Err, err)
	}
	return result
}

func (v *Verifier) verifyDecimals(ctx context.Context, client *evm.Client, address ethCommon.Address, data *tokenlist.TokenData) error {
	decimals, err := client.Decimals(ctx, address)
	if err != nil {
		return err
	}
	if decimals != data.Decimals {
		return fmt.Errorf("%w: chain has %d, data file has %d", ErrDecimalsMismatch, decimals, data.Decimals)
	}
	return nil
}

func (v *Verifier) verifyPair(ctx context.Context, client *evm.Client, address ethCommon.Address, data *tokenlist.TokenData, chainID common.ChainID) ChainResult {
	result := ChainResult{ChainID: chainID, Address: data.Addresses[chainID]}
	fail := func(err error) ChainResult {
		result.Status = StatusFailed
		result.Err = err
		return result
	}

	mintable, err := client.MintableToken(ctx, address)
	if err != nil {
		return fail(err)
	}
	if mintable == nil {
		result.Status = StatusSkipped
		return result
	}

	baseChainID, found, err := data.Addresses.FindChain(mintable.RemoteToken.Hex())
	switch {
	case err != nil:
		return fail(err)
	case !found:
		return fail(fmt.Errorf("%w for %s:%s", generator.ErrNoBaseChain, data.Symbol, chainID))
	}
	result.BaseChainID = baseChainID

	baseBridge, err := client.OtherBridge(ctx, mintable.Bridge)
	switch {
	case errors.Is(err, evm.ErrNotImplemented):
		return fail(fmt.Errorf("%w: bridge %s", ErrBaseBridgeNotFound, mintable.Bridge.Hex()))
	case err != nil:
		return fail(err)
	}

	// The base bridge lives on the base chain.
	baseClient, err := v.source.Chain(ctx, baseChainID)
	if err != nil {
		return fail(err)
	}
	remoteBridge, err := baseClient.OtherBridge(ctx, baseBridge)
	switch {
	case errors.Is(err, evm.ErrNotImplemented):
		return fail(fmt.Errorf("%w: base bridge %s on chain %s", ErrRemoteBridgeNotFound, baseBridge.Hex(), baseChainID))
	case err != nil:
		return fail(err)
	}
	if remoteBridge != mintable.Bridge {
		return fail(fmt.Errorf("%w: BRIDGE is %s, OTHER_BRIDGE of %s is %s",
			ErrBridgeMismatch, mintable.Bridge.Hex(), baseBridge.Hex(), remoteBridge.Hex()))
	}

	result.Status = StatusVerified
	return result
}

func (v *Verifier) logFile(result *FileResult) {
	switch {
	case result.Ignored:
		v.logger.Debug("ignoring path that is not a data file", "path", result.Path)
		return
	case result.Err != nil:
		v.logger.Error("verification failed", "path", result.Path, "err", result.Err)
		return
	}
	for _, c := range result.Chains {
		keyvals := []interface{}{"path", result.Path, "chain_id", c.ChainID.String(), "address", c.Address, "status", string(c.Status)}
		switch c.Status {
		case StatusFailed:
			v.logger.Error("verification failed", append(keyvals, "err", c.Err)...)
		case StatusVerified:
			v.logger.Info("bridge pair verified", append(keyvals, "base_chain_id", c.BaseChainID.String())...)
		default:
			v.logger.Info("not mintable, skipped", keyvals...)
		}
	}
}
