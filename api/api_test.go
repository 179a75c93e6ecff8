package api

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/superbridgeapp/superchain-token-list/chains"
	"github.com/superbridgeapp/superchain-token-list/common"
	"github.com/superbridgeapp/superchain-token-list/config"
	"github.com/superbridgeapp/superchain-token-list/log"
	"github.com/superbridgeapp/superchain-token-list/metrics"
	"github.com/superbridgeapp/superchain-token-list/tokenlist"
)

func testArtifacts() *Artifacts {
	usdc := tokenlist.TokenData{
		Name: "USD Coin", Symbol: "USDC", Decimals: 6, OpTokenID: "USDC",
		LogoURI:   "https://example.com/usdc.png?size=64&format=png",
		Addresses: tokenlist.ChainAddresses{1: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"},
	}
	return &Artifacts{
		TokenList: &tokenlist.TokenList{
			Name:      "Test List",
			Keywords:  []string{"test"},
			Timestamp: tokenlist.Timestamp{Time: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)},
			Tokens: []tokenlist.Token{{
				Name: "USD Coin", Symbol: "USDC", Decimals: 6, ChainID: 1,
				Address: "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
				Extensions: tokenlist.Extensions{
					OpTokenID:               "USDC",
					StandardBridgeAddresses: tokenlist.ChainAddresses{10: "0x99C9fc46f92E8a1c0deC1b1747d010903E884bE1"},
				},
			}},
			Version: tokenlist.Version{Major: 1},
		},
		Tokens: []tokenlist.TokenData{usdc},
		Chains: chains.NewRegistry().All(),
	}
}

func newTestServer(t *testing.T, artifacts *Artifacts, m metrics.RequestMetrics) *httptest.Server {
	srv := httptest.NewServer(NewRouter(artifacts, m, log.NewDefaultLogger("api-test")))
	t.Cleanup(srv.Close)
	return srv
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	resp, err := http.Get(url) //nolint:noctx
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func TestGetTokenList(t *testing.T) {
	artifacts := testArtifacts()
	srv := newTestServer(t, artifacts, metrics.NewDefaultRequestMetrics("api_test"))

	resp, body := get(t, srv.URL+"/tokenlist.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "application/json; charset=utf-8", resp.Header.Get("content-type"))

	expected, err := tokenlist.Marshal(artifacts.TokenList)
	require.NoError(t, err)
	require.Equal(t, string(expected), string(body))
}

func TestGetTokens(t *testing.T) {
	srv := newTestServer(t, testArtifacts(), metrics.NewDefaultRequestMetrics("api_test"))

	resp, body := get(t, srv.URL+"/tokens")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var tokens []tokenlist.TokenData
	require.NoError(t, json.Unmarshal(body, &tokens))
	require.Len(t, tokens, 1)
	require.Equal(t, "USDC", tokens[0].OpTokenID)
	// Logo URLs are not HTML-escaped.
	require.Contains(t, string(body), "size=64&format=png")

	resp, body = get(t, srv.URL+"/tokens/USDC")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var token tokenlist.TokenData
	require.NoError(t, json.Unmarshal(body, &token))
	require.Equal(t, common.ChainID(1), token.Addresses.ChainIDs()[0])
}

func TestGetTokenNotFound(t *testing.T) {
	srv := newTestServer(t, testArtifacts(), metrics.NewDefaultRequestMetrics("api_test"))

	resp, body := get(t, srv.URL+"/tokens/NOPE")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	var errStruct HumanReadableError
	require.NoError(t, json.Unmarshal(body, &errStruct))
	require.Equal(t, "token NOPE: item not found", errStruct.Msg)

	resp, _ = get(t, srv.URL+"/nowhere")
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t, testArtifacts(), metrics.NewDefaultRequestMetrics("api_test"))

	resp, err := http.Post(srv.URL+"/tokens", "application/json", nil) //nolint:noctx
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestGetChainsHidesRPCs(t *testing.T) {
	srv := newTestServer(t, testArtifacts(), metrics.NewDefaultRequestMetrics("api_test"))

	resp, body := get(t, srv.URL+"/chains")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotContains(t, string(body), "https://")

	var all []chains.Chain
	require.NoError(t, json.Unmarshal(body, &all))
	require.NotEmpty(t, all)
	require.Equal(t, common.ChainID(1), all[0].ID)
}

func TestCors(t *testing.T) {
	srv := newTestServer(t, testArtifacts(), metrics.NewDefaultRequestMetrics("api_test"))

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/tokens", nil) //nolint:noctx
	require.NoError(t, err)
	req.Header.Set("Origin", "https://app.example.com")
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestRequestMetrics(t *testing.T) {
	m := metrics.NewDefaultRequestMetrics("api_metrics_test")
	srv := newTestServer(t, testArtifacts(), m)

	success := m.RequestCounter("/tokens/*", "success")
	ignored := m.RequestCounter("ignored", "failure_4xx")
	successBefore, ignoredBefore := testutil.ToFloat64(success), testutil.ToFloat64(ignored)

	get(t, srv.URL+"/tokens/USDC")
	get(t, srv.URL+"/tokens/NOPE")

	require.Equal(t, successBefore+1, testutil.ToFloat64(success))
	require.Equal(t, ignoredBefore+1, testutil.ToFloat64(ignored))
}

func TestNormalizeEndpoint(t *testing.T) {
	require.Equal(t, "/tokens/*", normalizeEndpoint("/tokens/USDC"))
	require.Equal(t, "/tokens", normalizeEndpoint("/tokens"))
	require.Equal(t, "/tokenlist.json", normalizeEndpoint("/tokenlist.json"))
}

func TestLoadArtifacts(t *testing.T) {
	dir := t.TempDir()
	artifacts := testArtifacts()
	paths := config.PathsConfig{
		TokenList: filepath.Join(dir, "superchain.tokenlist.json"),
		DataDir:   filepath.Join(dir, "data"),
	}
	require.NoError(t, tokenlist.WriteTokenList(paths.TokenList, artifacts.TokenList))
	require.NoError(t, tokenlist.WriteDataDir(paths.DataDir, artifacts.Tokens))

	loaded, err := LoadArtifacts(&paths, chains.NewRegistry())
	require.NoError(t, err)
	require.Equal(t, artifacts.TokenList.Name, loaded.TokenList.Name)
	require.Equal(t, artifacts.Tokens, loaded.Tokens)
	require.Equal(t, artifacts.Chains, loaded.Chains)

	_, err = LoadArtifacts(&config.PathsConfig{TokenList: filepath.Join(dir, "missing.json"), DataDir: paths.DataDir}, chains.NewRegistry())
	require.Error(t, err)
}

func TestGetTokenListServesFile(t *testing.T) {
	dir := t.TempDir()
	paths := config.PathsConfig{
		TokenList: filepath.Join(dir, "superchain.tokenlist.json"),
		DataDir:   filepath.Join(dir, "data"),
	}
	committed := `{
  "name": "Test List",
  "logoURI": "",
  "keywords": [],
  "timestamp": "2024-05-01T00:00:00.000Z",
  "tokens": [
    {
      "name": "USD Coin",
      "symbol": "USDC",
      "decimals": 6,
      "logoURI": "",
      "address": "0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48",
      "chainId": 1,
      "extensions": {
        "opTokenId": "USDC",
        "standardBridgeAddresses": {},
        "bridgeInfo": {"10": {"tokenAddress": "0x0b2C639c533813f4Aa9D7837CAf62653d097Ff85"}}
      }
    }
  ],
  "version": {"major": 1, "minor": 0, "patch": 0}
}`
	require.NoError(t, os.WriteFile(paths.TokenList, []byte(committed), 0o600))
	require.NoError(t, tokenlist.WriteDataDir(paths.DataDir, testArtifacts().Tokens))

	artifacts, err := LoadArtifacts(&paths, chains.NewRegistry())
	require.NoError(t, err)
	srv := newTestServer(t, artifacts, metrics.NewDefaultRequestMetrics("api_test"))

	resp, body := get(t, srv.URL+"/tokenlist.json")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, committed, string(body))
}
