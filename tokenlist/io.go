package tokenlist

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// DataFileName is the name of the per-token data file inside its folder.
const DataFileName = "data.json"

// LoadTokenList reads a canonical token list file.
func LoadTokenList(path string) (*TokenList, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading token list: %w", err)
	}
	var list TokenList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("invalid JSON at %s: %w", path, err)
	}
	return &list, nil
}

// WriteTokenList writes a canonical token list file.
func WriteTokenList(path string, list *TokenList) error {
	raw, err := Marshal(list)
	if err != nil {
		return fmt.Errorf("encoding token list: %w", err)
	}
	if err := os.WriteFile(path, raw, 0o644); err != nil { //nolint:gosec // The token list is public data.
		return fmt.Errorf("writing token list: %w", err)
	}
	return nil
}

// LoadTokenData reads a single per-token data file.
func LoadTokenData(path string) (*TokenData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading token data: %w", err)
	}
	var data TokenData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("invalid JSON at %s: %w", path, err)
	}
	return &data, nil
}

// DataFiles lists the data file of every token folder in dir, sorted by
// folder name. Entries that are not directories are ignored.
func DataFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading data dir: %w", err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })

	var paths []string
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(dir, e.Name(), DataFileName)
		if _, err := os.Stat(path); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("token folder %s has no %s", e.Name(), DataFileName)
			}
			return nil, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// ReadDataDir loads every token data file in dir, in folder name order.
func ReadDataDir(dir string) ([]TokenData, error) {
	paths, err := DataFiles(dir)
	if err != nil {
		return nil, err
	}
	tokens := make([]TokenData, 0, len(paths))
	for _, path := range paths {
		data, err := LoadTokenData(path)
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, *data)
	}
	return tokens, nil
}

// WriteDataDir writes `dir/<opTokenId>/data.json` for every token, creating
// folders as needed. Existing files are overwritten.
func WriteDataDir(dir string, tokens []TokenData) error {
	for _, token := range tokens {
		if err := validateOpTokenID(token.OpTokenID); err != nil {
			return err
		}
		folder := filepath.Join(dir, token.OpTokenID)
		if err := os.MkdirAll(folder, 0o755); err != nil {
			return fmt.Errorf("creating token folder: %w", err)
		}
		raw, err := Marshal(token)
		if err != nil {
			return fmt.Errorf("encoding %s: %w", token.OpTokenID, err)
		}
		if err := os.WriteFile(filepath.Join(folder, DataFileName), raw, 0o644); err != nil { //nolint:gosec // Token data is public.
			return fmt.Errorf("writing %s: %w", token.OpTokenID, err)
		}
	}
	return nil
}

// The op token id names a folder, so it must be a single path element.
func validateOpTokenID(id string) error {
	switch {
	case id == "":
		return fmt.Errorf("empty opTokenId")
	case id == "." || id == "..", strings.ContainsAny(id, `/\`):
		return fmt.Errorf("opTokenId '%s' is not a valid folder name", id)
	}
	return nil
}
