// Package tokenlist implements the Superchain token list data model: the
// canonical multi-chain list and the per-token data files it is flattened into.
package tokenlist

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/superbridgeapp/superchain-token-list/common"
)

// ChainAddresses maps a chain id to an address on that chain.
//
// In JSON it is an object keyed by decimal chain id. Keys are emitted in
// ascending numeric order and values are kept verbatim.
type ChainAddresses map[common.ChainID]string

// ChainIDs returns the chain ids in ascending order.
func (ca ChainAddresses) ChainIDs() []common.ChainID {
	return common.SortedChainIDs(ca)
}

// FindChain returns the chain whose address equals addr, ignoring case.
// When several chains match, the lowest chain id wins.
func (ca ChainAddresses) FindChain(addr string) (common.ChainID, bool, error) {
	for _, id := range ca.ChainIDs() {
		eq, err := common.IsAddressEqual(ca[id], addr)
		if err != nil {
			return 0, false, fmt.Errorf("chain %s: %w", id, err)
		}
		if eq {
			return id, true, nil
		}
	}
	return 0, false, nil
}

func (ca ChainAddresses) MarshalJSON() ([]byte, error) {
	var b bytes.Buffer
	b.WriteByte('{')
	for i, id := range ca.ChainIDs() {
		if i > 0 {
			b.WriteByte(',')
		}
		key, err := marshalCompact(id.String())
		if err != nil {
			return nil, err
		}
		value, err := marshalCompact(ca[id])
		if err != nil {
			return nil, err
		}
		b.Write(key)
		b.WriteByte(':')
		b.Write(value)
	}
	b.WriteByte('}')
	return b.Bytes(), nil
}

func (ca *ChainAddresses) UnmarshalJSON(data []byte) error {
	var raw map[string]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	out := make(ChainAddresses, len(raw))
	for k, v := range raw {
		id, err := common.ParseChainID(k)
		if err != nil {
			return err
		}
		out[id] = v
	}
	*ca = out
	return nil
}

// TokenData is the content of one `data/<opTokenId>/data.json` file: a
// token and its address on every chain it lives on.
type TokenData struct {
	Name      string         `json:"name"`
	Symbol    string         `json:"symbol"`
	Decimals  uint8          `json:"decimals"`
	LogoURI   string         `json:"logoURI"`
	OpTokenID string         `json:"opTokenId"`
	Addresses ChainAddresses `json:"addresses"`
}

// Token is one (chain, address) entry of the canonical token list.
type Token struct {
	Name       string         `json:"name"`
	Symbol     string         `json:"symbol"`
	Decimals   uint8          `json:"decimals"`
	LogoURI    string         `json:"logoURI"`
	Address    string         `json:"address"`
	ChainID    common.ChainID `json:"chainId"`
	Extensions Extensions     `json:"extensions"`
}

// Extensions carries the Superchain specific token list fields.
type Extensions struct {
	OpTokenID string `json:"opTokenId"`
	// StandardBridgeAddresses maps the chain on the other side of a bridge
	// pair to the StandardBridge deployed on this token's chain.
	StandardBridgeAddresses ChainAddresses `json:"standardBridgeAddresses"`
}

// Version is the semantic version of a token list.
type Version struct {
	Major uint `json:"major" koanf:"major"`
	Minor uint `json:"minor" koanf:"minor"`
	Patch uint `json:"patch" koanf:"patch"`
}

func (v Version) String() string {
	return fmt.Sprintf("%d.%d.%d", v.Major, v.Minor, v.Patch)
}

// TokenList is the canonical Superchain token list.
type TokenList struct {
	Name      string    `json:"name"`
	LogoURI   string    `json:"logoURI"`
	Keywords  []string  `json:"keywords"`
	Timestamp Timestamp `json:"timestamp"`
	Tokens    []Token   `json:"tokens"`
	Version   Version   `json:"version"`
}

// timestampLayout is ISO 8601 in UTC with millisecond precision.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// Timestamp is a point in time serialized like `2024-05-01T12:00:00.000Z`.
type Timestamp struct {
	time.Time
}

func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + t.UTC().Format(timestampLayout) + `"`), nil
}

func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	s := strings.Trim(string(data), `"`)
	parsed, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("invalid timestamp '%s': %w", s, err)
	}
	t.Time = parsed
	return nil
}

// marshalCompact encodes v without HTML escaping, e.g. logo URLs keep their '&'.
func marshalCompact(v interface{}) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(b.Bytes(), []byte("\n")), nil
}

// Marshal encodes v the way every file in the repository is laid out: two
// space indentation, no HTML escaping, U+2028 and U+2029 left unescaped, no
// trailing newline.
func Marshal(v interface{}) ([]byte, error) {
	var b bytes.Buffer
	enc := json.NewEncoder(&b)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return unescapeLineSeparators(bytes.TrimSuffix(b.Bytes(), []byte("\n"))), nil
}

// unescapeLineSeparators turns the \u2028 and \u2029 escapes encoding/json
// always emits back into the raw characters. An escape preceded by an
// escaped backslash is literal text and is kept.
func unescapeLineSeparators(raw []byte) []byte {
	if !bytes.Contains(raw, []byte(`\u202`)) {
		return raw
	}
	out := make([]byte, 0, len(raw))
	for i := 0; i < len(raw); i++ {
		if raw[i] != '\\' {
			out = append(out, raw[i])
			continue
		}
		if i+5 < len(raw) && raw[i+1] == 'u' && string(raw[i+2:i+5]) == "202" && (raw[i+5] == '8' || raw[i+5] == '9') {
			if raw[i+5] == '8' {
				out = append(out, "\u2028"...)
			} else {
				out = append(out, "\u2029"...)
			}
			i += 5
			continue
		}
		// Any other escape: copy the backslash and the escaped byte.
		out = append(out, raw[i])
		if i+1 < len(raw) {
			out = append(out, raw[i+1])
			i++
		}
	}
	return out
}
