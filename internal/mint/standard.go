package mint

import (
	"fmt"
	"strings"
)

// TokenStandard selects the claim path for a drop.
type TokenStandard string

const (
	// StandardERC721 mints unique tokens; one claim yields quantity new ids.
	StandardERC721 TokenStandard = "erc721"
	// StandardERC1155 mints quantity copies of a single token id.
	StandardERC1155 TokenStandard = "erc1155"
)

// ParseStandard accepts "erc721", "erc1155" and their hyphenated spellings.
func ParseStandard(s string) (TokenStandard, error) {
	switch strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "-", "") {
	case "erc721", "721":
		return StandardERC721, nil
	case "erc1155", "1155":
		return StandardERC1155, nil
	}
	return "", fmt.Errorf("unknown token standard %q (want erc721 or erc1155)", s)
}

// StandardFromFlags maps the legacy isERC1155/isERC721 pair onto a standard.
// isERC1155 decides; isERC721 is informational only.
func StandardFromFlags(isERC1155, isERC721 bool) TokenStandard {
	if isERC1155 {
		return StandardERC1155
	}
	return StandardERC721
}

// IsMultiToken reports whether claims carry a token id.
func (s TokenStandard) IsMultiToken() bool {
	return s == StandardERC1155
}

// Label returns the display form, e.g. "ERC-1155".
func (s TokenStandard) Label() string {
	switch s {
	case StandardERC1155:
		return "ERC-1155"
	case StandardERC721:
		return "ERC-721"
	}
	return string(s)
}
