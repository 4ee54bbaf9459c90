package models

// NFTAttribute is one trait of a badge's NFT metadata. Value is a string or a number.
type NFTAttribute struct {
	TraitType string      `json:"trait_type"`
	Value     interface{} `json:"value"`
}

// NFTMetadata follows the common ERC-721 metadata layout.
type NFTMetadata struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Attributes  []NFTAttribute `json:"attributes"`
}

// BadgeStyle is the visual treatment of a badge for one investor type.
type BadgeStyle struct {
	Gradient  [2]string `json:"gradient"`
	Accent    string    `json:"accent"`
	Icon      string    `json:"icon"`
	Glow      bool      `json:"glow"`
	TypeLabel string    `json:"type_label"`
}
