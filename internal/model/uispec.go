package model

// UISpecVersion is the only block-spec version this engine emits.
const UISpecVersion = "1.0"

// BlockType enumerates the renderable block kinds.
type BlockType string

const (
	BlockPropertyResults BlockType = "property_results"
	BlockContactAgent    BlockType = "contact_agent"
	BlockNotice          BlockType = "notice"
	BlockDivider         BlockType = "divider"
)

// Notice kinds.
const (
	NoticeInfo    = "info"
	NoticeWarning = "warning"
)

// Block is one typed UI block. Only the fields of the declared Type are
// populated; the rest stay at their zero value and are omitted from JSON.
type Block struct {
	Type BlockType `json:"type"`

	// property_results
	Summary  string         `json:"summary,omitempty"`
	Total    int            `json:"total,omitempty"`
	Page     int            `json:"page,omitempty"`
	PageSize int            `json:"page_size,omitempty"`
	HasMore  bool           `json:"has_more,omitempty"`
	Items    []PropertyCard `json:"items,omitempty"`

	// contact_agent
	Headline string `json:"headline,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Email    string `json:"email,omitempty"`

	// notice
	Kind string `json:"kind,omitempty"`
	Text string `json:"text,omitempty"`
}

// ChatUISpec is the versioned block structure returned to renderers.
type ChatUISpec struct {
	Version string  `json:"version"`
	Blocks  []Block `json:"blocks"`
}

// fallbackNoticeText is what a consumer shows when it cannot render a spec.
const fallbackNoticeText = "Unsupported response. Please contact our agent directly."

// NoticeSpec builds a single-notice spec.
func NoticeSpec(kind, text string) ChatUISpec {
	return ChatUISpec{
		Version: UISpecVersion,
		Blocks:  []Block{{Type: BlockNotice, Kind: kind, Text: text}},
	}
}

// SanitizeSpec enforces the consumer fallback contract: an unknown version
// degrades the whole spec to a single Notice, and any unrecognized block type
// degrades to a Notice in place. It never fails.
func SanitizeSpec(spec ChatUISpec) ChatUISpec {
	if spec.Version != UISpecVersion {
		return NoticeSpec(NoticeWarning, fallbackNoticeText)
	}
	out := ChatUISpec{Version: spec.Version, Blocks: make([]Block, 0, len(spec.Blocks))}
	for _, b := range spec.Blocks {
		switch b.Type {
		case BlockPropertyResults, BlockContactAgent, BlockNotice, BlockDivider:
			out.Blocks = append(out.Blocks, b)
		default:
			out.Blocks = append(out.Blocks, Block{Type: BlockNotice, Kind: NoticeInfo, Text: fallbackNoticeText})
		}
	}
	return out
}
