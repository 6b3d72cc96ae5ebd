package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeSpec_UnknownVersion(t *testing.T) {
	spec := ChatUISpec{
		Version: "2.0",
		Blocks: []Block{
			{Type: BlockPropertyResults, Total: 10},
			{Type: BlockContactAgent},
		},
	}

	got := SanitizeSpec(spec)

	// The whole spec collapses to a single notice regardless of its content.
	assert.Equal(t, UISpecVersion, got.Version)
	require.Len(t, got.Blocks, 1)
	assert.Equal(t, BlockNotice, got.Blocks[0].Type)
	assert.NotEmpty(t, got.Blocks[0].Text)
}

func TestSanitizeSpec_UnknownBlockType(t *testing.T) {
	spec := ChatUISpec{
		Version: UISpecVersion,
		Blocks: []Block{
			{Type: BlockPropertyResults, Total: 3},
			{Type: BlockType("carousel_3d")},
			{Type: BlockContactAgent, Phone: "555-0100"},
		},
	}

	got := SanitizeSpec(spec)

	require.Len(t, got.Blocks, 3)
	assert.Equal(t, BlockPropertyResults, got.Blocks[0].Type)
	assert.Equal(t, BlockNotice, got.Blocks[1].Type)
	assert.Equal(t, BlockContactAgent, got.Blocks[2].Type)
	// Known blocks pass through untouched.
	assert.Equal(t, 3, got.Blocks[0].Total)
	assert.Equal(t, "555-0100", got.Blocks[2].Phone)
}

func TestSanitizeSpec_ValidSpecUnchanged(t *testing.T) {
	spec := NoticeSpec(NoticeInfo, "all good")
	got := SanitizeSpec(spec)
	assert.Equal(t, spec, got)
}

func TestNoticeSpec(t *testing.T) {
	spec := NoticeSpec(NoticeWarning, "heads up")
	assert.Equal(t, UISpecVersion, spec.Version)
	require.Len(t, spec.Blocks, 1)
	assert.Equal(t, BlockNotice, spec.Blocks[0].Type)
	assert.Equal(t, NoticeWarning, spec.Blocks[0].Kind)
	assert.Equal(t, "heads up", spec.Blocks[0].Text)
}
