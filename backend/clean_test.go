package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanOutputStripsTags(t *testing.T) {
	raw := "<p>Photosynthesis is the process plants use. source: bio101</p>"
	out := CleanOutput(raw)
	assert.NotContains(t, out, "<p>")
	assert.Contains(t, out, "Photosynthesis is the process")
}

func TestCleanOutputPrefersSourceCitedLine(t *testing.T) {
	raw := "Home\nSign in\nWater is essential for life. source: chem42\nSome other line."
	out := CleanOutput(raw)
	assert.Equal(t, "Water is essential for life. source: chem42", out)
}

func TestCleanOutputFallsBackToIsLineWithoutSource(t *testing.T) {
	raw := "Navigation menu\nGravity is a force of attraction between masses.\nUnrelated filler."
	out := CleanOutput(raw)
	assert.Equal(t, "Gravity is a force of attraction between masses.", out)
}

func TestCleanOutputDropsPromptEchoAndNav(t *testing.T) {
	raw := "User: explain gravity\nSystem: you are a helpful assistant\nCookie notice\nGravity pulls objects together."
	out := CleanOutput(raw)
	assert.Equal(t, "Gravity pulls objects together.", out)
}

func TestCleanOutputFallsBackToFullTextWhenNoHeuristicMatches(t *testing.T) {
	raw := "Just a plain answer with no magic phrases at all."
	out := CleanOutput(raw)
	assert.Equal(t, raw, out)
}
