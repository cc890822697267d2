package llm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/joseph-ayodele/assignment-feedback/constants"
	"github.com/joseph-ayodele/assignment-feedback/internal/entity"
)

func TestPrompts_RequirementsContext(t *testing.T) {
	withReq := BuildDirectPrompt("Discuss two causes of the war.")
	assert.Contains(t, withReq, "Discuss two causes of the war.")
	assert.Contains(t, withReq, `"category_scores"`)

	without := BuildDirectPrompt("   ")
	assert.Contains(t, without, "general academic standards")

	assert.Contains(t, BuildChunkPrompt("", 1, 3), "section 2 of 3")
	assert.Contains(t, BuildChunkPrompt("", 1, 3), `"observations"`)
	assert.Contains(t, BuildNativePrompt("r"), "attached as a document")
}

func TestBuildMergePrompt(t *testing.T) {
	scores := entity.CategoryScores{
		constants.Content: 80, constants.Structure: 70, constants.Analysis: 60,
		constants.Language: 90, constants.References: 50,
	}
	partials := []entity.PartialAssessment{
		{ChunkIndex: 0, ChunkLength: 7999, Observations: "Intro is clear.", Strengths: []string{"Hook"}, CategoryScores: scores},
		{ChunkIndex: 1, ChunkLength: 3999, Observations: "Conclusion rushed.", Improvements: []string{"Expand ending"}, CategoryScores: scores},
	}
	prompt, evidence := BuildMergePrompt("", partials)

	assert.Contains(t, prompt, "longer sections carry more weight")
	assert.Less(t, strings.Index(evidence, "Intro is clear."), strings.Index(evidence, "Conclusion rushed."))
	assert.Contains(t, evidence, "Section 1 of 2 (7999 characters)")
	assert.Contains(t, evidence, "Content=80 Structure=70 Analysis=60 Language=90 References=50")
	assert.Contains(t, evidence, "Areas for improvement: Expand ending")
}
