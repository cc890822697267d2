package llm

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/joseph-ayodele/assignment-feedback/constants"
	"github.com/joseph-ayodele/assignment-feedback/internal/entity"
)

const assessorRole = "You are an expert academic assessor."

// finalFormat is the JSON contract every final-assessment prompt asks for.
const finalFormat = "Provide a comprehensive assessment in the following JSON format:\n\n" +
	"```json\n" +
	"{\n" +
	"    \"title\": \"Assessment Title\",\n" +
	"    \"grade\": \"Letter grade (A+, A, A-, B+, etc.)\",\n" +
	"    \"score\": A number between 0 and 100,\n" +
	"    \"summary\": \"One paragraph summary of the work\",\n" +
	"    \"strengths\": [\"Strength 1\", \"Strength 2\", \"Strength 3\"],\n" +
	"    \"areas_for_improvement\": [\"Area 1\", \"Area 2\", \"Area 3\"],\n" +
	"    \"detailed_feedback\": [\"Paragraph 1\", \"Paragraph 2\", \"Paragraph 3\"],\n" +
	"    \"category_scores\": {\n" +
	"        \"Content\": Score between 0 and 100,\n" +
	"        \"Structure\": Score between 0 and 100,\n" +
	"        \"Analysis\": Score between 0 and 100,\n" +
	"        \"Language\": Score between 0 and 100,\n" +
	"        \"References\": Score between 0 and 100\n" +
	"    }\n" +
	"}\n" +
	"```\n\n" +
	"Return ONLY the JSON object. Ensure your assessment is fair, constructive, and specific to help the student improve."

const partialFormat = "Return ONLY JSON in the following format:\n\n" +
	"```json\n" +
	"{\n" +
	"    \"observations\": \"Key points of this section in 2-4 sentences\",\n" +
	"    \"strengths\": [\"Strength 1\", \"Strength 2\"],\n" +
	"    \"areas_for_improvement\": [\"Area 1\", \"Area 2\"],\n" +
	"    \"category_scores\": {\n" +
	"        \"Content\": Score between 0 and 100,\n" +
	"        \"Structure\": Score between 0 and 100,\n" +
	"        \"Analysis\": Score between 0 and 100,\n" +
	"        \"Language\": Score between 0 and 100,\n" +
	"        \"References\": Score between 0 and 100\n" +
	"    }\n" +
	"}\n" +
	"```"

// RequirementsContext renders the optional assignment requirements for inclusion in a prompt.
func RequirementsContext(requirements string) string {
	r := strings.TrimSpace(requirements)
	if r == "" {
		return "No specific assignment requirements were provided; assess against general academic standards."
	}
	return "Assess the work against these assignment requirements:\n\n" + r
}

// BuildDirectPrompt asks for a final assessment of a document supplied in full.
func BuildDirectPrompt(requirements string) string {
	return strings.Join([]string{
		assessorRole + " " + RequirementsContext(requirements),
		"Carefully analyze the student assignment that follows.",
		finalFormat,
	}, "\n\n")
}

// BuildChunkPrompt asks for a partial assessment of one section of a longer document.
func BuildChunkPrompt(requirements string, index, total int) string {
	return strings.Join([]string{
		assessorRole + " " + RequirementsContext(requirements),
		fmt.Sprintf("The text that follows is section %d of %d of a student assignment. "+
			"Extract key points, strengths, and weaknesses from this section and score it on each category.", index+1, total),
		partialFormat,
	}, "\n\n")
}

// BuildNativePrompt accompanies a raw document handed to the provider.
func BuildNativePrompt(requirements string) string {
	return strings.Join([]string{
		assessorRole + " " + RequirementsContext(requirements),
		"The student assignment is attached as a document.",
		finalFormat,
	}, "\n\n")
}

// BuildMergePrompt asks the model to reconcile section assessments into one final verdict.
// The evidence returned alongside it is what the model reconciles.
func BuildMergePrompt(requirements string, partials []entity.PartialAssessment) (prompt, evidence string) {
	prompt = strings.Join([]string{
		assessorRole + " Below are assessments of the individual sections of one student assignment, " +
			"each with its observations and category scores.",
		"Weigh the evidence from all sections (longer sections carry more weight) and reconcile it " +
			"into a single coherent assessment of the whole assignment.",
		RequirementsContext(requirements),
		finalFormat,
	}, "\n\n")
	return prompt, RenderPartials(partials)
}

// RenderPartials lays out partial assessments in chunk order.
func RenderPartials(partials []entity.PartialAssessment) string {
	var b strings.Builder
	for i, p := range partials {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "## Section %d of %d (%d characters)\n", i+1, len(partials), p.ChunkLength)
		b.WriteString("Observations: ")
		b.WriteString(strings.TrimSpace(p.Observations))
		b.WriteString("\n")
		if len(p.Strengths) > 0 {
			b.WriteString("Strengths: ")
			b.WriteString(strings.Join(p.Strengths, "; "))
			b.WriteString("\n")
		}
		if len(p.Improvements) > 0 {
			b.WriteString("Areas for improvement: ")
			b.WriteString(strings.Join(p.Improvements, "; "))
			b.WriteString("\n")
		}
		b.WriteString("Category scores:")
		for _, c := range constants.AllCategories() {
			b.WriteString(" ")
			b.WriteString(string(c))
			b.WriteString("=")
			b.WriteString(strconv.FormatFloat(p.CategoryScores[c], 'f', -1, 64))
		}
	}
	return b.String()
}
