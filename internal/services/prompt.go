package services

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"nihith303/interview-ace/internal/interview"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// PromptSettings are the tunable parts of the generation and scoring prompts.
type PromptSettings struct {
	InterviewerPersona  string            `yaml:"interviewer_persona"`
	QuestionGuidelines  []string          `yaml:"question_guidelines"`
	QuestionTemperature float32           `yaml:"question_temperature"`
	EvaluatorPersona    string            `yaml:"evaluator_persona"`
	Dimensions          DimensionSettings `yaml:"dimensions"`
	UnansweredGuidance  string            `yaml:"unanswered_guidance"`
	ScoringTemperature  float32           `yaml:"scoring_temperature"`
}

type DimensionSettings struct {
	Confidence       string `yaml:"confidence"`
	Correctness      string `yaml:"correctness"`
	DepthOfKnowledge string `yaml:"depth_of_knowledge"`
	RoleFit          string `yaml:"role_fit"`
}

// LoadPromptSettings reads the embedded defaults and, when path is set,
// overlays the file at path on top of them.
func LoadPromptSettings(path string) (PromptSettings, error) {
	var settings PromptSettings
	if err := yaml.Unmarshal(defaultPrompts, &settings); err != nil {
		return PromptSettings{}, fmt.Errorf("failed to parse default prompts: %w", err)
	}
	if path == "" {
		return settings, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return PromptSettings{}, fmt.Errorf("failed to read prompts file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &settings); err != nil {
		return PromptSettings{}, fmt.Errorf("failed to parse prompts file %s: %w", path, err)
	}
	if err := settings.validate(); err != nil {
		return PromptSettings{}, fmt.Errorf("invalid prompts file %s: %w", path, err)
	}
	return settings, nil
}

func (p PromptSettings) validate() error {
	switch {
	case strings.TrimSpace(p.InterviewerPersona) == "":
		return fmt.Errorf("interviewer_persona must not be empty")
	case strings.TrimSpace(p.EvaluatorPersona) == "":
		return fmt.Errorf("evaluator_persona must not be empty")
	case p.QuestionTemperature < 0 || p.QuestionTemperature > 2:
		return fmt.Errorf("question_temperature must be between 0 and 2")
	case p.ScoringTemperature < 0 || p.ScoringTemperature > 2:
		return fmt.Errorf("scoring_temperature must be between 0 and 2")
	}
	return nil
}

type PromptBuilder struct {
	settings PromptSettings
}

func NewPromptBuilder(settings PromptSettings) *PromptBuilder {
	return &PromptBuilder{settings: settings}
}

// BuildQuestionPrompt asks for count questions tailored to the role, company
// and attached resume.
func (pb *PromptBuilder) BuildQuestionPrompt(cfg interview.SessionConfig, count int) Prompt {
	var guidelines strings.Builder
	for _, g := range pb.settings.QuestionGuidelines {
		guidelines.WriteString("- ")
		guidelines.WriteString(g)
		guidelines.WriteString("\n")
	}

	user := fmt.Sprintf(`Prepare a practice interview for a %s position at %s.

The candidate's resume is attached.

Write exactly %d interview questions.

GUIDELINES:
%s
Return your response in the following JSON format:
{
  "questions": ["<question 1>", "<question 2>"]
}`, cfg.Role, cfg.Company, count, guidelines.String())

	return Prompt{
		System:      pb.settings.InterviewerPersona,
		User:        user,
		Attachment:  cfg.Resume,
		Temperature: pb.settings.QuestionTemperature,
		JSON:        true,
	}
}

// BuildScoringPrompt renders the whole transcript, unanswered entries
// included, with optional rubric context.
func (pb *PromptBuilder) BuildScoringPrompt(req ScoringRequest, rubric string) Prompt {
	var transcript strings.Builder
	for i, entry := range req.Transcript {
		fmt.Fprintf(&transcript, "Q%d: %s\nA%d: %s\n\n", i+1, entry.Question.Text, i+1, entry.AnswerText())
	}

	if strings.TrimSpace(rubric) == "" {
		rubric = "No additional rubric provided."
	}

	d := pb.settings.Dimensions
	user := fmt.Sprintf(`Evaluate this practice interview for a %s position at %s.

SCORING RUBRIC:
%s

INTERVIEW TRANSCRIPT:
%s
%s

Score each dimension as an integer from %d to %d:
1. confidence - %s
2. correctness - %s
3. depth_of_knowledge - %s
4. role_fit - %s

Return your response in the following JSON format:
{
  "confidence": <%d-%d>,
  "correctness": <%d-%d>,
  "depth_of_knowledge": <%d-%d>,
  "role_fit": <%d-%d>
}`,
		req.Role, req.Company, rubric, transcript.String(), pb.settings.UnansweredGuidance,
		interview.ScoreMin, interview.ScoreMax,
		d.Confidence, d.Correctness, d.DepthOfKnowledge, d.RoleFit,
		interview.ScoreMin, interview.ScoreMax,
		interview.ScoreMin, interview.ScoreMax,
		interview.ScoreMin, interview.ScoreMax,
		interview.ScoreMin, interview.ScoreMax)

	return Prompt{
		System:      pb.settings.EvaluatorPersona,
		User:        user,
		Temperature: pb.settings.ScoringTemperature,
		JSON:        true,
	}
}

// BuildRubricQuery is the retrieval query for rubric context.
func (pb *PromptBuilder) BuildRubricQuery(role, company string) string {
	return fmt.Sprintf("Interview evaluation criteria and expectations for a %s at %s", role, company)
}

// FormatRubricContext joins retrieved rubric chunks for inclusion in a prompt.
func FormatRubricContext(results []SearchResult) string {
	if len(results) == 0 {
		return ""
	}

	var parts []string
	for i, result := range results {
		parts = append(parts, fmt.Sprintf("--- Context %d (Score: %.2f) ---\n%s",
			i+1, result.Score, strings.TrimSpace(result.Text)))
	}

	return strings.Join(parts, "\n\n")
}
