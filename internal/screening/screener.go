// Package screening asks a generative model whether a résumé matches a role
// and parses the answer strictly.
package screening

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"github.com/mitchellh/mapstructure"
	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/spigell/recruiter/internal/ai"
	"github.com/spigell/recruiter/internal/roles"
	"github.com/spigell/recruiter/internal/utils"
)

//go:embed prompt.md
var promptTemplate string

//go:embed response.schema.json
var responseSchemaJSON string

var responseSchema = mustSchema(responseSchemaJSON)

const defaultMaxLogLength = 200

// Decision is the parsed answer of a screening call.
type Decision struct {
	Selected        bool     `mapstructure:"selected" json:"selected"`
	Feedback        string   `mapstructure:"feedback" json:"feedback"`
	MatchingSkills  []string `mapstructure:"matching_skills" json:"matching_skills,omitempty"`
	MissingSkills   []string `mapstructure:"missing_skills" json:"missing_skills,omitempty"`
	ExperienceLevel string   `mapstructure:"experience_level" json:"experience_level,omitempty"`
	Raw             string   `mapstructure:"-" json:"-"`
}

type Screener struct {
	completer ai.Completer
	logger    *zap.Logger
	maxLogLen int
}

func New(completer ai.Completer, logger *zap.Logger, maxLogLength int) *Screener {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Screener{
		completer: completer,
		logger:    logger,
		maxLogLen: maxLogLength,
	}
}

// Screen scores resumeText against the requirements of role. The completer is
// called exactly once; a failed call or an unparseable answer ends the attempt.
func (s *Screener) Screen(ctx context.Context, resumeText string, role roles.Role, company string) (*Decision, error) {
	if s == nil || s.completer == nil {
		return nil, fmt.Errorf("screener is not initialized")
	}

	systemPrompt, userPrompt, err := BuildPrompts(resumeText, role, company)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("screening request",
		zap.String("role", role.String()),
		zap.Int("prompt_length", utf8.RuneCountInString(userPrompt)),
		zap.String("prompt_preview", utils.TruncateForLog(userPrompt, s.maxLogLen)),
	)

	raw, err := s.completer.Complete(ctx, systemPrompt, userPrompt)
	if err != nil {
		return nil, &TransportError{Model: s.completer.Model(), Err: err}
	}

	s.logger.Debug("screening response",
		zap.String("role", role.String()),
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", utils.TruncateForLog(raw, s.maxLogLen)),
	)

	decision, err := ParseDecision(raw)
	if err != nil {
		return nil, err
	}

	return decision, nil
}

// BuildPrompts renders the system and user prompts for a screening call.
// The output depends only on its arguments.
func BuildPrompts(resumeText string, role roles.Role, company string) (string, string, error) {
	requirements, err := roles.Requirements(role)
	if err != nil {
		return "", "", err
	}

	if utils.Blank(resumeText) {
		return "", "", fmt.Errorf("resume text must not be empty")
	}

	system := fmt.Sprintf(
		"You are an expert technical recruiter for %s. "+
			"Analyze resumes for technical roles and decide if a candidate should be selected.",
		strings.TrimSpace(company),
	)

	user := strings.ReplaceAll(promptTemplate, "{{REQUIREMENTS}}", requirements)
	user = strings.ReplaceAll(user, "{{RESUME}}", resumeText)

	return system, user, nil
}

// ParseDecision treats raw as untrusted model output. It accepts a single JSON
// object, optionally wrapped in a markdown code fence, that satisfies the
// response schema.
func ParseDecision(raw string) (*Decision, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, &FormatError{Raw: raw, Err: err}
	}
	if data == nil {
		return nil, &FormatError{Raw: raw, Problems: []string{"response is not a JSON object"}}
	}

	result, err := responseSchema.Validate(gojsonschema.NewGoLoader(data))
	if err != nil {
		return nil, &FormatError{Raw: raw, Err: err}
	}
	if !result.Valid() {
		problems := make([]string, 0, len(result.Errors()))
		for _, re := range result.Errors() {
			problems = append(problems, fmt.Sprintf("%s: %s", re.Field(), re.Description()))
		}
		return nil, &FormatError{Raw: raw, Problems: problems}
	}

	var decision Decision
	if err := mapstructure.Decode(data, &decision); err != nil {
		return nil, &FormatError{Raw: raw, Err: err}
	}

	decision.Raw = raw

	return &decision, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	return strings.TrimSpace(raw)
}

func mustSchema(schema string) *gojsonschema.Schema {
	s, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(schema))
	if err != nil {
		panic(fmt.Sprintf("screening response schema: %v", err))
	}
	return s
}
