// Package roles holds the catalog of roles candidates can apply for and the
// skill requirements each role is screened against.
package roles

import (
	"errors"
	"fmt"
	"strings"
)

// Role identifies an open position.
type Role string

const (
	AIMLEngineer     Role = "AI_ML_Engineer"
	FrontendEngineer Role = "Frontend_Engineer"
	BackendEngineer  Role = "Backend_Engineer"
)

// ErrNotFound is matched by every NotFoundError.
var ErrNotFound = errors.New("role not found")

// NotFoundError reports a role identifier that is not part of the catalog.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("role %q not found (known roles: %s)", e.ID, strings.Join(ids(), ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

type entry struct {
	title        string
	requirements string
}

var order = []Role{AIMLEngineer, FrontendEngineer, BackendEngineer}

var catalog = map[Role]entry{
	AIMLEngineer: {
		title: "AI ML Engineer",
		requirements: `Required Skills:
- Python, PyTorch/TensorFlow
- Machine Learning algorithms and frameworks
- Deep Learning and Neural Networks
- Data preprocessing and analysis
- MLOps and model deployment
- RAG, LLM, Finetuning and Prompt Engineering`,
	},
	FrontendEngineer: {
		title: "Frontend Engineer",
		requirements: `Required Skills:
- React/Vue.js/Angular
- HTML5, CSS3, JavaScript/TypeScript
- Responsive design
- State management
- Frontend testing`,
	},
	BackendEngineer: {
		title: "Backend Engineer",
		requirements: `Required Skills:
- Python/Java/Node.js
- REST APIs
- Database design and management
- System architecture
- Cloud services (AWS/GCP/Azure)
- Kubernetes, Docker, CI/CD`,
	},
}

// All returns the catalog roles in display order.
func All() []Role {
	out := make([]Role, len(order))
	copy(out, order)
	return out
}

// Parse validates a role identifier.
func Parse(id string) (Role, error) {
	role := Role(strings.TrimSpace(id))
	if _, ok := catalog[role]; !ok {
		return "", &NotFoundError{ID: id}
	}
	return role, nil
}

// Requirements returns the skill requirement text for role.
func Requirements(role Role) (string, error) {
	e, ok := catalog[role]
	if !ok {
		return "", &NotFoundError{ID: string(role)}
	}
	return e.requirements, nil
}

// Title returns the human readable name of role. Unknown roles fall back to
// the identifier with underscores replaced by spaces.
func Title(role Role) string {
	if e, ok := catalog[role]; ok {
		return e.title
	}
	return strings.ReplaceAll(string(role), "_", " ")
}

func (r Role) String() string { return string(r) }

func ids() []string {
	out := make([]string, 0, len(order))
	for _, r := range order {
		out = append(out, string(r))
	}
	return out
}
