// Package agent describes the remediation agent for registration with an
// external agent runtime.
package agent

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/miradorstack/aura/internal/tools"
)

const (
	DefaultName  = "aura_remediation_agent"
	DefaultModel = "gemini-2.5-flash"
)

// Instruction is the system prompt given to the agent.
const Instruction = `You are Aura, an Autonomous Remediation & Unification Agent for Google Cloud.

Your mission: Transform reactive cloud alerts into proactive autonomous solutions.

CAPABILITIES:
- Process cloud monitoring alerts (cost, security, performance)
- Analyze root causes using AI reasoning
- Generate specific remediation commands (gcloud, terraform)
- Execute approved fixes automatically
- Provide transparency and traceability

WORKFLOW:
1. Receive alert → process_cloud_alert()
2. Analyze cause → analyze_root_cause()
3. Plan fix → generate_remediation_plan()
4. Get approval → [Human decides]
5. Execute → simulate_remediation_execution()

PERSONALITY:
- Professional and confident
- Data-driven and transparent
- Safety-conscious (always get approval for risky actions)
- Focused on cost optimization and security

Always explain your reasoning, show confidence scores, and provide rollback strategies.
You save companies time and money by turning manual incident response into automated remediation.`

// Manifest is the agent registration document.
type Manifest struct {
	Name        string                 `json:"name" yaml:"name"`
	Model       string                 `json:"model" yaml:"model"`
	Instruction string                 `json:"instruction" yaml:"instruction"`
	Tools       []tools.ToolDefinition `json:"tools" yaml:"tools"`
}

// Lister yields tool definitions. tools.ToolExecutor satisfies it.
type Lister interface {
	ListTools() []tools.ToolDefinition
}

// Build assembles a manifest, falling back to the default name and model.
func Build(name, model string, lister Lister) Manifest {
	if name == "" {
		name = DefaultName
	}
	if model == "" {
		model = DefaultModel
	}
	m := Manifest{Name: name, Model: model, Instruction: Instruction}
	if lister != nil {
		m.Tools = lister.ListTools()
	}
	return m
}

// Write encodes the manifest as "json" or "yaml".
func (m Manifest) Write(w io.Writer, format string) error {
	switch strings.ToLower(format) {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(m)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(m); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported manifest format %q", format)
	}
}
