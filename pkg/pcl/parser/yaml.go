package parser

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"veritor-hq/veritor/pkg/pcl/ast"
)

// yamlPolicy is the intermediate structure for decoding YAML policy
// definitions before transformation to the AST model.
type yamlPolicy struct {
	ID          string           `yaml:"id"`
	Name        string           `yaml:"name"`
	Description string           `yaml:"description"`
	Domain      string           `yaml:"domain"`
	Version     string           `yaml:"version"`
	Variables   []yamlVariable   `yaml:"variables"`
	Rules       []yamlRule       `yaml:"rules"`
	Constraints []yamlConstraint `yaml:"constraints"`
	Examples    []yamlExample    `yaml:"examples"`
}

// yamlVariable is the intermediate variable structure.
type yamlVariable struct {
	Name           string   `yaml:"name"`
	Type           string   `yaml:"type"`
	Description    string   `yaml:"description"`
	PossibleValues []string `yaml:"possible_values"`
	IsMandatory    *bool    `yaml:"is_mandatory"` // Pointer to distinguish unset vs false
	DefaultValue   any      `yaml:"default_value"`
}

// yamlRule is the intermediate rule structure.
type yamlRule struct {
	ID          string `yaml:"id"`
	Description string `yaml:"description"`
	Condition   string `yaml:"condition"`
	Conclusion  string `yaml:"conclusion"`
	Priority    int    `yaml:"priority"`
}

// yamlConstraint accepts both the short form (a bare expression string)
// and the long form (a mapping with id/expression/description).
type yamlConstraint struct {
	ID          string `yaml:"id"`
	Expression  string `yaml:"expression"`
	Description string `yaml:"description"`
}

// UnmarshalYAML implements custom decoding for the two constraint forms.
func (c *yamlConstraint) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var expr string
		if err := node.Decode(&expr); err != nil {
			return err
		}
		c.Expression = expr
		return nil
	}

	type plain yamlConstraint
	var p plain
	if err := node.Decode(&p); err != nil {
		return err
	}
	*c = yamlConstraint(p)
	return nil
}

// yamlExample is the intermediate example structure.
type yamlExample struct {
	Name           string         `yaml:"name"`
	Question       string         `yaml:"question"`
	Variables      map[string]any `yaml:"variables"`
	ExpectedResult string         `yaml:"expected_result"`
	Explanation    string         `yaml:"explanation"`
}

// LoadPolicy reads and decodes a YAML policy definition from a file.
func LoadPolicy(path string) (*ast.Policy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read policy file %q: %w", path, err)
	}
	return ParsePolicy(data, path)
}

// ParsePolicy decodes a YAML policy definition from bytes.
// Decoding only checks YAML well-formedness and basic shapes; type and
// domain checking is the compiler's job.
func ParsePolicy(data []byte, sourcePath string) (*ast.Policy, error) {
	var yp yamlPolicy
	if err := yaml.Unmarshal(data, &yp); err != nil {
		return nil, fmt.Errorf("failed to decode policy definition %q: %w", sourcePath, err)
	}

	policy := &ast.Policy{
		ID:          yp.ID,
		Name:        yp.Name,
		Description: yp.Description,
		Domain:      yp.Domain,
		Version:     yp.Version,
		SourceFile:  sourcePath,
	}
	if policy.ID == "" {
		policy.ID = yp.Name
	}

	for _, yv := range yp.Variables {
		// Variables are mandatory unless explicitly marked otherwise.
		mandatory := true
		if yv.IsMandatory != nil {
			mandatory = *yv.IsMandatory
		}

		variable := &ast.Variable{
			Name:           yv.Name,
			Type:           ast.VariableType(yv.Type),
			Description:    yv.Description,
			PossibleValues: yv.PossibleValues,
			Mandatory:      mandatory,
		}
		if yv.DefaultValue != nil {
			raw := fmt.Sprint(yv.DefaultValue)
			variable.Default = &raw
		}
		policy.Variables = append(policy.Variables, variable)
	}

	for _, yr := range yp.Rules {
		policy.Rules = append(policy.Rules, &ast.Rule{
			ID:          yr.ID,
			Description: yr.Description,
			Condition:   yr.Condition,
			Conclusion:  ast.Conclusion(yr.Conclusion),
			Priority:    yr.Priority,
		})
	}

	for i, yc := range yp.Constraints {
		constraint := &ast.Constraint{
			ID:          yc.ID,
			Description: yc.Description,
			Expression:  yc.Expression,
		}
		if constraint.ID == "" {
			constraint.ID = fmt.Sprintf("constraint-%d", i+1)
		}
		if constraint.Description == "" {
			constraint.Description = constraint.Expression
		}
		policy.Constraints = append(policy.Constraints, constraint)
	}

	for _, ye := range yp.Examples {
		policy.Examples = append(policy.Examples, &ast.Example{
			Name:           ye.Name,
			Question:       ye.Question,
			Variables:      ye.Variables,
			ExpectedResult: ye.ExpectedResult,
			Explanation:    ye.Explanation,
		})
	}

	return policy, nil
}
