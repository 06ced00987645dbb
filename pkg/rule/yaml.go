package rule

// yamlRule is the intermediate struct for parsing YAML rule files.
type yamlRule struct {
	Name             string   `yaml:"name"`
	ID               string   `yaml:"id"`
	Part             int      `yaml:"part,omitempty"`
	MinRepeats       int      `yaml:"min_repeats"`
	MaxRepeats       int      `yaml:"max_repeats"`
	Description      string   `yaml:"description,omitempty"`
	Examples         []string `yaml:"examples,omitempty"`
	NegativeExamples []string `yaml:"negative_examples,omitempty"`
	Categories       []string `yaml:"categories,omitempty"`
}

// yamlRulesFile is the top-level structure of a rules file: a "rules" array.
type yamlRulesFile struct {
	Rules []yamlRule `yaml:"rules"`
}
