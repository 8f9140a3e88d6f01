package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	configDirName      = "winpos"
	configFileName     = "config.yaml"
	legacyJSONFileName = "config.json"
	configPathEnv      = "WINPOS_CONFIG"
)

// Settings are optional run options given next to the rules when the
// document is a mapping.
type Settings struct {
	Backend  string `yaml:"backend,omitempty"`
	LogLevel string `yaml:"log_level,omitempty"`
}

type LoadResult struct {
	File     string
	Settings Settings
	Rules    []Rule       // valid rules, in document order
	Rejected []*RuleError // invalid rules, in document order
	Ignored  []string     // YAML paths of unrecognized keys
}

// Total returns the number of rule entries in the document.
func (r *LoadResult) Total() int {
	return len(r.Rules) + len(r.Rejected)
}

// DefaultConfigPath returns $WINPOS_CONFIG, or config.yaml under the XDG
// config directory. When only a config.json exists there, that file is used.
func DefaultConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(configPathEnv)); p != "" {
		return p, nil
	}

	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		base = filepath.Join(homeDir, ".config")
	}

	dir := filepath.Join(base, configDirName)
	yamlPath := filepath.Join(dir, configFileName)
	if _, err := os.Stat(yamlPath); err == nil {
		return yamlPath, nil
	}
	jsonPath := filepath.Join(dir, legacyJSONFileName)
	if _, err := os.Stat(jsonPath); err == nil {
		return jsonPath, nil
	}
	return yamlPath, nil
}

// Load reads the configuration from the default location.
func Load() (*LoadResult, error) {
	path, err := DefaultConfigPath()
	if err != nil {
		return nil, &ConfigError{Err: err}
	}
	return LoadFromPath(path)
}

// LoadFromPath reads and validates the configuration at path.
func LoadFromPath(path string) (*LoadResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &ConfigError{File: path, Err: fmt.Errorf("failed to read: %w", err)}
	}
	return Parse(data, path)
}

// Parse validates a configuration document. The document is either a list
// of rules or a mapping with a "rules" list and optional settings. JSON
// documents are accepted as well.
//
// Invalid rules are rejected one by one and reported in LoadResult.Rejected.
// A *ConfigError is returned when the document is malformed or when it lists
// rules and none of them is valid.
func Parse(data []byte, file string) (*LoadResult, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{File: file, Err: fmt.Errorf("failed to parse: %w", err)}
	}

	res := &LoadResult{File: file}

	rulesNode, err := splitDocument(&doc, file, res)
	if err != nil {
		return nil, &ConfigError{File: file, Err: err}
	}

	if rulesNode != nil {
		for i, item := range rulesNode.Content {
			rule, rerr := decodeRule(i, resolveAlias(item), file, res)
			if rerr != nil {
				res.Rejected = append(res.Rejected, rerr)
				continue
			}
			res.Rules = append(res.Rules, rule)
		}
	}

	if len(res.Rules) == 0 && len(res.Rejected) > 0 {
		return nil, &ConfigError{
			File:     file,
			Err:      errors.New("no valid rules"),
			Rejected: res.Rejected,
		}
	}
	return res, nil
}

// splitDocument locates the rule sequence and decodes settings.
func splitDocument(doc *yaml.Node, file string, res *LoadResult) (*yaml.Node, error) {
	if doc.Kind == 0 || len(doc.Content) == 0 {
		return nil, nil
	}
	root := resolveAlias(doc.Content[0])

	switch root.Kind {
	case yaml.SequenceNode:
		return root, nil
	case yaml.ScalarNode:
		if root.Tag == "!!null" {
			return nil, nil
		}
	case yaml.MappingNode:
		var rules *yaml.Node
		for i := 0; i+1 < len(root.Content); i += 2 {
			key := root.Content[i].Value
			val := resolveAlias(root.Content[i+1])
			switch key {
			case "rules":
				switch {
				case val.Kind == yaml.SequenceNode:
					rules = val
				case val.Kind == yaml.ScalarNode && val.Tag == "!!null":
				default:
					return nil, &ValidationError{Path: "rules", Source: sourceOf(file, val), Err: errors.New("must be a list of rules")}
				}
			case "backend":
				if err := decodeSetting(val, file, key, []string{"auto", "x11", "xdotool"}, &res.Settings.Backend); err != nil {
					return nil, err
				}
			case "log_level":
				if err := decodeSetting(val, file, key, []string{"debug", "info", "warn", "warning", "error"}, &res.Settings.LogLevel); err != nil {
					return nil, err
				}
			default:
				res.Ignored = append(res.Ignored, key)
			}
		}
		return rules, nil
	}

	return nil, &ValidationError{
		Source: sourceOf(file, root),
		Err:    errors.New("top level must be a list of rules or a mapping with a \"rules\" list"),
	}
}

func decodeSetting(node *yaml.Node, file, key string, allowed []string, out *string) error {
	if node.Kind != yaml.ScalarNode {
		return &ValidationError{Path: key, Source: sourceOf(file, node), Err: errors.New("must be a string")}
	}
	val := strings.ToLower(strings.TrimSpace(node.Value))
	for _, a := range allowed {
		if val == a {
			*out = val
			return nil
		}
	}
	return &ValidationError{
		Path:   key,
		Source: sourceOf(file, node),
		Err:    fmt.Errorf("%q must be one of: %s", node.Value, strings.Join(allowed, ", ")),
	}
}

// decodeRule validates one rule entry and collects every problem it has.
func decodeRule(index int, node *yaml.Node, file string, res *LoadResult) (Rule, *RuleError) {
	rule := Rule{
		Index:  index,
		Align:  DefaultAlign,
		Source: sourceOf(file, node),
	}
	rerr := &RuleError{Index: index, Source: rule.Source}
	prefix := fmt.Sprintf("rules[%d]", index)

	problem := func(key string, n *yaml.Node, err error) {
		rerr.Problems = append(rerr.Problems, &ValidationError{
			Path:   prefix + "." + key,
			Source: sourceOf(file, n),
			Err:    err,
		})
	}

	if node.Kind != yaml.MappingNode {
		rerr.Problems = append(rerr.Problems, &ValidationError{
			Path:   prefix,
			Source: rule.Source,
			Err:    errors.New("rule must be a mapping"),
		})
		return Rule{}, rerr
	}

	var searchName, searchProcess string
	var searchNameNode *yaml.Node
	seen := make(map[string]bool, len(node.Content)/2)

	for i := 0; i+1 < len(node.Content); i += 2 {
		key := node.Content[i].Value
		val := resolveAlias(node.Content[i+1])

		if seen[key] {
			problem(key, node.Content[i], ErrDuplicateKey)
			continue
		}
		seen[key] = true

		switch key {
		case "name":
			s, err := scalarString(val)
			if err != nil {
				problem(key, val, err)
				continue
			}
			rule.Name = s
			rerr.Name = s
		case "search_name":
			s, err := scalarString(val)
			if err != nil {
				problem(key, val, err)
				continue
			}
			searchName, searchNameNode = s, val
		case "search_process":
			s, err := scalarString(val)
			if err != nil {
				problem(key, val, err)
				continue
			}
			searchProcess = strings.TrimSpace(s)
		case "screen":
			n, set, err := scalarIndex(val)
			if err != nil {
				problem(key, val, err)
				continue
			}
			if set {
				rule.Screen = n
			}
		case "desktop":
			n, set, err := scalarIndex(val)
			if err != nil {
				problem(key, val, err)
				continue
			}
			if set {
				rule.Desktop = &n
			}
		case "width", "height":
			d, err := scalarDimension(val)
			if err != nil {
				problem(key, val, err)
				continue
			}
			if key == "width" {
				rule.Width = d
			} else {
				rule.Height = d
			}
		case "align":
			s, err := scalarString(val)
			if err != nil {
				problem(key, val, err)
				continue
			}
			if strings.TrimSpace(s) == "" {
				continue
			}
			align, err := ParseAlign(s)
			if err != nil {
				problem(key, val, err)
				continue
			}
			rule.Align = align
		default:
			res.Ignored = append(res.Ignored, prefix+"."+key)
		}
	}

	switch {
	case searchName != "" && searchProcess != "":
		rerr.Problems = append(rerr.Problems, &ValidationError{Path: prefix, Source: rule.Source, Err: ErrAmbiguousMatcher})
	case searchName != "":
		re, err := regexp.Compile(searchName)
		if err != nil {
			problem("search_name", searchNameNode, fmt.Errorf("%w: %v", ErrInvalidPattern, err))
		} else {
			rule.Match = ByTitle(re)
		}
	case searchProcess != "":
		rule.Match = ByProcess(searchProcess)
	default:
		rerr.Problems = append(rerr.Problems, &ValidationError{Path: prefix, Source: rule.Source, Err: ErrNoMatcher})
	}

	if len(rerr.Problems) > 0 {
		return Rule{}, rerr
	}
	return rule, nil
}

func scalarString(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", errors.New("must be a string")
	}
	if n.Tag == "!!null" {
		return "", nil
	}
	return n.Value, nil
}

// scalarIndex decodes a non-negative integer; null means unset.
func scalarIndex(n *yaml.Node) (int, bool, error) {
	if n.Kind != yaml.ScalarNode {
		return 0, false, ErrNotInteger
	}
	if n.Tag == "!!null" {
		return 0, false, nil
	}
	if n.Tag != "!!int" {
		return 0, false, fmt.Errorf("%w, got %q", ErrNotInteger, n.Value)
	}
	var v int
	if err := n.Decode(&v); err != nil {
		return 0, false, fmt.Errorf("%w: %v", ErrNotInteger, err)
	}
	if v < 0 {
		return 0, false, fmt.Errorf("%w, got %d", ErrNegative, v)
	}
	return v, true, nil
}

func scalarDimension(n *yaml.Node) (Dimension, error) {
	if n.Kind != yaml.ScalarNode {
		return Dimension{}, fmt.Errorf("%w: must be a pixel count or a percentage", ErrInvalidDimension)
	}
	switch n.Tag {
	case "!!null":
		return Dimension{}, nil
	case "!!int", "!!str":
		return ParseDimension(n.Value)
	default:
		return Dimension{}, fmt.Errorf("%w: %q is neither a pixel count nor a percentage", ErrInvalidDimension, n.Value)
	}
}

func resolveAlias(n *yaml.Node) *yaml.Node {
	for n != nil && n.Kind == yaml.AliasNode && n.Alias != nil {
		n = n.Alias
	}
	return n
}

func sourceOf(file string, n *yaml.Node) Source {
	if n == nil {
		return Source{File: file}
	}
	return Source{File: file, Line: n.Line, Column: n.Column}
}
