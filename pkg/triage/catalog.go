package triage

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type CatalogConfig struct {
	Rules []Rule `yaml:"rules" json:"rules"`
}

// LoadCatalog reads the base rule table from YAML. An empty path yields the
// built-in catalog. Rule order in the file is classification precedence.
func LoadCatalog(path string) ([]Rule, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	content, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, err
	}

	var cfg CatalogConfig
	if err := yaml.Unmarshal(content, &cfg); err != nil {
		return nil, err
	}

	if len(cfg.Rules) == 0 {
		return nil, errors.New("no triage rules configured")
	}

	seen := make(map[ConditionKey]struct{}, len(cfg.Rules))
	rules := make([]Rule, 0, len(cfg.Rules))
	for i, rule := range cfg.Rules {
		rule.Key = NormalizeKey(string(rule.Key))
		if rule.Key == "" {
			return nil, fmt.Errorf("rule %d: empty key", i)
		}
		if _, dup := seen[rule.Key]; dup {
			return nil, fmt.Errorf("rule %d: duplicate key %q", i, rule.Key)
		}
		if err := rule.Validate(); err != nil {
			return nil, fmt.Errorf("rule %q: %w", rule.Key, err)
		}
		seen[rule.Key] = struct{}{}
		rules = append(rules, rule)
	}
	return rules, nil
}

// DefaultRules is the built-in condition table. "bone fracture" and "bone
// injury" precede "fracture" so the longer phrase wins.
func DefaultRules() []Rule {
	return []Rule{
		{Key: "fever", MappingEntry: MappingEntry{
			Specializations: []string{"General Physician"}, Severity: Mild,
			Remedies: []string{"Rest adequately", "Drink plenty of fluids", "Take paracetamol if needed", "Monitor temperature regularly"},
		}},
		{Key: "cold", MappingEntry: MappingEntry{
			Specializations: []string{"General Physician"}, Severity: Mild,
			Remedies: []string{"Stay hydrated", "Take steam inhalation", "Gargle with warm salt water", "Get adequate rest"},
		}},
		{Key: "cough", MappingEntry: MappingEntry{
			Specializations: []string{"General Physician"}, Severity: Mild,
			Remedies: []string{"Drink warm liquids", "Honey with warm water", "Avoid cold foods", "Use humidifier"},
		}},
		{Key: "headache", MappingEntry: MappingEntry{
			Specializations: []string{"Neurologist", "General Physician"}, Severity: Mild,
			Remedies: []string{"Rest in a dark room", "Apply cold compress", "Stay hydrated", "Avoid loud noises"},
		}},
		{Key: "stomach pain", MappingEntry: MappingEntry{
			Specializations: []string{"Gastroenterologist"}, Severity: Moderate,
			Remedies: []string{"Eat bland foods", "Avoid spicy food", "Drink ginger tea", "Rest and avoid stress"},
		}},
		{Key: ChestPainKey, MappingEntry: MappingEntry{
			Specializations: []string{"Cardiologist"}, Severity: Severe,
			Remedies: []string{"Seek immediate medical attention", "Sit down and rest", "Do not exert yourself"},
		}},
		{Key: DifficultyBreathingKey, MappingEntry: MappingEntry{
			Specializations: []string{"Pulmonologist"}, Severity: Critical,
			Remedies: []string{"Call emergency services immediately", "Sit upright", "Stay calm"},
		}},
		{Key: "diabetes symptoms", MappingEntry: MappingEntry{
			Specializations: []string{"Endocrinologist"}, Severity: Moderate,
			Remedies: []string{"Monitor blood sugar levels", "Follow prescribed diet", "Exercise regularly", "Take medications as prescribed"},
		}},
		{Key: "skin rash", MappingEntry: MappingEntry{
			Specializations: []string{"Dermatologist"}, Severity: Mild,
			Remedies: []string{"Keep area clean and dry", "Apply calamine lotion", "Avoid scratching", "Wear loose clothing"},
		}},
		{Key: "back pain", MappingEntry: MappingEntry{
			Specializations: []string{"Orthopedist"}, Severity: Moderate,
			Remedies: []string{"Apply hot or cold compress", "Gentle stretching", "Maintain good posture", "Avoid heavy lifting"},
		}},
		{Key: "anxiety", MappingEntry: MappingEntry{
			Specializations: []string{"Psychiatrist"}, Severity: Moderate,
			Remedies: []string{"Practice deep breathing", "Regular exercise", "Adequate sleep", "Talk to someone you trust"},
		}},
		{Key: "migraine", MappingEntry: MappingEntry{
			Specializations: []string{"Neurologist", "General Physician"}, Severity: Moderate,
			Remedies: []string{"Rest in dark quiet room", "Cold compress on forehead", "Avoid triggers", "Stay hydrated"},
		}},
		{Key: "diarrhea", MappingEntry: MappingEntry{
			Specializations: []string{"Gastroenterologist"}, Severity: Moderate,
			Remedies: []string{"Stay hydrated with ORS", "Eat bland foods like rice", "Avoid dairy products", "Rest adequately"},
		}},
		{Key: "high blood pressure", MappingEntry: MappingEntry{
			Specializations: []string{"Cardiologist"}, Severity: Moderate,
			Remedies: []string{"Reduce salt intake", "Regular exercise", "Manage stress", "Take prescribed medications"},
		}},
		{Key: "asthma", MappingEntry: MappingEntry{
			Specializations: []string{"Pulmonologist"}, Severity: Moderate,
			Remedies: []string{"Use prescribed inhaler", "Avoid triggers", "Practice breathing exercises", "Keep emergency medication handy"},
		}},
		{Key: BoneFractureKey, MappingEntry: MappingEntry{
			Specializations: []string{"Orthopedist", "Trauma Surgeon"}, Severity: Severe,
			Remedies: []string{"Immobilize the area", "Apply cold pack wrapped in cloth", "Avoid moving the injured limb", "Seek immediate medical care"},
		}},
		{Key: "bone injury", MappingEntry: MappingEntry{
			Specializations: []string{"Orthopedist", "Trauma Surgeon"}, Severity: Moderate,
			Remedies: []string{"Rest and immobilize", "Cold compress", "Elevate if possible", "Consult orthopedic specialist"},
		}},
		// Must stay after "bone fracture" and "bone injury", which it would shadow.
		{Key: "fracture", MappingEntry: MappingEntry{
			Specializations: []string{"Orthopedist", "Trauma Surgeon"}, Severity: Severe,
			Remedies: []string{"Immobilize the area", "Apply cold pack wrapped in cloth", "Avoid moving the injured limb", "Seek immediate medical care"},
		}},
	}
}

// DefaultEntry applies when no rule matches.
func DefaultEntry() MappingEntry {
	return MappingEntry{
		Specializations: []string{"General Physician"},
		Severity:        Mild,
		Remedies:        []string{"Consult with a doctor", "Maintain healthy lifestyle"},
	}
}
