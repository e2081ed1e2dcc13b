// Package content loads the bundled mock tests, practice questions and tips.
package content

import (
	"embed"
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"kanguru-service/internal/domain"
)

//go:embed data/*.yaml
var files embed.FS

type testsFile struct {
	Tests []domain.MockTest `yaml:"tests"`
}

type practiceFile struct {
	Questions []domain.Question `yaml:"questions"`
}

type tipsFile struct {
	Topics []domain.TopicMeta `yaml:"topics"`
	Tips   []domain.Tip       `yaml:"tips"`
}

// Catalog is the validated, read-only bundled content.
type Catalog struct {
	tests    map[string]domain.MockTest
	practice map[domain.Topic][]domain.Question
	byID     map[string]domain.Question
	topics   []domain.TopicMeta
	tips     []domain.Tip
}

// Load parses and validates the embedded content.
func Load() (*Catalog, error) {
	var tf testsFile
	if err := decode("data/tests.yaml", &tf); err != nil {
		return nil, err
	}
	var pf practiceFile
	if err := decode("data/practice.yaml", &pf); err != nil {
		return nil, err
	}
	var tipf tipsFile
	if err := decode("data/tips.yaml", &tipf); err != nil {
		return nil, err
	}

	c := &Catalog{
		tests:    make(map[string]domain.MockTest, len(tf.Tests)),
		practice: make(map[domain.Topic][]domain.Question),
		byID:     make(map[string]domain.Question, len(pf.Questions)),
		topics:   tipf.Topics,
		tips:     tipf.Tips,
	}
	for _, test := range tf.Tests {
		if test.TimeLimitMinutes <= 0 {
			return nil, fmt.Errorf("test %s: time limit must be positive", test.ID)
		}
		for _, q := range test.Questions {
			if err := Validate(q); err != nil {
				return nil, fmt.Errorf("test %s: %w", test.ID, err)
			}
		}
		c.tests[test.ID] = test
	}
	for _, q := range pf.Questions {
		if err := Validate(q); err != nil {
			return nil, fmt.Errorf("practice: %w", err)
		}
		if _, dup := c.byID[q.ID]; dup {
			return nil, fmt.Errorf("practice: duplicate question %s", q.ID)
		}
		c.byID[q.ID] = q
		c.practice[q.Topic] = append(c.practice[q.Topic], q)
	}
	for _, tip := range c.tips {
		if !tip.Topic.Valid() {
			return nil, fmt.Errorf("tip %s: %w %q", tip.ID, domain.ErrInvalidTopic, tip.Topic)
		}
	}
	return c, nil
}

// Validate checks that a question is well formed.
func Validate(q domain.Question) error {
	if q.ID == "" {
		return fmt.Errorf("question without id")
	}
	if !q.HasOption(q.CorrectAnswer) {
		return fmt.Errorf("question %s: correct answer %q is not an option", q.ID, q.CorrectAnswer)
	}
	if !q.Difficulty.Valid() {
		return fmt.Errorf("question %s: unknown difficulty %q", q.ID, q.Difficulty)
	}
	if !q.Topic.Valid() {
		return fmt.Errorf("question %s: %w %q", q.ID, domain.ErrInvalidTopic, q.Topic)
	}
	if q.Solution == "" {
		return fmt.Errorf("question %s: missing solution", q.ID)
	}
	return nil
}

func decode(name string, out any) error {
	raw, err := files.ReadFile(name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := yaml.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("parse %s: %w", name, err)
	}
	return nil
}

// Tests returns the mock tests keyed by ID.
func (c *Catalog) Tests() map[string]domain.MockTest {
	out := make(map[string]domain.MockTest, len(c.tests))
	for id, test := range c.tests {
		out[id] = test
	}
	return out
}

// TestList returns the mock tests ordered by ID.
func (c *Catalog) TestList() []domain.MockTest {
	out := make([]domain.MockTest, 0, len(c.tests))
	for _, test := range c.tests {
		out = append(out, test)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PracticeQuestions returns the practice questions of topic in file order.
func (c *Catalog) PracticeQuestions(topic domain.Topic) []domain.Question {
	return c.practice[topic]
}

// PracticeQuestion looks a practice question up by ID.
func (c *Catalog) PracticeQuestion(id string) (domain.Question, bool) {
	q, ok := c.byID[id]
	return q, ok
}

// Topics returns topic metadata in display order.
func (c *Catalog) Topics() []domain.TopicMeta {
	return c.topics
}

// Tips returns all tips of topic, or every tip when topic is empty.
func (c *Catalog) Tips(topic domain.Topic) []domain.Tip {
	if topic == "" {
		return c.tips
	}
	var out []domain.Tip
	for _, tip := range c.tips {
		if tip.Topic == topic {
			out = append(out, tip)
		}
	}
	return out
}
