package symptom

import "strings"

// Category groups symptoms by keyword containment.
type Category struct {
	Name  string
	Terms []string
}

// Categories are checked in order; the first whose terms match wins.
var Categories = []Category{
	{Name: "respiratory", Terms: []string{"cough", "breath", "sneez", "throat", "phlegm", "sinus", "congest", "runny", "sputum"}},
	{Name: "skin", Terms: []string{"skin", "rash", "itch", "patch", "eruption", "blister", "pimple", "peeling", "yellow"}},
	{Name: "pain", Terms: []string{"pain", "ache", "sore", "discomfort", "headache", "joint", "back", "stomach", "chest"}},
	{Name: "digestive", Terms: []string{"stomach", "nausea", "vomit", "diarr", "digest", "bowel", "abdomen", "appetite"}},
	{Name: "neurological", Terms: []string{"dizz", "balance", "vertigo", "head", "concentrat", "sensori", "speech", "smell"}},
	{Name: "general", Terms: []string{"fever", "chill", "temperature", "fatigue", "tired", "sweat", "dehydrat", "lethargy"}},
	{Name: "cardiovascular", Terms: []string{"heart", "chest", "pulse", "palpit", "vessel", "vein", "circulation"}},
	{Name: "metabolic", Terms: []string{"weight", "sugar", "thyroid", "hunger", "obesity", "fluid"}},
}

type relationship struct {
	key     string
	related []string
}

var relationships = []relationship{
	{key: "headache", related: []string{"dizziness", "nausea", "fever", "pain_behind_the_eyes", "neck_pain"}},
	{key: "fever", related: []string{"chills", "sweating", "headache", "fatigue", "dehydration"}},
	{key: "cough", related: []string{"throat_irritation", "breathlessness", "phlegm", "chest_pain", "runny_nose"}},
	{key: "fatigue", related: []string{"weakness", "lethargy", "loss_of_appetite", "weight_loss", "depression"}},
	{key: "nausea", related: []string{"vomiting", "loss_of_appetite", "dizziness", "stomach_pain", "indigestion"}},
	{key: "dizziness", related: []string{"headache", "loss_of_balance", "nausea", "fatigue", "spinning_movements"}},
	{key: "pain", related: []string{"swelling", "redness", "stiffness", "tenderness", "limited_mobility"}},
	{key: "rash", related: []string{"itching", "skin_peeling", "redness", "swelling", "blister"}},
	{key: "swelling", related: []string{"pain", "redness", "warmth", "limited_mobility", "tenderness"}},
}

var commonSymptoms = []string{
	"headache", "fever", "cough", "fatigue", "nausea",
	"dizziness", "back_pain", "skin_rash", "joint_pain",
	"breathlessness", "chest_pain", "abdominal_pain", "vomiting",
	"diarrhoea", "weight_loss", "loss_of_appetite", "sweating",
}

// CategoryOf returns the first category with a term contained in input.
func CategoryOf(input string) (Category, bool) {
	input = strings.ToLower(input)
	for _, c := range Categories {
		if containsAny(input, c.Terms) {
			return c, true
		}
	}
	return Category{}, false
}

func containsAny(s string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(s, term) {
			return true
		}
	}
	return false
}

// collector accumulates unique entries up to a limit.
type collector struct {
	input string
	max   int
	out   []string
	seen  map[string]struct{}
}

// add appends entry unless it duplicates an earlier one or equals the input.
// It reports whether the collector is full.
func (c *collector) add(entry string) bool {
	lower := strings.ToLower(entry)
	if lower == c.input {
		return c.full()
	}
	if _, dup := c.seen[lower]; !dup {
		c.seen[lower] = struct{}{}
		c.out = append(c.out, entry)
	}
	return c.full()
}

func (c *collector) full() bool {
	return len(c.out) >= c.max
}

// FindRelated returns up to maxCount vocabulary entries related to input.
// Tiers are tried in order until the limit is reached: substring matches,
// same category, shared words, the relationship table and finally the
// list of common presentations.
func FindRelated(input string, vocabulary []string, maxCount int) []string {
	if maxCount <= 0 {
		return []string{}
	}

	input = strings.ToLower(strings.TrimSpace(input))
	c := &collector{input: input, max: maxCount, seen: make(map[string]struct{})}

	for _, s := range vocabulary {
		if strings.Contains(strings.ToLower(s), input) && c.add(s) {
			return c.out
		}
	}

	if category, ok := CategoryOf(input); ok {
		for _, s := range vocabulary {
			if containsAny(strings.ToLower(s), category.Terms) && c.add(s) {
				return c.out
			}
		}
	}

	inputWords := strings.Fields(strings.ReplaceAll(input, "_", " "))
	for _, s := range vocabulary {
		words := strings.Fields(Canonical(s))
		if sharesWord(inputWords, words) && c.add(s) {
			return c.out
		}
	}

	for _, rel := range relationships {
		if !strings.Contains(input, rel.key) {
			continue
		}
		for _, related := range rel.related {
			if addContaining(c, vocabulary, related) {
				return c.out
			}
		}
	}

	for _, common := range commonSymptoms {
		if addContaining(c, vocabulary, common) {
			return c.out
		}
	}

	return c.out
}

func addContaining(c *collector, vocabulary []string, fragment string) bool {
	for _, s := range vocabulary {
		if strings.Contains(strings.ToLower(s), fragment) && c.add(s) {
			return true
		}
	}
	return false
}

func sharesWord(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}
