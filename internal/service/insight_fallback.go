package service

import (
	"fmt"
	"strings"
)

// fallbackRule pairs a predicate over the symptom list with the sections it
// produces. Rules are evaluated in order and the first match wins.
type fallbackRule struct {
	name     string
	matches  func(symptoms []string) bool
	sections func(symptoms []string) Sections
}

func anySymptomContains(fragment string) func([]string) bool {
	return func(symptoms []string) bool {
		for _, s := range symptoms {
			if strings.Contains(strings.ToLower(strings.TrimSpace(s)), fragment) {
				return true
			}
		}
		return false
	}
}

func fixed(s Sections) func([]string) Sections {
	return func([]string) Sections { return s }
}

var fallbackRules = []fallbackRule{
	{
		name:    "itching",
		matches: anySymptomContains("itching"),
		sections: fixed(Sections{
			Disease:     "Possible Skin Condition",
			Description: "Itching can be associated with various skin conditions including allergic reactions, eczema, or fungal infections.",
			Precautions: []string{"Avoid scratching the affected area", "Keep the skin moisturized", "Wear loose-fitting clothing", "Avoid known irritants"},
			Medications: []string{"Antihistamines may help reduce itching", "Hydrocortisone cream for inflammation", "Antifungal cream if fungal infection is suspected"},
			Workouts:    []string{"Regular exercise that doesn't irritate the skin", "Swimming in clean water may help some skin conditions"},
			Diet:        []string{"Foods rich in omega-3 fatty acids", "Avoid potential food allergens", "Stay well hydrated"},
		}),
	},
	{
		name:    "fever",
		matches: anySymptomContains("fever"),
		sections: fixed(Sections{
			Disease:     "Possible Infection",
			Description: "Fever is often a sign that your body is fighting an infection. It could be viral, bacterial, or due to other causes.",
			Precautions: []string{"Rest and get plenty of sleep", "Stay hydrated", "Monitor temperature regularly", "Seek medical attention if fever is high or persistent"},
			Medications: []string{"Acetaminophen (Tylenol) may help reduce fever", "Ibuprofen (Advil) can help with fever and discomfort"},
			Workouts:    []string{"Rest until fever subsides", "Light walking when recovering"},
			Diet:        []string{"Clear broths and soups", "Stay well hydrated", "Easily digestible foods"},
		}),
	},
	{
		name:    "headache",
		matches: anySymptomContains("headache"),
		sections: fixed(Sections{
			Disease:     "Tension Headache or Migraine",
			Description: "Headaches can be caused by stress, dehydration, eye strain, or may indicate other conditions.",
			Precautions: []string{"Rest in a quiet, dark room", "Apply cold or warm compress", "Maintain regular sleep schedule", "Manage stress levels"},
			Medications: []string{"Over-the-counter pain relievers like acetaminophen or ibuprofen", "Migraine-specific medications if prescribed"},
			Workouts:    []string{"Gentle yoga or stretching", "Walking in fresh air", "Avoid high-intensity exercise during headache"},
			Diet:        []string{"Stay well hydrated", "Avoid known trigger foods", "Regular, balanced meals"},
		}),
	},
	{
		name:     "symptom_analysis",
		matches:  func(symptoms []string) bool { return len(symptoms) > 0 },
		sections: symptomAnalysis,
	},
	{
		name:    "generic",
		matches: func([]string) bool { return true },
		sections: fixed(Sections{
			Disease:     "Health Information",
			Description: "For accurate health information, please provide specific symptoms or consult a healthcare professional.",
			Precautions: []string{"Consult a healthcare professional for proper medical advice", "Monitor any symptoms you may be experiencing", "Rest and stay hydrated", "Seek medical attention if symptoms worsen"},
			Medications: []string{"Consult with a healthcare professional for appropriate medication recommendations"},
			Workouts:    []string{"Regular moderate exercise is beneficial for overall health", "Always consult a professional before starting new exercise routines"},
			Diet:        []string{"Maintain a balanced diet rich in fruits and vegetables", "Stay hydrated", "Limit processed foods and sugar intake"},
		}),
	},
}

func symptomAnalysis(symptoms []string) Sections {
	shown := symptoms
	if len(shown) > 3 {
		shown = shown[:3]
	}
	text := strings.Join(shown, ", ")
	if len(symptoms) > 3 {
		text += ", and others"
	}

	return Sections{
		Disease: "Symptom Analysis",
		Description: fmt.Sprintf("We analyzed your symptoms (%s). These symptoms could be associated with several common conditions. "+
			"Please note this is not a diagnosis and you should consult a healthcare professional for proper evaluation.", text),
		Precautions: []string{"Rest and stay hydrated", "Monitor your symptoms", "Take over-the-counter pain relievers if appropriate", "Consult a healthcare professional if symptoms persist or worsen"},
		Medications: []string{"Over-the-counter pain relievers may help with discomfort", "Consult with a healthcare professional before taking any medication"},
		Workouts:    []string{"Light walking if feeling up to it", "Gentle stretching", "Rest is important when experiencing symptoms"},
		Diet:        []string{"Stay well hydrated", "Consume easily digestible foods", "Consider vitamin-rich foods to support immune function"},
	}
}

// FallbackSections returns the offline sections for symptoms and the name of
// the rule that produced them.
func FallbackSections(symptoms []string) (Sections, string) {
	for _, rule := range fallbackRules {
		if rule.matches(symptoms) {
			return rule.sections(symptoms).clone(), rule.name
		}
	}
	// unreachable: the last rule always matches
	return Sections{}, ""
}
