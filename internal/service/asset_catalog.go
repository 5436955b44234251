package service

import (
	"strings"

	"github.com/symptom-insight-server/internal/symptom"
)

// imagePrompts are short visual descriptions used for generation prompts and
// procedural captions.
var imagePrompts = canonicalTable(map[string]string{
	"continuous_sneezing":            "Person sneezing with tissue, showing droplets in the air",
	"cough":                          "Person coughing into elbow, showing proper respiratory etiquette",
	"breathlessness":                 "Person with hand on chest showing difficulty breathing, with blue-tinged lips",
	"phlegm":                         "Microscopic view of yellow-green mucus with white blood cells",
	"throat_irritation":              "Close-up of inflamed throat with redness and swelling",
	"runny_nose":                     "Person with nasal discharge and tissue",
	"congestion":                     "Cross-section of congested nasal passages with inflamed tissue",
	"sinus_pressure":                 "Anatomical illustration of inflamed sinuses with pressure points",
	"chest_pain":                     "Anatomical illustration of chest with pain radiating from heart or lungs",
	"mucoid_sputum":                  "Microscopic view of mucus-containing sputum with cellular debris",
	"rusty_sputum":                   "Sputum sample with rust-colored blood indicating pneumonia",
	"blood_in_sputum":                "Sputum sample with bright red blood streaks",
	"itching":                        "Close-up of skin with visible irritation and scratch marks",
	"skin_rash":                      "Close-up of skin with red, raised, irregular rash pattern",
	"nodal_skin_eruptions":           "Skin with raised, fluid-filled nodules and surrounding inflammation",
	"dischromic_patches":             "Skin showing patches of discoloration with irregular borders",
	"yellowish_skin":                 "Face with yellowed skin tone indicating jaundice",
	"pus_filled_pimples":             "Close-up of skin with white-topped pustules and inflammation",
	"blackheads":                     "Microscopic view of pores with oxidized sebum plugs",
	"scurring":                       "Skin with visible scarring and texture changes",
	"skin_peeling":                   "Close-up of skin with visible peeling and flaking",
	"silver_like_dusting":            "Skin with silvery-white scales characteristic of psoriasis",
	"small_dents_in_nails":           "Close-up of fingernail with visible pitting",
	"inflammatory_nails":             "Swollen, red nail fold with visible inflammation",
	"blister":                        "Close-up of skin with fluid-filled blister",
	"red_sore_around_nose":           "Close-up of nose with red, inflamed sores",
	"yellow_crust_ooze":              "Skin with honey-colored crusting indicating infection",
	"red_spots_over_body":            "Body diagram showing distribution of red spots",
	"headache":                       "Head diagram showing different types of headache pain patterns",
	"back_pain":                      "Spine diagram highlighting areas of common back pain",
	"joint_pain":                     "Anatomical illustration of joint with inflammation and pain signals",
	"stomach_pain":                   "Abdomen diagram showing different regions of stomach pain",
	"abdominal_pain":                 "Cross-section of abdomen showing organs and pain locations",
	"belly_pain":                     "Person holding lower abdomen in pain with visible discomfort",
	"neck_pain":                      "Cervical spine diagram showing nerve compression and pain",
	"knee_pain":                      "Anatomical illustration of knee joint with inflammation",
	"hip_joint_pain":                 "Cross-section of hip joint showing cartilage damage",
	"muscle_pain":                    "Muscle fiber diagram showing inflammation and pain signals",
	"pain_behind_the_eyes":           "Cross-section of eye showing optic nerve and surrounding structures",
	"pain_during_bowel_movements":    "Anatomical illustration of rectum with inflammation",
	"pain_in_anal_region":            "Diagram of anal region showing hemorrhoids and fissures",
	"vomiting":                       "Person leaning forward with visible emesis",
	"nausea":                         "Person with hand over mouth and visible discomfort",
	"indigestion":                    "Diagram of stomach with acid reflux and inflammation",
	"constipation":                   "Diagram of colon showing impacted stool",
	"diarrhoea":                      "Diagram of intestines with increased motility and watery content",
	"acidity":                        "Cross-section of esophagus showing acid reflux",
	"ulcers_on_tongue":               "Close-up of tongue with visible ulcerative lesions",
	"loss_of_appetite":               "Diagram showing decreased hunger signals from hypothalamus",
	"increased_appetite":             "Brain diagram showing heightened hunger signals",
	"passage_of_gases":               "Diagram of intestines showing gas accumulation",
	"internal_itching":               "Cross-section of intestine with irritation of nerve endings",
	"bloody_stool":                   "Stool sample with visible blood indicating GI bleeding",
	"irritation_in_anus":             "Close-up of anal tissue with inflammation and irritation",
	"stomach_bleeding":               "Diagram of stomach with ulceration and bleeding sites",
	"distention_of_abdomen":          "Profile view of distended abdomen with gas accumulation",
	"dizziness":                      "Brain diagram showing vestibular system dysfunction",
	"loss_of_balance":                "Person demonstrating unsteady gait with directional sway",
	"unsteadiness":                   "Person using wall for support while walking",
	"spinning_movements":             "Illustration of inner ear showing vertigo mechanism",
	"weakness_of_one_body_side":      "Body diagram showing hemiparesis pattern",
	"loss_of_smell":                  "Nasal passage diagram showing olfactory nerve damage",
	"altered_sensorium":              "Brain diagram showing areas affecting consciousness",
	"lack_of_concentration":          "Brain activity diagram showing reduced prefrontal activity",
	"visual_disturbances":            "Eye diagram showing common visual disturbance patterns",
	"slurred_speech":                 "Brain diagram highlighting speech centers with dysfunction",
	"coma":                           "Brain scan showing reduced activity consistent with comatose state",
	"high_fever":                     "Thermometer showing temperature above 102°F/39°C",
	"mild_fever":                     "Thermometer showing slight elevation in temperature",
	"fatigue":                        "Cellular diagram showing depleted ATP and energy stores",
	"weight_gain":                    "Body composition diagram showing increased adipose tissue",
	"weight_loss":                    "Body composition diagram showing decreased muscle and fat mass",
	"sweating":                       "Microscopic view of active sweat gland with secretion",
	"chills":                         "Thermal imaging of body showing temperature regulation attempts",
	"shivering":                      "Muscle diagram showing involuntary contractions for heat",
	"dehydration":                    "Cellular diagram showing fluid loss and electrolyte imbalance",
	"sunken_eyes":                    "Profile view of face showing orbital hollowing from fluid loss",
	"lethargy":                       "Brain activity diagram showing reduced metabolic activity",
	"restlessness":                   "Brain diagram showing heightened activity in limbic system",
	"anxiety":                        "Brain scan showing hyperactivity in amygdala and related structures",
	"mood_swings":                    "Graph showing emotional fluctuations over time",
	"depression":                     "Brain chemistry diagram showing neurotransmitter imbalance",
	"irritability":                   "Brain diagram showing lowered threshold for stress response",
	"fast_heart_rate":                "ECG showing tachycardia with rapid QRS complexes",
	"palpitations":                   "Heart diagram showing irregular contractions",
	"swollen_blood_vessels":          "Cross-section of blood vessel with inflammation",
	"prominent_veins_on_calf":        "Leg showing visible, enlarged veins",
	"swollen_extremeties":            "Comparison of normal vs. edematous limb",
	"swollen_legs":                   "Legs with visible pitting edema on pressure",
	"cold_hands_and_feets":           "Thermal imaging showing reduced circulation to extremities",
	"dark_urine":                     "Urine sample showing abnormally dark color with scale",
	"yellow_urine":                   "Urine sample showing yellow color indicating concentration",
	"foul_smell_of urine":            "Urine sample with visual indicators of odor",
	"continuous_feel_of_urine":       "Bladder diagram showing irritation of sensory nerves",
	"polyuria":                       "Diagram showing increased urine production and frequency",
	"bladder_discomfort":             "Anatomical illustration of inflamed bladder",
	"spotting_urination":             "Diagram showing urinary tract with irregular flow",
	"burning_micturition":            "Urinary tract diagram showing inflammation during urination",
	"irregular_sugar_level":          "Graph showing blood glucose fluctuations outside normal range",
	"excessive_hunger":               "Diagram showing disrupted satiety signals",
	"obesity":                        "Body mass index chart showing classification of obesity",
	"puffy_face_and_eyes":            "Face showing characteristic cushingoid appearance",
	"enlarged_thyroid":               "Neck diagram showing thyroid enlargement",
	"brittle_nails":                  "Close-up of fingernails showing brittleness and splitting",
	"fluid_overload":                 "Body diagram showing edema distribution in fluid overload",
	"swelling_of_stomach":            "Abdominal cross-section showing ascites",
	"yellowing_of_eyes":              "Close-up of eye showing yellowed sclera in jaundice",
	"acute_liver_failure":            "Liver diagram showing necrosis and dysfunction",
	"family_history":                 "Family tree diagram showing inheritance patterns",
	"history_of_alcohol_consumption": "Liver diagram showing progressive alcoholic damage",
	"receiving_blood_transfusion":    "Medical illustration of blood transfusion procedure",
	"receiving_unsterile_injections": "Microscopic view of contaminated needle with pathogens",
	"toxic_look_(typhos)":            "Person with characteristic typhoid fever appearance",
	"malaise":                        "Person showing general unwellness and discomfort",
	"muscle_wasting":                 "Comparison of normal vs. atrophied muscle tissue",
	"swelled_lymph_nodes":            "Diagram of lymphatic system with enlarged nodes",
	"extra_marital_contacts":         "Educational diagram about STI transmission risk",
	"drying_and_tingling_lips":       "Close-up of lips showing dryness and cracking",
	"abnormal_menstruation":          "Diagram showing abnormal menstrual patterns",
	"watering_from_eyes":             "Close-up of eye with excessive tearing",
	"movement_stiffness":             "Joint diagram showing restricted range of motion",
	"stiff_neck":                     "Cervical spine diagram showing muscle spasm and limited motion",
})

// longDescriptions are the patient-facing explanations shown with an image.
var longDescriptions = canonicalTable(map[string]string{
	"continuous_sneezing":   "Repeated, forceful expulsion of air through the nose and mouth, often due to irritation of nasal mucosa. May indicate allergies, infections, or irritants.",
	"cough":                 "Sudden expulsion of air from the lungs to clear airways. Can be dry or productive, acute or chronic. Common in respiratory infections, allergies, or lung conditions.",
	"breathlessness":        "Difficulty breathing or shortness of breath. May occur during activity or at rest. Can indicate respiratory, cardiac, or anxiety-related conditions.",
	"phlegm":                "Thick mucus secreted by the respiratory tract. Color and consistency can indicate different conditions - clear (allergies), yellow/green (infection), blood-tinged (inflammation/damage).",
	"throat_irritation":     "Discomfort, pain, or scratchiness in the throat. May be accompanied by difficulty swallowing. Common in infections, allergies, or from environmental irritants.",
	"itching":               "Irritating sensation that causes a desire to scratch. May be localized or generalized. Can indicate allergic reactions, skin conditions, or systemic diseases.",
	"skin_rash":             "Area of irritated or swollen skin that may change color, texture, or appearance. Patterns and distribution help identify specific conditions.",
	"nodal_skin_eruptions":  "Raised, solid lesions in the skin that may be inflammatory or neoplastic. Size, distribution, and characteristics help determine cause.",
	"dischromic_patches":    "Areas of skin with abnormal pigmentation (lighter or darker). May indicate inflammatory conditions, infections, or autoimmune disorders.",
	"headache":              "Pain in any region of the head. Types include tension, migraine, cluster, and sinus headaches. May indicate stress, dehydration, or underlying conditions.",
	"back_pain":             "Discomfort in the upper, middle, or lower back. Can be acute or chronic, dull or sharp. May result from muscle strain, disc issues, or systemic conditions.",
	"joint_pain":            "Discomfort, aches, or soreness in joints. May be accompanied by swelling, redness, or limited mobility. Common in arthritis, injuries, or infections.",
	"stomach_pain":          "Discomfort in the abdominal region. Location, character, and timing help identify causes such as gastritis, ulcers, or inflammatory conditions.",
	"vomiting":              "Forceful expulsion of stomach contents through the mouth. May be preceded by nausea. Can indicate infections, food poisoning, or digestive disorders.",
	"nausea":                "Unpleasant sensation of needing to vomit. May occur alone or with vomiting. Common in digestive disorders, infections, or as medication side effects.",
	"indigestion":           "Discomfort in the upper abdomen, often after eating. May include bloating, heartburn, or nausea. Can indicate various digestive disorders.",
	"diarrhoea":             "Loose, watery stools occurring more frequently than normal. May be acute or chronic. Can indicate infections, food intolerances, or inflammatory bowel conditions.",
	"dizziness":             "Sensation of lightheadedness, unsteadiness, or spinning (vertigo). May indicate inner ear problems, low blood pressure, or neurological conditions.",
	"loss_of_balance":       "Difficulty maintaining equilibrium when standing or walking. May result from inner ear disorders, neurological conditions, or medication effects.",
	"fatigue":               "Persistent tiredness or exhaustion not relieved by rest. May be physical or mental. Can indicate various conditions including anemia, infections, or chronic diseases.",
	"high_fever":            "Body temperature significantly above normal (typically >101°F/38.3°C). Indicates the body's response to infection, inflammation, or other conditions.",
	"mild_fever":            "Slight elevation in body temperature (typically 99-101°F/37.2-38.3°C). May indicate minor infections or inflammatory processes.",
	"chills":                "Sensation of cold with shivering despite normal or elevated body temperature. Often accompanies fever in infections.",
	"dehydration":           "Excessive loss of body fluids. Signs include thirst, dry mouth, dark urine, and fatigue. Can result from inadequate intake or excessive loss through illness.",
	"fast_heart_rate":       "Heart rate above normal resting rate (typically >100 beats per minute). May indicate stress, exercise, fever, or cardiac conditions.",
	"chest_pain":            "Discomfort or pain in the chest area. Character, location, and associated symptoms help determine if cardiac, respiratory, musculoskeletal, or digestive in origin.",
	"weight_loss":           "Unintentional decrease in body weight. May indicate various conditions including infections, cancer, digestive disorders, or metabolic diseases.",
	"weight_gain":           "Unintentional increase in body weight. May indicate hormonal changes, fluid retention, medication effects, or metabolic disorders.",
	"irregular_sugar_level": "Blood glucose levels outside normal range. May cause symptoms like thirst, frequent urination, fatigue. Indicates diabetes or other metabolic disorders.",
})

// staticFilenames maps symptoms to bundled image files whose names do not
// follow the symptom spelling.
var staticFilenames = canonicalTable(map[string]string{
	"cough":              "cough.jpg",
	"breathlessness":     "breathlessness.jpg",
	"fatigue":            "fatigue.jpg",
	"headache":           "headache.jpg",
	"high_fever":         "high fever.jpg",
	"joint_pain":         "joint pain.jpg",
	"nausea":             "nausea.jpg",
	"skin_rash":          "skin rash.jpg",
	"blackheads":         "black heads.jpg",
	"bladder_discomfort": "bladder discomfort.jpg",
	"blister":            "blister.jpg",
	"blood_in_sputum":    "blood in sputum.jpg",
	"bloody_stool":       "bloody stool.jpg",
	"blurred_vision":     "blurred and distorted vision.jpg",
	"brittle_nails":      "brittle nails.jpg",
	"chills":             "chills.jpg",
})

func canonicalTable(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[symptom.Canonical(k)] = v
	}
	return out
}

// ImagePrompt returns the visual description of a symptom.
func ImagePrompt(symptomKey string) string {
	if prompt, ok := imagePrompts[symptom.Canonical(symptomKey)]; ok {
		return prompt
	}
	return "Medical illustration of " + displayKey(symptomKey)
}

// Description returns the best available explanation of a symptom: the long
// description, then the image prompt, then a generic caption.
func Description(symptomKey string) string {
	if desc, ok := longDescriptions[symptom.Canonical(symptomKey)]; ok {
		return desc
	}
	return ImagePrompt(symptomKey)
}

func displayKey(symptomKey string) string {
	return strings.ToLower(strings.TrimSpace(symptomKey))
}
