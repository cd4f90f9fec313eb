package catalog

import "github.com/example/novalearn/pkg/models"

var domains = []models.Domain{
	{
		ID:          "anatomy",
		Name:        "Human Anatomy",
		Description: "Master the structure and organization of the human body",
		Specialty:   models.SpecialtyBasicSciences,
		Skills:      []string{"Musculoskeletal", "Cardiovascular", "Nervous System", "Respiratory", "Digestive", "Endocrine"},
		Context:     "Focus on human anatomy including body systems, organ structures, and anatomical relationships.",
	},
	{
		ID:          "physiology",
		Name:        "Physiology",
		Description: "Understand how body systems function and interact",
		Specialty:   models.SpecialtyBasicSciences,
		Skills:      []string{"Cardiac Function", "Respiratory Mechanics", "Renal Function", "Neurophysiology", "Endocrine Control", "Metabolism"},
		Context:     "Focus on normal body function, homeostasis, and how organ systems interact.",
	},
	{
		ID:          "pathology",
		Name:        "Pathology",
		Description: "Study disease processes and their effects on the body",
		Specialty:   models.SpecialtyBasicSciences,
		Skills:      []string{"General Pathology", "Systemic Pathology", "Histopathology", "Clinical Pathology", "Forensic Medicine", "Microbiology"},
		Context:     "Focus on mechanisms of disease, tissue changes, and laboratory findings.",
	},
	{
		ID:          "pharmacology",
		Name:        "Pharmacology",
		Description: "Learn drug actions, interactions, and therapeutic applications",
		Specialty:   models.SpecialtyBasicSciences,
		Skills:      []string{"Pharmacokinetics", "Pharmacodynamics", "Drug Classifications", "Toxicology", "Clinical Pharmacology", "Therapeutics"},
		Context:     "Focus on drug mechanisms, side effects, interactions, and therapeutic use.",
	},
	{
		ID:          "internal-medicine",
		Name:        "Internal Medicine",
		Description: "Diagnose and treat adult diseases and conditions",
		Specialty:   models.SpecialtyClinicalMedicine,
		Skills:      []string{"Cardiology", "Pulmonology", "Gastroenterology", "Nephrology", "Endocrinology", "Rheumatology"},
		Context:     "Focus on diagnosis and management of adult disease across organ systems.",
	},
	{
		ID:          "surgery",
		Name:        "Surgery",
		Description: "Master surgical principles and operative techniques",
		Specialty:   models.SpecialtyClinicalMedicine,
		Skills:      []string{"General Surgery", "Trauma Surgery", "Minimally Invasive", "Surgical Anatomy", "Pre/Post-op Care", "Emergency Surgery"},
		Context:     "Focus on surgical decision making, perioperative care, and operative anatomy.",
	},
	{
		ID:          "pediatrics",
		Name:        "Pediatrics",
		Description: "Provide comprehensive care for infants, children, and adolescents",
		Specialty:   models.SpecialtyClinicalMedicine,
		Skills:      []string{"Neonatology", "Child Development", "Pediatric Diseases", "Immunizations", "Growth Disorders", "Adolescent Medicine"},
		Context:     "Focus on child development, pediatric disease, and age-appropriate care.",
	},
	{
		ID:          "obstetrics-gynecology",
		Name:        "Obstetrics & Gynecology",
		Description: "Women's reproductive health and pregnancy care",
		Specialty:   models.SpecialtyClinicalMedicine,
		Skills:      []string{"Obstetrics", "Gynecology", "Reproductive Endocrinology", "Maternal-Fetal Medicine", "Gynecologic Oncology", "Family Planning"},
		Context:     "Focus on pregnancy care, reproductive health, and gynecologic disease.",
	},
	{
		ID:          "psychiatry",
		Name:        "Psychiatry",
		Description: "Understand and treat mental health disorders",
		Specialty:   models.SpecialtyClinicalMedicine,
		Skills:      []string{"Psychopathology", "Psychopharmacology", "Psychotherapy", "Addiction Medicine", "Child Psychiatry", "Forensic Psychiatry"},
		Context:     "Focus on psychiatric assessment, diagnosis, and treatment of mental disorders.",
	},
	{
		ID:          "emergency-medicine",
		Name:        "Emergency Medicine",
		Description: "Rapid assessment and treatment of acute medical conditions",
		Specialty:   models.SpecialtyClinicalMedicine,
		Skills:      []string{"Trauma Management", "Resuscitation", "Emergency Procedures", "Toxicology", "Critical Care", "Disaster Medicine"},
		Context:     "Focus on rapid assessment, stabilization, and acute management.",
	},
}

var seedItems = []models.CatalogItem{
	{
		ID:            "chest-pain",
		Kind:          models.KindCase,
		Title:         "Acute Chest Pain Assessment",
		Description:   "Evaluate a patient presenting with severe chest pain and shortness of breath.",
		DomainID:      "internal-medicine",
		Difficulty:    models.DifficultyIntermediate,
		XPReward:      300,
		EstimatedTime: 45,
		Skills:        []string{"Cardiology"},
	},
	{
		ID:            "pediatric-fever",
		Kind:          models.KindCase,
		Title:         "Pediatric Fever Evaluation",
		Description:   "Assess a febrile child with irritability and decreased oral intake.",
		DomainID:      "pediatrics",
		Difficulty:    models.DifficultyBeginner,
		XPReward:      200,
		EstimatedTime: 30,
		Skills:        []string{"Pediatric Diseases"},
	},
	{
		ID:            "sudden-headache",
		Kind:          models.KindCase,
		Title:         "Neurological Assessment",
		Description:   "Evaluate a patient with acute onset headache and neurological symptoms.",
		DomainID:      "emergency-medicine",
		Difficulty:    models.DifficultyAdvanced,
		XPReward:      450,
		EstimatedTime: 60,
		Skills:        []string{"Critical Care"},
	},
	{
		ID:            "polytrauma",
		Kind:          models.KindCase,
		Title:         "Emergency Trauma Case",
		Description:   "Manage a multi-trauma patient in the emergency department.",
		DomainID:      "surgery",
		Difficulty:    models.DifficultyAdvanced,
		XPReward:      400,
		EstimatedTime: 40,
		Skills:        []string{"Trauma Surgery"},
	},
	{
		ID:            "cardiovascular",
		Kind:          models.KindDeck,
		Title:         "Cardiovascular System",
		Description:   "Heart anatomy, physiology, and common pathologies",
		DomainID:      "internal-medicine",
		Difficulty:    models.DifficultyIntermediate,
		XPReward:      150,
		EstimatedTime: 20,
		Skills:        []string{"Cardiology"},
	},
	{
		ID:            "pharmacology-basics",
		Kind:          models.KindDeck,
		Title:         "Pharmacology Basics",
		Description:   "Drug classifications, mechanisms, and interactions",
		DomainID:      "pharmacology",
		Difficulty:    models.DifficultyAdvanced,
		XPReward:      200,
		EstimatedTime: 25,
		Skills:        []string{"Pharmacodynamics"},
	},
	{
		ID:            "neuroanatomy",
		Kind:          models.KindDeck,
		Title:         "Neuroanatomy",
		Description:   "Brain structures, functions, and neural pathways",
		DomainID:      "anatomy",
		Difficulty:    models.DifficultyAdvanced,
		XPReward:      200,
		EstimatedTime: 25,
		Skills:        []string{"Nervous System"},
	},
	{
		ID:            "pediatric-milestones",
		Kind:          models.KindDeck,
		Title:         "Pediatric Milestones",
		Description:   "Developmental milestones and pediatric assessments",
		DomainID:      "pediatrics",
		Difficulty:    models.DifficultyBeginner,
		XPReward:      100,
		EstimatedTime: 15,
		Skills:        []string{"Child Development"},
	},
	{
		ID:            "emergency-chest-pain",
		Kind:          models.KindBattle,
		Title:         "Emergency Chest Pain",
		Description:   "Race a colleague to the diagnosis and management plan.",
		DomainID:      "emergency-medicine",
		Difficulty:    models.DifficultyIntermediate,
		XPReward:      250,
		EstimatedTime: 15,
		Skills:        []string{"Resuscitation"},
	},
}

var seedCards = []models.Flashcard{
	{ID: "cv-1", DeckID: "cardiovascular", Question: "What is the normal resting heart rate for adults?", Answer: "60-100 beats per minute", ClinicalRelevance: "Bradycardia is <60 bpm, tachycardia is >100 bpm."},
	{ID: "cv-2", DeckID: "cardiovascular", Question: "Name the four chambers of the heart", Answer: "Right atrium, right ventricle, left atrium, left ventricle", ClinicalRelevance: "The atria receive blood, the ventricles pump it."},
	{ID: "cv-3", DeckID: "cardiovascular", Question: "Which coronary artery most often supplies the SA node?", Answer: "Right coronary artery", ClinicalRelevance: "Inferior MI can present with sinus bradycardia."},
	{ID: "cv-4", DeckID: "cardiovascular", Question: "What ECG finding defines a STEMI?", Answer: "ST elevation in two contiguous leads", ClinicalRelevance: "Triggers immediate reperfusion therapy."},
	{ID: "ph-1", DeckID: "pharmacology-basics", Question: "What is the mechanism of action of ACE inhibitors?", Answer: "Block conversion of angiotensin I to angiotensin II", ClinicalRelevance: "Reduces vasoconstriction and aldosterone secretion."},
	{ID: "ph-2", DeckID: "pharmacology-basics", Question: "What is the antidote for paracetamol overdose?", Answer: "N-acetylcysteine", ClinicalRelevance: "Most effective within 8 hours of ingestion."},
	{ID: "ph-3", DeckID: "pharmacology-basics", Question: "Which drug class ends in -olol?", Answer: "Beta blockers", ClinicalRelevance: "Avoid non-selective agents in asthma."},
	{ID: "ph-4", DeckID: "pharmacology-basics", Question: "What is the antidote for warfarin?", Answer: "Vitamin K", ClinicalRelevance: "Add prothrombin complex concentrate for major bleeding."},
	{ID: "na-1", DeckID: "neuroanatomy", Question: "What are the main functions of the frontal lobe?", Answer: "Executive function, motor control, personality, speech production", ClinicalRelevance: "Broca's area lies in the dominant frontal lobe."},
	{ID: "na-2", DeckID: "neuroanatomy", Question: "Which cranial nerve controls lateral eye movement?", Answer: "Abducens nerve (CN VI)", ClinicalRelevance: "Palsy causes horizontal diplopia."},
	{ID: "na-3", DeckID: "neuroanatomy", Question: "Where is Wernicke's area located?", Answer: "Posterior superior temporal gyrus", ClinicalRelevance: "Lesions cause fluent receptive aphasia."},
	{ID: "pm-1", DeckID: "pediatric-milestones", Question: "At what age should a child typically walk independently?", Answer: "12-15 months", ClinicalRelevance: "Walking with support typically occurs around 9-12 months."},
	{ID: "pm-2", DeckID: "pediatric-milestones", Question: "When does a social smile usually appear?", Answer: "Around 6 weeks", ClinicalRelevance: "Absence by 3 months warrants assessment."},
	{ID: "pm-3", DeckID: "pediatric-milestones", Question: "At what age can most children sit without support?", Answer: "6-8 months", ClinicalRelevance: "Delay may indicate hypotonia."},
}
