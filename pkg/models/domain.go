package models

// Specialty groups domains the way the onboarding screen does
type Specialty string

const (
	SpecialtyBasicSciences    Specialty = "Basic Sciences"
	SpecialtyClinicalMedicine Specialty = "Clinical Medicine"
)

// Domain is a learning domain a profile enrolls in
type Domain struct {
	ID          string    `json:"id" yaml:"id"`
	Name        string    `json:"name" yaml:"name"`
	Description string    `json:"description" yaml:"description"`
	Specialty   Specialty `json:"specialty" yaml:"specialty"`
	Skills      []string  `json:"skills" yaml:"skills"`
	// Context is used to ground mentor prompts in the domain
	Context string `json:"context" yaml:"context"`
}
