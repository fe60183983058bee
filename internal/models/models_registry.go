package models

// ModelTypeRegistry lists every persisted model, keyed by name. Schema
// validation walks this map to check each model has a table.
var ModelTypeRegistry = map[string]interface{}{
	"Invitation":        Invitation{},
	"Property":          Property{},
	"Unit":              Unit{},
	"Tenant":            Tenant{},
	"Profile":           Profile{},
	"OnboardingAttempt": OnboardingAttempt{},
}
