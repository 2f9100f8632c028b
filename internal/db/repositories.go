package db

import (
	"encoding/json"

	"gorm.io/gorm"
)

type Repositories struct {
	Users       *UserRepository
	Identities  *IdentityRepository
	Habits      *HabitRepository
	Completions *CompletionRepository
	Squads      *SquadRepository
}

func NewRepositories(database *gorm.DB) *Repositories {
	return &Repositories{
		Users:       NewUserRepository(database),
		Identities:  NewIdentityRepository(database),
		Habits:      NewHabitRepository(database),
		Completions: NewCompletionRepository(database),
		Squads:      NewSquadRepository(database),
	}
}

// filterAllowedUpdates keeps only allow-listed keys from a request payload.
// Unknown keys are dropped silently; partial updates never error on extras.
// Values for JSON-serialized columns are re-marshaled so a raw column update
// stores the same representation the model serializer would.
func filterAllowedUpdates(payload map[string]any, allowed []string, jsonColumns []string) (map[string]any, error) {
	updates := make(map[string]any, len(payload))
	for _, field := range allowed {
		value, present := payload[field]
		if !present {
			continue
		}
		updates[field] = value
	}

	for _, column := range jsonColumns {
		value, present := updates[column]
		if !present || value == nil {
			continue
		}
		encoded, err := json.Marshal(value)
		if err != nil {
			return nil, err
		}
		updates[column] = string(encoded)
	}

	return updates, nil
}
