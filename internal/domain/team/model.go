package team

import "fmt"

// Team is a tournament participant. Identity is carried by ID; two Team
// values refer to the same club iff their IDs are equal.
type Team struct {
	ID    string
	Name  string
	Short string
}

func (t Team) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("team id is required")
	}
	if t.Name == "" {
		return fmt.Errorf("team name is required")
	}

	return nil
}
