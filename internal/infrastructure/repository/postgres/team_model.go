package postgres

import (
	"time"

	"github.com/tourneyops/scheduler-api/internal/domain/team"
)

type teamTableModel struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Short     string    `db:"short"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type teamInsertModel struct {
	ID    string `db:"id"`
	Name  string `db:"name"`
	Short string `db:"short"`
}

func (m teamTableModel) toDomain() team.Team {
	return team.Team{
		ID:    m.ID,
		Name:  m.Name,
		Short: m.Short,
	}
}
