package player

import (
	"strings"
	"time"

	"github.com/riskibarqy/competition-manager/internal/domain/fielderr"
)

// Player is a participant registered by a user. Nickname and phone are optional.
type Player struct {
	ID        string
	Name      string
	Nickname  string
	Phone     string
	UserID    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p Player) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fielderr.Required("nome")
	}
	return nil
}

type Patch struct {
	Name     *string
	Nickname *string
	Phone    *string
}

func (p Patch) IsEmpty() bool {
	return p.Name == nil && p.Nickname == nil && p.Phone == nil
}

// Trimmed returns the patch with surrounding spaces removed from its text fields.
func (p Patch) Trimmed() Patch {
	for _, field := range []**string{&p.Name, &p.Nickname, &p.Phone} {
		if *field != nil {
			t := strings.TrimSpace(**field)
			*field = &t
		}
	}
	return p
}

func (p Patch) Apply(item Player) Player {
	if p.Name != nil {
		item.Name = *p.Name
	}
	if p.Nickname != nil {
		item.Nickname = *p.Nickname
	}
	if p.Phone != nil {
		item.Phone = *p.Phone
	}
	return item
}
