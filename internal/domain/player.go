package domain

// Участник игры, идентифицируется по Telegram ID
type Player struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name,omitempty"`
	Username  string `json:"username,omitempty"`
}

// имя для отображения: "Имя Фамилия" или только имя, если фамилии нет
func (p Player) DisplayName() string {
	if p.LastName != "" {
		return p.FirstName + " " + p.LastName
	}
	return p.FirstName
}

// Названия команд для итогового счета
const (
	TeamA = "Team A"
	TeamB = "Team B"
)

// Итоговый счет матча
type TeamScore struct {
	TeamA int `json:"team_a"`
	TeamB int `json:"team_b"`
}

// счет в виде отображения команда -> очки
func (s TeamScore) ByTeam() map[string]int {
	return map[string]int{
		TeamA: s.TeamA,
		TeamB: s.TeamB,
	}
}
