package metrics

import (
	"hash/fnv"
	"sort"
	"strings"
	"unicode"
)

// SeedTeams are the placeholder teams used when no mapping is configured.
var SeedTeams = []string{"Eng", "Design", "Support", "Product"}

const unassignedTeam = "Unassigned"

// TeamMapper assigns users to teams. There is no authoritative org chart, so
// the mapping is either configured or a documented placeholder.
type TeamMapper interface {
	TeamOf(userID string) string
	Placeholder() bool
}

// StaticTeamMapper uses a configured team -> users mapping. Unmapped users
// land in "Unassigned".
type StaticTeamMapper struct {
	byUser map[string]string
}

func NewStaticTeamMapper(teams map[string][]string) *StaticTeamMapper {
	names := make([]string, 0, len(teams))
	for name := range teams {
		names = append(names, name)
	}
	sort.Strings(names)

	byUser := make(map[string]string)
	for _, name := range names {
		for _, user := range teams[name] {
			if _, taken := byUser[user]; !taken {
				byUser[user] = name
			}
		}
	}
	return &StaticTeamMapper{byUser: byUser}
}

func (m *StaticTeamMapper) TeamOf(userID string) string {
	if team, ok := m.byUser[userID]; ok {
		return team
	}
	return unassignedTeam
}

func (m *StaticTeamMapper) Placeholder() bool { return false }

// PlaceholderTeamMapper hashes user ids onto SeedTeams. The grouping is
// stable but carries no organisational meaning.
type PlaceholderTeamMapper struct{}

func (PlaceholderTeamMapper) TeamOf(userID string) string {
	h := fnv.New32a()
	h.Write([]byte(userID))
	return SeedTeams[h.Sum32()%uint32(len(SeedTeams))]
}

func (PlaceholderTeamMapper) Placeholder() bool { return true }

// NewTeamMapper returns a static mapper when teams is non-empty and the
// placeholder otherwise.
func NewTeamMapper(teams map[string][]string) TeamMapper {
	if len(teams) == 0 {
		return PlaceholderTeamMapper{}
	}
	return NewStaticTeamMapper(teams)
}

// TeamID is the entity id for a team name.
func TeamID(team string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(team) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	return "team-" + strings.TrimSuffix(b.String(), "-")
}
