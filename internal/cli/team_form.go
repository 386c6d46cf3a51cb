package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/compass/internal/domain"
	"github.com/charmbracelet/huh"
)

func validateNonNegativeInt(s string) error {
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return fmt.Errorf("enter a whole number ≥ 0")
	}
	return nil
}

func validateNonNegativeFloat(s string) error {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || f < 0 {
		return fmt.Errorf("enter a number ≥ 0")
	}
	return nil
}

// runTeamForm presents an editable roster and returns the updated team.
func runTeamForm(current []domain.TeamMember) ([]domain.TeamMember, error) {
	counts := make([]string, len(current))
	rates := make([]string, len(current))
	for i, m := range current {
		counts[i] = strconv.Itoa(m.Count)
		rates[i] = strconv.FormatFloat(m.WeeklyRate, 'f', -1, 64)
	}

	var fields []huh.Field
	for i, m := range current {
		fields = append(fields,
			huh.NewInput().
				Title(fmt.Sprintf("%s headcount", m.Role)).
				Value(&counts[i]).
				Validate(validateNonNegativeInt),
			huh.NewInput().
				Title(fmt.Sprintf("%s weekly rate", m.Role)).
				Value(&rates[i]).
				Validate(validateNonNegativeFloat),
		)
	}

	form := huh.NewForm(huh.NewGroup(fields...)).WithShowHelp(false)
	if err := form.Run(); err != nil {
		return nil, err
	}

	team := make([]domain.TeamMember, len(current))
	for i, m := range current {
		count, _ := strconv.Atoi(counts[i])
		rate, _ := strconv.ParseFloat(rates[i], 64)
		team[i] = domain.TeamMember{Role: m.Role, Count: count, WeeklyRate: rate}
	}
	return team, nil
}
