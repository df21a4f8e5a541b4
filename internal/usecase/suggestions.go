package usecase

import (
	"fmt"
	"strings"

	"dining-concierge/internal/domain"
)

func suggestionsSubject(req domain.DiningRequest) string {
	return req.Cuisine + " Restaurant Suggestions"
}

func buildSuggestionsBody(req domain.DiningRequest, restaurants []domain.Restaurant) string {
	lines := []string{
		fmt.Sprintf("Hello!\n\nHere are my %s restaurant suggestions for %s people, for %s at %s:\n",
			req.Cuisine, req.NumberOfPeople, req.DiningDate, req.DiningTime),
	}
	if len(restaurants) == 0 {
		lines = append(lines, "Sorry, no suggestions found.\n")
		return strings.Join(lines, "\n")
	}

	for i, r := range restaurants {
		lines = append(lines, fmt.Sprintf("%d. %s, located at %s",
			i+1, orDefault(r.Name, "Unknown"), orDefault(r.Address, "Unknown address")))
	}
	lines = append(lines, "\nEnjoy your meal!")
	return strings.Join(lines, "\n")
}
