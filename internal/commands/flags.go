package commands

import (
	"github.com/cleared-dev/tally/internal/model"
)

func parseClasses(names []string) ([]model.AccountType, error) {
	classes := make([]model.AccountType, 0, len(names))
	for _, n := range names {
		t, err := model.ParseAccountType(n)
		if err != nil {
			return nil, err
		}
		classes = append(classes, t)
	}
	return classes, nil
}
