package report

import (
	"github.com/go-gota/gota/dataframe"

	"devsurvey/internal/config"
	"devsurvey/internal/features"
	"devsurvey/internal/regroup"
)

// Build assembles the survey sections from wide and, when salaries is not
// nil, the salary sections.
func Build(cfg config.FeaturesConfig, wide dataframe.DataFrame, salaries *dataframe.DataFrame) (*Report, error) {
	r := &Report{Title: "Developer survey summary"}

	years, err := YearSection(wide)
	if err != nil {
		return nil, err
	}

	r.Sections = append(r.Sections, years)

	listCols := make([]string, 0, len(cfg.ListColumns))
	for _, l := range cfg.ListColumns {
		listCols = append(listCols, l.Name)
	}

	adoption := []struct {
		heading string
		cols    []string
	}{
		{"Languages", features.VectorColumns(cfg.Languages)},
		{"Databases", features.VectorColumns(cfg.Databases)},
		{"Platforms", append(features.VectorColumns(cfg.Platforms), listCols...)},
	}

	for _, a := range adoption {
		s, err := AdoptionSection(a.heading, wide, a.cols)
		if err != nil {
			return nil, err
		}

		r.Sections = append(r.Sections, s)
	}

	for _, col := range regroup.Columns() {
		s, err := CategorySection(wide, col)
		if err != nil {
			return nil, err
		}

		r.Sections = append(r.Sections, s)
	}

	if salaries == nil {
		return r, nil
	}

	jobs, err := JobSection(*salaries)
	if err != nil {
		return nil, err
	}

	tiers, err := TierSection(*salaries)
	if err != nil {
		return nil, err
	}

	r.Sections = append(r.Sections, jobs, tiers)

	return r, nil
}
