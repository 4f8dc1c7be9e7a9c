package catalog

import "github.com/ppiankov/casedex/internal/model"

// Default returns the built-in catalog
func Default() *Catalog {
	c := &Catalog{
		Tags: []TagDefinition{
			// Housing
			{
				Name:     "housing_denial",
				Category: model.CategoryHousing,
				Patterns: []string{`housing.*den(y|ied|ial)`, `not.*homeless`, `accommodation.*refus`, `shelter.*reject`},
				Aliases:  []string{"housing denial", "denied housing", "accommodation refused"},
			},
			{
				Name:     "section_202",
				Category: model.CategoryHousing,
				Patterns: []string{`section\s*202`, `\bs\.?\s*202\b`, `housing\s*act\s*1996`},
				Aliases:  []string{"section 202", "s202", "s.202", "housing act 1996"},
			},
			{
				Name:     "homelessness",
				Category: model.CategoryHousing,
				Patterns: []string{`homeless(?:ness)?`, `no\s*fixed\s*abode`, `rough\s*sleep`},
			},

			// Mental health
			{
				Name:     "mental_health",
				Category: model.CategoryMentalHealth,
				Patterns: []string{`mental\s*health`, `psychiatric`, `psychological`, `hospital\s*admission`, `sectioned`},
			},
			{
				Name:     "ellingham",
				Category: model.CategoryMentalHealth,
				Patterns: []string{`ellingham`, `hospital.*placement`, `institutional.*care`},
				Aliases:  []string{"ellingham hospital", "ellingham placement"},
			},
			{
				Name:     "child_protection",
				Category: model.CategoryMentalHealth,
				Patterns: []string{`child.*protection`, `under\s*18`, `minor.*care`, `\bage(?:d)?\s*1[5-7]\b`},
			},

			// Legal and administrative
			{
				Name:     "sar_denial",
				Category: model.CategoryLegal,
				Patterns: []string{`\bsar\b.*den(y|ied|ial)`, `subject\s*access.*refus`, `data.*request.*reject`},
				Aliases:  []string{"sar", "subject access request", "data request", "sar denial"},
			},
			{
				Name:     "discrimination",
				Category: model.CategoryLegal,
				Patterns: []string{`discriminat`, `disability.*bias`, `unequal.*treatment`},
			},
			{
				Name:     "compensation",
				Category: model.CategoryLegal,
				Patterns: []string{`compensat`, `damages`, `£\d+.*million`, `financial.*remedy`},
				Aliases:  []string{"damages", "financial remedy", "181 million"},
			},

			// System failure
			{
				Name:     "entrapment",
				Category: model.CategorySystemFailure,
				Patterns: []string{`entrap`, `circular.*refer`, `system.*loop`},
			},
			{
				Name:     "negligence",
				Category: model.CategorySystemFailure,
				Patterns: []string{`negligen`, `breach.*duty`, `fail.*care`},
			},

			// Evidence markers are matched through CriticalMarkers
			{
				Name:     model.TagCriticalEvidence,
				Category: model.CategoryEvidence,
			},
		},
		Locations: []Location{
			{Name: "thurrock", Keywords: []string{"thurrock", "council", "borough"}},
			{Name: "ellingham", Keywords: []string{"ellingham", "hospital"}},
			{Name: "ak_housing", Keywords: []string{"ak", "housing", "association"}},
		},
		CriticalMarkers: []string{
			"verdict", "judgment", "decision", "ruling",
			"evidence", "proof", "exhibit", "statement",
		},
		ProofChains: []model.ProofChain{
			{
				Name:             "Housing Denial → Compensation",
				StartTag:         "housing_denial",
				EndTag:           "compensation",
				IntermediateTags: []string{"discrimination", "negligence"},
			},
		},
	}

	if err := c.compile(); err != nil {
		panic("catalog: built-in table does not compile: " + err.Error())
	}
	return c
}
