package ballots

import (
	"regexp"
	"strings"

	"github.com/yungbote/voterguide-backend/internal/clients/ballotready"
	"github.com/yungbote/voterguide-backend/internal/clients/democracyworks"
	"github.com/yungbote/voterguide-backend/internal/clients/googlecivic"
	"github.com/yungbote/voterguide-backend/internal/domain/civic"
)

var measureNumberRe = regexp.MustCompile(`(?i)^(Proposition|Measure|Issue)\s+([A-Z0-9]+)`)

// contestRule classifies one voterinfo contest. Rules are evaluated in
// order and the first match builds the item.
type contestRule struct {
	name  string
	match func(c googlecivic.Contest) bool
	build func(c googlecivic.Contest) BallotItem
}

var contestRules = []contestRule{
	{
		name:  "referendum",
		match: func(c googlecivic.Contest) bool { return c.Type == "Referendum" },
		build: buildReferendum,
	},
	{
		name: "candidate",
		match: func(c googlecivic.Contest) bool {
			return c.Type == "General" || c.Type == "Primary" || c.Office != ""
		},
		build: buildCandidateContest,
	},
	{
		name:  "measure",
		match: func(c googlecivic.Contest) bool { return c.Type == "BallotMeasure" || c.Type == "Proposition" },
		build: buildMeasure,
	},
}

// ConvertToBallotItems maps voterinfo contests to ballot items, tagging
// each with source. Contests no rule claims are dropped.
func ConvertToBallotItems(contests []googlecivic.Contest, source string) []BallotItem {
	if source == "" {
		source = SourceGoogleCivic
	}
	items := make([]BallotItem, 0, len(contests))
	for _, c := range contests {
		item, ok := classify(c)
		if !ok {
			continue
		}
		item.Metadata.Source = source
		items = append(items, item)
	}
	return items
}

func classify(c googlecivic.Contest) (BallotItem, bool) {
	for _, rule := range contestRules {
		if rule.match(c) {
			item := rule.build(c)
			item.Metadata.ContestType = c.Type
			return item, true
		}
	}
	return BallotItem{}, false
}

func buildReferendum(c googlecivic.Contest) BallotItem {
	return BallotItem{
		Title:       firstNonEmpty(c.ReferendumTitle, c.Title, "Referendum"),
		Description: firstNonEmpty(c.ReferendumSubtitle, c.ReferendumText, c.Description),
		Type:        civic.BallotTypeReferendum,
		Options:     []string{OptionYes, OptionNo},
	}
}

func buildCandidateContest(c googlecivic.Contest) BallotItem {
	options := make([]string, 0, len(c.Candidates)+1)
	candidates := make([]civic.CandidateInfo, 0, len(c.Candidates))
	for _, cand := range c.Candidates {
		options = append(options, cand.Name)
		candidates = append(candidates, civic.CandidateInfo{
			Name:  cand.Name,
			Party: cand.Party,
			Email: cand.Email,
			Phone: cand.Phone,
			URL:   cand.CandidateURL,
			Photo: cand.PhotoURL,
		})
	}
	options = append(options, OptionWriteIn)

	item := BallotItem{
		Title:       firstNonEmpty(c.Office, c.Title, "Office"),
		Description: c.Description,
		Type:        civic.BallotTypeCandidate,
		Options:     options,
		Metadata: civic.BallotMetadata{
			Office:     c.Office,
			Candidates: candidates,
		},
	}
	if c.Office != "" {
		office := c.Office
		item.Number = &office
	}
	if c.District != nil {
		item.Metadata.District = c.District.Name
	}
	return item
}

func buildMeasure(c googlecivic.Contest) BallotItem {
	item := BallotItem{
		Title:       firstNonEmpty(c.ReferendumTitle, c.Title, "Ballot Measure"),
		Description: firstNonEmpty(c.ReferendumText, c.ReferendumSubtitle, c.Description),
		Type:        civic.BallotTypeMeasure,
		Options:     []string{OptionYes, OptionNo},
	}
	if m := measureNumberRe.FindStringSubmatch(c.Title); m != nil {
		number := m[2]
		item.Number = &number
	}
	return item
}

// DemocracyWorksItems maps a Democracy Works ballot.
func DemocracyWorksItems(contests []democracyworks.Contest) []BallotItem {
	items := make([]BallotItem, 0, len(contests))
	for _, c := range contests {
		item := BallotItem{
			Title:       c.Title,
			Description: c.Description,
			Metadata: civic.BallotMetadata{
				Source:      SourceDemocracyWorks,
				ContestType: c.Type,
			},
		}
		if c.Type == "candidate" || c.Type == "office" {
			item.Type = civic.BallotTypeCandidate
			item.Metadata.Office = c.Title
			if len(c.Candidates) == 0 {
				item.Options = []string{OptionWriteIn}
			}
			for _, cand := range c.Candidates {
				item.Options = append(item.Options, cand.Name)
				item.Metadata.Candidates = append(item.Metadata.Candidates, civic.CandidateInfo{
					Name:  cand.Name,
					Party: cand.Party,
					Bio:   cand.Bio,
				})
			}
		} else {
			item.Type = civic.BallotTypeMeasure
			item.Options = orYesNo(c.Options)
		}
		items = append(items, item)
	}
	return items
}

// BallotReadyItems maps one BallotReady election. A contest with
// candidates yields one candidate item; otherwise each of its measures
// yields a measure item.
func BallotReadyItems(election ballotready.Election) []BallotItem {
	var items []BallotItem
	for _, c := range election.Contests {
		if len(c.Candidates) > 0 {
			item := BallotItem{
				Title:       c.Title,
				Description: c.Description,
				Type:        civic.BallotTypeCandidate,
				Metadata: civic.BallotMetadata{
					Source:      SourceBallotReady,
					ContestType: c.Type,
					Office:      c.Office,
					District:    c.District,
				},
			}
			for _, cand := range c.Candidates {
				item.Options = append(item.Options, cand.Name)
				item.Metadata.Candidates = append(item.Metadata.Candidates, civic.CandidateInfo{
					Name:  cand.Name,
					Party: cand.Party,
					Bio:   cand.Bio,
					URL:   cand.Website,
					Photo: cand.Photo,
				})
			}
			items = append(items, item)
			continue
		}
		for _, m := range c.Measures {
			items = append(items, BallotItem{
				Title:       m.Title,
				Description: m.Description,
				Type:        civic.BallotTypeMeasure,
				Options:     orYesNo(m.Options),
				Metadata: civic.BallotMetadata{
					Source:      SourceBallotReady,
					ContestType: c.Type,
				},
			})
		}
	}
	return items
}

func orYesNo(options []string) []string {
	if len(options) == 0 {
		return []string{OptionYes, OptionNo}
	}
	out := make([]string, len(options))
	copy(out, options)
	return out
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
