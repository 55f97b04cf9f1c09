package ballots

import (
	"reflect"
	"testing"

	"github.com/yungbote/voterguide-backend/internal/clients/ballotready"
	"github.com/yungbote/voterguide-backend/internal/clients/democracyworks"
	"github.com/yungbote/voterguide-backend/internal/clients/googlecivic"
	"github.com/yungbote/voterguide-backend/internal/domain/civic"
)

func TestConvertToBallotItemsClassification(t *testing.T) {
	cases := []struct {
		name        string
		contest     googlecivic.Contest
		wantType    string
		wantTitle   string
		wantOptions []string
		wantNumber  string
	}{
		{
			name:        "referendum",
			contest:     googlecivic.Contest{Type: "Referendum", ReferendumTitle: "Prop X"},
			wantType:    civic.BallotTypeReferendum,
			wantTitle:   "Prop X",
			wantOptions: []string{"YES", "NO"},
		},
		{
			name: "general candidate race",
			contest: googlecivic.Contest{
				Type:       "General",
				Office:     "Mayor",
				Candidates: []googlecivic.Candidate{{Name: "A"}, {Name: "B"}},
			},
			wantType:    civic.BallotTypeCandidate,
			wantTitle:   "Mayor",
			wantOptions: []string{"A", "B", "Write-in"},
			wantNumber:  "Mayor",
		},
		{
			name:        "office without type",
			contest:     googlecivic.Contest{Office: "Sheriff"},
			wantType:    civic.BallotTypeCandidate,
			wantTitle:   "Sheriff",
			wantOptions: []string{"Write-in"},
			wantNumber:  "Sheriff",
		},
		{
			name:        "primary falls back to title",
			contest:     googlecivic.Contest{Type: "Primary", Title: "Council District 4"},
			wantType:    civic.BallotTypeCandidate,
			wantTitle:   "Council District 4",
			wantOptions: []string{"Write-in"},
		},
		{
			name:        "ballot measure number",
			contest:     googlecivic.Contest{Type: "BallotMeasure", Title: "Proposition 50", ReferendumText: "..."},
			wantType:    civic.BallotTypeMeasure,
			wantTitle:   "Proposition 50",
			wantOptions: []string{"YES", "NO"},
			wantNumber:  "50",
		},
		{
			name:        "measure number is case insensitive",
			contest:     googlecivic.Contest{Type: "Proposition", Title: "measure ab12 transit"},
			wantType:    civic.BallotTypeMeasure,
			wantTitle:   "measure ab12 transit",
			wantOptions: []string{"YES", "NO"},
			wantNumber:  "ab12",
		},
		{
			name:        "measure without number",
			contest:     googlecivic.Contest{Type: "BallotMeasure"},
			wantType:    civic.BallotTypeMeasure,
			wantTitle:   "Ballot Measure",
			wantOptions: []string{"YES", "NO"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items := ConvertToBallotItems([]googlecivic.Contest{tc.contest}, "")
			if len(items) != 1 {
				t.Fatalf("expected 1 item, got %d", len(items))
			}
			got := items[0]
			if got.Type != tc.wantType || got.Title != tc.wantTitle {
				t.Fatalf("unexpected item: type=%q title=%q", got.Type, got.Title)
			}
			if !reflect.DeepEqual(got.Options, tc.wantOptions) {
				t.Fatalf("unexpected options: got=%v want=%v", got.Options, tc.wantOptions)
			}
			gotNumber := ""
			if got.Number != nil {
				gotNumber = *got.Number
			}
			if gotNumber != tc.wantNumber {
				t.Fatalf("unexpected number: got=%q want=%q", gotNumber, tc.wantNumber)
			}
			if got.Metadata.Source != SourceGoogleCivic {
				t.Fatalf("missing source: %+v", got.Metadata)
			}
		})
	}
}

func TestConvertToBallotItemsDropsUnclassified(t *testing.T) {
	items := ConvertToBallotItems([]googlecivic.Contest{
		{Type: "Retention", Title: "Judge Smith"},
		{Type: "Referendum", ReferendumTitle: "Keep"},
		{},
	}, SourceGoogleCivic)
	if len(items) != 1 || items[0].Title != "Keep" {
		t.Fatalf("expected only the referendum to survive, got %+v", items)
	}
}

func TestConvertToBallotItemsReferendumBeatsOffice(t *testing.T) {
	items := ConvertToBallotItems([]googlecivic.Contest{
		{Type: "Referendum", Office: "Mayor", ReferendumSubtitle: "sub", ReferendumText: "text"},
	}, SourceGoogleCivic)
	if len(items) != 1 || items[0].Type != civic.BallotTypeReferendum {
		t.Fatalf("expected referendum rule to win, got %+v", items)
	}
	if items[0].Title != "Referendum" || items[0].Description != "sub" {
		t.Fatalf("unexpected fallbacks: %+v", items[0])
	}
}

func TestCandidateMetadata(t *testing.T) {
	items := ConvertToBallotItems([]googlecivic.Contest{{
		Type:     "General",
		Office:   "Mayor",
		District: &googlecivic.District{Name: "Seattle city"},
		Candidates: []googlecivic.Candidate{
			{Name: "A", Party: "Nonpartisan", Email: "a@example.com", CandidateURL: "https://a.example.com", PhotoURL: "https://a.example.com/p.jpg"},
		},
	}}, SourceGoogleCivic)
	md := items[0].Metadata
	if md.District != "Seattle city" || md.Office != "Mayor" || md.ContestType != "General" {
		t.Fatalf("unexpected metadata: %+v", md)
	}
	if len(md.Candidates) != 1 || md.Candidates[0].URL != "https://a.example.com" || md.Candidates[0].Photo == "" {
		t.Fatalf("unexpected candidates: %+v", md.Candidates)
	}
}

func TestDemocracyWorksItems(t *testing.T) {
	items := DemocracyWorksItems([]democracyworks.Contest{
		{Type: "office", Title: "County Executive", Candidates: []democracyworks.Candidate{{Name: "Dow"}}},
		{Type: "candidate", Title: "Assessor"},
		{Type: "measure", Title: "Prop 1", Options: []string{"Approved", "Rejected"}},
		{Type: "advisory", Title: "Advisory Vote 1"},
	})
	if len(items) != 4 {
		t.Fatalf("expected 4 items, got %d", len(items))
	}
	if items[0].Type != civic.BallotTypeCandidate || !reflect.DeepEqual(items[0].Options, []string{"Dow"}) || items[0].Metadata.Office != "County Executive" {
		t.Fatalf("unexpected office item: %+v", items[0])
	}
	if !reflect.DeepEqual(items[1].Options, []string{"Write-in"}) {
		t.Fatalf("expected write-in only, got %v", items[1].Options)
	}
	if !reflect.DeepEqual(items[2].Options, []string{"Approved", "Rejected"}) {
		t.Fatalf("expected provider options, got %v", items[2].Options)
	}
	if items[3].Type != civic.BallotTypeMeasure || !reflect.DeepEqual(items[3].Options, []string{"YES", "NO"}) {
		t.Fatalf("unexpected fallback item: %+v", items[3])
	}
	for _, it := range items {
		if it.Metadata.Source != SourceDemocracyWorks {
			t.Fatalf("missing source on %q", it.Title)
		}
	}
}

func TestBallotReadyItems(t *testing.T) {
	items := BallotReadyItems(ballotready.Election{Contests: []ballotready.Contest{
		{Title: "Commissioner", Office: "Commissioner", District: "2", Candidates: []ballotready.Candidate{{Name: "Pat"}, {Name: "Lee"}}},
		{Title: "Measures", Measures: []ballotready.Measure{
			{Title: "Issue 7A", Options: []string{"For", "Against"}},
			{Title: "Issue 7B"},
		}},
	}})
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Type != civic.BallotTypeCandidate || items[0].Metadata.District != "2" || len(items[0].Options) != 2 {
		t.Fatalf("unexpected candidate item: %+v", items[0])
	}
	if !reflect.DeepEqual(items[2].Options, []string{"YES", "NO"}) {
		t.Fatalf("expected YES/NO default, got %v", items[2].Options)
	}
}
